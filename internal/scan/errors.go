package scan

import "errors"

// ErrTargetNotFound reports that the directly requested scan target does not
// exist. It is one of the two fatal error kinds a scan can surface.
var ErrTargetNotFound = errors.New("scan target does not exist")

// ErrFileTooLarge reports that the directly requested scan target is a file
// above the configured size limit. Oversized files discovered during
// directory traversal are skipped instead.
var ErrFileTooLarge = errors.New("file exceeds the configured size limit")
