package utils

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// binaryExtensions lists file extensions treated as binary when content is
// not available for sniffing, e.g. during size estimation.
var binaryExtensions = map[string]struct{}{
	// images
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {},
	".tiff": {}, ".webp": {}, ".heic": {}, ".psd": {},
	// audio and video
	".mp3": {}, ".wav": {}, ".flac": {}, ".ogg": {}, ".m4a": {},
	".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {}, ".webm": {}, ".wmv": {},
	// archives
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {}, ".7z": {},
	".rar": {}, ".zst": {},
	// office documents
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".odt": {}, ".ods": {},
	// compiled artifacts and databases
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".a": {}, ".o": {},
	".class": {}, ".jar": {}, ".pyc": {}, ".wasm": {}, ".bin": {},
	".sqlite": {}, ".db": {},
	// fonts
	".ttf": {}, ".otf": {}, ".woff": {}, ".woff2": {}, ".eot": {},
}

// IsBinary reports whether data appears to contain binary content. Invalid
// UTF-8 and NUL bytes both classify as binary; an empty buffer does not.
// The check fails open: text is the answer whenever nothing decisive is found.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// HasBinaryExtension reports whether the file name carries a well-known
// binary extension. It is a best-effort approximation for paths where content
// is never read; extensionless binaries pass through undetected.
func HasBinaryExtension(fileName string) bool {
	extension := strings.ToLower(filepath.Ext(fileName))
	if extension == "" {
		return false
	}
	_, known := binaryExtensions[extension]
	return known
}
