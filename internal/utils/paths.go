// Package utils contains helper functions shared across the treescan core.
package utils

import (
	"path/filepath"
	"strings"
)

// RootRelativePath is the relative path assigned to a directory that
// coincides with its workspace root.
const RootRelativePath = "."

// NormalizePath converts a path to its cleaned forward-slash form. All
// relative-path computation and pattern matching operate on this
// representation regardless of the host separator convention.
func NormalizePath(pathValue string) string {
	return filepath.ToSlash(filepath.Clean(pathValue))
}

// RelativePathOrSelf computes the forward-slash relative path from root to
// fullPath. It returns RootRelativePath when both resolve to the same
// location and the cleaned fullPath when the relative computation fails.
func RelativePathOrSelf(fullPath string, root string) string {
	cleanFullPath := filepath.Clean(fullPath)
	absoluteRoot, absoluteRootError := filepath.Abs(root)
	if absoluteRootError != nil {
		return filepath.ToSlash(cleanFullPath)
	}
	cleanRoot := filepath.Clean(absoluteRoot)
	if cleanFullPath == cleanRoot {
		return RootRelativePath
	}
	relativePath, relativeError := filepath.Rel(cleanRoot, cleanFullPath)
	if relativeError != nil {
		return filepath.ToSlash(cleanFullPath)
	}
	return filepath.ToSlash(relativePath)
}

// ParentRelativePath returns the relative path of the parent directory of the
// provided relative file path, collapsing top-level entries to
// RootRelativePath.
func ParentRelativePath(relativePath string) string {
	separatorIndex := strings.LastIndex(relativePath, "/")
	if separatorIndex < 0 {
		return RootRelativePath
	}
	return relativePath[:separatorIndex]
}

// DeduplicatePatterns removes duplicate patterns while preserving the order
// of first occurrence.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, patternValue := range patterns {
		if _, exists := encounteredPatterns[patternValue]; exists {
			continue
		}
		encounteredPatterns[patternValue] = struct{}{}
		result = append(result, patternValue)
	}
	return result
}
