// Package types defines the cross-package data structures produced and
// consumed by the treescan core.
package types

// FileInfo is the snapshot of one scanned file. Instances are created once
// during traversal, are never mutated afterward, and belong exclusively to the
// DirectoryInfo that lists them.
type FileInfo struct {
	// Path is the absolute location of the file on the host filesystem.
	Path string `json:"path"`
	// RelativePath is the POSIX-style path of the file relative to the
	// owning workspace root. It never carries a leading slash.
	RelativePath string `json:"relativePath"`
	// Content holds the decoded text of the file at scan time.
	Content string `json:"content"`
	// Language is the tag assigned by language detection.
	Language string `json:"language"`
	// SizeBytes is the file size reported by the filesystem at scan time.
	SizeBytes int64 `json:"size"`
	// Imports lists import targets discovered by dependency scanning.
	// It stays nil unless dependency scanning was requested.
	Imports []string `json:"imports,omitempty"`
}

// DirectoryInfo is one node of the ownership tree built by a scan. Each node
// exclusively owns its files and child directories; the tree carries no
// back-references and no shared nodes.
type DirectoryInfo struct {
	// Path is the absolute location of the directory.
	Path string `json:"path"`
	// RelativePath is the POSIX-style path relative to the owning workspace
	// root. It is "." when the directory coincides with the root.
	RelativePath string `json:"relativePath"`
	// Files lists the surviving files of this directory in listing order.
	Files []*FileInfo `json:"files"`
	// Directories maps child directory names to their subtrees.
	Directories map[string]*DirectoryInfo `json:"directories"`
}

// NewDirectoryInfo constructs an empty directory node for the given locations.
func NewDirectoryInfo(absolutePath string, relativePath string) *DirectoryInfo {
	return &DirectoryInfo{
		Path:         absolutePath,
		RelativePath: relativePath,
		Directories:  map[string]*DirectoryInfo{},
	}
}

// ScanOptions is the caller-supplied configuration for a scan. The scanner
// never mutates it; the same value flows unchanged through the recursion.
type ScanOptions struct {
	// MaxFileSizeBytes caps the size of files admitted into results.
	// Zero or negative disables the limit.
	MaxFileSizeBytes int64
	// ExcludePatterns are caller-configured glob patterns evaluated against
	// workspace-relative paths.
	ExcludePatterns []string
	// UseGitignore enables the .gitignore rule set of the workspace root.
	UseGitignore bool
	// UseIgnoreFile enables the .ignore rule set of the workspace root.
	UseIgnoreFile bool
	// IncludeDependencies requests import scanning for each surviving file.
	IncludeDependencies bool
	// ReadConcurrency bounds the number of sibling files read in parallel
	// inside one directory. Values below two keep reads sequential.
	ReadConcurrency int
}

// ScanTotals aggregates the outcome of a size estimation pass.
type ScanTotals struct {
	// TotalFiles counts the files that a full scan would admit.
	TotalFiles int `json:"totalFiles"`
	// TotalSizeBytes sums the sizes of those files.
	TotalSizeBytes int64 `json:"totalSizeBytes"`
}
