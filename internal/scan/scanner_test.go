package scan_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/mvoronov/treescan/internal/ignore"
	"github.com/mvoronov/treescan/internal/scan"
	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/workspace"
)

// newWorkspaceScanner builds a scanner whose resolver knows the given root.
func newWorkspaceScanner(root string) *scan.Scanner {
	return scan.NewScanner(workspace.NewResolver(root, root), ignore.NewStore(nil), nil, nil)
}

// writeWorkspaceFile creates a file with the given content beneath the root,
// creating intermediate directories as needed.
func writeWorkspaceFile(testingHandle *testing.T, root string, relativePath string, content string) {
	testingHandle.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	if directoryError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); directoryError != nil {
		testingHandle.Fatalf("creating directories: %v", directoryError)
	}
	if writeError := os.WriteFile(absolutePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("writing file: %v", writeError)
	}
}

// fileNames lists the base names of a node's files in listing order.
func fileNames(node *types.DirectoryInfo) []string {
	names := make([]string, 0, len(node.Files))
	for _, fileInfo := range node.Files {
		names = append(names, filepath.Base(fileInfo.Path))
	}
	return names
}

// collectRelativePaths gathers every file's relative path in the tree, sorted.
func collectRelativePaths(node *types.DirectoryInfo) []string {
	var paths []string
	var walk func(current *types.DirectoryInfo)
	walk = func(current *types.DirectoryInfo) {
		for _, fileInfo := range current.Files {
			paths = append(paths, fileInfo.RelativePath)
		}
		for _, childNode := range current.Directories {
			walk(childNode)
		}
	}
	walk(node)
	sort.Strings(paths)
	return paths
}

// TestScanFiltersAndRecurses covers the base scenario: configured excludes
// drop matching files while clean files and subdirectories survive.
func TestScanFiltersAndRecurses(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "a.ts", "const a = 1; // fifty bytes of typescript padding..")
	writeWorkspaceFile(testingHandle, workspaceRoot, "b.log", "1234567890")
	writeWorkspaceFile(testingHandle, workspaceRoot, "sub/c.ts", "const c = 3;        ")

	scanner := newWorkspaceScanner(workspaceRoot)
	options := types.ScanOptions{
		MaxFileSizeBytes: 1000,
		ExcludePatterns:  []string{"*.log"},
	}

	tree, scanError := scanner.Scan(workspaceRoot, options)
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}

	if tree.RelativePath != "." {
		testingHandle.Fatalf("expected root relative path %q, got %q", ".", tree.RelativePath)
	}
	if !reflect.DeepEqual(fileNames(tree), []string{"a.ts"}) {
		testingHandle.Fatalf("expected root files [a.ts], got %v", fileNames(tree))
	}
	subdirectory, exists := tree.Directories["sub"]
	if !exists {
		testingHandle.Fatalf("expected subdirectory sub in %v", tree.Directories)
	}
	if !reflect.DeepEqual(fileNames(subdirectory), []string{"c.ts"}) {
		testingHandle.Fatalf("expected sub files [c.ts], got %v", fileNames(subdirectory))
	}

	admittedFile := tree.Files[0]
	if admittedFile.RelativePath != "a.ts" {
		testingHandle.Fatalf("expected relative path a.ts, got %q", admittedFile.RelativePath)
	}
	if admittedFile.Language != "typescript" {
		testingHandle.Fatalf("expected language typescript, got %q", admittedFile.Language)
	}
	if admittedFile.SizeBytes != int64(len(admittedFile.Content)) {
		testingHandle.Fatalf("size %d does not match content length %d", admittedFile.SizeBytes, len(admittedFile.Content))
	}
}

// TestScanSizeLimitSkipsDirectoryEntries verifies that oversized files inside
// a directory traversal are skipped, not fatal.
func TestScanSizeLimitSkipsDirectoryEntries(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "small.ts", "tiny")
	writeWorkspaceFile(testingHandle, workspaceRoot, "large.ts", "this content is longer than the configured limit")

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{MaxFileSizeBytes: 10})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}
	if !reflect.DeepEqual(fileNames(tree), []string{"small.ts"}) {
		testingHandle.Fatalf("expected only small.ts, got %v", fileNames(tree))
	}
}

// TestScanHonorsGitignoreNegation verifies that a negated pattern
// force-includes a file its own ignore file would otherwise exclude.
func TestScanHonorsGitignoreNegation(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, ".gitignore", "*.log\n!keep.log\n")
	writeWorkspaceFile(testingHandle, workspaceRoot, "keep.log", "kept")
	writeWorkspaceFile(testingHandle, workspaceRoot, "other.log", "dropped")
	writeWorkspaceFile(testingHandle, workspaceRoot, "main.ts", "const main = 0;")

	scanner := newWorkspaceScanner(workspaceRoot)
	options := types.ScanOptions{UseGitignore: true}

	tree, scanError := scanner.Scan(workspaceRoot, options)
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}

	expectedPaths := []string{".gitignore", "keep.log", "main.ts"}
	if actualPaths := collectRelativePaths(tree); !reflect.DeepEqual(actualPaths, expectedPaths) {
		testingHandle.Fatalf("expected files %v, got %v", expectedPaths, actualPaths)
	}
}

// TestScanIncludesNegatedFileInsideExcludedDirectory verifies that a
// directory-pattern exclusion does not prune entries a negation beneath it
// force-includes.
func TestScanIncludesNegatedFileInsideExcludedDirectory(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, ".gitignore", "dist/\n!dist/keep.txt\n")
	writeWorkspaceFile(testingHandle, workspaceRoot, "dist/a.js", "console.log(1);")
	writeWorkspaceFile(testingHandle, workspaceRoot, "dist/keep.txt", "kept")

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{UseGitignore: true})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}

	expectedPaths := []string{".gitignore", "dist/keep.txt"}
	if actualPaths := collectRelativePaths(tree); !reflect.DeepEqual(actualPaths, expectedPaths) {
		testingHandle.Fatalf("expected files %v, got %v", expectedPaths, actualPaths)
	}
	distNode, exists := tree.Directories["dist"]
	if !exists {
		testingHandle.Fatalf("expected dist directory node in %v", tree.Directories)
	}
	if !reflect.DeepEqual(fileNames(distNode), []string{"keep.txt"}) {
		testingHandle.Fatalf("expected dist files [keep.txt], got %v", fileNames(distNode))
	}
}

// TestScanPrunesExcludedDirectoryWithoutNegation verifies that a directory
// exclusion with no negation beneath it still removes the whole subtree.
func TestScanPrunesExcludedDirectoryWithoutNegation(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, ".gitignore", "dist/\n")
	writeWorkspaceFile(testingHandle, workspaceRoot, "dist/a.js", "console.log(1);")
	writeWorkspaceFile(testingHandle, workspaceRoot, "main.ts", "const main = 0;")

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{UseGitignore: true})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}
	if _, exists := tree.Directories["dist"]; exists {
		testingHandle.Fatalf("expected dist directory to be pruned, got %v", tree.Directories)
	}
	expectedPaths := []string{".gitignore", "main.ts"}
	if actualPaths := collectRelativePaths(tree); !reflect.DeepEqual(actualPaths, expectedPaths) {
		testingHandle.Fatalf("expected files %v, got %v", expectedPaths, actualPaths)
	}
}

// TestScanConfiguredExcludeDefeatsNegationInSubtree verifies that a negation
// cannot resurrect a subtree excluded by caller-configured patterns; the
// descended directory ends up empty and is dropped.
func TestScanConfiguredExcludeDefeatsNegationInSubtree(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, ".gitignore", "!dist/keep.txt\n")
	writeWorkspaceFile(testingHandle, workspaceRoot, "dist/keep.txt", "kept")
	writeWorkspaceFile(testingHandle, workspaceRoot, "main.ts", "const main = 0;")

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{
		UseGitignore:    true,
		ExcludePatterns: []string{"dist/**"},
	})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}
	if _, exists := tree.Directories["dist"]; exists {
		testingHandle.Fatalf("expected empty dist directory to be dropped, got %v", tree.Directories)
	}
	expectedPaths := []string{".gitignore", "main.ts"}
	if actualPaths := collectRelativePaths(tree); !reflect.DeepEqual(actualPaths, expectedPaths) {
		testingHandle.Fatalf("expected files %v, got %v", expectedPaths, actualPaths)
	}
}

// TestScanDisabledIgnoreKindsAreInert verifies that ignore files contribute no
// rules unless their kind is enabled.
func TestScanDisabledIgnoreKindsAreInert(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, ".gitignore", "*.log\n")
	writeWorkspaceFile(testingHandle, workspaceRoot, "trace.log", "content")

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{UseGitignore: false})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}

	expectedPaths := []string{".gitignore", "trace.log"}
	if actualPaths := collectRelativePaths(tree); !reflect.DeepEqual(actualPaths, expectedPaths) {
		testingHandle.Fatalf("expected files %v, got %v", expectedPaths, actualPaths)
	}
}

// TestScanReadFailureIsIsolated verifies that one unreadable entry never
// aborts its siblings.
func TestScanReadFailureIsIsolated(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "good.ts", "const good = true;")
	danglingLink := filepath.Join(workspaceRoot, "broken.ts")
	if linkError := os.Symlink(filepath.Join(workspaceRoot, "missing-target"), danglingLink); linkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", linkError)
	}

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}
	if !reflect.DeepEqual(fileNames(tree), []string{"good.ts"}) {
		testingHandle.Fatalf("expected exactly [good.ts], got %v", fileNames(tree))
	}
}

// TestScanSingleFile verifies direct file targets, including the fatal size
// limit and the graceful binary case.
func TestScanSingleFile(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "app.ts", "const app = 1;")
	binaryPath := filepath.Join(workspaceRoot, "blob.bin")
	if writeError := os.WriteFile(binaryPath, []byte{0x00, 0x01, 0x02}, 0o644); writeError != nil {
		testingHandle.Fatalf("writing binary file: %v", writeError)
	}

	scanner := newWorkspaceScanner(workspaceRoot)

	testingHandle.Run("TextFile", func(testingHandle *testing.T) {
		tree, scanError := scanner.Scan(filepath.Join(workspaceRoot, "app.ts"), types.ScanOptions{})
		if scanError != nil {
			testingHandle.Fatalf("unexpected scan error: %v", scanError)
		}
		if !reflect.DeepEqual(fileNames(tree), []string{"app.ts"}) {
			testingHandle.Fatalf("expected [app.ts], got %v", fileNames(tree))
		}
	})

	testingHandle.Run("OversizedFileIsFatal", func(testingHandle *testing.T) {
		_, scanError := scanner.Scan(filepath.Join(workspaceRoot, "app.ts"), types.ScanOptions{MaxFileSizeBytes: 3})
		if !errors.Is(scanError, scan.ErrFileTooLarge) {
			testingHandle.Fatalf("expected ErrFileTooLarge, got %v", scanError)
		}
	})

	testingHandle.Run("BinaryFileYieldsEmptyNode", func(testingHandle *testing.T) {
		tree, scanError := scanner.Scan(binaryPath, types.ScanOptions{})
		if scanError != nil {
			testingHandle.Fatalf("unexpected scan error: %v", scanError)
		}
		if len(tree.Files) != 0 {
			testingHandle.Fatalf("expected no files, got %v", fileNames(tree))
		}
	})

	testingHandle.Run("ExcludedFileStillScansWhenSelected", func(testingHandle *testing.T) {
		tree, scanError := scanner.Scan(filepath.Join(workspaceRoot, "app.ts"), types.ScanOptions{
			ExcludePatterns: []string{"*.ts"},
		})
		if scanError != nil {
			testingHandle.Fatalf("unexpected scan error: %v", scanError)
		}
		if !reflect.DeepEqual(fileNames(tree), []string{"app.ts"}) {
			testingHandle.Fatalf("expected [app.ts], got %v", fileNames(tree))
		}
	})
}

// TestScanMissingTarget verifies the not-found sentinel.
func TestScanMissingTarget(testingHandle *testing.T) {
	scanner := newWorkspaceScanner(testingHandle.TempDir())
	_, scanError := scanner.Scan(filepath.Join(testingHandle.TempDir(), "absent.ts"), types.ScanOptions{})
	if !errors.Is(scanError, scan.ErrTargetNotFound) {
		testingHandle.Fatalf("expected ErrTargetNotFound, got %v", scanError)
	}
}

// TestScanIsIdempotent verifies that repeated scans over unchanged state
// produce identical file sets and sizes.
func TestScanIsIdempotent(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "a.ts", "const a = 1;")
	writeWorkspaceFile(testingHandle, workspaceRoot, "sub/b.ts", "const b = 2;")

	scanner := newWorkspaceScanner(workspaceRoot)
	options := types.ScanOptions{MaxFileSizeBytes: 1000}

	firstTree, firstError := scanner.Scan(workspaceRoot, options)
	secondTree, secondError := scanner.Scan(workspaceRoot, options)
	if firstError != nil || secondError != nil {
		testingHandle.Fatalf("unexpected scan errors: %v, %v", firstError, secondError)
	}
	if !reflect.DeepEqual(firstTree, secondTree) {
		testingHandle.Fatalf("expected identical trees across scans")
	}
}

// TestScanConcurrentReadsMatchSequential verifies that bounded parallel
// reading preserves listing order and file sets.
func TestScanConcurrentReadsMatchSequential(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "a.ts", "const a = 1;")
	writeWorkspaceFile(testingHandle, workspaceRoot, "b.ts", "const b = 2;")
	writeWorkspaceFile(testingHandle, workspaceRoot, "c.ts", "const c = 3;")
	writeWorkspaceFile(testingHandle, workspaceRoot, "d.ts", "const d = 4;")

	scanner := newWorkspaceScanner(workspaceRoot)

	sequentialTree, sequentialError := scanner.Scan(workspaceRoot, types.ScanOptions{ReadConcurrency: 1})
	parallelTree, parallelError := scanner.Scan(workspaceRoot, types.ScanOptions{ReadConcurrency: 4})
	if sequentialError != nil || parallelError != nil {
		testingHandle.Fatalf("unexpected scan errors: %v, %v", sequentialError, parallelError)
	}
	if !reflect.DeepEqual(sequentialTree, parallelTree) {
		testingHandle.Fatalf("expected identical trees for sequential and parallel reads")
	}
}

// TestScanSkipsBinaryContent verifies content-based binary classification
// inside directory traversal.
func TestScanSkipsBinaryContent(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	writeWorkspaceFile(testingHandle, workspaceRoot, "text.md", "# readme")
	binaryPath := filepath.Join(workspaceRoot, "image.dat")
	if writeError := os.WriteFile(binaryPath, []byte{0x89, 0x50, 0x00, 0x47}, 0o644); writeError != nil {
		testingHandle.Fatalf("writing binary file: %v", writeError)
	}

	scanner := newWorkspaceScanner(workspaceRoot)
	tree, scanError := scanner.Scan(workspaceRoot, types.ScanOptions{})
	if scanError != nil {
		testingHandle.Fatalf("unexpected scan error: %v", scanError)
	}
	if !reflect.DeepEqual(fileNames(tree), []string{"text.md"}) {
		testingHandle.Fatalf("expected only text.md, got %v", fileNames(tree))
	}
}
