package scan

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/ignore"
	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
)

// entryGate bundles the per-entry admission decisions shared by the full scan,
// the size estimation, and the file-list processor. Both traversal shapes
// consult the same gate so their exclusion and size-limit decisions cannot
// diverge.
type entryGate struct {
	matcher          *ignore.Matcher
	rules            ignore.ExclusionRules
	selectedPath     string
	maxFileSizeBytes int64
}

// excludes reports whether the workspace-relative path is filtered out by the
// layered exclusion rules. The caller-selected path is exempt.
func (gate entryGate) excludes(relativePath string) bool {
	return gate.matcher.ShouldExclude(relativePath, gate.selectedPath, gate.rules)
}

// oversized reports whether a file of the given size violates the configured
// limit. A non-positive limit admits everything.
func (gate entryGate) oversized(sizeBytes int64) bool {
	return gate.maxFileSizeBytes > 0 && sizeBytes > gate.maxFileSizeBytes
}

// negationReachesInto reports whether any negated pattern names a path beneath
// the directory. Such a directory may shelter force-included entries, so its
// exclusion cannot prune the whole subtree; traversal must descend and decide
// per entry.
func (gate entryGate) negationReachesInto(directoryRelativePath string) bool {
	loweredPrefix := strings.ToLower(directoryRelativePath) + "/"
	for _, negatedPatterns := range [][]string{
		gate.rules.Gitignore.NegatedPatterns,
		gate.rules.IgnoreFile.NegatedPatterns,
	} {
		for _, patternValue := range negatedPatterns {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(patternValue)), loweredPrefix) {
				return true
			}
		}
	}
	return false
}

// newEntryGate builds the admission gate for one traversal.
func (scanner *Scanner) newEntryGate(root string, selectedPath string, options types.ScanOptions) entryGate {
	return entryGate{
		matcher:          scanner.matcher,
		rules:            scanner.loadRules(root, options),
		selectedPath:     selectedPath,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
}

// loadRules assembles the exclusion rules for one workspace root, loading the
// requested ignore-file kinds through the cache. Disabled kinds contribute
// empty rule sets.
func (scanner *Scanner) loadRules(root string, options types.ScanOptions) ignore.ExclusionRules {
	rules := ignore.ExclusionRules{
		ExcludePatterns: utils.DeduplicatePatterns(options.ExcludePatterns),
	}
	if options.UseGitignore {
		rules.Gitignore = scanner.store.Load(root, ignore.KindGitignore)
	}
	if options.UseIgnoreFile {
		rules.IgnoreFile = scanner.store.Load(root, ignore.KindIgnoreFile)
	}
	return rules
}

// buildFileInfo assembles the immutable snapshot of one admitted file.
// Dependency scanning failures degrade to an empty import list and never
// propagate.
func (scanner *Scanner) buildFileInfo(absolutePath string, relativePath string, content string, sizeBytes int64, options types.ScanOptions) *types.FileInfo {
	fileInfo := &types.FileInfo{
		Path:         absolutePath,
		RelativePath: relativePath,
		Content:      content,
		Language:     utils.DetectLanguage(filepath.Base(absolutePath)),
		SizeBytes:    sizeBytes,
	}
	if options.IncludeDependencies && scanner.dependencies != nil {
		imports, scanImportsError := scanner.dependencies.ScanImports(absolutePath, content, fileInfo.Language)
		if scanImportsError != nil {
			scanner.logger.Debug("dependency scanning failed",
				zap.String("path", absolutePath),
				zap.Error(scanImportsError))
			imports = []string{}
		}
		fileInfo.Imports = imports
	}
	return fileInfo
}
