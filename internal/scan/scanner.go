// Package scan implements the recursive, layered-filter workspace scanner.
package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mvoronov/treescan/internal/ignore"
	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
)

// DependencyScanner extracts import targets from a source file. It is an
// external collaborator of the scanner: its failures are swallowed into an
// empty import list and never abort a scan.
type DependencyScanner interface {
	ScanImports(absolutePath string, content string, language string) ([]string, error)
}

// Scanner walks workspace paths and builds filtered ownership trees. All
// per-entry failures degrade the result instead of aborting it; only a failed
// stat of the requested target and an oversized directly requested file are
// fatal.
type Scanner struct {
	resolver     rootResolver
	store        *ignore.Store
	matcher      *ignore.Matcher
	dependencies DependencyScanner
	logger       *zap.Logger
}

// rootResolver is the part of workspace path resolution the scanner relies
// on.
type rootResolver interface {
	ResolveRoot(pathValue string) string
	GroupByRoot(paths []string) map[string][]string
}

// NewScanner constructs a Scanner. The dependency scanner may be nil, in
// which case FileInfo.Imports is never populated. A nil logger is replaced
// with a no-op logger.
func NewScanner(resolver rootResolver, store *ignore.Store, dependencies DependencyScanner, logger *zap.Logger) *Scanner {
	normalizedLogger := utils.LoggerOrNop(logger)
	return &Scanner{
		resolver:     resolver,
		store:        store,
		matcher:      ignore.NewMatcher(normalizedLogger),
		dependencies: dependencies,
		logger:       normalizedLogger,
	}
}

// Scan resolves the owning workspace root of targetPath and builds the
// filtered directory tree beneath it. A file target is wrapped into a
// synthetic parent directory node; a binary file target yields that node with
// no files rather than an error.
func (scanner *Scanner) Scan(targetPath string, options types.ScanOptions) (*types.DirectoryInfo, error) {
	absoluteTarget, targetInfo, statError := scanner.statTarget(targetPath)
	if statError != nil {
		return nil, statError
	}

	owningRoot := scanner.resolver.ResolveRoot(absoluteTarget)
	selectedRelative := utils.RelativePathOrSelf(absoluteTarget, owningRoot)
	gate := scanner.newEntryGate(owningRoot, selectedRelative, options)

	if !targetInfo.IsDir() {
		return scanner.scanSingleFile(absoluteTarget, selectedRelative, targetInfo, options)
	}

	directoryNode := types.NewDirectoryInfo(absoluteTarget, selectedRelative)
	if fillError := scanner.fillDirectory(directoryNode, owningRoot, gate, options); fillError != nil {
		return nil, fmt.Errorf("scanning %s: %w", targetPath, fillError)
	}
	return directoryNode, nil
}

// statTarget resolves the target to a clean absolute path and stats it.
// A missing target maps to ErrTargetNotFound; any other failure is wrapped
// into a generic scan error.
func (scanner *Scanner) statTarget(targetPath string) (string, os.FileInfo, error) {
	absoluteTarget, absoluteError := filepath.Abs(targetPath)
	if absoluteError != nil {
		return "", nil, fmt.Errorf("scanning %s: %w", targetPath, absoluteError)
	}
	absoluteTarget = filepath.Clean(absoluteTarget)

	targetInfo, statError := os.Stat(absoluteTarget)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", nil, fmt.Errorf("%w: %s", ErrTargetNotFound, targetPath)
		}
		return "", nil, fmt.Errorf("scanning %s: %w", targetPath, statError)
	}
	return absoluteTarget, targetInfo, nil
}

// scanSingleFile handles a directly requested file target. The size limit is
// fatal here: the caller asked for exactly this file.
func (scanner *Scanner) scanSingleFile(absoluteTarget string, selectedRelative string, targetInfo os.FileInfo, options types.ScanOptions) (*types.DirectoryInfo, error) {
	if options.MaxFileSizeBytes > 0 && targetInfo.Size() > options.MaxFileSizeBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)",
			ErrFileTooLarge, absoluteTarget, targetInfo.Size(), options.MaxFileSizeBytes)
	}

	fileBytes, readError := os.ReadFile(absoluteTarget)
	if readError != nil {
		return nil, fmt.Errorf("scanning %s: %w", absoluteTarget, readError)
	}

	parentNode := types.NewDirectoryInfo(filepath.Dir(absoluteTarget), utils.ParentRelativePath(selectedRelative))
	if utils.IsBinary(fileBytes) {
		scanner.logger.Debug("requested file is binary", zap.String("path", absoluteTarget))
		return parentNode, nil
	}

	fileInfo := scanner.buildFileInfo(absoluteTarget, selectedRelative, string(fileBytes), targetInfo.Size(), options)
	parentNode.Files = append(parentNode.Files, fileInfo)
	return parentNode, nil
}

// fileCandidate is one directory entry admitted past exclusion, pending read
// and classification.
type fileCandidate struct {
	absolutePath string
	relativePath string
	entry        os.DirEntry
}

// fillDirectory populates one directory node. Subdirectory failures and
// per-file failures are logged and skipped so one broken entry never aborts
// its siblings; only the ReadDir of this directory itself reports an error to
// the caller.
func (scanner *Scanner) fillDirectory(node *types.DirectoryInfo, root string, gate entryGate, options types.ScanOptions) error {
	directoryEntries, readDirectoryError := os.ReadDir(node.Path)
	if readDirectoryError != nil {
		return readDirectoryError
	}

	var candidates []fileCandidate
	for _, directoryEntry := range directoryEntries {
		childAbsolute := filepath.Join(node.Path, directoryEntry.Name())
		childRelative := utils.RelativePathOrSelf(childAbsolute, root)
		childExcluded := gate.excludes(childRelative)
		if childExcluded && (!directoryEntry.IsDir() || !gate.negationReachesInto(childRelative)) {
			continue
		}

		if directoryEntry.IsDir() {
			childNode := types.NewDirectoryInfo(childAbsolute, childRelative)
			if fillError := scanner.fillDirectory(childNode, root, gate, options); fillError != nil {
				scanner.logger.Warn("skipping unreadable subdirectory",
					zap.String("path", childAbsolute),
					zap.Error(fillError))
				continue
			}
			if childExcluded && len(childNode.Files) == 0 && len(childNode.Directories) == 0 {
				continue
			}
			node.Directories[directoryEntry.Name()] = childNode
			continue
		}

		candidates = append(candidates, fileCandidate{
			absolutePath: childAbsolute,
			relativePath: childRelative,
			entry:        directoryEntry,
		})
	}

	node.Files = append(node.Files, scanner.readCandidates(candidates, gate, options)...)
	return nil
}

// readCandidates reads and classifies the admitted file entries, preserving
// listing order. With ReadConcurrency above one, sibling reads run in a
// bounded worker group; results are slotted by index and a failed entry
// leaves a gap instead of cancelling its siblings.
func (scanner *Scanner) readCandidates(candidates []fileCandidate, gate entryGate, options types.ScanOptions) []*types.FileInfo {
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*types.FileInfo, len(candidates))
	if options.ReadConcurrency > 1 {
		var workerGroup errgroup.Group
		workerGroup.SetLimit(options.ReadConcurrency)
		for candidateIndex := range candidates {
			candidateIndex := candidateIndex
			workerGroup.Go(func() error {
				results[candidateIndex] = scanner.inspectCandidate(candidates[candidateIndex], gate, options)
				return nil
			})
		}
		_ = workerGroup.Wait()
	} else {
		for candidateIndex := range candidates {
			results[candidateIndex] = scanner.inspectCandidate(candidates[candidateIndex], gate, options)
		}
	}

	admitted := make([]*types.FileInfo, 0, len(candidates))
	for _, result := range results {
		if result != nil {
			admitted = append(admitted, result)
		}
	}
	return admitted
}

// inspectCandidate stats, reads, and classifies one file entry. Every failure
// path returns nil after logging; inside a directory traversal nothing a
// single file does is fatal.
func (scanner *Scanner) inspectCandidate(candidate fileCandidate, gate entryGate, options types.ScanOptions) *types.FileInfo {
	entryInfo, infoError := candidate.entry.Info()
	if infoError != nil {
		scanner.logger.Warn("unable to stat file",
			zap.String("path", candidate.absolutePath),
			zap.Error(infoError))
		return nil
	}
	if gate.oversized(entryInfo.Size()) {
		scanner.logger.Warn("skipping oversized file",
			zap.String("path", candidate.absolutePath),
			zap.Int64("size", entryInfo.Size()),
			zap.Int64("limit", gate.maxFileSizeBytes))
		return nil
	}

	fileBytes, readError := os.ReadFile(candidate.absolutePath)
	if readError != nil {
		scanner.logger.Warn("skipping unreadable file",
			zap.String("path", candidate.absolutePath),
			zap.Error(readError))
		return nil
	}
	if utils.IsBinary(fileBytes) {
		scanner.logger.Debug("skipping binary file", zap.String("path", candidate.absolutePath))
		return nil
	}

	return scanner.buildFileInfo(candidate.absolutePath, candidate.relativePath, string(fileBytes), entryInfo.Size(), options)
}
