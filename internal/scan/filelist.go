package scan

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
)

// ProcessFiles materializes an explicit list of file locators into shallow
// directory nodes, one per (workspace root, parent directory) pair. Unlike
// Scan it never recurses: only the named files appear, grouped under their
// immediate parent. Every per-file failure is logged and skipped; the call as
// a whole always yields whatever survived.
func (scanner *Scanner) ProcessFiles(fileLocators []string, options types.ScanOptions) []*types.DirectoryInfo {
	absoluteLocators := make([]string, 0, len(fileLocators))
	for _, locator := range fileLocators {
		absoluteLocator, absoluteError := filepath.Abs(locator)
		if absoluteError != nil {
			scanner.logger.Warn("skipping unresolvable locator",
				zap.String("locator", locator),
				zap.Error(absoluteError))
			continue
		}
		absoluteLocators = append(absoluteLocators, filepath.Clean(absoluteLocator))
	}

	groupedByRoot := scanner.resolver.GroupByRoot(absoluteLocators)
	orderedRoots := rootsInFirstTouchOrder(scanner.resolver, absoluteLocators)

	var orderedNodes []*types.DirectoryInfo
	nodesByParent := map[string]*types.DirectoryInfo{}

	for _, owningRoot := range orderedRoots {
		gate := scanner.newEntryGate(owningRoot, "", options)
		for _, absolutePath := range groupedByRoot[owningRoot] {
			fileInfo := scanner.processListedFile(absolutePath, owningRoot, gate, options)
			if fileInfo == nil {
				continue
			}

			parentKey := owningRoot + "\x00" + utils.ParentRelativePath(fileInfo.RelativePath)
			parentNode, exists := nodesByParent[parentKey]
			if !exists {
				parentNode = types.NewDirectoryInfo(filepath.Dir(absolutePath), utils.ParentRelativePath(fileInfo.RelativePath))
				nodesByParent[parentKey] = parentNode
				orderedNodes = append(orderedNodes, parentNode)
			}
			parentNode.Files = append(parentNode.Files, fileInfo)
		}
	}

	return orderedNodes
}

// processListedFile applies the shared admission gate to one explicitly
// listed file and builds its snapshot. Directory locators are rejected: the
// file list entry point never recurses.
func (scanner *Scanner) processListedFile(absolutePath string, root string, gate entryGate, options types.ScanOptions) *types.FileInfo {
	pathInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		scanner.logger.Warn("skipping missing file",
			zap.String("path", absolutePath),
			zap.Error(statError))
		return nil
	}
	if pathInfo.IsDir() {
		scanner.logger.Warn("skipping directory locator", zap.String("path", absolutePath))
		return nil
	}

	relativePath := utils.RelativePathOrSelf(absolutePath, root)
	if gate.excludes(relativePath) {
		scanner.logger.Debug("skipping excluded file", zap.String("path", absolutePath))
		return nil
	}
	if gate.oversized(pathInfo.Size()) {
		scanner.logger.Warn("skipping oversized file",
			zap.String("path", absolutePath),
			zap.Int64("size", pathInfo.Size()),
			zap.Int64("limit", gate.maxFileSizeBytes))
		return nil
	}

	fileBytes, readError := os.ReadFile(absolutePath)
	if readError != nil {
		scanner.logger.Warn("skipping unreadable file",
			zap.String("path", absolutePath),
			zap.Error(readError))
		return nil
	}
	if utils.IsBinary(fileBytes) {
		scanner.logger.Debug("skipping binary file", zap.String("path", absolutePath))
		return nil
	}

	return scanner.buildFileInfo(absolutePath, relativePath, string(fileBytes), pathInfo.Size(), options)
}

// rootsInFirstTouchOrder lists the owning roots of the locators in the order
// each root first appears, keeping ProcessFiles output deterministic.
func rootsInFirstTouchOrder(resolver rootResolver, absoluteLocators []string) []string {
	seenRoots := map[string]struct{}{}
	var orderedRoots []string
	for _, absolutePath := range absoluteLocators {
		owningRoot := resolver.ResolveRoot(absolutePath)
		if _, seen := seenRoots[owningRoot]; seen {
			continue
		}
		seenRoots[owningRoot] = struct{}{}
		orderedRoots = append(orderedRoots, owningRoot)
	}
	return orderedRoots
}
