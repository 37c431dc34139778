package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
)

// EstimateSize traverses targetPath with the same exclusion and size-limit
// decisions as Scan but never reads file content: binary classification falls
// back to the extension heuristic and only running totals are kept. For
// identical inputs the totals match the files Scan would admit, except where
// content-based and extension-based binary classification disagree.
func (scanner *Scanner) EstimateSize(targetPath string, options types.ScanOptions) (types.ScanTotals, error) {
	absoluteTarget, targetInfo, statError := scanner.statTarget(targetPath)
	if statError != nil {
		return types.ScanTotals{}, statError
	}

	owningRoot := scanner.resolver.ResolveRoot(absoluteTarget)
	selectedRelative := utils.RelativePathOrSelf(absoluteTarget, owningRoot)
	gate := scanner.newEntryGate(owningRoot, selectedRelative, options)

	if !targetInfo.IsDir() {
		if options.MaxFileSizeBytes > 0 && targetInfo.Size() > options.MaxFileSizeBytes {
			return types.ScanTotals{}, fmt.Errorf("%w: %s is %d bytes (limit %d)",
				ErrFileTooLarge, absoluteTarget, targetInfo.Size(), options.MaxFileSizeBytes)
		}
		if utils.HasBinaryExtension(filepath.Base(absoluteTarget)) {
			return types.ScanTotals{}, nil
		}
		return types.ScanTotals{TotalFiles: 1, TotalSizeBytes: targetInfo.Size()}, nil
	}

	totals, estimateError := scanner.estimateDirectory(absoluteTarget, owningRoot, gate)
	if estimateError != nil {
		return types.ScanTotals{}, fmt.Errorf("scanning %s: %w", targetPath, estimateError)
	}
	return totals, nil
}

// estimateDirectory aggregates counts and sizes for one directory. The error
// isolation mirrors fillDirectory: only the ReadDir of this directory
// surfaces an error, every per-entry failure is logged and skipped.
func (scanner *Scanner) estimateDirectory(absoluteDirectory string, root string, gate entryGate) (types.ScanTotals, error) {
	var totals types.ScanTotals

	directoryEntries, readDirectoryError := os.ReadDir(absoluteDirectory)
	if readDirectoryError != nil {
		return totals, readDirectoryError
	}

	for _, directoryEntry := range directoryEntries {
		childAbsolute := filepath.Join(absoluteDirectory, directoryEntry.Name())
		childRelative := utils.RelativePathOrSelf(childAbsolute, root)
		if gate.excludes(childRelative) &&
			(!directoryEntry.IsDir() || !gate.negationReachesInto(childRelative)) {
			continue
		}

		if directoryEntry.IsDir() {
			childTotals, childError := scanner.estimateDirectory(childAbsolute, root, gate)
			if childError != nil {
				scanner.logger.Warn("skipping unreadable subdirectory",
					zap.String("path", childAbsolute),
					zap.Error(childError))
				continue
			}
			totals.TotalFiles += childTotals.TotalFiles
			totals.TotalSizeBytes += childTotals.TotalSizeBytes
			continue
		}

		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			scanner.logger.Warn("unable to stat file",
				zap.String("path", childAbsolute),
				zap.Error(infoError))
			continue
		}
		if gate.oversized(entryInfo.Size()) {
			scanner.logger.Warn("skipping oversized file",
				zap.String("path", childAbsolute),
				zap.Int64("size", entryInfo.Size()),
				zap.Int64("limit", gate.maxFileSizeBytes))
			continue
		}
		if utils.HasBinaryExtension(directoryEntry.Name()) {
			continue
		}

		totals.TotalFiles++
		totals.TotalSizeBytes += entryInfo.Size()
	}

	return totals, nil
}
