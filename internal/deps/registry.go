// Package deps extracts import targets from source files. It is the
// collaborator that fills FileInfo.Imports when dependency scanning is
// requested; callers treat every failure here as non-fatal.
package deps

import (
	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/utils"
)

// LanguageScanner extracts import targets for one or more language tags.
type LanguageScanner interface {
	Languages() []string
	ScanImports(absolutePath string, content string) ([]string, error)
}

// Registry dispatches import scanning by language tag. Languages without a
// registered scanner yield no imports and no error.
type Registry struct {
	scannersByLanguage map[string]LanguageScanner
	logger             *zap.Logger
}

// NewRegistry constructs a Registry with every available language scanner.
// The tree-sitter backed scanners are absent on builds without cgo.
func NewRegistry(workspaceRoot string, logger *zap.Logger) *Registry {
	registry := &Registry{
		scannersByLanguage: map[string]LanguageScanner{},
		logger:             utils.LoggerOrNop(logger),
	}
	registry.register(NewGoScanner(workspaceRoot, logger))
	registry.register(NewJavaScriptScanner())
	registry.register(NewTypeScriptScanner())
	registry.register(NewTSXScanner())
	return registry
}

// register indexes the scanner under each of its language tags. Nil scanners
// (platform stubs) are skipped.
func (registry *Registry) register(scanner LanguageScanner) {
	if scanner == nil {
		return
	}
	for _, languageTag := range scanner.Languages() {
		registry.scannersByLanguage[languageTag] = scanner
	}
}

// ScanImports extracts the import targets of the file with the given
// language tag.
func (registry *Registry) ScanImports(absolutePath string, content string, language string) ([]string, error) {
	languageScanner, supported := registry.scannersByLanguage[language]
	if !supported {
		return nil, nil
	}
	return languageScanner.ScanImports(absolutePath, content)
}
