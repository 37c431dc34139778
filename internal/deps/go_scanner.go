package deps

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"

	"github.com/mvoronov/treescan/internal/utils"
)

// goModFileName is the module manifest consulted for import classification.
const goModFileName = "go.mod"

// GoScanner extracts import paths from Go source files. Imports inside the
// workspace module are rewritten to module-relative package paths; external
// imports are returned verbatim.
type GoScanner struct {
	modulePath string
}

// NewGoScanner constructs a GoScanner for the workspace rooted at
// workspaceRoot. A missing or unreadable go.mod leaves every import path
// unrewritten.
func NewGoScanner(workspaceRoot string, logger *zap.Logger) *GoScanner {
	scanner := &GoScanner{}
	manifestPath := filepath.Join(workspaceRoot, goModFileName)
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		if !os.IsNotExist(readError) {
			utils.LoggerOrNop(logger).Debug("unable to read module manifest",
				zap.String("path", manifestPath),
				zap.Error(readError))
		}
		return scanner
	}
	scanner.modulePath = modfile.ModulePath(manifestBytes)
	return scanner
}

// Languages implements LanguageScanner.
func (scanner *GoScanner) Languages() []string {
	return []string{"go"}
}

// ScanImports parses the file's import declarations only.
func (scanner *GoScanner) ScanImports(absolutePath string, content string) ([]string, error) {
	fileSet := token.NewFileSet()
	parsedFile, parseError := parser.ParseFile(fileSet, absolutePath, content, parser.ImportsOnly)
	if parseError != nil {
		return nil, parseError
	}

	var imports []string
	for _, importSpec := range parsedFile.Imports {
		importPath, unquoteError := strconv.Unquote(importSpec.Path.Value)
		if unquoteError != nil {
			continue
		}
		imports = append(imports, scanner.classify(importPath))
	}
	return imports, nil
}

// classify rewrites module-local import paths relative to the module root.
func (scanner *GoScanner) classify(importPath string) string {
	if scanner.modulePath == "" {
		return importPath
	}
	if importPath == scanner.modulePath {
		return "."
	}
	if strings.HasPrefix(importPath, scanner.modulePath+"/") {
		return strings.TrimPrefix(importPath, scanner.modulePath+"/")
	}
	return importPath
}
