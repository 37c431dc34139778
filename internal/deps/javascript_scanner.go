//go:build cgo

package deps

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	javascript "github.com/smacker/go-tree-sitter/javascript"
	tsx "github.com/smacker/go-tree-sitter/typescript/tsx"
	typescript "github.com/smacker/go-tree-sitter/typescript/typescript"
)

const (
	scriptImportNodeType = "import_statement"
	scriptExportNodeType = "export_statement"
	scriptCallNodeType   = "call_expression"
	scriptSourceField    = "source"
	scriptFunctionField  = "function"
	scriptArgumentsField = "arguments"
	scriptRequireName    = "require"
)

// treeSitterScanner extracts import sources from script files using one
// tree-sitter grammar. The JavaScript and TypeScript grammars share the
// import/export/require node shapes, so a single walker serves all of them.
// The underlying parser is not reentrant, so a mutex serializes ScanImports
// calls.
type treeSitterScanner struct {
	mutex        sync.Mutex
	parser       *sitter.Parser
	languageTags []string
}

// newTreeSitterScanner constructs a scanner for one grammar and its language
// tags.
func newTreeSitterScanner(grammar *sitter.Language, languageTags ...string) LanguageScanner {
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	return &treeSitterScanner{parser: parser, languageTags: languageTags}
}

// NewJavaScriptScanner constructs the JavaScript import scanner. The
// JavaScript grammar also parses JSX.
func NewJavaScriptScanner() LanguageScanner {
	return newTreeSitterScanner(javascript.GetLanguage(), "javascript", "javascriptreact")
}

// NewTypeScriptScanner constructs the TypeScript import scanner.
func NewTypeScriptScanner() LanguageScanner {
	return newTreeSitterScanner(typescript.GetLanguage(), "typescript")
}

// NewTSXScanner constructs the import scanner for TSX sources, which need
// their own grammar.
func NewTSXScanner() LanguageScanner {
	return newTreeSitterScanner(tsx.GetLanguage(), "typescriptreact")
}

// Languages implements LanguageScanner.
func (scanner *treeSitterScanner) Languages() []string {
	return scanner.languageTags
}

// ScanImports collects the module specifiers of import statements,
// re-exports, and require calls.
func (scanner *treeSitterScanner) ScanImports(absolutePath string, content string) ([]string, error) {
	scanner.mutex.Lock()
	defer scanner.mutex.Unlock()

	sourceBytes := []byte(content)
	parsedTree, parseError := scanner.parser.ParseCtx(context.Background(), nil, sourceBytes)
	if parseError != nil {
		return nil, parseError
	}
	defer parsedTree.Close()

	var imports []string
	collectScriptImports(parsedTree.RootNode(), sourceBytes, &imports)
	return imports, nil
}

// collectScriptImports walks the syntax tree appending every discovered
// module specifier.
func collectScriptImports(node *sitter.Node, sourceBytes []byte, imports *[]string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case scriptImportNodeType, scriptExportNodeType:
		sourceNode := node.ChildByFieldName(scriptSourceField)
		if sourceNode != nil {
			appendModuleSpecifier(sourceNode, sourceBytes, imports)
		}
	case scriptCallNodeType:
		functionNode := node.ChildByFieldName(scriptFunctionField)
		argumentsNode := node.ChildByFieldName(scriptArgumentsField)
		if functionNode != nil && argumentsNode != nil &&
			functionNode.Content(sourceBytes) == scriptRequireName &&
			argumentsNode.NamedChildCount() == 1 {
			appendModuleSpecifier(argumentsNode.NamedChild(0), sourceBytes, imports)
		}
	}

	for childIndex := 0; childIndex < int(node.NamedChildCount()); childIndex++ {
		collectScriptImports(node.NamedChild(childIndex), sourceBytes, imports)
	}
}

// appendModuleSpecifier strips the quotes from a string literal node and
// records the specifier. Non-literal sources (dynamic requires) are ignored.
func appendModuleSpecifier(node *sitter.Node, sourceBytes []byte, imports *[]string) {
	if node == nil || node.Type() != "string" {
		return
	}
	specifier := strings.Trim(node.Content(sourceBytes), "'\"`")
	if specifier != "" {
		*imports = append(*imports, specifier)
	}
}
