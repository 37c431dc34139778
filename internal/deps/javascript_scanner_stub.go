//go:build !cgo

package deps

// NewJavaScriptScanner returns nil when cgo is unavailable so the registry
// gracefully skips JavaScript import scanning on platforms that cannot build
// the tree-sitter bindings.
func NewJavaScriptScanner() LanguageScanner {
	return nil
}

// NewTypeScriptScanner returns nil when cgo is unavailable.
func NewTypeScriptScanner() LanguageScanner {
	return nil
}

// NewTSXScanner returns nil when cgo is unavailable.
func NewTSXScanner() LanguageScanner {
	return nil
}
