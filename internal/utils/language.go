package utils

import (
	"path/filepath"
	"strings"
)

// DefaultLanguageTag is assigned to files whose language cannot be detected.
const DefaultLanguageTag = "plaintext"

// wellKnownFileNames maps bare file names to language tags. These take
// precedence over extension lookup.
var wellKnownFileNames = map[string]string{
	"makefile":       "makefile",
	"dockerfile":     "dockerfile",
	"containerfile":  "dockerfile",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"cmakelists.txt": "cmake",
	"go.mod":         "go-module",
	"go.sum":         "go-checksum",
	".gitignore":     "ignore",
	".ignore":        "ignore",
	".editorconfig":  "ini",
}

// languageByExtension maps lower-case file extensions to language tags used
// by downstream formatters.
var languageByExtension = map[string]string{
	".go":     "go",
	".js":     "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".jsx":    "javascriptreact",
	".ts":     "typescript",
	".tsx":    "typescriptreact",
	".py":     "python",
	".rb":     "ruby",
	".rs":     "rust",
	".java":   "java",
	".kt":     "kotlin",
	".c":      "c",
	".h":      "c",
	".cpp":    "cpp",
	".cc":     "cpp",
	".hpp":    "cpp",
	".cs":     "csharp",
	".php":    "php",
	".swift":  "swift",
	".scala":  "scala",
	".sh":     "shellscript",
	".bash":   "shellscript",
	".zsh":    "shellscript",
	".ps1":    "powershell",
	".sql":    "sql",
	".html":   "html",
	".htm":    "html",
	".css":    "css",
	".scss":   "scss",
	".less":   "less",
	".json":   "json",
	".jsonc":  "jsonc",
	".yaml":   "yaml",
	".yml":    "yaml",
	".toml":   "toml",
	".xml":    "xml",
	".md":     "markdown",
	".rst":    "restructuredtext",
	".txt":    "plaintext",
	".ini":    "ini",
	".cfg":    "ini",
	".conf":   "ini",
	".proto":  "proto",
	".tf":     "terraform",
	".lua":    "lua",
	".r":      "r",
	".pl":     "perl",
	".ex":     "elixir",
	".exs":    "elixir",
	".erl":    "erlang",
	".hs":     "haskell",
	".dart":   "dart",
	".vue":    "vue",
	".svelte": "svelte",
}

// DetectLanguage maps a file name to a language tag. Well-known bare names
// are checked before the extension table; unknown inputs yield
// DefaultLanguageTag. The function is total and never fails.
func DetectLanguage(fileName string) string {
	baseName := strings.ToLower(filepath.Base(fileName))
	if languageTag, known := wellKnownFileNames[baseName]; known {
		return languageTag
	}
	extension := filepath.Ext(baseName)
	if languageTag, known := languageByExtension[extension]; known {
		return languageTag
	}
	return DefaultLanguageTag
}
