// Package ignore loads, caches, and evaluates the ignore rules of workspace
// roots.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/utils"
)

// Kind identifies one of the two supported ignore-file grammars.
type Kind string

const (
	// KindGitignore is the Git-style ignore file at a workspace root.
	KindGitignore Kind = "gitignore"
	// KindIgnoreFile is the packaging-style .ignore file at a workspace root.
	KindIgnoreFile Kind = "ignore"

	// gitignoreFileName is the on-disk name of the Git-style ignore file.
	gitignoreFileName = ".gitignore"
	// ignoreFileName is the on-disk name of the packaging-style ignore file.
	ignoreFileName = ".ignore"

	// commentLinePrefix marks ignore-file lines dropped during parsing.
	commentLinePrefix = "#"
	// negationPrefix marks ignore-file lines that force-include matches.
	negationPrefix = "!"
)

// Kinds lists every supported ignore-file kind in evaluation order.
var Kinds = []Kind{KindGitignore, KindIgnoreFile}

// FileName returns the on-disk name of the ignore file for the kind.
func (kind Kind) FileName() string {
	if kind == KindGitignore {
		return gitignoreFileName
	}
	return ignoreFileName
}

// RuleSet holds the parsed patterns of one ignore file. Patterns keep the
// order of the source lines; negated patterns are stored with the leading
// "!" stripped.
type RuleSet struct {
	Patterns        []string
	NegatedPatterns []string
	Loaded          bool
}

// storeKey addresses one rule set inside the store cache.
type storeKey struct {
	root string
	kind Kind
}

// Store is the per-process cache of ignore rule sets, keyed by workspace root
// and ignore-file kind. Entries load lazily on first request and reset on
// Invalidate; reloading happens on the next request, never by polling.
type Store struct {
	mutex   sync.Mutex
	entries map[storeKey]*RuleSet
	logger  *zap.Logger
}

// NewStore constructs an empty rule store. A nil logger is replaced with a
// no-op logger.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		entries: map[storeKey]*RuleSet{},
		logger:  utils.LoggerOrNop(logger),
	}
}

// Load returns the rule set for the root and kind, reading the backing
// ignore file on first use. A missing file yields an empty loaded set; any
// other read failure is logged and likewise yields an empty loaded set, so
// rule loading never aborts a scan. The returned value is a copy.
func (store *Store) Load(root string, kind Kind) RuleSet {
	normalizedRoot := utils.NormalizePath(root)
	key := storeKey{root: normalizedRoot, kind: kind}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	entry, exists := store.entries[key]
	if exists && entry.Loaded {
		return *entry
	}

	loaded := store.readRules(filepath.Join(filepath.FromSlash(normalizedRoot), kind.FileName()))
	store.entries[key] = &loaded
	return loaded
}

// Invalidate resets the cached rule sets for the given root. When kinds are
// provided only those sets reset; otherwise both kinds reset. The next Load
// for an invalidated pair re-reads the ignore file from disk.
func (store *Store) Invalidate(root string, kinds ...Kind) {
	normalizedRoot := utils.NormalizePath(root)
	if len(kinds) == 0 {
		kinds = Kinds
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	for _, kind := range kinds {
		delete(store.entries, storeKey{root: normalizedRoot, kind: kind})
	}
}

// InvalidateAll drops every cached rule set for every root.
func (store *Store) InvalidateAll() {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.entries = map[storeKey]*RuleSet{}
}

// readRules parses the ignore file at the given path into a loaded rule set.
func (store *Store) readRules(ignoreFilePath string) RuleSet {
	result := RuleSet{Loaded: true}

	fileHandle, openError := os.Open(ignoreFilePath)
	if openError != nil {
		if !os.IsNotExist(openError) {
			store.logger.Warn("unable to read ignore file",
				zap.String("path", ignoreFilePath),
				zap.Error(openError))
		}
		return result
	}
	defer fileHandle.Close()

	lineScanner := bufio.NewScanner(fileHandle)
	for lineScanner.Scan() {
		trimmedLine := strings.TrimSpace(lineScanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentLinePrefix) {
			continue
		}
		if strings.HasPrefix(trimmedLine, negationPrefix) {
			negatedPattern := strings.TrimSpace(strings.TrimPrefix(trimmedLine, negationPrefix))
			if negatedPattern != "" {
				result.NegatedPatterns = append(result.NegatedPatterns, negatedPattern)
			}
			continue
		}
		result.Patterns = append(result.Patterns, trimmedLine)
	}
	if scanError := lineScanner.Err(); scanError != nil {
		store.logger.Warn("error while reading ignore file",
			zap.String("path", ignoreFilePath),
			zap.Error(scanError))
		return RuleSet{Loaded: true}
	}

	return result
}
