package ignore

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/utils"
)

const (
	// directoryPatternSuffix marks a pattern that matches a directory and
	// all of its descendants.
	directoryPatternSuffix = "/"
	// subtreePatternSuffix is the explicit recursive form of a directory
	// pattern.
	subtreePatternSuffix = "/**"
)

// ExclusionRules bundles every pattern source consulted for one exclusion
// decision: the two cached ignore-file rule sets of the owning workspace root
// plus the caller-configured exclude patterns.
type ExclusionRules struct {
	Gitignore       RuleSet
	IgnoreFile      RuleSet
	ExcludePatterns []string
}

// Matcher evaluates glob patterns against workspace-relative paths. Matching
// is case-insensitive, includes dotfiles, and is anchored to the full
// relative path rather than the basename.
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher constructs a Matcher. A nil logger is replaced with a no-op
// logger.
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{logger: utils.LoggerOrNop(logger)}
}

// Matches reports whether the relative path matches the pattern. A pattern
// with a trailing "/" or "/**" matches the named directory and everything
// beneath it; every other pattern is evaluated as a shell glob over the whole
// relative path. A malformed glob never matches and is logged, so one bad
// pattern cannot block a scan.
func (matcher *Matcher) Matches(relativePath string, pattern string) bool {
	loweredPath := strings.ToLower(strings.TrimPrefix(relativePath, "/"))
	loweredPattern := strings.ToLower(strings.TrimSpace(pattern))
	if loweredPattern == "" {
		return false
	}

	if strings.HasSuffix(loweredPattern, subtreePatternSuffix) {
		basePattern := strings.TrimSuffix(loweredPattern, subtreePatternSuffix)
		return loweredPath == basePattern || strings.HasPrefix(loweredPath, basePattern+"/")
	}

	if strings.HasSuffix(loweredPattern, directoryPatternSuffix) {
		directoryPattern := strings.TrimSuffix(loweredPattern, directoryPatternSuffix)
		return loweredPath == directoryPattern || strings.HasPrefix(loweredPath, directoryPattern+"/")
	}

	matched, matchError := filepath.Match(loweredPattern, loweredPath)
	if matchError != nil {
		matcher.logger.Warn("malformed exclude pattern",
			zap.String("pattern", pattern),
			zap.Error(matchError))
		return false
	}
	return matched
}

// ShouldExclude decides whether the relative path is excluded from a scan.
// The tiers run in strict precedence order:
//
//  1. the caller-selected path itself is never excluded;
//  2. gitignore negations force-include;
//  3. .ignore negations force-include;
//  4. gitignore patterns exclude;
//  5. .ignore patterns exclude;
//  6. caller-configured exclude patterns exclude.
//
// A negation defeats the ignore-file exclusion tiers only. Configured
// exclude patterns sit below the reach of any negation, so a path matching
// both a negation and a configured exclude stays excluded.
func (matcher *Matcher) ShouldExclude(relativePath string, selectedPath string, rules ExclusionRules) bool {
	if relativePath == selectedPath {
		return false
	}
	if matcher.matchesAny(relativePath, rules.Gitignore.NegatedPatterns) ||
		matcher.matchesAny(relativePath, rules.IgnoreFile.NegatedPatterns) {
		return matcher.matchesAny(relativePath, rules.ExcludePatterns)
	}
	if matcher.matchesAny(relativePath, rules.Gitignore.Patterns) {
		return true
	}
	if matcher.matchesAny(relativePath, rules.IgnoreFile.Patterns) {
		return true
	}
	return matcher.matchesAny(relativePath, rules.ExcludePatterns)
}

// matchesAny reports whether any pattern in the list matches the path.
func (matcher *Matcher) matchesAny(relativePath string, patterns []string) bool {
	for _, patternValue := range patterns {
		if matcher.Matches(relativePath, patternValue) {
			return true
		}
	}
	return false
}
