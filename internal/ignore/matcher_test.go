package ignore_test

import (
	"testing"

	"github.com/mvoronov/treescan/internal/ignore"
)

// TestMatches verifies glob evaluation over workspace-relative paths.
func TestMatches(testingHandle *testing.T) {
	matcher := ignore.NewMatcher(nil)

	testCases := []struct {
		name          string
		relativePath  string
		pattern       string
		expectedMatch bool
	}{
		{
			name:          "GlobOverFullPath",
			relativePath:  "error.log",
			pattern:       "*.log",
			expectedMatch: true,
		},
		{
			name:          "GlobIsPathAnchored",
			relativePath:  "dir/file.txt",
			pattern:       "file.txt",
			expectedMatch: false,
		},
		{
			name:          "CaseInsensitive",
			relativePath:  "README.MD",
			pattern:       "readme.md",
			expectedMatch: true,
		},
		{
			name:          "SubtreePatternMatchesBase",
			relativePath:  "node_modules",
			pattern:       "node_modules/**",
			expectedMatch: true,
		},
		{
			name:          "SubtreePatternMatchesDescendant",
			relativePath:  "node_modules/pkg/index.js",
			pattern:       "node_modules/**",
			expectedMatch: true,
		},
		{
			name:          "SubtreePatternSparesSibling",
			relativePath:  "node_modules.json",
			pattern:       "node_modules/**",
			expectedMatch: false,
		},
		{
			name:          "TrailingSlashMatchesDirectory",
			relativePath:  "dist",
			pattern:       "dist/",
			expectedMatch: true,
		},
		{
			name:          "TrailingSlashMatchesDescendant",
			relativePath:  "dist/bundle.js",
			pattern:       "dist/",
			expectedMatch: true,
		},
		{
			name:          "TrailingSlashSparesSibling",
			relativePath:  "distribution.md",
			pattern:       "dist/",
			expectedMatch: false,
		},
		{
			name:          "DotfilesIncluded",
			relativePath:  ".env",
			pattern:       ".env",
			expectedMatch: true,
		},
		{
			name:          "MalformedGlobNeverMatches",
			relativePath:  "anything.txt",
			pattern:       "[unclosed",
			expectedMatch: false,
		},
		{
			name:          "EmptyPatternNeverMatches",
			relativePath:  "anything.txt",
			pattern:       "   ",
			expectedMatch: false,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			result := matcher.Matches(testCase.relativePath, testCase.pattern)
			if result != testCase.expectedMatch {
				testingHandle.Fatalf("expected %v, got %v", testCase.expectedMatch, result)
			}
		})
	}
}

// TestShouldExclude verifies the layered precedence of the exclusion decision.
func TestShouldExclude(testingHandle *testing.T) {
	matcher := ignore.NewMatcher(nil)

	testCases := []struct {
		name             string
		relativePath     string
		selectedPath     string
		rules            ignore.ExclusionRules
		expectedExcluded bool
	}{
		{
			name:         "SelectedPathExempt",
			relativePath: "build/output.txt",
			selectedPath: "build/output.txt",
			rules: ignore.ExclusionRules{
				Gitignore:       ignore.RuleSet{Patterns: []string{"build/**"}, Loaded: true},
				ExcludePatterns: []string{"*.txt"},
			},
			expectedExcluded: false,
		},
		{
			name:         "GitignorePatternExcludes",
			relativePath: "error.log",
			rules: ignore.ExclusionRules{
				Gitignore: ignore.RuleSet{Patterns: []string{"*.log"}, Loaded: true},
			},
			expectedExcluded: true,
		},
		{
			name:         "IgnoreFilePatternExcludes",
			relativePath: "scratch.tmp",
			rules: ignore.ExclusionRules{
				IgnoreFile: ignore.RuleSet{Patterns: []string{"*.tmp"}, Loaded: true},
			},
			expectedExcluded: true,
		},
		{
			name:         "ConfiguredPatternExcludes",
			relativePath: "error.log",
			rules: ignore.ExclusionRules{
				ExcludePatterns: []string{"*.log"},
			},
			expectedExcluded: true,
		},
		{
			name:         "NegationWinsWithinKind",
			relativePath: "keep.log",
			rules: ignore.ExclusionRules{
				Gitignore: ignore.RuleSet{
					Patterns:        []string{"*.log"},
					NegatedPatterns: []string{"keep.log"},
					Loaded:          true,
				},
			},
			expectedExcluded: false,
		},
		{
			name:         "GitignoreNegationDefeatsIgnoreFilePattern",
			relativePath: "keep.log",
			rules: ignore.ExclusionRules{
				Gitignore:  ignore.RuleSet{NegatedPatterns: []string{"keep.log"}, Loaded: true},
				IgnoreFile: ignore.RuleSet{Patterns: []string{"*.log"}, Loaded: true},
			},
			expectedExcluded: false,
		},
		{
			name:         "IgnoreFileNegationDefeatsGitignorePattern",
			relativePath: "keep.log",
			rules: ignore.ExclusionRules{
				Gitignore:  ignore.RuleSet{Patterns: []string{"*.log"}, Loaded: true},
				IgnoreFile: ignore.RuleSet{NegatedPatterns: []string{"keep.log"}, Loaded: true},
			},
			expectedExcluded: false,
		},
		{
			name:         "ConfiguredExcludeBeatsNegation",
			relativePath: "keep.log",
			rules: ignore.ExclusionRules{
				Gitignore:       ignore.RuleSet{NegatedPatterns: []string{"keep.log"}, Loaded: true},
				ExcludePatterns: []string{"*.log"},
			},
			expectedExcluded: true,
		},
		{
			name:             "NothingMatchesIncludes",
			relativePath:     "src/main.go",
			rules:            ignore.ExclusionRules{},
			expectedExcluded: false,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			result := matcher.ShouldExclude(testCase.relativePath, testCase.selectedPath, testCase.rules)
			if result != testCase.expectedExcluded {
				testingHandle.Fatalf("expected %v, got %v", testCase.expectedExcluded, result)
			}
		})
	}
}
