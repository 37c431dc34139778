// Package workspace resolves filesystem paths to the workspace roots that
// own them.
package workspace

import (
	"strings"

	"github.com/mvoronov/treescan/internal/utils"
)

// Resolver maps arbitrary paths onto a set of registered workspace roots
// using longest-prefix matching at path-segment boundaries. It carries no
// mutable state after construction and is safe for concurrent use.
type Resolver struct {
	defaultRoot string
	roots       []string
}

// NewResolver constructs a Resolver with a fallback root and zero or more
// registered workspace roots. All roots are normalized to forward-slash form.
func NewResolver(defaultRoot string, roots ...string) *Resolver {
	normalizedRoots := make([]string, 0, len(roots))
	for _, rootValue := range roots {
		if strings.TrimSpace(rootValue) == "" {
			continue
		}
		normalizedRoots = append(normalizedRoots, utils.NormalizePath(rootValue))
	}
	return &Resolver{
		defaultRoot: utils.NormalizePath(defaultRoot),
		roots:       normalizedRoots,
	}
}

// ResolveRoot returns the registered root that owns the provided path. The
// owning root is the most specific one whose prefix matches at a segment
// boundary, so sibling roots with a shared string prefix never cross-match.
// When no root matches, the default root is returned; the method never fails.
func (resolver *Resolver) ResolveRoot(pathValue string) string {
	normalizedPath := utils.NormalizePath(pathValue)
	bestRoot := ""
	for _, rootValue := range resolver.roots {
		if !pathBelongsToRoot(normalizedPath, rootValue) {
			continue
		}
		if len(rootValue) > len(bestRoot) {
			bestRoot = rootValue
		}
	}
	if bestRoot == "" {
		return resolver.defaultRoot
	}
	return bestRoot
}

// GroupByRoot buckets the provided paths by their owning root, preserving the
// input order inside every bucket.
func (resolver *Resolver) GroupByRoot(paths []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, pathValue := range paths {
		owningRoot := resolver.ResolveRoot(pathValue)
		grouped[owningRoot] = append(grouped[owningRoot], pathValue)
	}
	return grouped
}

// pathBelongsToRoot reports whether the normalized path equals the root or
// descends from it. Comparison happens at a segment boundary: /ws/project
// never claims /ws/project-extended/src.
func pathBelongsToRoot(normalizedPath string, normalizedRoot string) bool {
	if normalizedPath == normalizedRoot {
		return true
	}
	return strings.HasPrefix(normalizedPath, normalizedRoot+"/")
}
