package diff

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
)

// PathFilter restricts diffs and revset file() queries to matching paths.
// Patterns are glob expressions; a plain path matches itself and everything
// under it.
type PathFilter struct {
	patterns []string
	globs    []glob.Glob
}

// NewPathFilter compiles patterns. All bad patterns are reported together.
func NewPathFilter(patterns []string) (*PathFilter, error) {
	f := &PathFilter{patterns: patterns}
	var merr *multierror.Error
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("pattern %q: %w", pattern, err))
			continue
		}
		f.globs = append(f.globs, g)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return f, nil
}

// Empty reports whether the filter matches everything
func (f *PathFilter) Empty() bool {
	return f == nil || len(f.patterns) == 0
}

func (f *PathFilter) Match(path string) bool {
	if f.Empty() {
		return true
	}
	for i, g := range f.globs {
		if g.Match(path) {
			return true
		}
		// a bare pattern also selects the directory subtree under it
		if pathHasPrefix(path, f.patterns[i]) {
			return true
		}
	}
	return false
}

func pathHasPrefix(path, prefix string) bool {
	if prefix == "." || prefix == "" {
		return true
	}
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}
