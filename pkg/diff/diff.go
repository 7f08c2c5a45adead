// Package diff computes per-path changes between two tree snapshots and
// renders them as status lines, line-number summaries or git-style patches.
package diff

import (
	"context"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/store"
)

type Status int

const (
	StatusAdded Status = iota
	StatusModified
	StatusRemoved
	StatusConflicted
)

func (s Status) Letter() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusModified:
		return "M"
	case StatusRemoved:
		return "R"
	case StatusConflicted:
		return "C"
	}
	return "?"
}

// Entry is one changed path between two trees
type Entry struct {
	Path   string
	Status Status
	Old    *store.TreeEntry // nil when added
	New    *store.TreeEntry // nil when removed
}

// TreeDiff returns the changed paths between two trees, lexicographic by
// path, restricted to filter.
func TreeDiff(left, right *store.Tree, filter *PathFilter) []Entry {
	var entries []Entry
	i, j := 0, 0
	for i < len(left.Entries) || j < len(right.Entries) {
		var e Entry
		switch {
		case j >= len(right.Entries) || (i < len(left.Entries) && left.Entries[i].Path < right.Entries[j].Path):
			old := left.Entries[i]
			e = Entry{Path: old.Path, Status: StatusRemoved, Old: &old}
			i++
		case i >= len(left.Entries) || right.Entries[j].Path < left.Entries[i].Path:
			next := right.Entries[j]
			e = Entry{Path: next.Path, Status: StatusAdded, New: &next}
			j++
		default:
			old, next := left.Entries[i], right.Entries[j]
			i++
			j++
			if old == next {
				continue
			}
			status := StatusModified
			if next.IsConflict() {
				status = StatusConflicted
			}
			e = Entry{Path: old.Path, Status: status, Old: &old, New: &next}
		}
		if filter.Match(e.Path) {
			entries = append(entries, e)
		}
	}
	return entries
}

// Touches reports whether any path changed between the trees matches filter.
// Used by revset file() queries, which only need a yes/no per commit.
func Touches(left, right *store.Tree, filter *PathFilter) bool {
	return len(TreeDiff(left, right, filter)) > 0
}

// ReadEntryContent resolves a tree entry to text content; conflicted entries
// come back materialized.
func ReadEntryContent(ctx context.Context, r store.Reader, e *store.TreeEntry) ([]byte, error) {
	if e == nil {
		return nil, nil
	}
	if e.IsConflict() {
		c, err := r.GetConflict(ctx, e.Conflict)
		if err != nil {
			return nil, err
		}
		return conflict.Materialize(c)
	}
	return r.GetBlob(ctx, e.Blob)
}
