// Package testutil builds in-memory repositories for tests
package testutil

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/store"
)

// RepoBuilder accumulates commits in a memory store. Files map paths to
// content; a nil entry inherits nothing, each commit's tree is given in full.
type RepoBuilder struct {
	T     *testing.T
	Store *store.MemoryStore
	ctx   context.Context
	clock time.Time
}

func NewRepoBuilder(t *testing.T) *RepoBuilder {
	t.Helper()
	return &RepoBuilder{
		T:     t,
		Store: store.NewMemoryStore(),
		ctx:   context.Background(),
		clock: time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func (b *RepoBuilder) signature() graph.Signature {
	b.clock = b.clock.Add(time.Minute)
	return graph.Signature{Name: "Test User", Email: "test.user@example.com", When: b.clock}
}

func (b *RepoBuilder) tree(files map[string]string, conflicts map[string]*conflict.Conflict) graph.TreeID {
	b.T.Helper()
	var entries []store.TreeEntry
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		blobID, err := b.Store.PutBlob(b.ctx, []byte(files[path]))
		require.NoError(b.T, err)
		entries = append(entries, store.TreeEntry{Path: path, Blob: blobID})
	}
	paths = paths[:0]
	for path := range conflicts {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		conflictID, err := b.Store.PutConflict(b.ctx, conflicts[path])
		require.NoError(b.T, err)
		entries = append(entries, store.TreeEntry{Path: path, Conflict: conflictID})
	}
	treeID, err := b.Store.PutTree(b.ctx, store.NewTree(entries))
	require.NoError(b.T, err)
	return treeID
}

// Commit adds a commit whose tree holds exactly the given files
func (b *RepoBuilder) Commit(description string, parents []graph.CommitID, files map[string]string) graph.CommitID {
	b.T.Helper()
	return b.CommitWithConflicts(description, parents, files, nil)
}

// CommitWithConflicts adds a commit whose tree mixes plain files and
// unresolved conflicts.
func (b *RepoBuilder) CommitWithConflicts(description string, parents []graph.CommitID, files map[string]string, conflicts map[string]*conflict.Conflict) graph.CommitID {
	b.T.Helper()
	sig := b.signature()
	commit := &graph.Commit{
		ChangeID:    graph.NewChangeID(),
		Parents:     parents,
		Description: description,
		Author:      sig,
		Committer:   sig,
		TreeID:      b.tree(files, conflicts),
	}
	record := &graph.CommitRecord{CommitID: commit.ID(), Commit: commit}
	require.NoError(b.T, b.Store.AddCommit(b.ctx, record))
	return record.CommitID
}

// Root adds the empty root commit
func (b *RepoBuilder) Root() graph.CommitID {
	b.T.Helper()
	return b.Commit("", nil, nil)
}

func (b *RepoBuilder) SetWorkingCopy(id graph.CommitID) {
	b.T.Helper()
	require.NoError(b.T, b.Store.SetWorkingCopy(b.ctx, id))
}

// Index loads the built graph into an index
func (b *RepoBuilder) Index() *graph.Index {
	b.T.Helper()
	index, err := store.LoadIndex(b.ctx, b.Store)
	require.NoError(b.T, err)
	return index
}

// Ancestry builds an ancestry resolver over the current index
func (b *RepoBuilder) Ancestry(index *graph.Index) *graph.Ancestry {
	b.T.Helper()
	ancestry, err := graph.NewAncestry(index)
	require.NoError(b.T, err)
	return ancestry
}
