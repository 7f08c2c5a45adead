package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/store"
)

func TestTree_Lookup(t *testing.T) {
	tree := store.NewTree([]store.TreeEntry{
		{Path: "b/file", Blob: "blob2"},
		{Path: "a", Blob: "blob1"},
		{Path: "c", Conflict: "conf1"},
	})

	// entries sorted on construction
	require.Equal(t, "a", tree.Entries[0].Path)
	require.Equal(t, "b/file", tree.Entries[1].Path)

	e, ok := tree.Lookup("a")
	require.True(t, ok)
	require.Equal(t, store.BlobID("blob1"), e.Blob)
	require.False(t, e.IsConflict())

	e, ok = tree.Lookup("c")
	require.True(t, ok)
	require.True(t, e.IsConflict())

	_, ok = tree.Lookup("b")
	require.False(t, ok)
	require.True(t, tree.HasDirectory("b"))
	require.False(t, tree.HasDirectory("a"))
}

func TestTree_ID(t *testing.T) {
	a := store.NewTree([]store.TreeEntry{{Path: "x", Blob: "b1"}})
	b := store.NewTree([]store.TreeEntry{{Path: "x", Blob: "b1"}})
	c := store.NewTree([]store.TreeEntry{{Path: "x", Blob: "b2"}})
	require.Equal(t, a.ID(), b.ID())
	require.NotEqual(t, a.ID(), c.ID())
}

func testStoreRoundTrip(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	blobID, err := s.PutBlob(ctx, []byte("foo\n"))
	require.NoError(t, err)
	content, err := s.GetBlob(ctx, blobID)
	require.NoError(t, err)
	require.Equal(t, "foo\n", string(content))
	_, err = s.GetBlob(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	c := conflict.New(
		conflict.Term{Content: []byte("b\n")},
		conflict.Term{Content: []byte("a\n")},
		conflict.Term{Content: []byte("c\n")},
	)
	conflictID, err := s.PutConflict(ctx, c)
	require.NoError(t, err)
	got, err := s.GetConflict(ctx, conflictID)
	require.NoError(t, err)
	require.Equal(t, c.Terms, got.Terms)

	tree := store.NewTree([]store.TreeEntry{{Path: "file1", Blob: blobID}})
	treeID, err := s.PutTree(ctx, tree)
	require.NoError(t, err)
	gotTree, err := s.GetTree(ctx, treeID)
	require.NoError(t, err)
	require.Equal(t, tree.Entries, gotTree.Entries)

	_, err = s.WorkingCopy(ctx)
	require.ErrorIs(t, err, store.ErrNoWorkingCopy)

	commit := &graph.Commit{ChangeID: graph.NewChangeID(), Description: "first", TreeID: treeID}
	record := &graph.CommitRecord{CommitID: commit.ID(), Commit: commit}
	require.NoError(t, s.AddCommit(ctx, record))
	child := &graph.Commit{ChangeID: graph.NewChangeID(), Description: "second", TreeID: treeID,
		Parents: graph.CommitParents{record.CommitID}}
	childRecord := &graph.CommitRecord{CommitID: child.ID(), Commit: child}
	require.NoError(t, s.AddCommit(ctx, childRecord))
	require.NoError(t, s.SetWorkingCopy(ctx, childRecord.CommitID))

	records, err := s.ListCommits(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, record.CommitID, records[0].CommitID)
	require.Equal(t, childRecord.CommitID, records[1].CommitID)

	workingCopy, err := s.WorkingCopy(ctx)
	require.NoError(t, err)
	require.Equal(t, childRecord.CommitID, workingCopy)
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	testStoreRoundTrip(t, s)
	require.NoError(t, s.Close())
}

func TestPebbleStore(t *testing.T) {
	s, err := store.OpenPebble(t.TempDir())
	require.NoError(t, err)
	testStoreRoundTrip(t, s)
	require.NoError(t, s.Close())
}

func TestPebbleStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.OpenPebble(dir)
	require.NoError(t, err)
	commit := &graph.Commit{ChangeID: graph.NewChangeID(), Description: "persisted"}
	record := &graph.CommitRecord{CommitID: commit.ID(), Commit: commit}
	require.NoError(t, s.AddCommit(ctx, record))
	require.NoError(t, s.SetWorkingCopy(ctx, record.CommitID))
	require.NoError(t, s.Close())

	s, err = store.OpenPebble(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	records, err := s.ListCommits(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "persisted", records[0].Description)
	workingCopy, err := s.WorkingCopy(ctx)
	require.NoError(t, err)
	require.Equal(t, record.CommitID, workingCopy)
}

func TestLoadIndex(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	root := &graph.Commit{ChangeID: graph.NewChangeID(), Description: "root"}
	rootRecord := &graph.CommitRecord{CommitID: root.ID(), Commit: root}
	require.NoError(t, s.AddCommit(ctx, rootRecord))

	index, err := store.LoadIndex(ctx, s)
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())
	got, err := index.Get(rootRecord.CommitID)
	require.NoError(t, err)
	require.Equal(t, "root", got.Description)
}
