package diff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/diff"
	"github.com/grovevc/grove/pkg/store"
)

type fixture struct {
	store *store.MemoryStore
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{store: store.NewMemoryStore(), ctx: context.Background()}
}

func (f *fixture) blobEntry(t *testing.T, path, content string) store.TreeEntry {
	t.Helper()
	id, err := f.store.PutBlob(f.ctx, []byte(content))
	require.NoError(t, err)
	return store.TreeEntry{Path: path, Blob: id}
}

func (f *fixture) conflictEntry(t *testing.T, path string, c *conflict.Conflict) store.TreeEntry {
	t.Helper()
	id, err := f.store.PutConflict(f.ctx, c)
	require.NoError(t, err)
	return store.TreeEntry{Path: path, Conflict: id}
}

func TestTreeDiff(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree([]store.TreeEntry{
		f.blobEntry(t, "changed", "old\n"),
		f.blobEntry(t, "kept", "same\n"),
		f.blobEntry(t, "removed", "gone\n"),
	})
	right := store.NewTree([]store.TreeEntry{
		f.blobEntry(t, "added", "new\n"),
		f.blobEntry(t, "changed", "new\n"),
		f.blobEntry(t, "kept", "same\n"),
	})

	entries := diff.TreeDiff(left, right, nil)
	require.Len(t, entries, 3)
	require.Equal(t, "added", entries[0].Path)
	require.Equal(t, diff.StatusAdded, entries[0].Status)
	require.Equal(t, "changed", entries[1].Path)
	require.Equal(t, diff.StatusModified, entries[1].Status)
	require.Equal(t, "removed", entries[2].Path)
	require.Equal(t, diff.StatusRemoved, entries[2].Status)

	require.Equal(t, []string{"A added", "M changed", "R removed"}, diff.StatusLines(entries))
}

func TestTreeDiff_Conflict(t *testing.T) {
	f := newFixture(t)
	c := conflict.New(
		conflict.Term{Content: []byte("a\n")},
		conflict.Term{Content: []byte("b\n")},
		conflict.Term{Content: []byte("c\n")},
	)
	left := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "a\n")})
	right := store.NewTree([]store.TreeEntry{f.conflictEntry(t, "file1", c)})

	entries := diff.TreeDiff(left, right, nil)
	require.Len(t, entries, 1)
	require.Equal(t, diff.StatusConflicted, entries[0].Status)
	require.Equal(t, []string{"C file1"}, diff.StatusLines(entries))

	// conflicted entries read back materialized
	content, err := diff.ReadEntryContent(f.ctx, f.store, entries[0].New)
	require.NoError(t, err)
	require.Equal(t, "<<<<<<<\n%%%%%%%\n-b\n+a\n+++++++\nc\n>>>>>>>\n", string(content))
}

func TestTreeDiff_Filter(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree(nil)
	right := store.NewTree([]store.TreeEntry{
		f.blobEntry(t, "dir/inner", "x\n"),
		f.blobEntry(t, "other", "y\n"),
	})

	filter, err := diff.NewPathFilter([]string{"dir"})
	require.NoError(t, err)
	entries := diff.TreeDiff(left, right, filter)
	require.Len(t, entries, 1)
	require.Equal(t, "dir/inner", entries[0].Path)

	require.True(t, diff.Touches(left, right, filter))
	noMatch, err := diff.NewPathFilter([]string{"missing"})
	require.NoError(t, err)
	require.False(t, diff.Touches(left, right, noMatch))
}

func TestSplitLines(t *testing.T) {
	require.Nil(t, diff.SplitLines(nil))
	require.Equal(t, []string{"foo"}, diff.SplitLines([]byte("foo\n")))
	require.Equal(t, []string{"foo", "bar"}, diff.SplitLines([]byte("foo\nbar\n")))
	require.Equal(t, []string{"foo", "bar"}, diff.SplitLines([]byte("foo\nbar")))
}
