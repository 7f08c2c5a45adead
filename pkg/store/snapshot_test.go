package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/store"
)

const snapshotYAML = `
working_copy: second
commits:
  - name: root
  - name: first
    description: add a file
    parents: [root]
    author:
      name: Test User
      email: test.user@example.com
      when: 2001-02-03T04:05:07Z
    files:
      file1: "foo\n"
  - name: second
    description: a new commit
    parents: [first]
    files:
      file1: "foo\nbar\n"
    conflicts:
      file2:
        - content: "b\n"
        - content: "a\n"
        - content: "c\n"
`

func TestImportSnapshot(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	workingCopy, err := store.ImportSnapshot(ctx, s, []byte(snapshotYAML))
	require.NoError(t, err)

	records, err := s.ListCommits(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "", records[0].Description)
	require.Equal(t, "add a file", records[1].Description)
	require.Equal(t, "a new commit", records[2].Description)
	require.Equal(t, records[2].CommitID, workingCopy)
	require.Equal(t, records[1].CommitID, records[2].Parents[0])

	// change ids are minted when the snapshot doesn't set them
	require.NotEmpty(t, records[0].ChangeID)
	require.Equal(t, "Test User", records[1].Author.Name)

	// the second commit's tree mixes a plain file and a conflict
	tree, err := s.GetTree(ctx, records[2].TreeID)
	require.NoError(t, err)
	e, ok := tree.Lookup("file1")
	require.True(t, ok)
	require.False(t, e.IsConflict())
	e, ok = tree.Lookup("file2")
	require.True(t, ok)
	require.True(t, e.IsConflict())
	c, err := s.GetConflict(ctx, e.Conflict)
	require.NoError(t, err)
	require.Len(t, c.Terms, 3)

	got, err := s.WorkingCopy(ctx)
	require.NoError(t, err)
	require.Equal(t, workingCopy, got)
}

func TestImportSnapshot_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := store.ImportSnapshot(ctx, store.NewMemoryStore(), []byte("commits: [{name: a, parents: [missing]}]\nworking_copy: a"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown parent")

	_, err = store.ImportSnapshot(ctx, store.NewMemoryStore(), []byte("commits: [{name: a}]\nworking_copy: nope"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "working_copy")

	_, err = store.ImportSnapshot(ctx, store.NewMemoryStore(), []byte("commits: [{name: a}, {name: a}]\nworking_copy: a"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")

	_, err = store.ImportSnapshot(ctx, store.NewMemoryStore(), []byte(":::not yaml"))
	require.Error(t, err)
}
