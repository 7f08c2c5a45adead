package diff_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/diff"
	"github.com/grovevc/grove/pkg/store"
)

func shortHash(content string) string {
	return string(store.BlobAddress([]byte(content)))[:10]
}

func TestSummaryLines_Modified(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\n")})
	right := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\nbar\n")})

	lines, err := diff.SummaryLines(f.ctx, f.store, diff.TreeDiff(left, right, nil))
	require.NoError(t, err)
	require.Equal(t, []string{
		"Modified regular file file1:",
		"   1    1: foo",
		"        2: bar",
	}, lines)
}

func TestSummaryLines_AddedAndRemoved(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree([]store.TreeEntry{f.blobEntry(t, "old", "gone\n")})
	right := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\n")})

	lines, err := diff.SummaryLines(f.ctx, f.store, diff.TreeDiff(left, right, nil))
	require.NoError(t, err)
	require.Equal(t, []string{
		"Added regular file file1:",
		"        1: foo",
		"Removed regular file old:",
		"   1     : gone",
	}, lines)
}

func TestSummaryLines_Replaced(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\nbar\n")})
	right := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\nbaz\n")})

	lines, err := diff.SummaryLines(f.ctx, f.store, diff.TreeDiff(left, right, nil))
	require.NoError(t, err)
	require.Equal(t, []string{
		"Modified regular file file1:",
		"   1    1: foo",
		"   2     : bar",
		"        2: baz",
	}, lines)
}

func TestGitPatchLines_Modified(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\n")})
	right := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\nbar\n")})

	lines, err := diff.GitPatchLines(f.ctx, f.store, diff.TreeDiff(left, right, nil))
	require.NoError(t, err)
	require.Equal(t, []string{
		"diff --git a/file1 b/file1",
		fmt.Sprintf("index %s...%s 100644", shortHash("foo\n"), shortHash("foo\nbar\n")),
		"--- a/file1",
		"+++ b/file1",
		"@@ -1,1 +1,2 @@",
		" foo",
		"+bar",
	}, lines)
}

func TestGitPatchLines_Added(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree(nil)
	right := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\n")})

	lines, err := diff.GitPatchLines(f.ctx, f.store, diff.TreeDiff(left, right, nil))
	require.NoError(t, err)
	require.Equal(t, []string{
		"diff --git a/file1 b/file1",
		"new file mode 100644",
		fmt.Sprintf("index 0000000000..%s", shortHash("foo\n")),
		"--- /dev/null",
		"+++ b/file1",
		"@@ -1,0 +1,1 @@",
		"+foo",
	}, lines)
}

func TestGitPatchLines_Removed(t *testing.T) {
	f := newFixture(t)
	left := store.NewTree([]store.TreeEntry{f.blobEntry(t, "file1", "foo\n")})
	right := store.NewTree(nil)

	lines, err := diff.GitPatchLines(f.ctx, f.store, diff.TreeDiff(left, right, nil))
	require.NoError(t, err)
	require.Equal(t, []string{
		"diff --git a/file1 b/file1",
		"deleted file mode 100644",
		fmt.Sprintf("index %s..0000000000", shortHash("foo\n")),
		"--- a/file1",
		"+++ /dev/null",
		"@@ -1,1 +1,0 @@",
		"-foo",
	}, lines)
}
