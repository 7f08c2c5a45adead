package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/graph"
)

func record(id string, changeID string, parents ...graph.CommitID) *graph.CommitRecord {
	return &graph.CommitRecord{
		CommitID: graph.CommitID(id),
		Commit: &graph.Commit{
			ChangeID: graph.ChangeID(changeID),
			Parents:  parents,
		},
	}
}

func buildIndex(t *testing.T, records ...*graph.CommitRecord) *graph.Index {
	t.Helper()
	index := graph.NewIndex()
	for _, r := range records {
		require.NoError(t, index.Add(r))
	}
	return index
}

func TestIndex_AddOrdering(t *testing.T) {
	index := graph.NewIndex()
	require.ErrorIs(t, index.Add(record("a1", "c1", "missing")), graph.ErrParentNotFound)

	require.NoError(t, index.Add(record("a1", "c1")))
	require.ErrorIs(t, index.Add(record("a1", "c1")), graph.ErrAlreadyExists)

	require.NoError(t, index.Add(record("b2", "c2", "a1")))
	require.Equal(t, 2, index.Len())

	pos, ok := index.Position("b2")
	require.True(t, ok)
	require.Equal(t, 1, pos)
}

func TestIndex_GetByPrefix(t *testing.T) {
	index := buildIndex(t,
		record("aa11", "e901"),
		record("ab22", "e902", "aa11"),
		record("cc33", "f903", "ab22"),
	)

	r, err := index.GetByPrefix("aa")
	require.NoError(t, err)
	require.Equal(t, graph.CommitID("aa11"), r.CommitID)

	// change id prefixes resolve too
	r, err = index.GetByPrefix("f9")
	require.NoError(t, err)
	require.Equal(t, graph.CommitID("cc33"), r.CommitID)

	_, err = index.GetByPrefix("dd")
	require.ErrorIs(t, err, graph.ErrNotFound)

	_, err = index.GetByPrefix("a")
	var ambiguous *graph.AmbiguousPrefixError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, "a", ambiguous.Symbol)
	require.Len(t, ambiguous.Candidates, 2)
}

func TestIndex_HeadsAndRoot(t *testing.T) {
	index := buildIndex(t,
		record("r0", "e0"),
		record("a1", "e1", "r0"),
		record("b2", "e2", "r0"),
		record("m3", "e3", "a1", "b2"),
		record("c4", "e4", "r0"),
	)

	root, err := index.Root()
	require.NoError(t, err)
	require.Equal(t, graph.CommitID("r0"), root.CommitID)

	require.Equal(t, []graph.CommitID{"m3", "c4"}, index.Heads())
	require.Equal(t, []graph.CommitID{"a1", "b2", "c4"}, index.Children("r0"))
}

func TestIsHexPrefix(t *testing.T) {
	require.True(t, graph.IsHexPrefix("ab12"))
	require.True(t, graph.IsHexPrefix("0"))
	require.False(t, graph.IsHexPrefix(""))
	require.False(t, graph.IsHexPrefix("xyz"))
	require.False(t, graph.IsHexPrefix("AB"))
}
