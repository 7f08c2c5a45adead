package diff_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/diff"
)

func TestPathFilter(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"empty matches all", nil, "any/path", true},
		{"exact", []string{"file1"}, "file1", true},
		{"exact no match", []string{"file1"}, "file2", false},
		{"directory subtree", []string{"dir"}, "dir/inner/file", true},
		{"directory no partial prefix", []string{"dir"}, "dirother", false},
		{"glob star", []string{"*.txt"}, "notes.txt", true},
		{"glob star not across separator", []string{"*.txt"}, "dir/notes.txt", false},
		{"glob double star", []string{"**.txt"}, "dir/notes.txt", true},
		{"dot matches all", []string{"."}, "dir/file", true},
		{"multiple patterns", []string{"a", "b"}, "b/c", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := diff.NewPathFilter(tt.patterns)
			require.NoError(t, err)
			require.Equal(t, tt.want, filter.Match(tt.path))
		})
	}
}

func TestPathFilter_BadPatterns(t *testing.T) {
	_, err := diff.NewPathFilter([]string{"[unclosed", "also[bad"})
	require.Error(t, err)
	// both bad patterns are reported
	require.Contains(t, err.Error(), "[unclosed")
	require.Contains(t, err.Error(), "also[bad")
}

func TestPathFilter_Empty(t *testing.T) {
	var nilFilter *diff.PathFilter
	require.True(t, nilFilter.Empty())
	require.True(t, nilFilter.Match("anything"))

	filter, err := diff.NewPathFilter([]string{"x"})
	require.NoError(t, err)
	require.False(t, filter.Empty())
}
