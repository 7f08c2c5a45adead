package template_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/template"
)

func testRecord() *graph.CommitRecord {
	when := time.Date(2001, 2, 3, 4, 5, 9, 0, time.FixedZone("", 7*60*60))
	return &graph.CommitRecord{
		CommitID: "0123456789abcdef0123456789abcdef",
		Commit: &graph.Commit{
			ChangeID:    "ffeeddccbbaa99887766554433221100",
			Parents:     graph.CommitParents{"p1p1p1", "p2p2p2"},
			Description: "first line\nsecond line\n",
			Author:      graph.Signature{Name: "Test User", Email: "test.user@example.com", When: when},
			Committer:   graph.Signature{Name: "Test Committer", Email: "committer@example.com", When: when},
		},
	}
}

func eval(t *testing.T, src string) (string, error) {
	t.Helper()
	tpl, err := template.Parse(src)
	require.NoError(t, err)
	return tpl.Eval(template.CommitContext{Record: testRecord()})
}

func TestEval_Fields(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`description`, "first line\nsecond line\n"},
		{`description.first_line()`, "first line"},
		{`commit_id`, "0123456789abcdef0123456789abcdef"},
		{`commit_id.short(12)`, "0123456789ab"},
		{`change_id.short(12)`, "ffeeddccbbaa"},
		{`author`, "Test User <test.user@example.com>"},
		{`author.name()`, "Test User"},
		{`author.email()`, "test.user@example.com"},
		{`committer.name()`, "Test Committer"},
		{`parents.join(", ")`, "p1p1p1, p2p2p2"},
		{`parents.len()`, "2"},
		{`commit_id.short(8) " " description.first_line()`, "01234567 first line"},
		{`"literal\ntext"`, "literal\ntext"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := eval(t, tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Timestamp(t *testing.T) {
	got, err := eval(t, `author.timestamp()`)
	require.NoError(t, err)
	require.Equal(t, "2001-02-03 04:05:09.000 +07:00", got)

	got, err = eval(t, `author.timestamp().format("2006-01-02")`)
	require.NoError(t, err)
	require.Equal(t, "2001-02-03", got)
}

func TestEval_TimestampAgo(t *testing.T) {
	got, err := eval(t, `author.timestamp().ago()`)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9]+ years ago$`), got)
}

func TestEval_TypeError(t *testing.T) {
	_, err := eval(t, `description.ago()`)
	var typeErr *template.TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, "ago", typeErr.Method)
	require.Equal(t, template.KindString, typeErr.Kind)
}

func TestEval_KeywordError(t *testing.T) {
	_, err := eval(t, `no_such_field`)
	var kwErr *template.KeywordError
	require.ErrorAs(t, err, &kwErr)
	require.Equal(t, "no_such_field", kwErr.Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
	}{
		{`description.`, 12},
		{`description.first_line`, 22},
		{`description.first_line(`, 23},
		{`"unterminated`, 0},
		{`commit_id.short(12,`, 19},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := template.Parse(tt.src)
			var parseErr *template.ParseError
			require.ErrorAs(t, err, &parseErr)
			require.Equal(t, tt.offset, parseErr.Offset)
		})
	}
}

func TestEval_FileContext(t *testing.T) {
	tpl, err := template.Parse(`path`)
	require.NoError(t, err)
	got, err := tpl.Eval(template.FileContext{Path: "dir/file2"})
	require.NoError(t, err)
	require.Equal(t, "dir/file2", got)
}
