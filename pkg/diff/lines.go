package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SplitLines splits content into lines without trailing newlines. Empty
// content has no lines.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	return lines
}

const hunkContextLines = 3

func lineMatcher(old, new []string) *difflib.SequenceMatcher {
	return difflib.NewMatcher(old, new)
}
