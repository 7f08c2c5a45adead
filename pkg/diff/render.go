package diff

import (
	"context"
	"fmt"

	"github.com/grovevc/grove/pkg/store"
)

// StatusLines renders one "<letter> <path>" line per entry
func StatusLines(entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s", e.Status.Letter(), e.Path))
	}
	return lines
}

func summaryHeader(e Entry) string {
	switch e.Status {
	case StatusAdded:
		return fmt.Sprintf("Added regular file %s:", e.Path)
	case StatusRemoved:
		return fmt.Sprintf("Removed regular file %s:", e.Path)
	case StatusConflicted:
		return fmt.Sprintf("Conflict in regular file %s:", e.Path)
	default:
		return fmt.Sprintf("Modified regular file %s:", e.Path)
	}
}

// SummaryLines renders per-entry blocks with side-by-side line numbers:
//
//	Modified regular file file1:
//	   1    1: foo
//	        2: bar
func SummaryLines(ctx context.Context, r store.Reader, entries []Entry) ([]string, error) {
	var lines []string
	for _, e := range entries {
		oldContent, err := ReadEntryContent(ctx, r, e.Old)
		if err != nil {
			return nil, err
		}
		newContent, err := ReadEntryContent(ctx, r, e.New)
		if err != nil {
			return nil, err
		}
		lines = append(lines, summaryHeader(e))
		oldLines, newLines := SplitLines(oldContent), SplitLines(newContent)
		matcher := lineMatcher(oldLines, newLines)
		for _, group := range matcher.GetGroupedOpCodes(hunkContextLines) {
			for _, op := range group {
				switch op.Tag {
				case 'e':
					for k := 0; k < op.I2-op.I1; k++ {
						lines = append(lines, fmt.Sprintf("%4d %4d: %s", op.I1+k+1, op.J1+k+1, oldLines[op.I1+k]))
					}
				case 'r', 'd', 'i':
					for k := op.I1; k < op.I2; k++ {
						lines = append(lines, fmt.Sprintf("%4d %4s: %s", k+1, "", oldLines[k]))
					}
					for k := op.J1; k < op.J2; k++ {
						lines = append(lines, fmt.Sprintf("%4s %4d: %s", "", k+1, newLines[k]))
					}
				}
			}
		}
	}
	return lines, nil
}

const indexHashLen = 10

func shortAddress(content []byte) string {
	return string(store.BlobAddress(content)[:indexHashLen])
}

const zeroAddress = "0000000000"

// GitPatchLines renders entries as git-style patches
func GitPatchLines(ctx context.Context, r store.Reader, entries []Entry) ([]string, error) {
	var lines []string
	for _, e := range entries {
		oldContent, err := ReadEntryContent(ctx, r, e.Old)
		if err != nil {
			return nil, err
		}
		newContent, err := ReadEntryContent(ctx, r, e.New)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("diff --git a/%s b/%s", e.Path, e.Path))
		switch e.Status {
		case StatusAdded:
			lines = append(lines,
				"new file mode 100644",
				fmt.Sprintf("index %s..%s", zeroAddress, shortAddress(newContent)),
				"--- /dev/null",
				fmt.Sprintf("+++ b/%s", e.Path))
		case StatusRemoved:
			lines = append(lines,
				"deleted file mode 100644",
				fmt.Sprintf("index %s..%s", shortAddress(oldContent), zeroAddress),
				fmt.Sprintf("--- a/%s", e.Path),
				"+++ /dev/null")
		default:
			lines = append(lines,
				fmt.Sprintf("index %s...%s 100644", shortAddress(oldContent), shortAddress(newContent)),
				fmt.Sprintf("--- a/%s", e.Path),
				fmt.Sprintf("+++ b/%s", e.Path))
		}
		lines = append(lines, hunkLines(SplitLines(oldContent), SplitLines(newContent))...)
	}
	return lines, nil
}

func hunkLines(oldLines, newLines []string) []string {
	var lines []string
	matcher := lineMatcher(oldLines, newLines)
	for _, group := range matcher.GetGroupedOpCodes(hunkContextLines) {
		first, last := group[0], group[len(group)-1]
		lines = append(lines, fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			first.I1+1, last.I2-first.I1, first.J1+1, last.J2-first.J1))
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, line := range oldLines[op.I1:op.I2] {
					lines = append(lines, " "+line)
				}
			case 'r', 'd', 'i':
				for _, line := range oldLines[op.I1:op.I2] {
					lines = append(lines, "-"+line)
				}
				for _, line := range newLines[op.J1:op.J2] {
					lines = append(lines, "+"+line)
				}
			}
		}
	}
	return lines
}
