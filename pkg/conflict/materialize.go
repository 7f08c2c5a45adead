package conflict

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Marker tokens, recognized at line start only. This is a stable interchange
// format: editors must preserve the tokens verbatim for later re-parsing.
const (
	MarkerStart = "<<<<<<<"
	MarkerDiff  = "%%%%%%%"
	MarkerPlus  = "+++++++"
	MarkerEnd   = ">>>>>>>"
)

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Materialize converts a conflict into editable marker text. Each adjacent
// (negative, positive) pair becomes a %%%%%%% section holding a line diff
// from the negative to the positive term; the final positive term is emitted
// verbatim under +++++++.
func Materialize(c *Conflict) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	positives := c.Positives()
	negatives := c.Negatives()

	var buf bytes.Buffer
	buf.WriteString(MarkerStart + "\n")
	for i, negative := range negatives {
		buf.WriteString(MarkerDiff + "\n")
		writeTermDiff(&buf, negative, positives[i])
	}
	buf.WriteString(MarkerPlus + "\n")
	for _, line := range positives[len(positives)-1].lines() {
		buf.WriteString(line)
	}
	buf.WriteString(MarkerEnd + "\n")
	return buf.Bytes(), nil
}

// writeTermDiff emits a whole-term line diff: "-" lines from the negative
// term, "+" lines from the positive, unchanged lines with a leading space.
// All lines are present, so parsing can reconstruct both terms.
func writeTermDiff(buf *bytes.Buffer, negative, positive Term) {
	from := negative.lines()
	to := positive.lines()
	matcher := difflib.NewMatcher(from, to)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range from[op.I1:op.I2] {
				buf.WriteString(" " + line)
			}
		case 'r', 'd', 'i':
			for _, line := range from[op.I1:op.I2] {
				buf.WriteString("-" + line)
			}
			for _, line := range to[op.J1:op.J2] {
				buf.WriteString("+" + line)
			}
		}
	}
}

// Parse converts marker text back into a conflict; the inverse of
// Materialize for unedited terms. Any deviation from the marker grammar
// fails with ErrConflictParse, which callers treat as "user resolved or
// broke the markers".
func Parse(text []byte) (*Conflict, error) {
	lines := splitLines(string(text))
	if len(lines) == 0 || strings.TrimRight(lines[0], "\n") != MarkerStart {
		return nil, fmt.Errorf("%w: missing %s", ErrConflictParse, MarkerStart)
	}

	var positives, negatives []Term
	var cur *sectionState
	sawPlus := false
	for _, raw := range lines[1:] {
		line := strings.TrimRight(raw, "\n")
		switch line {
		case MarkerDiff:
			if sawPlus {
				return nil, fmt.Errorf("%w: %s after %s", ErrConflictParse, MarkerDiff, MarkerPlus)
			}
			if cur != nil {
				positives = append(positives, cur.positive())
				negatives = append(negatives, cur.negative())
			}
			cur = &sectionState{}
			continue
		case MarkerPlus:
			if sawPlus {
				return nil, fmt.Errorf("%w: repeated %s", ErrConflictParse, MarkerPlus)
			}
			if cur != nil {
				positives = append(positives, cur.positive())
				negatives = append(negatives, cur.negative())
			}
			cur = &sectionState{verbatim: true}
			sawPlus = true
			continue
		case MarkerEnd:
			if cur == nil || !sawPlus {
				return nil, fmt.Errorf("%w: unexpected %s", ErrConflictParse, MarkerEnd)
			}
			positives = append(positives, cur.positive())
			return assemble(positives, negatives)
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: content before first section", ErrConflictParse)
		}
		if err := cur.feed(raw); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: missing %s", ErrConflictParse, MarkerEnd)
}

type sectionState struct {
	verbatim bool
	minus    bytes.Buffer // "-" and " " lines: the negative term
	plus     bytes.Buffer // "+" and " " lines: the positive term
}

func (s *sectionState) feed(raw string) error {
	if s.verbatim {
		s.plus.WriteString(raw)
		return nil
	}
	if raw == "" {
		return fmt.Errorf("%w: empty diff line", ErrConflictParse)
	}
	rest := raw[1:]
	switch raw[0] {
	case ' ':
		s.minus.WriteString(rest)
		s.plus.WriteString(rest)
	case '-':
		s.minus.WriteString(rest)
	case '+':
		s.plus.WriteString(rest)
	default:
		return fmt.Errorf("%w: diff line must start with '-', '+' or ' '", ErrConflictParse)
	}
	return nil
}

func (s *sectionState) positive() Term {
	return Term{Content: append([]byte(nil), s.plus.Bytes()...)}
}

func (s *sectionState) negative() Term {
	return Term{Content: append([]byte(nil), s.minus.Bytes()...)}
}

func assemble(positives, negatives []Term) (*Conflict, error) {
	if len(positives) != len(negatives)+1 {
		return nil, fmt.Errorf("%w: %d positive and %d negative terms",
			ErrConflictParse, len(positives), len(negatives))
	}
	c := &Conflict{}
	for i, negative := range negatives {
		c.Terms = append(c.Terms, positives[i], negative)
	}
	c.Terms = append(c.Terms, positives[len(positives)-1])
	return c, nil
}
