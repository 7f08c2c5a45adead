package conflict

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed     = errors.New("malformed conflict")
	ErrConflictParse = errors.New("conflict parse failed")
)

// Term is one content reference in a multi-way conflict. Terms alternate
// polarity by position: even positions are positive, odd positions negative.
// An absent term stands for "file did not exist on that side".
type Term struct {
	Absent  bool
	Content []byte
}

// Conflict is an ordered term list, starting and ending positive. An octopus
// merge of k sides yields k positive and k-1 negative terms. A single
// positive term is not a conflict anymore (resolved).
type Conflict struct {
	Terms []Term
}

func New(terms ...Term) *Conflict {
	return &Conflict{Terms: terms}
}

func (c *Conflict) Validate() error {
	if len(c.Terms) == 0 || len(c.Terms)%2 == 0 {
		return fmt.Errorf("%w: %d terms, want odd count", ErrMalformed, len(c.Terms))
	}
	return nil
}

// Resolved reports whether the term list collapsed to a single positive term
func (c *Conflict) Resolved() bool {
	return len(c.Terms) == 1
}

// Positives returns the positive terms in order
func (c *Conflict) Positives() []Term {
	terms := make([]Term, 0, (len(c.Terms)+1)/2)
	for i := 0; i < len(c.Terms); i += 2 {
		terms = append(terms, c.Terms[i])
	}
	return terms
}

// Negatives returns the negative terms in order
func (c *Conflict) Negatives() []Term {
	terms := make([]Term, 0, len(c.Terms)/2)
	for i := 1; i < len(c.Terms); i += 2 {
		terms = append(terms, c.Terms[i])
	}
	return terms
}

func (t Term) lines() []string {
	if t.Absent {
		return nil
	}
	return splitLines(string(t.Content))
}
