package graph

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("parent not found")
	ErrAlreadyExists  = errors.New("commit already exists")
	ErrNoRoot         = errors.New("graph has no root commit")
)

// AmbiguousPrefixError is returned when an identifier prefix matches more
// than one commit.
type AmbiguousPrefixError struct {
	Symbol     string
	Candidates []CommitID
}

func (e *AmbiguousPrefixError) Error() string {
	candidates := make([]string, len(e.Candidates))
	for i, id := range e.Candidates {
		candidates[i] = shortID(id)
	}
	return fmt.Sprintf("commit prefix %q is ambiguous: %s", e.Symbol, strings.Join(candidates, ", "))
}

const shortIDLen = 12

func shortID(id CommitID) string {
	if len(id) <= shortIDLen {
		return string(id)
	}
	return string(id[:shortIDLen])
}

var hexPrefixRegexp = regexp.MustCompile("^[a-f0-9]{1,64}$")

// IsHexPrefix reports whether s could be a commit or change id prefix
func IsHexPrefix(s string) bool {
	return hexPrefixRegexp.MatchString(s)
}

// Index is a read-only, insertion-ordered table of commits. Every parent is
// inserted before any commit referencing it, so the graph is acyclic by
// construction and reversing the insertion order yields a reverse-topological
// order with recency tie-break.
type Index struct {
	records  []*CommitRecord
	position map[CommitID]int
	children map[CommitID][]CommitID
}

func NewIndex() *Index {
	return &Index{
		position: make(map[CommitID]int),
		children: make(map[CommitID][]CommitID),
	}
}

// Add appends a commit. All parents must already be present.
func (x *Index) Add(record *CommitRecord) error {
	if _, ok := x.position[record.CommitID]; ok {
		return fmt.Errorf("%s: %w", shortID(record.CommitID), ErrAlreadyExists)
	}
	for _, parent := range record.Parents {
		if _, ok := x.position[parent]; !ok {
			return fmt.Errorf("%s: %w", shortID(parent), ErrParentNotFound)
		}
	}
	x.position[record.CommitID] = len(x.records)
	x.records = append(x.records, record)
	for _, parent := range record.Parents {
		x.children[parent] = append(x.children[parent], record.CommitID)
	}
	return nil
}

func (x *Index) Len() int {
	return len(x.records)
}

// At returns the record at insertion position i
func (x *Index) At(i int) *CommitRecord {
	return x.records[i]
}

// Position returns the insertion position of a commit
func (x *Index) Position(id CommitID) (int, bool) {
	pos, ok := x.position[id]
	return pos, ok
}

func (x *Index) Get(id CommitID) (*CommitRecord, error) {
	pos, ok := x.position[id]
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", shortID(id), ErrNotFound)
	}
	return x.records[pos], nil
}

// GetByPrefix resolves a commit-id or change-id prefix. A prefix matching
// several commits fails with AmbiguousPrefixError listing the candidates.
func (x *Index) GetByPrefix(prefix string) (*CommitRecord, error) {
	var candidates []CommitID
	for _, record := range x.records {
		if strings.HasPrefix(string(record.CommitID), prefix) ||
			strings.HasPrefix(string(record.ChangeID), prefix) {
			candidates = append(candidates, record.CommitID)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("commit %q: %w", prefix, ErrNotFound)
	case 1:
		return x.records[x.position[candidates[0]]], nil
	default:
		return nil, &AmbiguousPrefixError{Symbol: prefix, Candidates: candidates}
	}
}

// Children returns the direct children of a commit, in insertion order
func (x *Index) Children(id CommitID) []CommitID {
	return x.children[id]
}

// Heads returns commits without children, in insertion order
func (x *Index) Heads() []CommitID {
	var heads []CommitID
	for _, record := range x.records {
		if len(x.children[record.CommitID]) == 0 {
			heads = append(heads, record.CommitID)
		}
	}
	return heads
}

// Root returns the graph's root commit
func (x *Index) Root() (*CommitRecord, error) {
	for _, record := range x.records {
		if len(record.Parents) == 0 {
			return record, nil
		}
	}
	return nil, ErrNoRoot
}
