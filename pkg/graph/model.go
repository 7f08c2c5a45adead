package graph

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/grovevc/grove/pkg/ident"
)

// CommitID is a content addressable hash representing a Commit object
type CommitID string

func (id CommitID) String() string {
	return string(id)
}

// ChangeID is a stable identifier for a logical commit. It survives rewrites:
// amending a commit produces a new CommitID but keeps the ChangeID.
type ChangeID string

func (id ChangeID) String() string {
	return string(id)
}

// TreeID references the file-tree snapshot of a commit
type TreeID string

type CommitParents []CommitID

func (cp CommitParents) Identity() []byte {
	commits := make([]string, len(cp))
	for i, v := range cp {
		commits[i] = string(v)
	}
	buf := ident.NewAddressWriter()
	buf.MarshalStringSlice(commits)
	return buf.Identity()
}

func (cp CommitParents) Contains(commitID CommitID) bool {
	for _, c := range cp {
		if c == commitID {
			return true
		}
	}
	return false
}

func (cp CommitParents) AsStringSlice() []string {
	stringSlice := make([]string, len(cp))
	for i, p := range cp {
		stringSlice[i] = string(p)
	}
	return stringSlice
}

const changeIDAlphabet = "0123456789abcdef"

const changeIDLength = 32

// NewChangeID mints a fresh change identifier
func NewChangeID() ChangeID {
	return ChangeID(gonanoid.MustGenerate(changeIDAlphabet, changeIDLength))
}

// Signature is an identity plus the time it acted
type Signature struct {
	Name  string    `json:"name" yaml:"name"`
	Email string    `json:"email" yaml:"email"`
	When  time.Time `json:"when" yaml:"when"`
}

// Commit is immutable commit metadata. Created once, never mutated; a rewrite
// produces a new Commit (and CommitID) that may keep the ChangeID.
type Commit struct {
	ChangeID    ChangeID      `json:"change_id"`
	Parents     CommitParents `json:"parents"`
	Description string        `json:"description"`
	Author      Signature     `json:"author"`
	Committer   Signature     `json:"committer"`
	TreeID      TreeID        `json:"tree_id"`
}

func (c Commit) Identity() []byte {
	b := ident.NewAddressWriter()
	b.MarshalString("commit:v1")
	b.MarshalString(string(c.ChangeID))
	b.MarshalString(c.Description)
	b.MarshalString(c.Author.Name)
	b.MarshalString(c.Author.Email)
	b.MarshalInt64(c.Author.When.Unix())
	b.MarshalString(c.Committer.Name)
	b.MarshalString(c.Committer.Email)
	b.MarshalInt64(c.Committer.When.Unix())
	b.MarshalString(string(c.TreeID))
	b.MarshalIdentifiable(c.Parents)
	return b.Identity()
}

// ID returns the content-derived commit identifier
func (c Commit) ID() CommitID {
	return CommitID(ident.ContentAddress(c))
}

// CommitRecord holds CommitID with the associated Commit data
type CommitRecord struct {
	CommitID CommitID
	*Commit
}

// CommitIterator iterates commit records in a well-defined order. Close may
// be called at any point to abandon the iteration; that is the cancellation
// mechanism for early-exiting consumers.
type CommitIterator interface {
	Next() bool
	Value() *CommitRecord
	Err() error
	Close()
}
