// Package store provides the repository object store the query core reads:
// commits in insertion order, tree snapshots, blob content and structured
// conflicts. The core loads one immutable snapshot per invocation and never
// writes; the write half exists for snapshot import.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/ident"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoWorkingCopy = errors.New("working copy not set")
)

// BlobID is a content addressable hash of file content
type BlobID string

// ConflictID is a content addressable hash of a structured conflict
type ConflictID string

// TreeEntry maps a path to file content or to an unresolved conflict.
// Exactly one of Blob and Conflict is set.
type TreeEntry struct {
	Path     string     `json:"path"`
	Blob     BlobID     `json:"blob,omitempty"`
	Conflict ConflictID `json:"conflict,omitempty"`
}

func (e TreeEntry) IsConflict() bool {
	return e.Conflict != ""
}

// Tree is a file-tree snapshot: entries sorted by path
type Tree struct {
	Entries []TreeEntry `json:"entries"`
}

func NewTree(entries []TreeEntry) *Tree {
	sorted := append([]TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return &Tree{Entries: sorted}
}

func (t *Tree) Identity() []byte {
	b := ident.NewAddressWriter()
	b.MarshalString("tree:v1")
	b.MarshalInt64(int64(len(t.Entries)))
	for _, e := range t.Entries {
		b.MarshalString(e.Path)
		b.MarshalString(string(e.Blob))
		b.MarshalString(string(e.Conflict))
	}
	return b.Identity()
}

func (t *Tree) ID() graph.TreeID {
	return graph.TreeID(ident.ContentAddress(t))
}

// Lookup returns the entry at path
func (t *Tree) Lookup(path string) (TreeEntry, bool) {
	i := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Path >= path })
	if i < len(t.Entries) && t.Entries[i].Path == path {
		return t.Entries[i], true
	}
	return TreeEntry{}, false
}

// HasDirectory reports whether path exists as a directory prefix
func (t *Tree) HasDirectory(path string) bool {
	prefix := strings.TrimSuffix(path, "/") + "/"
	i := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Path >= prefix })
	return i < len(t.Entries) && strings.HasPrefix(t.Entries[i].Path, prefix)
}

// EmptyTree is the tree of a commit with no files (e.g. the root commit)
func EmptyTree() *Tree {
	return &Tree{}
}

type blobContent []byte

func (b blobContent) Identity() []byte {
	w := ident.NewAddressWriter()
	w.MarshalString("blob:v1")
	w.MarshalBytes(b)
	return w.Identity()
}

// BlobAddress returns the content address of raw file content
func BlobAddress(content []byte) BlobID {
	return BlobID(ident.ContentAddress(blobContent(content)))
}

// Reader is the read-only store surface the core consumes
type Reader interface {
	// ListCommits returns all commits in insertion order; every parent
	// precedes its children.
	ListCommits(ctx context.Context) ([]*graph.CommitRecord, error)
	GetTree(ctx context.Context, id graph.TreeID) (*Tree, error)
	GetBlob(ctx context.Context, id BlobID) ([]byte, error)
	GetConflict(ctx context.Context, id ConflictID) (*conflict.Conflict, error)
	// WorkingCopy returns the commit the working copy is based on ("@")
	WorkingCopy(ctx context.Context) (graph.CommitID, error)
	Close() error
}

// Writer is the store surface used by snapshot import
type Writer interface {
	AddCommit(ctx context.Context, record *graph.CommitRecord) error
	PutTree(ctx context.Context, tree *Tree) (graph.TreeID, error)
	PutBlob(ctx context.Context, content []byte) (BlobID, error)
	PutConflict(ctx context.Context, c *conflict.Conflict) (ConflictID, error)
	SetWorkingCopy(ctx context.Context, id graph.CommitID) error
}

type Store interface {
	Reader
	Writer
}

// LoadIndex reads the full commit list into an immutable graph index,
// giving the invocation snapshot isolation from that point on.
func LoadIndex(ctx context.Context, r Reader) (*graph.Index, error) {
	records, err := r.ListCommits(ctx)
	if err != nil {
		return nil, err
	}
	index := graph.NewIndex()
	for _, record := range records {
		if err := index.Add(record); err != nil {
			return nil, err
		}
	}
	return index, nil
}
