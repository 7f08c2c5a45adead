package store

import (
	"context"
	"fmt"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/ident"
)

// MemoryStore keeps everything in process memory. Used by tests and as the
// staging area for snapshot import. Not safe for concurrent writes; the core
// only reads after loading.
type MemoryStore struct {
	commits     []*graph.CommitRecord
	trees       map[graph.TreeID]*Tree
	blobs       map[BlobID][]byte
	conflicts   map[ConflictID]*conflict.Conflict
	workingCopy graph.CommitID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trees:     make(map[graph.TreeID]*Tree),
		blobs:     make(map[BlobID][]byte),
		conflicts: make(map[ConflictID]*conflict.Conflict),
	}
}

func (m *MemoryStore) ListCommits(_ context.Context) ([]*graph.CommitRecord, error) {
	return append([]*graph.CommitRecord(nil), m.commits...), nil
}

func (m *MemoryStore) GetTree(_ context.Context, id graph.TreeID) (*Tree, error) {
	t, ok := m.trees[id]
	if !ok {
		return nil, fmt.Errorf("tree %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *MemoryStore) GetBlob(_ context.Context, id BlobID) ([]byte, error) {
	b, ok := m.blobs[id]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (m *MemoryStore) GetConflict(_ context.Context, id ConflictID) (*conflict.Conflict, error) {
	c, ok := m.conflicts[id]
	if !ok {
		return nil, fmt.Errorf("conflict %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *MemoryStore) WorkingCopy(_ context.Context) (graph.CommitID, error) {
	if m.workingCopy == "" {
		return "", ErrNoWorkingCopy
	}
	return m.workingCopy, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) AddCommit(_ context.Context, record *graph.CommitRecord) error {
	m.commits = append(m.commits, record)
	return nil
}

func (m *MemoryStore) PutTree(_ context.Context, tree *Tree) (graph.TreeID, error) {
	id := tree.ID()
	m.trees[id] = tree
	return id, nil
}

func (m *MemoryStore) PutBlob(_ context.Context, content []byte) (BlobID, error) {
	id := BlobAddress(content)
	m.blobs[id] = append([]byte(nil), content...)
	return id, nil
}

func (m *MemoryStore) PutConflict(_ context.Context, c *conflict.Conflict) (ConflictID, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	id := conflictAddress(c)
	m.conflicts[id] = c
	return id, nil
}

func (m *MemoryStore) SetWorkingCopy(_ context.Context, id graph.CommitID) error {
	m.workingCopy = id
	return nil
}

func conflictAddress(c *conflict.Conflict) ConflictID {
	b := ident.NewAddressWriter()
	b.MarshalString("conflict:v1")
	b.MarshalInt64(int64(len(c.Terms)))
	for _, term := range c.Terms {
		if term.Absent {
			b.MarshalString("absent")
		} else {
			b.MarshalString("content")
			b.MarshalBytes(term.Content)
		}
	}
	return ConflictID(ident.ContentAddress(b))
}
