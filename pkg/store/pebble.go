package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/grovevc/grove/pkg/conflict"
	"github.com/grovevc/grove/pkg/graph"
)

const (
	commitKeyPrefix   = "commit/"
	treeKeyPrefix     = "tree/"
	blobKeyPrefix     = "blob/"
	conflictKeyPrefix = "conflict/"
	workingCopyKey    = "meta/working_copy"
)

// PebbleStore is the on-disk repository store. Commit keys carry a zero-padded
// sequence number so that lexicographic key order is insertion order.
type PebbleStore struct {
	db      *pebble.DB
	nextSeq uint64
}

func OpenPebble(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open repository store")
	}
	s := &PebbleStore{db: db}
	s.nextSeq, err = s.countCommits()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func commitKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", commitKeyPrefix, seq))
}

func (s *PebbleStore) countCommits() (uint64, error) {
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(commitKeyPrefix),
		UpperBound: []byte(commitKeyPrefix + "~"),
	})
	defer func() { _ = iter.Close() }()
	var n uint64
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, errors.Wrap(iter.Error(), "scan commits")
}

type commitData struct {
	ID     string       `json:"id"`
	Commit graph.Commit `json:"commit"`
}

type conflictTermData struct {
	Absent  bool   `json:"absent,omitempty"`
	Content []byte `json:"content,omitempty"`
}

type conflictData struct {
	Terms []conflictTermData `json:"terms"`
}

func (s *PebbleStore) get(key string) ([]byte, error) {
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", key)
	}
	defer func() { _ = closer.Close() }()
	return append([]byte(nil), value...), nil
}

func (s *PebbleStore) set(key string, value []byte) error {
	return errors.Wrapf(s.db.Set([]byte(key), value, pebble.Sync), "set %s", key)
}

func (s *PebbleStore) ListCommits(_ context.Context) ([]*graph.CommitRecord, error) {
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(commitKeyPrefix),
		UpperBound: []byte(commitKeyPrefix + "~"),
	})
	defer func() { _ = iter.Close() }()
	var records []*graph.CommitRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var data commitData
		if err := json.Unmarshal(iter.Value(), &data); err != nil {
			return nil, errors.Wrapf(err, "decode %s", iter.Key())
		}
		commit := data.Commit
		records = append(records, &graph.CommitRecord{
			CommitID: graph.CommitID(data.ID),
			Commit:   &commit,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "scan commits")
	}
	return records, nil
}

func (s *PebbleStore) GetTree(_ context.Context, id graph.TreeID) (*Tree, error) {
	value, err := s.get(treeKeyPrefix + string(id))
	if err != nil {
		return nil, err
	}
	var tree Tree
	if err := json.Unmarshal(value, &tree); err != nil {
		return nil, errors.Wrapf(err, "decode tree %s", id)
	}
	return &tree, nil
}

func (s *PebbleStore) GetBlob(_ context.Context, id BlobID) ([]byte, error) {
	return s.get(blobKeyPrefix + string(id))
}

func (s *PebbleStore) GetConflict(_ context.Context, id ConflictID) (*conflict.Conflict, error) {
	value, err := s.get(conflictKeyPrefix + string(id))
	if err != nil {
		return nil, err
	}
	var data conflictData
	if err := json.Unmarshal(value, &data); err != nil {
		return nil, errors.Wrapf(err, "decode conflict %s", id)
	}
	c := &conflict.Conflict{}
	for _, term := range data.Terms {
		c.Terms = append(c.Terms, conflict.Term{Absent: term.Absent, Content: term.Content})
	}
	return c, nil
}

func (s *PebbleStore) WorkingCopy(_ context.Context) (graph.CommitID, error) {
	value, err := s.get(workingCopyKey)
	if errors.Is(err, ErrNotFound) {
		return "", ErrNoWorkingCopy
	}
	if err != nil {
		return "", err
	}
	return graph.CommitID(value), nil
}

func (s *PebbleStore) Close() error {
	return errors.Wrap(s.db.Close(), "close repository store")
}

func (s *PebbleStore) AddCommit(_ context.Context, record *graph.CommitRecord) error {
	value, err := json.Marshal(commitData{ID: string(record.CommitID), Commit: *record.Commit})
	if err != nil {
		return errors.Wrap(err, "encode commit")
	}
	if err := s.set(string(commitKey(s.nextSeq)), value); err != nil {
		return err
	}
	s.nextSeq++
	return nil
}

func (s *PebbleStore) PutTree(_ context.Context, tree *Tree) (graph.TreeID, error) {
	id := tree.ID()
	value, err := json.Marshal(tree)
	if err != nil {
		return "", errors.Wrap(err, "encode tree")
	}
	return id, s.set(treeKeyPrefix+string(id), value)
}

func (s *PebbleStore) PutBlob(_ context.Context, content []byte) (BlobID, error) {
	id := BlobAddress(content)
	return id, s.set(blobKeyPrefix+string(id), content)
}

func (s *PebbleStore) PutConflict(_ context.Context, c *conflict.Conflict) (ConflictID, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	data := conflictData{}
	for _, term := range c.Terms {
		data.Terms = append(data.Terms, conflictTermData{Absent: term.Absent, Content: term.Content})
	}
	value, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "encode conflict")
	}
	id := conflictAddress(c)
	return id, s.set(conflictKeyPrefix+string(id), value)
}

func (s *PebbleStore) SetWorkingCopy(_ context.Context, id graph.CommitID) error {
	return s.set(workingCopyKey, []byte(id))
}
