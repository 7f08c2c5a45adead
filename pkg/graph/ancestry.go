package graph

import (
	"context"
	"fmt"

	lru "github.com/hnlq715/golang-lru"
	"golang.org/x/sync/errgroup"
)

// Bitset is a dense set over index positions
type Bitset []uint64

const bitsPerWord = 64

func NewBitset(n int) Bitset {
	return make(Bitset, (n+bitsPerWord-1)/bitsPerWord)
}

func (b Bitset) Set(i int) {
	b[i/bitsPerWord] |= 1 << uint(i%bitsPerWord)
}

func (b Bitset) Test(i int) bool {
	return b[i/bitsPerWord]&(1<<uint(i%bitsPerWord)) != 0
}

func (b Bitset) Or(other Bitset) {
	for i := range other {
		b[i] |= other[i]
	}
}

func (b Bitset) And(other Bitset) {
	for i := range b {
		b[i] &= other[i]
	}
}

func (b Bitset) Clone() Bitset {
	clone := make(Bitset, len(b))
	copy(clone, b)
	return clone
}

const DefaultAncestryCacheSize = 512

// Ancestry answers reachability queries over an Index with per-commit
// bitsets, memoized per invocation. The underlying index is immutable and the
// cache is safe for concurrent use, so queries may run from parallel workers.
type Ancestry struct {
	index *Index
	cache *lru.Cache
}

func NewAncestry(index *Index) (*Ancestry, error) {
	cache, err := lru.New(DefaultAncestryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("ancestry cache: %w", err)
	}
	return &Ancestry{index: index, cache: cache}, nil
}

// Ancestors returns the positions of id and all its ancestors. Parents always
// occupy lower positions than their children, so one descending sweep from
// id's position reaches closure.
func (a *Ancestry) Ancestors(id CommitID) (Bitset, error) {
	if v, ok := a.cache.Get("anc/" + string(id)); ok {
		return v.(Bitset), nil
	}
	start, ok := a.index.Position(id)
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", shortID(id), ErrNotFound)
	}
	bits := NewBitset(a.index.Len())
	bits.Set(start)
	for pos := start; pos >= 0; pos-- {
		if !bits.Test(pos) {
			continue
		}
		for _, parent := range a.index.At(pos).Parents {
			parentPos, _ := a.index.Position(parent)
			bits.Set(parentPos)
		}
	}
	a.cache.Add("anc/"+string(id), bits)
	return bits, nil
}

// Descendants returns the positions of id and everything reachable from it
// over child edges. Children always occupy higher positions, so one ascending
// sweep reaches closure.
func (a *Ancestry) Descendants(id CommitID) (Bitset, error) {
	if v, ok := a.cache.Get("desc/" + string(id)); ok {
		return v.(Bitset), nil
	}
	start, ok := a.index.Position(id)
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", shortID(id), ErrNotFound)
	}
	bits := NewBitset(a.index.Len())
	bits.Set(start)
	for pos := start; pos < a.index.Len(); pos++ {
		if !bits.Test(pos) {
			continue
		}
		for _, child := range a.index.Children(a.index.At(pos).CommitID) {
			childPos, _ := a.index.Position(child)
			bits.Set(childPos)
		}
	}
	a.cache.Add("desc/"+string(id), bits)
	return bits, nil
}

// IsAncestor reports whether ancestor is an ancestor of (or equal to) id
func (a *Ancestry) IsAncestor(ancestor, id CommitID) (bool, error) {
	bits, err := a.Ancestors(id)
	if err != nil {
		return false, err
	}
	pos, ok := a.index.Position(ancestor)
	if !ok {
		return false, fmt.Errorf("commit %s: %w", shortID(ancestor), ErrNotFound)
	}
	return bits.Test(pos), nil
}

// MergeBase returns the latest common ancestor of two commits
func (a *Ancestry) MergeBase(left, right CommitID) (*CommitRecord, error) {
	leftBits, err := a.Ancestors(left)
	if err != nil {
		return nil, err
	}
	rightBits, err := a.Ancestors(right)
	if err != nil {
		return nil, err
	}
	common := leftBits.Clone()
	common.And(rightBits)
	for pos := a.index.Len() - 1; pos >= 0; pos-- {
		if common.Test(pos) {
			return a.index.At(pos), nil
		}
	}
	return nil, ErrNotFound
}

// Precompute fills the cache for a batch of endpoints concurrently. The index
// is shared read-only; no synchronization is needed beyond the cache's own.
func (a *Ancestry) Precompute(ctx context.Context, ancestorsOf, descendantsOf []CommitID) error {
	g, _ := errgroup.WithContext(ctx)
	for _, id := range ancestorsOf {
		id := id
		g.Go(func() error {
			_, err := a.Ancestors(id)
			return err
		})
	}
	for _, id := range descendantsOf {
		id := id
		g.Go(func() error {
			_, err := a.Descendants(id)
			return err
		})
	}
	return g.Wait()
}
