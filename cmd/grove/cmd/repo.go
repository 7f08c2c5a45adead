package cmd

import (
	"context"
	"errors"

	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/revset"
	"github.com/grovevc/grove/pkg/store"
)

// repository is the loaded per-invocation snapshot: the open store, the
// immutable commit index and the query machinery bound to them.
type repository struct {
	store       store.Store
	index       *graph.Index
	ancestry    *graph.Ancestry
	workingCopy graph.CommitID
	evaluator   *revset.Evaluator
}

// openRepository loads the store named by configuration and indexes it. All
// failures are fatal to the command.
func openRepository(ctx context.Context) *repository {
	s, err := store.OpenPebble(cfg.Repository.Path)
	if err != nil {
		DieFmt("open repository at %q: %s", cfg.Repository.Path, err)
	}
	index, err := store.LoadIndex(ctx, s)
	if err != nil {
		DieFmt("load commit graph: %s", err)
	}
	workingCopy, err := s.WorkingCopy(ctx)
	if err != nil && !errors.Is(err, store.ErrNoWorkingCopy) {
		DieFmt("resolve working copy: %s", err)
	}
	ancestry, err := graph.NewAncestry(index)
	if err != nil {
		DieErr(err)
	}
	return &repository{
		store:       s,
		index:       index,
		ancestry:    ancestry,
		workingCopy: workingCopy,
		evaluator:   revset.NewEvaluator(index, ancestry, s, workingCopy),
	}
}

func (r *repository) Close() {
	_ = r.store.Close()
}
