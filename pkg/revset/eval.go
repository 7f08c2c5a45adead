package revset

import (
	"context"
	"errors"
	"fmt"

	"github.com/grovevc/grove/pkg/diff"
	"github.com/grovevc/grove/pkg/graph"
	"github.com/grovevc/grove/pkg/logging"
	"github.com/grovevc/grove/pkg/store"
)

var ErrRevisionNotFound = errors.New("revision doesn't exist")

// RevisionError reports a symbol that resolved to no commit
type RevisionError struct {
	Symbol string
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("revision %q doesn't exist", e.Symbol)
}

func (e *RevisionError) Unwrap() error {
	return ErrRevisionNotFound
}

const rootSymbol = "root"

// Evaluator binds revset expressions to a loaded graph snapshot. The index
// and store are immutable for the evaluator's lifetime.
type Evaluator struct {
	index       *graph.Index
	ancestry    *graph.Ancestry
	reader      store.Reader
	workingCopy graph.CommitID
	log         logging.Logger

	trees map[graph.TreeID]*store.Tree
}

func NewEvaluator(index *graph.Index, ancestry *graph.Ancestry, reader store.Reader, workingCopy graph.CommitID) *Evaluator {
	return &Evaluator{
		index:       index,
		ancestry:    ancestry,
		reader:      reader,
		workingCopy: workingCopy,
		log:         logging.Default().WithField("service", "revset"),
		trees:       make(map[graph.TreeID]*store.Tree),
	}
}

// Result is an evaluated revset: a subset of the index's commits. Iteration
// order is descending insertion position, which is reverse-topological with
// newer commits first.
type Result struct {
	index *graph.Index
	bits  graph.Bitset
}

func (r *Result) Contains(id graph.CommitID) bool {
	pos, ok := r.index.Position(id)
	return ok && r.bits.Test(pos)
}

func (r *Result) Len() int {
	n := 0
	for pos := 0; pos < r.index.Len(); pos++ {
		if r.bits.Test(pos) {
			n++
		}
	}
	return n
}

// IDs returns the member commit ids in iteration order
func (r *Result) IDs() []graph.CommitID {
	var ids []graph.CommitID
	for pos := r.index.Len() - 1; pos >= 0; pos-- {
		if r.bits.Test(pos) {
			ids = append(ids, r.index.At(pos).CommitID)
		}
	}
	return ids
}

type resultIterator struct {
	index  *graph.Index
	bits   graph.Bitset
	pos    int
	value  *graph.CommitRecord
	closed bool
}

func (it *resultIterator) Next() bool {
	if it.closed {
		return false
	}
	for ; it.pos >= 0; it.pos-- {
		if it.bits.Test(it.pos) {
			it.value = it.index.At(it.pos)
			it.pos--
			return true
		}
	}
	it.value = nil
	return false
}

func (it *resultIterator) Value() *graph.CommitRecord {
	return it.value
}

func (it *resultIterator) Err() error {
	return nil
}

func (it *resultIterator) Close() {
	it.closed = true
}

// Iterator returns a commit iterator over the result
func (r *Result) Iterator() graph.CommitIterator {
	return &resultIterator{index: r.index, bits: r.bits, pos: r.index.Len() - 1}
}

// FilterPaths narrows a result to commits whose diff against a parent touches
// one of the path patterns. The log command uses this for positional PATH
// arguments; it changes which commits are selected, not what is shown for
// them.
func (ev *Evaluator) FilterPaths(ctx context.Context, r *Result, patterns []string) (*Result, error) {
	if len(patterns) == 0 {
		return r, nil
	}
	touched, err := ev.filterByFile(ctx, patterns)
	if err != nil {
		return nil, err
	}
	bits := r.bits.Clone()
	bits.And(touched)
	return &Result{index: r.index, bits: bits}, nil
}

// Evaluate parses and evaluates a revset expression
func (ev *Evaluator) Evaluate(ctx context.Context, source string) (*Result, error) {
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}
	if ev.log.IsDebugging() {
		ev.log.WithField("revset", source).Debug("evaluating revset")
	}
	bits, err := ev.eval(ctx, node)
	if err != nil {
		return nil, err
	}
	return &Result{index: ev.index, bits: bits}, nil
}

func (ev *Evaluator) emptySet() graph.Bitset {
	return graph.NewBitset(ev.index.Len())
}

func (ev *Evaluator) fullSet() graph.Bitset {
	bits := ev.emptySet()
	for pos := 0; pos < ev.index.Len(); pos++ {
		bits.Set(pos)
	}
	return bits
}

func (ev *Evaluator) singleton(id graph.CommitID) (graph.Bitset, error) {
	pos, ok := ev.index.Position(id)
	if !ok {
		return nil, &RevisionError{Symbol: string(id)}
	}
	bits := ev.emptySet()
	bits.Set(pos)
	return bits, nil
}

// members lists the commit ids in bits, ascending by position
func (ev *Evaluator) members(bits graph.Bitset) []graph.CommitID {
	var ids []graph.CommitID
	for pos := 0; pos < ev.index.Len(); pos++ {
		if bits.Test(pos) {
			ids = append(ids, ev.index.At(pos).CommitID)
		}
	}
	return ids
}

func (ev *Evaluator) resolveSymbol(node *symbolExpr) (graph.Bitset, error) {
	if !node.quoted && node.text == rootSymbol {
		record, err := ev.index.Root()
		if err != nil {
			return nil, err
		}
		return ev.singleton(record.CommitID)
	}
	if !graph.IsHexPrefix(node.text) {
		return nil, &RevisionError{Symbol: node.text}
	}
	record, err := ev.index.GetByPrefix(node.text)
	if errors.Is(err, graph.ErrNotFound) {
		return nil, &RevisionError{Symbol: node.text}
	}
	if err != nil {
		return nil, err
	}
	return ev.singleton(record.CommitID)
}

func (ev *Evaluator) eval(ctx context.Context, node expr) (graph.Bitset, error) {
	switch n := node.(type) {
	case *symbolExpr:
		return ev.resolveSymbol(n)
	case *workingCopyExpr:
		if ev.workingCopy == "" {
			return nil, store.ErrNoWorkingCopy
		}
		return ev.singleton(ev.workingCopy)
	case *unionExpr:
		left, err := ev.eval(ctx, n.left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(ctx, n.right)
		if err != nil {
			return nil, err
		}
		left.Or(right)
		return left, nil
	case *intersectExpr:
		left, err := ev.eval(ctx, n.left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(ctx, n.right)
		if err != nil {
			return nil, err
		}
		left.And(right)
		return left, nil
	case *differenceExpr:
		left, err := ev.eval(ctx, n.left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(ctx, n.right)
		if err != nil {
			return nil, err
		}
		for i := range left {
			left[i] &^= right[i]
		}
		return left, nil
	case *rangeExpr:
		return ev.evalRange(ctx, n)
	case *parentsExpr:
		of, err := ev.eval(ctx, n.of)
		if err != nil {
			return nil, err
		}
		return ev.parentsOf(of), nil
	case *childrenExpr:
		of, err := ev.eval(ctx, n.of)
		if err != nil {
			return nil, err
		}
		return ev.childrenOf(of), nil
	case *funcExpr:
		return ev.evalFunc(ctx, n)
	}
	return nil, fmt.Errorf("unhandled revset expression %T", node)
}

func (ev *Evaluator) evalRange(ctx context.Context, n *rangeExpr) (graph.Bitset, error) {
	if n.from == nil && n.to == nil {
		return ev.fullSet(), nil
	}
	var bits graph.Bitset
	if n.from != nil {
		from, err := ev.eval(ctx, n.from)
		if err != nil {
			return nil, err
		}
		bits, err = ev.closure(ctx, from, sweepDescendants)
		if err != nil {
			return nil, err
		}
	}
	if n.to != nil {
		to, err := ev.eval(ctx, n.to)
		if err != nil {
			return nil, err
		}
		anc, err := ev.closure(ctx, to, sweepAncestors)
		if err != nil {
			return nil, err
		}
		if bits == nil {
			return anc, nil
		}
		bits.And(anc)
	}
	return bits, nil
}

type sweepKind int

const (
	sweepAncestors sweepKind = iota
	sweepDescendants
)

// closure unions a per-commit reachability sweep over every member of bits.
// Multi-member sets warm the ancestry cache in parallel first.
func (ev *Evaluator) closure(ctx context.Context, bits graph.Bitset, kind sweepKind) (graph.Bitset, error) {
	ids := ev.members(bits)
	if len(ids) > 1 {
		var err error
		if kind == sweepAncestors {
			err = ev.ancestry.Precompute(ctx, ids, nil)
		} else {
			err = ev.ancestry.Precompute(ctx, nil, ids)
		}
		if err != nil {
			return nil, err
		}
	}
	out := ev.emptySet()
	for _, id := range ids {
		var reach graph.Bitset
		var err error
		if kind == sweepAncestors {
			reach, err = ev.ancestry.Ancestors(id)
		} else {
			reach, err = ev.ancestry.Descendants(id)
		}
		if err != nil {
			return nil, err
		}
		out.Or(reach)
	}
	return out, nil
}

func (ev *Evaluator) parentsOf(bits graph.Bitset) graph.Bitset {
	out := ev.emptySet()
	for pos := 0; pos < ev.index.Len(); pos++ {
		if !bits.Test(pos) {
			continue
		}
		for _, parent := range ev.index.At(pos).Parents {
			parentPos, _ := ev.index.Position(parent)
			out.Set(parentPos)
		}
	}
	return out
}

func (ev *Evaluator) childrenOf(bits graph.Bitset) graph.Bitset {
	out := ev.emptySet()
	for pos := 0; pos < ev.index.Len(); pos++ {
		if !bits.Test(pos) {
			continue
		}
		for _, child := range ev.index.Children(ev.index.At(pos).CommitID) {
			childPos, _ := ev.index.Position(child)
			out.Set(childPos)
		}
	}
	return out
}

func wrongFuncArgs(name string, want string, got int) error {
	return &ParseError{Message: fmt.Sprintf("function %q expects %s argument(s), got %d", name, want, got)}
}

func (ev *Evaluator) evalFunc(ctx context.Context, n *funcExpr) (graph.Bitset, error) {
	switch n.name {
	case "root":
		if len(n.args) != 0 {
			return nil, wrongFuncArgs(n.name, "0", len(n.args))
		}
		record, err := ev.index.Root()
		if err != nil {
			return nil, err
		}
		return ev.singleton(record.CommitID)
	case "all":
		if len(n.args) != 0 {
			return nil, wrongFuncArgs(n.name, "0", len(n.args))
		}
		return ev.fullSet(), nil
	case "none":
		if len(n.args) != 0 {
			return nil, wrongFuncArgs(n.name, "0", len(n.args))
		}
		return ev.emptySet(), nil
	case "heads":
		switch len(n.args) {
		case 0:
			bits := ev.emptySet()
			for _, id := range ev.index.Heads() {
				pos, _ := ev.index.Position(id)
				bits.Set(pos)
			}
			return bits, nil
		case 1:
			of, err := ev.eval(ctx, n.args[0])
			if err != nil {
				return nil, err
			}
			return ev.headsOf(of)
		default:
			return nil, wrongFuncArgs(n.name, "0 or 1", len(n.args))
		}
	case "parents":
		if len(n.args) != 1 {
			return nil, wrongFuncArgs(n.name, "1", len(n.args))
		}
		of, err := ev.eval(ctx, n.args[0])
		if err != nil {
			return nil, err
		}
		return ev.parentsOf(of), nil
	case "children":
		if len(n.args) != 1 {
			return nil, wrongFuncArgs(n.name, "1", len(n.args))
		}
		of, err := ev.eval(ctx, n.args[0])
		if err != nil {
			return nil, err
		}
		return ev.childrenOf(of), nil
	case "ancestors":
		if len(n.args) != 1 {
			return nil, wrongFuncArgs(n.name, "1", len(n.args))
		}
		of, err := ev.eval(ctx, n.args[0])
		if err != nil {
			return nil, err
		}
		return ev.closure(ctx, of, sweepAncestors)
	case "descendants":
		if len(n.args) != 1 {
			return nil, wrongFuncArgs(n.name, "1", len(n.args))
		}
		of, err := ev.eval(ctx, n.args[0])
		if err != nil {
			return nil, err
		}
		return ev.closure(ctx, of, sweepDescendants)
	case "file":
		if len(n.args) == 0 {
			return nil, wrongFuncArgs(n.name, "1 or more", len(n.args))
		}
		patterns := make([]string, len(n.args))
		for i, arg := range n.args {
			sym, ok := arg.(*symbolExpr)
			if !ok {
				return nil, &ParseError{Offset: n.offset, Message: "file() arguments must be path patterns"}
			}
			patterns[i] = sym.text
		}
		return ev.filterByFile(ctx, patterns)
	}
	return nil, &ParseError{Offset: n.offset, Message: fmt.Sprintf("function %q doesn't exist", n.name)}
}

// headsOf keeps the members of bits that are not an ancestor of any other
// member.
func (ev *Evaluator) headsOf(bits graph.Bitset) (graph.Bitset, error) {
	out := bits.Clone()
	for pos := 0; pos < ev.index.Len(); pos++ {
		if !bits.Test(pos) {
			continue
		}
		anc, err := ev.ancestry.Ancestors(ev.index.At(pos).CommitID)
		if err != nil {
			return nil, err
		}
		for i := range out {
			strict := anc[i]
			if i == pos/64 {
				strict &^= 1 << uint(pos%64)
			}
			out[i] &^= strict
		}
	}
	return out, nil
}

func (ev *Evaluator) tree(ctx context.Context, id graph.TreeID) (*store.Tree, error) {
	if t, ok := ev.trees[id]; ok {
		return t, nil
	}
	t, err := ev.reader.GetTree(ctx, id)
	if err != nil {
		return nil, err
	}
	ev.trees[id] = t
	return t, nil
}

// filterByFile selects commits that change a matching path. A path counts as
// changed only when it differs from every parent, so a merge that cleanly
// takes a side's content does not match. The root commit is compared against
// the empty tree.
func (ev *Evaluator) filterByFile(ctx context.Context, patterns []string) (graph.Bitset, error) {
	filter, err := diff.NewPathFilter(patterns)
	if err != nil {
		return nil, err
	}
	bits := ev.emptySet()
	for pos := 0; pos < ev.index.Len(); pos++ {
		touched, err := ev.commitTouches(ctx, ev.index.At(pos), filter)
		if err != nil {
			return nil, err
		}
		if touched {
			bits.Set(pos)
		}
	}
	return bits, nil
}

func (ev *Evaluator) commitTouches(ctx context.Context, record *graph.CommitRecord, filter *diff.PathFilter) (bool, error) {
	right, err := ev.tree(ctx, record.TreeID)
	if err != nil {
		return false, err
	}
	if len(record.Parents) == 0 {
		return diff.Touches(store.EmptyTree(), right, filter), nil
	}
	changedVia := make(map[string]int)
	for _, parent := range record.Parents {
		parentRecord, err := ev.index.Get(parent)
		if err != nil {
			return false, err
		}
		left, err := ev.tree(ctx, parentRecord.TreeID)
		if err != nil {
			return false, err
		}
		for _, entry := range diff.TreeDiff(left, right, filter) {
			changedVia[entry.Path]++
		}
	}
	for _, n := range changedVia {
		if n == len(record.Parents) {
			return true, nil
		}
	}
	return false, nil
}
