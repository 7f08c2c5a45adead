// Package render draws the commit graph: one glyph row per commit with
// pass-through edges in the other columns, fan-out rows for merges, join rows
// when sibling edges converge and elision markers for lineages the query
// filtered out.
package render

import (
	"io"
	"strings"

	"github.com/grovevc/grove/pkg/graph"
)

const (
	GlyphWorkingCopy = '@'
	GlyphCommit      = 'o'
	glyphPassThrough = '|'
	glyphElision     = '~'
	glyphFanOut      = '\\'
	glyphJoin        = '/'
)

// Edge is an outgoing edge of a rendered node. Elide marks a target that the
// query filtered out of the display set; the lineage ends with an elision
// marker instead of a pass-through edge. The marker is drawn only when no
// edge of the node survives: a merge with one kept parent keeps that edge
// and drops the filtered one silently.
type Edge struct {
	Target graph.CommitID
	Elide  bool
}

// Node is one commit to draw: its glyph, its outgoing edges in display order
// and the pre-rendered text lines placed to the right of the graph.
type Node struct {
	ID    graph.CommitID
	Glyph byte
	Edges []Edge
	Lines []string
}

type columnState int

const (
	columnActive columnState = iota
	columnClosed
)

type column struct {
	target graph.CommitID
	state  columnState
}

// Renderer lays commits out left to right as open-edge columns. Column
// assignment depends only on the node sequence and edge targets, so identical
// inputs render byte-identical graphs. Rendering is sequential: each node's
// layout depends on the open-edge state the previous node left behind.
type Renderer struct {
	w       io.Writer
	columns []column
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// cellRow renders one character per column at even positions
func (r *Renderer) cellRow(at func(i int) byte) []byte {
	row := make([]byte, 0, 2*len(r.columns))
	for i := range r.columns {
		row = append(row, at(i), ' ')
	}
	return row
}

func (r *Renderer) passThrough(i int) byte {
	if r.columns[i].state == columnClosed {
		return ' '
	}
	return glyphPassThrough
}

func (r *Renderer) writeLine(line []byte) error {
	_, err := r.w.Write(append(line, '\n'))
	return err
}

// collapse merges every extra column targeting id into the leftmost one,
// emitting one join row per removed column, rightmost first.
func (r *Renderer) collapse(id graph.CommitID) (int, error) {
	chosen := -1
	for {
		extra := -1
		for i, col := range r.columns {
			if col.state != columnActive || col.target != id {
				continue
			}
			if chosen < 0 || i == chosen {
				chosen = i
				continue
			}
			extra = i
		}
		if extra < 0 {
			return chosen, nil
		}
		row := r.cellRow(r.passThrough)
		row[2*extra] = ' '
		row[2*extra-1] = glyphJoin
		if err := r.writeLine(trimRight(row)); err != nil {
			return 0, err
		}
		r.columns = append(r.columns[:extra], r.columns[extra+1:]...)
	}
}

func trimRight(row []byte) []byte {
	return []byte(strings.TrimRight(string(row), " "))
}

// WriteNode draws one commit block: the glyph row with the first text line, a
// fan-out row when the node has several surviving edges, the remaining text
// lines and, for an elided lineage, a single elision marker.
func (r *Renderer) WriteNode(n Node) error {
	chosen, err := r.collapse(n.ID)
	if err != nil {
		return err
	}
	if chosen < 0 {
		r.columns = append(r.columns, column{target: n.ID})
		chosen = len(r.columns) - 1
	}

	glyphRow := r.cellRow(func(i int) byte {
		if i == chosen {
			return n.Glyph
		}
		return r.passThrough(i)
	})
	var text []string
	if len(n.Lines) > 0 {
		glyphRow = append(glyphRow, n.Lines[0]...)
		text = n.Lines[1:]
	}
	if err := r.writeLine(glyphRow); err != nil {
		return err
	}

	var kept []graph.CommitID
	elide := false
	for _, edge := range n.Edges {
		if edge.Elide {
			elide = true
			continue
		}
		kept = append(kept, edge.Target)
	}
	switch {
	case len(kept) == 0:
		r.columns[chosen].state = columnClosed
	default:
		r.columns[chosen].target = kept[0]
	}
	elide = elide && len(kept) == 0

	if len(kept) > 1 {
		if err := r.fanOut(chosen, kept[1:]); err != nil {
			return err
		}
	}

	elideShown := false
	for _, line := range text {
		row := r.cellRow(func(i int) byte {
			if i == chosen && elide {
				if elideShown {
					return ' '
				}
				return glyphElision
			}
			return r.passThrough(i)
		})
		if elide {
			elideShown = true
		}
		row = append(row, line...)
		if err := r.writeLine(row); err != nil {
			return err
		}
	}
	if elide && !elideShown {
		row := r.cellRow(func(i int) byte {
			if i == chosen {
				return glyphElision
			}
			return r.passThrough(i)
		})
		if err := r.writeLine(row); err != nil {
			return err
		}
	}
	if elide {
		r.columns[chosen].state = columnClosed
	}

	for len(r.columns) > 0 && r.columns[len(r.columns)-1].state == columnClosed {
		r.columns = r.columns[:len(r.columns)-1]
	}
	return nil
}

// fanOut inserts one column per extra edge directly after the node's column
// and draws their diagonal edges.
func (r *Renderer) fanOut(chosen int, extra []graph.CommitID) error {
	inserted := make([]column, len(extra))
	for i, target := range extra {
		inserted[i] = column{target: target}
	}
	tail := append([]column(nil), r.columns[chosen+1:]...)
	r.columns = append(append(r.columns[:chosen+1], inserted...), tail...)

	row := r.cellRow(func(i int) byte {
		if i > chosen && i <= chosen+len(extra) {
			return ' '
		}
		return r.passThrough(i)
	})
	for i := range extra {
		row[2*(chosen+1+i)-1] = glyphFanOut
	}
	return r.writeLine(trimRight(row))
}

// WriteLines emits text lines with no graph prefix, the --no-graph mode
func (r *Renderer) WriteLines(lines []string) error {
	for _, line := range lines {
		if err := r.writeLine([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}
