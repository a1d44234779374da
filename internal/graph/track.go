// Package graph lays out a commit history as columns of tracks and renders
// each row of the layout as box-drawing glyphs.
package graph

import "github.com/kurobon/gitgraph/internal/git"

// Track is the role a cell plays in its row.
type Track int

const (
	// Node is the commit owning the row.
	Node Track = iota
	// Continue carries an open line of descent straight down.
	Continue
	// ContinueRight is the start or middle of a one-row bridge moving a
	// column to the left.
	ContinueRight
	// ContinueUp is the corner ending a bridge.
	ContinueUp
	// Branch marks a column converging on the row's commit.
	Branch
	// Merge marks an additional parent of the row's commit.
	Merge
)

var trackNames = map[Track]string{
	Node:          "Node",
	Continue:      "Continue",
	ContinueRight: "ContinueRight",
	ContinueUp:    "ContinueUp",
	Branch:        "Branch",
	Merge:         "Merge",
}

func (t Track) String() string {
	if name, ok := trackNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Cell is one column of one row.
//
// Parent is the ref the column stands for in the next row. A zero Parent
// marks a bridge or a closed column, which is dropped before the next row is
// laid out. Related groups the cell with a thread for coloring.
type Cell struct {
	Parent  git.Ref `json:"parent,omitempty"`
	Related git.Ref `json:"related"`
	Track   Track   `json:"track"`
}

// Row is the layout of one commit.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Len is the number of columns of the row, which callers reserve before
// drawing commit details to the right of the graph.
func (r Row) Len() int {
	return len(r.Cells)
}

// Node returns the index of the row's node cell, or -1 when there is none.
func (r Row) Node() int {
	for i, c := range r.Cells {
		if c.Track == Node {
			return i
		}
	}
	return -1
}

func (r Row) clone() Row {
	return Row{Cells: append([]Cell(nil), r.Cells...)}
}

// Graph holds one row per commit, in commit order.
type Graph []Row

// Width is the widest row of the graph.
func (g Graph) Width() int {
	w := 0
	for _, r := range g {
		if r.Len() > w {
			w = r.Len()
		}
	}
	return w
}
