package graph

import (
	"strings"

	"github.com/kurobon/gitgraph/internal/git"
)

// Glyphs drawn by Render.
const (
	// Space pads an empty column or gap.
	Space = " "
	// Bullet marks a commit with at most one parent.
	Bullet = "•"
	// BigBullet marks a merge commit.
	BigBullet = "●"
	// RightUp closes a line that leaves upward on the right.
	RightUp = "╯"
	// RightDown opens a merge parent line on the right.
	RightDown = "╮"
	// TeeDown is a horizontal run crossing a merge parent line.
	TeeDown = "┬"
	// TeeUp is a horizontal run crossing a line that ends upward.
	TeeUp = "┴"
	// VLine continues a line straight down.
	VLine = "│"
	// UpRight turns a line from below to the right.
	UpRight = "╭"
	// HalfHLine starts a horizontal run next to a commit.
	HalfHLine = "╶"
	// HLine is a full horizontal run.
	HLine = "─"
)

// Glyph is one rendered terminal column.
type Glyph struct {
	Char  string   `json:"char"`
	Color ColorKey `json:"color"`
}

type renderer struct {
	cells  []Cell
	colors *ColorMap
	out    []Glyph
	// hline is the thread a pending horizontal line belongs to
	hline *git.Ref
}

func (r *renderer) plain(char string) {
	r.out = append(r.out, Glyph{Char: char, Color: NoColor})
}

func (r *renderer) draw(ref git.Ref, char string) {
	r.out = append(r.out, Glyph{Char: char, Color: r.colors.Get(ref)})
}

// hlineAfter returns the related ref of the first Branch or Merge cell after
// index i.
func (r *renderer) hlineAfter(i int) *git.Ref {
	for j := i + 1; j < len(r.cells); j++ {
		if t := r.cells[j].Track; t == Branch || t == Merge {
			ref := r.cells[j].Related
			return &ref
		}
	}
	return nil
}

func (r *renderer) mergeAfter(i int) bool {
	for j := i + 1; j < len(r.cells); j++ {
		if r.cells[j].Track == Merge {
			return true
		}
	}
	return false
}

// drawn reports whether a track leaves a glyph in its last column that needs
// a blank before the next vertical glyph.
func drawn(t Track) bool {
	switch t {
	case Merge, Branch, Continue, ContinueUp, Node:
		return true
	}
	return false
}

// moreOfRun reports whether a later cell continues the Branch or Merge run
// of cell i. Branch cells of a row all converge on the row's commit; Merge
// cells all leave it, so a merge run spans every Merge cell of the row.
func (r *renderer) moreOfRun(i int) bool {
	c := r.cells[i]
	for j := i + 1; j < len(r.cells); j++ {
		o := r.cells[j]
		if o.Track != c.Track {
			continue
		}
		if c.Track == Merge || o.Related == c.Related {
			return true
		}
	}
	return false
}

// convergesLater reports whether a Branch after index i shares the parent of
// cell i.
func (r *renderer) convergesLater(i int) bool {
	for j := i; j < len(r.cells); j++ {
		if r.cells[j].Track == Branch && r.cells[j].Parent == r.cells[i].Parent {
			return true
		}
	}
	return false
}

// Render draws one row. Colors are assigned from colors as threads are first
// seen, so rows must be rendered in order with one map to keep each
// thread's color stable.
func Render(row Row, colors *ColorMap) []Glyph {
	r := &renderer{cells: row.Cells, colors: colors}
	if len(r.cells) == 0 {
		return nil
	}

	// the first column has nothing to look back at
	first := r.cells[0]
	switch first.Track {
	case Continue:
		r.draw(first.Related, VLine)
	case Node:
		r.hline = r.hlineAfter(-1)
		if r.mergeAfter(-1) {
			r.plain(BigBullet)
		} else {
			r.plain(Bullet)
		}
	case ContinueRight:
		r.draw(first.Related, UpRight)
	}

	for i := 1; i < len(r.cells); i++ {
		c := r.cells[i]
		prev := r.cells[i-1].Track

		switch c.Track {
		case Continue:
			if r.hline != nil {
				if prev == Node {
					r.draw(*r.hline, HalfHLine)
				} else {
					r.draw(*r.hline, HLine)
				}
			} else if drawn(prev) {
				r.plain(Space)
			}
			r.draw(c.Related, VLine)

		case ContinueRight:
			if prev == ContinueRight || r.convergesLater(i) {
				// middle of a bridge
				r.draw(c.Related, HLine)
				r.draw(c.Related, HLine)
				continue
			}
			if r.hline != nil {
				r.draw(*r.hline, HLine)
			} else {
				r.plain(Space)
			}
			r.draw(c.Related, UpRight)

		case ContinueUp:
			if prev == Node {
				r.draw(c.Related, HalfHLine)
			} else {
				r.draw(c.Related, HLine)
			}
			r.draw(c.Related, RightUp)

		case Node:
			if drawn(prev) {
				r.plain(Space)
			}
			r.hline = r.hlineAfter(i)
			if r.mergeAfter(i) {
				r.plain(BigBullet)
			} else {
				r.plain(Bullet)
			}

		case Branch, Merge:
			if prev == Node {
				r.draw(c.Related, HalfHLine)
			} else {
				r.draw(c.Related, HLine)
			}
			tee, corner := TeeUp, RightUp
			if c.Track == Merge {
				tee, corner = TeeDown, RightDown
			}
			if r.moreOfRun(i) {
				r.draw(c.Related, tee)
			} else {
				r.draw(c.Related, corner)
				r.hline = nil
			}
		}
	}
	return r.out
}

// RenderGraph renders every row of g in order with one color map.
func RenderGraph(g Graph, colors *ColorMap) [][]Glyph {
	rows := make([][]Glyph, 0, len(g))
	for _, row := range g {
		rows = append(rows, Render(row, colors))
	}
	return rows
}

// String joins the characters of glyphs, dropping colors.
func String(glyphs []Glyph) string {
	var sb strings.Builder
	for _, g := range glyphs {
		sb.WriteString(g.Char)
	}
	return sb.String()
}
