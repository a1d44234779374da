package graph

import "github.com/kurobon/gitgraph/internal/git"

// Build lays out commits, which must list every commit ahead of its
// parents. It never fails: malformed input (duplicate refs, cycles, missing
// parents) yields a graph that may look wrong but is always complete, with
// one row per commit.
func Build(commits []git.Commit) Graph {
	g := make(Graph, 0, len(commits))
	var prev []Cell

	for _, c := range commits {
		tracks := bridge(prune(prev), prev)
		tracks = place(tracks, c)

		for _, p := range parentsAfterFirst(c) {
			tracks = append(tracks, Cell{Parent: p, Related: p, Track: Merge})
		}

		prev = tracks
		g = append(g, Row{Cells: tracks}.clone())
	}
	return g
}

// prune drops the cells that don't continue into the next row.
func prune(cells []Cell) []Cell {
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if !c.Parent.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

// bridge marks columns that kept their place as Continue, and draws a
// one-row jog for columns that moved left because a column before them was
// dropped. Filler cells are appended; cells already present are never
// overwritten.
func bridge(tracks, prev []Cell) []Cell {
	n := len(tracks)
	for i := 0; i < n && i < len(prev); i++ {
		if prev[i].Parent == tracks[i].Parent {
			tracks[i].Track = Continue
			continue
		}

		x := -1
		for j := i + 1; j < len(prev); j++ {
			if prev[j].Parent == tracks[i].Parent {
				x = j
				break
			}
		}
		if x < 0 {
			tracks[i].Track = Continue
			continue
		}

		tracks[i].Track = ContinueRight
		related := tracks[i].Parent
		for j := len(tracks); j < x; j++ {
			tracks = append(tracks, Cell{Related: related, Track: ContinueRight})
		}
		if x == len(tracks) {
			tracks = append(tracks, Cell{Related: related, Track: ContinueUp})
		}
	}
	return tracks
}

// place puts the commit's node on the first column waiting for it, closes
// every other column waiting for it, or opens a new column.
func place(tracks []Cell, c git.Commit) []Cell {
	first := firstParent(c)

	x := -1
	if !c.Ref.IsZero() {
		for i := range tracks {
			if tracks[i].Parent == c.Ref {
				x = i
				break
			}
		}
	}

	if x < 0 {
		related := first
		if related.IsZero() {
			related = c.Ref
		}
		return append(tracks, Cell{Parent: first, Related: related, Track: Node})
	}

	node := &tracks[x]
	node.Parent = first
	if !first.IsZero() {
		node.Related = first
	}
	node.Track = Node

	for y := x + 1; y < len(tracks); y++ {
		if tracks[y].Parent != c.Ref {
			continue
		}
		cell := &tracks[y]
		cell.Parent = ""
		cell.Related = c.Ref
		if cell.Track != ContinueRight {
			cell.Track = Branch
			continue
		}

		// converging mid-bridge: the branch belongs at the bridge's corner
		end := y + 1
		for end < len(tracks) && tracks[end].Track == ContinueRight {
			end++
		}
		if end < len(tracks) && tracks[end].Track == ContinueUp {
			tracks[end].Track = Branch
			tracks[end].Related = c.Ref
		} else {
			cell.Track = Branch
		}
	}
	return tracks
}

func firstParent(c git.Commit) git.Ref {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

func parentsAfterFirst(c git.Commit) []git.Ref {
	if len(c.Parents) < 2 {
		return nil
	}
	return c.Parents[1:]
}
