package graph

import (
	"fmt"
	"testing"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commit builds a commit from a ref and its parents.
func commit(ref string, parents ...string) git.Commit {
	return git.Commit{Ref: git.Ref(ref), Parents: git.Refs(parents...)}
}

func tracksOf(r Row) []Track {
	out := make([]Track, 0, len(r.Cells))
	for _, c := range r.Cells {
		out = append(out, c.Track)
	}
	return out
}

func countTrack(r Row, t Track) int {
	n := 0
	for _, c := range r.Cells {
		if c.Track == t {
			n++
		}
	}
	return n
}

func renderStrings(g Graph) []string {
	colors := NewColorMap()
	out := make([]string, 0, len(g))
	for _, glyphs := range RenderGraph(g, colors) {
		out = append(out, String(glyphs))
	}
	return out
}

func countGlyph(glyphs []Glyph, char string) int {
	n := 0
	for _, g := range glyphs {
		if g.Char == char {
			n++
		}
	}
	return n
}

func TestBuild_Linear(t *testing.T) {
	g := Build([]git.Commit{
		commit("C3", "C2"),
		commit("C2", "C1"),
		commit("C1"),
	})

	require.Len(t, g, 3)
	for i, row := range g {
		assert.Equal(t, []Track{Node}, tracksOf(row), "row %d", i)
	}
	assert.Equal(t, Cell{Parent: "C2", Related: "C2", Track: Node}, g[0].Cells[0])
	assert.Equal(t, Cell{Related: "C1", Track: Node}, g[2].Cells[0])
	assert.Equal(t, []string{"•", "•", "•"}, renderStrings(g))
}

func TestBuild_Merge(t *testing.T) {
	g := Build([]git.Commit{
		commit("M", "B", "A"),
		commit("B", "R"),
		commit("A", "R"),
		commit("R"),
	})

	require.Len(t, g, 4)
	assert.Equal(t, []Cell{
		{Parent: "B", Related: "B", Track: Node},
		{Parent: "A", Related: "A", Track: Merge},
	}, g[0].Cells)
	assert.Equal(t, []Cell{
		{Parent: "R", Related: "R", Track: Node},
		{Parent: "A", Related: "A", Track: Continue},
	}, g[1].Cells)
	assert.Equal(t, []Cell{
		{Parent: "R", Related: "R", Track: Continue},
		{Parent: "R", Related: "R", Track: Node},
	}, g[2].Cells)
	assert.Equal(t, []Cell{
		{Related: "R", Track: Node},
		{Related: "R", Track: Branch},
	}, g[3].Cells)

	assert.Equal(t, []string{"●╶╮", "• │", "│ •", "•╶╯"}, renderStrings(g))
}

func TestBuild_MergeOpensColumnForSecondParent(t *testing.T) {
	g := Build([]git.Commit{
		commit("M", "B", "A"),
		commit("B", "R"),
	})
	assert.Equal(t, 1, countTrack(g[0], Node))
	assert.Equal(t, 1, countTrack(g[0], Merge))
	require.Equal(t, 2, g[1].Len())
	assert.Equal(t, git.Ref("A"), g[1].Cells[1].Parent)
}

func TestBuild_Octopus(t *testing.T) {
	g := Build([]git.Commit{
		commit("O", "A", "B", "C"),
		commit("A", "R"),
		commit("B", "R"),
		commit("C", "R"),
		commit("R"),
	})

	assert.Equal(t, []Track{Node, Merge, Merge}, tracksOf(g[0]))
	assert.Equal(t, []Track{Node, Branch, Branch}, tracksOf(g[4]))

	glyphs := Render(g[0], NewColorMap())
	assert.Equal(t, 1, countGlyph(glyphs, TeeDown))
	assert.Equal(t, 1, countGlyph(glyphs, RightDown))
	assert.Equal(t, []string{"●╶┬─╮", "• │ │", "│ • │", "│ │ •", "•╶┴─╯"}, renderStrings(g))
}

func TestBuild_Convergence(t *testing.T) {
	g := Build([]git.Commit{
		commit("X", "C"),
		commit("Y", "C"),
		commit("C"),
	})

	assert.Equal(t, []Track{Node}, tracksOf(g[0]))
	assert.Equal(t, []Track{Continue, Node}, tracksOf(g[1]))
	assert.Equal(t, 1, countTrack(g[2], Node))
	assert.GreaterOrEqual(t, countTrack(g[2], Branch), 1)

	glyphs := Render(g[2], NewColorMap())
	assert.Equal(t, 1, countGlyph(glyphs, RightUp))
	assert.Equal(t, []string{"•", "│ •", "•╶╯"}, renderStrings(g))
}

func TestBuild_Bridge(t *testing.T) {
	g := Build([]git.Commit{
		commit("A", "K"),
		commit("B", "K"),
		commit("D", "Z"),
		commit("K", "R"),
		commit("Z", "R"),
		commit("R"),
	})

	assert.Equal(t, []Cell{
		{Parent: "R", Related: "R", Track: Node},
		{Related: "K", Track: Branch},
		{Parent: "Z", Related: "Z", Track: Continue},
	}, g[3].Cells)

	// the Z column moves left into the gap left by the closed branch
	assert.Equal(t, []Cell{
		{Parent: "R", Related: "R", Track: Continue},
		{Parent: "R", Related: "R", Track: Node},
		{Related: "Z", Track: ContinueUp},
	}, g[4].Cells)

	assert.Equal(t, []string{"•", "│ •", "│ │ •", "•╶╯ │", "│ •╶╯", "•╶╯"}, renderStrings(g))
}

func TestBuild_BridgeStart(t *testing.T) {
	g := Build([]git.Commit{
		commit("A", "K"),
		commit("B", "K"),
		commit("D", "Z"),
		commit("K", "R"),
		commit("W", "Z"),
	})

	assert.Equal(t, []Cell{
		{Parent: "R", Related: "R", Track: Continue},
		{Parent: "Z", Related: "Z", Track: ContinueRight},
		{Related: "Z", Track: ContinueUp},
		{Parent: "Z", Related: "Z", Track: Node},
	}, g[4].Cells)
	assert.Equal(t, "│ ╭─╯ •", renderStrings(g)[4])
}

func TestBuild_BridgeFromFirstColumn(t *testing.T) {
	g := Build([]git.Commit{
		commit("A", "K"),
		commit("D", "Z"),
		commit("K"),
		commit("W", "Z"),
	})

	assert.Equal(t, []Cell{
		{Parent: "Z", Related: "Z", Track: ContinueRight},
		{Related: "Z", Track: ContinueUp},
		{Parent: "Z", Related: "Z", Track: Node},
	}, g[3].Cells)

	// the jog starts with a corner even with nothing to its left
	colors := NewColorMap()
	rows := RenderGraph(g, colors)
	assert.Equal(t, "╭─╯ •", String(rows[3]))
	assert.Equal(t, UpRight, rows[3][0].Char)
	assert.Equal(t, colors.Get("Z"), rows[3][0].Color)
	assert.Equal(t, colors.Get("Z"), rows[3][2].Color)
}

func TestBuild_BranchAtBridgeCorner(t *testing.T) {
	g := Build([]git.Commit{
		commit("A", "K"),
		commit("B", "K"),
		commit("D", "Z"),
		commit("K", "Z"),
		commit("Z"),
	})

	assert.Equal(t, []Cell{
		{Related: "Z", Track: Node},
		{Related: "Z", Track: ContinueRight},
		{Related: "Z", Track: Branch},
	}, g[4].Cells)
	assert.Equal(t, "•───╯", renderStrings(g)[4])
}

func TestPlace_MidBridgeWithoutCorner(t *testing.T) {
	tracks := []Cell{
		{Parent: "X", Related: "X", Track: Continue},
		{Parent: "X", Related: "X", Track: ContinueRight},
	}
	got := place(tracks, commit("X", "P"))
	assert.Equal(t, []Cell{
		{Parent: "P", Related: "P", Track: Node},
		{Related: "X", Track: Branch},
	}, got)
}

func TestBuild_Sentinels(t *testing.T) {
	commits := git.WithSentinels([]git.Commit{
		commit("abc1234", "def5678"),
		commit("def5678"),
	}, "abc1234", true, true)

	g := Build(commits)
	require.Len(t, g, 4)
	assert.Equal(t, []Track{Node}, tracksOf(g[0]))
	assert.Equal(t, []Track{Continue, Node}, tracksOf(g[1]))
	assert.Equal(t, []Track{Node, Branch}, tracksOf(g[2]))
	assert.Equal(t, []Track{Node}, tracksOf(g[3]))
}

func TestBuild_LengthAndSingleNode(t *testing.T) {
	fixtures := map[string][]git.Commit{
		"empty":  nil,
		"linear": {commit("b", "a"), commit("a")},
		"heads":  {commit("x"), commit("y"), commit("z")},
		"merge":  {commit("m", "b", "a"), commit("b", "r"), commit("a", "r"), commit("r")},
	}
	for name, commits := range fixtures {
		t.Run(name, func(t *testing.T) {
			g := Build(commits)
			require.Len(t, g, len(commits))
			for i, row := range g {
				assert.Equal(t, 1, countTrack(row, Node), "row %d", i)
				assert.GreaterOrEqual(t, row.Node(), 0)
			}
		})
	}
}

func TestBuild_LinearNeverBridges(t *testing.T) {
	var commits []git.Commit
	for i := 20; i > 0; i-- {
		commits = append(commits, commit(fmt.Sprint(i), fmt.Sprint(i-1)))
	}
	for _, row := range Build(commits) {
		assert.Equal(t, []Track{Node}, tracksOf(row))
	}
}

func TestBuild_Deterministic(t *testing.T) {
	commits := []git.Commit{
		commit("O", "A", "B", "C"),
		commit("A", "K"),
		commit("B", "K"),
		commit("D", "Z"),
		commit("C", "K"),
		commit("K", "Z"),
		commit("Z"),
	}
	a, b := Build(commits), Build(commits)
	assert.Equal(t, a, b)
	assert.Equal(t, RenderGraph(a, NewColorMap()), RenderGraph(b, NewColorMap()))
}

func TestBuild_MalformedInputTerminates(t *testing.T) {
	commits := []git.Commit{
		commit("A", "B"),
		commit("B", "A"),
		commit("A", "B"),
		commit("", ""),
		commit("C", "C", "C"),
		commit("C"),
	}
	g := Build(commits)
	assert.Len(t, g, len(commits))
	assert.NotPanics(t, func() { RenderGraph(g, NewColorMap()) })
}

func TestRender_ColorStability(t *testing.T) {
	g := Build([]git.Commit{
		commit("M", "B", "A"),
		commit("B", "R"),
		commit("A", "R"),
		commit("R"),
	})
	colors := NewColorMap()
	rows := RenderGraph(g, colors)

	assert.Equal(t, NoColor, rows[0][0].Color)
	assert.Equal(t, ColorKey(1), rows[0][1].Color)
	assert.Equal(t, ColorKey(1), rows[1][2].Color)
	assert.Equal(t, ColorKey(2), rows[2][0].Color)
	assert.Equal(t, ColorKey(2), rows[3][2].Color)
	assert.Equal(t, 2, colors.Len())
	assert.Equal(t, ColorKey(1), colors.Get("A"))
}

func TestRender_EmptyRow(t *testing.T) {
	assert.Empty(t, Render(Row{}, NewColorMap()))
}

func TestColorMap(t *testing.T) {
	m := NewColorMap(10, 20)
	assert.Equal(t, ColorKey(10), m.Get("a"))
	assert.Equal(t, ColorKey(20), m.Get("b"))
	assert.Equal(t, ColorKey(10), m.Get("c"))
	assert.Equal(t, ColorKey(20), m.Get("b"))
	assert.Equal(t, 3, m.Len())

	m.Reset()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, ColorKey(10), m.Get("c"))

	def := NewColorMap()
	for i := 0; i < 7; i++ {
		def.Get(git.Ref(fmt.Sprint(i)))
	}
	assert.Equal(t, ColorKey(1), def.Get("6"))
}

func TestTrack_String(t *testing.T) {
	assert.Equal(t, "ContinueRight", ContinueRight.String())
	assert.Equal(t, "Unknown", Track(42).String())
}

func TestGraph_Width(t *testing.T) {
	g := Build([]git.Commit{commit("O", "A", "B", "C"), commit("A")})
	assert.Equal(t, 3, g.Width())
	assert.Equal(t, -1, Row{}.Node())
}
