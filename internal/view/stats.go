package view

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/state"
)

// StatsView renders one line per changed file.
type StatsView struct {
	st *styles
}

func NewStatsView(r *lipgloss.Renderer) *StatsView {
	return &StatsView{st: newStyles(r)}
}

func counts(s git.Stat) (adds, dels string) {
	if s.Binary {
		return "-", "-"
	}
	return strconv.Itoa(s.Adds), strconv.Itoa(s.Deletes)
}

// Lines renders right-aligned add and delete counts followed by the path.
func (v *StatsView) Lines(s *state.Stats) []string {
	items := s.Items()
	addsWidth, delsWidth := 0, 0
	for _, it := range items {
		a, d := counts(it)
		addsWidth = max(addsWidth, len(a))
		delsWidth = max(delsWidth, len(d))
	}

	lines := make([]string, 0, len(items))
	for _, it := range items {
		a, d := counts(it)
		path := it.Path
		if it.OldPath != "" {
			path = it.OldPath + " => " + it.Path
		}
		lines = append(lines,
			v.st.color(2).Render(runewidth.FillLeft(a, addsWidth))+" "+
				v.st.color(1).Render(runewidth.FillLeft(d, delsWidth))+" "+
				path)
	}
	return lines
}
