// Package view turns log, stats and diff models into styled terminal lines.
package view

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kurobon/gitgraph/internal/graph"
)

// NewRenderer returns a lipgloss renderer for w. Without color every style
// renders as plain text.
func NewRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// styles holds the renderer and a style cache per palette color.
type styles struct {
	r     *lipgloss.Renderer
	fg    map[int]lipgloss.Style
	plain lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *styles {
	return &styles{r: r, fg: make(map[int]lipgloss.Style), plain: r.NewStyle()}
}

func (s *styles) color(c int) lipgloss.Style {
	if st, ok := s.fg[c]; ok {
		return st
	}
	st := s.r.NewStyle().Foreground(lipgloss.ANSIColor(uint(c)))
	s.fg[c] = st
	return st
}

func (s *styles) glyph(g graph.Glyph) string {
	if g.Color == graph.NoColor {
		return g.Char
	}
	return s.color(int(g.Color)).Render(g.Char)
}

func (s *styles) glyphs(gs []graph.Glyph) string {
	var sb strings.Builder
	for _, g := range gs {
		sb.WriteString(s.glyph(g))
	}
	return sb.String()
}
