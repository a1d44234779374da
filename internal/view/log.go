package view

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/state"
)

// DefaultAuthorWidth caps the author column.
const DefaultAuthorWidth = 20

// conventional matches "type(scope)!:" subject prefixes.
var conventional = regexp.MustCompile(`^\w+(\(\w+\))?!?:.`)

// LogView renders one line per commit: hash, age, author, graph,
// decorations and subject.
type LogView struct {
	st          *styles
	authorWidth int
	palette     []graph.ColorKey
}

// NewLogView creates a view. A non-positive authorWidth uses
// DefaultAuthorWidth; an empty palette uses graph.DefaultPalette.
func NewLogView(r *lipgloss.Renderer, authorWidth int, palette []graph.ColorKey) *LogView {
	if authorWidth <= 0 {
		authorWidth = DefaultAuthorWidth
	}
	return &LogView{st: newStyles(r), authorWidth: authorWidth, palette: palette}
}

// Truncate shortens s to width display columns, ending it with "..." when
// it doesn't fit.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// Lines renders every row of l. Each call starts from an empty color map.
func (v *LogView) Lines(l *state.Log) []string {
	n := l.Len()
	if n == 0 {
		return nil
	}

	authorWidth, timeWidth := 0, 0
	for i := 0; i < n; i++ {
		f := l.Fields(i)
		authorWidth = max(authorWidth, runewidth.StringWidth(f.Author))
		timeWidth = max(timeWidth, runewidth.StringWidth(f.Age))
	}
	authorWidth = min(authorWidth, v.authorWidth)

	glyphs := graph.RenderGraph(l.Graph(), graph.NewColorMap(v.palette...))
	marked := v.st.r.NewStyle().Background(lipgloss.ANSIColor(8))

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		f := l.Fields(i)
		var sb strings.Builder

		sb.WriteString(v.st.color(5).Render(f.Hash.String()))
		sb.WriteString(" ")
		sb.WriteString(v.st.color(4).Render(runewidth.FillLeft(f.Age, timeWidth)))
		sb.WriteString(" ")
		author := runewidth.FillRight(Truncate(f.Author, authorWidth), authorWidth)
		sb.WriteString(v.st.color(2).Render(author))
		sb.WriteString(" ")
		sb.WriteString(v.st.glyphs(glyphs[i]))
		sb.WriteString(" ")

		if f.Head != "" {
			sb.WriteString(v.st.color(6).Bold(true).Render(f.Head))
			sb.WriteString(" ")
		}
		for _, b := range f.Branches {
			sb.WriteString(v.st.color(6).Render(b) + " ")
		}
		for _, t := range f.Tags {
			sb.WriteString(v.st.color(5).Render(t) + " ")
		}
		for _, r := range f.Refs {
			sb.WriteString(v.st.color(3).Render(r) + " ")
		}
		sb.WriteString(v.subject(f.Subject))

		line := sb.String()
		if i == l.MarkIndex() {
			line = marked.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

// subject bolds a conventional commit prefix.
func (v *LogView) subject(s string) string {
	if !conventional.MatchString(s) {
		return s
	}
	colon := strings.Index(s, ":")
	return v.st.plain.Bold(true).Render(s[:colon+1]) + s[colon+1:]
}
