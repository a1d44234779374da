package view

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kurobon/gitgraph/internal/git"
)

// DiffView renders a file diff with old and new line numbers.
type DiffView struct {
	st *styles
}

func NewDiffView(r *lipgloss.Renderer) *DiffView {
	return &DiffView{st: newStyles(r)}
}

// Lines renders each diff line. Content lines drop their +/-/space marker
// and gain "old new" line numbers; headers are colored by kind.
func (v *DiffView) Lines(fd git.FileDiff) []string {
	width := 0
	for _, m := range fd.Meta {
		width = max(width, len(strconv.Itoa(m.Old)), len(strconv.Itoa(m.New)))
	}

	lines := make([]string, 0, len(fd.Lines))
	for i, line := range fd.Lines {
		if line == "" {
			lines = append(lines, "")
			continue
		}
		meta := fd.Meta[i]
		switch meta.Kind {
		case git.LineAdd:
			lines = append(lines, v.numbered(8, 7, 2, meta, line, width))
		case git.LineDel:
			lines = append(lines, v.numbered(7, 8, 1, meta, line, width))
		case git.LineSame:
			lines = append(lines, v.numbered(7, 7, 15, meta, line, width))
		case git.LineStart:
			lines = append(lines, v.st.color(3).Render(line))
		case git.LineHunk:
			lines = append(lines, v.st.color(6).Render(line))
		default:
			lines = append(lines, line)
		}
	}
	return lines
}

func (v *DiffView) numbered(oldColor, newColor, lineColor int, meta git.DiffLine, line string, width int) string {
	return v.st.color(oldColor).Render(runewidth.FillLeft(strconv.Itoa(meta.Old), width)) + " " +
		v.st.color(newColor).Render(runewidth.FillLeft(strconv.Itoa(meta.New), width)) + " " +
		v.st.color(lineColor).Render(line[1:])
}
