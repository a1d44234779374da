package git

import (
	"strconv"
	"strings"
)

// DiffLineKind classifies a line of a unified diff.
type DiffLineKind int

const (
	LineNone DiffLineKind = iota
	LineStart
	LineHunk
	LineAdd
	LineDel
	LineSame
)

// DiffLine is the metadata of one diff line. Old and New are the line numbers
// in the old and new file and are only set for Add, Del and Same lines.
type DiffLine struct {
	Kind DiffLineKind `json:"kind"`
	Old  int          `json:"old,omitempty"`
	New  int          `json:"new,omitempty"`
}

// FileDiff is the patch of a single file with per-line metadata.
type FileDiff struct {
	Path    string     `json:"path"`
	OldPath string     `json:"oldPath"`
	Action  DiffAction `json:"-"`
	Lines   []string   `json:"lines"`
	Meta    []DiffLine `json:"meta"`
}

type hunkCursor struct {
	old, new int
}

// parseHunkHeader reads the start lines of "@@ -a,b +c,d @@".
func parseHunkHeader(line string) (hunkCursor, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields[1]) < 2 || len(fields[2]) < 2 {
		return hunkCursor{}, false
	}
	oldStart, err := strconv.Atoi(strings.SplitN(fields[1][1:], ",", 2)[0])
	if err != nil {
		return hunkCursor{}, false
	}
	newStart, err := strconv.Atoi(strings.SplitN(fields[2][1:], ",", 2)[0])
	if err != nil {
		return hunkCursor{}, false
	}
	return hunkCursor{old: oldStart, new: newStart}, true
}

func metaLine(line string) DiffLine {
	switch {
	case strings.HasPrefix(line, "d"):
		return DiffLine{Kind: LineStart}
	case strings.HasPrefix(line, "@"):
		return DiffLine{Kind: LineHunk}
	default:
		return DiffLine{Kind: LineNone}
	}
}

// ParseFileDiff splits patch text into lines and tags each with its kind and
// line numbers. Malformed hunk headers end the current hunk instead of
// failing.
func ParseFileDiff(text string, action DiffAction) FileDiff {
	fd := FileDiff{Action: action}
	if text == "" {
		return fd
	}
	fd.Lines = strings.Split(strings.TrimRight(text, "\n"), "\n")
	fd.Meta = make([]DiffLine, len(fd.Lines))

	var hunk *hunkCursor
	for i, s := range fd.Lines {
		switch {
		case strings.HasPrefix(s, "diff "):
			hunk = nil
			fd.Meta[i] = metaLine(s)
		case strings.HasPrefix(s, "@@"):
			if h, ok := parseHunkHeader(s); ok {
				hunk = &h
				fd.Meta[i] = DiffLine{Kind: LineHunk}
			} else {
				hunk = nil
				fd.Meta[i] = DiffLine{Kind: LineNone}
			}
		case hunk != nil && strings.HasPrefix(s, `\`):
			// "\ No newline at end of file"
			fd.Meta[i] = DiffLine{Kind: LineNone}
		case hunk != nil:
			line := DiffLine{Old: hunk.old, New: hunk.new}
			switch {
			case strings.HasPrefix(s, "+"):
				line.Kind = LineAdd
				hunk.new++
			case strings.HasPrefix(s, "-"):
				line.Kind = LineDel
				hunk.old++
			default:
				line.Kind = LineSame
				hunk.new++
				hunk.old++
			}
			fd.Meta[i] = line
		case strings.HasPrefix(s, "--- "):
			fd.OldPath = s[4:]
			fd.Meta[i] = metaLine(s)
		case strings.HasPrefix(s, "+++ "):
			fd.Path = s[4:]
			fd.Meta[i] = metaLine(s)
		default:
			fd.Meta[i] = metaLine(s)
		}
	}
	return fd
}
