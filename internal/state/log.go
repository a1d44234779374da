package state

import (
	"fmt"
	"time"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/graph"
)

const noMark = -1

// Log is the commit list with its graph, a cursor, an optional mark and an
// optional search query. It is not safe for concurrent use; Session guards
// the log it holds.
type Log struct {
	list
	commits []git.Commit
	fields  []CommitFields
	graph   graph.Graph
	mark    int
}

// NewLog lays out commits and formats their fields relative to now.
func NewLog(commits []git.Commit, now time.Time) *Log {
	fields := make([]CommitFields, len(commits))
	for i, c := range commits {
		fields[i] = NewCommitFields(c, now)
	}
	return &Log{
		commits: commits,
		fields:  fields,
		graph:   graph.Build(commits),
		mark:    noMark,
	}
}

func (l *Log) Commits() []git.Commit {
	return l.commits
}

func (l *Log) Graph() graph.Graph {
	return l.graph
}

func (l *Log) Fields(i int) CommitFields {
	return l.fields[i]
}

func (l *Log) Len() int {
	return len(l.commits)
}

func (l *Log) Cursor() int {
	return l.cursor
}

// SetCursor moves the cursor, clamped to the list.
func (l *Log) SetCursor(i int) {
	l.cursor = i
	l.clamp(len(l.commits))
}

// IndexOf returns the row of ref, or -1.
func (l *Log) IndexOf(ref git.Ref) int {
	for i, c := range l.commits {
		if c.Ref == ref {
			return i
		}
	}
	return -1
}

// SelectedRef is the ref under the cursor, zero for an empty log.
func (l *Log) SelectedRef() git.Ref {
	if len(l.commits) == 0 {
		return ""
	}
	return l.commits[l.cursor].Ref
}

// Selected is the target under the cursor, with sentinel rows mapped to the
// index or the working tree.
func (l *Log) Selected() git.Target {
	return git.TargetFor(l.SelectedRef())
}

// Marked returns the marked ref, if any.
func (l *Log) Marked() (git.Ref, bool) {
	if l.mark == noMark {
		return "", false
	}
	return l.commits[l.mark].Ref, true
}

// MarkIndex returns the marked row, or -1.
func (l *Log) MarkIndex() int {
	return l.mark
}

// ToggleMark marks the row under the cursor, or clears an existing mark.
// Sentinel rows can't be diffed against and are never marked.
func (l *Log) ToggleMark() bool {
	if l.mark != noMark {
		l.mark = noMark
		return true
	}
	ref := l.SelectedRef()
	if ref.IsZero() || ref.IsSentinel() {
		return false
	}
	l.mark = l.cursor
	return true
}

// Action is what the stats and diff panes show for the current selection:
// a diff between the mark and the selection, or the selection alone.
func (l *Log) Action() git.DiffAction {
	if m, ok := l.Marked(); ok {
		return git.Diff(l.Selected(), m)
	}
	return git.Show(l.Selected())
}

// Status is "mark..selected", or the selection when nothing is marked.
func (l *Log) Status() string {
	if m, ok := l.Marked(); ok {
		return fmt.Sprintf("%s..%s", m, l.Selected())
	}
	return l.Selected().String()
}

// SetSearch sets the query; an empty query disables search.
func (l *Log) SetSearch(query string) {
	l.query = query
}

func (l *Log) Search() string {
	return l.query
}

// IsMatch reports whether row i matches the query.
func (l *Log) IsMatch(i int) bool {
	if l.query == "" || i < 0 || i >= len(l.fields) {
		return false
	}
	return l.fields[i].Contains(l.query)
}

// SearchNext moves the cursor to the next matching row.
func (l *Log) SearchNext() bool {
	return l.next(len(l.commits), l.IsMatch)
}

// SearchPrev moves the cursor to the previous matching row.
func (l *Log) SearchPrev() bool {
	return l.prev(l.IsMatch)
}

// carry moves cursor, mark and query from old onto l, following refs so a
// reload keeps the user's place.
func (l *Log) carry(old *Log) {
	if old == nil {
		return
	}
	l.query = old.query
	if i := l.IndexOf(old.SelectedRef()); i >= 0 {
		l.cursor = i
	} else {
		l.SetCursor(old.cursor)
	}
	if m, ok := old.Marked(); ok {
		if i := l.IndexOf(m); i >= 0 {
			l.mark = i
		}
	}
}
