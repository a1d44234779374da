package state

import (
	"strconv"
	"strings"

	"github.com/kurobon/gitgraph/internal/git"
)

// Stats is the file list of one action.
type Stats struct {
	list
	action git.DiffAction
	stats  []git.Stat
}

func NewStats(action git.DiffAction, stats []git.Stat) *Stats {
	return &Stats{action: action, stats: stats}
}

func (s *Stats) Action() git.DiffAction {
	return s.action
}

func (s *Stats) Items() []git.Stat {
	return s.stats
}

func (s *Stats) Len() int {
	return len(s.stats)
}

func (s *Stats) Cursor() int {
	return s.cursor
}

func (s *Stats) SetCursor(i int) {
	s.cursor = i
	s.clamp(len(s.stats))
}

// Current returns the stat under the cursor.
func (s *Stats) Current() (git.Stat, bool) {
	if len(s.stats) == 0 {
		return git.Stat{}, false
	}
	return s.stats[s.cursor], true
}

func (s *Stats) Status() string {
	return s.action.String()
}

func (s *Stats) SetSearch(query string) {
	s.query = query
}

// IsMatch searches the path and both counts.
func (s *Stats) IsMatch(i int) bool {
	if s.query == "" || i < 0 || i >= len(s.stats) {
		return false
	}
	st := s.stats[i]
	return strings.Contains(st.Path, s.query) ||
		strings.Contains(strconv.Itoa(st.Adds), s.query) ||
		strings.Contains(strconv.Itoa(st.Deletes), s.query)
}

func (s *Stats) SearchNext() bool {
	return s.next(len(s.stats), s.IsMatch)
}

func (s *Stats) SearchPrev() bool {
	return s.prev(s.IsMatch)
}
