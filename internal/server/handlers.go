// Package server exposes a loaded history as JSON for a web front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/logging"
	"github.com/kurobon/gitgraph/internal/state"
)

type Server struct {
	Session *state.Session
	Mux     *http.ServeMux
	// Console, when set, is served on /api/console.
	Console *logging.Console
	logger  logging.Logger
	palette []graph.ColorKey
}

// NewServer serves sess. An empty palette uses graph.DefaultPalette.
func NewServer(sess *state.Session, logger logging.Logger, palette []graph.ColorKey) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		Session: sess,
		Mux:     http.NewServeMux(),
		logger:  logger,
		palette: palette,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Mux.HandleFunc("/ping", s.handlePing)
	s.Mux.HandleFunc("/api/log", s.handleLog)
	s.Mux.HandleFunc("/api/reload", s.handleReload)
	s.Mux.HandleFunc("/api/stats", s.handleStats)
	s.Mux.HandleFunc("/api/diff", s.handleDiff)
	s.Mux.HandleFunc("/api/message", s.handleMessage)
	s.Mux.HandleFunc("/api/cursor", s.handleCursor)
	s.Mux.HandleFunc("/api/mark", s.handleMark)
	s.Mux.HandleFunc("/api/search", s.handleSearch)
	s.Mux.HandleFunc("/api/console", s.handleConsole)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Mux.ServeHTTP(w, r)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "pong",
		"root":    s.Session.Source().Root(),
	})
}

// LogEntry is one row of /api/log.
type LogEntry struct {
	Commit git.Commit    `json:"commit"`
	Cells  []graph.Cell  `json:"cells"`
	Glyphs []graph.Glyph `json:"glyphs"`
	Age    string        `json:"age"`
	Match  bool          `json:"match,omitempty"`
}

type LogResponse struct {
	Root    string     `json:"root"`
	Width   int        `json:"width"`
	Entries []LogEntry `json:"entries"`
	Selection
}

// Selection is the cursor, mark and search state of the log.
type Selection struct {
	Cursor   int     `json:"cursor"`
	Selected git.Ref `json:"selected,omitempty"`
	Marked   git.Ref `json:"marked,omitempty"`
	Status   string  `json:"status"`
	Search   string  `json:"search,omitempty"`
}

func selectionOf(l *state.Log) Selection {
	sel := Selection{
		Cursor:   l.Cursor(),
		Selected: l.SelectedRef(),
		Status:   l.Status(),
		Search:   l.Search(),
	}
	sel.Marked, _ = l.Marked()
	return sel
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	resp := LogResponse{Root: s.Session.Source().Root(), Entries: []LogEntry{}}
	s.Session.View(func(l *state.Log) {
		g := l.Graph()
		glyphs := graph.RenderGraph(g, graph.NewColorMap(s.palette...))
		resp.Width = g.Width()
		resp.Selection = selectionOf(l)
		for i, c := range l.Commits() {
			resp.Entries = append(resp.Entries, LogEntry{
				Commit: c,
				Cells:  g[i].Cells,
				Glyphs: glyphs[i],
				Age:    l.Fields(i).Age,
				Match:  l.IsMatch(i),
			})
		}
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if err := s.Session.Reload(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	var n int
	s.Session.View(func(l *state.Log) { n = l.Len() })
	writeJSON(w, http.StatusOK, map[string]any{"commits": n, "loadedAt": s.Session.LoadedAt()})
}

// actionOf reads ?target= and ?anchor=. A missing target falls back to the
// log's current action.
func (s *Server) actionOf(r *http.Request) git.DiffAction {
	q := r.URL.Query()
	target := q.Get("target")
	if target == "" {
		var a git.DiffAction
		s.Session.View(func(l *state.Log) { a = l.Action() })
		return a
	}
	return git.ActionFor(git.NewRef(target), git.NewRef(q.Get("anchor")))
}

type StatsResponse struct {
	Action  string     `json:"action"`
	Files   []git.Stat `json:"files"`
	Cursor  int        `json:"cursor"`
	Current *git.Stat  `json:"current,omitempty"`
	Search  string     `json:"search,omitempty"`
	Matches []int      `json:"matches,omitempty"`
}

// handleStats lists the files of an action. ?cursor= places the cursor and
// ?search= moves it to the first match at or after it; ?dir=next or
// ?dir=prev steps to the following or preceding match instead.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	q := r.URL.Query()
	cursor, err := intParam(q.Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dir, err := dirParam(q.Get("dir"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	action := s.actionOf(r)
	stats, err := s.Session.Stats(r.Context(), action)
	if err != nil {
		s.fail(w, err)
		return
	}
	stats.SetCursor(cursor)
	stats.SetSearch(q.Get("search"))
	switch {
	case dir == "prev":
		stats.SearchPrev()
	case dir == "next" || !stats.IsMatch(stats.Cursor()):
		stats.SearchNext()
	}

	files := stats.Items()
	if files == nil {
		files = []git.Stat{}
	}
	resp := StatsResponse{Action: stats.Status(), Files: files, Cursor: stats.Cursor(), Search: q.Get("search")}
	if cur, ok := stats.Current(); ok {
		resp.Current = &cur
	}
	for i := range files {
		if stats.IsMatch(i) {
			resp.Matches = append(resp.Matches, i)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// findRef locates ref in the log, accepting a full hash for an
// abbreviated one.
func findRef(l *state.Log, ref git.Ref) int {
	if i := l.IndexOf(ref); i >= 0 {
		return i
	}
	for i, c := range l.Commits() {
		if !c.Ref.IsSentinel() && len(c.Ref) > 0 && strings.HasPrefix(ref.String(), c.Ref.String()) {
			return i
		}
	}
	return -1
}

// handleCursor moves the log cursor to ?ref= or ?index=.
func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	q := r.URL.Query()
	ref := q.Get("ref")
	index, err := intParam(q.Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if ref == "" && q.Get("index") == "" {
		writeError(w, http.StatusBadRequest, errors.New("ref or index required"))
		return
	}

	var sel Selection
	found := true
	s.Session.Update(func(l *state.Log) {
		if ref != "" {
			index = findRef(l, git.NewRef(ref))
			found = index >= 0
		}
		if found {
			l.SetCursor(index)
		}
		sel = selectionOf(l)
	})
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("ref %s is not in the log", ref))
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// handleMark toggles the mark on the row under the cursor, after moving the
// cursor to ?ref= when given.
func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	ref := r.URL.Query().Get("ref")

	var sel Selection
	found, toggled := true, false
	s.Session.Update(func(l *state.Log) {
		if ref != "" {
			i := findRef(l, git.NewRef(ref))
			if found = i >= 0; !found {
				return
			}
			l.SetCursor(i)
		}
		toggled = l.ToggleMark()
		sel = selectionOf(l)
	})
	switch {
	case !found:
		writeError(w, http.StatusNotFound, fmt.Errorf("ref %s is not in the log", ref))
	case !toggled:
		writeError(w, http.StatusConflict, fmt.Errorf("%s can not be marked", sel.Status))
	default:
		s.logger.Debug("mark toggled", "status", sel.Status)
		writeJSON(w, http.StatusOK, sel)
	}
}

// handleSearch sets the log query from ?q= and moves the cursor to the next
// match, or the previous one with ?dir=prev. An empty query clears search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	q := r.URL.Query()
	dir, err := dirParam(q.Get("dir"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var sel Selection
	var moved bool
	s.Session.Update(func(l *state.Log) {
		l.SetSearch(q.Get("q"))
		if dir == "prev" {
			moved = l.SearchPrev()
		} else {
			moved = l.SearchNext()
		}
		sel = selectionOf(l)
	})
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "selection": sel})
}

func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	messages := []logging.Message{}
	if s.Console != nil {
		messages = s.Console.Messages()
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return n, nil
}

func dirParam(v string) (string, error) {
	switch v {
	case "", "next", "prev":
		return v, nil
	default:
		return "", fmt.Errorf("invalid direction %q", v)
	}
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path required"))
		return
	}
	stat := git.Stat{Path: path, OldPath: q.Get("oldPath")}
	fd, err := s.Session.FileDiff(r.Context(), stat, s.actionOf(r))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fd)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, errors.New("ref required"))
		return
	}
	msg, err := s.Session.Message(r.Context(), git.NewRef(ref))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ref": ref, "message": msg})
}

// fail logs err and writes it with the status it maps to.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "status", code, "error", err)
	}
	writeError(w, code, err)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, git.ErrNotRepository):
		return http.StatusNotFound
	case errors.Is(err, git.ErrMalformedLog), errors.Is(err, git.ErrMalformedStat):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
