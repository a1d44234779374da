package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/logging"
)

// Session holds the loaded history of one repository. Reloads replace the
// log under the write lock; readers take the read lock through View.
type Session struct {
	source   git.Source
	logger   logging.Logger
	cache    *StatsCache
	log      *Log
	loadedAt time.Time
	// gen counts reloads; stats fetched under an older gen are not cached.
	gen      uint64
	now      func() time.Time
	mu       sync.RWMutex
}

// NewSession creates a session over source. Call Reload to load history.
func NewSession(source git.Source, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{
		source: source,
		logger: logger,
		cache:  NewStatsCache(),
		log:    NewLog(nil, time.Now()),
		now:    time.Now,
	}
}

func (s *Session) Source() git.Source {
	return s.source
}

// Reload re-reads history and rebuilds the graph. The cursor stays on the
// same commit when it is still in the log.
func (s *Session) Reload(ctx context.Context) error {
	start := s.now()
	commits, err := s.source.Log(ctx)
	if err != nil {
		s.logger.Error("history reload failed", "root", s.source.Root(), "error", err)
		return fmt.Errorf("failed to load history: %w", err)
	}
	next := NewLog(commits, start)

	s.mu.Lock()
	next.carry(s.log)
	s.log = next
	s.loadedAt = start
	s.gen++
	s.cache.Invalidate()
	s.mu.Unlock()

	s.logger.Info("history loaded",
		"root", s.source.Root(),
		"commits", len(commits),
		"width", next.Graph().Width(),
		"took", s.now().Sub(start),
	)
	return nil
}

// LoadedAt is when the current log was loaded.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// View calls fn with the current log under the read lock. fn must not keep
// the log or change it.
func (s *Session) View(fn func(*Log)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.log)
}

// Update calls fn with the current log under the write lock.
func (s *Session) Update(fn func(*Log)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.log)
}

// Stats returns the file stats of an action, cached until the next reload.
func (s *Session) Stats(ctx context.Context, action git.DiffAction) (*Stats, error) {
	s.mu.RLock()
	gen := s.gen
	cached, ok := s.cache.Get(action)
	s.mu.RUnlock()
	if ok {
		return NewStats(action, cached), nil
	}
	stats, err := s.source.Stats(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for %s: %w", action, err)
	}
	s.mu.RLock()
	if s.gen == gen {
		s.cache.Set(action, stats)
	}
	s.mu.RUnlock()
	s.logger.Debug("stats loaded", "action", action.String(), "files", len(stats))
	return NewStats(action, stats), nil
}

// FileDiff returns the diff of one file of an action.
func (s *Session) FileDiff(ctx context.Context, stat git.Stat, action git.DiffAction) (git.FileDiff, error) {
	fd, err := s.source.FileDiff(ctx, stat.Path, stat.OldPath, action)
	if err != nil {
		return git.FileDiff{}, fmt.Errorf("failed to diff %s: %w", stat.Path, err)
	}
	return fd, nil
}

// Message returns the full message of a commit.
func (s *Session) Message(ctx context.Context, ref git.Ref) (string, error) {
	msg, err := s.source.Message(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to read message of %s: %w", ref, err)
	}
	return msg, nil
}
