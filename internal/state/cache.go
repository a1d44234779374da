package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/kurobon/gitgraph/internal/git"
)

// MaxCacheAge defines how long cached stats are considered valid.
const MaxCacheAge = 5 * time.Second

type cachedStats struct {
	stats    []git.Stat
	cachedAt time.Time
}

// StatsCache keeps file stats per action so that moving back and forth over
// the log doesn't re-run the same diff.
type StatsCache struct {
	mu      sync.RWMutex
	entries map[string]cachedStats
	now     func() time.Time
}

func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string]cachedStats), now: time.Now}
}

func cacheKey(a git.DiffAction) string {
	return fmt.Sprintf("%d|%s|%s|%t", a.Target.Kind, a.Target.Ref, a.Anchor, a.IsShow())
}

// Get returns cached stats if valid.
func (c *StatsCache) Get(a git.DiffAction) ([]git.Stat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cacheKey(a)]
	if !ok || c.now().Sub(e.cachedAt) > MaxCacheAge {
		return nil, false
	}
	result := make([]git.Stat, len(e.stats))
	copy(result, e.stats)
	return result, true
}

// Set stores stats for an action.
func (c *StatsCache) Set(a git.DiffAction, stats []git.Stat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(a)] = cachedStats{stats: stats, cachedAt: c.now()}
}

// Invalidate drops every entry.
func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedStats)
}
