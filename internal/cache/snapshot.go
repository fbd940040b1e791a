package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
	"weather-dashboard/pkg/metrics"
)

// Stats aggregates snapshot cache activity across sessions.
type Stats struct {
	hits        atomic.Int64
	misses      atomic.Int64
	readErrors  atomic.Int64
	writeErrors atomic.Int64
}

type StatsSnapshot struct {
	Hits        int64   `json:"hitCount"`
	Misses      int64   `json:"missCount"`
	ReadErrors  int64   `json:"readErrorCount"`
	WriteErrors int64   `json:"writeErrorCount"`
	HitRate     float64 `json:"hitRate"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	out := StatsSnapshot{
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		ReadErrors:  s.readErrors.Load(),
		WriteErrors: s.writeErrors.Load(),
	}
	if total := out.Hits + out.Misses; total > 0 {
		out.HitRate = float64(out.Hits) / float64(total)
	}
	return out
}

// Key is the per-city storage key inside a session namespace.
func Key(id models.CityID) string {
	return "weather_" + id.String()
}

func sessionPrefix(session string) string {
	return "session:" + session + ":"
}

// SnapshotCache is the read-through cache of one browser session. Storage
// errors are swallowed: a failed read is a miss, a failed write is a no-op.
type SnapshotCache struct {
	store   Store
	session string
	ttl     time.Duration
	stats   *Stats
	l       *logger.Logger
}

func NewSnapshotCache(store Store, session string, ttl time.Duration, stats *Stats, l *logger.Logger) *SnapshotCache {
	if stats == nil {
		stats = &Stats{}
	}
	return &SnapshotCache{
		store:   store,
		session: session,
		ttl:     ttl,
		stats:   stats,
		l:       l,
	}
}

func (c *SnapshotCache) TTL() time.Duration {
	return c.ttl
}

func (c *SnapshotCache) key(id models.CityID) string {
	return sessionPrefix(c.session) + Key(id)
}

// Fresh returns the entry for id when one exists and is younger than the TTL at now.
func (c *SnapshotCache) Fresh(ctx context.Context, id models.CityID, now time.Time) (models.CacheEntry, bool) {
	raw, ok, err := c.store.Get(ctx, c.key(id))
	if err != nil {
		c.readFailed(id, err)
		return models.CacheEntry{}, false
	}
	if !ok {
		c.miss("miss")
		return models.CacheEntry{}, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.readFailed(id, fmt.Errorf("%w: decode entry: %w", ErrCacheFailure, err))
		return models.CacheEntry{}, false
	}

	if !entry.FreshAt(now, c.ttl) {
		c.miss("stale")
		return models.CacheEntry{}, false
	}

	c.stats.hits.Add(1)
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return entry, true
}

// Put overwrites the entry for id. It reports whether the write succeeded.
func (c *SnapshotCache) Put(ctx context.Context, id models.CityID, entry models.CacheEntry) bool {
	raw, err := json.Marshal(entry)
	if err == nil {
		err = c.store.Set(ctx, c.key(id), raw)
	}
	if err != nil {
		c.stats.writeErrors.Add(1)
		metrics.CacheWrites.WithLabelValues("error").Inc()
		c.devWarning("cache write error", id, err)
		return false
	}

	metrics.CacheWrites.WithLabelValues("ok").Inc()
	return true
}

// Len counts the entries held for this session.
func (c *SnapshotCache) Len(ctx context.Context) (int, error) {
	keys, err := c.store.Keys(ctx, sessionPrefix(c.session))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear drops every entry of this session and returns how many were removed.
func (c *SnapshotCache) Clear(ctx context.Context) (int, error) {
	keys, err := c.store.Keys(ctx, sessionPrefix(c.session))
	if err != nil {
		return 0, err
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (c *SnapshotCache) miss(reason string) {
	c.stats.misses.Add(1)
	metrics.CacheLookups.WithLabelValues(reason).Inc()
}

func (c *SnapshotCache) readFailed(id models.CityID, err error) {
	c.stats.misses.Add(1)
	c.stats.readErrors.Add(1)
	metrics.CacheLookups.WithLabelValues("error").Inc()
	c.devWarning("cache read error", id, err)
}

func (c *SnapshotCache) devWarning(msg string, id models.CityID, err error) {
	if c.l == nil || !c.l.IsDevelopment() {
		return
	}
	c.l.Warning(msg, map[string]any{
		"session": c.session,
		"cityId":  id.String(),
		"err":     err.Error(),
	})
}
