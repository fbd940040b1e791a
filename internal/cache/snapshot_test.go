package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logger"
)

// failingStore fails every operation, like storage that is full or unavailable.
type failingStore struct {
	*MemoryStore
	failGet bool
	failSet bool
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("storage unavailable")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func newFailingStore(failGet, failSet bool) *failingStore {
	return &failingStore{MemoryStore: NewMemoryStore(0), failGet: failGet, failSet: failSet}
}

var captured = time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

func TestSnapshotCache_FreshHit(t *testing.T) {
	stats := &Stats{}
	c := NewSnapshotCache(NewMemoryStore(0), "s1", 5*time.Minute, stats, nil)
	ctx := context.Background()

	require.True(t, c.Put(ctx, "A", models.NewCacheEntry(captured, models.WeatherSnapshot{CityName: "A"})))

	entry, ok := c.Fresh(ctx, "A", captured.Add(10*time.Second))
	require.True(t, ok)
	assert.Equal(t, "A", entry.Data.CityName)
	assert.True(t, entry.CapturedAt().Equal(captured))
	assert.Equal(t, int64(1), stats.Snapshot().Hits)
}

func TestSnapshotCache_StaleIsMiss(t *testing.T) {
	stats := &Stats{}
	c := NewSnapshotCache(NewMemoryStore(0), "s1", 5*time.Minute, stats, nil)
	ctx := context.Background()

	c.Put(ctx, "A", models.NewCacheEntry(captured, models.WeatherSnapshot{CityName: "A"}))

	_, ok := c.Fresh(ctx, "A", captured.Add(301*time.Second))
	assert.False(t, ok)

	_, ok = c.Fresh(ctx, "B", captured)
	assert.False(t, ok)

	snap := stats.Snapshot()
	assert.Equal(t, int64(2), snap.Misses)
	assert.Zero(t, snap.Hits)
	assert.Zero(t, snap.HitRate)
}

func TestSnapshotCache_SessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	a := NewSnapshotCache(store, "a", time.Minute, nil, nil)
	b := NewSnapshotCache(store, "b", time.Minute, nil, nil)

	a.Put(ctx, "1", models.NewCacheEntry(captured, models.WeatherSnapshot{}))

	_, ok := b.Fresh(ctx, "1", captured)
	assert.False(t, ok)

	n, err := a.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = b.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnapshotCache_Clear(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	c := NewSnapshotCache(store, "a", time.Minute, nil, nil)
	other := NewSnapshotCache(store, "b", time.Minute, nil, nil)

	c.Put(ctx, "1", models.NewCacheEntry(captured, models.WeatherSnapshot{}))
	c.Put(ctx, "2", models.NewCacheEntry(captured, models.WeatherSnapshot{}))
	other.Put(ctx, "1", models.NewCacheEntry(captured, models.WeatherSnapshot{}))

	removed, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, _ := other.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestSnapshotCache_ReadFailureIsMiss(t *testing.T) {
	stats := &Stats{}
	c := NewSnapshotCache(newFailingStore(true, false), "s1", time.Minute, stats, nil)

	_, ok := c.Fresh(context.Background(), "A", captured)
	assert.False(t, ok)
	assert.Equal(t, int64(1), stats.Snapshot().ReadErrors)
}

func TestSnapshotCache_CorruptEntryIsMiss(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "session:s1:weather_A", []byte("{not json")))

	c := NewSnapshotCache(store, "s1", time.Minute, nil, nil)
	_, ok := c.Fresh(ctx, "A", captured)
	assert.False(t, ok)
}

func TestSnapshotCache_WriteFailureIsSwallowed(t *testing.T) {
	stats := &Stats{}
	c := NewSnapshotCache(newFailingStore(false, true), "s1", time.Minute, stats, nil)

	ok := c.Put(context.Background(), "A", models.NewCacheEntry(captured, models.WeatherSnapshot{}))
	assert.False(t, ok)
	assert.Equal(t, int64(1), stats.Snapshot().WriteErrors)
}

func TestSnapshotCache_FailuresLoggedOnlyInDevelopment(t *testing.T) {
	for _, tc := range []struct {
		env  string
		want int
	}{
		{env: "development", want: 2},
		{env: "production", want: 0},
	} {
		t.Run(tc.env, func(t *testing.T) {
			core, recorded := observer.New(zap.DebugLevel)
			l := logger.NewWithCore("test-app", tc.env, core)
			c := NewSnapshotCache(newFailingStore(true, true), "s1", time.Minute, nil, l)

			c.Fresh(context.Background(), "A", captured)
			c.Put(context.Background(), "A", models.NewCacheEntry(captured, models.WeatherSnapshot{}))

			assert.Equal(t, tc.want, recorded.Len())
		})
	}
}

func TestStats_HitRate(t *testing.T) {
	stats := &Stats{}
	stats.hits.Add(3)
	stats.misses.Add(1)

	assert.InDelta(t, 0.75, stats.Snapshot().HitRate, 1e-9)
}
