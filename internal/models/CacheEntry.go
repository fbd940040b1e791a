package models

import "time"

// CacheEntry is the stored form of a snapshot: {"t": <unix millis>, "data": {...}}.
type CacheEntry struct {
	T    int64           `json:"t"`
	Data WeatherSnapshot `json:"data"`
}

func NewCacheEntry(capturedAt time.Time, data WeatherSnapshot) CacheEntry {
	return CacheEntry{
		T:    capturedAt.UnixMilli(),
		Data: data,
	}
}

func (e CacheEntry) CapturedAt() time.Time {
	return time.UnixMilli(e.T)
}

// FreshAt reports whether the entry is younger than ttl at the given instant.
func (e CacheEntry) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt()) < ttl
}
