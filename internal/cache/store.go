package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheFailure marks storage errors raised by a Store. Snapshot cache
// callers never see it; it exists for logging and tests.
var ErrCacheFailure = errors.New("cache failure")

// Store is a byte-oriented key/value store. Entries written with Set live for
// the store's session lifetime.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Keys lists the keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Driver names a Store implementation for stats reporting.
type Driver interface {
	Driver() string
}

// expiry returns the absolute expiry for a write made at now, or the zero
// time when lifetime is not positive.
func expiry(now time.Time, lifetime time.Duration) time.Time {
	if lifetime <= 0 {
		return time.Time{}
	}
	return now.Add(lifetime)
}
