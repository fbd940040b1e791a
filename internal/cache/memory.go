package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps entries in process memory. It backs single-instance
// deployments and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	lifetime  time.Duration
	now       func() time.Time
	m         map[string]memoryEntry
	lastSweep time.Time
}

// sweepInterval spaces out the full scans Set makes for entries of sessions
// that are never read again.
const sweepInterval = time.Minute

// NewMemoryStore creates a store whose entries expire after lifetime; a zero
// lifetime keeps entries until deleted.
func NewMemoryStore(lifetime time.Duration) *MemoryStore {
	return &MemoryStore{
		lifetime: lifetime,
		now:      time.Now,
		m:        make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Driver() string {
	return "memory"
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.m[key]
	if ok && !s.expired(entry) {
		out := make([]byte, len(entry.value))
		copy(out, entry.value)
		s.mu.RUnlock()
		return out, true, nil
	}
	s.mu.RUnlock()

	if ok {
		s.evict(key)
	}
	return nil, false, nil
}

// evict drops key if it is still expired once the write lock is held.
func (s *MemoryStore) evict(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.m[key]; ok && s.expired(entry) {
		delete(s.m, key)
	}
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.lifetime > 0 && now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep()
		s.lastSweep = now
	}

	s.m[key] = memoryEntry{value: stored, expiresAt: expiry(now, s.lifetime)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.m, key)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	keys := make([]string, 0)
	for key := range s.m {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]memoryEntry)
	return nil
}

// sweep drops every expired entry. The caller holds the write lock.
func (s *MemoryStore) sweep() {
	for key, entry := range s.m {
		if s.expired(entry) {
			delete(s.m, key)
		}
	}
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}
