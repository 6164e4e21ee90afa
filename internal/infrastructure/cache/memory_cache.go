// Package cache provides the status and disconnect-override stores. The
// in-memory implementations are the default; the redis-backed ones are
// selected when a shared cache is configured.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/ports"
)

func pairKey(integrationID, user string) string {
	return fmt.Sprintf("%s:%s", integrationID, user)
}

// MemoryStatusCache keeps cached connection statuses in a mutex-guarded
// map. Entries are evicted lazily when a read finds them expired; there is
// no background sweep.
type MemoryStatusCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CachedStatus
	now     func() time.Time
}

// NewMemoryStatusCache creates an empty in-memory status cache.
func NewMemoryStatusCache() *MemoryStatusCache {
	return NewMemoryStatusCacheWithClock(time.Now)
}

// NewMemoryStatusCacheWithClock creates a status cache with an injected
// clock, for tests.
func NewMemoryStatusCacheWithClock(now func() time.Time) *MemoryStatusCache {
	return &MemoryStatusCache{
		entries: make(map[string]domain.CachedStatus),
		now:     now,
	}
}

func (c *MemoryStatusCache) Get(_ context.Context, integrationID, user string) (*domain.CachedStatus, error) {
	key := pairKey(integrationID, user)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if entry.Expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry in the meantime.
		if current, ok := c.entries[key]; ok && current.Expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return &entry, nil
}

func (c *MemoryStatusCache) Set(_ context.Context, integrationID, user string, status domain.CachedStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pairKey(integrationID, user)] = status
	return nil
}

func (c *MemoryStatusCache) Delete(_ context.Context, integrationID, user string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, pairKey(integrationID, user))
	return nil
}

// MemoryOverrideStore tracks manual disconnect overrides in memory, one
// live entry per (integration, user) pair.
type MemoryOverrideStore struct {
	mu        sync.RWMutex
	expiresAt map[string]time.Time
	now       func() time.Time
}

// NewMemoryOverrideStore creates an empty in-memory override store.
func NewMemoryOverrideStore() *MemoryOverrideStore {
	return NewMemoryOverrideStoreWithClock(time.Now)
}

// NewMemoryOverrideStoreWithClock creates an override store with an
// injected clock, for tests.
func NewMemoryOverrideStoreWithClock(now func() time.Time) *MemoryOverrideStore {
	return &MemoryOverrideStore{
		expiresAt: make(map[string]time.Time),
		now:       now,
	}
}

func (s *MemoryOverrideStore) Set(_ context.Context, integrationID, user string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt[pairKey(integrationID, user)] = s.now().Add(ttl)
	return nil
}

func (s *MemoryOverrideStore) Active(_ context.Context, integrationID, user string) (bool, error) {
	key := pairKey(integrationID, user)

	s.mu.RLock()
	deadline, ok := s.expiresAt[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if s.now().After(deadline) {
		s.mu.Lock()
		if current, ok := s.expiresAt[key]; ok && s.now().After(current) {
			delete(s.expiresAt, key)
		}
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *MemoryOverrideStore) Clear(_ context.Context, integrationID, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expiresAt, pairKey(integrationID, user))
	return nil
}

var (
	_ ports.StatusCache   = (*MemoryStatusCache)(nil)
	_ ports.OverrideStore = (*MemoryOverrideStore)(nil)
)
