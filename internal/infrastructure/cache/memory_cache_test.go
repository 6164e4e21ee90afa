package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"atlas-core-connect-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStatusCache_SetAndGet(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryStatusCacheWithClock(clock.Now)
	ctx := context.Background()

	err := c.Set(ctx, "gmail", "u@example.com", domain.CachedStatus{
		Connected:  true,
		Account:    "u@example.com",
		CapturedAt: clock.Now(),
		TTL:        time.Minute,
	})
	require.NoError(t, err)

	got, err := c.Get(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Connected)
	assert.Equal(t, "u@example.com", got.Account)
}

func TestMemoryStatusCache_MissForUnknownPair(t *testing.T) {
	c := NewMemoryStatusCache()

	got, err := c.Get(context.Background(), "gmail", "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStatusCache_ExpiresLazily(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryStatusCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gmail", "u@example.com", domain.CachedStatus{
		Connected:  true,
		CapturedAt: clock.Now(),
		TTL:        time.Minute,
	}))

	clock.Advance(59 * time.Second)
	got, err := c.Get(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.NotNil(t, got)

	clock.Advance(2 * time.Second)
	got, err = c.Get(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The expired entry is gone, not just hidden.
	c.mu.RLock()
	_, present := c.entries[pairKey("gmail", "u@example.com")]
	c.mu.RUnlock()
	assert.False(t, present)
}

func TestMemoryStatusCache_SetOverwrites(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryStatusCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gmail", "u@example.com", domain.CachedStatus{
		Connected: true, CapturedAt: clock.Now(), TTL: time.Minute,
	}))
	require.NoError(t, c.Set(ctx, "gmail", "u@example.com", domain.CachedStatus{
		Connected: false, CapturedAt: clock.Now(), TTL: 15 * time.Second,
	}))

	got, err := c.Get(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Connected)
	assert.Equal(t, 15*time.Second, got.TTL)
}

func TestMemoryStatusCache_Delete(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryStatusCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gmail", "u@example.com", domain.CachedStatus{
		Connected: true, CapturedAt: clock.Now(), TTL: time.Minute,
	}))
	require.NoError(t, c.Delete(ctx, "gmail", "u@example.com"))

	got, err := c.Get(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStatusCache_PairsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryStatusCacheWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gmail", "a@example.com", domain.CachedStatus{
		Connected: true, CapturedAt: clock.Now(), TTL: time.Minute,
	}))

	got, err := c.Get(ctx, "google-drive", "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "gmail", "b@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryOverrideStore_Lifecycle(t *testing.T) {
	clock := newFakeClock()
	s := NewMemoryOverrideStoreWithClock(clock.Now)
	ctx := context.Background()

	active, err := s.Active(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, s.Set(ctx, "gmail", "u@example.com", time.Hour))

	active, err = s.Active(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.True(t, active)

	clock.Advance(time.Hour + time.Second)
	active, err = s.Active(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestMemoryOverrideStore_Clear(t *testing.T) {
	clock := newFakeClock()
	s := NewMemoryOverrideStoreWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "gmail", "u@example.com", time.Hour))
	require.NoError(t, s.Clear(ctx, "gmail", "u@example.com"))

	active, err := s.Active(ctx, "gmail", "u@example.com")
	require.NoError(t, err)
	assert.False(t, active)
}
