package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/ports"

	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix   = "connect:status:"
	overrideKeyPrefix = "connect:override:"
)

// RedisStatusCache stores cached connection statuses in redis so multiple
// instances share one view of connectivity. TTLs are enforced by redis key
// expiry instead of read-time comparison.
type RedisStatusCache struct {
	rdb *redis.Client
}

// NewRedisStatusCache creates a redis-backed status cache.
func NewRedisStatusCache(rdb *redis.Client) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb}
}

func (c *RedisStatusCache) Get(ctx context.Context, integrationID, user string) (*domain.CachedStatus, error) {
	raw, err := c.rdb.Get(ctx, statusKeyPrefix+pairKey(integrationID, user)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached status: %w", err)
	}

	var status domain.CachedStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, fmt.Errorf("failed to decode cached status: %w", err)
	}
	return &status, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, integrationID, user string, status domain.CachedStatus) error {
	encoded, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode cached status: %w", err)
	}

	ttl := status.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := c.rdb.Set(ctx, statusKeyPrefix+pairKey(integrationID, user), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cached status: %w", err)
	}
	return nil
}

func (c *RedisStatusCache) Delete(ctx context.Context, integrationID, user string) error {
	if err := c.rdb.Del(ctx, statusKeyPrefix+pairKey(integrationID, user)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached status: %w", err)
	}
	return nil
}

// RedisOverrideStore keeps manual disconnect overrides in redis.
type RedisOverrideStore struct {
	rdb *redis.Client
}

// NewRedisOverrideStore creates a redis-backed override store.
func NewRedisOverrideStore(rdb *redis.Client) *RedisOverrideStore {
	return &RedisOverrideStore{rdb: rdb}
}

func (s *RedisOverrideStore) Set(ctx context.Context, integrationID, user string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, overrideKeyPrefix+pairKey(integrationID, user), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set disconnect override: %w", err)
	}
	return nil
}

func (s *RedisOverrideStore) Active(ctx context.Context, integrationID, user string) (bool, error) {
	n, err := s.rdb.Exists(ctx, overrideKeyPrefix+pairKey(integrationID, user)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check disconnect override: %w", err)
	}
	return n > 0, nil
}

func (s *RedisOverrideStore) Clear(ctx context.Context, integrationID, user string) error {
	if err := s.rdb.Del(ctx, overrideKeyPrefix+pairKey(integrationID, user)).Err(); err != nil {
		return fmt.Errorf("failed to clear disconnect override: %w", err)
	}
	return nil
}

var (
	_ ports.StatusCache   = (*RedisStatusCache)(nil)
	_ ports.OverrideStore = (*RedisOverrideStore)(nil)
)
