package ports

import (
	"context"
	"time"

	"atlas-core-connect-layer/internal/domain"
)

// StatusCache holds probed connection statuses keyed by
// (integration id, user identity). Entries expire by TTL; a Get must never
// return an expired entry.
type StatusCache interface {
	Get(ctx context.Context, integrationID, user string) (*domain.CachedStatus, error)
	Set(ctx context.Context, integrationID, user string, status domain.CachedStatus) error
	Delete(ctx context.Context, integrationID, user string) error
}

// OverrideStore tracks manual disconnect overrides. While an override is
// live the pair reads as disconnected regardless of cache or probe.
type OverrideStore interface {
	Set(ctx context.Context, integrationID, user string, ttl time.Duration) error
	Active(ctx context.Context, integrationID, user string) (bool, error)
	Clear(ctx context.Context, integrationID, user string) error
}
