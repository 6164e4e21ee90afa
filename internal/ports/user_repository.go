package ports

import (
	"context"

	"atlas-core-connect-layer/internal/domain"
)

// UserRepository resolves application users. FindByIdentifier accepts
// either a user ID or an email address and returns (nil, nil) when no
// user matches.
type UserRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
