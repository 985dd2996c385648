package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/videoanalytics/api-gateway/internal/auth/model"
)

type RefreshTokenRepo interface {
	// Create persists a fresh opaque token for the user and returns its
	// value. A uniqueness collision is retried with a new value, never
	// silently overwritten.
	Create(ctx context.Context, user model.User, ttl time.Duration) (string, error)

	// Find returns the token row with its owning user preloaded.
	Find(ctx context.Context, tokenValue string) (model.RefreshToken, error)

	// Consume atomically flips a live token to revoked and returns it.
	// Of two concurrent refreshes with the same value exactly one wins;
	// the loser gets ErrInvalidToken.
	Consume(ctx context.Context, tokenValue string) (model.RefreshToken, error)

	// Revoke marks the token revoked. Idempotent: revoking an unknown or
	// already revoked token succeeds.
	Revoke(ctx context.Context, tokenValue string) error

	// RevokeAll revokes every token owned by the user ("log out everywhere").
	RevokeAll(ctx context.Context, userID uuid.UUID) error

	// PurgeExpired bulk-deletes rows whose expiry is before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
