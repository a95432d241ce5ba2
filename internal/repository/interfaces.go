package repository

import (
	"context"
	"time"

	"github.com/sneakerlib/auth-service/internal/domain"
)

// UserRepository defines the persistence contract for user aggregates.
// Lookups return ErrNotFound when no row matches; a returned aggregate is
// always fully populated.
type UserRepository interface {
	// Save inserts the user or updates it if it already exists.
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// RefreshTokenRepository defines the persistence contract for refresh
// tokens. Deletion of expired, revoked and aged-out tokens is a
// maintenance concern triggered by scheduled jobs, not by the aggregates.
type RefreshTokenRepository interface {
	// Save inserts the token or updates it if it already exists.
	Save(ctx context.Context, token *domain.RefreshToken) error
	GetByID(ctx context.Context, id string) (*domain.RefreshToken, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// ListValidForUser returns the user's tokens that are neither revoked
	// nor expired, newest first.
	ListValidForUser(ctx context.Context, userID domain.UserID) ([]*domain.RefreshToken, error)
	ListByDevice(ctx context.Context, userID domain.UserID, deviceInfo string) ([]*domain.RefreshToken, error)
	CountForUser(ctx context.Context, userID domain.UserID, onlyValid bool) (int, error)

	RevokeByID(ctx context.Context, tokenID string) error
	// RevokeAllForUser revokes every token of the user except the given
	// token ID (may be nil) and returns the number revoked.
	RevokeAllForUser(ctx context.Context, userID domain.UserID, exceptTokenID *string) (int64, error)

	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	DeleteRevoked(ctx context.Context, before time.Time) (int64, error)
	// CleanupOlderThan removes expired and revoked tokens older than the
	// given number of days.
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}
