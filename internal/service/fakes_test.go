package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/repository"
)

// memUserRepo is an in-memory UserRepository used by the service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User

	saveErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Save(_ context.Context, user *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID().String()] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id.String()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email().String(), email) {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username().String() == username {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// memTokenRepo is an in-memory RefreshTokenRepository used by the service
// tests. Order of ListValidForUser follows insertion order, newest first.
type memTokenRepo struct {
	mu     sync.Mutex
	tokens []*domain.RefreshToken

	deleteExpiredErr error
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{}
}

func (r *memTokenRepo) Save(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.tokens {
		if existing.ID() == token.ID() {
			r.tokens[i] = token
			return nil
		}
	}
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *memTokenRepo) GetByID(_ context.Context, id string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.ID() == id {
			return token, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash() == tokenHash {
			return token, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTokenRepo) ListValidForUser(_ context.Context, userID domain.UserID) ([]*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RefreshToken
	for i := len(r.tokens) - 1; i >= 0; i-- {
		token := r.tokens[i]
		if token.UserID() == userID && token.IsValid() {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *memTokenRepo) ListByDevice(_ context.Context, userID domain.UserID, deviceInfo string) ([]*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RefreshToken
	for _, token := range r.tokens {
		if token.UserID() == userID && token.DeviceInfo() != nil && *token.DeviceInfo() == deviceInfo {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *memTokenRepo) CountForUser(_ context.Context, userID domain.UserID, onlyValid bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, token := range r.tokens {
		if token.UserID() != userID {
			continue
		}
		if onlyValid && !token.IsValid() {
			continue
		}
		count++
	}
	return count, nil
}

func (r *memTokenRepo) RevokeByID(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.ID() == tokenID {
			return token.Revoke()
		}
	}
	return repository.ErrNotFound
}

func (r *memTokenRepo) RevokeAllForUser(_ context.Context, userID domain.UserID, exceptTokenID *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revoked int64
	for _, token := range r.tokens {
		if token.UserID() != userID || !token.IsValid() {
			continue
		}
		if exceptTokenID != nil && token.ID() == *exceptTokenID {
			continue
		}
		if err := token.Revoke(); err == nil {
			revoked++
		}
	}
	return revoked, nil
}

func (r *memTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	if r.deleteExpiredErr != nil {
		return 0, r.deleteExpiredErr
	}
	return r.deleteWhere(func(t *domain.RefreshToken) bool {
		return t.ExpiresAt().Before(before)
	}), nil
}

func (r *memTokenRepo) DeleteRevoked(_ context.Context, before time.Time) (int64, error) {
	return r.deleteWhere(func(t *domain.RefreshToken) bool {
		return t.IsRevoked() && t.RevokedAt() != nil && t.RevokedAt().Before(before)
	}), nil
}

func (r *memTokenRepo) CleanupOlderThan(_ context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	return r.deleteWhere(func(t *domain.RefreshToken) bool {
		return t.CreatedAt().Before(cutoff) && (t.IsExpired() || t.IsRevoked())
	}), nil
}

func (r *memTokenRepo) deleteWhere(match func(*domain.RefreshToken) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.RefreshToken
	var removed int64
	for _, token := range r.tokens {
		if match(token) {
			removed++
			continue
		}
		kept = append(kept, token)
	}
	r.tokens = kept
	return removed
}
