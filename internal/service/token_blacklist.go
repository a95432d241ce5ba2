package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sneakerlib/auth-service/pkg/database"
)

// TokenBlacklistService marks access token IDs (jti claims) as revoked in
// Redis. Entries carry the remaining token lifetime as TTL, so the
// blacklist cleans itself up once the tokens would have expired anyway.
type TokenBlacklistService struct {
	redis *database.Redis
}

func NewTokenBlacklistService(redis *database.Redis) *TokenBlacklistService {
	return &TokenBlacklistService{redis: redis}
}

// Revoke blacklists the token ID for the given remaining lifetime.
func (s *TokenBlacklistService) Revoke(ctx context.Context, jti string, remaining time.Duration) error {
	if remaining <= 0 {
		// Already expired, nothing to block.
		return nil
	}
	if err := s.redis.Client.Set(ctx, blacklistKey(jti), "1", remaining).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been blacklisted.
func (s *TokenBlacklistService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

func blacklistKey(jti string) string {
	return "blacklist:jti:" + jti
}
