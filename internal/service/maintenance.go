package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sneakerlib/auth-service/internal/repository"
	"go.uber.org/zap"
)

// MaintenanceService runs the refresh token housekeeping that scheduled
// jobs trigger outside the request path.
type MaintenanceService struct {
	tokenRepo repository.RefreshTokenRepository
	logger    *zap.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(tokenRepo repository.RefreshTokenRepository, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// CleanupTokens removes expired tokens, revoked tokens older than the
// retention window, and anything older than maxAgeDays. Returns the total
// number of rows removed.
func (s *MaintenanceService) CleanupTokens(ctx context.Context, revokedRetention time.Duration, maxAgeDays int) (int64, error) {
	now := time.Now()

	expired, err := s.tokenRepo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	revoked, err := s.tokenRepo.DeleteRevoked(ctx, now.Add(-revokedRetention))
	if err != nil {
		return expired, fmt.Errorf("failed to delete revoked tokens: %w", err)
	}

	aged, err := s.tokenRepo.CleanupOlderThan(ctx, maxAgeDays)
	if err != nil {
		return expired + revoked, fmt.Errorf("failed to cleanup old tokens: %w", err)
	}

	total := expired + revoked + aged
	s.logger.Info("token cleanup finished",
		zap.Int64("expired", expired),
		zap.Int64("revoked", revoked),
		zap.Int64("aged_out", aged),
		zap.Int64("total", total),
	)
	return total, nil
}
