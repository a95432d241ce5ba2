// Command cleanup purges expired and stale refresh tokens. Intended to be
// run on a schedule (cron or a Kubernetes CronJob).
package main

import (
	"context"
	"log"

	"github.com/sneakerlib/auth-service/internal/config"
	"github.com/sneakerlib/auth-service/internal/repository"
	"github.com/sneakerlib/auth-service/internal/service"
	"github.com/sneakerlib/auth-service/pkg/database"
	"github.com/sneakerlib/auth-service/pkg/observability"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() { _ = postgres.Close() }()

	tokenRepo := repository.NewRefreshTokenRepository(postgres)
	maintenance := service.NewMaintenanceService(tokenRepo, logger)

	total, err := maintenance.CleanupTokens(ctx, cfg.Cleanup.RevokedRetention.Duration, cfg.Cleanup.MaxTokenAgeDays)
	if err != nil {
		logger.Fatal("Token cleanup failed", zap.Error(err))
	}
	logger.Info("Cleanup completed", zap.Int64("tokens_removed", total))
}
