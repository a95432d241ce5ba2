package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sneakerlib/auth-service/internal/app"
	"github.com/sneakerlib/auth-service/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	infra, err := app.NewInfrastructure(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}

	if dir := cfg.Postgres.MigrationsDir; dir != "" {
		if err := infra.Postgres().Migrate(dir); err != nil {
			infra.Logger().Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	application := app.NewApp(infra, cfg)
	if err := application.Run(ctx); err != nil {
		infra.Logger().Fatal("Application failed", zap.Error(err))
	}
}
