package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/sneakerlib/auth-service/internal/config"
	"github.com/sneakerlib/auth-service/pkg/database"
	"github.com/sneakerlib/auth-service/pkg/observability"
)

// Infrastructure provides the process-wide resources the app is built on.
// Tests substitute their own implementation to point the app at throwaway
// databases.
type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = (*infrastructure)(nil)

// NewInfrastructure connects every external dependency in order, tearing
// down the ones already opened when a later one fails.
func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = postgres.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	meterProvider, metricsHandler, err := observability.InitTelemetry("auth-service")
	if err != nil {
		_ = postgres.Close()
		_ = redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &infrastructure{
		postgres:       postgres,
		redis:          redis,
		logger:         logger,
		metricsHandler: metricsHandler,
		meterProvider:  meterProvider,
	}, nil
}

func (i *infrastructure) Postgres() *database.Postgres       { return i.postgres }
func (i *infrastructure) Redis() *database.Redis             { return i.redis }
func (i *infrastructure) Logger() *zap.Logger                { return i.logger }
func (i *infrastructure) MetricsHandler() http.Handler       { return i.metricsHandler }
func (i *infrastructure) MeterProvider() *metric.MeterProvider { return i.meterProvider }

// Shutdown closes every resource concurrently and joins the errors.
func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 3)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs)
}
