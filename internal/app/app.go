package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sneakerlib/auth-service/internal/config"
	"github.com/sneakerlib/auth-service/internal/handler"
	"github.com/sneakerlib/auth-service/internal/repository"
	"github.com/sneakerlib/auth-service/internal/service"
	"github.com/sneakerlib/auth-service/internal/token"
	"github.com/sneakerlib/auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	tokenService := token.NewService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTokenExpiry.Duration,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	verificationService := service.NewVerificationService(
		repos.User,
		repos.Token,
		infra.Redis(),
		infra.Logger(),
	)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		tokenService,
		blacklistService,
		verificationService,
		infra.Logger(),
	)

	accountService := service.NewAccountService(
		repos.User,
		repos.Token,
		infra.Logger(),
	)

	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService, authService)
	verificationHandler := handler.NewVerificationHandler(verificationService, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("auth-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, routeHandlers{
		auth:         authHandler,
		account:      accountHandler,
		verification: verificationHandler,
	}, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

type routeHandlers struct {
	auth         *handler.AuthHandler
	account      *handler.AccountHandler
	verification *handler.VerificationHandler
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h routeHandlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	ipLimit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)
	requireAuth := handler.AuthMiddleware(authService)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ipLimit, h.auth.Register)
			auth.POST("/login", ipLimit, h.auth.Login)
			auth.POST("/refresh", h.auth.Refresh)
			auth.POST("/logout", requireAuth, h.auth.Logout)

			auth.GET("/sessions", requireAuth, h.auth.ListSessions)
			auth.POST("/sessions/revoke", requireAuth, h.auth.RevokeToken)
			auth.POST("/sessions/revoke-all", requireAuth, h.auth.RevokeAllTokens)

			auth.POST("/verify-email", ipLimit, h.verification.VerifyEmail)
			auth.POST("/resend-verification", ipLimit, h.verification.ResendVerification)
			auth.POST("/password-reset", ipLimit, h.verification.RequestPasswordReset)
			auth.POST("/password-reset/confirm", ipLimit, h.verification.ConfirmPasswordReset)
			auth.GET("/password-requirements", h.verification.PasswordRequirements)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/me", h.account.GetMe)
			users.PATCH("/me", h.account.UpdateProfile)
			users.PUT("/me/password", h.account.ChangePassword)
			users.PUT("/me/email", h.account.ChangeEmail)
			users.PUT("/me/username", h.account.ChangeUsername)
			users.PUT("/me/newsletter", h.account.SetNewsletter)
		}
	}
}

// Run serves HTTP until the context is canceled or the listener fails,
// then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Server listening",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case err := <-serveErr:
		a.infra.Logger().Error("Server failed", zap.Error(err))
		runErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Shutdown signal received")
	}

	if err := a.Shutdown(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// Shutdown drains in-flight requests and closes the infrastructure, both
// bounded by shutdownTimeout.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- a.server.Shutdown(ctx) }()
	go func() { errs <- a.infra.Shutdown(ctx) }()

	if err := errors.Join(<-errs, <-errs); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Server stopped")
	return nil
}
