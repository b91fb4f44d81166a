// Package app assembles stores, services, the HTTP server and background
// jobs from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-backoffice/internal/adapters/http/handlers"
	"finance-backoffice/internal/adapters/http/middleware"
	"finance-backoffice/internal/adapters/http/routes"
	"finance-backoffice/internal/config"
	"finance-backoffice/internal/core/access"
	"finance-backoffice/internal/core/services"
	"finance-backoffice/internal/pkg/metrics"
	"finance-backoffice/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Version is reported by the root and info endpoints
const Version = "1.0.0"

// Services groups the core services built from one set of stores
type Services struct {
	Tokens       *services.TokenService
	Auth         *services.AuthService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
}

// NewServices builds the core services. m may be nil.
func NewServices(cfg *config.Config, stores *Stores, log *zap.Logger, m *metrics.Metrics) (*Services, error) {
	tokens, err := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     cfg.JWT.AccessTTL(),
		RefreshTTL:    cfg.JWT.RefreshTTL(),
		Rotation:      services.RotationMode(cfg.JWT.Rotation),
	}, stores.Revocations, m)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	gate := access.NewGate(access.DefaultPolicy(), func(op access.Operation, reason string) {
		m.AccessDenied(string(op), reason)
	})

	return &Services{
		Tokens: tokens,
		Auth: services.NewAuthService(
			stores.Credentials,
			password.NewBcryptHasher(cfg.BcryptCost),
			tokens,
			log,
			m,
		),
		Transactions: services.NewTransactionService(stores.Transactions, gate, services.TransactionConfig{
			DefaultCurrency: cfg.DefaultCurrency,
			MaxPageSize:     cfg.Pagination.MaxSize,
		}, log),
		Dashboard: services.NewDashboardService(stores.Dashboard, gate, log),
	}, nil
}

// App is the assembled HTTP application
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	stores   *Stores
	services *Services
	fiber    *fiber.App
	purge    *services.RevocationPurgeJob
}

// New opens the configured stores and assembles the application
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a, err := NewWithStores(ctx, cfg, stores, log, prometheus.NewRegistry())
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStores assembles the application over already opened stores and
// seeds the bootstrap admin. reg receives all collectors; nil disables
// metrics.
func NewWithStores(ctx context.Context, cfg *config.Config, stores *Stores, log *zap.Logger, reg *prometheus.Registry) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var m *metrics.Metrics
	if reg != nil {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
	}

	svc, err := NewServices(cfg, stores, log, m)
	if err != nil {
		return nil, err
	}

	if err := config.NewSeeder(svc.Auth, cfg.SeedAdmin, log).Run(ctx); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Finance Back-office API " + Version,
		ErrorHandler: middleware.CustomErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	middleware.Setup(app, cfg, log, m)

	opts := routes.Options{
		Tokens:        svc.Tokens,
		AuthRateLimit: cfg.RateLimit.Auth,
		Swagger:       true,
	}
	if reg != nil {
		opts.Gatherer = reg
	}
	routes.Setup(app, routes.Handlers{
		Health:      handlers.NewHealthHandler(cfg.AppMode, Version, stores.Ping),
		Auth:        handlers.NewAuthHandler(svc.Auth),
		Dashboard:   handlers.NewDashboardHandler(svc.Dashboard),
		Transaction: handlers.NewTransactionHandler(svc.Transactions, cfg.Pagination.DefaultSize, cfg.Pagination.MaxSize),
	}, opts)

	a := &App{
		cfg:      cfg,
		log:      log,
		stores:   stores,
		services: svc,
		fiber:    app,
	}

	// Expired revocations only accumulate with strict rotation
	if svc.Tokens.Rotation() == services.RotationStrict && stores.Purger != nil {
		a.purge = services.NewRevocationPurgeJob(stores.Purger, cfg.Revocation.PurgeCron, log)
	}
	return a, nil
}

// Fiber returns the underlying fiber app
func (a *App) Fiber() *fiber.App {
	return a.fiber
}

// Services returns the assembled core services
func (a *App) Services() *Services {
	return a.services
}

// Run starts background jobs and serves HTTP until Shutdown is called
func (a *App) Run() error {
	if a.purge != nil {
		if err := a.purge.Start(); err != nil {
			return fmt.Errorf("start revocation purge: %w", err)
		}
	}

	a.log.Info("server starting",
		zap.String("port", a.cfg.Port),
		zap.String("mode", a.cfg.AppMode),
		zap.String("driver", a.cfg.DBDriver),
		zap.String("rotation", string(a.services.Tokens.Rotation())),
	)
	return a.fiber.Listen(":" + a.cfg.Port)
}

// Shutdown stops the server, waits for background jobs and closes stores
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if a.purge != nil {
		a.purge.Stop()
	}
	if err := a.stores.Close(); err != nil {
		errs = append(errs, fmt.Errorf("stores: %w", err))
	}
	return errors.Join(errs...)
}
