package app

import (
	"context"
	"errors"
	"fmt"

	"finance-backoffice/internal/adapters/cache"
	"finance-backoffice/internal/adapters/persistence/memory"
	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/adapters/persistence/repositories"
	"finance-backoffice/internal/config"
	"finance-backoffice/internal/core/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores bundles the collaborators the services run on
type Stores struct {
	Credentials  services.CredentialStore
	Transactions services.TransactionStore
	Revocations  services.RevocationList
	Dashboard    services.DashboardProvider

	// Purger is nil when revocations expire on their own (redis)
	Purger services.Purger

	// Ping checks the backing database; nil for in-memory stores
	Ping func(ctx context.Context) error

	closers []func() error
}

// OpenStores connects the stores selected by cfg. mysql connects with
// retries and migrates the schema.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	var (
		stores *Stores
		err    error
	)

	switch cfg.DBDriver {
	case "memory":
		stores = MemoryStores(memory.NewStores())
		log.Warn("using in-memory stores, data is lost on restart")
	case "mysql":
		stores, err = openMySQL(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWT.Rotation == string(services.RotationStrict) && cfg.Revocation.Backend == "redis" {
		rl, err := cache.NewRevocationList(ctx, cfg.Revocation.RedisURL, log)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		stores.Revocations = rl
		stores.Purger = nil
		stores.closers = append(stores.closers, rl.Close)
		log.Info("refresh token revocations kept in redis")
	}

	return stores, nil
}

// MemoryStores adapts in-process stores
func MemoryStores(m *memory.Stores) *Stores {
	return &Stores{
		Credentials:  m.Credentials,
		Transactions: m.Transactions,
		Revocations:  m.Revocations,
		Purger:       m.Revocations,
		Dashboard:    m.Dashboard,
	}
}

// GormStores adapts the gorm repositories over db
func GormStores(db *gorm.DB) *Stores {
	revoked := repositories.NewRevokedTokenRepository(db)
	return &Stores{
		Credentials:  repositories.NewUserRepository(db),
		Transactions: repositories.NewTransactionRepository(db),
		Revocations:  revoked,
		Purger:       revoked,
		Dashboard:    repositories.NewDashboardRepository(db),
		Ping: func(ctx context.Context) error {
			return config.HealthCheck(ctx, db)
		},
		closers: []func() error{func() error { return config.CloseDatabase(db) }},
	}
}

func openMySQL(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	db, err := config.ConnectDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		_ = config.CloseDatabase(db)
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database migration completed")

	return GormStores(db), nil
}

// Close releases every connection held by the stores
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
