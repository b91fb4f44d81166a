package config

import (
	"context"

	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/core/services"

	"go.uber.org/zap"
)

// Seeder handles bootstrap data
type Seeder struct {
	auth *services.AuthService
	cfg  SeedAdminConfig
	log  *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(auth *services.AuthService, cfg SeedAdminConfig, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{auth: auth, cfg: cfg, log: log.Named("seeder")}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	return s.seedAdminUser(ctx)
}

// seedAdminUser creates the bootstrap SUPER_ADMIN when configured and no
// SUPER_ADMIN exists yet
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if !s.cfg.Enabled() {
		return nil
	}

	created, err := s.auth.EnsureUser(ctx, services.RegisterInput{
		Username: s.cfg.Username,
		Password: s.cfg.Password,
		Role:     domain.RoleSuperAdmin,
	})
	if err != nil {
		s.log.Warn("admin seeder skipped", zap.Error(err))
		return err
	}
	if created {
		s.log.Info("super admin seeded", zap.String("username", s.cfg.Username))
	}
	return nil
}
