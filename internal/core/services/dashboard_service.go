package services

import (
	"context"

	"finance-backoffice/internal/core/access"
	"finance-backoffice/internal/core/domain"

	"go.uber.org/zap"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	provider DashboardProvider
	gate     *access.Gate
	log      *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(provider DashboardProvider, gate *access.Gate, log *zap.Logger) *DashboardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardService{provider: provider, gate: gate, log: log.Named("dashboard")}
}

// Dashboard returns the dashboard data visible to every role
func (s *DashboardService) Dashboard(ctx context.Context, p *domain.Principal) (map[string]any, error) {
	if err := s.gate.Check(p, access.ViewDashboard); err != nil {
		return nil, err
	}
	data, err := s.provider.DashboardData(ctx)
	if err != nil {
		s.log.Error("dashboard data failed", zap.Error(err))
		return nil, domain.NewStoreError("dashboard data", err)
	}
	return data, nil
}

// Summary returns the administrative dashboard summary
func (s *DashboardService) Summary(ctx context.Context, p *domain.Principal) (map[string]any, error) {
	if err := s.gate.Check(p, access.ViewDashboardSummary); err != nil {
		return nil, err
	}
	data, err := s.provider.DashboardSummary(ctx)
	if err != nil {
		s.log.Error("dashboard summary failed", zap.Error(err))
		return nil, domain.NewStoreError("dashboard summary", err)
	}
	return data, nil
}
