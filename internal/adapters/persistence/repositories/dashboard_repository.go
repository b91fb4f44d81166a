package repositories

import (
	"context"
	"time"

	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/core/domain"

	"gorm.io/gorm"
)

// RecentLimit is the number of transactions listed on the dashboard
const RecentLimit = 10

// dashboardRepository implements DashboardRepository interface
type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

type statusAggregate struct {
	Status string
	Count  int64
	Amount float64
}

// DashboardData returns transaction counts by status and the most recent
// transactions
func (r *dashboardRepository) DashboardData(ctx context.Context) (map[string]any, error) {
	aggs, err := r.byStatus(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		counts[string(s)] = 0
	}
	var total int64
	for _, a := range aggs {
		counts[a.Status] = a.Count
		total += a.Count
	}

	// Recent transactions
	var rows []models.Transaction
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(RecentLimit).
		Find(&rows).Error; err != nil {
		return nil, translate("recent transactions", err)
	}
	recent := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		recent = append(recent, *rows[i].ToDomain())
	}

	return map[string]any{
		"totalTransactions":  total,
		"countsByStatus":     counts,
		"recentTransactions": recent,
	}, nil
}

// DashboardSummary returns totals by status, amounts for the current
// month and principal counts by role
func (r *dashboardRepository) DashboardSummary(ctx context.Context) (map[string]any, error) {
	aggs, err := r.byStatus(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]map[string]any, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		byStatus[string(s)] = map[string]any{"count": int64(0), "amount": 0.0}
	}
	var total int64
	var totalAmount float64
	for _, a := range aggs {
		byStatus[a.Status] = map[string]any{"count": a.Count, "amount": a.Amount}
		total += a.Count
		totalAmount += a.Amount
	}

	// This month statistics
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var month struct {
		Count  int64
		Amount float64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("transaction_date >= ?", startOfMonth).
		Scan(&month).Error; err != nil {
		return nil, translate("monthly totals", err)
	}

	// User counts by role
	var roleRows []struct {
		Role  string
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roleRows).Error; err != nil {
		return nil, translate("users by role", err)
	}
	usersByRole := make(map[string]int64, len(domain.AllRoles()))
	for _, role := range domain.AllRoles() {
		usersByRole[string(role)] = 0
	}
	for _, rr := range roleRows {
		usersByRole[rr.Role] = rr.Count
	}

	return map[string]any{
		"totalTransactions": total,
		"totalAmount":       totalAmount,
		"byStatus":          byStatus,
		"thisMonth":         map[string]any{"count": month.Count, "amount": month.Amount},
		"usersByRole":       usersByRole,
	}, nil
}

func (r *dashboardRepository) byStatus(ctx context.Context) ([]statusAggregate, error) {
	var aggs []statusAggregate
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&aggs).Error
	if err != nil {
		return nil, translate("transactions by status", err)
	}
	return aggs, nil
}
