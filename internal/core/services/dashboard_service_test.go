package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-backoffice/internal/core/access"
	"finance-backoffice/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProvider struct{}

func (failingProvider) DashboardData(context.Context) (map[string]any, error) {
	return nil, errors.New("connection refused")
}

func (failingProvider) DashboardSummary(context.Context) (map[string]any, error) {
	return nil, errors.New("connection refused")
}

func TestDashboard_Roles(t *testing.T) {
	e := newEnv(RotationReuse)
	ctx := context.Background()

	_, err := e.dash.Dashboard(ctx, staff())
	assert.NoError(t, err)

	_, err = e.dash.Summary(ctx, staff())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	summary, err := e.dash.Summary(ctx, admin())
	require.NoError(t, err)
	assert.Contains(t, summary, "byStatus")

	_, err = e.dash.Dashboard(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDashboard_ProviderFailure(t *testing.T) {
	svc := NewDashboardService(failingProvider{}, access.NewGate(nil, nil), nil)

	_, err := svc.Dashboard(context.Background(), admin())
	assert.ErrorIs(t, err, domain.ErrStoreFailure)

	_, err = svc.Summary(context.Background(), admin())
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}

type countingPurger struct {
	calls int
	at    time.Time
}

func (p *countingPurger) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	p.calls++
	p.at = now
	return 3, nil
}

func TestRevocationPurgeJob(t *testing.T) {
	purger := &countingPurger{}
	job := NewRevocationPurgeJob(purger, "", nil)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, fixed, purger.at)

	require.NoError(t, job.Start())
	job.Stop()

	bad := NewRevocationPurgeJob(purger, "every now and then", nil)
	assert.Error(t, bad.Start())
}
