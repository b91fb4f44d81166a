//go:build integration

package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finance-backoffice/internal/adapters/persistence/models"
	"finance-backoffice/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMySQL(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mysql integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("backoffice"),
		tcmysql.WithUsername("backoffice"),
		tcmysql.WithPassword("backoffice"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "charset=utf8mb4", "parseTime=True", "loc=UTC")
	require.NoError(t, err)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func TestMySQLRepositories(t *testing.T) {
	db := setupMySQL(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		repo := NewUserRepository(db)

		p := &domain.Principal{Username: "alice", PasswordHash: "hash", Role: domain.RoleStaff}
		require.NoError(t, repo.Create(ctx, p))
		assert.NotZero(t, p.ID)

		err := repo.Create(ctx, &domain.Principal{Username: "alice", PasswordHash: "x", Role: domain.RoleStaff})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)

		got, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		_, err = repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		ok, err := repo.ExistsWithRole(ctx, domain.RoleStaff)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("transactions", func(t *testing.T) {
		repo := NewTransactionRepository(db)
		statuses := []domain.TransactionStatus{
			domain.StatusCompleted, domain.StatusPending, domain.StatusCompleted,
			domain.StatusPending, domain.StatusCompleted,
		}
		for i, s := range statuses {
			require.NoError(t, repo.Create(ctx, &domain.Transaction{
				Reference:       "REF-" + string(rune('A'+i)),
				Status:          s,
				Amount:          10,
				Currency:        "USD",
				TransactionDate: time.Now().UTC(),
			}))
		}

		items, total, err := repo.List(ctx, domain.FilterByStatus(domain.StatusCompleted), 0, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, items, 3)
		assert.Less(t, items[0].ID, items[1].ID)

		items, total, err = repo.List(ctx, domain.NoStatusFilter(), 10, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Empty(t, items)

		tx, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		tx.Status = domain.StatusFailed
		require.NoError(t, repo.Replace(ctx, tx))

		got, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, got.Status)

		assert.ErrorIs(t, repo.Replace(ctx, &domain.Transaction{ID: 4040, Reference: "X", Status: domain.StatusPending, Amount: 1, Currency: "USD", TransactionDate: time.Now()}), domain.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 4040), domain.ErrNotFound)
		require.NoError(t, repo.Delete(ctx, 1))
	})

	t.Run("revocations", func(t *testing.T) {
		repo := NewRevokedTokenRepository(db)
		now := time.Now().UTC()

		var wg sync.WaitGroup
		var won int32
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if repo.Revoke(ctx, "jti-1", now.Add(time.Hour)) == nil {
					atomic.AddInt32(&won, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), won)
		assert.ErrorIs(t, repo.Revoke(ctx, "jti-1", now.Add(time.Hour)), domain.ErrTokenRevoked)

		require.NoError(t, repo.Revoke(ctx, "jti-old", now.Add(-time.Hour)))
		n, err := repo.PurgeExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("dashboard", func(t *testing.T) {
		repo := NewDashboardRepository(db)

		data, err := repo.DashboardData(ctx)
		require.NoError(t, err)
		assert.Contains(t, data, "countsByStatus")

		summary, err := repo.DashboardSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary["usersByRole"].(map[string]int64)["STAFF"])
	})
}
