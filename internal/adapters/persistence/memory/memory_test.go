package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finance-backoffice/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_ConcurrentCreateSameUsername(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var created, taken int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Create(ctx, &domain.Principal{Username: "alice", Role: domain.RoleStaff})
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case err == domain.ErrUsernameTaken:
				atomic.AddInt32(&taken, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created)
	assert.Equal(t, int32(19), taken)
	assert.Equal(t, 1, store.Len())
}

func TestCredentialStore_Lookups(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	p := &domain.Principal{Username: "bob", PasswordHash: "h", Role: domain.RoleAdmin}
	require.NoError(t, store.Create(ctx, p))
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := store.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = store.FindByUsername(ctx, "Bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := store.ExistsWithRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = store.ExistsWithRole(ctx, domain.RoleSuperAdmin)
	assert.False(t, ok)
}

func seed(t *testing.T, store *TransactionStore, statuses ...domain.TransactionStatus) {
	t.Helper()
	for i, s := range statuses {
		require.NoError(t, store.Create(context.Background(), &domain.Transaction{
			Reference: fmt.Sprintf("REF-%d", i),
			Status:    s,
			Amount:    float64(i + 1),
		}))
	}
}

func TestTransactionStore_ListOrderingAndFilter(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	seed(t, store, domain.StatusCompleted, domain.StatusPending, domain.StatusCompleted, domain.StatusPending, domain.StatusCompleted)

	items, total, err := store.List(ctx, domain.NoStatusFilter(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 3)
	assert.Equal(t, []uint{1, 2, 3}, []uint{items[0].ID, items[1].ID, items[2].ID})

	items, total, err = store.List(ctx, domain.FilterByStatus(domain.StatusCompleted), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{1, 3, 5}, []uint{items[0].ID, items[1].ID, items[2].ID})

	items, total, err = store.List(ctx, domain.NoStatusFilter(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, items)

	for _, offset := range []int{math.MaxInt, -9223372036854775806} {
		items, total, err = store.List(ctx, domain.NoStatusFilter(), offset, 10)
		require.NoError(t, err, "offset=%d", offset)
		assert.Equal(t, int64(5), total)
		assert.Empty(t, items)
	}
}

func TestTransactionStore_ReplaceAndDelete(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	seed(t, store, domain.StatusPending)

	orig, err := store.FindByID(ctx, 1)
	require.NoError(t, err)

	err = store.Replace(ctx, &domain.Transaction{ID: 1, Status: domain.StatusCompleted, Amount: 50})
	require.NoError(t, err)

	got, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt)

	assert.ErrorIs(t, store.Replace(ctx, &domain.Transaction{ID: 42}), domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, 42), domain.ErrNotFound)
	require.NoError(t, store.Delete(ctx, 1))
	_, err = store.FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionStore_ReturnsCopies(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	seed(t, store, domain.StatusPending)

	got, _ := store.FindByID(ctx, 1)
	got.Status = domain.StatusFailed

	again, _ := store.FindByID(ctx, 1)
	assert.Equal(t, domain.StatusPending, again.Status)
}

func TestRevocationList(t *testing.T) {
	list := NewRevocationList()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, list.Revoke(ctx, "a", now.Add(-time.Minute)))
	require.NoError(t, list.Revoke(ctx, "b", now.Add(time.Hour)))
	assert.ErrorIs(t, list.Revoke(ctx, "a", now.Add(time.Hour)), domain.ErrTokenRevoked)

	ok, _ := list.IsRevoked(ctx, "b")
	assert.True(t, ok)

	n, err := list.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, _ = list.IsRevoked(ctx, "a")
	assert.False(t, ok)
}

func TestDashboardProvider(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()
	seed(t, stores.Transactions, domain.StatusCompleted, domain.StatusPending, domain.StatusCompleted)
	require.NoError(t, stores.Credentials.Create(ctx, &domain.Principal{Username: "admin", Role: domain.RoleAdmin}))

	data, err := stores.Dashboard.DashboardData(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), data["totalTransactions"])
	counts := data["countsByStatus"].(map[string]int64)
	assert.Equal(t, int64(2), counts["COMPLETED"])
	assert.Equal(t, int64(0), counts["FAILED"])
	recent := data["recentTransactions"].([]domain.Transaction)
	require.Len(t, recent, 3)
	assert.Equal(t, uint(3), recent[0].ID)

	summary, err := stores.Dashboard.DashboardSummary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, summary["totalAmount"], 0.0001)
	byStatus := summary["byStatus"].(map[string]map[string]any)
	assert.Equal(t, int64(2), byStatus["COMPLETED"]["count"])
	assert.InDelta(t, 4.0, byStatus["COMPLETED"]["amount"], 0.0001)
	assert.Equal(t, int64(1), summary["usersByRole"].(map[string]int64)["ADMIN"])
}
