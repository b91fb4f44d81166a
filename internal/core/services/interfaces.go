package services

import (
	"context"
	"time"

	"finance-backoffice/internal/core/domain"
)

// CredentialStore persists principals. Create must enforce username
// uniqueness at write time and return domain.ErrUsernameTaken on conflict.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
	FindByID(ctx context.Context, id uint) (*domain.Principal, error)
	Create(ctx context.Context, principal *domain.Principal) error
	ExistsWithRole(ctx context.Context, role domain.Role) (bool, error)
}

// TransactionStore persists transactions. List returns records ordered by
// id ascending together with the total number of matching records.
type TransactionStore interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Replace(ctx context.Context, tx *domain.Transaction) error
	FindByID(ctx context.Context, id uint) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.StatusFilter, offset, limit int) ([]*domain.Transaction, int64, error)
	Delete(ctx context.Context, id uint) error
}

// PasswordHasher is an opaque hash/verify capability
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// RevocationList records consumed refresh tokens. Revoke is first-writer-wins:
// it returns domain.ErrTokenRevoked when tokenID is already present.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Purger removes expired revocation entries
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// DashboardProvider computes dashboard aggregates
type DashboardProvider interface {
	DashboardData(ctx context.Context) (map[string]any, error)
	DashboardSummary(ctx context.Context) (map[string]any, error)
}
