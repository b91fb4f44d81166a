package repositories

import (
	"finance-backoffice/internal/core/services"
)

// UserRepository is the gorm-backed credential store
type UserRepository interface {
	services.CredentialStore
}

// TransactionRepository is the gorm-backed record store
type TransactionRepository interface {
	services.TransactionStore
}

// RevokedTokenRepository stores revoked refresh token ids and purges the
// expired ones
type RevokedTokenRepository interface {
	services.RevocationList
	services.Purger
}

// DashboardRepository computes dashboard aggregates with SQL
type DashboardRepository interface {
	services.DashboardProvider
}
