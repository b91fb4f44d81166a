package models

import (
	"time"

	"finance-backoffice/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:50;not null"`
	Password  string    `gorm:"size:255;not null"`
	Role      string    `gorm:"size:20;not null;default:'STAFF';index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// ToDomain converts the row to a principal
func (u *User) ToDomain() *domain.Principal {
	return &domain.Principal{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		Role:         domain.Role(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

// UserFromDomain converts a principal to a row
func UserFromDomain(p *domain.Principal) *User {
	return &User{
		ID:        p.ID,
		Username:  p.Username,
		Password:  p.PasswordHash,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

// RevokedToken represents revoked_tokens table. A row exists for every
// refresh token id consumed under strict rotation until it expires.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"`
	TokenID   string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// ============================================================
// Finance Tables
// ============================================================

// Transaction represents transactions table
type Transaction struct {
	ID              uint      `gorm:"primaryKey"`
	Reference       string    `gorm:"size:64;uniqueIndex;not null"`
	Status          string    `gorm:"size:20;not null;index"`
	Type            string    `gorm:"size:50"`
	Amount          float64   `gorm:"type:decimal(15,2);not null"`
	Currency        string    `gorm:"size:3;not null;default:'USD'"`
	FromAccount     string    `gorm:"size:64"`
	ToAccount       string    `gorm:"size:64"`
	Description     string    `gorm:"size:255"`
	TransactionDate time.Time `gorm:"not null;index"`
	CreatedBy       string    `gorm:"size:50"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// ToDomain converts the row to a domain transaction
func (t *Transaction) ToDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:              t.ID,
		Reference:       t.Reference,
		Status:          domain.TransactionStatus(t.Status),
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
		FromAccount:     t.FromAccount,
		ToAccount:       t.ToAccount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// TransactionFromDomain converts a domain transaction to a row
func TransactionFromDomain(t *domain.Transaction) *Transaction {
	return &Transaction{
		ID:              t.ID,
		Reference:       t.Reference,
		Status:          string(t.Status),
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
		FromAccount:     t.FromAccount,
		ToAccount:       t.ToAccount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// AutoMigrate runs auto migration for every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RevokedToken{},
		&Transaction{},
	)
}
