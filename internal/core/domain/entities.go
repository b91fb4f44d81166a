package domain

import (
	"strings"
	"time"
)

// Role represents a privilege level in the back office
type Role string

const (
	RoleStaff      Role = "STAFF"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)


// AllRoles returns every role, least privileged first
func AllRoles() []Role {
	return []Role{RoleStaff, RoleAdmin, RoleSuperAdmin}
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ParseRole parses a role name. Matching is exact and case-sensitive.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	return r, r.IsValid()
}

// Principal is an authenticated (or registrable) identity
type Principal struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns a copy of the principal without its credential hash
func (p *Principal) Public() *Principal {
	if p == nil {
		return nil
	}
	cp := *p
	cp.PasswordHash = ""
	return &cp
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	TokenType        string    `json:"tokenType"`
	ExpiresIn        int64     `json:"expiresIn"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// AllStatuses returns every known transaction status
func AllStatuses() []TransactionStatus {
	return []TransactionStatus{StatusPending, StatusCompleted, StatusFailed, StatusCancelled}
}

// IsValid reports whether s is one of the enumerated statuses (case-sensitive)
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Transaction represents a financial transaction record
type Transaction struct {
	ID              uint              `json:"id"`
	Reference       string            `json:"reference"`
	Status          TransactionStatus `json:"status"`
	Type            string            `json:"type"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	FromAccount     string            `json:"fromAccount"`
	ToAccount       string            `json:"toAccount"`
	Description     string            `json:"description"`
	TransactionDate time.Time         `json:"transactionDate"`
	CreatedBy       string            `json:"createdBy"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// StatusFilter is an optional status restriction for transaction queries.
// The zero value applies no filter.
type StatusFilter struct {
	status TransactionStatus
	set    bool
}

// NoStatusFilter returns a filter that matches every transaction
func NoStatusFilter() StatusFilter {
	return StatusFilter{}
}

// FilterByStatus returns a filter matching exactly s
func FilterByStatus(s TransactionStatus) StatusFilter {
	return StatusFilter{status: s, set: true}
}

// ParseStatusFilter builds a filter from a raw query value.
// Empty or blank input means no filter; anything else is kept verbatim.
func ParseStatusFilter(raw string) StatusFilter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoStatusFilter()
	}
	return FilterByStatus(TransactionStatus(raw))
}

// Status returns the filtered status and whether a filter is set
func (f StatusFilter) Status() (TransactionStatus, bool) {
	return f.status, f.set
}

// IsSet reports whether the filter restricts results
func (f StatusFilter) IsSet() bool {
	return f.set
}
