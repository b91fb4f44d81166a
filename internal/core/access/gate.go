// Package access evaluates role requirements for protected operations.
//
// The gate is consulted by services before any side effect of an
// operation happens. Principals are passed in explicitly; nothing is read
// from request-scoped or global state.
package access

import (
	"fmt"
	"strings"

	"finance-backoffice/internal/core/domain"
)

// Operation names a protected operation
type Operation string

const (
	ViewDashboard        Operation = "dashboard:view"
	ViewDashboardSummary Operation = "dashboard:summary"
	ListTransactions     Operation = "transactions:list"
	GetTransaction       Operation = "transactions:get"
	CreateTransaction    Operation = "transactions:create"
	UpdateTransaction    Operation = "transactions:update"
	DeleteTransaction    Operation = "transactions:delete"
)

// Policy maps each operation to the roles allowed to perform it
type Policy map[Operation][]domain.Role

// DefaultPolicy returns the back-office role matrix
func DefaultPolicy() Policy {
	everyone := []domain.Role{domain.RoleStaff, domain.RoleAdmin, domain.RoleSuperAdmin}
	admins := []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}

	return Policy{
		ViewDashboard:        everyone,
		ViewDashboardSummary: admins,
		ListTransactions:     everyone,
		GetTransaction:       everyone,
		CreateTransaction:    everyone,
		UpdateTransaction:    admins,
		DeleteTransaction:    admins,
	}
}

// DeniedFunc is notified of every rejected check
type DeniedFunc func(op Operation, reason string)

// Gate checks principals against a policy
type Gate struct {
	policy   Policy
	onDenied DeniedFunc
}

// NewGate creates a gate. A nil policy uses DefaultPolicy.
func NewGate(policy Policy, onDenied DeniedFunc) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	cp := make(Policy, len(policy))
	for op, roles := range policy {
		cp[op] = append([]domain.Role(nil), roles...)
	}
	return &Gate{policy: cp, onDenied: onDenied}
}

// Check allows the operation iff principal.Role is one of the roles
// required for op. A missing principal yields ErrUnauthorized; an
// insufficient role or an operation absent from the policy yields
// ErrForbidden.
func (g *Gate) Check(principal *domain.Principal, op Operation) error {
	if principal == nil {
		g.denied(op, "unauthorized")
		return domain.ErrUnauthorized
	}

	if g.Allows(principal.Role, op) {
		return nil
	}

	g.denied(op, "forbidden")
	return fmt.Errorf("%w: role %s may not perform %s (requires %s)",
		domain.ErrForbidden, principal.Role, op, joinRoles(g.RolesFor(op)))
}

// Allows reports whether role may perform op
func (g *Gate) Allows(role domain.Role, op Operation) bool {
	for _, r := range g.policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor returns the roles allowed to perform op
func (g *Gate) RolesFor(op Operation) []domain.Role {
	return append([]domain.Role(nil), g.policy[op]...)
}

func joinRoles(roles []domain.Role) string {
	if len(roles) == 0 {
		return "no role"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}

func (g *Gate) denied(op Operation, reason string) {
	if g.onDenied != nil {
		g.onDenied(op, reason)
	}
}
