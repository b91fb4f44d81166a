package services

import (
	"context"
	"time"

	"finance-backoffice/internal/adapters/persistence/memory"
	"finance-backoffice/internal/core/access"
	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/pkg/password"

	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
	testIssuer        = "finance-backoffice-test"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func testTokenConfig(mode RotationMode) TokenConfig {
	return TokenConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		Issuer:        testIssuer,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Rotation:      mode,
	}
}

type env struct {
	stores *memory.Stores
	clock  *clock
	tokens *TokenService
	auth   *AuthService
	txs    *TransactionService
	dash   *DashboardService
}

func newEnv(mode RotationMode) *env {
	stores := memory.NewStores()
	c := newClock()

	tokens, err := NewTokenService(testTokenConfig(mode), stores.Revocations, nil, WithClock(c.Now))
	if err != nil {
		panic(err)
	}

	gate := access.NewGate(nil, nil)
	hasher := password.NewBcryptHasher(bcrypt.MinCost)

	return &env{
		stores: stores,
		clock:  c,
		tokens: tokens,
		auth:   NewAuthService(stores.Credentials, hasher, tokens, nil, nil),
		txs:    NewTransactionService(stores.Transactions, gate, TransactionConfig{MaxPageSize: 50}, nil),
		dash:   NewDashboardService(stores.Dashboard, gate, nil),
	}
}

func (e *env) user(username string, role domain.Role) *domain.Principal {
	p, err := e.auth.CreateUser(context.Background(), RegisterInput{
		Username: username,
		Password: "Secret123",
		Role:     role,
	})
	if err != nil {
		panic(err)
	}
	return p
}
