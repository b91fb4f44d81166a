package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"finance-backoffice/internal/adapters/persistence/memory"
	"finance-backoffice/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(rotation string) *config.Config {
	return &config.Config{
		AppMode:  "dev",
		Port:     "0",
		DBDriver: "memory",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			Issuer:           "test",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
			Rotation:         rotation,
		},
		Revocation:      config.RevocationConfig{Backend: "db", PurgeCron: "@hourly"},
		Pagination:      config.PaginationConfig{DefaultSize: 10, MaxSize: 50},
		BcryptCost:      4,
		DefaultCurrency: "USD",
		SeedAdmin:       config.SeedAdminConfig{Username: "root", Password: "Bootstrap1"},
	}
}

type client struct {
	t   *testing.T
	app *App
}

func newClient(t *testing.T, rotation string) *client {
	t.Helper()
	a, err := NewWithStores(context.Background(), testConfig(rotation), MemoryStores(memory.NewStores()), nil, prometheus.NewRegistry())
	require.NoError(t, err)
	return &client{t: t, app: a}
}

func (c *client) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.app.Fiber().Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (c *client) login(username, password string) (access, refresh string) {
	c.t.Helper()
	code, body := c.do("POST", "/api/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(c.t, 200, code, body)
	return body["accessToken"].(string), body["refreshToken"].(string)
}

func TestStaffAndAdminScenario(t *testing.T) {
	c := newClient(t, "reuse")

	code, body := c.do("POST", "/api/v1/auth/register", "", map[string]any{"username": "alice", "password": "s3cretPass", "role": "ADMIN"})
	require.Equal(t, 200, code, body)
	assert.Equal(t, "STAFF", body["role"])
	assert.NotContains(t, body, "password")

	code, body = c.do("POST", "/api/v1/auth/register", "", map[string]any{"username": "alice", "password": "0therPass"})
	assert.Equal(t, 400, code)
	assert.Equal(t, "Username is already taken", body["message"])

	code, body = c.do("POST", "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "wrong1234"})
	assert.Equal(t, 400, code)
	assert.Equal(t, "Invalid username or password", body["message"])

	staff, _ := c.login("alice", "s3cretPass")

	code, body = c.do("GET", "/api/v1/auth/me", staff, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "alice", body["username"])

	code, body = c.do("POST", "/api/v1/transactions", staff, map[string]any{"id": 99, "amount": 125.5, "status": "COMPLETED"})
	require.Equal(t, 200, code, body)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, "alice", body["createdBy"])
	assert.NotEmpty(t, body["reference"])

	code, body = c.do("GET", "/api/v1/transactions?page=0&size=10", staff, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(1), body["totalElements"])
	assert.Equal(t, true, body["first"])
	assert.Equal(t, true, body["last"])

	code, _ = c.do("PUT", "/api/v1/transactions/1", staff, map[string]any{"amount": 1, "status": "FAILED"})
	assert.Equal(t, 403, code)
	code, body = c.do("DELETE", "/api/v1/transactions/1", staff, nil)
	assert.Equal(t, 403, code)
	assert.Equal(t, "You don't have permission to access this resource", body["message"])

	code, _ = c.do("GET", "/api/v1/dashboard", staff, nil)
	assert.Equal(t, 200, code)
	code, _ = c.do("GET", "/api/v1/dashboard/summary", staff, nil)
	assert.Equal(t, 403, code)

	admin, _ := c.login("root", "Bootstrap1")

	code, body = c.do("PUT", "/api/v1/transactions/1", admin, map[string]any{"id": 7, "amount": 10, "status": "FAILED"})
	require.Equal(t, 200, code, body)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "FAILED", body["status"])
	assert.Equal(t, "alice", body["createdBy"])

	code, _ = c.do("PUT", "/api/v1/transactions/404", admin, map[string]any{"amount": 10})
	assert.Equal(t, 404, code)

	code, body = c.do("GET", "/api/v1/dashboard/summary", admin, nil)
	require.Equal(t, 200, code)
	assert.Contains(t, body, "usersByRole")

	code, body = c.do("DELETE", "/api/v1/transactions/1", admin, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "Transaction deleted successfully", body["message"])

	code, body = c.do("GET", "/api/v1/transactions/1", admin, nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "Transaction not found", body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t, "reuse")

	paths := []struct{ method, path string }{
		{"GET", "/api/v1/auth/me"},
		{"GET", "/api/v1/dashboard"},
		{"GET", "/api/v1/dashboard/summary"},
		{"GET", "/api/v1/transactions"},
		{"POST", "/api/v1/transactions"},
		{"GET", "/api/v1/transactions/1"},
		{"PUT", "/api/v1/transactions/1"},
		{"DELETE", "/api/v1/transactions/1"},
	}
	for _, p := range paths {
		code, body := c.do(p.method, p.path, "", nil)
		assert.Equal(t, 401, code, p.path)
		assert.Equal(t, "Access token required", body["message"], p.path)

		code, body = c.do(p.method, p.path, "not-a-jwt", nil)
		assert.Equal(t, 401, code, p.path)
		assert.Equal(t, "Invalid access token", body["message"], p.path)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	c := newClient(t, "reuse")
	_, refresh := c.login("root", "Bootstrap1")

	code, _ := c.do("GET", "/api/v1/transactions", refresh, nil)
	assert.Equal(t, 401, code)
}

func TestPagination(t *testing.T) {
	c := newClient(t, "reuse")
	admin, _ := c.login("root", "Bootstrap1")

	for _, status := range []string{"COMPLETED", "PENDING", "COMPLETED", "PENDING", "COMPLETED"} {
		code, _ := c.do("POST", "/api/v1/transactions", admin, map[string]any{"amount": 5, "status": status})
		require.Equal(t, 200, code)
	}

	code, body := c.do("GET", "/api/v1/transactions?page=1&size=2", admin, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(5), body["totalElements"])
	assert.Equal(t, float64(3), body["totalPages"])
	assert.Len(t, body["content"], 2)
	assert.Equal(t, false, body["last"])

	code, body = c.do("GET", "/api/v1/transactions?page=9&size=2", admin, nil)
	require.Equal(t, 200, code)
	assert.Empty(t, body["content"])
	assert.Equal(t, true, body["last"])

	code, body = c.do("GET", "/api/v1/transactions?page=922337203685477581&size=10", admin, nil)
	require.Equal(t, 200, code)
	assert.Empty(t, body["content"])
	assert.Equal(t, float64(5), body["totalElements"])
	assert.Equal(t, true, body["last"])

	code, body = c.do("GET", "/api/v1/transactions?status=COMPLETED&size=10", admin, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(3), body["totalElements"])

	code, body = c.do("GET", "/api/v1/transactions?status=completed", admin, nil)
	require.Equal(t, 200, code)
	assert.Equal(t, float64(0), body["totalElements"])

	for _, q := range []string{"page=-1", "size=0", "size=51", "page=abc"} {
		code, _ = c.do("GET", "/api/v1/transactions?"+q, admin, nil)
		assert.Equal(t, 400, code, q)
	}
}

func TestRefreshAndLogout_Reuse(t *testing.T) {
	c := newClient(t, "reuse")
	_, refresh := c.login("root", "Bootstrap1")

	for i := 0; i < 2; i++ {
		code, body := c.do("POST", "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
		require.Equal(t, 200, code, body)
		assert.Equal(t, "Bearer", body["tokenType"])
	}

	code, body := c.do("POST", "/api/v1/auth/refresh", "", map[string]string{"refreshToken": "garbage"})
	assert.Equal(t, 400, code)
	assert.Equal(t, "Invalid refresh token", body["message"])

	code, body = c.do("POST", "/api/v1/auth/logout", "", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "Logged out successfully", body["message"])
}

func TestRefreshAndLogout_Strict(t *testing.T) {
	c := newClient(t, "strict")
	require.NotNil(t, c.app.purge)

	_, refresh := c.login("root", "Bootstrap1")

	code, body := c.do("POST", "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, 200, code)
	next := body["refreshToken"].(string)

	code, _ = c.do("POST", "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, 400, code)

	code, _ = c.do("POST", "/api/v1/auth/logout", "", map[string]string{"refreshToken": next})
	require.Equal(t, 200, code)
	code, _ = c.do("POST", "/api/v1/auth/refresh", "", map[string]string{"refreshToken": next})
	assert.Equal(t, 400, code)
}

func TestHealthAndMetrics(t *testing.T) {
	c := newClient(t, "reuse")
	c.login("root", "Bootstrap1")

	code, body := c.do("GET", "/health", "", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])

	code, body = c.do("GET", "/", "", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, Version, body["version"])

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := c.app.Fiber().Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(raw), "backoffice_http_requests_total")
	assert.Contains(t, string(raw), "backoffice_auth_tokens_issued_total")
}

func TestShutdownClosesStores(t *testing.T) {
	closed := false
	stores := MemoryStores(memory.NewStores())
	stores.closers = append(stores.closers, func() error { closed = true; return nil })

	a, err := NewWithStores(context.Background(), testConfig("strict"), stores, nil, nil)
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(context.Background()))
	assert.True(t, closed)
}

func TestOpenStores_Memory(t *testing.T) {
	cfg := testConfig("reuse")
	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, stores.Ping)
	assert.NotNil(t, stores.Purger)
	require.NoError(t, stores.Close())
}
