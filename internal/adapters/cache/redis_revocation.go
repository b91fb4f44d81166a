// Package cache holds Redis-backed collaborators
package cache

import (
	"context"
	"fmt"
	"time"

	"finance-backoffice/internal/core/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "revoked:refresh:"

// minTTL keeps entries for tokens that expire during the call
const minTTL = time.Second

// RevocationList stores revoked refresh token ids in Redis. Entries expire
// with the token they revoke, so no purge job is needed.
type RevocationList struct {
	rdb *redis.Client
	log *zap.Logger
	now func() time.Time
}

// NewRevocationList connects to url (redis://...) and pings the server
func NewRevocationList(ctx context.Context, url string, log *zap.Logger) (*RevocationList, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	return NewRevocationListFromClient(rdb, log), nil
}

// NewRevocationListFromClient wraps an existing client
func NewRevocationListFromClient(rdb *redis.Client, log *zap.Logger) *RevocationList {
	if log == nil {
		log = zap.NewNop()
	}
	return &RevocationList{rdb: rdb, log: log.Named("redis"), now: time.Now}
}

func key(tokenID string) string {
	return keyPrefix + tokenID
}

// Revoke records tokenID with SETNX. Only the first caller succeeds;
// later callers get domain.ErrTokenRevoked.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl < minTTL {
		ttl = minTTL
	}

	ok, err := r.rdb.SetNX(ctx, key(tokenID), expiresAt.Unix(), ttl).Result()
	if err != nil {
		r.log.Error("redis setnx failed", zap.Error(err))
		return domain.NewStoreError("revoke token", err)
	}
	if !ok {
		return domain.ErrTokenRevoked
	}
	return nil
}

// IsRevoked checks if tokenID has been revoked
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, domain.NewStoreError("check revoked token", err)
	}
	return n > 0, nil
}

// PurgeExpired is a no-op: Redis expires entries on its own
func (r *RevocationList) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Ping checks the connection
func (r *RevocationList) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the client
func (r *RevocationList) Close() error {
	return r.rdb.Close()
}
