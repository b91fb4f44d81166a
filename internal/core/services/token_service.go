package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/pkg/jwt"
	"finance-backoffice/internal/pkg/metrics"

	"github.com/google/uuid"
)

// RotationMode decides whether a consumed refresh token stays usable
type RotationMode string

const (
	// RotationReuse keeps refresh tokens valid until natural expiry
	RotationReuse RotationMode = "reuse"
	// RotationStrict revokes a refresh token the first time it is used
	RotationStrict RotationMode = "strict"
)

// ParseRotationMode parses a rotation mode name
func ParseRotationMode(s string) (RotationMode, error) {
	switch RotationMode(s) {
	case RotationReuse, RotationStrict:
		return RotationMode(s), nil
	}
	return "", fmt.Errorf("unknown refresh token rotation mode %q", s)
}

// TokenConfig holds signing and lifetime settings for tokens
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Rotation      RotationMode
}

func (c TokenConfig) validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("token secrets must not be empty")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.AccessTTL > c.RefreshTTL {
		return errors.New("access token lifetime must not exceed refresh token lifetime")
	}
	if _, err := ParseRotationMode(string(c.Rotation)); err != nil {
		return err
	}
	return nil
}

// TokenOption customises a TokenService
type TokenOption func(*TokenService)

// WithClock overrides the time source
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithTokenIDs overrides the token id generator
func WithTokenIDs(next func() string) TokenOption {
	return func(s *TokenService) {
		s.newID = next
	}
}

// TokenService issues, verifies and rotates access/refresh token pairs
type TokenService struct {
	cfg     TokenConfig
	revoked RevocationList
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewTokenService creates a token service. revoked is required in strict
// rotation mode and ignored otherwise.
func NewTokenService(cfg TokenConfig, revoked RevocationList, m *metrics.Metrics, opts ...TokenOption) (*TokenService, error) {
	if cfg.Rotation == "" {
		cfg.Rotation = RotationReuse
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Rotation == RotationStrict && revoked == nil {
		return nil, errors.New("strict refresh token rotation requires a revocation list")
	}

	s := &TokenService{
		cfg:     cfg,
		revoked: revoked,
		metrics: m,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Rotation returns the configured rotation mode
func (s *TokenService) Rotation() RotationMode {
	return s.cfg.Rotation
}

// Issue signs a fresh token pair for principal
func (s *TokenService) Issue(principal *domain.Principal) (*domain.TokenPair, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}

	issuedAt := s.now().Truncate(time.Second)
	access := s.spec(principal, jwt.KindAccess, issuedAt, s.cfg.AccessTTL)
	refresh := s.spec(principal, jwt.KindRefresh, issuedAt, s.cfg.RefreshTTL)

	accessToken, err := jwt.Generate(access, s.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := jwt.Generate(refresh, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.metrics.TokenIssued(string(jwt.KindAccess))
	s.metrics.TokenIssued(string(jwt.KindRefresh))

	return &domain.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.cfg.AccessTTL / time.Second),
		AccessExpiresAt:  access.ExpiresAt(),
		RefreshExpiresAt: refresh.ExpiresAt(),
	}, nil
}

// VerifyAccess checks an access token and returns the principal it carries
func (s *TokenService) VerifyAccess(token string) (*domain.Principal, error) {
	claims, err := jwt.Validate(token, s.cfg.AccessSecret, s.cfg.Issuer, jwt.KindAccess, s.now)
	if err != nil {
		return nil, translateTokenError(err)
	}
	return principalFromClaims(claims), nil
}

// VerifyRefresh checks a refresh token and returns the principal it carries.
// In strict mode a revoked token fails with domain.ErrTokenRevoked.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := s.verifyRefresh(ctx, token)
	if err != nil {
		return nil, err
	}
	return principalFromClaims(claims), nil
}

// Rotate verifies a refresh token and issues a new pair. In strict mode the
// consumed token is revoked first, so only one of several concurrent
// rotations of the same token succeeds.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		s.metrics.Refresh(refreshResult(err))
		return nil, err
	}

	if s.cfg.Rotation == RotationStrict {
		if err := s.revoke(ctx, claims); err != nil {
			s.metrics.Refresh(refreshResult(err))
			return nil, err
		}
	}

	pair, err := s.Issue(principalFromClaims(claims))
	if err != nil {
		return nil, err
	}
	s.metrics.Refresh("ok")
	return pair, nil
}

// Revoke invalidates a refresh token. It is a no-op in reuse mode.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.refreshClaims(refreshToken)
	if err != nil {
		return err
	}
	if s.cfg.Rotation != RotationStrict {
		return nil
	}
	return s.revoke(ctx, claims)
}

func (s *TokenService) revoke(ctx context.Context, claims *jwt.Claims) error {
	if claims.ID == "" {
		return domain.ErrTokenInvalid
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// verifyRefresh validates the token and, in strict mode, rejects already
// revoked ids. Rotate still relies on the atomic Revoke for concurrent use.
func (s *TokenService) verifyRefresh(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.refreshClaims(token)
	if err != nil {
		return nil, err
	}
	if s.cfg.Rotation != RotationStrict || claims.ID == "" {
		return claims, nil
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

func (s *TokenService) refreshClaims(token string) (*jwt.Claims, error) {
	claims, err := jwt.Validate(token, s.cfg.RefreshSecret, s.cfg.Issuer, jwt.KindRefresh, s.now)
	if err != nil {
		return nil, translateTokenError(err)
	}
	return claims, nil
}

func (s *TokenService) spec(p *domain.Principal, kind jwt.Kind, issuedAt time.Time, ttl time.Duration) jwt.TokenSpec {
	return jwt.TokenSpec{
		UserID:   p.ID,
		Username: p.Username,
		Role:     string(p.Role),
		Kind:     kind,
		TokenID:  s.newID(),
		Issuer:   s.cfg.Issuer,
		IssuedAt: issuedAt,
		TTL:      ttl,
	}
}

func principalFromClaims(c *jwt.Claims) *domain.Principal {
	return &domain.Principal{
		ID:       c.UserID,
		Username: c.Username,
		Role:     domain.Role(c.Role),
	}
}

func translateTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return domain.ErrTokenExpired
	}
	return domain.ErrTokenInvalid
}

func refreshResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	}
	return "error"
}
