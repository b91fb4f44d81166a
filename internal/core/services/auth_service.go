package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"finance-backoffice/internal/core/domain"
	"finance-backoffice/internal/pkg/metrics"
	"finance-backoffice/internal/pkg/password"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// dummyPassword is hashed once and compared against when a login names an
// unknown user, so both failure paths cost one hash comparison.
const dummyPassword = "not-a-real-password-0"

// AuthService handles authentication business logic
type AuthService struct {
	store    CredentialStore
	hasher   PasswordHasher
	tokens   *TokenService
	validate *validator.Validate
	log      *zap.Logger
	metrics  *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	store CredentialStore,
	hasher PasswordHasher,
	tokens *TokenService,
	log *zap.Logger,
	m *metrics.Metrics,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: newValidator(),
		log:      log.Named("auth"),
		metrics:  m,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput represents registration input. Role is honoured only by
// CreateUser; Register always creates STAFF principals.
type RegisterInput struct {
	Username string      `json:"username" validate:"required,min=3,max=50,username"`
	Password string      `json:"password" validate:"required"`
	Role     domain.Role `json:"role,omitempty"`
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.TokenPair, error) {
	username := strings.TrimSpace(input.Username)

	principal, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("credential lookup failed", zap.Error(err))
			return nil, err
		}
		s.hasher.Verify(input.Password, s.dummy())
		s.metrics.LoginAttempt("invalid_credentials")
		s.log.Info("login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, principal.PasswordHash) {
		s.metrics.LoginAttempt("invalid_credentials")
		s.log.Info("login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(principal)
	if err != nil {
		s.log.Error("issue tokens failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	s.metrics.LoginAttempt("success")
	s.log.Info("user logged in", zap.String("username", principal.Username), zap.String("role", string(principal.Role)))
	return pair, nil
}

// Register creates a STAFF principal
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Principal, error) {
	input.Role = domain.RoleStaff
	return s.create(ctx, input)
}

// CreateUser creates a principal with any role. It is the privileged path
// used by operator tooling; an empty role defaults to STAFF.
func (s *AuthService) CreateUser(ctx context.Context, input RegisterInput) (*domain.Principal, error) {
	if input.Role == "" {
		input.Role = domain.RoleStaff
	}
	if !input.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}
	return s.create(ctx, input)
}

func (s *AuthService) create(ctx context.Context, input RegisterInput) (*domain.Principal, error) {
	input.Username = strings.TrimSpace(input.Username)

	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}
	if err := password.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	principal := &domain.Principal{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.store.Create(ctx, principal); err != nil {
		if !errors.Is(err, domain.ErrUsernameTaken) {
			s.log.Error("create principal failed", zap.String("username", input.Username), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("username", principal.Username), zap.String("role", string(principal.Role)))
	return principal.Public(), nil
}

// RefreshToken rotates a refresh token. Every failure is reported as
// ErrInvalidRefreshToken.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrStoreFailure) {
			s.log.Error("refresh token rotation failed", zap.Error(err))
		}
		return nil, domain.ErrInvalidRefreshToken
	}
	return pair, nil
}

// Logout invalidates the given refresh token when strict rotation is on.
// Otherwise the caller is expected to discard its tokens and nothing changes
// server-side. Logging out an already revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.tokens.Rotation() != RotationStrict || refreshToken == "" {
		return nil
	}

	err := s.tokens.Revoke(ctx, refreshToken)
	switch {
	case err == nil, errors.Is(err, domain.ErrTokenRevoked):
		return nil
	case errors.Is(err, domain.ErrStoreFailure):
		s.log.Error("revoke refresh token failed", zap.Error(err))
		return err
	}
	return domain.ErrInvalidRefreshToken
}

// Me returns the stored principal behind an authenticated identity
func (s *AuthService) Me(ctx context.Context, principal *domain.Principal) (*domain.Principal, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	stored, err := s.store.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return stored.Public(), nil
}

// EnsureUser creates the principal unless one with the same role already
// exists. It reports whether a principal was created.
func (s *AuthService) EnsureUser(ctx context.Context, input RegisterInput) (bool, error) {
	exists, err := s.store.ExistsWithRole(ctx, input.Role)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, input); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn("dummy hash unavailable", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
