package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Kind distinguishes access tokens from refresh tokens. It is part of the
// signed payload so one kind can never be accepted as the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims represents the JWT claims shared by both token kinds
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Kind     Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// TokenSpec describes a token to be signed
type TokenSpec struct {
	UserID   uint
	Username string
	Role     string
	Kind     Kind
	TokenID  string
	Issuer   string
	IssuedAt time.Time
	TTL      time.Duration
}

// ExpiresAt returns the expiry the token will carry
func (s TokenSpec) ExpiresAt() time.Time {
	return s.IssuedAt.Add(s.TTL)
}

// Generate signs a token with HS256
func Generate(spec TokenSpec, secret string) (string, error) {
	claims := Claims{
		UserID:   spec.UserID,
		Username: spec.Username,
		Role:     spec.Role,
		Kind:     spec.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        spec.TokenID,
			ExpiresAt: jwt.NewNumericDate(spec.ExpiresAt()),
			IssuedAt:  jwt.NewNumericDate(spec.IssuedAt),
			NotBefore: jwt.NewNumericDate(spec.IssuedAt),
			Issuer:    spec.Issuer,
			Subject:   spec.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Validate parses a token, checks signature, expiry, issuer and kind, and
// returns its claims. now supplies the clock used for time-based checks.
func Validate(tokenString, secret, issuer string, kind Kind, now func() time.Time) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
