package domain

import "errors"

// Auth errors
var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// Record errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidPageRequest = errors.New("invalid page request")
	ErrStoreFailure       = errors.New("store failure")
)

// StoreError wraps a collaborator failure. It matches both ErrStoreFailure
// and the underlying cause with errors.Is.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a store failure of operation op
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreFailure, e.Err}
}
