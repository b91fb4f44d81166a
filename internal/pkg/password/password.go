package password

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum password length
	MinLength = 8

	// MaxLength is the bcrypt input limit in bytes
	MaxLength = 72
)

var (
	ErrTooShort     = errors.New("password must be at least 8 characters")
	ErrTooLong      = errors.New("password must be at most 72 bytes")
	ErrTooSimple    = errors.New("password must contain at least one letter and one digit")
	ErrHashMismatch = bcrypt.ErrMismatchedHashAndPassword
)

// Hash hashes a password using bcrypt
func Hash(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) error {
	if len(password) < MinLength {
		return ErrTooShort
	}
	if len(password) > MaxLength {
		return ErrTooLong
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrTooSimple
	}
	return nil
}

// BcryptHasher hashes and verifies credentials with a fixed bcrypt cost
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a hasher, falling back to DefaultCost for out-of-range costs
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash hashes password with the configured cost
func (h *BcryptHasher) Hash(password string) (string, error) {
	return Hash(password, h.Cost)
}

// Verify compares password with hash
func (h *BcryptHasher) Verify(password, hash string) bool {
	return Verify(password, hash)
}
