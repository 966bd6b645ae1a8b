// Package password provides one-way password hashing and verification.
//
// Hashing uses bcrypt: deliberately slow and salted per call, so two hashes of
// the same plaintext differ while Verify succeeds against either. Plaintext
// passwords exist only transiently in the registration and login flows; only
// the hash is ever stored.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Verify when the password does not match the hash.
var ErrMismatch = errors.New("password: invalid password")

// Hasher defines the interface for password hashing and verification.
type Hasher interface {
	// Hash returns a hashed representation of the password.
	Hash(password string) (string, error)

	// Verify checks if a password matches the given hash.
	// Returns nil if they match, ErrMismatch otherwise.
	Verify(password, hash string) error
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", errors.New("password: maximum length is 72 characters (bcrypt limit)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
