package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt truncates input at 72 bytes; longer passwords are condensed
// through SHA-256 first so the full input still matters.
const bcryptMaxPasswordBytes = 72

// maxPasswordLength bounds hashing CPU cost for absurd inputs
const maxPasswordLength = 1000

// ErrInvalidPassword is returned for empty or oversized password input
var ErrInvalidPassword = errors.New("invalid password input")

// PasswordHasher hashes and verifies passwords with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a password hasher with the given bcrypt cost.
// Costs below the bcrypt default are raised to it.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash hashes a password using bcrypt with a unique random salt.
// The error never contains the password itself.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty: %w", ErrInvalidPassword)
	}
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("password exceeds maximum length: %w", ErrInvalidPassword)
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(condense(password)), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify compares a password with a stored hash. It returns false for
// any mismatch or malformed hash and never returns an error, so callers
// cannot distinguish failure causes.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(condense(password))) == nil
}

// condense applies SHA-256 pre-hashing to passwords over the bcrypt
// byte ceiling. Must stay identical on the hash and verify paths.
func condense(password string) string {
	if len(password) <= bcryptMaxPasswordBytes {
		return password
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
