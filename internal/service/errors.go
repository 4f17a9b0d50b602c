package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication workflows. Handlers map these
// to HTTP statuses with errors.Is / errors.As; messages never contain
// passwords, hashes, or token material.
var (
	// ErrInvalidCredentials hides whether the email or the password was wrong
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked is returned while a lockout window is active
	ErrAccountLocked = errors.New("account is locked due to too many failed login attempts")

	// ErrAccountNotVerified blocks login until the email is verified
	ErrAccountNotVerified = errors.New("email not verified, please verify your email first")

	// ErrTokenRevoked is returned for explicitly denylisted tokens
	ErrTokenRevoked = errors.New("token has been revoked")
)

// ValidationError reports client input that failed policy validation
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// UserAlreadyExistsError reports a uniqueness conflict on registration.
// Field names which identifier collided ("email" or "username").
type UserAlreadyExistsError struct {
	Field  string
	Reason string
}

func (e *UserAlreadyExistsError) Error() string {
	return e.Reason
}

// AuthError is the generic authentication failure for everything that
// has no dedicated sentinel (invalid tokens, inactive accounts, ...).
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// ServiceUnavailableError wraps a backing store or directory failure.
// The core performs no retries; callers decide on retry policy.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("service temporarily unavailable: %v", e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(err error) error {
	return &ServiceUnavailableError{Err: err}
}
