package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user with the same email already exists
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateUsername is returned when a user with the same username already exists
	ErrDuplicateUsername = errors.New("username already taken")
)
