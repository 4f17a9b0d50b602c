package domain

import "time"

// UserStatus represents the lifecycle state of a user account
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
	StatusDeleted   UserStatus = "deleted"
)

// UserRole represents the role carried into issued tokens
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleCreator   UserRole = "creator"
	RoleConsumer  UserRole = "consumer"
	RoleModerator UserRole = "moderator"
)

// User represents a marketplace user account
type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`

	FirstName         *string `json:"first_name" db:"first_name"`
	LastName          *string `json:"last_name" db:"last_name"`
	Bio               *string `json:"bio" db:"bio"`
	PreferredLanguage string  `json:"preferred_language" db:"preferred_language"`

	Status UserStatus `json:"status" db:"status"`
	Role   UserRole   `json:"role" db:"role"`

	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at" db:"verified_at"`

	LoginAttempts int        `json:"-" db:"login_attempts"`
	LockedUntil   *time.Time `json:"-" db:"locked_until"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	LastLogin *time.Time `json:"last_login" db:"last_login"`
}

// IsLocked reports whether the account is currently locked.
// Timestamps are compared in UTC; a naive stored value is treated as UTC.
func (u *User) IsLocked(now time.Time) bool {
	if u.LockedUntil == nil {
		return false
	}
	return u.LockedUntil.UTC().After(now.UTC())
}
