package domain

import "time"

// TokenType distinguishes the purpose a token was issued for
type TokenType string

const (
	TokenTypeAccess            TokenType = "access"
	TokenTypeRefresh           TokenType = "refresh"
	TokenTypeEmailVerification TokenType = "email_verification"
)

// TokenClaims represents the verified claims of a JWT
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	Type      TokenType `json:"type"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RemainingLifetime returns how long the token stays valid from now,
// or zero if it has already expired.
func (tc TokenClaims) RemainingLifetime(now time.Time) time.Duration {
	remaining := tc.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
