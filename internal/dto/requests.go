package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email             string  `json:"email" binding:"required"`
	Username          string  `json:"username" binding:"required"`
	Password          string  `json:"password" binding:"required"`
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Bio               *string `json:"bio"`
	PreferredLanguage string  `json:"preferred_language"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke alongside the bearer token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// EmailVerificationRequest represents an email verification request
type EmailVerificationRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResendVerificationRequest represents a resend-verification request
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordStrengthRequest represents a password strength check request
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}
