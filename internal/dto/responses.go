package dto

// UserResponse represents the public view of a user, never the hash
type UserResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Username          string  `json:"username"`
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Bio               *string `json:"bio"`
	PreferredLanguage string  `json:"preferred_language"`
	Status            string  `json:"status"`
	Role              string  `json:"role"`
	EmailVerified     bool    `json:"email_verified"`
	VerifiedAt        *string `json:"verified_at"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	LastLogin         *string `json:"last_login"`
}

// VerificationEmailResponse confirms a verification action
type VerificationEmailResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// PasswordStrengthResponse reports a password strength evaluation
type PasswordStrengthResponse struct {
	Score       int      `json:"score"`
	Strength    string   `json:"strength"`
	Suggestions []string `json:"suggestions"`
	MeetsPolicy bool     `json:"meets_policy"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
