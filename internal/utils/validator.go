package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Punctuation accepted by the password policy check
const policySpecialChars = `!@#$%^&*(),.?":{}|<>`

// Wider symbol set recognized by the strength score
const scoringSpecialChars = policySpecialChars + `-_+=[]\;'/~` + "`"

// Substrings that immediately forfeit the complexity bonus
var commonPatterns = []string{"123", "abc", "qwerty", "password", "admin", "user", "pass"}

// PasswordPolicy configures the minimum password requirements
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

// PasswordStrength is the result of scoring a candidate password
type PasswordStrength struct {
	Score       int      `json:"score"`
	Strength    string   `json:"strength"`
	Suggestions []string `json:"suggestions"`
	MeetsPolicy bool     `json:"meets_policy"`
}

// Validator checks user input against the configured policy.
// Validation failures are returned as plain error values, never panics;
// the auth service converts them into its typed errors.
type Validator struct {
	policy PasswordPolicy
}

// NewValidator creates a validator for the given password policy
func NewValidator(policy PasswordPolicy) *Validator {
	if policy.MinLength <= 0 {
		policy.MinLength = 8
	}
	return &Validator{policy: policy}
}

// ValidateEmail performs a shallow format check. Deeper syntactic
// validation belongs to the request schema layer.
func (v *Validator) ValidateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("invalid email format")
	}
	if len(email) > 255 {
		return errors.New("email is too long")
	}
	return nil
}

// ValidateUsername checks length and charset
func (v *Validator) ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > 20 {
		return errors.New("username must be at most 20 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword checks the password against the policy and reports
// only the first failing rule.
func (v *Validator) ValidatePassword(password string) error {
	if len(password) < v.policy.MinLength {
		return fmt.Errorf("password must be at least %d characters", v.policy.MinLength)
	}
	if v.policy.RequireUppercase && !containsFunc(password, unicode.IsUpper) {
		return errors.New("password must contain at least one uppercase letter")
	}
	if v.policy.RequireDigit && !containsFunc(password, unicode.IsDigit) {
		return errors.New("password must contain at least one digit")
	}
	if v.policy.RequireSpecial && !strings.ContainsAny(password, policySpecialChars) {
		return errors.New("password must contain at least one special character")
	}
	return nil
}

// ScorePassword computes a 0-100 strength score with suggestions.
// Intended for user feedback during registration; the input is never
// stored or logged.
func (v *Validator) ScorePassword(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{
			Score:       0,
			Strength:    "weak",
			Suggestions: []string{"Password cannot be empty"},
			MeetsPolicy: false,
		}
	}

	score := 0
	suggestions := []string{}

	// Length tier, up to 40 points
	switch length := len(password); {
	case length >= 16:
		score += 40
	case length >= 12:
		score += 30
	case length >= 8:
		score += 20
	default:
		score += length * 2
		suggestions = append(suggestions, fmt.Sprintf("Use at least %d characters", v.policy.MinLength))
	}

	// Character variety, 10 points per class
	if containsFunc(password, unicode.IsLower) {
		score += 10
	} else {
		suggestions = append(suggestions, "Add lowercase letters")
	}
	if containsFunc(password, unicode.IsUpper) {
		score += 10
	} else {
		suggestions = append(suggestions, "Add uppercase letters")
	}
	if containsFunc(password, unicode.IsDigit) {
		score += 10
	} else {
		suggestions = append(suggestions, "Add numbers")
	}
	if strings.ContainsAny(password, scoringSpecialChars) {
		score += 10
	} else {
		suggestions = append(suggestions, "Add special characters (!@#$%^&* etc.)")
	}

	// Complexity bonus, 10 points each
	if hasCommonPattern(password) {
		suggestions = append(suggestions, "Avoid common words and sequences")
	} else {
		score += 10
	}
	if hasRepeatedRun(password) {
		suggestions = append(suggestions, "Avoid repeating characters (e.g., 'aaa', '111')")
	} else {
		score += 10
	}

	if score > 100 {
		score = 100
	}

	var strength string
	switch {
	case score >= 80:
		strength = "very_strong"
	case score >= 60:
		strength = "strong"
	case score >= 40:
		strength = "good"
	case score >= 20:
		strength = "fair"
	default:
		strength = "weak"
	}

	return PasswordStrength{
		Score:       score,
		Strength:    strength,
		Suggestions: suggestions,
		MeetsPolicy: v.ValidatePassword(password) == nil,
	}
}

// SanitizeEmail normalizes an email address for storage and lookup
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func containsFunc(s string, f func(rune) bool) bool {
	for _, r := range s {
		if f(r) {
			return true
		}
	}
	return false
}

func hasCommonPattern(password string) bool {
	lower := strings.ToLower(password)
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// hasRepeatedRun reports a run of 3+ identical characters
func hasRepeatedRun(password string) bool {
	runes := []rune(password)
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
