package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the uniform failure for any unverifiable token:
// bad signature, wrong type, missing claims, or expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// JWTManager issues and verifies signed session tokens
type JWTManager struct {
	secret                  []byte
	accessTokenExpiry       time.Duration
	refreshTokenExpiry      time.Duration
	verificationTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager with per-type lifetimes
func NewJWTManager(secret string, accessExpiry, refreshExpiry, verificationExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:                  []byte(secret),
		accessTokenExpiry:       accessExpiry,
		refreshTokenExpiry:      refreshExpiry,
		verificationTokenExpiry: verificationExpiry,
	}
}

// TTL returns the configured lifetime for a token type
func (j *JWTManager) TTL(tokenType domain.TokenType) time.Duration {
	switch tokenType {
	case domain.TokenTypeRefresh:
		return j.refreshTokenExpiry
	case domain.TokenTypeEmailVerification:
		return j.verificationTokenExpiry
	default:
		return j.accessTokenExpiry
	}
}

// Issue generates a signed token of the given type and returns it with
// its lifetime in seconds. A fresh jti disambiguates same-second issuance.
func (j *JWTManager) Issue(userID, email string, role domain.UserRole, tokenType domain.TokenType) (string, int, error) {
	ttl := j.TTL(tokenType)
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"sub":     userID,
		"user_id": userID, // legacy claim name, kept for older clients
		"email":   email,
		"role":    string(role),
		"type":    string(tokenType),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, int(ttl.Seconds()), nil
}

// Verify parses and validates a token, requiring the expected type.
// Every failure mode collapses into ErrInvalidToken so callers leak
// nothing about why a token was rejected.
func (j *JWTManager) Verify(tokenString string, expectedType domain.TokenType) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != string(expectedType) {
		return nil, ErrInvalidToken
	}

	// Canonical subject claim with fallback to the legacy name
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		userID, ok = claims["user_id"].(string)
		if !ok || userID == "" {
			return nil, ErrInvalidToken
		}
	}

	email, _ := claims["email"].(string)

	// Absent role degrades to the least-privileged one
	role := domain.RoleConsumer
	if r, ok := claims["role"].(string); ok && r != "" {
		role = domain.UserRole(r)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	expiresAt := time.Unix(int64(exp), 0).UTC()
	if time.Now().UTC().After(expiresAt) {
		return nil, ErrInvalidToken
	}

	issuedAt := time.Now().UTC()
	if iat, ok := claims["iat"].(float64); ok {
		issuedAt = time.Unix(int64(iat), 0).UTC()
	}

	return &domain.TokenClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		Type:      expectedType,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
