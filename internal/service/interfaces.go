package service

import (
	"context"
	"time"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/dto"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/utils"
)

// AuthService defines the authentication workflows
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.UserResponse, *domain.TokenPair, error)
	RecordFailedLogin(ctx context.Context, email string) error
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error)
	ResendVerification(ctx context.Context, email string) (token string, expiresIn int, err error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	PasswordStrength(password string) utils.PasswordStrength
}

// TokenStore records the single current refresh token per user and a
// denylist of revoked tokens. Entries self-expire via TTL; the store is
// the sole serialization point for refresh-token rotation, and
// SwapRefresh is the compare-and-swap that decides a rotation race.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, token string, ttl time.Duration) error
	SwapRefresh(ctx context.Context, userID, expected, next string, ttl time.Duration) (bool, error)
	DeleteRefresh(ctx context.Context, userID string) error
	Denylist(ctx context.Context, token string, ttl time.Duration) error
	IsDenylisted(ctx context.Context, token string) (bool, error)
}

// VerificationPublisher emits verification-requested events for the
// out-of-process mailer. Publishing is best effort.
type VerificationPublisher interface {
	PublishVerificationRequested(ctx context.Context, userID, email, token string) error
}
