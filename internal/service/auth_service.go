package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/dto"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/repository"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/utils"
	"go.uber.org/zap"
)

const defaultLanguage = "de"

// authService implements AuthService
type authService struct {
	userRepo         repository.UserRepository
	tokenStore       TokenStore
	jwtManager       *utils.JWTManager
	hasher           *utils.PasswordHasher
	validator        *utils.Validator
	events           VerificationPublisher
	logger           *zap.Logger
	maxLoginAttempts int
	lockoutDuration  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenStore TokenStore,
	jwtManager *utils.JWTManager,
	hasher *utils.PasswordHasher,
	validator *utils.Validator,
	events VerificationPublisher,
	logger *zap.Logger,
	maxLoginAttempts int,
	lockoutDuration time.Duration,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokenStore:       tokenStore,
		jwtManager:       jwtManager,
		hasher:           hasher,
		validator:        validator,
		events:           events,
		logger:           logger,
		maxLoginAttempts: maxLoginAttempts,
		lockoutDuration:  lockoutDuration,
	}
}

// Register registers a new user account
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := s.validator.ValidateEmail(req.Email); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err := s.validator.ValidateUsername(req.Username); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	email := utils.SanitizeEmail(req.Email)

	// Email uniqueness is checked before username so the conflict
	// message names the right identifier
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, &UserAlreadyExistsError{Field: "email", Reason: "email already registered"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, unavailable(err)
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, &UserAlreadyExistsError{Field: "username", Reason: "username already taken"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, unavailable(err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidPassword) {
			return nil, &ValidationError{Reason: err.Error()}
		}
		return nil, unavailable(err)
	}

	language := req.PreferredLanguage
	if language == "" {
		language = defaultLanguage
	}

	user := &domain.User{
		Email:             email,
		Username:          req.Username,
		PasswordHash:      passwordHash,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Bio:               req.Bio,
		PreferredLanguage: language,
		Status:            domain.StatusActive,
		Role:              domain.RoleConsumer,
		EmailVerified:     false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, &UserAlreadyExistsError{Field: "email", Reason: "email already registered"}
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, &UserAlreadyExistsError{Field: "username", Reason: "username already taken"}
		default:
			return nil, unavailable(err)
		}
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return toUserResponse(user), nil
}

// Login authenticates a user and issues a token pair.
// Lockout bookkeeping for failed attempts happens in RecordFailedLogin,
// driven by the HTTP layer, so this path stays read-mostly.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.UserResponse, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, unavailable(err)
	}

	// Lock is checked before password verification; it only blocks,
	// counters reset on the next successful authentication
	if user.IsLocked(time.Now()) {
		return nil, nil, ErrAccountLocked
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, nil, ErrAccountNotVerified
	}

	if user.Status != domain.StatusActive {
		return nil, nil, &AuthError{Reason: fmt.Sprintf("account is %s", user.Status)}
	}

	now := time.Now().UTC()
	user.LoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, unavailable(err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return toUserResponse(user), pair, nil
}

// RecordFailedLogin increments the failed-attempt counter and locks the
// account at the configured threshold. Unknown emails are a silent
// no-op so the caller cannot probe for account existence.
func (s *authService) RecordFailedLogin(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return unavailable(err)
	}

	// An active lock already blocks login; no further counting needed
	if user.IsLocked(time.Now()) {
		return nil
	}

	user.LoginAttempts++
	if user.LoginAttempts >= s.maxLoginAttempts {
		lockedUntil := time.Now().UTC().Add(s.lockoutDuration)
		user.LockedUntil = &lockedUntil
		s.logger.Warn("account locked after repeated failed logins",
			zap.String("user_id", user.ID),
			zap.Int("attempts", user.LoginAttempts),
		)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return unavailable(err)
	}

	return nil
}

// Refresh rotates a refresh token: the presented token must still be
// the stored current one, then it is replaced and denylisted. The
// replacement is an atomic compare-and-swap on the store, so two racing
// refreshes with the same token resolve to exactly one winner.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.Verify(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, &AuthError{Reason: "invalid or expired refresh token"}
	}

	denylisted, err := s.tokenStore.IsDenylisted(ctx, refreshToken)
	if err != nil {
		return nil, unavailable(err)
	}
	if denylisted {
		return nil, &AuthError{Reason: "token has been revoked"}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &AuthError{Reason: "user not found or account is inactive"}
		}
		return nil, unavailable(err)
	}
	if user.Status != domain.StatusActive {
		return nil, &AuthError{Reason: "user not found or account is inactive"}
	}

	accessToken, accessExpiresIn, err := s.jwtManager.Issue(user.ID, user.Email, user.Role, domain.TokenTypeAccess)
	if err != nil {
		return nil, unavailable(err)
	}

	newRefreshToken, refreshExpiresIn, err := s.jwtManager.Issue(user.ID, user.Email, user.Role, domain.TokenTypeRefresh)
	if err != nil {
		return nil, unavailable(err)
	}

	swapped, err := s.tokenStore.SwapRefresh(ctx, user.ID, refreshToken, newRefreshToken, time.Duration(refreshExpiresIn)*time.Second)
	if err != nil {
		return nil, unavailable(err)
	}
	if !swapped {
		// Superseded by rotation, never stored, or lost the race
		return nil, &AuthError{Reason: "refresh token is no longer valid"}
	}

	// Only the swap winner reaches the denylist write; losers already
	// failed above, so the old token is dead either way
	if err := s.tokenStore.Denylist(ctx, refreshToken, claims.RemainingLifetime(time.Now().UTC())); err != nil {
		return nil, unavailable(err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    accessExpiresIn,
	}, nil
}

// Logout revokes both tokens immediately and drops the current-refresh
// record, so subsequent refresh attempts fail at the denylist check.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.jwtManager.Verify(accessToken, domain.TokenTypeAccess)
	if err != nil {
		return &AuthError{Reason: "invalid or expired access token"}
	}

	now := time.Now().UTC()
	if err := s.tokenStore.Denylist(ctx, accessToken, claims.RemainingLifetime(now)); err != nil {
		return unavailable(err)
	}

	if refreshToken != "" {
		ttl := s.jwtManager.TTL(domain.TokenTypeRefresh)
		if refreshClaims, err := s.jwtManager.Verify(refreshToken, domain.TokenTypeRefresh); err == nil {
			ttl = refreshClaims.RemainingLifetime(now)
		}
		if err := s.tokenStore.Denylist(ctx, refreshToken, ttl); err != nil {
			return unavailable(err)
		}
	}

	if err := s.tokenStore.DeleteRefresh(ctx, claims.UserID); err != nil {
		return unavailable(err)
	}

	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))

	return nil
}

// VerifyEmail consumes an email verification token
func (s *authService) VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error) {
	claims, err := s.jwtManager.Verify(token, domain.TokenTypeEmailVerification)
	if err != nil {
		return nil, &AuthError{Reason: "invalid or expired token"}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &AuthError{Reason: "user not found"}
		}
		return nil, unavailable(err)
	}

	now := time.Now().UTC()
	user.EmailVerified = true
	user.VerifiedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, unavailable(err)
	}

	s.logger.Info("email verified", zap.String("user_id", user.ID))

	return toUserResponse(user), nil
}

// ResendVerification issues a fresh email verification token and hands
// it to the verification-event publisher. Returning the raw token to
// the caller is an MVP shortcut until out-of-band delivery exists.
func (s *authService) ResendVerification(ctx context.Context, email string) (string, int, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", 0, &AuthError{Reason: "user not found"}
		}
		return "", 0, unavailable(err)
	}

	if user.EmailVerified {
		return "", 0, &AuthError{Reason: "email already verified"}
	}

	token, expiresIn, err := s.jwtManager.Issue(user.ID, user.Email, user.Role, domain.TokenTypeEmailVerification)
	if err != nil {
		return "", 0, unavailable(err)
	}

	if err := s.events.PublishVerificationRequested(ctx, user.ID, user.Email, token); err != nil {
		// Best effort; the token still reaches the caller
		s.logger.Warn("failed to publish verification event", zap.Error(err))
	}

	return token, expiresIn, nil
}

// ValidateToken validates an access token for request authentication
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	denylisted, err := s.tokenStore.IsDenylisted(ctx, token)
	if err != nil {
		return nil, unavailable(err)
	}
	if denylisted {
		return nil, ErrTokenRevoked
	}

	claims, err := s.jwtManager.Verify(token, domain.TokenTypeAccess)
	if err != nil {
		return nil, &AuthError{Reason: "invalid or expired access token"}
	}

	return claims, nil
}

// GetUser returns the public view of a user
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &AuthError{Reason: "user not found"}
		}
		return nil, unavailable(err)
	}
	return toUserResponse(user), nil
}

// PasswordStrength scores a candidate password for user feedback
func (s *authService) PasswordStrength(password string) utils.PasswordStrength {
	return s.validator.ScorePassword(password)
}

// issueTokenPair issues an access and refresh token and records the
// refresh token as the user's current one.
func (s *authService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, accessExpiresIn, err := s.jwtManager.Issue(user.ID, user.Email, user.Role, domain.TokenTypeAccess)
	if err != nil {
		return nil, unavailable(err)
	}

	refreshToken, refreshExpiresIn, err := s.jwtManager.Issue(user.ID, user.Email, user.Role, domain.TokenTypeRefresh)
	if err != nil {
		return nil, unavailable(err)
	}

	if err := s.tokenStore.StoreRefresh(ctx, user.ID, refreshToken, time.Duration(refreshExpiresIn)*time.Second); err != nil {
		return nil, unavailable(err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    accessExpiresIn,
	}, nil
}
