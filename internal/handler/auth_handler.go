package handler

import (
	"errors"
	"net/http"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/dto"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		var existsErr *service.UserAlreadyExistsError
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &existsErr):
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:   "Conflict",
				Message: existsErr.Reason,
				Details: gin.H{"field": existsErr.Field},
			})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Message: validationErr.Reason,
			})
		default:
			writeUnavailableOrForbidden(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login handles user login
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} domain.TokenPair
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	_, pair, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrAccountNotVerified):
			// Failed-attempt bookkeeping is explicit here, keeping
			// the authenticate path itself read-mostly
			_ = h.authService.RecordFailedLogin(c.Request.Context(), req.Email)
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			_ = h.authService.RecordFailedLogin(c.Request.Context(), req.Email)
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: err.Error(),
			})
		default:
			writeUnavailableOrForbidden(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh handles token refresh with rotation
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh request"
// @Success 200 {object} domain.TokenPair
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		var unavailableErr *service.ServiceUnavailableError
		if errors.As(err, &unavailableErr) {
			writeUnavailable(c)
			return
		}
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout handles user logout
// @Summary Logout user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken, exists := c.Get(ContextKeyAccessToken)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "access token not found in context",
		})
		return
	}

	// Refresh token travels in the body; absence only skips its revocation
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	err := h.authService.Logout(c.Request.Context(), accessToken.(string), req.RefreshToken)
	if err != nil {
		var unavailableErr *service.ServiceUnavailableError
		if errors.As(err, &unavailableErr) {
			writeUnavailable(c)
			return
		}
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// VerifyEmail consumes an email verification token
// @Summary Verify email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailVerificationRequest true "Verification request"
// @Success 200 {object} dto.VerificationEmailResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.EmailVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		var unavailableErr *service.ServiceUnavailableError
		if errors.As(err, &unavailableErr) {
			writeUnavailable(c)
			return
		}
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.VerificationEmailResponse{
		Message: "Email verified successfully. You can now login.",
		Email:   user.Email,
	})
}

// ResendVerification issues a fresh email verification token.
// Echoing the token in the response is an MVP shortcut; production
// delivery happens out of band via the verification event queue.
// @Summary Resend verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendVerificationRequest true "Resend request"
// @Success 200 {object} dto.VerificationEmailResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/resend-verification-email [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	token, _, err := h.authService.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		var unavailableErr *service.ServiceUnavailableError
		if errors.As(err, &unavailableErr) {
			writeUnavailable(c)
			return
		}
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.VerificationEmailResponse{
		Message: "(MVP) Verification token generated. Copy this token to verify your email: " + token,
		Email:   req.Email,
	})
}

// CheckPasswordStrength evaluates a candidate password.
// The input is neither stored nor logged.
// @Summary Check password strength
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordStrengthRequest true "Password to evaluate"
// @Success 200 {object} dto.PasswordStrengthResponse
// @Router /auth/check-password-strength [post]
func (h *AuthHandler) CheckPasswordStrength(c *gin.Context) {
	var req dto.PasswordStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result := h.authService.PasswordStrength(req.Password)

	c.JSON(http.StatusOK, dto.PasswordStrengthResponse{
		Score:       result.Score,
		Strength:    result.Strength,
		Suggestions: result.Suggestions,
		MeetsPolicy: result.MeetsPolicy,
	})
}

// GetMe returns the current user's profile
// @Summary Get current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "user ID not found in context",
		})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID.(string))
	if err != nil {
		var unavailableErr *service.ServiceUnavailableError
		if errors.As(err, &unavailableErr) {
			writeUnavailable(c)
			return
		}
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

func writeUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
		Error:   "Service unavailable",
		Message: "Service temporarily unavailable. Please try again later.",
	})
}

// writeUnavailableOrForbidden handles the residual error cases: store
// failures map to 503, everything else is a generic 403.
func writeUnavailableOrForbidden(c *gin.Context, err error) {
	var unavailableErr *service.ServiceUnavailableError
	if errors.As(err, &unavailableErr) {
		writeUnavailable(c)
		return
	}
	c.JSON(http.StatusForbidden, dto.ErrorResponse{
		Error:   "Forbidden",
		Message: err.Error(),
	})
}
