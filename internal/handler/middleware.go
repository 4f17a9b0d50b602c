package handler

import (
	"net/http"
	"strings"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/dto"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/service"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextKeyUserID      = "user_id"
	ContextKeyEmail       = "email"
	ContextKeyRole        = "role"
	ContextKeyClaims      = "claims"
	ContextKeyAccessToken = "access_token"
)

// AuthMiddleware validates the bearer token and adds user info to the
// request context. The raw token is kept so logout can revoke it.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		token := parts[1]

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyAccessToken, token)

		c.Next()
	}
}
