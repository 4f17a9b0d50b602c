package service

import (
	"time"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/dto"
)

// toUserResponse maps a user to its public view. The password hash
// never leaves the service layer.
func toUserResponse(user *domain.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		Username:          user.Username,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Bio:               user.Bio,
		PreferredLanguage: user.PreferredLanguage,
		Status:            string(user.Status),
		Role:              string(user.Role),
		EmailVerified:     user.EmailVerified,
		CreatedAt:         user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         user.UpdatedAt.Format(time.RFC3339),
	}

	if user.VerifiedAt != nil {
		verifiedAt := user.VerifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &verifiedAt
	}
	if user.LastLogin != nil {
		lastLogin := user.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &lastLogin
	}

	return resp
}
