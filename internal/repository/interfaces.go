package repository

import (
	"context"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
)

// UserRepository defines methods for user account persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
