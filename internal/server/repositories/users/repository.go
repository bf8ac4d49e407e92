package users

import (
	"context"

	"github.com/dmitrijs2005/taskerid/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUserName(ctx context.Context, userName string) (*models.User, error)
}
