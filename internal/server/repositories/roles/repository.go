package roles

import (
	"context"

	"github.com/dmitrijs2005/taskerid/internal/server/models"
)

type Repository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	AddUserToRole(ctx context.Context, userID string, roleID int64) error
	GetUserRoles(ctx context.Context, userID string) ([]string, error)
}
