package taskerprofiles

import (
	"context"

	"github.com/dmitrijs2005/taskerid/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, profile *models.TaskerProfile) error
	GetByUserID(ctx context.Context, userID string) (*models.TaskerProfile, error)
}
