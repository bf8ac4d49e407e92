package client

import (
	"context"

	"github.com/dmitrijs2005/taskerid/internal/client/models"
)

type Client interface {
	Close() error
	RegisterMember(ctx context.Context, fullName, email, userName, password string) (string, error)
	RegisterTasker(ctx context.Context, r models.TaskerRegistration) (string, error)
	Login(ctx context.Context, userName, password string) (string, error)
	WhoAmI(ctx context.Context, token string) (*models.Identity, error)
}
