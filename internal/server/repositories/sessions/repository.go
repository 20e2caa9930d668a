package sessions

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	FindByID(ctx context.Context, userID, id int64) (*models.Session, error)
	FindByToken(ctx context.Context, userID int64, token string) (*models.Session, error)
	Revoke(ctx context.Context, userID, id int64) error
	RevokeAll(ctx context.Context, userID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Session, error)
	SetTwoFactorVerified(ctx context.Context, userID, id int64) error
}
