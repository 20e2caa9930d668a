package media

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Media, error)
	GetByPublicID(ctx context.Context, userID int64, publicID string) (*models.Media, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, userID int64, publicID string, altText, filename *string) (*models.Media, error)
	Delete(ctx context.Context, userID int64, publicID string) error
}
