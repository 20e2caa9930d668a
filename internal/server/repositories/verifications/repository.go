package verifications

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	Find(ctx context.Context, identifier string, tokenType models.TokenType) (*models.Verification, error)
	Upsert(ctx context.Context, v *models.Verification) error
	Delete(ctx context.Context, identifier string, tokenType models.TokenType) error
}
