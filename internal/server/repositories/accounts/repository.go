package accounts

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	FindByProvider(ctx context.Context, providerID, accountID string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	UpdateTokens(ctx context.Context, a *models.Account) error
}
