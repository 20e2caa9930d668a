package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// OAuthTokens are the provider credentials stored on the linked account.
type OAuthTokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Scope        string
	Expiry       *time.Time
}

// OAuthProfile is a provider-agnostic view of an identity returned by an
// OAuth provider.
type OAuthProfile interface {
	Provider() string
	ExternalID() string
	Email() string
	Name() string
	Picture() string
	Tokens() OAuthTokens
}

type OAuthResolver struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewOAuthResolver(db *sql.DB, rm repomanager.RepositoryManager) *OAuthResolver {
	return &OAuthResolver{db: db, repomanager: rm}
}

// FindOrCreateUser maps an OAuth profile to a local user. The linked account
// is matched first by provider and external id, then by email; failing both
// a verified user is created. Everything runs in one transaction.
func (r *OAuthResolver) FindOrCreateUser(ctx context.Context, p OAuthProfile) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := r.repomanager.Users(tx)
		accountsRepo := r.repomanager.Accounts(tx)
		tokens := p.Tokens()

		account, err := accountsRepo.FindByProvider(ctx, p.Provider(), p.ExternalID())
		switch {
		case err == nil:
			account.AccessToken = tokens.AccessToken
			account.RefreshToken = tokens.RefreshToken
			account.IDToken = tokens.IDToken
			account.AccessTokenExpiresAt = tokens.Expiry
			if err := accountsRepo.UpdateTokens(ctx, account); err != nil {
				return fmt.Errorf("update account tokens: %w", err)
			}
			user, err = usersRepo.GetByID(ctx, account.UserID)
			return err
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		user, err = usersRepo.GetByEmail(ctx, p.Email())
		if errors.Is(err, common.ErrorNotFound) {
			user, err = usersRepo.Create(ctx, &models.User{
				Name:          p.Name(),
				Email:         p.Email(),
				EmailVerified: true,
				Image:         p.Picture(),
			})
		}
		if err != nil {
			return err
		}

		_, err = accountsRepo.Create(ctx, &models.Account{
			AccountID:            p.ExternalID(),
			ProviderID:           p.Provider(),
			UserID:               user.ID,
			AccessToken:          tokens.AccessToken,
			RefreshToken:         tokens.RefreshToken,
			IDToken:              tokens.IDToken,
			AccessTokenExpiresAt: tokens.Expiry,
			Scope:                tokens.Scope,
		})
		if err != nil {
			return fmt.Errorf("link account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user.WithoutPassword(), nil
}
