// Package accounts provides the PostgreSQL-backed store of external identity
// links, unique on (account_id, provider_id).
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByProvider(ctx context.Context, providerID, accountID string) (*models.Account, error) {
	query :=
		`SELECT id, account_id, provider_id, user_id, access_token, refresh_token, id_token,
		 access_token_expires_at, refresh_token_expires_at, scope, created_at, updated_at
		 FROM accounts
		 WHERE provider_id = $1 AND account_id = $2`

	var (
		a                                 models.Account
		access, refresh, idToken, scope   sql.NullString
		accessExpiresAt, refreshExpiresAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, providerID, accountID).Scan(
		&a.ID, &a.AccountID, &a.ProviderID, &a.UserID, &access, &refresh, &idToken,
		&accessExpiresAt, &refreshExpiresAt, &scope, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.AccessToken = access.String
	a.RefreshToken = refresh.String
	a.IDToken = idToken.String
	a.Scope = scope.String
	a.AccessTokenExpiresAt = timePtr(accessExpiresAt)
	a.RefreshTokenExpiresAt = timePtr(refreshExpiresAt)

	return &a, nil
}

// Create links a provider account to a user. An existing link yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (account_id, provider_id, user_id, access_token, refresh_token, id_token,
		 access_token_expires_at, scope)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.AccountID, a.ProviderID, a.UserID, nullString(a.AccessToken), nullString(a.RefreshToken),
		nullString(a.IDToken), nullTime(a.AccessTokenExpiresAt), nullString(a.Scope)).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// UpdateTokens overwrites the stored provider tokens of account a.ID.
// An empty refresh token keeps the stored one, since providers only send it
// on first consent.
func (r *PostgresRepository) UpdateTokens(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts
		 SET access_token = $1,
		     refresh_token = COALESCE($2, refresh_token),
		     id_token = $3,
		     access_token_expires_at = $4,
		     updated_at = now()
		 WHERE id = $5`

	_, err := r.db.ExecContext(ctx, query,
		nullString(a.AccessToken), nullString(a.RefreshToken), nullString(a.IDToken),
		nullTime(a.AccessTokenExpiresAt), a.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
