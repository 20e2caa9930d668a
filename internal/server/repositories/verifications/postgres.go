// Package verifications stores hashed one-time codes, one per
// (identifier, token type).
package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Find(ctx context.Context, identifier string, tokenType models.TokenType) (*models.Verification, error) {
	query :=
		`SELECT id, identifier, token_type, value, expires_at, created_at, updated_at
		 FROM verifications
		 WHERE identifier = $1 AND token_type = $2`

	v := &models.Verification{}
	err := r.db.QueryRowContext(ctx, query, identifier, string(tokenType)).
		Scan(&v.ID, &v.Identifier, &v.TokenType, &v.Value, &v.ExpiresAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// Upsert stores v, replacing the hash and expiry of an existing record with
// the same identifier and type.
func (r *PostgresRepository) Upsert(ctx context.Context, v *models.Verification) error {
	query :=
		`INSERT INTO verifications (identifier, token_type, value, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identifier, token_type)
		 DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, v.Identifier, string(v.TokenType), v.Value, v.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, identifier string, tokenType models.TokenType) error {
	query :=
		`DELETE FROM verifications
		 WHERE identifier = $1 AND token_type = $2`

	if _, err := r.db.ExecContext(ctx, query, identifier, string(tokenType)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
