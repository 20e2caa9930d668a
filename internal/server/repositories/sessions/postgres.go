// Package sessions provides the PostgreSQL-backed session store. Every
// lookup and mutation is scoped to the owning user.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const sessionColumns = `id, public_id, token, ip_address, user_agent, device_name, device_type,
		 two_factor_verified, user_id, expires_at, is_revoked, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts s. A duplicate token yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	query :=
		`INSERT INTO sessions (token, ip_address, user_agent, device_name, device_type, user_id, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + sessionColumns

	created, err := scanSession(r.db.QueryRowContext(ctx, query,
		s.Token, s.IPAddress, s.UserAgent, s.DeviceName, s.DeviceType, s.UserID, s.ExpiresAt))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNoRowReturned
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, userID, id int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND user_id = $2`
	return scanSession(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) FindByToken(ctx context.Context, userID int64, token string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND user_id = $2`
	return scanSession(r.db.QueryRowContext(ctx, query, token, userID))
}

func (r *PostgresRepository) Revoke(ctx context.Context, userID, id int64) error {
	query :=
		`UPDATE sessions SET is_revoked = TRUE, updated_at = now()
		 WHERE id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RevokeAll revokes every active session of userID and returns how many
// rows changed.
func (r *PostgresRepository) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	query :=
		`UPDATE sessions SET is_revoked = TRUE, updated_at = now()
		 WHERE user_id = $1 AND is_revoked = FALSE`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's sessions, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetTwoFactorVerified(ctx context.Context, userID, id int64) error {
	query :=
		`UPDATE sessions SET two_factor_verified = TRUE, updated_at = now()
		 WHERE id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		s         models.Session
		userAgent sql.NullString
	)

	err := row.Scan(&s.ID, &s.PublicID, &s.Token, &s.IPAddress, &userAgent, &s.DeviceName, &s.DeviceType,
		&s.TwoFactorVerified, &s.UserID, &s.ExpiresAt, &s.IsRevoked, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.UserAgent = userAgent.String
	return &s, nil
}
