// Package media provides the PostgreSQL-backed store for uploaded media
// metadata. Rows are always scoped to the uploading user.
package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const mediaColumns = `id, public_id, filename, mime_type, file_extension, secure_url, file_size,
		 width, height, duration, storage_key, media_type, alt_text, caption, description,
		 tags, storage_metadata, uploaded_by, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	tags, meta, err := encodeJSONColumns(m)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO media (filename, mime_type, file_extension, secure_url, file_size, width, height,
		 duration, storage_key, media_type, alt_text, caption, description, tags, storage_metadata, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING ` + mediaColumns

	created, err := scanMedia(r.db.QueryRowContext(ctx, query,
		m.Filename, m.MimeType, m.FileExtension, m.SecureURL, m.FileSize, nullInt(m.Width), nullInt(m.Height),
		nullFloat(m.Duration), m.StorageKey, m.MediaType, nullString(m.AltText), nullString(m.Caption),
		nullString(m.Description), tags, meta, m.UploadedBy))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNoRowReturned
		}
		return nil, err
	}
	return created, nil
}

// ListByUser returns the user's media in upload order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE uploaded_by = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByPublicID(ctx context.Context, userID int64, publicID string) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE public_id = $1 AND uploaded_by = $2`
	return scanMedia(r.db.QueryRowContext(ctx, query, publicID, userID))
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM media WHERE uploaded_by = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Update changes alt text and/or filename; a nil argument keeps the stored
// value. Returns common.ErrorNotFound when no row matches.
func (r *PostgresRepository) Update(ctx context.Context, userID int64, publicID string, altText, filename *string) (*models.Media, error) {
	query :=
		`UPDATE media
		 SET alt_text = COALESCE($1, alt_text), filename = COALESCE($2, filename), updated_at = now()
		 WHERE public_id = $3 AND uploaded_by = $4
		 RETURNING ` + mediaColumns

	return scanMedia(r.db.QueryRowContext(ctx, query, optString(altText), optString(filename), publicID, userID))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID int64, publicID string) error {
	query := `DELETE FROM media WHERE public_id = $1 AND uploaded_by = $2`

	res, err := r.db.ExecContext(ctx, query, publicID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(row scanner) (*models.Media, error) {
	var (
		m                       models.Media
		width, height           sql.NullInt64
		duration                sql.NullFloat64
		altText, caption, descr sql.NullString
		tags, meta              []byte
	)

	err := row.Scan(&m.ID, &m.PublicID, &m.Filename, &m.MimeType, &m.FileExtension, &m.SecureURL, &m.FileSize,
		&width, &height, &duration, &m.StorageKey, &m.MediaType, &altText, &caption, &descr,
		&tags, &meta, &m.UploadedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if width.Valid {
		w := int(width.Int64)
		m.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		m.Height = &h
	}
	if duration.Valid {
		d := duration.Float64
		m.Duration = &d
	}
	m.AltText, m.Caption, m.Description = altText.String, caption.String, descr.String

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &m.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &m.StorageMetadata); err != nil {
			return nil, fmt.Errorf("decode storage metadata: %w", err)
		}
	}
	return &m, nil
}

func encodeJSONColumns(m *models.Media) (string, string, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := m.StorageMetadata
	if meta == nil {
		meta = map[string]any{}
	}

	t, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	md, err := json.Marshal(meta)
	if err != nil {
		return "", "", fmt.Errorf("encode storage metadata: %w", err)
	}
	return string(t), string(md), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func optString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
