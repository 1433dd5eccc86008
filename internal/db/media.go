package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

const mediaColumns = `id, entity_type, entity_id, file_path, file_name, file_size, mime_type, media_type,
	description, alt_text, is_cover_image, is_featured, public_url, uploaded_by, created_at`

// Default and maximum page sizes for media listings.
const (
	DefaultMediaLimit = 50
	MaxMediaLimit     = 200
)

func scanMedia(row pgx.Row) (*types.MediaFile, error) {
	var m types.MediaFile
	err := row.Scan(&m.ID, &m.EntityType, &m.EntityID, &m.FilePath, &m.FileName, &m.FileSize, &m.MimeType,
		&m.MediaType, &m.Description, &m.AltText, &m.IsCoverImage, &m.IsFeatured, &m.PublicURL,
		&m.UploadedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMedia inserts a media metadata row.
func (db *DB) CreateMedia(ctx context.Context, m *types.MediaFile) (*types.MediaFile, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO media_files (entity_type, entity_id, file_path, file_name, file_size, mime_type, media_type,
			description, alt_text, is_cover_image, is_featured, public_url, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+mediaColumns,
		m.EntityType, m.EntityID, m.FilePath, m.FileName, m.FileSize, m.MimeType, m.MediaType,
		m.Description, m.AltText, m.IsCoverImage, m.IsFeatured, m.PublicURL, m.UploadedBy,
	)
	created, err := scanMedia(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("media path %s: %w", m.FilePath, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	return created, nil
}

// GetMedia returns one media row.
func (db *DB) GetMedia(ctx context.Context, id uuid.UUID) (*types.MediaFile, error) {
	m, err := scanMedia(db.pool.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "media", id)
	}
	return m, nil
}

// ListMedia returns media rows newest first.
func (db *DB) ListMedia(ctx context.Context, filter types.MediaFilter) ([]types.MediaFile, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + mediaColumns + ` FROM media_files WHERE 1=1`)
	var args []any

	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		fmt.Fprintf(&sb, " AND entity_type = $%d", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		fmt.Fprintf(&sb, " AND entity_id = $%d", len(args))
	}
	if filter.MediaType != "" {
		args = append(args, filter.MediaType)
		fmt.Fprintf(&sb, " AND media_type = $%d", len(args))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		fmt.Fprintf(&sb, " AND is_featured = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultMediaLimit
	}
	if limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := db.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	out := make([]types.MediaFile, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// UpdateMedia applies the supplied descriptive fields.
func (db *DB) UpdateMedia(ctx context.Context, id uuid.UUID, upd types.MediaUpdate) (*types.MediaFile, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE media_files SET
			description = COALESCE($2, description),
			alt_text = COALESCE($3, alt_text),
			is_cover_image = COALESCE($4, is_cover_image),
			is_featured = COALESCE($5, is_featured)
		 WHERE id = $1
		 RETURNING `+mediaColumns,
		id, upd.Description, upd.AltText, upd.IsCoverImage, upd.IsFeatured,
	)
	m, err := scanMedia(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("media %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update media: %w", err)
	}
	return m, nil
}

// DeleteMedia removes a media row and returns it so the blob can be removed.
func (db *DB) DeleteMedia(ctx context.Context, id uuid.UUID) (*types.MediaFile, error) {
	m, err := scanMedia(db.pool.QueryRow(ctx, `DELETE FROM media_files WHERE id = $1 RETURNING `+mediaColumns, id))
	if err != nil {
		return nil, notFound(err, "media", id)
	}
	return m, nil
}
