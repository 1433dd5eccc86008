package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/portfolio-backoffice/internal/types"
)

const contentEntityColumns = `id, entity_type, title, subtitle, description,
	COALESCE(date_start::text, ''), COALESCE(date_end::text, ''), is_current, is_featured, is_visible,
	display_order, metadata, created_at, updated_at`

// Default and maximum page sizes for content entity listings.
const (
	DefaultContentEntityLimit = 100
	MaxContentEntityLimit     = 500
)

func scanContentEntity(row pgx.Row) (*types.ContentEntity, error) {
	var (
		e    types.ContentEntity
		meta []byte
	)
	err := row.Scan(&e.ID, &e.EntityType, &e.Title, &e.Subtitle, &e.Description,
		&e.DateStart, &e.DateEnd, &e.IsCurrent, &e.IsFeatured, &e.IsVisible,
		&e.DisplayOrder, &meta, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meta, &e.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata of content entity %s: %w", e.ID, err)
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	return &e, nil
}

// CreateContentEntity inserts e. A zero DisplayOrder places the entity after
// every existing entity of the same type.
func (db *DB) CreateContentEntity(ctx context.Context, e *types.ContentEntity) (*types.ContentEntity, error) {
	meta, err := marshalMetadata(e.Metadata)
	if err != nil {
		return nil, err
	}
	row := db.pool.QueryRow(ctx,
		`INSERT INTO content_entities (entity_type, title, subtitle, description, date_start, date_end,
			is_current, is_featured, is_visible, display_order, metadata)
		 VALUES ($1, $2, $3, $4, NULLIF($5::text, '')::date, NULLIF($6::text, '')::date, $7, $8, $9,
			CASE WHEN $10::int > 0 THEN $10::int
			     ELSE (SELECT COALESCE(MAX(display_order), 0) + 1 FROM content_entities WHERE entity_type = $1)
			END,
			$11::jsonb)
		 RETURNING `+contentEntityColumns,
		e.EntityType, e.Title, e.Subtitle, e.Description, e.DateStart, e.DateEnd,
		e.IsCurrent, e.IsFeatured, e.IsVisible, e.DisplayOrder, meta,
	)
	created, err := scanContentEntity(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create content entity: %w", err)
	}
	return created, nil
}

// GetContentEntity returns one content entity by ID.
func (db *DB) GetContentEntity(ctx context.Context, id uuid.UUID) (*types.ContentEntity, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+contentEntityColumns+` FROM content_entities WHERE id = $1`, id)
	e, err := scanContentEntity(row)
	if err != nil {
		return nil, notFound(err, "content entity", id)
	}
	return e, nil
}

// UpdateContentEntity overwrites every writable column of e.
func (db *DB) UpdateContentEntity(ctx context.Context, e *types.ContentEntity) (*types.ContentEntity, error) {
	meta, err := marshalMetadata(e.Metadata)
	if err != nil {
		return nil, err
	}
	row := db.pool.QueryRow(ctx,
		`UPDATE content_entities SET entity_type = $2, title = $3, subtitle = $4, description = $5,
			date_start = NULLIF($6::text, '')::date, date_end = NULLIF($7::text, '')::date,
			is_current = $8, is_featured = $9, is_visible = $10, display_order = $11,
			metadata = $12::jsonb, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+contentEntityColumns,
		e.ID, e.EntityType, e.Title, e.Subtitle, e.Description, e.DateStart, e.DateEnd,
		e.IsCurrent, e.IsFeatured, e.IsVisible, e.DisplayOrder, meta,
	)
	updated, err := scanContentEntity(row)
	if err != nil {
		return nil, notFound(err, "content entity", e.ID)
	}
	return updated, nil
}

// DeleteContentEntity removes one content entity and returns it.
func (db *DB) DeleteContentEntity(ctx context.Context, id uuid.UUID) (*types.ContentEntity, error) {
	row := db.pool.QueryRow(ctx, `DELETE FROM content_entities WHERE id = $1 RETURNING `+contentEntityColumns, id)
	deleted, err := scanContentEntity(row)
	if err != nil {
		return nil, notFound(err, "content entity", id)
	}
	return deleted, nil
}

// ListContentEntities returns content entities in display order.
func (db *DB) ListContentEntities(ctx context.Context, filter types.ContentEntityFilter) ([]types.ContentEntity, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + contentEntityColumns + ` FROM content_entities WHERE 1=1`)
	var args []any

	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		fmt.Fprintf(&sb, " AND entity_type = $%d", len(args))
	}
	if filter.FeaturedOnly {
		sb.WriteString(" AND is_featured")
	}
	if filter.VisibleOnly {
		sb.WriteString(" AND is_visible")
	}
	sb.WriteString(" ORDER BY display_order, created_at")

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultContentEntityLimit
	}
	if limit > MaxContentEntityLimit {
		limit = MaxContentEntityLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	rows, err := db.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content entities: %w", err)
	}
	defer rows.Close()

	out := make([]types.ContentEntity, 0)
	for rows.Next() {
		e, err := scanContentEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content entity: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list content entities: %w", err)
	}
	return out, nil
}

// ListPublicContentEntities returns every visible content entity in display
// order.
func (db *DB) ListPublicContentEntities(ctx context.Context) ([]types.ContentEntity, error) {
	return db.ListContentEntities(ctx, types.ContentEntityFilter{VisibleOnly: true, Limit: MaxContentEntityLimit})
}
