package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

const experienceColumns = `id, category, title, organization, location,
	COALESCE(start_date::text, ''), COALESCE(end_date::text, ''), is_current, description,
	skills, technologies, achievements, resume_priority, visibility, is_featured, display_order,
	created_at, updated_at`

// Default and maximum page sizes for experience listings.
const (
	DefaultExperienceLimit = 100
	MaxExperienceLimit     = 500
)

func scanExperience(row pgx.Row) (*types.ExperienceRecord, error) {
	var e types.ExperienceRecord
	err := row.Scan(&e.ID, &e.Category, &e.Title, &e.Organization, &e.Location,
		&e.StartDate, &e.EndDate, &e.IsCurrent, &e.Description,
		&e.Skills, &e.Technologies, &e.Achievements, &e.ResumePriority, &e.Visibility,
		&e.IsFeatured, &e.DisplayOrder, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Skills = nonNil(e.Skills)
	e.Technologies = nonNil(e.Technologies)
	e.Achievements = nonNil(e.Achievements)
	return &e, nil
}

// CreateExperience inserts rec and returns the stored row.
func (db *DB) CreateExperience(ctx context.Context, rec *types.ExperienceRecord) (*types.ExperienceRecord, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO experiences (category, title, organization, location, start_date, end_date,
			is_current, description, skills, technologies, achievements, resume_priority, visibility,
			is_featured, display_order)
		 VALUES ($1, $2, $3, $4, NULLIF($5::text, '')::date, NULLIF($6::text, '')::date, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING `+experienceColumns,
		rec.Category, rec.Title, rec.Organization, rec.Location, rec.StartDate, rec.EndDate,
		rec.IsCurrent, rec.Description, nonNil(rec.Skills), nonNil(rec.Technologies), nonNil(rec.Achievements),
		rec.ResumePriority, rec.Visibility, rec.IsFeatured, rec.DisplayOrder,
	)
	created, err := scanExperience(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create experience: %w", err)
	}
	return created, nil
}

// GetExperience returns one experience by ID.
func (db *DB) GetExperience(ctx context.Context, id uuid.UUID) (*types.ExperienceRecord, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE id = $1`, id)
	e, err := scanExperience(row)
	if err != nil {
		return nil, notFound(err, "experience", id)
	}
	return e, nil
}

// UpdateExperience overwrites every writable column of rec.
func (db *DB) UpdateExperience(ctx context.Context, rec *types.ExperienceRecord) (*types.ExperienceRecord, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE experiences SET category = $2, title = $3, organization = $4, location = $5,
			start_date = NULLIF($6::text, '')::date, end_date = NULLIF($7::text, '')::date, is_current = $8,
			description = $9, skills = $10, technologies = $11, achievements = $12,
			resume_priority = $13, visibility = $14, is_featured = $15, display_order = $16,
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+experienceColumns,
		rec.ID, rec.Category, rec.Title, rec.Organization, rec.Location, rec.StartDate, rec.EndDate,
		rec.IsCurrent, rec.Description, nonNil(rec.Skills), nonNil(rec.Technologies), nonNil(rec.Achievements),
		rec.ResumePriority, rec.Visibility, rec.IsFeatured, rec.DisplayOrder,
	)
	updated, err := scanExperience(row)
	if err != nil {
		return nil, notFound(err, "experience", rec.ID)
	}
	return updated, nil
}

// DeleteExperience removes one experience.
func (db *DB) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM experiences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete experience: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("experience %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// ListExperiences returns experiences ordered by priority then start date,
// both descending.
func (db *DB) ListExperiences(ctx context.Context, filter types.ExperienceFilter) ([]types.ExperienceRecord, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + experienceColumns + ` FROM experiences WHERE 1=1`)
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if filter.Visibility != "" {
		args = append(args, filter.Visibility)
		fmt.Fprintf(&sb, " AND visibility = $%d", len(args))
	}
	sb.WriteString(" ORDER BY resume_priority DESC, start_date DESC NULLS LAST, created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultExperienceLimit
	}
	if limit > MaxExperienceLimit {
		limit = MaxExperienceLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return db.queryExperiences(ctx, sb.String(), args...)
}

// ListResumeEligible returns public and résumé-only experiences, highest
// priority first.
func (db *DB) ListResumeEligible(ctx context.Context) ([]types.ExperienceRecord, error) {
	return db.queryExperiences(ctx,
		`SELECT `+experienceColumns+` FROM experiences
		 WHERE visibility IN ('public', 'resume_only')
		 ORDER BY resume_priority DESC, start_date DESC NULLS LAST, created_at DESC`)
}

// ListPublicExperiences returns public experiences in display order.
func (db *DB) ListPublicExperiences(ctx context.Context) ([]types.ExperienceRecord, error) {
	return db.queryExperiences(ctx,
		`SELECT `+experienceColumns+` FROM experiences
		 WHERE visibility = 'public'
		 ORDER BY display_order, start_date DESC NULLS LAST`)
}

func (db *DB) queryExperiences(ctx context.Context, query string, args ...any) ([]types.ExperienceRecord, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	defer rows.Close()

	out := make([]types.ExperienceRecord, 0)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	return out, nil
}
