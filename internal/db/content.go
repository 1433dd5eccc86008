package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// -----------------------------------------------------------------------------
// Personal info
// -----------------------------------------------------------------------------

// GetPersonalInfo returns the profile row, or ErrNotFound before the first save.
func (db *DB) GetPersonalInfo(ctx context.Context) (*types.PersonalInfo, error) {
	var (
		p     types.PersonalInfo
		links []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT name, title, bio, location, email, phone, profile_image_url, social_links, updated_at
		 FROM personal_info WHERE id = 1`,
	).Scan(&p.Name, &p.Title, &p.Bio, &p.Location, &p.Email, &p.Phone, &p.ProfileImageURL, &links, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "personal info", 1)
	}
	if err := json.Unmarshal(links, &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("failed to decode social links: %w", err)
	}
	return &p, nil
}

// UpsertPersonalInfo saves the profile row.
func (db *DB) UpsertPersonalInfo(ctx context.Context, p *types.PersonalInfo) (*types.PersonalInfo, error) {
	links := p.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal social links: %w", err)
	}

	saved := *p
	saved.SocialLinks = links
	err = db.pool.QueryRow(ctx,
		`INSERT INTO personal_info (id, name, title, bio, location, email, phone, profile_image_url, social_links, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8::jsonb, NOW())
		 ON CONFLICT (id) DO UPDATE SET name = $1, title = $2, bio = $3, location = $4, email = $5,
			phone = $6, profile_image_url = $7, social_links = $8::jsonb, updated_at = NOW()
		 RETURNING updated_at`,
		p.Name, p.Title, p.Bio, p.Location, p.Email, p.Phone, p.ProfileImageURL, string(raw),
	).Scan(&saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save personal info: %w", err)
	}
	return &saved, nil
}

// -----------------------------------------------------------------------------
// Skills
// -----------------------------------------------------------------------------

// ListSkills returns skills in display order. visibleOnly hides skills marked
// invisible.
func (db *DB) ListSkills(ctx context.Context, visibleOnly bool) ([]types.Skill, error) {
	query := `SELECT id, name, category, proficiency_level, is_visible, display_order, created_at FROM skills`
	if visibleOnly {
		query += ` WHERE is_visible`
	}
	query += ` ORDER BY display_order, name`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := make([]types.Skill, 0)
	for rows.Next() {
		var s types.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.ProficiencyLevel, &s.IsVisible, &s.DisplayOrder, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// CreateSkill inserts a skill. An empty category is stored as the default.
func (db *DB) CreateSkill(ctx context.Context, s *types.Skill) (*types.Skill, error) {
	created := *s
	if strings.TrimSpace(created.Category) == "" {
		created.Category = types.DefaultSkillCategory
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO skills (name, category, proficiency_level, is_visible, display_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		created.Name, created.Category, created.ProficiencyLevel, created.IsVisible, created.DisplayOrder,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create skill: %w", err)
	}
	return &created, nil
}

// DeleteSkill removes one skill.
func (db *DB) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("skill %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Website sections
// -----------------------------------------------------------------------------

const sectionColumns = `id, section, title, content, metadata, is_published, last_updated`

func scanSection(row pgx.Row) (*types.WebsiteSection, error) {
	var (
		s    types.WebsiteSection
		meta []byte
	)
	if err := row.Scan(&s.ID, &s.Section, &s.Title, &s.Content, &meta, &s.IsPublished, &s.LastUpdated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meta, &s.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata of section %s: %w", s.Section, err)
	}
	return &s, nil
}

// ListSections returns website sections ordered by name.
func (db *DB) ListSections(ctx context.Context, filter types.SectionFilter) ([]types.WebsiteSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM website_content WHERE 1=1`
	var args []any
	if filter.Section != "" {
		args = append(args, filter.Section)
		query += fmt.Sprintf(" AND section = $%d", len(args))
	}
	if filter.PublishedOnly {
		query += " AND is_published"
	}
	query += " ORDER BY section"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	out := make([]types.WebsiteSection, 0)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// CreateSection inserts a section. A duplicate section name is ErrConflict.
func (db *DB) CreateSection(ctx context.Context, s *types.WebsiteSection) (*types.WebsiteSection, error) {
	meta, err := marshalMetadata(s.Metadata)
	if err != nil {
		return nil, err
	}
	row := db.pool.QueryRow(ctx,
		`INSERT INTO website_content (section, title, content, metadata, is_published)
		 VALUES ($1, $2, $3, $4::jsonb, $5)
		 RETURNING `+sectionColumns,
		s.Section, s.Title, s.Content, meta, s.IsPublished,
	)
	created, err := scanSection(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("section %q: %w", s.Section, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return created, nil
}

// UpdateSection applies the supplied fields to a section.
func (db *DB) UpdateSection(ctx context.Context, section string, upd types.SectionUpdate) (*types.WebsiteSection, error) {
	var meta *string
	if upd.Metadata != nil {
		m, err := marshalMetadata(upd.Metadata)
		if err != nil {
			return nil, err
		}
		meta = &m
	}

	row := db.pool.QueryRow(ctx,
		`UPDATE website_content SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			metadata = COALESCE($4::jsonb, metadata),
			is_published = COALESCE($5, is_published),
			last_updated = NOW()
		 WHERE section = $1
		 RETURNING `+sectionColumns,
		section, upd.Title, upd.Content, meta, upd.IsPublished,
	)
	updated, err := scanSection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("section %q: %w", section, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	return updated, nil
}

// DeleteSection removes a section by name.
func (db *DB) DeleteSection(ctx context.Context, section string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM website_content WHERE section = $1`, section)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("section %q: %w", section, apperrors.ErrNotFound)
	}
	return nil
}

func marshalMetadata(m map[string]any) (string, error) {
	if m == nil {
		m = map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(raw), nil
}
