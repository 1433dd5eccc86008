package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

const patternColumns = `id, job_analysis, tailored_content, target_company, target_role,
	success_rating, user_feedback, was_hired, interviews_received, feedback_at, created_at`

// PatternArchive stores tailoring patterns in the ai_patterns table.
type PatternArchive struct {
	db *DB
}

// Patterns returns the pattern archive backed by db.
func (db *DB) Patterns() *PatternArchive {
	return &PatternArchive{db: db}
}

func scanPattern(row pgx.Row) (*types.PatternRecord, error) {
	var (
		p            types.PatternRecord
		analysisRaw  []byte
		contentRaw   []byte
		rating       *int
		userFeedback *string
		wasHired     *bool
		interviews   *int
		feedbackAt   *time.Time
	)
	if err := row.Scan(&p.ID, &analysisRaw, &contentRaw, &p.TargetCompany, &p.TargetRole,
		&rating, &userFeedback, &wasHired, &interviews, &feedbackAt, &p.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(analysisRaw, &p.JobAnalysis); err != nil {
		return nil, fmt.Errorf("failed to decode job analysis of pattern %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(contentRaw, &p.TailoredContent); err != nil {
		return nil, fmt.Errorf("failed to decode tailored content of pattern %s: %w", p.ID, err)
	}

	if feedbackAt != nil {
		fb := &types.Feedback{
			WasHired:           wasHired,
			InterviewsReceived: interviews,
			FeedbackAt:         feedbackAt,
		}
		if rating != nil {
			fb.SuccessRating = *rating
		}
		if userFeedback != nil {
			fb.UserFeedback = *userFeedback
		}
		p.Feedback = fb
	}
	return &p, nil
}

// Append inserts a pattern in a single statement.
func (a *PatternArchive) Append(ctx context.Context, p types.NewPattern) (uuid.UUID, error) {
	analysis, err := json.Marshal(p.JobAnalysis)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job analysis: %w", err)
	}
	content, err := json.Marshal(p.TailoredContent)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal tailored content: %w", err)
	}

	var id uuid.UUID
	err = a.db.pool.QueryRow(ctx,
		`INSERT INTO ai_patterns (job_analysis, tailored_content, target_company, target_role)
		 VALUES ($1::jsonb, $2::jsonb, $3, $4)
		 RETURNING id`,
		string(analysis), string(content), p.TargetCompany, p.TargetRole,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to append pattern: %w", err)
	}
	return id, nil
}

// RecordFeedback sets the feedback columns of a pattern that has none yet.
func (a *PatternArchive) RecordFeedback(ctx context.Context, id uuid.UUID, fb types.Feedback) error {
	tag, err := a.db.pool.Exec(ctx,
		`UPDATE ai_patterns
		 SET success_rating = $2, user_feedback = $3, was_hired = $4, interviews_received = $5, feedback_at = NOW()
		 WHERE id = $1 AND feedback_at IS NULL`,
		id, fb.SuccessRating, fb.UserFeedback, fb.WasHired, fb.InterviewsReceived,
	)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := a.db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ai_patterns WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check pattern: %w", err)
	}
	if !exists {
		return fmt.Errorf("pattern %s: %w", id, apperrors.ErrNotFound)
	}
	return fmt.Errorf("pattern %s already has feedback: %w", id, apperrors.ErrConflict)
}

// Query lists patterns matching filter, newest first.
func (a *PatternArchive) Query(ctx context.Context, filter types.PatternFilter) ([]types.PatternRecord, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + patternColumns + ` FROM ai_patterns WHERE 1=1`)
	var args []any

	if filter.Company != "" {
		args = append(args, "%"+escapeLike(filter.Company)+"%")
		fmt.Fprintf(&sb, " AND target_company ILIKE $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, "%"+escapeLike(filter.Role)+"%")
		fmt.Fprintf(&sb, " AND target_role ILIKE $%d", len(args))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		fmt.Fprintf(&sb, " AND success_rating >= $%d", len(args))
	}
	args = append(args, filter.EffectiveLimit())
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id LIMIT $%d", len(args))

	rows, err := a.db.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	out := make([]types.PatternRecord, 0)
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	return out, nil
}

// Get returns one pattern by ID.
func (a *PatternArchive) Get(ctx context.Context, id uuid.UUID) (*types.PatternRecord, error) {
	row := a.db.pool.QueryRow(ctx, `SELECT `+patternColumns+` FROM ai_patterns WHERE id = $1`, id)
	p, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pattern %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}
	return p, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
