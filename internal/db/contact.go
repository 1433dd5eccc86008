package db

import (
	"context"
	"fmt"

	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// CreateContactSubmission stores a contact-form message.
func (db *DB) CreateContactSubmission(ctx context.Context, c *types.ContactSubmission) (*types.ContactSubmission, error) {
	saved := *c
	err := db.pool.QueryRow(ctx,
		`INSERT INTO contact_submissions (name, email, subject, message, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		c.Name, c.Email, c.Subject, c.Message, c.IPAddress, c.UserAgent,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store contact submission: %w", err)
	}
	return &saved, nil
}

// ListContactSubmissions returns the most recent submissions first.
func (db *DB) ListContactSubmissions(ctx context.Context, limit int) ([]types.ContactSubmission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, email, subject, message, ip_address, user_agent, created_at
		 FROM contact_submissions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	defer rows.Close()

	out := make([]types.ContactSubmission, 0)
	for rows.Next() {
		var c types.ContactSubmission
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.IPAddress, &c.UserAgent, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact submission: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
