package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
)

// Validate checks the stored shape of an experience record after defaults
// and partial updates have been applied.
func (r *ExperienceRecord) Validate() error {
	var fields []apperrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperrors.FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(r.Title) == "" {
		add("title", "title is required")
	}
	if !r.Category.Valid() {
		add("category", fmt.Sprintf("unknown category %q", r.Category))
	}
	if !r.Visibility.Valid() {
		add("visibility", fmt.Sprintf("unknown visibility %q", r.Visibility))
	}
	if r.ResumePriority < MinResumePriority || r.ResumePriority > MaxResumePriority {
		add("resume_priority", fmt.Sprintf("must be between %d and %d", MinResumePriority, MaxResumePriority))
	}

	var start, end time.Time
	var err error
	if r.StartDate != "" {
		if start, err = time.Parse(DateLayout, r.StartDate); err != nil {
			add("start_date", "must be a YYYY-MM-DD date")
		}
	}
	if r.EndDate != "" {
		if end, err = time.Parse(DateLayout, r.EndDate); err != nil {
			add("end_date", "must be a YYYY-MM-DD date")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		add("end_date", "must not be before start_date")
	}

	if len(fields) > 0 {
		return &apperrors.InvalidInputError{Fields: fields}
	}
	return nil
}
