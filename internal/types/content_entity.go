package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
)

// EntityType classifies a piece of public portfolio content.
type EntityType string

// Content entity types
const (
	EntityWork          EntityType = "work"
	EntityProject       EntityType = "project"
	EntityEducation     EntityType = "education"
	EntityCertification EntityType = "certification"
	EntityVolunteer     EntityType = "volunteer"
	EntityPublication   EntityType = "publication"
	EntityAward         EntityType = "award"
	EntityCourse        EntityType = "course"
	EntityOrganization  EntityType = "organization"
	EntitySkill         EntityType = "skill"
)

// EntityTypes lists every accepted content entity type.
var EntityTypes = []EntityType{
	EntityWork, EntityProject, EntityEducation, EntityCertification, EntityVolunteer,
	EntityPublication, EntityAward, EntityCourse, EntityOrganization, EntitySkill,
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ContentEntity is one item of public site content: a publication, an award,
// a course and so on. Type-specific details live in Metadata.
type ContentEntity struct {
	ID           uuid.UUID      `json:"id"`
	EntityType   EntityType     `json:"entity_type"`
	Title        string         `json:"title"`
	Subtitle     string         `json:"subtitle,omitempty"`
	Description  string         `json:"description,omitempty"`
	DateStart    string         `json:"date_start,omitempty"`
	DateEnd      string         `json:"date_end,omitempty"`
	IsCurrent    bool           `json:"is_current"`
	IsFeatured   bool           `json:"is_featured"`
	IsVisible    bool           `json:"is_visible"`
	DisplayOrder int            `json:"display_order"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ContentEntityInput carries the writable fields of a content entity.
type ContentEntityInput struct {
	EntityType   *EntityType    `json:"entity_type,omitempty"`
	Title        *string        `json:"title,omitempty"`
	Subtitle     *string        `json:"subtitle,omitempty"`
	Description  *string        `json:"description,omitempty"`
	DateStart    *string        `json:"date_start,omitempty"`
	DateEnd      *string        `json:"date_end,omitempty"`
	IsCurrent    *bool          `json:"is_current,omitempty"`
	IsFeatured   *bool          `json:"is_featured,omitempty"`
	IsVisible    *bool          `json:"is_visible,omitempty"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewContentEntity builds an entity from a create request. Entities are
// visible unless the request says otherwise. A zero DisplayOrder asks the
// store to append the entity after the others of its type.
func NewContentEntity(in ContentEntityInput) ContentEntity {
	e := ContentEntity{IsVisible: true, Metadata: map[string]any{}}
	e.Apply(in)
	return e
}

// Apply overlays the supplied fields of in onto e.
func (e *ContentEntity) Apply(in ContentEntityInput) {
	if in.EntityType != nil {
		e.EntityType = *in.EntityType
	}
	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Subtitle != nil {
		e.Subtitle = *in.Subtitle
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.DateStart != nil {
		e.DateStart = *in.DateStart
	}
	if in.DateEnd != nil {
		e.DateEnd = *in.DateEnd
	}
	if in.IsCurrent != nil {
		e.IsCurrent = *in.IsCurrent
	}
	if in.IsFeatured != nil {
		e.IsFeatured = *in.IsFeatured
	}
	if in.IsVisible != nil {
		e.IsVisible = *in.IsVisible
	}
	if in.DisplayOrder != nil {
		e.DisplayOrder = *in.DisplayOrder
	}
	if in.Metadata != nil {
		e.Metadata = in.Metadata
	}
}

// Validate checks the entity after defaults and partial updates.
func (e *ContentEntity) Validate() error {
	var fields []apperrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperrors.FieldError{Field: field, Message: msg})
	}

	if !e.EntityType.Valid() {
		names := make([]string, len(EntityTypes))
		for i, t := range EntityTypes {
			names[i] = string(t)
		}
		add("entity_type", "must be one of: "+strings.Join(names, ", "))
	}
	if strings.TrimSpace(e.Title) == "" {
		add("title", "is required")
	}
	if e.DisplayOrder < 0 {
		add("display_order", "must not be negative")
	}

	var start, end time.Time
	var err error
	if e.DateStart != "" {
		if start, err = time.Parse(DateLayout, e.DateStart); err != nil {
			add("date_start", "must be a YYYY-MM-DD date")
		}
	}
	if e.DateEnd != "" {
		if end, err = time.Parse(DateLayout, e.DateEnd); err != nil {
			add("date_end", "must be a YYYY-MM-DD date")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		add("date_end", fmt.Sprintf("must not be before date_start %s", e.DateStart))
	}

	if len(fields) > 0 {
		return &apperrors.InvalidInputError{Fields: fields}
	}
	return nil
}

// ContentEntityFilter narrows content entity listings. A zero Limit means
// the store default.
type ContentEntityFilter struct {
	EntityType   EntityType
	FeaturedOnly bool
	VisibleOnly  bool
	Limit        int
}
