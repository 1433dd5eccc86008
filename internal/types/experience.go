// Package types provides type definitions for structured data used throughout the portfolio back-office.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Category classifies an experience record.
type Category string

// Experience categories
const (
	CategoryWork            Category = "work"
	CategoryEducation       Category = "education"
	CategoryProject         Category = "project"
	CategoryCertification   Category = "certification"
	CategoryVolunteer       Category = "volunteer"
	CategoryInternship      Category = "internship"
	CategoryFreelance       Category = "freelance"
	CategoryLeadership      Category = "leadership"
	CategoryAcademic        Category = "academic"
	CategoryPersonal        Category = "personal"
	CategoryEntrepreneurial Category = "entrepreneurial"
)

// Categories lists every accepted experience category.
var Categories = []Category{
	CategoryWork, CategoryEducation, CategoryProject, CategoryCertification,
	CategoryVolunteer, CategoryInternship, CategoryFreelance, CategoryLeadership,
	CategoryAcademic, CategoryPersonal, CategoryEntrepreneurial,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Visibility controls where an experience record may appear.
type Visibility string

// Visibility values
const (
	VisibilityPublic     Visibility = "public"
	VisibilityPrivate    Visibility = "private"
	VisibilityResumeOnly Visibility = "resume_only"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityResumeOnly:
		return true
	}
	return false
}

// ResumeEligible reports whether records with this visibility may be sent
// to the tailoring pipeline.
func (v Visibility) ResumeEligible() bool {
	return v == VisibilityPublic || v == VisibilityResumeOnly
}

// Resume priority bounds and default.
const (
	MinResumePriority     = 0
	MaxResumePriority     = 10
	DefaultResumePriority = 5
)

// DateLayout is the calendar-date format used for experience start and end dates.
const DateLayout = "2006-01-02"

// ExperienceRecord is one career, education or project entry.
type ExperienceRecord struct {
	ID             uuid.UUID  `json:"id"`
	Category       Category   `json:"category"`
	Title          string     `json:"title"`
	Organization   string     `json:"organization,omitempty"`
	Location       string     `json:"location,omitempty"`
	StartDate      string     `json:"start_date,omitempty"`
	EndDate        string     `json:"end_date,omitempty"`
	IsCurrent      bool       `json:"is_current"`
	Description    string     `json:"description,omitempty"`
	Skills         []string   `json:"skills"`
	Technologies   []string   `json:"technologies"`
	Achievements   []string   `json:"achievements"`
	ResumePriority int        `json:"resume_priority"`
	Visibility     Visibility `json:"visibility"`
	IsFeatured     bool       `json:"is_featured"`
	DisplayOrder   int        `json:"display_order"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ExperienceInput carries the writable fields of an experience record.
// Pointer fields distinguish "not supplied" from zero values on partial updates.
type ExperienceInput struct {
	Category       *Category   `json:"category,omitempty"`
	Title          *string     `json:"title,omitempty"`
	Organization   *string     `json:"organization,omitempty"`
	Location       *string     `json:"location,omitempty"`
	StartDate      *string     `json:"start_date,omitempty"`
	EndDate        *string     `json:"end_date,omitempty"`
	IsCurrent      *bool       `json:"is_current,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Skills         []string    `json:"skills,omitempty"`
	Technologies   []string    `json:"technologies,omitempty"`
	Achievements   []string    `json:"achievements,omitempty"`
	ResumePriority *int        `json:"resume_priority,omitempty"`
	Visibility     *Visibility `json:"visibility,omitempty"`
	IsFeatured     *bool       `json:"is_featured,omitempty"`
	DisplayOrder   *int        `json:"display_order,omitempty"`
}

// NewExperienceRecord builds a record from a create request, applying defaults
// for unset fields.
func NewExperienceRecord(in ExperienceInput) ExperienceRecord {
	rec := ExperienceRecord{
		Category:       CategoryWork,
		ResumePriority: DefaultResumePriority,
		Visibility:     VisibilityPublic,
		Skills:         []string{},
		Technologies:   []string{},
		Achievements:   []string{},
	}
	rec.Apply(in)
	return rec
}

// Apply overlays the supplied fields of in onto r.
func (r *ExperienceRecord) Apply(in ExperienceInput) {
	if in.Category != nil {
		r.Category = *in.Category
	}
	if in.Title != nil {
		r.Title = *in.Title
	}
	if in.Organization != nil {
		r.Organization = *in.Organization
	}
	if in.Location != nil {
		r.Location = *in.Location
	}
	if in.StartDate != nil {
		r.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		r.EndDate = *in.EndDate
	}
	if in.IsCurrent != nil {
		r.IsCurrent = *in.IsCurrent
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Skills != nil {
		r.Skills = in.Skills
	}
	if in.Technologies != nil {
		r.Technologies = in.Technologies
	}
	if in.Achievements != nil {
		r.Achievements = in.Achievements
	}
	if in.ResumePriority != nil {
		r.ResumePriority = *in.ResumePriority
	}
	if in.Visibility != nil {
		r.Visibility = *in.Visibility
	}
	if in.IsFeatured != nil {
		r.IsFeatured = *in.IsFeatured
	}
	if in.DisplayOrder != nil {
		r.DisplayOrder = *in.DisplayOrder
	}
}

// ExperienceFilter narrows experience listings.
type ExperienceFilter struct {
	Category   Category
	Visibility Visibility
	Limit      int
	Offset     int
}

// ResumeEligible returns the records whose visibility admits them to a
// résumé, ordered by priority (highest first) and then by start date, most
// recent first. The input is not modified.
func ResumeEligible(records []ExperienceRecord) []ExperienceRecord {
	out := make([]ExperienceRecord, 0, len(records))
	for _, r := range records {
		if r.Visibility.ResumeEligible() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ResumePriority != out[j].ResumePriority {
			return out[i].ResumePriority > out[j].ResumePriority
		}
		return out[i].StartDate > out[j].StartDate
	})
	return out
}
