package types

import (
	"time"

	"github.com/google/uuid"
)

// PersonalInfo is the singleton profile shown on the public site.
type PersonalInfo struct {
	Name            string            `json:"name"`
	Title           string            `json:"title,omitempty"`
	Bio             string            `json:"bio,omitempty"`
	Location        string            `json:"location,omitempty"`
	Email           string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string            `json:"phone,omitempty"`
	ProfileImageURL string            `json:"profile_image_url,omitempty" validate:"omitempty,url"`
	SocialLinks     map[string]string `json:"social_links,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// DefaultSkillCategory is used for skills stored without a category.
const DefaultSkillCategory = "technical"

// Skill is one entry of the public skills listing.
type Skill struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name" validate:"required"`
	Category         string    `json:"category"`
	ProficiencyLevel int       `json:"proficiency_level" validate:"gte=0,lte=5"`
	IsVisible        bool      `json:"is_visible"`
	DisplayOrder     int       `json:"display_order"`
	CreatedAt        time.Time `json:"created_at"`
}

// WebsiteSection is a named, independently published block of site copy.
type WebsiteSection struct {
	ID          uuid.UUID      `json:"id"`
	Section     string         `json:"section"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsPublished bool           `json:"is_published"`
	LastUpdated time.Time      `json:"last_updated"`
}

// SectionFilter narrows website-section listings.
type SectionFilter struct {
	Section       string
	PublishedOnly bool
}

// MediaType distinguishes images from documents.
type MediaType string

// Media types
const (
	MediaTypeImage    MediaType = "image"
	MediaTypeDocument MediaType = "document"
)

// MediaFile is the metadata row for one uploaded blob.
type MediaFile struct {
	ID           uuid.UUID `json:"id"`
	EntityType   string    `json:"entity_type"`
	EntityID     string    `json:"entity_id"`
	FilePath     string    `json:"file_path"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	MediaType    MediaType `json:"media_type"`
	Description  string    `json:"description,omitempty"`
	AltText      string    `json:"alt_text,omitempty"`
	IsCoverImage bool      `json:"is_cover_image"`
	IsFeatured   bool      `json:"is_featured"`
	PublicURL    string    `json:"public_url"`
	UploadedBy   string    `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MediaFilter narrows media listings.
type MediaFilter struct {
	EntityType string
	EntityID   string
	MediaType  MediaType
	Featured   *bool
	Limit      int
}

// MediaUpdate carries the editable descriptive fields of a media file.
type MediaUpdate struct {
	Description  *string `json:"description,omitempty"`
	AltText      *string `json:"alt_text,omitempty"`
	IsCoverImage *bool   `json:"is_cover_image,omitempty"`
	IsFeatured   *bool   `json:"is_featured,omitempty"`
}

// ContactSubmission is a message left through the public contact form.
type ContactSubmission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SectionUpdate carries the editable fields of a website section.
type SectionUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Content     *string        `json:"content,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsPublished *bool          `json:"is_published,omitempty"`
}
