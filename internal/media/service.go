// Package media validates uploads, stores their blobs and keeps the metadata
// rows in step with the bucket.
package media

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 10 << 20

// AllowedMIMETypes lists the accepted upload content types.
var AllowedMIMETypes = map[string]bool{
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Store is the metadata persistence the service needs.
type Store interface {
	CreateMedia(ctx context.Context, m *types.MediaFile) (*types.MediaFile, error)
	ListMedia(ctx context.Context, filter types.MediaFilter) ([]types.MediaFile, error)
	UpdateMedia(ctx context.Context, id uuid.UUID, upd types.MediaUpdate) (*types.MediaFile, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) (*types.MediaFile, error)
}

// Blobs is the object storage the service writes to.
type Blobs interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Upload describes one file submitted for storage.
type Upload struct {
	EntityType   string
	EntityID     string
	FileName     string
	ContentType  string
	Data         []byte
	MediaType    types.MediaType
	Description  string
	AltText      string
	IsCoverImage bool
	IsFeatured   bool
	UploadedBy   string
}

// Service coordinates blob storage and metadata for media files.
type Service struct {
	store    Store
	blobs    Blobs
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a media service. A non-positive maxBytes selects
// DefaultMaxBytes.
func NewService(store Store, blobs Blobs, maxBytes int64, logger *zap.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, blobs: blobs, maxBytes: maxBytes, now: time.Now, logger: logger.Named("media")}
}

// WithClock replaces the clock used to build storage keys.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upload validates u, stores the blob and records its metadata. When the
// metadata insert fails the blob is removed again.
func (s *Service) Upload(ctx context.Context, u Upload) (*types.MediaFile, error) {
	if err := s.check(u); err != nil {
		return nil, err
	}

	key := StorageKey(u.EntityType, u.EntityID, u.FileName, s.now())
	if err := s.blobs.Put(ctx, key, u.Data, u.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store media blob: %w", err)
	}

	mediaType := u.MediaType
	if mediaType == "" {
		mediaType = MediaTypeFor(u.ContentType)
	}

	created, err := s.store.CreateMedia(ctx, &types.MediaFile{
		EntityType:   u.EntityType,
		EntityID:     u.EntityID,
		FilePath:     key,
		FileName:     u.FileName,
		FileSize:     int64(len(u.Data)),
		MimeType:     u.ContentType,
		MediaType:    mediaType,
		Description:  u.Description,
		AltText:      u.AltText,
		IsCoverImage: u.IsCoverImage,
		IsFeatured:   u.IsFeatured,
		PublicURL:    s.blobs.PublicURL(key),
		UploadedBy:   u.UploadedBy,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned blob",
				zap.String("key", key), logging.SafeError(delErr))
		}
		return nil, err
	}

	s.logger.Info("Stored media file",
		zap.String("id", created.ID.String()),
		zap.String("key", key),
		zap.Int64("size", created.FileSize))
	return created, nil
}

func (s *Service) check(u Upload) error {
	var fields []apperrors.FieldError
	if len(u.Data) == 0 {
		fields = append(fields, apperrors.FieldError{Field: "file", Message: "is required"})
	}
	if strings.TrimSpace(u.EntityType) == "" {
		fields = append(fields, apperrors.FieldError{Field: "entity_type", Message: "is required"})
	}
	if strings.TrimSpace(u.EntityID) == "" {
		fields = append(fields, apperrors.FieldError{Field: "entity_id", Message: "is required"})
	}
	if int64(len(u.Data)) > s.maxBytes {
		fields = append(fields, apperrors.FieldError{
			Field:   "file",
			Message: fmt.Sprintf("exceeds the %d MB limit", s.maxBytes>>20),
		})
	}
	if len(u.Data) > 0 && !AllowedMIMETypes[strings.ToLower(u.ContentType)] {
		fields = append(fields, apperrors.FieldError{
			Field:   "file",
			Message: fmt.Sprintf("type %q is not allowed", u.ContentType),
		})
	}
	if u.MediaType != "" && u.MediaType != types.MediaTypeImage && u.MediaType != types.MediaTypeDocument {
		fields = append(fields, apperrors.FieldError{Field: "media_type", Message: "must be one of: image document"})
	}
	if len(fields) > 0 {
		return &apperrors.InvalidInputError{Fields: fields}
	}
	return nil
}

// List returns media rows matching filter.
func (s *Service) List(ctx context.Context, filter types.MediaFilter) ([]types.MediaFile, error) {
	return s.store.ListMedia(ctx, filter)
}

// Update edits the descriptive fields of a media file.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd types.MediaUpdate) (*types.MediaFile, error) {
	return s.store.UpdateMedia(ctx, id, upd)
}

// Delete removes the metadata row, then the blob. A blob that cannot be
// removed is logged and left behind.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.DeleteMedia(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, deleted.FilePath); err != nil {
		s.logger.Warn("Failed to remove media blob",
			zap.String("id", id.String()),
			zap.String("key", deleted.FilePath),
			logging.SafeError(err))
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// StorageKey builds entityType/entityID/<unixMillis>_<name>, where name keeps
// letters, digits, dots and dashes and replaces everything else with '_'.
func StorageKey(entityType, entityID, fileName string, at time.Time) string {
	name := unsafeNameChars.ReplaceAllString(path.Base(fileName), "_")
	return fmt.Sprintf("%s/%s/%d_%s", entityType, entityID, at.UnixMilli(), name)
}

// MediaTypeFor derives the media type from a MIME type.
func MediaTypeFor(contentType string) types.MediaType {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return types.MediaTypeImage
	}
	return types.MediaTypeDocument
}
