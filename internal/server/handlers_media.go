package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/media"
	"github.com/jonathan/portfolio-backoffice/internal/server/middleware"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// multipartOverhead is the allowance for form fields and part headers on
// top of the file size limit.
const multipartOverhead = 1 << 20

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	maxUpload := s.maxUpload
	if maxUpload <= 0 {
		maxUpload = media.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, s.logger, apperrors.NewInvalidInput("file", fmt.Sprintf("exceeds the %d MB limit", maxUpload>>20)))
			return
		}
		writeError(w, s.logger, &ErrInvalidBody{Cause: err})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	upload := media.Upload{
		EntityType:   r.FormValue("entity_type"),
		EntityID:     r.FormValue("entity_id"),
		MediaType:    types.MediaType(r.FormValue("media_type")),
		Description:  r.FormValue("description"),
		AltText:      r.FormValue("alt_text"),
		IsCoverImage: formBool(r.FormValue("is_cover_image")),
		IsFeatured:   formBool(r.FormValue("is_featured")),
	}
	if admin, err := middleware.GetAdmin(r); err == nil {
		upload.UploadedBy = admin
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// reported by the service along with any other missing fields
	case err != nil:
		writeError(w, s.logger, &ErrInvalidBody{Cause: err})
		return
	default:
		defer file.Close()
		// One byte past the limit is enough for the size check to fail.
		data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
		if err != nil {
			writeError(w, s.logger, &ErrInvalidBody{Cause: err})
			return
		}
		upload.Data = data
		upload.FileName = header.Filename
		upload.ContentType = header.Header.Get("Content-Type")
		if upload.ContentType == "" {
			upload.ContentType = http.DetectContentType(data)
		}
	}

	created, err := s.deps.Media.Upload(r.Context(), upload)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusCreated, map[string]any{
		"success": true,
		"data":    created,
		"message": "File uploaded successfully",
	})
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.MediaFilter{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		MediaType:  types.MediaType(q.Get("media_type")),
	}
	if raw := q.Get("featured"); raw != "" {
		featured := formBool(raw)
		filter.Featured = &featured
	}
	var err error
	if filter.Limit, err = queryInt(q, "limit", 0, 500); err != nil {
		writeError(w, s.logger, err)
		return
	}

	files, err := s.deps.Media.List(r.Context(), filter)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"success": true,
		"data":    files,
		"count":   len(files),
	})
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var upd types.MediaUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, s.logger, err)
		return
	}
	updated, err := s.deps.Media.Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"success": true, "data": updated})
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Media.Delete(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"success": true, "message": "File deleted successfully"})
}

// formBool reads a checkbox-style form value. Unparseable values are false.
func formBool(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}
