package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/schemas"
	"github.com/jonathan/portfolio-backoffice/internal/types"
	embedded "github.com/jonathan/portfolio-backoffice/schemas"
)

// maxContentEntityListLimit mirrors the store's page cap.
const maxContentEntityListLimit = 500

// handleListContentEntities lists content entities in display order. Hidden
// entities are left out unless visible=false is passed.
func (s *Server) handleListContentEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.ContentEntityFilter{
		EntityType:   types.EntityType(q.Get("type")),
		FeaturedOnly: q.Get("featured") == "true",
		VisibleOnly:  q.Get("visible") != "false",
	}
	if filter.EntityType != "" && !filter.EntityType.Valid() {
		writeError(w, s.logger, apperrors.NewInvalidInput("type", "unknown content entity type "+string(filter.EntityType)))
		return
	}
	var err error
	if filter.Limit, err = queryInt(q, "limit", 0, maxContentEntityListLimit); err != nil {
		writeError(w, s.logger, err)
		return
	}

	entities, err := s.deps.Store.ListContentEntities(r.Context(), filter)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"data":    entities,
		"count":   len(entities),
		"success": true,
	})
}

func (s *Server) handleGetContentEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	entity, err := s.deps.Store.GetContentEntity(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"data": entity, "success": true})
}

func (s *Server) handleCreateContentEntity(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		writeError(w, s.logger, &ErrInvalidBody{Cause: err})
		return
	}
	in, err := schemas.Decode[types.ContentEntityInput](embedded.ContentEntity, raw)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	entity := types.NewContentEntity(*in)
	if err := entity.Validate(); err != nil {
		writeError(w, s.logger, err)
		return
	}

	created, err := s.deps.Store.CreateContentEntity(r.Context(), &entity)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusCreated, map[string]any{
		"data":    created,
		"success": true,
		"message": "Content entity created successfully",
	})
}

// handleUpdateContentEntity merges the supplied fields into the stored entity.
func (s *Server) handleUpdateContentEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var in types.ContentEntityInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&in); err != nil {
		writeError(w, s.logger, &ErrInvalidBody{Cause: err})
		return
	}

	entity, err := s.deps.Store.GetContentEntity(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	entity.Apply(in)
	if err := entity.Validate(); err != nil {
		writeError(w, s.logger, err)
		return
	}

	updated, err := s.deps.Store.UpdateContentEntity(r.Context(), entity)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"data":    updated,
		"success": true,
		"message": "Content entity updated successfully",
	})
}

func (s *Server) handleDeleteContentEntity(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	deleted, err := s.deps.Store.DeleteContentEntity(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"data":    deleted,
		"success": true,
		"message": "Content entity deleted successfully",
	})
}
