package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonathan/portfolio-backoffice/internal/schemas"
	"github.com/jonathan/portfolio-backoffice/internal/types"
	embedded "github.com/jonathan/portfolio-backoffice/schemas"
)

// maxExperienceListLimit mirrors the store's page cap.
const maxExperienceListLimit = 500

func (s *Server) handleListExperiences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.ExperienceFilter{
		Category:   types.Category(q.Get("category")),
		Visibility: types.Visibility(q.Get("visibility")),
	}
	var err error
	if filter.Limit, err = queryInt(q, "limit", 0, maxExperienceListLimit); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if filter.Offset, err = queryInt(q, "offset", 0, 1<<30); err != nil {
		writeError(w, s.logger, err)
		return
	}

	experiences, err := s.deps.Store.ListExperiences(r.Context(), filter)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"experiences": experiences,
		"total":       len(experiences),
	})
}

func (s *Server) handleGetExperience(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	exp, err := s.deps.Store.GetExperience(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"experience": exp})
}

// handleCreateExperience checks the body against the experience schema,
// applies defaults, then stores the record.
func (s *Server) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		writeError(w, s.logger, &ErrInvalidBody{Cause: err})
		return
	}
	in, err := schemas.Decode[types.ExperienceInput](embedded.ExperienceRecord, raw)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	rec := types.NewExperienceRecord(*in)
	if err := rec.Validate(); err != nil {
		writeError(w, s.logger, err)
		return
	}

	created, err := s.deps.Store.CreateExperience(r.Context(), &rec)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusCreated, map[string]any{"experience": created})
}

// handleUpdateExperience applies a partial update. Only supplied fields
// change; the merged record must still be valid.
func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var in types.ExperienceInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&in); err != nil {
		writeError(w, s.logger, &ErrInvalidBody{Cause: err})
		return
	}

	rec, err := s.deps.Store.GetExperience(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	rec.Apply(in)
	if err := rec.Validate(); err != nil {
		writeError(w, s.logger, err)
		return
	}

	updated, err := s.deps.Store.UpdateExperience(r.Context(), rec)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"experience": updated})
}

func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Store.DeleteExperience(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"message": "Experience deleted"})
}
