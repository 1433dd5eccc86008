package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/tailoring"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// generateResponse is the body of a successful tailoring.
type generateResponse struct {
	Success bool `json:"success"`
	*tailoring.Result
}

func (s *Server) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	var req tailoring.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	result, err := s.deps.Tailoring.Tailor(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if result.PatternID != nil {
		s.logger.Info("Resume tailored", zap.String("pattern_id", result.PatternID.String()))
	}
	jsonResponse(w, s.logger, http.StatusOK, generateResponse{Success: true, Result: result})
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.PatternFilter{
		Company: q.Get("company"),
		Role:    q.Get("role"),
	}
	var err error
	if filter.MinRating, err = queryInt(q, "minRating", 0, 10); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if filter.Limit, err = queryInt(q, "limit", 0, types.MaxPatternQueryLimit); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if filter.Limit == 0 {
		filter.Limit = types.DefaultPatternQueryLimit
	}

	patterns, err := s.deps.Tailoring.Patterns(r.Context(), filter)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"patterns": patterns})
}

func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	pattern, err := s.deps.Tailoring.Pattern(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"pattern": pattern})
}

func (s *Server) handleRecordFeedback(w http.ResponseWriter, r *http.Request) {
	var req tailoring.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Tailoring.RecordFeedback(r.Context(), req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"success": true,
		"message": "Feedback recorded",
	})
}

// queryInt parses an optional integer query parameter within [lo, hi].
// An absent parameter yields zero.
func queryInt(q url.Values, name string, lo, hi int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, apperrors.NewInvalidInput(name, fmt.Sprintf("must be an integer between %d and %d", lo, hi))
	}
	return n, nil
}
