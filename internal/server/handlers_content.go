package server

import (
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

var (
	botUserAgent = regexp.MustCompile(`(?i)bot|crawler|spider|scraper`)
	sectionName  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
)

// -----------------------------------------------------------------------------
// Profile and skills
// -----------------------------------------------------------------------------

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	info, err := s.deps.Store.GetPersonalInfo(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"profile": info})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var info types.PersonalInfo
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, s.logger, err)
		return
	}
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	if info.Name == "" {
		writeError(w, s.logger, apperrors.NewInvalidInput("name", "is required"))
		return
	}
	if err := s.validate.Struct(info); err != nil {
		writeError(w, s.logger, apperrors.FromValidator(err))
		return
	}

	saved, err := s.deps.Store.UpsertPersonalInfo(r.Context(), &info)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"profile": saved})
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.deps.Store.ListSkills(r.Context(), false)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"skills": skills})
}

func (s *Server) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var skill types.Skill
	if err := decodeJSON(r, &skill); err != nil {
		writeError(w, s.logger, err)
		return
	}
	skill.Name = strings.TrimSpace(skill.Name)
	if err := s.validate.Struct(skill); err != nil {
		writeError(w, s.logger, apperrors.FromValidator(err))
		return
	}
	if skill.Category == "" {
		skill.Category = types.DefaultSkillCategory
	}

	created, err := s.deps.Store.CreateSkill(r.Context(), &skill)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusCreated, map[string]any{"skill": created})
}

func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Store.DeleteSkill(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"message": "Skill deleted"})
}

// -----------------------------------------------------------------------------
// Website sections
// -----------------------------------------------------------------------------

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.deps.Store.ListSections(r.Context(), types.SectionFilter{
		Section: r.URL.Query().Get("section"),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"content": sections})
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var section types.WebsiteSection
	if err := decodeJSON(r, &section); err != nil {
		writeError(w, s.logger, err)
		return
	}
	section.Section = strings.TrimSpace(section.Section)
	if !sectionName.MatchString(section.Section) {
		writeError(w, s.logger, apperrors.NewInvalidInput("section", "must be a lowercase name of letters, digits, '-' or '_'"))
		return
	}

	created, err := s.deps.Store.CreateSection(r.Context(), &section)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusCreated, map[string]any{"content": created})
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var upd types.SectionUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, s.logger, err)
		return
	}
	updated, err := s.deps.Store.UpdateSection(r.Context(), r.PathValue("section"), upd)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"content": updated})
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteSection(r.Context(), r.PathValue("section")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.deps.Portfolio.Invalidate(r.Context())
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"message": "Content deleted successfully"})
}

// handleRebuild drops the cached snapshot and builds a fresh one so the
// next public read is served from it.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Portfolio.Rebuild(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if problems := snap.Problems(); len(problems) > 0 {
		s.logger.Warn("Portfolio snapshot incomplete", zap.Strings("problems", problems))
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Portfolio data rebuilt",
		"timestamp": snap.LastUpdated.UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------
// Contact
// -----------------------------------------------------------------------------

func (s *Server) handleListContact(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query(), "limit", 0, 200)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	submissions, err := s.deps.Store.ListContactSubmissions(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]any{"submissions": submissions})
}

// -----------------------------------------------------------------------------
// Public site
// -----------------------------------------------------------------------------

func (s *Server) handlePublicPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Portfolio.Get(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	jsonResponse(w, s.logger, http.StatusOK, snap)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	userAgent := r.UserAgent()
	if botUserAgent.MatchString(userAgent) {
		s.logger.Info("Rejected automated contact submission", zap.String("user_agent", userAgent))
		writeError(w, s.logger, &ErrRejected{})
		return
	}

	var req types.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, s.logger, err)
		return
	}

	saved, err := s.deps.Store.CreateContactSubmission(r.Context(), &types.ContactSubmission{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: contactIP(r),
		UserAgent: userAgent,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.logger.Info("Contact submission stored", zap.String("id", saved.ID.String()))
	jsonResponse(w, s.logger, http.StatusCreated, map[string]any{
		"success":      true,
		"message":      "Thank you for your message! I'll get back to you soon.",
		"submissionId": saved.ID,
	})
}

// contactIP is the address recorded with a contact submission. It is
// informational only, so forwarding headers are honoured here.
func contactIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return "unknown"
}
