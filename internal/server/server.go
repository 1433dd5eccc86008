package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/config"
	"github.com/jonathan/portfolio-backoffice/internal/logging"
	"github.com/jonathan/portfolio-backoffice/internal/media"
	"github.com/jonathan/portfolio-backoffice/internal/portfolio"
	"github.com/jonathan/portfolio-backoffice/internal/server/middleware"
	"github.com/jonathan/portfolio-backoffice/internal/server/ratelimit"
	"github.com/jonathan/portfolio-backoffice/internal/tailoring"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Store is the record store the handlers read and write.
type Store interface {
	Ping(ctx context.Context) error

	CreateExperience(ctx context.Context, rec *types.ExperienceRecord) (*types.ExperienceRecord, error)
	GetExperience(ctx context.Context, id uuid.UUID) (*types.ExperienceRecord, error)
	UpdateExperience(ctx context.Context, rec *types.ExperienceRecord) (*types.ExperienceRecord, error)
	DeleteExperience(ctx context.Context, id uuid.UUID) error
	ListExperiences(ctx context.Context, filter types.ExperienceFilter) ([]types.ExperienceRecord, error)

	CreateContentEntity(ctx context.Context, e *types.ContentEntity) (*types.ContentEntity, error)
	GetContentEntity(ctx context.Context, id uuid.UUID) (*types.ContentEntity, error)
	UpdateContentEntity(ctx context.Context, e *types.ContentEntity) (*types.ContentEntity, error)
	DeleteContentEntity(ctx context.Context, id uuid.UUID) (*types.ContentEntity, error)
	ListContentEntities(ctx context.Context, filter types.ContentEntityFilter) ([]types.ContentEntity, error)

	GetPersonalInfo(ctx context.Context) (*types.PersonalInfo, error)
	UpsertPersonalInfo(ctx context.Context, p *types.PersonalInfo) (*types.PersonalInfo, error)

	ListSkills(ctx context.Context, visibleOnly bool) ([]types.Skill, error)
	CreateSkill(ctx context.Context, s *types.Skill) (*types.Skill, error)
	DeleteSkill(ctx context.Context, id uuid.UUID) error

	ListSections(ctx context.Context, filter types.SectionFilter) ([]types.WebsiteSection, error)
	CreateSection(ctx context.Context, s *types.WebsiteSection) (*types.WebsiteSection, error)
	UpdateSection(ctx context.Context, section string, upd types.SectionUpdate) (*types.WebsiteSection, error)
	DeleteSection(ctx context.Context, section string) error

	CreateContactSubmission(ctx context.Context, c *types.ContactSubmission) (*types.ContactSubmission, error)
	ListContactSubmissions(ctx context.Context, limit int) ([]types.ContactSubmission, error)
}

// Deps are the components the server routes requests to.
type Deps struct {
	Store     Store
	Tailoring *tailoring.Service
	Media     *media.Service
	Portfolio *portfolio.Service
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	deps        Deps
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	sessions    *SessionStore
	authHandler *AuthHandler
	validate    *validator.Validate
	origins     []string
	maxUpload   int64
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Store == nil || deps.Tailoring == nil || deps.Media == nil || deps.Portfolio == nil {
		return nil, fmt.Errorf("server requires a store, tailoring, media and portfolio service")
	}

	passwordConfig, err := cfg.Auth.Password()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := cfg.Auth.JWT()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	if cfg.Auth.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET cannot be empty")
	}

	s := &Server{
		deps:        deps,
		rateLimiter: ratelimit.NewLimiter(ratelimit.FromSettings(cfg.RateLimit)),
		jwtService:  NewJWTService(jwtConfig),
		sessions:    NewSessionStore(cfg.Auth.SessionSecret, int(jwtConfig.TTL().Seconds()), cfg.Auth.SecureCookies),
		validate:    apperrors.NewValidator(),
		origins:     cfg.Server.AllowedOrigins,
		maxUpload:   cfg.Storage.MaxUploadBytes,
		logger:      logger.Named("http"),
	}
	s.authHandler = NewAuthHandler(
		AdminCredentials{Email: cfg.Auth.AdminEmail, PasswordHash: cfg.Auth.AdminPasswordHash},
		passwordConfig, s.jwtService, s.sessions, s.logger,
	)

	s.handler = s.withCORS(s.withLogging(s.withRateLimit(s.routes())))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // covers two completion calls
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(s.jwtService.AsTokenValidator(), s.sessions)
	protect := func(h http.HandlerFunc) http.Handler { return admin(h) }

	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)
	mux.Handle("GET /api/auth/me", protect(s.authHandler.Me))

	// Tailoring pipeline and pattern archive
	mux.Handle("POST /api/admin/ai/generate-resume", protect(s.handleGenerateResume))
	mux.Handle("GET /api/admin/ai/patterns", protect(s.handleListPatterns))
	mux.Handle("GET /api/admin/ai/patterns/{id}", protect(s.handleGetPattern))
	mux.Handle("PUT /api/admin/ai/feedback", protect(s.handleRecordFeedback))

	// Experiences
	mux.Handle("GET /api/admin/experiences", protect(s.handleListExperiences))
	mux.Handle("POST /api/admin/experiences", protect(s.handleCreateExperience))
	mux.Handle("GET /api/admin/experiences/{id}", protect(s.handleGetExperience))
	mux.Handle("PUT /api/admin/experiences/{id}", protect(s.handleUpdateExperience))
	mux.Handle("DELETE /api/admin/experiences/{id}", protect(s.handleDeleteExperience))

	// Content entities
	mux.Handle("GET /api/admin/content-entities", protect(s.handleListContentEntities))
	mux.Handle("POST /api/admin/content-entities", protect(s.handleCreateContentEntity))
	mux.Handle("GET /api/admin/content-entities/{id}", protect(s.handleGetContentEntity))
	mux.Handle("PUT /api/admin/content-entities/{id}", protect(s.handleUpdateContentEntity))
	mux.Handle("DELETE /api/admin/content-entities/{id}", protect(s.handleDeleteContentEntity))

	// Media
	mux.Handle("GET /api/admin/media", protect(s.handleListMedia))
	mux.Handle("POST /api/admin/media", protect(s.handleUploadMedia))
	mux.Handle("PUT /api/admin/media/{id}", protect(s.handleUpdateMedia))
	mux.Handle("DELETE /api/admin/media/{id}", protect(s.handleDeleteMedia))

	// Website content
	mux.Handle("GET /api/admin/website", protect(s.handleListSections))
	mux.Handle("POST /api/admin/website", protect(s.handleCreateSection))
	mux.Handle("POST /api/admin/website/rebuild", protect(s.handleRebuild))
	mux.Handle("PUT /api/admin/website/{section}", protect(s.handleUpdateSection))
	mux.Handle("DELETE /api/admin/website/{section}", protect(s.handleDeleteSection))

	// Profile and skills
	mux.Handle("GET /api/admin/profile", protect(s.handleGetProfile))
	mux.Handle("PUT /api/admin/profile", protect(s.handleUpdateProfile))
	mux.Handle("GET /api/admin/skills", protect(s.handleListSkills))
	mux.Handle("POST /api/admin/skills", protect(s.handleCreateSkill))
	mux.Handle("DELETE /api/admin/skills/{id}", protect(s.handleDeleteSkill))
	mux.Handle("GET /api/admin/contact", protect(s.handleListContact))

	// Public site
	mux.HandleFunc("GET /api/public/portfolio", s.handlePublicPortfolio)
	mux.HandleFunc("POST /api/public/contact", s.handleContact)

	return mux
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.logger.Info("Server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers. A "*" entry admits every origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed := s.allowOrigin(origin); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, allowed := range s.origins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth reports liveness and whether the store answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		s.logger.Warn("Health check: store unreachable", logging.SafeError(err))
		jsonResponse(w, s.logger, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	jsonResponse(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID extracts the client identifier from the request.
// Only RemoteAddr is trusted; forwarding headers are client-controlled.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("Rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining),
		zap.Time("reset", info.ResetTime))

	jsonResponse(w, s.logger, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Error encoding JSON response", zap.Error(err))
	}
}

// writeError maps err onto a status and a client-safe body. Validation
// errors carry per-field details; everything else is a generic message.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := HTTPStatus(err)
	body := map[string]any{"error": publicMessage(status, err)}
	if details := errorDetails(err); details != nil {
		body["details"] = details
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed", zap.Int("status", status), logging.SafeError(err))
	case status == http.StatusBadRequest:
		logger.Debug("Request rejected", logging.SafeError(err))
	}
	jsonResponse(w, logger, status, body)
}

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v); err != nil {
		return &ErrInvalidBody{Cause: err}
	}
	return nil
}

// pathUUID parses the named path value as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperrors.NewInvalidInput(name, "must be a UUID")
	}
	return id, nil
}
