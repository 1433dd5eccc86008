package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-backoffice/internal/config"
	"github.com/jonathan/portfolio-backoffice/internal/server/middleware"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// AdminCredentials identify the single administrator.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	admin     AdminCredentials
	passwords *config.PasswordConfig
	jwt       *JWTService
	sessions  *SessionStore
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(admin AdminCredentials, passwords *config.PasswordConfig, jwtService *JWTService, sessions *SessionStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		admin:     admin,
		passwords: passwords,
		jwt:       jwtService,
		sessions:  sessions,
		logger:    logger,
	}
}

// authenticate checks the credentials. The password hash is always
// compared so a wrong email costs as much as a wrong password.
func (h *AuthHandler) authenticate(req *types.LoginRequest) error {
	passwordOK := h.passwords.VerifyPassword(req.Password, h.admin.PasswordHash)
	emailOK := strings.EqualFold(req.Email, h.admin.Email)
	if !passwordOK || !emailOK {
		return &ErrInvalidCredentials{}
	}
	return nil
}

// Login handles administrator login requests. On success it sets the
// session cookie and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.authenticate(&req); err != nil {
		h.logger.Warn("Rejected admin login", zap.String("remote_addr", r.RemoteAddr))
		writeError(w, h.logger, err)
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(h.admin.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.sessions.Start(w, r, h.admin.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Admin logged in")
	jsonResponse(w, h.logger, http.StatusOK, types.LoginResponse{
		Admin:     types.Admin{Email: h.admin.Email},
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Logout expires the session cookie. Bearer tokens remain valid until
// they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		writeError(w, h.logger, err)
		return
	}
	jsonResponse(w, h.logger, http.StatusOK, map[string]any{"success": true})
}

// Me returns the authenticated administrator.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.GetAdmin(r)
	if err != nil {
		jsonResponse(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	jsonResponse(w, h.logger, http.StatusOK, map[string]any{"admin": types.Admin{Email: admin}})
}
