package server

import (
	"crypto/sha256"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the admin session cookie.
const SessionName = "portfolio-admin"

const sessionKeyAdmin = "admin_email"

// SessionStore keeps the administrator identity in a signed cookie.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore creates a cookie store whose signing key is derived from
// secret. maxAge is in seconds.
func NewSessionStore(secret string, maxAge int, secure bool) *SessionStore {
	// Hash the secret to get a consistent 32-byte key
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	return &SessionStore{store: store}
}

// Start records admin in the session cookie.
func (s *SessionStore) Start(w http.ResponseWriter, r *http.Request, admin string) error {
	// A cookie signed with a rotated key yields an error alongside a fresh
	// session, which is what we want to overwrite.
	session, _ := s.store.Get(r, SessionName)
	session.Values[sessionKeyAdmin] = admin
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// End expires the session cookie.
func (s *SessionStore) End(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	delete(session.Values, sessionKeyAdmin)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SessionAdmin implements middleware.SessionReader.
func (s *SessionStore) SessionAdmin(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", false
	}
	admin, ok := session.Values[sessionKeyAdmin].(string)
	return admin, ok && admin != ""
}
