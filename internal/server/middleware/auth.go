// Package middleware provides HTTP middleware for administrator authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// adminKey is the context key for storing the authenticated administrator.
const adminKey ContextKey = "admin"

// TokenValidator validates a bearer token and returns the administrator
// identity it was issued to.
type TokenValidator interface {
	ValidateToken(tokenString string) (string, error)
}

// SessionReader resolves the administrator from a session cookie.
type SessionReader interface {
	SessionAdmin(r *http.Request) (string, bool)
}

// RequireAdmin admits requests carrying a valid bearer token or admin
// session cookie and places the administrator identity in the context. A
// request that presents an Authorization header is judged on the token alone.
func RequireAdmin(tokens TokenValidator, sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := authenticate(r, tokens, sessions)
			if !ok {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}

func authenticate(r *http.Request, tokens TokenValidator, sessions SessionReader) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if sessions == nil {
			return "", false
		}
		return sessions.SessionAdmin(r)
	}

	// Handle case-insensitive "Bearer" prefix
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || tokens == nil {
		return "", false
	}
	admin, err := tokens.ValidateToken(parts[1])
	if err != nil || admin == "" {
		return "", false
	}
	return admin, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// WithAdmin returns a copy of ctx carrying the administrator identity.
func WithAdmin(ctx context.Context, admin string) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// GetAdmin extracts the authenticated administrator from the request context.
func GetAdmin(r *http.Request) (string, error) {
	admin, ok := r.Context().Value(adminKey).(string)
	if !ok || admin == "" {
		return "", fmt.Errorf("admin not found in request context")
	}
	return admin, nil
}
