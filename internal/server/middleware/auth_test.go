package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (string, error) {
	admin, ok := v.validTokens[tokenString]
	if !ok {
		return "", fmt.Errorf("invalid token")
	}
	return admin, nil
}

type testSessions struct {
	admin string
}

func (s *testSessions) SessionAdmin(r *http.Request) (string, bool) {
	if _, err := r.Cookie("session"); err != nil || s.admin == "" {
		return "", false
	}
	return s.admin, true
}

func protected(t *testing.T, called *bool, gotAdmin *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		admin, err := GetAdmin(r)
		require.NoError(t, err)
		*gotAdmin = admin
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAdmin(t *testing.T) {
	tokens := &testTokenValidator{validTokens: map[string]string{"valid-token": "admin@example.com"}}
	sessions := &testSessions{admin: "admin@example.com"}

	tests := []struct {
		name       string
		authHeader string
		cookie     bool
		wantStatus int
	}{
		{name: "valid bearer token", authHeader: "Bearer valid-token", wantStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer valid-token", wantStatus: http.StatusOK},
		{name: "session cookie", cookie: true, wantStatus: http.StatusOK},
		{name: "no credentials", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", authHeader: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "missing token", authHeader: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "extra parts", authHeader: "Bearer a b", wantStatus: http.StatusUnauthorized},
		{name: "invalid token does not fall back to cookie", authHeader: "Bearer nope", cookie: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var admin string
			handler := RequireAdmin(tokens, sessions)(protected(t, &called, &admin))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/experiences", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: "session", Value: "x"})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, called)
				assert.Equal(t, "admin@example.com", admin)
			} else {
				assert.False(t, called, "handler should not be called")
				assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestRequireAdmin_NilSessions(t *testing.T) {
	var called bool
	var admin string
	handler := RequireAdmin(&testTokenValidator{}, nil)(protected(t, &called, &admin))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAdmin_Missing(t *testing.T) {
	_, err := GetAdmin(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}

func TestWithAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAdmin(req.Context(), "a@b.c"))
	admin, err := GetAdmin(req)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", admin)
}
