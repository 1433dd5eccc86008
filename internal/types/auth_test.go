package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       LoginRequest
		wantField string
	}{
		{name: "valid", req: LoginRequest{Email: "admin@example.com", Password: "secret"}},
		{name: "missing email", req: LoginRequest{Password: "secret"}, wantField: "email"},
		{name: "bad email", req: LoginRequest{Email: "admin", Password: "secret"}, wantField: "email"},
		{name: "missing password", req: LoginRequest{Email: "admin@example.com"}, wantField: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ie *apperrors.InvalidInputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.wantField, ie.Fields[0].Field)
		})
	}
}

func TestLoginRequest_Normalize(t *testing.T) {
	req := LoginRequest{Email: "  admin@example.com\t", Password: " keep spaces "}
	req.Normalize()
	assert.Equal(t, "admin@example.com", req.Email)
	assert.Equal(t, " keep spaces ", req.Password)
	assert.NoError(t, req.Validate())
}

func TestContactRequest_Validate(t *testing.T) {
	valid := ContactRequest{Name: "Ada", Email: "ada@example.com", Subject: "Hello", Message: "Hi there"}
	assert.NoError(t, valid.Validate())

	long := valid
	long.Message = strings.Repeat("x", 5001)
	var ie *apperrors.InvalidInputError
	require.ErrorAs(t, long.Validate(), &ie)
	assert.Equal(t, "message", ie.Fields[0].Field)

	noSubject := valid
	noSubject.Subject = ""
	require.ErrorAs(t, noSubject.Validate(), &ie)
	assert.Equal(t, "subject", ie.Fields[0].Field)
}

func TestContactRequest_Normalize(t *testing.T) {
	req := ContactRequest{Name: " Ada ", Email: " Ada@Example.COM ", Subject: " Hi ", Message: "\nHello\n"}
	req.Normalize()
	assert.Equal(t, ContactRequest{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}, req)
}
