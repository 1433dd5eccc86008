package types

import (
	"strings"
	"time"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
)

var requestValidator = apperrors.NewValidator()

// LoginRequest represents the administrator login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Admin is the identity returned to an authenticated administrator.
type Admin struct {
	Email string `json:"email"`
}

// LoginResponse carries the admin identity and a bearer token.
type LoginResponse struct {
	Admin     Admin     `json:"admin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Normalize trims surrounding whitespace from the email. The password is
// compared as sent.
func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks the request, reporting fields by their JSON names.
func (r *LoginRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Normalize trims every field and lower-cases the email.
func (r *ContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

// Validate checks the request, reporting fields by their JSON names.
func (r *ContactRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}
