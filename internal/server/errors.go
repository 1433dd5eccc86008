// Package server provides the HTTP API for the portfolio back-office.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/schemas"
	"github.com/jonathan/portfolio-backoffice/internal/tailoring"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrInvalidBody indicates the request body could not be decoded
type ErrInvalidBody struct {
	Cause error
}

func (e *ErrInvalidBody) Error() string {
	if e.Cause == nil {
		return "invalid request body"
	}
	return "invalid request body: " + e.Cause.Error()
}

func (e *ErrInvalidBody) Unwrap() error {
	return e.Cause
}

// ErrRejected indicates a request refused outright, such as an automated
// contact form submission
type ErrRejected struct{}

func (e *ErrRejected) Error() string {
	return "request rejected"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidInput *apperrors.InvalidInputError
		schemaErr    *schemas.ValidationError
		invalidBody  *ErrInvalidBody
		creds        *ErrInvalidCredentials
		rejected     *ErrRejected
		unavailable  *tailoring.UpstreamUnavailableError
		badFormat    *tailoring.UpstreamFormatError
	)
	switch {
	case errors.As(err, &invalidInput), errors.As(err, &schemaErr), errors.As(err, &invalidBody):
		return http.StatusBadRequest
	case errors.As(err, &creds):
		return http.StatusUnauthorized
	case errors.As(err, &rejected):
		return http.StatusForbidden
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &badFormat):
		return http.StatusBadGateway
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorDetails returns the per-field problems carried by a validation error.
func errorDetails(err error) []apperrors.FieldError {
	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return invalidInput.Fields
	}
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		details := make([]apperrors.FieldError, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			details = append(details, apperrors.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return details
	}
	var invalidBody *ErrInvalidBody
	if errors.As(err, &invalidBody) {
		return []apperrors.FieldError{{Field: "(body)", Message: "must be a valid JSON document"}}
	}
	return nil
}

// publicMessage is the error text a client sees for err. Upstream and
// internal failures never expose their cause.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return "Validation failed"
	case http.StatusUnauthorized:
		return err.Error()
	case http.StatusForbidden:
		return "Request rejected"
	case http.StatusServiceUnavailable:
		return "The AI service is temporarily unavailable. Please try again later."
	case http.StatusBadGateway:
		return "The AI service returned an unexpected response. Please try again."
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return err.Error()
	default:
		return "Internal server error"
	}
}
