// Package apperrors defines the error values shared by the store, the
// tailoring pipeline and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is wrapped by store operations when the addressed row is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped when a write would violate a uniqueness or
	// write-once constraint.
	ErrConflict = errors.New("conflict")
)

// FieldError describes one violated constraint on an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidInputError indicates a request failed its static constraints
// before any work was attempted.
type InvalidInputError struct {
	Fields []FieldError
}

// NewInvalidInput builds an InvalidInputError for a single field.
func NewInvalidInput(field, message string) *InvalidInputError {
	return &InvalidInputError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *InvalidInputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// FromValidator converts go-playground/validator errors into an
// InvalidInputError. Other errors become a single field-less entry.
func FromValidator(err error) *InvalidInputError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewInvalidInput("(request)", err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: describeTag(fe)})
	}
	return &InvalidInputError{Fields: fields}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}
