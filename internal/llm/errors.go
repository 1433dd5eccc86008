package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error is a classified provider failure.
type Error struct {
	Provider   Provider
	Model      string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Provider))
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ClassifyError wraps a provider error with a status code and retryability.
// Context errors keep their identity so callers can detect deadlines.
func ClassifyError(err error, provider Provider, model string) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	e := &Error{Provider: provider, Model: model, Cause: err}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Message, e.Retryable = "request timeout", true
		return e
	case errors.Is(err, context.Canceled):
		e.Message = "request canceled"
		return e
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			e.StatusCode = code
			break
		}
	}

	switch {
	case e.StatusCode == 401 || e.StatusCode == 403 || strings.Contains(lower, "invalid api key"):
		e.Message = "authentication failed"
	case e.StatusCode == 404:
		e.Message = "model or endpoint not found"
	case e.StatusCode == 429 || strings.Contains(lower, "rate limit"):
		e.Message, e.Retryable = "rate limited", true
	case e.StatusCode >= 500:
		e.Message, e.Retryable = "server error", true
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") || strings.Contains(lower, "timeout"):
		e.Message, e.Retryable = "connection failed", true
	default:
		e.Message = "completion failed"
	}
	return e
}

// IsRetryable reports whether err is a retryable provider failure.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}
