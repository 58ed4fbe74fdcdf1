package provider

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrEmptyResponse = errors.New("empty response from model")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// FromStatus maps an HTTP status from any SDK to a ProviderError.
func FromStatus(status int, message string, err error) *ProviderError {
	pe := &ProviderError{Message: message, Underlying: err}
	switch {
	case status == 401 || status == 403:
		pe.Code = ErrorCodeAuth
	case status == 429:
		pe.Code, pe.Retryable = ErrorCodeRateLimit, true
	case status == 400 || status == 404 || status == 413:
		pe.Code = ErrorCodeInvalidRequest
	case status >= 500:
		pe.Code, pe.Retryable = ErrorCodeUnavailable, true
	default:
		pe.Code, pe.Retryable = ErrorCodeNetwork, true
	}
	if pe.Message == "" {
		pe.Message = string(pe.Code)
	}
	return pe
}
