package ai

import "fmt"

// ErrorCode classifies assistant call failures.
type ErrorCode string

const (
	ErrNotConfigured   ErrorCode = "NOT_CONFIGURED"
	ErrUnavailable     ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrRateLimited     ErrorCode = "RATE_LIMITED"
	ErrEmptyResponse   ErrorCode = "EMPTY_RESPONSE"
	ErrInvalidResponse ErrorCode = "INVALID_RESPONSE"
)

// APIError is a structured error for assistant call failures.
type APIError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *APIError) IsRetryable() bool {
	return e.Retryable
}
