package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeStorage      = "STORAGE_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingQuery    = NewDomainError(ErrCodeValidation, "query parameter is required")
	ErrMissingMessage  = NewDomainError(ErrCodeValidation, "session id and message are required")
	ErrEmptyTitle      = NewDomainError(ErrCodeValidation, "title must not be empty")
	ErrEmptyContent    = NewDomainError(ErrCodeValidation, "content must not be empty")
	ErrInvalidScope    = NewDomainError(ErrCodeValidation, "unrecognized scope")
	ErrInvalidFeedback = NewDomainError(ErrCodeValidation, "feedback must be up or down")
)

// Not found errors
var (
	ErrSessionNotFound   = NewDomainError(ErrCodeNotFound, "session not found")
	ErrKnowledgeNotFound = NewDomainError(ErrCodeNotFound, "knowledge entry not found")
	ErrEventNotFound     = NewDomainError(ErrCodeNotFound, "query event not found")
)

// Authorization errors
var (
	ErrUnauthorized     = NewDomainError(ErrCodeUnauthorized, "authentication required")
	ErrSessionForbidden = NewDomainError(ErrCodeForbidden, "session does not belong to the requesting user")
	ErrForbidden        = NewDomainError(ErrCodeForbidden, "insufficient permissions")
)

// NewStorageError wraps a persistence failure
func NewStorageError(op string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorage, op+" failed", err)
}

// RateLimitError is returned when a caller exceeds an endpoint quota.
// RetryAfter is the remaining window in seconds.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("[%s] rate limit exceeded, retry in %d seconds", ErrCodeRateLimited, e.RetryAfter)
}
