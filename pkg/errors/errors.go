package errors

import "fmt"

// ErrorType classifies failures so callers can tell an upstream API problem
// from a local one.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeUpstream       ErrorType = "upstream"
	ErrorTypeStorage        ErrorType = "storage"
	ErrorTypeThrottleBudget ErrorType = "throttle_budget"
)

// Error represents a classified extraction error. Code carries the HTTP
// status where one applies, 0 otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a classified error without an HTTP status.
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// NewWithCode creates a classified error carrying an HTTP status code.
func NewWithCode(errorType ErrorType, code int, message string) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// IsRetryable reports whether an error type is handled by waiting and
// retrying. Only throttling is; every other kind aborts the run.
func IsRetryable(errorType ErrorType) bool {
	return errorType == ErrorTypeRateLimit
}

// ValidationError builds a field-specific request validation error.
func ValidationError(field, reason string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("%s: %s", field, reason),
	}
}
