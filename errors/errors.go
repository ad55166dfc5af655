package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Configuration creates an error for a structural mistake in how components
// are registered or wired.
func Configuration(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

// Lifecycle creates an error for a failed lifecycle step of a component.
func Lifecycle(domain, phase string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeLifecycle,
		Message: fmt.Sprintf("%s failed to %s", domain, phase),
		Details: map[string]any{"domain": domain, "phase": phase},
		Cause:   cause,
	}
}

// AggregationInconsistency creates an error describing a subcomponent that
// reported an unknown state.
func AggregationInconsistency(component, reported string) *AppError {
	return &AppError{
		Code:    ErrCodeAggregationInconsistency,
		Message: fmt.Sprintf("%s reported unknown state %q, treating as UNAVAILABLE", component, reported),
		Details: map[string]any{"component": component, "state": reported},
	}
}

// Validation creates an error for invalid configuration values.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is reports whether err's chain contains an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
