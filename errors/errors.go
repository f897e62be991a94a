package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified pipekit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
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

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
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

// Fatal reports whether the error aborts a pipeline run.
func (e *AppError) Fatal() bool { return IsFatalCode(e.Code) }

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// PipeFailed wraps an error returned (or a panic raised) by a pipe body.
func PipeFailed(pipe string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePipeFailed, Message: fmt.Sprintf("pipe %q failed", pipe),
		Retryable: true, Details: map[string]any{"pipe": pipe}, Cause: cause,
	}
}

// ConversionFailed creates an error for a conversion boundary that produced no value.
func ConversionFailed(from, to string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConversionFailed, Message: fmt.Sprintf("conversion from %s to %s produced no value", from, to),
		Details: map[string]any{"from": from, "to": to}, Cause: cause,
	}
}

// CancellationMisuse creates an error for a cancellation signalled where it is not allowed.
func CancellationMisuse(pipe, reason string) *AppError {
	details := map[string]any{}
	if pipe != "" {
		details["pipe"] = pipe
	}
	return &AppError{
		Code: ErrCodeCancellationMisuse, Message: reason, Details: details,
	}
}

// EmptyResult creates an error for an unwrap of an outcome without a value.
// last is the error carried by the outcome, if any.
func EmptyResult(last error) *AppError {
	return &AppError{
		Code: ErrCodeEmptyResult, Message: "pipeline produced no value", Cause: last,
	}
}

// TypeMismatch creates an error for a result whose value is not of the expected type.
func TypeMismatch(expected string, got any) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("expected result of type %s, got %T", expected, got),
		Details: map[string]any{"expected": expected, "got": fmt.Sprintf("%T", got)},
	}
}

// IndexOutOfBounds creates an error for an invalid pipe index.
func IndexOutOfBounds(index, size int) *AppError {
	return &AppError{
		Code: ErrCodeIndexOutOfBounds, Message: fmt.Sprintf("index %d out of bounds for %d pipes", index, size),
		Details: map[string]any{"index": index, "size": size},
	}
}

// EmptySegment creates an error for a removal from a segment without pipes.
func EmptySegment() *AppError {
	return &AppError{
		Code: ErrCodeEmptySegment, Message: "segment has no pipes",
	}
}

// InvalidPipe creates an error for a pipe that cannot be registered.
func InvalidPipe(pipe, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidPipe, Message: fmt.Sprintf("pipe %q: %s", pipe, reason),
		Details: map[string]any{"pipe": pipe},
	}
}

// InvalidConfig creates an error for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Retryable: false, Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
