package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Processing errors
const (
	// ErrCodePipeFailed indicates a pipe body returned an error or panicked.
	ErrCodePipeFailed ErrorCode = "PIPE_FAILED"
	// ErrCodeConversionFailed indicates a conversion boundary produced no value.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
	// ErrCodeCancellationMisuse indicates cancellation was signalled where it is not allowed.
	ErrCodeCancellationMisuse ErrorCode = "CANCELLATION_MISUSE"
	// ErrCodeEmptyResult indicates an unsafe unwrap of an outcome without a value.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"
	// ErrCodeTypeMismatch indicates a result value is not of the pipeline's terminal type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Construction errors
const (
	// ErrCodeIndexOutOfBounds indicates a pipe index outside the segment.
	ErrCodeIndexOutOfBounds ErrorCode = "INDEX_OUT_OF_BOUNDS"
	// ErrCodeEmptySegment indicates a removal from a segment without pipes.
	ErrCodeEmptySegment ErrorCode = "EMPTY_SEGMENT"
	// ErrCodeInvalidPipe indicates a pipe without a body.
	ErrCodeInvalidPipe ErrorCode = "INVALID_PIPE"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodePipeFailed: true,
	ErrCodeInternal:   false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsFatalCode reports whether an error with this code aborts a pipeline run.
func IsFatalCode(code ErrorCode) bool {
	return code != ErrCodePipeFailed
}
