package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeEmptyResult, "no value")
	if err.Code != ErrCodeEmptyResult {
		t.Errorf("expected code %s, got %s", ErrCodeEmptyResult, err.Code)
	}
	if err.Message != "no value" {
		t.Errorf("expected message 'no value', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("EMPTY_RESULT should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodePipeFailed, "boom")
	if !err.Retryable {
		t.Error("PIPE_FAILED should be retryable")
	}
}

func TestAppError_PipeFailed(t *testing.T) {
	cause := fmt.Errorf("division by zero")
	err := PipeFailed("invert", cause)
	if err.Code != ErrCodePipeFailed {
		t.Errorf("expected PIPE_FAILED, got %s", err.Code)
	}
	if err.Details["pipe"] != "invert" {
		t.Errorf("expected pipe=invert, got %v", err.Details["pipe"])
	}
	if err.Fatal() {
		t.Error("pipe failures must not be fatal")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestAppError_CancellationMisuse_EmptyPipe(t *testing.T) {
	err := CancellationMisuse("", "pipeline is uncancellable")
	if _, ok := err.Details["pipe"]; ok {
		t.Error("expected no 'pipe' key in details when pipe is empty")
	}
	if !err.Fatal() {
		t.Error("cancellation misuse must be fatal")
	}
}

func TestAppError_EmptyResult_CarriesLastError(t *testing.T) {
	last := PipeFailed("parse", fmt.Errorf("bad input"))
	err := EmptyResult(last)
	if err.Cause != last {
		t.Error("expected cause to be the last carried error")
	}
	if !stderrors.Is(err, New(ErrCodePipeFailed, "")) {
		t.Error("expected errors.Is to match the wrapped pipe failure by code")
	}
	if HasCode(err, ErrCodePipeFailed) {
		t.Error("HasCode should only look at the outermost AppError")
	}
	if !HasCode(err, ErrCodeEmptyResult) {
		t.Error("expected HasCode to match EMPTY_RESULT")
	}
}

func TestAppError_Is_MatchesCode(t *testing.T) {
	err := fmt.Errorf("processing item 3: %w", ConversionFailed("int", "string", nil))
	if !stderrors.Is(err, New(ErrCodeConversionFailed, "")) {
		t.Error("expected wrapped conversion error to match by code")
	}
	if stderrors.Is(err, New(ErrCodeEmptyResult, "")) {
		t.Error("did not expect a match for a different code")
	}
}

func TestAppError_TypeMismatch(t *testing.T) {
	err := TypeMismatch("int", 1.5)
	if err.Details["got"] != "float64" {
		t.Errorf("expected got=float64, got %v", err.Details["got"])
	}
	if !strings.Contains(err.Message, "float64") {
		t.Errorf("expected message to name the actual type, got %q", err.Message)
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := EmptySegment().WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := IndexOutOfBounds(4, 2).WithDetails(map[string]any{
		"segment": 1,
	})
	if err.Details["segment"] != 1 {
		t.Errorf("expected segment=1 in details")
	}
	if err.Details["index"] != 4 {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetails_Nil(t *testing.T) {
	err := Internal(nil).WithDetails(nil)
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized even with nil input")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Internal(cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if EmptySegment().Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  ErrorCode
		fatal bool
	}{
		{"PipeFailed", PipeFailed("p", nil), ErrCodePipeFailed, false},
		{"ConversionFailed", ConversionFailed("a", "b", nil), ErrCodeConversionFailed, true},
		{"CancellationMisuse", CancellationMisuse("p", "no"), ErrCodeCancellationMisuse, true},
		{"EmptyResult", EmptyResult(nil), ErrCodeEmptyResult, true},
		{"TypeMismatch", TypeMismatch("int", "x"), ErrCodeTypeMismatch, true},
		{"IndexOutOfBounds", IndexOutOfBounds(1, 0), ErrCodeIndexOutOfBounds, true},
		{"EmptySegment", EmptySegment(), ErrCodeEmptySegment, true},
		{"InvalidPipe", InvalidPipe("p", "no body"), ErrCodeInvalidPipe, true},
		{"InvalidConfig", InvalidConfig("bad"), ErrCodeInvalidConfig, true},
		{"Internal", Internal(nil), ErrCodeInternal, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Fatal() != tc.fatal {
				t.Errorf("expected fatal=%v, got %v", tc.fatal, tc.err.Fatal())
			}
		})
	}
}

func TestIsAppError(t *testing.T) {
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
	wrapped := fmt.Errorf("wrap: %w", EmptySegment())
	if !IsAppError(wrapped) {
		t.Error("expected wrapped AppError to be detected")
	}
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeEmptySegment {
		t.Errorf("expected EMPTY_SEGMENT, got %v", appErr)
	}
}
