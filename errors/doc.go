// Package errors provides the structured error type used across pipekit.
//
// Every failure the engine reports is an *AppError carrying a machine-readable
// ErrorCode. Pipe failures (PIPE_FAILED) are folded into a pipeline Outcome and
// never abort a run; every other code is returned to the caller of Process.
//
// Match codes with the standard library:
//
//	if errors.Is(err, pkerrors.New(pkerrors.ErrCodeConversionFailed, "")) { ... }
//	if pkerrors.HasCode(err, pkerrors.ErrCodeEmptyResult) { ... }
package errors
