package pipeline

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAbsent is returned by a pipe body to discard the current value. The
	// outcome becomes Empty; it is not recorded as a failure.
	ErrAbsent = errors.New("no value produced")

	// ErrNoValue is the cause attached when a pipe that needs a value is
	// reached by an outcome without one. Such pipes are not invoked.
	ErrNoValue = errors.New("pipe requires a value")

	// ErrNotInvoked is the cause recorded when an interceptor returns without
	// calling next. The pipe body did not run and the current value is kept.
	ErrNotInvoked = errors.New("interceptor did not call next")
)

// Kind identifies the call signature of a pipe.
type Kind int

const (
	// KindPlain pipes receive the value and the carried error.
	KindPlain Kind = iota
	// KindValueOnly pipes receive the value only.
	KindValueOnly
	// KindCancellable pipes receive a cancel callback, the value and the carried error.
	KindCancellable
	// KindOutcomeAware pipes receive the whole outcome.
	KindOutcomeAware
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindValueOnly:
		return "value_only"
	case KindCancellable:
		return "cancellable"
	case KindOutcomeAware:
		return "outcome_aware"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// needsValue reports whether pipes of this kind are skipped without a value.
func (k Kind) needsValue() bool {
	return k != KindOutcomeAware
}

// Pipe is a named, stateless unit of work over T. Build pipes with Plain,
// ValueOnly, Transform, Cancellable or OutcomeAware.
type Pipe[T any] struct {
	name         string
	kind         Kind
	plain        func(T, error) (T, error)
	valueOnly    func(T) (T, error)
	cancellable  func(func(), T, error) (T, error)
	outcomeAware func(Outcome[T]) (T, error)
	interceptors []Interceptor
}

// Plain creates a pipe that receives the current value and carried error.
func Plain[T any](name string, fn func(v T, err error) (T, error)) Pipe[T] {
	return Pipe[T]{name: name, kind: KindPlain, plain: fn}
}

// ValueOnly creates a pipe that receives the current value and ignores any
// carried error.
func ValueOnly[T any](name string, fn func(v T) (T, error)) Pipe[T] {
	return Pipe[T]{name: name, kind: KindValueOnly, valueOnly: fn}
}

// Transform creates a ValueOnly pipe from a function that cannot fail.
func Transform[T any](name string, fn func(v T) T) Pipe[T] {
	if fn == nil {
		return Pipe[T]{name: name, kind: KindValueOnly}
	}
	return ValueOnly(name, func(v T) (T, error) { return fn(v), nil })
}

// Cancellable creates a pipe that may call cancel to stop the pipeline. It
// can only be added to a cancellable segment.
func Cancellable[T any](name string, fn func(cancel func(), v T, err error) (T, error)) Pipe[T] {
	return Pipe[T]{name: name, kind: KindCancellable, cancellable: fn}
}

// OutcomeAware creates a pipe that receives the whole outcome. It runs even
// when no value is present, which makes it the place for fallbacks.
func OutcomeAware[T any](name string, fn func(o Outcome[T]) (T, error)) Pipe[T] {
	return Pipe[T]{name: name, kind: KindOutcomeAware, outcomeAware: fn}
}

// Name returns the pipe name.
func (p Pipe[T]) Name() string { return p.name }

// Kind returns the pipe kind.
func (p Pipe[T]) Kind() Kind { return p.kind }

// With returns a copy of p wrapped by the given interceptors. Pipe
// interceptors run inside the pipeline-wide ones.
func (p Pipe[T]) With(interceptors ...Interceptor) Pipe[T] {
	merged := make([]Interceptor, 0, len(p.interceptors)+len(interceptors))
	merged = append(merged, p.interceptors...)
	merged = append(merged, interceptors...)
	p.interceptors = merged
	return p
}

func (p Pipe[T]) hasBody() bool {
	switch p.kind {
	case KindPlain:
		return p.plain != nil
	case KindValueOnly:
		return p.valueOnly != nil
	case KindCancellable:
		return p.cancellable != nil
	case KindOutcomeAware:
		return p.outcomeAware != nil
	default:
		return false
	}
}

// invoke runs the pipe body through the pipeline and pipe interceptors.
func (p Pipe[T]) invoke(ctx context.Context, call PipeCall, in Outcome[T], cancel func(), outer []Interceptor) (T, error) {
	var (
		out     T
		bodyErr error
		called  bool
	)
	next := chainInterceptors(call, func(context.Context) error {
		called = true
		out, bodyErr = p.call(in, cancel)
		return bodyErr
	}, outer, p.interceptors)

	err := next(ctx)
	switch {
	case err != nil:
		return out, err
	case !called:
		return out, ErrNotInvoked
	}
	return out, bodyErr
}

// call dispatches on the pipe kind. Panics are returned as errors.
func (p Pipe[T]) call(in Outcome[T], cancel func()) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, err = zero, panicError(r)
		}
	}()

	v, _ := in.Value()
	switch p.kind {
	case KindPlain:
		return p.plain(v, in.Err())
	case KindValueOnly:
		return p.valueOnly(v)
	case KindCancellable:
		return p.cancellable(cancel, v, in.Err())
	case KindOutcomeAware:
		return p.outcomeAware(in)
	default:
		return v, fmt.Errorf("unknown pipe kind %s", p.kind)
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
