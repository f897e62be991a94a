package pipeline

import (
	"fmt"
	"reflect"

	pkerrors "github.com/kbukum/pipekit/errors"
)

// State is the observable state of an Outcome.
type State int

const (
	// StateEmpty holds neither a value nor an error.
	StateEmpty State = iota
	// StateSuccess holds a value and no error.
	StateSuccess
	// StateFailure holds an error and no value.
	StateFailure
	// StatePartialFailure holds a value and an error.
	StatePartialFailure
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StatePartialFailure:
		return "partial_failure"
	default:
		return "empty"
	}
}

// Outcome carries the result of processing so far. Presence of a value and
// presence of an error are independent: a failed pipe keeps the previous
// value and attaches its error.
//
// The zero Outcome is Empty.
type Outcome[T any] struct {
	value   T
	present bool
	err     error
}

// Success returns an outcome holding v. A nil pointer, map, slice, interface,
// func or chan is treated as absent and yields Empty.
func Success[T any](v T) Outcome[T] {
	if isNil(v) {
		return Empty[T]()
	}
	return Outcome[T]{value: v, present: true}
}

// Empty returns an outcome without value or error.
func Empty[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Failure returns an outcome holding only err. Failure(nil) is Empty.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// PartialFailure returns an outcome holding both v and err. An absent v yields
// Failure(err) and a nil err yields Success(v).
func PartialFailure[T any](v T, err error) Outcome[T] {
	if isNil(v) {
		return Failure[T](err)
	}
	return Outcome[T]{value: v, present: true, err: err}
}

// Value returns the value and whether one is present.
func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.present
}

// ValueOr returns the value if present, def otherwise.
func (o Outcome[T]) ValueOr(def T) T {
	if o.present {
		return o.value
	}
	return def
}

// Present reports whether a value is present.
func (o Outcome[T]) Present() bool { return o.present }

// DidFail reports whether an error is carried, regardless of value presence.
func (o Outcome[T]) DidFail() bool { return o.err != nil }

// Err returns the carried error, or nil.
func (o Outcome[T]) Err() error { return o.err }

// State returns which of the four states the outcome is in.
func (o Outcome[T]) State() State {
	switch {
	case o.present && o.err != nil:
		return StatePartialFailure
	case o.present:
		return StateSuccess
	case o.err != nil:
		return StateFailure
	default:
		return StateEmpty
	}
}

// String implements fmt.Stringer.
func (o Outcome[T]) String() string {
	switch o.State() {
	case StateSuccess:
		return fmt.Sprintf("Success(%v)", o.value)
	case StatePartialFailure:
		return fmt.Sprintf("PartialFailure(%v, %v)", o.value, o.err)
	case StateFailure:
		return fmt.Sprintf("Failure(%v)", o.err)
	default:
		return "Empty"
	}
}

// Map applies fn to the value of o. Empty and Failure outcomes are returned as
// the equivalent Outcome[U] without calling fn. A carried error survives the
// mapping. If fn returns an error, panics, or returns an absent value, Map
// returns a CONVERSION_FAILED error.
func Map[T, U any](o Outcome[T], fn func(T) (U, error)) (Outcome[U], error) {
	v, ok := o.Value()
	if !ok {
		return Failure[U](o.err), nil
	}
	u, err := convert(fn, v)
	if err != nil {
		return Empty[U](), err
	}
	return PartialFailure(u, o.err), nil
}

// erase converts o to an Outcome[any] holding the same value and error.
func erase[T any](o Outcome[T]) Outcome[any] {
	if v, ok := o.Value(); ok {
		return PartialFailure[any](v, o.err)
	}
	return Failure[any](o.err)
}

// convert applies a conversion boundary function to v.
func convert[T, U any](fn func(T) (U, error), v T) (u U, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero U
			u, err = zero, pkerrors.ConversionFailed(typeName[T](), typeName[U](), panicError(r))
		}
	}()

	u, err = fn(v)
	if err != nil {
		return u, pkerrors.ConversionFailed(typeName[T](), typeName[U](), err)
	}
	if isNil(u) {
		return u, pkerrors.ConversionFailed(typeName[T](), typeName[U](), ErrAbsent)
	}
	return u, nil
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// isNil reports whether v is nil or a nil value of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
