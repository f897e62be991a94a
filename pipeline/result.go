package pipeline

import "fmt"

// Result is the outcome of a run. A cancellation resolved with Convert or
// Return can end the run with a value whose type is not T; such a value is
// foreign and is only reachable through Raw.
type Result[T any] struct {
	typed       Outcome[T]
	raw         Outcome[any]
	foreign     bool
	resolution  Resolution
	cancelledBy string
}

func completedResult[T any](o Outcome[T]) Result[T] {
	return Result[T]{typed: o, raw: erase(o), resolution: Completed}
}

func decidedResult[T any](d *decision) Result[T] {
	res := Result[T]{raw: d.outcome, resolution: d.resolution, cancelledBy: d.pipe}
	v, ok := d.outcome.Value()
	if !ok {
		res.typed = Failure[T](d.outcome.Err())
		return res
	}
	if tv, ok := v.(T); ok {
		res.typed = PartialFailure(tv, d.outcome.Err())
		return res
	}
	res.foreign = true
	res.typed = Failure[T](d.outcome.Err())
	return res
}

// Outcome returns the typed view. A foreign value is absent from it; the
// carried error is kept.
func (r Result[T]) Outcome() Outcome[T] { return r.typed }

// Raw returns the type-erased outcome, including foreign values.
func (r Result[T]) Raw() Outcome[any] { return r.raw }

// Value returns the typed value and whether one is present.
func (r Result[T]) Value() (T, bool) { return r.typed.Value() }

// ValueOr returns the typed value if present, def otherwise.
func (r Result[T]) ValueOr(def T) T { return r.typed.ValueOr(def) }

// Present reports whether any value, typed or foreign, is present.
func (r Result[T]) Present() bool { return r.raw.Present() }

// Err returns the carried error, or nil.
func (r Result[T]) Err() error { return r.raw.Err() }

// DidFail reports whether an error is carried.
func (r Result[T]) DidFail() bool { return r.raw.DidFail() }

// Foreign reports whether the value is not of type T.
func (r Result[T]) Foreign() bool { return r.foreign }

// Resolution reports how the run ended.
func (r Result[T]) Resolution() Resolution { return r.resolution }

// CancelledBy returns the name of the pipe that cancelled the run, or "".
func (r Result[T]) CancelledBy() string { return r.cancelledBy }

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	return fmt.Sprintf("%s %s", r.resolution, r.raw)
}
