package pipeline

import (
	"context"

	pkerrors "github.com/kbukum/pipekit/errors"
)

// Pipeline is a handle onto the terminal segment of a chain. S is the type
// accepted by the source segment and T the type of the terminal segment.
//
// A Pipeline is not safe for concurrent use while it is being mutated. A
// fully built pipeline may be shared for concurrent Process calls.
type Pipeline[S, T any] struct {
	seg *segment[S, T]
}

// New creates a single-segment pipeline over T.
func New[T any](opts ...Option) *Pipeline[T, T] {
	o := buildOptions(opts)
	return &Pipeline[T, T]{seg: newSourceSegment[T](newChain(o), o.cancellable)}
}

// Name returns the pipeline name.
func (p *Pipeline[S, T]) Name() string { return p.seg.chain.name }

// AddPipe appends a pipe to the terminal segment. A Cancellable pipe is
// rejected unless the segment is cancellable.
func (p *Pipeline[S, T]) AddPipe(pipe Pipe[T]) error {
	if !pipe.hasBody() {
		return pkerrors.InvalidPipe(pipe.name, "pipe has no body")
	}
	if pipe.kind == KindCancellable && !p.seg.cancellable {
		return pkerrors.CancellationMisuse(pipe.name, "cancellable pipe added to a non-cancellable segment")
	}
	p.seg.pipes = append(p.seg.pipes, pipe)
	return nil
}

// AddPipes adds pipes in order and stops at the first rejected pipe.
func (p *Pipeline[S, T]) AddPipes(pipes ...Pipe[T]) error {
	for _, pipe := range pipes {
		if err := p.AddPipe(pipe); err != nil {
			return err
		}
	}
	return nil
}

// SetCancellable sets the cancellable flag of the terminal segment.
func (p *Pipeline[S, T]) SetCancellable(cancellable bool) *Pipeline[S, T] {
	p.seg.cancellable = cancellable
	if !cancellable {
		p.seg.wasCancellable = false
	}
	return p
}

// Cancellable reports whether the terminal segment accepts cancellable pipes.
func (p *Pipeline[S, T]) Cancellable() bool { return p.seg.cancellable }

// SetCancelBehaviour replaces the behaviour of the whole chain, whichever
// segment handle it is called through.
func (p *Pipeline[S, T]) SetCancelBehaviour(b CancelBehaviour) *Pipeline[S, T] {
	p.seg.chain.behaviour = b
	return p
}

// CancelBehaviour returns the chain's current cancel behaviour.
func (p *Pipeline[S, T]) CancelBehaviour() CancelBehaviour {
	return p.seg.chain.behaviour
}

// ConvertTo chains a conversion boundary and returns a handle onto the new
// terminal segment. The current segment is frozen: it stops accepting
// cancellable pipes and the new segment inherits its cancellable flag.
// Converting one handle twice branches the chain; a Convert cancellation
// always uses the converter of the branch being processed.
func ConvertTo[S, T, K any](p *Pipeline[S, T], fn func(T) K) *Pipeline[S, K] {
	if fn == nil {
		return TryConvertTo[S, T, K](p, nil)
	}
	return TryConvertTo(p, func(v T) (K, error) { return fn(v), nil })
}

// TryConvertTo is ConvertTo with a fallible converter. A converter error is
// fatal to the run and surfaces as CONVERSION_FAILED.
func TryConvertTo[S, T, K any](p *Pipeline[S, T], fn func(T) (K, error)) *Pipeline[S, K] {
	if fn == nil {
		fn = func(T) (K, error) {
			var zero K
			return zero, pkerrors.New(pkerrors.ErrCodeConversionFailed, "no converter")
		}
	}

	prev := p.seg
	inherited := prev.cancellable
	prev.wasCancellable = prev.wasCancellable || prev.cancellable
	prev.cancellable = false
	downstream := func(v T) (any, error) {
		k, err := convert(fn, v)
		if err != nil {
			return nil, err
		}
		return k, nil
	}

	next := &segment[S, K]{
		chain:        prev.chain,
		index:        prev.index + 1,
		cancellable:  inherited,
		upstreamSize: func() int { return prev.size() + 1 },
	}
	next.head = func(r *run, input S, inputErr error) (Outcome[K], *decision, error) {
		o, d, err := prev.evaluate(r, input, inputErr, downstream)
		if err != nil || d != nil {
			return Empty[K](), d, err
		}
		out, err := Map(o, fn)
		if err != nil {
			return Empty[K](), nil, err
		}
		return out, nil, nil
	}
	return &Pipeline[S, K]{seg: next}
}

// RemovePipeAt removes the pipe at index i of the terminal segment.
func (p *Pipeline[S, T]) RemovePipeAt(i int) error {
	if i < 0 || i >= len(p.seg.pipes) {
		return pkerrors.IndexOutOfBounds(i, len(p.seg.pipes))
	}
	p.seg.pipes = append(p.seg.pipes[:i:i], p.seg.pipes[i+1:]...)
	return nil
}

// RemoveLastPipe removes the last pipe of the terminal segment.
func (p *Pipeline[S, T]) RemoveLastPipe() error {
	if len(p.seg.pipes) == 0 {
		return pkerrors.EmptySegment()
	}
	return p.RemovePipeAt(len(p.seg.pipes) - 1)
}

// RemovePipes removes every pipe of the terminal segment matching pred and
// returns how many were removed.
func (p *Pipeline[S, T]) RemovePipes(pred func(Pipe[T]) bool) int {
	kept := make([]Pipe[T], 0, len(p.seg.pipes))
	for _, pipe := range p.seg.pipes {
		if !pred(pipe) {
			kept = append(kept, pipe)
		}
	}
	removed := len(p.seg.pipes) - len(kept)
	p.seg.pipes = kept
	return removed
}

// RemovePipesOfKind removes every pipe of the given kind from the terminal
// segment.
func (p *Pipeline[S, T]) RemovePipesOfKind(kind Kind) int {
	return p.RemovePipes(func(pipe Pipe[T]) bool { return pipe.kind == kind })
}

// PipeNames returns the names of the terminal segment's pipes in order.
func (p *Pipeline[S, T]) PipeNames() []string {
	names := make([]string, len(p.seg.pipes))
	for i, pipe := range p.seg.pipes {
		names[i] = pipe.name
	}
	return names
}

// Size counts the pipes of every segment plus one per conversion boundary.
func (p *Pipeline[S, T]) Size() int {
	return p.seg.size()
}

// Process runs input through the chain. Pipe failures are carried in the
// result; the returned error is non-nil only for fatal errors
// (CONVERSION_FAILED, CANCELLATION_MISUSE). ctx carries tracing and logging
// correlation only; it does not interrupt a run.
func (p *Pipeline[S, T]) Process(ctx context.Context, input S) (Result[T], error) {
	return p.ProcessWithError(ctx, input, nil)
}

// ProcessWithError is Process with an error already carried by the input.
func (p *Pipeline[S, T]) ProcessWithError(ctx context.Context, input S, inputErr error) (Result[T], error) {
	c := p.seg.chain
	r := c.begin(ctx)

	o, d, err := p.seg.evaluate(r, input, inputErr, nil)
	if err != nil {
		c.end(r, Completed, err)
		return Result[T]{}, err
	}
	if d != nil {
		c.end(r, d.resolution, nil)
		return decidedResult[T](d), nil
	}
	c.end(r, Completed, nil)
	return completedResult(o), nil
}

// ProcessUnsafe runs input and unwraps the value. It fails with EMPTY_RESULT
// when no value is present and TYPE_MISMATCH when the value is foreign.
func (p *Pipeline[S, T]) ProcessUnsafe(ctx context.Context, input S) (T, error) {
	var zero T
	res, err := p.Process(ctx, input)
	if err != nil {
		return zero, err
	}
	if !res.Present() {
		return zero, pkerrors.EmptyResult(res.Err())
	}
	if res.Foreign() {
		raw, _ := res.Raw().Value()
		return zero, pkerrors.TypeMismatch(typeName[T](), raw)
	}
	v, _ := res.Value()
	return v, nil
}
