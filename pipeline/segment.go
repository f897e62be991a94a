package pipeline

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"

	pkerrors "github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

// segment is a same-type run of pipes. S is the source input type of the
// chain the segment belongs to.
type segment[S, T any] struct {
	chain *chain
	index int
	pipes []Pipe[T]

	cancellable bool
	// wasCancellable keeps the flag a segment had when ConvertTo froze it,
	// so pipes registered while it was terminal may still cancel.
	wasCancellable bool

	// head produces the starting outcome: the wrapped input for the source
	// segment, the converted upstream outcome otherwise.
	head func(r *run, input S, inputErr error) (Outcome[T], *decision, error)

	// upstreamSize counts pipes and boundaries before this segment.
	upstreamSize func() int
}

func newSourceSegment[T any](c *chain, cancellable bool) *segment[T, T] {
	return &segment[T, T]{
		chain:       c,
		cancellable: cancellable,
		head: func(_ *run, input T, inputErr error) (Outcome[T], *decision, error) {
			return PartialFailure(input, inputErr), nil, nil
		},
		upstreamSize: func() int { return 0 },
	}
}

func (s *segment[S, T]) size() int {
	return s.upstreamSize() + len(s.pipes)
}

func (s *segment[S, T]) canCancel() bool {
	return s.cancellable || s.wasCancellable
}

// evaluate runs the chain up to and including this segment. downstream is
// the converter of the boundary the caller is evaluating through, nil when
// this is the terminal segment of the run. A non-nil decision means a
// cancellation was resolved; it is passed through unchanged and no further
// pipes run.
func (s *segment[S, T]) evaluate(r *run, input S, inputErr error, downstream func(T) (any, error)) (Outcome[T], *decision, error) {
	current, d, err := s.head(r, input, inputErr)
	if err != nil || d != nil {
		return current, d, err
	}

	pipes := s.pipes
	for _, p := range pipes {
		cancelled := false
		current = s.step(r, p, current, func() { cancelled = true })
		if !cancelled {
			continue
		}
		d, err := s.resolveCancel(r, p, current, downstream)
		return current, d, err
	}
	return current, nil, nil
}

// step invokes one pipe and folds its result into the outcome.
func (s *segment[S, T]) step(r *run, p Pipe[T], in Outcome[T], cancel func()) Outcome[T] {
	if p.kind.needsValue() && !in.Present() {
		err := pkerrors.PipeFailed(p.name, ErrNoValue)
		s.pipeFailed(r, p, err)
		return Failure[T](err)
	}

	call := PipeCall{
		Pipeline: s.chain.name,
		Pipe:     p.name,
		Kind:     p.kind,
		Segment:  s.index,
		RunID:    r.id,
	}
	out, err := p.invoke(r.ctx, call, in, cancel, s.chain.interceptors)
	switch {
	case err == nil:
		return Success(out)
	case errors.Is(err, ErrAbsent):
		return Empty[T]()
	}

	perr := pkerrors.PipeFailed(p.name, err)
	s.pipeFailed(r, p, perr)
	if v, ok := in.Value(); ok {
		return PartialFailure(v, perr)
	}
	return Failure[T](perr)
}

func (s *segment[S, T]) pipeFailed(r *run, p Pipe[T], err error) {
	if s.chain.metrics != nil {
		s.chain.metrics.RecordPipeFailure(r.ctx, s.chain.name, p.name)
	}
	r.log.Debug("pipe failed, error carried", map[string]interface{}{
		logger.FieldPipe:     p.name,
		logger.FieldPipeKind: p.kind.String(),
		logger.FieldSegment:  s.index,
		logger.FieldError:    err.Error(),
	})
}

// resolveCancel applies the chain's current cancel behaviour.
func (s *segment[S, T]) resolveCancel(r *run, p Pipe[T], current Outcome[T], downstream func(T) (any, error)) (*decision, error) {
	if !s.canCancel() {
		return nil, pkerrors.CancellationMisuse(p.name, "cancellation signalled on a non-cancellable segment").
			WithDetail("segment", s.index)
	}

	b := s.chain.behaviour
	d := &decision{pipe: p.name}
	switch b {
	case Discard:
		d.resolution = Discarded
		d.outcome = Empty[any]()
	case Convert:
		if downstream == nil {
			d.resolution = Returned
			d.outcome = erase(current)
			break
		}
		d.resolution = Converted
		d.outcome = erase(current)
		if v, ok := current.Value(); ok {
			converted, err := downstream(v)
			if err != nil {
				return nil, err
			}
			d.outcome = Success(converted)
		}
	case Return:
		d.resolution = Returned
		d.outcome = erase(current)
	default:
		return nil, pkerrors.CancellationMisuse(p.name, "cancellation signalled while the cancel behaviour is uncancellable").
			WithDetail("segment", s.index)
	}

	if s.chain.metrics != nil {
		s.chain.metrics.RecordCancellation(r.ctx, s.chain.name, b.String())
	}
	observability.AddSpanEvent(r.ctx, "pipeline.cancelled",
		attribute.String(observability.AttrPipe, p.name),
		attribute.String(observability.AttrBehaviour, b.String()),
	)
	r.log.Debug("pipeline cancelled", map[string]interface{}{
		logger.FieldPipe:      p.name,
		logger.FieldSegment:   s.index,
		logger.FieldBehaviour: b.String(),
		logger.FieldStatus:    d.resolution.String(),
	})
	return d, nil
}
