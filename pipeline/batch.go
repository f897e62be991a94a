package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	pkerrors "github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

// ProcessAll runs every input independently, in order, and collects the
// present values of type T. Items that end without a value, with a foreign
// value, or with a fatal error are skipped; fatal errors are logged.
func (p *Pipeline[S, T]) ProcessAll(ctx context.Context, inputs []S) []T {
	var out []T
	p.batch(ctx, inputs, func(_ int, res Result[T], err error) bool {
		if err != nil {
			return true
		}
		if v, ok := res.Value(); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

// ProcessAllStrict is ProcessAll that stops at the first fatal error. The
// values collected so far are returned with the error; the item index is
// recorded in the error details.
func (p *Pipeline[S, T]) ProcessAllStrict(ctx context.Context, inputs []S) ([]T, error) {
	var (
		out      []T
		firstErr error
	)
	p.batch(ctx, inputs, func(i int, res Result[T], err error) bool {
		if err != nil {
			if appErr, ok := pkerrors.AsAppError(err); ok {
				appErr.WithDetail("index", i)
			}
			firstErr = fmt.Errorf("item %d: %w", i, err)
			return false
		}
		if v, ok := res.Value(); ok {
			out = append(out, v)
		}
		return true
	})
	return out, firstErr
}

// ProcessAllRaw is ProcessAll keeping every present value, including foreign
// values produced by cancellation.
func (p *Pipeline[S, T]) ProcessAllRaw(ctx context.Context, inputs []S) []any {
	var out []any
	p.batch(ctx, inputs, func(_ int, res Result[T], err error) bool {
		if err != nil {
			return true
		}
		if v, ok := res.Raw().Value(); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

// batch processes inputs in order, passing each result to yield until it
// returns false. Fatal errors are logged and counted before yield sees them.
func (p *Pipeline[S, T]) batch(ctx context.Context, inputs []S, yield func(int, Result[T], error) bool) {
	c := p.seg.chain
	if ctx == nil {
		ctx = context.Background()
	}
	if c.tracing {
		var span trace.Span
		ctx, span = observability.StartSpan(ctx, observability.SpanBatch)
		observability.SetSpanAttribute(ctx, observability.AttrPipeline, c.name)
		observability.SetSpanAttribute(ctx, observability.AttrBatchSize, len(inputs))
		defer span.End()
	}

	for i, input := range inputs {
		res, err := p.Process(ctx, input)
		if err != nil {
			code := string(pkerrors.ErrCodeInternal)
			if appErr, ok := pkerrors.AsAppError(err); ok {
				code = string(appErr.Code)
			}
			if c.metrics != nil {
				c.metrics.RecordBatchSkip(ctx, c.name, code)
			}
			c.log.WithContext(ctx).Warn("batch item failed", map[string]interface{}{
				logger.FieldIndex: i,
				logger.FieldError: err.Error(),
			})
		}
		if !yield(i, res, err) {
			return
		}
	}
}
