package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

// PipeCall describes the pipe invocation an Interceptor wraps.
type PipeCall struct {
	Pipeline string
	Pipe     string
	Kind     Kind
	Segment  int
	RunID    string
}

// Interceptor wraps a single pipe invocation. It must call next exactly once
// and should return its error. An interceptor that returns nil does not hide
// the pipe failure; the engine still folds the body's error into the outcome.
// Returning without calling next fails the pipe with ErrNotInvoked and keeps
// the current value.
type Interceptor func(ctx context.Context, call PipeCall, next func(context.Context) error) error

// chainInterceptors composes interceptor lists around body. The first
// interceptor of the first list is the outermost.
func chainInterceptors(call PipeCall, body func(context.Context) error, lists ...[]Interceptor) func(context.Context) error {
	next := body
	for i := len(lists) - 1; i >= 0; i-- {
		for j := len(lists[i]) - 1; j >= 0; j-- {
			ic, inner := lists[i][j], next
			next = func(ctx context.Context) error {
				return ic(ctx, call, inner)
			}
		}
	}
	return next
}

// TracingInterceptor creates a span named "{prefix}.{pipe}" around each pipe
// invocation. An empty prefix uses "pipeline.pipe".
func TracingInterceptor(prefix string) Interceptor {
	if prefix == "" {
		prefix = observability.SpanPipe
	}
	return func(ctx context.Context, call PipeCall, next func(context.Context) error) error {
		ctx, span := observability.StartSpan(ctx, prefix+"."+call.Pipe)
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrPipeline, call.Pipeline)
		observability.SetSpanAttribute(ctx, observability.AttrPipe, call.Pipe)
		observability.SetSpanAttribute(ctx, observability.AttrPipeKind, call.Kind)
		observability.SetSpanAttribute(ctx, observability.AttrRunID, call.RunID)

		err := next(ctx)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return err
	}
}

// MetricsInterceptor records call count and duration per pipe.
func MetricsInterceptor(metrics *observability.Metrics) Interceptor {
	return func(ctx context.Context, call PipeCall, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordPipe(ctx, call.Pipeline, call.Pipe, status, time.Since(start))
		return err
	}
}

// LoggingInterceptor logs every pipe invocation at debug level.
func LoggingInterceptor(log *logger.Logger) Interceptor {
	return func(ctx context.Context, call PipeCall, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)

		fields := map[string]interface{}{
			logger.FieldPipeline: call.Pipeline,
			logger.FieldPipe:     call.Pipe,
			logger.FieldPipeKind: call.Kind.String(),
			logger.FieldRunID:    call.RunID,
			logger.FieldDuration: time.Since(start).Milliseconds(),
		}
		if err != nil {
			fields[logger.FieldError] = err.Error()
			log.WithContext(ctx).Debug("pipe failed", fields)
		} else {
			log.WithContext(ctx).Debug("pipe completed", fields)
		}
		return err
	}
}
