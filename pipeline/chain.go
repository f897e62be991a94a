package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pkerrors "github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

// chain is the state shared by every segment of one pipeline.
type chain struct {
	name         string
	behaviour    CancelBehaviour
	log          *logger.Logger
	metrics      *observability.Metrics
	tracing      bool
	interceptors []Interceptor
	newRunID     func() string
}

func newChain(o *options) *chain {
	return &chain{
		name:         o.name,
		behaviour:    o.behaviour,
		log:          o.log,
		metrics:      o.metrics,
		tracing:      o.tracing,
		interceptors: o.interceptors,
		newRunID:     o.runID,
	}
}

// run is the per-invocation state of one Process call.
type run struct {
	ctx   context.Context
	id    string
	start time.Time
	span  trace.Span
	log   *logger.Logger
}

func (c *chain) begin(ctx context.Context) *run {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{id: c.newRunID(), start: time.Now()}
	if c.tracing {
		ctx, r.span = observability.StartSpan(ctx, observability.SpanProcess)
		observability.SetSpanAttribute(ctx, observability.AttrPipeline, c.name)
		observability.SetSpanAttribute(ctx, observability.AttrRunID, r.id)
	}
	r.ctx = ctx
	r.log = c.log.WithContext(ctx).WithFields(map[string]interface{}{logger.FieldRunID: r.id})
	return r
}

func (c *chain) end(r *run, resolution Resolution, err error) {
	status := resolution.String()
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRun(r.ctx, c.name, status, time.Since(r.start))
	}
	if r.span == nil {
		return
	}
	observability.SetSpanAttribute(r.ctx, observability.AttrResolution, status)
	if err != nil {
		observability.SetSpanError(r.ctx, err)
		if appErr, ok := pkerrors.AsAppError(err); ok {
			observability.SetSpanAttribute(r.ctx, observability.AttrErrorCode, string(appErr.Code))
		}
		r.span.SetStatus(codes.Error, err.Error())
	}
	r.span.End()
}
