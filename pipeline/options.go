package pipeline

import (
	"github.com/google/uuid"

	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

const defaultName = "pipeline"

// Option configures a Pipeline created by New.
type Option func(*options)

type options struct {
	name         string
	behaviour    CancelBehaviour
	cancellable  bool
	log          *logger.Logger
	metrics      *observability.Metrics
	tracing      bool
	interceptors []Interceptor
	runID        func() string
}

// WithName sets the pipeline name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithCancelBehaviour sets the initial cancel behaviour.
func WithCancelBehaviour(b CancelBehaviour) Option {
	return func(o *options) { o.behaviour = b }
}

// WithCancellable sets the cancellable flag of the source segment.
func WithCancellable(cancellable bool) Option {
	return func(o *options) { o.cancellable = cancellable }
}

// WithLogger sets the logger. Defaults to the registered "pipeline" logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics records run, pipe and cancellation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracing creates a span per run and per pipe invocation.
func WithTracing() Option {
	return func(o *options) { o.tracing = true }
}

// WithInterceptors wraps every pipe invocation. They run outside any
// interceptors attached with Pipe.With.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, interceptors...) }
}

// WithRunIDFunc replaces the run ID generator.
func WithRunIDFunc(fn func() string) Option {
	return func(o *options) { o.runID = fn }
}

func buildOptions(opts []Option) *options {
	o := &options{
		name:  defaultName,
		runID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get(defaultName)
	}
	o.log = o.log.WithFields(map[string]interface{}{logger.FieldPipeline: o.name})

	var builtin []Interceptor
	if o.tracing {
		builtin = append(builtin, TracingInterceptor(""))
	}
	if o.metrics != nil {
		builtin = append(builtin, MetricsInterceptor(o.metrics))
	}
	o.interceptors = append(builtin, o.interceptors...)
	return o
}
