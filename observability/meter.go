package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/pipekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline metric instruments.
type Metrics struct {
	runTotal      metric.Int64Counter
	runDuration   metric.Float64Histogram
	pipeTotal     metric.Int64Counter
	pipeDuration  metric.Float64Histogram
	pipeFailures  metric.Int64Counter
	cancellations metric.Int64Counter
	batchSkipped  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("pipeline.runs",
		metric.WithDescription("Total number of pipeline runs by resolution"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("pipeline.run.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.run.duration histogram: %w", err)
	}

	pipeTotal, err := meter.Int64Counter("pipeline.pipe.calls",
		metric.WithDescription("Total number of pipe invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.pipe.calls counter: %w", err)
	}

	pipeDuration, err := meter.Float64Histogram("pipeline.pipe.duration",
		metric.WithDescription("Duration of pipe invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.pipe.duration histogram: %w", err)
	}

	pipeFailures, err := meter.Int64Counter("pipeline.pipe.failures",
		metric.WithDescription("Pipe failures recovered into the outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.pipe.failures counter: %w", err)
	}

	cancellations, err := meter.Int64Counter("pipeline.cancellations",
		metric.WithDescription("Cancellations by resolved cancel behaviour"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.cancellations counter: %w", err)
	}

	batchSkipped, err := meter.Int64Counter("pipeline.batch.skipped",
		metric.WithDescription("Batch items skipped because of a fatal error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.batch.skipped counter: %w", err)
	}

	return &Metrics{
		runTotal:      runTotal,
		runDuration:   runDuration,
		pipeTotal:     pipeTotal,
		pipeDuration:  pipeDuration,
		pipeFailures:  pipeFailures,
		cancellations: cancellations,
		batchSkipped:  batchSkipped,
	}, nil
}

// RecordRun records a finished pipeline run.
func (m *Metrics) RecordRun(ctx context.Context, pipeline, resolution string, duration time.Duration) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrResolution, resolution),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
	))
}

// RecordPipe records a single pipe invocation.
func (m *Metrics) RecordPipe(ctx context.Context, pipeline, pipe, status string, duration time.Duration) {
	m.pipeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrPipe, pipe),
		attribute.String(AttrStatus, status),
	))
	m.pipeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrPipe, pipe),
	))
}

// RecordPipeFailure records a pipe failure folded into the outcome.
func (m *Metrics) RecordPipeFailure(ctx context.Context, pipeline, pipe string) {
	m.pipeFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrPipe, pipe),
	))
}

// RecordCancellation records a resolved cancellation.
func (m *Metrics) RecordCancellation(ctx context.Context, pipeline, behaviour string) {
	m.cancellations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrBehaviour, behaviour),
	))
}

// RecordBatchSkip records a batch item dropped because of a fatal error.
func (m *Metrics) RecordBatchSkip(ctx context.Context, pipeline, code string) {
	m.batchSkipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPipeline, pipeline),
		attribute.String(AttrErrorCode, code),
	))
}
