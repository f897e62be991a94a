// Package observability provides OpenTelemetry tracing and metrics for pipekit.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("pipekit"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanProcess)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("pipekit"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("pipekit"))
//	metrics.RecordRun(ctx, "orders", "completed", duration)
//
// Setup wires both from a Config section and returns a single shutdown func.
package observability
