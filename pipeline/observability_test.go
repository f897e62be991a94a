package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
)

func TestInterceptorOrder(t *testing.T) {
	var order []string
	record := func(name string) Interceptor {
		return func(ctx context.Context, call PipeCall, next func(context.Context) error) error {
			order = append(order, name+">"+call.Pipe)
			err := next(ctx)
			order = append(order, name+"<"+call.Pipe)
			return err
		}
	}

	p := newTestPipeline[int](WithInterceptors(record("outer"), record("inner")))
	mustAdd(t, p, add(1).With(record("pipe")))

	if got := processValue(t, p, 1); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	want := []string{"outer>add1", "inner>add1", "pipe>add1", "pipe<add1", "inner<add1", "outer<add1"}
	if !equalSlices(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestInterceptorSeesPipeError(t *testing.T) {
	var seen error
	p := newTestPipeline[int](WithInterceptors(func(ctx context.Context, _ PipeCall, next func(context.Context) error) error {
		seen = next(ctx)
		return nil
	}))
	mustAdd(t, p, invert())

	res, err := p.Process(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil {
		t.Error("expected interceptor to observe the pipe error")
	}
	if !res.DidFail() {
		t.Error("expected pipe error folded into the outcome even when the interceptor swallows it")
	}
}

func TestInterceptorError(t *testing.T) {
	denied := errors.New("denied")
	p := newTestPipeline[int](WithInterceptors(func(context.Context, PipeCall, func(context.Context) error) error {
		return denied
	}))
	mustAdd(t, p, add(1))

	res, err := p.Process(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(res.Err(), denied) {
		t.Errorf("expected interceptor error carried, got %v", res.Err())
	}
	if v, _ := res.Value(); v != 1 {
		t.Errorf("expected retained value 1, got %d", v)
	}
}

func TestInterceptorSkippingNextKeepsValue(t *testing.T) {
	bodyRan := false
	p := newTestPipeline[int](WithInterceptors(func(context.Context, PipeCall, func(context.Context) error) error {
		return nil
	}))
	mustAdd(t, p, ValueOnly("add1", func(v int) (int, error) {
		bodyRan = true
		return v + 1, nil
	}))

	res, err := p.Process(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bodyRan {
		t.Error("expected pipe body not to run")
	}
	if v, ok := res.Value(); !ok || v != 5 {
		t.Errorf("expected value 5 kept, got %v (present=%v)", v, ok)
	}
	if !errors.Is(res.Err(), ErrNotInvoked) {
		t.Errorf("expected ErrNotInvoked carried, got %v", res.Err())
	}
	if res.Outcome().State() != StatePartialFailure {
		t.Errorf("expected partial failure, got %s", res.Outcome().State())
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")

	p := newTestPipeline[int](WithName("orders"), WithInterceptors(LoggingInterceptor(log)))
	mustAdd(t, p, add(1), invert())
	_, _ = p.Process(context.Background(), -1)

	out := buf.String()
	if !strings.Contains(out, `"pipe completed"`) || !strings.Contains(out, `"pipe failed"`) {
		t.Errorf("expected completed and failed entries, got %s", out)
	}
	if !strings.Contains(out, `"pipeline":"orders"`) {
		t.Errorf("expected pipeline field, got %s", out)
	}
}

func TestEngineLogsCancellation(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")

	p := New[int](WithLogger(log), WithName("orders"), WithCancellable(true), WithCancelBehaviour(Discard),
		WithRunIDFunc(func() string { return "run-1" }))
	mustAdd(t, p, cancelBelow(1))
	_, _ = p.Process(context.Background(), 0)

	out := buf.String()
	for _, want := range []string{`"pipeline cancelled"`, `"cancel_behaviour":"discard"`, `"run_id":"run-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log, got %s", want, out)
		}
	}
}

func TestBatchLogsSkippedItems(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "warn", Format: "json"}, "test")

	p := New[string](WithLogger(log))
	n := TryConvertTo(p, strconv.Atoi)
	_ = n.ProcessAll(context.Background(), []string{"1", "x"})

	out := buf.String()
	if !strings.Contains(out, `"batch item failed"`) || !strings.Contains(out, `"index":1`) {
		t.Errorf("expected warning for item 1, got %s", out)
	}
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	p := newTestPipeline[string](WithName("orders"), WithTracing())
	n := TryConvertTo(p, strconv.Atoi)
	mustAdd(t, n, mul(2))

	_ = n.ProcessAll(context.Background(), []string{"1", "x"})

	counts := map[string]int{}
	var failed int
	for _, s := range recorder.Ended() {
		counts[s.Name()]++
		if s.Name() == observability.SpanProcess && s.Status().Code == codes.Error {
			failed++
		}
	}
	if counts[observability.SpanBatch] != 1 {
		t.Errorf("expected 1 batch span, got %d", counts[observability.SpanBatch])
	}
	if counts[observability.SpanProcess] != 2 {
		t.Errorf("expected 2 run spans, got %d", counts[observability.SpanProcess])
	}
	if counts[observability.SpanPipe+".mul2"] != 1 {
		t.Errorf("expected 1 pipe span, got %v", counts)
	}
	if failed != 1 {
		t.Errorf("expected 1 failed run span, got %d", failed)
	}
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	p := newTestPipeline[int](WithName("orders"), WithMetrics(metrics), WithCancellable(true), WithCancelBehaviour(Discard))
	mustAdd(t, p,
		ValueOnly("non-zero", func(v int) (int, error) {
			if v == 0 {
				return 0, errors.New("zero")
			}
			return v, nil
		}),
		cancelBelow(1),
	)
	s := TryConvertTo(p, func(v int) (string, error) {
		if v > 100 {
			return "", errors.New("too large")
		}
		return strconv.Itoa(v), nil
	})

	_ = s.ProcessAll(context.Background(), []int{0, 5, 200})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}

	expected := map[string]int64{
		"pipeline.runs":          3,
		"pipeline.pipe.calls":    6,
		"pipeline.pipe.failures": 1,
		"pipeline.cancellations": 1,
		"pipeline.batch.skipped": 1,
	}
	for name, want := range expected {
		if totals[name] != want {
			t.Errorf("%s: expected %d, got %d", name, want, totals[name])
		}
	}
}
