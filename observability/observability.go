// Package observability provides the OpenTelemetry instruments recorded
// around engine operations: one span per operation plus an operation
// counter and a duration histogram. Only the OTel API is used; when no
// providers are installed the instruments are noops and instrumentation
// becomes a pass-through.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope for all fieldops telemetry.
const ScopeName = "github.com/fieldops-hq/fieldops"

// Instruments bundles the tracer and metric instruments for engine
// operations. Safe for concurrent use.
type Instruments struct {
	tracer     trace.Tracer
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// New creates Instruments from the given providers. Nil providers fall
// back to the globals, which default to noops.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Instruments {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(ScopeName)

	operations, err := meter.Int64Counter(
		"fieldops.operations",
		metric.WithDescription("Total engine operations"),
		metric.WithUnit("{operation}"),
	)
	_ = err // noop fallback guaranteed by the OTel API contract

	duration, err := meter.Float64Histogram(
		"fieldops.operation.duration",
		metric.WithDescription("Engine operation duration in seconds"),
		metric.WithUnit("s"),
	)
	_ = err // noop fallback guaranteed by the OTel API contract

	return &Instruments{
		tracer:     tp.Tracer(ScopeName),
		operations: operations,
		duration:   duration,
	}
}

// Start opens a span for op and returns the derived context plus a finish
// function that records the outcome. Call finish exactly once with the
// operation's error.
func (in *Instruments) Start(ctx context.Context, op string) (context.Context, func(err error)) {
	ctx, span := in.tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindInternal))
	begin := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(begin).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		attrs := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("status", status),
		)
		in.operations.Add(ctx, 1, attrs)
		in.duration.Record(ctx, elapsed, attrs)
	}
}
