package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/microcred/internal/domain/model"
)

const instrumentationName = "github.com/bibbank/microcred/internal/application/usecase"

// telemetry records RED metrics and a span for every use case run. The
// instruments are taken from the global providers, so they are no-ops until
// observability.InitMetrics and InitTracer have run.
type telemetry struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry() *telemetry {
	meter := otel.Meter(instrumentationName)
	t := &telemetry{tracer: otel.Tracer(instrumentationName)}

	// Instruments that fail to register stay nil and are skipped.
	t.requests, _ = meter.Int64Counter("microcred.usecase.requests",
		metric.WithDescription("Use case invocations"),
		metric.WithUnit("{request}"),
	)
	t.failures, _ = meter.Int64Counter("microcred.usecase.errors",
		metric.WithDescription("Use case invocations that returned an error"),
		metric.WithUnit("{error}"),
	)
	t.duration, _ = meter.Float64Histogram("microcred.usecase.duration",
		metric.WithDescription("Use case duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	return t
}

// track starts a span for operation and returns the function that ends it.
func (t *telemetry) track(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	ctx, span := t.tracer.Start(ctx, "usecase."+operation, trace.WithSpanKind(trace.SpanKindInternal))
	if t.requests != nil {
		t.requests.Add(ctx, 1, attrs)
	}

	return ctx, func(err error) {
		if t.duration != nil {
			t.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if t.failures != nil {
				t.failures.Add(ctx, 1, metric.WithAttributes(
					attribute.String("operation", operation),
					attribute.String("error.kind", errorKind(err)),
				))
			}
		}
		span.End()
	}
}

// errorKind buckets errors into a small label set.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrLoanNotFound),
		errors.Is(err, model.ErrClientNotFound),
		errors.Is(err, model.ErrPaymentNotFound):
		return "not_found"
	case errors.Is(err, model.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, model.ErrInvalidPaymentAmount),
		errors.Is(err, model.ErrInterestAmountMismatch),
		errors.Is(err, model.ErrInvalidPaymentMethod),
		errors.Is(err, model.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, model.ErrLoanAlreadyPaid),
		errors.Is(err, model.ErrReversalOutOfOrder),
		errors.Is(err, model.ErrPaymentAlreadyReversed),
		errors.Is(err, model.ErrLoanHasPayments):
		return "precondition"
	default:
		return "internal"
	}
}
