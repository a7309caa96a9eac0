package presentationservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/elo-bot/app/shared/attr"
	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// instrumentation is the telemetry shared by the provisioner and reconciler.
type instrumentation struct {
	service string
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer
}

func newInstrumentation(service string, logger *slog.Logger, metrics observability.OperationMetrics, tracer trace.Tracer) instrumentation {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return instrumentation{service: service, logger: logger, metrics: metrics, tracer: tracer}
}

// withTelemetry wraps an operation with a span, metrics and panic recovery.
func withTelemetry[T any](
	in instrumentation,
	ctx context.Context,
	operationName string,
	attrs []attribute.KeyValue,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if in.tracer != nil {
		ctx, span = in.tracer.Start(ctx, operationName, trace.WithAttributes(attrs...))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	in.metrics.RecordOperationAttempt(ctx, operationName, in.service)
	startTime := time.Now()
	defer func() {
		in.metrics.RecordOperationDuration(ctx, operationName, in.service, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			in.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operationName),
				attr.Error(err),
			)
			in.metrics.RecordOperationFailure(ctx, operationName, in.service)
			span.RecordError(err)
		}
	}()

	result, err = op(ctx)
	if err != nil {
		in.metrics.RecordOperationFailure(ctx, operationName, in.service)
		span.RecordError(err)
		return result, err
	}

	in.metrics.RecordOperationSuccess(ctx, operationName, in.service)
	return result, nil
}
