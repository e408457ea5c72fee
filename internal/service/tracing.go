package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/telemetry"
)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// finish records err on the span and logs the method exit. Domain errors are
// expected outcomes and are logged as rejections; consistency errors and
// anything unclassified are logged as errors.
func finish(span trace.Span, method string, err error, args ...any) {
	defer span.End()
	if err == nil {
		logger.ExitMethod(method, args...)
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var derr *domain.Error
	if errors.As(err, &derr) && derr.Code != domain.CodeConsistency {
		span.SetAttributes(attribute.String("error.code", string(derr.Code)))
		logger.Rejected(method, string(derr.Code), append(args, "reason", derr.Message)...)
		return
	}
	logger.ExitMethodWithError(method, err, args...)
}
