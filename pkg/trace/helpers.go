package trace

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/realtime-ai/speech-sdk-go/pkg/common"
	"github.com/realtime-ai/speech-sdk-go/pkg/native"
)

// WithSpan runs fn inside a span named name. An error returned by fn is recorded on
// the span and returned unchanged.
func WithSpan(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()

	err := fn(ctx)
	RecordError(span, err)
	return err
}

// RecordError marks span failed. Binding errors also tag the span with their error
// code and, for native failures, the native status.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	var speechErr *common.Error
	if errors.As(err, &speechErr) {
		span.SetAttributes(attribute.String(AttrErrorCode, speechErr.Code.String()))
		if speechErr.Code == common.ErrCodeNative && speechErr.Status != native.StatusOK {
			span.SetAttributes(attribute.String(AttrNativeStatus, speechErr.Status.String()))
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds an event to a span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceID returns the trace id of the span in ctx, or "" without a sampled span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// Logf logs like log.Printf, prefixed with the trace id of ctx when there is one.
func Logf(ctx context.Context, format string, args ...any) {
	if id := TraceID(ctx); id != "" {
		format = "[trace_id=" + id + "] " + format
	}
	log.Printf(format, args...)
}
