package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type traceIDKey struct{}

// WithTraceID сохраняет trace ID запроса в ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext возвращает trace ID запроса. Если он не сохранён через
// WithTraceID, используется trace ID активного OTel span. Для nil ctx и
// контекста без трейса возвращает "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
