package telemetry

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// OTelSink пишет события как span events OpenTelemetry.
// Если в ctx есть записывающий span, событие добавляется к нему;
// иначе создаётся короткий самостоятельный span "telemetry.<level>".
type OTelSink struct {
	tracer trace.Tracer
	origin Origin
}

// NewOTelSink создаёт OTelSink поверх tracer.
func NewOTelSink(tracer trace.Tracer, origin Origin) *OTelSink {
	return &OTelSink{tracer: tracer, origin: origin}
}

// Record добавляет событие "log.<level>" с полями как атрибутами.
func (o *OTelSink) Record(ctx context.Context, ev logging.TelemetryEvent) error {
	attrs := append(o.originAttrs(),
		attribute.String("log.severity", string(ev.Level)),
		attribute.String("log.message", ev.Message),
	)
	attrs = append(attrs, fieldAttrs("log.context.", ev.Fields)...)

	span, end := o.span(ctx, "telemetry."+string(ev.Level))
	defer end()

	span.AddEvent("log."+string(ev.Level), trace.WithAttributes(attrs...), trace.WithTimestamp(ev.Timestamp))
	if ev.Level.AtLeast(logging.LevelError) {
		span.SetStatus(codes.Error, ev.Message)
	}
	return nil
}

// CaptureException записывает ошибку в span и помечает его статусом Error.
func (o *OTelSink) CaptureException(ctx context.Context, err error, extra logging.Fields) error {
	attrs := o.originAttrs()
	attrs = append(attrs, fieldAttrs("exception.extra.", extra)...)
	if stack := logging.StackOf(err); stack != "" {
		attrs = append(attrs, attribute.String("exception.stacktrace", stack))
	}

	span, end := o.span(ctx, "telemetry.exception")
	defer end()

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, logging.ErrorText(err))
	return nil
}

// span возвращает текущий span из ctx или новый, который закрывает end.
func (o *OTelSink) span(ctx context.Context, name string) (trace.Span, func()) {
	if current := trace.SpanFromContext(ctx); current.IsRecording() {
		return current, func() {}
	}
	_, span := o.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return span, func() { span.End() }
}

func (o *OTelSink) originAttrs() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("telemetry.source", source)}
	if o.origin.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", o.origin.Environment))
	}
	if o.origin.Release != "" {
		attrs = append(attrs, attribute.String("service.version", o.origin.Release))
	}
	return attrs
}

// fieldAttrs переводит поля в строковые атрибуты в порядке ключей.
func fieldAttrs(prefix string, fields logging.Fields) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attribute.String(prefix+k, fmt.Sprint(fields[k])))
	}
	return attrs
}
