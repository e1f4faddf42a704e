package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

func newTestOTelSink(t *testing.T) (*OTelSink, *tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOTelSink(tp.Tracer("test"), Origin{Environment: "prod"}), recorder, tp
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestOTelSink_Record_StandaloneSpan(t *testing.T) {
	sink, recorder, _ := newTestOTelSink(t)

	err := sink.Record(context.Background(), logging.TelemetryEvent{
		Level:     logging.LevelWarn,
		Message:   "slow query",
		Fields:    logging.Fields{"ms": 1200},
		Timestamp: testTime,
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "telemetry.warn", spans[0].Name())

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log.warn", events[0].Name)
	assert.True(t, events[0].Time.Equal(testTime))

	msg, ok := attrValue(events[0].Attributes, "log.message")
	require.True(t, ok)
	assert.Equal(t, "slow query", msg)
	ms, ok := attrValue(events[0].Attributes, "log.context.ms")
	require.True(t, ok)
	assert.Equal(t, "1200", ms)
	env, _ := attrValue(events[0].Attributes, "deployment.environment")
	assert.Equal(t, "prod", env)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestOTelSink_Record_AttachesToActiveSpan(t *testing.T) {
	sink, recorder, tp := newTestOTelSink(t)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "POST /api/auth/sign-in")
	require.NoError(t, sink.Record(ctx, logging.TelemetryEvent{Level: logging.LevelError, Message: "failed"}))
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /api/auth/sign-in", spans[0].Name())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "log.error", spans[0].Events()[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestOTelSink_CaptureException(t *testing.T) {
	sink, recorder, _ := newTestOTelSink(t)

	err := sink.CaptureException(context.Background(), &stackErr{msg: "db down"}, logging.Fields{"action": "signUp"})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "telemetry.exception", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "db down", spans[0].Status().Description)

	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "exception", events[0].Name)
	stack, ok := attrValue(events[0].Attributes, "exception.stacktrace")
	require.True(t, ok)
	assert.Equal(t, "main.go:42", stack)
	action, _ := attrValue(events[0].Attributes, "exception.extra.action")
	assert.Equal(t, "signUp", action)
}

func TestFieldAttrs_Sorted(t *testing.T) {
	attrs := fieldAttrs("p.", logging.Fields{"b": 2, "a": errors.New("x")})
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("p.a"), attrs[0].Key)
	assert.Equal(t, "x", attrs[0].Value.AsString())
	assert.Nil(t, fieldAttrs("p.", nil))
}
