// Package tracing настраивает OpenTelemetry и работает с trace ID запроса.
//
// Trace ID: 16 байт в виде 32 hex символов в нижнем регистре, как в W3C
// Trace Context. Один и тот же ID попадает в заголовок X-Trace-ID, в записи
// лога и в OTel span-ы запроса.
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// fallbackSeq различает ID, созданные в одну наносекунду.
var fallbackSeq atomic.Uint64

// GenerateTraceID возвращает новый случайный trace ID.
func GenerateTraceID() string {
	var id trace.TraceID
	if _, err := rand.Read(id[:]); err != nil || !id.IsValid() {
		return fallbackTraceID()
	}
	return id.String()
}

// fallbackTraceID строится из времени и счётчика, если crypto/rand недоступен.
func fallbackTraceID() string {
	var id trace.TraceID
	binary.BigEndian.PutUint64(id[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(id[8:], fallbackSeq.Add(1))
	return id.String()
}

// IsValidTraceID принимает только ID, который OTel может разобрать:
// 32 hex символа в нижнем регистре, не все нули.
func IsValidTraceID(id string) bool {
	_, err := trace.TraceIDFromHex(id)
	return err == nil
}

// ContextWithOTelTraceID кладёт в ctx remote span context с trace ID
// traceIDHex, чтобы span-ы запроса получили тот же ID, что и лог.
// Невалидный ID оставляет ctx без изменений.
//
// SDK продолжает трейс только при валидном parent, поэтому span ID
// родителя генерируется случайно.
func ContextWithOTelTraceID(ctx context.Context, traceIDHex string) context.Context {
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return ctx
	}
	var spanID trace.SpanID
	if _, err := rand.Read(spanID[:]); err != nil || !spanID.IsValid() {
		binary.BigEndian.PutUint64(spanID[:], fallbackSeq.Add(1))
	}
	return trace.ContextWithRemoteSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
}
