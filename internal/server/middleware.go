package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/apperrors"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/tracing"
)

// traceMiddleware принимает X-Trace-ID клиента, если он валиден, иначе
// генерирует новый. Тот же ID становится OTel trace ID серверного span.
func traceMiddleware(tracer trace.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(constants.HeaderTraceID)
			if !tracing.IsValidTraceID(traceID) {
				traceID = tracing.GenerateTraceID()
			}
			w.Header().Set(constants.HeaderTraceID, traceID)

			ctx := tracing.WithTraceID(r.Context(), traceID)
			ctx = tracing.ContextWithOTelTraceID(ctx, traceID)
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				))
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			if route := chi.RouteContext(r.Context()); route != nil && route.RoutePattern() != "" {
				span.SetName(r.Method + " " + route.RoutePattern())
			}
		})
	}
}

// recoverMiddleware переводит panic обработчика в OpaqueFailure, пишет её
// на уровне ERROR и отвечает общим сообщением с кодом 500.
func recoverMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel сравнивается напрямую, как в net/http
					panic(rec)
				}
				failure := apperrors.NewOpaqueFailure(apperrors.ErrHTTPPanic, "panic в обработчике", apperrors.Capture(rec))
				logger.WithContext(r.Context()).Error("Panic в обработчике HTTP", logging.Fields{
					"method":   r.Method,
					"path":     r.URL.Path,
					"trace_id": tracing.TraceIDFromContext(r.Context()),
				}, failure)
				writeJSON(w, http.StatusInternalServerError, errorBody{Success: false, Error: apperrors.UserMessage(failure)})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogMiddleware пишет каждый запрос на уровне DEBUG.
func requestLogMiddleware(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP запрос", logging.Fields{
				"method":        r.Method,
				"path":          r.URL.Path,
				"status":        ww.Status(),
				"bytes_written": ww.BytesWritten(),
				"duration_ms":   time.Since(start).Milliseconds(),
				"trace_id":      tracing.TraceIDFromContext(r.Context()),
			})
		})
	}
}
