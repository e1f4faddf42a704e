package tracing

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// TracerName: имя tracer для HTTP слоя и сервиса аутентификации.
const TracerName = "github.com/Kargones/authgate"

// NewTracerProvider регистрирует глобальный TracerProvider с OTLP/HTTP
// экспортом и W3C propagator. Выключенный трейсинг даёт nop ShutdownFunc,
// глобальный провайдер в этом случае не меняется.
func NewTracerProvider(cfg Config, logger logging.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		logger.Debug("Трейсинг выключен", nil)
		return NewNopTracerProvider(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing: resource: %w", err)
	}

	exporter, err := otlptracehttp.New(context.Background(), exporterOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("tracing: exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRate)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("Трейсинг включён", logging.Fields{
		"endpoint":      cfg.Endpoint,
		"service_name":  cfg.ServiceName,
		"environment":   cfg.Environment,
		"sampling_rate": cfg.SamplingRate,
	})
	return tp.Shutdown, nil
}

// newResource описывает сервис. Атрибуты собираются без schema URL:
// resource.Default() может использовать другую версию semconv.
func newResource(cfg Config) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
}

// exporterOptions раскладывает Endpoint на host:port и путь:
// otlptracehttp принимает их отдельными опциями.
func exporterOptions(cfg Config) []otlptracehttp.Option {
	host, path := cfg.Endpoint, ""
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		host = u.Host
		if u.Path != "/" {
			path = u.Path
		}
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(host),
		otlptracehttp.WithTimeout(cfg.Timeout),
	}
	if path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(path))
	}
	if cfg.plaintext() {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// Tracer возвращает tracer приложения из глобального провайдера.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// newSampler: корневые span-ы и span-ы с remote parent сэмплируются по
// rate (ContextWithOTelTraceID помечает каждый запрос как sampled),
// локальные потомки наследуют решение родителя.
func newSampler(rate float64) sdktrace.Sampler {
	ratio := sdktrace.TraceIDRatioBased(rate)
	return sdktrace.ParentBased(ratio, sdktrace.WithRemoteParentSampled(ratio))
}
