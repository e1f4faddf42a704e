package config

import (
	"time"

	"github.com/Kargones/authgate/internal/pkg/tracing"
)

// TracingConfig содержит настройки OpenTelemetry трейсинга.
type TracingConfig struct {
	// Enabled включает отправку трейсов в OTLP бэкенд.
	Enabled bool `yaml:"enabled" env:"AG_TRACING_ENABLED" env-default:"false"`

	// Endpoint: URL OTLP HTTP endpoint (например, http://otel-collector:4318).
	Endpoint string `yaml:"endpoint" env:"AG_TRACING_ENDPOINT"`

	// ServiceName: имя сервиса для resource attributes.
	ServiceName string `yaml:"serviceName" env:"AG_TRACING_SERVICE_NAME" env-default:"authgate"`

	// Insecure: использовать HTTP вместо HTTPS для OTLP endpoint.
	Insecure bool `yaml:"insecure" env:"AG_TRACING_INSECURE"`

	// Timeout: таймаут для экспорта трейсов.
	Timeout time.Duration `yaml:"timeout" env:"AG_TRACING_TIMEOUT" env-default:"5s"`

	// SamplingRate: доля сэмплируемых трейсов (0.0 = ни один, 1.0 = все).
	// Значение 0 из YAML заменяется env-default; чтобы не сэмплировать, выключите трейсинг.
	SamplingRate float64 `yaml:"samplingRate" env:"AG_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// Validate проверяет секцию через tracing.Config.Validate.
func (t *TracingConfig) Validate() error {
	c := t.ToTracing("", "")
	return c.Validate()
}

// ToTracing переводит секцию в tracing.Config.
func (t *TracingConfig) ToTracing(environment, version string) tracing.Config {
	return tracing.Config{
		Enabled:      t.Enabled,
		Endpoint:     t.Endpoint,
		ServiceName:  t.ServiceName,
		Version:      version,
		Environment:  environment,
		Insecure:     t.Insecure,
		Timeout:      t.Timeout,
		SamplingRate: t.SamplingRate,
	}
}
