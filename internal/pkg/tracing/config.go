package tracing

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/Kargones/authgate/internal/constants"
)

// Ошибки Config.Validate.
var (
	ErrTracingEndpointRequired      = errors.New("tracing: при enabled=true нужен endpoint")
	ErrTracingEndpointInvalidFormat = errors.New("tracing: endpoint должен быть http(s) URL с host, например http://otel-collector:4318")
	ErrTracingServiceNameRequired   = errors.New("tracing: пустой serviceName")
	ErrTracingTimeoutInvalid        = errors.New("tracing: timeout должен быть больше нуля")
	ErrTracingSamplingRateInvalid   = errors.New("tracing: samplingRate вне диапазона [0, 1]")
)

// Config: параметры TracerProvider.
type Config struct {
	Enabled bool

	// Endpoint: OTLP HTTP collector. Путь, если указан, заменяет /v1/traces.
	Endpoint string

	ServiceName string
	Version     string
	Environment string

	// Insecure отключает TLS. Для endpoint со схемой http TLS не используется
	// независимо от флага.
	Insecure bool

	Timeout      time.Duration
	SamplingRate float64
}

// Validate проверяет конфигурацию. Выключенный трейсинг всегда валиден.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrTracingEndpointRequired
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrTracingEndpointInvalidFormat
	}
	if c.ServiceName == "" {
		return ErrTracingServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTracingTimeoutInvalid
	}
	if math.IsNaN(c.SamplingRate) || c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("%w: %g", ErrTracingSamplingRateInvalid, c.SamplingRate)
	}
	return nil
}

// plaintext сообщает, что экспорт идёт без TLS.
func (c *Config) plaintext() bool {
	if c.Insecure {
		return true
	}
	u, err := url.Parse(c.Endpoint)
	return err == nil && u.Scheme == "http"
}

// DefaultConfig возвращает выключенный трейсинг с разумными значениями.
func DefaultConfig() Config {
	return Config{
		ServiceName:  constants.AppName,
		Environment:  constants.ModeDevelopment,
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}
