package config

import (
	"time"

	"github.com/Kargones/authgate/internal/pkg/metrics"
)

// MetricsConfig содержит настройки для Prometheus метрик.
type MetricsConfig struct {
	// Enabled: включены ли метрики (по умолчанию false).
	Enabled bool `yaml:"enabled" env:"AG_METRICS_ENABLED" env-default:"false"`

	// PushgatewayURL: URL Prometheus Pushgateway; push выполняется при остановке.
	// Пример: "http://pushgateway:9091"
	PushgatewayURL string `yaml:"pushgatewayUrl" env:"AG_METRICS_PUSHGATEWAY_URL"`

	// JobName: имя job для группировки метрик.
	JobName string `yaml:"jobName" env:"AG_METRICS_JOB_NAME" env-default:"authgate"`

	// Timeout: таймаут HTTP запросов к Pushgateway.
	Timeout time.Duration `yaml:"timeout" env:"AG_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel: переопределение instance label.
	// Если пусто: используется hostname.
	InstanceLabel string `yaml:"instanceLabel" env:"AG_METRICS_INSTANCE"`
}

// Validate проверяет секцию через metrics.Config.Validate.
func (m *MetricsConfig) Validate() error {
	c := m.ToMetrics()
	return c.Validate()
}

// ToMetrics переводит секцию в metrics.Config.
func (m *MetricsConfig) ToMetrics() metrics.Config {
	return metrics.Config{
		Enabled:        m.Enabled,
		PushgatewayURL: m.PushgatewayURL,
		JobName:        m.JobName,
		Timeout:        m.Timeout,
		InstanceLabel:  m.InstanceLabel,
	}
}
