// Package config загружает конфигурацию authgate.
//
// Источники в порядке приоритета (последний побеждает):
//  1. значения по умолчанию (env-default);
//  2. YAML файл из AG_CONFIG_FILE (необязателен);
//  3. переменные окружения AG_*, в том числе из файла .env.
package config

import (
	"strings"

	"github.com/Kargones/authgate/internal/constants"
)

// Config: корневая конфигурация приложения.
type Config struct {
	// Mode: режим развёртывания: "production" или любой другой (development).
	// В production логгер пишет INFO и выше, иначе DEBUG и выше.
	Mode string `yaml:"mode" env:"AG_ENV" env-default:"development"`

	// Release: версия, добавляемая в события telemetry и resource attributes.
	// Пустое значение заменяется constants.Version.
	Release string `yaml:"release" env:"AG_RELEASE"`

	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
}

// IsProduction сообщает, что приложение запущено в production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), constants.ModeProduction)
}

// ReleaseOrVersion возвращает Release или версию сборки.
func (c *Config) ReleaseOrVersion() string {
	if c.Release != "" {
		return c.Release
	}
	return constants.Version
}

// Validate проверяет все секции. Возвращает первую найденную ошибку.
func (c *Config) Validate() error {
	validators := []func() error{
		c.Logging.Validate,
		c.Telemetry.Validate,
		c.Tracing.Validate,
		c.Metrics.Validate,
		c.Server.Validate,
		c.Store.Validate,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}
