package metrics

import (
	"errors"
	"net/url"
	"time"

	"github.com/Kargones/authgate/internal/constants"
)

// Ошибки Config.Validate.
var (
	ErrJobNameRequired       = errors.New("metrics: для push в Pushgateway нужен jobName")
	ErrInvalidTimeout        = errors.New("metrics: timeout должен быть больше нуля")
	ErrPushgatewayURLInvalid = errors.New("metrics: pushgatewayUrl должен быть абсолютным URL")
)

// Config: настройки Prometheus. Scrape через /metrics доступен всегда,
// когда Enabled; push в Pushgateway выполняется только при заданном URL.
type Config struct {
	Enabled bool

	// PushgatewayURL, например "http://pushgateway:9091". Push выполняется
	// один раз при остановке сервера.
	PushgatewayURL string
	JobName        string
	Timeout        time.Duration

	// InstanceLabel заменяет hostname в grouping key.
	InstanceLabel string
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.PushgatewayURL != "" {
		u, err := url.Parse(c.PushgatewayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ErrPushgatewayURLInvalid
		}
		if c.JobName == "" {
			return ErrJobNameRequired
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// DefaultConfig возвращает выключенные метрики с job по имени приложения.
func DefaultConfig() Config {
	return Config{
		JobName: constants.AppName,
		Timeout: 10 * time.Second,
	}
}
