package config

import (
	"time"

	"github.com/Kargones/authgate/internal/pkg/telemetry"
)

// TelemetryConfig содержит настройки отправки событий во внешние системы.
type TelemetryConfig struct {
	// Enabled: включена ли telemetry (по умолчанию false).
	Enabled bool `yaml:"enabled" env:"AG_TELEMETRY_ENABLED" env-default:"false"`

	// MinLevel: глобальный минимальный уровень для каналов. Пусто: все уровни.
	MinLevel string `yaml:"minLevel" env:"AG_TELEMETRY_MIN_LEVEL"`

	// DedupeWindow: окно подавления повторных исключений.
	DedupeWindow time.Duration `yaml:"dedupeWindow" env:"AG_TELEMETRY_DEDUPE_WINDOW" env-default:"1m"`

	Fluent   FluentChannelConfig   `yaml:"fluent"`
	Webhook  WebhookChannelConfig  `yaml:"webhook"`
	Telegram TelegramChannelConfig `yaml:"telegram"`
	OTel     OTelChannelConfig     `yaml:"otel"`
}

// FluentChannelConfig: канал fluentd / fluent-bit.
type FluentChannelConfig struct {
	Enabled      bool          `yaml:"enabled" env:"AG_TELEMETRY_FLUENT_ENABLED"`
	Host         string        `yaml:"host" env:"AG_TELEMETRY_FLUENT_HOST"`
	Port         int           `yaml:"port" env:"AG_TELEMETRY_FLUENT_PORT" env-default:"24224"`
	TagPrefix    string        `yaml:"tagPrefix" env:"AG_TELEMETRY_FLUENT_TAG_PREFIX" env-default:"authgate"`
	Async        bool          `yaml:"async" env:"AG_TELEMETRY_FLUENT_ASYNC"`
	Timeout      time.Duration `yaml:"timeout" env:"AG_TELEMETRY_FLUENT_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"AG_TELEMETRY_FLUENT_WRITE_TIMEOUT" env-default:"1s"`
	MaxRetry     int           `yaml:"maxRetry" env:"AG_TELEMETRY_FLUENT_MAX_RETRY" env-default:"2"`
	MinLevel     string        `yaml:"minLevel" env:"AG_TELEMETRY_FLUENT_MIN_LEVEL"`
}

// WebhookChannelConfig: канал HTTP webhook.
type WebhookChannelConfig struct {
	Enabled bool     `yaml:"enabled" env:"AG_TELEMETRY_WEBHOOK_ENABLED"`
	URLs    []string `yaml:"urls" env:"AG_TELEMETRY_WEBHOOK_URLS" env-separator:","`
	// Headers задаются только в YAML: значения обычно содержат токены.
	Headers  map[string]string `yaml:"headers"`
	Timeout  time.Duration     `yaml:"timeout" env:"AG_TELEMETRY_WEBHOOK_TIMEOUT" env-default:"5s"`
	MinLevel string            `yaml:"minLevel" env:"AG_TELEMETRY_WEBHOOK_MIN_LEVEL"`
}

// TelegramChannelConfig: канал Telegram Bot API.
type TelegramChannelConfig struct {
	Enabled  bool          `yaml:"enabled" env:"AG_TELEMETRY_TELEGRAM_ENABLED"`
	BotToken string        `yaml:"botToken" env:"AG_TELEMETRY_TELEGRAM_BOT_TOKEN"`
	ChatIDs  []string      `yaml:"chatIds" env:"AG_TELEMETRY_TELEGRAM_CHAT_IDS" env-separator:","`
	Timeout  time.Duration `yaml:"timeout" env:"AG_TELEMETRY_TELEGRAM_TIMEOUT" env-default:"5s"`
	MinLevel string        `yaml:"minLevel" env:"AG_TELEMETRY_TELEGRAM_MIN_LEVEL" env-default:"error"`
}

// OTelChannelConfig: события в спанах OpenTelemetry.
type OTelChannelConfig struct {
	Enabled    bool   `yaml:"enabled" env:"AG_TELEMETRY_OTEL_ENABLED"`
	TracerName string `yaml:"tracerName" env:"AG_TELEMETRY_OTEL_TRACER_NAME"`
	MinLevel   string `yaml:"minLevel" env:"AG_TELEMETRY_OTEL_MIN_LEVEL"`
}

// Validate проверяет секцию через telemetry.Config.Validate.
func (t *TelemetryConfig) Validate() error {
	c := t.ToTelemetry("", "")
	return c.Validate()
}

// ToTelemetry переводит секцию в telemetry.Config.
func (t *TelemetryConfig) ToTelemetry(environment, release string) telemetry.Config {
	out := telemetry.DefaultConfig()
	out.Enabled = t.Enabled
	out.Environment = environment
	out.Release = release
	out.MinLevel = t.MinLevel
	if t.DedupeWindow != 0 {
		out.DedupeWindow = t.DedupeWindow
	}

	out.Fluent = telemetry.FluentConfig{
		Enabled:      t.Fluent.Enabled,
		Host:         t.Fluent.Host,
		Port:         t.Fluent.Port,
		TagPrefix:    t.Fluent.TagPrefix,
		Async:        t.Fluent.Async,
		Timeout:      t.Fluent.Timeout,
		WriteTimeout: t.Fluent.WriteTimeout,
		MaxRetry:     t.Fluent.MaxRetry,
		MinLevel:     t.Fluent.MinLevel,
	}
	out.Webhook = telemetry.WebhookConfig{
		Enabled:  t.Webhook.Enabled,
		URLs:     t.Webhook.URLs,
		Headers:  t.Webhook.Headers,
		Timeout:  t.Webhook.Timeout,
		MinLevel: t.Webhook.MinLevel,
	}
	out.Telegram = telemetry.TelegramConfig{
		Enabled:  t.Telegram.Enabled,
		BotToken: t.Telegram.BotToken,
		ChatIDs:  t.Telegram.ChatIDs,
		Timeout:  t.Telegram.Timeout,
		MinLevel: t.Telegram.MinLevel,
	}
	out.OTel = telemetry.OTelConfig{
		Enabled:    t.OTel.Enabled,
		TracerName: t.OTel.TracerName,
		MinLevel:   t.OTel.MinLevel,
	}
	return out
}
