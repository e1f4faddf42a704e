// Package telemetry содержит реализации logging.TelemetrySink: fluentd,
// HTTP webhook, Telegram и OpenTelemetry, а также fan-out по каналам.
package telemetry

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// Имена каналов.
const (
	ChannelFluent   = "fluent"
	ChannelOTel     = "otel"
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"
)

// Значения по умолчанию.
const (
	// DefaultDedupeWindow: интервал, в течение которого одинаковые исключения
	// отправляются только один раз.
	DefaultDedupeWindow = time.Minute

	DefaultFluentPort         = 24224
	DefaultFluentTagPrefix    = "authgate"
	DefaultFluentTimeout      = 3 * time.Second
	DefaultFluentWriteTimeout = time.Second
	DefaultFluentMaxRetry     = 2

	// DefaultWebhookTimeout: таймаут HTTP запросов по умолчанию.
	DefaultWebhookTimeout = 5 * time.Second

	// DefaultTelegramTimeout: таймаут Telegram API по умолчанию.
	DefaultTelegramTimeout = 5 * time.Second

	// DefaultTelegramMinLevel: Telegram получает только ошибки и fatal.
	DefaultTelegramMinLevel = "error"

	// DefaultOTelTracerName: имя tracer для событий telemetry.
	DefaultOTelTracerName = "github.com/Kargones/authgate/telemetry"
)

// Config содержит настройки telemetry.
type Config struct {
	// Enabled: включена ли отправка во внешние системы (по умолчанию false).
	Enabled bool

	// Environment: имя окружения, добавляется в каждое событие.
	Environment string

	// Release: версия приложения, добавляется в каждое событие.
	Release string

	// MinLevel: глобальный минимальный уровень для всех каналов.
	// Пустое значение означает "trace": каналы получают всё, что прошло фильтр логгера.
	MinLevel string

	// DedupeWindow: окно подавления повторных исключений.
	// По умолчанию: 1 минута. Отрицательное значение отключает подавление.
	DedupeWindow time.Duration

	Fluent   FluentConfig
	Webhook  WebhookConfig
	Telegram TelegramConfig
	OTel     OTelConfig
}

// FluentConfig: канал fluentd / fluent-bit (forward protocol).
type FluentConfig struct {
	Enabled      bool
	Host         string
	Port         int
	TagPrefix    string
	Async        bool
	Timeout      time.Duration
	WriteTimeout time.Duration
	MaxRetry     int
	// MinLevel переопределяет глобальный MinLevel для канала.
	MinLevel string
}

// WebhookConfig: канал HTTP webhook (JSON POST на каждый URL).
type WebhookConfig struct {
	Enabled  bool
	URLs     []string
	Headers  map[string]string
	Timeout  time.Duration
	MinLevel string
}

// TelegramConfig: канал Telegram Bot API.
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	ChatIDs  []string
	Timeout  time.Duration
	// MinLevel по умолчанию "error".
	MinLevel string
}

// OTelConfig: канал событий в спанах OpenTelemetry.
// Использует глобальный TracerProvider (см. пакет tracing).
type OTelConfig struct {
	Enabled    bool
	TracerName string
	MinLevel   string
}

// DefaultConfig возвращает конфигурацию со значениями по умолчанию.
// Telemetry отключена по умолчанию.
func DefaultConfig() Config {
	return Config{
		DedupeWindow: DefaultDedupeWindow,
		Fluent: FluentConfig{
			Port:         DefaultFluentPort,
			TagPrefix:    DefaultFluentTagPrefix,
			Timeout:      DefaultFluentTimeout,
			WriteTimeout: DefaultFluentWriteTimeout,
			MaxRetry:     DefaultFluentMaxRetry,
		},
		Webhook:  WebhookConfig{Timeout: DefaultWebhookTimeout},
		Telegram: TelegramConfig{Timeout: DefaultTelegramTimeout, MinLevel: DefaultTelegramMinLevel},
		OTel:     OTelConfig{TracerName: DefaultOTelTracerName},
	}
}

// Validate проверяет конфигурацию включённых каналов.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	for _, lvl := range []string{c.MinLevel, c.Fluent.MinLevel, c.Webhook.MinLevel, c.Telegram.MinLevel, c.OTel.MinLevel} {
		if lvl == "" {
			continue
		}
		if _, ok := ParseLevel(lvl); !ok {
			return ErrLevelInvalid
		}
	}
	if err := c.Fluent.Validate(); err != nil {
		return err
	}
	if err := c.Webhook.Validate(); err != nil {
		return err
	}
	return c.Telegram.Validate()
}

// Validate проверяет корректность FluentConfig.
func (f *FluentConfig) Validate() error {
	if !f.Enabled {
		return nil
	}
	if f.Host == "" {
		return ErrFluentHostRequired
	}
	if f.Port < 0 || f.Port > 65535 {
		return ErrFluentPortInvalid
	}
	return nil
}

// Validate проверяет корректность WebhookConfig.
func (w *WebhookConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if len(w.URLs) == 0 {
		return ErrWebhookURLRequired
	}
	for _, rawURL := range w.URLs {
		u, err := url.Parse(rawURL)
		if err != nil {
			return ErrWebhookURLInvalid
		}
		// Разрешаем только http и https схемы (защита от SSRF через file://, ftp:// и т.д.)
		if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ErrWebhookURLInvalid
		}
	}
	// Защита от HTTP Header Injection (RFC 7230): запрещены CR, LF и control characters кроме HTAB.
	for key, value := range w.Headers {
		if containsInvalidHTTPHeaderChars(key) || containsInvalidHTTPHeaderChars(value) {
			return ErrWebhookHeaderInvalid
		}
	}
	return nil
}

func containsInvalidHTTPHeaderChars(s string) bool {
	for _, r := range s {
		if r == 0x09 {
			continue
		}
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}

// Validate проверяет корректность TelegramConfig.
func (t *TelegramConfig) Validate() error {
	if !t.Enabled {
		return nil
	}
	if t.BotToken == "" {
		return ErrTelegramBotTokenRequired
	}
	if len(t.ChatIDs) == 0 {
		return ErrTelegramChatIDRequired
	}
	for _, chatID := range t.ChatIDs {
		if strings.HasPrefix(chatID, "@") && len(chatID) > 1 {
			continue
		}
		if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
			return ErrTelegramChatIDInvalid
		}
	}
	return nil
}

// ParseLevel разбирает имя уровня telemetry без учёта регистра.
// "warning" принимается как синоним "warn".
func ParseLevel(s string) (logging.TelemetryLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logging.LevelTrace, true
	case "debug":
		return logging.LevelDebug, true
	case "info":
		return logging.LevelInfo, true
	case "warn", "warning":
		return logging.LevelWarn, true
	case "error":
		return logging.LevelError, true
	case "fatal":
		return logging.LevelFatal, true
	default:
		return "", false
	}
}
