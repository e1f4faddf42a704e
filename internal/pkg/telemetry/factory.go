package telemetry

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// Option настраивает NewSink.
type Option func(*factoryOptions)

type factoryOptions struct {
	onFailure      FailureHandler
	tracerProvider trace.TracerProvider
	stderr         io.Writer
	httpClient     HTTPClient
}

// WithFailureHandler задаёт обработчик сбоев каналов (обычно счётчик метрик).
func WithFailureHandler(h FailureHandler) Option {
	return func(o *factoryOptions) { o.onFailure = h }
}

// WithTracerProvider задаёт TracerProvider для канала otel.
// По умолчанию используется глобальный otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *factoryOptions) { o.tracerProvider = tp }
}

// WithHTTPClient задаёт HTTP клиент для каналов webhook и telegram.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *factoryOptions) { o.httpClient = c }
}

// NewSink собирает MultiSink из включённых каналов.
//
// Возвращает (nil, nil), если telemetry выключена или ни один канал не включён:
// логгер в этом случае работает только локально. Ошибка валидации конфигурации
// возвращается как есть. Канал, который не удалось создать, пропускается с
// предупреждением в stderr.
func NewSink(cfg Config, opts ...Option) (logging.TelemetrySink, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := factoryOptions{stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	origin := NewOrigin(cfg.Environment, cfg.Release)
	channels := make(map[string]logging.TelemetrySink)

	if cfg.Fluent.Enabled {
		sink, err := NewFluentSink(cfg.Fluent, origin)
		if err != nil {
			_, _ = fmt.Fprintf(o.stderr, "WARNING: telemetry channel %s disabled: %v\n", ChannelFluent, err) //nolint:errcheck // bootstrap stderr
		} else {
			channels[ChannelFluent] = sink
		}
	}

	if cfg.Webhook.Enabled {
		sink := NewWebhookSink(cfg.Webhook, origin)
		if o.httpClient != nil {
			sink.SetHTTPClient(o.httpClient)
		}
		channels[ChannelWebhook] = sink
	}

	if cfg.Telegram.Enabled {
		sink := NewTelegramSink(cfg.Telegram, origin)
		if o.httpClient != nil {
			sink.SetHTTPClient(o.httpClient)
		}
		channels[ChannelTelegram] = sink
	}

	if cfg.OTel.Enabled {
		tp := o.tracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		name := cfg.OTel.TracerName
		if name == "" {
			name = DefaultOTelTracerName
		}
		channels[ChannelOTel] = NewOTelSink(tp.Tracer(name), origin)
	}

	if len(channels) == 0 {
		return nil, nil
	}

	rules := NewRules(cfg.MinLevel, map[string]string{
		ChannelFluent:   cfg.Fluent.MinLevel,
		ChannelWebhook:  cfg.Webhook.MinLevel,
		ChannelTelegram: cfg.Telegram.MinLevel,
		ChannelOTel:     cfg.OTel.MinLevel,
	})

	var dedupe *Deduplicator
	window := cfg.DedupeWindow
	if window == 0 {
		window = DefaultDedupeWindow
	}
	if window > 0 {
		dedupe = NewDeduplicator(window)
	}

	return NewMultiSink(channels, rules, dedupe, o.onFailure), nil
}
