package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// fluentPoster: часть *fluent.Fluent, которую использует FluentSink.
type fluentPoster interface {
	PostWithTime(tag string, tm time.Time, message interface{}) error
	Close() error
}

// FluentSink отправляет события в fluentd / fluent-bit.
// Тег события: уровень ("<prefix>.error"), тег исключения: "<prefix>.exception".
// Контекст передаётся JSON-строкой: msgpack не умеет кодировать произвольные типы.
type FluentSink struct {
	client fluentPoster
	origin Origin
	now    func() time.Time
}

// NewFluentSink создаёт клиента fluent. Успешное создание не гарантирует
// соединение: ошибки появятся при первой отправке.
func NewFluentSink(cfg FluentConfig, origin Origin) (*FluentSink, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultFluentPort
	}
	tagPrefix := cfg.TagPrefix
	if tagPrefix == "" {
		tagPrefix = DefaultFluentTagPrefix
	}

	client, err := fluent.New(fluent.Config{
		FluentHost:         cfg.Host,
		FluentPort:         port,
		TagPrefix:          tagPrefix,
		Async:              cfg.Async,
		Timeout:            cfg.Timeout,
		WriteTimeout:       cfg.WriteTimeout,
		MaxRetry:           cfg.MaxRetry,
		SubSecondPrecision: true,
	})
	if err != nil {
		return nil, fmt.Errorf("создание fluent клиента: %w", err)
	}

	return newFluentSinkWithClient(client, origin), nil
}

func newFluentSinkWithClient(client fluentPoster, origin Origin) *FluentSink {
	return &FluentSink{client: client, origin: origin, now: time.Now}
}

// Record отправляет событие с тегом его уровня.
func (f *FluentSink) Record(_ context.Context, ev logging.TelemetryEvent) error {
	record := f.base()
	record["message"] = ev.Message
	if len(ev.Fields) > 0 {
		record["context"] = ev.Fields.Encode()
	}
	return f.client.PostWithTime(string(ev.Level), ev.Timestamp, record)
}

// CaptureException отправляет исключение с тегом "exception".
func (f *FluentSink) CaptureException(_ context.Context, err error, extra logging.Fields) error {
	record := f.base()
	record["type"] = fmt.Sprintf("%T", err)
	record["error"] = logging.ErrorText(err)
	if stack := logging.StackOf(err); stack != "" {
		record["stack"] = stack
	}
	if len(extra) > 0 {
		record["extra"] = extra.Encode()
	}
	return f.client.PostWithTime("exception", f.now(), record)
}

// Close закрывает соединение с fluentd, дожидаясь отправки буфера.
func (f *FluentSink) Close() error {
	return f.client.Close()
}

func (f *FluentSink) base() map[string]string {
	record := map[string]string{"source": source}
	if f.origin.Environment != "" {
		record["environment"] = f.origin.Environment
	}
	if f.origin.Release != "" {
		record["release"] = f.origin.Release
	}
	if f.origin.Hostname != "" {
		record["hostname"] = f.origin.Hostname
	}
	return record
}
