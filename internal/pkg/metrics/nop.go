package metrics

import (
	"context"
	"net/http"
	"time"
)

// NopCollector отбрасывает все измерения. NewCollector возвращает его при
// Enabled = false, DI: при ошибке конфигурации метрик.
type NopCollector struct{}

func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

func (c *NopCollector) ObserveEntry(string) {}

func (c *NopCollector) RecordTelemetryFailure(string) {}

func (c *NopCollector) RecordAuthAttempt(string, string, time.Duration) {}

// Handler отвечает 404: метрики отключены.
func (c *NopCollector) Handler() http.Handler {
	return http.NotFoundHandler()
}

// Push ничего не отправляет.
func (c *NopCollector) Push(context.Context) error {
	return nil
}
