// Package metrics предоставляет интерфейсы и реализации для сбора Prometheus
// метрик: scrape через /metrics и, опционально, push в Pushgateway.
//
// Collector реализует logging.Observer, поэтому логгер считает записи по
// severity без зависимости от этого пакета.
package metrics

import (
	"context"
	"net/http"
	"time"
)

// Исходы действий аутентификации для RecordAuthAttempt.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeFailure         = "failure"
)

// Collector определяет интерфейс для сбора метрик.
// Реализации: PrometheusCollector (активный) и NopCollector (no-op).
type Collector interface {
	// ObserveEntry увеличивает счётчик записей лога уровня level.
	ObserveEntry(level string)

	// RecordTelemetryFailure увеличивает счётчик сбоев канала telemetry.
	RecordTelemetryFailure(channel string)

	// RecordAuthAttempt записывает длительность и исход действия (signIn, signUp).
	RecordAuthAttempt(action, outcome string, duration time.Duration)

	// Handler возвращает HTTP handler для scrape.
	Handler() http.Handler

	// Push отправляет метрики в Pushgateway. Без настроенного URL ничего не делает.
	// Ошибка не критична: вызывающий код её только логирует.
	Push(ctx context.Context) error
}

// NewCollector возвращает PrometheusCollector или, если метрики выключены,
// NopCollector.
func NewCollector(config Config) (Collector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	return NewPrometheusCollector(config)
}
