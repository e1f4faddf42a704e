package logging

import (
	"context"
	"time"
)

// TelemetryLevel: уровень события во внешнем telemetry backend.
// В отличие от Severity включает отдельный уровень fatal.
type TelemetryLevel string

// Уровни событий telemetry.
const (
	LevelTrace TelemetryLevel = "trace"
	LevelDebug TelemetryLevel = "debug"
	LevelInfo  TelemetryLevel = "info"
	LevelWarn  TelemetryLevel = "warn"
	LevelError TelemetryLevel = "error"
	LevelFatal TelemetryLevel = "fatal"
)

// rank возвращает порядок уровня: чем меньше, тем срочнее. Неизвестный уровень
// считается наименее срочным.
func (l TelemetryLevel) rank() int {
	switch l {
	case LevelFatal:
		return 0
	case LevelError:
		return 1
	case LevelWarn:
		return 2
	case LevelInfo:
		return 3
	case LevelDebug:
		return 4
	default:
		return 5
	}
}

// AtLeast сообщает, что уровень l не менее срочен, чем min.
func (l TelemetryLevel) AtLeast(min TelemetryLevel) bool {
	return l.rank() <= min.rank()
}

// TelemetryEvent: упрощённое представление записи для внешнего backend:
// только сообщение и контекст, без отформатированной строки.
type TelemetryEvent struct {
	Level     TelemetryLevel `json:"level"`
	Message   string         `json:"message"`
	Fields    Fields         `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TelemetrySink: внешний получатель событий и исключений.
// Реализации находятся в пакете telemetry. Логгер изолирует каждый вызов:
// возвращённая ошибка или panic внутри sink не доходят до вызывающего кода.
type TelemetrySink interface {
	// Record отправляет событие уровня ev.Level.
	Record(ctx context.Context, ev TelemetryEvent) error

	// CaptureException отправляет ошибку вместе с контекстом как дополнительными данными.
	CaptureException(ctx context.Context, err error, extra Fields) error
}

// Observer получает уведомление о каждой записи, прошедшей фильтр.
// Используется для метрик.
type Observer interface {
	ObserveEntry(level string)
}
