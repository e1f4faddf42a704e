// Package logging предоставляет многоуровневый логгер с локальным выводом
// и необязательной отправкой событий во внешний telemetry backend.
package logging

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FatalPrefix добавляется к сообщению Fatal в локальной записи.
const FatalPrefix = "FATAL: "

// Logger определяет интерфейс для структурированного логирования.
// Реализации: LeveledLogger (production) и NopLogger (тесты).
//
//	logger.Error("Ошибка входа", logging.Fields{"email": email}, err)
//
// Ни один метод не возвращает ошибку и не паникует из-за сбоев вывода или sink.
type Logger interface {
	// Trace записывает сообщение уровня TRACE.
	Trace(msg string, fields Fields)

	// Debug записывает сообщение уровня DEBUG.
	Debug(msg string, fields Fields)

	// Info записывает сообщение уровня INFO.
	Info(msg string, fields Fields)

	// Warn записывает сообщение уровня WARN.
	Warn(msg string, fields Fields)

	// Error записывает сообщение уровня ERROR. Ненулевой err дополнительно
	// передаётся в telemetry как исключение с fields в качестве extra.
	Error(msg string, fields Fields, err error)

	// Fatal записывает ERROR с префиксом "FATAL: " и отправляет в telemetry
	// отдельное событие уровня fatal. Процесс не завершается.
	Fatal(msg string, fields Fields)

	// With возвращает Logger, добавляющий fields ко всем записям.
	// Поля конкретного вызова имеют приоритет.
	With(fields Fields) Logger

	// WithContext возвращает Logger, передающий ctx в telemetry sink
	// (например для привязки событий к активному span).
	WithContext(ctx context.Context) Logger
}

// Option настраивает LeveledLogger при создании.
type Option func(*LeveledLogger)

// WithTelemetry подключает внешний sink. nil означает только локальный вывод.
func WithTelemetry(sink TelemetrySink) Option {
	return func(l *LeveledLogger) {
		l.telemetry = sink
	}
}

// WithTelemetryFactory подключает sink, создаваемый factory. Ошибка или panic
// factory не мешают созданию логгера: он остаётся только с локальным выводом.
func WithTelemetryFactory(factory func() (TelemetrySink, error)) Option {
	return func(l *LeveledLogger) {
		l.telemetry = buildTelemetry(factory)
	}
}

// WithObserver подключает наблюдателя записей (метрики).
func WithObserver(o Observer) Option {
	return func(l *LeveledLogger) {
		l.observer = o
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func WithClock(now func() time.Time) Option {
	return func(l *LeveledLogger) {
		l.now = now
	}
}

// LeveledLogger фильтрует вызовы по минимальному уровню, пишет запись в
// локальный EntryWriter и, если подключён, дублирует её в TelemetrySink.
// После создания состояние только читается, поэтому логгер безопасен для
// конкурентного использования без блокировок.
type LeveledLogger struct {
	min       Severity
	writer    EntryWriter
	telemetry TelemetrySink
	observer  Observer
	now       func() time.Time
	fields    Fields
	ctx       context.Context
}

// New создаёт LeveledLogger с минимальным уровнем min и локальным writer.
// Создание не может завершиться ошибкой.
func New(min Severity, writer EntryWriter, opts ...Option) *LeveledLogger {
	l := &LeveledLogger{
		min:    min,
		writer: writer,
		now:    time.Now,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.writer == nil {
		l.writer = NewStreamSink(ConsoleStreams())
	}
	return l
}

// MinSeverity возвращает настроенный минимальный уровень.
func (l *LeveledLogger) MinSeverity() Severity {
	return l.min
}

// HasTelemetry сообщает, подключён ли внешний sink.
func (l *LeveledLogger) HasTelemetry() bool {
	return l.telemetry != nil
}

// Trace записывает сообщение уровня TRACE.
func (l *LeveledLogger) Trace(msg string, fields Fields) {
	l.log(SeverityTrace, msg, fields, nil)
}

// Debug записывает сообщение уровня DEBUG.
func (l *LeveledLogger) Debug(msg string, fields Fields) {
	l.log(SeverityDebug, msg, fields, nil)
}

// Info записывает сообщение уровня INFO.
func (l *LeveledLogger) Info(msg string, fields Fields) {
	l.log(SeverityInfo, msg, fields, nil)
}

// Warn записывает сообщение уровня WARN.
func (l *LeveledLogger) Warn(msg string, fields Fields) {
	l.log(SeverityWarn, msg, fields, nil)
}

// Error записывает сообщение уровня ERROR.
func (l *LeveledLogger) Error(msg string, fields Fields, err error) {
	l.log(SeverityError, msg, fields, err)
}

// Fatal записывает ERROR с префиксом FatalPrefix и событие fatal в telemetry.
func (l *LeveledLogger) Fatal(msg string, fields Fields) {
	l.log(SeverityError, FatalPrefix+msg, fields, nil)
	if l.telemetry == nil {
		return
	}
	l.dispatch(func(s TelemetrySink) error {
		return s.Record(l.sinkContext(), TelemetryEvent{
			Level:     LevelFatal,
			Message:   msg,
			Fields:    merge(l.fields, fields),
			Timestamp: l.now(),
		})
	})
}

// With возвращает копию логгера с дополнительными базовыми полями.
func (l *LeveledLogger) With(fields Fields) Logger {
	child := *l
	child.fields = merge(l.fields, fields)
	return &child
}

// WithContext возвращает копию логгера, передающую ctx в telemetry sink.
func (l *LeveledLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	child := *l
	child.ctx = ctx
	return &child
}

func (l *LeveledLogger) log(sev Severity, msg string, fields Fields, err error) {
	// Фильтр проверяется до любой работы: отфильтрованный вызов не имеет побочных эффектов.
	if !sev.Enabled(l.min) {
		return
	}

	entry := Entry{
		Severity:  sev,
		Message:   msg,
		Timestamp: l.now(),
		Fields:    merge(l.fields, fields),
		Err:       err,
	}

	// Локальная запись и метрики best-effort: сбой writer или observer
	// не доходит до вызывающего кода.
	guard(func() { l.writer.WriteEntry(entry) })

	if l.observer != nil {
		guard(func() { l.observer.ObserveEntry(string(sev.TelemetryLevel())) })
	}

	if l.telemetry == nil {
		return
	}

	l.dispatch(func(s TelemetrySink) error {
		return s.Record(l.sinkContext(), TelemetryEvent{
			Level:     sev.TelemetryLevel(),
			Message:   entry.Message,
			Fields:    entry.Fields,
			Timestamp: entry.Timestamp,
		})
	})

	if sev == SeverityError && err != nil {
		l.dispatch(func(s TelemetrySink) error {
			return s.CaptureException(l.sinkContext(), err, entry.Fields)
		})
	}
}

// sinkContext сохраняет значения контекста запроса (span, trace ID), но не
// его отмену.
func (l *LeveledLogger) sinkContext() context.Context {
	return context.WithoutCancel(l.ctx)
}

// guard выполняет fn, поглощая panic.
func guard(fn func()) {
	defer func() {
		_ = recover() //nolint:errcheck // best-effort
	}()
	fn()
}

// dispatch выполняет один вызов sink, поглощая ошибку и panic.
func (l *LeveledLogger) dispatch(call func(TelemetrySink) error) {
	defer func() {
		_ = recover() //nolint:errcheck // сбой telemetry не должен доходить до вызывающего кода
	}()
	_ = call(l.telemetry) //nolint:errcheck // fire-and-forget
}

// buildTelemetry вызывает factory с защитой от ошибки и panic.
// При любом сбое возвращает nil и пишет одно предупреждение в stderr.
func buildTelemetry(factory func() (TelemetrySink, error)) (sink TelemetrySink) {
	if factory == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "WARNING: telemetry sink panicked during init: %v, using local output only\n", r) //nolint:errcheck // bootstrap stderr
			sink = nil
		}
	}()

	s, err := factory()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "WARNING: telemetry sink unavailable: %v, using local output only\n", err) //nolint:errcheck // bootstrap stderr
		return nil
	}
	return s
}
