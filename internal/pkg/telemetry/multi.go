package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// FailureHandler получает сбой отдельного канала (для метрик).
type FailureHandler func(channel string, err error)

// ChannelError: сбой одного канала.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("telemetry channel %s: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// MultiSink отправляет события в несколько каналов с фильтрацией по правилам.
// Каждый канал изолирован: ошибка или panic одного не мешают остальным.
type MultiSink struct {
	channels     map[string]logging.TelemetrySink
	channelNames []string // отсортированные имена каналов для детерминистичного порядка
	rules        *Rules
	dedupe       *Deduplicator
	onFailure    FailureHandler
}

// NewMultiSink создаёт sink с несколькими каналами. rules, dedupe и onFailure
// необязательны.
func NewMultiSink(channels map[string]logging.TelemetrySink, rules *Rules, dedupe *Deduplicator, onFailure FailureHandler) *MultiSink {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)

	return &MultiSink{
		channels:     channels,
		channelNames: names,
		rules:        rules,
		dedupe:       dedupe,
		onFailure:    onFailure,
	}
}

// Channels возвращает отсортированные имена каналов.
func (m *MultiSink) Channels() []string {
	return append([]string(nil), m.channelNames...)
}

// Record отправляет событие во все каналы, чьи правила его пропускают.
// Возвращает объединённые ошибки каналов.
func (m *MultiSink) Record(ctx context.Context, ev logging.TelemetryEvent) error {
	ctx = context.WithoutCancel(ctx)
	return m.fanOut(ev.Level, func(s logging.TelemetrySink) error {
		return s.Record(ctx, ev)
	})
}

// CaptureException отправляет исключение во все каналы, принимающие уровень error.
// Повтор того же исключения внутри окна дедупликации подавляется.
func (m *MultiSink) CaptureException(ctx context.Context, err error, extra logging.Fields) error {
	if err == nil {
		return nil
	}
	if m.dedupe != nil && !m.dedupe.Allow(fingerprint(err)) {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	return m.fanOut(logging.LevelError, func(s logging.TelemetrySink) error {
		return s.CaptureException(ctx, err, extra)
	})
}

// Close закрывает каналы, которые держат соединения.
func (m *MultiSink) Close() error {
	var errs []error
	for _, name := range m.channelNames {
		if c, ok := m.channels[name].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, &ChannelError{Channel: name, Err: err})
			}
		}
	}
	return errors.Join(errs...)
}

// fanOut вызывает все каналы, пропускающие level. Отмена контекста вызывающего
// не останавливает рассылку: события об ошибках часто пишутся именно тогда.
func (m *MultiSink) fanOut(level logging.TelemetryLevel, call func(logging.TelemetrySink) error) error {
	var errs []error
	for _, name := range m.channelNames {
		if m.rules != nil && !m.rules.Allow(name, level) {
			continue
		}
		if err := m.callChannel(name, call); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// callChannel вызывает один канал, переводя panic в ChannelError.
func (m *MultiSink) callChannel(name string, call func(logging.TelemetrySink) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ChannelError{Channel: name, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil && m.onFailure != nil {
			m.onFailure(name, err)
		}
	}()

	if cerr := call(m.channels[name]); cerr != nil {
		return &ChannelError{Channel: name, Err: cerr}
	}
	return nil
}

// fingerprint идентифицирует исключение для дедупликации.
func fingerprint(err error) string {
	return fmt.Sprintf("%T:%s", err, logging.ErrorText(err))
}
