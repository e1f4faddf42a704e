package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// EntryWriter: локальный получатель записей. Запись best-effort:
// ошибки вывода некому сообщить, поэтому они отбрасываются.
type EntryWriter interface {
	WriteEntry(e Entry)
}

// Streams задаёт поток вывода для каждого уровня. TRACE пишется в Debug.
// nil-поток означает отсутствие вывода для уровня.
type Streams struct {
	Error io.Writer
	Warn  io.Writer
	Info  io.Writer
	Debug io.Writer
}

// ConsoleStreams повторяет поведение консоли: ERROR и WARN в stderr,
// остальные уровни в stdout.
func ConsoleStreams() Streams {
	return Streams{Error: os.Stderr, Warn: os.Stderr, Info: os.Stdout, Debug: os.Stdout}
}

// SingleStream направляет все уровни в один поток.
func SingleStream(w io.Writer) Streams {
	return Streams{Error: w, Warn: w, Info: w, Debug: w}
}

// StreamSink пишет Entry.Format() построчно в поток, выбранный по уровню.
// Мьютекс не даёт строкам конкурентных вызовов перемешиваться.
type StreamSink struct {
	mu      sync.Mutex
	streams Streams
}

// NewStreamSink создаёт StreamSink для заданных потоков.
func NewStreamSink(streams Streams) *StreamSink {
	return &StreamSink{streams: streams}
}

// WriteEntry форматирует запись и пишет её в поток уровня.
func (s *StreamSink) WriteEntry(e Entry) {
	w := s.streamFor(e.Severity)
	if w == nil {
		return
	}
	line := e.Format() + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(w, line) //nolint:errcheck // best-effort local write
}

func (s *StreamSink) streamFor(sev Severity) io.Writer {
	switch sev {
	case SeverityError:
		return s.streams.Error
	case SeverityWarn:
		return s.streams.Warn
	case SeverityInfo:
		return s.streams.Info
	default:
		return s.streams.Debug
	}
}

// SlogSink пишет записи через slog.Handler (JSON, text или tint).
// Фильтрация уже выполнена логгером, поэтому Enabled у handler не проверяется.
type SlogSink struct {
	handler slog.Handler
}

// NewSlogSink создаёт SlogSink поверх handler.
func NewSlogSink(handler slog.Handler) *SlogSink {
	return &SlogSink{handler: handler}
}

// WriteEntry переносит Entry в slog.Record: поля контекста в порядке ключей,
// затем error и stack.
func (s *SlogSink) WriteEntry(e Entry) {
	r := slog.NewRecord(e.Timestamp, e.Severity.slogLevel(), e.Message, 0)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := e.Fields.Normalize()
	for _, k := range keys {
		r.AddAttrs(slog.Any(k, normalized[k]))
	}

	if e.Err != nil {
		r.AddAttrs(slog.String("error", ErrorText(e.Err)))
		if stack := e.Stack(); stack != "" {
			r.AddAttrs(slog.String("stack", stack))
		}
	}

	_ = s.handler.Handle(context.Background(), r) //nolint:errcheck // best-effort local write
}

// replaceLevel подписывает TRACE в выводе slog вместо "DEBUG-4".
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl < slog.LevelDebug {
		return slog.String(slog.LevelKey, SeverityTrace.String())
	}
	return a
}
