package logging

import (
	"context"
	"sync"
	"time"
)

// fixedTime: момент времени для детерминированных строк в тестах.
var fixedTime = time.Date(2026, 10, 18, 9, 30, 15, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedTime }

// sinkCall: один зафиксированный вызов recordingSink.
type sinkCall struct {
	method string
	level  TelemetryLevel
	msg    string
	fields Fields
	err    error
	ctx    context.Context
}

// recordingSink запоминает все вызовы. failWith и panicWith позволяют
// имитировать сбой backend.
type recordingSink struct {
	mu        sync.Mutex
	calls     []sinkCall
	failWith  error
	panicWith any
}

func (s *recordingSink) Record(ctx context.Context, ev TelemetryEvent) error {
	s.mu.Lock()
	s.calls = append(s.calls, sinkCall{method: "record", level: ev.Level, msg: ev.Message, fields: ev.Fields, ctx: ctx})
	s.mu.Unlock()
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.failWith
}

func (s *recordingSink) CaptureException(ctx context.Context, err error, extra Fields) error {
	s.mu.Lock()
	s.calls = append(s.calls, sinkCall{method: "exception", err: err, fields: extra, ctx: ctx})
	s.mu.Unlock()
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.failWith
}

func (s *recordingSink) snapshot() []sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkCall(nil), s.calls...)
}

// recordingWriter запоминает локальные записи.
type recordingWriter struct {
	mu      sync.Mutex
	entries []Entry
}

func (w *recordingWriter) WriteEntry(e Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
}

func (w *recordingWriter) snapshot() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

// countingObserver считает записи по уровням.
type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveEntry(level string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[level]++
}

// stackErr: ошибка со стеком для проверки секции Stack.
type stackErr struct {
	msg   string
	stack string
}

func (e *stackErr) Error() string      { return e.msg }
func (e *stackErr) StackTrace() string { return e.stack }

// derefErr разыменовывает получатель в Error: typed nil паникует.
type derefErr struct{ msg string }

func (e *derefErr) Error() string { return e.msg }

// panicWriter паникует на каждой записи.
type panicWriter struct{}

func (panicWriter) WriteEntry(Entry) { panic("writer exploded") }
