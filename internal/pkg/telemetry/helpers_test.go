package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

var testTime = time.Date(2026, 10, 18, 9, 30, 15, 0, time.UTC)

// mockHTTPClient: mock для HTTPClient интерфейса.
type mockHTTPClient struct {
	DoFunc   func(req *http.Request) (*http.Response, error)
	Requests []*http.Request
	Bodies   [][]byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, b)
	}
	return m.DoFunc(req)
}

func jsonResponse(statusCode int, body any) *http.Response {
	jsonBody, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader(jsonBody)),
	}
}

// fakeSink записывает вызовы канала.
type fakeSink struct {
	mu         sync.Mutex
	events     []logging.TelemetryEvent
	exceptions []error
	err        error
	panicWith  any
	closed     bool
}

func (f *fakeSink) Record(_ context.Context, ev logging.TelemetryEvent) error {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeSink) CaptureException(_ context.Context, err error, _ logging.Fields) error {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exceptions = append(f.exceptions, err)
	return f.err
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

// fakePoster заменяет *fluent.Fluent.
type fakePoster struct {
	tags    []string
	times   []time.Time
	records []map[string]string
	err     error
	closed  bool
}

func (p *fakePoster) PostWithTime(tag string, tm time.Time, message interface{}) error {
	p.tags = append(p.tags, tag)
	p.times = append(p.times, tm)
	if rec, ok := message.(map[string]string); ok {
		p.records = append(p.records, rec)
	}
	return p.err
}

func (p *fakePoster) Close() error {
	p.closed = true
	return nil
}

type stackErr struct{ msg string }

func (e *stackErr) Error() string      { return e.msg }
func (e *stackErr) StackTrace() string { return "main.go:42" }
