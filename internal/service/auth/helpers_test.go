package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Kargones/authgate/internal/adapter/accountstore"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/metrics"
	"github.com/Kargones/authgate/internal/pkg/validation"
)

// logCall: одна запись recordingLogger.
type logCall struct {
	level  string
	msg    string
	fields logging.Fields
	err    error
}

// recordingLogger запоминает вызовы вместо вывода.
type recordingLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *recordingLogger) add(level, msg string, fields logging.Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, msg: msg, fields: fields, err: err})
}

func (l *recordingLogger) Trace(msg string, f logging.Fields)            { l.add("trace", msg, f, nil) }
func (l *recordingLogger) Debug(msg string, f logging.Fields)            { l.add("debug", msg, f, nil) }
func (l *recordingLogger) Info(msg string, f logging.Fields)             { l.add("info", msg, f, nil) }
func (l *recordingLogger) Warn(msg string, f logging.Fields)             { l.add("warn", msg, f, nil) }
func (l *recordingLogger) Error(msg string, f logging.Fields, err error) { l.add("error", msg, f, err) }
func (l *recordingLogger) Fatal(msg string, f logging.Fields)            { l.add("fatal", msg, f, nil) }
func (l *recordingLogger) With(logging.Fields) logging.Logger            { return l }
func (l *recordingLogger) WithContext(context.Context) logging.Logger    { return l }

func (l *recordingLogger) byLevel(level string) []logCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logCall
	for _, c := range l.calls {
		if c.level == level {
			out = append(out, c)
		}
	}
	return out
}

// attempt: один вызов RecordAuthAttempt.
type attempt struct {
	action  string
	outcome string
}

// recordingCollector запоминает исходы действий.
type recordingCollector struct {
	metrics.NopCollector
	mu       sync.Mutex
	attempts []attempt
}

func (c *recordingCollector) RecordAuthAttempt(action, outcome string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = append(c.attempts, attempt{action: action, outcome: outcome})
}

// fakeAuthenticator позволяет подменить поведение каждого метода.
type fakeAuthenticator struct {
	signIn func(ctx context.Context, email, password string) (*accountstore.Account, error)
	signUp func(ctx context.Context, name, email, password string) (*accountstore.Account, error)
}

func (f *fakeAuthenticator) SignIn(ctx context.Context, email, password string) (*accountstore.Account, error) {
	if f.signIn == nil {
		return &accountstore.Account{ID: "id", Email: email}, nil
	}
	return f.signIn(ctx, email, password)
}

func (f *fakeAuthenticator) SignUp(ctx context.Context, name, email, password string) (*accountstore.Account, error) {
	if f.signUp == nil {
		return &accountstore.Account{ID: "id", Email: email, Name: name}, nil
	}
	return f.signUp(ctx, name, email, password)
}

type fixture struct {
	svc       *Service
	logger    *recordingLogger
	collector *recordingCollector
}

func newFixture(t *testing.T, authn Authenticator) fixture {
	t.Helper()
	v, err := validation.NewValidator()
	require.NoError(t, err)

	f := fixture{logger: &recordingLogger{}, collector: &recordingCollector{}}
	f.svc = NewService(v, authn, f.logger, f.collector, noop.NewTracerProvider().Tracer("test"))
	return f
}
