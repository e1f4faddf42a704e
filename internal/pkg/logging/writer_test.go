package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStreamSink_RoutesBySeverity: ERROR в поток ошибок, WARN в поток
// предупреждений, INFO в информационный, DEBUG и TRACE в отладочный.
func TestStreamSink_RoutesBySeverity(t *testing.T) {
	var errBuf, warnBuf, infoBuf, debugBuf bytes.Buffer
	sink := NewStreamSink(Streams{Error: &errBuf, Warn: &warnBuf, Info: &infoBuf, Debug: &debugBuf})

	for sev := SeverityError; sev <= SeverityTrace; sev++ {
		sink.WriteEntry(Entry{Severity: sev, Message: sev.String() + " msg", Timestamp: fixedTime})
	}

	assert.Equal(t, "[2026-10-18T09:30:15.123Z] ERROR: ERROR msg\n", errBuf.String())
	assert.Equal(t, "[2026-10-18T09:30:15.123Z] WARN: WARN msg\n", warnBuf.String())
	assert.Equal(t, "[2026-10-18T09:30:15.123Z] INFO: INFO msg\n", infoBuf.String())
	assert.Equal(t,
		"[2026-10-18T09:30:15.123Z] DEBUG: DEBUG msg\n[2026-10-18T09:30:15.123Z] TRACE: TRACE msg\n",
		debugBuf.String())
}

func TestStreamSink_NilStreamIsSkipped(t *testing.T) {
	var errBuf bytes.Buffer
	sink := NewStreamSink(Streams{Error: &errBuf})

	assert.NotPanics(t, func() {
		sink.WriteEntry(Entry{Severity: SeverityInfo, Message: "dropped", Timestamp: fixedTime})
	})
	assert.Empty(t, errBuf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamSink_WriteErrorIsDropped(t *testing.T) {
	sink := NewStreamSink(SingleStream(failingWriter{}))

	assert.NotPanics(t, func() {
		sink.WriteEntry(Entry{Severity: SeverityError, Message: "m", Timestamp: fixedTime})
	})
}

func TestSlogSink_JSONRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(newHandler(FormatJSON, &buf))

	sink.WriteEntry(Entry{
		Severity:  SeverityError,
		Message:   "Ошибка регистрации",
		Timestamp: fixedTime,
		Fields:    Fields{"name": "Ann", "email": "a@b.c"},
		Err:       &stackErr{msg: "db down", stack: "store.go:42"},
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), "output должен быть валидным JSON")
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "Ошибка регистрации", rec["msg"])
	assert.Equal(t, "a@b.c", rec["email"])
	assert.Equal(t, "Ann", rec["name"])
	assert.Equal(t, "db down", rec["error"])
	assert.Equal(t, "store.go:42", rec["stack"])

	// Поля идут в порядке ключей.
	assert.Less(t, strings.Index(buf.String(), `"email"`), strings.Index(buf.String(), `"name"`))
}

func TestSlogSink_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(newHandler(FormatText, &buf))

	sink.WriteEntry(Entry{Severity: SeverityTrace, Message: "deep", Timestamp: fixedTime})

	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "msg=deep")
}

func TestReplaceLevel_LeavesOtherAttrs(t *testing.T) {
	a := slog.String("user", "x")
	assert.Equal(t, a, replaceLevel(nil, a))

	lvl := slog.Any(slog.LevelKey, slog.LevelWarn)
	assert.Equal(t, lvl, replaceLevel(nil, lvl))

	grouped := slog.Any(slog.LevelKey, slog.LevelDebug-4)
	assert.Equal(t, grouped, replaceLevel([]string{"g"}, grouped))
}

func TestSlogSink_TypedNilErrors(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(newHandler(FormatJSON, &buf))

	require.NotPanics(t, func() {
		sink.WriteEntry(Entry{
			Severity:  SeverityError,
			Message:   "m",
			Timestamp: fixedTime,
			Fields:    Fields{"cause": (*derefErr)(nil)},
			Err:       (*derefErr)(nil),
		})
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "<nil>", rec["cause"])
	assert.Equal(t, "<nil>", rec["error"])
	assert.NotContains(t, rec, "stack")
}
