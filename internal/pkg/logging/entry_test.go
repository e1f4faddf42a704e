package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Format_MessageOnly(t *testing.T) {
	e := Entry{Severity: SeverityInfo, Message: "Сервер запущен", Timestamp: fixedTime}

	assert.Equal(t, "[2026-10-18T09:30:15.123Z] INFO: Сервер запущен", e.Format())
}

func TestEntry_Format_EmptyFieldsOmitContext(t *testing.T) {
	e := Entry{Severity: SeverityWarn, Message: "x", Timestamp: fixedTime, Fields: Fields{}}

	assert.NotContains(t, e.Format(), "Context")
}

func TestEntry_Format_ContextSortedAndUnescaped(t *testing.T) {
	e := Entry{
		Severity:  SeverityDebug,
		Message:   "m",
		Timestamp: fixedTime,
		Fields:    Fields{"zeta": 1, "alpha": "a<b>&c", "nested": map[string]any{"b": true, "a": nil}},
	}

	want := `[2026-10-18T09:30:15.123Z] DEBUG: m | Context: {"alpha":"a<b>&c","nested":{"a":null,"b":true},"zeta":1}`
	assert.Equal(t, want, e.Format())
}

func TestEntry_Format_ErrorWithoutStack(t *testing.T) {
	e := Entry{Severity: SeverityError, Message: "Ошибка входа", Timestamp: fixedTime, Err: errors.New("connection refused")}

	got := e.Format()
	assert.Equal(t, "[2026-10-18T09:30:15.123Z] ERROR: Ошибка входа | Error: connection refused", got)
	assert.NotContains(t, got, "Stack")
}

func TestEntry_Format_ErrorWithStackInChain(t *testing.T) {
	inner := &stackErr{msg: "db down", stack: "main.go:10"}
	e := Entry{
		Severity:  SeverityError,
		Message:   "m",
		Timestamp: fixedTime,
		Fields:    Fields{"email": "a@b.c"},
		Err:       fmt.Errorf("store: %w", inner),
	}

	want := `[2026-10-18T09:30:15.123Z] ERROR: m | Context: {"email":"a@b.c"} | Error: store: db down | Stack: main.go:10`
	assert.Equal(t, want, e.Format())
}

func TestFields_Encode_ErrorValuesAsText(t *testing.T) {
	f := Fields{"cause": errors.New("boom")}

	assert.Equal(t, `{"cause":"boom"}`, f.Encode())
}

func TestFields_Encode_FallbackForUnsupportedValues(t *testing.T) {
	f := Fields{"ch": make(chan int), "a": 1}

	got := f.Encode()
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "a:1")
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := Fields{"a": 1, "b": 2}
	override := Fields{"b": 3}

	out := merge(base, override)

	assert.Equal(t, Fields{"a": 1, "b": 3}, out)
	assert.Equal(t, Fields{"a": 1, "b": 2}, base)
	assert.Equal(t, Fields{"b": 3}, override)
}

func TestEntry_Format_TypedNilErrors(t *testing.T) {
	e := Entry{
		Severity:  SeverityError,
		Message:   "m",
		Timestamp: fixedTime,
		Fields:    Fields{"err": (*derefErr)(nil)},
		Err:       (*derefErr)(nil),
	}

	var out string
	require.NotPanics(t, func() { out = e.Format() })
	assert.Contains(t, out, `| Context: {"err":"<nil>"}`)
	assert.Contains(t, out, "| Error: <nil>")
	assert.NotContains(t, out, "Stack:")
}

func TestFields_Encode_TypedNilError(t *testing.T) {
	assert.Equal(t, `{"err":"<nil>"}`, Fields{"err": (*derefErr)(nil)}.Encode())
	assert.Equal(t, `{"err":"<nil>"}`, Fields{"err": (*stackErr)(nil)}.Encode())
}

type panickyErr struct{}

func (panickyErr) Error() string { panic("boom") }

func TestErrorText(t *testing.T) {
	assert.Equal(t, "<nil>", ErrorText(nil))
	assert.Equal(t, "<nil>", ErrorText((*derefErr)(nil)))
	assert.Equal(t, "plain", ErrorText(errors.New("plain")))
	assert.Equal(t, "!PANIC: boom", ErrorText(panickyErr{}))
}

func TestStackOf_TypedNil(t *testing.T) {
	assert.Empty(t, StackOf((*stackErr)(nil)))
	assert.Empty(t, StackOf(fmt.Errorf("wrap: %w", (*stackErr)(nil))))
}
