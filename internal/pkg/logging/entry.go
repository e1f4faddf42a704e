package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// TimestampLayout: ISO-8601 в UTC с миллисекундами: 2026-10-18T09:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Fields: контекст записи: произвольные значения по строковым ключам.
type Fields map[string]any

// Entry: одна запись лога. Создаётся внутри вызова логгера, после этого
// не изменяется и нигде не хранится.
type Entry struct {
	Severity  Severity
	Message   string
	Timestamp time.Time
	Fields    Fields
	Err       error
}

// stackTracer реализуют ошибки, которые несут стек вызовов
// (например apperrors.OpaqueFailure).
type stackTracer interface {
	StackTrace() string
}

// Stack возвращает стек первой ошибки в цепочке Err, которая его хранит.
func (e Entry) Stack() string {
	return StackOf(e.Err)
}

// StackOf возвращает стек первой ошибки в цепочке err, реализующей
// StackTrace() string, или пустую строку.
func StackOf(err error) (stack string) {
	if isNilError(err) {
		return ""
	}
	// Unwrap или StackTrace чужой ошибки может паниковать.
	defer func() {
		if recover() != nil {
			stack = ""
		}
	}()
	var st stackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	return ""
}

// Format возвращает запись одной строкой:
//
//	[<timestamp>] <SEVERITY>: <message> | Context: <json> | Error: <msg> | Stack: <stack>
//
// Секции Context, Error и Stack присутствуют только если есть что в них писать.
func (e Entry) Format() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(e.Timestamp.UTC().Format(TimestampLayout))
	b.WriteString("] ")
	b.WriteString(e.Severity.String())
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Fields) > 0 {
		b.WriteString(" | Context: ")
		b.WriteString(e.Fields.Encode())
	}

	if e.Err != nil {
		b.WriteString(" | Error: ")
		b.WriteString(ErrorText(e.Err))
		if stack := e.Stack(); stack != "" {
			b.WriteString(" | Stack: ")
			b.WriteString(stack)
		}
	}

	return b.String()
}

// Encode сериализует контекст в JSON с отсортированными ключами.
// Значения типа error пишутся их текстом (ErrorText). Если значение нельзя
// представить в JSON или его MarshalJSON паникует, используется
// fmt-представление всей карты.
func (f Fields) Encode() (out string) {
	defer func() {
		if recover() != nil {
			out = fmt.Sprintf("%v", map[string]any(f))
		}
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f.Normalize()); err != nil {
		return fmt.Sprintf("%v", map[string]any(f))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Normalize возвращает копию, в которой значения error заменены их текстом.
func (f Fields) Normalize() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out[k] = ErrorText(err)
			continue
		}
		out[k] = v
	}
	return out
}

// ErrorText возвращает err.Error(), не паникуя: nil и nil-указатель дают
// "<nil>", panic внутри Error() превращается в текст "!PANIC: ...".
func ErrorText(err error) (text string) {
	if isNilError(err) {
		return "<nil>"
	}
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("!PANIC: %v", r)
		}
	}()
	return err.Error()
}

// isNilError: err == nil или интерфейс с nil-указателем внутри.
func isNilError(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// merge возвращает новую карту: base, поверх которой наложены override.
// Исходные карты не изменяются.
func merge(base, override Fields) Fields {
	if len(base) == 0 {
		return override
	}
	if len(override) == 0 {
		return base
	}
	out := make(Fields, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
