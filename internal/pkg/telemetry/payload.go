package telemetry

import (
	"fmt"
	"os"
	"time"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// source: значение поля source во всех внешних событиях.
const source = "authgate"

// Origin описывает отправителя событий: окружение, версию и хост.
type Origin struct {
	Environment string `json:"environment,omitempty"`
	Release     string `json:"release,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
}

// NewOrigin создаёт Origin, один раз определяя hostname.
func NewOrigin(environment, release string) Origin {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return Origin{Environment: environment, Release: release, Hostname: hostname}
}

// EventPayload: JSON-представление TelemetryEvent для HTTP каналов.
type EventPayload struct {
	Kind      string         `json:"kind"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   logging.Fields `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Origin
}

// ExceptionPayload: JSON-представление исключения.
type ExceptionPayload struct {
	Kind      string         `json:"kind"`
	Type      string         `json:"type"`
	Error     string         `json:"error"`
	Stack     string         `json:"stack,omitempty"`
	Extra     logging.Fields `json:"extra,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Origin
}

func newEventPayload(ev logging.TelemetryEvent, origin Origin) EventPayload {
	return EventPayload{
		Kind:      "event",
		Level:     string(ev.Level),
		Message:   ev.Message,
		Context:   sanitize(ev.Fields),
		Timestamp: ev.Timestamp,
		Source:    source,
		Origin:    origin,
	}
}

func newExceptionPayload(err error, extra logging.Fields, now time.Time, origin Origin) ExceptionPayload {
	return ExceptionPayload{
		Kind:      "exception",
		Type:      fmt.Sprintf("%T", err),
		Error:     logging.ErrorText(err),
		Stack:     logging.StackOf(err),
		Extra:     sanitize(extra),
		Timestamp: now,
		Source:    source,
		Origin:    origin,
	}
}

// sanitize заменяет значения-ошибки их текстом: encoding/json превращает
// большинство ошибок в пустой объект.
func sanitize(fields logging.Fields) logging.Fields {
	if len(fields) == 0 {
		return nil
	}
	return logging.Fields(fields.Normalize())
}
