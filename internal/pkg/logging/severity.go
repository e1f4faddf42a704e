package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kargones/authgate/internal/constants"
)

// Severity: уровень срочности записи. Меньший порядковый номер означает
// более срочную запись. Сравнение выполняется только по порядковому номеру.
type Severity int

// Уровни в порядке убывания срочности.
const (
	SeverityError Severity = iota
	SeverityWarn
	SeverityInfo
	SeverityDebug
	SeverityTrace
)

// ModeProduction: режим развёртывания, в котором логгер менее многословен.
const ModeProduction = constants.ModeProduction

// ErrUnknownSeverity возвращается ParseSeverity для нераспознанного имени уровня.
var ErrUnknownSeverity = errors.New("logging: unknown severity")

var severityNames = [...]string{
	SeverityError: "ERROR",
	SeverityWarn:  "WARN",
	SeverityInfo:  "INFO",
	SeverityDebug: "DEBUG",
	SeverityTrace: "TRACE",
}

// String возвращает имя уровня в верхнем регистре, как оно попадает в строку лога.
func (s Severity) String() string {
	if s < SeverityError || s > SeverityTrace {
		return "UNKNOWN"
	}
	return severityNames[s]
}

// Enabled сообщает, проходит ли запись уровня s фильтр с минимумом min.
func (s Severity) Enabled(min Severity) bool {
	return s <= min
}

// TelemetryLevel возвращает уровень, под которым запись уходит во внешний sink.
func (s Severity) TelemetryLevel() TelemetryLevel {
	switch s {
	case SeverityError:
		return LevelError
	case SeverityWarn:
		return LevelWarn
	case SeverityInfo:
		return LevelInfo
	case SeverityDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// slogLevel отображает Severity на шкалу slog. TRACE лежит ниже slog.LevelDebug.
func (s Severity) slogLevel() slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

// ParseSeverity разбирает имя уровня без учёта регистра.
// "warning" принимается как синоним "warn".
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return SeverityError, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "info":
		return SeverityInfo, nil
	case "debug":
		return SeverityDebug, nil
	case "trace":
		return SeverityTrace, nil
	default:
		return SeverityInfo, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
	}
}

// SeverityForMode возвращает минимальный уровень для режима развёртывания:
// INFO в production, DEBUG во всех остальных режимах.
func SeverityForMode(mode string) Severity {
	if strings.EqualFold(strings.TrimSpace(mode), ModeProduction) {
		return SeverityInfo
	}
	return SeverityDebug
}
