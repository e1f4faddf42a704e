package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Kargones/authgate/internal/constants"
)

// NewLogger создаёт LeveledLogger с заданной конфигурацией.
// Минимальный уровень берётся из config.MinSeverity().
//
// Поддерживаемые режимы вывода (config.Output):
//   - "console" или "" (default): ERROR и WARN в os.Stderr, остальное в os.Stdout
//   - "stderr": все уровни в os.Stderr
//   - "file": все уровни в файл с автоматической ротацией через lumberjack
//
// Telemetry sink подключается через opts (WithTelemetry, WithTelemetryFactory).
func NewLogger(config Config, opts ...Option) *LeveledLogger {
	var streams Streams

	switch config.Output {
	case OutputConsole, "":
		streams = ConsoleStreams()
	case OutputStderr:
		streams = SingleStream(os.Stderr)
	case OutputFile:
		streams = SingleStream(newLumberjackWriter(config))
	default:
		_, _ = os.Stderr.WriteString(fmt.Sprintf( //nolint:errcheck // bootstrap stderr
			"WARNING: неизвестный logging output %q, falling back to console\n", config.Output))
		streams = ConsoleStreams()
	}

	return NewLoggerWithStreams(config, streams, opts...)
}

// newLumberjackWriter создаёт io.Writer с ротацией на основе lumberjack.
// Автоматически создаёт директорию для файла логов если не существует.
// При пустом FilePath возвращает os.Stderr как fallback.
func newLumberjackWriter(config Config) io.Writer {
	if config.FilePath == "" {
		_, _ = os.Stderr.WriteString("WARNING: logging output=file but filePath is empty, falling back to stderr\n") //nolint:errcheck // bootstrap stderr
		return os.Stderr
	}

	dir := filepath.Dir(config.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, constants.LogDirPerm); err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf( //nolint:errcheck // bootstrap stderr
				"WARNING: не удалось создать директорию логов %q: %v, falling back to stderr\n", dir, err))
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,    // MB
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,     // days
		Compress:   config.Compress,
	}
}

// NewLoggerWithStreams создаёт LeveledLogger с заданной конфигурацией и потоками.
// Используется для тестирования и гибкой настройки вывода.
func NewLoggerWithStreams(config Config, streams Streams, opts ...Option) *LeveledLogger {
	return New(config.MinSeverity(), newEntryWriter(config.Format, streams), opts...)
}

// newEntryWriter выбирает локальный writer по формату. Для slog-форматов
// каждому потоку соответствует свой handler, маршрутизация по уровню сохраняется.
func newEntryWriter(format string, streams Streams) EntryWriter {
	if format == FormatLine || format == "" {
		return NewStreamSink(streams)
	}

	build := func(w io.Writer) EntryWriter {
		if w == nil {
			return nil
		}
		return NewSlogSink(newHandler(format, w))
	}
	return &routedWriter{
		err:   build(streams.Error),
		warn:  build(streams.Warn),
		info:  build(streams.Info),
		debug: build(streams.Debug),
	}
}

// newHandler создаёт slog.Handler для формата. Уровень handler минимальный:
// фильтрация уже выполнена логгером.
func newHandler(format string, w io.Writer) slog.Handler {
	lowest := SeverityTrace.slogLevel()

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lowest, ReplaceAttr: replaceLevel})
	case FormatColor:
		return tint.NewHandler(w, &tint.Options{
			Level:       lowest,
			TimeFormat:  TimestampLayout,
			ReplaceAttr: replaceLevel,
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lowest, ReplaceAttr: replaceLevel})
	}
}

// routedWriter передаёт запись writer'у её уровня. TRACE идёт в debug.
type routedWriter struct {
	err   EntryWriter
	warn  EntryWriter
	info  EntryWriter
	debug EntryWriter
}

func (r *routedWriter) WriteEntry(e Entry) {
	var w EntryWriter
	switch e.Severity {
	case SeverityError:
		w = r.err
	case SeverityWarn:
		w = r.warn
	case SeverityInfo:
		w = r.info
	default:
		w = r.debug
	}
	if w != nil {
		w.WriteEntry(e)
	}
}
