package config

import (
	"fmt"

	"github.com/Kargones/authgate/internal/pkg/logging"
)

// LoggingConfig содержит настройки локального вывода логов.
// Значения по умолчанию совпадают с logging.DefaultXxx.
type LoggingConfig struct {
	// Level явно задаёт минимальный уровень (error, warn, info, debug, trace).
	// Пустое значение: уровень по Mode (production → info, иначе debug).
	Level string `yaml:"level" env:"AG_LOG_LEVEL"`

	// Format: формат вывода (line, json, text, color).
	Format string `yaml:"format" env:"AG_LOG_FORMAT" env-default:"line"`

	// Output: вывод логов (console, stderr, file).
	Output string `yaml:"output" env:"AG_LOG_OUTPUT" env-default:"console"`

	// FilePath: путь к файлу логов (если output=file).
	FilePath string `yaml:"filePath" env:"AG_LOG_FILE_PATH" env-default:"/var/log/authgate.log"`

	// MaxSize: максимальный размер файла лога в MB.
	MaxSize int `yaml:"maxSize" env:"AG_LOG_MAX_SIZE" env-default:"100"`

	// MaxBackups: максимальное количество backup файлов.
	MaxBackups int `yaml:"maxBackups" env:"AG_LOG_MAX_BACKUPS" env-default:"3"`

	// MaxAge: максимальный возраст backup файлов в днях.
	MaxAge int `yaml:"maxAge" env:"AG_LOG_MAX_AGE" env-default:"7"`

	// Compress: сжимать ли backup файлы.
	// TODO: перейти на *bool: при env-default:"true" значение compress: false из YAML
	// перезаписывается в cleanenv.ReadEnv, отключить сжатие можно только через AG_LOG_COMPRESS=false.
	Compress bool `yaml:"compress" env:"AG_LOG_COMPRESS" env-default:"true"`
}

// Validate проверяет допустимость значений.
func (l *LoggingConfig) Validate() error {
	if l.Level != "" {
		if _, err := logging.ParseSeverity(l.Level); err != nil {
			return fmt.Errorf("logging: %w", err)
		}
	}
	switch l.Format {
	case "", logging.FormatLine, logging.FormatJSON, logging.FormatText, logging.FormatColor:
	default:
		return fmt.Errorf("logging: недопустимый format %q, допустимые: line, json, text, color", l.Format)
	}
	switch l.Output {
	case "", logging.OutputConsole, logging.OutputStderr, logging.OutputFile:
	default:
		return fmt.Errorf("logging: недопустимый output %q, допустимые: console, stderr, file", l.Output)
	}
	return nil
}

// ToLogging переводит секцию в logging.Config. Пустые поля получают
// значения logging.DefaultConfig().
func (l *LoggingConfig) ToLogging(mode string) logging.Config {
	out := logging.DefaultConfig()
	if mode != "" {
		out.Mode = mode
	}
	out.Level = l.Level
	if l.Format != "" {
		out.Format = l.Format
	}
	if l.Output != "" {
		out.Output = l.Output
	}
	if l.FilePath != "" {
		out.FilePath = l.FilePath
	}
	// Размер 0 MB не имеет смысла для lumberjack, используется default.
	if l.MaxSize > 0 {
		out.MaxSize = l.MaxSize
	}
	if l.MaxBackups > 0 {
		out.MaxBackups = l.MaxBackups
	}
	if l.MaxAge > 0 {
		out.MaxAge = l.MaxAge
	}
	out.Compress = l.Compress
	return out
}
