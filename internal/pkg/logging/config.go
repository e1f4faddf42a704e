package logging

// Форматы записи.
const (
	FormatLine  = "line"
	FormatJSON  = "json"
	FormatText  = "text"
	FormatColor = "color"
)

// Куда пишутся записи.
const (
	OutputConsole = "console"
	OutputStderr  = "stderr"
	OutputFile    = "file"
)

// Значения Config по умолчанию (DefaultConfig и config.LoggingConfig).
const (
	DefaultMode       = "development"
	DefaultFormat     = FormatLine
	DefaultOutput     = OutputConsole
	DefaultFilePath   = "/var/log/authgate.log"
	DefaultMaxSize    = 100
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7
	DefaultCompress   = true
)

// DefaultConfig: вывод в консоль построчно, уровень по режиму development.
func DefaultConfig() Config {
	return Config{
		Mode: DefaultMode, Format: DefaultFormat, Output: DefaultOutput,
		FilePath: DefaultFilePath, MaxSize: DefaultMaxSize, MaxBackups: DefaultMaxBackups,
		MaxAge: DefaultMaxAge, Compress: DefaultCompress,
	}
}

// Config описывает локальный вывод логгера.
type Config struct {
	// Mode: "production" даёт минимальный уровень INFO, остальные режимы DEBUG.
	Mode string

	// Level ("error".."trace") переопределяет уровень по Mode.
	Level string

	// Format: line, json, text или color.
	Format string

	// Output: console (ERROR/WARN в stderr, остальное в stdout), stderr или file.
	Output string

	// Ротация lumberjack, используется только при Output == "file".
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// MinSeverity возвращает минимальный уровень: Level, если он задан и корректен,
// иначе уровень по Mode.
func (c Config) MinSeverity() Severity {
	if c.Level != "" {
		if sev, err := ParseSeverity(c.Level); err == nil {
			return sev
		}
	}
	return SeverityForMode(c.Mode)
}
