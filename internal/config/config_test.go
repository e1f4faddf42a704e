package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/authgate/internal/adapter/accountstore"
	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/apperrors"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/server"
)

// isolateEnv очищает переменные, которые влияют на Load.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(constants.EnvConfigFile, "")
	t.Setenv(EnvDotEnvFile, "")
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var of *apperrors.OpaqueFailure
	require.True(t, errors.As(err, &of), "ожидается OpaqueFailure, получено %T", err)
	assert.Equal(t, code, of.Code)
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, constants.ModeDevelopment, cfg.Mode)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, logging.FormatLine, cfg.Logging.Format)
	assert.Equal(t, logging.OutputConsole, cfg.Logging.Output)
	assert.True(t, cfg.Logging.Compress)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 12, cfg.Store.BcryptCost)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "error", cfg.Telemetry.Telegram.MinLevel)
	assert.Equal(t, time.Minute, cfg.Telemetry.DedupeWindow)
	assert.Equal(t, 1.0, cfg.Tracing.SamplingRate)
	assert.Equal(t, "authgate", cfg.Metrics.JobName)
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "authgate.yaml", `
mode: production
release: 2.0.0
logging:
  level: warn
  format: json
server:
  addr: ":7070"
telemetry:
  enabled: true
  webhook:
    enabled: true
    urls: ["https://hooks.example.com/a"]
    headers:
      Authorization: Bearer abc
`)
	t.Setenv(constants.EnvConfigFile, path)
	t.Setenv("AG_SERVER_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "2.0.0", cfg.ReleaseOrVersion())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, ":9090", cfg.Server.Addr, "env переопределяет YAML")
	assert.Equal(t, []string{"https://hooks.example.com/a"}, cfg.Telemetry.Webhook.URLs)
	assert.Equal(t, "Bearer abc", cfg.Telemetry.Webhook.Headers["Authorization"])
	// поля, не заданные в YAML, получают env-default
	assert.Equal(t, 5*time.Second, cfg.Telemetry.Webhook.Timeout)
}

func TestLoad_EnvLists(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AG_TELEMETRY_ENABLED", "true")
	t.Setenv("AG_TELEMETRY_TELEGRAM_ENABLED", "true")
	t.Setenv("AG_TELEMETRY_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("AG_TELEMETRY_TELEGRAM_CHAT_IDS", "111,@alerts")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "@alerts"}, cfg.Telemetry.Telegram.ChatIDs)
}

func TestLoad_UnknownYAMLKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv(constants.EnvConfigFile, writeFile(t, "bad.yaml", "logging:\n  levle: debug\n"))

	_, err := Load()
	requireCode(t, err, apperrors.ErrConfigParse)
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv(constants.EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	requireCode(t, err, apperrors.ErrConfigParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EmptyYAMLFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv(constants.EnvConfigFile, writeFile(t, "empty.yaml", ""))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_ValidationFailure(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AG_STORE_DRIVER", "postgres")

	_, err := Load()
	requireCode(t, err, apperrors.ErrConfigValidate)
	assert.ErrorIs(t, err, ErrStoreDriverInvalid)
}

func TestLoad_DotEnv(t *testing.T) {
	isolateEnv(t)
	const key = "AG_METRICS_JOB_NAME"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	t.Setenv(EnvDotEnvFile, writeFile(t, "test.env", key+"=from-dotenv\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Metrics.JobName)
}

func TestLoad_DefaultDotEnvInWorkingDir(t *testing.T) {
	isolateEnv(t)
	const key = "AG_METRICS_INSTANCE"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	require.NoError(t, os.WriteFile(".env", []byte(key+"=pod-7\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pod-7", cfg.Metrics.InstanceLabel)
}

func TestLoad_ExplicitDotEnvMissing(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvDotEnvFile, filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load()
	requireCode(t, err, apperrors.ErrConfigLoad)
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{"empty", LoggingConfig{}, false},
		{"valid", LoggingConfig{Level: "trace", Format: "color", Output: "file"}, false},
		{"bad level", LoggingConfig{Level: "verbose"}, true},
		{"bad format", LoggingConfig{Format: "xml"}, true},
		{"bad output", LoggingConfig{Output: "syslog"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig_ToLogging(t *testing.T) {
	lc := LoggingConfig{Format: "json", MaxSize: 0, MaxBackups: 5, Compress: false}
	out := lc.ToLogging(constants.ModeProduction)

	assert.Equal(t, constants.ModeProduction, out.Mode)
	assert.Equal(t, logging.SeverityInfo, out.MinSeverity())
	assert.Equal(t, "json", out.Format)
	assert.Equal(t, logging.DefaultOutput, out.Output)
	assert.Equal(t, logging.DefaultMaxSize, out.MaxSize)
	assert.Equal(t, 5, out.MaxBackups)
	assert.False(t, out.Compress)

	lc.Level = "error"
	assert.Equal(t, logging.SeverityError, lc.ToLogging(constants.ModeDevelopment).MinSeverity())
}

func TestTelemetryConfig_ToTelemetry(t *testing.T) {
	tc := TelemetryConfig{
		Enabled:  true,
		MinLevel: "warn",
		Fluent:   FluentChannelConfig{Enabled: true, Host: "fluent-bit", Port: 24224},
		Telegram: TelegramChannelConfig{MinLevel: "error"},
	}
	out := tc.ToTelemetry("prod", "1.0.0")

	assert.True(t, out.Enabled)
	assert.Equal(t, "prod", out.Environment)
	assert.Equal(t, "1.0.0", out.Release)
	assert.Equal(t, "warn", out.MinLevel)
	assert.Equal(t, "fluent-bit", out.Fluent.Host)
	assert.Equal(t, "error", out.Telegram.MinLevel)
	assert.NoError(t, tc.Validate())

	tc.Webhook.Enabled = true
	assert.Error(t, tc.Validate())
}

func TestServerConfig_Validate(t *testing.T) {
	ok := ServerConfig{Addr: ":1", ReadTimeout: 1, WriteTimeout: 1, ShutdownTimeout: 1, MaxBodyBytes: 1}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Addr = ""
	assert.ErrorIs(t, bad.Validate(), ErrServerAddrRequired)

	bad = ok
	bad.ShutdownTimeout = 0
	assert.ErrorIs(t, bad.Validate(), ErrServerTimeoutInvalid)

	bad = ok
	bad.MaxBodyBytes = 0
	assert.ErrorIs(t, bad.Validate(), ErrServerBodyLimit)
}

func TestStoreConfig_Validate(t *testing.T) {
	ok := StoreConfig{Driver: StoreDriverSQLServer, DSN: "sqlserver://sa:x@db:1433", BcryptCost: 10}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.DSN = ""
	assert.ErrorIs(t, bad.Validate(), ErrStoreDSNRequired)

	bad = ok
	bad.BcryptCost = 2
	assert.ErrorIs(t, bad.Validate(), ErrBcryptCostInvalid)
}

func TestServerConfig_ToServer(t *testing.T) {
	sc := ServerConfig{Addr: ":9000", ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, ShutdownTimeout: 3 * time.Second, MaxBodyBytes: 10}
	assert.Equal(t, server.Config{
		Addr:            ":9000",
		ReadTimeout:     time.Second,
		WriteTimeout:    2 * time.Second,
		ShutdownTimeout: 3 * time.Second,
		MaxBodyBytes:    10,
	}, sc.ToServer())
}

func TestStoreConfig_ToStore(t *testing.T) {
	sc := StoreConfig{Driver: StoreDriverSQLite, DSN: "file::memory:", MaxOpenConns: 1, BcryptCost: 10}
	assert.Equal(t, accountstore.Options{Driver: accountstore.DriverSQLite, DSN: "file::memory:", MaxOpenConns: 1}, sc.ToStore())
}
