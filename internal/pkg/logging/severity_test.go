package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_OrderAndNames(t *testing.T) {
	ordered := []Severity{SeverityError, SeverityWarn, SeverityInfo, SeverityDebug, SeverityTrace}
	names := []string{"ERROR", "WARN", "INFO", "DEBUG", "TRACE"}

	for i, sev := range ordered {
		assert.Equal(t, i, int(sev), "порядковый номер %s", names[i])
		assert.Equal(t, names[i], sev.String())
	}
	assert.Equal(t, "UNKNOWN", Severity(42).String())
	assert.Equal(t, "UNKNOWN", Severity(-1).String())
}

func TestSeverity_Enabled(t *testing.T) {
	tests := []struct {
		sev  Severity
		min  Severity
		want bool
	}{
		{SeverityError, SeverityError, true},
		{SeverityWarn, SeverityError, false},
		{SeverityDebug, SeverityInfo, false},
		{SeverityInfo, SeverityInfo, true},
		{SeverityWarn, SeverityInfo, true},
		{SeverityTrace, SeverityDebug, false},
		{SeverityTrace, SeverityTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.sev.String()+"_at_"+tt.min.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sev.Enabled(tt.min))
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"error", SeverityError},
		{"WARN", SeverityWarn},
		{"warning", SeverityWarn},
		{" Info ", SeverityInfo},
		{"debug", SeverityDebug},
		{"trace", SeverityTrace},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseSeverity("verbose")
	assert.ErrorIs(t, err, ErrUnknownSeverity)
}

func TestSeverityForMode(t *testing.T) {
	assert.Equal(t, SeverityInfo, SeverityForMode("production"))
	assert.Equal(t, SeverityInfo, SeverityForMode("Production"))
	assert.Equal(t, SeverityDebug, SeverityForMode("development"))
	assert.Equal(t, SeverityDebug, SeverityForMode("test"))
	assert.Equal(t, SeverityDebug, SeverityForMode(""))
}

func TestSeverity_TelemetryLevel(t *testing.T) {
	assert.Equal(t, LevelError, SeverityError.TelemetryLevel())
	assert.Equal(t, LevelWarn, SeverityWarn.TelemetryLevel())
	assert.Equal(t, LevelInfo, SeverityInfo.TelemetryLevel())
	assert.Equal(t, LevelDebug, SeverityDebug.TelemetryLevel())
	assert.Equal(t, LevelTrace, SeverityTrace.TelemetryLevel())
}

func TestTelemetryLevel_AtLeast(t *testing.T) {
	assert.True(t, LevelFatal.AtLeast(LevelError))
	assert.True(t, LevelError.AtLeast(LevelWarn))
	assert.True(t, LevelWarn.AtLeast(LevelWarn))
	assert.False(t, LevelInfo.AtLeast(LevelWarn))
	assert.False(t, LevelTrace.AtLeast(LevelDebug))
}

func TestConfig_MinSeverity(t *testing.T) {
	assert.Equal(t, SeverityInfo, Config{Mode: "production"}.MinSeverity())
	assert.Equal(t, SeverityDebug, Config{Mode: "development"}.MinSeverity())
	assert.Equal(t, SeverityTrace, Config{Mode: "production", Level: "trace"}.MinSeverity())
	// Некорректный Level игнорируется, используется Mode.
	assert.Equal(t, SeverityInfo, Config{Mode: "production", Level: "loud"}.MinSeverity())
}
