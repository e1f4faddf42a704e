// Package testutil содержит общие утилиты для тестирования.
package testutil

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// CaptureStdout выполняет fn, перехватывая stdout, и возвращает вывод.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stdout, fn)
}

// CaptureStderr выполняет fn, перехватывая stderr, и возвращает вывод.
// Используется для проверки bootstrap-предупреждений логгера и telemetry.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stderr, fn)
}

// capture подменяет *target на pipe на время fn.
// Pipe читается параллельно, чтобы большой вывод не блокировал fn.
func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()
	orig := *target
	r, w, err := os.Pipe()
	require.NoError(t, err, "не удалось создать pipe")

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r) //nolint:errcheck // test helper
		done <- buf.String()
	}()

	*target = w
	defer func() { *target = orig }()

	fn()

	_ = w.Close() //nolint:errcheck // test helper pipe close
	out := <-done
	_ = r.Close() //nolint:errcheck // test helper pipe close
	return out
}
