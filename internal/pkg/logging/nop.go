package logging

import "context"

// NopLogger: реализация Logger, которая ничего не делает.
// Используется в тестах для отключения логирования.
type NopLogger struct{}

// NewNopLogger создаёт Logger, который игнорирует все сообщения.
func NewNopLogger() Logger {
	return &NopLogger{}
}

// Trace ничего не делает.
func (n *NopLogger) Trace(_ string, _ Fields) {}

// Debug ничего не делает.
func (n *NopLogger) Debug(_ string, _ Fields) {}

// Info ничего не делает.
func (n *NopLogger) Info(_ string, _ Fields) {}

// Warn ничего не делает.
func (n *NopLogger) Warn(_ string, _ Fields) {}

// Error ничего не делает.
func (n *NopLogger) Error(_ string, _ Fields, _ error) {}

// Fatal ничего не делает.
func (n *NopLogger) Fatal(_ string, _ Fields) {}

// With возвращает тот же NopLogger: поля всё равно игнорируются.
func (n *NopLogger) With(_ Fields) Logger {
	return n
}

// WithContext возвращает тот же NopLogger.
func (n *NopLogger) WithContext(_ context.Context) Logger {
	return n
}
