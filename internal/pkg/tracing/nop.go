package tracing

import "context"

// ShutdownFunc останавливает провайдер, отправив накопленные span-ы.
type ShutdownFunc func(context.Context) error

// NewNopTracerProvider: ShutdownFunc для выключенного трейсинга.
// Глобальный провайдер при этом остаётся noop по умолчанию OTel.
func NewNopTracerProvider() ShutdownFunc {
	return func(context.Context) error { return nil }
}
