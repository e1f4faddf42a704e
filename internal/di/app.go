package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Kargones/authgate/internal/adapter/accountstore"
	"github.com/Kargones/authgate/internal/config"
	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/metrics"
	"github.com/Kargones/authgate/internal/pkg/tracing"
	"github.com/Kargones/authgate/internal/server"
	"github.com/Kargones/authgate/internal/service/auth"
)

// App содержит инициализированные зависимости приложения.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новой зависимости:
// 1. Добавить поле в App
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config передаётся извне через InitializeApp().
	Config *config.Config

	// MetricsCollector: Prometheus или NopCollector, если метрики выключены.
	MetricsCollector metrics.Collector

	// TelemetrySink: внешний sink логгера. nil, если telemetry выключена.
	TelemetrySink logging.TelemetrySink

	Logger logging.Logger

	// TracerShutdown отправляет буферизированные span-ы и останавливает провайдер.
	TracerShutdown tracing.ShutdownFunc

	Store       *accountstore.SQLStore
	AuthService *auth.Service
	Server      *server.Server
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// ctx уже отменён, поэтому shutdown получает собственный контекст.
	if err := a.Server.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return <-errCh
}

// Close освобождает ресурсы в обратном порядке создания: отправляет
// метрики в Pushgateway, завершает трейсинг, закрывает хранилище и sink.
// Ошибки не прерывают закрытие и возвращаются вместе.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.MetricsCollector != nil {
		if err := a.MetricsCollector.Push(ctx); err != nil {
			a.Logger.Warn("Не удалось отправить метрики в Pushgateway", logging.Fields{"error": err})
		}
	}

	a.Logger.Info(constants.MsgAppExit, nil)

	if a.TracerShutdown != nil {
		if err := a.TracerShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if closer, ok := a.TelemetrySink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}
