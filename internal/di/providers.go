package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/adapter/accountstore"
	"github.com/Kargones/authgate/internal/config"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/metrics"
	"github.com/Kargones/authgate/internal/pkg/telemetry"
	"github.com/Kargones/authgate/internal/pkg/tracing"
	"github.com/Kargones/authgate/internal/pkg/urlutil"
	"github.com/Kargones/authgate/internal/pkg/validation"
	"github.com/Kargones/authgate/internal/server"
	"github.com/Kargones/authgate/internal/service/auth"
)

// storeOpenTimeout ограничивает подключение и миграцию при старте.
const storeOpenTimeout = 30 * time.Second

// bootstrapReleaseTimeout ограничивает сброс tracer при неудачном старте.
const bootstrapReleaseTimeout = 5 * time.Second

// bootstrapStderr: куда пишутся предупреждения до создания логгера.
var bootstrapStderr io.Writer = os.Stderr

// ProvideMetricsCollector создаёт Collector на основе MetricsConfig.
// Логгер ещё не создан, поэтому ошибка конфигурации пишется в stderr,
// а вместо Prometheus используется NopCollector.
func ProvideMetricsCollector(cfg *config.Config) metrics.Collector {
	collector, err := metrics.NewCollector(cfg.Metrics.ToMetrics())
	if err != nil {
		_, _ = fmt.Fprintf(bootstrapStderr, "WARNING: metrics disabled: %v\n", err) //nolint:errcheck // bootstrap stderr
		return metrics.NewNopCollector()
	}
	return collector
}

// newTelemetrySink подменяется в тестах.
var newTelemetrySink = telemetry.NewSink

// ProvideTelemetrySink создаёт внешний sink для логгера.
// Сбои каналов считаются в метриках. Ни ошибка конфигурации, ни panic при
// сборке каналов не останавливают запуск: логгер работает только локально.
func ProvideTelemetrySink(cfg *config.Config, collector metrics.Collector) (sink logging.TelemetrySink) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(bootstrapStderr, "WARNING: telemetry sink disabled: panic: %v\n", r) //nolint:errcheck // bootstrap stderr
			sink = nil
		}
	}()

	sink, err := newTelemetrySink(
		cfg.Telemetry.ToTelemetry(cfg.Mode, cfg.ReleaseOrVersion()),
		telemetry.WithFailureHandler(func(channel string, _ error) {
			collector.RecordTelemetryFailure(channel)
		}),
	)
	if err != nil {
		_, _ = fmt.Fprintf(bootstrapStderr, "WARNING: telemetry sink disabled: %v\n", err) //nolint:errcheck // bootstrap stderr
		return nil
	}
	return sink
}

// releaseBootstrap освобождает ресурсы, созданные до сбоя InitializeApp:
// сбрасывает tracer и закрывает внешний sink.
func releaseBootstrap(sink logging.TelemetrySink, shutdown tracing.ShutdownFunc) {
	if shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), bootstrapReleaseTimeout)
		_ = shutdown(ctx) //nolint:errcheck // исходная ошибка важнее
		cancel()
	}
	if closer, ok := sink.(io.Closer); ok {
		_ = closer.Close() //nolint:errcheck // исходная ошибка важнее
	}
}

// ProvideLogger создаёт Logger на основе LoggingConfig и режима развёртывания.
// Collector получает уведомление о каждой записи.
func ProvideLogger(cfg *config.Config, sink logging.TelemetrySink, collector metrics.Collector) logging.Logger {
	opts := []logging.Option{logging.WithObserver(collector)}
	if sink != nil {
		opts = append(opts, logging.WithTelemetry(sink))
	}
	return logging.NewLogger(cfg.Logging.ToLogging(cfg.Mode), opts...)
}

// ProvideTracerProvider создаёт и регистрирует глобальный OTel TracerProvider.
// При ошибке возвращает nop shutdown и логирует ошибку.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) tracing.ShutdownFunc {
	shutdown, err := tracing.NewTracerProvider(cfg.Tracing.ToTracing(cfg.Mode, cfg.ReleaseOrVersion()), logger)
	if err != nil {
		logger.Error("ошибка создания TracerProvider, трейсинг выключен", nil, err)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}

// ProvideTracer возвращает tracer приложения. Параметр shutdown гарантирует,
// что глобальный провайдер уже зарегистрирован.
func ProvideTracer(_ tracing.ShutdownFunc) trace.Tracer {
	return tracing.Tracer()
}

// ProvideStore открывает хранилище учётных записей и при необходимости
// создаёт таблицу. Это единственная инфраструктура, без которой сервер
// не запускается.
func ProvideStore(cfg *config.Config, logger logging.Logger) (*accountstore.SQLStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	defer cancel()

	opts := cfg.Store.ToStore()
	store, err := accountstore.Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Migrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close() //nolint:errcheck // исходная ошибка важнее
			return nil, err
		}
	}

	logger.Info("Хранилище учётных записей подключено", logging.Fields{
		"driver":  opts.Driver,
		"dsn":     urlutil.MaskDSN(opts.DSN),
		"migrate": cfg.Store.Migrate,
	})
	return store, nil
}

// ProvideValidator компилирует встроенные формы.
func ProvideValidator() (*validation.Validator, error) {
	return validation.NewValidator()
}

// ProvideAuthenticator создаёт LocalAuthenticator поверх хранилища.
func ProvideAuthenticator(cfg *config.Config, store *accountstore.SQLStore) auth.Authenticator {
	return auth.NewLocalAuthenticator(store, cfg.Store.BcryptCost)
}

// ProvideServer создаёт HTTP сервер. Хранилище используется для /healthz.
func ProvideServer(
	cfg *config.Config,
	svc *auth.Service,
	store *accountstore.SQLStore,
	collector metrics.Collector,
	logger logging.Logger,
	tracer trace.Tracer,
) *server.Server {
	return server.New(cfg.Server.ToServer(), svc, store, collector, logger, tracer)
}
