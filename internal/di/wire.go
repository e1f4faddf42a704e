//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/authgate/internal/config"
	"github.com/Kargones/authgate/internal/service/auth"
)

//go:generate wire

// ProviderSet объединяет все провайдеры приложения.
//
// При добавлении нового провайдера:
// 1. Создать функцию провайдера в providers.go
// 2. Добавить её в ProviderSet
// 3. Перегенерировать: go generate ./internal/di/...
var ProviderSet = wire.NewSet(
	ProvideMetricsCollector,
	ProvideTelemetrySink,
	ProvideLogger,
	ProvideTracerProvider,
	ProvideTracer,
	ProvideValidator,
	ProvideStore,
	ProvideAuthenticator,
	auth.NewService,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

// InitializeApp создаёт App из загруженного Config (config.Load()).
// Wire генерирует реализацию в wire_gen.go.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
