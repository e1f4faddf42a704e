// Package constants содержит константы, используемые в проекте authgate.
// Константы сгруппированы по функциональному назначению.
package constants

import "os"

// AppName: имя приложения в логах, метриках и resource attributes.
const AppName = "authgate"

// Version: версия приложения. Перезаписывается при сборке:
//
//	go build -ldflags "-X github.com/Kargones/authgate/internal/constants.Version=1.2.3"
var Version = "dev"

// Константы сообщений приложения
const (
	// MsgAppStart - сообщение о запуске сервера
	MsgAppStart = "Сервер authgate запущен"
	// MsgAppExit - сообщение о завершении работы
	MsgAppExit = "Завершение работы authgate"
)

// Имена действий. Используются как значение поля action в логах и label метрик.
const (
	// ActSignIn - вход по email и паролю
	ActSignIn = "signIn"
	// ActSignUp - регистрация новой учётной записи
	ActSignUp = "signUp"
)

// Маршруты HTTP API.
const (
	RouteSignIn  = "/api/auth/sign-in"
	RouteSignUp  = "/api/auth/sign-up"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

// RedirectAfterAuth: куда перенаправляется пользователь после успешного действия.
const RedirectAfterAuth = "/"

// HeaderTraceID: заголовок запроса и ответа с trace ID.
const HeaderTraceID = "X-Trace-ID"

// Режимы развёртывания (AG_ENV).
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// EnvPrefix: префикс всех переменных окружения приложения.
const EnvPrefix = "AG_"

// EnvConfigFile: переменная окружения с путём к YAML конфигурации.
const EnvConfigFile = EnvPrefix + "CONFIG_FILE"

// LogDirPerm: права каталога, который создаётся для файла логов (rwxr-x---).
const LogDirPerm os.FileMode = 0o750
