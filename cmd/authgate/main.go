// Package main содержит точку входа HTTP сервера authgate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kargones/authgate/internal/config"
	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/di"
	"github.com/Kargones/authgate/internal/pkg/logging"
)

// Коды завершения процесса.
const (
	exitOK     = 0
	exitRun    = 1
	exitInit   = 4
	exitConfig = 5
)

// closeTimeout ограничивает освобождение ресурсов при остановке.
const closeTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

// run содержит основную логику и возвращает exit code.
// os.Exit вызывается в main, чтобы defer-ы здесь успели отработать.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Не удалось загрузить конфигурацию приложения: %v\n", err) //nolint:errcheck // bootstrap stderr
		return exitConfig
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Не удалось инициализировать приложение: %v\n", err) //nolint:errcheck // bootstrap stderr
		return exitInit
	}

	app.Logger.Debug("Информация о сборке", logging.Fields{
		"version": constants.Version,
		"release": cfg.ReleaseOrVersion(),
		"mode":    cfg.Mode,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := exitOK
	if err := app.Run(ctx); err != nil {
		app.Logger.Fatal("Сервер остановлен с ошибкой", logging.Fields{"error": err})
		code = exitRun
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "WARNING: ошибка освобождения ресурсов: %v\n", err) //nolint:errcheck // bootstrap stderr
	}

	return code
}
