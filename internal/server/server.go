// Package server предоставляет HTTP интерфейс к действиям аутентификации,
// health check и метрикам.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/metrics"
	"github.com/Kargones/authgate/internal/service/auth"
)

// Config содержит настройки HTTP сервера.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// Actions: действия аутентификации. Реализация: *auth.Service.
type Actions interface {
	SignIn(ctx context.Context, input auth.Input) auth.ActionState
	SignUp(ctx context.Context, input auth.Input) auth.ActionState
}

// Pinger проверяет доступность зависимости для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server: HTTP сервер authgate.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     logging.Logger
}

// New собирает router и http.Server. health может быть nil.
func New(
	cfg Config,
	actions Actions,
	health Pinger,
	collector metrics.Collector,
	logger logging.Logger,
	tracer trace.Tracer,
) *Server {
	h := &handlers{
		actions:      actions,
		health:       health,
		logger:       logger,
		maxBodyBytes: cfg.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(traceMiddleware(tracer))
	r.Use(recoverMiddleware(logger))
	r.Use(requestLogMiddleware(logger))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-in", h.signIn)
		r.Post("/sign-up", h.signUp)
	})
	r.Get(constants.RouteHealth, h.healthz)
	r.Method(http.MethodGet, constants.RouteMetrics, collector.Handler())

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Handler возвращает корневой http.Handler (для тестов и встраивания).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start запускает сервер и блокируется до остановки.
// http.ErrServerClosed после Shutdown не считается ошибкой.
func (s *Server) Start() error {
	s.logger.Info(constants.MsgAppStart, logging.Fields{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown корректно останавливает сервер, ожидая активные запросы
// не дольше ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	s.logger.Info("Остановка HTTP сервера", nil)
	return s.httpServer.Shutdown(ctx)
}
