package config

import (
	"errors"
	"time"

	"github.com/Kargones/authgate/internal/server"
)

// Ошибки валидации ServerConfig.
var (
	ErrServerAddrRequired   = errors.New("server: addr обязателен")
	ErrServerTimeoutInvalid = errors.New("server: таймауты должны быть положительными")
	ErrServerBodyLimit      = errors.New("server: maxBodyBytes должен быть положительным")
)

// ServerConfig содержит настройки HTTP сервера.
type ServerConfig struct {
	// Addr: адрес прослушивания.
	Addr string `yaml:"addr" env:"AG_SERVER_ADDR" env-default:":8080"`

	ReadTimeout     time.Duration `yaml:"readTimeout" env:"AG_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"AG_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"AG_SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`

	// MaxBodyBytes ограничивает размер тела запроса к /api/auth/*.
	MaxBodyBytes int64 `yaml:"maxBodyBytes" env:"AG_SERVER_MAX_BODY_BYTES" env-default:"65536"`
}

// Validate проверяет корректность ServerConfig.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return ErrServerAddrRequired
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 || s.ShutdownTimeout <= 0 {
		return ErrServerTimeoutInvalid
	}
	if s.MaxBodyBytes <= 0 {
		return ErrServerBodyLimit
	}
	return nil
}

// ToServer преобразует секцию в server.Config.
func (s *ServerConfig) ToServer() server.Config {
	return server.Config{
		Addr:            s.Addr,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
		MaxBodyBytes:    s.MaxBodyBytes,
	}
}
