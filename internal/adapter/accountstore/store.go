// Package accountstore хранит учётные записи для локальной аутентификации.
// Интерфейс Store разделён на чтение и запись, чтобы сервис и тесты могли
// зависеть только от нужной части.
package accountstore

import (
	"context"
	"errors"
	"time"
)

// Ошибки, которые Store возвращает для ожидаемых ситуаций.
var (
	// ErrEmailTaken: учётная запись с таким email уже существует.
	ErrEmailTaken = errors.New("accountstore: email already registered")
	// ErrNotFound: учётная запись не найдена.
	ErrNotFound = errors.New("accountstore: account not found")
)

// Account: учётная запись. Email хранится в нормализованном виде.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// AccountReader ищет учётные записи.
type AccountReader interface {
	// FindByEmail возвращает учётную запись или ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// AccountWriter создаёт учётные записи.
type AccountWriter interface {
	// Create сохраняет учётную запись или возвращает ErrEmailTaken.
	Create(ctx context.Context, account *Account) error
}

// Store: композитный интерфейс хранилища.
type Store interface {
	AccountReader
	AccountWriter
	Close() error
}
