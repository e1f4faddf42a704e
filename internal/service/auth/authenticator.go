package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kargones/authgate/internal/adapter/accountstore"
)

// Ошибки аутентификации. Классифицируются как непрозрачные: пользователь
// видит только общее сообщение, подробности попадают в лог.
var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
)

// Authenticator проверяет и создаёт учётные записи.
type Authenticator interface {
	// SignIn возвращает учётную запись при верном пароле.
	SignIn(ctx context.Context, email, password string) (*accountstore.Account, error)
	// SignUp создаёт учётную запись.
	SignUp(ctx context.Context, name, email, password string) (*accountstore.Account, error)
}

// Compile-time проверка реализации интерфейса
var _ Authenticator = (*LocalAuthenticator)(nil)

// LocalAuthenticator хранит bcrypt-хеши паролей в accountstore.Store.
type LocalAuthenticator struct {
	store accountstore.Store
	cost  int
	newID func() string
	now   func() time.Time

	// dummyHash сравнивается при отсутствии учётной записи,
	// чтобы время ответа не выдавало существование email.
	dummyHash []byte
}

// NewLocalAuthenticator создаёт аутентификатор. cost вне диапазона bcrypt
// заменяется на bcrypt.DefaultCost.
func NewLocalAuthenticator(store accountstore.Store, cost int) *LocalAuthenticator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword(prehash("authgate-dummy-password"), cost) //nolint:errcheck // длина prehash фиксирована
	return &LocalAuthenticator{
		store:     store,
		cost:      cost,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

// SignIn проверяет пароль учётной записи email.
func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (*accountstore.Account, error) {
	account, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, prehash(password)) //nolint:errcheck // выравнивание времени
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, prehash(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return account, nil
}

// SignUp хеширует пароль и сохраняет новую учётную запись.
func (a *LocalAuthenticator) SignUp(ctx context.Context, name, email, password string) (*accountstore.Account, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &accountstore.Account{
		ID:           a.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	}
	if err := a.store.Create(ctx, account); err != nil {
		if errors.Is(err, accountstore.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// prehash сводит пароль любой длины к 44 байтам: bcrypt принимает не больше 72.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
