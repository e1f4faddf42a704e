// Package accountstoretest содержит in-memory реализацию accountstore.Store для тестов.
package accountstoretest

import (
	"context"
	"sync"

	"github.com/Kargones/authgate/internal/adapter/accountstore"
)

// Compile-time проверка реализации интерфейса
var _ accountstore.Store = (*MemoryStore)(nil)

// MemoryStore: потокобезопасное хранилище в памяти.
// Поля *Func позволяют подменить поведение, как в моках адаптеров.
type MemoryStore struct {
	CreateFunc      func(ctx context.Context, account *accountstore.Account) error
	FindByEmailFunc func(ctx context.Context, email string) (*accountstore.Account, error)

	mu       sync.RWMutex
	accounts map[string]accountstore.Account
	closed   bool
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]accountstore.Account)}
}

// Create сохраняет копию учётной записи.
func (m *MemoryStore) Create(ctx context.Context, account *accountstore.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Email]; ok {
		return accountstore.ErrEmailTaken
	}
	m.accounts[account.Email] = *account
	return nil
}

// FindByEmail возвращает копию учётной записи.
func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*accountstore.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[email]
	if !ok {
		return nil, accountstore.ErrNotFound
	}
	return &a, nil
}

// Close помечает хранилище закрытым.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Len возвращает число сохранённых записей.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

// Closed сообщает, вызывался ли Close.
func (m *MemoryStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
