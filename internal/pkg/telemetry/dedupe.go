package telemetry

import (
	"sync"
	"time"
)

// cleanupThreshold: порог количества записей, после которого запускается очистка.
const cleanupThreshold = 100

// Deduplicator подавляет повторную отправку одного и того же исключения
// в пределах окна. Состояние хранится в памяти процесса.
// Thread-safe через sync.Mutex.
type Deduplicator struct {
	mu     sync.Mutex
	window time.Duration
	sent   map[string]time.Time
	// now используется для тестирования (позволяет mock времени)
	now func() time.Time
}

// NewDeduplicator создаёт Deduplicator с указанным окном.
func NewDeduplicator(window time.Duration) *Deduplicator {
	return &Deduplicator{
		window: window,
		sent:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow возвращает true, если исключение с данным fingerprint ещё не
// отправлялось в текущем окне, и запоминает время отправки.
// Проверка и обновление выполняются атомарно под mutex.
func (d *Deduplicator) Allow(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()

	if len(d.sent) > cleanupThreshold {
		d.cleanupExpiredLocked(now)
	}

	if last, ok := d.sent[fingerprint]; ok && now.Sub(last) < d.window {
		return false
	}
	d.sent[fingerprint] = now
	return true
}

// cleanupExpiredLocked удаляет записи с истёкшим окном. Вызывается под mutex.
func (d *Deduplicator) cleanupExpiredLocked(now time.Time) {
	for fp, last := range d.sent {
		if now.Sub(last) >= d.window {
			delete(d.sent, fp)
		}
	}
}

// SetNowFunc устанавливает функцию получения текущего времени.
// Используется для тестирования.
func (d *Deduplicator) SetNowFunc(fn func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = fn
}
