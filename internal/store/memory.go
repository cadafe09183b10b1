package store

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Memory — хранилище в памяти процесса. Используется, когда Redis
// не настроен, и в тестах.
//
// Потокобезопасно: кэш и каталог защищены RWMutex. Протухшие записи
// удаляются при чтении и периодически при записи.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	catalog []string
	now     func() time.Time

	// число записей с последней чистки протухших ключей
	setsSinceSweep int
}

// sweepEvery — раз в сколько CacheSet вычищаются протухшие записи.
const sweepEvery = 1024

type memoryEntry struct {
	value   string
	expires time.Time // нулевое значение — без срока
}

// NewMemory создаёт хранилище с каталогом интересов catalog.
// Пустой catalog заменяется на DefaultInterests.
func NewMemory(catalog []string) *Memory {
	if len(catalog) == 0 {
		catalog = DefaultInterests
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		catalog: append([]string(nil), catalog...),
		now:     time.Now,
	}
}

// CacheGet возвращает значение, если оно есть и не протухло.
func (m *Memory) CacheGet(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// CacheSet сохраняет значение. ttl <= 0 означает "без срока".
func (m *Memory) CacheSet(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e

	m.setsSinceSweep++
	if m.setsSinceSweep >= sweepEvery {
		m.sweepLocked()
	}
	return nil
}

// sweepLocked удаляет протухшие записи. Вызывать под m.mu.
func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
	m.setsSinceSweep = 0
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Interests выбирает InterestsPerClient разных интересов из каталога.
func (m *Memory) Interests(ctx context.Context, _ int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(InterestsPerClient, len(m.catalog))
	out := make([]string, 0, n)
	for _, i := range rand.Perm(len(m.catalog))[:n] {
		out = append(out, m.catalog[i])
	}
	return out, nil
}

// Ping всегда успешен, пока жив контекст.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}
