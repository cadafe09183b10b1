// Package store — внешнее хранилище: кэш скоринга и справочник интересов.
//
// Реализации должны быть безопасны для конкурентного использования:
// один экземпляр разделяют все запросы, своих блокировок ядро не добавляет.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable возвращается, когда хранилище не может обслужить запрос.
var ErrUnavailable = errors.New("store unavailable")

// DefaultInterests — каталог, которым заполняется пустое хранилище интересов.
var DefaultInterests = []string{
	"cars", "pets", "travel", "hi-tech", "sport", "music",
	"books", "tv", "cinema", "geek", "otus",
}

// InterestsPerClient — сколько интересов выдаётся на одного клиента.
const InterestsPerClient = 2

// Store — контракт, который вызывает ядро.
type Store interface {
	// CacheGet возвращает значение по ключу; ok=false, если ключа нет.
	CacheGet(ctx context.Context, key string) (value string, ok bool, err error)
	// CacheSet сохраняет значение с временем жизни ttl.
	CacheSet(ctx context.Context, key, value string, ttl time.Duration) error
	// Interests возвращает интересы клиента.
	Interests(ctx context.Context, clientID int64) ([]string, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
