// Package scoring — бизнес-операции: расчёт скоринга и подбор интересов.
//
// Цепочка та же, что и во всём сервисе: handler -> service -> store.
// Сервис получает уже провалидированные данные и отвечает только за
// обращения к хранилищу и политику деградации при его сбоях.
package scoring

import (
	"log/slog"
	"time"

	"scoring-api/internal/metrics"
	"scoring-api/internal/store"
)

const (
	defaultCacheTTL = time.Hour
	defaultAttempts = 5
	// Сколько клиентов опрашивать параллельно в одном запросе.
	defaultLookupParallelism = 4
)

// Service — слой бизнес-логики поверх хранилища.
type Service struct {
	store   store.Store
	log     *slog.Logger
	metrics *metrics.Metrics

	cacheTTL    time.Duration
	attempts    int
	parallelism int
}

// Option настраивает Service.
type Option func(*Service)

// WithCacheTTL задаёт время жизни закэшированного скоринга.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithAttempts задаёт число попыток получить интересы одного клиента.
func WithAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithParallelism ограничивает число одновременных обращений к хранилищу
// в рамках одного запроса интересов.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewService создаёт сервис. m может быть nil — тогда метрики не пишутся.
func NewService(st store.Store, log *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:       st,
		log:         log,
		metrics:     m,
		cacheTTL:    defaultCacheTTL,
		attempts:    defaultAttempts,
		parallelism: defaultLookupParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
