package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"scoring-api/internal/config"
)

// CatalogKey — множество Redis с каталогом интересов.
const CatalogKey = "interests_db"

// Redis — хранилище поверх go-redis. Клиент go-redis сам держит пул
// соединений и безопасен для конкурентного использования.
type Redis struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedis подключается к Redis по cfg.URL и проверяет соединение.
func NewRedis(ctx context.Context, cfg config.Redis, log *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // соединение и так не поднялось
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisFromClient(client, log), nil
}

// NewRedisFromClient оборачивает готовый клиент.
func NewRedisFromClient(client *redis.Client, log *slog.Logger) *Redis {
	return &Redis{client: client, log: log}
}

func (r *Redis) CacheGet(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) CacheSet(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Interests выдаёт InterestsPerClient случайных интересов из каталога.
// Пустой каталог перед выборкой заполняется DefaultInterests; ошибка
// заполнения только логируется, а вот ошибка выборки возвращается.
func (r *Redis) Interests(ctx context.Context, clientID int64) ([]string, error) {
	r.seedCatalog(ctx)

	out, err := r.client.SRandMemberN(ctx, CatalogKey, InterestsPerClient).Result()
	if err != nil {
		r.log.WarnContext(ctx, "interests lookup failed",
			"client_id", clientID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: srandmember %s: %w", ErrUnavailable, CatalogKey, err)
	}
	return out, nil
}

func (r *Redis) seedCatalog(ctx context.Context) {
	n, err := r.client.SCard(ctx, CatalogKey).Result()
	if err != nil {
		r.log.WarnContext(ctx, "interests catalog check failed", "error", err)
		return
	}
	if n > 0 {
		return
	}

	members := make([]any, len(DefaultInterests))
	for i, s := range DefaultInterests {
		members[i] = s
	}
	if err := r.client.SAdd(ctx, CatalogKey, members...).Err(); err != nil {
		r.log.WarnContext(ctx, "interests catalog seed failed", "error", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PoolStats отдаёт статистику пула соединений для метрик.
func (r *Redis) PoolStats() (total, idle uint32) {
	s := r.client.PoolStats()
	return s.TotalConns, s.IdleConns
}

// Close закрывает пул соединений.
func (r *Redis) Close() error {
	return r.client.Close()
}
