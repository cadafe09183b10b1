package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoring-api/internal/config"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFromClient(client, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestRedis_Cache(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	_, ok, err := r.CacheGet(ctx, "uid:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.CacheSet(ctx, "uid:1", "3", time.Hour))
	v, ok, err := r.CacheGet(ctx, "uid:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, time.Hour, mr.TTL("uid:1"))

	mr.FastForward(time.Hour)
	_, ok, err = r.CacheGet(ctx, "uid:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_InterestsSeedsCatalog(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	got, err := r.Interests(ctx, 7)

	require.NoError(t, err)
	require.Len(t, got, InterestsPerClient)
	assert.Subset(t, DefaultInterests, got)

	members, err := mr.Members(CatalogKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultInterests, members)
}

func TestRedis_InterestsKeepsExistingCatalog(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	_, err := mr.SetAdd(CatalogKey, "chess", "go")
	require.NoError(t, err)

	got, err := r.Interests(ctx, 1)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"chess", "go"}, got)
}

func TestRedis_Unavailable(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	_, _, err := r.CacheGet(ctx, "uid:1")
	assert.Error(t, err)
	assert.Error(t, r.CacheSet(ctx, "uid:1", "3", time.Hour))
	assert.Error(t, r.Ping(ctx))

	_, err = r.Interests(ctx, 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedis_PoolStats(t *testing.T) {
	r, _ := newTestRedis(t)
	require.NoError(t, r.Ping(context.Background()))

	total, idle := r.PoolStats()

	assert.GreaterOrEqual(t, total, uint32(1))
	assert.LessOrEqual(t, idle, total)
}

func TestNewRedis(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Redis{
		PoolSize:     2,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}

	t.Run("connects", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := cfg
		cfg.URL = "redis://" + mr.Addr() + "/0"

		r, err := NewRedis(context.Background(), cfg, log)

		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })
		assert.NoError(t, r.Ping(context.Background()))
	})

	t.Run("bad url", func(t *testing.T) {
		cfg := cfg
		cfg.URL = "http://nowhere"

		_, err := NewRedis(context.Background(), cfg, log)

		assert.ErrorContains(t, err, "parse redis URL")
	})

	t.Run("server down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := cfg
		cfg.URL = "redis://" + mr.Addr()
		mr.Close()

		_, err := NewRedis(context.Background(), cfg, log)

		assert.ErrorContains(t, err, "redis ping failed")
	})
}
