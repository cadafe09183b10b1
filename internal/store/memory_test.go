package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Cache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	m := NewMemory(nil)
	m.now = func() time.Time { return now }

	_, ok, err := m.CacheGet(ctx, "uid:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.CacheSet(ctx, "uid:1", "3", time.Hour))
	v, ok, err := m.CacheGet(ctx, "uid:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	now = now.Add(time.Hour)
	_, ok, err = m.CacheGet(ctx, "uid:1")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire after ttl")

	require.NoError(t, m.CacheSet(ctx, "uid:2", "5", 0))
	now = now.Add(24 * 365 * time.Hour)
	_, ok, err = m.CacheGet(ctx, "uid:2")
	require.NoError(t, err)
	assert.True(t, ok, "zero ttl means no expiry")
}

func TestMemory_ExpiredEntriesAreDropped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	newStore := func() *Memory {
		m := NewMemory(nil)
		m.now = func() time.Time { return now }
		return m
	}

	t.Run("on read", func(t *testing.T) {
		m := newStore()
		require.NoError(t, m.CacheSet(ctx, "uid:read", "1", time.Minute))
		now = now.Add(time.Minute)

		_, ok, err := m.CacheGet(ctx, "uid:read")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NotContains(t, m.entries, "uid:read")
	})

	t.Run("on write", func(t *testing.T) {
		m := newStore()
		for i := 0; i < sweepEvery-1; i++ {
			require.NoError(t, m.CacheSet(ctx, fmt.Sprintf("uid:old:%d", i), "1", time.Minute))
		}
		now = now.Add(time.Minute)

		require.NoError(t, m.CacheSet(ctx, "uid:fresh", "2", time.Minute))

		assert.Len(t, m.entries, 1)
		assert.Contains(t, m.entries, "uid:fresh")
	})
}

func TestMemory_Interests(t *testing.T) {
	ctx := context.Background()

	t.Run("distinct entries from catalog", func(t *testing.T) {
		m := NewMemory(nil)
		for j := 0; j < 50; j++ {
			got, err := m.Interests(ctx, 1)
			require.NoError(t, err)
			require.Len(t, got, InterestsPerClient)
			assert.NotEqual(t, got[0], got[1])
			assert.Subset(t, DefaultInterests, got)
		}
	})

	t.Run("small catalog", func(t *testing.T) {
		m := NewMemory([]string{"otus"})

		got, err := m.Interests(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"otus"}, got)
	})

	t.Run("catalog is copied", func(t *testing.T) {
		catalog := []string{"a", "b"}
		m := NewMemory(catalog)
		catalog[0], catalog[1] = "x", "y"

		got, err := m.Interests(ctx, 1)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, got)
	})
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory(nil)

	_, _, err := m.CacheGet(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.CacheSet(ctx, "k", "v", time.Minute), context.Canceled)
	_, err = m.Interests(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Ping(ctx), context.Canceled)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("uid:%d", i%4)
			for j := 0; j < 100; j++ {
				_ = m.CacheSet(ctx, key, "1.5", time.Minute)
				_, _, _ = m.CacheGet(ctx, key)
				_, _ = m.Interests(ctx, int64(i))
			}
		}()
	}
	wg.Wait()

	v, ok, err := m.CacheGet(ctx, "uid:0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.5", v)
}
