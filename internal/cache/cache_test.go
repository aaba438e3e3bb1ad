package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), RedisOpts{Addr: mr.Addr(), Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func setupTestSQLite(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), shared.DatabaseConfig{MaxOpenConns: 2, MaxIdleConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// exerciseCache runs the behaviour every backend must share.
func exerciseCache(t *testing.T, c Cache) {
	ctx := context.Background()

	t.Run("Missing key is a miss, not an error", func(t *testing.T) {
		v, ok, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("Set then Get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "verifier:u1", "abc"))

		v, ok, err := c.Get(ctx, "verifier:u1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", v)
	})

	t.Run("Set overwrites", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "token:u1", `{"token":"a"}`))
		require.NoError(t, c.Set(ctx, "token:u1", `{"token":"b"}`))

		v, _, err := c.Get(ctx, "token:u1")
		require.NoError(t, err)
		assert.Equal(t, `{"token":"b"}`, v)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", "x"))
		require.NoError(t, c.Remove(ctx, "gone"))

		_, ok, err := c.Get(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, c.Remove(ctx, "never-set"), "removing a missing key should succeed")
	})

	t.Run("Concurrent writes to distinct keys", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i)))
			}(i)
		}
		wg.Wait()

		for i := range 20 {
			v, ok, err := c.Get(ctx, fmt.Sprintf("k%d", i))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, fmt.Sprintf("v%d", i), v)
		}
	})
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	exerciseCache(t, c)

	t.Run("Canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := c.Get(ctx, "verifier:u1")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Keys and Clear", func(t *testing.T) {
		ctx := context.Background()
		m := NewMemoryCache()
		require.NoError(t, m.Set(ctx, "token:b", "2"))
		require.NoError(t, m.Set(ctx, "token:a", "1"))

		keys, err := m.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"token:a", "token:b"}, keys)

		n, err := m.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, 0, m.Len())
	})
}

func TestSQLiteCache(t *testing.T) {
	c := setupTestSQLite(t)
	exerciseCache(t, c)

	t.Run("Keys and Clear", func(t *testing.T) {
		ctx := context.Background()
		keys, err := c.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, "verifier:u1")

		n, err := c.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(keys)), n)

		keys, err = c.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("Persists across reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "persist.db")
		first, err := OpenSQLiteCache(path, shared.DatabaseConfig{})
		require.NoError(t, err)
		require.NoError(t, first.Set(context.Background(), "k", "v"))
		require.NoError(t, first.Close())

		second, err := OpenSQLiteCache(path, shared.DatabaseConfig{})
		require.NoError(t, err)
		defer second.Close()

		v, ok, err := second.Get(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})
}

func TestRedisCache(t *testing.T) {
	c, mr := setupTestRedis(t, "spotx:")
	exerciseCache(t, c)

	t.Run("Keys are prefixed in Redis", func(t *testing.T) {
		require.NoError(t, c.Set(context.Background(), "prefixed", "1"))
		assert.True(t, mr.Exists("spotx:prefixed"))

		v, err := mr.Get("spotx:prefixed")
		require.NoError(t, err)
		assert.Equal(t, "1", v)
	})

	t.Run("No expiration is set", func(t *testing.T) {
		require.NoError(t, c.Set(context.Background(), "durable", "1"))
		assert.Zero(t, mr.TTL("spotx:durable"))
	})

	t.Run("Clear only touches the prefix", func(t *testing.T) {
		require.NoError(t, mr.Set("other:key", "keep"))

		_, err := c.Clear(context.Background())
		require.NoError(t, err)

		assert.True(t, mr.Exists("other:key"))
		keys, err := c.Keys(context.Background())
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("Connection failure", func(t *testing.T) {
		_, err := NewRedisCache(context.Background(), RedisOpts{Addr: "127.0.0.1:1"})
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		c, err := Open(ctx, shared.CacheConfig{Backend: "memory"}, shared.DatabaseConfig{})
		require.NoError(t, err)
		assert.IsType(t, &MemoryCache{}, c)
		assert.NoError(t, Close(c))
	})

	t.Run("sqlite", func(t *testing.T) {
		c, err := Open(ctx, shared.CacheConfig{Backend: "sqlite", Path: ":memory:"}, shared.DatabaseConfig{})
		require.NoError(t, err)
		assert.IsType(t, &SQLiteCache{}, c)
		assert.NoError(t, Close(c))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, err := Open(ctx, shared.CacheConfig{Backend: "redis", RedisAddr: mr.Addr()}, shared.DatabaseConfig{})
		require.NoError(t, err)
		assert.IsType(t, &RedisCache{}, c)
		assert.NoError(t, Close(c))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(ctx, shared.CacheConfig{Backend: "memcached"}, shared.DatabaseConfig{})
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
	})
}
