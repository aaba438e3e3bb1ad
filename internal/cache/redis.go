package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisOpts configures a [RedisCache].
type RedisOpts struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string // prepended to every key
}

// RedisCache stores entries as plain Redis strings without expiration, so several hosts can share tokens.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOpts) (*RedisCache, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{rdb: rdb, prefix: opts.Prefix}, nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, c.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Keys lists stored keys (without the prefix) in sorted order.
func (c *RedisCache) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), c.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes every key under the prefix and returns how many were deleted.
func (c *RedisCache) Clear(ctx context.Context) (int64, error) {
	keys, err := c.Keys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	n, err := c.rdb.Del(ctx, full...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return n, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
