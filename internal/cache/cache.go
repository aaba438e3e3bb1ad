// package cache implements the string key-value stores that persist access tokens and PKCE verifiers.
//
// Entries never expire at this layer; the auth strategies judge staleness from the expiry embedded in
// each serialized token.
package cache

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotx/internal/shared"
)

// Cache is the three-operation store shared by every auth strategy.
//
// Get reports ok=false for a missing key; a missing key is not an error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by caches holding external connections.
type Closer interface {
	Close() error
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg shared.CacheConfig, db shared.DatabaseConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(), nil
	case "sqlite":
		return OpenSQLiteCache(cfg.Path, db)
	case "redis":
		return NewRedisCache(ctx, RedisOpts{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}

// Close releases c when it holds external resources.
func Close(c Cache) error {
	if closer, ok := c.(Closer); ok {
		return closer.Close()
	}
	return nil
}
