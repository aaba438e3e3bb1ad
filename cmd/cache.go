package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// keyLister is implemented by every cache backend.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

type clearer interface {
	Clear(ctx context.Context) (int64, error)
}

// CacheKeys lists every key in the configured cache.
func (r *Runner) CacheKeys(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openCache(ctx)
	if err != nil {
		return err
	}
	lister, ok := c.(keyLister)
	if !ok {
		return fmt.Errorf("%w: %s cache cannot list keys", shared.ErrNotImplemented, r.config.Cache.Backend)
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		r.printer.Note("Cache is empty")
		return nil
	}
	for i, k := range keys {
		r.printer.Line(i+1, k, "")
	}
	return nil
}

// CacheGet prints the raw value stored under a key.
func (r *Runner) CacheGet(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key is required", shared.ErrMissingArgument)
	}

	c, err := r.openCache(ctx)
	if err != nil {
		return err
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: no cache entry for %q", shared.ErrInvalidArgument, key)
	}
	return r.writePlain("%s\n", v)
}

// CacheClear removes every entry, logging out all users.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openCache(ctx)
	if err != nil {
		return err
	}
	cl, ok := c.(clearer)
	if !ok {
		return fmt.Errorf("%w: %s cache cannot be cleared", shared.ErrNotImplemented, r.config.Cache.Backend)
	}

	n, err := cl.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	r.printer.Success("Removed %d cache entries", n)
	return nil
}
