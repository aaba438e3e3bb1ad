package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/spotx/internal/shared"
)

// SQLiteCache stores entries in the cache_entries table created by [shared.RunMigrations].
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache wraps an already migrated database handle.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

// OpenSQLiteCache opens (or creates) the database at path and applies pending migrations.
func OpenSQLiteCache(path string, cfg shared.DatabaseConfig) (*SQLiteCache, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if path == ":memory:" || maxOpen <= 0 {
		maxOpen, maxIdle = 1, 1
	}
	shared.ConfigureDatabase(db, maxOpen, maxIdle)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewSQLiteCache(db), nil
}

func (s *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM cache_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteCache) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO cache_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteCache) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (s *SQLiteCache) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Keys lists stored keys in sorted order.
func (s *SQLiteCache) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM cache_entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
