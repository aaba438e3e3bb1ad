package cache

import (
	"context"
	"slices"
	"sync"
)

// MemoryCache is a process-local [Cache]. Contents are lost on restart.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryCache) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryCache) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Keys lists every key in sorted order.
func (m *MemoryCache) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Clear removes every entry and returns how many were dropped.
func (m *MemoryCache) Clear(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	clear(m.entries)
	return int64(n), nil
}
