package cache

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process cache backend. It is the default: harvest runs are
// short-lived and a map survives exactly as long as the process needs it.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
	}
}

// Get retrieves an entry. Expired entries are evicted on access.
func (m *Memory) Get(_ context.Context, key Key) (*Entry, error) {
	cacheKey := key.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[cacheKey]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if entry.IsExpired() {
		delete(m.entries, cacheKey)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry, nil
}

// Set stores an entry. Already-expired entries are dropped silently.
func (m *Memory) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if entry.TTL() <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key.String()] = entry
	return nil
}

// Delete removes an entry.
func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key.String())
	return nil
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry)
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
