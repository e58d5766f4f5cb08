package cache

import (
	"context"
	"errors"
	"fmt"

	"vexrank/pkg/config"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a response cache backend.
type Store interface {
	// Get retrieves an entry by key.
	// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Set stores an entry with a TTL taken from the entry's Expires field.
	// Entries that are already expired are not stored.
	Set(ctx context.Context, key Key, entry *Entry) error

	// Delete removes an entry.
	Delete(ctx context.Context, key Key) error

	// Close releases backend resources.
	Close() error
}

// New builds the store selected by the cache configuration.
func New(cfg *config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
