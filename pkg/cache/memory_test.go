package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"vexrank/pkg/config"
)

func TestMemorySetAndGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	key := Key{Path: "/seasons/190/events"}
	entry := NewEntry([]byte(`{"data":[]}`), 200, 5*time.Minute)

	if err := store.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(retrieved.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved.Data, entry.Data)
	}
	if retrieved.StatusCode != 200 {
		t.Errorf("StatusCode mismatch: got %d, want 200", retrieved.StatusCode)
	}
}

func TestMemoryGetCacheMiss(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), Key{Path: "/nonexistent"})
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryExpiredEntry(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	key := Key{Path: "/seasons"}

	// Already expired: Set drops it silently.
	expired := &Entry{
		Data:    []byte("{}"),
		Expires: time.Now().Add(-1 * time.Minute),
	}
	if err := store.Set(ctx, key, expired); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}

	// An entry that expires after storage is evicted on access.
	shortLived := NewEntry([]byte("{}"), 200, 20*time.Millisecond)
	if err := store.Set(ctx, key, shortLived); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiry, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted, %d entries remain", store.Len())
	}
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	key := Key{Path: "/seasons"}

	if err := store.Set(ctx, key, NewEntry([]byte("{}"), 200, time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestMemorySetNilEntry(t *testing.T) {
	store := NewMemory()

	if err := store.Set(context.Background(), Key{Path: "/x"}, nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}

func TestMemoryClose(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_ = store.Set(ctx, Key{Path: "/a"}, NewEntry(nil, 200, time.Minute))
	_ = store.Set(ctx, Key{Path: "/b"}, NewEntry(nil, 200, time.Minute))

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store after Close, got %d entries", store.Len())
	}
}

func TestNewSelectsBackend(t *testing.T) {
	store, err := New(&config.CacheConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := store.(*Memory); !ok {
		t.Errorf("Expected *Memory, got %T", store)
	}

	if _, err := New(&config.CacheConfig{Backend: "etcd"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
