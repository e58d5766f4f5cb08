// Package cache provides response caching for RobotEvents API calls with
// in-memory and Redis backends.
//
// The harvester re-reads slow-moving collections (seasons, events, divisions)
// across runs; caching those responses keeps repeat runs inside the request
// budget. Entries carry a fixed TTL from configuration since the API does not
// publish expiry headers.
//
// # Basic Usage
//
//	store, err := cache.New(&cfg.Cache)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	key := cache.Key{
//		Path:  "/seasons/190/events",
//		Query: url.Values{"page": []string{"2"}},
//	}
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		store.Set(ctx, key, cache.NewEntry(body, resp.StatusCode, ttl))
//	}
//
// # Metrics
//
// The package exports Prometheus counters:
//
//   - vexrank_cache_hits_total{backend} - cache hits by backend
//   - vexrank_cache_misses_total - cache misses
//   - vexrank_cache_errors_total{operation} - cache operation errors
package cache
