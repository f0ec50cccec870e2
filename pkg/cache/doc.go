// Package cache provides an optional Redis cache for SoGraph API responses.
//
// Campaign listings change slowly compared to how often a scheduler may run
// an export, so a short TTL lets repeated runs (or the count request followed
// by the page-1 request) share one upstream call. The cache is off unless the
// client is given both a Redis client and a positive TTL.
//
// Only 200 responses to GET requests are stored. Keys include the credential
// address because listings are filtered per account.
//
// # Basic Usage
//
//	manager := cache.NewManager(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
//	key := cache.Key{
//		Endpoint:    "/api/campaign/list",
//		QueryParams: url.Values{"page": []string{"1"}},
//		Address:     "0xabc",
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		entry, _ = cache.ResponseToEntry(resp, time.Minute)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
//   - sograph_cache_hits_total
//   - sograph_cache_misses_total
//   - sograph_cache_stored_bytes_total
//   - sograph_cache_errors_total{operation}
package cache
