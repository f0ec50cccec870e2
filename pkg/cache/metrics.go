package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts responses served from Redis.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sograph_cache_hits_total",
			Help: "Total number of SoGraph response cache hits",
		},
	)

	// CacheMisses counts lookups that fell through to the API.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sograph_cache_misses_total",
			Help: "Total number of SoGraph response cache misses",
		},
	)

	// CacheStoredBytes counts bytes written to Redis.
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sograph_cache_stored_bytes_total",
			Help: "Total bytes of SoGraph responses written to the cache",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sograph_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
