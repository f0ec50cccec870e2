// Package metrics exposes the Prometheus registry shared by the SoGraph client.
// Metrics are defined in the packages that record them (client, cache,
// pagination, export, sograph) and registered via promauto; this package
// documents them and serves them over HTTP.
package metrics

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prefix is the namespace shared by every sograph metric.
const Prefix = "sograph_"

// Registry is the registerer used by promauto in the metric-owning packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads the metrics registered through Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Names returns the sorted names of the sograph metric families currently
// exposed by g. Labelled families show up only after their first observation.
func Names(g prometheus.Gatherer) ([]string, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), Prefix) {
			names = append(names, mf.GetName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - sograph_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status
//   - sograph_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//   - sograph_errors_total{class} (Counter): errors by class (client, server, unexpected, network, decode)
//
// Cache Metrics (pkg/cache):
//   - sograph_cache_hits_total (Counter)
//   - sograph_cache_misses_total (Counter)
//   - sograph_cache_stored_bytes_total (Counter): bytes written to Redis
//   - sograph_cache_errors_total{operation} (Counter)
//
// Pagination Metrics (pkg/pagination):
//   - sograph_pages_fetched_total{result} (Counter): pages by result (ok, failed)
//
// Export Metrics (pkg/export):
//   - sograph_exports_total{result} (Counter): workbook writes by result (ok, error)
//   - sograph_export_rows (Histogram): rows per written workbook
//
// Check-in Metrics (pkg/sograph):
//   - sograph_checkins_total{code} (Counter): check-in results by code ("other" for raw messages)
//
// Example Prometheus Queries:
//
//   # Page failure ratio
//   sum(rate(sograph_pages_fetched_total{result="failed"}[1h])) /
//   sum(rate(sograph_pages_fetched_total[1h]))
//
//   # Failed check-ins
//   increase(sograph_checkins_total{code="404"}[1d])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(sograph_request_duration_seconds_bucket[5m]))
