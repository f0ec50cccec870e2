package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	// Registers the client, cache, pagination and export metrics.
	_ "github.com/Sternrassler/sograph-client/pkg/sograph"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestNames_UnlabelledMetricsRegistered(t *testing.T) {
	names, err := Names(Gatherer)
	if err != nil {
		t.Fatalf("Names() error: %v", err)
	}

	want := []string{
		"sograph_cache_hits_total",
		"sograph_cache_misses_total",
		"sograph_cache_stored_bytes_total",
		"sograph_export_rows",
	}
	for _, w := range want {
		found := false
		for _, n := range names {
			if n == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("metric %s not registered (got %v)", w, names)
		}
	}
}

func TestNames_FiltersPrefix(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "sograph_b_total"})
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "sograph_a_total"})
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "other_total"})

	names, err := Names(reg)
	if err != nil {
		t.Fatalf("Names() error: %v", err)
	}
	if len(names) != 2 || names[0] != "sograph_a_total" || names[1] != "sograph_b_total" {
		t.Errorf("Names() = %v, want [sograph_a_total sograph_b_total]", names)
	}
}

func TestHandler(t *testing.T) {
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Result().Body)
	if w.Code != 200 {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(string(body), "sograph_cache_hits_total") {
		t.Error("Expected sograph metrics in output")
	}
}
