// Package export writes campaign rows to an XLSX workbook with one sheet per
// gem tier.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/sograph-client/pkg/campaign"
	"github.com/Sternrassler/sograph-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ErrNoRows is returned when there is nothing to export.
var ErrNoRows = errors.New("no rows to export")

// timestampLayout renders DD_MM_YYYY_HH_MM_SS.
const timestampLayout = "02_01_2006_15_04_05"

var (
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sograph_exports_total",
		Help: "Workbook exports by result",
	}, []string{"result"})

	exportRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sograph_export_rows",
		Help:    "Rows written per export",
		Buckets: prometheus.ExponentialBuckets(10, 2, 8),
	})
)

// Exporter writes workbooks into a directory.
type Exporter struct {
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// New creates an exporter writing into dir. The directory must exist.
func New(dir string) *Exporter {
	return &Exporter{
		dir:    dir,
		now:    time.Now,
		logger: logging.NewLogger("exporter"),
	}
}

// WithClock overrides the clock used for file names.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// FileName returns the file name for an export made at t.
func FileName(t time.Time) string {
	return "result_" + t.UTC().Format(timestampLayout) + ".xlsx"
}

// Export groups rows by tier, renders the workbook in memory and writes it
// to result_<timestamp>.xlsx. The file appears under its final name only
// once completely written. Returns ErrNoRows for an empty input.
func (e *Exporter) Export(rows []campaign.Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRows
	}

	wb := Group(rows)
	f, err := wb.Build()
	if err != nil {
		exportsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		exportsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("serialize workbook: %w", err)
	}

	path, err := e.writeAtomic(FileName(e.now()), buf.Bytes())
	if err != nil {
		exportsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	exportsTotal.WithLabelValues("ok").Inc()
	exportRows.Observe(float64(wb.Len()))

	e.logger.Info().
		Str("path", path).
		Int("sheets", len(wb.Tiers)).
		Int("rows", wb.Len()).
		Msg("Workbook exported")

	return path, nil
}

// writeAtomic writes data to a temp file in the export directory and links
// it to name. If name is taken (two exports within one second) a numeric
// suffix is added so every export gets its own file. The link fails on an
// existing target, so concurrent exports never replace each other.
func (e *Exporter) writeAtomic(name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(e.dir, ".result-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return e.claimPath(tmpPath, name)
}

// claimPath links tmpPath to dir/name, or dir/<stem>_<n>.xlsx for the first
// n not yet taken, and returns the claimed path.
func (e *Exporter) claimPath(tmpPath, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]

	candidate := filepath.Join(e.dir, name)
	for n := 1; n < 1000; n++ {
		err := os.Link(tmpPath, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("link %s: %w", candidate, err)
		}
		candidate = filepath.Join(e.dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
	return "", fmt.Errorf("no free file name for %s", name)
}
