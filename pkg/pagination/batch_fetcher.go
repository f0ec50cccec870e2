// Package pagination provides parallel fetching of page-numbered listings.
package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sograph_pages_fetched_total",
	Help: "Pages fetched by the batch fetcher by result",
}, []string{"result"})

// Result labels of sograph_pages_fetched_total.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of pages in flight.
	MaxConcurrency int

	// Timeout per page fetch. Zero means no per-page deadline beyond the
	// HTTP client's own.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
	}
}

// PageCount returns ceil(total / pageSize), or 0 when either is not positive.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageFetcher fetches the items of a single 1-based page.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page int) ([]T, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, page int) ([]T, error)

// FetchPage calls f.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	return f(ctx, page)
}

// PageResult is the outcome of fetching a single page.
type PageResult[T any] struct {
	PageNumber int
	Items      []T
	Error      error
}

// Summary describes a finished FetchAll call.
type Summary struct {
	Requested int
	Succeeded int
	Failed    int
	Items     int
	Duration  time.Duration
}

// BatchFetcher fetches pages 1..n through a bounded worker pool.
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  Config
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher[T any](fetcher PageFetcher[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches pages 1..totalPages and concatenates their items in the
// order the pages complete. A failed page is logged and contributes nothing;
// every item of every successful page is returned.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context, totalPages int) ([]T, Summary) {
	start := time.Now()
	summary := Summary{Requested: totalPages}
	if totalPages <= 0 {
		return nil, summary
	}

	workers := bf.config.MaxConcurrency
	if workers > totalPages {
		workers = totalPages
	}

	log.Debug().
		Int("total_pages", totalPages).
		Int("workers", workers).
		Msg("Starting parallel page fetch")

	pageQueue := make(chan int, totalPages)
	for page := 1; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	pageResults := make(chan PageResult[T], totalPages)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, pageResults, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
	}()

	// Single consumer: no lock needed on items.
	var items []T
	for result := range pageResults {
		if result.Error != nil {
			summary.Failed++
			pagesFetched.WithLabelValues(ResultFailed).Inc()
			log.Warn().
				Err(result.Error).
				Int("page", result.PageNumber).
				Msg("Page fetch failed")
			continue
		}

		summary.Succeeded++
		pagesFetched.WithLabelValues(ResultOK).Inc()
		items = append(items, result.Items...)
	}

	// Pages never picked up because the context ended count as failed.
	summary.Failed += totalPages - summary.Succeeded - summary.Failed
	summary.Items = len(items)
	summary.Duration = time.Since(start)

	log.Info().
		Int("pages", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("total", totalPages).
		Int("items", summary.Items).
		Dur("duration", summary.Duration).
		Msg("Fetch complete")

	return items, summary
}

// worker processes pages from the queue until it is drained or ctx ends.
func (bf *BatchFetcher[T]) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult[T], wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageNum := range pageQueue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageCtx, cancel := ctx, context.CancelFunc(func() {})
		if bf.config.Timeout > 0 {
			pageCtx, cancel = context.WithTimeout(ctx, bf.config.Timeout)
		}
		items, err := bf.fetcher.FetchPage(pageCtx, pageNum)
		cancel()

		// results is buffered for every page, so this never blocks.
		results <- PageResult[T]{PageNumber: pageNum, Items: items, Error: err}
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

