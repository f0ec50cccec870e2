// Package pagination provides parallel batch fetching for page-numbered
// listings such as the SoGraph campaign list.
//
// The caller determines the page count first (the campaign list reports a
// total record count, see PageCount) and then hands it to a BatchFetcher,
// which runs a bounded worker pool over pages 1..n:
//
//	fetcher := pagination.NewBatchFetcher[campaign.Record](pages, pagination.DefaultConfig())
//	records, summary := fetcher.FetchAll(ctx, pagination.PageCount(total, 12))
//
// Behaviour:
//   - At most Config.MaxConcurrency pages are in flight (default 10)
//   - Items are appended in page completion order, so order across pages is
//     not deterministic
//   - A failed page contributes no items and is only logged; the remaining
//     pages are still fetched
//   - Context cancellation stops workers from picking up new pages
package pagination
