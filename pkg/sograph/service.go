// Package sograph implements the SoGraph campaign export and daily check-in:
// count the active campaigns, fetch every page, reshape the records into
// localized rows and write them to a workbook grouped by gem tier.
package sograph

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/sograph-client/pkg/campaign"
	"github.com/Sternrassler/sograph-client/pkg/client"
	"github.com/Sternrassler/sograph-client/pkg/export"
	"github.com/Sternrassler/sograph-client/pkg/logging"
	"github.com/Sternrassler/sograph-client/pkg/pagination"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// API endpoints.
const (
	CampaignListEndpoint = "/api/campaign/list"
	CheckInEndpoint      = "/api/user/check/in"
)

// PageSize is the number of campaigns per list page.
const PageSize = 12

// Check-in status codes.
const (
	CheckInAlreadyDone = "0"
	CheckInOK          = "1"
	CheckInNeedsLogin  = "2"
	CheckInFailed      = "404"
)

var checkInCodes = map[string]string{
	"Signed in today": CheckInAlreadyDone,
	"OK":              CheckInOK,
	"Please login":    CheckInNeedsLogin,
}

var checkInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sograph_checkins_total",
	Help: "Daily check-in calls by returned code",
}, []string{"code"})

// API is the subset of *client.Client the service uses.
type API interface {
	GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error
	PostJSON(ctx context.Context, endpoint string, out any) error
}

// Config configures a Service.
type Config struct {
	// Fetch bounds the page fan-out.
	Fetch pagination.Config

	// Now is the clock used for remaining-time computation. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Fetch: pagination.DefaultConfig(),
		Now:   time.Now,
	}
}

// Service runs exports and check-ins for one set of credentials.
type Service struct {
	api      API
	exporter *export.Exporter
	fetch    pagination.Config
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService creates a service. exporter may be nil for check-in only use.
func NewService(api API, exporter *export.Exporter, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		api:      api,
		exporter: exporter,
		fetch:    cfg.Fetch,
		now:      cfg.Now,
		logger:   logging.NewLogger("sograph"),
	}
}

// listQuery returns the fixed campaign list query for page.
func listQuery(page int) url.Values {
	return url.Values{
		"campaign_type":  []string{"all"},
		"reward_type":    []string{"all"},
		"status":         []string{"active"},
		"trending":       []string{"0"},
		"verified":       []string{"0"},
		"name":           []string{""},
		"page":           []string{strconv.Itoa(page)},
		"pagesize":       []string{strconv.Itoa(PageSize)},
		"hide_completed": []string{"1"},
	}
}

// CountTotal returns the number of active campaigns, or 0 when the request
// fails or the total is missing.
func (s *Service) CountTotal(ctx context.Context) int {
	var page campaign.Page
	if err := s.api.GetJSON(ctx, CampaignListEndpoint, listQuery(1), &page); err != nil {
		s.logger.Warn().
			Err(err).
			Str("endpoint", CampaignListEndpoint).
			Int("status_code", client.StatusCodeOf(err)).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Campaign count failed, treating as zero")
		return 0
	}
	return page.TotalOrZero()
}

// FetchPage fetches the records of one list page.
func (s *Service) FetchPage(ctx context.Context, page int) ([]campaign.Record, error) {
	var resp campaign.Page
	if err := s.api.GetJSON(ctx, CampaignListEndpoint, listQuery(page), &resp); err != nil {
		return nil, err
	}
	return resp.Records(), nil
}

// FetchAll fetches every campaign. Pages are fetched concurrently and their
// records appended in completion order; a failed page contributes nothing.
// Duplicates caused by upstream pagination drift are kept.
func (s *Service) FetchAll(ctx context.Context) []campaign.Record {
	total := s.CountTotal(ctx)
	if total <= 0 {
		return nil
	}

	pages := pagination.PageCount(total, PageSize)
	s.logger.Info().
		Int("total", total).
		Int("pages", pages).
		Msg("Fetching campaigns")

	fetcher := pagination.NewBatchFetcher[campaign.Record](pagination.PageFetcherFunc[campaign.Record](s.FetchPage), s.fetch)
	records, _ := fetcher.FetchAll(ctx, pages)
	return records
}

// ParseData runs a full export and returns the written file path. It returns
// "" and a nil error when no campaigns were gathered; the error is non-nil
// only when the workbook could not be written.
func (s *Service) ParseData(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Logger()

	start := time.Now()
	records := s.FetchAll(ctx)
	if len(records) == 0 {
		logger.Info().Dur("duration", time.Since(start)).Msg("No campaigns gathered, nothing to export")
		return "", nil
	}

	if s.exporter == nil {
		return "", errors.New("no exporter configured")
	}

	rows := campaign.TransformAll(records, s.now())
	path, err := s.exporter.Export(rows)
	if err != nil {
		logger.Error().Err(err).Int("rows", len(rows)).Msg("Export failed")
		return "", err
	}

	logger.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Campaign export complete")

	return path, nil
}

// CollectDaily performs the daily check-in and maps the response message to
// a status code: "0" already signed in, "1" signed in now, "2" login needed,
// the raw message for anything else, "404" when the call failed.
func (s *Service) CollectDaily(ctx context.Context) string {
	var resp struct {
		Message string `json:"message"`
	}

	code := CheckInFailed
	if err := s.api.PostJSON(ctx, CheckInEndpoint, &resp); err != nil {
		s.logger.Warn().
			Err(err).
			Str("endpoint", CheckInEndpoint).
			Int("status_code", client.StatusCodeOf(err)).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Check-in failed")
	} else if mapped, ok := checkInCodes[resp.Message]; ok {
		code = mapped
	} else {
		code = resp.Message
	}

	checkInsTotal.WithLabelValues(metricLabel(code)).Inc()

	s.logger.Info().Str("code", code).Msg("Check-in done")
	return code
}

// metricLabel keeps the code label bounded: raw messages collapse to "other".
func metricLabel(code string) string {
	switch code {
	case CheckInAlreadyDone, CheckInOK, CheckInNeedsLogin, CheckInFailed:
		return code
	default:
		return "other"
	}
}
