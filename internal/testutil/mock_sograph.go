// Package testutil provides a mock SoGraph API for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/Sternrassler/sograph-client/pkg/campaign"
)

// API paths served by the mock.
const (
	CampaignListPath = "/api/campaign/list"
	CheckInPath      = "/api/user/check/in"
)

// CheckInResponse configures the check-in endpoint.
type CheckInResponse struct {
	StatusCode int
	Message    string
	// RawBody overrides the JSON body when set.
	RawBody string
}

// MockSograph is a configurable in-process SoGraph API.
type MockSograph struct {
	server *httptest.Server

	mu         sync.RWMutex
	campaigns  []campaign.Record
	total      *int
	listStatus int
	failPages  map[int]bool
	checkIn    CheckInResponse

	requests     map[string]int
	pageRequests map[int]int
	lastHeader   http.Header
}

// NewMockSograph starts a mock server with no campaigns and a check-in that
// answers "OK".
func NewMockSograph() *MockSograph {
	m := &MockSograph{
		listStatus:   http.StatusOK,
		failPages:    make(map[int]bool),
		checkIn:      CheckInResponse{StatusCode: http.StatusOK, Message: "OK"},
		requests:     make(map[string]int),
		pageRequests: make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CampaignListPath, m.handleList)
	mux.HandleFunc(CheckInPath, m.handleCheckIn)

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests[r.Method+" "+r.URL.Path]++
		m.lastHeader = r.Header.Clone()
		m.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockSograph) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSograph) Close() {
	m.server.Close()
}

// SetCampaigns sets the full campaign listing.
func (m *MockSograph) SetCampaigns(records []campaign.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns = append([]campaign.Record(nil), records...)
}

// SetTotal overrides the reported total independently of the listing.
func (m *MockSograph) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = &total
}

// SetListStatus makes every list request answer with status.
func (m *MockSograph) SetListStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listStatus = status
}

// FailPage makes page requests for page answer 500. The count request
// (the first page-1 request) is not affected.
func (m *MockSograph) FailPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPages[page] = true
}

// SetCheckIn configures the check-in response.
func (m *MockSograph) SetCheckIn(resp CheckInResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkIn = resp
}

// RequestCount returns the number of requests for "METHOD /path".
func (m *MockSograph) RequestCount(methodPath string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[methodPath]
}

// PageRequests returns how often each page of the listing was requested.
func (m *MockSograph) PageRequests() map[int]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]int, len(m.pageRequests))
	for k, v := range m.pageRequests {
		out[k] = v
	}
	return out
}

// LastHeader returns the headers of the most recent request.
func (m *MockSograph) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader.Clone()
}

// Reset clears request counters.
func (m *MockSograph) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.pageRequests = make(map[int]int)
	m.lastHeader = nil
}

func (m *MockSograph) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pagesize"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 12
	}

	m.mu.Lock()
	m.pageRequests[page]++
	seen := m.pageRequests[page]
	status := m.listStatus
	fail := m.failPages[page] && !(page == 1 && seen == 1)
	total := len(m.campaigns)
	if m.total != nil {
		total = *m.total
	}
	var items []campaign.Record
	if start := (page - 1) * size; start < len(m.campaigns) {
		end := start + size
		if end > len(m.campaigns) {
			end = len(m.campaigns)
		}
		items = m.campaigns[start:end]
	}
	m.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"internal error"}`))
		return
	}

	if items == nil {
		items = []campaign.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"total": total,
			"data":  items,
		},
	})
}

func (m *MockSograph) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	m.mu.RLock()
	resp := m.checkIn
	m.mu.RUnlock()

	if resp.RawBody != "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.RawBody))
		return
	}

	writeJSON(w, resp.StatusCode, map[string]string{"message": resp.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Campaign builds a record for tests.
func Campaign(name string, verified, recommended bool, endTime *float64, prizes ...string) campaign.Record {
	url := "https://sograph.xyz/campaign/" + name
	tasks := 3
	return campaign.Record{
		IsVerify:    campaign.Flag(verified),
		IsRecommend: campaign.Flag(recommended),
		EndTime:     endTime,
		URL:         &url,
		SpaceName:   &name,
		TaskCount:   &tasks,
		PrizeTypes:  prizes,
	}
}
