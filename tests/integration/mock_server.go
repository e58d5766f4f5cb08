package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vexrank/pkg/robotevents"
)

// MockRobotEventsServer simulates the RobotEvents v2 API: bearer
// authentication, the meta/data list envelope, page-by-page traversal and
// injectable failures. The season hierarchy is seeded in memory per test,
// so no fixture files are involved.
type MockRobotEventsServer struct {
	server *httptest.Server
	token  string

	requestCount   int32
	rateLimitHits  int32
	rateLimitLeft  int32
	retryAfterSecs int32

	mu             sync.RWMutex
	pageSize       int
	seasons        []robotevents.Season
	events         map[int][]robotevents.Event    // season id -> events
	divisions      map[int][]robotevents.Division // event id -> divisions
	matches        map[string][]robotevents.Match // "event/division" -> matches
	errorResponses map[string]int                 // path -> injected status code
	delays         map[string]time.Duration       // path -> response delay
	pathCounts     map[string]int
}

// NewMockRobotEventsServer starts a mock API accepting the given bearer
// token. Responses are paged two items at a time so even small datasets
// make the client walk multiple pages.
func NewMockRobotEventsServer(token string) *MockRobotEventsServer {
	m := &MockRobotEventsServer{
		token:          token,
		pageSize:       2,
		events:         make(map[int][]robotevents.Event),
		divisions:      make(map[int][]robotevents.Division),
		matches:        make(map[string][]robotevents.Match),
		errorResponses: make(map[string]int),
		delays:         make(map[string]time.Duration),
		pathCounts:     make(map[string]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// handle routes one request: count it, apply the configured failure knobs,
// then serve the addressed slice of the hierarchy.
func (m *MockRobotEventsServer) handle(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	m.countPath(r.URL.Path)

	if delay := m.getDelay(r.URL.Path); delay > 0 {
		time.Sleep(delay)
	}

	if r.Header.Get("Authorization") != "Bearer "+m.token {
		m.sendError(w, http.StatusUnauthorized)
		return
	}

	if code := m.getErrorResponse(r.URL.Path); code > 0 {
		if code == http.StatusTooManyRequests {
			atomic.AddInt32(&m.rateLimitHits, 1)
			w.Header().Set("Retry-After", m.retryAfterValue())
		}
		m.sendError(w, code)
		return
	}

	if m.takeRateLimit() {
		atomic.AddInt32(&m.rateLimitHits, 1)
		w.Header().Set("Retry-After", m.retryAfterValue())
		m.sendError(w, http.StatusTooManyRequests)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "seasons":
		m.handleSeasons(w, r)
	case len(parts) == 3 && parts[0] == "seasons" && parts[2] == "events":
		m.handleSeasonEvents(w, r, atoi(parts[1]))
	case len(parts) == 3 && parts[0] == "events" && parts[2] == "divisions":
		m.handleEventDivisions(w, r, atoi(parts[1]))
	case len(parts) == 5 && parts[0] == "events" && parts[2] == "divisions" && parts[4] == "matches":
		m.handleDivisionMatches(w, r, atoi(parts[1]), atoi(parts[3]))
	default:
		m.sendError(w, http.StatusNotFound)
	}
}

// handleSeasons serves the season list, honoring the program[] filter the
// client sends.
func (m *MockRobotEventsServer) handleSeasons(w http.ResponseWriter, r *http.Request) {
	programs := r.URL.Query()["program[]"]

	m.mu.RLock()
	seasons := make([]robotevents.Season, 0, len(m.seasons))
	for _, season := range m.seasons {
		if len(programs) == 0 || containsID(programs, season.Program.ID) {
			seasons = append(seasons, season)
		}
	}
	pageSize := m.pageSize
	m.mu.RUnlock()

	writePage(w, r, pageSize, seasons)
}

func (m *MockRobotEventsServer) handleSeasonEvents(w http.ResponseWriter, r *http.Request, seasonID int) {
	m.mu.RLock()
	events := append([]robotevents.Event(nil), m.events[seasonID]...)
	pageSize := m.pageSize
	m.mu.RUnlock()

	writePage(w, r, pageSize, events)
}

func (m *MockRobotEventsServer) handleEventDivisions(w http.ResponseWriter, r *http.Request, eventID int) {
	m.mu.RLock()
	divisions := append([]robotevents.Division(nil), m.divisions[eventID]...)
	pageSize := m.pageSize
	m.mu.RUnlock()

	writePage(w, r, pageSize, divisions)
}

// handleDivisionMatches serves a division's matches, filtering unscored ones
// out when the client asks for scored=1.
func (m *MockRobotEventsServer) handleDivisionMatches(w http.ResponseWriter, r *http.Request, eventID, divisionID int) {
	scoredOnly := r.URL.Query().Get("scored") == "1"

	m.mu.RLock()
	all := m.matches[matchKey(eventID, divisionID)]
	matches := make([]robotevents.Match, 0, len(all))
	for _, match := range all {
		if scoredOnly && !match.Scored {
			continue
		}
		matches = append(matches, match)
	}
	pageSize := m.pageSize
	m.mu.RUnlock()

	writePage(w, r, pageSize, matches)
}

// pageMeta mirrors the pagination block the API attaches to list responses.
type pageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// page is the standard list response shape.
type page[T any] struct {
	Meta pageMeta `json:"meta"`
	Data []T      `json:"data"`
}

// writePage serves one page of items. The mock pages by its own size rather
// than the requested per_page, which is how small fixtures still span
// multiple pages.
func writePage[T any](w http.ResponseWriter, r *http.Request, pageSize int, items []T) {
	current, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if current < 1 {
		current = 1
	}

	last := (len(items) + pageSize - 1) / pageSize
	if last < 1 {
		last = 1
	}

	start := (current - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	resp := page[T]{
		Meta: pageMeta{
			CurrentPage: current,
			LastPage:    last,
			PerPage:     pageSize,
			Total:       len(items),
		},
		Data: items[start:end],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// sendError writes an error response in the API's message shape.
func (m *MockRobotEventsServer) sendError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	switch code {
	case http.StatusUnauthorized:
		fmt.Fprint(w, `{"message":"Unauthenticated."}`)
	case http.StatusTooManyRequests:
		fmt.Fprint(w, `{"message":"Too Many Attempts."}`)
	case http.StatusNotFound:
		fmt.Fprint(w, `{"message":"Not Found."}`)
	default:
		fmt.Fprintf(w, `{"message":"Server Error (%d)."}`, code)
	}
}

// AddSeason registers a season for discovery.
func (m *MockRobotEventsServer) AddSeason(season robotevents.Season) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasons = append(m.seasons, season)
}

// AddEvent registers an event under a season.
func (m *MockRobotEventsServer) AddEvent(seasonID int, event robotevents.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[seasonID] = append(m.events[seasonID], event)
}

// AddDivision registers a division under an event.
func (m *MockRobotEventsServer) AddDivision(eventID int, division robotevents.Division) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.divisions[eventID] = append(m.divisions[eventID], division)
}

// AddMatches registers matches under an event's division, stamping the event
// and division references the way the API echoes them back.
func (m *MockRobotEventsServer) AddMatches(eventID, divisionID int, matches ...robotevents.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := matchKey(eventID, divisionID)
	for _, match := range matches {
		if match.Event.ID == 0 {
			match.Event = robotevents.IDInfo{ID: eventID}
		}
		if match.Division.ID == 0 {
			match.Division = robotevents.IDInfo{ID: divisionID}
		}
		m.matches[key] = append(m.matches[key], match)
	}
}

// SetPageSize changes how many items each list page carries.
func (m *MockRobotEventsServer) SetPageSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.pageSize = n
	}
}

// SetErrorResponse configures a path to answer with the given status code.
func (m *MockRobotEventsServer) SetErrorResponse(path string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[path] = code
}

// ClearErrorResponse removes the error configured for a path.
func (m *MockRobotEventsServer) ClearErrorResponse(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errorResponses, path)
}

// SetDelay configures a response delay for a path.
func (m *MockRobotEventsServer) SetDelay(path string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = delay
}

// RateLimitNext makes the next n requests answer 429 regardless of path.
func (m *MockRobotEventsServer) RateLimitNext(n int) {
	atomic.StoreInt32(&m.rateLimitLeft, int32(n))
}

// SetRetryAfter sets the Retry-After value, in seconds, sent with 429s.
// It defaults to zero so retrying tests stay fast.
func (m *MockRobotEventsServer) SetRetryAfter(seconds int) {
	atomic.StoreInt32(&m.retryAfterSecs, int32(seconds))
}

func (m *MockRobotEventsServer) getErrorResponse(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorResponses[path]
}

func (m *MockRobotEventsServer) getDelay(path string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.delays[path]
}

// takeRateLimit consumes one slot of the injected rate limit budget.
func (m *MockRobotEventsServer) takeRateLimit() bool {
	for {
		left := atomic.LoadInt32(&m.rateLimitLeft)
		if left <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt32(&m.rateLimitLeft, left, left-1) {
			return true
		}
	}
}

func (m *MockRobotEventsServer) retryAfterValue() string {
	return strconv.Itoa(int(atomic.LoadInt32(&m.retryAfterSecs)))
}

func (m *MockRobotEventsServer) countPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pathCounts[path]++
}

// GetURL returns the base URL of the mock server.
func (m *MockRobotEventsServer) GetURL() string {
	return m.server.URL
}

// GetRequestCount returns the total number of requests served.
func (m *MockRobotEventsServer) GetRequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// GetPathRequests returns how many requests hit one path, all pages included.
func (m *MockRobotEventsServer) GetPathRequests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// GetRateLimitHits returns the number of 429 responses served.
func (m *MockRobotEventsServer) GetRateLimitHits() int {
	return int(atomic.LoadInt32(&m.rateLimitHits))
}

// ResetCounters resets the request counters.
func (m *MockRobotEventsServer) ResetCounters() {
	atomic.StoreInt32(&m.requestCount, 0)
	atomic.StoreInt32(&m.rateLimitHits, 0)
	m.mu.Lock()
	m.pathCounts = make(map[string]int)
	m.mu.Unlock()
}

// Close shuts down the mock server.
func (m *MockRobotEventsServer) Close() {
	m.server.Close()
}

func matchKey(eventID, divisionID int) string {
	return fmt.Sprintf("%d/%d", eventID, divisionID)
}

func containsID(values []string, id int) bool {
	for _, v := range values {
		if v == strconv.Itoa(id) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
