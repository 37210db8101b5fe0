// Package testutil provides testing utilities for the ad-platform API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockAPIResponse defines the behavior for a mock ad-platform endpoint response.
type MockAPIResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAdAPI is a configurable mock ad-platform API server for testing.
type MockAdAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
}

// NewMockAdAPI creates a new mock ad-platform API server.
func NewMockAdAPI() *MockAdAPI {
	mock := &MockAdAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()

		// Track conditional requests
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.ConditionalCount++
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAdAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAdAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAdAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAdAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAdAPI) SetResponse(path string, resp MockAPIResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPaginatedList serves a list endpoint from a fixture slice split into
// pages of pageSize. Pages after the first are addressed by pageToken
// "page-2", "page-3", and so on; the last page omits nextPageToken. The
// items land under itemsProperty, matching the entity-specific property
// name each list endpoint uses.
func (m *MockAdAPI) SetPaginatedList(path, itemsProperty string, items []json.RawMessage, pageSize int) {
	if pageSize <= 0 {
		pageSize = len(items)
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if token := r.URL.Query().Get("pageToken"); token != "" {
			fmt.Sscanf(token, "page-%d", &page)
		}

		start := (page - 1) * pageSize
		if start > len(items) {
			start = len(items)
		}
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}

		envelope := map[string]any{itemsProperty: items[start:end]}
		if end < len(items) {
			envelope["nextPageToken"] = fmt.Sprintf("page-%d", page+1)
		}

		writeQuotaHeaders(w, 100, 60)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(envelope)
	})
}

// SetPatchHandler serves a patch endpoint for one record. failWith, when
// non-zero, makes the endpoint answer with that status instead, for
// per-record failure injection.
func (m *MockAdAPI) SetPatchHandler(path string, responseBody string, failWith int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeQuotaHeaders(w, 100, 60)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if failWith != 0 {
			w.WriteHeader(failWith)
			w.Write([]byte(`{"error": "injected failure"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(responseBody))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAdAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockAdAPI) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// defaultHandler provides default ad-platform-like responses.
func (m *MockAdAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	writeQuotaHeaders(w, 100, 60)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.Header.Get("If-None-Match") != "" {
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", `"default-etag"`)
	w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func writeQuotaHeaders(w http.ResponseWriter, remaining, resetSeconds int64) {
	w.Header().Set("X-Rate-Limit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-Rate-Limit-Reset", strconv.FormatInt(resetSeconds, 10))
}

// NewHealthyResponse creates a standard 200 OK response with quota headers.
func NewHealthyResponse(data string) MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-Rate-Limit-Remaining": "100",
			"X-Rate-Limit-Reset":     "60",
			"ETag":                   `"test-etag-123"`,
			"Expires":                time.Now().Add(5 * time.Minute).Format(http.TimeFormat),
			"Content-Type":           "application/json; charset=utf-8",
		},
	}
}

// NewNotModifiedResponse creates a 304 Not Modified response.
func NewNotModifiedResponse() MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusNotModified,
		Headers: map[string]string{
			"X-Rate-Limit-Remaining": "100",
			"X-Rate-Limit-Reset":     "60",
			"Expires":                time.Now().Add(5 * time.Minute).Format(http.TimeFormat),
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"X-Rate-Limit-Remaining": "5",
			"X-Rate-Limit-Reset":     "30",
			"Content-Type":           "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"X-Rate-Limit-Remaining": "95",
			"X-Rate-Limit-Reset":     "60",
			"Content-Type":           "application/json; charset=utf-8",
		},
	}
}

// NewConditionalHandler creates a handler that responds with 304 for conditional requests.
func NewConditionalHandler(etag string, data string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeQuotaHeaders(w, 100, 60)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Header.Get("If-None-Match") == etag {
			w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}
}
