// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FakeTimer satisfies retry-go's Timer and fires immediately, recording each requested wait.
type FakeTimer struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (f *FakeTimer) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	f.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// Waits returns the durations requested so far.
func (f *FakeTimer) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

// TokenRequest is one request received by a [TokenServer].
type TokenRequest struct {
	Form   url.Values
	Header http.Header
}

// TokenServer is an httptest token endpoint that records every request it receives.
type TokenServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []TokenRequest
	respond  func(w http.ResponseWriter, r *http.Request)
}

// NewTokenServer starts a token endpoint answering with respond. It is closed when the test ends.
func NewTokenServer(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) *TokenServer {
	t.Helper()
	ts := &TokenServer{respond: respond}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ts.mu.Lock()
		ts.requests = append(ts.requests, TokenRequest{Form: r.PostForm, Header: r.Header.Clone()})
		ts.mu.Unlock()
		ts.respond(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Requests returns the requests received so far.
func (ts *TokenServer) Requests() []TokenRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]TokenRequest(nil), ts.requests...)
}

// Hits returns how many requests were received.
func (ts *TokenServer) Hits() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.requests)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// TokenResponse writes a successful OAuth token response.
func TokenResponse(w http.ResponseWriter, accessToken string, expiresIn int, refreshToken string) {
	body := map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
		"scope":        "user-read-email",
	}
	if refreshToken != "" {
		body["refresh_token"] = refreshToken
	}
	WriteJSON(w, http.StatusOK, body)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// NopCloser wraps s as a response body.
func NopCloser(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
