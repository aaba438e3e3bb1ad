package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/shared"
	tu "github.com/desertthunder/spotx/internal/testing"
	"golang.org/x/time/rate"
)

type testAlbum struct {
	ID     string       `json:"id" validate:"required"`
	Name   string       `json:"name" validate:"required"`
	Images []*testImage `json:"images" validate:"dive"`
}

type testImage struct {
	URL string `json:"url" validate:"required"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Opts)) (*Client, *tu.FakeTimer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	timer := &tu.FakeTimer{}
	opts := Opts{
		BaseURL: srv.URL,
		Auth:    auth.NewStatic("test-token"),
		Logger:  shared.NewLogger(io.Discard),
		Timer:   timer,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	c, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c, timer
}

func asAPIError(t *testing.T, err error) *shared.Error {
	t.Helper()
	var apiErr *shared.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *shared.Error, got %T: %v", err, err)
	}
	return apiErr
}

func TestNew(t *testing.T) {
	t.Run("Requires an authenticator", func(t *testing.T) {
		if _, err := New(Opts{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Rejects a relative base URL", func(t *testing.T) {
		_, err := New(Opts{BaseURL: "api/v1", Auth: auth.NewStatic("x")})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Defaults to the Spotify API", func(t *testing.T) {
		c, err := New(Opts{Auth: auth.NewStatic("x")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		target, err := c.resolve(Get("albums/1", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target != "https://api.spotify.com/v1/albums/1" {
			t.Errorf("unexpected URL %s", target)
		}
	})
}

func TestClientDo(t *testing.T) {
	ctx := context.Background()

	t.Run("Decodes a valid payload", func(t *testing.T) {
		var gotAuth, gotPath string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			tu.WriteJSON(w, http.StatusOK, map[string]any{
				"id":     "a1",
				"name":   "Album",
				"images": []map[string]any{{"url": "https://i.scdn.co/1"}},
			})
		})

		album, err := Fetch[testAlbum](ctx, c, Get("/albums/a1", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if album.ID != "a1" || album.Name != "Album" || len(album.Images) != 1 {
			t.Errorf("unexpected album %+v", album)
		}
		if gotAuth != "Bearer test-token" {
			t.Errorf("expected bearer header, got %q", gotAuth)
		}
		if gotPath != "/albums/a1" {
			t.Errorf("expected /albums/a1, got %s", gotPath)
		}
	})

	t.Run("Query flattening omits unset options", func(t *testing.T) {
		var query url.Values
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			tu.WriteJSON(w, http.StatusOK, map[string]any{"id": "a1", "name": "Album"})
		})

		_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", &Options{Market: "US", Limit: Int(5)}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if query.Get("market") != "US" || query.Get("limit") != "5" {
			t.Errorf("expected market=US&limit=5, got %s", query.Encode())
		}
		if query.Has("offset") {
			t.Errorf("expected no offset parameter, got %s", query.Encode())
		}
		if len(query) != 2 {
			t.Errorf("expected exactly two parameters, got %s", query.Encode())
		}
	})

	t.Run("List values are trimmed and comma joined", func(t *testing.T) {
		var raw string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			raw = r.URL.RawQuery
			tu.WriteJSON(w, http.StatusOK, []testAlbum{})
		})

		req := Get("albums", &Options{IncludeGroups: []string{"album ", " single"}})
		req.Query = url.Values{"ids": {JoinList([]string{" a", "b ", " c "})}}
		if _, err := Fetch[[]testAlbum](ctx, c, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(raw, "ids=a%2Cb%2Cc") {
			t.Errorf("expected ids=a%%2Cb%%2Cc in %q", raw)
		}
		if !strings.Contains(raw, "include_groups=album%2Csingle") {
			t.Errorf("expected include_groups=album%%2Csingle in %q", raw)
		}
	})

	t.Run("Route query is kept", func(t *testing.T) {
		var query url.Values
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			tu.WriteJSON(w, http.StatusOK, map[string]any{"id": "a1", "name": "Album"})
		})

		if _, err := Fetch[testAlbum](ctx, c, Get("search?q=abba&type=album", &Options{Market: "SE"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if query.Get("q") != "abba" || query.Get("type") != "album" || query.Get("market") != "SE" {
			t.Errorf("unexpected query %s", query.Encode())
		}
	})

	t.Run("Caller headers win", func(t *testing.T) {
		var header http.Header
		var body string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Clone()
			data, _ := io.ReadAll(r.Body)
			body = string(data)
			w.WriteHeader(http.StatusAccepted)
		})

		req := Put("playlists/p1/images", []byte("base64-jpeg"))
		req.Headers = map[string]string{"Content-Type": "image/jpeg", "X-Trace": "1"}
		if err := c.Do(ctx, req, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("expected image/jpeg, got %q", header.Get("Content-Type"))
		}
		if header.Get("X-Trace") != "1" || header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected headers %v", header)
		}
		if body != "base64-jpeg" {
			t.Errorf("unexpected body %q", body)
		}
	})

	t.Run("JSON body defaults content type", func(t *testing.T) {
		var contentType, method string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			method = r.Method
			w.WriteHeader(http.StatusOK)
		})

		body, _ := JSONBody(map[string]any{"ids": []string{"a"}})
		if err := c.Do(ctx, Put("me/albums", body), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contentType != "application/json" || method != http.MethodPut {
			t.Errorf("expected JSON PUT, got %s %q", method, contentType)
		}
	})

	t.Run("Empty body", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		if err := c.Do(ctx, Delete("me/albums", nil), nil); err != nil {
			t.Errorf("expected success without payload, got %v", err)
		}

		_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if !errors.Is(err, shared.ErrSchemaDecode) {
			t.Errorf("expected ErrSchemaDecode when a payload is expected, got %v", err)
		}

		req := Get("me/player", nil)
		req.Optional = true
		var state *testAlbum
		if err := c.Do(ctx, req, &state); err != nil {
			t.Fatalf("expected optional payload to accept no content, got %v", err)
		}
		if state != nil {
			t.Errorf("expected no value, got %+v", state)
		}
	})

	t.Run("Route is required", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if err := c.Do(ctx, Get(" / ", nil), nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Invalid options are rejected before sending", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		err := c.Do(ctx, Get("me/player/recently-played", &Options{Before: "1", After: "2"}), nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Authenticator failure", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}, func(o *Opts) {
			o.Auth = auth.AuthenticatorFunc(func(context.Context) (auth.AccessToken, error) {
				return auth.AccessToken{}, errors.New("cache offline")
			})
		})

		err := c.Do(ctx, Get("me", nil), nil)
		apiErr := asAPIError(t, err)
		if apiErr.Kind != shared.KindAuth {
			t.Errorf("expected AuthError, got %v", apiErr.Kind)
		}
	})

	t.Run("Pacing with a limiter", func(t *testing.T) {
		var hits atomic.Int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}, func(o *Opts) {
			o.Limiter = rate.NewLimiter(rate.Inf, 1)
		})
		for range 3 {
			if err := c.Do(ctx, Post("me/player/next", nil), nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if hits.Load() != 3 {
			t.Errorf("expected 3 requests, got %d", hits.Load())
		}
	})
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Classification", func(t *testing.T) {
		tests := []struct {
			status   int
			sentinel error
			kind     shared.ErrorKind
		}{
			{http.StatusBadRequest, shared.ErrBadRequest, shared.KindBadRequest},
			{http.StatusUnauthorized, shared.ErrUnauthorized, shared.KindUnauthorized},
			{http.StatusForbidden, shared.ErrForbidden, shared.KindForbidden},
			{http.StatusNotFound, shared.ErrNotFound, shared.KindNotFound},
			{http.StatusTooManyRequests, shared.ErrRateLimited, shared.KindRateLimit},
			{http.StatusTeapot, shared.ErrUnknownAPI, shared.KindUnknownAPI},
		}

		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					tu.WriteJSON(w, tt.status, map[string]any{
						"error": map[string]any{"status": tt.status, "message": "x"},
					})
				})

				_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
				if !errors.Is(err, tt.sentinel) {
					t.Fatalf("expected %v, got %v", tt.sentinel, err)
				}

				apiErr := asAPIError(t, err)
				if apiErr.Kind != tt.kind {
					t.Errorf("expected kind %v, got %v", tt.kind, apiErr.Kind)
				}
				if apiErr.Cause() != "x" {
					t.Errorf("expected cause x, got %q", apiErr.Cause())
				}
				if apiErr.Status != tt.status {
					t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
				}
			})
		}
	})

	t.Run("Missing required field", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{"id": "a1"})
		})

		album, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if !errors.Is(err, shared.ErrSchemaDecode) {
			t.Fatalf("expected ErrSchemaDecode, got %v", err)
		}
		if album.ID != "" {
			t.Errorf("expected zero value on failure, got %+v", album)
		}
		if !strings.Contains(err.Error(), "name") {
			t.Errorf("expected failing field in message, got %v", err)
		}
	})

	t.Run("Missing required field in a list", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, []map[string]any{
				{"id": "a1", "name": "One"},
				{"id": "a2", "name": "Two", "images": []map[string]any{{"width": 64}}},
			})
		})

		_, err := Fetch[[]testAlbum](ctx, c, Get("albums", nil))
		if !errors.Is(err, shared.ErrSchemaDecode) {
			t.Errorf("expected ErrSchemaDecode, got %v", err)
		}
	})

	t.Run("Wrong field type", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, map[string]any{"id": 42, "name": "Album"})
		})

		_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if !errors.Is(err, shared.ErrSchemaDecode) {
			t.Errorf("expected ErrSchemaDecode, got %v", err)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		for _, status := range []int{http.StatusOK, http.StatusBadGateway} {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				w.Write([]byte("<html>oops</html>"))
			})

			_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
			if !errors.Is(err, shared.ErrJSONParse) {
				t.Errorf("status %d: expected ErrJSONParse, got %v", status, err)
			}

			var syntaxErr *json.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("status %d: expected the syntax error as cause, got %v", status, err)
			}
		}
	})

	t.Run("Unexpected error envelope", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusInternalServerError, map[string]any{"detail": "boom"})
		})

		_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if !errors.Is(err, shared.ErrSchemaDecode) {
			t.Errorf("expected ErrSchemaDecode, got %v", err)
		}
	})

	t.Run("Network failure carries the URL", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		c, err := New(Opts{BaseURL: base, Auth: auth.NewStatic("x"), Logger: shared.NewLogger(io.Discard)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err = c.Do(ctx, Get("albums/a1", &Options{Market: "US"}), nil)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
		apiErr := asAPIError(t, err)
		if apiErr.URL != base+"/albums/a1?market=US" {
			t.Errorf("unexpected URL %q", apiErr.URL)
		}
		if apiErr.Err == nil {
			t.Error("expected underlying cause")
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}, func(o *Opts) {
			o.Timeout = 50 * time.Millisecond
		})
		t.Cleanup(func() { close(release) })

		err := c.Do(ctx, Get("albums/a1", nil), nil)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded cause, got %v", err)
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := c.Do(canceled, Get("albums/a1", nil), nil)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
	})
}

func TestClientRetry(t *testing.T) {
	ctx := context.Background()

	rateLimited := func(w http.ResponseWriter, retryAfter string) {
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		tu.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"status": 429, "message": "API rate limit exceeded"},
		})
	}

	t.Run("Retries once after Retry-After", func(t *testing.T) {
		var hits atomic.Int32
		c, timer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				rateLimited(w, "2")
				return
			}
			tu.WriteJSON(w, http.StatusOK, map[string]any{"id": "a1", "name": "Album"})
		})

		album, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if album.ID != "a1" {
			t.Errorf("unexpected album %+v", album)
		}
		if hits.Load() != 2 {
			t.Errorf("expected 2 requests, got %d", hits.Load())
		}

		waits := timer.Waits()
		if len(waits) != 1 || waits[0] != 2*time.Second {
			t.Errorf("expected a single 2s wait, got %v", waits)
		}
	})

	t.Run("Fails after a second rate limit", func(t *testing.T) {
		var hits atomic.Int32
		c, timer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			rateLimited(w, "")
		})

		_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
		if hits.Load() != 2 {
			t.Errorf("expected exactly 2 requests, got %d", hits.Load())
		}

		apiErr := asAPIError(t, err)
		if apiErr.RetryAfter != DefaultRetryAfter {
			t.Errorf("expected default retry after, got %s", apiErr.RetryAfter)
		}
		if waits := timer.Waits(); len(waits) != 1 || waits[0] != DefaultRetryAfter {
			t.Errorf("expected a single default wait, got %v", waits)
		}
	})

	t.Run("Retry surfaces the second failure", func(t *testing.T) {
		var hits atomic.Int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				rateLimited(w, "1")
				return
			}
			tu.WriteJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"status": 404, "message": "missing"},
			})
		})

		_, err := Fetch[testAlbum](ctx, c, Get("albums/a1", nil))
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Other errors are not retried", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
			var hits atomic.Int32
			c, timer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tu.WriteJSON(w, status, map[string]any{
					"error": map[string]any{"status": status, "message": "nope"},
				})
			})

			c.Do(ctx, Get("albums/a1", nil), nil)
			if hits.Load() != 1 || len(timer.Waits()) != 0 {
				t.Errorf("status %d: expected a single request and no wait, got %d requests", status, hits.Load())
			}
		}
	})

	t.Run("Token is resolved per attempt", func(t *testing.T) {
		var calls atomic.Int32
		var hits atomic.Int32
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				rateLimited(w, "0")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}, func(o *Opts) {
			o.Auth = auth.AuthenticatorFunc(func(context.Context) (auth.AccessToken, error) {
				calls.Add(1)
				return auth.AccessToken{Token: "t"}, nil
			})
		})

		if err := c.Do(ctx, Post("me/player/next", nil), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 token lookups, got %d", calls.Load())
		}
	})
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", DefaultRetryAfter},
		{"2", 2 * time.Second},
		{" 7 ", 7 * time.Second},
		{"0", 0},
		{"-1", DefaultRetryAfter},
		{"1.5", 1500 * time.Millisecond},
		{"0.25", 250 * time.Millisecond},
		{"-0.5", DefaultRetryAfter},
		{"NaN", DefaultRetryAfter},
		{"Inf", DefaultRetryAfter},
		{"-Inf", DefaultRetryAfter},
		{"1e300", DefaultRetryAfter},
		{"soon", DefaultRetryAfter},
		{"Wed, 21 Oct 2015 07:28:00 GMT", DefaultRetryAfter},
	}

	for _, tt := range tests {
		if got := RetryAfter(tt.header); got != tt.want {
			t.Errorf("RetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}
