// package server serves the local OAuth callback used by the PKCE login flow
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// statusRecorder captures the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs one line per request. Query strings are left out since callbacks carry codes.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(started))
		})
	}
}

// CallbackPath returns the path component of a redirect URI, defaulting to /callback.
func CallbackPath(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect URI %q: %v", shared.ErrInvalidConfig, redirectURI, err)
	}
	if u.Path == "" || u.Path == "/" {
		return DefaultCallbackPath, nil
	}
	return u.Path, nil
}

// WaitForCallback serves router on addr until handler reports a result or ctx ends, then shuts down.
func WaitForCallback(ctx context.Context, addr string, router Router, handler *OAuthHandler, logger *log.Logger) (OAuthResult, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return OAuthResult{}, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	logger.Info("waiting for authorization callback", "addr", ln.Addr().String())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("callback server shutdown failed", "error", err)
		}
	}()

	select {
	case result := <-handler.Result():
		return result, nil
	case err := <-serveErr:
		return OAuthResult{}, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return OAuthResult{}, shared.NewAuthError(shared.ErrTimeout, "no authorization callback received: %v", ctx.Err())
	}
}
