package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/shared"
)

const DefaultCallbackPath = "/callback"

// CodeExchanger trades an authorization code for a stored user token.
//
// [auth.PKCE] satisfies it.
type CodeExchanger interface {
	ExchangeCodeForToken(ctx context.Context, userID, code string) (*auth.UserToken, error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *auth.UserToken
	err   error
}

func (o OAuthResult) Error() error {
	return o.err
}

// OAuthHandler completes the PKCE flow for one user on the redirect URI.
type OAuthHandler struct {
	exchanger  CodeExchanger
	userID     string
	state      string
	path       string
	resultChan chan OAuthResult
	once       sync.Once
	mu         sync.Mutex
	hit        bool
}

// NewOAuthHandler creates a handler expecting state on path. An empty path means [DefaultCallbackPath].
func NewOAuthHandler(exchanger CodeExchanger, userID, state, path string) *OAuthHandler {
	if path == "" {
		path = DefaultCallbackPath
	}
	return &OAuthHandler{
		exchanger:  exchanger,
		userID:     userID,
		state:      state,
		path:       path,
		resultChan: make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates state, exchanges the code and reports the outcome.
// Only the first callback is processed.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.Send(OAuthResult{err: shared.NewAuthError(shared.ErrAuthFailed, "invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: shared.NewAuthError(shared.ErrAuthFailed, "authorization denied: %s %s", q.Get("error"), q.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.ExchangeCodeForToken(r.Context(), h.userID, code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send delivers result once; later calls are dropped.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result receives exactly one result, then is closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>spotx</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .card { text-align: center; background: #181818; padding: 2rem; border-radius: 8px; }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>Logged in to Spotify</h1>
        <p>Return to the terminal; this tab can be closed.</p>
    </div>
</body>
</html>
`
