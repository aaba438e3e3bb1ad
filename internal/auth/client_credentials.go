package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/cache"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// DefaultNamespace prefixes the client credentials cache key when no namespace is configured.
const DefaultNamespace = "spotify-sdk"

// ClientCredentialsOpts configures a [ClientCredentials] strategy.
type ClientCredentialsOpts struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	TokenURL     string // defaults to [TokenURL]
	Namespace    string // defaults to [DefaultNamespace]
	HTTPClient   *http.Client
	Logger       *log.Logger
	Now          func() time.Time
}

// ClientCredentials obtains app-only tokens with the client credentials grant and caches them.
//
// A cached token is reused until it is within [RefreshMargin] of expiry. Concurrent callers that find
// the token stale share a single upstream request.
type ClientCredentials struct {
	cache      cache.Cache
	config     clientcredentials.Config
	key        string
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time
	group      singleflight.Group
}

func NewClientCredentials(c cache.Cache, opts ClientCredentialsOpts) (*ClientCredentials, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and client secret are required", shared.ErrMissingCredentials)
	}
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if opts.TokenURL == "" {
		opts.TokenURL = TokenURL
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ClientCredentials{
		cache: c,
		config: clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       opts.Scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		key:        namespaced(opts.Namespace, "ClientCredentials:accessToken"),
		httpClient: opts.HTTPClient,
		logger:     shared.WithLogger(opts.Logger, "component", "client-credentials"),
		now:        opts.Now,
	}, nil
}

// Key returns the cache key the token is stored under.
func (a *ClientCredentials) Key() string { return a.key }

// AccessToken returns the cached token while it is valid, fetching a new one otherwise.
func (a *ClientCredentials) AccessToken(ctx context.Context) (AccessToken, error) {
	if tok, ok := a.cached(ctx); ok {
		return tok, nil
	}

	v, err, _ := a.group.Do(a.key, func() (any, error) {
		if tok, ok := a.cached(ctx); ok {
			return tok, nil
		}
		return a.fetch(ctx)
	})
	if err != nil {
		return AccessToken{}, err
	}
	return v.(AccessToken), nil
}

// Revoke drops the cached token so the next call fetches a new one.
func (a *ClientCredentials) Revoke(ctx context.Context) error {
	return a.cache.Remove(ctx, a.key)
}

// cached returns a usable token from the cache. Read failures and malformed entries count as a miss.
func (a *ClientCredentials) cached(ctx context.Context) (AccessToken, bool) {
	raw, ok, err := a.cache.Get(ctx, a.key)
	if err != nil {
		a.logger.Warn("token cache read failed, fetching a new token", "key", a.key, "error", err)
		return AccessToken{}, false
	}
	if !ok {
		return AccessToken{}, false
	}

	tok, err := decodeAccessToken(raw)
	if err != nil {
		a.logger.Warn("ignoring malformed cached token", "key", a.key, "error", err)
		return AccessToken{}, false
	}
	if tok.Stale(a.now()) {
		return AccessToken{}, false
	}
	return tok, true
}

func (a *ClientCredentials) fetch(ctx context.Context) (AccessToken, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	issued := a.now()
	a.logger.Debug("requesting client credentials token", "url", a.config.TokenURL)

	tok, err := a.config.Token(ctx)
	if err != nil {
		return AccessToken{}, tokenError(a.config.TokenURL, err)
	}

	lifetime := expiresIn(tok)
	if tok.AccessToken == "" || lifetime <= 0 {
		return AccessToken{}, shared.NewAuthError(shared.ErrInvalidTokenResponse, "access_token and expires_in are required")
	}

	at := AccessToken{Token: tok.AccessToken, ExpiresAt: issued.Add(lifetime).UnixMilli()}
	encoded, err := at.encode()
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to encode token: %w", err)
	}
	if err := a.cache.Set(ctx, a.key, encoded); err != nil {
		a.logger.Warn("failed to cache token", "key", a.key, "error", err)
	}

	a.logger.Debug("cached client credentials token", "expires_at", at.Expiry())
	return at, nil
}
