package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/cache"
	"github.com/desertthunder/spotx/internal/pkce"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// PKCEOpts configures a [PKCE] strategy.
type PKCEOpts struct {
	ClientID    string
	RedirectURI string
	Scopes      []string
	AuthURL     string // defaults to [AuthURL]
	TokenURL    string // defaults to [TokenURL]
	Namespace   string // optional prefix for the per-user keys
	HTTPClient  *http.Client
	Logger      *log.Logger
	Now         func() time.Time
}

// UserToken is the token response stored per user after a successful code exchange.
type UserToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"` // epoch millis
}

// Access returns the bearer part of the token.
func (u UserToken) Access() AccessToken {
	return AccessToken{Token: u.AccessToken, ExpiresAt: u.ExpiresAt}
}

// PKCE runs the authorization code flow with PKCE for any number of users.
//
// Per user the flow moves from no verifier, to a pending exchange once [PKCE.CreateAuthorizationURL]
// stores a verifier, to authorized once [PKCE.ExchangeCodeForToken] succeeds and the verifier is dropped.
type PKCE struct {
	cache      cache.Cache
	config     *oauth2.Config
	namespace  string
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time
	group      singleflight.Group
}

func NewPKCE(c cache.Cache, opts PKCEOpts) (*PKCE, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: client id is required", shared.ErrMissingCredentials)
	}
	if opts.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect uri is required", shared.ErrInvalidConfig)
	}
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if opts.AuthURL == "" {
		opts.AuthURL = AuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = TokenURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &PKCE{
		cache: c,
		config: &oauth2.Config{
			ClientID:    opts.ClientID,
			RedirectURL: opts.RedirectURI,
			Scopes:      opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		namespace:  opts.Namespace,
		httpClient: opts.HTTPClient,
		logger:     shared.WithLogger(opts.Logger, "component", "pkce"),
		now:        opts.Now,
	}, nil
}

func (p *PKCE) verifierKey(userID string) string { return namespaced(p.namespace, "verifier:"+userID) }
func (p *PKCE) tokenKey(userID string) string    { return namespaced(p.namespace, "token:"+userID) }

func (p *PKCE) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// GeneratePKCE returns a fresh verifier and its S256 challenge.
func (p *PKCE) GeneratePKCE() (pkce.Pair, error) {
	return pkce.Generate()
}

// CreateAuthorizationURL stores a new verifier for userID, replacing any pending one, and returns the
// authorize URL carrying its challenge. Extra options such as the state parameter are appended.
func (p *PKCE) CreateAuthorizationURL(ctx context.Context, userID string, opts ...oauth2.AuthCodeOption) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", shared.ErrMissingArgument)
	}

	pair, err := p.GeneratePKCE()
	if err != nil {
		return "", fmt.Errorf("failed to generate PKCE pair: %w", err)
	}

	if err := p.cache.Set(ctx, p.verifierKey(userID), pair.Verifier); err != nil {
		return "", fmt.Errorf("failed to store verifier: %w", err)
	}

	opts = append([]oauth2.AuthCodeOption{oauth2.S256ChallengeOption(pair.Verifier)}, opts...)
	return p.config.AuthCodeURL("", opts...), nil
}

// ExchangeCodeForToken trades an authorization code for tokens using the pending verifier for userID.
//
// On success the verifier is removed and the token stored; on failure the verifier is left in place.
func (p *PKCE) ExchangeCodeForToken(ctx context.Context, userID, code string) (*UserToken, error) {
	verifier, ok, err := p.cache.Get(ctx, p.verifierKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read verifier: %w", err)
	}
	if !ok {
		return nil, shared.NewAuthError(shared.ErrMissingVerifier, "no pending authorization for user %s", userID)
	}

	issued := p.now()
	tok, err := p.config.Exchange(p.clientContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError(p.config.Endpoint.TokenURL, err)
	}

	ut := p.userToken(tok, issued, "")
	if err := p.cache.Remove(ctx, p.verifierKey(userID)); err != nil {
		return nil, fmt.Errorf("failed to remove verifier: %w", err)
	}
	if err := p.store(ctx, userID, ut); err != nil {
		return nil, err
	}

	p.logger.Info("authorized user", "user", userID, "scope", ut.Scope)
	return ut, nil
}

// StoredToken returns the token cached for userID, or nil when there is none.
//
// A malformed entry is an error: there is no refresh path to recover it and the flow must be rerun.
func (p *PKCE) StoredToken(ctx context.Context, userID string) (*UserToken, error) {
	raw, ok, err := p.cache.Get(ctx, p.tokenKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var ut UserToken
	if err := json.Unmarshal([]byte(raw), &ut); err != nil || ut.AccessToken == "" {
		return nil, shared.NewAuthError(shared.ErrMalformedToken, "user %s", userID)
	}
	return &ut, nil
}

// HasPendingVerifier reports whether an authorization for userID awaits its code exchange.
func (p *PKCE) HasPendingVerifier(ctx context.Context, userID string) (bool, error) {
	_, ok, err := p.cache.Get(ctx, p.verifierKey(userID))
	return ok, err
}

// Refresh exchanges the stored refresh token for a new access token and stores the result.
func (p *PKCE) Refresh(ctx context.Context, userID string) (*UserToken, error) {
	current, err := p.StoredToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, shared.NewAuthError(shared.ErrNotAuthenticated, "no stored token for user %s", userID)
	}
	if current.RefreshToken == "" {
		return nil, shared.NewAuthError(shared.ErrTokenExpired, "user %s has no refresh token", userID)
	}

	issued := p.now()
	src := p.config.TokenSource(p.clientContext(ctx), &oauth2.Token{
		RefreshToken: current.RefreshToken,
		Expiry:       time.Unix(1, 0),
	})
	tok, err := src.Token()
	if err != nil {
		return nil, refreshError(p.config.Endpoint.TokenURL, err)
	}

	ut := p.userToken(tok, issued, current.RefreshToken)
	if err := p.store(ctx, userID, ut); err != nil {
		return nil, err
	}
	p.logger.Debug("refreshed user token", "user", userID)
	return ut, nil
}

// Revoke forgets the stored token and any pending verifier for userID.
func (p *PKCE) Revoke(ctx context.Context, userID string) error {
	if err := p.cache.Remove(ctx, p.tokenKey(userID)); err != nil {
		return err
	}
	return p.cache.Remove(ctx, p.verifierKey(userID))
}

// ForUser returns an [Authenticator] serving userID's stored token, refreshing it when stale.
func (p *PKCE) ForUser(userID string) Authenticator {
	return &userAuthenticator{flow: p, userID: userID}
}

func (p *PKCE) userToken(tok *oauth2.Token, issued time.Time, previousRefresh string) *UserToken {
	ut := &UserToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if ut.RefreshToken == "" {
		ut.RefreshToken = previousRefresh
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		ut.Scope = scope
	}
	if lifetime := expiresIn(tok); lifetime > 0 {
		ut.ExpiresAt = issued.Add(lifetime).UnixMilli()
	}
	return ut
}

func (p *PKCE) store(ctx context.Context, userID string, ut *UserToken) error {
	data, err := json.Marshal(ut)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := p.cache.Set(ctx, p.tokenKey(userID), string(data)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

type userAuthenticator struct {
	flow   *PKCE
	userID string
}

func (u *userAuthenticator) AccessToken(ctx context.Context) (AccessToken, error) {
	ut, err := u.flow.StoredToken(ctx, u.userID)
	if err != nil {
		return AccessToken{}, err
	}
	if ut == nil {
		return AccessToken{}, shared.NewAuthError(shared.ErrNotAuthenticated, "no stored token for user %s", u.userID)
	}
	if !ut.Access().Stale(u.flow.now()) {
		return ut.Access(), nil
	}

	v, err, _ := u.flow.group.Do(u.flow.tokenKey(u.userID), func() (any, error) {
		// Another caller may have refreshed between the read above and joining the group.
		if ut, err := u.flow.StoredToken(ctx, u.userID); err == nil && ut != nil && !ut.Access().Stale(u.flow.now()) {
			return ut, nil
		}
		return u.flow.Refresh(ctx, u.userID)
	})
	if err != nil {
		return AccessToken{}, err
	}
	return v.(*UserToken).Access(), nil
}

// refreshError marks a rejected refresh with [shared.ErrRefreshFailed], keeping the endpoint cause.
func refreshError(endpoint string, err error) error {
	e := tokenError(endpoint, err)
	if se, ok := e.(*shared.Error); ok && se.Kind == shared.KindAuth {
		se.Err = fmt.Errorf("%w: %w", shared.ErrRefreshFailed, se.Err)
	}
	return e
}
