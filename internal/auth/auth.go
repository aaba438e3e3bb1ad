// package auth implements the token strategies that feed the request engine's Authorization header.
//
// Every strategy satisfies [Authenticator]. Tokens are persisted in a [cache.Cache] under keys owned by
// the strategy; staleness is judged from the expiry serialized with each token, never by the cache.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	AccountsURL = "https://accounts.spotify.com"
	TokenURL    = AccountsURL + "/api/token"
	AuthURL     = AccountsURL + "/authorize"

	// RefreshMargin is how long before expiry a token is already treated as stale.
	RefreshMargin = 60 * time.Second
)

// AccessToken is a bearer token and its expiry in epoch milliseconds.
//
// A zero ExpiresAt marks a token with no known expiry, such as a configured API key.
type AccessToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a [time.Time], or the zero time when unknown.
func (t AccessToken) Expiry() time.Time {
	if t.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.ExpiresAt)
}

// Stale reports whether now is within [RefreshMargin] of the expiry, or past it.
func (t AccessToken) Stale(now time.Time) bool {
	if t.ExpiresAt == 0 {
		return false
	}
	return now.UnixMilli() >= t.ExpiresAt-RefreshMargin.Milliseconds()
}

func (t AccessToken) encode() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeAccessToken(raw string) (AccessToken, error) {
	var t AccessToken
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return AccessToken{}, err
	}
	if t.Token == "" {
		return AccessToken{}, errors.New("token field is empty")
	}
	return t, nil
}

// Authenticator yields the bearer token for the next request.
type Authenticator interface {
	AccessToken(ctx context.Context) (AccessToken, error)
}

// AuthenticatorFunc adapts a function to [Authenticator].
type AuthenticatorFunc func(ctx context.Context) (AccessToken, error)

func (f AuthenticatorFunc) AccessToken(ctx context.Context) (AccessToken, error) {
	return f(ctx)
}

// Static serves a pre-issued API key that never expires on the client side.
type Static struct {
	token string
}

func NewStatic(token string) Static {
	return Static{token: token}
}

func (s Static) AccessToken(ctx context.Context) (AccessToken, error) {
	if s.token == "" {
		return AccessToken{}, shared.NewAuthError(shared.ErrMissingCredentials, "no API key configured")
	}
	return AccessToken{Token: s.token}, nil
}

func namespaced(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}

// expiresIn reads the lifetime the token endpoint granted, preferring the raw expires_in field.
func expiresIn(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Duration(n) * time.Second
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry)
	}
	return 0
}

// tokenError maps a token endpoint failure onto the shared error model.
func tokenError(endpoint string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		e := &shared.Error{Kind: shared.KindAuth, Err: shared.ErrTokenEndpoint}
		if re.Response != nil {
			e.Status = re.Response.StatusCode
			e.Message = re.Response.Status
		}
		if re.ErrorCode != "" {
			e.Message = fmt.Sprintf("%s (%s)", e.Message, re.ErrorCode)
		}
		return e
	}

	var ue *url.Error
	if errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &shared.Error{Kind: shared.KindNetwork, URL: endpoint, Err: err}
	}

	return &shared.Error{Kind: shared.KindAuth, Message: err.Error(), Err: shared.ErrInvalidTokenResponse}
}
