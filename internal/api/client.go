// package api executes Spotify Web API requests and turns responses into typed values or [shared.Error]s
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	BaseURL = "https://api.spotify.com/v1/"

	// DefaultRetryAfter is the wait used when a 429 carries no usable Retry-After header.
	DefaultRetryAfter = 15 * time.Second
)

// Opts configures a [Client].
type Opts struct {
	BaseURL    string        // defaults to [BaseURL]
	HTTPClient *http.Client  // defaults to [http.DefaultClient]
	Auth       auth.Authenticator
	Logger     *log.Logger
	Limiter    *rate.Limiter // optional client-side pacing
	Timeout    time.Duration // per attempt; zero disables
	Timer      retry.Timer   // wait source for the rate limit retry
}

// Client is the single chokepoint every resource call goes through.
// It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       auth.Authenticator
	logger     *log.Logger
	limiter    *rate.Limiter
	timeout    time.Duration
	timer      retry.Timer
	shapes     *shapeValidator
}

func New(opts Opts) (*Client, error) {
	if opts.Auth == nil {
		return nil, fmt.Errorf("%w: an authenticator is required", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", shared.ErrInvalidConfig, opts.BaseURL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    base,
		httpClient: opts.HTTPClient,
		auth:       opts.Auth,
		logger:     shared.WithLogger(opts.Logger, "component", "api"),
		limiter:    opts.Limiter,
		timeout:    opts.Timeout,
		timer:      opts.Timer,
		shapes:     newShapeValidator(),
	}, nil
}

// Request describes one logical API call.
type Request struct {
	Method  string // defaults to GET
	Route   string // relative to the base URL, may carry its own query
	Query   url.Values
	Options *Options
	Body    []byte
	Headers map[string]string // added last, overriding defaults

	// Optional accepts an empty success body, leaving out untouched.
	Optional bool
}

// Get, Put, Post and Delete build a [Request] for route.
func Get(route string, opts *Options) Request {
	return Request{Method: http.MethodGet, Route: route, Options: opts}
}

func Delete(route string, body []byte) Request {
	return Request{Method: http.MethodDelete, Route: route, Body: body}
}

func Put(route string, body []byte) Request {
	return Request{Method: http.MethodPut, Route: route, Body: body}
}

func Post(route string, body []byte) Request {
	return Request{Method: http.MethodPost, Route: route, Body: body}
}

// JSONBody encodes v for use as [Request.Body].
func JSONBody(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrInvalidInput, err)
	}
	return data, nil
}

// Fetch runs req and decodes the payload into a new T.
func Fetch[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	if err := c.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Do runs req, decoding and validating the response into out.
//
// A nil out means the call returns no payload; an empty body is then a success.
// A rate limited call is retried once after the server-provided delay.
// Every failure after the request has been built is a [*shared.Error].
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	target, err := c.resolve(req)
	if err != nil {
		return err
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	opts := []retry.Option{
		retry.Attempts(2),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, shared.ErrRateLimited)
		}),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			var apiErr *shared.Error
			if errors.As(err, &apiErr) {
				return apiErr.RetryAfter
			}
			return DefaultRetryAfter
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("rate limited", "attempt", n+1, "method", req.Method, "url", target, "error", err)
		}),
	}
	if c.timer != nil {
		opts = append(opts, retry.WithTimer(c.timer))
	}

	err = retry.Do(func() error {
		return c.attempt(ctx, req, target, out)
	}, opts...)
	if err == nil {
		return nil
	}

	var apiErr *shared.Error
	if errors.As(err, &apiErr) {
		return err
	}
	return &shared.Error{Kind: shared.KindNetwork, URL: target, Message: "request aborted", Err: err}
}

// resolve joins the route onto the base URL and merges every query source.
func (c *Client) resolve(req Request) (string, error) {
	route := strings.TrimLeft(strings.TrimSpace(req.Route), "/")
	if route == "" {
		return "", fmt.Errorf("%w: route is required", shared.ErrMissingArgument)
	}
	if err := req.Options.Validate(); err != nil {
		return "", err
	}

	ref, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("%w: invalid route %q: %v", shared.ErrInvalidArgument, req.Route, err)
	}
	if ref.IsAbs() {
		return "", fmt.Errorf("%w: route must be relative, got %q", shared.ErrInvalidArgument, req.Route)
	}

	u := c.baseURL.ResolveReference(ref)
	query := u.Query()
	for k, vs := range req.Query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, vs := range req.Options.Values() {
		query[k] = vs
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// attempt performs one round trip. Any returned error is a [*shared.Error].
func (c *Client) attempt(ctx context.Context, req Request, target string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return networkError(target, err)
		}
	}

	tok, err := c.auth.AccessToken(ctx)
	if err != nil {
		var authErr *shared.Error
		if errors.As(err, &authErr) {
			return err
		}
		return &shared.Error{Kind: shared.KindAuth, Message: "failed to resolve access token", Err: err}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return networkError(target, err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+tok.Token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return networkError(target, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(target, err)
	}

	c.logger.Debug("api response", "method", req.Method, "url", target, "status", resp.StatusCode, "elapsed", time.Since(started))
	return c.decode(resp, payload, out, req.Optional)
}

func (c *Client) decode(resp *http.Response, payload []byte, out any, optional bool) error {
	empty := len(bytes.TrimSpace(payload)) == 0
	if !empty {
		if err := json.Unmarshal(payload, new(json.RawMessage)); err != nil {
			return &shared.Error{
				Kind:    shared.KindJSONParse,
				Status:  resp.StatusCode,
				Message: "failed to parse response as JSON",
				Err:     err,
			}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp, payload)
	}

	if out == nil || (empty && optional) {
		return nil
	}
	if empty {
		return &shared.Error{
			Kind:    shared.KindSchemaDecode,
			Status:  resp.StatusCode,
			Message: "expected a response body, got none",
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &shared.Error{
			Kind:    shared.KindSchemaDecode,
			Status:  resp.StatusCode,
			Message: "failed to decode response to expected shape",
			Err:     err,
		}
	}
	if err := c.shapes.Check(out); err != nil {
		return &shared.Error{
			Kind:    shared.KindSchemaDecode,
			Status:  resp.StatusCode,
			Message: "response does not match expected shape",
			Err:     err,
		}
	}
	return nil
}

func networkError(target string, err error) *shared.Error {
	msg := "network request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	return &shared.Error{Kind: shared.KindNetwork, URL: target, Message: msg, Err: err}
}
