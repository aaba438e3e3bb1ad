package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/cache"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

const DefaultUser = "default"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The cache and the API clients are built on first use, after the configuration has been loaded.
type Runner struct {
	config     *shared.Config
	configPath string
	userID     string
	cache      cache.Cache
	sdk        *services.Client
	pkce       *auth.PKCE
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	printer    *ui.Printer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	UserID     string
	Cache      cache.Cache
	Services   *services.Client
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Plain      bool
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.UserID == "" {
		opts.UserID = DefaultUser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		userID:     opts.UserID,
		cache:      opts.Cache,
		sdk:        opts.Services,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		printer:    ui.NewPrinter(opts.Output, opts.Plain),
	}
}

// Before loads .env files and the config named by --config, then applies the global flags.
// A missing config file falls back to defaults; a malformed one is an error.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if cmd.Bool("plain") {
		r.printer = ui.NewPrinter(r.output, true)
	}
	if u := strings.TrimSpace(cmd.String("user")); u != "" {
		r.userID = u
	}
	if r.config != nil {
		return ctx, nil
	}

	if err := shared.LoadEnv(); err != nil {
		r.logger.Warn("failed to load .env", "error", err)
	}

	r.configPath = cmd.String("config")
	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// Close releases the cache connection, if one was opened.
func (r *Runner) Close() error {
	if r.cache == nil {
		return nil
	}
	return cache.Close(r.cache)
}

func (r *Runner) openCache(ctx context.Context) (cache.Cache, error) {
	if r.cache != nil {
		return r.cache, nil
	}
	c, err := cache.Open(ctx, r.config.Cache, r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", r.config.Cache.Backend, err)
	}
	r.logger.Debug("opened cache", "backend", r.config.Cache.Backend)
	r.cache = c
	return c, nil
}

func (r *Runner) accountsURLs() (authURL, tokenURL string) {
	base := strings.TrimRight(r.config.API.AccountsURL, "/")
	if base == "" {
		return auth.AuthURL, auth.TokenURL
	}
	return base + "/authorize", base + "/api/token"
}

func (r *Runner) pkceFlow(ctx context.Context) (*auth.PKCE, error) {
	if r.pkce != nil {
		return r.pkce, nil
	}
	c, err := r.openCache(ctx)
	if err != nil {
		return nil, err
	}

	creds := r.config.Credentials.Spotify
	authURL, tokenURL := r.accountsURLs()
	p, err := auth.NewPKCE(c, auth.PKCEOpts{
		ClientID:    creds.ClientID,
		RedirectURI: creds.RedirectURI,
		Scopes:      creds.Scopes,
		AuthURL:     authURL,
		TokenURL:    tokenURL,
		HTTPClient:  r.httpClient,
		Logger:      r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.pkce = p
	return p, nil
}

// authenticator picks the strategy for this run: a configured API key, then the user's stored
// PKCE token, then client credentials.
func (r *Runner) authenticator(ctx context.Context) (auth.Authenticator, string, error) {
	creds := r.config.Credentials.Spotify
	if creds.APIKey != "" {
		return auth.NewStatic(creds.APIKey), "api key", nil
	}

	c, err := r.openCache(ctx)
	if err != nil {
		return nil, "", err
	}

	if creds.ClientID != "" && creds.RedirectURI != "" {
		p, err := r.pkceFlow(ctx)
		if err != nil {
			return nil, "", err
		}
		if tok, err := p.StoredToken(ctx, r.userID); err != nil {
			r.logger.Warn("ignoring stored user token", "user", r.userID, "error", err)
		} else if tok != nil {
			return p.ForUser(r.userID), "user " + r.userID, nil
		}
	}

	if creds.HasClientCredentials() {
		_, tokenURL := r.accountsURLs()
		cc, err := auth.NewClientCredentials(c, auth.ClientCredentialsOpts{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
			Namespace:    r.config.Cache.Namespace,
			HTTPClient:   r.httpClient,
			Logger:       r.logger,
		})
		if err != nil {
			return nil, "", err
		}
		return cc, "client credentials", nil
	}

	return nil, "", fmt.Errorf("%w: set an api key, run 'spotx auth login' or configure client credentials", shared.ErrMissingCredentials)
}

// services returns the resource services, building the request engine on first use.
func (r *Runner) services(ctx context.Context) (*services.Client, error) {
	if r.sdk != nil {
		return r.sdk, nil
	}

	authn, mode, err := r.authenticator(ctx)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if rps := r.config.API.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	client, err := api.New(api.Opts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		Auth:       authn,
		Logger:     r.logger,
		Limiter:    limiter,
		Timeout:    r.config.API.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("api client ready", "auth", mode)

	r.sdk = services.New(client)
	return r.sdk, nil
}

// options builds [api.Options] from the common --market, --limit and --offset flags.
func options(cmd *cli.Command) *api.Options {
	opts := &api.Options{Market: cmd.String("market")}
	if cmd.IsSet("limit") {
		opts.Limit = api.Int(int(cmd.Int("limit")))
	}
	if cmd.IsSet("offset") {
		opts.Offset = api.Int(int(cmd.Int("offset")))
	}
	return opts
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(r.output, "%s\n", output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeRaw pretty-prints a raw JSON payload.
func (r *Runner) writeRaw(data json.RawMessage) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return r.writeJSON(v, true)
}
