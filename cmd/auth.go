package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/spotx/internal/server"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the PKCE authorization code flow for --user.
//
// A local server on the configured host and port receives the redirect, checks state and exchanges the code.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.RedirectURI == "" {
		return fmt.Errorf("%w: credentials.spotify.client_id and redirect_uri are required for login", shared.ErrMissingConfig)
	}

	p, err := r.pkceFlow(ctx)
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}
	authURL, err := p.CreateAuthorizationURL(ctx, r.userID, oauth2.SetAuthURLParam("state", state))
	if err != nil {
		return err
	}

	path, err := server.CallbackPath(creds.RedirectURI)
	if err != nil {
		return err
	}
	handler := server.NewOAuthHandler(p, r.userID, state, path)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	if cmd.Bool("no-browser") {
		r.printer.Note("Open this URL to authorize spotx:")
		r.printer.Println(authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.printer.Note("Open this URL to authorize spotx:")
		r.printer.Println(authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	result, err := server.WaitForCallback(waitCtx, addr, router, handler, r.logger)
	if err != nil {
		return err
	}
	if err := result.Error(); err != nil {
		return err
	}

	r.printer.Success("Logged in as %s", r.userID)
	r.printer.Fields(
		"Scope", result.Token.Scope,
		"Expires", result.Token.Access().Expiry().Local().Format(time.RFC1123),
	)
	return nil
}

// AuthStatus reports which strategy would be used and the state of the stored login.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	r.printer.Title("Spotify credentials")
	r.printer.Fields(
		"Client ID", mask(creds.ClientID),
		"Redirect", creds.RedirectURI,
		"API key", mask(creds.APIKey),
		"Cache", r.config.Cache.Backend,
	)

	if creds.ClientID == "" || creds.RedirectURI == "" {
		r.printer.Warning("User login unavailable: client_id or redirect_uri missing")
		return nil
	}

	p, err := r.pkceFlow(ctx)
	if err != nil {
		return err
	}
	tok, err := p.StoredToken(ctx, r.userID)
	switch {
	case err != nil:
		r.printer.Failure("Stored login for %s is unreadable: %v", r.userID, err)
	case tok == nil:
		r.printer.Warning("No stored login for %s", r.userID)
	case tok.Access().Stale(time.Now()):
		r.printer.Warning("Login for %s expired at %s; it will be refreshed on next use", r.userID, tok.Access().Expiry().Local().Format(time.Kitchen))
	default:
		r.printer.Success("Logged in as %s until %s", r.userID, tok.Access().Expiry().Local().Format(time.Kitchen))
	}

	if pending, err := p.HasPendingVerifier(ctx, r.userID); err == nil && pending {
		r.printer.Note("A login for %s is in progress", r.userID)
	}
	return nil
}

// AuthToken prints the bearer token the API commands would send.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("refresh") {
		p, err := r.pkceFlow(ctx)
		if err != nil {
			return err
		}
		tok, err := p.Refresh(ctx, r.userID)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", tok.AccessToken)
	}

	authn, mode, err := r.authenticator(ctx)
	if err != nil {
		return err
	}
	tok, err := authn.AccessToken(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("resolved access token", "auth", mode, "expires", tok.Expiry())
	return r.writePlain("%s\n", tok.Token)
}

// AuthLogout forgets the stored token and any pending verifier for --user.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	p, err := r.pkceFlow(ctx)
	if err != nil {
		return err
	}
	if err := p.Revoke(ctx, r.userID); err != nil {
		return err
	}
	r.printer.Success("Logged out %s", r.userID)
	return nil
}

// mask hides all but the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
