package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to a Web API route.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodGet)
}

// APIPost makes a direct POST request to a Web API route.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodPost)
}

// APIPut makes a direct PUT request to a Web API route.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodPut)
}

// APIDelete makes a direct DELETE request to a Web API route.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.rawRequest(ctx, cmd, http.MethodDelete)
}

func (r *Runner) rawRequest(ctx context.Context, cmd *cli.Command, method string) error {
	route := cmd.StringArg("route")
	if route == "" {
		return fmt.Errorf("%w: route is required", shared.ErrMissingArgument)
	}

	query, err := parseQuery(cmd.StringSlice("query"))
	if err != nil {
		return err
	}

	var body []byte
	if data := cmd.String("data"); data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("%w: --data is not valid JSON", shared.ErrInvalidInput)
		}
		body = []byte(data)
	}

	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("api request", "method", method, "route", route)

	var out json.RawMessage
	req := api.Request{Method: method, Route: route, Query: query, Body: body, Optional: true}
	if err := sdk.API().Do(ctx, req, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		r.printer.Success("%s %s", method, route)
		return nil
	}
	return r.writeRaw(out)
}

// parseQuery turns key=value pairs into query values.
func parseQuery(pairs []string) (url.Values, error) {
	query := url.Values{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("%w: query parameter %q must be key=value", shared.ErrInvalidArgument, pair)
		}
		query.Add(strings.TrimSpace(k), v)
	}
	return query, nil
}
