package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/shared"
)

// Maximum number of ids accepted by the multi-get and library endpoints.
const (
	MaxAlbumIDs = 20
	MaxIDs      = 50
	MaxURIs     = 100
)

// Client groups every resource service around one [api.Client].
type Client struct {
	Albums     *AlbumService
	Artists    *ArtistService
	Tracks     *TrackService
	Playlists  *PlaylistService
	Users      *UserService
	Player     *PlayerService
	Search     *SearchService
	Markets    *MarketService
	Categories *CategoryService
	Shows      *ShowService
	Episodes   *EpisodeService
	Audiobooks *AudiobookService
	Chapters   *ChapterService

	api *api.Client
}

func New(c *api.Client) *Client {
	s := service{api: c}
	return &Client{
		Albums:     &AlbumService{s},
		Artists:    &ArtistService{s},
		Tracks:     &TrackService{s},
		Playlists:  &PlaylistService{s},
		Users:      &UserService{s},
		Player:     &PlayerService{s},
		Search:     &SearchService{s},
		Markets:    &MarketService{s},
		Categories: &CategoryService{s},
		Shows:      &ShowService{s},
		Episodes:   &EpisodeService{s},
		Audiobooks: &AudiobookService{s},
		Chapters:   &ChapterService{s},
		api:        c,
	}
}

// API returns the underlying request engine for raw calls.
func (c *Client) API() *api.Client { return c.api }

type service struct {
	api *api.Client
}

func get[T any](ctx context.Context, s service, route string, opts *api.Options) (*T, error) {
	out, err := api.Fetch[T](ctx, s.api, api.Get(route, opts))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func list[T any](ctx context.Context, s service, route string, opts *api.Options) ([]T, error) {
	return api.Fetch[[]T](ctx, s.api, api.Get(route, opts))
}

// send runs a request that returns no payload.
func send(ctx context.Context, s service, method, route string, query url.Values, body any) error {
	req := api.Request{Method: method, Route: route, Query: query}
	if body != nil {
		data, err := api.JSONBody(body)
		if err != nil {
			return err
		}
		req.Body = data
	}
	return s.api.Do(ctx, req, nil)
}

// segment trims and escapes an id for use in a route.
func segment(name, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}
	return url.PathEscape(id), nil
}

// idsQuery builds the ids parameter shared by multi-get and library endpoints.
func idsQuery(ids []string, max int) (url.Values, error) {
	joined := api.JoinList(ids)
	if joined == "" {
		return nil, fmt.Errorf("%w: at least one id is required", shared.ErrMissingArgument)
	}
	if n := strings.Count(joined, ",") + 1; n > max {
		return nil, fmt.Errorf("%w: maximum %d IDs allowed per request, got %d", shared.ErrInvalidArgument, max, n)
	}
	return url.Values{"ids": {joined}}, nil
}

func withIDs(route string, ids []string, max int, opts *api.Options) (api.Request, error) {
	q, err := idsQuery(ids, max)
	if err != nil {
		return api.Request{}, err
	}
	req := api.Get(route, opts)
	req.Query = q
	return req, nil
}

// getMany fetches up to max items wrapped under key, e.g. {"albums": [...]}.
func getMany[T any](ctx context.Context, s service, route string, ids []string, max int, opts *api.Options) ([]*T, error) {
	req, err := withIDs(route, ids, max, opts)
	if err != nil {
		return nil, err
	}
	wrapped, err := api.Fetch[map[string][]*T](ctx, s.api, req)
	if err != nil {
		return nil, err
	}
	return wrapped[route], nil
}

// library covers the save, remove and contains trio of the "Your Library" endpoints.
type library struct {
	service
	route string
	max   int
}

func (l library) save(ctx context.Context, ids []string) error {
	q, err := idsQuery(ids, l.max)
	if err != nil {
		return err
	}
	return send(ctx, l.service, http.MethodPut, l.route, q, nil)
}

func (l library) remove(ctx context.Context, ids []string) error {
	q, err := idsQuery(ids, l.max)
	if err != nil {
		return err
	}
	return send(ctx, l.service, http.MethodDelete, l.route, q, nil)
}

func (l library) contains(ctx context.Context, ids []string) ([]bool, error) {
	req, err := withIDs(l.route+"/contains", ids, l.max, nil)
	if err != nil {
		return nil, err
	}
	return api.Fetch[[]bool](ctx, l.api, req)
}
