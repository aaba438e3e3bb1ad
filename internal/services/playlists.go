package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

type PlaylistService struct{ service }

// PlaylistDetails changes a playlist's metadata. Nil fields are left unchanged.
type PlaylistDetails struct {
	Name          *string `json:"name,omitempty"`
	Public        *bool   `json:"public,omitempty"`
	Collaborative *bool   `json:"collaborative,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// ReorderItems moves or replaces a playlist's items. Set URIs to replace, or the range fields to reorder.
type ReorderItems struct {
	URIs         []string `json:"uris,omitempty"`
	RangeStart   *int     `json:"range_start,omitempty"`
	InsertBefore *int     `json:"insert_before,omitempty"`
	RangeLength  *int     `json:"range_length,omitempty"`
	SnapshotID   string   `json:"snapshot_id,omitempty"`
}

type uriRef struct {
	URI string `json:"uri"`
}

func (s *PlaylistService) route(id string, parts ...string) (string, error) {
	seg, err := segment("playlist id", id)
	if err != nil {
		return "", err
	}
	return strings.Join(append([]string{"playlists", seg}, parts...), "/"), nil
}

// Get returns a playlist with its first page of items. opts.Fields narrows the payload.
func (s *PlaylistService) Get(ctx context.Context, id string, opts *api.Options) (*models.Playlist, error) {
	route, err := s.route(id)
	if err != nil {
		return nil, err
	}
	return get[models.Playlist](ctx, s.service, route, opts)
}

func (s *PlaylistService) ChangeDetails(ctx context.Context, id string, details PlaylistDetails) error {
	route, err := s.route(id)
	if err != nil {
		return err
	}
	return send(ctx, s.service, http.MethodPut, route, nil, details)
}

func (s *PlaylistService) Items(ctx context.Context, id string, opts *api.Options) (*models.Page[models.PlaylistItem], error) {
	route, err := s.route(id, "tracks")
	if err != nil {
		return nil, err
	}
	return get[models.Page[models.PlaylistItem]](ctx, s.service, route, opts)
}

// AllItems walks every page of a playlist's items.
func (s *PlaylistService) AllItems(ctx context.Context, id string, market string) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem
	offset := 0

	for {
		page, err := s.Items(ctx, id, &api.Options{Market: market, Limit: api.Int(api.MaxLimit), Offset: api.Int(offset)})
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if !page.HasNext() || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	return items, nil
}

// UpdateItems reorders or replaces items and returns the new snapshot id.
func (s *PlaylistService) UpdateItems(ctx context.Context, id string, update ReorderItems) (string, error) {
	if len(update.URIs) > MaxURIs {
		return "", fmt.Errorf("%w: maximum %d URIs allowed per request", shared.ErrInvalidArgument, MaxURIs)
	}
	return s.mutate(ctx, http.MethodPut, id, update)
}

// AddItems inserts uris at position, or appends them when position is nil.
func (s *PlaylistService) AddItems(ctx context.Context, id string, uris []string, position *int) (string, error) {
	if err := checkURIs(uris); err != nil {
		return "", err
	}
	body := struct {
		URIs     []string `json:"uris"`
		Position *int     `json:"position,omitempty"`
	}{uris, position}
	return s.mutate(ctx, http.MethodPost, id, body)
}

// RemoveItems removes every occurrence of uris. A non-empty snapshot id targets that version.
func (s *PlaylistService) RemoveItems(ctx context.Context, id string, uris []string, snapshotID string) (string, error) {
	if err := checkURIs(uris); err != nil {
		return "", err
	}
	refs := make([]uriRef, len(uris))
	for i, u := range uris {
		refs[i] = uriRef{URI: strings.TrimSpace(u)}
	}
	body := struct {
		Tracks     []uriRef `json:"tracks"`
		SnapshotID string   `json:"snapshot_id,omitempty"`
	}{refs, snapshotID}
	return s.mutate(ctx, http.MethodDelete, id, body)
}

func (s *PlaylistService) mutate(ctx context.Context, method, id string, body any) (string, error) {
	route, err := s.route(id, "tracks")
	if err != nil {
		return "", err
	}
	data, err := api.JSONBody(body)
	if err != nil {
		return "", err
	}

	var out models.SnapshotID
	if err := s.api.Do(ctx, api.Request{Method: method, Route: route, Body: data}, &out); err != nil {
		return "", err
	}
	return out.SnapshotID, nil
}

// CurrentUserPlaylists lists playlists owned or followed by the current user.
func (s *PlaylistService) CurrentUserPlaylists(ctx context.Context, opts *api.Options) (*models.Page[models.SimplifiedPlaylist], error) {
	return get[models.Page[models.SimplifiedPlaylist]](ctx, s.service, "me/playlists", opts)
}

// AllCurrentUserPlaylists walks every page of the current user's playlists.
func (s *PlaylistService) AllCurrentUserPlaylists(ctx context.Context) ([]models.SimplifiedPlaylist, error) {
	var all []models.SimplifiedPlaylist
	offset := 0

	for {
		page, err := s.CurrentUserPlaylists(ctx, api.Page(api.MaxLimit, offset))
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if !page.HasNext() || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	return all, nil
}

func (s *PlaylistService) UserPlaylists(ctx context.Context, userID string, opts *api.Options) (*models.Page[models.SimplifiedPlaylist], error) {
	seg, err := segment("user id", userID)
	if err != nil {
		return nil, err
	}
	return get[models.Page[models.SimplifiedPlaylist]](ctx, s.service, "users/"+seg+"/playlists", opts)
}

// Create makes an empty playlist owned by userID.
func (s *PlaylistService) Create(ctx context.Context, userID string, details PlaylistDetails) (*models.Playlist, error) {
	seg, err := segment("user id", userID)
	if err != nil {
		return nil, err
	}
	if details.Name == nil || strings.TrimSpace(*details.Name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	data, err := api.JSONBody(details)
	if err != nil {
		return nil, err
	}
	out, err := api.Fetch[models.Playlist](ctx, s.api, api.Post("users/"+seg+"/playlists", data))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PlaylistService) CoverImage(ctx context.Context, id string) ([]models.Image, error) {
	route, err := s.route(id, "images")
	if err != nil {
		return nil, err
	}
	return list[models.Image](ctx, s.service, route, nil)
}

// UploadCoverImage replaces the cover with a base64 encoded JPEG.
func (s *PlaylistService) UploadCoverImage(ctx context.Context, id, jpegBase64 string) error {
	route, err := s.route(id, "images")
	if err != nil {
		return err
	}
	data := strings.TrimSpace(jpegBase64)
	if data == "" {
		return fmt.Errorf("%w: image data is required", shared.ErrMissingArgument)
	}

	req := api.Put(route, []byte(data))
	req.Headers = map[string]string{"Content-Type": "image/jpeg"}
	return s.api.Do(ctx, req, nil)
}

func checkURIs(uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one uri is required", shared.ErrMissingArgument)
	}
	if len(uris) > MaxURIs {
		return fmt.Errorf("%w: maximum %d URIs allowed per request", shared.ErrInvalidArgument, MaxURIs)
	}
	return nil
}

