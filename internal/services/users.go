package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// FollowType selects artists or users for the follow endpoints.
type FollowType string

const (
	FollowArtist FollowType = "artist"
	FollowUser   FollowType = "user"
)

type UserService struct{ service }

// Current returns the profile of the user the token belongs to.
func (s *UserService) Current(ctx context.Context) (*models.UserProfile, error) {
	return get[models.UserProfile](ctx, s.service, "me", nil)
}

// Get returns a user's public profile.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	seg, err := segment("user id", id)
	if err != nil {
		return nil, err
	}
	return get[models.User](ctx, s.service, "users/"+seg, nil)
}

// TopArtists ranks the current user's artists over opts.TimeRange.
func (s *UserService) TopArtists(ctx context.Context, opts *api.Options) (*models.Page[models.Artist], error) {
	return get[models.Page[models.Artist]](ctx, s.service, "me/top/artists", opts)
}

func (s *UserService) TopTracks(ctx context.Context, opts *api.Options) (*models.Page[models.Track], error) {
	return get[models.Page[models.Track]](ctx, s.service, "me/top/tracks", opts)
}

func (s *UserService) FollowPlaylist(ctx context.Context, playlistID string, public bool) error {
	seg, err := segment("playlist id", playlistID)
	if err != nil {
		return err
	}
	return send(ctx, s.service, http.MethodPut, "playlists/"+seg+"/followers", nil, map[string]bool{"public": public})
}

func (s *UserService) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	seg, err := segment("playlist id", playlistID)
	if err != nil {
		return err
	}
	return send(ctx, s.service, http.MethodDelete, "playlists/"+seg+"/followers", nil, nil)
}

// CheckFollowingPlaylist reports whether the current user follows the playlist.
func (s *UserService) CheckFollowingPlaylist(ctx context.Context, playlistID string) (bool, error) {
	seg, err := segment("playlist id", playlistID)
	if err != nil {
		return false, err
	}
	out, err := list[bool](ctx, s.service, "playlists/"+seg+"/followers/contains", nil)
	if err != nil {
		return false, err
	}
	return len(out) > 0 && out[0], nil
}

// FollowedArtists pages through followed artists with the after cursor.
func (s *UserService) FollowedArtists(ctx context.Context, opts *api.Options) (*models.CursorPage[models.Artist], error) {
	if opts != nil && opts.Before != "" {
		return nil, fmt.Errorf("%w: followed artists only support the after cursor", shared.ErrInvalidArgument)
	}
	req := api.Get("me/following", opts)
	req.Query = url.Values{"type": {string(FollowArtist)}}

	out, err := api.Fetch[struct {
		Artists models.CursorPage[models.Artist] `json:"artists"`
	}](ctx, s.api, req)
	if err != nil {
		return nil, err
	}
	return &out.Artists, nil
}

func (s *UserService) Follow(ctx context.Context, kind FollowType, ids []string) error {
	q, err := followQuery(kind, ids)
	if err != nil {
		return err
	}
	return send(ctx, s.service, http.MethodPut, "me/following", q, nil)
}

func (s *UserService) Unfollow(ctx context.Context, kind FollowType, ids []string) error {
	q, err := followQuery(kind, ids)
	if err != nil {
		return err
	}
	return send(ctx, s.service, http.MethodDelete, "me/following", q, nil)
}

// CheckFollowing reports, per id, whether the current user follows it.
func (s *UserService) CheckFollowing(ctx context.Context, kind FollowType, ids []string) ([]bool, error) {
	q, err := followQuery(kind, ids)
	if err != nil {
		return nil, err
	}
	return api.Fetch[[]bool](ctx, s.api, api.Request{Route: "me/following/contains", Query: q})
}

func followQuery(kind FollowType, ids []string) (url.Values, error) {
	if kind != FollowArtist && kind != FollowUser {
		return nil, fmt.Errorf("%w: follow type must be artist or user, got %q", shared.ErrInvalidArgument, kind)
	}
	q, err := idsQuery(ids, MaxIDs)
	if err != nil {
		return nil, err
	}
	q.Set("type", string(kind))
	return q, nil
}
