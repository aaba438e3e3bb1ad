package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

type AlbumService struct{ service }

func (s *AlbumService) saved() library {
	return library{service: s.service, route: "me/albums", max: MaxAlbumIDs}
}

// Get returns catalog information for a single album.
func (s *AlbumService) Get(ctx context.Context, id string, opts *api.Options) (*models.Album, error) {
	seg, err := segment("album id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Album](ctx, s.service, "albums/"+seg, opts)
}

// GetMany returns up to 20 albums. Unknown ids yield nil entries.
func (s *AlbumService) GetMany(ctx context.Context, ids []string, opts *api.Options) ([]*models.Album, error) {
	return getMany[models.Album](ctx, s.service, "albums", ids, MaxAlbumIDs, opts)
}

func (s *AlbumService) Tracks(ctx context.Context, id string, opts *api.Options) (*models.Page[models.SimplifiedTrack], error) {
	seg, err := segment("album id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Page[models.SimplifiedTrack]](ctx, s.service, "albums/"+seg+"/tracks", opts)
}

// Saved lists the albums in the current user's library.
func (s *AlbumService) Saved(ctx context.Context, opts *api.Options) (*models.Page[models.SavedAlbum], error) {
	return get[models.Page[models.SavedAlbum]](ctx, s.service, "me/albums", opts)
}

func (s *AlbumService) Save(ctx context.Context, ids []string) error { return s.saved().save(ctx, ids) }

func (s *AlbumService) Remove(ctx context.Context, ids []string) error {
	return s.saved().remove(ctx, ids)
}

func (s *AlbumService) CheckSaved(ctx context.Context, ids []string) ([]bool, error) {
	return s.saved().contains(ctx, ids)
}

// NewReleases lists albums featured on the browse tab.
func (s *AlbumService) NewReleases(ctx context.Context, opts *api.Options) (*models.Page[models.SimplifiedAlbum], error) {
	out, err := get[models.NewReleases](ctx, s.service, "browse/new-releases", opts)
	if err != nil {
		return nil, err
	}
	return &out.Albums, nil
}

type ArtistService struct{ service }

func (s *ArtistService) Get(ctx context.Context, id string) (*models.Artist, error) {
	seg, err := segment("artist id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Artist](ctx, s.service, "artists/"+seg, nil)
}

func (s *ArtistService) GetMany(ctx context.Context, ids []string) ([]*models.Artist, error) {
	return getMany[models.Artist](ctx, s.service, "artists", ids, MaxIDs, nil)
}

// Albums lists an artist's albums, filtered by opts.IncludeGroups when set.
func (s *ArtistService) Albums(ctx context.Context, id string, opts *api.Options) (*models.Page[models.SimplifiedAlbum], error) {
	seg, err := segment("artist id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Page[models.SimplifiedAlbum]](ctx, s.service, "artists/"+seg+"/albums", opts)
}

// TopTracks returns an artist's most popular tracks in market.
func (s *ArtistService) TopTracks(ctx context.Context, id, market string) ([]models.Track, error) {
	seg, err := segment("artist id", id)
	if err != nil {
		return nil, err
	}
	var out struct {
		Tracks []models.Track `json:"tracks" validate:"dive"`
	}
	if err := s.api.Do(ctx, api.Get("artists/"+seg+"/top-tracks", &api.Options{Market: market}), &out); err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

type TrackService struct{ service }

func (s *TrackService) saved() library {
	return library{service: s.service, route: "me/tracks", max: MaxIDs}
}

func (s *TrackService) Get(ctx context.Context, id string, opts *api.Options) (*models.Track, error) {
	seg, err := segment("track id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Track](ctx, s.service, "tracks/"+seg, opts)
}

func (s *TrackService) GetMany(ctx context.Context, ids []string, opts *api.Options) ([]*models.Track, error) {
	return getMany[models.Track](ctx, s.service, "tracks", ids, MaxIDs, opts)
}

func (s *TrackService) Saved(ctx context.Context, opts *api.Options) (*models.Page[models.SavedTrack], error) {
	return get[models.Page[models.SavedTrack]](ctx, s.service, "me/tracks", opts)
}

func (s *TrackService) Save(ctx context.Context, ids []string) error { return s.saved().save(ctx, ids) }

func (s *TrackService) Remove(ctx context.Context, ids []string) error {
	return s.saved().remove(ctx, ids)
}

func (s *TrackService) CheckSaved(ctx context.Context, ids []string) ([]bool, error) {
	return s.saved().contains(ctx, ids)
}

type MarketService struct{ service }

// List returns the markets Spotify is available in.
func (s *MarketService) List(ctx context.Context) ([]string, error) {
	out, err := get[models.Markets](ctx, s.service, "markets", nil)
	if err != nil {
		return nil, err
	}
	return out.Markets, nil
}

type CategoryService struct{ service }

func (s *CategoryService) Get(ctx context.Context, id string, opts *api.Options) (*models.Category, error) {
	seg, err := segment("category id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Category](ctx, s.service, "browse/categories/"+seg, opts)
}

// List returns a page of browse categories, localized by opts.Locale.
func (s *CategoryService) List(ctx context.Context, opts *api.Options) (*models.Page[models.Category], error) {
	out, err := get[struct {
		Categories models.Page[models.Category] `json:"categories"`
	}](ctx, s.service, "browse/categories", opts)
	if err != nil {
		return nil, err
	}
	return &out.Categories, nil
}

// SearchType is one of the item types accepted by [SearchService.Search].
type SearchType string

const (
	SearchAlbum     SearchType = "album"
	SearchArtist    SearchType = "artist"
	SearchPlaylist  SearchType = "playlist"
	SearchTrack     SearchType = "track"
	SearchShow      SearchType = "show"
	SearchEpisode   SearchType = "episode"
	SearchAudiobook SearchType = "audiobook"
)

// ParseSearchTypes validates a list of type names.
func ParseSearchTypes(names []string) ([]SearchType, error) {
	types := make([]SearchType, 0, len(names))
	for _, n := range names {
		switch t := SearchType(n); t {
		case SearchAlbum, SearchArtist, SearchPlaylist, SearchTrack, SearchShow, SearchEpisode, SearchAudiobook:
			types = append(types, t)
		default:
			return nil, fmt.Errorf("%w: unknown search type %q", shared.ErrInvalidArgument, n)
		}
	}
	return types, nil
}

type SearchService struct{ service }

// Search finds catalog items matching q. Results are grouped per requested type.
func (s *SearchService) Search(ctx context.Context, q string, types []SearchType, opts *api.Options) (*models.SearchResults, error) {
	if q == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: at least one search type is required", shared.ErrMissingArgument)
	}

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	req := api.Get("search", opts)
	req.Query = url.Values{"q": {q}, "type": {api.JoinList(names)}}
	out, err := api.Fetch[models.SearchResults](ctx, s.api, req)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
