package models

import "strings"

type SimplifiedArtist struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
	ID           string       `json:"id" validate:"required"`
	Name         string       `json:"name" validate:"required"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

type Artist struct {
	SimplifiedArtist
	Followers  Followers `json:"followers"`
	Genres     []string  `json:"genres"`
	Images     []Image   `json:"images" validate:"dive"`
	Popularity int       `json:"popularity" validate:"gte=0,lte=100"`
}

// AlbumBase holds the fields shared by every album representation.
type AlbumBase struct {
	AlbumType            string        `json:"album_type"`
	AvailableMarkets     []string      `json:"available_markets,omitempty"`
	ExternalURLs         ExternalURLs  `json:"external_urls"`
	Href                 string        `json:"href"`
	ID                   string        `json:"id" validate:"required"`
	Images               []Image       `json:"images" validate:"dive"`
	Name                 string        `json:"name" validate:"required"`
	ReleaseDate          string        `json:"release_date"`
	ReleaseDatePrecision string        `json:"release_date_precision"`
	Restrictions         *Restrictions `json:"restrictions,omitempty"`
	TotalTracks          int           `json:"total_tracks"`
	Type                 string        `json:"type"`
	URI                  string        `json:"uri"`
}

type SimplifiedAlbum struct {
	AlbumBase
	AlbumGroup string             `json:"album_group,omitempty"`
	Artists    []SimplifiedArtist `json:"artists" validate:"dive"`
}

type Album struct {
	AlbumBase
	Artists     []SimplifiedArtist    `json:"artists" validate:"dive"`
	Copyrights  []Copyright           `json:"copyrights,omitempty"`
	ExternalIDs ExternalIDs           `json:"external_ids"`
	Genres      []string              `json:"genres,omitempty"`
	Label       string                `json:"label,omitempty"`
	Popularity  int                   `json:"popularity" validate:"gte=0,lte=100"`
	Tracks      Page[SimplifiedTrack] `json:"tracks"`
}

type SavedAlbum struct {
	AddedAt string `json:"added_at"`
	Album   Album  `json:"album"`
}

// NewReleases wraps the browse/new-releases page.
type NewReleases struct {
	Albums Page[SimplifiedAlbum] `json:"albums"`
}

type LinkedFrom struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

type SimplifiedTrack struct {
	Artists          []SimplifiedArtist `json:"artists" validate:"dive"`
	AvailableMarkets []string           `json:"available_markets,omitempty"`
	DiscNumber       int                `json:"disc_number"`
	DurationMS       int                `json:"duration_ms" validate:"gte=0"`
	Explicit         bool               `json:"explicit"`
	ExternalURLs     ExternalURLs       `json:"external_urls"`
	Href             string             `json:"href"`
	ID               string             `json:"id"`
	IsLocal          bool               `json:"is_local"`
	IsPlayable       *bool              `json:"is_playable,omitempty"`
	LinkedFrom       *LinkedFrom        `json:"linked_from,omitempty"`
	Name             string             `json:"name" validate:"required"`
	Restrictions     *Restrictions      `json:"restrictions,omitempty"`
	TrackNumber      int                `json:"track_number"`
	Type             string             `json:"type"`
	URI              string             `json:"uri"`
}

// ArtistNames joins the credited artists.
func (t SimplifiedTrack) ArtistNames() string {
	return artistNames(t.Artists)
}

type Track struct {
	SimplifiedTrack
	Album       SimplifiedAlbum `json:"album"`
	ExternalIDs ExternalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity" validate:"gte=0,lte=100"`
}

type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

type Category struct {
	Href  string  `json:"href"`
	Icons []Image `json:"icons" validate:"dive"`
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name" validate:"required"`
}

func artistNames(artists []SimplifiedArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
