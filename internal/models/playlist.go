package models

// UserReference is the abbreviated user attached to playlists.
type UserReference struct {
	DisplayName  *string      `json:"display_name,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
	ID           string       `json:"id" validate:"required"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// PlayableItem is a track or an episode, as found in playlists, the queue and playback state.
type PlayableItem struct {
	Type         string             `json:"type" validate:"required,oneof=track episode"`
	ID           string             `json:"id"`
	Name         string             `json:"name" validate:"required"`
	URI          string             `json:"uri"`
	Href         string             `json:"href"`
	DurationMS   int                `json:"duration_ms" validate:"gte=0"`
	Explicit     bool               `json:"explicit"`
	IsLocal      bool               `json:"is_local"`
	ExternalURLs ExternalURLs       `json:"external_urls"`
	Artists      []SimplifiedArtist `json:"artists,omitempty" validate:"dive"`
	Album        *SimplifiedAlbum   `json:"album,omitempty"`
	ExternalIDs  *ExternalIDs       `json:"external_ids,omitempty"`
	Show         *SimplifiedShow    `json:"show,omitempty"`
}

func (p PlayableItem) IsEpisode() bool { return p.Type == "episode" }

// Creator names the artists of a track or the show of an episode.
func (p PlayableItem) Creator() string {
	if p.Show != nil {
		return p.Show.Name
	}
	return artistNames(p.Artists)
}

// Collection names the album of a track or the publisher of an episode.
func (p PlayableItem) Collection() string {
	switch {
	case p.Album != nil:
		return p.Album.Name
	case p.Show != nil:
		return p.Show.Publisher
	}
	return ""
}

// PlaylistItem is one entry of a playlist. Track is nil for items that are no longer available.
type PlaylistItem struct {
	AddedAt string         `json:"added_at"`
	AddedBy *UserReference `json:"added_by,omitempty"`
	IsLocal bool           `json:"is_local"`
	Track   *PlayableItem  `json:"track"`
}

// PlaylistBase holds the fields shared by full and simplified playlists.
type PlaylistBase struct {
	Collaborative bool          `json:"collaborative"`
	Description   *string       `json:"description"`
	ExternalURLs  ExternalURLs  `json:"external_urls"`
	Href          string        `json:"href"`
	ID            string        `json:"id" validate:"required"`
	Images        []Image       `json:"images" validate:"dive"`
	Name          string        `json:"name"`
	Owner         UserReference `json:"owner"`
	Public        *bool         `json:"public"`
	SnapshotID    string        `json:"snapshot_id"`
	Type          string        `json:"type"`
	URI           string        `json:"uri"`
}

type Playlist struct {
	PlaylistBase
	Followers Followers          `json:"followers"`
	Tracks    Page[PlaylistItem] `json:"tracks"`
}

// TrackReference points at a playlist's items without listing them.
type TrackReference struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

type SimplifiedPlaylist struct {
	PlaylistBase
	Tracks *TrackReference `json:"tracks"`
}

// TrackCount returns the number of items, or zero when unknown.
func (p SimplifiedPlaylist) TrackCount() int {
	if p.Tracks == nil {
		return 0
	}
	return p.Tracks.Total
}

// FeaturedPlaylists wraps a browse playlist page with its headline.
type FeaturedPlaylists struct {
	Message   string                   `json:"message"`
	Playlists Page[SimplifiedPlaylist] `json:"playlists"`
}

type User struct {
	DisplayName  *string      `json:"display_name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    *Followers   `json:"followers,omitempty"`
	Href         string       `json:"href"`
	ID           string       `json:"id" validate:"required"`
	Images       []Image      `json:"images" validate:"dive"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Name returns the display name, falling back to the id.
func (u User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.ID
}

type ExplicitContent struct {
	FilterEnabled bool `json:"filter_enabled"`
	FilterLocked  bool `json:"filter_locked"`
}

// UserProfile is the current user's private profile.
type UserProfile struct {
	User
	Country         string           `json:"country,omitempty"`
	Email           string           `json:"email,omitempty"`
	ExplicitContent *ExplicitContent `json:"explicit_content,omitempty"`
	Product         string           `json:"product,omitempty"`
}
