package models

// SearchResults holds one page per requested type. Types that were not requested are nil.
// Spotify may return null entries for playlists, shows, episodes and audiobooks.
type SearchResults struct {
	Albums     *Page[SimplifiedAlbum]      `json:"albums,omitempty"`
	Artists    *Page[Artist]               `json:"artists,omitempty"`
	Tracks     *Page[Track]                `json:"tracks,omitempty"`
	Playlists  *Page[*SimplifiedPlaylist]  `json:"playlists,omitempty"`
	Shows      *Page[*SimplifiedShow]      `json:"shows,omitempty"`
	Episodes   *Page[*SimplifiedEpisode]   `json:"episodes,omitempty"`
	Audiobooks *Page[*SimplifiedAudiobook] `json:"audiobooks,omitempty"`
}
