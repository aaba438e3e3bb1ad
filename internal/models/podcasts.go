package models

type SimplifiedShow struct {
	AvailableMarkets   []string     `json:"available_markets,omitempty"`
	Copyrights         []Copyright  `json:"copyrights,omitempty"`
	Description        string       `json:"description"`
	HTMLDescription    string       `json:"html_description,omitempty"`
	Explicit           bool         `json:"explicit"`
	ExternalURLs       ExternalURLs `json:"external_urls"`
	Href               string       `json:"href"`
	ID                 string       `json:"id" validate:"required"`
	Images             []Image      `json:"images" validate:"dive"`
	IsExternallyHosted bool         `json:"is_externally_hosted"`
	Languages          []string     `json:"languages"`
	MediaType          string       `json:"media_type"`
	Name               string       `json:"name" validate:"required"`
	Publisher          string       `json:"publisher"`
	Type               string       `json:"type"`
	URI                string       `json:"uri"`
	TotalEpisodes      int          `json:"total_episodes"`
}

type Show struct {
	SimplifiedShow
	Episodes Page[SimplifiedEpisode] `json:"episodes"`
}

type SavedShow struct {
	AddedAt string         `json:"added_at"`
	Show    SimplifiedShow `json:"show"`
}

type SimplifiedEpisode struct {
	Description          string        `json:"description"`
	HTMLDescription      string        `json:"html_description,omitempty"`
	DurationMS           int           `json:"duration_ms" validate:"gte=0"`
	Explicit             bool          `json:"explicit"`
	ExternalURLs         ExternalURLs  `json:"external_urls"`
	Href                 string        `json:"href"`
	ID                   string        `json:"id" validate:"required"`
	Images               []Image       `json:"images" validate:"dive"`
	IsExternallyHosted   bool          `json:"is_externally_hosted"`
	IsPlayable           bool          `json:"is_playable"`
	Languages            []string      `json:"languages"`
	Name                 string        `json:"name" validate:"required"`
	ReleaseDate          string        `json:"release_date"`
	ReleaseDatePrecision string        `json:"release_date_precision"`
	ResumePoint          *ResumePoint  `json:"resume_point,omitempty"`
	Type                 string        `json:"type"`
	URI                  string        `json:"uri"`
	Restrictions         *Restrictions `json:"restrictions,omitempty"`
}

type Episode struct {
	SimplifiedEpisode
	Show SimplifiedShow `json:"show"`
}

type SavedEpisode struct {
	AddedAt string  `json:"added_at"`
	Episode Episode `json:"episode"`
}

type Author struct {
	Name string `json:"name"`
}

type Narrator struct {
	Name string `json:"name"`
}

type SimplifiedAudiobook struct {
	Authors          []Author     `json:"authors"`
	AvailableMarkets []string     `json:"available_markets,omitempty"`
	Copyrights       []Copyright  `json:"copyrights,omitempty"`
	Description      string       `json:"description"`
	HTMLDescription  string       `json:"html_description,omitempty"`
	Edition          string       `json:"edition,omitempty"`
	Explicit         bool         `json:"explicit"`
	ExternalURLs     ExternalURLs `json:"external_urls"`
	Href             string       `json:"href"`
	ID               string       `json:"id" validate:"required"`
	Images           []Image      `json:"images" validate:"dive"`
	Languages        []string     `json:"languages"`
	MediaType        string       `json:"media_type"`
	Name             string       `json:"name" validate:"required"`
	Narrators        []Narrator   `json:"narrators"`
	Publisher        string       `json:"publisher"`
	TotalChapters    int          `json:"total_chapters"`
	Type             string       `json:"type"`
	URI              string       `json:"uri"`
}

type Audiobook struct {
	SimplifiedAudiobook
	Chapters Page[SimplifiedChapter] `json:"chapters"`
}

type SavedAudiobook struct {
	AddedAt   string              `json:"added_at"`
	Audiobook SimplifiedAudiobook `json:"audiobook"`
}

type SimplifiedChapter struct {
	AvailableMarkets     []string      `json:"available_markets,omitempty"`
	ChapterNumber        int           `json:"chapter_number"`
	Description          string        `json:"description"`
	HTMLDescription      string        `json:"html_description,omitempty"`
	DurationMS           int           `json:"duration_ms" validate:"gte=0"`
	Explicit             bool          `json:"explicit"`
	ExternalURLs         ExternalURLs  `json:"external_urls"`
	Href                 string        `json:"href"`
	ID                   string        `json:"id" validate:"required"`
	Images               []Image       `json:"images" validate:"dive"`
	IsPlayable           *bool         `json:"is_playable,omitempty"`
	Languages            []string      `json:"languages"`
	Name                 string        `json:"name" validate:"required"`
	ReleaseDate          string        `json:"release_date"`
	ReleaseDatePrecision string        `json:"release_date_precision"`
	ResumePoint          *ResumePoint  `json:"resume_point,omitempty"`
	Type                 string        `json:"type"`
	URI                  string        `json:"uri"`
	Restrictions         *Restrictions `json:"restrictions,omitempty"`
}

type Chapter struct {
	SimplifiedChapter
	Audiobook SimplifiedAudiobook `json:"audiobook"`
}
