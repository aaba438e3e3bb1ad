package models

type Device struct {
	ID               *string `json:"id"`
	IsActive         bool    `json:"is_active"`
	IsPrivateSession bool    `json:"is_private_session"`
	IsRestricted     bool    `json:"is_restricted"`
	Name             string  `json:"name" validate:"required"`
	Type             string  `json:"type"`
	VolumePercent    *int    `json:"volume_percent" validate:"omitnil,gte=0,lte=100"`
	SupportsVolume   bool    `json:"supports_volume"`
}

type Devices struct {
	Devices []Device `json:"devices" validate:"dive"`
}

// PlaybackContext is the album, playlist or artist playback started from.
type PlaybackContext struct {
	Type         string       `json:"type"`
	Href         string       `json:"href"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	URI          string       `json:"uri"`
}

type Actions struct {
	InterruptingPlayback  bool `json:"interrupting_playback,omitempty"`
	Pausing               bool `json:"pausing,omitempty"`
	Resuming              bool `json:"resuming,omitempty"`
	Seeking               bool `json:"seeking,omitempty"`
	SkippingNext          bool `json:"skipping_next,omitempty"`
	SkippingPrev          bool `json:"skipping_prev,omitempty"`
	TogglingRepeatContext bool `json:"toggling_repeat_context,omitempty"`
	TogglingShuffle       bool `json:"toggling_shuffle,omitempty"`
	TogglingRepeatTrack   bool `json:"toggling_repeat_track,omitempty"`
	TransferringPlayback  bool `json:"transferring_playback,omitempty"`
}

type PlaybackState struct {
	Device               *Device          `json:"device,omitempty"`
	RepeatState          string           `json:"repeat_state,omitempty" validate:"omitempty,oneof=off track context"`
	ShuffleState         bool             `json:"shuffle_state"`
	Context              *PlaybackContext `json:"context"`
	Timestamp            int64            `json:"timestamp"`
	ProgressMS           *int             `json:"progress_ms"`
	IsPlaying            bool             `json:"is_playing"`
	Item                 *PlayableItem    `json:"item"`
	CurrentlyPlayingType string           `json:"currently_playing_type"`
	Actions              Actions          `json:"actions"`
}

type Queue struct {
	CurrentlyPlaying *PlayableItem  `json:"currently_playing"`
	Queue            []PlayableItem `json:"queue" validate:"dive"`
}

type PlayHistory struct {
	Track    Track            `json:"track"`
	PlayedAt string           `json:"played_at" validate:"required"`
	Context  *PlaybackContext `json:"context"`
}
