package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// PlayerService controls playback. Commands other than reads require Spotify Premium.
//
// Every command takes an optional device id; empty targets the active device.
type PlayerService struct{ service }

// PlayRequest starts or resumes playback. Leave every field empty to resume.
type PlayRequest struct {
	ContextURI string         `json:"context_uri,omitempty"`
	URIs       []string       `json:"uris,omitempty"`
	Offset     map[string]any `json:"offset,omitempty"`
	PositionMS *int           `json:"position_ms,omitempty"`
}

func deviceQuery(deviceID string) url.Values {
	q := url.Values{}
	if id := strings.TrimSpace(deviceID); id != "" {
		q.Set("device_id", id)
	}
	return q
}

// State returns the current playback state, or nil when nothing is playing.
func (s *PlayerService) State(ctx context.Context, opts *api.Options) (*models.PlaybackState, error) {
	return s.optionalState(ctx, "me/player", opts)
}

// CurrentlyPlaying returns the playing item, or nil when nothing is playing.
func (s *PlayerService) CurrentlyPlaying(ctx context.Context, opts *api.Options) (*models.PlaybackState, error) {
	return s.optionalState(ctx, "me/player/currently-playing", opts)
}

// optionalState decodes a playback payload. Spotify answers 204 with no body when idle.
func (s *PlayerService) optionalState(ctx context.Context, route string, opts *api.Options) (*models.PlaybackState, error) {
	req := api.Get(route, opts)
	req.Optional = true

	var out *models.PlaybackState
	if err := s.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Transfer moves playback to deviceID, starting it when play is set.
func (s *PlayerService) Transfer(ctx context.Context, deviceID string, play bool) error {
	id := strings.TrimSpace(deviceID)
	if id == "" {
		return fmt.Errorf("%w: device id is required", shared.ErrMissingArgument)
	}
	body := map[string]any{"device_ids": []string{id}, "play": play}
	return send(ctx, s.service, http.MethodPut, "me/player", nil, body)
}

func (s *PlayerService) Devices(ctx context.Context) ([]models.Device, error) {
	out, err := get[models.Devices](ctx, s.service, "me/player/devices", nil)
	if err != nil {
		return nil, err
	}
	return out.Devices, nil
}

func (s *PlayerService) Play(ctx context.Context, deviceID string, req *PlayRequest) error {
	var body any
	if req != nil {
		body = req
	}
	return send(ctx, s.service, http.MethodPut, "me/player/play", deviceQuery(deviceID), body)
}

func (s *PlayerService) Pause(ctx context.Context, deviceID string) error {
	return send(ctx, s.service, http.MethodPut, "me/player/pause", deviceQuery(deviceID), nil)
}

func (s *PlayerService) Next(ctx context.Context, deviceID string) error {
	return send(ctx, s.service, http.MethodPost, "me/player/next", deviceQuery(deviceID), nil)
}

func (s *PlayerService) Previous(ctx context.Context, deviceID string) error {
	return send(ctx, s.service, http.MethodPost, "me/player/previous", deviceQuery(deviceID), nil)
}

// Seek jumps to positionMS in the current item.
func (s *PlayerService) Seek(ctx context.Context, deviceID string, positionMS int) error {
	if positionMS < 0 {
		return fmt.Errorf("%w: position must not be negative", shared.ErrInvalidArgument)
	}
	q := deviceQuery(deviceID)
	q.Set("position_ms", strconv.Itoa(positionMS))
	return send(ctx, s.service, http.MethodPut, "me/player/seek", q, nil)
}

// Repeat sets the repeat mode to track, context or off.
func (s *PlayerService) Repeat(ctx context.Context, deviceID, state string) error {
	switch state {
	case "track", "context", "off":
	default:
		return fmt.Errorf("%w: repeat state must be track, context or off, got %q", shared.ErrInvalidArgument, state)
	}
	q := deviceQuery(deviceID)
	q.Set("state", state)
	return send(ctx, s.service, http.MethodPut, "me/player/repeat", q, nil)
}

func (s *PlayerService) Volume(ctx context.Context, deviceID string, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100, got %d", shared.ErrInvalidArgument, percent)
	}
	q := deviceQuery(deviceID)
	q.Set("volume_percent", strconv.Itoa(percent))
	return send(ctx, s.service, http.MethodPut, "me/player/volume", q, nil)
}

func (s *PlayerService) Shuffle(ctx context.Context, deviceID string, on bool) error {
	q := deviceQuery(deviceID)
	q.Set("state", strconv.FormatBool(on))
	return send(ctx, s.service, http.MethodPut, "me/player/shuffle", q, nil)
}

// RecentlyPlayed pages through play history with the before or after cursor (unix millis).
func (s *PlayerService) RecentlyPlayed(ctx context.Context, opts *api.Options) (*models.CursorPage[models.PlayHistory], error) {
	return get[models.CursorPage[models.PlayHistory]](ctx, s.service, "me/player/recently-played", opts)
}

func (s *PlayerService) Queue(ctx context.Context) (*models.Queue, error) {
	return get[models.Queue](ctx, s.service, "me/player/queue", nil)
}

// AddToQueue appends a track or episode uri to the queue.
func (s *PlayerService) AddToQueue(ctx context.Context, deviceID, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return fmt.Errorf("%w: uri is required", shared.ErrMissingArgument)
	}
	q := deviceQuery(deviceID)
	q.Set("uri", uri)
	return send(ctx, s.service, http.MethodPost, "me/player/queue", q, nil)
}
