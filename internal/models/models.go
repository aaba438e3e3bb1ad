// package models defines the Spotify Web API payloads returned by the services
package models

import (
	"fmt"
	"time"
)

// Page is an offset-paginated list.
type Page[T any] struct {
	Href     string  `json:"href"`
	Limit    int     `json:"limit" validate:"gte=0"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset" validate:"gte=0"`
	Previous *string `json:"previous"`
	Total    int     `json:"total" validate:"gte=0"`
	Items    []T     `json:"items" validate:"dive"`
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool { return p.Next != nil && *p.Next != "" }

// Cursors bound a [CursorPage].
type Cursors struct {
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
}

// CursorPage is a cursor-paginated list, used by followed artists and recently played.
type CursorPage[T any] struct {
	Href    string  `json:"href"`
	Limit   int     `json:"limit" validate:"gte=0"`
	Next    *string `json:"next"`
	Cursors Cursors `json:"cursors"`
	Total   int     `json:"total,omitempty"`
	Items   []T     `json:"items" validate:"dive"`
}

type Image struct {
	URL    string `json:"url" validate:"required"`
	Height *int   `json:"height"`
	Width  *int   `json:"width"`
}

type ExternalURLs struct {
	Spotify string `json:"spotify,omitempty"`
}

type ExternalIDs struct {
	ISRC string `json:"isrc,omitempty"`
	EAN  string `json:"ean,omitempty"`
	UPC  string `json:"upc,omitempty"`
}

type Followers struct {
	Href  *string `json:"href"`
	Total int     `json:"total"`
}

type Copyright struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type Restrictions struct {
	Reason string `json:"reason"`
}

type ResumePoint struct {
	FullyPlayed      bool `json:"fully_played"`
	ResumePositionMS int  `json:"resume_position_ms"`
}

// SnapshotID identifies a playlist version after a mutation.
type SnapshotID struct {
	SnapshotID string `json:"snapshot_id" validate:"required"`
}

// Markets lists the country codes Spotify is available in.
type Markets struct {
	Markets []string `json:"markets" validate:"required"`
}

// Milliseconds converts an API duration_ms value.
func Milliseconds(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// FormatDuration renders d as m:ss, or h:mm:ss past the hour.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
