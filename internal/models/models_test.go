package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{Milliseconds(61_400), "1:01"},
		{Milliseconds(59_600), "1:00"},
		{3*time.Hour + 2*time.Minute + 5*time.Second, "3:02:05"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlayableItem(t *testing.T) {
	t.Run("Track", func(t *testing.T) {
		var item PlayableItem
		data := `{"type":"track","name":"Song","artists":[{"id":"1","name":"A"},{"id":"2","name":"B"}],"album":{"id":"al","name":"Record"}}`
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.IsEpisode() {
			t.Error("expected a track")
		}
		if item.Creator() != "A, B" || item.Collection() != "Record" {
			t.Errorf("unexpected creator %q or collection %q", item.Creator(), item.Collection())
		}
	})

	t.Run("Episode", func(t *testing.T) {
		var item PlayableItem
		data := `{"type":"episode","name":"Ep 1","show":{"id":"s","name":"Show","publisher":"Pub"}}`
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !item.IsEpisode() || item.Creator() != "Show" || item.Collection() != "Pub" {
			t.Errorf("unexpected episode %+v", item)
		}
	})
}

func TestEmbeddedFields(t *testing.T) {
	var album Album
	data := `{"id":"a1","name":"Record","album_type":"album","artists":[{"id":"x","name":"X"}],"tracks":{"total":1,"items":[{"name":"Song","duration_ms":1000}]}}`
	if err := json.Unmarshal([]byte(data), &album); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if album.ID != "a1" || album.AlbumType != "album" || album.Tracks.Total != 1 {
		t.Errorf("unexpected album %+v", album)
	}
	if album.Tracks.Items[0].ArtistNames() != "" {
		t.Errorf("expected no artists, got %q", album.Tracks.Items[0].ArtistNames())
	}
}

func TestHelpers(t *testing.T) {
	next := "https://api.spotify.com/v1/me/tracks?offset=20"
	if !(Page[Track]{Next: &next}).HasNext() || (Page[Track]{}).HasNext() {
		t.Error("unexpected HasNext result")
	}

	name := "Jo"
	if (User{ID: "jo1", DisplayName: &name}).Name() != "Jo" || (User{ID: "jo1"}).Name() != "jo1" {
		t.Error("unexpected user name")
	}

	if (SimplifiedPlaylist{}).TrackCount() != 0 {
		t.Error("expected zero for unknown track count")
	}
}
