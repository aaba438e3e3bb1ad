// package formatter renders track listings (albums, playlists, saved tracks) as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat accepts a format name or one of its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (want csv, md, txt or json)", shared.ErrInvalidArgument, s)
}

// Row is one entry of a listing, flattened from a track or an episode.
type Row struct {
	Position int           `json:"position"`
	ID       string        `json:"id,omitempty"`
	URI      string        `json:"uri,omitempty"`
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album,omitempty"`
	Duration time.Duration `json:"-"`
	ISRC     string        `json:"isrc,omitempty"`
	AddedAt  string        `json:"added_at,omitempty"`
}

// Listing is a titled list of rows ready to render.
type Listing struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	URL         string `json:"url,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	Rows        []Row  `json:"rows"`
}

// TotalDuration sums the duration of every row.
func (l *Listing) TotalDuration() time.Duration {
	var total time.Duration
	for _, r := range l.Rows {
		total += r.Duration
	}
	return total
}

func coverURL(images []models.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// FromPlaylist lists items that are still available, numbered by their playlist position.
func FromPlaylist(p *models.Playlist, items []models.PlaylistItem) *Listing {
	l := &Listing{
		ID:       p.ID,
		Title:    p.Name,
		Owner:    p.Owner.ID,
		URL:      p.ExternalURLs.Spotify,
		CoverURL: coverURL(p.Images),
	}
	if p.Owner.DisplayName != nil && *p.Owner.DisplayName != "" {
		l.Owner = *p.Owner.DisplayName
	}
	if p.Description != nil {
		l.Description = *p.Description
	}

	for i, item := range items {
		if item.Track == nil {
			continue
		}
		t := item.Track
		row := Row{
			Position: i + 1,
			ID:       t.ID,
			URI:      t.URI,
			Type:     t.Type,
			Title:    t.Name,
			Artist:   t.Creator(),
			Album:    t.Collection(),
			Duration: models.Milliseconds(t.DurationMS),
			AddedAt:  item.AddedAt,
		}
		if t.ExternalIDs != nil {
			row.ISRC = t.ExternalIDs.ISRC
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}

// FromAlbum lists the album tracks included in a.
func FromAlbum(a *models.Album) *Listing {
	l := &Listing{
		ID:          a.ID,
		Title:       a.Name,
		Description: strings.TrimSpace(a.ReleaseDate + " " + a.Label),
		Owner:       joinArtists(a.Artists),
		URL:         a.ExternalURLs.Spotify,
		CoverURL:    coverURL(a.Images),
	}
	for i, t := range a.Tracks.Items {
		l.Rows = append(l.Rows, Row{
			Position: a.Tracks.Offset + i + 1,
			ID:       t.ID,
			URI:      t.URI,
			Type:     "track",
			Title:    t.Name,
			Artist:   t.ArtistNames(),
			Album:    a.Name,
			Duration: models.Milliseconds(t.DurationMS),
		})
	}
	return l
}

// FromTracks lists full track objects such as top tracks.
func FromTracks(title string, tracks []models.Track) *Listing {
	l := &Listing{Title: title}
	for i, t := range tracks {
		l.Rows = append(l.Rows, trackRow(i+1, t, ""))
	}
	return l
}

// FromSavedTracks lists the user's library, keeping when each track was saved.
func FromSavedTracks(title string, saved []models.SavedTrack) *Listing {
	l := &Listing{Title: title}
	for i, s := range saved {
		l.Rows = append(l.Rows, trackRow(i+1, s.Track, s.AddedAt))
	}
	return l
}

func trackRow(pos int, t models.Track, addedAt string) Row {
	return Row{
		Position: pos,
		ID:       t.ID,
		URI:      t.URI,
		Type:     "track",
		Title:    t.Name,
		Artist:   t.ArtistNames(),
		Album:    t.Album.Name,
		Duration: models.Milliseconds(t.DurationMS),
		ISRC:     t.ExternalIDs.ISRC,
		AddedAt:  addedAt,
	}
}

func joinArtists(artists []models.SimplifiedArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Render encodes l in format. cover is an optional image path linked from Markdown.
func Render(l *Listing, format Format, cover string) ([]byte, error) {
	switch format {
	case CSV:
		return ToCSV(l)
	case Markdown:
		return ToMarkdown(l, cover)
	case Text:
		return ToText(l)
	case JSON:
		return ToJSON(l)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// ToCSV writes one record per row with columns: Position, ID, Title, Artist, Album, Duration, ISRC, Added At.
// Duration is in whole seconds.
func ToCSV(l *Listing) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artist", "Album", "Duration", "ISRC", "Added At"}
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range l.Rows {
		record := []string{
			strconv.Itoa(r.Position),
			r.ID,
			r.Title,
			r.Artist,
			r.Album,
			strconv.Itoa(int(r.Duration.Round(time.Second) / time.Second)),
			r.ISRC,
			r.AddedAt,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func ToMarkdown(l *Listing, cover string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", l.Title)
	if cover != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", cover)
	}
	if l.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", l.Description)
	}
	if l.Owner != "" {
		fmt.Fprintf(&buf, "**By**: %s\n", l.Owner)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(l.Rows))
	fmt.Fprintf(&buf, "**Length**: %s\n", models.FormatDuration(l.TotalDuration()))
	if l.URL != "" {
		fmt.Fprintf(&buf, "**Link**: <%s>\n", l.URL)
	}

	buf.WriteString("\n## Tracks\n\n")
	for _, r := range l.Rows {
		album := ""
		if r.Album != "" {
			album = fmt.Sprintf(" (%s)", r.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", r.Position, r.Artist, r.Title, album, models.FormatDuration(r.Duration))
	}
	return buf.Bytes(), nil
}

func ToText(l *Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", l.Title)
	if l.Description != "" {
		fmt.Fprintf(&buf, "%s\n", l.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d (%s)\n\n", len(l.Rows), models.FormatDuration(l.TotalDuration()))

	for _, r := range l.Rows {
		fmt.Fprintf(&buf, "%3d. %s - %s  %s\n", r.Position, r.Artist, r.Title, models.FormatDuration(r.Duration))
	}
	return buf.Bytes(), nil
}

// jsonRow adds the duration in milliseconds, matching the API's duration_ms.
type jsonRow struct {
	Row
	DurationMS int64 `json:"duration_ms"`
}

func ToJSON(l *Listing) ([]byte, error) {
	rows := make([]jsonRow, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = jsonRow{Row: r, DurationMS: r.Duration.Milliseconds()}
	}
	out := struct {
		*Listing
		Rows []jsonRow `json:"rows"`
	}{l, rows}
	return shared.MarshalJSON(out, true)
}

// DownloadImage fetches an image such as a playlist cover.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image URL", shared.ErrMissingArgument)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// WriteFile renders l into dir/base.<format> and returns the path written.
// Markdown output links cover when it is set.
func WriteFile(l *Listing, format Format, dir, base, cover string) (string, error) {
	if base == "" {
		base = l.ID
	}
	if base == "" {
		return "", fmt.Errorf("%w: output name is required", shared.ErrMissingArgument)
	}

	data, err := Render(l, format, cover)
	if err != nil {
		return "", err
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	path := filepath.Join(dir, base+"."+string(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
