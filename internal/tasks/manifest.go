package tasks

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/shared"
)

// Manifest is the JSON summary written beside the exported files.
type Manifest struct {
	ExportID   string          `json:"export_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Format     string          `json:"format"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Playlists  []ManifestEntry `json:"playlists"`
}

type ManifestEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Tracks int      `json:"tracks"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func newManifest(result *BulkExportResult, format formatter.Format) Manifest {
	m := Manifest{
		ExportID:   shared.GenerateID(),
		CreatedAt:  time.Now().UTC(),
		Format:     string(format),
		Total:      result.TotalPlaylists,
		Successful: result.SuccessfulExports,
		Failed:     result.FailedExports,
		Playlists:  make([]ManifestEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		entry := ManifestEntry{ID: r.PlaylistID, Name: r.PlaylistName, Tracks: r.Tracks, Files: r.Files}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}

func writeManifest(result *BulkExportResult, format formatter.Format, path string) error {
	data, err := shared.MarshalJSON(newManifest(result, format), true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
