package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

type Phase int

const (
	FetchPlaylist Phase = iota
	ExportPlaylist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case ExportPlaylist:
		return "export_playlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, id),
	}
}

func exportCompletedUpdate(step, total int, res PlaylistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, res.PlaylistName, res.Tracks),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res PlaylistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.PlaylistName, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
