package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 5
	MaxWorkers       = 10
	DefaultRateLimit = 5.0 // playlists per second
	ManifestFile     = "export_manifest.json"
)

// PlaylistSource loads a playlist and every one of its items.
//
// [services.PlaylistService] satisfies it.
type PlaylistSource interface {
	Get(ctx context.Context, id string, opts *api.Options) (*models.Playlist, error)
	AllItems(ctx context.Context, id string, market string) ([]models.PlaylistItem, error)
}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // defaults to JSON
	OutputDir  string           // defaults to spotify_export_{epoch}
	Workers    int              // concurrent exports, capped at [MaxWorkers]
	RateLimit  float64          // playlist fetches per second
	Market     string           // relinks items for this market when set
	Covers     bool             // download cover images next to Markdown exports
	HTTPClient *http.Client     // used for cover downloads
}

// PlaylistExportResult reports the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Tracks       int
	Files        []string
	Error        error
}

func (r PlaylistExportResult) Success() bool { return r.Error == nil }

// BulkExportResult summarizes a bulk export. Results keep the order of the requested ids.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

type exportJob struct {
	index int
	id    string
}

type Exporter struct {
	source PlaylistSource
	logger *log.Logger
}

func NewExporter(source PlaylistSource, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{source: source, logger: shared.WithLogger(logger, "component", "export")}
}

// sendProgress never blocks; updates are dropped when nobody is reading.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BulkExport exports playlists with a pool of workers sharing one rate limiter.
//
// A failed playlist is recorded and the rest continue. A manifest summarizing every result is written last.
func (e *Exporter) BulkExport(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one playlist id is required", shared.ErrMissingArgument)
	}
	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if _, err := formatter.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	opts.Workers = min(opts.Workers, MaxWorkers, len(ids))
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob)
	results := make(chan exportResult)

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts, progress, len(ids))
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			select {
			case jobs <- exportJob{index: i, id: id}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, len(ids)),
	}
	done := make([]bool, len(ids))

	completed := 0
	for res := range results {
		completed++
		result.Results[res.index] = res.PlaylistExportResult
		done[res.index] = true

		if res.Success() {
			result.SuccessfulExports++
			e.sendProgress(progress, exportCompletedUpdate(completed, len(ids), res.PlaylistExportResult))
		} else {
			result.FailedExports++
			e.logger.Warn("export failed", "playlist", res.PlaylistID, "error", res.Error)
			e.sendProgress(progress, exportFailedUpdate(completed, len(ids), res.PlaylistExportResult))
		}
	}

	for i, ok := range done {
		if !ok {
			result.Results[i] = PlaylistExportResult{PlaylistID: ids[i], PlaylistName: ids[i], Error: ctx.Err()}
			result.FailedExports++
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	if err := writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(progress, manifestUpdate(manifestPath))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}
	return result, nil
}

type exportResult struct {
	index int
	PlaylistExportResult
}

func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- exportResult,
	opts BulkExportOpts,
	progress chan<- ProgressUpdate,
	total int,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		e.sendProgress(progress, fetchingUpdate(job.index+1, total, job.id))
		results <- exportResult{index: job.index, PlaylistExportResult: e.exportOne(ctx, job.id, opts)}
	}
}

func (e *Exporter) exportOne(ctx context.Context, id string, opts BulkExportOpts) PlaylistExportResult {
	res := PlaylistExportResult{PlaylistID: id, PlaylistName: fmt.Sprintf("Unknown (%s)", id)}

	playlist, err := e.source.Get(ctx, id, &api.Options{Market: opts.Market})
	if err != nil {
		res.Error = fmt.Errorf("failed to fetch playlist: %w", err)
		return res
	}
	res.PlaylistName = playlist.Name

	items, err := e.source.AllItems(ctx, id, opts.Market)
	if err != nil {
		res.Error = fmt.Errorf("failed to fetch playlist items: %w", err)
		return res
	}

	listing := formatter.FromPlaylist(playlist, items)
	res.Tracks = len(listing.Rows)

	var cover string
	if opts.Covers && opts.Format == formatter.Markdown && listing.CoverURL != "" {
		if path, err := e.saveCover(ctx, listing, opts); err != nil {
			e.logger.Warn("failed to save cover image", "playlist", id, "error", err)
		} else {
			cover = filepath.Base(path)
			res.Files = append(res.Files, path)
		}
	}

	path, err := formatter.WriteFile(listing, opts.Format, opts.OutputDir, playlist.ID, cover)
	if err != nil {
		res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return res
	}
	res.Files = append(res.Files, path)
	return res
}

func (e *Exporter) saveCover(ctx context.Context, l *formatter.Listing, opts BulkExportOpts) (string, error) {
	data, err := formatter.DownloadImage(ctx, opts.HTTPClient, l.CoverURL)
	if err != nil {
		return "", err
	}
	path := filepath.Join(opts.OutputDir, l.ID+"_cover.jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover image: %w", err)
	}
	return path, nil
}
