package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

type fakeSource struct {
	mu        sync.Mutex
	playlists map[string]*models.Playlist
	items     map[string][]models.PlaylistItem
	itemsErr  map[string]error
	active    atomic.Int32
	peak      atomic.Int32
	markets   []string
}

func newFakeSource(n int) (*fakeSource, []string) {
	src := &fakeSource{
		playlists: map[string]*models.Playlist{},
		items:     map[string][]models.PlaylistItem{},
		itemsErr:  map[string]error{},
	}
	ids := make([]string, n)
	for i := range n {
		id := fmt.Sprintf("playlist%d", i+1)
		ids[i] = id

		p := &models.Playlist{}
		p.ID = id
		p.Name = fmt.Sprintf("Playlist %d", i+1)
		src.playlists[id] = p
		src.items[id] = []models.PlaylistItem{
			{Track: &models.PlayableItem{Type: "track", ID: id + "-1", Name: "Song 1", DurationMS: 1000,
				Artists: []models.SimplifiedArtist{{ID: "a1", Name: "Artist 1"}}}},
			{Track: &models.PlayableItem{Type: "track", ID: id + "-2", Name: "Song 2", DurationMS: 2000,
				Artists: []models.SimplifiedArtist{{ID: "a2", Name: "Artist 2"}}}},
		}
	}
	return src, ids
}

func (f *fakeSource) Get(ctx context.Context, id string, opts *api.Options) (*models.Playlist, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.markets = append(f.markets, opts.Market)
	p, ok := f.playlists[id]
	if !ok {
		return nil, &shared.Error{Kind: shared.KindNotFound, Status: 404, Message: "Not found."}
	}
	return p, nil
}

func (f *fakeSource) AllItems(ctx context.Context, id string, market string) ([]models.PlaylistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.itemsErr[id]; err != nil {
		return nil, err
	}
	return f.items[id], nil
}

func newTestExporter(src PlaylistSource) *Exporter {
	return NewExporter(src, shared.NewLogger(io.Discard))
}

func readManifest(t *testing.T, path string) Manifest {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	return m
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	formats := []struct {
		format formatter.Format
		ext    string
	}{
		{formatter.JSON, ".json"},
		{formatter.CSV, ".csv"},
		{formatter.Text, ".txt"},
		{formatter.Markdown, ".md"},
	}

	for _, tt := range formats {
		t.Run("Exports "+string(tt.format), func(t *testing.T) {
			dir := t.TempDir()
			src, ids := newFakeSource(3)

			result, err := newTestExporter(src).BulkExport(ctx, nil, ids, BulkExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				RateLimit: 1000,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.SuccessfulExports != 3 || result.FailedExports != 0 {
				t.Errorf("expected 3 successes, got %+v", result)
			}

			for i, res := range result.Results {
				if res.PlaylistID != ids[i] {
					t.Errorf("expected results in request order, got %s at %d", res.PlaylistID, i)
				}
				want := filepath.Join(dir, ids[i]+tt.ext)
				if len(res.Files) != 1 || res.Files[0] != want {
					t.Errorf("expected %s, got %v", want, res.Files)
				}
				if res.Tracks != 2 {
					t.Errorf("expected 2 tracks, got %d", res.Tracks)
				}
				if _, err := os.Stat(want); err != nil {
					t.Errorf("expected file %s: %v", want, err)
				}
			}

			m := readManifest(t, result.ManifestPath)
			if m.ExportID == "" || m.Format != string(tt.format) || m.Total != 3 || m.Successful != 3 || len(m.Playlists) != 3 {
				t.Errorf("unexpected manifest %+v", m)
			}
		})
	}

	t.Run("Partial failure continues", func(t *testing.T) {
		dir := t.TempDir()
		src, ids := newFakeSource(3)
		src.itemsErr["playlist2"] = errors.New("boom")
		ids = append(ids, "missing")

		result, err := newTestExporter(src).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: dir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.SuccessfulExports != 2 || result.FailedExports != 2 {
			t.Errorf("expected 2 successes and 2 failures, got %+v", result)
		}

		missing := result.Results[3]
		if !errors.Is(missing.Error, shared.ErrNotFound) || missing.PlaylistName != "Unknown (missing)" {
			t.Errorf("unexpected result for missing playlist %+v", missing)
		}
		if result.Results[1].PlaylistName != "Playlist 2" || result.Results[1].Success() {
			t.Errorf("unexpected result for playlist2 %+v", result.Results[1])
		}

		m := readManifest(t, result.ManifestPath)
		if m.Failed != 2 || !strings.Contains(m.Playlists[1].Error, "boom") {
			t.Errorf("unexpected manifest %+v", m)
		}
	})

	t.Run("Workers are bounded", func(t *testing.T) {
		src, ids := newFakeSource(12)

		_, err := newTestExporter(src).BulkExport(ctx, nil, ids, BulkExportOpts{
			OutputDir: t.TempDir(),
			Workers:   50,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak := src.peak.Load(); peak > MaxWorkers {
			t.Errorf("expected at most %d concurrent fetches, got %d", MaxWorkers, peak)
		}
	})

	t.Run("Market is forwarded", func(t *testing.T) {
		src, ids := newFakeSource(1)
		if _, err := newTestExporter(src).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: t.TempDir(), Market: "SE", RateLimit: 1000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(src.markets) != 1 || src.markets[0] != "SE" {
			t.Errorf("unexpected markets %v", src.markets)
		}
	})

	t.Run("Progress updates", func(t *testing.T) {
		src, ids := newFakeSource(2)
		progress := make(chan ProgressUpdate, 16)

		if _, err := newTestExporter(src).BulkExport(ctx, progress, ids, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		phases := map[Phase]int{}
		var last ProgressUpdate
		for u := range progress {
			phases[u.Phase]++
			last = u
		}
		if phases[FetchPlaylist] != 2 || phases[ExportPlaylist] != 2 || phases[WriteManifest] != 1 {
			t.Errorf("unexpected phases %v", phases)
		}
		if last.Phase != WriteManifest {
			t.Errorf("expected the manifest update last, got %v", last.Phase)
		}
	})

	t.Run("Markdown covers", func(t *testing.T) {
		img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg"))
		}))
		defer img.Close()

		dir := t.TempDir()
		src, ids := newFakeSource(1)
		src.playlists[ids[0]].Images = []models.Image{{URL: img.URL + "/cover.jpg"}}

		result, err := newTestExporter(src).BulkExport(ctx, nil, ids, BulkExportOpts{
			Format:     formatter.Markdown,
			OutputDir:  dir,
			Covers:     true,
			HTTPClient: img.Client(),
			RateLimit:  1000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		files := result.Results[0].Files
		if len(files) != 2 || files[0] != filepath.Join(dir, "playlist1_cover.jpg") {
			t.Fatalf("unexpected files %v", files)
		}
		md, _ := os.ReadFile(files[1])
		if !strings.Contains(string(md), "![Cover](playlist1_cover.jpg)") {
			t.Errorf("expected cover link in %s", md)
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		src, ids := newFakeSource(3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := newTestExporter(src).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result.SuccessfulExports+result.FailedExports != 3 {
			t.Errorf("expected every playlist accounted for, got %+v", result)
		}
	})

	t.Run("Input checks", func(t *testing.T) {
		e := newTestExporter(&fakeSource{})
		if _, err := e.BulkExport(ctx, nil, nil, BulkExportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := e.BulkExport(ctx, nil, []string{"p"}, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	if FetchPlaylist.String() != "fetch_playlist" || WriteManifest.String() != "write_manifest" || Phase(99).String() != "" {
		t.Error("unexpected phase names")
	}
}
