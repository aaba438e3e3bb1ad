package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the current user's playlists, one page or all of them.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	var playlists []models.SimplifiedPlaylist
	offset := 0
	if cmd.Bool("all") {
		if playlists, err = sdk.Playlists.AllCurrentUserPlaylists(ctx); err != nil {
			return err
		}
	} else {
		page, err := sdk.Playlists.CurrentUserPlaylists(ctx, options(cmd))
		if err != nil {
			return err
		}
		playlists, offset = page.Items, page.Offset
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}
	if len(playlists) == 0 {
		r.printer.Note("No playlists found")
		return nil
	}
	for i, p := range playlists {
		r.printer.Line(offset+i+1, p.Name, fmt.Sprintf("%s  %d tracks", p.ID, p.TrackCount()))
	}
	return nil
}

// PlaylistItems loads a playlist with every item and renders it as a listing.
func (r *Runner) PlaylistItems(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	market := cmd.String("market")
	playlist, err := sdk.Playlists.Get(ctx, id, &api.Options{Market: market})
	if err != nil {
		return err
	}
	items, err := sdk.Playlists.AllItems(ctx, id, market)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		playlist.Tracks.Items = items
		return r.writeJSON(playlist, true)
	}
	return r.renderListing(cmd, formatter.FromPlaylist(playlist, items))
}

// itemArgs reads "<id> <uri>..." positional arguments.
func itemArgs(cmd *cli.Command) (string, []string, error) {
	args := cmd.Args()
	if args.Len() < 2 {
		return "", nil, fmt.Errorf("%w: a playlist id and at least one uri are required", shared.ErrMissingArgument)
	}
	return args.First(), args.Tail(), nil
}

func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	id, uris, err := itemArgs(cmd)
	if err != nil {
		return err
	}
	var position *int
	if cmd.IsSet("position") {
		position = api.Int(int(cmd.Int("position")))
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	snapshot, err := sdk.Playlists.AddItems(ctx, id, uris, position)
	if err != nil {
		return err
	}
	r.printer.Success("Added %d items", len(uris))
	r.printer.Fields("Snapshot", snapshot)
	return nil
}

func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	id, uris, err := itemArgs(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	snapshot, err := sdk.Playlists.RemoveItems(ctx, id, uris, cmd.String("snapshot"))
	if err != nil {
		return err
	}
	r.printer.Success("Removed %d items", len(uris))
	r.printer.Fields("Snapshot", snapshot)
	return nil
}

// PlaylistsExport writes playlists to disk with [tasks.Exporter], printing progress as it goes.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("id")
	if cmd.Bool("all") {
		all, err := sdk.Playlists.AllCurrentUserPlaylists(ctx)
		if err != nil {
			return err
		}
		for _, p := range all {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: pass --id or --all", shared.ErrMissingArgument)
	}

	r.printer.Title("Exporting %d playlists as %s", len(ids), format)

	progress := make(chan tasks.ProgressUpdate, len(ids)*2+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.ExportPlaylist:
				if res, ok := update.Data.(tasks.PlaylistExportResult); ok && !res.Success() {
					r.printer.Failure("[%d/%d] %s: %v", update.Step, update.Total, res.PlaylistName, res.Error)
					continue
				}
				if res, ok := update.Data.(tasks.PlaylistExportResult); ok {
					r.printer.Success("[%d/%d] %s (%d tracks)", update.Step, update.Total, res.PlaylistName, res.Tracks)
				}
			case tasks.WriteManifest:
				r.printer.Note("%s", update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	exporter := tasks.NewExporter(sdk.Playlists, r.logger)
	result, err := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		Workers:    int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Market:     cmd.String("market"),
		Covers:     cmd.Bool("covers"),
		HTTPClient: r.httpClient,
	})
	close(progress)
	<-done

	if result != nil {
		r.printer.Fields(
			"Output", result.OutputDirectory,
			"Exported", strconv.Itoa(result.SuccessfulExports),
			"Failed", strconv.Itoa(result.FailedExports),
		)
	}
	if err != nil {
		return err
	}
	if result.FailedExports > 0 {
		r.printer.Warning("%d of %d playlists failed; see %s", result.FailedExports, result.TotalPlaylists, result.ManifestPath)
	}
	return nil
}
