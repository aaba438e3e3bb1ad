package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) MeProfile(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	me, err := sdk.Users.Current(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(me, true)
	}

	followers := ""
	if me.Followers != nil {
		followers = strconv.Itoa(me.Followers.Total)
	}
	r.printer.Title("%s", me.Name())
	r.printer.Fields(
		"ID", me.ID,
		"Email", me.Email,
		"Country", me.Country,
		"Product", me.Product,
		"Followers", followers,
	)
	return nil
}

// MeTop lists the current user's top "artists" or "tracks".
func (r *Runner) MeTop(ctx context.Context, cmd *cli.Command) error {
	kind := strings.ToLower(cmd.StringArg("kind"))
	if kind == "" {
		kind = "tracks"
	}
	opts := options(cmd)
	opts.TimeRange = cmd.String("range")

	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	switch kind {
	case "artists":
		page, err := sdk.Users.TopArtists(ctx, opts)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(page, true)
		}
		for i, a := range page.Items {
			r.printer.Line(page.Offset+i+1, a.Name, strings.Join(a.Genres, ", "))
		}
	case "tracks":
		page, err := sdk.Users.TopTracks(ctx, opts)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(page, true)
		}
		for i, t := range page.Items {
			r.printer.Line(page.Offset+i+1, artistNames(t.Artists)+" - "+t.Name, models.FormatDuration(models.Milliseconds(t.DurationMS)))
		}
	default:
		return fmt.Errorf("%w: kind must be artists or tracks, got %q", shared.ErrInvalidArgument, kind)
	}
	return nil
}

func (r *Runner) MeSavedTracks(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	page, err := sdk.Tracks.Saved(ctx, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}
	return r.renderListing(cmd, formatter.FromSavedTracks("Liked Songs", page.Items))
}

func (r *Runner) PlayerState(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	state, err := sdk.Player.State(ctx, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(state, true)
	}
	if state == nil {
		r.printer.Note("Nothing is playing")
		return nil
	}

	status := "Paused"
	if state.IsPlaying {
		status = "Playing"
	}
	item, progress, device := "", "", ""
	if state.Item != nil {
		item = playableName(*state.Item)
		if state.ProgressMS != nil {
			progress = models.FormatDuration(models.Milliseconds(*state.ProgressMS)) + " / " +
				models.FormatDuration(models.Milliseconds(state.Item.DurationMS))
		}
	}
	if state.Device != nil {
		device = state.Device.Name
	}

	r.printer.Title("%s", status)
	r.printer.Fields(
		"Item", item,
		"Progress", progress,
		"Device", device,
		"Shuffle", strconv.FormatBool(state.ShuffleState),
		"Repeat", state.RepeatState,
	)
	return nil
}

func playableName(p models.PlayableItem) string {
	if len(p.Artists) == 0 {
		return p.Name
	}
	return artistNames(p.Artists) + " - " + p.Name
}

func (r *Runner) PlayerDevices(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	devices, err := sdk.Player.Devices(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(devices, true)
	}
	if len(devices) == 0 {
		r.printer.Note("No devices available")
		return nil
	}

	for i, d := range devices {
		suffix := d.Type
		if d.ID != nil {
			suffix += " " + *d.ID
		}
		if d.IsActive {
			suffix += " (active)"
		}
		r.printer.Line(i+1, d.Name, suffix)
	}
	return nil
}

func (r *Runner) PlayerQueue(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	queue, err := sdk.Player.Queue(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(queue, true)
	}

	if queue.CurrentlyPlaying != nil {
		r.printer.Title("Now playing: %s", playableName(*queue.CurrentlyPlaying))
	}
	for i, item := range queue.Queue {
		r.printer.Line(i+1, playableName(item), models.FormatDuration(models.Milliseconds(item.DurationMS)))
	}
	return nil
}

func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	if err := sdk.Player.Play(ctx, cmd.String("device"), nil); err != nil {
		return err
	}
	r.printer.Success("Playback resumed")
	return nil
}

func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	if err := sdk.Player.Pause(ctx, cmd.String("device")); err != nil {
		return err
	}
	r.printer.Success("Playback paused")
	return nil
}

func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	if err := sdk.Player.Next(ctx, cmd.String("device")); err != nil {
		return err
	}
	r.printer.Success("Skipped to next")
	return nil
}

func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	if err := sdk.Player.Previous(ctx, cmd.String("device")); err != nil {
		return err
	}
	r.printer.Success("Skipped to previous")
	return nil
}

func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	percent, err := strconv.Atoi(cmd.StringArg("percent"))
	if err != nil {
		return fmt.Errorf("%w: volume must be a whole number", shared.ErrInvalidArgument)
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	if err := sdk.Player.Volume(ctx, cmd.String("device"), percent); err != nil {
		return err
	}
	r.printer.Success("Volume set to %d%%", percent)
	return nil
}

func (r *Runner) PlayerAdd(ctx context.Context, cmd *cli.Command) error {
	uri := strings.TrimSpace(cmd.StringArg("uri"))
	if uri == "" {
		return fmt.Errorf("%w: uri is required", shared.ErrMissingArgument)
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	if err := sdk.Player.AddToQueue(ctx, cmd.String("device"), uri); err != nil {
		return err
	}
	r.printer.Success("Queued %s", uri)
	return nil
}
