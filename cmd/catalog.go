package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: id is required", shared.ErrMissingArgument)
	}
	return id, nil
}

// renderListing writes l in the --format requested.
func (r *Runner) renderListing(cmd *cli.Command, l *formatter.Listing) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	data, err := formatter.Render(l, format, "")
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

func artistNames(artists []models.SimplifiedArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func (r *Runner) AlbumGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	album, err := sdk.Albums.Get(ctx, id, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(album, true)
	}
	return r.renderListing(cmd, formatter.FromAlbum(album))
}

func (r *Runner) AlbumTracks(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	page, err := sdk.Albums.Tracks(ctx, id, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	for i, t := range page.Items {
		r.printer.Line(page.Offset+i+1, artistNames(t.Artists)+" - "+t.Name, models.FormatDuration(models.Milliseconds(t.DurationMS)))
	}
	r.printer.Note("%d of %d tracks", len(page.Items), page.Total)
	return nil
}

func (r *Runner) ArtistGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	artist, err := sdk.Artists.Get(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(artist, true)
	}

	r.printer.Title("%s", artist.Name)
	r.printer.Fields(
		"ID", artist.ID,
		"Genres", strings.Join(artist.Genres, ", "),
		"Followers", strconv.Itoa(artist.Followers.Total),
		"Popularity", strconv.Itoa(artist.Popularity),
		"Link", artist.ExternalURLs.Spotify,
	)
	return nil
}

func (r *Runner) ArtistTopTracks(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	tracks, err := sdk.Artists.TopTracks(ctx, id, cmd.String("market"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	for i, t := range tracks {
		r.printer.Line(i+1, t.Name+" ("+t.Album.Name+")", models.FormatDuration(models.Milliseconds(t.DurationMS)))
	}
	return nil
}

func (r *Runner) ArtistAlbums(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	page, err := sdk.Artists.Albums(ctx, id, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}
	for i, a := range page.Items {
		r.printer.Line(page.Offset+i+1, a.Name, a.AlbumType+" "+a.ReleaseDate)
	}
	r.printer.Note("%d of %d albums", len(page.Items), page.Total)
	return nil
}

func (r *Runner) TrackGet(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	track, err := sdk.Tracks.Get(ctx, id, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}

	r.printer.Title("%s", track.Name)
	r.printer.Fields(
		"Artist", artistNames(track.Artists),
		"Album", track.Album.Name,
		"Duration", models.FormatDuration(models.Milliseconds(track.DurationMS)),
		"ISRC", track.ExternalIDs.ISRC,
		"URI", track.URI,
	)
	return nil
}

// Search prints one section per requested type.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	q := strings.TrimSpace(cmd.StringArg("query"))
	if q == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}
	types, err := services.ParseSearchTypes(shared.SplitList(cmd.String("type")))
	if err != nil {
		return err
	}
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}

	res, err := sdk.Search.Search(ctx, q, types, options(cmd))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	if res.Tracks != nil {
		r.printer.Title("Tracks")
		for i, t := range res.Tracks.Items {
			r.printer.Line(i+1, artistNames(t.Artists)+" - "+t.Name, t.ID)
		}
	}
	if res.Artists != nil {
		r.printer.Title("Artists")
		for i, a := range res.Artists.Items {
			r.printer.Line(i+1, a.Name, a.ID)
		}
	}
	if res.Albums != nil {
		r.printer.Title("Albums")
		for i, a := range res.Albums.Items {
			r.printer.Line(i+1, artistNames(a.Artists)+" - "+a.Name, a.ID)
		}
	}
	if res.Playlists != nil {
		r.printer.Title("Playlists")
		for i, p := range res.Playlists.Items {
			if p == nil {
				continue
			}
			r.printer.Line(i+1, p.Name, p.ID)
		}
	}
	if res.Shows != nil {
		r.printer.Title("Shows")
		for i, s := range res.Shows.Items {
			if s == nil {
				continue
			}
			r.printer.Line(i+1, s.Name, s.ID)
		}
	}
	if res.Episodes != nil {
		r.printer.Title("Episodes")
		for i, e := range res.Episodes.Items {
			if e == nil {
				continue
			}
			r.printer.Line(i+1, e.Name, e.ID)
		}
	}
	if res.Audiobooks != nil {
		r.printer.Title("Audiobooks")
		for i, b := range res.Audiobooks.Items {
			if b == nil {
				continue
			}
			r.printer.Line(i+1, b.Name, b.ID)
		}
	}
	return nil
}

func (r *Runner) Markets(ctx context.Context, cmd *cli.Command) error {
	sdk, err := r.services(ctx)
	if err != nil {
		return err
	}
	markets, err := sdk.Markets.List(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(markets, true)
	}
	return r.writePlain("%s\n", strings.Join(markets, " "))
}
