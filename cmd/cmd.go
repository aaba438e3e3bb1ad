// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "Local user whose stored login is used",
			Value: DefaultUser,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Disable colored output",
		},
	}
}

func marketFlag() cli.Flag {
	return &cli.StringFlag{Name: "market", Aliases: []string{"m"}, Usage: "ISO 3166-1 alpha-2 country code"}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of items to return (1-50)"},
		&cli.IntFlag{Name: "offset", Usage: "Index of the first item to return"},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

func with(flags ...any) []cli.Flag {
	var out []cli.Flag
	for _, f := range flags {
		switch v := f.(type) {
		case cli.Flag:
			out = append(out, v)
		case []cli.Flag:
			out = append(out, v...)
		}
	}
	return out
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file and initialize the token cache",
		Action: r.Setup,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize a Spotify account with the PKCE flow",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 5 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the configured credentials and stored login",
				Action: r.AuthStatus,
			},
			{
				Name:  "token",
				Usage: "Print an access token for the active credentials",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "Refresh the stored user token first"},
				},
				Action: r.AuthToken,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored login for --user",
				Action: r.AuthLogout,
			},
		},
	}
}

func apiCommand(r *Runner) *cli.Command {
	routeArg := []cli.Argument{&cli.StringArg{Name: "route"}}
	queryFlag := &cli.StringSliceFlag{Name: "query", Aliases: []string{"q"}, Usage: "Query parameter as key=value (repeatable)"}
	dataFlag := &cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON request body"}

	return &cli.Command{
		Name:  "api",
		Usage: "Call any Web API route directly",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Make a GET request",
				Arguments: routeArg,
				Flags:     []cli.Flag{queryFlag},
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Make a POST request",
				Arguments: routeArg,
				Flags:     []cli.Flag{queryFlag, dataFlag},
				Action:    r.APIPost,
			},
			{
				Name:      "put",
				Usage:     "Make a PUT request",
				Arguments: routeArg,
				Flags:     []cli.Flag{queryFlag, dataFlag},
				Action:    r.APIPut,
			},
			{
				Name:      "delete",
				Usage:     "Make a DELETE request",
				Arguments: routeArg,
				Flags:     []cli.Flag{queryFlag, dataFlag},
				Action:    r.APIDelete,
			},
		},
	}
}

func catalogCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "albums",
			Usage: "Album lookups",
			Commands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Show an album and its tracks",
					Arguments: idArg(),
					Flags:     with(marketFlag(), jsonFlag(), formatFlag()),
					Action:    r.AlbumGet,
				},
				{
					Name:      "tracks",
					Usage:     "List an album's tracks",
					Arguments: idArg(),
					Flags:     with(marketFlag(), pageFlags(), jsonFlag()),
					Action:    r.AlbumTracks,
				},
			},
		},
		{
			Name:  "artists",
			Usage: "Artist lookups",
			Commands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Show an artist",
					Arguments: idArg(),
					Flags:     with(jsonFlag()),
					Action:    r.ArtistGet,
				},
				{
					Name:      "top",
					Usage:     "List an artist's top tracks",
					Arguments: idArg(),
					Flags:     with(marketFlag(), jsonFlag()),
					Action:    r.ArtistTopTracks,
				},
				{
					Name:      "albums",
					Usage:     "List an artist's albums",
					Arguments: idArg(),
					Flags:     with(marketFlag(), pageFlags(), jsonFlag()),
					Action:    r.ArtistAlbums,
				},
			},
		},
		{
			Name:  "tracks",
			Usage: "Track lookups",
			Commands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Show a track",
					Arguments: idArg(),
					Flags:     with(marketFlag(), jsonFlag()),
					Action:    r.TrackGet,
				},
			},
		},
		{
			Name:      "search",
			Usage:     "Search the catalog",
			Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
			Flags: with(
				&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Comma separated item types", Value: "track"},
				marketFlag(), pageFlags(), jsonFlag(),
			),
			Action: r.Search,
		},
		{
			Name:   "markets",
			Usage:  "List the markets Spotify is available in",
			Flags:  with(jsonFlag()),
			Action: r.Markets,
		},
	}
}

func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "Current user's profile and library",
		Commands: []*cli.Command{
			{
				Name:   "profile",
				Usage:  "Show the current user's profile",
				Flags:  with(jsonFlag()),
				Action: r.MeProfile,
			},
			{
				Name:  "top",
				Usage: "List the current user's top artists or tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "kind", Value: "tracks"},
				},
				Flags: with(
					&cli.StringFlag{Name: "range", Usage: "short_term, medium_term or long_term"},
					pageFlags(), jsonFlag(),
				),
				Action: r.MeTop,
			},
			{
				Name:   "saved",
				Usage:  "List saved tracks",
				Flags:  with(marketFlag(), pageFlags(), jsonFlag(), formatFlag()),
				Action: r.MeSavedTracks,
			},
		},
	}
}

func playerCommand(r *Runner) *cli.Command {
	deviceFlag := &cli.StringFlag{Name: "device", Usage: "Target device id"}

	return &cli.Command{
		Name:  "player",
		Usage: "Inspect and control playback",
		Commands: []*cli.Command{
			{Name: "state", Usage: "Show the playback state", Flags: with(marketFlag(), jsonFlag()), Action: r.PlayerState},
			{Name: "devices", Usage: "List available devices", Flags: with(jsonFlag()), Action: r.PlayerDevices},
			{Name: "queue", Usage: "Show the playback queue", Flags: with(jsonFlag()), Action: r.PlayerQueue},
			{Name: "play", Usage: "Resume playback", Flags: with(deviceFlag), Action: r.PlayerPlay},
			{Name: "pause", Usage: "Pause playback", Flags: with(deviceFlag), Action: r.PlayerPause},
			{Name: "next", Usage: "Skip to the next item", Flags: with(deviceFlag), Action: r.PlayerNext},
			{Name: "previous", Usage: "Skip to the previous item", Flags: with(deviceFlag), Action: r.PlayerPrevious},
			{
				Name:      "volume",
				Usage:     "Set the volume (0-100)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "percent"}},
				Flags:     with(deviceFlag),
				Action:    r.PlayerVolume,
			},
			{
				Name:      "add",
				Usage:     "Add a track or episode URI to the queue",
				Arguments: []cli.Argument{&cli.StringArg{Name: "uri"}},
				Flags:     with(deviceFlag),
				Action:    r.PlayerAdd,
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Listing format: txt, md, csv or json",
		Value:   string(formatter.Text),
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the current user's playlists",
				Flags:  with(pageFlags(), jsonFlag(), &cli.BoolFlag{Name: "all", Usage: "Follow every page"}),
				Action: r.PlaylistsList,
			},
			{
				Name:      "items",
				Aliases:   []string{"show"},
				Usage:     "Show a playlist and its items",
				Arguments: idArg(),
				Flags:     with(marketFlag(), jsonFlag(), formatFlag()),
				Action:    r.PlaylistItems,
			},
			{
				Name:      "add",
				Usage:     "Add item URIs to a playlist",
				ArgsUsage: "<id> <uri>...",
				Flags:     with(&cli.IntFlag{Name: "position", Usage: "Zero-based insert position"}),
				Action:    r.PlaylistAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove item URIs from a playlist",
				ArgsUsage: "<id> <uri>...",
				Flags:     with(&cli.StringFlag{Name: "snapshot", Usage: "Playlist snapshot id to apply the removal to"}),
				Action:    r.PlaylistRemove,
			},
			{
				Name:  "export",
				Usage: "Export playlists to files",
				Flags: with(
					&cli.StringSliceFlag{Name: "id", Usage: "Playlist id to export (repeatable)"},
					&cli.BoolFlag{Name: "all", Usage: "Export every playlist of the current user"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: json, csv, md or txt", Value: string(formatter.JSON)},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent exports", Value: tasks.DefaultWorkers},
					&cli.FloatFlag{Name: "rate", Usage: "Playlist fetches per second", Value: tasks.DefaultRateLimit},
					&cli.BoolFlag{Name: "covers", Usage: "Download cover images for Markdown exports"},
					marketFlag(),
				),
				Action: r.PlaylistsExport,
			},
		},
	}
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the token cache",
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "List cached keys",
				Action: r.CacheKeys,
			},
			{
				Name:      "get",
				Usage:     "Print a cached value",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Action:    r.CacheGet,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached entry",
				Action: r.CacheClear,
			},
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{
		setupCommand(r),
		authCommand(r),
		apiCommand(r),
	}
	commands = append(commands, catalogCommands(r)...)
	return append(commands,
		meCommand(r),
		playerCommand(r),
		playlistsCommand(r),
		cacheCommand(r),
	)
}
