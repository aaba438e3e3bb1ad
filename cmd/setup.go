package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example config when none exists and opens the configured cache,
// which creates the sqlite database and applies its migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.printer.Success("Created %s", path)
		r.printer.Note("Fill in credentials.spotify before running other commands.")
	} else {
		r.printer.Note("Using existing config %s", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return err
	}
	r.config = config

	if _, err := r.openCache(ctx); err != nil {
		return err
	}

	switch config.Cache.Backend {
	case "sqlite":
		r.printer.Success("Token cache ready at %s", config.Cache.Path)
	case "redis":
		r.printer.Success("Connected to redis at %s", config.Cache.RedisAddr)
	default:
		r.printer.Warning("The %s cache does not persist tokens between runs", config.Cache.Backend)
	}
	return r.writePlain("Next: spotx auth login\n")
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
