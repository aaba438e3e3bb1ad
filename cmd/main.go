package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "spotx",
		Usage:    "Query the Spotify Web API from the terminal",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Before,
		After:    func(context.Context, *cli.Command) error { return runner.Close() },
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		var apiErr *shared.Error
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.As(err, &apiErr):
			logger.Error("spotify request failed", "kind", apiErr.Kind, "status", apiErr.Status, "cause", apiErr.Cause())
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
