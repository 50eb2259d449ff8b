// Package main provides the saprobe CLI for streaming MP3/AAC playback.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/primordium/app"

	"github.com/mycophonic/saprobe/version"
)

func main() {
	ctx := context.Background()
	app.New(ctx, version.Name())

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Streaming audio playback cli",
		Version: version.Version() + " (" + version.Commit() + " - " + version.Date() + ")",
		Commands: []*cli.Command{
			playCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(1)
	}
}
