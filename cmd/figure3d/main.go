// Command figure3d renders 3D figures in front of sky backdrops.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/soypat/figure3d/internal/cli"
	"github.com/soypat/figure3d/internal/logging"
	"github.com/soypat/figure3d/internal/viewer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(ctx, os.Args[1:], os.Stderr, viewer.Run); err != nil {
		logger.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
