package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/soypat/figure3d/internal/config"
	"github.com/soypat/figure3d/scene"
	"github.com/soypat/figure3d/texcache"
)

// Viewer shows fig in a window until it is closed or ctx is done. newCache
// returns a texture cache for the window's GL context.
type Viewer func(ctx context.Context, sc *config.Scene, fig *scene.Figure, newCache CacheFunc, log *slog.Logger) error

// CacheFunc builds the texture cache of a GL context.
type CacheFunc func(up texcache.Uploader, opts ...texcache.Option) (*texcache.Cache, error)

func newViewCommand(opts *Options, viewer Viewer) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the scene in a window; space cycles the built-in skies, escape quits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())
			sc, err := loadScene(opts)
			if err != nil {
				return err
			}
			fig, err := buildFigure(sc, logger)
			if err != nil {
				return err
			}
			if viewer == nil {
				return errors.New("view: no window system support in this build")
			}
			cacheFn := func(up texcache.Uploader, extra ...texcache.Option) (*texcache.Cache, error) {
				return newCache(up, sc.Textures, logger, extra...)
			}
			return viewer(cmd.Context(), sc, fig, cacheFn, logger)
		},
	}
}
