package cli

import (
	"fmt"
	"log/slog"

	"github.com/soypat/figure3d"
	"github.com/soypat/figure3d/internal/config"
	"github.com/soypat/figure3d/mesh"
	"github.com/soypat/figure3d/scene"
	"github.com/soypat/figure3d/texcache"
	"github.com/soypat/figure3d/texgen"
)

var defaultModelColor = figure3d.RGB{R: 0.75, G: 0.75, B: 0.75}

// buildFigure assembles the frame described by sc.
func buildFigure(sc *config.Scene, log *slog.Logger) (*scene.Figure, error) {
	sky, err := sc.Sky.Build()
	if err != nil {
		return nil, err
	}
	fig := &scene.Figure{Sky: sky, Log: log}
	if fig.Color, err = config.RGB(sc.Color, defaultModelColor); err != nil {
		return nil, fmt.Errorf("color: %w", err)
	}
	if fig.Background, err = config.RGB(sc.Background, figure3d.RGB{}); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if sc.Model != "" {
		fig.Mesh, err = mesh.Load(sc.Model)
		if err != nil {
			return nil, err
		}
		log.Info("model loaded", slog.String("path", sc.Model), slog.Int("triangles", len(fig.Mesh)))
	}
	frame := true
	fig.Camera = scene.DefaultCamera()
	if sc.Camera != nil {
		if fig.Camera, err = sc.Camera.Build(); err != nil {
			return nil, err
		}
		frame = sc.Camera.Frame
	}
	if frame && len(fig.Mesh) > 0 {
		fig.Camera = fig.Camera.Frame(fig.Mesh.Bounds())
	}
	return fig, nil
}

// newCache returns a texture cache uploading through up that also serves
// generated gradient skies.
func newCache(up texcache.Uploader, t config.Textures, log *slog.Logger, extra ...texcache.Option) (*texcache.Cache, error) {
	timeout, err := t.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	opts := []texcache.Option{
		texcache.WithLogger(log),
		texcache.WithMaxSize(t.MaxSize),
		texcache.WithPowerOfTwo(t.PowerOfTwo),
	}
	if timeout > 0 {
		opts = append(opts, texcache.WithTimeout(timeout))
	}
	cache := texcache.New(up, append(opts, extra...)...)
	cache.Register(texgen.Scheme, texcache.LoaderFunc(texgen.Load))
	return cache, nil
}
