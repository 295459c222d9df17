// Package viewer shows figures in an interactive window rendered with the
// hardware fixed-function backend.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/soypat/figure3d"
	"github.com/soypat/figure3d/glfixed"
	"github.com/soypat/figure3d/internal/cli"
	"github.com/soypat/figure3d/internal/config"
	"github.com/soypat/figure3d/scene"
	"github.com/soypat/figure3d/texcache"
)

// retryAfter is how long the viewer waits before reloading a sky image
// that failed to load.
const retryAfter = 5 * time.Second

var _ cli.Viewer = Run

// Run shows fig in a GLFW window, owning the calling goroutine's OS thread
// until the window closes or ctx is done. Space cycles the built-in skies and
// escape quits.
func Run(ctx context.Context, sc *config.Scene, fig *scene.Figure, newCache cli.CacheFunc, log *slog.Logger) error {
	runtime.LockOSThread() // For GL.
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("viewer: start GLFW: %w", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	win, err := glfw.CreateWindow(sc.Output.Width, sc.Output.Height, "figure3d", nil, nil)
	if err != nil {
		return fmt.Errorf("viewer: create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	gl, err := glfixed.Init()
	if err != nil {
		return err
	}
	cache, err := newCache(gl, texcache.WithRetryAfter(retryAfter))
	if err != nil {
		return err
	}
	defer cache.Close()

	preload := func(sky figure3d.Sky) {
		photo, ok := sky.(*figure3d.SkyPhoto)
		if !ok || photo.URL() == nil {
			return
		}
		go func() {
			if err := cache.Preload(ctx, photo.URL()); err != nil {
				log.Warn("sky preload failed", slog.String("url", photo.URL().Redacted()), slog.String("err", err.Error()))
			}
		}()
	}
	preload(fig.Sky)

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape, glfw.KeyQ:
			w.SetShouldClose(true)
		case glfw.KeySpace:
			p := figure3d.NextPreset(fig.Sky)
			fig.Sky = p.Sky
			preload(p.Sky)
			log.Info("sky changed", slog.String("preset", p.Name))
		}
	})

	for !win.ShouldClose() && ctx.Err() == nil {
		fw, fh := win.GetFramebufferSize()
		if fw == 0 || fh == 0 {
			// Minimized.
			glfw.WaitEventsTimeout(0.1)
			continue
		}
		gl.Viewport(fw, fh)
		if err := fig.RenderFrame(gl, cache, float64(fw)/float64(fh)); err != nil {
			return err
		}
		if err := gl.Err(); err != nil {
			log.Warn("GL error", slog.String("err", err.Error()))
		}
		win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}
