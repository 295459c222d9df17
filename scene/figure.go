// Package scene renders a 3D figure frame: a sky backdrop behind a flat
// shaded triangle mesh seen through a perspective camera.
package scene

import (
	"errors"
	"io"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/soypat/figure3d"
	"github.com/soypat/figure3d/mesh"
	"github.com/soypat/glgl/math/ms3"
)

// Figure is everything drawn in one frame.
type Figure struct {
	// Sky is drawn behind everything. Nil draws no backdrop.
	Sky    figure3d.Sky
	Mesh   mesh.Mesh
	Camera Camera
	// Color is the base color of the mesh.
	Color figure3d.RGB
	// Background is the clear color, visible when the sky is absent or fails.
	Background figure3d.RGB
	// Light is the direction light travels in world space. The zero value
	// lights from behind the camera.
	Light ms3.Vec
	// Log receives a warning when the sky cannot be drawn. Nil discards.
	Log *slog.Logger

	// skyErr is the last sky failure, logged once until it changes.
	skyErr error
}

// ambient is the fraction of Color applied to faces turned away from the light.
const ambient = 0.25

// RenderFrame draws f on gl for a viewport with the given width to height
// ratio. A sky that fails to draw is logged and skipped so the figure is
// still rendered over the background; only an invalid camera or aspect
// ratio is an error.
func (f *Figure) RenderFrame(gl figure3d.FrameGL, cache figure3d.TextureCache, aspect float64) error {
	if aspect <= 0 {
		return errors.New("scene: aspect ratio must be positive")
	}
	if err := f.Camera.validate(); err != nil {
		return err
	}
	bg := f.Background.Clamp()
	gl.ClearColor(float32(bg.R), float32(bg.G), float32(bg.B), 1)
	gl.Clear(figure3d.ColorBufferBit | figure3d.DepthBufferBit)

	if f.Sky != nil {
		err := f.Sky.Draw(gl, cache)
		switch {
		case err != nil && (f.skyErr == nil || f.skyErr.Error() != err.Error()):
			f.logger().Warn("sky backdrop skipped", slog.String("err", err.Error()))
		case err == nil && f.skyErr != nil:
			f.logger().Info("sky backdrop restored")
		}
		f.skyErr = err
		// The backdrop sits on the near plane; keep it behind the figure.
		gl.Clear(figure3d.DepthBufferBit)
	}

	proj := f.Camera.Projection(aspect).ColumnMajor()
	view := f.Camera.View().ColumnMajor()
	gl.MatrixMode(figure3d.Projection)
	gl.LoadIdentity()
	gl.MultMatrixd(&proj)
	gl.MatrixMode(figure3d.ModelView)
	gl.LoadIdentity()
	gl.MultMatrixd(&view)

	if len(f.Mesh) == 0 {
		return nil
	}
	gl.Enable(figure3d.DepthTest)
	f.drawMesh(gl)
	gl.Disable(figure3d.DepthTest)
	return nil
}

func (f *Figure) drawMesh(gl figure3d.GL) {
	light := f.Light
	if light == (ms3.Vec{}) {
		c := f.Camera
		light = ms3.Vec{X: float32(c.Center.X - c.Eye.X), Y: float32(c.Center.Y - c.Eye.Y), Z: float32(c.Center.Z - c.Eye.Z)}
	}
	toLight := ms3.Unit(ms3.Scale(-1, light))
	base := f.Color.Clamp()

	gl.Begin(figure3d.Triangles)
	for _, tri := range f.Mesh {
		n := tri.Normal()
		if ms3.Norm(n) == 0 {
			continue
		}
		n = ms3.Unit(n)
		// Two sided: light whichever face points at the light.
		diffuse := math32.Abs(ms3.Dot(n, toLight))
		shade := float64(ambient + (1-ambient)*diffuse)
		gl.Color3d(base.R*shade, base.G*shade, base.B*shade)
		gl.Normal3f(n.X, n.Y, n.Z)
		for _, v := range tri {
			gl.Vertex3f(v.X, v.Y, v.Z)
		}
	}
	gl.End()
}

func (f *Figure) logger() *slog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
