// Package glfixed implements the figure3d GL surfaces on a hardware OpenGL 2.1
// compatibility context through go-gl. All methods must be called from the
// goroutine that owns the current GL context, which must be locked to its OS
// thread.
package glfixed

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/soypat/figure3d"
)

var _ figure3d.FrameGL = Context{}

// Context forwards figure3d GL calls to the current OpenGL context.
// The zero value is ready to use once Init has succeeded.
type Context struct{}

// Init loads the OpenGL function pointers for the current context.
func Init() (Context, error) {
	if err := gl.Init(); err != nil {
		return Context{}, fmt.Errorf("glfixed: init: %w", err)
	}
	return Context{}, nil
}

func (Context) MatrixMode(mode figure3d.MatrixMode) { gl.MatrixMode(uint32(mode)) }
func (Context) PushMatrix() { gl.PushMatrix() }
func (Context) PopMatrix() { gl.PopMatrix() }
func (Context) LoadIdentity() { gl.LoadIdentity() }
func (Context) Scaled(x, y, z float64) { gl.Scaled(x, y, z) }
func (Context) Color3d(r, g, b float64) { gl.Color3d(r, g, b) }
func (Context) Begin(mode figure3d.Primitive) { gl.Begin(uint32(mode)) }
func (Context) End() { gl.End() }
func (Context) Normal3f(x, y, z float32) { gl.Normal3f(x, y, z) }
func (Context) TexCoord2f(s, t float32) { gl.TexCoord2f(s, t) }
func (Context) Vertex3f(x, y, z float32) { gl.Vertex3f(x, y, z) }
func (Context) BindTexture(name uint32) { gl.BindTexture(gl.TEXTURE_2D, name) }
func (Context) Enable(c figure3d.Capability) { gl.Enable(uint32(c)) }
func (Context) Disable(c figure3d.Capability) { gl.Disable(uint32(c)) }
func (Context) MultMatrixd(m *[16]float64) { gl.MultMatrixd(&m[0]) }
func (Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (Context) Clear(mask figure3d.ClearMask) { gl.Clear(uint32(mask)) }

// Viewport sets the window region rendered to.
func (Context) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Err returns the pending GL error, if any.
func (Context) Err() error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	return fmt.Errorf("glfixed: GL error 0x%04x", code)
}

// UploadTexture creates an RGBA8 texture object with linear filtering from
// img. Texture application is set to modulate so the current color tints
// the texture. Images that are not tightly packed NRGBA are converted first.
func (c Context) UploadTexture(img image.Image) (figure3d.Texture, error) {
	if img == nil {
		return figure3d.Texture{}, errors.New("glfixed: nil texture image")
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return figure3d.Texture{}, errors.New("glfixed: empty texture image")
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*size.X {
		nrgba = image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
		draw.Draw(nrgba, nrgba.Rect, img, img.Bounds().Min, draw.Src)
	}
	var name uint32
	gl.GenTextures(1, &name)
	gl.BindTexture(gl.TEXTURE_2D, name)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexEnvi(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(nrgba.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := c.Err(); err != nil {
		gl.DeleteTextures(1, &name)
		return figure3d.Texture{}, err
	}
	return figure3d.Texture{Name: name, Width: size.X, Height: size.Y}, nil
}

// DeleteTexture deletes the texture object.
func (Context) DeleteTexture(t figure3d.Texture) {
	if t.Name == 0 {
		return
	}
	gl.DeleteTextures(1, &t.Name)
}
