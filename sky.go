package figure3d

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// Sky is a backdrop drawn behind the 3D scene. A Sky fills the whole
// viewport regardless of the camera and leaves the projection and
// modelview stacks of gl as it found them, also when it fails.
type Sky interface {
	Draw(gl GL, cache TextureCache) error
}

// BackdropVertex is a vertex of the full screen backdrop quad.
type BackdropVertex struct {
	Pos ms3.Vec
	UV  ms2.Vec
}

// BackdropNormal is the normal shared by all backdrop vertices.
var BackdropNormal = ms3.Vec{X: 0, Y: 0, Z: -1}

// backdropQuad is emitted as a triangle strip. The texture is mirrored
// horizontally; keep the coordinate order.
var backdropQuad = [4]BackdropVertex{
	{Pos: ms3.Vec{X: -1, Y: -1, Z: 1}, UV: ms2.Vec{X: 1, Y: 1}},
	{Pos: ms3.Vec{X: 1, Y: -1, Z: 1}, UV: ms2.Vec{X: 0, Y: 1}},
	{Pos: ms3.Vec{X: -1, Y: 1, Z: 1}, UV: ms2.Vec{X: 1, Y: 0}},
	{Pos: ms3.Vec{X: 1, Y: 1, Z: 1}, UV: ms2.Vec{X: 0, Y: 0}},
}

// BackdropQuad returns the triangle strip vertices of the backdrop in
// emission order.
func BackdropQuad() [4]BackdropVertex { return backdropQuad }

// pushBackdrop saves the projection and modelview matrices and replaces
// them with the identity, flipping depth on the modelview.
func pushBackdrop(gl GL) {
	gl.MatrixMode(Projection)
	gl.PushMatrix()
	gl.LoadIdentity()

	gl.MatrixMode(ModelView)
	gl.PushMatrix()
	gl.LoadIdentity()
	gl.Scaled(1, 1, -1)
}

// popBackdrop restores the matrices saved by pushBackdrop. It leaves
// gl in modelview mode.
func popBackdrop(gl GL) {
	gl.MatrixMode(Projection)
	gl.PopMatrix()

	gl.MatrixMode(ModelView)
	gl.PopMatrix()
}

func emitBackdrop(gl GL, textured bool, colorAt func(v BackdropVertex) (RGB, bool)) {
	gl.Begin(TriangleStrip)
	n := BackdropNormal
	gl.Normal3f(n.X, n.Y, n.Z)
	for _, v := range backdropQuad {
		if colorAt != nil {
			if c, ok := colorAt(v); ok {
				gl.Color3d(c.R, c.G, c.B)
			}
		}
		if textured {
			gl.TexCoord2f(v.UV.X, v.UV.Y)
		}
		gl.Vertex3f(v.Pos.X, v.Pos.Y, v.Pos.Z)
	}
	gl.End()
}

// NoSky draws nothing.
type NoSky struct{}

func (NoSky) Draw(GL, TextureCache) error { return nil }

// RGB is an opaque color with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// White is the neutral tint.
var White = RGB{R: 1, G: 1, B: 1}

// Clamp returns c with every component clamped to [0, 1].
func (c RGB) Clamp() RGB {
	return RGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// Lerp linearly interpolates between c and d.
func (c RGB) Lerp(d RGB, t float64) RGB {
	return RGB{
		R: c.R + (d.R-c.R)*t,
		G: c.G + (d.G-c.G)*t,
		B: c.B + (d.B-c.B)*t,
	}
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	c = c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

func (c RGB) String() string { return c.Hex() }

var errBadHex = errors.New("color must be #rgb or #rrggbb")

// ParseHex parses colors of the form "#rgb" or "#rrggbb". The leading
// '#' is optional.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return RGB{}, fmt.Errorf("parse %q: %w", s, errBadHex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("parse %q: %w", s, errBadHex)
	}
	return RGB{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	} else if f > 1 {
		return 1
	}
	return f
}

func to8(f float64) uint8 {
	return uint8(math32.Round(float32(f) * 255))
}
