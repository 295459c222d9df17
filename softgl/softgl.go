// Package softgl implements the fixed-function GL surface of figure3d in
// software on top of the fauxgl rasterizer. It is meant for headless
// rendering and for tests; it emulates the subset of OpenGL 2.1 that
// backdrops and figures draw with.
package softgl

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/figure3d"
	"github.com/soypat/figure3d/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxStackDepth is the depth of each matrix stack.
const MaxStackDepth = 32

var (
	ErrStackOverflow    = errors.New("softgl: matrix stack overflow")
	ErrStackUnderflow   = errors.New("softgl: matrix stack underflow")
	ErrInvalidOperation = errors.New("softgl: invalid operation")
	ErrInvalidEnum      = errors.New("softgl: invalid enum")
)

var (
	_ figure3d.FrameGL = (*Context)(nil)
)

// Context is a software GL context rendering to an in-memory image.
// The initial state matches a fresh OpenGL context: identity matrices,
// modelview mode, white color, texturing and depth test disabled.
type Context struct {
	fc *fauxgl.Context

	mode       figure3d.MatrixMode
	modelview  []d3.Transform
	projection []d3.Transform

	color    fauxgl.Color
	normal   fauxgl.Vector
	texcoord fauxgl.Vector

	inBegin bool
	prim    figure3d.Primitive
	verts   []fauxgl.Vertex

	textures  map[uint32]*texture
	nextName  uint32
	bound     uint32
	texturing bool
	depthTest bool

	err error
}

// NewContext returns a context rendering to a width x height color buffer.
func NewContext(width, height int) *Context {
	fc := fauxgl.NewContext(width, height)
	fc.Cull = fauxgl.CullNone
	fc.ClearColor = fauxgl.Black
	fc.ClearColorBuffer()
	fc.ClearDepthBuffer()
	return &Context{
		fc:         fc,
		mode:       figure3d.ModelView,
		modelview:  make([]d3.Transform, 1, MaxStackDepth),
		projection: make([]d3.Transform, 1, MaxStackDepth),
		color:      fauxgl.White,
		textures:   make(map[uint32]*texture),
		nextName:   1,
	}
}

// Err returns the first error recorded since the last call to Err and
// clears it, like glGetError.
func (c *Context) Err() error {
	err := c.err
	c.err = nil
	return err
}

func (c *Context) seterr(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Image returns the color buffer.
func (c *Context) Image() image.Image { return c.fc.Image() }

// Size returns the color buffer dimensions.
func (c *Context) Size() (width, height int) { return c.fc.Width, c.fc.Height }

// Mode returns the current matrix mode.
func (c *Context) Mode() figure3d.MatrixMode { return c.mode }

// StackDepth returns the number of matrices on the stack of mode,
// counting the current matrix.
func (c *Context) StackDepth(mode figure3d.MatrixMode) int {
	if mode == figure3d.Projection {
		return len(c.projection)
	}
	return len(c.modelview)
}

// Matrix returns the current matrix of mode.
func (c *Context) Matrix(mode figure3d.MatrixMode) d3.Transform {
	if mode == figure3d.Projection {
		return c.projection[len(c.projection)-1]
	}
	return c.modelview[len(c.modelview)-1]
}

func (c *Context) stack() *[]d3.Transform {
	if c.mode == figure3d.Projection {
		return &c.projection
	}
	return &c.modelview
}

// matrixOp reports whether a matrix operation may run now.
func (c *Context) matrixOp() bool {
	if c.inBegin {
		c.seterr(ErrInvalidOperation)
		return false
	}
	return true
}

func (c *Context) MatrixMode(mode figure3d.MatrixMode) {
	if !c.matrixOp() {
		return
	}
	switch mode {
	case figure3d.ModelView, figure3d.Projection:
		c.mode = mode
	default:
		c.seterr(ErrInvalidEnum)
	}
}

func (c *Context) PushMatrix() {
	if !c.matrixOp() {
		return
	}
	s := c.stack()
	if len(*s) == MaxStackDepth {
		c.seterr(ErrStackOverflow)
		return
	}
	*s = append(*s, (*s)[len(*s)-1])
}

func (c *Context) PopMatrix() {
	if !c.matrixOp() {
		return
	}
	s := c.stack()
	if len(*s) == 1 {
		c.seterr(ErrStackUnderflow)
		return
	}
	*s = (*s)[:len(*s)-1]
}

func (c *Context) LoadIdentity() {
	if !c.matrixOp() {
		return
	}
	s := *c.stack()
	s[len(s)-1] = d3.Transform{}
}

func (c *Context) Scaled(x, y, z float64) {
	if !c.matrixOp() {
		return
	}
	s := *c.stack()
	s[len(s)-1] = s[len(s)-1].Scale(r3.Vec{X: x, Y: y, Z: z})
}

func (c *Context) MultMatrixd(m *[16]float64) {
	if !c.matrixOp() {
		return
	}
	// Column major to row major.
	rows := make([]float64, 16)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			rows[i*4+j] = m[j*4+i]
		}
	}
	s := *c.stack()
	s[len(s)-1] = s[len(s)-1].Mul(d3.NewTransform(rows))
}

func (c *Context) Color3d(r, g, b float64) {
	c.color = fauxgl.Color{R: r, G: g, B: b, A: 1}
}

func (c *Context) Normal3f(x, y, z float32) {
	c.normal = fauxgl.Vector{X: float64(x), Y: float64(y), Z: float64(z)}
}

func (c *Context) TexCoord2f(s, t float32) {
	c.texcoord = fauxgl.Vector{X: float64(s), Y: float64(t)}
}

func (c *Context) Begin(mode figure3d.Primitive) {
	if c.inBegin {
		c.seterr(ErrInvalidOperation)
		return
	}
	switch mode {
	case figure3d.Triangles, figure3d.TriangleStrip, figure3d.Quads:
	default:
		c.seterr(ErrInvalidEnum)
		return
	}
	c.inBegin = true
	c.prim = mode
	c.verts = c.verts[:0]
}

func (c *Context) Vertex3f(x, y, z float32) {
	if !c.inBegin {
		// Outside Begin/End the behavior is undefined; ignore.
		return
	}
	c.verts = append(c.verts, fauxgl.Vertex{
		Position: fauxgl.Vector{X: float64(x), Y: float64(y), Z: float64(z)},
		Normal:   c.normal,
		Texture:  c.texcoord,
		Color:    c.color,
	})
}

func (c *Context) End() {
	if !c.inBegin {
		c.seterr(ErrInvalidOperation)
		return
	}
	c.inBegin = false
	tris := assemble(c.prim, c.verts)
	if len(tris) == 0 {
		return
	}
	mvp := c.Matrix(figure3d.Projection).Mul(c.Matrix(figure3d.ModelView))
	c.fc.Shader = &fixedShader{
		matrix:  fauxMatrix(mvp),
		texture: c.activeTexture(),
	}
	c.fc.ReadDepth = c.depthTest
	c.fc.WriteDepth = c.depthTest
	c.fc.DrawTriangles(tris)
}

func (c *Context) Enable(cp figure3d.Capability) { c.setCap(cp, true) }
func (c *Context) Disable(cp figure3d.Capability) { c.setCap(cp, false) }

func (c *Context) setCap(cp figure3d.Capability, v bool) {
	if c.inBegin {
		c.seterr(ErrInvalidOperation)
		return
	}
	switch cp {
	case figure3d.Texture2D:
		c.texturing = v
	case figure3d.DepthTest:
		c.depthTest = v
	default:
		c.seterr(ErrInvalidEnum)
	}
}

// Enabled reports whether the capability is enabled.
func (c *Context) Enabled(cp figure3d.Capability) bool {
	switch cp {
	case figure3d.Texture2D:
		return c.texturing
	case figure3d.DepthTest:
		return c.depthTest
	}
	return false
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.fc.ClearColor = fauxgl.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}
}

func (c *Context) Clear(mask figure3d.ClearMask) {
	if c.inBegin {
		c.seterr(ErrInvalidOperation)
		return
	}
	if mask&figure3d.ColorBufferBit != 0 {
		c.fc.ClearColorBuffer()
	}
	if mask&figure3d.DepthBufferBit != 0 {
		c.fc.ClearDepthBuffer()
	}
}

// assemble converts immediate mode vertices into triangles. Incomplete
// trailing primitives are dropped.
func assemble(mode figure3d.Primitive, v []fauxgl.Vertex) []*fauxgl.Triangle {
	var tris []*fauxgl.Triangle
	switch mode {
	case figure3d.Triangles:
		for i := 0; i+2 < len(v); i += 3 {
			tris = append(tris, fauxgl.NewTriangle(v[i], v[i+1], v[i+2]))
		}
	case figure3d.TriangleStrip:
		for i := 0; i+2 < len(v); i++ {
			if i%2 == 0 {
				tris = append(tris, fauxgl.NewTriangle(v[i], v[i+1], v[i+2]))
			} else {
				// Keep winding consistent across the strip.
				tris = append(tris, fauxgl.NewTriangle(v[i+1], v[i], v[i+2]))
			}
		}
	case figure3d.Quads:
		for i := 0; i+3 < len(v); i += 4 {
			tris = append(tris,
				fauxgl.NewTriangle(v[i], v[i+1], v[i+2]),
				fauxgl.NewTriangle(v[i], v[i+2], v[i+3]),
			)
		}
	}
	return tris
}

func fauxMatrix(t d3.Transform) fauxgl.Matrix {
	a := t.Array()
	return fauxgl.Matrix{
		X00: a[0], X01: a[1], X02: a[2], X03: a[3],
		X10: a[4], X11: a[5], X12: a[6], X13: a[7],
		X20: a[8], X21: a[9], X22: a[10], X23: a[11],
		X30: a[12], X31: a[13], X32: a[14], X33: a[15],
	}
}
