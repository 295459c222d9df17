package figure3d

import "net/url"

// MatrixMode selects the matrix stack targeted by matrix operations.
// Values match their OpenGL enum counterparts.
type MatrixMode uint32

const (
	ModelView  MatrixMode = 0x1700
	Projection MatrixMode = 0x1701
)

func (m MatrixMode) String() string {
	switch m {
	case ModelView:
		return "modelview"
	case Projection:
		return "projection"
	}
	return "MatrixMode(?)"
}

// Primitive is the kind of geometry assembled between Begin and End.
type Primitive uint32

const (
	Triangles     Primitive = 0x0004
	TriangleStrip Primitive = 0x0005
	Quads         Primitive = 0x0007
)

// Capability is a server-side GL capability toggled with Enable and Disable.
type Capability uint32

const (
	DepthTest Capability = 0x0B71
	Texture2D Capability = 0x0DE1
)

// GL is the fixed-function immediate mode surface backdrops draw with.
// Implementations are not safe for concurrent use; GL contexts
// belong to a single rendering thread.
type GL interface {
	MatrixMode(mode MatrixMode)
	PushMatrix()
	PopMatrix()
	LoadIdentity()
	Scaled(x, y, z float64)

	Color3d(r, g, b float64)
	Begin(mode Primitive)
	End()
	Normal3f(x, y, z float32)
	TexCoord2f(s, t float32)
	Vertex3f(x, y, z float32)

	BindTexture(name uint32)
	Enable(c Capability)
	Disable(c Capability)
}

// Texture is a texture object resident in a GL context.
// The zero value is the default texture.
type Texture struct {
	// Name is the backend texture name as returned by glGenTextures.
	Name   uint32
	Width  int
	Height int
}

// Bind binds t to the 2D texture target of gl.
func (t Texture) Bind(gl GL) { gl.BindTexture(t.Name) }

// Enable enables 2D texturing on gl.
func (t Texture) Enable(gl GL) { gl.Enable(Texture2D) }

// Disable disables 2D texturing on gl.
func (t Texture) Disable(gl GL) { gl.Disable(Texture2D) }

// TextureCache resolves image references to textures resident in
// the GL context being drawn to. Loading, decoding, uploading and reuse
// policy belong to the implementation.
type TextureCache interface {
	Texture(u *url.URL) (Texture, error)
}

// ClearMask selects the buffers cleared by FrameGL.Clear.
type ClearMask uint32

const (
	DepthBufferBit ClearMask = 0x00000100
	ColorBufferBit ClearMask = 0x00004000
)

// FrameGL is the surface a whole figure frame is rendered with: the
// backdrop surface plus buffer clearing and arbitrary matrices.
type FrameGL interface {
	GL
	// MultMatrixd multiplies the current matrix by m, given in column
	// major order.
	MultMatrixd(m *[16]float64)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
}
