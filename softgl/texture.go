package softgl

import (
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/figure3d"
)

// texture samples an image with OpenGL conventions: t=0 addresses the
// first row of image data, texel centers sit at (i+0.5)/size and
// coordinates wrap around (GL_REPEAT). It implements fauxgl.Texture.
type texture struct {
	texels        []fauxgl.Color
	width, height int
}

var _ fauxgl.Texture = (*texture)(nil)

func newTexture(img image.Image) *texture {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Rect, img, b.Min, draw.Src)
	}
	t := &texture{
		texels: make([]fauxgl.Color, b.Dx()*b.Dy()),
		width:  b.Dx(),
		height: b.Dy(),
	}
	for y := 0; y < t.height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < t.width; x++ {
			p := row[4*x : 4*x+4]
			t.texels[y*t.width+x] = fauxgl.Color{
				R: float64(p[0]) / 255,
				G: float64(p[1]) / 255,
				B: float64(p[2]) / 255,
				A: float64(p[3]) / 255,
			}
		}
	}
	return t
}

func (t *texture) texel(x, y int) fauxgl.Color {
	x %= t.width
	if x < 0 {
		x += t.width
	}
	y %= t.height
	if y < 0 {
		y += t.height
	}
	return t.texels[y*t.width+x]
}

// Sample returns the nearest texel.
func (t *texture) Sample(u, v float64) fauxgl.Color {
	x := int(math.Floor(u * float64(t.width)))
	y := int(math.Floor(v * float64(t.height)))
	return t.texel(x, y)
}

// BilinearSample returns the weighted average of the four nearest texels.
func (t *texture) BilinearSample(u, v float64) fauxgl.Color {
	x := u*float64(t.width) - 0.5
	y := v*float64(t.height) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	c00 := t.texel(ix, iy).MulScalar((1 - fx) * (1 - fy))
	c10 := t.texel(ix+1, iy).MulScalar(fx * (1 - fy))
	c01 := t.texel(ix, iy+1).MulScalar((1 - fx) * fy)
	c11 := t.texel(ix+1, iy+1).MulScalar(fx * fy)
	return c00.Add(c10).Add(c01).Add(c11)
}

// UploadTexture creates a texture object holding img and returns it.
// Texture names are never reused within a context.
func (c *Context) UploadTexture(img image.Image) (figure3d.Texture, error) {
	if img == nil {
		return figure3d.Texture{}, errors.New("softgl: nil texture image")
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return figure3d.Texture{}, errors.New("softgl: empty texture image")
	}
	name := c.nextName
	c.nextName++
	c.textures[name] = newTexture(img)
	return figure3d.Texture{Name: name, Width: size.X, Height: size.Y}, nil
}

// DeleteTexture deletes the texture object. Deleting the bound texture
// reverts the binding to the default texture.
func (c *Context) DeleteTexture(t figure3d.Texture) {
	delete(c.textures, t.Name)
	if c.bound == t.Name {
		c.bound = 0
	}
}

// Textures returns the number of live texture objects.
func (c *Context) Textures() int { return len(c.textures) }

func (c *Context) BindTexture(name uint32) {
	if c.inBegin {
		c.seterr(ErrInvalidOperation)
		return
	}
	c.bound = name
}

// Bound returns the name of the texture bound to the 2D target.
func (c *Context) Bound() uint32 { return c.bound }

// activeTexture returns the texture sampled by the next draw, or nil if
// texturing is disabled or the bound texture is incomplete, in which case
// texturing is disabled for the draw as in fixed-function GL.
func (c *Context) activeTexture() fauxgl.Texture {
	if !c.texturing {
		return nil
	}
	t, ok := c.textures[c.bound]
	if !ok {
		return nil
	}
	return t
}
