package scene

import (
	"errors"
	"math"

	"github.com/soypat/figure3d/internal/d3"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera looking from Eye towards Center.
type Camera struct {
	Eye    r3.Vec
	Center r3.Vec
	Up     r3.Vec
	// FovY is the vertical field of view in degrees.
	FovY float64
	// Near and Far are the distances to the clipping planes.
	Near, Far float64
}

// DefaultCamera looks at the origin from the front, slightly above, with
// +Z up as in rocket design tools.
func DefaultCamera() Camera {
	return Camera{
		Eye:  r3.Vec{X: 0, Y: -10, Z: 3},
		Up:   r3.Vec{Z: 1},
		FovY: 40,
		Near: 0.1,
		Far:  100,
	}
}

func (c Camera) validate() error {
	switch {
	case c.FovY <= 0 || c.FovY >= 180:
		return errors.New("scene: camera field of view outside (0,180)")
	case c.Near <= 0 || c.Far <= c.Near:
		return errors.New("scene: camera needs 0 < near < far")
	case r3.Norm(r3.Sub(c.Center, c.Eye)) == 0:
		return errors.New("scene: camera eye and center coincide")
	case r3.Norm(r3.Cross(r3.Sub(c.Center, c.Eye), c.Up)) == 0:
		return errors.New("scene: camera up parallel to view direction")
	}
	return nil
}

// Projection returns the perspective projection for a viewport with the
// given width to height ratio.
func (c Camera) Projection(aspect float64) d3.Transform {
	return d3.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// View returns the world to eye transform.
func (c Camera) View() d3.Transform {
	return d3.LookAt(c.Eye, c.Center, c.Up)
}

// Frame returns c moved along its current view direction so the sphere
// enclosing bounds fills the view, with clip planes hugging that sphere.
func (c Camera) Frame(bounds ms3.Box) Camera {
	bb := d3.Box{
		Min: r3.Vec{X: float64(bounds.Min.X), Y: float64(bounds.Min.Y), Z: float64(bounds.Min.Z)},
		Max: r3.Vec{X: float64(bounds.Max.X), Y: float64(bounds.Max.Y), Z: float64(bounds.Max.Z)},
	}
	radius := bb.Radius()
	if radius == 0 {
		radius = 1
	}
	dir := r3.Sub(c.Eye, c.Center)
	if r3.Norm(dir) == 0 {
		dir = r3.Vec{Y: -1}
	}
	dir = r3.Unit(dir)
	fov := c.FovY
	if fov <= 0 || fov >= 180 {
		fov = DefaultCamera().FovY
	}
	const margin = 1.1
	dist := margin * radius / math.Sin(fov*math.Pi/360)

	c.Center = bb.Center()
	c.Eye = r3.Add(c.Center, r3.Scale(dist, dir))
	c.FovY = fov
	c.Near = math.Max(dist-2*radius, dist/100)
	c.Far = dist + 2*radius
	if c.Up == (r3.Vec{}) || r3.Norm(r3.Cross(dir, c.Up)) == 0 {
		c.Up = r3.Vec{Z: 1}
		if r3.Norm(r3.Cross(dir, c.Up)) == 0 {
			c.Up = r3.Vec{Y: 1}
		}
	}
	return c
}
