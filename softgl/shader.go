package softgl

import "github.com/fogleman/fauxgl"

// fixedShader emulates the fixed-function pipeline without lighting:
// positions go through the combined projection and modelview matrix and
// fragments take the vertex color, modulated by the bound texture when
// texturing is enabled.
type fixedShader struct {
	matrix  fauxgl.Matrix
	texture fauxgl.Texture
}

func (s *fixedShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = s.matrix.MulPositionW(v.Position)
	return v
}

func (s *fixedShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	if s.texture == nil {
		return v.Color
	}
	texel := s.texture.BilinearSample(v.Texture.X, v.Texture.Y)
	return texel.Mul(v.Color)
}
