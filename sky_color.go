package figure3d

// SkySolid is a backdrop of a single color.
type SkySolid struct {
	Color RGB
}

// Draw fills the viewport with s.Color. It never uses cache.
func (s SkySolid) Draw(gl GL, _ TextureCache) error {
	pushBackdrop(gl)
	defer popBackdrop(gl)
	c := s.Color.Clamp()
	gl.Color3d(c.R, c.G, c.B)
	emitBackdrop(gl, false, nil)
	return nil
}

// SkyGradient is a vertical two color backdrop.
type SkyGradient struct {
	Top    RGB
	Bottom RGB
}

// Draw fills the viewport blending from s.Bottom at the lower edge to s.Top
// at the upper edge. It never uses cache.
func (s SkyGradient) Draw(gl GL, _ TextureCache) error {
	pushBackdrop(gl)
	defer popBackdrop(gl)
	top, bottom := s.Top.Clamp(), s.Bottom.Clamp()
	emitBackdrop(gl, false, func(v BackdropVertex) (RGB, bool) {
		t := float64(v.Pos.Y+1) / 2
		return bottom.Lerp(top, t), true
	})
	return nil
}
