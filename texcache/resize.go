package texcache

import (
	"image"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// fit returns img as a zero-origin NRGBA image, downscaled so neither side
// exceeds maxSize (when positive) and, if pow2 is set, resampled to power
// of two sides.
func fit(img image.Image, maxSize int, pow2 bool) *image.NRGBA {
	size := img.Bounds().Size()
	w, h := size.X, size.Y
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		scale := float64(maxSize) / float64(max(w, h))
		w = max(1, int(math.Round(float64(w)*scale)))
		h = max(1, int(math.Round(float64(h)*scale)))
	}
	if pow2 {
		w, h = ceilPow2(w, maxSize), ceilPow2(h, maxSize)
	}
	if w != size.X || h != size.Y {
		img = resize.Resize(uint(w), uint(h), img, resize.Bilinear)
	}
	return toNRGBA(img)
}

// ceilPow2 returns the smallest power of two not less than n, stepping
// down when that exceeds a positive limit.
func ceilPow2(n, limit int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if limit > 0 && p > limit && p > 1 {
		p >>= 1
	}
	return p
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
