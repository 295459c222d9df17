// Package texgen renders procedural sky images addressed by URL so they can
// be shown by a photo backdrop like any other image.
//
// A gradient URL lists color stops from the horizon (offset 0, bottom row)
// to the zenith (offset 1, top row):
//
//	gradient:?stops=0:%23f4d6a0,0.35:%23a8cde8,1:%231d4f91&w=4&h=256
//
// w and h are optional and default to 4 by 256 pixels.
package texgen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/soypat/figure3d"
)

// Scheme is the URL scheme of generated gradient images.
const Scheme = "gradient"

const (
	defaultWidth  = 4
	defaultHeight = 256
	maxDimension  = 4096
)

// Stop is a gradient color stop. Offset runs from 0 at the horizon to 1 at
// the zenith.
type Stop struct {
	Offset float64
	Color  figure3d.RGB
}

// Gradient describes a vertical sky gradient image.
type Gradient struct {
	Stops  []Stop
	Width  int
	Height int
}

// URL returns the gradient URL describing g.
func (g Gradient) URL() *url.URL {
	stops := make([]string, len(g.Stops))
	for i, s := range g.Stops {
		stops[i] = strconv.FormatFloat(s.Offset, 'g', -1, 64) + ":" + s.Color.Hex()
	}
	q := url.Values{}
	q.Set("stops", strings.Join(stops, ","))
	if g.Width > 0 {
		q.Set("w", strconv.Itoa(g.Width))
	}
	if g.Height > 0 {
		q.Set("h", strconv.Itoa(g.Height))
	}
	return &url.URL{Scheme: Scheme, RawQuery: q.Encode()}
}

// ParseGradient decodes a gradient URL.
func ParseGradient(u *url.URL) (Gradient, error) {
	if !strings.EqualFold(u.Scheme, Scheme) {
		return Gradient{}, fmt.Errorf("texgen: scheme %q is not %q", u.Scheme, Scheme)
	}
	q := u.Query()
	g := Gradient{Width: defaultWidth, Height: defaultHeight}
	var err error
	if v := q.Get("w"); v != "" {
		if g.Width, err = parseDimension(v); err != nil {
			return Gradient{}, fmt.Errorf("texgen: width: %w", err)
		}
	}
	if v := q.Get("h"); v != "" {
		if g.Height, err = parseDimension(v); err != nil {
			return Gradient{}, fmt.Errorf("texgen: height: %w", err)
		}
	}
	raw := q.Get("stops")
	if raw == "" {
		return Gradient{}, errors.New("texgen: gradient has no stops")
	}
	for _, field := range strings.Split(raw, ",") {
		off, col, ok := strings.Cut(strings.TrimSpace(field), ":")
		if !ok {
			return Gradient{}, fmt.Errorf("texgen: stop %q not in offset:color form", field)
		}
		offset, err := strconv.ParseFloat(off, 64)
		if err != nil || offset < 0 || offset > 1 {
			return Gradient{}, fmt.Errorf("texgen: stop offset %q outside [0,1]", off)
		}
		c, err := figure3d.ParseHex(col)
		if err != nil {
			return Gradient{}, fmt.Errorf("texgen: stop color: %w", err)
		}
		g.Stops = append(g.Stops, Stop{Offset: offset, Color: c})
	}
	sort.SliceStable(g.Stops, func(i, j int) bool { return g.Stops[i].Offset < g.Stops[j].Offset })
	return g, nil
}

func parseDimension(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxDimension {
		return 0, fmt.Errorf("%d outside [1,%d]", n, maxDimension)
	}
	return n, nil
}

// Image renders g. Row 0 holds the zenith color so the image reads upright.
func (g Gradient) Image() (image.Image, error) {
	if len(g.Stops) == 0 {
		return nil, errors.New("texgen: gradient has no stops")
	}
	w, h := g.Width, g.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	brush := gg.NewLinearGradientBrush(0, float64(h), 0, 0)
	for _, s := range g.Stops {
		c := s.Color.Clamp()
		brush.AddColorStop(s.Offset, gg.RGBA{R: c.R, G: c.G, B: c.B, A: 1})
	}
	dc.SetFillBrush(brush)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("texgen: fill gradient: %w", err)
	}
	return dc.Image(), nil
}

// Load renders the gradient addressed by u. Its signature matches the
// texture cache loader interface.
func Load(_ context.Context, u *url.URL) (image.Image, error) {
	g, err := ParseGradient(u)
	if err != nil {
		return nil, err
	}
	return g.Image()
}
