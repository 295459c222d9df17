package figure3d

import (
	"errors"
	"net/url"
)

// ErrNoImage is returned when drawing a SkyPhoto without an image URL.
var ErrNoImage = errors.New("figure3d: sky photo has no image URL")

// SkyPhoto is a backdrop showing an image stretched over the viewport,
// as if infinitely far away. The zero value has no image and fails to draw
// with ErrNoImage.
type SkyPhoto struct {
	url *url.URL
}

// NewSkyPhoto returns a photo backdrop for the image at u. The URL is
// copied and never changes afterwards.
func NewSkyPhoto(u *url.URL) *SkyPhoto {
	if u == nil {
		return &SkyPhoto{}
	}
	cp := *u
	if u.User != nil {
		user := *u.User
		cp.User = &user
	}
	return &SkyPhoto{url: &cp}
}

// ParseSkyPhoto parses rawURL and returns a photo backdrop for it.
func ParseSkyPhoto(rawURL string) (*SkyPhoto, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &SkyPhoto{url: u}, nil
}

// URL returns a copy of the image reference, or nil if there is none.
func (s *SkyPhoto) URL() *url.URL {
	if s.url == nil {
		return nil
	}
	cp := *s.url
	return &cp
}

// Draw draws the image over the whole viewport. The texture is resolved
// through cache on every call; errors returned by cache are returned
// unmodified after the matrix stacks have been restored.
func (s *SkyPhoto) Draw(gl GL, cache TextureCache) error {
	pushBackdrop(gl)
	defer popBackdrop(gl)
	if s.url == nil {
		return ErrNoImage
	}

	sky, err := cache.Texture(s.url)
	if err != nil {
		return err
	}

	gl.Color3d(1, 1, 1)
	sky.Bind(gl)
	sky.Enable(gl)
	emitBackdrop(gl, true, nil)
	sky.Disable(gl)
	return nil
}
