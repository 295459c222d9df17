// Package config contains the loader and typed model of figure3d scene files.
//
// A scene file is YAML. Values may be overridden by FIGURE3D_* variables
// taken from the process environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/soypat/figure3d"
	"github.com/soypat/figure3d/scene"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Scene describes a figure frame to render.
type Scene struct {
	// Sky selects and parameterizes the backdrop.
	Sky Sky `yaml:"sky,omitempty"`
	// Model is the path of a binary STL file drawn in front of the sky.
	Model string `yaml:"model,omitempty"`
	// Color is the model color as hex (e.g. "#c0c0c0").
	Color string `yaml:"color,omitempty"`
	// Background is the clear color shown where no sky is drawn.
	Background string `yaml:"background,omitempty"`
	// Camera positions the viewer. When omitted the camera frames the model.
	Camera *Camera `yaml:"camera,omitempty"`
	// Output configures the rendered image.
	Output Output `yaml:"output,omitempty"`
	// Textures configures texture loading.
	Textures Textures `yaml:"textures,omitempty"`
}

// Sky kinds.
const (
	SkyPhoto    = "photo"
	SkySolid    = "solid"
	SkyGradient = "gradient"
	SkyNone     = "none"
	SkyPreset   = "preset"
)

// Sky describes the backdrop.
type Sky struct {
	// Kind is one of photo, solid, gradient, none or preset.
	Kind string `yaml:"kind,omitempty"`
	// URL is the image of a photo sky: file path, file://, http(s):// or gradient: URL.
	URL string `yaml:"url,omitempty"`
	// Color is the color of a solid sky.
	Color string `yaml:"color,omitempty"`
	// Top and Bottom are the edge colors of a gradient sky.
	Top    string `yaml:"top,omitempty"`
	Bottom string `yaml:"bottom,omitempty"`
	// Preset names a built-in sky (see "figure3d skies").
	Preset string `yaml:"preset,omitempty"`
}

// Camera describes the viewpoint. Vectors have three components.
type Camera struct {
	Eye    []float64 `yaml:"eye,omitempty"`
	Center []float64 `yaml:"center,omitempty"`
	Up     []float64 `yaml:"up,omitempty"`
	// FovY is the vertical field of view in degrees.
	FovY float64 `yaml:"fovy,omitempty"`
	Near float64 `yaml:"near,omitempty"`
	Far  float64 `yaml:"far,omitempty"`
	// Frame moves the eye along its view direction to fit the model.
	Frame bool `yaml:"frame,omitempty"`
}

// Output describes the rendered image.
type Output struct {
	// Path is where render writes the PNG.
	Path   string `yaml:"path,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	// Supersample renders at this multiple of the output size and
	// downsamples for antialiasing.
	Supersample int `yaml:"supersample,omitempty"`
}

// Textures configures the texture cache.
type Textures struct {
	// MaxSize caps the larger texture side in pixels; 0 means no limit.
	MaxSize int `yaml:"maxSize,omitempty"`
	// PowerOfTwo resamples textures to power of two sides.
	PowerOfTwo bool `yaml:"powerOfTwo,omitempty"`
	// Timeout bounds loading one image (e.g. "30s").
	Timeout string `yaml:"timeout,omitempty"`
}

// Default returns the scene used when no file is given.
func Default() *Scene {
	return &Scene{
		Sky:        Sky{Kind: SkyPreset, Preset: "Clear Day"},
		Color:      "#c0c0c0",
		Background: "#000000",
		Output:     Output{Path: "figure.png", Width: 800, Height: 600, Supersample: 2},
		Textures:   Textures{MaxSize: 4096, Timeout: "30s"},
	}
}

// Load reads the scene file at path over the defaults.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scene %q: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML scene data over the defaults and validates it.
func Parse(data []byte) (*Scene, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the scene for values that cannot be rendered.
func (s *Scene) Validate() error {
	var errs []error
	if _, err := s.Sky.Build(); err != nil {
		errs = append(errs, err)
	}
	for name, hex := range map[string]string{"color": s.Color, "background": s.Background} {
		if hex == "" {
			continue
		}
		if _, err := figure3d.ParseHex(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if s.Output.Width <= 0 || s.Output.Height <= 0 {
		errs = append(errs, fmt.Errorf("output size %dx%d must be positive", s.Output.Width, s.Output.Height))
	}
	if s.Output.Supersample < 0 || s.Output.Supersample > 8 {
		errs = append(errs, fmt.Errorf("output supersample %d outside [0,8]", s.Output.Supersample))
	}
	if s.Textures.MaxSize < 0 {
		errs = append(errs, errors.New("textures maxSize must not be negative"))
	}
	if _, err := s.Textures.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if s.Camera != nil {
		if _, err := s.Camera.Build(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build returns the backdrop described by s. An empty kind means no sky.
func (s Sky) Build() (figure3d.Sky, error) {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "", SkyNone:
		return figure3d.NoSky{}, nil
	case SkyPhoto:
		if s.URL == "" {
			return nil, errors.New("sky: photo needs a url")
		}
		sky, err := figure3d.ParseSkyPhoto(s.URL)
		if err != nil {
			return nil, fmt.Errorf("sky: %w", err)
		}
		return sky, nil
	case SkySolid:
		c, err := figure3d.ParseHex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("sky color: %w", err)
		}
		return figure3d.SkySolid{Color: c}, nil
	case SkyGradient:
		top, err := figure3d.ParseHex(s.Top)
		if err != nil {
			return nil, fmt.Errorf("sky top: %w", err)
		}
		bottom, err := figure3d.ParseHex(s.Bottom)
		if err != nil {
			return nil, fmt.Errorf("sky bottom: %w", err)
		}
		return figure3d.SkyGradient{Top: top, Bottom: bottom}, nil
	case SkyPreset:
		sky, ok := figure3d.PresetByName(s.Preset)
		if !ok {
			return nil, fmt.Errorf("sky: unknown preset %q", s.Preset)
		}
		return sky, nil
	}
	return nil, fmt.Errorf("sky: unknown kind %q", s.Kind)
}

// Build returns the scene camera, starting from scene.DefaultCamera for
// unset fields.
func (c *Camera) Build() (scene.Camera, error) {
	cam := scene.DefaultCamera()
	var err error
	set := func(dst *r3.Vec, v []float64, name string) {
		if v == nil || err != nil {
			return
		}
		if len(v) != 3 {
			err = fmt.Errorf("camera %s needs 3 components, got %d", name, len(v))
			return
		}
		*dst = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	set(&cam.Eye, c.Eye, "eye")
	set(&cam.Center, c.Center, "center")
	set(&cam.Up, c.Up, "up")
	if err != nil {
		return scene.Camera{}, err
	}
	if c.FovY != 0 {
		cam.FovY = c.FovY
	}
	if c.Near != 0 {
		cam.Near = c.Near
	}
	if c.Far != 0 {
		cam.Far = c.Far
	}
	if cam.FovY <= 0 || cam.FovY >= 180 || cam.Near <= 0 || cam.Far <= cam.Near {
		return scene.Camera{}, fmt.Errorf("camera fovy=%v near=%v far=%v out of range", cam.FovY, cam.Near, cam.Far)
	}
	return cam, nil
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (t Textures) TimeoutDuration() (time.Duration, error) {
	if t.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0, fmt.Errorf("textures timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("textures timeout %v is negative", d)
	}
	return d, nil
}

// RGB parses a hex color, yielding def when hex is empty.
func RGB(hex string, def figure3d.RGB) (figure3d.RGB, error) {
	if hex == "" {
		return def, nil
	}
	return figure3d.ParseHex(hex)
}
