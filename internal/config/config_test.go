package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soypat/figure3d"
	"gonum.org/v1/gonum/spatial/r3"
)

const sceneYAML = `
sky:
  kind: photo
  url: gradient:?stops=0:%23ffffff,1:%230000ff
model: rocket.stl
color: "#ff8000"
camera:
  eye: [0, -20, 5]
  fovy: 30
  frame: true
output:
  path: out.png
  width: 320
  height: 240
textures:
  maxSize: 1024
  powerOfTwo: true
  timeout: 5s
`

func TestParseScene(t *testing.T) {
	s, err := Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	sky, err := s.Sky.Build()
	if err != nil {
		t.Fatal(err)
	}
	photo, ok := sky.(*figure3d.SkyPhoto)
	if !ok {
		t.Fatalf("sky is %T, want *figure3d.SkyPhoto", sky)
	}
	if photo.URL().Scheme != "gradient" {
		t.Errorf("sky url %v", photo.URL())
	}
	if s.Model != "rocket.stl" || s.Output.Width != 320 || s.Output.Height != 240 {
		t.Errorf("got %+v", s)
	}
	// Unset fields keep their defaults.
	if s.Background != "#000000" {
		t.Errorf("background %q", s.Background)
	}
	cam, err := s.Camera.Build()
	if err != nil {
		t.Fatal(err)
	}
	if cam.Eye != (r3.Vec{Y: -20, Z: 5}) || cam.FovY != 30 || cam.Up != (r3.Vec{Z: 1}) {
		t.Errorf("camera %+v", cam)
	}
	if !s.Camera.Frame {
		t.Error("frame not set")
	}
	if d, _ := s.Textures.TimeoutDuration(); d != 5*time.Second {
		t.Errorf("timeout %v", d)
	}
}

func TestSkyKinds(t *testing.T) {
	for _, tc := range []struct {
		sky  Sky
		want string
	}{
		{Sky{}, "figure3d.NoSky"},
		{Sky{Kind: "none"}, "figure3d.NoSky"},
		{Sky{Kind: "Solid", Color: "#102030"}, "figure3d.SkySolid"},
		{Sky{Kind: "gradient", Top: "#00f", Bottom: "#fff"}, "figure3d.SkyGradient"},
		{Sky{Kind: "preset", Preset: "dusk"}, "figure3d.SkyGradient"},
		{Sky{Kind: "photo", URL: "/tmp/sky.png"}, "*figure3d.SkyPhoto"},
	} {
		sky, err := tc.sky.Build()
		if err != nil {
			t.Errorf("%+v: %v", tc.sky, err)
			continue
		}
		if got := typeName(sky); got != tc.want {
			t.Errorf("%+v built %s, want %s", tc.sky, got, tc.want)
		}
	}
	for _, bad := range []Sky{
		{Kind: "photo"},
		{Kind: "solid", Color: "blue"},
		{Kind: "gradient", Top: "#fff"},
		{Kind: "preset", Preset: "mars"},
		{Kind: "aurora"},
	} {
		if _, err := bad.Build(); err == nil {
			t.Errorf("%+v: expected error", bad)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case figure3d.NoSky:
		return "figure3d.NoSky"
	case figure3d.SkySolid:
		return "figure3d.SkySolid"
	case figure3d.SkyGradient:
		return "figure3d.SkyGradient"
	case *figure3d.SkyPhoto:
		return "*figure3d.SkyPhoto"
	}
	return "unknown"
}

func TestValidateCollectsErrors(t *testing.T) {
	_, err := Parse([]byte(`
sky: {kind: solid, color: nope}
output: {width: 0}
camera: {eye: [1, 2]}
textures: {timeout: soon}
`))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, frag := range []string{"sky color", "output size", "camera eye", "textures timeout"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("error lacks %q: %v", frag, err)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	err := os.WriteFile(envFile, []byte("FIGURE3D_SKY_PRESET=Space\nFIGURE3D_WIDTH=64\n# comment\nFIGURE3D_TEXTURE_TIMEOUT=2s\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	fileVars, err := LoadEnvFiles(envFile)
	if err != nil {
		t.Fatal(err)
	}
	// Process variables win over .env files.
	vars := Merge(fileVars, Vars{"FIGURE3D_WIDTH": "128", "FIGURE3D_HEIGHT": "96"})
	e, err := ParseEnv(vars)
	if err != nil {
		t.Fatal(err)
	}
	s := Default()
	if err := e.Apply(s); err != nil {
		t.Fatal(err)
	}
	if s.Sky.Kind != SkyPreset || s.Sky.Preset != "Space" {
		t.Errorf("sky %+v", s.Sky)
	}
	if s.Output.Width != 128 || s.Output.Height != 96 {
		t.Errorf("size %dx%d", s.Output.Width, s.Output.Height)
	}
	if s.Textures.Timeout != "2s" {
		t.Errorf("timeout %q", s.Textures.Timeout)
	}

	if _, err := ParseEnv(Vars{"FIGURE3D_WIDTH": "wide"}); err == nil {
		t.Error("expected error for non-numeric width")
	}
	if _, err := LoadEnvFiles(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "scene.yaml")); err == nil {
		t.Error("expected error")
	}
}
