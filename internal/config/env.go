package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the FIGURE3D_* overrides. Unset variables leave the scene as is.
type Env struct {
	// SkyURL sets a photo sky from FIGURE3D_SKY_URL.
	SkyURL string `env:"FIGURE3D_SKY_URL"`
	// SkyPreset selects a built-in sky from FIGURE3D_SKY_PRESET.
	SkyPreset string `env:"FIGURE3D_SKY_PRESET"`
	// Model is the STL path from FIGURE3D_MODEL.
	Model string `env:"FIGURE3D_MODEL"`
	// Output is the PNG path from FIGURE3D_OUTPUT.
	Output string `env:"FIGURE3D_OUTPUT"`
	// Width and Height set the image size from FIGURE3D_WIDTH and FIGURE3D_HEIGHT.
	Width  int `env:"FIGURE3D_WIDTH"`
	Height int `env:"FIGURE3D_HEIGHT"`
	// TextureMaxSize caps texture sides from FIGURE3D_TEXTURE_MAX_SIZE.
	TextureMaxSize int `env:"FIGURE3D_TEXTURE_MAX_SIZE"`
	// TextureTimeout bounds image loads from FIGURE3D_TEXTURE_TIMEOUT.
	TextureTimeout time.Duration `env:"FIGURE3D_TEXTURE_TIMEOUT"`
	// LogLevel is the default log level from FIGURE3D_LOG_LEVEL.
	LogLevel string `env:"FIGURE3D_LOG_LEVEL"`
}

// Vars is a set of environment variables.
type Vars map[string]string

// OSVars returns the process environment.
func OSVars() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}

// LoadEnvFiles parses .env files in order, later files overriding earlier ones.
func LoadEnvFiles(paths ...string) (Vars, error) {
	out := make(Vars)
	for _, path := range paths {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
		vars, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse env file %q: %w", path, err)
		}
		for k, v := range vars {
			out[k] = v
		}
	}
	return out, nil
}

// Merge combines variable sets, later sets overriding earlier keys.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// ParseEnv reads the FIGURE3D_* variables of vars.
func ParseEnv(vars Vars) (Env, error) {
	var e Env
	err := env.ParseWithOptions(&e, env.Options{Environment: vars})
	if err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// Apply overrides the scene with the variables set in e and revalidates it.
func (e Env) Apply(s *Scene) error {
	switch {
	case e.SkyURL != "":
		s.Sky = Sky{Kind: SkyPhoto, URL: e.SkyURL}
	case e.SkyPreset != "":
		s.Sky = Sky{Kind: SkyPreset, Preset: e.SkyPreset}
	}
	if e.Model != "" {
		s.Model = e.Model
	}
	if e.Output != "" {
		s.Output.Path = e.Output
	}
	if e.Width != 0 {
		s.Output.Width = e.Width
	}
	if e.Height != 0 {
		s.Output.Height = e.Height
	}
	if e.TextureMaxSize != 0 {
		s.Textures.MaxSize = e.TextureMaxSize
	}
	if e.TextureTimeout != 0 {
		s.Textures.Timeout = e.TextureTimeout.String()
	}
	return s.Validate()
}
