package figure3d

import (
	"net/url"
	"reflect"
	"strings"
)

// Preset is a named built-in backdrop.
type Preset struct {
	Name string
	Sky  Sky
}

var presets = []Preset{
	{Name: "None", Sky: NoSky{}},
	{Name: "Space", Sky: SkySolid{Color: RGB{R: 0.01, G: 0.01, B: 0.03}}},
	{Name: "Clear Day", Sky: SkyGradient{
		Top:    RGB{R: 0.24, G: 0.47, B: 0.85},
		Bottom: RGB{R: 0.78, G: 0.88, B: 0.98},
	}},
	{Name: "Dusk", Sky: SkyGradient{
		Top:    RGB{R: 0.10, G: 0.11, B: 0.32},
		Bottom: RGB{R: 0.96, G: 0.55, B: 0.30},
	}},
	// Rendered from a generated image so the horizon band can have more
	// than two color stops.
	{Name: "Horizon", Sky: NewSkyPhoto(&url.URL{
		Scheme:   "gradient",
		RawQuery: "stops=0:%23f4d6a0,0.35:%23a8cde8,1:%231d4f91&w=4&h=256",
	})},
}

// Presets returns the built-in backdrops.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// PresetByName looks up a built-in backdrop ignoring case.
func PresetByName(name string) (Sky, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.Sky, true
		}
	}
	return nil, false
}

// NextPreset returns the preset following the one current is, wrapping
// around. If current is not a preset the first preset is returned.
func NextPreset(current Sky) Preset {
	for i, p := range presets {
		if sameSky(p.Sky, current) {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}

func sameSky(a, b Sky) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta := reflect.TypeOf(a)
	return ta == reflect.TypeOf(b) && ta.Comparable() && a == b
}
