package figure3d_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/soypat/figure3d"
	"github.com/soypat/figure3d/internal/glrec"
)

type fakeCache struct {
	tex   figure3d.Texture
	err   error
	panic bool
	got   []string
}

func (c *fakeCache) Texture(u *url.URL) (figure3d.Texture, error) {
	c.got = append(c.got, u.String())
	if c.panic {
		panic("cache exploded")
	}
	return c.tex, c.err
}

func mustPhoto(t *testing.T, raw string) *figure3d.SkyPhoto {
	t.Helper()
	s, err := figure3d.ParseSkyPhoto(raw)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func call(op string, args ...float64) glrec.Call {
	return glrec.Call{Op: op, Args: args}
}

func TestSkyPhotoCallSequence(t *testing.T) {
	const (
		proj  = float64(figure3d.Projection)
		mview = float64(figure3d.ModelView)
	)
	sky := mustPhoto(t, "file:///skies/meadow.jpg")
	cache := &fakeCache{tex: figure3d.Texture{Name: 7, Width: 512, Height: 256}}
	var gl glrec.Recorder
	if err := sky.Draw(&gl, cache); err != nil {
		t.Fatal(err)
	}
	want := []glrec.Call{
		call("MatrixMode", proj),
		call("PushMatrix", proj),
		call("LoadIdentity", proj),
		call("MatrixMode", mview),
		call("PushMatrix", mview),
		call("LoadIdentity", mview),
		call("Scaled", 1, 1, -1),
		call("Color3d", 1, 1, 1),
		call("BindTexture", 7),
		call("Enable", float64(figure3d.Texture2D)),
		call("Begin", float64(figure3d.TriangleStrip)),
		call("Normal3f", 0, 0, -1),
		call("TexCoord2f", 1, 1),
		call("Vertex3f", -1, -1, 1),
		call("TexCoord2f", 0, 1),
		call("Vertex3f", 1, -1, 1),
		call("TexCoord2f", 1, 0),
		call("Vertex3f", -1, 1, 1),
		call("TexCoord2f", 0, 0),
		call("Vertex3f", 1, 1, 1),
		call("End"),
		call("Disable", float64(figure3d.Texture2D)),
		call("MatrixMode", proj),
		call("PopMatrix", proj),
		call("MatrixMode", mview),
		call("PopMatrix", mview),
	}
	if len(gl.Calls) != len(want) {
		t.Fatalf("got %d calls, want %d:\n%v", len(gl.Calls), len(want), gl.Calls)
	}
	for i := range want {
		if gl.Calls[i].String() != want[i].String() {
			t.Errorf("call %d: got %s, want %s", i, gl.Calls[i], want[i])
		}
	}
}

func TestSkyPhotoResolvesOnce(t *testing.T) {
	const raw = "https://example.com/skies/orbit.png?v=2"
	sky := mustPhoto(t, raw)
	cache := &fakeCache{}
	var gl glrec.Recorder
	if err := sky.Draw(&gl, cache); err != nil {
		t.Fatal(err)
	}
	if len(cache.got) != 1 {
		t.Fatalf("want exactly one cache resolve, got %d", len(cache.got))
	}
	if cache.got[0] != raw {
		t.Errorf("resolved %q, want %q", cache.got[0], raw)
	}
}

func TestSkyPhotoCacheErrorPropagates(t *testing.T) {
	errMissing := errors.New("sky image not found")
	sky := mustPhoto(t, "file:///missing.png")
	var gl glrec.Recorder
	err := sky.Draw(&gl, &fakeCache{err: errMissing})
	if err != errMissing {
		t.Fatalf("got error %v, want the cache error unmodified", err)
	}
	assertBalanced(t, &gl)
	for _, op := range []string{"Color3d", "BindTexture", "Enable", "Begin", "Vertex3f", "Disable"} {
		if n := gl.Count(op); n != 0 {
			t.Errorf("%s called %d times after cache failure", op, n)
		}
	}
}

func TestSkyPhotoCachePanicRestoresStacks(t *testing.T) {
	sky := mustPhoto(t, "file:///boom.png")
	var gl glrec.Recorder
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to reach caller")
			}
		}()
		sky.Draw(&gl, &fakeCache{panic: true})
	}()
	assertBalanced(t, &gl)
}

func TestBackdropGeometry(t *testing.T) {
	sky := mustPhoto(t, "file:///a.png")
	var gl glrec.Recorder
	if err := sky.Draw(&gl, &fakeCache{}); err != nil {
		t.Fatal(err)
	}
	var verts, uvs [][]float64
	for _, c := range gl.Calls {
		switch c.Op {
		case "Vertex3f":
			verts = append(verts, c.Args)
		case "TexCoord2f":
			uvs = append(uvs, c.Args)
		}
	}
	if len(verts) != 4 || len(uvs) != 4 {
		t.Fatalf("want 4 vertices and texcoords, got %d and %d", len(verts), len(uvs))
	}
	var minx, maxx, miny, maxy float64
	for i, v := range verts {
		if v[2] != 1 {
			t.Errorf("vertex %d depth %v, want 1", i, v[2])
		}
		minx, maxx = min(minx, v[0]), max(maxx, v[0])
		miny, maxy = min(miny, v[1]), max(maxy, v[1])
	}
	if minx != -1 || maxx != 1 || miny != -1 || maxy != 1 {
		t.Errorf("quad spans x[%v,%v] y[%v,%v], want [-1,1]", minx, maxx, miny, maxy)
	}
	wantUV := [][2]float64{{1, 1}, {0, 1}, {1, 0}, {0, 0}}
	for i, uv := range uvs {
		if uv[0] != wantUV[i][0] || uv[1] != wantUV[i][1] {
			t.Errorf("texcoord %d = %v, want %v", i, uv, wantUV[i])
		}
	}
	quad := figure3d.BackdropQuad()
	for i, v := range quad {
		if float64(v.UV.X) != wantUV[i][0] || float64(v.UV.Y) != wantUV[i][1] {
			t.Errorf("BackdropQuad()[%d] uv mismatch %v", i, v.UV)
		}
	}
}

func TestNeutralColorBeforeGeometry(t *testing.T) {
	sky := mustPhoto(t, "file:///a.png")
	var gl glrec.Recorder
	if err := sky.Draw(&gl, &fakeCache{}); err != nil {
		t.Fatal(err)
	}
	var last *glrec.Call
	for i, c := range gl.Calls {
		if c.Op == "Begin" {
			break
		}
		if c.Op == "Color3d" {
			last = &gl.Calls[i]
		}
	}
	if last == nil {
		t.Fatal("no color set before Begin")
	}
	if last.Args[0] != 1 || last.Args[1] != 1 || last.Args[2] != 1 {
		t.Errorf("draw color %v, want neutral white", last.Args)
	}
}

func TestSkyPhotoIdempotent(t *testing.T) {
	sky := mustPhoto(t, "file:///a.png")
	cache := &fakeCache{tex: figure3d.Texture{Name: 3}}
	var once, twice glrec.Recorder
	if err := sky.Draw(&once, cache); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		twice.Reset()
		if err := sky.Draw(&twice, cache); err != nil {
			t.Fatal(err)
		}
	}
	if len(once.Calls) != len(twice.Calls) {
		t.Fatalf("call count differs: %d vs %d", len(once.Calls), len(twice.Calls))
	}
	for i := range once.Calls {
		if once.Calls[i].String() != twice.Calls[i].String() {
			t.Errorf("call %d differs: %s vs %s", i, once.Calls[i], twice.Calls[i])
		}
	}
	assertBalanced(t, &twice)
	if twice.Mode() != once.Mode() {
		t.Errorf("matrix mode after draws differs: %v vs %v", twice.Mode(), once.Mode())
	}
}

func TestNewSkyPhotoCopiesURL(t *testing.T) {
	u, _ := url.Parse("file:///skies/a.png")
	sky := figure3d.NewSkyPhoto(u)
	u.Path = "/skies/b.png"
	if got := sky.URL().Path; got != "/skies/a.png" {
		t.Errorf("backdrop reference changed to %q", got)
	}
	sky.URL().Path = "/changed"
	if got := sky.URL().Path; got != "/skies/a.png" {
		t.Errorf("URL() leaked internal reference, now %q", got)
	}
}

func TestSkyVariantsBalanced(t *testing.T) {
	for _, p := range figure3d.Presets() {
		t.Run(p.Name, func(t *testing.T) {
			var gl glrec.Recorder
			if err := p.Sky.Draw(&gl, &fakeCache{}); err != nil {
				t.Fatal(err)
			}
			assertBalanced(t, &gl)
			if gl.Count("Enable") != gl.Count("Disable") {
				t.Errorf("unmatched enable/disable: %v", gl.Ops())
			}
		})
	}
}

func TestColorSkiesSkipCache(t *testing.T) {
	skies := []figure3d.Sky{
		figure3d.SkySolid{Color: figure3d.RGB{R: 0.2}},
		figure3d.SkyGradient{Top: figure3d.White},
		figure3d.NoSky{},
	}
	for _, sky := range skies {
		cache := &fakeCache{err: errors.New("must not be called")}
		var gl glrec.Recorder
		if err := sky.Draw(&gl, cache); err != nil {
			t.Errorf("%T: %v", sky, err)
		}
		if len(cache.got) != 0 {
			t.Errorf("%T resolved textures %v", sky, cache.got)
		}
	}
}

func TestSkyGradientVertexColors(t *testing.T) {
	top := figure3d.RGB{R: 0, G: 0, B: 1}
	bottom := figure3d.RGB{R: 1, G: 0.5, B: 0}
	var gl glrec.Recorder
	figure3d.SkyGradient{Top: top, Bottom: bottom}.Draw(&gl, nil)
	var colors []glrec.Call
	var ys []float64
	for _, c := range gl.Calls {
		switch c.Op {
		case "Color3d":
			colors = append(colors, c)
		case "Vertex3f":
			ys = append(ys, c.Args[1])
		}
	}
	if len(colors) != 4 || len(ys) != 4 {
		t.Fatalf("want a color per vertex, got %d colors for %d vertices", len(colors), len(ys))
	}
	for i, y := range ys {
		want := bottom
		if y > 0 {
			want = top
		}
		got := figure3d.RGB{R: colors[i].Args[0], G: colors[i].Args[1], B: colors[i].Args[2]}
		if got != want {
			t.Errorf("vertex %d at y=%v color %v, want %v", i, y, got, want)
		}
	}
}

func TestParseHex(t *testing.T) {
	for _, test := range []struct {
		in   string
		want figure3d.RGB
		err  bool
	}{
		{in: "#ffffff", want: figure3d.White},
		{in: "000", want: figure3d.RGB{}},
		{in: "#f00", want: figure3d.RGB{R: 1}},
		{in: " #0000ff ", want: figure3d.RGB{B: 1}},
		{in: "#12345", err: true},
		{in: "#gggggg", err: true},
	} {
		got, err := figure3d.ParseHex(test.in)
		if (err != nil) != test.err {
			t.Errorf("ParseHex(%q) error = %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseHex(%q) = %v, want %v", test.in, got, test.want)
		}
	}
	if h := (figure3d.RGB{R: 1, G: 0.5, B: 2}).Hex(); h != "#ff80ff" {
		t.Errorf("Hex() = %s", h)
	}
}

func TestPresetByName(t *testing.T) {
	if _, ok := figure3d.PresetByName("clear day"); !ok {
		t.Error("preset lookup should ignore case")
	}
	if _, ok := figure3d.PresetByName("Meadow"); ok {
		t.Error("unexpected preset")
	}
}

func TestSkyPhotoWithoutURL(t *testing.T) {
	for name, sky := range map[string]*figure3d.SkyPhoto{
		"zero":    {},
		"new nil": figure3d.NewSkyPhoto(nil),
	} {
		t.Run(name, func(t *testing.T) {
			if sky.URL() != nil {
				t.Errorf("URL() = %v, want nil", sky.URL())
			}
			var gl glrec.Recorder
			cache := &fakeCache{}
			if err := sky.Draw(&gl, cache); !errors.Is(err, figure3d.ErrNoImage) {
				t.Errorf("got %v, want ErrNoImage", err)
			}
			if len(cache.got) != 0 {
				t.Errorf("cache resolved %v", cache.got)
			}
			assertBalanced(t, &gl)
		})
	}
}

func TestNextPreset(t *testing.T) {
	presets := figure3d.Presets()
	for i, p := range presets {
		want := presets[(i+1)%len(presets)].Name
		if got := figure3d.NextPreset(p.Sky).Name; got != want {
			t.Errorf("after %s: got %s, want %s", p.Name, got, want)
		}
	}
	dusk, _ := figure3d.PresetByName("Dusk")
	if got := figure3d.NextPreset(dusk).Name; got == presets[0].Name {
		t.Errorf("cycling from Dusk restarted at %s", got)
	}
	custom := figure3d.SkySolid{Color: figure3d.RGB{R: 0.3}}
	if got := figure3d.NextPreset(custom).Name; got != presets[0].Name {
		t.Errorf("after a custom sky: got %s, want %s", got, presets[0].Name)
	}
	if got := figure3d.NextPreset(nil).Name; got != presets[0].Name {
		t.Errorf("after nil: got %s", got)
	}
}

func assertBalanced(t *testing.T, gl *glrec.Recorder) {
	t.Helper()
	for _, m := range []figure3d.MatrixMode{figure3d.Projection, figure3d.ModelView} {
		if d := gl.Depth(m); d != 0 {
			t.Errorf("%v stack left %d deep", m, d)
		}
		if gl.Count("PushMatrix") > 0 && gl.MaxDepth[m] != 1 {
			t.Errorf("%v pushed to depth %d, want 1", m, gl.MaxDepth[m])
		}
	}
	if gl.Underflows != 0 {
		t.Errorf("%d stack underflows", gl.Underflows)
	}
}
