package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/glgl/math/ms3"
)

func tetrahedron() Mesh {
	a := ms3.Vec{}
	b := ms3.Vec{X: 1}
	c := ms3.Vec{Y: 1}
	d := ms3.Vec{Z: 2}
	return Mesh{
		{a, c, b},
		{a, b, d},
		{a, d, c},
		{b, c, d},
	}
}

func TestSTLRoundTrip(t *testing.T) {
	m := tetrahedron()
	var buf bytes.Buffer
	n, err := WriteBinarySTL(&buf, m)
	if err != nil {
		t.Fatal(err)
	}
	if want := stlHeaderSize + len(m)*stlTriangleSize; n != want || buf.Len() != want {
		t.Fatalf("wrote %d bytes (buffer %d), want %d", n, buf.Len(), want)
	}
	got, err := ReadBinarySTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(m) {
		t.Fatalf("read %d triangles, want %d", len(got), len(m))
	}
	for i := range m {
		if got[i] != m[i] {
			t.Errorf("triangle %d: got %v, want %v", i, got[i], m[i])
		}
	}
}

func TestSTLReadErrors(t *testing.T) {
	valid := func() []byte {
		var buf bytes.Buffer
		if _, err := WriteBinarySTL(&buf, tetrahedron()); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}
	putF32 := func(b []byte, off int, v float32) {
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
	}
	// Offsets into the first facet record.
	const normal, vertex1 = stlHeaderSize, stlHeaderSize + 12

	t.Run("short header", func(t *testing.T) {
		if _, err := ReadBinarySTL(bytes.NewReader(make([]byte, 40))); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("zero count", func(t *testing.T) {
		_, err := ReadBinarySTL(bytes.NewReader(make([]byte, stlHeaderSize)))
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("got %v, want ErrEmpty", err)
		}
	})
	t.Run("truncated", func(t *testing.T) {
		b := valid()
		if _, err := ReadBinarySTL(bytes.NewReader(b[:len(b)-10])); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("NaN vertex", func(t *testing.T) {
		b := valid()
		putF32(b, vertex1, float32(math.NaN()))
		if _, err := ReadBinarySTL(bytes.NewReader(b)); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("degenerate", func(t *testing.T) {
		b := valid()
		// Collapse the second vertex onto the first.
		copy(b[vertex1+12:vertex1+24], b[vertex1:vertex1+12])
		if _, err := ReadBinarySTL(bytes.NewReader(b)); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("normal mismatch", func(t *testing.T) {
		b := valid()
		putF32(b, normal, 1)
		putF32(b, normal+4, 0)
		putF32(b, normal+8, 0)
		m, err := ReadBinarySTL(bytes.NewReader(b))
		if !errors.Is(err, ErrNormalMismatch) {
			t.Errorf("got %v, want ErrNormalMismatch", err)
		}
		if len(m) != 4 {
			t.Errorf("mesh not returned with mismatch: %d triangles", len(m))
		}
	})
	t.Run("zero normal", func(t *testing.T) {
		b := valid()
		clear(b[normal : normal+12])
		if _, err := ReadBinarySTL(bytes.NewReader(b)); err != nil {
			t.Error(err)
		}
	})
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteBinarySTL(&buf, nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("got %v, want ErrEmpty", err)
	}
}

func TestBounds(t *testing.T) {
	bb := tetrahedron().Bounds()
	want := ms3.Box{Max: ms3.Vec{X: 1, Y: 1, Z: 2}}
	if bb != want {
		t.Errorf("got %v, want %v", bb, want)
	}
	if (Mesh{}).Bounds() != (ms3.Box{}) {
		t.Error("empty mesh bounds not zero")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.stl")
	if err := Save(path, tetrahedron()); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 4 {
		t.Errorf("loaded %d triangles", len(m))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.stl")); err == nil {
		t.Error("expected error loading missing file")
	}
}

func TestLoadManyMismatchedNormals(t *testing.T) {
	tri := ms3.Triangle{{}, {X: 1}, {Y: 1}}
	writeSkewed := func(t *testing.T, count int) string {
		t.Helper()
		var buf bytes.Buffer
		m := make(Mesh, count)
		for i := range m {
			m[i] = tri
		}
		if _, err := WriteBinarySTL(&buf, m); err != nil {
			t.Fatal(err)
		}
		b := buf.Bytes()
		for i := 0; i < count; i++ {
			// Stored normal +X for a face whose winding gives +Z.
			off := stlHeaderSize + i*stlTriangleSize
			binary.LittleEndian.PutUint32(b[off:], math.Float32bits(1))
			binary.LittleEndian.PutUint32(b[off+8:], 0)
		}
		path := filepath.Join(t.TempDir(), "skewed.stl")
		if err := os.WriteFile(path, b, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	m, err := Load(writeSkewed(t, 3))
	if err != nil || len(m) != 3 {
		t.Errorf("few mismatches: got %d triangles, err %v", len(m), err)
	}

	m, err = Load(writeSkewed(t, maxNormalMismatches+500))
	if !errors.Is(err, ErrTooManyMismatches) {
		t.Errorf("got %v, want ErrTooManyMismatches", err)
	}
	if errors.Is(err, ErrNormalMismatch) {
		t.Error("truncation reported as a benign normal mismatch")
	}
	if m != nil {
		t.Errorf("partial mesh of %d triangles returned", len(m))
	}
}
