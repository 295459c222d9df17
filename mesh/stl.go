package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
	// maxNormalMismatches is the number of triangles whose stored normal may
	// disagree with its winding before reading gives up.
	maxNormalMismatches = 10_000
)

var (
	// ErrEmpty is returned when writing or reading a mesh with no triangles.
	ErrEmpty = errors.New("mesh: no triangles")
	// ErrNormalMismatch is returned alongside the full mesh when at least
	// one stored facet normal disagrees with its vertex winding.
	ErrNormalMismatch = errors.New("mesh: stored normal does not match vertices")
	// ErrTooManyMismatches is returned without a mesh when more than
	// maxNormalMismatches stored normals disagree with their winding.
	ErrTooManyMismatches = errors.New("mesh: too many stored normals do not match vertices")
)

// WriteBinarySTL encodes the mesh as binary STL with facet normals computed
// from the vertex winding. It returns the number of bytes written.
func WriteBinarySTL(w io.Writer, m Mesh) (int, error) {
	if len(m) == 0 {
		return 0, ErrEmpty
	}
	nt := int64(len(m))
	if nt > math.MaxUint32 {
		return 0, errors.New("mesh: triangle count exceeds STL limit")
	}
	var buf [stlHeaderSize]byte
	putSTLHeader(buf[:], uint32(nt))
	n, err := w.Write(buf[:])
	if err != nil {
		return n, err
	} else if n != len(buf) {
		return n, io.ErrShortWrite
	}
	var facet stlFacet
	for _, tri := range m {
		facet = stlFacet{normal: ms3.Unit(tri.Normal()), tri: tri}
		facet.put(buf[:stlTriangleSize])
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != stlTriangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// ReadBinarySTL decodes a binary STL stream. Facets with non-finite data or
// degenerate geometry are rejected. When stored normals disagree with the
// winding the mesh is still returned together with ErrNormalMismatch, since
// many exporters write sloppy normals. Past a limit of mismatches reading
// stops and no mesh is returned.
func ReadBinarySTL(r io.Reader) (Mesh, error) {
	var head [stlHeaderSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("mesh: EOF while reading STL header")
		}
		return nil, fmt.Errorf("mesh: STL header: %w", err)
	}
	count := binary.LittleEndian.Uint32(head[80:])
	if count == 0 {
		return nil, ErrEmpty
	}
	var (
		buf        [stlTriangleSize]byte
		facet      stlFacet
		mismatches int
		m          = make(Mesh, 0, min(int(count), 1<<20))
	)
	for i := 0; i < int(count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("mesh: %d/%d STL triangles read: %w", i, count, err)
		}
		facet.get(buf[:])
		err := facet.validate()
		if errors.Is(err, ErrNormalMismatch) {
			mismatches++
			if mismatches > maxNormalMismatches {
				return nil, fmt.Errorf("mesh: STL triangle %d: %w", i, ErrTooManyMismatches)
			}
		} else if err != nil {
			return nil, fmt.Errorf("mesh: STL triangle %d: %w", i, err)
		}
		m = append(m, facet.tri)
	}
	if mismatches > 0 {
		return m, ErrNormalMismatch
	}
	return m, nil
}

func putSTLHeader(b []byte, count uint32) {
	_ = b[stlHeaderSize-1] // early bounds check
	clear(b[:80])
	binary.LittleEndian.PutUint32(b[80:], count)
}

// stlFacet is one binary STL record: normal, three vertices and an
// attribute byte count that is written as zero and ignored on read.
type stlFacet struct {
	normal ms3.Vec
	tri    ms3.Triangle
}

func (f *stlFacet) put(b []byte) {
	_ = b[stlTriangleSize-1]
	putVec(b, f.normal)
	putVec(b[12:], f.tri[0])
	putVec(b[24:], f.tri[1])
	putVec(b[36:], f.tri[2])
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (f *stlFacet) get(b []byte) {
	_ = b[stlTriangleSize-1]
	f.normal = getVec(b)
	f.tri[0] = getVec(b[12:])
	f.tri[1] = getVec(b[24:])
	f.tri[2] = getVec(b[36:])
}

func (f *stlFacet) validate() error {
	const (
		degenerateTol = 1e-12
		normalTol     = 5e-2
	)
	if !finite(f.normal) {
		return errors.New("inf/NaN normal")
	}
	if !finite(f.tri[0]) || !finite(f.tri[1]) || !finite(f.tri[2]) {
		return errors.New("inf/NaN vertex")
	}
	if f.tri.IsDegenerate(degenerateTol) {
		return errors.New("degenerate triangle")
	}
	if f.normal == (ms3.Vec{}) {
		// Zero normals are allowed by the format: readers recompute them.
		return nil
	}
	// Scale up before crossing so tiny facets keep a usable normal.
	e1 := ms3.Scale(10, ms3.Sub(f.tri[1], f.tri[0]))
	e2 := ms3.Scale(10, ms3.Sub(f.tri[2], f.tri[0]))
	calc := ms3.Unit(ms3.Cross(e1, e2))
	if !ms3.EqualElem(calc, f.normal, normalTol) && !ms3.EqualElem(ms3.Scale(-1, calc), f.normal, normalTol) {
		return ErrNormalMismatch
	}
	return nil
}

func putVec(b []byte, v ms3.Vec) {
	_ = b[11]
	binary.LittleEndian.PutUint32(b, math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	_ = b[11]
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func finite(v ms3.Vec) bool {
	return !(math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0))
}
