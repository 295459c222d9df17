// Package mesh holds triangle meshes of figures drawn in front of a sky
// backdrop and reads and writes them as binary STL.
package mesh

import (
	"bufio"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Mesh is a triangle soup with counter-clockwise front faces.
type Mesh []ms3.Triangle

// Bounds returns the axis aligned box enclosing every vertex of m.
// The box of an empty mesh is the zero box.
func (m Mesh) Bounds() ms3.Box {
	if len(m) == 0 {
		return ms3.Box{}
	}
	inf := math32.Inf(1)
	bb := ms3.Box{
		Min: ms3.Vec{X: inf, Y: inf, Z: inf},
		Max: ms3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
	for _, tri := range m {
		for _, v := range tri {
			bb.Min = ms3.MinElem(bb.Min, v)
			bb.Max = ms3.MaxElem(bb.Max, v)
		}
	}
	return bb
}

// Load reads a binary STL file. A mesh with mismatched stored normals is
// accepted since normals are recomputed when drawing.
func Load(path string) (Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	m, err := ReadBinarySTL(bufio.NewReader(fp))
	if err != nil && err != ErrNormalMismatch {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Save writes m to path as binary STL.
func Save(path string, m Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fp)
	_, err = WriteBinarySTL(w, m)
	if err == nil {
		err = w.Flush()
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}
