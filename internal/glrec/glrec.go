// Package glrec implements a figure3d.FrameGL that records every call made to it
// and tracks the matrix stack depth per mode.
package glrec

import (
	"fmt"
	"strings"

	"github.com/soypat/figure3d"
)

// Call is a single recorded GL call.
type Call struct {
	Op   string
	Args []float64
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Op + "(" + strings.Join(args, ",") + ")"
}

// Recorder is a figure3d.GL that records calls. The zero value is ready to
// use and starts in modelview mode like a fresh GL context.
type Recorder struct {
	Calls []Call
	mode  figure3d.MatrixMode
	depth map[figure3d.MatrixMode]int
	// MaxDepth is the deepest stack depth reached per mode.
	MaxDepth map[figure3d.MatrixMode]int
	// Underflows counts PopMatrix calls on an empty stack.
	Underflows int
}

var _ figure3d.FrameGL = (*Recorder)(nil)

func (r *Recorder) rec(op string, args ...float64) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

// Mode returns the current matrix mode.
func (r *Recorder) Mode() figure3d.MatrixMode {
	if r.mode == 0 {
		return figure3d.ModelView
	}
	return r.mode
}

// Depth returns the number of pushed matrices of mode not yet popped.
func (r *Recorder) Depth(mode figure3d.MatrixMode) int { return r.depth[mode] }

// Count returns how many times op was called.
func (r *Recorder) Count(op string) (n int) {
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset forgets all recorded calls. Stack depths are kept.
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

func (r *Recorder) MatrixMode(mode figure3d.MatrixMode) {
	r.mode = mode
	r.rec("MatrixMode", float64(mode))
}

func (r *Recorder) PushMatrix() {
	if r.depth == nil {
		r.depth = make(map[figure3d.MatrixMode]int)
		r.MaxDepth = make(map[figure3d.MatrixMode]int)
	}
	m := r.Mode()
	r.depth[m]++
	if r.depth[m] > r.MaxDepth[m] {
		r.MaxDepth[m] = r.depth[m]
	}
	r.rec("PushMatrix", float64(m))
}

func (r *Recorder) PopMatrix() {
	m := r.Mode()
	if r.depth[m] == 0 {
		r.Underflows++
	} else {
		r.depth[m]--
	}
	r.rec("PopMatrix", float64(m))
}

func (r *Recorder) LoadIdentity() { r.rec("LoadIdentity", float64(r.Mode())) }
func (r *Recorder) Scaled(x, y, z float64) { r.rec("Scaled", x, y, z) }
func (r *Recorder) Color3d(cr, cg, cb float64) { r.rec("Color3d", cr, cg, cb) }
func (r *Recorder) Begin(mode figure3d.Primitive) { r.rec("Begin", float64(mode)) }
func (r *Recorder) End() { r.rec("End") }
func (r *Recorder) BindTexture(name uint32) { r.rec("BindTexture", float64(name)) }
func (r *Recorder) Enable(c figure3d.Capability) { r.rec("Enable", float64(c)) }
func (r *Recorder) Disable(c figure3d.Capability) { r.rec("Disable", float64(c)) }

func (r *Recorder) Normal3f(x, y, z float32) {
	r.rec("Normal3f", float64(x), float64(y), float64(z))
}

func (r *Recorder) TexCoord2f(s, t float32) {
	r.rec("TexCoord2f", float64(s), float64(t))
}

func (r *Recorder) Vertex3f(x, y, z float32) {
	r.rec("Vertex3f", float64(x), float64(y), float64(z))
}

func (r *Recorder) MultMatrixd(m *[16]float64) { r.rec("MultMatrixd", append([]float64(nil), m[:]...)...) }
func (r *Recorder) Clear(mask figure3d.ClearMask) { r.rec("Clear", float64(mask)) }

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.rec("ClearColor", float64(cr), float64(cg), float64(cb), float64(ca))
}
