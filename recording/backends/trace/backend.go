// Package trace provides a backend that logs every draw call as one line
// of text. It is used by the sgdemo CLI to show what a traversal emitted
// and by tests that compare cached and uncached output.
//
// # Example
//
//	import _ "github.com/gogpu/sg/recording/backends/trace"
//
//	b := trace.NewBackend(os.Stdout)
//	rec.Playback(b)
package trace

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

func init() {
	recording.Register("trace", func() recording.Backend {
		return NewBackend(nil)
	})
}

// Backend records a textual trace of the calls it receives.
// It implements recording.Backend and recording.WriterBackend.
type Backend struct {
	lines []string
	out   io.Writer
	err   error
}

var (
	_ recording.Backend       = (*Backend)(nil)
	_ recording.WriterBackend = (*Backend)(nil)
)

// NewBackend creates a trace backend. When out is not nil every line is
// also written to it as it is produced.
func NewBackend(out io.Writer) *Backend {
	return &Backend{out: out}
}

// Lines returns the trace of the last frame.
func (b *Backend) Lines() []string { return b.lines }

// String returns the trace joined by newlines.
func (b *Backend) String() string { return strings.Join(b.lines, "\n") }

func (b *Backend) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	b.lines = append(b.lines, line)
	if b.out != nil && b.err == nil {
		_, b.err = fmt.Fprintln(b.out, line)
	}
}

// Begin starts a new frame and clears the trace.
func (b *Backend) Begin(width, height int) error {
	b.lines = b.lines[:0]
	b.err = nil
	b.logf("Begin %dx%d", width, height)
	return nil
}

// End finishes the frame. It reports the first write error, if any.
func (b *Backend) End() error {
	b.logf("End")
	return b.err
}

// Features reports every feature, since a trace loses nothing.
func (b *Backend) Features() recording.Features { return ^recording.Features(0) }

// SetCamera implements recording.Backend.
func (b *Backend) SetCamera(view, projection linear.Mat4) {
	b.logf("SetCamera eye=%s", fmtVec(eyeOf(view)))
}

// SetModelMatrix implements recording.Backend.
func (b *Backend) SetModelMatrix(m linear.Mat4) {
	if m.IsIdentity() {
		b.logf("SetModelMatrix identity")
		return
	}
	b.logf("SetModelMatrix t=%s", fmtVec(m.Translation()))
}

// SetMaterial implements recording.Backend.
func (b *Backend) SetMaterial(m recording.Material) {
	b.logf("SetMaterial diffuse=%s lit=%t", fmtColor(m.Diffuse), m.Lit)
}

// SetDrawStyle implements recording.Backend.
func (b *Backend) SetDrawStyle(s recording.DrawStyle) {
	mode := [...]string{"solid", "lines", "points"}
	name := "?"
	if int(s.Mode) < len(mode) {
		name = mode[s.Mode]
	}
	b.logf("SetDrawStyle %s width=%g size=%g", name, s.LineWidth, s.PointSize)
}

// SetClipPlanes implements recording.Backend.
func (b *Backend) SetClipPlanes(planes []linear.Plane) {
	b.logf("SetClipPlanes n=%d", len(planes))
}

// BindShader implements recording.Backend.
func (b *Backend) BindShader(s *recording.Shader) {
	if s == nil {
		b.logf("BindShader none")
		return
	}
	b.logf("BindShader %s key=%016x", s.Label, s.Key)
}

// BindTexture implements recording.Backend.
func (b *Backend) BindTexture(img image.Image) {
	if img == nil {
		b.logf("BindTexture none")
		return
	}
	r := img.Bounds()
	b.logf("BindTexture %dx%d", r.Dx(), r.Dy())
}

// Draw implements recording.Backend.
func (b *Backend) Draw(p *recording.Primitives) {
	b.logf("Draw %s n=%d", p.Mode, p.Count())
}

// WriteTo writes the trace of the last frame.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.String()+"\n")
	return int64(n), err
}

func eyeOf(view linear.Mat4) linear.Vec3 {
	inv, ok := view.Inverse()
	if !ok {
		return linear.Vec3{}
	}
	return inv.Translation()
}

func fmtVec(v linear.Vec3) string {
	return fmt.Sprintf("(%.3g,%.3g,%.3g)", v.X(), v.Y(), v.Z())
}

func fmtColor(c linear.RGBA) string {
	return fmt.Sprintf("rgb(%.2f,%.2f,%.2f)", c.R, c.G, c.B)
}
