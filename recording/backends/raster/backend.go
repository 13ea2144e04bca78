// Package raster provides a software raster backend for the recording
// system. It renders draw commands to an *image.RGBA using
// golang.org/x/image/vector.
//
// The raster backend serves multiple purposes:
//   - Reference implementation for other backends
//   - Pixel comparison testing of render caches
//   - Headless rendering for the sgdemo CLI
//
// # Supported Features
//
//   - Triangles, lines and points
//   - Flat shading with a headlight and per-vertex colors
//   - World-space clip planes
//   - PNG output
//
// # Limitations
//
// Hidden surfaces are removed with the painter's algorithm: all
// primitives of a frame are sorted back to front at End and rasterized
// in that order. Shaders and textures are accepted and ignored.
//
// # Example
//
//	// Import to register the backend
//	import _ "github.com/gogpu/sg/recording/backends/raster"
//
//	// Create via registry
//	backend, _ := recording.NewBackend("raster")
//
//	// Or create directly
//	backend := raster.NewBackend()
//
//	// Playback recording
//	rec.Playback(backend)
//
//	// Get output
//	backend.SavePNG("output.png")
//	img := backend.Image()
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"sort"

	"golang.org/x/image/vector"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

func init() {
	recording.Register("raster", func() recording.Backend {
		return NewBackend()
	})
}

// Backend renders draw commands to a pixel image.
// It implements recording.Backend, recording.WriterBackend,
// recording.FileBackend, and recording.ImageBackend interfaces.
type Backend struct {
	width, height int
	img           *image.RGBA
	background    linear.RGBA

	view, proj linear.Mat4
	model      linear.Mat4
	material   recording.Material
	style      recording.DrawStyle
	clip       []linear.Plane

	// frags collects the frame's primitives until End sorts them.
	frags []fragment
	z     *vector.Rasterizer
}

// fragment is one projected primitive ready for rasterization.
type fragment struct {
	pts   []screenPoint
	mode  recording.Mode
	size  float32
	depth float64
	color color.RGBA
}

type screenPoint struct{ x, y float32 }

// Ensure Backend implements all required interfaces.
var (
	_ recording.Backend       = (*Backend)(nil)
	_ recording.WriterBackend = (*Backend)(nil)
	_ recording.FileBackend   = (*Backend)(nil)
	_ recording.ImageBackend  = (*Backend)(nil)
)

// NewBackend creates a new raster backend with a black background.
// The backend must be initialized with Begin before use.
func NewBackend() *Backend {
	return &Backend{background: linear.Black}
}

// SetBackground sets the color the image is cleared to by Begin.
func (b *Backend) SetBackground(c linear.RGBA) {
	b.background = c
}

// Begin initializes the backend for rendering at the given dimensions.
func (b *Backend) Begin(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	b.width, b.height = width, height
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(b.background.Color()), image.Point{}, draw.Src)

	b.view, b.proj, b.model = linear.Identity(), linear.Identity(), linear.Identity()
	b.material = recording.Material{Diffuse: linear.Gray, Lit: true}
	b.style = recording.DrawStyle{Mode: recording.FillSolid, LineWidth: 1, PointSize: 1}
	b.clip = nil
	b.frags = b.frags[:0]
	if b.z == nil {
		b.z = vector.NewRasterizer(width, height)
	} else {
		b.z.Reset(width, height)
	}
	return nil
}

// End sorts the collected primitives back to front and rasterizes them.
func (b *Backend) End() error {
	if b.img == nil {
		return fmt.Errorf("raster: End without Begin")
	}
	sort.SliceStable(b.frags, func(i, j int) bool {
		return b.frags[i].depth > b.frags[j].depth
	})
	for i := range b.frags {
		b.rasterize(&b.frags[i])
	}
	b.frags = b.frags[:0]
	return nil
}

// Features implements recording.Backend.
func (b *Backend) Features() recording.Features {
	return recording.Features(0).With(recording.FeatureClipPlanes).With(recording.FeatureLighting)
}

// SetCamera implements recording.Backend.
func (b *Backend) SetCamera(view, projection linear.Mat4) {
	b.view, b.proj = view, projection
}

// SetModelMatrix implements recording.Backend.
func (b *Backend) SetModelMatrix(m linear.Mat4) { b.model = m }

// SetMaterial implements recording.Backend.
func (b *Backend) SetMaterial(m recording.Material) { b.material = m }

// SetDrawStyle implements recording.Backend.
func (b *Backend) SetDrawStyle(s recording.DrawStyle) { b.style = s }

// SetClipPlanes implements recording.Backend.
func (b *Backend) SetClipPlanes(planes []linear.Plane) {
	b.clip = append(b.clip[:0], planes...)
}

// BindShader is accepted and ignored.
func (b *Backend) BindShader(*recording.Shader) {}

// BindTexture is accepted and ignored.
func (b *Backend) BindTexture(image.Image) {}

// Draw projects p and queues its primitives for End.
func (b *Backend) Draw(p *recording.Primitives) {
	if b.img == nil || p == nil {
		return
	}
	mode := p.Mode
	switch {
	case b.style.Mode == recording.FillPoints:
		mode = recording.Points
	case b.style.Mode == recording.FillLines && mode == recording.Triangles:
		b.drawTriangleEdges(p)
		return
	}

	stride := 1
	switch mode {
	case recording.Triangles:
		stride = 3
	case recording.Lines:
		stride = 2
	}
	for i := 0; i+stride <= len(p.Positions); i += stride {
		b.queue(p, mode, i, stride)
	}
}

func (b *Backend) drawTriangleEdges(p *recording.Primitives) {
	edges := &recording.Primitives{Mode: recording.Lines}
	for i := 0; i+3 <= len(p.Positions); i += 3 {
		for _, e := range [3][2]int{{0, 1}, {1, 2}, {2, 0}} {
			edges.Positions = append(edges.Positions, p.Positions[i+e[0]], p.Positions[i+e[1]])
			if len(p.Colors) == len(p.Positions) {
				edges.Colors = append(edges.Colors, p.Colors[i+e[0]], p.Colors[i+e[1]])
			}
		}
	}
	saved := b.style.Mode
	b.style.Mode = recording.FillSolid
	b.Draw(edges)
	b.style.Mode = saved
}

// queue projects the primitive starting at vertex i.
func (b *Backend) queue(p *recording.Primitives, mode recording.Mode, i, n int) {
	mvp := b.proj.Mul(b.view).Mul(b.model)
	f := fragment{mode: mode, pts: make([]screenPoint, 0, n)}
	world := make([]linear.Vec3, n)
	for k := 0; k < n; k++ {
		world[k] = b.model.MulPoint(p.Positions[i+k])
		for _, pl := range b.clip {
			if pl.Distance(world[k]) < 0 {
				return
			}
		}
		clip := mvp.MulVec4(p.Positions[i+k].Vec4(1))
		if clip[3] <= 0 {
			return
		}
		ndc := clip.Vec3()
		f.depth += ndc.Z() / float64(n)
		f.pts = append(f.pts, screenPoint{
			x: float32((ndc.X() + 1) / 2 * float64(b.width)),
			y: float32((1 - ndc.Y()) / 2 * float64(b.height)),
		})
	}

	base := b.material.Diffuse
	if len(p.Colors) == len(p.Positions) {
		base = p.Colors[i]
	}
	c := base
	if b.material.Lit && mode == recording.Triangles {
		c = b.shade(base, world, p, i)
	}
	c.A = base.A * (1 - b.material.Transparency)
	f.color = toRGBA(c)

	switch mode {
	case recording.Lines:
		f.size = float32(max(b.style.LineWidth, 1))
	case recording.Points:
		f.size = float32(max(b.style.PointSize, 1))
	}
	b.frags = append(b.frags, f)
}

// shade applies a headlight to a triangle.
func (b *Backend) shade(base linear.RGBA, world []linear.Vec3, p *recording.Primitives, i int) linear.RGBA {
	var n linear.Vec3
	if len(p.Normals) == len(p.Positions) {
		n = b.model.MulDir(p.Normals[i]).Add(b.model.MulDir(p.Normals[i+1])).Add(b.model.MulDir(p.Normals[i+2]))
	} else {
		n = world[1].Sub(world[0]).Cross(world[2].Sub(world[0]))
	}
	eyeN := b.view.MulDir(n).Normalize()
	diffuse := max(eyeN.Z(), -eyeN.Z())
	m := b.material
	lit := m.Emissive.Add(m.Ambient.Scale(0.2)).Add(base.Scale(diffuse))
	lit.A = base.A
	return lit
}

func (b *Backend) rasterize(f *fragment) {
	z := b.z
	z.Reset(b.width, b.height)
	z.DrawOp = draw.Over
	switch f.mode {
	case recording.Triangles:
		z.MoveTo(f.pts[0].x, f.pts[0].y)
		z.LineTo(f.pts[1].x, f.pts[1].y)
		z.LineTo(f.pts[2].x, f.pts[2].y)
		z.ClosePath()
	case recording.Lines:
		thickLine(z, f.pts[0], f.pts[1], f.size)
	case recording.Points:
		h := f.size / 2
		pt := f.pts[0]
		z.MoveTo(pt.x-h, pt.y-h)
		z.LineTo(pt.x+h, pt.y-h)
		z.LineTo(pt.x+h, pt.y+h)
		z.LineTo(pt.x-h, pt.y+h)
		z.ClosePath()
	}
	z.Draw(b.img, b.img.Bounds(), image.NewUniform(f.color), image.Point{})
}

// thickLine adds a quad of width w around the segment a-b.
func thickLine(z *vector.Rasterizer, a, b screenPoint, w float32) {
	dx, dy := b.x-a.x, b.y-a.y
	l := float32(linear.V3(float64(dx), float64(dy), 0).Length())
	if l == 0 {
		return
	}
	nx, ny := -dy/l*w/2, dx/l*w/2
	z.MoveTo(a.x+nx, a.y+ny)
	z.LineTo(b.x+nx, b.y+ny)
	z.LineTo(b.x-nx, b.y-ny)
	z.LineTo(a.x-nx, a.y-ny)
	z.ClosePath()
}

func toRGBA(c linear.RGBA) color.RGBA {
	return color.RGBAModel.Convert(c.Color()).(color.RGBA)
}

// WriteTo writes the rendered content as PNG to the given writer.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	if b.img == nil {
		return 0, fmt.Errorf("raster: no image")
	}
	cw := &countingWriter{w: w}
	err := png.Encode(cw, b.img)
	return cw.n, err
}

// SaveToFile saves the rendered content as PNG to a file.
func (b *Backend) SaveToFile(path string) error {
	return b.SavePNG(path)
}

// SavePNG is a convenience method to save the image as PNG.
func (b *Backend) SavePNG(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = b.WriteTo(f)
	return err
}

// Image returns the rendered image, or nil before Begin.
func (b *Backend) Image() *image.RGBA {
	return b.img
}

// Width returns the backend width.
func (b *Backend) Width() int {
	return b.width
}

// Height returns the backend height.
func (b *Backend) Height() int {
	return b.height
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
