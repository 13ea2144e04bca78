package sg

import (
	"math"
	"slices"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

// Shape is a node that produces geometry. Actions handle shapes
// uniformly through Primitives: rendering draws them, bounding-box and
// pick actions transform them by the model matrix.
//
// Primitives reads the elements the geometry depends on from s, so caches
// open around the shape record those dependencies. The returned
// primitives are in object space and must not be retained by the caller.
type Shape interface {
	Node
	Primitives(s *State) *recording.Primitives
}

// colorAt returns the diffuse color for the given part and vertex under
// binding b, and whether per-primitive colors are in use at all.
func colorAt(m MaterialProps, b Binding, part, vertex int) (linear.RGBA, bool) {
	switch b {
	case BindPerPart, BindPerPartIndexed, BindPerFace, BindPerFaceIndexed:
		return m.DiffuseAt(part), true
	case BindPerVertex, BindPerVertexIndexed:
		return m.DiffuseAt(vertex), true
	}
	return linear.RGBA{}, false
}

// Cube is an axis-aligned box centered at the origin.
type Cube struct {
	NodeBase

	size field[linear.Vec3]
}

// NewCube creates a cube with the given width, height and depth.
func NewCube(width, height, depth float64) *Cube {
	c := &Cube{}
	c.InitNode(c)
	c.size.set(linear.V3(width, height, depth))
	return c
}

// Size returns width, height and depth.
func (c *Cube) Size() linear.Vec3 { return c.size.get() }

// SetSize changes the dimensions.
func (c *Cube) SetSize(width, height, depth float64) {
	c.size.set(linear.V3(width, height, depth))
	c.Touch()
}

// cubeFaces lists the corners of each face of the unit cube,
// counter-clockwise seen from outside.
var cubeFaces = [6]struct {
	normal  linear.Vec3
	corners [4]linear.Vec3
}{
	{linear.V3(1, 0, 0), [4]linear.Vec3{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
	{linear.V3(-1, 0, 0), [4]linear.Vec3{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
	{linear.V3(0, 1, 0), [4]linear.Vec3{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
	{linear.V3(0, -1, 0), [4]linear.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
	{linear.V3(0, 0, 1), [4]linear.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
	{linear.V3(0, 0, -1), [4]linear.Vec3{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
}

// Primitives returns 12 triangles.
func (c *Cube) Primitives(s *State) *recording.Primitives {
	half := c.Size().Mul(0.5)
	binding := CurrentMaterialBinding(s)
	var mat MaterialProps
	if binding != BindOverall {
		mat = CurrentMaterial(s)
	}

	p := &recording.Primitives{Mode: recording.Triangles}
	for f, face := range cubeFaces {
		for _, corner := range [6]int{0, 1, 2, 0, 2, 3} {
			v := face.corners[corner]
			p.Positions = append(p.Positions, linear.V3(v[0]*half[0], v[1]*half[1], v[2]*half[2]))
			p.Normals = append(p.Normals, face.normal)
			if col, ok := colorAt(mat, binding, f, f*4+corner); ok {
				p.Colors = append(p.Colors, col)
			}
		}
	}
	return p
}

// Sphere is a sphere centered at the origin, tessellated according to
// the current complexity.
type Sphere struct {
	NodeBase

	radius field[float64]
}

// NewSphere creates a sphere.
func NewSphere(radius float64) *Sphere {
	sp := &Sphere{}
	sp.InitNode(sp)
	sp.radius.set(radius)
	return sp
}

// Radius returns the radius.
func (sp *Sphere) Radius() float64 { return sp.radius.get() }

// SetRadius changes the radius.
func (sp *Sphere) SetRadius(r float64) {
	sp.radius.set(r)
	sp.Touch()
}

// sphereStacks maps complexity in [0,1] to a stack count.
func sphereStacks(complexity float64) int {
	return 4 + int(math.Round(complexity*28))
}

// Primitives returns a latitude/longitude tessellation.
func (sp *Sphere) Primitives(s *State) *recording.Primitives {
	r := sp.Radius()
	stacks := sphereStacks(CurrentComplexity(s))
	slicesN := 2 * stacks
	binding := CurrentMaterialBinding(s)
	var mat MaterialProps
	if binding != BindOverall {
		mat = CurrentMaterial(s)
	}

	point := func(i, j int) linear.Vec3 {
		theta := math.Pi * float64(i) / float64(stacks)
		phi := 2 * math.Pi * float64(j) / float64(slicesN)
		return linear.V3(math.Sin(theta)*math.Sin(phi), math.Cos(theta), math.Sin(theta)*math.Cos(phi))
	}

	p := &recording.Primitives{Mode: recording.Triangles}
	emit := func(n linear.Vec3, vertex int) {
		p.Positions = append(p.Positions, n.Mul(r))
		p.Normals = append(p.Normals, n)
		if col, ok := colorAt(mat, binding, 0, vertex); ok {
			p.Colors = append(p.Colors, col)
		}
	}
	for i := 0; i < stacks; i++ {
		for j := 0; j < slicesN; j++ {
			a, b := point(i, j), point(i+1, j)
			c, d := point(i+1, j+1), point(i, j+1)
			if i > 0 {
				emit(a, len(p.Positions))
				emit(b, len(p.Positions))
				emit(d, len(p.Positions))
			}
			if i < stacks-1 {
				emit(d, len(p.Positions))
				emit(b, len(p.Positions))
				emit(c, len(p.Positions))
			}
		}
	}
	return p
}

// FaceSet draws polygons from the current coordinates. Each entry of
// NumVertices consumes that many consecutive coordinates starting at
// StartIndex; polygons are triangulated as fans.
type FaceSet struct {
	NodeBase

	start field[int]
	num   field[[]int]
}

// NewFaceSet creates a face set.
func NewFaceSet(numVertices ...int) *FaceSet {
	fs := &FaceSet{}
	fs.InitNode(fs)
	fs.num.set(slices.Clone(numVertices))
	return fs
}

// StartIndex returns the first coordinate used.
func (fs *FaceSet) StartIndex() int { return fs.start.get() }

// SetStartIndex changes the first coordinate used.
func (fs *FaceSet) SetStartIndex(i int) {
	fs.start.set(i)
	fs.Touch()
}

// NumVertices returns the vertex count of each face.
func (fs *FaceSet) NumVertices() []int { return slices.Clone(fs.num.get()) }

// SetNumVertices changes the faces.
func (fs *FaceSet) SetNumVertices(n ...int) {
	fs.num.set(slices.Clone(n))
	fs.Touch()
}

// Primitives triangulates the faces.
func (fs *FaceSet) Primitives(s *State) *recording.Primitives {
	coords := Coordinates(s)
	normals := Normals(s)
	nb := CurrentNormalBinding(s)
	mb := CurrentMaterialBinding(s)
	var mat MaterialProps
	if mb != BindOverall {
		mat = CurrentMaterial(s)
	}

	p := &recording.Primitives{Mode: recording.Triangles}
	vi := fs.StartIndex()
	for face, n := range fs.num.get() {
		if vi+n > len(coords) {
			break
		}
		if n >= 3 {
			faceNormal := coords[vi+1].Sub(coords[vi]).Cross(coords[vi+2].Sub(coords[vi])).Normalize()
			for k := 1; k < n-1; k++ {
				for _, idx := range [3]int{vi, vi + k, vi + k + 1} {
					p.Positions = append(p.Positions, coords[idx])
					p.Normals = append(p.Normals, pickNormal(normals, nb, face, idx, faceNormal))
					if col, ok := colorAt(mat, mb, face, idx); ok {
						p.Colors = append(p.Colors, col)
					}
				}
			}
		}
		vi += n
	}
	return p
}

// pickNormal returns the normal for a vertex under binding b, falling
// back to the face normal when too few normals are supplied.
func pickNormal(normals []linear.Vec3, b Binding, face, vertex int, faceNormal linear.Vec3) linear.Vec3 {
	i := -1
	switch b {
	case BindOverall:
		i = 0
	case BindPerPart, BindPerPartIndexed, BindPerFace, BindPerFaceIndexed:
		i = face
	case BindPerVertex, BindPerVertexIndexed:
		i = vertex
	}
	if i >= 0 && i < len(normals) {
		return normals[i]
	}
	return faceNormal
}

// LineSet draws polylines from the current coordinates.
type LineSet struct {
	NodeBase

	start field[int]
	num   field[[]int]
}

// NewLineSet creates a line set; each entry of numVertices is the vertex
// count of one polyline.
func NewLineSet(numVertices ...int) *LineSet {
	ls := &LineSet{}
	ls.InitNode(ls)
	ls.num.set(slices.Clone(numVertices))
	return ls
}

// SetStartIndex changes the first coordinate used.
func (ls *LineSet) SetStartIndex(i int) {
	ls.start.set(i)
	ls.Touch()
}

// NumVertices returns the vertex count of each polyline.
func (ls *LineSet) NumVertices() []int { return slices.Clone(ls.num.get()) }

// Primitives returns one line segment per polyline edge.
func (ls *LineSet) Primitives(s *State) *recording.Primitives {
	coords := Coordinates(s)
	mb := CurrentMaterialBinding(s)
	var mat MaterialProps
	if mb != BindOverall {
		mat = CurrentMaterial(s)
	}

	p := &recording.Primitives{Mode: recording.Lines}
	vi := ls.start.get()
	for part, n := range ls.num.get() {
		if vi+n > len(coords) {
			break
		}
		for k := 0; k+1 < n; k++ {
			for _, idx := range [2]int{vi + k, vi + k + 1} {
				p.Positions = append(p.Positions, coords[idx])
				if col, ok := colorAt(mat, mb, part, idx); ok {
					p.Colors = append(p.Colors, col)
				}
			}
		}
		vi += n
	}
	return p
}

// PointSet draws points from the current coordinates.
type PointSet struct {
	NodeBase

	start field[int]
	num   field[int]
}

// NewPointSet creates a point set using numPoints coordinates; -1 uses
// all of them.
func NewPointSet(numPoints int) *PointSet {
	ps := &PointSet{}
	ps.InitNode(ps)
	ps.num.set(numPoints)
	return ps
}

// SetNumPoints changes the point count.
func (ps *PointSet) SetNumPoints(n int) {
	ps.num.set(n)
	ps.Touch()
}

// Primitives returns the points.
func (ps *PointSet) Primitives(s *State) *recording.Primitives {
	coords := Coordinates(s)
	mb := CurrentMaterialBinding(s)
	var mat MaterialProps
	if mb != BindOverall {
		mat = CurrentMaterial(s)
	}

	start := min(ps.start.get(), len(coords))
	end := len(coords)
	if n := ps.num.get(); n >= 0 {
		end = min(start+n, end)
	}
	p := &recording.Primitives{Mode: recording.Points, Positions: slices.Clone(coords[start:end])}
	for i := start; i < end; i++ {
		if col, ok := colorAt(mat, mb, i, i); ok {
			p.Colors = append(p.Colors, col)
		}
	}
	return p
}

// worldPositions returns the positions of p transformed by m.
func worldPositions(p *recording.Primitives, m linear.Mat4) []linear.Vec3 {
	out := make([]linear.Vec3, len(p.Positions))
	for i, v := range p.Positions {
		out[i] = m.MulPoint(v)
	}
	return out
}
