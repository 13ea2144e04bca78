package sg

import (
	"math"
	"slices"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

// PickedPoint is one intersection of the pick ray with a shape.
type PickedPoint struct {
	// Point is the world-space intersection.
	Point linear.Vec3
	// Normal is the world-space surface normal, or zero for lines,
	// points and bounding-box picks.
	Normal linear.Vec3
	// Distance is measured along the ray from its origin.
	Distance float64
	// Path leads from the root to the shape.
	Path *Path
}

// Node returns the picked shape.
func (p *PickedPoint) Node() Node { return p.Path.Tail() }

var pickKinds = []Kind{
	ModelMatrixKind, ViewingMatrixKind, ProjectionMatrixKind, ViewportKind,
	CoordinateKind, ClipPlaneKind, ComplexityKind, PickStyleKind,
	SwitchKind, OverrideKind, MaterialBindingKind, NormalBindingKind,
}

// PickAction intersects a ray with the shapes of a graph. The ray is
// given in world space with SetRay, or as a viewport pixel with
// SetPoint, in which case it is derived from the camera in effect at
// each shape.
type PickAction struct {
	ActionBase

	ray    linear.Line
	hasRay bool
	px, py int

	hits   []*PickedPoint
	culled int
}

// NewPickAction creates a pick action.
func NewPickAction(opts ...ActionOption) *PickAction {
	a := &PickAction{}
	a.InitAction(a, kindSet(pickKinds...), opts...)
	return a
}

// SetRay sets a world-space pick ray.
func (a *PickAction) SetRay(l linear.Line) {
	a.ray = l
	a.ray.Dir = a.ray.Dir.Normalize()
	a.hasRay = true
}

// SetPoint sets the pick ray through pixel (x, y) of the viewport, with
// y growing downwards.
func (a *PickAction) SetPoint(x, y int) {
	a.px, a.py = x, y
	a.hasRay = false
}

// BeginApply resets the hits and sets the viewport.
func (a *PickAction) BeginApply(s *State) {
	a.hits = a.hits[:0]
	a.culled = 0
	if a.opts.viewport != nil {
		SetViewport(s, nil, viewportFor(*a.opts.viewport, a.opts.device))
	}
}

// EndApply sorts the hits by distance.
func (a *PickAction) EndApply(*State) {
	slices.SortStableFunc(a.hits, func(x, y *PickedPoint) int {
		switch {
		case x.Distance < y.Distance:
			return -1
		case x.Distance > y.Distance:
			return 1
		}
		return 0
	})
	if !a.opts.pickAll && len(a.hits) > 1 {
		a.hits = a.hits[:1]
	}
}

// Hits returns the hits of the last Apply, nearest first. Without
// WithPickAll it holds at most the nearest hit.
func (a *PickAction) Hits() []*PickedPoint { return a.hits }

// Picked returns the nearest hit, or nil.
func (a *PickAction) Picked() *PickedPoint {
	if len(a.hits) == 0 {
		return nil
	}
	return a.hits[0]
}

// Culled returns how many separators were skipped by their bounding box.
func (a *PickAction) Culled() int { return a.culled }

// Visit dispatches n to its pick handler.
func (a *PickAction) Visit(n Node) {
	switch v := n.(type) {
	case PickHandler:
		v.Pick(a)
	case Shape:
		a.pickShape(v)
	default:
		a.ActionBase.Visit(n)
	}
}

// Ray returns the world-space pick ray for the current state.
func (a *PickAction) Ray() linear.Line {
	if a.hasRay {
		return a.ray
	}
	s := a.State()
	vp := CurrentViewport(s)
	if vp.Width <= 0 || vp.Height <= 0 {
		return linear.Line{Dir: linear.V3(0, 0, -1)}
	}
	x := 2*(float64(a.px-vp.X)+0.5)/float64(vp.Width) - 1
	y := 1 - 2*(float64(a.py-vp.Y)+0.5)/float64(vp.Height)
	inv, ok := ProjectionMatrix(s).Mul(ViewingMatrix(s)).Inverse()
	if !ok {
		return linear.Line{Origin: linear.V3(x, y, 0), Dir: linear.V3(0, 0, -1)}
	}
	near := inv.MulVec4(linear.Vec4{x, y, -1, 1}).Vec3()
	far := inv.MulVec4(linear.Vec4{x, y, 1, 1}).Vec3()
	return linear.NewLine(near, far)
}

// AddHit records a hit at the current path. Custom handlers call it with
// their intersections.
func (a *PickAction) AddHit(point, normal linear.Vec3, distance float64) {
	a.hits = append(a.hits, &PickedPoint{
		Point:    point,
		Normal:   normal,
		Distance: distance,
		Path:     a.CurPath().Copy(),
	})
	if a.opts.stopAtFirst {
		a.Abort()
	}
}

// rayMayHit reports whether the ray passes within the pick radius of box.
// canCull reports whether r may be tested against the current ray. A
// pixel ray changes below a camera, so it cannot cull r when r contains
// one.
func (a *PickAction) canCull(r BoundingBoxResult) bool {
	return a.hasRay || !r.HasCamera()
}

func (a *PickAction) rayMayHit(box linear.Box3) bool {
	if box.IsEmpty() {
		return false
	}
	r := a.opts.pickRadius
	grown := linear.Box3{Min: box.Min.Sub(linear.V3(r, r, r)), Max: box.Max.Add(linear.V3(r, r, r))}
	_, ok := grown.IntersectRay(a.Ray())
	return ok
}

func (a *PickAction) pickShape(sh Shape) {
	s := a.State()
	mode := CurrentPickStyle(s)
	if mode == PickUnpickable {
		return
	}
	p := sh.Primitives(s)
	if p == nil || len(p.Positions) == 0 {
		return
	}
	ray := a.Ray()
	m := ModelMatrix(s)
	world := worldPositions(p, m)
	planes := ClipPlanes(s)

	best := math.Inf(1)
	var bestNormal linear.Vec3
	consider := func(t float64, n linear.Vec3) {
		if t < 0 || t >= best || clipped(planes, ray.PointAt(t)) {
			return
		}
		best, bestNormal = t, n
	}

	if mode == PickBoundingBox {
		box := linear.EmptyBox()
		for _, v := range world {
			box = box.ExtendBy(v)
		}
		if t, ok := box.IntersectRay(ray); ok {
			consider(t, linear.Vec3{})
		}
	} else {
		r := a.opts.pickRadius
		switch p.Mode {
		case recording.Triangles:
			for i := 0; i+2 < len(world); i += 3 {
				if t, ok := rayTriangle(ray, world[i], world[i+1], world[i+2]); ok {
					n := world[i+1].Sub(world[i]).Cross(world[i+2].Sub(world[i])).Normalize()
					consider(t, n)
				}
			}
		case recording.Lines:
			for i := 0; i+1 < len(world); i += 2 {
				if d, t := raySegment(ray, world[i], world[i+1]); d <= r {
					consider(t, linear.Vec3{})
				}
			}
		case recording.Points:
			for _, v := range world {
				t := v.Sub(ray.Origin).Dot(ray.Dir)
				if t >= 0 && ray.PointAt(t).Sub(v).Length() <= r {
					consider(t, linear.Vec3{})
				}
			}
		}
	}
	if !math.IsInf(best, 1) {
		a.AddHit(ray.PointAt(best), bestNormal, best)
	}
}

func clipped(planes []ActivePlane, p linear.Vec3) bool {
	for _, cp := range planes {
		if cp.Plane.Distance(p) < 0 {
			return true
		}
	}
	return false
}

// rayTriangle intersects a ray with a triangle (Möller–Trumbore) and
// returns the ray parameter of the hit.
func rayTriangle(l linear.Line, v0, v1, v2 linear.Vec3) (float64, bool) {
	const eps = 1e-12
	e1, e2 := v1.Sub(v0), v2.Sub(v0)
	p := l.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	tv := l.Origin.Sub(v0)
	u := tv.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := tv.Cross(e1)
	v := l.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	return t, t >= 0
}

// raySegment returns the distance between a ray and segment ab and the
// ray parameter of the closest point.
func raySegment(l linear.Line, a, b linear.Vec3) (dist, t float64) {
	u, v, w := l.Dir, b.Sub(a), l.Origin.Sub(a)
	uu, uv, vv := u.Dot(u), u.Dot(v), v.Dot(v)
	uw, vw := u.Dot(w), v.Dot(w)

	var sc, tc float64
	if den := uu*vv - uv*uv; den > 1e-12 {
		tc = (uu*vw - uv*uw) / den
	} else if vv > 0 {
		tc = vw / vv
	}
	tc = min(max(tc, 0), 1)
	sc = max((tc*uv-uw)/uu, 0)
	return l.PointAt(sc).Sub(a.Add(v.Mul(tc))).Length(), sc
}
