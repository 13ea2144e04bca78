package sg

import (
	"github.com/gogpu/sg/linear"
)

// BoundingBoxResult is the world-space extent of a subgraph, as computed
// by a BoundingBoxAction and stored in separator caches.
type BoundingBoxResult struct {
	Box linear.Box3

	centerSum linear.Vec3
	centers   int
	camera    bool
}

// HasCamera reports whether the subgraph contains a Camera, which
// changes the viewing matrix for the nodes after it.
func (r BoundingBoxResult) HasCamera() bool { return r.camera }

// Center returns the mean of the shape centers, or the box center when
// no shape contributed one.
func (r BoundingBoxResult) Center() linear.Vec3 {
	if r.centers == 0 {
		return r.Box.Center()
	}
	return r.centerSum.Mul(1 / float64(r.centers))
}

func (r BoundingBoxResult) union(o BoundingBoxResult) BoundingBoxResult {
	return BoundingBoxResult{
		Box:       r.Box.Union(o.Box),
		centerSum: r.centerSum.Add(o.centerSum),
		centers:   r.centers + o.centers,
		camera:    r.camera || o.camera,
	}
}

// bboxKinds are the kinds a bounding-box traversal needs.
var bboxKinds = []Kind{
	ModelMatrixKind, CoordinateKind, ComplexityKind, SwitchKind, OverrideKind,
	MaterialBindingKind, NormalBindingKind, ViewportKind,
}

// BoundingBoxAction computes the world-space bounding box of a graph.
type BoundingBoxAction struct {
	ActionBase

	result BoundingBoxResult
}

// NewBoundingBoxAction creates a bounding-box action.
func NewBoundingBoxAction(opts ...ActionOption) *BoundingBoxAction {
	a := &BoundingBoxAction{}
	a.InitAction(a, kindSet(bboxKinds...), opts...)
	return a
}

// BeginApply resets the result.
func (a *BoundingBoxAction) BeginApply(*State) {
	a.result = BoundingBoxResult{Box: linear.EmptyBox()}
}

// EndApply does nothing.
func (a *BoundingBoxAction) EndApply(*State) {}

// Box returns the bounding box of the last Apply.
func (a *BoundingBoxAction) Box() linear.Box3 { return a.result.Box }

// Center returns the center of the last Apply.
func (a *BoundingBoxAction) Center() linear.Vec3 { return a.result.Center() }

// Result returns the full result of the last Apply.
func (a *BoundingBoxAction) Result() BoundingBoxResult { return a.result }

// Visit dispatches n to its bounding-box handler.
func (a *BoundingBoxAction) Visit(n Node) {
	switch v := n.(type) {
	case BoundingBoxHandler:
		v.BoundingBox(a)
	case Shape:
		a.shapeBox(v)
	case *Camera:
		a.result.camera = true
		v.Act(a)
	default:
		a.ActionBase.Visit(n)
	}
}

// ExtendBy adds a world-space box and its center. Custom handlers call
// it with their bounds.
func (a *BoundingBoxAction) ExtendBy(box linear.Box3, center linear.Vec3) {
	if box.IsEmpty() {
		return
	}
	a.result = a.result.union(BoundingBoxResult{Box: box, centerSum: center, centers: 1})
}

func (a *BoundingBoxAction) shapeBox(sh Shape) {
	s := a.State()
	p := sh.Primitives(s)
	if p == nil || len(p.Positions) == 0 {
		return
	}
	m := ModelMatrix(s)
	local := linear.EmptyBox()
	for _, v := range p.Positions {
		local = local.ExtendBy(v)
	}
	a.ExtendBy(local.Transform(m), m.MulPoint(local.Center()))
}

// beginSub starts accumulating a subgraph result and returns the outer
// accumulator.
func (a *BoundingBoxAction) beginSub() BoundingBoxResult {
	outer := a.result
	a.result = BoundingBoxResult{Box: linear.EmptyBox()}
	return outer
}

// endSub merges the subgraph result into outer and returns the subgraph
// result.
func (a *BoundingBoxAction) endSub(outer BoundingBoxResult) BoundingBoxResult {
	sub := a.result
	a.result = outer.union(sub)
	return sub
}

// merge adds a cached subgraph result.
func (a *BoundingBoxAction) merge(r BoundingBoxResult) {
	a.result = a.result.union(r)
}

// BoundingBox returns the bounding box of the graph rooted at root.
func BoundingBox(root Node, opts ...ActionOption) linear.Box3 {
	a := NewBoundingBoxAction(opts...)
	a.Apply(root)
	return a.Box()
}
