package sg

import (
	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

// PrimitiveCounts holds the number of primitives a graph draws.
type PrimitiveCounts struct {
	Triangles int
	Lines     int
	Points    int
}

var countKinds = []Kind{
	CoordinateKind, DrawStyleKind, ComplexityKind, SwitchKind, OverrideKind,
	MaterialBindingKind, NormalBindingKind,
}

// PrimitiveCountAction counts the primitives shapes would draw, honoring
// the draw style: a triangle drawn as lines counts three lines.
type PrimitiveCountAction struct {
	ActionBase

	counts PrimitiveCounts
}

// NewPrimitiveCountAction creates a primitive count action.
func NewPrimitiveCountAction(opts ...ActionOption) *PrimitiveCountAction {
	a := &PrimitiveCountAction{}
	a.InitAction(a, kindSet(countKinds...), opts...)
	return a
}

// BeginApply resets the counts.
func (a *PrimitiveCountAction) BeginApply(*State) { a.counts = PrimitiveCounts{} }

// EndApply does nothing.
func (a *PrimitiveCountAction) EndApply(*State) {}

// Counts returns the counts of the last Apply.
func (a *PrimitiveCountAction) Counts() PrimitiveCounts { return a.counts }

// Add adds counts from a custom handler.
func (a *PrimitiveCountAction) Add(c PrimitiveCounts) {
	a.counts.Triangles += c.Triangles
	a.counts.Lines += c.Lines
	a.counts.Points += c.Points
}

// Visit dispatches n to its count handler.
func (a *PrimitiveCountAction) Visit(n Node) {
	switch v := n.(type) {
	case PrimitiveCountHandler:
		v.CountPrimitives(a)
	case Shape:
		a.countShape(v)
	default:
		a.ActionBase.Visit(n)
	}
}

func (a *PrimitiveCountAction) countShape(sh Shape) {
	s := a.State()
	style := CurrentDrawStyle(s)
	if style == StyleInvisible {
		return
	}
	p := sh.Primitives(s)
	if p == nil {
		return
	}
	n := p.Count()
	switch p.Mode {
	case recording.Triangles:
		switch style {
		case StyleLines:
			a.counts.Lines += 3 * n
		case StylePoints:
			a.counts.Points += 3 * n
		default:
			a.counts.Triangles += n
		}
	case recording.Lines:
		if style == StylePoints {
			a.counts.Points += 2 * n
		} else {
			a.counts.Lines += n
		}
	case recording.Points:
		a.counts.Points += n
	}
}

// CallbackResult tells a CallbackAction how to continue after a
// callback.
type CallbackResult uint8

const (
	// Continue traverses the node normally.
	Continue CallbackResult = iota
	// Prune skips the node. Post callbacks still run.
	Prune
	// Abort stops the traversal.
	Abort
)

// CallbackFunc is called by a CallbackAction for matching nodes.
type CallbackFunc func(a *CallbackAction, n Node) CallbackResult

// TriangleFunc receives one world-space triangle of a shape.
type TriangleFunc func(a *CallbackAction, n Node, v0, v1, v2 linear.Vec3)

type callbackEntry struct {
	match func(Node) bool
	fn    CallbackFunc
}

// CallbackAction calls user functions before and after visiting nodes,
// and can deliver the triangles of every shape in world space.
type CallbackAction struct {
	ActionBase

	pre, post []callbackEntry
	triangles []TriangleFunc
}

// NewCallbackAction creates a callback action. All registered kinds are
// enabled.
func NewCallbackAction(opts ...ActionOption) *CallbackAction {
	a := &CallbackAction{}
	a.InitAction(a, allKinds(), opts...)
	return a
}

// AddPreCallback registers fn to run before every node is visited.
func (a *CallbackAction) AddPreCallback(fn CallbackFunc) {
	a.pre = append(a.pre, callbackEntry{fn: fn})
}

// AddPostCallback registers fn to run after every node is visited.
func (a *CallbackAction) AddPostCallback(fn CallbackFunc) {
	a.post = append(a.post, callbackEntry{fn: fn})
}

// AddTriangleCallback registers fn to receive shape triangles.
func (a *CallbackAction) AddTriangleCallback(fn TriangleFunc) {
	a.triangles = append(a.triangles, fn)
}

// PreCallbackFor registers fn to run before visiting nodes of type T.
func PreCallbackFor[T Node](a *CallbackAction, fn CallbackFunc) {
	a.pre = append(a.pre, callbackEntry{match: isType[T], fn: fn})
}

// PostCallbackFor registers fn to run after visiting nodes of type T.
func PostCallbackFor[T Node](a *CallbackAction, fn CallbackFunc) {
	a.post = append(a.post, callbackEntry{match: isType[T], fn: fn})
}

func isType[T Node](n Node) bool {
	_, ok := n.(T)
	return ok
}

func (a *CallbackAction) run(entries []callbackEntry, n Node) CallbackResult {
	res := Continue
	for _, e := range entries {
		if e.match != nil && !e.match(n) {
			continue
		}
		switch e.fn(a, n) {
		case Abort:
			a.Abort()
			return Abort
		case Prune:
			res = Prune
		}
	}
	return res
}

// Visit runs the callbacks around the generic behavior of n.
func (a *CallbackAction) Visit(n Node) {
	switch a.run(a.pre, n) {
	case Abort:
		return
	case Continue:
		if sh, ok := n.(Shape); ok {
			a.shapeTriangles(sh)
		} else {
			a.ActionBase.Visit(n)
		}
	}
	if !a.HasTerminated() {
		a.run(a.post, n)
	}
}

func (a *CallbackAction) shapeTriangles(sh Shape) {
	if len(a.triangles) == 0 {
		return
	}
	s := a.State()
	p := sh.Primitives(s)
	if p == nil || p.Mode != recording.Triangles {
		return
	}
	world := worldPositions(p, ModelMatrix(s))
	for i := 0; i+2 < len(world); i += 3 {
		for _, fn := range a.triangles {
			fn(a, sh, world[i], world[i+1], world[i+2])
		}
	}
}
