package sg

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/sg/linear"
)

// visitLog returns a callback action that records every node it enters.
func visitLog() (*CallbackAction, *[]Node) {
	var seen []Node
	a := NewCallbackAction()
	a.AddPreCallback(func(_ *CallbackAction, n Node) CallbackResult {
		seen = append(seen, n)
		return Continue
	})
	return a, &seen
}

func TestApplyPathVisitsPathAndLeftState(t *testing.T) {
	a := NewMaterial()
	sepX := NewSeparator(NewCube(1, 1, 1))
	m2 := NewMaterial()
	cubeY := NewCube(1, 1, 1)
	offGroup := NewGroup(m2, cubeY)
	b := NewDrawStyle(StyleLines)
	target := NewCube(1, 1, 1)
	after := NewCube(1, 1, 1)
	mid := NewGroup(b, target, after)
	c := NewComplexity(0.1)
	root := NewGroup(a, sepX, offGroup, mid, c)

	act, seen := visitLog()
	var style Style
	PreCallbackFor[*Cube](act, func(cb *CallbackAction, n Node) CallbackResult {
		if n == target {
			style = CurrentDrawStyle(cb.State())
		}
		return Continue
	})

	p := NewPath(root).AppendNode(mid).AppendNode(target)
	act.ApplyPath(p)

	assert.Equal(t, []Node{root, a, offGroup, m2, mid, b, target}, *seen)
	assert.Equal(t, StyleLines, style, "state left by off-path siblings reaches the tail")
}

func TestApplyPathTraversesBelowTail(t *testing.T) {
	inner := NewCube(1, 1, 1)
	sep := NewSeparator(NewTranslation(1, 0, 0), inner)
	root := NewGroup(NewCube(1, 1, 1), sep)

	act, seen := visitLog()
	act.ApplyPath(NewPath(root).Append(1))
	assert.Equal(t, []Node{root, sep, sep.Child(0), inner}, *seen)

	var codes []PathCode
	act2 := NewCallbackAction()
	act2.AddPreCallback(func(cb *CallbackAction, _ Node) CallbackResult {
		code, _ := cb.PathCode()
		codes = append(codes, code)
		return Continue
	})
	act2.ApplyPath(NewPath(root).Append(1))
	assert.Equal(t, []PathCode{InPath, BelowPath, BelowPath, BelowPath}, codes)

	act2.Apply(root)
	for _, code := range codes[4:] {
		assert.Equal(t, NoPath, code)
	}
}

func TestPathModeSkipsCaches(t *testing.T) {
	cb, visits := counter()
	sep := NewSeparator(cb, NewCube(1, 1, 1))
	sep.SetCacheMode(CacheOn)
	root := NewGroup(sep)
	ctx := freshContext(t)

	a := NewRenderAction(WithContextID(ctx))
	a.Apply(root)
	a.Apply(root)
	require.Equal(t, 1, *visits)

	a.ApplyPath(NewPath(root).Append(0).Append(0))
	assert.Equal(t, 2, *visits, "a path traversal that ends inside a separator cannot replay it")
	assert.Equal(t, 0, a.Replays())
}

func TestCallbackActionTriangles(t *testing.T) {
	root := NewGroup(NewTranslation(0, 0, 5), NewCube(2, 2, 2))
	a := NewCallbackAction()
	var n int
	box := linear.EmptyBox()
	a.AddTriangleCallback(func(_ *CallbackAction, _ Node, v0, v1, v2 linear.Vec3) {
		n++
		box = box.ExtendBy(v0).ExtendBy(v1).ExtendBy(v2)
	})
	a.Apply(root)

	assert.Equal(t, 12, n)
	assert.True(t, box.Min.ApproxEqual(linear.V3(-1, -1, 4), 1e-9))
	assert.True(t, box.Max.ApproxEqual(linear.V3(1, 1, 6), 1e-9))
}

func TestCallbackActionPruneAndAbort(t *testing.T) {
	pruned := NewSeparator(NewCube(1, 1, 1))
	root := NewGroup(pruned, NewCube(1, 1, 1), NewCube(1, 1, 1))

	a := NewCallbackAction()
	var tris, posts int
	a.AddTriangleCallback(func(*CallbackAction, Node, linear.Vec3, linear.Vec3, linear.Vec3) { tris++ })
	PreCallbackFor[*Separator](a, func(*CallbackAction, Node) CallbackResult { return Prune })
	PostCallbackFor[*Separator](a, func(*CallbackAction, Node) CallbackResult {
		posts++
		return Continue
	})
	a.Apply(root)
	assert.Equal(t, 24, tris)
	assert.Equal(t, 1, posts, "post callbacks run for pruned nodes")

	tris = 0
	a.AddPreCallback(func(_ *CallbackAction, n Node) CallbackResult {
		if n == root.Child(2) {
			return Abort
		}
		return Continue
	})
	a.Apply(root)
	assert.Equal(t, 12, tris)
	assert.True(t, a.HasTerminated())
}

func TestPrimitiveCounts(t *testing.T) {
	tests := []struct {
		name string
		root Node
		want PrimitiveCounts
	}{
		{"cube", NewCube(1, 1, 1), PrimitiveCounts{Triangles: 12}},
		{"cube as lines", NewGroup(NewDrawStyle(StyleLines), NewCube(1, 1, 1)), PrimitiveCounts{Lines: 36}},
		{"cube as points", NewGroup(NewDrawStyle(StylePoints), NewCube(1, 1, 1)), PrimitiveCounts{Points: 36}},
		{"invisible", NewGroup(NewDrawStyle(StyleInvisible), NewCube(1, 1, 1)), PrimitiveCounts{}},
		{
			"line set",
			NewGroup(NewCoordinate3(linear.V3(0, 0, 0), linear.V3(1, 0, 0), linear.V3(1, 1, 0)), NewLineSet(3)),
			PrimitiveCounts{Lines: 2},
		},
		{
			"face set",
			NewGroup(NewCoordinate3(linear.V3(0, 0, 0), linear.V3(1, 0, 0), linear.V3(1, 1, 0), linear.V3(0, 1, 0)), NewFaceSet(4)),
			PrimitiveCounts{Triangles: 2},
		},
		{
			"separated style",
			NewGroup(NewSeparator(NewDrawStyle(StyleLines)), NewCube(1, 1, 1)),
			PrimitiveCounts{Triangles: 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewPrimitiveCountAction()
			a.Apply(tt.root)
			assert.Equal(t, tt.want, a.Counts())
		})
	}
}

func TestSwitchSelection(t *testing.T) {
	sw := NewSwitch(NewCube(1, 1, 1), NewGroup(NewDrawStyle(StyleLines), NewCube(1, 1, 1)))
	count := func() PrimitiveCounts {
		a := NewPrimitiveCountAction()
		a.Apply(sw)
		return a.Counts()
	}

	assert.Equal(t, PrimitiveCounts{}, count(), "no child by default")
	sw.SetWhichChild(0)
	assert.Equal(t, PrimitiveCounts{Triangles: 12}, count())
	sw.SetWhichChild(1)
	assert.Equal(t, PrimitiveCounts{Lines: 36}, count())
	sw.SetWhichChild(SwitchAll)
	assert.Equal(t, PrimitiveCounts{Triangles: 12, Lines: 36}, count())
	sw.SetWhichChild(7)
	assert.Equal(t, PrimitiveCounts{}, count())
}

func TestSwitchInherit(t *testing.T) {
	inner := NewSwitch(NewCube(1, 1, 1), NewGroup(NewDrawStyle(StylePoints), NewCube(1, 1, 1)))
	inner.SetWhichChild(SwitchInherit)
	outer := NewSwitch(NewCube(1, 1, 1), inner)
	outer.SetWhichChild(1)

	a := NewPrimitiveCountAction()
	a.Apply(outer)
	assert.Equal(t, PrimitiveCounts{Points: 36}, a.Counts(), "the inner switch follows the outer selection")

	a = NewPrimitiveCountAction()
	a.Apply(inner)
	assert.Equal(t, PrimitiveCounts{}, a.Counts(), "inheriting at the root selects nothing")
}

func TestBoundingBox(t *testing.T) {
	root := NewGroup(NewTranslation(1, 0, 0), NewCube(2, 2, 2))
	a := NewBoundingBoxAction()
	a.Apply(root)
	assert.True(t, a.Box().Min.ApproxEqual(linear.V3(0, -1, -1), 1e-9))
	assert.True(t, a.Box().Max.ApproxEqual(linear.V3(2, 1, 1), 1e-9))
	assert.True(t, a.Center().ApproxEqual(linear.V3(1, 0, 0), 1e-9))

	assert.True(t, BoundingBox(NewSwitch(NewCube(1, 1, 1))).IsEmpty())
}

func TestBoundingBoxCache(t *testing.T) {
	xf := NewTranslation(0, 0, 0)
	sep := NewSeparator(NewCube(2, 2, 2), NewSeparator(NewTranslation(3, 0, 0), NewSphere(1)))
	root := NewGroup(xf, sep)
	opts := []ActionOption{WithCachePolicy(AlwaysCache())}

	first := BoundingBox(root, opts...)
	second := BoundingBox(root, opts...)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), sep.BoundingBoxCache().Builds())

	xf.SetTranslation(linear.V3(0, 5, 0))
	moved := BoundingBox(root, opts...)
	assert.InDelta(t, first.Min.Y()+5, moved.Min.Y(), 1e-9)
	assert.Equal(t, uint64(2), sep.BoundingBoxCache().Builds())

	uncached := BoundingBox(root, WithCachePolicy(NeverCache()))
	assert.Equal(t, moved, uncached)
}

func TestSearchAction(t *testing.T) {
	hidden := NewCube(1, 1, 1)
	hidden.SetName("hidden")
	named := NewSphere(1)
	named.SetName("ball")
	sw := NewSwitch(hidden)
	shared := NewCube(1, 1, 1)
	root := NewGroup(NewSeparator(shared, named), sw, NewGroup(shared))

	a := NewSearchAction()
	a.SetName("ball").Apply(root)
	require.NotNil(t, a.Path())
	assert.Same(t, named, a.Path().Tail())
	assert.Equal(t, 3, a.Path().Len())

	a.Reset()
	a.SetNode(hidden).Apply(root)
	assert.Nil(t, a.Path(), "unselected switch children are not searched")
	a.SetSearchingAll(true).Apply(root)
	require.NotNil(t, a.Path())
	assert.Same(t, sw, a.Path().Node(1))

	a.Reset()
	SearchType[*Cube](a).SetInterest(SearchAll).Apply(root)
	assert.Len(t, a.Paths(), 2, "the shared cube is found through both parents")

	a.Reset()
	a.SetNode(shared).SetInterest(SearchLast).Apply(root)
	require.NotNil(t, a.Path())
	assert.Equal(t, 2, a.Path().Index(1))

	a.Reset()
	a.Apply(root)
	assert.Empty(t, a.Paths(), "a search without criteria finds nothing")
}

func TestWriteOutline(t *testing.T) {
	shared := NewCube(1, 1, 1)
	shared.SetName("box")
	anon := NewMaterial()
	root := NewGroup(NewSeparator(shared, anon), NewSeparator(shared, anon))
	root.SetName("root")

	w := NewWriteAction()
	w.Apply(root)
	out := w.Outline()
	require.Len(t, out, 7)

	assert.Equal(t, OutlineEntry{Depth: 0, Type: "Group", Name: "root", Children: 2}, out[0])
	assert.Equal(t, "DEF box", out[2].Label)
	assert.Equal(t, "DEF Material_"+strconv.FormatUint(anon.ID(), 10), out[3].Label)
	assert.Equal(t, "USE box", out[5].Label)
	assert.Equal(t, 2, out[5].Depth)
	assert.Contains(t, w.String(), "    USE box Cube")
	assert.Contains(t, w.String(), `DEF box Cube "box"`)

	data, err := w.YAML()
	require.NoError(t, err)
	var back []OutlineEntry
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, out, back)
}

func TestReentrantApplyPanics(t *testing.T) {
	a := NewRenderAction()
	root := NewGroup(NewCallback(func(Action) { a.Apply(NewGroup()) }))
	requireContract(t, ErrReentrantApply, func() { a.Apply(root) })

	a.Apply(NewCube(1, 1, 1))
	assert.Equal(t, 1, a.Draws(), "the action is usable after the violation")
}

func TestDisabledKindsPerAction(t *testing.T) {
	root := NewGroup(NewDrawStyle(StyleLines), NewCube(1, 1, 1))
	a := NewPrimitiveCountAction(WithEnabledKinds(CoordinateKind))
	a.Apply(root)
	assert.Equal(t, PrimitiveCounts{Triangles: 12}, a.Counts(), "the draw style kind is disabled")
}
