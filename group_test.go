package sg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGroupRejectsCycles(t *testing.T) {
	inner := NewGroup()
	outer := NewGroup(NewSeparator(inner))

	assert.Panics(t, func() { inner.AddChild(outer) })
	assert.Panics(t, func() { inner.AddChild(inner) })
	assert.Panics(t, func() { inner.AddChild(nil) })
	assert.Equal(t, 0, inner.NumChildren())
}

func TestGroupEditingMaintainsParents(t *testing.T) {
	a, b, c := NewCube(1, 1, 1), NewSphere(1), NewMaterial()
	g := NewGroup(a, b)

	g.InsertChild(c, 1)
	assert.Equal(t, []Node{a, c, b}, g.Children())
	assert.Equal(t, []Node{g}, c.Parents())

	old := g.ReplaceChild(0, b)
	assert.Equal(t, a, old)
	assert.Empty(t, a.Parents())
	assert.Len(t, b.Parents(), 2, "a node added twice keeps both links")

	assert.True(t, g.RemoveNode(b))
	assert.Equal(t, []Node{c, b}, g.Children())
	assert.Len(t, b.Parents(), 1)
	assert.False(t, g.RemoveNode(a))

	g.RemoveAllChildren()
	assert.Zero(t, g.NumChildren())
	assert.Empty(t, b.Parents())
	assert.Empty(t, c.Parents())
}

func TestTouchPropagatesToAncestors(t *testing.T) {
	mat := NewMaterial()
	sep := NewSeparator(mat, NewCube(2, 2, 2))
	root := NewGroup(sep)

	BoundingBox(root, WithCachePolicy(AlwaysCache()))
	_, valid := sep.BoundingBoxCache().Output()
	require.True(t, valid)

	rootVersion, sepVersion := root.Version(), sep.Version()
	mat.Touch()
	assert.Greater(t, sep.Version(), sepVersion)
	assert.Greater(t, root.Version(), rootVersion)
	_, valid = sep.BoundingBoxCache().Output()
	assert.False(t, valid, "touching a child drops the separator caches")
}

func TestEditingChildrenInvalidatesSeparator(t *testing.T) {
	sep := NewSeparator(NewCube(2, 2, 2))
	BoundingBox(sep, WithCachePolicy(AlwaysCache()))
	_, valid := sep.BoundingBoxCache().Output()
	require.True(t, valid)

	sep.AddChild(NewSphere(1))
	_, valid = sep.BoundingBoxCache().Output()
	assert.False(t, valid)
}

func TestPathBuilding(t *testing.T) {
	cube := NewCube(1, 1, 1)
	sep := NewSeparator(NewMaterial(), cube)
	root := NewGroup(NewCamera(Perspective), sep)

	p := NewPath(root).Append(1).AppendNode(cube)
	require.Equal(t, 3, p.Len())
	assert.Equal(t, root, p.Head())
	assert.Equal(t, cube, p.Tail())
	assert.Equal(t, sep, p.Node(1))
	assert.Equal(t, []int{-1, 1, 1}, []int{p.Index(0), p.Index(1), p.Index(2)})
	assert.True(t, p.Contains(sep))
	assert.Equal(t, fmt.Sprintf("Group#%d/Separator#%d/Cube#%d", root.ID(), sep.ID(), cube.ID()), p.String())

	q := p.Copy()
	assert.True(t, p.Equal(q))
	q.Truncate(2)
	assert.False(t, p.Equal(q))
	assert.Equal(t, 3, p.Len(), "copies are independent")
	assert.Equal(t, sep, q.Tail())

	assert.Panics(t, func() { NewPath(root).Append(5) })
	assert.Panics(t, func() { NewPath(cube).Append(0) })
	assert.Panics(t, func() { NewPath(root).AppendNode(cube) })

	empty := NewPath(nil)
	assert.Nil(t, empty.Head())
	assert.Nil(t, empty.Tail())
}

func TestPathDistinguishesSharedOccurrences(t *testing.T) {
	shared := NewCube(1, 1, 1)
	root := NewGroup(shared, shared)
	first := NewPath(root).Append(0)
	second := NewPath(root).Append(1)
	assert.False(t, first.Equal(second))
	assert.Equal(t, first.Tail(), second.Tail())
}

func TestNodeNames(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"  spaced  ", "spaced"},
		{"3d view", "_3d_view"},
		{"a-b.c", "a_b_c"},
		{"café", "café"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanName(tt.in), "cleanName(%q)", tt.in)
	}

	n := NewCube(1, 1, 1)
	name := fmt.Sprintf("box_%d", n.ID())
	assert.Equal(t, name, n.SetName(fmt.Sprintf("box %d", n.ID())))
	assert.Equal(t, name, n.Name())

	got, ok := NodeByName(name)
	require.True(t, ok)
	assert.Equal(t, Node(n), got)

	m := NewSphere(1)
	m.SetName(name)
	assert.Len(t, NodesByName(name), 2)
	got, _ = NodeByName(name)
	assert.Equal(t, Node(m), got, "the latest node wins")

	n.SetName("")
	assert.Equal(t, []Node{m}, NodesByName(name))
	_, ok = NodeByName("no such node")
	assert.False(t, ok)
	assert.Equal(t, fmt.Sprintf("Cube#%d", n.ID()), describe(n))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Separator", TypeName(NewSeparator()))
	assert.Equal(t, "leaf", TypeName(newLeaf()))
}

// TestConcurrentRenderAndPick renders and picks one shared graph from
// many goroutines, each render in its own context.
func TestConcurrentRenderAndPick(t *testing.T) {
	root, _, _ := testScene()
	want := NewRenderAction()
	want.Apply(root)
	wantDraws := want.Recording().DrawCount()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		ctx := freshContext(t)
		g.Go(func() error {
			a := NewRenderAction(WithContextID(ctx), WithCachePolicy(AlwaysCache()))
			for j := 0; j < 20; j++ {
				a.Apply(root)
				if got := a.Recording().DrawCount(); got != wantDraws {
					return fmt.Errorf("render %d/%d: %d draws, want %d", i, j, got, wantDraws)
				}
			}
			return nil
		})
		g.Go(func() error {
			p := NewPickAction(WithPickAll())
			p.SetPoint(320, 240)
			for j := 0; j < 20; j++ {
				p.Apply(root)
				if len(p.Hits()) == 0 {
					return fmt.Errorf("pick %d/%d: no hit", i, j)
				}
			}
			return nil
		})
		g.Go(func() error {
			for j := 0; j < 20; j++ {
				if BoundingBox(root).IsEmpty() {
					return fmt.Errorf("bbox %d/%d: empty", i, j)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
