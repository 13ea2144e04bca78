package sg

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/sg/internal/ctxbook"
	"github.com/gogpu/sg/recording"
)

// Group is a node with ordered children. Properties set by a child stay
// in effect for the following siblings and after the group.
type Group struct {
	NodeBase

	mu       sync.RWMutex
	children []Node
}

// NewGroup creates a group holding children.
func NewGroup(children ...Node) *Group {
	g := &Group{}
	g.InitNode(g)
	g.AddChildren(children...)
	return g
}

// Children returns a snapshot of the children.
func (g *Group) Children() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, len(g.children))
	copy(out, g.children)
	return out
}

// NumChildren returns the number of children.
func (g *Group) NumChildren() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.children)
}

// Child returns the i-th child.
func (g *Group) Child(i int) Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.children[i]
}

// IndexOf returns the index of the first occurrence of n, or -1.
func (g *Group) IndexOf(n Node) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i, c := range g.children {
		if c == n {
			return i
		}
	}
	return -1
}

// AddChild appends n. It panics if n is nil or an ancestor of the group.
func (g *Group) AddChild(n Node) {
	g.InsertChild(n, -1)
}

// AddChildren appends every node in order.
func (g *Group) AddChildren(nodes ...Node) {
	for _, n := range nodes {
		g.AddChild(n)
	}
}

// InsertChild inserts n before index i; i < 0 or past the end appends.
func (g *Group) InsertChild(n Node, i int) {
	g.checkChild(n)
	g.mu.Lock()
	if i < 0 || i > len(g.children) {
		i = len(g.children)
	}
	g.children = append(g.children, nil)
	copy(g.children[i+1:], g.children[i:])
	g.children[i] = n
	g.mu.Unlock()

	n.Base().addParent(g.Self())
	g.changed()
}

// RemoveChild removes and returns the i-th child.
func (g *Group) RemoveChild(i int) Node {
	g.mu.Lock()
	n := g.children[i]
	g.children = append(g.children[:i], g.children[i+1:]...)
	g.mu.Unlock()

	n.Base().removeParent(g.Self())
	g.changed()
	return n
}

// RemoveNode removes the first occurrence of n and reports whether it
// was found.
func (g *Group) RemoveNode(n Node) bool {
	i := g.IndexOf(n)
	if i < 0 {
		return false
	}
	g.RemoveChild(i)
	return true
}

// RemoveAllChildren removes every child.
func (g *Group) RemoveAllChildren() {
	g.mu.Lock()
	old := g.children
	g.children = nil
	g.mu.Unlock()

	for _, n := range old {
		n.Base().removeParent(g.Self())
	}
	g.changed()
}

// ReplaceChild replaces the i-th child with n and returns the old child.
func (g *Group) ReplaceChild(i int, n Node) Node {
	g.checkChild(n)
	g.mu.Lock()
	old := g.children[i]
	g.children[i] = n
	g.mu.Unlock()

	old.Base().removeParent(g.Self())
	n.Base().addParent(g.Self())
	g.changed()
	return old
}

func (g *Group) checkChild(n Node) {
	if n == nil {
		panic("sg: nil child")
	}
	if n == g.Self() || isAncestor(n, g.Self()) {
		panic(fmt.Sprintf("sg: adding %s to %s would create a cycle", describe(n), describe(g.Self())))
	}
}

// isAncestor reports whether a is an ancestor of n.
func isAncestor(a, n Node) bool {
	seen := map[Node]bool{}
	queue := n.Base().Parents()
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == a {
			return true
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		queue = append(queue, p.Base().Parents()...)
	}
	return false
}

// changed notifies the group itself and its ancestors that the child
// list changed.
func (g *Group) changed() {
	if t, ok := g.Self().(Toucher); ok {
		t.ChildTouched()
	}
	g.Touch()
}

// Act visits every child.
func (g *Group) Act(a Action) {
	a.TraverseChildren(g)
}

// CacheMode selects whether a separator caches its traversal results.
type CacheMode uint8

const (
	// CacheAuto defers the decision to the action's CachePolicy.
	CacheAuto CacheMode = iota
	// CacheOn always caches.
	CacheOn
	// CacheOff never caches.
	CacheOff
)

func (m CacheMode) String() string {
	switch m {
	case CacheAuto:
		return "AUTO"
	case CacheOn:
		return "ON"
	case CacheOff:
		return "OFF"
	}
	return fmt.Sprintf("CacheMode(%d)", m)
}

// Render cache slots in the per-context books.
const (
	slotRender uint32 = iota + 1
)

// renderCache is the book entry holding a separator's render cache for
// one context.
type renderCache struct {
	*Cache[*recording.Recording]
}

// Release invalidates the cache when its book evicts or drops it.
func (r renderCache) Release() error {
	r.Invalidate()
	return nil
}

// Separator is a group that saves the traversal state before visiting its
// children and restores it afterwards, so nothing its children set is
// visible outside it.
//
// Separators are the caching boundaries of the graph. A separator keeps
// one render cache per render context and one bounding-box cache; pick
// traversals skip its children when its valid bounding box misses the
// pick ray.
type Separator struct {
	Group

	mode     field[CacheMode]
	pickCull field[bool]

	bbox *Cache[BoundingBoxResult]

	statsMu     sync.Mutex
	stats       CacheStats
	seenVersion uint64
}

// NewSeparator creates a separator holding children.
func NewSeparator(children ...Node) *Separator {
	s := &Separator{bbox: NewCache[BoundingBoxResult]()}
	s.InitNode(s)
	s.pickCull.set(true)
	s.AddChildren(children...)
	return s
}

// CacheMode returns the caching mode.
func (s *Separator) CacheMode() CacheMode { return s.mode.get() }

// SetCacheMode sets the caching mode.
func (s *Separator) SetCacheMode(m CacheMode) { s.mode.set(m) }

// PickCulling reports whether pick traversals may skip the children.
func (s *Separator) PickCulling() bool { return s.pickCull.get() }

// SetPickCulling enables or disables pick culling.
func (s *Separator) SetPickCulling(on bool) { s.pickCull.set(on) }

// IsolatesState reports true: a separator restores the state on exit.
func (s *Separator) IsolatesState() bool { return true }

// CacheStats returns the statistics the cache policy sees.
func (s *Separator) CacheStats() CacheStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// BoundingBoxCache returns the bounding-box cache.
func (s *Separator) BoundingBoxCache() *Cache[BoundingBoxResult] { return s.bbox }

// RenderCache returns the render cache for a render context, or nil if
// the separator has none there.
func (s *Separator) RenderCache(contextID uint64) *Cache[*recording.Recording] {
	b, ok := ctxbook.Lookup(contextID)
	if !ok {
		return nil
	}
	v, ok := b.Get(ctxbook.Key{Node: s.ID(), Slot: slotRender})
	if !ok {
		return nil
	}
	return v.(renderCache).Cache
}

func (s *Separator) renderCacheFor(contextID uint64) *Cache[*recording.Recording] {
	v := ctxbook.For(contextID).GetOrCreate(ctxbook.Key{Node: s.ID(), Slot: slotRender}, func() any {
		return renderCache{NewCache[*recording.Recording]()}
	})
	return v.(renderCache).Cache
}

// ReleaseCaches drops the separator's caches in every render context.
func (s *Separator) ReleaseCaches() {
	s.bbox.Invalidate()
	ctxbook.ForgetNode(s.ID())
}

// ChildTouched invalidates every cache of the separator.
func (s *Separator) ChildTouched() {
	s.bbox.Invalidate()
	key := ctxbook.Key{Node: s.ID(), Slot: slotRender}
	for _, id := range ctxbook.Contexts() {
		b, ok := ctxbook.Lookup(id)
		if !ok {
			continue
		}
		if v, ok := b.Peek(key); ok {
			v.(renderCache).Invalidate()
		}
	}
	Logger().Debug("sg: separator caches invalidated", "node", describe(s))
}

// useCaches reports whether a may look up caches of s.
func (s *Separator) useCaches(a Action) bool {
	return cacheable(a) && s.CacheMode() != CacheOff
}

// shouldBuild reports whether s builds a cache on this traversal.
func (s *Separator) shouldBuild(a Action) bool {
	st := s.observe()
	switch s.CacheMode() {
	case CacheOn:
		return true
	case CacheOff:
		return false
	}
	return a.Policy().ShouldCache(s, st)
}

// observe counts a traversal that found no valid cache.
func (s *Separator) observe() CacheStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if v := s.Version(); v != s.seenVersion {
		s.seenVersion = v
		s.stats.UntouchedTraversals = 0
	} else {
		s.stats.UntouchedTraversals++
	}
	return s.stats
}

func (s *Separator) noteCost(d time.Duration, built bool) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.LastCost = d
	if built {
		s.stats.Builds++
	}
}

// Act visits the children inside a push/pop bracket.
func (s *Separator) Act(a Action) {
	st := a.State()
	st.Push()
	defer st.Pop()
	a.TraverseChildren(s)
}

// Render draws the children, replaying the render cache of the action's
// context when it is valid.
func (s *Separator) Render(a *RenderAction) {
	st := a.State()
	st.Push()
	defer st.Pop()

	if !s.useCaches(a) {
		a.TraverseChildren(s)
		return
	}
	c := s.renderCacheFor(a.ContextID())
	if rec, ok := c.Lookup(st); ok {
		a.replay(rec)
		return
	}
	if !s.shouldBuild(a) {
		start := time.Now()
		a.TraverseChildren(s)
		s.noteCost(time.Since(start), false)
		return
	}

	start := time.Now()
	c.Begin(st)
	a.beginCapture()
	a.TraverseChildren(s)
	rec := a.endCapture()
	if a.HasTerminated() {
		c.Abandon(st)
	} else {
		c.End(st, rec)
	}
	s.noteCost(time.Since(start), true)
}

// BoundingBox accumulates the bounds of the children, reusing the
// bounding-box cache when it is valid.
func (s *Separator) BoundingBox(a *BoundingBoxAction) {
	st := a.State()
	st.Push()
	defer st.Pop()

	if !s.useCaches(a) {
		a.TraverseChildren(s)
		return
	}
	if res, ok := s.bbox.Lookup(st); ok {
		a.merge(res)
		return
	}
	if !s.shouldBuild(a) {
		a.TraverseChildren(s)
		return
	}

	start := time.Now()
	s.bbox.Begin(st)
	outer := a.beginSub()
	a.TraverseChildren(s)
	res := a.endSub(outer)
	if a.HasTerminated() {
		s.bbox.Abandon(st)
	} else {
		s.bbox.End(st, res)
	}
	s.noteCost(time.Since(start), true)
}

// Pick visits the children unless a valid bounding box shows that the
// pick ray misses them. A ray set with SetPoint follows the camera, so
// separators containing a Camera are never culled for it.
func (s *Separator) Pick(a *PickAction) {
	st := a.State()
	st.Push()
	defer st.Pop()

	if s.PickCulling() && s.useCaches(a) {
		if res, ok := s.bbox.Lookup(st); ok && a.canCull(res) && !a.rayMayHit(res.Box) {
			a.culled++
			return
		}
	}
	a.TraverseChildren(s)
}

// Switch is a group that visits at most one selected child, or all of
// them. The selection is stored in SwitchKind so that a switch set to
// SwitchInherit follows the selection of an enclosing switch.
type Switch struct {
	Group

	which field[int]
}

// NewSwitch creates a switch with no child selected.
func NewSwitch(children ...Node) *Switch {
	sw := &Switch{}
	sw.InitNode(sw)
	sw.which.set(SwitchNone)
	sw.AddChildren(children...)
	return sw
}

// WhichChild returns the selected child index or one of SwitchNone,
// SwitchAll and SwitchInherit.
func (sw *Switch) WhichChild() int { return sw.which.get() }

// SetWhichChild selects a child.
func (sw *Switch) SetWhichChild(i int) {
	sw.which.set(i)
	sw.Touch()
}

// Act visits the selected children.
func (sw *Switch) Act(a Action) {
	st := a.State()
	which := sw.WhichChild()
	if which == SwitchInherit {
		which = SwitchIndex(st)
	} else {
		SetSwitchIndex(st, sw, which)
	}

	switch {
	case visitsAllChildren(a), which == SwitchAll:
		a.TraverseChildren(sw)
	case which >= 0:
		a.TraverseChild(sw, which)
	}
}
