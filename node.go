package sg

import (
	"sync"
	"sync/atomic"
)

// Node is a vertex of the scene graph.
//
// Concrete nodes embed NodeBase, call InitNode from their constructor and
// implement the handler interfaces of the actions they respond to. A node
// that implements no handler for an action is traversed as a leaf, or as a
// plain group when it implements Parent.
type Node interface {
	// Base returns the embedded NodeBase.
	Base() *NodeBase

	// DoAction runs the node's behavior for a. Actions call it through
	// Action.Traverse, which keeps the current path.
	DoAction(a Action)
}

// Parent is a node with ordered children.
type Parent interface {
	Node
	Children() []Node
}

// RenderHandler is implemented by nodes that respond to RenderAction.
type RenderHandler interface {
	Render(a *RenderAction)
}

// BoundingBoxHandler is implemented by nodes that respond to
// BoundingBoxAction.
type BoundingBoxHandler interface {
	BoundingBox(a *BoundingBoxAction)
}

// PickHandler is implemented by nodes that respond to PickAction.
type PickHandler interface {
	Pick(a *PickAction)
}

// PrimitiveCountHandler is implemented by nodes that respond to
// PrimitiveCountAction.
type PrimitiveCountHandler interface {
	CountPrimitives(a *PrimitiveCountAction)
}

// Toucher is implemented by nodes that react when a descendant changed.
type Toucher interface {
	ChildTouched()
}

// StateIsolator is implemented by nodes whose traversal leaves no element
// written outside themselves, such as separators and shapes. Path
// traversal skips them when they are off the path.
type StateIsolator interface {
	IsolatesState() bool
}

var nodeIDs atomic.Uint64

// NodeBase carries the state shared by every node: identity, name,
// override flag, change counter and parent links.
type NodeBase struct {
	id       uint64
	self     Node
	override atomic.Bool
	version  atomic.Uint64

	mu      sync.Mutex
	name    string
	parents []Node
}

// InitNode assigns the node its identity. Constructors call it once with
// the concrete node.
func (b *NodeBase) InitNode(self Node) {
	b.id = nodeIDs.Add(1)
	b.self = self
}

// Base returns b.
func (b *NodeBase) Base() *NodeBase { return b }

// Self returns the concrete node b is embedded in.
func (b *NodeBase) Self() Node { return b.self }

// ID returns the process-unique node id.
func (b *NodeBase) ID() uint64 { return b.id }

// Name returns the node name, or "".
func (b *NodeBase) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// Override reports whether the node locks the elements it writes.
func (b *NodeBase) Override() bool { return b.override.Load() }

// SetOverride sets the override flag. While set, the elements the node
// writes cannot be changed by nodes below it that lack the flag.
func (b *NodeBase) SetOverride(on bool) {
	if b.override.Swap(on) != on {
		b.Touch()
	}
}

// Version returns the change counter incremented by Touch.
func (b *NodeBase) Version() uint64 { return b.version.Load() }

// Touch records that the node changed. Every ancestor that implements
// Toucher is notified, so separators drop the caches that include the
// node.
func (b *NodeBase) Touch() {
	b.version.Add(1)
	seen := map[*NodeBase]bool{b: true}
	b.notifyParents(seen)
}

func (b *NodeBase) notifyParents(seen map[*NodeBase]bool) {
	for _, p := range b.Parents() {
		pb := p.Base()
		if seen[pb] {
			continue
		}
		seen[pb] = true
		pb.version.Add(1)
		if t, ok := p.(Toucher); ok {
			t.ChildTouched()
		}
		pb.notifyParents(seen)
	}
}

// Parents returns the nodes that hold b as a child.
func (b *NodeBase) Parents() []Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Node, len(b.parents))
	copy(out, b.parents)
	return out
}

func (b *NodeBase) addParent(p Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parents = append(b.parents, p)
}

// removeParent drops one link to p; a node added twice to the same group
// keeps the other link.
func (b *NodeBase) removeParent(p Node) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, q := range b.parents {
		if q == p {
			b.parents = append(b.parents[:i], b.parents[i+1:]...)
			return
		}
	}
}

// DoAction dispatches a to the concrete node.
func (b *NodeBase) DoAction(a Action) {
	a.Visit(b.self)
}

// isolates reports whether n leaves no state behind.
func isolates(n Node) bool {
	if _, ok := n.(Shape); ok {
		return true
	}
	si, ok := n.(StateIsolator)
	return ok && si.IsolatesState()
}

// field is a node property guarded for concurrent readers.
type field[T any] struct {
	mu sync.RWMutex
	v  T
}

func (f *field[T]) get() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v
}

func (f *field[T]) set(v T) {
	f.mu.Lock()
	f.v = v
	f.mu.Unlock()
}
