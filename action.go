package sg

import (
	"github.com/RoaringBitmap/roaring"
)

// Action is a traversal of the scene graph for one concern: rendering,
// picking, bounding boxes and so on.
//
// Concrete actions embed ActionBase, call InitAction from their
// constructor and implement Visit to dispatch to their handler
// interfaces. An action is applied by one goroutine at a time; concurrent
// traversals of a shared graph use one action each.
type Action interface {
	// Apply traverses the graph rooted at root.
	Apply(root Node)

	// ApplyPath traverses only the nodes on p and whatever affects them.
	ApplyPath(p *Path)

	// Traverse visits n as the next node of the current path.
	Traverse(n Node)

	// TraverseChildren visits the children of p in order.
	TraverseChildren(p Parent)

	// TraverseChild visits the i-th child of p.
	TraverseChild(p Parent, i int)

	// Visit runs the action's behavior for n. Nodes call it through
	// NodeBase.DoAction.
	Visit(n Node)

	// State returns the traversal state, or nil outside Apply.
	State() *State

	// CurPath returns the path from the root to the node being visited.
	// The path is reused; copy it to keep it.
	CurPath() *Path

	// Abort stops the traversal cooperatively. Nodes already entered
	// unwind normally.
	Abort()

	// HasTerminated reports whether Abort was called during this Apply.
	HasTerminated() bool

	// Policy returns the cache policy for separators in CacheAuto mode.
	Policy() CachePolicy

	// ContextID returns the render context the action works for.
	ContextID() uint64

	// PathCode returns how the node being visited relates to the target
	// path of ApplyPath.
	PathCode() (PathCode, int)
}

// ApplyHooks is implemented by actions that initialize elements before
// the traversal or collect results after it.
type ApplyHooks interface {
	// BeginApply runs on the fresh state at depth 0.
	BeginApply(s *State)

	// EndApply runs after the traversal, before the idle check.
	EndApply(s *State)
}

// Actor is implemented by nodes whose behavior is the same for every
// action without a dedicated handler: property nodes that write elements
// and groups that choose which children to visit.
type Actor interface {
	Act(a Action)
}

// PathCode describes how the node being visited relates to the target
// path of ApplyPath.
type PathCode uint8

const (
	// NoPath means the action was applied to a whole graph.
	NoPath PathCode = iota

	// InPath means the node is on the target path but is not its tail.
	InPath

	// BelowPath means the node is the tail of the target path or one of
	// its descendants, which are traversed entirely.
	BelowPath

	// OffPath means the node lies to the left of the path and is visited
	// only for the state it leaves behind.
	OffPath
)

// exhaustive is implemented by actions that visit every child of a
// switch regardless of its selection.
type exhaustive interface {
	visitsAllChildren() bool
}

func visitsAllChildren(a Action) bool {
	e, ok := a.(exhaustive)
	return ok && e.visitsAllChildren()
}

// ActionBase implements the traversal machinery shared by all actions.
type ActionBase struct {
	self  Action
	opts  actionOptions
	kinds *roaring.Bitmap

	state *State
	path  Path

	target  *Path
	offPath int

	terminated bool
	applying   bool
}

// InitAction prepares a for use. self is the concrete action embedding a,
// defaults its enabled kinds before options are applied.
func (a *ActionBase) InitAction(self Action, defaults *roaring.Bitmap, opts ...ActionOption) {
	a.self = self
	a.opts = defaultActionOptions()
	for _, opt := range opts {
		opt(&a.opts)
	}
	if a.opts.kinds != nil {
		a.kinds = a.opts.kinds.Clone()
	} else {
		a.kinds = defaults.Clone()
	}
	for _, k := range a.opts.extra {
		a.kinds.Add(uint32(k))
	}
}

// EnabledKinds returns a copy of the kinds the action enables.
func (a *ActionBase) EnabledKinds() *roaring.Bitmap { return a.kinds.Clone() }

// Apply traverses the graph rooted at root.
func (a *ActionBase) Apply(root Node) {
	a.apply(root, nil)
}

// ApplyPath traverses the nodes on p. Siblings to the left of the path
// are traversed for their state unless they isolate it; nodes below the
// tail are traversed entirely.
func (a *ActionBase) ApplyPath(p *Path) {
	if p == nil || p.Len() == 0 {
		return
	}
	a.apply(p.Head(), p.Copy())
}

func (a *ActionBase) apply(root Node, target *Path) {
	if a.applying {
		contractViolation("Action.Apply", 0, ErrReentrantApply)
	}
	a.applying = true
	defer func() {
		a.applying = false
		a.state = nil
		a.target = nil
		a.path.Truncate(0)
	}()

	a.state = NewState(a.kinds)
	a.terminated = false
	a.target = target
	a.offPath = 0
	a.path.Truncate(0)

	hooks, _ := a.self.(ApplyHooks)
	if hooks != nil {
		hooks.BeginApply(a.state)
	}
	if root != nil && !a.terminated {
		a.traverseAt(root, -1)
	}
	if hooks != nil {
		hooks.EndApply(a.state)
	}
	a.state.Close()
}

// Traverse visits n as a child of the current tail. The child index is
// that of the first occurrence of n among the tail's children.
func (a *ActionBase) Traverse(n Node) {
	idx := -1
	if par, ok := a.path.Tail().(Parent); ok {
		for i, c := range par.Children() {
			if c == n {
				idx = i
				break
			}
		}
	}
	a.traverseAt(n, idx)
}

func (a *ActionBase) traverseAt(n Node, index int) {
	if a.terminated {
		return
	}
	a.path.push(n, index)
	defer a.path.pop()
	n.DoAction(a.self)
}

// TraverseChildren visits the children of p, honoring the target path.
func (a *ActionBase) TraverseChildren(p Parent) {
	kids := p.Children()
	code, idx := a.PathCode()
	if code != InPath {
		for i, c := range kids {
			if a.terminated {
				return
			}
			if code == OffPath && isolates(c) {
				continue
			}
			a.traverseAt(c, i)
		}
		return
	}
	for i := 0; i < idx && i < len(kids); i++ {
		a.traverseOffPath(kids[i], i)
	}
	if idx < len(kids) {
		a.traverseAt(kids[idx], idx)
	}
}

// TraverseChild visits the i-th child of p. Out-of-range indices are
// ignored.
func (a *ActionBase) TraverseChild(p Parent, i int) {
	kids := p.Children()
	if i < 0 || i >= len(kids) {
		return
	}
	code, idx := a.PathCode()
	switch {
	case code == OffPath && isolates(kids[i]):
	case code != InPath || i == idx:
		a.traverseAt(kids[i], i)
	case i < idx:
		a.traverseOffPath(kids[i], i)
	}
}

func (a *ActionBase) traverseOffPath(n Node, i int) {
	if isolates(n) {
		return
	}
	a.offPath++
	defer func() { a.offPath-- }()
	a.traverseAt(n, i)
}

// PathCode returns how the node being visited relates to the target
// path. For InPath, the index of the next path node among its children
// is returned as well.
func (a *ActionBase) PathCode() (PathCode, int) {
	if a.target == nil {
		return NoPath, -1
	}
	if a.offPath > 0 {
		return OffPath, -1
	}
	if l := a.path.Len(); l < a.target.Len() {
		return InPath, a.target.Index(l)
	}
	return BelowPath, -1
}

// Visit runs the generic behavior for n: Act for actors, all children
// for plain groups.
func (a *ActionBase) Visit(n Node) {
	switch v := n.(type) {
	case Actor:
		v.Act(a.self)
	case Parent:
		a.TraverseChildren(v)
	}
}

// State returns the traversal state, or nil outside Apply.
func (a *ActionBase) State() *State { return a.state }

// CurPath returns the current path.
func (a *ActionBase) CurPath() *Path { return &a.path }

// Abort stops the traversal.
func (a *ActionBase) Abort() { a.terminated = true }

// HasTerminated reports whether the traversal was aborted.
func (a *ActionBase) HasTerminated() bool { return a.terminated }

// Policy returns the cache policy.
func (a *ActionBase) Policy() CachePolicy { return a.opts.policy }

// ContextID returns the render context id.
func (a *ActionBase) ContextID() uint64 { return a.opts.contextID }

// cacheable reports whether the node being visited may build or use a
// cache: the traversal covers its whole subgraph.
func cacheable(a Action) bool {
	code, _ := a.PathCode()
	return code == NoPath || code == BelowPath
}
