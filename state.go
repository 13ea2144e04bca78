package sg

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// State is the traversal state of one action application: one element
// stack per enabled kind, the current depth and the stack of open cache
// recordings.
//
// A State belongs to a single traversal and is not safe for concurrent
// use. Concurrent actions over a shared graph each own their State.
type State struct {
	stacks  []elementStack
	enabled *roaring.Bitmap
	depth   int

	// dirty[d] lists the kinds materialized at depth d, so Pop only
	// visits stacks that actually hold a level for it.
	dirty [][]Kind

	// recordings holds the open cache recordings, innermost last.
	recordings []*cacheCore

	closed bool
}

// NewState creates a State with the given kinds enabled. Every enabled
// kind starts at its registered default value at depth 0.
func NewState(enabled *roaring.Bitmap) *State {
	n := NumKinds()
	s := &State{
		stacks:  make([]elementStack, n),
		enabled: enabled.Clone(),
		dirty:   make([][]Kind, 1, 16),
	}
	it := s.enabled.Iterator()
	for it.HasNext() {
		k := Kind(it.Next())
		if int(k) >= n {
			contractViolation("NewState", 0, fmt.Errorf("%w: %d", ErrUnknownKind, k))
		}
		s.stacks[k] = newElementStack(k.Info().Default)
	}
	return s
}

// Depth returns the current nesting depth. A fresh State is at depth 0.
func (s *State) Depth() int { return s.depth }

// IsEnabled reports whether k has a stack in this State.
func (s *State) IsEnabled(k Kind) bool {
	return int(k) < len(s.stacks) && s.stacks[k].levels != nil
}

// EnabledKinds returns a copy of the enabled kind set.
func (s *State) EnabledKinds() *roaring.Bitmap { return s.enabled.Clone() }

// Push opens a new nesting level. No element is copied: the new level
// borrows every value from its ancestors until it writes one.
func (s *State) Push() {
	s.depth++
	if s.depth < len(s.dirty) {
		s.dirty[s.depth] = s.dirty[s.depth][:0]
	} else {
		s.dirty = append(s.dirty, nil)
	}
}

// Pop closes the current level, discarding every element written at it.
//
// Pop panics with ErrUnbalancedPop at depth 0 and with ErrCacheBoundary
// when a cache recording opened at the current depth is still open.
func (s *State) Pop() {
	if s.depth == 0 {
		contractViolation("State.Pop", s.depth, ErrUnbalancedPop)
	}
	if n := len(s.recordings); n > 0 && s.recordings[n-1].creationDepth >= s.depth {
		contractViolation("State.Pop", s.depth, ErrCacheBoundary)
	}
	for _, k := range s.dirty[s.depth] {
		s.stacks[k].pop(s.depth)
	}
	s.dirty[s.depth] = s.dirty[s.depth][:0]
	s.depth--
}

// Scoped runs fn between Push and Pop. The level is popped even when fn
// returns early.
func (s *State) Scoped(fn func()) {
	s.Push()
	defer s.Pop()
	fn()
}

// Get returns the value of k visible at the current depth and registers
// it as a dependency of every open cache recording for which the value
// is external.
//
// A disabled kind reads as its registered default, and open recordings
// depend on that default: a cache built by an action that disabled k is
// only reused where k still has its default value.
// The returned value is shared and must not be modified.
func (s *State) Get(k Kind) Value {
	if !s.IsEnabled(k) && len(s.recordings) == 0 {
		return defaultOf(k)
	}
	inst := s.visible(k)
	s.registerRead(k, inst)
	return inst.value
}

// visible returns the instance of k visible at the current depth. For a
// disabled kind it is a detached instance holding the default, stamped
// with generation 0 so that it never matches a written instance.
func (s *State) visible(k Kind) *instance {
	if !s.IsEnabled(k) {
		return &instance{depth: s.depth, value: defaultOf(k)}
	}
	return s.stacks[k].top()
}

// peek returns the visible instance of k without registering a
// dependency, or nil for a disabled kind.
func (s *State) peek(k Kind) *instance {
	if !s.IsEnabled(k) {
		return nil
	}
	return s.stacks[k].top()
}

// Set replaces the value of k at the current depth.
//
// Writes to disabled kinds are dropped. A write from a node without the
// override flag is skipped when an override-flagged node has locked k.
// A write from an override-flagged node locks k for the rest of the
// current scope.
func (s *State) Set(k Kind, n Node, v Value) {
	if !s.writable(k, n) {
		return
	}
	inst, created := s.stacks[k].materializeForWrite(s.depth, false)
	if created {
		s.dirty[s.depth] = append(s.dirty[s.depth], k)
	}
	inst.value = v
	inst.gen = nextGen()
	s.lockOverride(k, n)
}

// Modify replaces the value of k with fn applied to the inherited value.
// For accumulating kinds the inherited value counts as a read. fn receives
// a value owned by the current depth and returns the new value.
func (s *State) Modify(k Kind, n Node, fn func(Value) Value) {
	if !s.writable(k, n) {
		return
	}
	st := &s.stacks[k]
	if k.Info().Accumulates {
		s.registerRead(k, st.top())
	}
	inst, created := st.materializeForWrite(s.depth, true)
	if created {
		s.dirty[s.depth] = append(s.dirty[s.depth], k)
	}
	inst.value = fn(inst.value)
	inst.gen = nextGen()
	s.lockOverride(k, n)
}

func (s *State) writable(k Kind, n Node) bool {
	if !s.IsEnabled(k) {
		if !k.registered() {
			contractViolation("State.Set", s.depth, fmt.Errorf("%w: %d", ErrUnknownKind, k))
		}
		Logger().Debug("sg: write to disabled kind dropped", "kind", k, "depth", s.depth)
		return false
	}
	if k == OverrideKind || !s.IsEnabled(OverrideKind) {
		return true
	}
	if n != nil && n.Base().Override() {
		return true
	}
	if IsOverridden(s, k) {
		Logger().Debug("sg: overridden write skipped", "kind", k, "depth", s.depth)
		return false
	}
	return true
}

func (s *State) lockOverride(k Kind, n Node) {
	if k == OverrideKind || n == nil || !n.Base().Override() || !s.IsEnabled(OverrideKind) {
		return
	}
	s.Modify(OverrideKind, nil, func(v Value) Value {
		m := v.(overrideMask)
		if m.kinds.Contains(uint32(k)) {
			return m
		}
		m = m.Clone().(overrideMask)
		m.kinds.Add(uint32(k))
		return m
	})
}

// registerRead records inst as a dependency of every open recording that
// started after inst was written.
func (s *State) registerRead(k Kind, inst *instance) {
	for _, rec := range s.recordings {
		if inst.gen <= rec.startGen {
			rec.addDependency(k, inst)
		}
	}
}

// pushCacheRecording opens a recording for c at the current depth.
func (s *State) pushCacheRecording(c *cacheCore) {
	c.creationDepth = s.depth
	c.startGen = generation.Load()
	s.recordings = append(s.recordings, c)
}

// popCacheRecording closes the innermost recording, which must be c and
// must have been opened at the current depth. Recordings still open
// become parents of c.
func (s *State) popCacheRecording(c *cacheCore) {
	n := len(s.recordings)
	if n == 0 || s.recordings[n-1] != c || c.creationDepth != s.depth {
		contractViolation("State.popCacheRecording", s.depth, ErrRecordingMismatch)
	}
	s.recordings[n-1] = nil
	s.recordings = s.recordings[:n-1]
	for _, outer := range s.recordings {
		c.addParent(outer)
	}
}

// replayCache accounts for the use of a valid cache while outer
// recordings are open: the outers inherit its dependencies and become
// its parents.
func (s *State) replayCache(c *cacheCore) {
	if len(s.recordings) == 0 {
		return
	}
	for _, k := range c.dependencyKinds() {
		s.registerRead(k, s.visible(k))
	}
	for _, outer := range s.recordings {
		if outer != c {
			c.addParent(outer)
		}
	}
}

func (s *State) isRecording(c *cacheCore) bool {
	for _, r := range s.recordings {
		if r == c {
			return true
		}
	}
	return false
}

// OpenRecordings returns the number of open cache recordings.
func (s *State) OpenRecordings() int { return len(s.recordings) }

// Close verifies that the State is idle: back at depth 0 with no open
// recording. Close panics with ErrStateLeak otherwise.
func (s *State) Close() {
	if s.closed {
		return
	}
	if s.depth != 0 || len(s.recordings) != 0 {
		contractViolation("State.Close", s.depth, ErrStateLeak)
	}
	for i := range s.stacks {
		if lv := s.stacks[i].levels; len(lv) > 1 {
			contractViolation("State.Close", s.depth, fmt.Errorf("%w: %v still materialized", ErrStateLeak, Kind(i)))
		}
	}
	s.closed = true
}

func defaultOf(k Kind) Value {
	if !k.registered() {
		contractViolation("State.Get", 0, fmt.Errorf("%w: %d", ErrUnknownKind, k))
	}
	return k.Info().Default
}
