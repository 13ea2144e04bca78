package sg

import "sync/atomic"

// generation stamps every element write. It is process-wide and only
// grows, so an instance written after a cache recording began always has
// a larger stamp than the recording's start.
var generation atomic.Uint64

func nextGen() uint64 { return generation.Add(1) }

// instance is one materialized element value.
type instance struct {
	depth int
	gen   uint64
	value Value
}

// elementStack holds the materialized instances of one kind, innermost
// last. Levels that were never written are not represented: the top
// instance is the nearest ancestor and is borrowed by every deeper level.
type elementStack struct {
	levels []instance
}

func newElementStack(def Value) elementStack {
	return elementStack{levels: []instance{{depth: 0, gen: nextGen(), value: def.Clone()}}}
}

// top returns the instance visible at the current depth. It never
// materializes.
func (e *elementStack) top() *instance {
	return &e.levels[len(e.levels)-1]
}

// materializeForWrite returns the instance owned by depth, creating it if
// the visible instance belongs to a shallower level. With inherit set the
// new instance starts as a clone of the inherited value, otherwise its
// value is left for the caller to assign. created reports whether a new
// level was added.
func (e *elementStack) materializeForWrite(depth int, inherit bool) (inst *instance, created bool) {
	t := e.top()
	if t.depth == depth {
		return t, false
	}
	next := instance{depth: depth, gen: t.gen}
	if inherit {
		next.value = t.value.Clone()
	}
	e.levels = append(e.levels, next)
	return e.top(), true
}

// pop discards the instance owned by depth, if any.
func (e *elementStack) pop(depth int) {
	if n := len(e.levels); n > 1 && e.levels[n-1].depth == depth {
		e.levels[n-1] = instance{}
		e.levels = e.levels[:n-1]
	}
}
