package sg

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring"
)

// Dependency is one element value a cache output was computed from.
type Dependency struct {
	Kind  Kind
	Value Value
}

type dependency struct {
	kind  Kind
	gen   uint64
	value Value
}

// cacheCore is the type-independent part of Cache.
type cacheCore struct {
	// mu is read-locked by validity checks and write-locked for the whole
	// rebuild, from Begin to End.
	mu sync.RWMutex

	deps     []dependency
	recorded *roaring.Bitmap

	creationDepth int
	startGen      uint64

	// epoch counts invalidations. The cache is valid while validAt equals
	// epoch+1; End sets validAt only if no invalidation arrived during the
	// rebuild.
	epoch      atomic.Uint64
	validAt    atomic.Uint64
	beginEpoch uint64

	parentsMu sync.Mutex
	parents   map[*cacheCore]struct{}

	builds atomic.Uint64
}

func (c *cacheCore) addDependency(k Kind, inst *instance) {
	if c.recorded.Contains(uint32(k)) {
		return
	}
	c.recorded.Add(uint32(k))
	c.deps = append(c.deps, dependency{kind: k, gen: inst.gen, value: inst.value.Clone()})
}

func (c *cacheCore) dependencyKinds() []Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Kind, len(c.deps))
	for i, d := range c.deps {
		out[i] = d.kind
	}
	return out
}

func (c *cacheCore) addParent(p *cacheCore) {
	c.parentsMu.Lock()
	defer c.parentsMu.Unlock()
	if c.parents == nil {
		c.parents = make(map[*cacheCore]struct{})
	}
	c.parents[p] = struct{}{}
}

func (c *cacheCore) invalidate() {
	seen := map[*cacheCore]bool{c: true}
	queue := []*cacheCore{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cur.epoch.Add(1)

		cur.parentsMu.Lock()
		for p := range cur.parents {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
		cur.parentsMu.Unlock()
	}
}

// detachParents drops the parent links and invalidates every parent that
// is not recording in s. Parents recording in s are relinked on close.
func (c *cacheCore) detachParents(s *State) {
	c.parentsMu.Lock()
	parents := c.parents
	c.parents = nil
	c.parentsMu.Unlock()

	for p := range parents {
		if !s.isRecording(p) {
			p.invalidate()
		}
	}
}

// validLocked compares every dependency against s; c.mu must be held.
func (c *cacheCore) validLocked(s *State) bool {
	if c.validAt.Load() != c.epoch.Load()+1 {
		return false
	}
	for _, d := range c.deps {
		inst := s.peek(d.kind)
		if inst == nil {
			if !d.value.Equal(defaultOf(d.kind)) {
				return false
			}
			continue
		}
		if inst.gen == d.gen {
			continue
		}
		if !d.value.Equal(inst.value) {
			return false
		}
	}
	return true
}

// Cache stores the output of a subgraph traversal together with the
// element values the output depends on. A cache is valid for a State
// while every dependency compares equal to the value visible in that
// State and no Invalidate arrived since the last End.
//
// Usage inside a node's action handler:
//
//	s.Push()
//	if out, ok := c.Lookup(s); ok {
//	    replay(out)
//	} else {
//	    c.Begin(s)
//	    out := traverseChildren()
//	    c.End(s, out)
//	}
//	s.Pop()
//
// Cache is safe for concurrent use. A rebuild holds an exclusive lock on
// the cache from Begin to End.
type Cache[T any] struct {
	cacheCore
	output T
}

// NewCache creates an empty, invalid cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{cacheCore: cacheCore{recorded: roaring.New()}}
}

// Begin starts a rebuild: the dependency set is cleared and every element
// read from now until End is recorded if its value was set outside the
// recording.
//
// Caches that embedded the previous output, other than those recording
// in s, are invalidated.
func (c *Cache[T]) Begin(s *State) {
	c.mu.Lock()
	c.detachParents(s)
	c.deps = c.deps[:0]
	c.recorded.Clear()
	c.beginEpoch = c.epoch.Load()
	c.validAt.Store(0)
	s.pushCacheRecording(&c.cacheCore)
}

// End finishes a rebuild started with Begin at the same depth and stores
// out. The cache becomes valid unless Invalidate was called meanwhile.
func (c *Cache[T]) End(s *State, out T) {
	s.popCacheRecording(&c.cacheCore)
	c.output = out
	if c.epoch.Load() == c.beginEpoch {
		c.validAt.Store(c.beginEpoch + 1)
	}
	c.builds.Add(1)
	c.mu.Unlock()
	Logger().Debug("sg: cache built", "deps", len(c.deps), "depth", s.depth)
}

// Abandon finishes a rebuild without storing an output. The cache stays
// invalid.
func (c *Cache[T]) Abandon(s *State) {
	s.popCacheRecording(&c.cacheCore)
	var zero T
	c.output = zero
	c.mu.Unlock()
}

// IsValid reports whether the cached output may be reused in s.
// A false result does not propagate to outer caches.
func (c *Cache[T]) IsValid(s *State) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked(s)
}

// Lookup returns the cached output if the cache is valid in s. When outer
// recordings are open in s, they inherit the cache's dependencies.
func (c *Cache[T]) Lookup(s *State) (T, bool) {
	c.mu.RLock()
	ok := c.validLocked(s)
	out := c.output
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	s.replayCache(&c.cacheCore)
	return out, true
}

// Output returns the last stored output and whether the cache is
// currently marked valid, without checking dependencies.
func (c *Cache[T]) Output() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.output, c.validAt.Load() == c.epoch.Load()+1
}

// Invalidate marks the cache invalid and propagates to every cache that
// incorporated this one.
func (c *Cache[T]) Invalidate() { c.invalidate() }

// Dependencies returns a snapshot of the dependency set.
func (c *Cache[T]) Dependencies() []Dependency {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Dependency, len(c.deps))
	for i, d := range c.deps {
		out[i] = Dependency{Kind: d.kind, Value: d.value}
	}
	return out
}

// DependsOn reports whether k is in the dependency set.
func (c *Cache[T]) DependsOn(k Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recorded.Contains(uint32(k))
}

// Builds returns how many times the cache was rebuilt.
func (c *Cache[T]) Builds() uint64 { return c.builds.Load() }
