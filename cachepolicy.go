package sg

import "time"

// CacheStats describes the recent traversals of a caching node. It is
// passed to a CachePolicy when the node has no valid cache.
type CacheStats struct {
	// UntouchedTraversals counts consecutive traversals since the node
	// or one of its descendants last changed.
	UntouchedTraversals int

	// LastCost is the duration of the last uncached traversal of the
	// node's children, or zero if there was none.
	LastCost time.Duration

	// Builds counts how many times the node built a cache.
	Builds uint64
}

// CachePolicy decides whether a node in auto caching mode builds a cache
// on the current traversal. The policy only affects performance; cached
// and uncached traversals produce the same output.
type CachePolicy interface {
	ShouldCache(n Node, stats CacheStats) bool
}

// CachePolicyFunc adapts a function to CachePolicy.
type CachePolicyFunc func(n Node, stats CacheStats) bool

// ShouldCache calls f.
func (f CachePolicyFunc) ShouldCache(n Node, stats CacheStats) bool { return f(n, stats) }

// DefaultAutoCacheThreshold is the number of untouched traversals after
// which AutoCache starts caching.
const DefaultAutoCacheThreshold = 2

type alwaysCache struct{}

func (alwaysCache) ShouldCache(Node, CacheStats) bool { return true }

type neverCache struct{}

func (neverCache) ShouldCache(Node, CacheStats) bool { return false }

// AlwaysCache returns a policy that caches on every traversal.
func AlwaysCache() CachePolicy { return alwaysCache{} }

// NeverCache returns a policy that never caches.
func NeverCache() CachePolicy { return neverCache{} }

type autoCache struct{ n int }

func (p autoCache) ShouldCache(_ Node, st CacheStats) bool {
	return st.UntouchedTraversals >= p.n
}

// AutoCache returns a policy that caches once a node has been traversed
// n times in a row without changing. n < 1 selects
// DefaultAutoCacheThreshold.
func AutoCache(n int) CachePolicy {
	if n < 1 {
		n = DefaultAutoCacheThreshold
	}
	return autoCache{n: n}
}

type costThreshold struct{ d time.Duration }

func (p costThreshold) ShouldCache(_ Node, st CacheStats) bool {
	return st.LastCost >= p.d
}

// CostThreshold returns a policy that caches once an uncached traversal
// of the node took at least d.
func CostThreshold(d time.Duration) CachePolicy { return costThreshold{d: d} }

// ParseCachePolicy maps a policy name from configuration to a policy:
// "always", "never", "auto" (with threshold n) or "cost" (with d).
func ParseCachePolicy(name string, n int, d time.Duration) (CachePolicy, bool) {
	switch name {
	case "always":
		return AlwaysCache(), true
	case "never":
		return NeverCache(), true
	case "auto", "":
		return AutoCache(n), true
	case "cost":
		return CostThreshold(d), true
	}
	return nil, false
}
