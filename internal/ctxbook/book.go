// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ctxbook

import (
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
)

// DefaultCapacity is the default number of entries a book holds before
// evicting the least recently used one.
const DefaultCapacity = 1024

// Key identifies an entry in a book: the node owning the cache and a
// slot distinguishing several caches of one node.
type Key struct {
	Node uint64
	Slot uint32
}

// Releaser is implemented by entries holding resources that must be
// freed when the entry leaves its book.
type Releaser interface {
	Release() error
}

// Book holds the cache entries of one render context.
// Book is safe for concurrent use.
type Book struct {
	id       uint64
	capacity int

	mu      sync.Mutex
	entries map[Key]*bookEntry
	lru     lruList

	// Statistics (atomic for lock-free reads)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type bookEntry struct {
	value any
	node  *lruNode
}

func newBook(id uint64, capacity int) *Book {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Book{id: id, capacity: capacity, entries: make(map[Key]*bookEntry)}
}

// ID returns the render context id of the book.
func (b *Book) ID() uint64 { return b.id }

// Get returns the entry stored under k.
func (b *Book) Get(k Key) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[k]
	if !ok {
		b.misses.Add(1)
		return nil, false
	}
	b.lru.moveToFront(e.node)
	b.hits.Add(1)
	return e.value, true
}

// Peek returns the entry stored under k without counting a lookup or
// refreshing its position in the eviction order.
func (b *Book) Peek(k Key) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[k]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetOrCreate returns the entry stored under k, creating it with create
// on a miss. create runs with the book locked.
func (b *Book) GetOrCreate(k Key, create func() any) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[k]; ok {
		b.lru.moveToFront(e.node)
		b.hits.Add(1)
		return e.value
	}
	b.misses.Add(1)
	v := create()
	b.insertLocked(k, v)
	return v
}

// Set stores v under k, releasing any previous entry.
func (b *Book) Set(k Key, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[k]; ok {
		release(b.id, k, e.value)
		e.value = v
		b.lru.moveToFront(e.node)
		return
	}
	b.insertLocked(k, v)
}

func (b *Book) insertLocked(k Key, v any) {
	for b.lru.len >= b.capacity {
		old, ok := b.lru.removeOldest()
		if !ok {
			break
		}
		release(b.id, old, b.entries[old].value)
		delete(b.entries, old)
		b.evictions.Add(1)
	}
	b.entries[k] = &bookEntry{value: v, node: b.lru.pushFront(k)}
}

// Delete removes and releases the entry under k.
func (b *Book) Delete(k Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[k]
	if !ok {
		return false
	}
	b.lru.unlink(e.node)
	delete(b.entries, k)
	release(b.id, k, e.value)
	return true
}

// DeleteNode removes every entry owned by node.
func (b *Book) DeleteNode(node uint64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for k, e := range b.entries {
		if k.Node != node {
			continue
		}
		b.lru.unlink(e.node)
		delete(b.entries, k)
		release(b.id, k, e.value)
		n++
	}
	return n
}

// Len returns the number of entries.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Stats returns the book statistics.
func (b *Book) Stats() Stats {
	hits, misses := b.hits.Load(), b.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Context:   b.id,
		Len:       b.Len(),
		Capacity:  b.capacity,
		Hits:      hits,
		Misses:    misses,
		HitRate:   rate,
		Evictions: b.evictions.Load(),
	}
}

// close releases every entry and empties the book.
func (b *Book) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var result *multierror.Error
	for k, e := range b.entries {
		if r, ok := e.value.(Releaser); ok {
			if err := r.Release(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		delete(b.entries, k)
	}
	b.lru = lruList{}
	return result.ErrorOrNil()
}

// release frees v if it holds resources. Errors are logged; eviction has
// no caller to report to.
func release(ctx uint64, k Key, v any) {
	r, ok := v.(Releaser)
	if !ok {
		return
	}
	if err := r.Release(); err != nil {
		slogger().Warn("ctxbook: release failed", "context", ctx, "node", k.Node, "slot", k.Slot, "err", err)
	}
}

// Stats contains book statistics.
type Stats struct {
	// Context is the render context id.
	Context uint64
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries before eviction.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that found nothing.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when nothing was looked up.
	HitRate float64
	// Evictions is the number of entries dropped for capacity.
	Evictions uint64
}
