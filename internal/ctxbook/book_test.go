// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ctxbook

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resource struct {
	released int
	err      error
}

func (r *resource) Release() error {
	r.released++
	return r.err
}

func TestBookGetOrCreate(t *testing.T) {
	b := newBook(1, 4)
	calls := 0
	create := func() any { calls++; return "v" }

	assert.Equal(t, "v", b.GetOrCreate(Key{Node: 1}, create))
	assert.Equal(t, "v", b.GetOrCreate(Key{Node: 1}, create))
	assert.Equal(t, 1, calls)

	st := b.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.InDelta(t, 0.5, st.HitRate, 1e-9)
}

func TestBookEvictsLeastRecentlyUsed(t *testing.T) {
	b := newBook(1, 2)
	r1 := &resource{}
	b.Set(Key{Node: 1}, r1)
	b.Set(Key{Node: 2}, "two")

	_, ok := b.Get(Key{Node: 1}) // node 1 is now most recent
	require.True(t, ok)
	b.Set(Key{Node: 3}, "three")

	_, ok = b.Get(Key{Node: 2})
	assert.False(t, ok, "node 2 was least recently used")
	_, ok = b.Get(Key{Node: 1})
	assert.True(t, ok)
	assert.Equal(t, uint64(1), b.Stats().Evictions)
	assert.Zero(t, r1.released)
}

func TestBookPeekLeavesOrderAndStats(t *testing.T) {
	b := newBook(1, 2)
	b.Set(Key{Node: 1}, "one")
	b.Set(Key{Node: 2}, "two")

	v, ok := b.Peek(Key{Node: 1})
	require.True(t, ok)
	assert.Equal(t, "one", v)
	_, ok = b.Peek(Key{Node: 9})
	assert.False(t, ok)

	b.Set(Key{Node: 3}, "three")
	_, ok = b.Peek(Key{Node: 1})
	assert.False(t, ok, "a peek does not protect node 1 from eviction")

	st := b.Stats()
	assert.Zero(t, st.Hits)
	assert.Zero(t, st.Misses)
}

func TestBookSetReleasesReplaced(t *testing.T) {
	b := newBook(1, 4)
	r := &resource{}
	b.Set(Key{Node: 1}, r)
	b.Set(Key{Node: 1}, "new")
	assert.Equal(t, 1, r.released)
	assert.Equal(t, 1, b.Len())
}

func TestBookDeleteNode(t *testing.T) {
	b := newBook(1, 8)
	a, c := &resource{}, &resource{}
	b.Set(Key{Node: 7, Slot: 0}, a)
	b.Set(Key{Node: 7, Slot: 1}, c)
	b.Set(Key{Node: 8}, "keep")

	assert.Equal(t, 2, b.DeleteNode(7))
	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, c.released)
	assert.Equal(t, 1, b.Len())
	assert.False(t, b.Delete(Key{Node: 7}))
	assert.True(t, b.Delete(Key{Node: 8}))
}

func TestBookCloseCollectsErrors(t *testing.T) {
	b := newBook(1, 8)
	b.Set(Key{Node: 1}, &resource{err: errors.New("gpu lost")})
	b.Set(Key{Node: 2}, &resource{err: errors.New("double free")})
	b.Set(Key{Node: 3}, &resource{})

	err := b.close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpu lost")
	assert.Contains(t, err.Error(), "double free")
	assert.Zero(t, b.Len())
}

func TestBookConcurrent(t *testing.T) {
	b := newBook(1, 64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := Key{Node: uint64(i % 100), Slot: uint32(g % 2)}
				b.GetOrCreate(k, func() any { return strconv.Itoa(i) })
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, b.Len(), 64)
}
