// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ctxbook

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"
)

const (
	// shardCount must be a power of 2 for fast modulo via bitwise AND.
	shardCount = 16
	shardMask  = shardCount - 1
)

type shard struct {
	mu    sync.Mutex
	books map[uint64]*Book
}

var (
	initOnce sync.Once
	shards   [shardCount]*shard
	capacity atomic.Int64
)

// Init prepares the process-wide table. It is idempotent and implied by
// the first call to For.
func Init() {
	initOnce.Do(func() {
		for i := range shards {
			shards[i] = &shard{books: make(map[uint64]*Book)}
		}
		if capacity.Load() == 0 {
			capacity.Store(DefaultCapacity)
		}
		slogger().Debug("ctxbook: table initialized", "shards", shardCount)
	})
}

// SetCapacity sets the capacity of books created from now on.
func SetCapacity(n int) {
	if n <= 0 {
		n = DefaultCapacity
	}
	capacity.Store(int64(n))
}

func shardFor(id uint64) *shard {
	Init()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	return shards[xxhash.Sum64(buf[:])&shardMask]
}

// For returns the book of render context id, creating it on first use.
func For(id uint64) *Book {
	s := shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		b = newBook(id, int(capacity.Load()))
		s.books[id] = b
		slogger().Info("ctxbook: book created", "context", id)
	}
	return b
}

// Lookup returns the book of render context id without creating it.
func Lookup(id uint64) (*Book, bool) {
	s := shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

// Destroy releases every entry of context id and forgets its book.
// Destroying an unknown context is a no-op.
func Destroy(id uint64) error {
	s := shardFor(id)
	s.mu.Lock()
	b, ok := s.books[id]
	delete(s.books, id)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	slogger().Info("ctxbook: book destroyed", "context", id)
	if err := b.close(); err != nil {
		return fmt.Errorf("ctxbook: destroy context %d: %w", id, err)
	}
	return nil
}

// ForgetNode removes the entries of node from every book.
func ForgetNode(node uint64) {
	for _, b := range books() {
		b.DeleteNode(node)
	}
}

// Contexts returns the ids of all live books in ascending order.
func Contexts() []uint64 {
	bs := books()
	ids := make([]uint64, len(bs))
	for i, b := range bs {
		ids[i] = b.id
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllStats returns the statistics of every live book, ordered by context.
func AllStats() []Stats {
	bs := books()
	out := make([]Stats, len(bs))
	for i, b := range bs {
		out[i] = b.Stats()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Context < out[j].Context })
	return out
}

func books() []*Book {
	Init()
	var out []*Book
	for _, s := range shards {
		s.mu.Lock()
		for _, b := range s.books {
			out = append(out, b)
		}
		s.mu.Unlock()
	}
	return out
}

// Teardown destroys every book. Release errors of all books are
// collected into one error. The table stays usable afterwards.
func Teardown() error {
	Init()
	var result *multierror.Error
	for _, s := range shards {
		s.mu.Lock()
		bs := s.books
		s.books = make(map[uint64]*Book)
		s.mu.Unlock()
		for id, b := range bs {
			if err := b.close(); err != nil {
				result = multierror.Append(result, fmt.Errorf("context %d: %w", id, err))
			}
		}
	}
	slogger().Info("ctxbook: teardown complete")
	return result.ErrorOrNil()
}
