// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ctxbook keeps per-render-context cache books.
//
// A render cache is only meaningful for the render context it was built
// for, so separators keep their render caches in the book of the context
// being rendered rather than on the node. The books live in one
// process-wide table:
//
//   - the table is split into 16 shards, chosen by xxhash of the context
//     id, each guarded by its own mutex
//   - every book is an LRU of entries keyed by node id and slot, with
//     atomic hit, miss and eviction counters
//   - entries implementing Releaser are released when evicted, deleted or
//     torn down
//
// The lifecycle is explicit: Init (idempotent, also implied by the first
// For call), Destroy when a context goes away, Teardown at shutdown. The
// table is reachable only through the package functions.
package ctxbook
