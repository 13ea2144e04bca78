// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ctxbook

// lruNode is a node in a doubly-linked LRU list.
// The node stores its key for O(1) deletion from the owning map.
type lruNode struct {
	key  Key
	prev *lruNode
	next *lruNode
}

// lruList orders book entries by use. The head is the most recently used,
// the tail the least. Not thread-safe; the owning Book locks.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

func (l *lruList) pushFront(key Key) *lruNode {
	n := &lruNode{key: key}
	l.linkFront(n)
	return n
}

func (l *lruList) moveToFront(n *lruNode) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.linkFront(n)
}

func (l *lruList) linkFront(n *lruNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

// removeOldest unlinks the tail and returns its key.
func (l *lruList) removeOldest() (Key, bool) {
	if l.tail == nil {
		return Key{}, false
	}
	n := l.tail
	l.unlink(n)
	return n.key, true
}

func (l *lruList) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}
