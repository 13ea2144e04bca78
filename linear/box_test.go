// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyBox(t *testing.T) {
	b := EmptyBox()
	assert.True(t, b.IsEmpty())
	b = b.ExtendBy(V3(1, 2, 3))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, V3(1, 2, 3), b.Min)
	assert.Equal(t, V3(1, 2, 3), b.Max)
	assert.Equal(t, Vec3{}, EmptyBox().Size())
}

func TestBoxUnion(t *testing.T) {
	a := NewBox(V3(0, 0, 0), V3(1, 1, 1))
	b := NewBox(V3(2, 2, 2), V3(-1, 0, 0))
	u := a.Union(b)
	assert.Equal(t, V3(-1, 0, 0), u.Min)
	assert.Equal(t, V3(2, 2, 2), u.Max)
	assert.Equal(t, a, a.Union(EmptyBox()))
	assert.Equal(t, a, EmptyBox().Union(a))
}

func TestBoxTransform(t *testing.T) {
	b := NewBox(V3(-1, -1, -1), V3(1, 1, 1)).Transform(Translate(5, 0, 0))
	assert.True(t, b.Min.ApproxEqual(V3(4, -1, -1), eps))
	assert.True(t, b.Max.ApproxEqual(V3(6, 1, 1), eps))
	assert.True(t, b.Contains(V3(5, 0, 0)))
}

func TestBoxIntersectRay(t *testing.T) {
	b := NewBox(V3(-1, -1, -1), V3(1, 1, 1))

	tt, ok := b.IntersectRay(Line{Origin: V3(0, 0, 10), Dir: V3(0, 0, -1)})
	assert.True(t, ok)
	assert.InDelta(t, 9, tt, eps)

	_, ok = b.IntersectRay(Line{Origin: V3(5, 0, 10), Dir: V3(0, 0, -1)})
	assert.False(t, ok)

	_, ok = b.IntersectRay(Line{Origin: V3(0, 0, 10), Dir: V3(0, 0, 1)})
	assert.False(t, ok, "box behind the ray")

	tt, ok = b.IntersectRay(Line{Origin: V3(0, 0, 0), Dir: V3(1, 0, 0)})
	assert.True(t, ok)
	assert.Equal(t, 0.0, tt, "origin inside the box")
}

func TestHex(t *testing.T) {
	assert.Equal(t, RGB(1, 0, 0), Hex("#f00"))
	assert.Equal(t, RGBA{R: 0, G: 1, B: 0, A: 1}, Hex("00ff00ff"))
	assert.Equal(t, RGBA{A: 1}, Hex("bogus"))
}
