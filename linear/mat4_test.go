// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestTranslateMulPoint(t *testing.T) {
	m := Translate(1, 2, 3)
	got := m.MulPoint(V3(1, 1, 1))
	assert.Equal(t, V3(2, 3, 4), got)
	assert.Equal(t, V3(1, 2, 3), m.Translation())
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.MulPoint(V3(1, 0, 0))
	assert.True(t, got.ApproxEqual(V3(12, 0, 0), eps), "got %v", got)
}

func TestRotate(t *testing.T) {
	m := Rotate(V3(0, 0, 1), math.Pi/2)
	got := m.MulPoint(V3(1, 0, 0))
	assert.True(t, got.ApproxEqual(V3(0, 1, 0), eps), "got %v", got)

	assert.True(t, Rotate(Vec3{}, 1).IsIdentity())
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(3, -4, 5)},
		{"scale", Scale(2, 4, 8)},
		{"composite", Translate(1, 2, 3).Mul(Rotate(V3(1, 1, 0), 0.7)).Mul(Scale(2, 3, 4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			require.True(t, ok)
			assert.True(t, tt.m.Mul(inv).ApproxEqual(Identity(), 1e-9))
		})
	}
}

func TestInverseSingular(t *testing.T) {
	_, ok := Scale(0, 1, 1).Inverse()
	assert.False(t, ok)
	assert.InDelta(t, 0, Scale(0, 1, 1).Determinant(), eps)
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()
	assert.Equal(t, 1.0, tr.At(3, 0))
	assert.Equal(t, m, tr.Transpose())
}

func TestPlaneTransform(t *testing.T) {
	pl := NewPlane(V3(0, 1, 0), V3(0, 0, 0))
	moved := pl.Transform(Translate(0, 5, 0))
	assert.InDelta(t, 0, moved.Distance(V3(3, 5, -2)), eps)
	assert.InDelta(t, 1, moved.Distance(V3(0, 6, 0)), eps)
}
