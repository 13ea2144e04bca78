// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package linear provides the small set of 3D math types the scene graph
// carries through traversal state: vectors, 4x4 matrices, planes, rays,
// axis-aligned boxes and colors.
//
// Vectors and matrices are defined on top of golang.org/x/image/math/f64,
// so they convert to and from the f64 array types without copying:
//
//	m := linear.Translate(1, 2, 3)
//	raw := f64.Mat4(m)
//
// # Conventions
//
// Matrices are stored in row-major order and act on column vectors:
//
//	p' = M * p
//
// Composition therefore reads right to left: A.Mul(B) applies B first.
// The translation part of an affine matrix lives in elements 3, 7 and 11.
package linear
