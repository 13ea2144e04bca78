// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Vec3 is a 3D vector or point.
type Vec3 f64.Vec3

// Vec4 is a homogeneous 4D vector.
type Vec4 f64.Vec4

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// X returns the first component.
func (v Vec3) X() float64 { return v[0] }

// Y returns the second component.
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component.
func (v Vec3) Z() float64 { return v[2] }

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Length returns the length (magnitude) of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// LengthSq returns the squared length of the vector.
func (v Vec3) LengthSq() float64 {
	return v.Dot(v)
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if the original vector has zero length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Min returns the component-wise minimum of two vectors.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{math.Min(v[0], w[0]), math.Min(v[1], w[1]), math.Min(v[2], w[2])}
}

// Max returns the component-wise maximum of two vectors.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{math.Max(v[0], w[0]), math.Max(v[1], w[1]), math.Max(v[2], w[2])}
}

// Lerp performs linear interpolation between two vectors.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return v.Add(w.Sub(v).Mul(t))
}

// ApproxEqual reports whether every component differs by at most eps.
func (v Vec3) ApproxEqual(w Vec3, eps float64) bool {
	return math.Abs(v[0]-w[0]) <= eps &&
		math.Abs(v[1]-w[1]) <= eps &&
		math.Abs(v[2]-w[2]) <= eps
}

// Vec4 returns the homogeneous vector (x, y, z, w).
func (v Vec3) Vec4(w float64) Vec4 {
	return Vec4{v[0], v[1], v[2], w}
}

// Vec3 drops w after the perspective divide.
// A zero w returns the xyz part unchanged.
func (v Vec4) Vec3() Vec3 {
	if v[3] == 0 || v[3] == 1 {
		return Vec3{v[0], v[1], v[2]}
	}
	inv := 1 / v[3]
	return Vec3{v[0] * inv, v[1] * inv, v[2] * inv}
}

// Line is a ray with an origin and a (not necessarily unit) direction.
type Line struct {
	Origin Vec3
	Dir    Vec3
}

// NewLine creates a line from p0 towards p1.
func NewLine(p0, p1 Vec3) Line {
	return Line{Origin: p0, Dir: p1.Sub(p0).Normalize()}
}

// PointAt returns Origin + t*Dir.
func (l Line) PointAt(t float64) Vec3 {
	return l.Origin.Add(l.Dir.Mul(t))
}

// Transform returns the line mapped by m.
func (l Line) Transform(m Mat4) Line {
	o := m.MulPoint(l.Origin)
	d := m.MulDir(l.Dir)
	return Line{Origin: o, Dir: d}
}

// Plane is the set of points p with Normal·p = D.
type Plane struct {
	Normal Vec3
	D      float64
}

// NewPlane creates a plane through point p with the given normal.
func NewPlane(normal, p Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: n.Dot(p)}
}

// Distance returns the signed distance from the plane to p.
func (pl Plane) Distance(p Vec3) float64 {
	return pl.Normal.Dot(p) - pl.D
}

// Transform returns the plane mapped by m.
// A singular matrix returns the plane unchanged.
func (pl Plane) Transform(m Mat4) Plane {
	inv, ok := m.Inverse()
	if !ok {
		return pl
	}
	p := pl.Normal.Mul(pl.D)
	n := inv.Transpose().MulDir(pl.Normal)
	return NewPlane(n, m.MulPoint(p))
}
