package sg

import (
	"github.com/gogpu/sg/linear"
)

// Transform applies scale, rotation and translation about a center:
// T * C * R * S * C⁻¹, post-multiplied onto the model matrix.
type Transform struct {
	NodeBase

	translation field[linear.Vec3]
	axis        field[linear.Vec3]
	angle       field[float64]
	scale       field[linear.Vec3]
	center      field[linear.Vec3]
}

// NewTransform creates an identity transform.
func NewTransform() *Transform {
	t := &Transform{}
	t.InitNode(t)
	t.axis.set(linear.V3(0, 0, 1))
	t.scale.set(linear.V3(1, 1, 1))
	return t
}

// SetTranslation sets the translation.
func (t *Transform) SetTranslation(v linear.Vec3) {
	t.translation.set(v)
	t.Touch()
}

// SetRotation sets the rotation as an angle in radians about axis.
func (t *Transform) SetRotation(axis linear.Vec3, angle float64) {
	t.axis.set(axis)
	t.angle.set(angle)
	t.Touch()
}

// SetScale sets the scale factors.
func (t *Transform) SetScale(v linear.Vec3) {
	t.scale.set(v)
	t.Touch()
}

// SetCenter sets the center of rotation and scaling.
func (t *Transform) SetCenter(v linear.Vec3) {
	t.center.set(v)
	t.Touch()
}

// Matrix returns the transform matrix.
func (t *Transform) Matrix() linear.Mat4 {
	tr, c, s := t.translation.get(), t.center.get(), t.scale.get()
	m := linear.Translate(tr[0], tr[1], tr[2])
	m = m.Mul(linear.Translate(c[0], c[1], c[2]))
	if a := t.angle.get(); a != 0 {
		m = m.Mul(linear.Rotate(t.axis.get(), a))
	}
	m = m.Mul(linear.Scale(s[0], s[1], s[2]))
	return m.Mul(linear.Translate(-c[0], -c[1], -c[2]))
}

// Act multiplies the model matrix.
func (t *Transform) Act(a Action) { MultModelMatrix(a.State(), t, t.Matrix()) }

// Translation moves the following shapes.
type Translation struct {
	NodeBase

	v field[linear.Vec3]
}

// NewTranslation creates a translation by (x, y, z).
func NewTranslation(x, y, z float64) *Translation {
	t := &Translation{}
	t.InitNode(t)
	t.v.set(linear.V3(x, y, z))
	return t
}

// Translation returns the offset.
func (t *Translation) Translation() linear.Vec3 { return t.v.get() }

// SetTranslation changes the offset.
func (t *Translation) SetTranslation(v linear.Vec3) {
	t.v.set(v)
	t.Touch()
}

// Act multiplies the model matrix.
func (t *Translation) Act(a Action) {
	v := t.v.get()
	MultModelMatrix(a.State(), t, linear.Translate(v[0], v[1], v[2]))
}

// Scale scales the following shapes.
type Scale struct {
	NodeBase

	v field[linear.Vec3]
}

// NewScale creates a scale by (x, y, z).
func NewScale(x, y, z float64) *Scale {
	s := &Scale{}
	s.InitNode(s)
	s.v.set(linear.V3(x, y, z))
	return s
}

// SetScale changes the factors.
func (s *Scale) SetScale(v linear.Vec3) {
	s.v.set(v)
	s.Touch()
}

// Act multiplies the model matrix.
func (s *Scale) Act(a Action) {
	v := s.v.get()
	MultModelMatrix(a.State(), s, linear.Scale(v[0], v[1], v[2]))
}

// Rotation rotates the following shapes.
type Rotation struct {
	NodeBase

	axis  field[linear.Vec3]
	angle field[float64]
}

// NewRotation creates a rotation by angle radians about axis.
func NewRotation(axis linear.Vec3, angle float64) *Rotation {
	r := &Rotation{}
	r.InitNode(r)
	r.axis.set(axis)
	r.angle.set(angle)
	return r
}

// SetRotation changes the rotation.
func (r *Rotation) SetRotation(axis linear.Vec3, angle float64) {
	r.axis.set(axis)
	r.angle.set(angle)
	r.Touch()
}

// Act multiplies the model matrix.
func (r *Rotation) Act(a Action) {
	MultModelMatrix(a.State(), r, linear.Rotate(r.axis.get(), r.angle.get()))
}

// MatrixTransform multiplies the model matrix by an arbitrary matrix.
type MatrixTransform struct {
	NodeBase

	m field[linear.Mat4]
}

// NewMatrixTransform creates a matrix transform.
func NewMatrixTransform(m linear.Mat4) *MatrixTransform {
	t := &MatrixTransform{}
	t.InitNode(t)
	t.m.set(m)
	return t
}

// Matrix returns the matrix.
func (t *MatrixTransform) Matrix() linear.Mat4 { return t.m.get() }

// SetMatrix changes the matrix.
func (t *MatrixTransform) SetMatrix(m linear.Mat4) {
	t.m.set(m)
	t.Touch()
}

// Act multiplies the model matrix.
func (t *MatrixTransform) Act(a Action) { MultModelMatrix(a.State(), t, t.Matrix()) }

// ResetTransform sets the model matrix back to identity. The inherited
// matrix is not read, so caches around it do not depend on it.
type ResetTransform struct {
	NodeBase
}

// NewResetTransform creates a reset transform.
func NewResetTransform() *ResetTransform {
	r := &ResetTransform{}
	r.InitNode(r)
	return r
}

// Act replaces the model matrix.
func (r *ResetTransform) Act(a Action) { SetModelMatrix(a.State(), r, linear.Identity()) }
