package sg

import (
	"math"

	"github.com/gogpu/sg/linear"
)

// Projection selects the camera projection.
type Projection uint8

const (
	Perspective Projection = iota
	Orthographic
)

// Camera sets the viewing and projection matrices. The projection uses
// the aspect ratio of the current viewport.
type Camera struct {
	NodeBase

	projection field[Projection]
	position   field[linear.Vec3]
	target     field[linear.Vec3]
	up         field[linear.Vec3]

	// heightAngle is the vertical field of view of a perspective camera;
	// height is the view volume height of an orthographic one.
	heightAngle field[float64]
	height      field[float64]
	near, far   field[float64]
}

// NewCamera creates a camera at (0,0,5) looking at the origin.
func NewCamera(p Projection) *Camera {
	c := &Camera{}
	c.InitNode(c)
	c.projection.set(p)
	c.position.set(linear.V3(0, 0, 5))
	c.up.set(linear.V3(0, 1, 0))
	c.heightAngle.set(math.Pi / 4)
	c.height.set(2)
	c.near.set(1)
	c.far.set(10)
	return c
}

// Position returns the eye position.
func (c *Camera) Position() linear.Vec3 { return c.position.get() }

// LookAt places the camera at eye looking at target.
func (c *Camera) LookAt(eye, target, up linear.Vec3) {
	c.position.set(eye)
	c.target.set(target)
	c.up.set(up)
	c.Touch()
}

// SetClipping sets the near and far distances.
func (c *Camera) SetClipping(near, far float64) {
	c.near.set(near)
	c.far.set(far)
	c.Touch()
}

// SetHeightAngle sets the vertical field of view in radians.
func (c *Camera) SetHeightAngle(a float64) {
	c.heightAngle.set(a)
	c.Touch()
}

// SetHeight sets the orthographic view height.
func (c *Camera) SetHeight(h float64) {
	c.height.set(h)
	c.Touch()
}

// ViewAll positions the camera so that box fills the view, keeping the
// viewing direction.
func (c *Camera) ViewAll(box linear.Box3) {
	if box.IsEmpty() {
		return
	}
	center := box.Center()
	radius := box.Size().Length() / 2
	dir := c.position.get().Sub(c.target.get()).Normalize()
	if dir == (linear.Vec3{}) {
		dir = linear.V3(0, 0, 1)
	}
	dist := radius / math.Sin(c.heightAngle.get()/2)
	if c.projection.get() == Orthographic {
		dist = radius * 2
		c.height.set(2 * radius)
	}
	c.position.set(center.Add(dir.Mul(dist)))
	c.target.set(center)
	c.near.set(max(dist-radius, 0.01))
	c.far.set(dist + radius)
	c.Touch()
}

// Matrices returns the viewing and projection matrices for a viewport.
func (c *Camera) Matrices(vp Viewport) (view, proj linear.Mat4) {
	view = linear.LookAt(c.position.get(), c.target.get(), c.up.get())
	near, far := c.near.get(), c.far.get()
	if c.projection.get() == Orthographic {
		h := c.height.get() / 2
		w := h * vp.Aspect()
		return view, linear.Ortho(-w, w, -h, h, near, far)
	}
	return view, linear.Perspective(c.heightAngle.get(), vp.Aspect(), near, far)
}

// Act sets ViewingMatrixKind and ProjectionMatrixKind.
func (c *Camera) Act(a Action) {
	s := a.State()
	view, proj := c.Matrices(CurrentViewport(s))
	SetViewingMatrix(s, c, view)
	SetProjectionMatrix(s, c, proj)
}

// Callback calls a function for every action that traverses it. The
// function may read and write elements.
type Callback struct {
	NodeBase

	fn field[func(a Action)]
}

// NewCallback creates a callback node.
func NewCallback(fn func(a Action)) *Callback {
	c := &Callback{}
	c.InitNode(c)
	c.fn.set(fn)
	return c
}

// SetFunc replaces the function.
func (c *Callback) SetFunc(fn func(a Action)) {
	c.fn.set(fn)
	c.Touch()
}

// Act calls the function.
func (c *Callback) Act(a Action) {
	if fn := c.fn.get(); fn != nil {
		fn(a)
	}
}
