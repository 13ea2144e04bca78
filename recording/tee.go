package recording

import (
	"errors"
	"image"

	"github.com/gogpu/sg/linear"
)

// Tee returns a Backend that forwards every call to each of backends in
// order. Begin and End stop at the first error; Features is the
// intersection of the members' features.
func Tee(backends ...Backend) Backend {
	if len(backends) == 1 {
		return backends[0]
	}
	return tee(backends)
}

type tee []Backend

func (t tee) Begin(width, height int) error {
	for _, b := range t {
		if err := b.Begin(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) End() error {
	var errs []error
	for _, b := range t {
		errs = append(errs, b.End())
	}
	return errors.Join(errs...)
}

func (t tee) Features() Features {
	fs := ^Features(0)
	for _, b := range t {
		fs &= b.Features()
	}
	return fs
}

func (t tee) SetCamera(view, projection linear.Mat4) {
	for _, b := range t {
		b.SetCamera(view, projection)
	}
}

func (t tee) SetModelMatrix(m linear.Mat4) {
	for _, b := range t {
		b.SetModelMatrix(m)
	}
}

func (t tee) SetMaterial(m Material) {
	for _, b := range t {
		b.SetMaterial(m)
	}
}

func (t tee) SetDrawStyle(s DrawStyle) {
	for _, b := range t {
		b.SetDrawStyle(s)
	}
}

func (t tee) SetClipPlanes(planes []linear.Plane) {
	for _, b := range t {
		b.SetClipPlanes(planes)
	}
}

func (t tee) BindShader(s *Shader) {
	for _, b := range t {
		b.BindShader(s)
	}
}

func (t tee) BindTexture(img image.Image) {
	for _, b := range t {
		b.BindTexture(img)
	}
}

func (t tee) Draw(p *Primitives) {
	for _, b := range t {
		b.Draw(p)
	}
}
