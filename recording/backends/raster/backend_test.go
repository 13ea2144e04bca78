package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

// bigTriangle covers the center of an identity-projected viewport.
func bigTriangle() *recording.Primitives {
	return &recording.Primitives{
		Mode:      recording.Triangles,
		Positions: []linear.Vec3{{-0.9, -0.9, 0}, {0.9, -0.9, 0}, {0, 0.9, 0}},
	}
}

func TestBackendRegistration(t *testing.T) {
	require.True(t, recording.IsRegistered("raster"))
	b, err := recording.NewBackend("raster")
	require.NoError(t, err)
	assert.IsType(t, &Backend{}, b)
}

func TestBackendLifecycle(t *testing.T) {
	b := NewBackend()
	require.Error(t, b.End())
	require.Error(t, b.Begin(0, 10))

	require.NoError(t, b.Begin(32, 16))
	require.NoError(t, b.End())
	assert.Equal(t, 32, b.Width())
	assert.Equal(t, 16, b.Height())
	require.NotNil(t, b.Image())
	assert.Equal(t, 32, b.Image().Bounds().Dx())
}

func TestBackendFillsTriangle(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Begin(40, 40))
	b.SetMaterial(recording.Material{Diffuse: linear.Red})
	b.Draw(bigTriangle())
	require.NoError(t, b.End())

	c := b.Image().RGBAAt(20, 22)
	assert.Equal(t, uint8(255), c.R)
	assert.Zero(t, c.G)

	corner := b.Image().RGBAAt(1, 1)
	assert.Zero(t, corner.R, "outside the triangle stays background")
}

func TestBackendClipPlaneRemovesTriangle(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Begin(40, 40))
	b.SetMaterial(recording.Material{Diffuse: linear.Red})
	b.SetClipPlanes([]linear.Plane{linear.NewPlane(linear.V3(0, 0, -1), linear.V3(0, 0, -1))})
	b.Draw(bigTriangle())
	require.NoError(t, b.End())

	assert.Zero(t, b.Image().RGBAAt(20, 22).R)
}

func TestBackendPainterOrder(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Begin(40, 40))

	// Near triangle drawn first must still end up on top.
	b.SetMaterial(recording.Material{Diffuse: linear.Green})
	b.SetModelMatrix(linear.Translate(0, 0, -0.5))
	b.Draw(bigTriangle())

	b.SetMaterial(recording.Material{Diffuse: linear.Blue})
	b.SetModelMatrix(linear.Translate(0, 0, 0.5))
	b.Draw(bigTriangle())
	require.NoError(t, b.End())

	c := b.Image().RGBAAt(20, 22)
	assert.Equal(t, uint8(255), c.G)
	assert.Zero(t, c.B)
}

func TestBackendLinesAndPoints(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Begin(40, 40))
	b.SetMaterial(recording.Material{Diffuse: linear.White})
	b.SetDrawStyle(recording.DrawStyle{Mode: recording.FillSolid, LineWidth: 3, PointSize: 4})
	b.Draw(&recording.Primitives{Mode: recording.Lines, Positions: []linear.Vec3{{-1, 0, 0}, {1, 0, 0}}})
	b.Draw(&recording.Primitives{Mode: recording.Points, Positions: []linear.Vec3{{0.5, 0.5, 0}}})
	require.NoError(t, b.End())

	assert.Equal(t, uint8(255), b.Image().RGBAAt(10, 20).R, "horizontal line through the middle")
	assert.Equal(t, uint8(255), b.Image().RGBAAt(30, 10).R, "point at (0.5, 0.5)")
}

func TestBackendWireframe(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Begin(40, 40))
	b.SetMaterial(recording.Material{Diffuse: linear.White})
	b.SetDrawStyle(recording.DrawStyle{Mode: recording.FillLines, LineWidth: 1})
	b.Draw(bigTriangle())
	require.NoError(t, b.End())

	assert.Zero(t, b.Image().RGBAAt(20, 22).R, "interior is not filled")
}

func TestBackendWriteTo(t *testing.T) {
	b := NewBackend()
	b.SetBackground(linear.White)
	require.NoError(t, b.Begin(8, 8))
	require.NoError(t, b.End())

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	r, _, _, _ := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestBackendFeatures(t *testing.T) {
	fs := NewBackend().Features()
	assert.True(t, fs.Has(recording.FeatureClipPlanes))
	assert.False(t, fs.Has(recording.FeatureTextures))
}
