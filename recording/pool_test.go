package recording

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/sg/linear"
)

func TestNewResourcePool(t *testing.T) {
	p := NewResourcePool()
	assert.Zero(t, p.MeshCount())
	assert.Zero(t, p.ImageCount())
	assert.Zero(t, p.ShaderCount())
}

func TestResourcePool_AddMesh_Clones(t *testing.T) {
	p := NewResourcePool()
	m := &Primitives{Mode: Points, Positions: []linear.Vec3{{1, 2, 3}}}

	ref := p.AddMesh(m)
	m.Positions[0] = linear.V3(9, 9, 9)

	got := p.Mesh(ref)
	require.NotNil(t, got)
	assert.Equal(t, linear.V3(1, 2, 3), got.Positions[0])
	assert.Nil(t, p.Mesh(MeshRef(42)))
}

func TestResourcePool_AddImage_Dedup(t *testing.T) {
	p := NewResourcePool()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	a := p.AddImage(img)
	b := p.AddImage(img)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, p.ImageCount())

	assert.False(t, p.AddImage(nil).IsValid())
	assert.Nil(t, p.Image(ImageRef(InvalidRef)))
}

func TestResourcePool_AddShader_ByKey(t *testing.T) {
	p := NewResourcePool()
	a := p.AddShader(&Shader{Key: 7, Label: "a"})
	b := p.AddShader(&Shader{Key: 7, Label: "b"})
	c := p.AddShader(&Shader{Key: 8})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "a", p.Shader(b).Label)
	assert.False(t, p.AddShader(nil).IsValid())
}

func TestResourcePool_Clear(t *testing.T) {
	p := NewResourcePool()
	p.AddMesh(&Primitives{Positions: []linear.Vec3{{}}})
	p.AddShader(&Shader{Key: 1})
	p.Clear()
	assert.Zero(t, p.MeshCount())
	assert.Zero(t, p.ShaderCount())
}
