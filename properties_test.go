package sg

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/sg/linear"
)

// reader is a callback node that runs read against the state it sees.
func reader(read func(s *State)) *Callback {
	return NewCallback(func(a Action) { read(a.State()) })
}

// originAfter applies nodes and returns where they move the origin.
func originAfter(nodes ...Node) linear.Vec3 {
	var got linear.Vec3
	root := NewGroup(nodes...)
	root.AddChild(reader(func(s *State) { got = ModelMatrix(s).MulPoint(linear.Vec3{}) }))
	NewCallbackAction().Apply(root)
	return got
}

func TestTransformNodes(t *testing.T) {
	scaled := NewTransform()
	scaled.SetScale(linear.V3(2, 2, 2))
	scaled.SetCenter(linear.V3(1, 0, 0))

	full := NewTransform()
	full.SetTranslation(linear.V3(0, 0, 3))
	full.SetRotation(linear.V3(0, 0, 1), math.Pi/2)
	full.SetCenter(linear.V3(1, 0, 0))

	tests := []struct {
		name  string
		nodes []Node
		want  linear.Vec3
	}{
		{"translation", []Node{NewTranslation(1, 2, 3)}, linear.V3(1, 2, 3)},
		{"scale about center", []Node{scaled}, linear.V3(-1, 0, 0)},
		{"rotation about center", []Node{full}, linear.V3(1, -1, 3)},
		{"rotation then translation", []Node{NewRotation(linear.V3(0, 0, 1), math.Pi/2), NewTranslation(1, 0, 0)}, linear.V3(0, 1, 0)},
		{"scale composes", []Node{NewScale(2, 2, 2), NewTranslation(1, 0, 0)}, linear.V3(2, 0, 0)},
		{"matrix", []Node{NewMatrixTransform(linear.Translate(0, 5, 0))}, linear.V3(0, 5, 0)},
		{"reset", []Node{NewTranslation(4, 4, 4), NewResetTransform(), NewTranslation(0, 0, 1)}, linear.V3(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := originAfter(tt.nodes...)
			assert.True(t, got.ApproxEqual(tt.want, 1e-9), "got %v, want %v", got, tt.want)
		})
	}
}

func TestMaterialBindingPerFace(t *testing.T) {
	faces := []linear.RGBA{linear.Red, linear.Green, linear.Blue, linear.White, linear.Black, linear.Gray}
	s := NewState(allKinds())
	n := newLeaf()

	cube := NewCube(1, 1, 1)
	assert.Empty(t, cube.Primitives(s).Colors, "overall binding leaves colors to the material")

	SetMaterial(s, n, MaterialProps{Diffuse: faces})
	SetMaterialBinding(s, n, BindPerFace)
	p := cube.Primitives(s)
	require.Len(t, p.Colors, 36)
	for f := range faces {
		assert.Equal(t, faces[f], p.Colors[f*6], "face %d", f)
	}

	SetMaterial(s, n, MaterialProps{Diffuse: faces[:2]})
	p = cube.Primitives(s)
	assert.Equal(t, faces[1], p.Colors[35], "missing colors repeat the last one")
}

func TestDrawStyleSetsLineWidthAndPointSize(t *testing.T) {
	style := NewDrawStyle(StyleLines)
	style.SetLineWidth(3)
	style.SetPointSize(5)

	var width, size float64
	read := reader(func(s *State) { width, size = LineWidth(s), PointSize(s) })
	NewCallbackAction().Apply(NewGroup(NewSeparator(style), read))
	assert.Equal(t, 1.0, width)
	assert.Equal(t, 1.0, size)

	NewCallbackAction().Apply(NewGroup(style, read))
	assert.Equal(t, 3.0, width)
	assert.Equal(t, 5.0, size)
}

func TestLightModel(t *testing.T) {
	var got Lighting
	read := reader(func(s *State) { got = CurrentLightModel(s) })
	lm := NewLightModel(LightBaseColor)
	NewCallbackAction().Apply(NewGroup(lm, read))
	assert.Equal(t, LightBaseColor, got)

	lm.SetModel(LightPhong)
	NewCallbackAction().Apply(NewGroup(lm, read))
	assert.Equal(t, LightPhong, got)
}

func TestClipPlaneSwitchesOff(t *testing.T) {
	cp := NewClipPlane(linear.NewPlane(linear.V3(0, 1, 0), linear.Vec3{}))
	var n int
	read := reader(func(s *State) { n = len(ClipPlanes(s)) })
	root := NewGroup(cp, read)

	NewCallbackAction().Apply(root)
	assert.Equal(t, 1, n)
	cp.SetOn(false)
	NewCallbackAction().Apply(root)
	assert.Equal(t, 0, n)
}

func TestShaderProgramCompileFailure(t *testing.T) {
	prog := NewShaderProgram("broken", "this is not WGSL")
	_, err := prog.Shader()
	require.Error(t, err)
	assert.Equal(t, err, prog.Err())

	bound := true
	read := reader(func(s *State) { bound = CurrentShader(s) != nil })
	NewCallbackAction().Apply(NewGroup(prog, read))
	assert.False(t, bound, "a program that fails to compile binds nothing")

	prog.SetSource("still not WGSL")
	assert.NoError(t, prog.Err(), "a new source clears the error until the next compile")
}

func TestTexture2ResizesToPowerOfTwo(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	tex := NewTexture2()
	assert.Nil(t, tex.Texture())

	tex.SetImage(src, WrapClamp, WrapRepeat)
	got := tex.Texture()
	require.NotNil(t, got)
	assert.Equal(t, image.Rect(0, 0, 4, 8), got.Image.Bounds())
	assert.Equal(t, WrapClamp, got.WrapS)
	assert.Equal(t, WrapRepeat, got.WrapT)
	assert.NotZero(t, got.Key)

	square := image.NewRGBA(image.Rect(0, 0, 4, 4))
	square.Set(1, 2, color.RGBA{G: 255, A: 255})
	tex.SetImage(square, WrapRepeat, WrapRepeat)
	assert.Equal(t, square.Pix, tex.Texture().Image.Pix, "power-of-two images are copied unchanged")

	var bound *Texture
	NewCallbackAction().Apply(NewGroup(tex, reader(func(s *State) { bound = CurrentTexture(s) })))
	assert.Equal(t, tex.Texture(), bound)

	tex.SetImage(nil, WrapRepeat, WrapRepeat)
	assert.Nil(t, tex.Texture())
}

func TestNextPow2(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128} {
		assert.Equal(t, want, nextPow2(in), "nextPow2(%d)", in)
	}
}
