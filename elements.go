package sg

import (
	"image"
	"slices"

	"github.com/RoaringBitmap/roaring"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

var identityMatrix = linear.Identity()

type matrixValue linear.Mat4

func (m matrixValue) Equal(other Value) bool {
	o, ok := other.(matrixValue)
	return ok && o == m
}

func (m matrixValue) Clone() Value { return m }

type floatValue float64

func (f floatValue) Equal(other Value) bool {
	o, ok := other.(floatValue)
	return ok && o == f
}

func (f floatValue) Clone() Value { return f }

type intValue int

func (i intValue) Equal(other Value) bool {
	o, ok := other.(intValue)
	return ok && o == i
}

func (i intValue) Clone() Value { return i }

type featuresValue recording.Features

func (f featuresValue) Equal(other Value) bool {
	o, ok := other.(featuresValue)
	return ok && o == f
}

func (f featuresValue) Clone() Value { return f }

type vec3List []linear.Vec3

func (l vec3List) Equal(other Value) bool {
	o, ok := other.(vec3List)
	return ok && slices.Equal(l, o)
}

func (l vec3List) Clone() Value { return slices.Clone(l) }

// ActivePlane is an active clipping plane in world space.
type ActivePlane struct {
	Plane linear.Plane
	// NodeID identifies the node that added the plane.
	NodeID uint64
}

type planeList []ActivePlane

func (l planeList) Equal(other Value) bool {
	o, ok := other.(planeList)
	return ok && slices.Equal(l, o)
}

func (l planeList) Clone() Value { return slices.Clone(l) }

type overrideMask struct{ kinds *roaring.Bitmap }

func newOverrideMask() overrideMask { return overrideMask{kinds: roaring.New()} }

func (m overrideMask) Equal(other Value) bool {
	o, ok := other.(overrideMask)
	return ok && m.kinds.Equals(o.kinds)
}

func (m overrideMask) Clone() Value { return overrideMask{kinds: m.kinds.Clone()} }

// Viewport is the target region of a render traversal.
type Viewport struct {
	X, Y          int
	Width, Height int
	Format        gputypes.TextureFormat
}

// DefaultViewport returns a 640x480 RGBA8 viewport.
func DefaultViewport() Viewport {
	return Viewport{Width: 640, Height: 480, Format: gputypes.TextureFormatRGBA8Unorm}
}

// Aspect returns width divided by height, or 1 for an empty viewport.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

func (v Viewport) Equal(other Value) bool {
	o, ok := other.(Viewport)
	return ok && o == v
}

func (v Viewport) Clone() Value { return v }

// MaterialProps holds the surface properties set by Material nodes.
// Diffuse holds one color per part, face or vertex depending on the
// material binding; the first entry is used for overall binding.
type MaterialProps struct {
	Ambient      linear.RGBA
	Diffuse      []linear.RGBA
	Specular     linear.RGBA
	Emissive     linear.RGBA
	Shininess    float64
	Transparency float64
}

// DefaultMaterial returns the material in effect when no Material node
// was traversed.
func DefaultMaterial() MaterialProps {
	return MaterialProps{
		Ambient:   linear.RGB(0.2, 0.2, 0.2),
		Diffuse:   []linear.RGBA{linear.RGB(0.8, 0.8, 0.8)},
		Specular:  linear.Black,
		Emissive:  linear.Black,
		Shininess: 0.2,
	}
}

// DiffuseAt returns the diffuse color for index i, clamping to the last
// entry.
func (m MaterialProps) DiffuseAt(i int) linear.RGBA {
	if len(m.Diffuse) == 0 {
		return linear.Gray
	}
	return m.Diffuse[min(max(i, 0), len(m.Diffuse)-1)]
}

func (m MaterialProps) Equal(other Value) bool {
	o, ok := other.(MaterialProps)
	if !ok {
		return false
	}
	return m.Ambient == o.Ambient && m.Specular == o.Specular && m.Emissive == o.Emissive &&
		m.Shininess == o.Shininess && m.Transparency == o.Transparency &&
		slices.Equal(m.Diffuse, o.Diffuse)
}

func (m MaterialProps) Clone() Value {
	m.Diffuse = slices.Clone(m.Diffuse)
	return m
}

// Binding tells shapes how to map materials or normals onto geometry.
type Binding uint8

const (
	BindOverall Binding = iota
	BindPerPart
	BindPerPartIndexed
	BindPerFace
	BindPerFaceIndexed
	BindPerVertex
	BindPerVertexIndexed
)

var bindingNames = [...]string{"OVERALL", "PER_PART", "PER_PART_INDEXED", "PER_FACE", "PER_FACE_INDEXED", "PER_VERTEX", "PER_VERTEX_INDEXED"}

func (b Binding) String() string {
	if int(b) < len(bindingNames) {
		return bindingNames[b]
	}
	return "Binding(?)"
}

func (b Binding) Equal(other Value) bool { o, ok := other.(Binding); return ok && o == b }
func (b Binding) Clone() Value           { return b }

// Style is the draw style of shapes.
type Style uint8

const (
	StyleFilled Style = iota
	StyleLines
	StylePoints
	StyleInvisible
)

func (s Style) String() string {
	switch s {
	case StyleFilled:
		return "FILLED"
	case StyleLines:
		return "LINES"
	case StylePoints:
		return "POINTS"
	case StyleInvisible:
		return "INVISIBLE"
	}
	return "Style(?)"
}

func (s Style) Equal(other Value) bool { o, ok := other.(Style); return ok && o == s }
func (s Style) Clone() Value           { return s }

// PickMode controls how shapes respond to pick rays.
type PickMode uint8

const (
	// PickShape tests the shape geometry.
	PickShape PickMode = iota
	// PickBoundingBox tests the shape bounding box only.
	PickBoundingBox
	// PickUnpickable makes shapes transparent to pick rays.
	PickUnpickable
)

func (p PickMode) Equal(other Value) bool { o, ok := other.(PickMode); return ok && o == p }
func (p PickMode) Clone() Value           { return p }

// Lighting is the lighting model applied to shapes.
type Lighting uint8

const (
	LightBaseColor Lighting = iota
	LightPhong
)

func (l Lighting) Equal(other Value) bool { o, ok := other.(Lighting); return ok && o == l }
func (l Lighting) Clone() Value           { return l }

// Shader is a compiled shader program bound by a ShaderProgram node.
// Shaders are immutable and compared by source hash.
type Shader struct {
	Label  string
	Source string
	Key    uint64
	SPIRV  []byte
}

func (sh *Shader) Equal(other Value) bool {
	o, ok := other.(*Shader)
	if !ok {
		return false
	}
	if sh == nil || o == nil {
		return sh == o
	}
	return sh.Key == o.Key
}

func (sh *Shader) Clone() Value { return sh }

// TextureWrap selects how coordinates outside [0,1] are handled.
type TextureWrap uint8

const (
	WrapRepeat TextureWrap = iota
	WrapClamp
)

// Texture is an image bound by a Texture2 node. Textures are immutable
// and compared by content hash.
type Texture struct {
	Image *image.RGBA
	Key   uint64
	WrapS TextureWrap
	WrapT TextureWrap
}

func (t *Texture) Equal(other Value) bool {
	o, ok := other.(*Texture)
	if !ok {
		return false
	}
	if t == nil || o == nil {
		return t == o
	}
	return t.Key == o.Key && t.WrapS == o.WrapS && t.WrapT == o.WrapT
}

func (t *Texture) Clone() Value { return t }

// Switch child selection values stored in SwitchKind.
const (
	SwitchNone    = -1
	SwitchInherit = -2
	SwitchAll     = -3
)

// ModelMatrix returns the current object-to-world matrix.
func ModelMatrix(s *State) linear.Mat4 {
	return linear.Mat4(s.Get(ModelMatrixKind).(matrixValue))
}

// SetModelMatrix replaces the model matrix.
func SetModelMatrix(s *State, n Node, m linear.Mat4) {
	s.Set(ModelMatrixKind, n, matrixValue(m))
}

// MultModelMatrix post-multiplies the model matrix by m.
func MultModelMatrix(s *State, n Node, m linear.Mat4) {
	s.Modify(ModelMatrixKind, n, func(v Value) Value {
		return matrixValue(linear.Mat4(v.(matrixValue)).Mul(m))
	})
}

// ViewingMatrix returns the world-to-camera matrix.
func ViewingMatrix(s *State) linear.Mat4 {
	return linear.Mat4(s.Get(ViewingMatrixKind).(matrixValue))
}

// SetViewingMatrix replaces the viewing matrix.
func SetViewingMatrix(s *State, n Node, m linear.Mat4) {
	s.Set(ViewingMatrixKind, n, matrixValue(m))
}

// ProjectionMatrix returns the camera projection matrix.
func ProjectionMatrix(s *State) linear.Mat4 {
	return linear.Mat4(s.Get(ProjectionMatrixKind).(matrixValue))
}

// SetProjectionMatrix replaces the projection matrix.
func SetProjectionMatrix(s *State, n Node, m linear.Mat4) {
	s.Set(ProjectionMatrixKind, n, matrixValue(m))
}

// CurrentViewport returns the viewport in effect.
func CurrentViewport(s *State) Viewport { return s.Get(ViewportKind).(Viewport) }

// SetViewport replaces the viewport.
func SetViewport(s *State, n Node, vp Viewport) { s.Set(ViewportKind, n, vp) }

// CurrentMaterial returns the material in effect. The Diffuse slice is
// shared with the state and must not be modified.
func CurrentMaterial(s *State) MaterialProps { return s.Get(MaterialKind).(MaterialProps) }

// SetMaterial replaces the material.
func SetMaterial(s *State, n Node, m MaterialProps) { s.Set(MaterialKind, n, m.Clone()) }

// CurrentMaterialBinding returns the material binding in effect.
func CurrentMaterialBinding(s *State) Binding { return s.Get(MaterialBindingKind).(Binding) }

// SetMaterialBinding replaces the material binding.
func SetMaterialBinding(s *State, n Node, b Binding) { s.Set(MaterialBindingKind, n, b) }

// CurrentNormalBinding returns the normal binding in effect.
func CurrentNormalBinding(s *State) Binding { return s.Get(NormalBindingKind).(Binding) }

// SetNormalBinding replaces the normal binding.
func SetNormalBinding(s *State, n Node, b Binding) { s.Set(NormalBindingKind, n, b) }

// CurrentDrawStyle returns the draw style in effect.
func CurrentDrawStyle(s *State) Style { return s.Get(DrawStyleKind).(Style) }

// SetDrawStyle replaces the draw style.
func SetDrawStyle(s *State, n Node, st Style) { s.Set(DrawStyleKind, n, st) }

// LineWidth returns the line width in pixels.
func LineWidth(s *State) float64 { return float64(s.Get(LineWidthKind).(floatValue)) }

// SetLineWidth replaces the line width.
func SetLineWidth(s *State, n Node, w float64) { s.Set(LineWidthKind, n, floatValue(w)) }

// PointSize returns the point size in pixels.
func PointSize(s *State) float64 { return float64(s.Get(PointSizeKind).(floatValue)) }

// SetPointSize replaces the point size.
func SetPointSize(s *State, n Node, size float64) { s.Set(PointSizeKind, n, floatValue(size)) }

// Coordinates returns the current coordinate list. The slice is shared
// with the state and must not be modified.
func Coordinates(s *State) []linear.Vec3 { return s.Get(CoordinateKind).(vec3List) }

// SetCoordinates replaces the coordinate list.
func SetCoordinates(s *State, n Node, pts []linear.Vec3) {
	s.Set(CoordinateKind, n, vec3List(slices.Clone(pts)))
}

// Normals returns the current normal list. The slice is shared with the
// state and must not be modified.
func Normals(s *State) []linear.Vec3 { return s.Get(NormalKind).(vec3List) }

// SetNormals replaces the normal list.
func SetNormals(s *State, n Node, normals []linear.Vec3) {
	s.Set(NormalKind, n, vec3List(slices.Clone(normals)))
}

// ClipPlanes returns the active clip planes in world space.
func ClipPlanes(s *State) []ActivePlane { return s.Get(ClipPlaneKind).(planeList) }

// AddClipPlane adds an object-space plane, transformed to world space by
// the current model matrix.
func AddClipPlane(s *State, n Node, pl linear.Plane) {
	world := pl.Transform(ModelMatrix(s))
	var id uint64
	if n != nil {
		id = n.Base().ID()
	}
	s.Modify(ClipPlaneKind, n, func(v Value) Value {
		return append(v.(planeList), ActivePlane{Plane: world, NodeID: id})
	})
}

// CurrentComplexity returns the tessellation complexity in [0,1].
func CurrentComplexity(s *State) float64 { return float64(s.Get(ComplexityKind).(floatValue)) }

// SetComplexity replaces the complexity.
func SetComplexity(s *State, n Node, c float64) {
	s.Set(ComplexityKind, n, floatValue(min(max(c, 0), 1)))
}

// CurrentPickStyle returns the pick mode in effect.
func CurrentPickStyle(s *State) PickMode { return s.Get(PickStyleKind).(PickMode) }

// SetPickStyle replaces the pick mode.
func SetPickStyle(s *State, n Node, p PickMode) { s.Set(PickStyleKind, n, p) }

// CurrentLightModel returns the lighting model in effect.
func CurrentLightModel(s *State) Lighting { return s.Get(LightModelKind).(Lighting) }

// SetLightModel replaces the lighting model.
func SetLightModel(s *State, n Node, l Lighting) { s.Set(LightModelKind, n, l) }

// CurrentShader returns the bound shader, or nil.
func CurrentShader(s *State) *Shader { return s.Get(ShaderKind).(*Shader) }

// SetShader binds a shader.
func SetShader(s *State, n Node, sh *Shader) { s.Set(ShaderKind, n, sh) }

// CurrentTexture returns the bound texture, or nil.
func CurrentTexture(s *State) *Texture { return s.Get(TextureKind).(*Texture) }

// SetTexture binds a texture.
func SetTexture(s *State, n Node, t *Texture) { s.Set(TextureKind, n, t) }

// SwitchIndex returns the inherited switch child index.
func SwitchIndex(s *State) int { return int(s.Get(SwitchKind).(intValue)) }

// SetSwitchIndex replaces the inherited switch child index.
func SetSwitchIndex(s *State, n Node, i int) { s.Set(SwitchKind, n, intValue(i)) }

// BackendFeatures returns the features of the backend being rendered
// into. Render caches that emit feature-dependent commands depend on it.
func BackendFeatures(s *State) recording.Features {
	return recording.Features(s.Get(BackendFeaturesKind).(featuresValue))
}

// SetBackendFeatures replaces the backend features.
func SetBackendFeatures(s *State, n Node, fs recording.Features) {
	s.Set(BackendFeaturesKind, n, featuresValue(fs))
}

// IsOverridden reports whether an override-flagged node has locked k.
func IsOverridden(s *State, k Kind) bool {
	return s.Get(OverrideKind).(overrideMask).kinds.Contains(uint32(k))
}

// ElementValue returns the current value of an extension kind registered
// with a payload of type T.
func ElementValue[T any](s *State, k Kind) T {
	t, _ := unwrapValue(s.Get(k)).(T)
	return t
}

// SetElementValue sets an extension kind.
func SetElementValue[T any](s *State, k Kind, n Node, v T) {
	s.Set(k, n, wrapValue(v))
}
