package sg

import (
	"fmt"
	"image"
	"math/bits"
	"slices"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/draw"

	"github.com/gogpu/sg/internal/shader"
	"github.com/gogpu/sg/linear"
)

// Material sets the surface material of the following shapes.
type Material struct {
	NodeBase

	props field[MaterialProps]
}

// NewMaterial creates a material node holding the default material.
func NewMaterial() *Material {
	m := &Material{}
	m.InitNode(m)
	m.props.set(DefaultMaterial())
	return m
}

// Props returns a copy of the material.
func (m *Material) Props() MaterialProps { return m.props.get().Clone().(MaterialProps) }

// SetProps replaces the material.
func (m *Material) SetProps(p MaterialProps) {
	m.props.set(p.Clone().(MaterialProps))
	m.Touch()
}

// SetDiffuse replaces the diffuse colors.
func (m *Material) SetDiffuse(colors ...linear.RGBA) {
	p := m.Props()
	p.Diffuse = slices.Clone(colors)
	m.SetProps(p)
}

// SetTransparency sets the transparency in [0,1].
func (m *Material) SetTransparency(t float64) {
	p := m.Props()
	p.Transparency = min(max(t, 0), 1)
	m.SetProps(p)
}

// Act sets MaterialKind.
func (m *Material) Act(a Action) { SetMaterial(a.State(), m, m.props.get()) }

// MaterialBinding sets how materials map onto geometry.
type MaterialBinding struct {
	NodeBase

	b field[Binding]
}

// NewMaterialBinding creates a material binding node.
func NewMaterialBinding(b Binding) *MaterialBinding {
	n := &MaterialBinding{}
	n.InitNode(n)
	n.b.set(b)
	return n
}

// SetBinding changes the binding.
func (n *MaterialBinding) SetBinding(b Binding) {
	n.b.set(b)
	n.Touch()
}

// Act sets MaterialBindingKind.
func (n *MaterialBinding) Act(a Action) { SetMaterialBinding(a.State(), n, n.b.get()) }

// NormalBinding sets how normals map onto geometry.
type NormalBinding struct {
	NodeBase

	b field[Binding]
}

// NewNormalBinding creates a normal binding node.
func NewNormalBinding(b Binding) *NormalBinding {
	n := &NormalBinding{}
	n.InitNode(n)
	n.b.set(b)
	return n
}

// SetBinding changes the binding.
func (n *NormalBinding) SetBinding(b Binding) {
	n.b.set(b)
	n.Touch()
}

// Act sets NormalBindingKind.
func (n *NormalBinding) Act(a Action) { SetNormalBinding(a.State(), n, n.b.get()) }

// DrawStyle sets the draw style, line width and point size.
type DrawStyle struct {
	NodeBase

	style     field[Style]
	lineWidth field[float64]
	pointSize field[float64]
}

// NewDrawStyle creates a draw style node.
func NewDrawStyle(st Style) *DrawStyle {
	d := &DrawStyle{}
	d.InitNode(d)
	d.style.set(st)
	d.lineWidth.set(1)
	d.pointSize.set(1)
	return d
}

// Style returns the style.
func (d *DrawStyle) Style() Style { return d.style.get() }

// SetStyle changes the style.
func (d *DrawStyle) SetStyle(st Style) {
	d.style.set(st)
	d.Touch()
}

// SetLineWidth changes the line width.
func (d *DrawStyle) SetLineWidth(w float64) {
	d.lineWidth.set(w)
	d.Touch()
}

// SetPointSize changes the point size.
func (d *DrawStyle) SetPointSize(size float64) {
	d.pointSize.set(size)
	d.Touch()
}

// Act sets DrawStyleKind, LineWidthKind and PointSizeKind.
func (d *DrawStyle) Act(a Action) {
	s := a.State()
	SetDrawStyle(s, d, d.style.get())
	SetLineWidth(s, d, d.lineWidth.get())
	SetPointSize(s, d, d.pointSize.get())
}

// Coordinate3 sets the coordinates used by vertex-based shapes.
type Coordinate3 struct {
	NodeBase

	points field[[]linear.Vec3]
}

// NewCoordinate3 creates a coordinate node.
func NewCoordinate3(points ...linear.Vec3) *Coordinate3 {
	c := &Coordinate3{}
	c.InitNode(c)
	c.points.set(slices.Clone(points))
	return c
}

// Points returns a copy of the coordinates.
func (c *Coordinate3) Points() []linear.Vec3 { return slices.Clone(c.points.get()) }

// SetPoints replaces the coordinates.
func (c *Coordinate3) SetPoints(points ...linear.Vec3) {
	c.points.set(slices.Clone(points))
	c.Touch()
}

// Act sets CoordinateKind.
func (c *Coordinate3) Act(a Action) { SetCoordinates(a.State(), c, c.points.get()) }

// Normal sets the normals used by vertex-based shapes.
type Normal struct {
	NodeBase

	vectors field[[]linear.Vec3]
}

// NewNormal creates a normal node.
func NewNormal(vectors ...linear.Vec3) *Normal {
	n := &Normal{}
	n.InitNode(n)
	n.vectors.set(slices.Clone(vectors))
	return n
}

// SetVectors replaces the normals.
func (n *Normal) SetVectors(vectors ...linear.Vec3) {
	n.vectors.set(slices.Clone(vectors))
	n.Touch()
}

// Act sets NormalKind.
func (n *Normal) Act(a Action) { SetNormals(a.State(), n, n.vectors.get()) }

// ClipPlane adds a clipping plane. Geometry on the negative side of the
// plane is not drawn or picked. Planes accumulate until the enclosing
// separator ends.
type ClipPlane struct {
	NodeBase

	plane field[linear.Plane]
	on    field[bool]
}

// NewClipPlane creates an active clip plane in object space.
func NewClipPlane(pl linear.Plane) *ClipPlane {
	c := &ClipPlane{}
	c.InitNode(c)
	c.plane.set(pl)
	c.on.set(true)
	return c
}

// Plane returns the plane.
func (c *ClipPlane) Plane() linear.Plane { return c.plane.get() }

// SetPlane changes the plane.
func (c *ClipPlane) SetPlane(pl linear.Plane) {
	c.plane.set(pl)
	c.Touch()
}

// SetOn activates or deactivates the plane.
func (c *ClipPlane) SetOn(on bool) {
	c.on.set(on)
	c.Touch()
}

// Act adds the plane to ClipPlaneKind.
func (c *ClipPlane) Act(a Action) {
	if c.on.get() {
		AddClipPlane(a.State(), c, c.plane.get())
	}
}

// Complexity sets the tessellation complexity of curved shapes.
type Complexity struct {
	NodeBase

	v field[float64]
}

// NewComplexity creates a complexity node; v is clamped to [0,1].
func NewComplexity(v float64) *Complexity {
	c := &Complexity{}
	c.InitNode(c)
	c.v.set(v)
	return c
}

// SetValue changes the complexity.
func (c *Complexity) SetValue(v float64) {
	c.v.set(v)
	c.Touch()
}

// Act sets ComplexityKind.
func (c *Complexity) Act(a Action) { SetComplexity(a.State(), c, c.v.get()) }

// PickStyle sets how the following shapes respond to pick rays.
type PickStyle struct {
	NodeBase

	mode field[PickMode]
}

// NewPickStyle creates a pick style node.
func NewPickStyle(m PickMode) *PickStyle {
	p := &PickStyle{}
	p.InitNode(p)
	p.mode.set(m)
	return p
}

// SetMode changes the pick mode.
func (p *PickStyle) SetMode(m PickMode) {
	p.mode.set(m)
	p.Touch()
}

// Act sets PickStyleKind.
func (p *PickStyle) Act(a Action) { SetPickStyle(a.State(), p, p.mode.get()) }

// LightModel selects between lit and unlit shading.
type LightModel struct {
	NodeBase

	model field[Lighting]
}

// NewLightModel creates a light model node.
func NewLightModel(l Lighting) *LightModel {
	n := &LightModel{}
	n.InitNode(n)
	n.model.set(l)
	return n
}

// SetModel changes the lighting model.
func (n *LightModel) SetModel(l Lighting) {
	n.model.set(l)
	n.Touch()
}

// Act sets LightModelKind.
func (n *LightModel) Act(a Action) { SetLightModel(a.State(), n, n.model.get()) }

// ShaderProgram binds a WGSL shader program compiled to SPIR-V. A
// program that fails to compile binds nothing; Err reports the failure.
type ShaderProgram struct {
	NodeBase

	label  field[string]
	source field[string]
	cached field[*Shader]
	err    field[error]
}

// NewShaderProgram creates a shader program node.
func NewShaderProgram(label, source string) *ShaderProgram {
	p := &ShaderProgram{}
	p.InitNode(p)
	p.label.set(label)
	p.source.set(source)
	return p
}

// SetSource replaces the WGSL source.
func (p *ShaderProgram) SetSource(source string) {
	p.source.set(source)
	p.cached.set(nil)
	p.err.set(nil)
	p.Touch()
}

// Err returns the last compile error.
func (p *ShaderProgram) Err() error { return p.err.get() }

// Shader returns the compiled program, compiling it on first use.
func (p *ShaderProgram) Shader() (*Shader, error) {
	if sh := p.cached.get(); sh != nil {
		return sh, nil
	}
	src := p.source.get()
	prog, err := shader.Compile(p.label.get(), src)
	if err != nil {
		p.err.set(err)
		return nil, err
	}
	sh := &Shader{Label: prog.Label, Source: src, Key: prog.Key, SPIRV: prog.SPIRV}
	p.cached.set(sh)
	return sh, nil
}

// Act sets ShaderKind.
func (p *ShaderProgram) Act(a Action) {
	sh, err := p.Shader()
	if err != nil {
		return
	}
	SetShader(a.State(), p, sh)
}

// Texture2 binds a 2D texture image. Images are resampled to
// power-of-two dimensions when set.
type Texture2 struct {
	NodeBase

	tex field[*Texture]
}

// NewTexture2 creates a texture node without an image.
func NewTexture2() *Texture2 {
	t := &Texture2{}
	t.InitNode(t)
	return t
}

// SetImage replaces the image. A nil image unbinds the texture.
func (t *Texture2) SetImage(img image.Image, wrapS, wrapT TextureWrap) {
	if img == nil {
		t.tex.set(nil)
		t.Touch()
		return
	}
	rgba := powerOfTwo(img)
	t.tex.set(&Texture{
		Image: rgba,
		Key:   xxhash.Sum64(rgba.Pix),
		WrapS: wrapS,
		WrapT: wrapT,
	})
	t.Touch()
}

// Texture returns the bound texture, or nil.
func (t *Texture2) Texture() *Texture { return t.tex.get() }

// Act sets TextureKind.
func (t *Texture2) Act(a Action) { SetTexture(a.State(), t, t.tex.get()) }

// powerOfTwo copies img into an RGBA image whose sides are the next
// powers of two, scaling with bilinear filtering when needed.
func powerOfTwo(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := nextPow2(b.Dx()), nextPow2(b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	Logger().Debug("sg: texture resized", "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "to", fmt.Sprintf("%dx%d", w, h))
	return dst
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
