package recording

import (
	"slices"

	"github.com/gogpu/sg/linear"
)

// CommandType identifies the type of a command.
// Each command type corresponds to a specific Backend method.
type CommandType uint8

const (
	// State commands
	CmdSetCamera      CommandType = iota // Set viewing and projection matrices
	CmdSetModelMatrix                    // Set object-to-world matrix
	CmdSetMaterial                       // Set surface material
	CmdSetDrawStyle                      // Set rasterization style
	CmdSetClipPlanes                     // Replace clip planes
	CmdBindShader                        // Bind shader program
	CmdBindTexture                       // Bind texture image

	// Drawing commands
	CmdDraw // Draw a primitive batch
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdSetCamera:      "SetCamera",
	CmdSetModelMatrix: "SetModelMatrix",
	CmdSetMaterial:    "SetMaterial",
	CmdSetDrawStyle:   "SetDrawStyle",
	CmdSetClipPlanes:  "SetClipPlanes",
	CmdBindShader:     "BindShader",
	CmdBindTexture:    "BindTexture",
	CmdDraw:           "Draw",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Payload Types
// --------------------------------------------------------------------------

// Material is the surface description sent to backends.
type Material struct {
	Ambient      linear.RGBA
	Diffuse      linear.RGBA
	Specular     linear.RGBA
	Emissive     linear.RGBA
	Shininess    float64
	Transparency float64

	// Lit is false for base-color lighting: Diffuse is used unshaded.
	Lit bool
}

// FillMode selects how primitives are rasterized.
type FillMode uint8

const (
	FillSolid FillMode = iota
	FillLines
	FillPoints
)

// DrawStyle is the rasterization style sent to backends.
type DrawStyle struct {
	Mode      FillMode
	LineWidth float64
	PointSize float64
}

// Shader is a compiled shader program.
type Shader struct {
	Label string
	Key   uint64
	SPIRV []byte
}

// Mode is the primitive topology of a Draw call.
type Mode uint8

const (
	Triangles Mode = iota
	Lines
	Points
)

func (m Mode) String() string {
	switch m {
	case Triangles:
		return "Triangles"
	case Lines:
		return "Lines"
	case Points:
		return "Points"
	}
	return "Mode(?)"
}

// Primitives is a batch of object-space geometry. Positions holds three
// vertices per triangle, two per line, or one per point. Normals and
// Colors are per vertex when present; a nil Colors uses the material
// diffuse color.
type Primitives struct {
	Mode      Mode
	Positions []linear.Vec3
	Normals   []linear.Vec3
	Colors    []linear.RGBA
}

// Count returns the number of primitives in the batch.
func (p *Primitives) Count() int {
	switch p.Mode {
	case Triangles:
		return len(p.Positions) / 3
	case Lines:
		return len(p.Positions) / 2
	default:
		return len(p.Positions)
	}
}

// Clone returns a deep copy of p.
func (p *Primitives) Clone() *Primitives {
	return &Primitives{
		Mode:      p.Mode,
		Positions: slices.Clone(p.Positions),
		Normals:   slices.Clone(p.Normals),
		Colors:    slices.Clone(p.Colors),
	}
}

// --------------------------------------------------------------------------
// Reference Types
// --------------------------------------------------------------------------

// MeshRef is a reference to a primitive batch in the resource pool.
type MeshRef uint32

// ImageRef is a reference to an image in the resource pool.
type ImageRef uint32

// ShaderRef is a reference to a shader in the resource pool.
type ShaderRef uint32

// InvalidRef is the sentinel value for an invalid reference. Bind
// commands carrying it unbind.
const InvalidRef = ^uint32(0)

// IsValid returns true if the reference points to a valid mesh.
func (r MeshRef) IsValid() bool { return uint32(r) != InvalidRef }

// IsValid returns true if the reference points to a valid image.
func (r ImageRef) IsValid() bool { return uint32(r) != InvalidRef }

// IsValid returns true if the reference points to a valid shader.
func (r ShaderRef) IsValid() bool { return uint32(r) != InvalidRef }

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// SetCameraCommand sets the viewing and projection matrices.
type SetCameraCommand struct {
	View       linear.Mat4
	Projection linear.Mat4
}

// Type implements Command.
func (SetCameraCommand) Type() CommandType { return CmdSetCamera }

// SetModelMatrixCommand sets the object-to-world matrix.
type SetModelMatrixCommand struct {
	Matrix linear.Mat4
}

// Type implements Command.
func (SetModelMatrixCommand) Type() CommandType { return CmdSetModelMatrix }

// SetMaterialCommand sets the surface material.
type SetMaterialCommand struct {
	Material Material
}

// Type implements Command.
func (SetMaterialCommand) Type() CommandType { return CmdSetMaterial }

// SetDrawStyleCommand sets the rasterization style.
type SetDrawStyleCommand struct {
	Style DrawStyle
}

// Type implements Command.
func (SetDrawStyleCommand) Type() CommandType { return CmdSetDrawStyle }

// SetClipPlanesCommand replaces the clip planes.
type SetClipPlanesCommand struct {
	Planes []linear.Plane
}

// Type implements Command.
func (SetClipPlanesCommand) Type() CommandType { return CmdSetClipPlanes }

// BindShaderCommand binds a pooled shader.
type BindShaderCommand struct {
	Shader ShaderRef
}

// Type implements Command.
func (BindShaderCommand) Type() CommandType { return CmdBindShader }

// BindTextureCommand binds a pooled image.
type BindTextureCommand struct {
	Image ImageRef
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// DrawCommand draws a pooled primitive batch.
type DrawCommand struct {
	Mesh MeshRef
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }
