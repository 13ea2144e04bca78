package recording

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks github.com/gogpu/sg/recording Backend

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/gogpu/sg/linear"
)

// Backend is the interface that all render backends must implement.
// Backends receive draw commands from RenderAction (directly or through a
// Recording) and translate them to their output: pixels, a text trace, or
// GPU command buffers.
//
// Backends are created via the registry using NewBackend(name) and
// registered via Register() in their init() functions.
//
// # Implementation Contract
//
// Each backend must:
//  1. Register in init() using recording.Register()
//  2. Handle all Backend methods (even if no-op for some)
//  3. Treat every Set/Bind call as replacing the previous value
//  4. Not retain the slices passed to Draw or SetClipPlanes after returning
//
// # Example Backend Registration
//
//	func init() {
//	    recording.Register("gpu", func() recording.Backend {
//	        return NewGPUBackend()
//	    })
//	}
type Backend interface {
	// Lifecycle methods

	// Begin initializes the backend for rendering at the given dimensions.
	// This must be called before any drawing operations.
	Begin(width, height int) error

	// End finalizes the rendering and prepares the output.
	End() error

	// Features reports the optional capabilities of the backend.
	Features() Features

	// State methods

	// SetCamera sets the world-to-camera and projection matrices.
	SetCamera(view, projection linear.Mat4)

	// SetModelMatrix sets the object-to-world matrix for following draws.
	SetModelMatrix(model linear.Mat4)

	// SetMaterial sets the surface material for following draws.
	SetMaterial(material Material)

	// SetDrawStyle sets how primitives are rasterized.
	SetDrawStyle(s DrawStyle)

	// SetClipPlanes replaces the active world-space clip planes.
	// A backend without FeatureClipPlanes ignores the call.
	SetClipPlanes(planes []linear.Plane)

	// BindShader binds a compiled shader program; nil unbinds.
	BindShader(s *Shader)

	// BindTexture binds a texture image; nil unbinds.
	BindTexture(img image.Image)

	// Drawing methods

	// Draw draws a batch of primitives in object space.
	Draw(p *Primitives)
}

// WriterBackend extends Backend with the ability to write output to an io.Writer.
type WriterBackend interface {
	Backend

	// WriteTo writes the rendered content to the given writer.
	// This should only be called after End().
	WriteTo(w io.Writer) (int64, error)
}

// FileBackend extends Backend with the ability to save output directly to a file.
type FileBackend interface {
	Backend

	// SaveToFile saves the rendered content to a file at the given path.
	// This should only be called after End().
	SaveToFile(path string) error
}

// ImageBackend extends Backend with access to the rendered image.
// This is implemented by the raster backend.
type ImageBackend interface {
	Backend

	// Image returns the rendered image, or nil before Begin.
	Image() *image.RGBA
}

// Feature is an optional backend capability.
type Feature uint32

const (
	// FeatureClipPlanes means SetClipPlanes is honoured.
	FeatureClipPlanes Feature = 1 << iota

	// FeatureShaders means BindShader is honoured.
	FeatureShaders

	// FeatureTextures means BindTexture is honoured.
	FeatureTextures

	// FeatureDepthTest means hidden surfaces are removed per pixel.
	FeatureDepthTest

	// FeatureLighting means materials are lit.
	FeatureLighting
)

// Features is a set of Feature flags.
type Features uint32

// Has reports whether f is in the set.
func (fs Features) Has(f Feature) bool {
	return uint32(fs)&uint32(f) != 0
}

// With returns the set with f added.
func (fs Features) With(f Feature) Features {
	return fs | Features(f)
}

var featureNames = [...]string{"clip-planes", "shaders", "textures", "depth-test", "lighting"}

func (f Feature) String() string {
	for i, name := range featureNames {
		if f == 1<<i {
			return name
		}
	}
	return fmt.Sprintf("Feature(%d)", uint32(f))
}

// String lists the features in the set, separated by commas.
func (fs Features) String() string {
	var names []string
	for i := range featureNames {
		if f := Feature(1 << i); fs.Has(f) {
			names = append(names, f.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
