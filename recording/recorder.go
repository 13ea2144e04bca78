package recording

import (
	"image"
	"slices"

	"github.com/gogpu/sg/linear"
)

// Recorder captures draw calls as commands. It implements Backend, so a
// render traversal can draw into it directly, or through Tee alongside
// a real backend. Use FinishRecording to obtain an immutable Recording
// that can be replayed to different backends.
//
// Example:
//
//	rec := recording.NewRecorder()
//	rec.SetModelMatrix(linear.Translate(1, 0, 0))
//	rec.Draw(cube)
//	r := rec.FinishRecording()
//	r.Playback(backend)
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	features      Features
	commands      []Command
	resources     *ResourcePool
}

// Ensure Recorder implements Backend.
var _ Backend = (*Recorder)(nil)

// NewRecorder creates an empty Recorder. Its Features are all features,
// so nothing is filtered out at record time; the backend a recording is
// replayed to decides what it honours.
func NewRecorder() *Recorder {
	return &Recorder{
		features:  ^Features(0),
		commands:  make([]Command, 0, 64),
		resources: NewResourcePool(),
	}
}

// FinishRecording returns an immutable Recording containing all recorded
// commands. After calling FinishRecording, the Recorder should not be used
// again.
func (r *Recorder) FinishRecording() *Recording {
	return &Recording{
		width:     r.width,
		height:    r.height,
		commands:  r.commands,
		resources: r.resources,
	}
}

// Len returns the number of commands recorded so far.
func (r *Recorder) Len() int { return len(r.commands) }

// Begin records the target dimensions. It does not emit a command.
func (r *Recorder) Begin(width, height int) error {
	r.width, r.height = width, height
	return nil
}

// End implements Backend.
func (r *Recorder) End() error { return nil }

// Features implements Backend.
func (r *Recorder) Features() Features { return r.features }

// SetCamera implements Backend.
func (r *Recorder) SetCamera(view, projection linear.Mat4) {
	r.commands = append(r.commands, SetCameraCommand{View: view, Projection: projection})
}

// SetModelMatrix implements Backend.
func (r *Recorder) SetModelMatrix(m linear.Mat4) {
	r.commands = append(r.commands, SetModelMatrixCommand{Matrix: m})
}

// SetMaterial implements Backend.
func (r *Recorder) SetMaterial(m Material) {
	r.commands = append(r.commands, SetMaterialCommand{Material: m})
}

// SetDrawStyle implements Backend.
func (r *Recorder) SetDrawStyle(s DrawStyle) {
	r.commands = append(r.commands, SetDrawStyleCommand{Style: s})
}

// SetClipPlanes implements Backend.
func (r *Recorder) SetClipPlanes(planes []linear.Plane) {
	r.commands = append(r.commands, SetClipPlanesCommand{Planes: slices.Clone(planes)})
}

// BindShader implements Backend.
func (r *Recorder) BindShader(s *Shader) {
	r.commands = append(r.commands, BindShaderCommand{Shader: r.resources.AddShader(s)})
}

// BindTexture implements Backend.
func (r *Recorder) BindTexture(img image.Image) {
	r.commands = append(r.commands, BindTextureCommand{Image: r.resources.AddImage(img)})
}

// Draw implements Backend. The batch is copied into the resource pool.
func (r *Recorder) Draw(p *Primitives) {
	if p == nil || len(p.Positions) == 0 {
		return
	}
	r.commands = append(r.commands, DrawCommand{Mesh: r.resources.AddMesh(p)})
}

// Recording is an immutable container for recorded draw commands.
// It can be replayed to any Backend implementation, concurrently if the
// backends are distinct.
type Recording struct {
	width, height int
	commands      []Command
	resources     *ResourcePool
}

// Width returns the width passed to the recorder's Begin, or 0.
func (r *Recording) Width() int { return r.width }

// Height returns the height passed to the recorder's Begin, or 0.
func (r *Recording) Height() int { return r.height }

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command { return r.commands }

// Resources returns the resource pool.
func (r *Recording) Resources() *ResourcePool { return r.resources }

// Len returns the number of recorded commands.
func (r *Recording) Len() int { return len(r.commands) }

// DrawCount returns the number of Draw commands.
func (r *Recording) DrawCount() int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == CmdDraw {
			n++
		}
	}
	return n
}

// Playback replays the recording to the given backend between Begin and
// End, using the recorded dimensions.
func (r *Recording) Playback(backend Backend) error {
	if err := backend.Begin(r.width, r.height); err != nil {
		return err
	}
	r.Replay(backend)
	return backend.End()
}

// Replay sends the recorded commands to a backend that is already
// between Begin and End.
func (r *Recording) Replay(backend Backend) {
	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case SetCameraCommand:
			backend.SetCamera(c.View, c.Projection)
		case SetModelMatrixCommand:
			backend.SetModelMatrix(c.Matrix)
		case SetMaterialCommand:
			backend.SetMaterial(c.Material)
		case SetDrawStyleCommand:
			backend.SetDrawStyle(c.Style)
		case SetClipPlanesCommand:
			backend.SetClipPlanes(c.Planes)
		case BindShaderCommand:
			backend.BindShader(r.resources.Shader(c.Shader))
		case BindTextureCommand:
			img := r.resources.Image(c.Image)
			backend.BindTexture(img)
		case DrawCommand:
			if m := r.resources.Mesh(c.Mesh); m != nil {
				backend.Draw(m)
			}
		}
	}
}
