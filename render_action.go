package sg

import (
	"errors"
	"fmt"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

// RenderAction draws the graph into a recording.Backend.
//
// Shape nodes send the complete render state before each draw, so the
// commands emitted below a separator form a self-contained recording
// that the separator can replay later. While a separator builds its
// render cache, the action tees everything it emits into a recorder.
type RenderAction struct {
	ActionBase

	target    recording.Backend
	ownTarget bool
	sink      recording.Backend
	recorders []*recording.Recorder
	viewport  Viewport

	frame   *recording.Recording
	err     error
	draws   int
	replays int
}

// NewRenderAction creates a render action. All registered kinds are
// enabled by default; BackendFeaturesKind is enabled even when
// WithEnabledKinds narrows the set. Without WithBackend, each Apply records into a fresh
// recording available from Recording.
func NewRenderAction(opts ...ActionOption) *RenderAction {
	a := &RenderAction{}
	a.InitAction(a, allKinds(), opts...)
	a.kinds.Add(uint32(BackendFeaturesKind))
	a.target = a.opts.backend
	a.ownTarget = a.target == nil

	vp := DefaultViewport()
	if a.opts.viewport != nil {
		vp = *a.opts.viewport
	}
	a.viewport = viewportFor(vp, a.opts.device)
	return a
}

// Backend returns the backend the action draws into.
func (a *RenderAction) Backend() recording.Backend { return a.target }

// Viewport returns the initial viewport.
func (a *RenderAction) Viewport() Viewport { return a.viewport }

// SetViewport changes the viewport for the next Apply.
func (a *RenderAction) SetViewport(vp Viewport) {
	a.viewport = viewportFor(vp, a.opts.device)
}

// Err returns the backend error of the last Apply, if any.
func (a *RenderAction) Err() error { return a.err }

// Recording returns the frame recorded by the last Apply when the action
// has no configured backend.
func (a *RenderAction) Recording() *recording.Recording { return a.frame }

// Draws returns the number of draw calls issued by the last Apply,
// excluding those replayed from caches.
func (a *RenderAction) Draws() int { return a.draws }

// Replays returns the number of caches replayed by the last Apply.
func (a *RenderAction) Replays() int { return a.replays }

// BeginApply starts a frame on the backend.
func (a *RenderAction) BeginApply(s *State) {
	a.err = nil
	a.draws, a.replays = 0, 0
	a.recorders = a.recorders[:0]
	if a.ownTarget {
		a.target = recording.NewRecorder()
	}
	a.sink = a.target

	SetViewport(s, nil, a.viewport)
	if err := a.target.Begin(a.viewport.Width, a.viewport.Height); err != nil {
		a.err = fmt.Errorf("sg: render begin: %w", err)
		Logger().Warn("sg: render aborted", "err", err)
		a.Abort()
		return
	}
	SetBackendFeatures(s, nil, a.target.Features())
}

// EndApply finishes the frame.
func (a *RenderAction) EndApply(*State) {
	if a.err == nil {
		if err := a.target.End(); err != nil {
			a.err = fmt.Errorf("sg: render end: %w", err)
		}
	}
	if a.ownTarget {
		a.frame = a.target.(*recording.Recorder).FinishRecording()
	}
	a.sink = nil
	Logger().Debug("sg: frame rendered", "draws", a.draws, "replays", a.replays, "err", a.err)
}

// Visit dispatches n to its render handler.
func (a *RenderAction) Visit(n Node) {
	switch v := n.(type) {
	case RenderHandler:
		v.Render(a)
	case Shape:
		a.renderShape(v)
	default:
		a.ActionBase.Visit(n)
	}
}

// Sink returns the backend render handlers draw into. It forwards to the
// target and to every open cache recorder.
func (a *RenderAction) Sink() recording.Backend { return a.sink }

// beginCapture opens a recorder for a cache being built.
func (a *RenderAction) beginCapture() {
	r := recording.NewRecorder()
	vp := CurrentViewport(a.State())
	_ = r.Begin(vp.Width, vp.Height)
	a.recorders = append(a.recorders, r)
	a.rebuildSink()
}

// endCapture closes the innermost recorder and returns its recording.
func (a *RenderAction) endCapture() *recording.Recording {
	n := len(a.recorders)
	r := a.recorders[n-1]
	a.recorders[n-1] = nil
	a.recorders = a.recorders[:n-1]
	a.rebuildSink()
	return r.FinishRecording()
}

func (a *RenderAction) rebuildSink() {
	bs := make([]recording.Backend, 0, len(a.recorders)+1)
	bs = append(bs, a.target)
	for _, r := range a.recorders {
		bs = append(bs, r)
	}
	a.sink = recording.Tee(bs...)
}

// replay sends a cached recording to the sink.
func (a *RenderAction) replay(rec *recording.Recording) {
	if rec == nil {
		return
	}
	a.replays++
	rec.Replay(a.sink)
}

// renderShape sends the render state and draws sh.
func (a *RenderAction) renderShape(sh Shape) {
	s := a.State()
	style := CurrentDrawStyle(s)
	if style == StyleInvisible {
		return
	}
	prims := sh.Primitives(s)
	if prims == nil || prims.Count() == 0 {
		return
	}
	a.SendState()
	a.sink.Draw(prims)
	a.draws++
}

// SendState emits the complete render state visible at the current
// depth. Custom render handlers call it before drawing.
//
// The commands sent depend on the backend features, which are read from
// the state so that a render cache is only replayed into a backend with
// the features it was recorded for.
func (a *RenderAction) SendState() {
	s := a.State()
	b := a.sink
	fs := BackendFeatures(s)

	b.SetCamera(ViewingMatrix(s), ProjectionMatrix(s))
	b.SetModelMatrix(ModelMatrix(s))
	b.SetMaterial(backendMaterial(CurrentMaterial(s), CurrentLightModel(s), fs))
	b.SetDrawStyle(recording.DrawStyle{
		Mode:      fillMode(CurrentDrawStyle(s)),
		LineWidth: LineWidth(s),
		PointSize: PointSize(s),
	})
	if fs.Has(recording.FeatureClipPlanes) {
		cps := ClipPlanes(s)
		planes := make([]linear.Plane, len(cps))
		for i, cp := range cps {
			planes[i] = cp.Plane
		}
		b.SetClipPlanes(planes)
	}
	if fs.Has(recording.FeatureShaders) {
		b.BindShader(backendShader(CurrentShader(s)))
	}
	if fs.Has(recording.FeatureTextures) {
		if t := CurrentTexture(s); t != nil {
			b.BindTexture(t.Image)
		} else {
			b.BindTexture(nil)
		}
	}
}

func backendMaterial(m MaterialProps, l Lighting, fs recording.Features) recording.Material {
	return recording.Material{
		Ambient:      m.Ambient,
		Diffuse:      m.DiffuseAt(0),
		Specular:     m.Specular,
		Emissive:     m.Emissive,
		Shininess:    m.Shininess,
		Transparency: m.Transparency,
		Lit:          l == LightPhong && fs.Has(recording.FeatureLighting),
	}
}

func backendShader(sh *Shader) *recording.Shader {
	if sh == nil {
		return nil
	}
	return &recording.Shader{Label: sh.Label, Key: sh.Key, SPIRV: sh.SPIRV}
}

func fillMode(st Style) recording.FillMode {
	switch st {
	case StyleLines:
		return recording.FillLines
	case StylePoints:
		return recording.FillPoints
	}
	return recording.FillSolid
}

// ErrNoBackend is returned by Render when no backend name was given.
var ErrNoBackend = errors.New("sg: no backend")

// Render renders root once into the backend registered under name and
// returns the backend.
func Render(root Node, name string, opts ...ActionOption) (recording.Backend, error) {
	if name == "" {
		return nil, ErrNoBackend
	}
	b, err := recording.NewBackend(name)
	if err != nil {
		return nil, err
	}
	a := NewRenderAction(append(opts, WithBackend(b))...)
	a.Apply(root)
	return b, a.Err()
}
