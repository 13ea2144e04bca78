package recording_test

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
	"github.com/gogpu/sg/recording/mocks"
)

func triangle() *recording.Primitives {
	return &recording.Primitives{
		Mode:      recording.Triangles,
		Positions: []linear.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}
}

func TestRecorderCapturesCommands(t *testing.T) {
	rec := recording.NewRecorder()
	rec.SetModelMatrix(linear.Translate(1, 0, 0))
	rec.SetMaterial(recording.Material{Diffuse: linear.Red})
	rec.Draw(triangle())
	rec.Draw(&recording.Primitives{}) // empty batches are dropped

	r := rec.FinishRecording()
	require.Equal(t, 3, r.Len())
	assert.Equal(t, 1, r.DrawCount())
	assert.Equal(t, recording.CmdSetModelMatrix, r.Commands()[0].Type())
	assert.Equal(t, recording.CmdDraw, r.Commands()[2].Type())
	assert.Equal(t, 1, r.Resources().MeshCount())
}

func TestRecorderIsolatesCallerMemory(t *testing.T) {
	rec := recording.NewRecorder()
	tri := triangle()
	planes := []linear.Plane{{Normal: linear.V3(1, 0, 0)}}
	rec.SetClipPlanes(planes)
	rec.Draw(tri)

	tri.Positions[0] = linear.V3(100, 100, 100)
	planes[0].D = 42

	r := rec.FinishRecording()
	clip := r.Commands()[0].(recording.SetClipPlanesCommand)
	assert.Zero(t, clip.Planes[0].D)
	mesh := r.Resources().Mesh(r.Commands()[1].(recording.DrawCommand).Mesh)
	assert.Equal(t, linear.V3(0, 0, 0), mesh.Positions[0])
}

func TestRecordingPlaybackToMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockBackend(ctrl)

	view := linear.LookAt(linear.V3(0, 0, 5), linear.V3(0, 0, 0), linear.V3(0, 1, 0))
	proj := linear.Perspective(1, 1, 0.1, 100)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	sh := &recording.Shader{Key: 99, Label: "flat"}

	rec := recording.NewRecorder()
	require.NoError(t, rec.Begin(64, 48))
	rec.SetCamera(view, proj)
	rec.SetDrawStyle(recording.DrawStyle{Mode: recording.FillLines, LineWidth: 2})
	rec.BindShader(sh)
	rec.BindTexture(img)
	rec.Draw(triangle())
	rec.BindTexture(nil)
	r := rec.FinishRecording()

	gomock.InOrder(
		m.EXPECT().Begin(64, 48).Return(nil),
		m.EXPECT().SetCamera(view, proj),
		m.EXPECT().SetDrawStyle(recording.DrawStyle{Mode: recording.FillLines, LineWidth: 2}),
		m.EXPECT().BindShader(sh),
		m.EXPECT().BindTexture(img),
		m.EXPECT().Draw(gomock.Any()).Do(func(p *recording.Primitives) {
			assert.Equal(t, 1, p.Count())
		}),
		m.EXPECT().BindTexture(nil),
		m.EXPECT().End().Return(nil),
	)
	require.NoError(t, r.Playback(m))
}

func TestRecordingPlaybackBeginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockBackend(ctrl)
	boom := errors.New("no surface")

	m.EXPECT().Begin(0, 0).Return(boom)

	r := recording.NewRecorder().FinishRecording()
	assert.ErrorIs(t, r.Playback(m), boom)
}

func TestTeeForwardsToAll(t *testing.T) {
	a := recording.NewRecorder()
	b := recording.NewRecorder()
	tee := recording.Tee(a, b)

	require.NoError(t, tee.Begin(10, 10))
	tee.SetModelMatrix(linear.Scale(2, 2, 2))
	tee.Draw(triangle())
	require.NoError(t, tee.End())

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, b.Len())
	assert.Same(t, a, recording.Tee(a))
}

func TestTeeFeaturesIntersect(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockBackend(ctrl)
	m.EXPECT().Features().Return(recording.Features(0).With(recording.FeatureTextures))

	fs := recording.Tee(recording.NewRecorder(), m).Features()
	assert.True(t, fs.Has(recording.FeatureTextures))
	assert.False(t, fs.Has(recording.FeatureClipPlanes))
}
