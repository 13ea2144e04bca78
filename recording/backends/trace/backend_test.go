package trace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/sg/linear"
	"github.com/gogpu/sg/recording"
)

func TestTraceRegistered(t *testing.T) {
	b, err := recording.NewBackend("trace")
	require.NoError(t, err)
	assert.IsType(t, &Backend{}, b)
}

func TestTraceLines(t *testing.T) {
	var out bytes.Buffer
	b := NewBackend(&out)

	require.NoError(t, b.Begin(4, 3))
	b.SetModelMatrix(linear.Identity())
	b.SetModelMatrix(linear.Translate(1, 2, 3))
	b.SetMaterial(recording.Material{Diffuse: linear.Red, Lit: true})
	b.BindShader(nil)
	b.Draw(&recording.Primitives{Mode: recording.Lines, Positions: make([]linear.Vec3, 4)})
	require.NoError(t, b.End())

	want := []string{
		"Begin 4x3",
		"SetModelMatrix identity",
		"SetModelMatrix t=(1,2,3)",
		"SetMaterial diffuse=rgb(1.00,0.00,0.00) lit=true",
		"BindShader none",
		"Draw Lines n=2",
		"End",
	}
	assert.Equal(t, want, b.Lines())
	assert.Equal(t, b.String()+"\n", out.String())
}

func TestTraceBeginClears(t *testing.T) {
	b := NewBackend(nil)
	require.NoError(t, b.Begin(1, 1))
	b.SetClipPlanes(nil)
	require.NoError(t, b.End())
	require.NoError(t, b.Begin(2, 2))
	assert.Equal(t, []string{"Begin 2x2"}, b.Lines())
}
