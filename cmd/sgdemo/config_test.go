package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/sg"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sgdemo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend: trace
width: 320
cache:
  policy: cost
  cost: 5ms
  capacity: 64
scene:
  grid: 2
`)
	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", c.Backend)
	assert.Equal(t, 320, c.Width)
	assert.Equal(t, 480, c.Height, "unset keys keep their default")
	assert.Equal(t, 5*time.Millisecond, c.Cache.Cost)
	assert.Equal(t, 64, c.Cache.Capacity)
	assert.Equal(t, 2, c.Scene.Grid)

	p, err := c.Policy()
	require.NoError(t, err)
	assert.Equal(t, sg.CostThreshold(5*time.Millisecond), p)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"policy", "cache: {policy: sometimes}", "unknown cache policy"},
		{"viewport", "width: 0", "invalid viewport"},
		{"grid", "scene: {grid: -1}", "grid must be positive"},
		{"yaml", "width: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultConfigIsValid(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.NoError(t, c.Validate())
	assert.Equal(t, sg.Viewport{Width: 640, Height: 480, Format: sg.DefaultViewport().Format}, c.Viewport())
}

func TestSceneCachesStaticCells(t *testing.T) {
	sc := NewScene(3, 0.2)
	require.Len(t, sc.Cells, 9)

	a := sg.NewRenderAction(sg.WithCachePolicy(sg.AlwaysCache()), sg.WithContextID(1<<50))
	t.Cleanup(func() { _ = sg.DestroyRenderContext(1 << 50) })
	for f := 0; f < 3; f++ {
		sc.Step(f)
		a.Apply(sc.Root)
	}
	assert.Equal(t, uint64(3), sc.Cells[0].CacheStats().Builds, "the spinning cell rebuilds every frame")
	assert.Equal(t, uint64(1), sc.Cells[1].CacheStats().Builds)
}

func TestRunCommands(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"backends"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "raster")
	assert.Contains(t, out.String(), "trace")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"render", "--backend", "trace", "--frames", "2"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "cell_0")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"pick", "--all", "320", "240"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.Contains(out.String(), "hit(s)"))
}
