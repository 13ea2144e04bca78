package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/sg/linear"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		cmd  CommandType
		want string
	}{
		{CmdSetCamera, "SetCamera"},
		{CmdSetModelMatrix, "SetModelMatrix"},
		{CmdSetMaterial, "SetMaterial"},
		{CmdSetDrawStyle, "SetDrawStyle"},
		{CmdSetClipPlanes, "SetClipPlanes"},
		{CmdBindShader, "BindShader"},
		{CmdBindTexture, "BindTexture"},
		{CmdDraw, "Draw"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.String())
	}
}

func TestCommandInterface(t *testing.T) {
	cmds := map[Command]CommandType{
		SetCameraCommand{}:      CmdSetCamera,
		SetModelMatrixCommand{}: CmdSetModelMatrix,
		SetMaterialCommand{}:    CmdSetMaterial,
		SetDrawStyleCommand{}:   CmdSetDrawStyle,
		BindShaderCommand{}:     CmdBindShader,
		BindTextureCommand{}:    CmdBindTexture,
		DrawCommand{}:           CmdDraw,
	}
	for cmd, want := range cmds {
		assert.Equal(t, want, cmd.Type(), "%T", cmd)
	}
	assert.Equal(t, CmdSetClipPlanes, SetClipPlanesCommand{}.Type())
}

func TestRef_IsValid(t *testing.T) {
	assert.True(t, MeshRef(0).IsValid())
	assert.False(t, MeshRef(InvalidRef).IsValid())
	assert.True(t, ImageRef(3).IsValid())
	assert.False(t, ImageRef(InvalidRef).IsValid())
	assert.False(t, ShaderRef(InvalidRef).IsValid())
}

func TestPrimitives_Count(t *testing.T) {
	pts := make([]linear.Vec3, 6)
	assert.Equal(t, 2, (&Primitives{Mode: Triangles, Positions: pts}).Count())
	assert.Equal(t, 3, (&Primitives{Mode: Lines, Positions: pts}).Count())
	assert.Equal(t, 6, (&Primitives{Mode: Points, Positions: pts}).Count())
}

func TestPrimitives_Clone(t *testing.T) {
	p := &Primitives{
		Mode:      Lines,
		Positions: []linear.Vec3{{0, 0, 0}, {1, 0, 0}},
		Colors:    []linear.RGBA{linear.Red, linear.Blue},
	}
	c := p.Clone()
	c.Positions[1] = linear.V3(5, 5, 5)
	c.Colors[0] = linear.Green

	assert.Equal(t, linear.V3(1, 0, 0), p.Positions[1])
	assert.Equal(t, linear.Red, p.Colors[0])
	assert.Nil(t, c.Normals)
}

func TestFeatures(t *testing.T) {
	var fs Features
	assert.False(t, fs.Has(FeatureClipPlanes))
	fs = fs.With(FeatureClipPlanes).With(FeatureTextures)
	assert.True(t, fs.Has(FeatureClipPlanes))
	assert.True(t, fs.Has(FeatureTextures))
	assert.False(t, fs.Has(FeatureShaders))
}
