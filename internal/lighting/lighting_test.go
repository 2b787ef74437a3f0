package lighting

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-director/internal/content"
)

func shelfLights() content.Lights {
	return content.Lights{
		Ambient:   "#d3d3d3",
		Color:     "#d3d3d3",
		Intensity: 0.6,
		Angle:     0.4,
		Penumbra:  0.1,
		Distance:  2.6,
		Spots:     []mgl32.Vec3{{-1.5, 13.5, 0}, {0, 11.5, 0.2}},
	}
}

func TestNewFromShippedContent(t *testing.T) {
	c, err := content.LoadDir("../../content")
	require.NoError(t, err)
	r, err := New(c.Lights)
	require.NoError(t, err)
	assert.Len(t, r.Spots, MaxSpots)
	require.NotNil(t, r.Ambient)
}

func TestNewFillsDefaults(t *testing.T) {
	r, err := New(content.Lights{Spots: []mgl32.Vec3{{0, 1, 0}}})
	require.NoError(t, err)
	assert.Nil(t, r.Ambient)
	s := r.Spots[0]
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, s.Color)
	assert.Equal(t, float32(1), s.Intensity)
	assert.InDelta(t, math32.Cos(math32.Pi/6), s.Outer, 1e-6)
	assert.Equal(t, s.Outer, s.Inner)
	assert.Zero(t, s.Distance)
}

func TestNewRejects(t *testing.T) {
	l := shelfLights()
	l.Color = "grey"
	_, err := New(l)
	assert.Error(t, err)

	l = shelfLights()
	l.Ambient = "#12"
	_, err = New(l)
	assert.Error(t, err)

	l = shelfLights()
	l.Spots = make([]mgl32.Vec3, MaxSpots+1)
	_, err = New(l)
	assert.Error(t, err)
}

func TestUniformsPackEverySpot(t *testing.T) {
	r, err := New(shelfLights())
	require.NoError(t, err)
	u := r.Uniforms()
	assert.Equal(t, 2, u.Count)
	assert.Equal(t, []float32{-1.5, 13.5, 0, 0, 11.5, 0.2}, u.Positions)
	assert.Len(t, u.Colors, 6)
	assert.InDelta(t, float32(0xd3)/255, u.Colors[0], 1e-6)
	require.Len(t, u.Shapes, 8)
	assert.InDelta(t, math32.Cos(0.4), u.Shapes[0], 1e-6)
	assert.InDelta(t, math32.Cos(0.36), u.Shapes[1], 1e-6)
	assert.Equal(t, float32(2.6), u.Shapes[2])
	assert.Equal(t, float32(0.6), u.Shapes[3])
}

func TestHiddenRigPacksNothing(t *testing.T) {
	r, err := New(shelfLights())
	require.NoError(t, err)
	assert.True(t, r.Visible())
	r.SetVisible(false)
	assert.False(t, r.Visible())
	assert.Zero(t, r.Uniforms().Count)
	assert.Nil(t, r.Uniforms().Positions)
	r.SetVisible(true)
	assert.Equal(t, 2, r.Uniforms().Count)

	var none *Rig
	assert.Zero(t, none.Uniforms().Count)
}

func TestReachFollowsConeAndDistance(t *testing.T) {
	r, err := New(shelfLights())
	require.NoError(t, err)
	s := r.Spots[1]

	assert.InDelta(t, 1-1.0/2.6, s.Reach(mgl32.Vec3{0, 10.5, 0.2}), 1e-5)
	assert.Zero(t, s.Reach(mgl32.Vec3{0, 8, 0.2}))
	assert.Zero(t, s.Reach(mgl32.Vec3{1, 10.5, 0.2}))
	assert.Zero(t, s.Reach(mgl32.Vec3{0, 12, 0.2}))
	assert.Equal(t, float32(1), s.Reach(s.Position))

	inside := s.Reach(mgl32.Vec3{0.3, 10.5, 0.2})
	assert.Greater(t, inside, float32(0))
	assert.Less(t, inside, s.Reach(mgl32.Vec3{0, 10.5, 0.2}))
}
