package tween

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToReachesTargetAndCompletes(t *testing.T) {
	g := NewGroup()
	x, y := float32(0), float32(10)
	completed := 0
	g.To("move", []Prop{{Ptr: &x, To: 4}, {Ptr: &y, To: 0}}, 1, Ease("power2.inOut"), func() { completed++ })

	g.Update(0.5)
	assert.InDelta(t, 2, x, 0.01)
	assert.InDelta(t, 5, y, 0.01)
	assert.Equal(t, 0, completed)

	g.Update(0.6)
	assert.Equal(t, float32(4), x)
	assert.Equal(t, float32(0), y)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, g.Len())

	g.Update(1)
	assert.Equal(t, 1, completed)
}

func TestSameKeySupersedes(t *testing.T) {
	g := NewGroup()
	x := float32(0)
	firstDone := false
	first := g.To("parallax", []Prop{{Ptr: &x, To: 10}}, 1, Ease("linear"), func() { firstDone = true })
	g.Update(0.5)
	require.InDelta(t, 5, x, 0.001)

	g.To("parallax", []Prop{{Ptr: &x, To: -1}}, 0.5, Ease("linear"), nil)
	assert.True(t, first.Done())
	assert.Equal(t, 1, g.Len())

	g.Update(1)
	assert.Equal(t, float32(-1), x)
	assert.False(t, firstDone)
}

func TestUnkeyedTweensRunSideBySide(t *testing.T) {
	g := NewGroup()
	a, b := float32(0), float32(0)
	g.To("", []Prop{{Ptr: &a, To: 1}}, 1, nil, nil)
	g.To("", []Prop{{Ptr: &b, To: 2}}, 1, nil, nil)
	assert.Equal(t, 2, g.Len())
	g.Update(1)
	assert.Equal(t, float32(1), a)
	assert.Equal(t, float32(2), b)
}

func TestZeroDurationAppliesOnNextUpdate(t *testing.T) {
	g := NewGroup()
	x := float32(3)
	done := false
	g.To("snap", []Prop{{Ptr: &x, To: 7}}, 0, nil, func() { done = true })
	assert.Equal(t, float32(3), x)
	g.Update(0)
	assert.Equal(t, float32(7), x)
	assert.True(t, done)
}

func TestCallbackMayStartTween(t *testing.T) {
	g := NewGroup()
	x := float32(0)
	g.To("a", []Prop{{Ptr: &x, To: 1}}, 0.1, nil, func() {
		g.To("b", []Prop{{Ptr: &x, To: 0}}, 1, nil, nil)
	})
	g.Update(0.2)
	assert.Equal(t, float32(1), x)
	assert.True(t, g.Running("b"))
	assert.False(t, g.Running("a"))
}

func TestKillAndClear(t *testing.T) {
	g := NewGroup()
	x := float32(0)
	g.To("a", []Prop{{Ptr: &x, To: 1}}, 1, nil, nil)
	assert.True(t, g.Kill("a"))
	assert.False(t, g.Kill("a"))

	g.To("b", []Prop{{Ptr: &x, To: 1}}, 1, nil, nil)
	g.Clear()
	g.Update(2)
	assert.Equal(t, float32(0), x)
}

func TestEaseLookup(t *testing.T) {
	assert.True(t, Known("power2.inOut"))
	assert.False(t, Known("wobble"))
	assert.NotNil(t, Ease("wobble"))
}
