package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-director/internal/assets"
)

func TestCrossFade(t *testing.T) {
	m := NewMixer()
	run := m.Add(assets.Clip{Name: "run", Duration: 0.8})
	jump := m.Add(assets.Clip{Name: "jump", Duration: 1.2})
	require.Same(t, run, m.Add(assets.Clip{Name: "run"}))
	require.Same(t, jump, m.Action("jump"))
	assert.Nil(t, m.Action("idle"))

	run.Play()
	assert.Equal(t, float32(1), run.Weight)

	run.FadeOut(0.1)
	jump.Reset()
	jump.FadeIn(0.1)
	m.Update(0.05)
	assert.InDelta(t, 0.5, run.Weight, 1e-5)
	assert.InDelta(t, 0.5, jump.Weight, 1e-5)
	assert.True(t, run.Fading())

	m.Update(0.05)
	assert.Equal(t, float32(0), run.Weight)
	assert.False(t, run.Playing)
	assert.Equal(t, float32(1), jump.Weight)
	assert.True(t, jump.Playing)
	assert.False(t, jump.Fading())
	assert.InDelta(t, 0.1, jump.Time, 1e-5)
}

func TestPlayheadLoops(t *testing.T) {
	m := NewMixer()
	run := m.Add(assets.Clip{Name: "run", Duration: 0.8})
	run.Play()
	for i := 0; i < 10; i++ {
		m.Update(0.1)
	}
	assert.InDelta(t, 0.2, run.Time, 1e-4)
	assert.InDelta(t, 0.25, run.Phase(), 1e-4)

	stopped := m.Add(assets.Clip{Name: "idle", Duration: 1})
	m.Update(0.5)
	assert.Equal(t, float32(0), stopped.Time)
}

func TestZeroDurationFadeIsImmediate(t *testing.T) {
	a := &Action{Clip: assets.Clip{Name: "run", Duration: 1}}
	a.FadeIn(0)
	assert.Equal(t, float32(1), a.Weight)
	assert.True(t, a.Playing)
	a.FadeOut(0)
	assert.Equal(t, float32(0), a.Weight)
	assert.False(t, a.Playing)
}

func TestStopAll(t *testing.T) {
	m := NewMixer()
	a := m.Add(assets.Clip{Name: "run", Duration: 1})
	a.FadeIn(1)
	m.StopAll()
	assert.False(t, a.Playing)
	assert.False(t, a.Fading())
	assert.Equal(t, float32(0), a.Weight)
}
