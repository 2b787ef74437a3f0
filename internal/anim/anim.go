// Package anim blends named clips by weight. Clips carry no keyframes; an action only tracks
// its playhead and weight, and the owner turns those into a pose.
package anim

import (
	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"scene-director/internal/assets"
)

// Action is one clip's playback state inside a mixer.
type Action struct {
	Clip    assets.Clip
	Time    float32
	Weight  float32
	Playing bool

	fade *gween.Tween
}

// Play starts the action at full weight unless a fade is in progress.
func (a *Action) Play() {
	if !a.Playing && a.fade == nil {
		a.Weight = 1
	}
	a.Playing = true
}

// Reset rewinds the playhead.
func (a *Action) Reset() {
	a.Time = 0
}

// FadeIn plays the action and raises its weight from zero to one over d seconds.
func (a *Action) FadeIn(d float32) {
	a.Playing = true
	a.Weight = 0
	a.fadeTo(1, d)
}

// FadeOut lowers the weight to zero over d seconds, then stops the action.
func (a *Action) FadeOut(d float32) {
	a.fadeTo(0, d)
}

// Fading reports whether a weight fade is in progress.
func (a *Action) Fading() bool {
	return a.fade != nil
}

// Phase is the playhead as a fraction of the clip, in [0, 1).
func (a *Action) Phase() float32 {
	if a.Clip.Duration <= 0 {
		return 0
	}
	return a.Time / a.Clip.Duration
}

func (a *Action) fadeTo(w, d float32) {
	if d <= 0 {
		a.fade = nil
		a.Weight = w
		a.Playing = w > 0
		return
	}
	a.fade = gween.New(a.Weight, w, d, ease.Linear)
}

func (a *Action) update(dt float32) {
	if a.fade != nil {
		w, done := a.fade.Update(dt)
		a.Weight = w
		if done {
			a.fade = nil
			if w == 0 {
				a.Playing = false
			}
		}
	}
	if !a.Playing {
		return
	}
	a.Time += dt
	if a.Clip.Duration > 0 {
		a.Time = math32.Mod(a.Time, a.Clip.Duration)
	}
}

// Mixer advances a set of actions together.
type Mixer struct {
	actions []*Action
}

func NewMixer() *Mixer {
	return &Mixer{}
}

// Add returns the action for clip, creating it stopped at zero weight on first use.
func (m *Mixer) Add(clip assets.Clip) *Action {
	if a := m.Action(clip.Name); a != nil {
		return a
	}
	a := &Action{Clip: clip}
	m.actions = append(m.actions, a)
	return a
}

// Action returns the action for the named clip, or nil.
func (m *Mixer) Action(name string) *Action {
	for _, a := range m.actions {
		if a.Clip.Name == name {
			return a
		}
	}
	return nil
}

// Update advances every action by dt seconds.
func (m *Mixer) Update(dt float32) {
	for _, a := range m.actions {
		a.update(dt)
	}
}

// StopAll halts every action and drops its weight.
func (m *Mixer) StopAll() {
	for _, a := range m.actions {
		a.fade = nil
		a.Playing = false
		a.Weight = 0
	}
}
