package tween

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Prop is one float32 property driven by a tween: Ptr is written every Update until it reaches To.
type Prop struct {
	Ptr *float32
	To  float32
}

// Tween moves a set of properties from their values at start toward their targets.
// All properties share one duration and easing curve and finish on the same frame.
type Tween struct {
	key        string
	props      []Prop
	tweens     []*gween.Tween
	onComplete func()
	done       bool
}

// Done reports whether the tween reached its end or was replaced.
func (t *Tween) Done() bool {
	return t.done
}

// Group owns running tweens and advances them from the frame loop.
// There is no global manager: the scene director holds one group and calls Update each frame.
type Group struct {
	active []*Tween
}

// NewGroup returns an empty tween group.
func NewGroup() *Group {
	return &Group{}
}

// To starts tweening props toward their targets over duration seconds with the given easing.
// A non-empty key replaces any running tween with the same key; the replaced tween is dropped
// without its completion callback, so the newest request always wins.
// onComplete (optional) runs once, from Update, after every prop has been written its target.
func (g *Group) To(key string, props []Prop, duration float32, easing ease.TweenFunc, onComplete func()) *Tween {
	if key != "" {
		g.Kill(key)
	}
	if easing == nil {
		easing = ease.Linear
	}
	t := &Tween{key: key, props: props, onComplete: onComplete}
	if duration > 0 {
		t.tweens = make([]*gween.Tween, len(props))
		for i, p := range props {
			t.tweens[i] = gween.New(*p.Ptr, p.To, duration, easing)
		}
	}
	g.active = append(g.active, t)
	return t
}

// Kill drops the running tween with the given key. Properties keep whatever value they last had.
func (g *Group) Kill(key string) bool {
	for i, t := range g.active {
		if t.key == key {
			t.done = true
			g.active = append(g.active[:i], g.active[i+1:]...)
			return true
		}
	}
	return false
}

// Running reports whether a tween with the given key is in flight.
func (g *Group) Running(key string) bool {
	for _, t := range g.active {
		if t.key == key {
			return true
		}
	}
	return false
}

// Len returns the number of running tweens.
func (g *Group) Len() int {
	return len(g.active)
}

// Clear drops every running tween without calling completion callbacks.
func (g *Group) Clear() {
	for _, t := range g.active {
		t.done = true
	}
	g.active = nil
}

// Update advances every running tween by dt seconds. Completion callbacks run after the
// whole group has been advanced, so a callback that starts a new tween does not see it
// advanced in the same frame.
func (g *Group) Update(dt float32) {
	var finished []*Tween
	kept := g.active[:0]
	for _, t := range g.active {
		if t.advance(dt) {
			t.done = true
			finished = append(finished, t)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(g.active); i++ {
		g.active[i] = nil
	}
	g.active = kept
	for _, t := range finished {
		if t.onComplete != nil {
			t.onComplete()
		}
	}
}

func (t *Tween) advance(dt float32) bool {
	if t.tweens == nil {
		for _, p := range t.props {
			*p.Ptr = p.To
		}
		return true
	}
	finished := true
	for i, tw := range t.tweens {
		v, end := tw.Update(dt)
		*t.props[i].Ptr = v
		if !end {
			finished = false
		}
	}
	return finished
}
