// Package figure plays a character that loops a single clip in place.
package figure

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/anim"
	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/scene"
)

// Pose amplitudes in model units and radians, before the model scale.
const (
	swayAngle = 0.35
	bounce    = 0.06
)

type Options struct {
	Position mgl32.Vec3
	Scale    float32
	Clip     string
}

func OptionsFrom(f content.Figure) Options {
	o := Options{Position: f.Position, Scale: f.Scale, Clip: f.Clip}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Clip == "" {
		o.Clip = "idle"
	}
	return o
}

// Figure owns its own mixer, so its clip never blends with anything else in the scene.
type Figure struct {
	Node *scene.Node

	mixer *anim.Mixer
	idle  *anim.Action
	body  *scene.Node
	base  mgl32.Vec3
	rest  mgl32.Quat
	log   zerolog.Logger
}

// New builds the figure from model under root and starts its clip.
func New(model *assets.Model, root *scene.Node, opts Options, log zerolog.Logger) (*Figure, error) {
	clip, ok := model.Clip(opts.Clip)
	if !ok {
		return nil, fmt.Errorf("figure: clip %q not in %s", opts.Clip, model.Name)
	}
	node := model.Build()
	node.Position = opts.Position
	node.Scale = mgl32.Vec3{opts.Scale, opts.Scale, opts.Scale}
	root.Add(node)

	f := &Figure{
		Node:  node,
		mixer: anim.NewMixer(),
		log:   log.With().Str("component", "figure").Logger(),
	}
	f.idle = f.mixer.Add(clip)
	f.idle.Play()
	if len(node.Children()) > 0 {
		f.body = node.Children()[0]
		f.base = f.body.Position
		f.rest = f.body.Rotation
	}
	f.log.Debug().Str("clip", clip.Name).Msg("playing")
	return f, nil
}

// Update advances the clip and poses the body: a sway about Y once per loop and a bounce on
// every half loop.
func (f *Figure) Update(dt float32) {
	f.mixer.Update(dt)
	if f.body == nil {
		return
	}
	phase := 2 * math32.Pi * f.idle.Phase()
	w := f.idle.Weight
	f.body.Position = f.base.Add(mgl32.Vec3{0, math32.Abs(math32.Sin(phase)) * bounce * w, 0})
	f.body.Rotation = mgl32.QuatRotate(math32.Sin(phase)*swayAngle*w, mgl32.Vec3{0, 1, 0}).Mul(f.rest)
}

// Phase is the clip playhead as a fraction of one loop.
func (f *Figure) Phase() float32 {
	return f.idle.Phase()
}

func (f *Figure) Dispose() {
	f.mixer.StopAll()
	f.Node.Detach()
}
