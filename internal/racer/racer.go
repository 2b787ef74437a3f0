package racer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/anim"
	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/schedule"
	"scene-director/internal/scene"
)

type State int

const (
	Running State = iota
	Jumping
)

func (s State) String() string {
	if s == Jumping {
		return "jumping"
	}
	return "running"
}

// Pose offsets in model units, before the model scale.
const (
	jumpHeight = 1.5
	strideBob  = 0.08
)

type Options struct {
	Position   mgl32.Vec3
	Scale      float32
	RotationY  float32
	Run        string
	Jump       string
	Fade       float32
	HoldFactor float32
}

// OptionsFrom reads authored racer settings. holdFactor scales the jump clip to the time the
// jump is held before blending back to the run.
func OptionsFrom(r content.Racer, holdFactor float32) Options {
	o := Options{
		Position:   r.Position,
		Scale:      r.Scale,
		RotationY:  r.RotationY,
		Run:        r.Run,
		Jump:       r.Jump,
		Fade:       r.Fade,
		HoldFactor: holdFactor,
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.HoldFactor <= 0 {
		o.HoldFactor = 0.7
	}
	return o
}

// Controller plays the racer's run loop and its one-shot jump. Jump timing comes from the
// scheduler, not from physics.
type Controller struct {
	Node *scene.Node

	opts   Options
	sched  *schedule.Scheduler
	mixer  *anim.Mixer
	run    *anim.Action
	jump   *anim.Action
	figure *scene.Node
	base   mgl32.Vec3
	state  State
	timer  *schedule.Timer
	cycles int
	log    zerolog.Logger
}

// New builds the racer from model under root and starts the run loop.
func New(model *assets.Model, root *scene.Node, sched *schedule.Scheduler, opts Options, log zerolog.Logger) (*Controller, error) {
	runClip, ok := model.Clip(opts.Run)
	if !ok {
		return nil, fmt.Errorf("racer: clip %q not in %s", opts.Run, model.Name)
	}
	jumpClip, ok := model.Clip(opts.Jump)
	if !ok {
		return nil, fmt.Errorf("racer: clip %q not in %s", opts.Jump, model.Name)
	}

	node := model.Build()
	node.Position = opts.Position
	node.Scale = mgl32.Vec3{opts.Scale, opts.Scale, opts.Scale}
	node.Rotation = scene.Euler(mgl32.Vec3{0, opts.RotationY, 0})
	root.Add(node)

	c := &Controller{
		Node:  node,
		opts:  opts,
		sched: sched,
		mixer: anim.NewMixer(),
		log:   log.With().Str("component", "racer").Logger(),
	}
	c.run = c.mixer.Add(runClip)
	c.jump = c.mixer.Add(jumpClip)
	c.run.Play()
	if len(node.Children()) > 0 {
		c.figure = node.Children()[0]
		c.base = c.figure.Position
	}
	return c, nil
}

// Jump starts one jump cycle. It does nothing and returns false while a jump is in progress.
func (c *Controller) Jump() bool {
	if c.state == Jumping {
		return false
	}
	c.state = Jumping
	c.run.FadeOut(c.opts.Fade)
	c.jump.Reset()
	c.jump.FadeIn(c.opts.Fade)

	hold := schedule.Seconds(c.jump.Clip.Duration * c.opts.HoldFactor)
	c.timer = c.sched.After(hold, c.land)
	c.log.Debug().Dur("hold", hold).Msg("jump")
	return true
}

func (c *Controller) land() {
	c.jump.FadeOut(c.opts.Fade)
	c.run.Reset()
	c.run.FadeIn(c.opts.Fade)
	c.state = Running
	c.timer = nil
	c.cycles++
}

func (c *Controller) State() State {
	return c.state
}

// Cycles returns the number of completed jumps.
func (c *Controller) Cycles() int {
	return c.cycles
}

// Weights returns the run and jump blend weights.
func (c *Controller) Weights() (run, jump float32) {
	return c.run.Weight, c.jump.Weight
}

// Update advances the mixer and poses the figure: a stride bob weighted by the run and an arc
// weighted by the jump.
func (c *Controller) Update(dt float32) {
	c.mixer.Update(dt)
	if c.figure == nil {
		return
	}
	bob := math32.Abs(math32.Sin(2*math32.Pi*c.run.Phase())) * strideBob * c.run.Weight
	arc := math32.Sin(math32.Pi*c.jump.Phase()) * jumpHeight * c.jump.Weight
	c.figure.Position = c.base.Add(mgl32.Vec3{0, bob + arc, 0})
}

// Dispose cancels a pending landing and removes the racer from the scene.
func (c *Controller) Dispose() {
	c.sched.Stop(c.timer)
	c.timer = nil
	c.mixer.StopAll()
	c.Node.Detach()
}
