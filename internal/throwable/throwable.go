package throwable

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/physics"
	"scene-director/internal/scene"
)

// Throw tuning shared by every set.
const (
	diagonal     = math32.Pi / 8
	lift         = 40
	liftJitter   = 5
	sideJitter   = 0.2
	torqueJitter = 5
	spinSpeed    = 5
)

type Options struct {
	// Normalize turns the random throw orientation into a unit quaternion. Off by default,
	// which keeps the raw four-sample value and leaves normalizing to the next physics step.
	Normalize bool
}

// Set is one group of throwables, such as a die or a pair of sticks.
type Set struct {
	Name     string
	Strength float32
	Bodies   []*physics.Body
	Meshes   []*scene.Node

	initial []mgl32.Vec3
}

// Controller owns every throwable set: it throws, resets and syncs them.
type Controller struct {
	world *physics.World
	root  *scene.Node
	rng   *rand.Rand
	opts  Options
	log   zerolog.Logger

	sets []*Set
}

// New returns a controller drawing its randomness from rng.
func New(world *physics.World, root *scene.Node, rng *rand.Rand, opts Options, log zerolog.Logger) *Controller {
	return &Controller{
		world: world,
		root:  root,
		rng:   rng,
		opts:  opts,
		log:   log.With().Str("component", "throwable").Logger(),
	}
}

// Canonical is the resting orientation a reset restores: 90 degrees about X.
func Canonical() mgl32.Quat {
	return mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{1, 0, 0})
}

// Add builds one dynamic body per node of def from model. Each body starts at def.Position plus
// the node's own offset, and falls asleep when it comes to rest.
func (c *Controller) Add(def content.ThrowableSet, model *assets.Model) (*Set, error) {
	scale := def.Scale
	if scale == 0 {
		scale = 1
	}
	nodes := make([]*assets.Node, len(def.Nodes))
	for i, name := range def.Nodes {
		n, err := model.Node(name)
		if err != nil {
			return nil, fmt.Errorf("throwable: %s: %w", def.Name, err)
		}
		nodes[i] = n
	}
	set := &Set{Name: def.Name, Strength: def.Strength}
	for _, n := range nodes {
		hull, err := physics.ConvexHull(n.HullPoints(scale))
		if err != nil {
			return nil, fmt.Errorf("throwable: %s: %w", def.Name, err)
		}
		at := def.Position.Add(n.Position.Mul(scale))
		body := c.world.CreateBody(physics.DynamicBody(at[0], at[1], at[2]).
			WithDamping(def.LinearDamping, def.AngularDamping))
		c.world.CreateCollider(hull.
			WithMass(def.Material.Mass).
			WithFriction(def.Material.Friction).
			WithRestitution(def.Material.Restitution), body)

		mesh := n.Part()
		mesh.Scale = mgl32.Vec3{scale, scale, scale}
		mesh.SetPose(body.Translation(), body.Rotation())
		c.root.Add(mesh)

		set.Bodies = append(set.Bodies, body)
		set.Meshes = append(set.Meshes, mesh)
		set.initial = append(set.initial, at)
	}
	c.sets = append(c.sets, set)
	c.log.Info().Str("set", def.Name).Int("bodies", len(set.Bodies)).Msg("added")
	return set, nil
}

// Sets returns the sets in the order they were added.
func (c *Controller) Sets() []*Set {
	return append([]*Set(nil), c.sets...)
}

// Set looks a set up by name.
func (c *Controller) Set(name string) (*Set, bool) {
	for _, s := range c.sets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Throw tosses every body of every set.
func (c *Controller) Throw() {
	for _, s := range c.sets {
		for _, b := range s.Bodies {
			c.toss(b, s.Strength)
		}
	}
	c.log.Debug().Int("sets", len(c.sets)).Msg("thrown")
}

// toss gives one body a random orientation, a mostly upward impulse leaning along the diagonal,
// a random torque kick and then a random spin.
func (c *Controller) toss(b *physics.Body, strength float32) {
	b.SetAngvel(mgl32.Vec3{})

	q := mgl32.Quat{
		V: mgl32.Vec3{c.angle(), c.angle(), c.angle()},
		W: c.angle(),
	}
	if c.opts.Normalize {
		q = q.Normalize()
	}
	b.SetRotation(q)

	dir := mgl32.Vec3{
		math32.Cos(diagonal) + c.jitter(),
		lift + c.u()*liftJitter,
		math32.Sin(diagonal) + c.jitter(),
	}.Normalize()
	b.ApplyImpulse(dir.Mul(strength))
	b.ApplyTorqueImpulse(mgl32.Vec3{c.u() * torqueJitter, c.u() * torqueJitter, c.u() * torqueJitter})
	b.SetAngvel(mgl32.Vec3{
		(c.u() - 0.5) * spinSpeed,
		(c.u() - 0.5) * spinSpeed,
		(c.u() - 0.5) * spinSpeed,
	})
}

func (c *Controller) u() float32 {
	return c.rng.Float32()
}

func (c *Controller) angle() float32 {
	return c.u() * 2 * math32.Pi
}

func (c *Controller) jitter() float32 {
	return (c.u() - 0.5) * sideJitter
}

// ResetPosition puts every body back at its initial translation in the canonical orientation,
// stopped and asleep.
func (c *Controller) ResetPosition() {
	for _, s := range c.sets {
		for i, b := range s.Bodies {
			b.SetTranslation(s.initial[i])
			b.SetRotation(Canonical())
			b.SetLinvel(mgl32.Vec3{})
			b.SetAngvel(mgl32.Vec3{})
			b.Sleep()
		}
	}
	c.Sync()
}

// Sync copies body poses to meshes.
func (c *Controller) Sync() {
	for _, s := range c.sets {
		for i, b := range s.Bodies {
			s.Meshes[i].SetPose(b.Translation(), b.Rotation())
		}
	}
}

// Dispose removes every set from the world and the scene.
func (c *Controller) Dispose() {
	for _, s := range c.sets {
		for i, b := range s.Bodies {
			c.world.RemoveBody(b)
			s.Meshes[i].Detach()
		}
	}
	c.sets = nil
}
