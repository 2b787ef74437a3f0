package vehicle

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/input"
	"scene-director/internal/physics"
	"scene-director/internal/scene"
)

var ErrRigNotBuilt = errors.New("vehicle: rig not built")

// Collision groups. No rig member's filter names another rig member, so the rig only touches
// the environment.
var (
	ChassisGroups = physics.Groups(0x0002, 0x0001)
	WheelGroups   = physics.Groups(0x0004, 0x0001)
	AxleGroups    = physics.Groups(0x0008, 0x0000)
)

// Body indices in the rig.
const (
	Chassis = iota
	WheelBL
	WheelBR
	WheelFL
	WheelFR
	AxleFL
	AxleFR
	bodyCount
)

var partNames = [bodyCount]string{"body", "wheel-bl", "wheel-br", "wheel-fl", "wheel-fr", "", ""}

type Options struct {
	Position       mgl32.Vec3
	ForwardSpeed   float32
	ReverseSpeed   float32
	MotorFactor    float32
	MaxSteer       float32
	SteerStiffness float32
	SteerDamping   float32
}

func DefaultOptions() Options {
	return Options{
		Position:       mgl32.Vec3{0, 5, 0},
		ForwardSpeed:   100,
		ReverseSpeed:   40,
		MotorFactor:    2,
		MaxSteer:       0.3,
		SteerStiffness: 100,
		SteerDamping:   10,
	}
}

// OptionsFrom reads authored vehicle settings, keeping defaults for zero values.
func OptionsFrom(v content.Vehicle) Options {
	o := DefaultOptions()
	o.Position = v.Position
	set := func(dst *float32, v float32) {
		if v != 0 {
			*dst = v
		}
	}
	set(&o.ForwardSpeed, v.ForwardSpeed)
	set(&o.ReverseSpeed, v.ReverseSpeed)
	set(&o.MotorFactor, v.MotorFactor)
	set(&o.MaxSteer, v.MaxSteer)
	set(&o.SteerStiffness, v.SteerStiffness)
	set(&o.SteerDamping, v.SteerDamping)
	return o
}

// Intent is the control request for one tick. Throttle and Steer are -1, 0 or 1.
type Intent struct {
	Throttle int
	Steer    int
}

// IntentFrom derives an intent from held keys. Forward wins over Backward; Left and Right together cancel.
func IntentFrom(held func(input.Key) bool) Intent {
	var in Intent
	switch {
	case held(input.Forward):
		in.Throttle = 1
	case held(input.Backward):
		in.Throttle = -1
	}
	if held(input.Right) {
		in.Steer++
	}
	if held(input.Left) {
		in.Steer--
	}
	return in
}

// Controller builds and drives the truck: a chassis, four wheels, two steering axles and six
// revolute joints (rear drive, front steer, axle to front wheel passthrough). It is the only
// writer of the rig's motor targets and sleep state.
type Controller struct {
	world *physics.World
	root  *scene.Node
	opts  Options
	log   zerolog.Logger

	built   bool
	bodies  [bodyCount]*physics.Body
	meshes  [bodyCount]*scene.Node
	offsets [bodyCount]mgl32.Vec3
	poses   [bodyCount]mgl32.Quat
	drive   [2]*physics.Joint
	steer   [2]*physics.Joint
	pass    [2]*physics.Joint
	intent  Intent
}

func New(world *physics.World, root *scene.Node, opts Options, log zerolog.Logger) *Controller {
	return &Controller{
		world: world,
		root:  root,
		opts:  opts,
		log:   log.With().Str("component", "vehicle").Logger(),
	}
}

// Build creates the rig from the truck model and puts it to sleep. Building twice is an error.
func (c *Controller) Build(model *assets.Model) error {
	if c.built {
		return errors.New("vehicle: rig already built")
	}
	var nodes [bodyCount]*assets.Node
	for i, name := range partNames {
		if name == "" {
			continue
		}
		n, err := model.Node(name)
		if err != nil {
			return fmt.Errorf("vehicle: build: %w", err)
		}
		nodes[i] = n
	}
	hull, err := physics.ConvexHull(nodes[Chassis].HullPoints(1))
	if err != nil {
		return fmt.Errorf("vehicle: build: %w", err)
	}

	p := c.opts.Position
	upright := mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{1, 0, 0})
	c.bodies[Chassis] = c.world.CreateBody(physics.DynamicBody(p[0], p[1], p[2]).
		WithRotation(upright).WithCanSleep(false).WithDamping(1, 1))
	c.world.CreateCollider(hull.WithMass(0.1).WithRestitution(0.2).WithFriction(5).WithGroups(ChassisGroups), c.bodies[Chassis])

	wheelAt := [bodyCount]mgl32.Vec3{
		WheelBL: {-0.15, 0, 0.15},
		WheelBR: {0.15, 0, 0.15},
		WheelFL: {-0.15, 0, -0.15},
		WheelFR: {0.15, 0, -0.15},
		AxleFL:  {-0.15, 0, -0.15},
		AxleFR:  {0.15, 0, -0.15},
	}
	for i := WheelBL; i <= WheelFR; i++ {
		at := p.Add(wheelAt[i])
		damping := float32(0.5)
		if i == WheelBL {
			damping = 1
		}
		c.bodies[i] = c.world.CreateBody(physics.DynamicBody(at[0], at[1], at[2]).
			WithCanSleep(false).WithDamping(damping, damping))
		spin := math32.Pi / 2
		if i == WheelBL {
			spin = -spin
		}
		c.world.CreateCollider(physics.Cylinder(0.05, 0.15).
			WithRotation(mgl32.QuatRotate(spin, mgl32.Vec3{0, 0, 1})).
			WithRestitution(0.2).WithFriction(5).WithGroups(WheelGroups), c.bodies[i])
	}
	for i := AxleFL; i <= AxleFR; i++ {
		at := p.Add(wheelAt[i])
		c.bodies[i] = c.world.CreateBody(physics.DynamicBody(at[0], at[1], at[2]).WithCanSleep(false))
		c.world.CreateCollider(physics.Cuboid(0.025, 0.025, 0.025).
			WithRotation(upright).WithMass(0.1).WithGroups(AxleGroups), c.bodies[i])
	}

	ch := c.bodies[Chassis]
	spinAxis := mgl32.Vec3{-1, 0, 0}
	c.drive[0] = c.world.CreateRevoluteJoint(physics.Revolute(mgl32.Vec3{-0.15, 0.15, 0}, mgl32.Vec3{}, spinAxis), ch, c.bodies[WheelBL])
	c.drive[1] = c.world.CreateRevoluteJoint(physics.Revolute(mgl32.Vec3{0.15, 0.15, 0}, mgl32.Vec3{}, spinAxis), ch, c.bodies[WheelBR])
	steerAxis := mgl32.Vec3{0, 0, 1}
	c.steer[0] = c.world.CreateRevoluteJoint(physics.Revolute(mgl32.Vec3{-0.15, -0.15, 0}, mgl32.Vec3{}, steerAxis), ch, c.bodies[AxleFL])
	c.steer[1] = c.world.CreateRevoluteJoint(physics.Revolute(mgl32.Vec3{0.15, -0.15, 0}, mgl32.Vec3{}, steerAxis), ch, c.bodies[AxleFR])
	for _, j := range c.steer {
		j.ConfigureMotorModel(physics.ForceBased)
	}
	passAxis := mgl32.Vec3{1, 0, 0}
	c.pass[0] = c.world.CreateRevoluteJoint(physics.Revolute(mgl32.Vec3{}, mgl32.Vec3{}, passAxis), c.bodies[AxleFL], c.bodies[WheelFL])
	c.pass[1] = c.world.CreateRevoluteJoint(physics.Revolute(mgl32.Vec3{}, mgl32.Vec3{}, passAxis), c.bodies[AxleFR], c.bodies[WheelFR])

	for i, b := range c.bodies {
		c.offsets[i] = b.Translation().Sub(p)
		c.poses[i] = b.Rotation()
		if nodes[i] != nil {
			c.meshes[i] = nodes[i].Part()
			c.root.Add(c.meshes[i])
		}
	}
	c.built = true
	c.sleepAll()
	c.Sync()
	c.log.Info().Floats32("at", p[:]).Msg("rig built")
	return nil
}

func (c *Controller) Built() bool {
	return c.built
}

// Update derives the intent from held keys and applies it.
func (c *Controller) Update(held func(input.Key) bool) error {
	return c.Apply(IntentFrom(held))
}

// Apply writes motor targets for one tick. A nonzero throttle on a sleeping rig wakes all seven
// bodies before any motor is touched.
func (c *Controller) Apply(in Intent) error {
	if !c.built {
		return fmt.Errorf("vehicle: apply: %w", ErrRigNotBuilt)
	}
	c.intent = in
	if in.Throttle != 0 && c.Sleeping() {
		c.wakeAll()
	}
	var target float32
	switch {
	case in.Throttle > 0:
		target = c.opts.ForwardSpeed
	case in.Throttle < 0:
		target = -c.opts.ReverseSpeed
	}
	for _, j := range c.drive {
		j.ConfigureMotorVelocity(target, c.opts.MotorFactor)
	}
	angle := float32(in.Steer) * c.opts.MaxSteer
	for _, j := range c.steer {
		j.ConfigureMotorPosition(angle, c.opts.SteerStiffness, c.opts.SteerDamping)
	}
	return nil
}

// Intent returns the last applied intent.
func (c *Controller) Intent() Intent {
	return c.intent
}

// ResetPosition puts the chassis back at its initial pose, places every other body at its
// recorded offset, zeroes all velocities and sleeps the rig. Applying it twice equals once.
func (c *Controller) ResetPosition() error {
	if !c.built {
		return fmt.Errorf("vehicle: reset: %w", ErrRigNotBuilt)
	}
	for i, b := range c.bodies {
		b.SetTranslation(c.opts.Position.Add(c.offsets[i]))
		b.SetRotation(c.poses[i])
		b.SetLinvel(mgl32.Vec3{})
		b.SetAngvel(mgl32.Vec3{})
	}
	for _, j := range c.joints() {
		j.ResetAngle()
	}
	c.sleepAll()
	c.Sync()
	c.log.Debug().Msg("rig reset")
	return nil
}

// Sync copies every body pose to its mesh. It runs whether or not the rig is asleep.
func (c *Controller) Sync() {
	for i, m := range c.meshes {
		if m != nil && c.bodies[i] != nil {
			m.SetPose(c.bodies[i].Translation(), c.bodies[i].Rotation())
		}
	}
}

// Sleeping reports the rig's sleep state, read from the chassis. The world wakes
// jointed bodies as a group, so the other six always match it.
func (c *Controller) Sleeping() bool {
	return c.built && c.bodies[Chassis].IsSleeping()
}

// Bodies returns the seven rig bodies, chassis first.
func (c *Controller) Bodies() []*physics.Body {
	if !c.built {
		return nil
	}
	return append([]*physics.Body(nil), c.bodies[:]...)
}

// Joints returns the drive, steer and passthrough joints.
func (c *Controller) Joints() (drive, steer, pass [2]*physics.Joint) {
	return c.drive, c.steer, c.pass
}

// Dispose removes the rig from the world and the scene.
func (c *Controller) Dispose() {
	if !c.built {
		return
	}
	for i, b := range c.bodies {
		c.world.RemoveBody(b)
		if c.meshes[i] != nil {
			c.meshes[i].Detach()
		}
	}
	c.built = false
}

func (c *Controller) joints() []*physics.Joint {
	return []*physics.Joint{c.drive[0], c.drive[1], c.steer[0], c.steer[1], c.pass[0], c.pass[1]}
}

func (c *Controller) wakeAll() {
	for _, b := range c.bodies {
		b.WakeUp()
	}
}

func (c *Controller) sleepAll() {
	for _, b := range c.bodies {
		b.Sleep()
	}
}
