package physics

import "github.com/go-gl/mathgl/mgl32"

// BodyType selects how the world treats a body.
type BodyType int

const (
	// Dynamic bodies are moved by gravity, impulses, contacts and joints.
	Dynamic BodyType = iota
	// Fixed bodies never move on their own; they only collide.
	Fixed
)

// BodyDesc describes a body before it is created. Build one with DynamicBody or FixedBody
// and refine it with the With* methods.
type BodyDesc struct {
	Type           BodyType
	Translation    mgl32.Vec3
	Rotation       mgl32.Quat
	LinearDamping  float32
	AngularDamping float32
	GravityScale   float32
	CanSleep       bool
	Sleeping       bool
}

// DynamicBody returns a dynamic body description at the given position with unit gravity scale.
func DynamicBody(x, y, z float32) BodyDesc {
	return BodyDesc{
		Type:         Dynamic,
		Translation:  mgl32.Vec3{x, y, z},
		Rotation:     mgl32.QuatIdent(),
		GravityScale: 1,
		CanSleep:     true,
	}
}

// FixedBody returns a fixed body description at the given position.
func FixedBody(x, y, z float32) BodyDesc {
	return BodyDesc{
		Type:        Fixed,
		Translation: mgl32.Vec3{x, y, z},
		Rotation:    mgl32.QuatIdent(),
	}
}

func (d BodyDesc) WithRotation(q mgl32.Quat) BodyDesc {
	d.Rotation = q
	return d
}

func (d BodyDesc) WithDamping(linear, angular float32) BodyDesc {
	d.LinearDamping = linear
	d.AngularDamping = angular
	return d
}

func (d BodyDesc) WithGravityScale(s float32) BodyDesc {
	d.GravityScale = s
	return d
}

func (d BodyDesc) WithCanSleep(v bool) BodyDesc {
	d.CanSleep = v
	return d
}

// Body is a rigid body owned by a World. Mass and inertia come from its colliders.
// Fixed bodies have zero inverse mass and are not affected by gravity or velocity.
type Body struct {
	handle       int
	typ          BodyType
	translation  mgl32.Vec3
	rotation     mgl32.Quat
	linvel       mgl32.Vec3
	angvel       mgl32.Vec3
	linDamping   float32
	angDamping   float32
	gravityScale float32
	canSleep     bool
	sleeping     bool
	idle         float32

	mass       float32
	invMass    float32
	invInertia float32
	colliders  []*Collider
	removed    bool
}

func newBody(handle int, d BodyDesc) *Body {
	rot := d.Rotation
	if rot.W == 0 && rot.V == (mgl32.Vec3{}) {
		rot = mgl32.QuatIdent()
	}
	return &Body{
		handle:       handle,
		typ:          d.Type,
		translation:  d.Translation,
		rotation:     rot,
		linDamping:   d.LinearDamping,
		angDamping:   d.AngularDamping,
		gravityScale: d.GravityScale,
		canSleep:     d.CanSleep,
		sleeping:     d.Sleeping && d.Type == Dynamic,
	}
}

// Handle returns the body's id within its world.
func (b *Body) Handle() int { return b.handle }

func (b *Body) Type() BodyType { return b.typ }

func (b *Body) IsDynamic() bool { return b.typ == Dynamic }

// Removed reports whether the body was taken out of its world.
func (b *Body) Removed() bool { return b.removed }

func (b *Body) Translation() mgl32.Vec3 { return b.translation }

func (b *Body) SetTranslation(v mgl32.Vec3) {
	b.translation = v
	b.refreshBounds()
}

// Rotation returns the orientation as stored. It may be non-unit right after SetRotation;
// the next Step renormalizes it.
func (b *Body) Rotation() mgl32.Quat { return b.rotation }

func (b *Body) SetRotation(q mgl32.Quat) {
	b.rotation = q
	b.refreshBounds()
}

func (b *Body) Linvel() mgl32.Vec3 { return b.linvel }

func (b *Body) SetLinvel(v mgl32.Vec3) {
	if b.typ != Dynamic {
		return
	}
	b.linvel = v
}

func (b *Body) Angvel() mgl32.Vec3 { return b.angvel }

func (b *Body) SetAngvel(v mgl32.Vec3) {
	if b.typ != Dynamic {
		return
	}
	b.angvel = v
}

// Mass returns the total collider mass. Zero for fixed bodies and bodies without colliders.
func (b *Body) Mass() float32 { return b.mass }

// ApplyImpulse changes linear velocity by imp / mass and wakes the body.
func (b *Body) ApplyImpulse(imp mgl32.Vec3) {
	if b.typ != Dynamic {
		return
	}
	b.WakeUp()
	b.linvel = b.linvel.Add(imp.Mul(b.invMass))
}

// ApplyTorqueImpulse changes angular velocity by the impulse scaled by inverse inertia and wakes the body.
func (b *Body) ApplyTorqueImpulse(imp mgl32.Vec3) {
	if b.typ != Dynamic {
		return
	}
	b.WakeUp()
	b.angvel = b.angvel.Add(imp.Mul(b.invInertia))
}

// Sleep stops the body and zeroes its velocities. It stays put until woken by WakeUp,
// an impulse, a contact with an awake body or a joint to one.
func (b *Body) Sleep() {
	if b.typ != Dynamic {
		return
	}
	b.sleeping = true
	b.linvel = mgl32.Vec3{}
	b.angvel = mgl32.Vec3{}
	b.idle = 0
}

func (b *Body) WakeUp() {
	b.sleeping = false
	b.idle = 0
}

func (b *Body) IsSleeping() bool { return b.sleeping }

// Colliders returns the colliders attached to the body.
func (b *Body) Colliders() []*Collider { return b.colliders }

func (b *Body) active() bool {
	return b.typ == Dynamic && !b.sleeping && !b.removed
}

// effective inverse mass and inertia: fixed and sleeping bodies are immovable for the solver.
func (b *Body) weights() (invMass, invInertia float32) {
	if !b.active() {
		return 0, 0
	}
	return b.invMass, b.invInertia
}

func (b *Body) applyImpulseAt(imp, r mgl32.Vec3) {
	if !b.active() {
		return
	}
	b.linvel = b.linvel.Add(imp.Mul(b.invMass))
	b.angvel = b.angvel.Add(r.Cross(imp).Mul(b.invInertia))
}

func (b *Body) velocityAt(r mgl32.Vec3) mgl32.Vec3 {
	return b.linvel.Add(b.angvel.Cross(r))
}

// recomputeMass sums collider masses and approximates rotational inertia as a scalar,
// shifting each collider by its offset from the body origin.
func (b *Body) recomputeMass() {
	if b.typ != Dynamic {
		b.mass, b.invMass, b.invInertia = 0, 0, 0
		return
	}
	var mass, inertia float32
	for _, c := range b.colliders {
		m := c.mass()
		mass += m
		inertia += c.inertia(m) + m*c.desc.Translation.Dot(c.desc.Translation)
	}
	b.mass = mass
	b.invMass, b.invInertia = 0, 0
	if mass > 0 {
		b.invMass = 1 / mass
	}
	if inertia > 0 {
		b.invInertia = 1 / inertia
	}
}

func (b *Body) refreshBounds() {
	for _, c := range b.colliders {
		c.updateBounds()
	}
}
