package physics

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultMaxStep caps a single step so a long frame hitch cannot tunnel bodies.
	DefaultMaxStep = 0.1

	sleepSpeed          = 0.05
	sleepDelay          = 2.0
	restitutionVelocity = 0.5
)

// World holds bodies, colliders and joints and runs a simple 3D physics step:
// gravity, joint motors and constraints, integration, then AABB contacts.
// Not safe for concurrent use.
type World struct {
	Gravity    mgl32.Vec3
	MaxStep    float32
	Iterations int

	bodies     []*Body
	colliders  []*Collider
	joints     []*Joint
	nextHandle int
}

// NewWorld returns a new physics world with default gravity (0, -9.81, 0); the scene is Y-up.
func NewWorld() *World {
	return &World{
		Gravity:    mgl32.Vec3{0, -9.81, 0},
		MaxStep:    DefaultMaxStep,
		Iterations: 4,
	}
}

// SetGravity sets the gravity vector (e.g. {0, -10, 0} for down in -Y).
func (w *World) SetGravity(g mgl32.Vec3) {
	w.Gravity = g
}

// CreateBody adds a body. Order is preserved for syncing with scene objects.
func (w *World) CreateBody(desc BodyDesc) *Body {
	w.nextHandle++
	b := newBody(w.nextHandle, desc)
	w.bodies = append(w.bodies, b)
	return b
}

// CreateCollider attaches a collider to b and updates its mass.
func (w *World) CreateCollider(desc ColliderDesc, b *Body) *Collider {
	c := newCollider(desc, b)
	b.colliders = append(b.colliders, c)
	b.recomputeMass()
	w.colliders = append(w.colliders, c)
	return c
}

// CreateRevoluteJoint hinges b2 to b1.
func (w *World) CreateRevoluteJoint(desc JointDesc, b1, b2 *Body) *Joint {
	j := newJoint(desc, b1, b2)
	w.joints = append(w.joints, j)
	return j
}

// RemoveBody removes the body, its colliders and every joint attached to it.
// Returns false if the body is not in this world.
func (w *World) RemoveBody(b *Body) bool {
	i := slices.Index(w.bodies, b)
	if i < 0 {
		return false
	}
	w.bodies = slices.Delete(w.bodies, i, i+1)
	w.colliders = slices.DeleteFunc(w.colliders, func(c *Collider) bool { return c.body == b })
	w.joints = slices.DeleteFunc(w.joints, func(j *Joint) bool { return j.b1 == b || j.b2 == b })
	b.removed = true
	return true
}

// RemoveJoint drops a joint; both bodies stay.
func (w *World) RemoveJoint(j *Joint) bool {
	i := slices.Index(w.joints, j)
	if i < 0 {
		return false
	}
	w.joints = slices.Delete(w.joints, i, i+1)
	return true
}

// Contains reports whether b belongs to the world.
func (w *World) Contains(b *Body) bool {
	return slices.Contains(w.bodies, b)
}

func (w *World) Bodies() []*Body { return w.bodies }

func (w *World) Joints() []*Joint { return w.joints }

// Step advances the simulation by dt seconds, clamped to MaxStep.
// No global floor: dynamic bodies can fall forever until they hit a collider.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	if w.MaxStep > 0 && dt > w.MaxStep {
		dt = w.MaxStep
	}
	w.wakeJoined()

	for _, b := range w.bodies {
		if !b.active() {
			continue
		}
		b.linvel = b.linvel.Add(w.Gravity.Mul(b.gravityScale * dt))
		if b.linDamping > 0 {
			b.linvel = b.linvel.Mul(1 / (1 + dt*b.linDamping))
		}
		if b.angDamping > 0 {
			b.angvel = b.angvel.Mul(1 / (1 + dt*b.angDamping))
		}
	}

	for _, j := range w.joints {
		if j.live() {
			j.applyMotor(dt)
		}
	}
	for it := 0; it < w.Iterations; it++ {
		for _, j := range w.joints {
			if j.live() {
				j.solveVelocity()
			}
		}
	}

	for _, b := range w.bodies {
		if !b.active() {
			continue
		}
		b.translation = b.translation.Add(b.linvel.Mul(dt))
		spin := mgl32.Quat{W: 0, V: b.angvel}.Mul(b.rotation).Scale(0.5 * dt)
		b.rotation = b.rotation.Add(spin).Normalize()
		b.refreshBounds()
	}

	w.resolveContacts()

	for it := 0; it < w.Iterations; it++ {
		for _, j := range w.joints {
			if j.live() {
				j.solvePosition()
			}
		}
	}
	for _, j := range w.joints {
		if j.live() {
			j.integrateAngle(dt)
		}
	}

	for _, b := range w.bodies {
		if !b.active() {
			continue
		}
		b.refreshBounds()
		if !b.canSleep {
			continue
		}
		if b.linvel.Len() < sleepSpeed && b.angvel.Len() < sleepSpeed {
			b.idle += dt
			if b.idle >= sleepDelay {
				b.Sleep()
			}
		} else {
			b.idle = 0
		}
	}
}

// wakeJoined wakes sleeping bodies that are jointed to an awake dynamic body.
func (w *World) wakeJoined() {
	for changed := true; changed; {
		changed = false
		for _, j := range w.joints {
			if j.b1.active() && j.b2.typ == Dynamic && j.b2.sleeping {
				j.b2.WakeUp()
				changed = true
			}
			if j.b2.active() && j.b1.typ == Dynamic && j.b1.sleeping {
				j.b1.WakeUp()
				changed = true
			}
		}
	}
}

// wakeContact wakes b if it is a sleeping dynamic body and reports whether it did.
func (w *World) wakeContact(b *Body) bool {
	if b.typ != Dynamic || !b.sleeping {
		return false
	}
	b.WakeUp()
	return true
}

func (w *World) jointed(a, b *Body) bool {
	for _, j := range w.joints {
		if j.joins(a, b) {
			return true
		}
	}
	return false
}

// resolveContacts pushes overlapping colliders apart along the minimum penetration axis,
// then applies restitution and friction impulses at the center of the overlap. A contact that
// wakes a body wakes everything jointed to it in the same pass, so a jointed group is never
// partly asleep.
func (w *World) resolveContacts() {
	for i := 0; i < len(w.colliders); i++ {
		ca := w.colliders[i]
		for k := i + 1; k < len(w.colliders); k++ {
			cb := w.colliders[k]
			a, b := ca.body, cb.body
			if a == b || (!a.active() && !b.active()) {
				continue
			}
			if !ca.desc.Groups.Test(cb.desc.Groups) {
				continue
			}
			if !ca.bounds.Overlaps(cb.bounds) || w.jointed(a, b) {
				continue
			}
			for _, pa := range ca.shapes() {
				for _, pb := range cb.shapes() {
					if ca.desc.Kind != ShapeTriMesh {
						pa = ca.bounds
					}
					if cb.desc.Kind != ShapeTriMesh {
						pb = cb.bounds
					}
					depth, axis := penetrationAxis(pa, pb)
					if axis < 0 {
						continue
					}
					wa, wb := w.wakeContact(a), w.wakeContact(b)
					if wa || wb {
						w.wakeJoined()
					}
					resolve(ca, cb, pa, pb, depth, axis)
				}
			}
		}
	}
}

func resolve(ca, cb *Collider, ba, bb AABB, depth float32, axis int) {
	a, b := ca.body, cb.body
	var n mgl32.Vec3
	n[axis] = 1
	if bb.Center()[axis] < ba.Center()[axis] {
		n = n.Mul(-1)
	}
	wa, ia := a.weights()
	wb, ib := b.weights()
	total := wa + wb
	if total == 0 {
		return
	}
	contact := ba.overlap(bb).Center()

	a.translation = a.translation.Sub(n.Mul(depth * wa / total))
	b.translation = b.translation.Add(n.Mul(depth * wb / total))
	a.refreshBounds()
	b.refreshBounds()

	ra := contact.Sub(a.translation)
	rb := contact.Sub(b.translation)
	vrel := b.velocityAt(rb).Sub(a.velocityAt(ra))
	vn := vrel.Dot(n)
	if vn >= 0 {
		return
	}
	e := (ca.desc.Restitution + cb.desc.Restitution) / 2
	if -vn < restitutionVelocity {
		e = 0
	}
	denom := total + effective(ia, ra, n) + effective(ib, rb, n)
	jn := -(1 + e) * vn / denom
	a.applyImpulseAt(n.Mul(-jn), ra)
	b.applyImpulseAt(n.Mul(jn), rb)

	vrel = b.velocityAt(rb).Sub(a.velocityAt(ra))
	tangent := vrel.Sub(n.Mul(vrel.Dot(n)))
	tl := tangent.Len()
	if tl < 1e-6 {
		return
	}
	t := tangent.Mul(1 / tl)
	denomT := total + effective(ia, ra, t) + effective(ib, rb, t)
	jt := -vrel.Dot(t) / denomT
	mu := (ca.desc.Friction + cb.desc.Friction) / 2
	limit := mu * jn
	jt = math32.Max(-limit, math32.Min(limit, jt))
	a.applyImpulseAt(t.Mul(-jt), ra)
	b.applyImpulseAt(t.Mul(jt), rb)
}

func effective(invInertia float32, r, dir mgl32.Vec3) float32 {
	c := r.Cross(dir)
	return invInertia * c.Dot(c)
}
