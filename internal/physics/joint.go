package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MotorModel selects how a joint motor's output is shared between the two bodies.
type MotorModel int

const (
	// AccelerationBased gives both bodies the same share regardless of their inertia.
	AccelerationBased MotorModel = iota
	// ForceBased splits the output by inverse inertia, so lighter bodies turn more.
	ForceBased
)

// MotorMode is what a joint motor is currently driving toward.
type MotorMode int

const (
	MotorOff MotorMode = iota
	MotorVelocity
	MotorPosition
)

// Motor is a snapshot of a joint motor's configuration.
type Motor struct {
	Mode      MotorMode
	Model     MotorModel
	Target    float32
	Factor    float32
	Stiffness float32
	Damping   float32
}

// JointDesc describes a revolute joint. Anchor1 is in the first body's frame, Anchor2 in the
// second's; Axis is the hinge axis in the first body's frame.
type JointDesc struct {
	Anchor1 mgl32.Vec3
	Anchor2 mgl32.Vec3
	Axis    mgl32.Vec3
}

// Revolute returns a hinge joint description.
func Revolute(anchor1, anchor2, axis mgl32.Vec3) JointDesc {
	return JointDesc{Anchor1: anchor1, Anchor2: anchor2, Axis: axis}
}

// Joint is a revolute joint between two bodies with an optional motor about its axis.
type Joint struct {
	b1, b2  *Body
	anchor1 mgl32.Vec3
	anchor2 mgl32.Vec3
	axis1   mgl32.Vec3
	axis2   mgl32.Vec3
	angle   float32
	motor   Motor
}

func newJoint(d JointDesc, b1, b2 *Body) *Joint {
	axis := d.Axis
	if axis.Len() == 0 {
		axis = mgl32.Vec3{1, 0, 0}
	}
	axis = axis.Normalize()
	world := b1.rotation.Normalize().Rotate(axis)
	return &Joint{
		b1:      b1,
		b2:      b2,
		anchor1: d.Anchor1,
		anchor2: d.Anchor2,
		axis1:   axis,
		axis2:   b2.rotation.Normalize().Conjugate().Rotate(world),
	}
}

// Bodies returns the two joined bodies.
func (j *Joint) Bodies() (*Body, *Body) { return j.b1, j.b2 }

// Angle is the relative rotation about the hinge accumulated since creation.
func (j *Joint) Angle() float32 { return j.angle }

// ResetAngle zeroes the accumulated angle. Call it after putting both bodies back at the
// relative pose they had when the joint was created.
func (j *Joint) ResetAngle() { j.angle = 0 }

// Motor returns the motor configuration.
func (j *Joint) Motor() Motor { return j.motor }

func (j *Joint) ConfigureMotorModel(m MotorModel) {
	j.motor.Model = m
}

// ConfigureMotorVelocity drives the relative angular speed about the axis toward target.
// factor is the gain.
func (j *Joint) ConfigureMotorVelocity(target, factor float32) {
	j.motor.Mode = MotorVelocity
	j.motor.Target = target
	j.motor.Factor = factor
	j.motor.Stiffness, j.motor.Damping = 0, 0
}

// ConfigureMotorPosition drives the joint angle toward target as a damped spring.
func (j *Joint) ConfigureMotorPosition(target, stiffness, damping float32) {
	j.motor.Mode = MotorPosition
	j.motor.Target = target
	j.motor.Stiffness = stiffness
	j.motor.Damping = damping
	j.motor.Factor = 0
}

func (j *Joint) live() bool {
	return !j.b1.removed && !j.b2.removed && (j.b1.active() || j.b2.active())
}

func (j *Joint) worldAxis() mgl32.Vec3 {
	return j.b1.rotation.Normalize().Rotate(j.axis1)
}

func (j *Joint) relativeSpeed(axis mgl32.Vec3) float32 {
	return j.b2.angvel.Sub(j.b1.angvel).Dot(axis)
}

func (j *Joint) applyMotor(dt float32) {
	m := j.motor
	if m.Mode == MotorOff {
		return
	}
	axis := j.worldAxis()
	s := j.relativeSpeed(axis)
	var dw float32
	switch m.Mode {
	case MotorVelocity:
		want := m.Target - s
		dw = m.Factor * want * dt
		if math32.Abs(dw) > math32.Abs(want) {
			dw = want
		}
	case MotorPosition:
		dw = (m.Stiffness*(m.Target-j.angle) - m.Damping*s) * dt
	}

	_, i1 := j.b1.weights()
	_, i2 := j.b2.weights()
	var f1, f2 float32
	switch m.Model {
	case ForceBased:
		total := i1 + i2
		if total == 0 {
			return
		}
		f1, f2 = i1/total, i2/total
	default:
		n := float32(0)
		if j.b1.active() {
			n++
		}
		if j.b2.active() {
			n++
		}
		if n == 0 {
			return
		}
		if j.b1.active() {
			f1 = 1 / n
		}
		if j.b2.active() {
			f2 = 1 / n
		}
	}
	if j.b1.active() {
		j.b1.angvel = j.b1.angvel.Sub(axis.Mul(dw * f1))
	}
	if j.b2.active() {
		j.b2.angvel = j.b2.angvel.Add(axis.Mul(dw * f2))
	}
}

// solveVelocity removes relative motion at the anchor and relative spin off the hinge axis.
func (j *Joint) solveVelocity() {
	w1, i1 := j.b1.weights()
	w2, i2 := j.b2.weights()

	r1 := j.b1.rotation.Normalize().Rotate(j.anchor1)
	r2 := j.b2.rotation.Normalize().Rotate(j.anchor2)
	if total := w1 + w2; total > 0 {
		dv := j.b2.velocityAt(r2).Sub(j.b1.velocityAt(r1))
		j.b1.linvel = j.b1.linvel.Add(dv.Mul(w1 / total))
		j.b2.linvel = j.b2.linvel.Sub(dv.Mul(w2 / total))
	}

	if total := i1 + i2; total > 0 {
		axis := j.worldAxis()
		dw := j.b2.angvel.Sub(j.b1.angvel)
		perp := dw.Sub(axis.Mul(dw.Dot(axis)))
		j.b1.angvel = j.b1.angvel.Add(perp.Mul(i1 / total))
		j.b2.angvel = j.b2.angvel.Sub(perp.Mul(i2 / total))
	}
}

// solvePosition pulls the anchors together and realigns the second body's hinge axis.
func (j *Joint) solvePosition() {
	w1, i1 := j.b1.weights()
	w2, i2 := j.b2.weights()

	p1 := j.b1.translation.Add(j.b1.rotation.Normalize().Rotate(j.anchor1))
	p2 := j.b2.translation.Add(j.b2.rotation.Normalize().Rotate(j.anchor2))
	if total := w1 + w2; total > 0 {
		err := p2.Sub(p1)
		j.b1.translation = j.b1.translation.Add(err.Mul(w1 / total))
		j.b2.translation = j.b2.translation.Sub(err.Mul(w2 / total))
	}

	total := i1 + i2
	if total == 0 {
		return
	}
	a1 := j.worldAxis()
	a2 := j.b2.rotation.Normalize().Rotate(j.axis2)
	c := a2.Cross(a1)
	sin := c.Len()
	if sin < 1e-6 {
		return
	}
	angle := math32.Asin(min(sin, 1))
	if a1.Dot(a2) < 0 {
		angle = math32.Pi - angle
	}
	axis := c.Mul(1 / sin)
	if i2 > 0 {
		q := mgl32.QuatRotate(angle*i2/total, axis)
		j.b2.rotation = q.Mul(j.b2.rotation).Normalize()
	}
	if i1 > 0 {
		q := mgl32.QuatRotate(-angle*i1/total, axis)
		j.b1.rotation = q.Mul(j.b1.rotation).Normalize()
	}
}

func (j *Joint) integrateAngle(dt float32) {
	j.angle += j.relativeSpeed(j.worldAxis()) * dt
}

func (j *Joint) joins(a, b *Body) bool {
	return (j.b1 == a && j.b2 == b) || (j.b1 == b && j.b2 == a)
}
