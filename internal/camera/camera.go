package camera

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"

	"scene-director/internal/scene"
	"scene-director/internal/tween"
)

// Tween keys. A new move or parallax request replaces the one in flight.
const (
	keyYaw      = "camera.yaw"
	keyPitch    = "camera.pitch"
	keyParallax = "camera.parallax"
)

// Waypoint is where the yaw node sits for a section, and the pitch angle (radians about X).
type Waypoint struct {
	Position mgl32.Vec3
	Pitch    float32
}

// Options tunes the rig. Durations are seconds.
type Options struct {
	Start            mgl32.Vec3
	StartPitch       float32
	Distance         float32
	Duration         float32
	Ease             string
	ParallaxDuration float32
	ParallaxEase     string
}

// DefaultOptions matches the authored scene: the rig starts high above the shelf and eases in.
func DefaultOptions() Options {
	return Options{
		Start:            mgl32.Vec3{0, 20, 20},
		StartPitch:       -0.6,
		Distance:         6,
		Duration:         1.5,
		Ease:             "power2.inOut",
		ParallaxDuration: 0.5,
		ParallaxEase:     "power2.out",
	}
}

// Choreographer owns the camera rig (group -> pivot -> yaw -> pitch -> camera) and moves it
// between section waypoints. Moves are fire and forget: nothing waits on them.
type Choreographer struct {
	Group  *scene.Node
	Pivot  *scene.Node
	Yaw    *scene.Node
	Pitch  *scene.Node
	Camera *scene.Node

	waypoints map[int]Waypoint
	tweens    *tween.Group
	opts      Options
	log       zerolog.Logger

	pitch float32
	moves int
}

// New builds the rig. waypoints is copied; later changes to the caller's map are not seen.
func New(waypoints map[int]Waypoint, tweens *tween.Group, opts Options, log zerolog.Logger) (*Choreographer, error) {
	table := make(map[int]Waypoint, len(waypoints))
	if err := copier.CopyWithOption(&table, waypoints, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("camera: copy waypoints: %w", err)
	}
	c := &Choreographer{
		Group:     scene.NewNode("camera.group"),
		Pivot:     scene.NewNode("camera.pivot"),
		Yaw:       scene.NewNode("camera.yaw"),
		Pitch:     scene.NewNode("camera.pitch"),
		Camera:    scene.NewNode("camera"),
		waypoints: table,
		tweens:    tweens,
		opts:      opts,
		log:       log.With().Str("component", "camera").Logger(),
	}
	c.Group.Add(c.Pivot)
	c.Pivot.Add(c.Yaw)
	c.Yaw.Add(c.Pitch)
	c.Pitch.Add(c.Camera)
	c.Yaw.Position = opts.Start
	c.Camera.Position = mgl32.Vec3{0, 0, opts.Distance}
	c.SetPitch(opts.StartPitch)
	return c, nil
}

// Waypoint returns the waypoint registered for id.
func (c *Choreographer) Waypoint(id int) (Waypoint, bool) {
	w, ok := c.waypoints[id]
	return w, ok
}

// MoveTo tweens the yaw position and pitch angle to the waypoint of section id.
// Unknown ids are logged and ignored.
func (c *Choreographer) MoveTo(id int) {
	w, ok := c.waypoints[id]
	if !ok {
		c.log.Warn().Int("section", id).Msg("no waypoint")
		return
	}
	c.moves++
	easing := tween.Ease(c.opts.Ease)
	c.tweens.To(keyYaw, []tween.Prop{
		{Ptr: &c.Yaw.Position[0], To: w.Position[0]},
		{Ptr: &c.Yaw.Position[1], To: w.Position[1]},
		{Ptr: &c.Yaw.Position[2], To: w.Position[2]},
	}, c.opts.Duration, easing, nil)
	c.tweens.To(keyPitch, []tween.Prop{{Ptr: &c.pitch, To: w.Pitch}}, c.opts.Duration, easing, nil)
	c.log.Debug().Int("section", id).Msg("move")
}

// Moves counts MoveTo calls that found a waypoint.
func (c *Choreographer) Moves() int {
	return c.moves
}

// Moving reports whether a waypoint move is still in flight.
func (c *Choreographer) Moving() bool {
	return c.tweens.Running(keyYaw) || c.tweens.Running(keyPitch)
}

// UpdateParallax eases the outer group toward (x, y). Each call supersedes the previous target.
func (c *Choreographer) UpdateParallax(x, y float32) {
	c.tweens.To(keyParallax, []tween.Prop{
		{Ptr: &c.Group.Position[0], To: x},
		{Ptr: &c.Group.Position[1], To: y},
	}, c.opts.ParallaxDuration, tween.Ease(c.opts.ParallaxEase), nil)
}

// Sync writes the tweened pitch angle onto the pitch node. Call after the tween group updates.
func (c *Choreographer) Sync() {
	c.Pitch.Rotation = mgl32.QuatRotate(c.pitch, mgl32.Vec3{1, 0, 0})
}

// PitchAngle returns the current pitch in radians.
func (c *Choreographer) PitchAngle() float32 {
	return c.pitch
}

// SetPitch sets the pitch angle immediately.
func (c *Choreographer) SetPitch(rad float32) {
	c.pitch = rad
	c.Sync()
}

// View returns the eye position, the point one unit ahead, and the up vector in world space.
func (c *Choreographer) View() (eye, target, up mgl32.Vec3) {
	m := c.Camera.WorldMatrix()
	eye = m.Col(3).Vec3()
	forward := m.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if l := forward.Len(); l > 0 {
		forward = forward.Mul(1 / l)
	}
	up = m.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3()
	return eye, eye.Add(forward), up
}

// Ray returns the world-space ray under a normalized cursor offset (each axis in [-0.5, 0.5],
// y down) for a perspective camera with vertical field of view fovy degrees.
func (c *Choreographer) Ray(x, y, fovy, aspect float32) (origin, dir mgl32.Vec3) {
	m := c.Camera.WorldMatrix()
	half := math32.Tan(mgl32.DegToRad(fovy) / 2)
	local := mgl32.Vec4{2 * x * half * aspect, -2 * y * half, -1, 0}
	dir = m.Mul4x1(local).Vec3()
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return m.Col(3).Vec3(), dir
}

// pitchFromQuat recovers the X rotation angle of a pure pitch quaternion.
func pitchFromQuat(q mgl32.Quat) float32 {
	return 2 * math32.Atan2(q.V[0], q.W)
}
