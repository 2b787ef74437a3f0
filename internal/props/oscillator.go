package props

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/physics"
	"scene-director/internal/scene"
)

// Oscillator moves a fixed body up and down between Min and Max above its base height,
// a full cycle every 2*Period seconds, and keeps its mesh on it.
type Oscillator struct {
	Body   *physics.Body
	Mesh   *scene.Node
	Base   mgl32.Vec3
	Min    float32
	Max    float32
	Period float32

	t float32
}

// Height returns the offset above Base at the oscillator's current time.
func (o *Oscillator) Height() float32 {
	if o.Period <= 0 {
		return 0
	}
	progress := (math32.Sin(o.t*math32.Pi/o.Period) + 1) / 2
	return (o.Max - o.Min) * progress
}

// Update advances time by dt and moves the body and mesh.
func (o *Oscillator) Update(dt float32) {
	o.t += dt
	pos := o.Body.Translation()
	pos[1] = o.Base[1] + o.Height()
	o.Body.SetTranslation(pos)
	if o.Mesh != nil {
		o.Mesh.SetPose(o.Body.Translation(), o.Body.Rotation())
	}
}
