// Package lighting holds the spot rig over the shelf and packs it into the flat arrays the lit
// shader reads. Every spot points straight down.
package lighting

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/content"
	"scene-director/internal/scene"
)

// MaxSpots is the size of the shader's spot arrays.
const MaxSpots = content.MaxSpots

const (
	defaultColor     = "#ffffff"
	defaultIntensity = 1
	defaultAngle     = math32.Pi / 6
)

// Spot is one downward cone light. Outer and Inner are cosines of the cone edge and of where
// the penumbra starts. A zero Distance reaches forever.
type Spot struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Outer     float32
	Inner     float32
	Distance  float32
	Intensity float32
}

// Rig is the set of spots plus the ambient color. Hiding it drops every spot from the
// uniforms and keeps the ambient term.
type Rig struct {
	Ambient *mgl32.Vec3
	Spots   []Spot

	hidden bool
}

// New builds a rig from authored lights, filling zero values with defaults.
func New(l content.Lights) (*Rig, error) {
	if len(l.Spots) > MaxSpots {
		return nil, fmt.Errorf("lighting: %d spots, at most %d", len(l.Spots), MaxSpots)
	}
	r := &Rig{}
	if l.Ambient != "" {
		amb, err := rgb(l.Ambient)
		if err != nil {
			return nil, err
		}
		r.Ambient = &amb
	}
	name := l.Color
	if name == "" {
		name = defaultColor
	}
	col, err := rgb(name)
	if err != nil {
		return nil, err
	}
	intensity := l.Intensity
	if intensity == 0 {
		intensity = defaultIntensity
	}
	angle := l.Angle
	if angle == 0 {
		angle = defaultAngle
	}
	for _, p := range l.Spots {
		r.Spots = append(r.Spots, Spot{
			Position:  p,
			Color:     col,
			Outer:     math32.Cos(angle),
			Inner:     math32.Cos(angle * (1 - l.Penumbra)),
			Distance:  l.Distance,
			Intensity: intensity,
		})
	}
	return r, nil
}

func rgb(s string) (mgl32.Vec3, error) {
	c, err := scene.ParseColor(s)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("lighting: %w", err)
	}
	return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}, nil
}

func (r *Rig) SetVisible(visible bool) { r.hidden = !visible }

func (r *Rig) Visible() bool { return !r.hidden }

// Uniforms is the rig flattened for upload: three floats per position and color, and four per
// shape (outer, inner, distance, intensity).
type Uniforms struct {
	Count     int
	Positions []float32
	Colors    []float32
	Shapes    []float32
}

// Uniforms packs the visible spots. A nil or hidden rig packs to zero spots.
func (r *Rig) Uniforms() Uniforms {
	var u Uniforms
	if r == nil || r.hidden {
		return u
	}
	u.Count = len(r.Spots)
	for _, s := range r.Spots {
		u.Positions = append(u.Positions, s.Position[:]...)
		u.Colors = append(u.Colors, s.Color[:]...)
		u.Shapes = append(u.Shapes, s.Outer, s.Inner, s.Distance, s.Intensity)
	}
	return u
}

// Reach returns how much of spot s lands on point p, in [0, 1], before surface orientation.
// It mirrors the shader so the rig can be checked without a GPU.
func (s Spot) Reach(p mgl32.Vec3) float32 {
	to := s.Position.Sub(p)
	d := to.Len()
	if d == 0 {
		return 1
	}
	// Cosine between straight down and the direction from the spot to p.
	cos := to.Y() / d
	cone := smoothstep(s.Outer, s.Inner, cos)
	fall := float32(1)
	if s.Distance > 0 {
		fall = mgl32.Clamp(1-d/s.Distance, 0, 1)
	}
	return cone * fall
}

func smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := mgl32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
