package physics

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind identifies a collider shape.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
	ShapeConvexHull
	ShapeTriMesh
)

var (
	ErrDegenerateHull = errors.New("physics: convex hull needs at least 4 points")
	ErrBadTriMesh     = errors.New("physics: invalid triangle mesh")
)

// InteractionGroups packs collision membership (high 16 bits) and filter (low 16 bits).
// Two colliders touch only when each one's membership intersects the other's filter.
type InteractionGroups uint32

// AllGroups collides with everything.
const AllGroups InteractionGroups = 0xFFFFFFFF

// Groups builds an InteractionGroups value from membership and filter masks.
func Groups(membership, filter uint16) InteractionGroups {
	return InteractionGroups(uint32(membership)<<16 | uint32(filter))
}

func (g InteractionGroups) Membership() uint16 { return uint16(g >> 16) }

func (g InteractionGroups) Filter() uint16 { return uint16(g) }

// Test reports whether colliders in groups g and o may collide.
func (g InteractionGroups) Test(o InteractionGroups) bool {
	return g.Membership()&o.Filter() != 0 && o.Membership()&g.Filter() != 0
}

// ColliderDesc describes a collider shape and its material. Translation and Rotation place
// the shape relative to its body. Mass overrides Density when positive.
type ColliderDesc struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3
	HalfHeight  float32
	Radius      float32
	Points      []mgl32.Vec3
	Indices     []uint32

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Mass        float32
	Density     float32
	Friction    float32
	Restitution float32
	Groups      InteractionGroups
}

func baseCollider(kind ShapeKind) ColliderDesc {
	return ColliderDesc{
		Kind:     kind,
		Rotation: mgl32.QuatIdent(),
		Density:  1,
		Friction: 0.5,
		Groups:   AllGroups,
	}
}

// Cuboid is a box with the given half extents.
func Cuboid(hx, hy, hz float32) ColliderDesc {
	d := baseCollider(ShapeBox)
	d.HalfExtents = mgl32.Vec3{hx, hy, hz}
	return d
}

// Cylinder is a Y-aligned cylinder.
func Cylinder(halfHeight, radius float32) ColliderDesc {
	d := baseCollider(ShapeCylinder)
	d.HalfHeight = halfHeight
	d.Radius = radius
	return d
}

// ConvexHull wraps a point cloud. Contacts use its bounding box.
func ConvexHull(points []mgl32.Vec3) (ColliderDesc, error) {
	if len(points) < 4 {
		return ColliderDesc{}, fmt.Errorf("%w: got %d", ErrDegenerateHull, len(points))
	}
	d := baseCollider(ShapeConvexHull)
	d.Points = append([]mgl32.Vec3(nil), points...)
	return d, nil
}

// TriMesh wraps an indexed triangle list, used for static scenery.
func TriMesh(vertices []mgl32.Vec3, indices []uint32) (ColliderDesc, error) {
	if len(vertices) == 0 || len(indices) == 0 || len(indices)%3 != 0 {
		return ColliderDesc{}, fmt.Errorf("%w: %d vertices, %d indices", ErrBadTriMesh, len(vertices), len(indices))
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return ColliderDesc{}, fmt.Errorf("%w: index %d out of range", ErrBadTriMesh, i)
		}
	}
	d := baseCollider(ShapeTriMesh)
	d.Points = append([]mgl32.Vec3(nil), vertices...)
	d.Indices = append([]uint32(nil), indices...)
	return d, nil
}

func (d ColliderDesc) WithTranslation(x, y, z float32) ColliderDesc {
	d.Translation = mgl32.Vec3{x, y, z}
	return d
}

func (d ColliderDesc) WithRotation(q mgl32.Quat) ColliderDesc {
	d.Rotation = q
	return d
}

func (d ColliderDesc) WithMass(m float32) ColliderDesc {
	d.Mass = m
	return d
}

func (d ColliderDesc) WithFriction(f float32) ColliderDesc {
	d.Friction = f
	return d
}

func (d ColliderDesc) WithRestitution(r float32) ColliderDesc {
	d.Restitution = r
	return d
}

func (d ColliderDesc) WithGroups(g InteractionGroups) ColliderDesc {
	d.Groups = g
	return d
}

// Collider is a shape attached to a body.
type Collider struct {
	body     *Body
	desc     ColliderDesc
	localMin mgl32.Vec3
	localMax mgl32.Vec3
	bounds   AABB
	// per-triangle bounds for triangle meshes, padded to triPad
	parts []AABB
}

func newCollider(d ColliderDesc, b *Body) *Collider {
	if d.Rotation.W == 0 && d.Rotation.V == (mgl32.Vec3{}) {
		d.Rotation = mgl32.QuatIdent()
	}
	c := &Collider{body: b, desc: d}
	c.localMin, c.localMax = d.localBounds()
	c.updateBounds()
	return c
}

func (c *Collider) Body() *Body { return c.body }

func (c *Collider) Groups() InteractionGroups { return c.desc.Groups }

func (c *Collider) Shape() ShapeKind { return c.desc.Kind }

// Bounds returns the world-space bounding box as of the last step or pose change.
func (c *Collider) Bounds() AABB { return c.bounds }

func (d ColliderDesc) localBounds() (mgl32.Vec3, mgl32.Vec3) {
	switch d.Kind {
	case ShapeBox:
		return d.HalfExtents.Mul(-1), d.HalfExtents
	case ShapeCylinder:
		h := mgl32.Vec3{d.Radius, d.HalfHeight, d.Radius}
		return h.Mul(-1), h
	default:
		lo, hi := d.Points[0], d.Points[0]
		for _, p := range d.Points[1:] {
			for i := 0; i < 3; i++ {
				lo[i] = min(lo[i], p[i])
				hi[i] = max(hi[i], p[i])
			}
		}
		return lo, hi
	}
}

func (c *Collider) updateBounds() {
	b := c.body
	first := true
	var box AABB
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{c.localMin[0], c.localMin[1], c.localMin[2]}
		if i&1 != 0 {
			corner[0] = c.localMax[0]
		}
		if i&2 != 0 {
			corner[1] = c.localMax[1]
		}
		if i&4 != 0 {
			corner[2] = c.localMax[2]
		}
		local := c.desc.Translation.Add(c.desc.Rotation.Rotate(corner))
		p := b.translation.Add(b.rotation.Normalize().Rotate(local))
		if first {
			box = AABB{Min: p, Max: p}
			first = false
			continue
		}
		box = box.extend(p)
	}
	c.bounds = box
	if c.desc.Kind == ShapeTriMesh {
		c.updateParts()
	}
}

// triPad is the minimum half-thickness of a triangle's bounds, so flat faces still collide.
const triPad = 0.02

func (c *Collider) updateParts() {
	b := c.body
	rot := b.rotation.Normalize()
	world := func(i uint32) mgl32.Vec3 {
		local := c.desc.Translation.Add(c.desc.Rotation.Rotate(c.desc.Points[i]))
		return b.translation.Add(rot.Rotate(local))
	}
	idx := c.desc.Indices
	c.parts = c.parts[:0]
	for t := 0; t+2 < len(idx); t += 3 {
		p := world(idx[t])
		box := AABB{Min: p, Max: p}.extend(world(idx[t+1])).extend(world(idx[t+2]))
		for i := 0; i < 3; i++ {
			if box.Max[i]-box.Min[i] < 2*triPad {
				mid := (box.Max[i] + box.Min[i]) / 2
				box.Min[i], box.Max[i] = mid-triPad, mid+triPad
			}
		}
		c.parts = append(c.parts, box)
		c.bounds = c.bounds.extend(box.Min).extend(box.Max)
	}
}

// shapes returns the boxes contacts are tested against.
func (c *Collider) shapes() []AABB {
	if c.desc.Kind == ShapeTriMesh {
		return c.parts
	}
	return []AABB{c.bounds}
}

func (c *Collider) volume() float32 {
	d := c.desc
	switch d.Kind {
	case ShapeBox:
		return 8 * d.HalfExtents[0] * d.HalfExtents[1] * d.HalfExtents[2]
	case ShapeCylinder:
		return math32.Pi * d.Radius * d.Radius * 2 * d.HalfHeight
	default:
		s := c.localMax.Sub(c.localMin)
		return s[0] * s[1] * s[2]
	}
}

func (c *Collider) mass() float32 {
	if c.desc.Mass > 0 {
		return c.desc.Mass
	}
	return c.desc.Density * c.volume()
}

// inertia approximates the diagonal inertia tensor by its mean.
func (c *Collider) inertia(m float32) float32 {
	d := c.desc
	switch d.Kind {
	case ShapeCylinder:
		r2, h := d.Radius*d.Radius, 2*d.HalfHeight
		axial := m * r2 / 2
		transverse := m * (3*r2 + h*h) / 12
		return (axial + 2*transverse) / 3
	default:
		s := c.localMax.Sub(c.localMin)
		x2, y2, z2 := s[0]*s[0], s[1]*s[1], s[2]*s[2]
		return m * 2 * (x2 + y2 + z2) / 36
	}
}
