package physics

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Overlaps reports whether the boxes intersect with positive volume.
func (a AABB) Overlaps(b AABB) bool {
	_, axis := penetrationAxis(a, b)
	return axis >= 0
}

func (a AABB) extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = min(a.Min[i], p[i])
		a.Max[i] = max(a.Max[i], p[i])
	}
	return a
}

// overlap returns the intersection of two overlapping boxes.
func (a AABB) overlap(b AABB) AABB {
	var o AABB
	for i := 0; i < 3; i++ {
		o.Min[i] = max(a.Min[i], b.Min[i])
		o.Max[i] = min(a.Max[i], b.Max[i])
	}
	return o
}

// penetrationAxis returns the overlap amount and axis index (0=X, 1=Y, 2=Z) for the minimum penetration.
// If no overlap, returns (0, -1).
func penetrationAxis(a, b AABB) (depth float32, axis int) {
	overlapX := min(a.Max[0], b.Max[0]) - max(a.Min[0], b.Min[0])
	overlapY := min(a.Max[1], b.Max[1]) - max(a.Min[1], b.Min[1])
	overlapZ := min(a.Max[2], b.Max[2]) - max(a.Min[2], b.Min[2])
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return 0, -1
	}
	depth = overlapX
	axis = 0
	if overlapY < depth {
		depth = overlapY
		axis = 1
	}
	if overlapZ < depth {
		depth = overlapZ
		axis = 2
	}
	return depth, axis
}
