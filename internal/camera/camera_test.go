package camera

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-director/internal/tween"
)

func testWaypoints() map[int]Waypoint {
	return map[int]Waypoint{
		1: {Position: mgl32.Vec3{-2.2, 10, -2.8}, Pitch: -0.6},
		2: {Position: mgl32.Vec3{-2.6, 7.7, -2.8}, Pitch: -0.6},
		3: {Position: mgl32.Vec3{0.4, 7.7, -2.8}, Pitch: -0.3},
	}
}

func newTestRig(t *testing.T) (*Choreographer, *tween.Group) {
	t.Helper()
	g := tween.NewGroup()
	c, err := New(testWaypoints(), g, DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	return c, g
}

func advance(c *Choreographer, g *tween.Group, seconds float32) {
	const dt = 1.0 / 60
	for elapsed := float32(0); elapsed < seconds; elapsed += dt {
		g.Update(dt)
		c.Sync()
	}
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d", i)
	}
}

func TestWaypointsAreCopied(t *testing.T) {
	src := testWaypoints()
	c, err := New(src, tween.NewGroup(), DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	src[1] = Waypoint{Position: mgl32.Vec3{9, 9, 9}}
	delete(src, 2)

	w, ok := c.Waypoint(1)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{-2.2, 10, -2.8}, w.Position)
	_, ok = c.Waypoint(2)
	assert.True(t, ok)
}

func TestRigStartsAtConfiguredPose(t *testing.T) {
	c, _ := newTestRig(t)
	assert.Equal(t, mgl32.Vec3{0, 20, 20}, c.Yaw.Position)
	assert.InDelta(t, -0.6, c.PitchAngle(), 1e-6)
	assert.Same(t, c.Group, c.Pivot.Parent())
	assert.Same(t, c.Pitch, c.Camera.Parent())

	eye, target, _ := c.View()
	want := mgl32.Vec3{0, 20 + 6*math32.Sin(0.6), 20 + 6*math32.Cos(0.6)}
	assertVec(t, want, eye)
	dir := target.Sub(eye)
	assert.Less(t, dir.Y(), float32(0))
	assert.Less(t, dir.Z(), float32(0))
}

func TestMoveToReachesWaypoint(t *testing.T) {
	c, g := newTestRig(t)
	c.MoveTo(3)
	assert.True(t, c.Moving())

	advance(c, g, 0.75)
	assert.Greater(t, c.Yaw.Position.Y(), float32(7.7))
	assert.Less(t, c.Yaw.Position.Y(), float32(20))

	advance(c, g, 1)
	assert.False(t, c.Moving())
	assertVec(t, mgl32.Vec3{0.4, 7.7, -2.8}, c.Yaw.Position)
	assert.InDelta(t, -0.3, c.PitchAngle(), 1e-5)
	assert.Equal(t, 1, c.Moves())
}

func TestMoveToSupersedesPreviousMove(t *testing.T) {
	c, g := newTestRig(t)
	c.MoveTo(1)
	advance(c, g, 0.5)
	c.MoveTo(2)
	advance(c, g, 2)
	assertVec(t, mgl32.Vec3{-2.6, 7.7, -2.8}, c.Yaw.Position)
	assert.Equal(t, 2, c.Moves())
}

func TestMoveToUnknownSectionIsIgnored(t *testing.T) {
	c, g := newTestRig(t)
	c.MoveTo(42)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, c.Moves())
}

func TestParallaxNewestTargetWins(t *testing.T) {
	c, g := newTestRig(t)
	c.UpdateParallax(0.025, -0.02)
	advance(c, g, 0.1)
	c.UpdateParallax(-0.01, 0.015)
	advance(c, g, 1)
	assert.InDelta(t, -0.01, c.Group.Position.X(), 1e-6)
	assert.InDelta(t, 0.015, c.Group.Position.Y(), 1e-6)
	assert.Equal(t, 0, g.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, g := newTestRig(t)
	c.MoveTo(3)
	advance(c, g, 2)
	c.Pivot.Rotation = mgl32.QuatRotate(0.2, mgl32.Vec3{0, 1, 0})
	path := filepath.Join(t.TempDir(), "state", "camera.json")
	require.NoError(t, c.Save(path))

	other, og := newTestRig(t)
	other.MoveTo(1)
	require.NoError(t, other.Load(path))
	assert.False(t, other.Moving())
	advance(other, og, 0.1)

	assertVec(t, c.Yaw.Position, other.Yaw.Position)
	assert.InDelta(t, c.PitchAngle(), other.PitchAngle(), 1e-5)
	assert.InDelta(t, c.Pivot.Rotation.W, other.Pivot.Rotation.W, 1e-5)
	assert.InDelta(t, c.Pivot.Rotation.V.Y(), other.Pivot.Rotation.V.Y(), 1e-5)

	assert.Error(t, other.Load(filepath.Join(t.TempDir(), "missing.json")))
}

func TestSaveErrorsNameThePackage(t *testing.T) {
	c, _ := newTestRig(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := c.Save(filepath.Join(blocker, "state", "camera.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera: create dir")
	var pathErr *os.PathError
	assert.ErrorAs(t, err, &pathErr)
}

func TestRayFollowsCursor(t *testing.T) {
	c, _ := newTestRig(t)
	eye, target, up := c.View()

	origin, dir := c.Ray(0, 0, 45, 16.0/9)
	assertVec(t, eye, origin)
	assertVec(t, target.Sub(eye), dir)

	_, down := c.Ray(0, 0.5, 90, 1)
	assert.Less(t, down.Dot(up), float32(0))
	assert.InDelta(t, 1, down.Len(), 1e-5)
	assert.InDelta(t, math32.Pi/4, math32.Acos(down.Dot(target.Sub(eye))), 1e-4)
}
