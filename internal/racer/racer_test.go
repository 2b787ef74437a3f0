package racer

import (
	"os"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/schedule"
	"scene-director/internal/scene"
)

const frame = 10 * time.Millisecond

type fixture struct {
	c     *Controller
	sched *schedule.Scheduler
	root  *scene.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	model, err := assets.NewLoader(os.DirFS("../../content/models"), zerolog.Nop()).Get("racer")
	require.NoError(t, err)
	f := &fixture{sched: schedule.New(), root: scene.NewNode("root")}
	opts := OptionsFrom(content.Racer{
		Position: mgl32.Vec3{-2, 5.1, 0.3}, Scale: 0.2, RotationY: -90,
		Run: "run", Jump: "jump", Fade: 0.1,
	}, 0.7)
	f.c, err = New(model, f.root, f.sched, opts, zerolog.Nop())
	require.NoError(t, err)
	return f
}

func (f *fixture) step(d time.Duration) {
	for d > 0 {
		dt := min(d, frame)
		f.sched.Advance(dt)
		f.c.Update(float32(dt.Seconds()))
		d -= dt
	}
}

func TestStartsRunning(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Running, f.c.State())
	run, jump := f.c.Weights()
	assert.Equal(t, float32(1), run)
	assert.Equal(t, float32(0), jump)
	assert.Same(t, f.root, f.c.Node.Parent())
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, f.c.Node.Scale)
}

func TestMissingClipFails(t *testing.T) {
	model, err := assets.NewLoader(os.DirFS("../../content/models"), zerolog.Nop()).Get("racer")
	require.NoError(t, err)
	_, err = New(model, scene.NewNode("root"), schedule.New(), Options{Run: "run", Jump: "flip"}, zerolog.Nop())
	assert.ErrorContains(t, err, "flip")
}

func TestDoubleJumpRunsOneCycle(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.c.Jump())
	assert.False(t, f.c.Jump())
	assert.Equal(t, Jumping, f.c.State())
	assert.Equal(t, 1, f.sched.Pending())

	f.step(830 * time.Millisecond)
	assert.Equal(t, Jumping, f.c.State())
	assert.False(t, f.c.Jump())
	run, jump := f.c.Weights()
	assert.Equal(t, float32(0), run)
	assert.Equal(t, float32(1), jump)

	f.step(20 * time.Millisecond)
	assert.Equal(t, Running, f.c.State())
	assert.Equal(t, 1, f.c.Cycles())

	f.step(2 * time.Second)
	assert.Equal(t, 1, f.c.Cycles())
	run, jump = f.c.Weights()
	assert.Equal(t, float32(1), run)
	assert.Equal(t, float32(0), jump)
}

func TestJumpAgainAfterLanding(t *testing.T) {
	f := newFixture(t)
	f.c.Jump()
	f.step(time.Second)
	require.True(t, f.c.Jump())
	f.step(time.Second)
	assert.Equal(t, 2, f.c.Cycles())
}

func TestJumpLiftsFigure(t *testing.T) {
	f := newFixture(t)
	figure := f.c.Node.Find("figure")
	require.NotNil(t, figure)
	f.c.Jump()
	f.step(500 * time.Millisecond)
	assert.Greater(t, figure.Position.Y(), float32(1))
	f.step(2 * time.Second)
	assert.Less(t, figure.Position.Y(), float32(0.1))
}

func TestDisposeCancelsLanding(t *testing.T) {
	f := newFixture(t)
	f.c.Jump()
	f.c.Dispose()
	assert.Equal(t, 0, f.sched.Pending())
	assert.Nil(t, f.c.Node.Parent())
	f.step(2 * time.Second)
	assert.Equal(t, 0, f.c.Cycles())
}
