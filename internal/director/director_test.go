package director

import (
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-director/internal/content"
	"scene-director/internal/engineconfig"
	"scene-director/internal/input"
	"scene-director/internal/racer"
)

const frame = float32(1.0 / 60)

func newDirector(t *testing.T) *Director {
	t.Helper()
	c, err := content.LoadDir("../../content")
	require.NoError(t, err)
	d, err := New(Options{
		Prefs:   engineconfig.Default(),
		Content: c,
		Models:  os.DirFS("../../content/models"),
		Rand:    rand.New(rand.NewPCG(3, 4)),
		Log:     zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(d.Dispose)
	return d
}

// deliver waits for every requested load and hands it over with a zero-length frame.
func (d *Director) deliver() {
	d.loader.Wait()
	d.Update(0)
}

func (d *Director) run(dur time.Duration) {
	for n := int(dur.Seconds() / float64(frame)); n > 0; n-- {
		d.Update(frame)
	}
}

func TestNewRequiresContentAndModels(t *testing.T) {
	_, err := New(Options{Models: os.DirFS(".")})
	assert.Error(t, err)
	_, err = New(Options{Content: &content.Content{}})
	assert.Error(t, err)
}

func TestStartupLoadsWireEverything(t *testing.T) {
	d := newDirector(t)
	assert.False(t, d.Progress().Complete())
	assert.Equal(t, 10, d.Progress().Total)
	assert.Nil(t, d.Racer())
	d.Update(frame)

	d.deliver()
	assert.True(t, d.Progress().Complete())
	assert.True(t, d.Vehicle().Built())
	assert.True(t, d.Vehicle().Sleeping())
	assert.Len(t, d.Throwables().Sets(), 2)
	require.NotNil(t, d.Racer())
	assert.NotNil(t, d.shelf)
	assert.NotNil(t, d.desk)
	assert.NotNil(t, d.Chart())
	assert.NotNil(t, d.Figure())
	assert.Len(t, d.decor, 2)
	assert.NotNil(t, d.Root().Find("thought"))
	assert.NotNil(t, d.Root().Find("floor"))
	assert.False(t, d.Root().Find("wall.1").Visible)
}

func TestScrollMovesCameraAndPanels(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.Bus().Wheel(120)
	d.Bus().Wheel(120)
	nav := d.Navigation()
	assert.Equal(t, 2, nav.Current)
	assert.True(t, nav.Transitioning)
	assert.True(t, d.Camera().Moving())

	d.run(2500 * time.Millisecond)
	want, ok := d.Camera().Waypoint(2)
	require.True(t, ok)
	assert.InDeltaSlice(t, want.Position[:], d.Camera().Yaw.Position[:], 1e-4)
	assert.InDelta(t, want.Pitch, d.Camera().PitchAngle(), 1e-4)
	panels := d.Sections().Panels()
	assert.False(t, panels[0].Shown)
	assert.True(t, panels[1].Shown)
	assert.Equal(t, 2, d.Navigation().Displayed)
}

func TestAwardsSpawnAndLeave(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.Goto(4)
	d.Click()
	d.Click()
	d.deliver()
	live := d.Props().Live()
	require.Len(t, live, 2)
	assert.Len(t, live[0].Parts, 3)

	d.Goto(5)
	assert.Empty(t, d.Props().Live())
	created, disposed := d.Props().Counts()
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, disposed)
}

func TestSpawnDroppedWhenSectionLeftBeforeLoad(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.Goto(4)
	d.Click()
	d.Goto(3)
	d.deliver()
	assert.Empty(t, d.Props().Live())
}

func TestThrowClick(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.Goto(5)
	d.Click()
	for _, s := range d.Throwables().Sets() {
		for _, b := range s.Bodies {
			assert.Greater(t, b.Linvel().Y(), float32(0))
		}
	}
	d.ResetToys()
	for _, s := range d.Throwables().Sets() {
		for _, b := range s.Bodies {
			assert.True(t, b.IsSleeping())
		}
	}
}

func TestJumpClickRunsOneCycle(t *testing.T) {
	d := newDirector(t)
	assert.False(t, d.Jump())
	d.deliver()
	d.Goto(6)
	d.Click()
	d.Click()
	assert.Equal(t, racer.Jumping, d.Racer().State())
	d.run(time.Second)
	assert.Equal(t, racer.Running, d.Racer().State())
	assert.Equal(t, 1, d.Racer().Cycles())
}

func TestDrivingWakesTruckAndClickResetsIt(t *testing.T) {
	d := newDirector(t)
	d.Goto(7)
	d.Click()
	d.deliver()

	d.Bus().KeyDown(input.RawW)
	d.Update(frame)
	assert.False(t, d.Vehicle().Sleeping())
	assert.Equal(t, 1, d.Vehicle().Intent().Throttle)

	d.Bus().KeyUp(input.RawW)
	d.Click()
	assert.True(t, d.Vehicle().Sleeping())
	d.Update(frame)
	assert.True(t, d.Vehicle().Sleeping())
}

func TestClickWithoutTrigger(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	bodies := len(d.World().Bodies())
	d.Bus().Click()
	d.deliver()
	assert.Empty(t, d.Props().Live())
	assert.Len(t, d.World().Bodies(), bodies)
}

func TestParallaxFollowsCursor(t *testing.T) {
	d := newDirector(t)
	d.UpdateParallax(0.5, 0.5)
	d.run(time.Second)
	assert.InDelta(t, 0.025, d.Camera().Group.Position.X(), 1e-5)
	assert.InDelta(t, -0.025, d.Camera().Group.Position.Y(), 1e-5)
}

func TestCursorDrivesParallax(t *testing.T) {
	d := newDirector(t)
	d.Bus().Cursor(0, 1000, 1000, 1000)
	d.run(time.Second)
	assert.InDelta(t, -0.025, d.Camera().Group.Position.X(), 1e-5)
	assert.InDelta(t, -0.025, d.Camera().Group.Position.Y(), 1e-5)
}

func TestDeskBobs(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	base := d.content.Environment.Desk.Position.Y()
	d.run(500 * time.Millisecond)
	y := d.desk.Body.Translation().Y()
	assert.Greater(t, y, base)
	assert.LessOrEqual(t, y, base+0.07+1e-5)
}

// cursorOver returns the cursor offset whose ray passes through p.
func cursorOver(d *Director, p mgl32.Vec3) (x, y float32) {
	local := d.Camera().Camera.WorldMatrix().Inv().Mul4x1(p.Vec4(1))
	half := math32.Tan(mgl32.DegToRad(d.fovy) / 2)
	depth := -local.Z()
	return local.X() / depth / (2 * half * d.aspect), -local.Y() / depth / (2 * half)
}

func TestHoverReachesChart(t *testing.T) {
	d := newDirector(t)
	assert.Equal(t, "", d.Hover(0, 0))
	d.deliver()
	d.SetViewport(50, 1.5)
	d.SetViewport(0, -1)
	assert.Equal(t, float32(50), d.fovy)
	assert.Equal(t, float32(1.5), d.aspect)

	coin := d.Root().Find("coin")
	require.NotNil(t, coin)
	x, y := cursorOver(d, coin.WorldPosition())
	assert.Equal(t, "coin", d.Hover(x, y))
}

func TestCursorFlipsCoin(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.SetViewport(45, 1)
	coin := d.Root().Find("big_coin")
	require.NotNil(t, coin)
	x, y := cursorOver(d, coin.WorldPosition())
	assert.Less(t, math32.Abs(x), float32(0.5))
	assert.Less(t, math32.Abs(y), float32(0.5))
	d.Bus().Cursor((x+0.5)*1000, (y+0.5)*1000, 1000, 1000)

	// Offsets are doubled onto [-1, 1] before the threshold.
	want := 0
	for _, off := range []float32{x, y} {
		if math32.Abs(2*off) > 0.1 {
			want++
		}
	}
	assert.Equal(t, want, d.Chart().Flips())
	d.run(2 * time.Second)
	sx, sy, ok := d.Chart().Spin("big_coin")
	require.True(t, ok)
	assert.Equal(t, want > 0, math32.Abs(sx)+math32.Abs(sy) > 0)
}

func TestFigureLoops(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.run(500 * time.Millisecond)
	assert.Greater(t, d.Figure().Phase(), float32(0))
}

func TestMacintoshRidesDesk(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.run(2 * time.Second)

	var mac *decorPiece
	for _, p := range d.decor {
		if p.name == "macintosh" {
			mac = p
		}
	}
	require.NotNil(t, mac)
	require.NotNil(t, mac.body)
	assert.False(t, mac.body.IsSleeping())
	assert.Equal(t, mac.body.Translation(), mac.mesh.Position)
	assert.Greater(t, mac.body.Translation().Y(), d.desk.Body.Translation().Y())
	assert.Less(t, mac.body.Translation().Y(), float32(10.6))
}

func TestLightsToggle(t *testing.T) {
	d := newDirector(t)
	require.Len(t, d.Lights().Spots, 8)
	d.ShowLights(false)
	assert.Zero(t, d.Lights().Uniforms().Count)
	d.ShowLights(true)
	assert.Equal(t, 8, d.Lights().Uniforms().Count)
}

func TestDisposeStopsEverything(t *testing.T) {
	d := newDirector(t)
	d.deliver()
	d.Bus().Wheel(1)
	d.Dispose()
	d.Dispose()

	assert.True(t, d.Disposed())
	assert.Equal(t, 0, d.Bus().Subscribers())
	assert.Equal(t, 0, d.sched.Pending())
	assert.Equal(t, 0, d.tweens.Len())
	assert.False(t, d.Vehicle().Built())
	assert.Empty(t, d.Throwables().Sets())
	assert.Nil(t, d.Root().Find("chart"))
	assert.Nil(t, d.Root().Find("markerman"))
	assert.Equal(t, "", d.Hover(0, 0))

	d.Update(frame)
	d.Click()
	d.Goto(3)
	assert.Equal(t, 2, d.Navigation().Current)
	assert.ErrorIs(t, d.LoadCamera("missing.json"), ErrDisposed)
}

func TestDisposeDropsLoadsInFlight(t *testing.T) {
	d := newDirector(t)
	d.Dispose()
	d.loader.Wait()
	d.loader.Poll()
	assert.False(t, d.Vehicle().Built())
	assert.Nil(t, d.Racer())
}

func TestCameraSaveAndLoad(t *testing.T) {
	d := newDirector(t)
	path := t.TempDir() + "/camera.json"
	d.Goto(3)
	d.run(2 * time.Second)
	require.NoError(t, d.SaveCamera(path))
	at := d.Camera().Yaw.Position

	d.Goto(8)
	d.run(2 * time.Second)
	require.NoError(t, d.LoadCamera(path))
	assert.Equal(t, at, d.Camera().Yaw.Position)
}
