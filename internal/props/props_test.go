package props

import (
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/physics"
	"scene-director/internal/scene"
)

const trophies = `
name: awards
nodes:
  - name: one
    shape: {kind: cylinder, size: [0.2, 0.4, 0.2]}
  - name: two
    shape: {kind: cylinder, size: [0.2, 0.4, 0.2]}
  - name: three
    shape: {kind: cylinder, size: [0.2, 0.4, 0.2]}
`

type fixture struct {
	m      *Manager
	loader *assets.Loader
	world  *physics.World
	root   *scene.Node
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	fsys := fstest.MapFS{"awards.yaml": {Data: []byte(trophies)}}
	f := &fixture{
		loader: assets.NewLoader(fsys, zerolog.Nop()),
		world:  physics.NewWorld(),
		root:   scene.NewNode("root"),
	}
	defs := map[string]content.PropDef{
		"awards": {
			Model: "awards", Nodes: []string{"one", "two", "three"}, Spacing: 0.5,
			LinearDamping: 1, AngularDamping: 1, Radius: 0.1, HalfHeight: 0.2,
			Material: content.Material{Mass: 1},
		},
		"broken": {Model: "awards", Nodes: []string{"one", "four"}},
		"ghost":  {Model: "ghost", Nodes: []string{"one"}},
	}
	f.m = NewManager(f.world, f.root, f.loader, defs, opts, zerolog.Nop())
	return f
}

func (f *fixture) deliver() {
	f.loader.Wait()
	f.loader.Poll()
}

var spawnAt = mgl32.Vec3{1.8, 8, -0.1}

func TestTwoClicksMakeTwoPropsThenLeavingDisposesBoth(t *testing.T) {
	f := newFixture(t, Options{})
	f.m.Cleanup(4)
	require.True(t, f.m.Spawn(4, "awards", spawnAt))
	require.True(t, f.m.Spawn(4, "awards", spawnAt))
	f.deliver()

	live := f.m.Live()
	require.Len(t, live, 2)
	assert.Len(t, live[0].Parts, 3)
	assert.Len(t, f.world.Bodies(), 6)
	assert.Len(t, f.root.Children(), 6)
	assert.InDelta(t, 2.8, live[0].Parts[2].Body.Translation().X(), 1e-5)

	assert.Equal(t, 2, f.m.Cleanup(5))
	assert.Empty(t, f.m.Live())
	assert.Empty(t, f.world.Bodies())
	assert.Empty(t, f.root.Children())
	for _, p := range live {
		for _, part := range p.Parts {
			assert.True(t, part.Body.Removed())
			assert.Nil(t, part.Mesh.Parent())
		}
	}

	f.m.Cleanup(4)
	require.True(t, f.m.Spawn(4, "awards", spawnAt))
	f.deliver()
	assert.Len(t, f.m.Live(), 1)
	created, disposed := f.m.Counts()
	assert.Equal(t, 3, created)
	assert.Equal(t, 2, disposed)
}

func TestGuardRefusesRepeatSpawn(t *testing.T) {
	f := newFixture(t, Options{GuardRepeat: true})
	f.m.Cleanup(4)
	assert.True(t, f.m.Spawn(4, "awards", spawnAt))
	assert.False(t, f.m.Spawn(4, "awards", spawnAt))
	assert.Equal(t, 1, f.m.Loading(4))
	f.deliver()
	assert.Equal(t, 0, f.m.Loading(4))
	assert.False(t, f.m.Spawn(4, "awards", spawnAt))
	assert.Len(t, f.m.Live(), 1)

	f.m.Cleanup(5)
	f.m.Cleanup(4)
	assert.True(t, f.m.Spawn(4, "awards", spawnAt))
}

func TestLateCompletionIsDropped(t *testing.T) {
	f := newFixture(t, Options{})
	f.m.Cleanup(4)
	require.True(t, f.m.Spawn(4, "awards", spawnAt))
	f.m.Cleanup(5)
	f.deliver()
	assert.Empty(t, f.m.Live())
	assert.Empty(t, f.world.Bodies())
	assert.Empty(t, f.root.Children())
}

func TestCompletionAfterLeavingAndReturningIsDropped(t *testing.T) {
	f := newFixture(t, Options{})
	f.m.Cleanup(4)
	require.True(t, f.m.Spawn(4, "awards", spawnAt))
	f.m.Cleanup(5)
	f.m.Cleanup(4)
	f.deliver()
	assert.Empty(t, f.m.Live())
}

func TestFailedLoadsLeaveNothingBehind(t *testing.T) {
	f := newFixture(t, Options{})
	f.m.Cleanup(4)
	require.True(t, f.m.Spawn(4, "broken", spawnAt))
	require.True(t, f.m.Spawn(4, "ghost", spawnAt))
	assert.False(t, f.m.Spawn(4, "unknown", spawnAt))
	f.deliver()
	assert.Empty(t, f.m.Live())
	assert.Empty(t, f.world.Bodies())
	assert.Empty(t, f.root.Children())
	assert.Equal(t, 0, f.m.Loading(4))
}

func TestCleanupWithNothingLive(t *testing.T) {
	f := newFixture(t, Options{})
	assert.Equal(t, 0, f.m.Cleanup(3))
	assert.Equal(t, 0, f.m.Cleanup(3))
}

func TestSyncFollowsBodies(t *testing.T) {
	f := newFixture(t, Options{})
	f.m.Cleanup(4)
	f.m.Spawn(4, "awards", spawnAt)
	f.deliver()
	for i := 0; i < 10; i++ {
		f.world.Step(1.0 / 60)
	}
	f.m.Sync()
	part := f.m.Live()[0].Parts[0]
	assert.Less(t, part.Body.Translation().Y(), spawnAt.Y())
	assert.Equal(t, part.Body.Translation(), part.Mesh.Position)
}

func TestDisposeDropsPendingLoads(t *testing.T) {
	f := newFixture(t, Options{})
	f.m.Cleanup(4)
	f.m.Spawn(4, "awards", spawnAt)
	f.deliver()
	f.m.Spawn(4, "awards", spawnAt)
	f.m.Dispose()
	f.deliver()
	assert.Empty(t, f.m.Live())
	assert.Empty(t, f.world.Bodies())
	assert.False(t, f.m.Spawn(4, "awards", spawnAt))
}

func TestOscillatorFollowsSine(t *testing.T) {
	w := physics.NewWorld()
	body := w.CreateBody(physics.FixedBody(-2.2, 9.7, 0.4))
	mesh := scene.NewNode("desk")
	o := &Oscillator{Body: body, Mesh: mesh, Base: mgl32.Vec3{-2.2, 9.7, 0.4}, Min: 0.13, Max: 0.2, Period: 2}

	o.Update(0)
	assert.InDelta(t, 9.7+0.035, body.Translation().Y(), 1e-5)
	o.Update(1)
	assert.InDelta(t, 9.7+0.07, body.Translation().Y(), 1e-5)
	o.Update(2)
	assert.InDelta(t, 9.7, body.Translation().Y(), 1e-5)
	assert.Equal(t, body.Translation(), mesh.Position)
	assert.InDelta(t, -2.2, body.Translation().X(), 1e-6)
}
