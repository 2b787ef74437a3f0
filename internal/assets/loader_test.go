package assets

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const awardsManifest = `
name: awards
nodes:
  - name: trophies
    children:
      - name: one
        shape: {kind: cylinder, size: [0.4, 0.1, 0.4], color: "#d4af37"}
        rotation: [90, 0, 0]
      - name: two
        shape: {kind: cylinder, size: [0.4, 0.1, 0.4]}
        position: [0.5, 0, 0]
      - name: three
        shape: {kind: cylinder}
        points: [[0, 0, 0], [1, 0, 0], [0, 1, 0], [0, 0, 1]]
clips:
  - {name: run, duration: 0.8}
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"awards.yaml": {Data: []byte(awardsManifest)},
		"broken.yaml": {Data: []byte("nodes: [unclosed")},
	}
}

func TestLoadDeliversOnlyFromPoll(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	var got *Model
	l.Load("awards", func(m *Model, err error) {
		require.NoError(t, err)
		got = m
	})
	l.Wait()
	assert.Nil(t, got)
	assert.Equal(t, 1, l.Pending())
	assert.Equal(t, Progress{Loaded: 0, Total: 1}, l.Progress())

	assert.Equal(t, 1, l.Poll())
	require.NotNil(t, got)
	assert.Equal(t, "awards", got.Name)
	assert.Equal(t, 0, l.Pending())
	assert.True(t, l.Progress().Complete())
	assert.Equal(t, 0, l.Poll())
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	var errs []error
	l.Load("missing", func(_ *Model, err error) { errs = append(errs, err) })
	l.Load("broken", func(_ *Model, err error) { errs = append(errs, err) })
	l.Wait()
	l.Poll()

	require.Len(t, errs, 2)
	var notFound, other int
	for _, err := range errs {
		require.Error(t, err)
		if errors.Is(err, ErrModelNotFound) {
			notFound++
		} else {
			other++
		}
	}
	assert.Equal(t, 1, notFound)
	assert.Equal(t, 1, other)
	assert.Equal(t, 2, l.Progress().Loaded)
}

func TestModelNodeLookup(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	m, err := l.Get("awards")
	require.NoError(t, err)

	for _, name := range []string{"one", "two", "three"} {
		n, err := m.Node(name)
		require.NoError(t, err)
		assert.Equal(t, name, n.Name)
	}
	_, err = m.Node("four")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	clip, ok := m.Clip("run")
	assert.True(t, ok)
	assert.Equal(t, float32(0.8), clip.Duration)
	_, ok = m.Clip("fly")
	assert.False(t, ok)

	again, err := l.Get("awards")
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestBuildCreatesFreshNodes(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	m, err := l.Get("awards")
	require.NoError(t, err)

	a, b := m.Build(), m.Build()
	assert.NotSame(t, a, b)
	assert.Equal(t, 5, a.Count())

	two := a.Find("two")
	require.NotNil(t, two)
	assert.Equal(t, mgl32.Vec3{0.5, 0, 0}, two.Position)
	require.NotNil(t, two.Shape)
	assert.Equal(t, "cylinder", two.Shape.Kind)

	one, err := m.Node("one")
	require.NoError(t, err)
	q := one.Quat()
	up := q.Rotate(mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, 1, up.Z(), 1e-5)
}

func TestHullPoints(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	m, err := l.Get("awards")
	require.NoError(t, err)

	three, _ := m.Node("three")
	pts := three.HullPoints(2)
	require.Len(t, pts, 4)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, pts[1])

	one, _ := m.Node("one")
	corners := one.HullPoints(1)
	require.Len(t, corners, 8)
	assert.Equal(t, mgl32.Vec3{0.2, 0.05, 0.2}, corners[0])
}

func TestProgressFraction(t *testing.T) {
	assert.Equal(t, float32(1), Progress{}.Fraction())
	assert.Equal(t, float32(0.5), Progress{Loaded: 1, Total: 2}.Fraction())
	assert.False(t, Progress{Loaded: 1, Total: 2}.Complete())
}

func TestTriangles(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	m, err := l.Get("awards")
	require.NoError(t, err)

	verts, idx, err := m.Triangles("")
	require.NoError(t, err)
	assert.Len(t, verts, 24)
	assert.Len(t, idx, 36*3)

	verts, idx, err = m.Triangles("two")
	require.NoError(t, err)
	require.Len(t, verts, 8)
	assert.Len(t, idx, 36)
	for _, v := range verts {
		assert.InDelta(t, 0.5, v.X(), 0.2+1e-5)
	}

	_, _, err = m.Triangles("missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestPartKeepsLocalRotation(t *testing.T) {
	l := NewLoader(testFS(), zerolog.Nop())
	m, err := l.Get("awards")
	require.NoError(t, err)

	two, _ := m.Node("two")
	part := two.Part()
	require.Len(t, part.Children(), 1)
	assert.Equal(t, "two.pivot", part.Name)
	assert.Equal(t, mgl32.Vec3{}, part.Children()[0].Position)

	part.SetPose(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, part.Children()[0].WorldPosition())
}
