package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	calls    []string
	gotoID   int
	jumping  bool
	path     string
	lights   bool
	resetErr error
}

func (f *fakeTarget) Goto(id int) { f.calls = append(f.calls, "goto"); f.gotoID = id }
func (f *fakeTarget) Throw()      { f.calls = append(f.calls, "throw") }
func (f *fakeTarget) Jump() bool {
	f.calls = append(f.calls, "jump")
	if f.jumping {
		return false
	}
	f.jumping = true
	return true
}
func (f *fakeTarget) ResetVehicle() error { f.calls = append(f.calls, "reset vehicle"); return f.resetErr }
func (f *fakeTarget) ResetToys()          { f.calls = append(f.calls, "reset toys") }
func (f *fakeTarget) SaveCamera(path string) error {
	f.calls = append(f.calls, "camera save")
	f.path = path
	return nil
}
func (f *fakeTarget) LoadCamera(path string) error {
	f.calls = append(f.calls, "camera load")
	f.path = path
	return nil
}

func (f *fakeTarget) ShowLights(show bool) {
	f.calls = append(f.calls, "lights")
	f.lights = show
}

type fakeOverlay struct{ fps, mem, nav bool }

func (o *fakeOverlay) SetShowFPS(show bool)      { o.fps = show }
func (o *fakeOverlay) SetShowMemAlloc(show bool) { o.mem = show }
func (o *fakeOverlay) SetShowNav(show bool)      { o.nav = show }

func newConsole(t *testing.T) (*Console, *fakeTarget, *fakeOverlay) {
	t.Helper()
	target, overlay := &fakeTarget{}, &fakeOverlay{}
	c, err := New(Env{Target: target, Overlay: overlay, CameraPath: "config/camera.json"})
	require.NoError(t, err)
	return c, target, overlay
}

func TestParse(t *testing.T) {
	args, ok := Parse("cmd goto 3")
	assert.True(t, ok)
	assert.Equal(t, []string{"goto", "3"}, args)

	args, ok = Parse("cmd   ")
	assert.True(t, ok)
	assert.Nil(t, args)

	args, ok = Parse(`cmd camera save "my camera.json"`)
	assert.True(t, ok)
	assert.Equal(t, []string{"camera", "save", "my camera.json"}, args)

	args, ok = Parse(`cmd camera save "open`)
	assert.True(t, ok)
	assert.Equal(t, []string{"camera", "save", `"open`}, args)

	_, ok = Parse("hello there")
	assert.False(t, ok)
	_, ok = Parse("CMD goto 3")
	assert.False(t, ok)
}

func TestCommandsReachTarget(t *testing.T) {
	c, target, _ := newConsole(t)
	tests := []struct {
		args []string
		call string
		out  string
	}{
		{[]string{"goto", "4"}, "goto", "goto 4"},
		{[]string{"throw"}, "throw", "thrown"},
		{[]string{"jump"}, "jump", "jump"},
		{[]string{"jump"}, "jump", "already jumping"},
		{[]string{"reset", "vehicle"}, "reset vehicle", "reset vehicle"},
		{[]string{"reset", "toys"}, "reset toys", "reset toys"},
		{[]string{"camera", "save"}, "camera save", "camera save config/camera.json"},
		{[]string{"camera", "load", "other.json"}, "camera load", "camera load other.json"},
	}
	for _, tt := range tests {
		out, err := c.Execute(tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.out, out)
		assert.Equal(t, tt.call, target.calls[len(target.calls)-1])
	}
	assert.Equal(t, 4, target.gotoID)
	assert.Equal(t, "other.json", target.path)
}

func TestOverlayToggles(t *testing.T) {
	c, _, overlay := newConsole(t)
	_, err := c.Execute([]string{"fps", "--show"})
	require.NoError(t, err)
	assert.True(t, overlay.fps)
	_, err = c.Execute([]string{"memalloc", "--show"})
	require.NoError(t, err)
	assert.True(t, overlay.mem)
	_, err = c.Execute([]string{"nav", "--show"})
	require.NoError(t, err)
	assert.True(t, overlay.nav)
	_, err = c.Execute([]string{"fps", "--hide"})
	require.NoError(t, err)
	assert.False(t, overlay.fps)

	_, err = c.Execute([]string{"fps"})
	assert.ErrorContains(t, err, "--show or --hide")
	_, err = c.Execute([]string{"fps", "--show", "--hide"})
	assert.Error(t, err)
}

func TestLightsToggle(t *testing.T) {
	c, target, _ := newConsole(t)
	out, err := c.Execute([]string{"lights", "--hide"})
	require.NoError(t, err)
	assert.Equal(t, "lights off", out)
	assert.False(t, target.lights)
	out, err = c.Execute([]string{"lights", "--show"})
	require.NoError(t, err)
	assert.Equal(t, "lights on", out)
	assert.True(t, target.lights)

	_, err = c.Execute([]string{"lights"})
	assert.ErrorContains(t, err, "--show or --hide")
}

func TestLinesDoNotShareState(t *testing.T) {
	c, target, overlay := newConsole(t)
	for _, show := range []bool{true, false, true, false} {
		flag := "--hide"
		if show {
			flag = "--show"
		}
		_, err := c.Execute([]string{"fps", flag})
		require.NoError(t, err, flag)
		assert.Equal(t, show, overlay.fps)
	}

	_, err := c.Execute([]string{"camera", "save", "other.json"})
	require.NoError(t, err)
	out, err := c.Execute([]string{"camera", "save"})
	require.NoError(t, err)
	assert.Equal(t, "camera save config/camera.json", out)
	assert.Equal(t, "config/camera.json", target.path)
}

func TestBadInput(t *testing.T) {
	c, target, _ := newConsole(t)
	_, err := c.Execute(nil)
	assert.Error(t, err)
	_, err = c.Execute([]string{"fly"})
	assert.Error(t, err)
	_, err = c.Execute([]string{"goto", "three"})
	assert.Error(t, err)
	_, err = c.Execute([]string{"reset", "world"})
	assert.Error(t, err)
	assert.Empty(t, target.calls)
}

func TestTargetErrorsSurface(t *testing.T) {
	c, target, _ := newConsole(t)
	target.resetErr = errors.New("rig not built")
	_, err := c.Execute([]string{"reset", "vehicle"})
	assert.ErrorIs(t, err, target.resetErr)
}

func TestHelp(t *testing.T) {
	c, target, _ := newConsole(t)
	out, err := c.Execute([]string{"--help"})
	require.NoError(t, err)
	assert.Contains(t, out, "goto")
	assert.Empty(t, target.calls)
}
