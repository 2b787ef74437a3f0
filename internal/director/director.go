package director

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/assets"
	"scene-director/internal/camera"
	"scene-director/internal/chart"
	"scene-director/internal/content"
	"scene-director/internal/engineconfig"
	"scene-director/internal/figure"
	"scene-director/internal/input"
	"scene-director/internal/lighting"
	"scene-director/internal/physics"
	"scene-director/internal/props"
	"scene-director/internal/racer"
	"scene-director/internal/schedule"
	"scene-director/internal/scene"
	"scene-director/internal/section"
	"scene-director/internal/throwable"
	"scene-director/internal/tween"
	"scene-director/internal/vehicle"
)

var ErrDisposed = errors.New("director: disposed")

// Viewport defaults used for cursor rays until SetViewport is called.
const (
	defaultFovy   = 45
	defaultAspect = 16.0 / 9
)

type Options struct {
	Prefs   engineconfig.EnginePrefs
	Content *content.Content
	// Models holds the model manifests named by Content.
	Models fs.FS
	// Rand drives throws. Nil means a randomly seeded source.
	Rand *rand.Rand
	Log  zerolog.Logger
}

// Director is the composition root of the scene. It owns every controller, routes input to
// them and runs the per-frame order: timers and tweens, controller updates, one physics step,
// then mesh sync. All methods run on the frame goroutine.
type Director struct {
	prefs   engineconfig.EnginePrefs
	content *content.Content
	log     zerolog.Logger

	sched  *schedule.Scheduler
	tweens *tween.Group
	bus    *input.Bus
	loader *assets.Loader
	world  *physics.World
	root   *scene.Node

	camera     *camera.Choreographer
	sections   *section.Controller
	props      *props.Manager
	vehicle    *vehicle.Controller
	throwables *throwable.Controller
	racer      *racer.Controller
	chart      *chart.Chart
	figure     *figure.Figure
	lights     *lighting.Rig
	desk       *props.Oscillator
	shelf      *physics.Body
	decor      []*decorPiece

	fovy   float32
	aspect float32

	sub      input.Subscription
	clicks   int
	disposed bool
}

// New builds the scene and starts loading every startup model. Models arrive through Update.
func New(opts Options) (*Director, error) {
	if opts.Content == nil {
		return nil, errors.New("director: no content")
	}
	if opts.Models == nil {
		return nil, errors.New("director: no model filesystem")
	}
	c := opts.Content
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	d := &Director{
		prefs:   opts.Prefs,
		content: c,
		log:     opts.Log.With().Str("component", "director").Logger(),
		sched:   schedule.New(),
		tweens:  tween.NewGroup(),
		bus:     input.NewBus(input.DefaultKeyMap()),
		loader:  assets.NewLoader(opts.Models, opts.Log),
		world:   physics.NewWorld(),
		root:    scene.NewNode("scene"),
		fovy:    defaultFovy,
		aspect:  defaultAspect,
	}
	if c.Camera.Fov > 0 {
		d.fovy = c.Camera.Fov
	}
	if c.Gravity != 0 {
		d.world.SetGravity(mgl32.Vec3{0, c.Gravity, 0})
	}
	if opts.Prefs.MaxStep > 0 {
		d.world.MaxStep = opts.Prefs.MaxStep
	}

	cam, err := camera.New(waypoints(c.Sections), d.tweens, cameraOptions(c.Camera, opts.Prefs), opts.Log)
	if err != nil {
		return nil, err
	}
	d.camera = cam
	d.root.Add(cam.Group)

	d.sections, err = section.New(c.Sections, d.sched, d.tweens, d, section.Options{
		Cooldown: opts.Prefs.ScrollCooldown,
		Fade:     opts.Prefs.FadeDuration,
	}, opts.Log)
	if err != nil {
		return nil, err
	}

	d.props = props.NewManager(d.world, d.root, d.loader, c.Props, props.Options{GuardRepeat: opts.Prefs.GuardRepeatSpawn}, opts.Log)
	d.vehicle = vehicle.New(d.world, d.root, vehicle.OptionsFrom(c.Vehicle), opts.Log)
	d.throwables = throwable.New(d.world, d.root, rng, throwable.Options{Normalize: opts.Prefs.NormalizeThrowRotation}, opts.Log)
	d.lights, err = lighting.New(c.Lights)
	if err != nil {
		return nil, err
	}

	d.buildEnvironment()
	d.loadStartup(opts.Log)
	d.sub = d.bus.Subscribe(d.handle)
	d.log.Info().Int("sections", d.sections.Len()).Msg("scene ready")
	return d, nil
}

func waypoints(sections []content.Section) map[int]camera.Waypoint {
	out := make(map[int]camera.Waypoint, len(sections))
	for _, s := range sections {
		out[s.ID] = camera.Waypoint{Position: s.Waypoint, Pitch: s.Pitch}
	}
	return out
}

func cameraOptions(c content.Camera, p engineconfig.EnginePrefs) camera.Options {
	o := camera.DefaultOptions()
	if c.Position != (mgl32.Vec3{}) {
		o.Start = c.Position
	}
	if c.Pitch != 0 {
		o.StartPitch = c.Pitch
	}
	if c.Distance != 0 {
		o.Distance = c.Distance
	}
	if c.Ease != "" {
		o.Ease = c.Ease
	}
	if c.ParallaxEase != "" {
		o.ParallaxEase = c.ParallaxEase
	}
	if p.CameraDuration > 0 {
		o.Duration = float32(p.CameraDuration.Seconds())
	}
	if p.ParallaxDuration > 0 {
		o.ParallaxDuration = float32(p.ParallaxDuration.Seconds())
	}
	return o
}

// loadStartup requests every startup model: the vehicle, throwables, racer, chart, figure and
// the environment pieces. Each one is wired into the scene when its load is delivered; a failed
// load leaves that piece out.
func (d *Director) loadStartup(log zerolog.Logger) {
	c := d.content
	d.loader.Load(c.Vehicle.Model, func(m *assets.Model, err error) {
		if d.disposed || err != nil {
			return
		}
		if err := d.vehicle.Build(m); err != nil {
			d.log.Error().Err(err).Msg("vehicle build failed")
		}
	})
	for _, set := range c.Throwables {
		d.loader.Load(set.Model, func(m *assets.Model, err error) {
			if d.disposed || err != nil {
				return
			}
			if _, err := d.throwables.Add(set, m); err != nil {
				d.log.Error().Err(err).Msg("throwable build failed")
			}
		})
	}
	d.loader.Load(c.Racer.Model, func(m *assets.Model, err error) {
		if d.disposed || err != nil {
			return
		}
		r, err := racer.New(m, d.root, d.sched, racer.OptionsFrom(c.Racer, d.prefs.JumpHoldFactor), log)
		if err != nil {
			d.log.Error().Err(err).Msg("racer build failed")
			return
		}
		d.racer = r
	})
	if ch := c.Chart; ch != nil {
		d.loader.Load(ch.Model, func(m *assets.Model, err error) {
			if d.disposed || err != nil {
				return
			}
			cc, err := chart.New(m, d.root, d.tweens, chart.OptionsFrom(*ch), log)
			if err != nil {
				d.log.Error().Err(err).Msg("chart build failed")
				return
			}
			d.chart = cc
		})
	}
	if f := c.Figure; f != nil {
		d.loader.Load(f.Model, func(m *assets.Model, err error) {
			if d.disposed || err != nil {
				return
			}
			fig, err := figure.New(m, d.root, figure.OptionsFrom(*f), log)
			if err != nil {
				d.log.Error().Err(err).Msg("figure build failed")
				return
			}
			d.figure = fig
		})
	}
	for _, k := range c.Environment.Decor {
		d.loader.Load(k.Model, func(m *assets.Model, err error) {
			if d.disposed || err != nil {
				return
			}
			d.buildDecor(k, m)
		})
	}
	if s := c.Environment.Shelf; s != nil {
		d.loader.Load(s.Model, func(m *assets.Model, err error) {
			if d.disposed || err != nil {
				return
			}
			if err := d.buildShelf(*s, m); err != nil {
				d.log.Error().Err(err).Msg("shelf build failed")
			}
		})
	}
	if k := c.Environment.Desk; k != nil {
		d.loader.Load(k.Model, func(m *assets.Model, err error) {
			if d.disposed || err != nil {
				return
			}
			d.buildDesk(*k, m)
		})
	}
}

func (d *Director) handle(ev input.Event) {
	if d.disposed {
		return
	}
	switch ev.Kind {
	case input.Wheel:
		d.sections.HandleEvent(ev)
	case input.Click:
		d.Click()
	case input.CursorMove:
		d.UpdateParallax(ev.X, ev.Y)
		d.Hover(ev.X, ev.Y)
	}
}

// SectionChanged moves the camera to the new section and disposes props owned by any other.
func (d *Director) SectionChanged(from, to int) {
	d.camera.MoveTo(to)
	d.props.Cleanup(to)
	d.log.Info().Int("from", from).Int("to", to).Msg("section changed")
}

// SectionDisplayed is called once a section's panel has fully faded in.
func (d *Director) SectionDisplayed(id int) {
	d.log.Debug().Int("section", id).Msg("section displayed")
}

// Click runs the current section's trigger, if any.
func (d *Director) Click() {
	if d.disposed {
		return
	}
	d.clicks++
	id := d.sections.Current()
	s := d.sections.Section(id)
	switch s.Trigger {
	case "":
	case content.TriggerThrow:
		d.Throw()
	case content.TriggerJump:
		d.Jump()
	case content.TriggerVehicleReset:
		if err := d.ResetVehicle(); err != nil {
			d.log.Warn().Err(err).Msg("click ignored")
		}
	default:
		d.props.Spawn(id, s.Trigger, s.Spawn)
	}
}

// Throw tosses every throwable set.
func (d *Director) Throw() {
	d.throwables.Throw()
}

// Jump starts a racer jump. It reports false while a jump runs or before the racer has loaded.
func (d *Director) Jump() bool {
	if d.racer == nil {
		return false
	}
	return d.racer.Jump()
}

func (d *Director) ResetVehicle() error {
	return d.vehicle.ResetPosition()
}

// ResetToys puts the throwables back in their resting pose.
func (d *Director) ResetToys() {
	d.throwables.ResetPosition()
}

// Goto jumps to section id (clamped), ignoring the scroll gate.
func (d *Director) Goto(id int) {
	if d.disposed {
		return
	}
	d.sections.Goto(id)
}

// UpdateParallax eases the camera toward the cursor offset (each axis in [-0.5, 0.5], y down).
func (d *Director) UpdateParallax(x, y float32) {
	if d.disposed {
		return
	}
	s := d.prefs.ParallaxScale
	d.camera.UpdateParallax(x*s, -y*s)
}

// Hover casts a ray under the cursor offset (each axis in [-0.5, 0.5], y down) into the chart
// and returns the coin it touched, or "".
func (d *Director) Hover(x, y float32) string {
	if d.disposed || d.chart == nil {
		return ""
	}
	origin, dir := d.camera.Ray(x, y, d.fovy, d.aspect)
	return d.chart.Hover(origin, dir, x, y)
}

// SetViewport sets the vertical field of view in degrees and the width/height ratio used for
// cursor rays. Non-positive values are ignored.
func (d *Director) SetViewport(fovy, aspect float32) {
	if fovy > 0 {
		d.fovy = fovy
	}
	if aspect > 0 {
		d.aspect = aspect
	}
}

// ShowLights turns the spot rig on or off.
func (d *Director) ShowLights(show bool) {
	d.lights.SetVisible(show)
}

// Update advances the scene by dt seconds.
func (d *Director) Update(dt float32) {
	if d.disposed {
		return
	}
	if dt < 0 {
		dt = 0
	}
	d.loader.Poll()
	d.sched.Advance(schedule.Seconds(dt))
	d.tweens.Update(dt)
	d.camera.Sync()

	if d.vehicle.Built() {
		if err := d.vehicle.Update(d.bus.Held); err != nil {
			d.log.Error().Err(err).Msg("vehicle update")
		}
	}
	if d.racer != nil {
		d.racer.Update(dt)
	}
	if d.figure != nil {
		d.figure.Update(dt)
	}

	d.world.Step(dt)

	d.vehicle.Sync()
	d.throwables.Sync()
	d.props.Sync()
	d.syncDecor()
	if d.chart != nil {
		d.chart.Sync()
	}
	if d.desk != nil {
		d.desk.Update(dt)
	}
}

// Dispose stops every timer and tween and releases the scene. Loads still in flight are
// dropped on arrival. Calling it twice is harmless.
func (d *Director) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.bus.Unsubscribe(d.sub)
	d.sections.Stop()
	d.sched.Clear()
	d.tweens.Clear()
	d.props.Dispose()
	d.vehicle.Dispose()
	d.throwables.Dispose()
	if d.racer != nil {
		d.racer.Dispose()
	}
	if d.chart != nil {
		d.chart.Dispose()
	}
	if d.figure != nil {
		d.figure.Dispose()
	}
	d.log.Info().Int("clicks", d.clicks).Msg("disposed")
}

// SaveCamera writes the camera rig pose to path.
func (d *Director) SaveCamera(path string) error {
	return d.camera.Save(path)
}

// LoadCamera restores the camera rig pose from path.
func (d *Director) LoadCamera(path string) error {
	if d.disposed {
		return ErrDisposed
	}
	if err := d.camera.Load(path); err != nil {
		return fmt.Errorf("director: %w", err)
	}
	return nil
}

func (d *Director) Bus() *input.Bus                   { return d.bus }
func (d *Director) Root() *scene.Node                 { return d.root }
func (d *Director) Camera() *camera.Choreographer     { return d.camera }
func (d *Director) Sections() *section.Controller     { return d.sections }
func (d *Director) Props() *props.Manager             { return d.props }
func (d *Director) Vehicle() *vehicle.Controller      { return d.vehicle }
func (d *Director) Throwables() *throwable.Controller { return d.throwables }
func (d *Director) World() *physics.World             { return d.world }

// Racer returns the racer, or nil until its model has loaded.
func (d *Director) Racer() *racer.Controller { return d.racer }

// Chart returns the coin chart, or nil until its model has loaded.
func (d *Director) Chart() *chart.Chart { return d.chart }

// Figure returns the looping figure, or nil until its model has loaded.
func (d *Director) Figure() *figure.Figure { return d.figure }

func (d *Director) Lights() *lighting.Rig { return d.lights }

// Navigation returns the section state machine's snapshot.
func (d *Director) Navigation() section.State { return d.sections.State() }

// Progress reports model loads delivered so far.
func (d *Director) Progress() assets.Progress { return d.loader.Progress() }

func (d *Director) Disposed() bool { return d.disposed }
