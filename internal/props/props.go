package props

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/physics"
	"scene-director/internal/scene"
)

// Loader loads models in the background and delivers them from the frame loop.
type Loader interface {
	Load(name string, done assets.Callback)
}

// Part is one mesh and the body that drives it.
type Part struct {
	Mesh *scene.Node
	Body *physics.Body
}

// Prop is a set of parts that lives only while its section is current.
type Prop struct {
	Section int
	Name    string
	Parts   []Part
}

type Options struct {
	// GuardRepeat refuses a spawn while the section already has a live or loading prop.
	GuardRepeat bool
}

// Manager is the only writer of section-scoped props. Spawns load asynchronously; a load that
// completes after its section was left is dropped without touching the scene or the world.
type Manager struct {
	world  *physics.World
	root   *scene.Node
	loader Loader
	defs   map[string]content.PropDef
	opts   Options
	log    zerolog.Logger

	live    []*Prop
	loading map[int]int
	current int
	visit   int
	closed  bool

	created  int
	disposed int
}

// NewManager returns a manager that adds meshes under root and bodies to world.
func NewManager(world *physics.World, root *scene.Node, loader Loader, defs map[string]content.PropDef, opts Options, log zerolog.Logger) *Manager {
	return &Manager{
		world:   world,
		root:    root,
		loader:  loader,
		defs:    defs,
		opts:    opts,
		log:     log.With().Str("component", "props").Logger(),
		loading: make(map[int]int),
		current: 1,
	}
}

// Spawn starts loading prop name for section at pos. It returns false when nothing was started:
// unknown prop, manager disposed, or the repeat guard refused it.
func (m *Manager) Spawn(section int, name string, pos mgl32.Vec3) bool {
	def, ok := m.defs[name]
	if !ok {
		m.log.Error().Str("prop", name).Msg("unknown prop")
		return false
	}
	if m.closed {
		return false
	}
	if m.opts.GuardRepeat && (m.loading[section] > 0 || m.count(section) > 0) {
		m.log.Debug().Int("section", section).Str("prop", name).Msg("spawn guarded")
		return false
	}
	m.loading[section]++
	visit := m.visit
	m.loader.Load(def.Model, func(model *assets.Model, err error) {
		m.loading[section]--
		if err != nil {
			m.log.Error().Err(err).Str("prop", name).Msg("spawn failed")
			return
		}
		if m.closed || visit != m.visit || section != m.current {
			m.log.Debug().Int("section", section).Str("prop", name).Msg("late spawn dropped")
			return
		}
		p, err := m.build(section, name, def, model, pos)
		if err != nil {
			m.log.Error().Err(err).Str("prop", name).Msg("spawn failed")
			return
		}
		m.live = append(m.live, p)
		m.created++
		m.log.Info().Int("section", section).Str("prop", name).Int("parts", len(p.Parts)).Msg("spawned")
	})
	return true
}

// build resolves every node before creating anything, so a missing node leaves no half-built prop.
func (m *Manager) build(section int, name string, def content.PropDef, model *assets.Model, pos mgl32.Vec3) (*Prop, error) {
	nodes := make([]*assets.Node, len(def.Nodes))
	for i, n := range def.Nodes {
		node, err := model.Node(n)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("props: %s has no nodes", name)
	}

	rot := scene.Euler(def.Rotation)
	p := &Prop{Section: section, Name: name}
	for i, node := range nodes {
		at := pos.Add(mgl32.Vec3{float32(i) * def.Spacing, 0, 0})
		body := m.world.CreateBody(physics.DynamicBody(at[0], at[1], at[2]).
			WithRotation(rot).
			WithDamping(def.LinearDamping, def.AngularDamping).
			WithCanSleep(false))
		m.world.CreateCollider(collider(def, node), body)

		mesh := node.Part()
		mesh.SetPose(body.Translation(), body.Rotation())
		m.root.Add(mesh)
		p.Parts = append(p.Parts, Part{Mesh: mesh, Body: body})
	}
	return p, nil
}

func collider(def content.PropDef, node *assets.Node) physics.ColliderDesc {
	var d physics.ColliderDesc
	if def.Radius > 0 && def.HalfHeight > 0 {
		d = physics.Cylinder(def.HalfHeight, def.Radius)
	} else {
		e := mgl32.Vec3{0.1, 0.1, 0.1}
		if node.Shape != nil {
			x := node.Shape.Extent()
			e = mgl32.Vec3{x[0] / 2, x[1] / 2, x[2] / 2}
		}
		d = physics.Cuboid(e[0], e[1], e[2])
	}
	return d.WithTranslation(def.Offset[0], def.Offset[1], def.Offset[2]).
		WithMass(def.Material.Mass).
		WithFriction(def.Material.Friction).
		WithRestitution(def.Material.Restitution)
}

// Cleanup disposes every prop owned by a section other than current. Calling it with nothing
// live is a no-op. It also marks the start of a new visit when current changed, so loads started
// before the change are dropped on arrival.
func (m *Manager) Cleanup(current int) int {
	if current != m.current {
		m.current = current
		m.visit++
	}
	kept := m.live[:0]
	n := 0
	for _, p := range m.live {
		if p.Section == current {
			kept = append(kept, p)
			continue
		}
		m.dispose(p)
		n++
	}
	for i := len(kept); i < len(m.live); i++ {
		m.live[i] = nil
	}
	m.live = kept
	if n > 0 {
		m.log.Debug().Int("section", current).Int("disposed", n).Msg("cleanup")
	}
	return n
}

func (m *Manager) dispose(p *Prop) {
	for _, part := range p.Parts {
		part.Mesh.Detach()
		m.world.RemoveBody(part.Body)
	}
	m.disposed++
}

// Sync copies each body pose to its mesh.
func (m *Manager) Sync() {
	for _, p := range m.live {
		for _, part := range p.Parts {
			part.Mesh.SetPose(part.Body.Translation(), part.Body.Rotation())
		}
	}
}

// Dispose releases every prop and drops any load still in flight.
func (m *Manager) Dispose() {
	for _, p := range m.live {
		m.dispose(p)
	}
	m.live = nil
	m.closed = true
}

// Live returns the live props, oldest first.
func (m *Manager) Live() []*Prop {
	return append([]*Prop(nil), m.live...)
}

// Loading returns the number of loads in flight for section.
func (m *Manager) Loading(section int) int {
	return m.loading[section]
}

// Counts returns how many props were created and disposed so far.
func (m *Manager) Counts() (created, disposed int) {
	return m.created, m.disposed
}

func (m *Manager) count(section int) int {
	n := 0
	for _, p := range m.live {
		if p.Section == section {
			n++
		}
	}
	return n
}
