package director

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/assets"
	"scene-director/internal/content"
	"scene-director/internal/physics"
	"scene-director/internal/props"
	"scene-director/internal/scene"
)

// buildEnvironment adds the floor and the walls as fixed boxes. Hidden walls collide but are
// never drawn.
func (d *Director) buildEnvironment() {
	env := d.content.Environment
	boxes := append([]content.Box{env.Floor}, env.Walls...)
	for i, b := range boxes {
		if b.Size == (mgl32.Vec3{}) {
			continue
		}
		name := "floor"
		if i > 0 {
			name = fmt.Sprintf("wall.%d", i)
		}
		body := d.world.CreateBody(physics.FixedBody(b.Position[0], b.Position[1], b.Position[2]))
		d.world.CreateCollider(physics.Cuboid(b.Size[0]/2, b.Size[1]/2, b.Size[2]/2), body)

		mesh := scene.NewMesh(name, scene.Shape{Kind: "cube", Size: b.Size, Color: b.Color})
		mesh.Position = b.Position
		mesh.Visible = !b.Hidden
		d.root.Add(mesh)
	}
}

// buildShelf turns the shelf's frame into a fixed triangle mesh so things can rest on every board.
func (d *Director) buildShelf(s content.Shelf, m *assets.Model) error {
	verts, idx, err := m.Triangles(s.Node)
	if err != nil {
		return err
	}
	shape, err := physics.TriMesh(verts, idx)
	if err != nil {
		return err
	}
	body := d.world.CreateBody(physics.FixedBody(s.Position[0], s.Position[1], s.Position[2]))
	d.world.CreateCollider(shape.
		WithFriction(s.Material.Friction).
		WithRestitution(s.Material.Restitution), body)
	d.shelf = body

	mesh := m.Build()
	mesh.Position = s.Position
	d.root.Add(mesh)
	return nil
}

// buildDesk adds the bobbing desk: a fixed box driven by an oscillator every frame.
func (d *Director) buildDesk(k content.Desk, m *assets.Model) {
	body := d.world.CreateBody(physics.FixedBody(k.Position[0], k.Position[1], k.Position[2]))
	d.world.CreateCollider(physics.Cuboid(k.Half[0], k.Half[1], k.Half[2]).
		WithTranslation(k.Offset[0], k.Offset[1], k.Offset[2]).
		WithFriction(k.Friction), body)

	mesh := m.Build()
	mesh.Position = k.Position
	d.root.Add(mesh)
	d.desk = &props.Oscillator{
		Body:   body,
		Mesh:   mesh,
		Base:   k.Position,
		Min:    k.Min,
		Max:    k.Max,
		Period: k.Period,
	}
}

// decorPiece is a startup model. body is nil for pieces that only draw.
type decorPiece struct {
	name string
	body *physics.Body
	mesh *scene.Node
}

// buildDecor places a decor model. A piece with a body is dynamic and never sleeps, so it keeps
// riding the desk after it settles.
func (d *Director) buildDecor(k content.Decor, m *assets.Model) {
	mesh := m.Build()
	scale := k.Scale
	if scale == 0 {
		scale = 1
	}
	rot := scene.Euler(k.Rotation)
	mesh.Scale = mgl32.Vec3{scale, scale, scale}
	mesh.SetPose(k.Position, rot)
	d.root.Add(mesh)

	piece := &decorPiece{name: k.Name, mesh: mesh}
	if b := k.Body; b != nil {
		piece.body = d.world.CreateBody(physics.DynamicBody(k.Position[0], k.Position[1], k.Position[2]).
			WithRotation(rot).
			WithDamping(b.LinearDamping, b.AngularDamping).
			WithCanSleep(false))
		d.world.CreateCollider(physics.Cuboid(b.Half[0], b.Half[1], b.Half[2]).
			WithTranslation(b.Offset[0], b.Offset[1], b.Offset[2]).
			WithMass(b.Material.Mass).
			WithFriction(b.Material.Friction).
			WithRestitution(b.Material.Restitution), piece.body)
	}
	d.decor = append(d.decor, piece)
}

func (d *Director) syncDecor() {
	for _, p := range d.decor {
		if p.body != nil {
			p.mesh.SetPose(p.body.Translation(), p.body.Rotation())
		}
	}
}
