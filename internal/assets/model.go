package assets

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/scene"
)

var (
	ErrModelNotFound = errors.New("assets: model not found")
	ErrNodeNotFound  = errors.New("assets: node not found")
)

// Model is a parsed model manifest: a named tree of nodes plus animation clips.
// Models are shared between loads; Build creates fresh scene nodes for each use.
type Model struct {
	Name  string  `yaml:"name"`
	Nodes []*Node `yaml:"nodes"`
	Clips []Clip  `yaml:"clips,omitempty"`
}

// Node is one sub-object of a model. Rotation is Euler degrees (X, Y, Z).
// Points, when present, describe the collision hull in node space.
type Node struct {
	Name     string       `yaml:"name"`
	Shape    *scene.Shape `yaml:"shape,omitempty"`
	Position mgl32.Vec3   `yaml:"position,omitempty"`
	Rotation mgl32.Vec3   `yaml:"rotation,omitempty"`
	Scale    *mgl32.Vec3  `yaml:"scale,omitempty"`
	Points   []mgl32.Vec3 `yaml:"points,omitempty"`
	Children []*Node      `yaml:"children,omitempty"`
}

// Clip is a named animation with its duration in seconds.
type Clip struct {
	Name     string  `yaml:"name"`
	Duration float32 `yaml:"duration"`
}

// Node looks a sub-object up by name anywhere in the model.
func (m *Model) Node(name string) (*Node, error) {
	for _, n := range m.Nodes {
		if f := n.find(name); f != nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNodeNotFound, name, m.Name)
}

// Clip looks an animation clip up by name.
func (m *Model) Clip(name string) (Clip, bool) {
	for _, c := range m.Clips {
		if c.Name == name {
			return c, true
		}
	}
	return Clip{}, false
}

// Build creates a scene node tree with every top-level node under one root named after the model.
func (m *Model) Build() *scene.Node {
	root := scene.NewNode(m.Name)
	for _, n := range m.Nodes {
		root.Add(n.Build())
	}
	return root
}

func (n *Node) find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.find(name); f != nil {
			return f
		}
	}
	return nil
}

// Quat converts the node's Euler rotation to a quaternion.
func (n *Node) Quat() mgl32.Quat {
	return scene.Euler(n.Rotation)
}

// Build creates a fresh scene node for this sub-object and its children.
func (n *Node) Build() *scene.Node {
	var out *scene.Node
	if n.Shape != nil {
		out = scene.NewMesh(n.Name, *n.Shape)
	} else {
		out = scene.NewNode(n.Name)
	}
	out.Position = n.Position
	out.Rotation = n.Quat()
	if n.Scale != nil {
		out.Scale = *n.Scale
	}
	for _, c := range n.Children {
		out.Add(c.Build())
	}
	return out
}

// boxFaces indexes the eight corners produced by HullPoints into twelve triangles.
var boxFaces = []uint32{
	0, 1, 3, 0, 3, 2,
	4, 6, 7, 4, 7, 5,
	0, 4, 5, 0, 5, 1,
	2, 3, 7, 2, 7, 6,
	0, 2, 6, 0, 6, 4,
	1, 5, 7, 1, 7, 3,
}

// Triangles builds a triangle list from every shape under the node called name, or the whole model
// when name is empty. Each shape contributes the faces of its box, in model space.
func (m *Model) Triangles(name string) ([]mgl32.Vec3, []uint32, error) {
	root := m.Build()
	target := root
	if name != "" {
		if target = root.Find(name); target == nil {
			return nil, nil, fmt.Errorf("%w: %s in %s", ErrNodeNotFound, name, m.Name)
		}
	}
	var verts []mgl32.Vec3
	var idx []uint32
	root.Walk(func(n *scene.Node, world mgl32.Mat4) {
		if !n.Attached(target) {
			return
		}
		base := uint32(len(verts))
		for _, c := range (&Node{Shape: n.Shape}).HullPoints(1) {
			verts = append(verts, mgl32.TransformCoordinate(c, world))
		}
		for _, i := range boxFaces {
			idx = append(idx, base+i)
		}
	})
	if len(idx) == 0 {
		return nil, nil, fmt.Errorf("%w: no shapes under %q in %s", ErrNodeNotFound, name, m.Name)
	}
	return verts, idx, nil
}

// Part builds the node for a physics-driven mesh: a fresh pivot whose pose the owning body drives,
// holding the built node at the origin. The node's own rotation and scale stay as a local offset.
func (n *Node) Part() *scene.Node {
	pivot := scene.NewNode(n.Name + ".pivot")
	mesh := n.Build()
	mesh.Position = mgl32.Vec3{}
	pivot.Add(mesh)
	return pivot
}

// HullPoints returns the collision points, scaled. Without explicit points it falls back to
// the eight corners of the shape's box.
func (n *Node) HullPoints(scale float32) []mgl32.Vec3 {
	if scale == 0 {
		scale = 1
	}
	src := n.Points
	if len(src) == 0 && n.Shape != nil {
		e := n.Shape.Extent()
		h := mgl32.Vec3{e[0] / 2, e[1] / 2, e[2] / 2}
		for i := 0; i < 8; i++ {
			p := h
			if i&1 != 0 {
				p[0] = -p[0]
			}
			if i&2 != 0 {
				p[1] = -p[1]
			}
			if i&4 != 0 {
				p[2] = -p[2]
			}
			src = append(src, p)
		}
	}
	out := make([]mgl32.Vec3, len(src))
	for i, p := range src {
		out[i] = p.Mul(scale)
	}
	return out
}
