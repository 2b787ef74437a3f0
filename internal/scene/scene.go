package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is one element of the scene graph: a transform, an optional drawable shape and children.
// Groups (rig pivots, model roots) are nodes without a shape. The renderer only reads nodes;
// controllers write poses after each physics step.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Shape    *Shape
	Visible  bool

	parent   *Node
	children []*Node
}

// NewNode returns a visible group node with identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
	}
}

// NewMesh returns a visible node that draws shape.
func NewMesh(name string, shape Shape) *Node {
	n := NewNode(name)
	n.Shape = &shape
	return n
}

// Add attaches children, detaching them from any previous parent first.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		c.Detach()
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches child from n. Returns false if it was not a child.
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Children() []*Node { return n.children }

// Attached reports whether the node hangs under root.
func (n *Node) Attached(root *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}

// Find returns the first node named name in the subtree (depth first), or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// LocalMatrix is translate * rotate * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix composes local matrices up to the root.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// Euler converts X, Y, Z rotations in degrees to a quaternion.
func Euler(deg mgl32.Vec3) mgl32.Quat {
	if deg == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	return mgl32.AnglesToQuat(mgl32.DegToRad(deg[0]), mgl32.DegToRad(deg[1]), mgl32.DegToRad(deg[2]), mgl32.XYZ)
}

// SetPose copies a physics pose onto the node.
func (n *Node) SetPose(position mgl32.Vec3, rotation mgl32.Quat) {
	n.Position = position
	n.Rotation = rotation
}

// Walk visits every visible node that has a shape, with its world matrix. Hidden nodes hide their subtree.
func (n *Node) Walk(fn func(*Node, mgl32.Mat4)) {
	n.walk(mgl32.Ident4(), fn)
}

func (n *Node) walk(parent mgl32.Mat4, fn func(*Node, mgl32.Mat4)) {
	if !n.Visible {
		return
	}
	world := parent.Mul4(n.LocalMatrix())
	if n.Shape != nil {
		fn(n, world)
	}
	for _, c := range n.children {
		c.walk(world, fn)
	}
}

// Count returns the number of nodes in the subtree, n included.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}
