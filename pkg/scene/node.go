package scene

import (
	"errors"

	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
)

// Node is an in-memory scene object: a local transform, optional mesh
// bounds and child nodes.
type Node struct {
	name       string
	position   math3d.Vec3
	rotation   math3d.Quat
	scale      math3d.Vec3
	geometry   *render.AABB
	visible    bool
	appearance Appearance

	parent   *Node
	children []*Node
}

var _ Object = (*Node)(nil)

// NewNode returns a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		name:       name,
		rotation:   math3d.QuatIdentity(),
		scale:      math3d.One3(),
		visible:    true,
		appearance: OwnAppearance,
	}
}

func (n *Node) Name() string { return n.name }

func (n *Node) SetLocalPosition(p math3d.Vec3) { n.position = p }
func (n *Node) SetLocalRotation(q math3d.Quat) { n.rotation = q }
func (n *Node) SetLocalScale(s math3d.Vec3)    { n.scale = s }
func (n *Node) LocalPosition() math3d.Vec3     { return n.position }
func (n *Node) LocalRotation() math3d.Quat     { return n.rotation }
func (n *Node) LocalScale() math3d.Vec3        { return n.scale }

// SetVisible shows or hides the node and its whole subtree.
func (n *Node) SetVisible(v bool) {
	n.visible = v
	for _, c := range n.children {
		c.SetVisible(v)
	}
}

func (n *Node) Visible() bool { return n.visible }

func (n *Node) SetAppearance(a Appearance) { n.appearance = a }
func (n *Node) Appearance() Appearance     { return n.appearance }

// Bounds implements Object.
func (n *Node) Bounds() (render.AABB, error) {
	return ComputeBounds(n)
}

// SetGeometry attaches mesh bounds, in the node's local space.
func (n *Node) SetGeometry(b render.AABB) {
	n.geometry = &b
}

// Geometry returns the node's own mesh bounds.
func (n *Node) Geometry() (render.AABB, bool) {
	if n.geometry == nil {
		return render.AABB{}, false
	}
	return *n.geometry, true
}

// AddChild reparents c under n.
func (n *Node) AddChild(c *Node) {
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) removeChild(c *Node) {
	for i, o := range n.children {
		if o == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Children returns the direct children of n.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// LocalMatrix returns the node's TRS matrix.
func (n *Node) LocalMatrix() math3d.Mat4 {
	return math3d.TRS(n.position, n.rotation, n.scale)
}

// WorldMatrix returns the node's transform composed with all its ancestors.
func (n *Node) WorldMatrix() math3d.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Clone deep-copies the subtree rooted at n. The copy has no parent.
func (n *Node) Clone() *Node {
	c := *n
	c.parent = nil
	c.children = nil
	if n.geometry != nil {
		g := *n.geometry
		c.geometry = &g
	}
	for _, child := range n.children {
		c.AddChild(child.Clone())
	}
	return &c
}

// NodeFactory instantiates prefabs by cloning their node hierarchy.
type NodeFactory struct {
	instantiated int
}

// Instantiate implements Factory. The clone is named after the prefab and
// parented under parent when it is non-nil.
func (f *NodeFactory) Instantiate(p *Prefab, parent *Node) (Object, error) {
	if p == nil || p.Root == nil {
		return nil, errors.New("scene: nil prefab")
	}
	n := p.Root.Clone()
	n.name = p.Name
	if parent != nil {
		parent.AddChild(n)
	}
	f.instantiated++
	return n, nil
}

// Instantiated returns how many instances the factory has created.
func (f *NodeFactory) Instantiated() int {
	return f.instantiated
}
