// Package scene defines the scene-object contracts the placement engine
// drives, and an in-memory node hierarchy implementing them.
package scene

import (
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
)

// Appearance is the per-instance look override. When Override is false the
// instance keeps the prefab's own material.
type Appearance struct {
	Override     bool    `json:"override"`
	TextureIndex int     `json:"texture_index"` // index into the background texture catalog, -1 for none
	HueOffset    float64 `json:"hue_offset"`    // degrees
}

// OwnAppearance is the appearance of an instance that keeps its prefab look.
var OwnAppearance = Appearance{TextureIndex: -1}

// Object is a handle to a placed scene instance.
type Object interface {
	Name() string

	SetLocalPosition(p math3d.Vec3)
	SetLocalRotation(q math3d.Quat)
	SetLocalScale(s math3d.Vec3)
	LocalPosition() math3d.Vec3
	LocalRotation() math3d.Quat
	LocalScale() math3d.Vec3

	SetVisible(v bool)
	Visible() bool

	SetAppearance(a Appearance)
	Appearance() Appearance

	// Bounds returns the local-space bounds of the object's geometry
	// hierarchy, including its own transform.
	Bounds() (render.AABB, error)
}

// Factory creates renderable instances of prefabs.
type Factory interface {
	Instantiate(p *Prefab, parent *Node) (Object, error)
}

// Prefab is a named template hierarchy.
type Prefab struct {
	Name string
	Root *Node
}

// Bounds returns the bounds of the prefab hierarchy.
func (p *Prefab) Bounds() (render.AABB, error) {
	return ComputeBounds(p.Root)
}

// NewBoxPrefab returns a prefab with a single box of the given size
// centered on its origin.
func NewBoxPrefab(name string, size math3d.Vec3) *Prefab {
	root := NewNode(name)
	root.SetGeometry(render.AABBFromCenterExtents(math3d.Zero3(), size.Scale(0.5)))
	return &Prefab{Name: name, Root: root}
}
