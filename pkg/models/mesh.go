// Package models loads prefab geometry from glTF files into scene
// hierarchies.
package models

import (
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
)

// Mesh holds the vertex positions of one glTF mesh, in mesh-local space.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Bounds computes the axis-aligned bounding box. ok is false for a mesh
// with no vertices.
func (m *Mesh) Bounds() (b render.AABB, ok bool) {
	if len(m.Positions) == 0 {
		return render.AABB{}, false
	}
	b = render.NewAABB(m.Positions[0], m.Positions[0])
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b, true
}
