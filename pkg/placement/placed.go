package placement

import (
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
	"github.com/taigrr/synthscene/pkg/scene"
)

// Kind tells which solver produced a placement and which prefab table its
// Prefab index refers to.
type Kind int

const (
	// Foreground is a curriculum object; Prefab indexes the foreground table.
	Foreground Kind = iota
	// Distractor is a background prefab placed by the foreground solver.
	Distractor
	// Occluder partially covers one foreground placement.
	Occluder
	// Background is tiled filler behind the foreground layer.
	Background
)

func (k Kind) String() string {
	switch k {
	case Foreground:
		return "foreground"
	case Distractor:
		return "distractor"
	case Occluder:
		return "occluder"
	case Background:
		return "background"
	default:
		return "unknown"
	}
}

// UsesBackgroundTable reports whether Prefab indexes the background table.
func (k Kind) UsesBackgroundTable() bool {
	return k != Foreground
}

// Prefab is the part of a prefab the solvers need: its name and local
// bounds.
type Prefab struct {
	Name   string
	Bounds render.AABB
}

// PlacedObject is one accepted placement for the current frame.
type PlacedObject struct {
	Kind          Kind             `json:"kind"`
	Prefab        int              `json:"prefab"`
	Scale         float64          `json:"scale"`
	Position      math3d.Vec3      `json:"position"`
	Rotation      math3d.Quat      `json:"rotation"`
	BoundingBox   math3d.Rect      `json:"bounding_box"`
	ProjectedArea float64          `json:"projected_area"`
	Appearance    scene.Appearance `json:"appearance"`
}

// Apply writes the placement's pose and appearance onto an instance and
// makes it visible.
func (p PlacedObject) Apply(obj scene.Object) {
	obj.SetLocalPosition(p.Position)
	obj.SetLocalRotation(p.Rotation)
	obj.SetLocalScale(math3d.One3().Scale(p.Scale))
	obj.SetAppearance(p.Appearance)
	obj.SetVisible(true)
}

// Jitter describes the appearance override given to placements drawn from
// the background table.
type Jitter struct {
	HueMax       float64 // degrees either side of the prefab hue
	TextureCount int     // size of the background texture catalog
}

// draw returns a random appearance override.
func (j Jitter) draw(r *rng.Rand) scene.Appearance {
	a := scene.Appearance{Override: true, TextureIndex: -1}
	a.HueOffset = r.Range(-j.HueMax, j.HueMax)
	if j.TextureCount > 0 {
		a.TextureIndex = r.Intn(j.TextureCount)
	}
	return a
}
