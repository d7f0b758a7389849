package main

import (
	"fmt"

	"github.com/taigrr/synthscene/pkg/compose"
	"github.com/taigrr/synthscene/pkg/effects"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/placement"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/scene"
)

// sceneView draws composed frames, either from the capture camera or from
// an inspection camera orbiting it.
type sceneView struct {
	capture  *render.Camera
	textures *render.TextureCatalog
	fgBounds []render.AABB
	bgBounds []render.AABB
}

func newSceneView(capture *render.Camera, statics compose.Statics) (*sceneView, error) {
	v := &sceneView{capture: capture, textures: statics.Textures}
	var err error
	if v.fgBounds, err = boundsOf(statics.Foreground); err != nil {
		return nil, err
	}
	if v.bgBounds, err = boundsOf(statics.Background); err != nil {
		return nil, err
	}
	return v, nil
}

func boundsOf(prefabs []*scene.Prefab) ([]render.AABB, error) {
	out := make([]render.AABB, len(prefabs))
	for i, p := range prefabs {
		b, err := p.Bounds()
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", p.Name, err)
		}
		out[i] = b
	}
	return out, nil
}

// target is the center of the foreground plane.
func (v *sceneView) target() math3d.Vec3 {
	pos := v.capture.Position
	return math3d.V3(pos.X, pos.Y, placement.PlaneDepth(v.capture, placement.ForegroundDistance))
}

func (v *sceneView) color(p placement.PlacedObject) render.Color {
	var base render.Color
	switch p.Kind {
	case placement.Foreground:
		return render.ColorForeground
	case placement.Distractor:
		base = render.ColorDistractor
	case placement.Occluder:
		base = render.ColorOccluder
	default:
		base = render.ColorBackground
	}
	if !p.Appearance.Override {
		return base
	}
	return render.HueShift(v.textures.Swatch(p.Appearance.TextureIndex, base), p.Appearance.HueOffset)
}

func (v *sceneView) bounds(p placement.PlacedObject) render.AABB {
	if p.Kind == placement.Foreground {
		return v.fgBounds[p.Prefab]
	}
	return v.bgBounds[p.Prefab]
}

// renderMode selects how placements are drawn.
type renderMode int

const (
	modeSolid renderMode = iota
	modeWireframe
)

// tint filters c through the frame's light color.
func tint(c render.Color, light effects.LightInfo) render.Color {
	return render.RGB(
		uint8(float64(c.R)*light.Color.R),
		uint8(float64(c.G)*light.Color.G),
		uint8(float64(c.B)*light.Color.B),
	)
}

// Draw renders the layer regions and every placement of res.
func (v *sceneView) Draw(wf *render.Wireframe, rast *render.Rasterizer, mode renderMode, res *compose.FrameResult) {
	wf.DrawAxes(1)
	for _, d := range []float64{placement.OccluderDistance, placement.ForegroundDistance, placement.BackgroundDistance} {
		wf.DrawRect(placement.PlacementRegion(v.capture, d), placement.PlaneDepth(v.capture, d), render.ColorRegion)
	}
	if res == nil {
		return
	}
	// back to front so foreground edges stay on top
	layers := [][]placement.PlacedObject{res.Background, res.Foreground, res.Occluders}
	for _, layer := range layers {
		for _, p := range layer {
			if mode == modeWireframe {
				wf.DrawBox(pose(p), v.bounds(p), v.color(p))
				continue
			}
			v.fill(rast, p, res.Light)
		}
	}
}

// DrawSolid fills every placement of res as lit boxes.
func (v *sceneView) DrawSolid(rast *render.Rasterizer, res *compose.FrameResult) {
	for _, p := range res.Placed() {
		v.fill(rast, p, res.Light)
	}
}

func (v *sceneView) fill(rast *render.Rasterizer, p placement.PlacedObject, light effects.LightInfo) {
	rast.DrawBox(pose(p), v.bounds(p), tint(v.color(p), light), light.Direction())
}

func pose(p placement.PlacedObject) math3d.Mat4 {
	return math3d.TRS(p.Position, p.Rotation, math3d.One3().Scale(p.Scale))
}
