package placement

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/taigrr/synthscene/internal/monitoring"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
)

// MaxBackgroundCells bounds the objects one frame's grid may place.
const MaxBackgroundCells = 1 << 20

// Range of the per-frame background scale band.
const (
	backgroundScaleLow  = 0.9
	backgroundScaleHigh = 1.5
)

// BackgroundParams are the per-frame inputs of BackgroundTiler.Fill.
type BackgroundParams struct {
	Region  math3d.Rect // visible part of the background plane
	Depth   float64     // world Z of the background plane
	Density float64
	Passes  int

	// The average foreground footprint is measured at FootprintCenter with
	// the frame's foreground rotation and scale factor.
	FootprintCenter math3d.Vec3
	Rotation        math3d.Quat
	ScaleFactor     float64

	Jitter  Jitter
	Workers int
}

// BackgroundTiler fills the background plane with a grid of filler objects,
// one per cell per pass. Nothing is rejected; density makes up for gaps.
type BackgroundTiler struct {
	Transformer render.ProjectionTransformer
	Foreground  []Prefab
	Background  []Prefab
}

// Grid is the cell layout for one frame.
type Grid struct {
	Horizontal int
	Vertical   int
	Passes     int

	// Footprint is the average foreground projected area in pixels the
	// grid was sized from.
	Footprint float64
}

// Cells returns the number of objects the grid places.
func (g Grid) Cells() int {
	return g.Horizontal * g.Vertical * g.Passes
}

// BackgroundResult is the outcome of one frame of background tiling.
type BackgroundResult struct {
	Grid     Grid
	ScaleMin float64
	ScaleMax float64
	Placed   []PlacedObject
}

// Footprint returns the mean projected area of every foreground prefab at
// the given pose, each normalized by ForegroundScale.
func (t *BackgroundTiler) Footprint(center math3d.Vec3, rotation math3d.Quat, scaleFactor float64) float64 {
	if len(t.Foreground) == 0 {
		return 0
	}
	areas := make([]float64, len(t.Foreground))
	for i, fg := range t.Foreground {
		s := ForegroundScale(scaleFactor, fg.Bounds)
		areas[i] = ProjectedArea(t.Transformer, center, rotation, fg.Bounds, math3d.One3().Scale(s))
	}
	return stat.Mean(areas, nil)
}

// Layout sizes the grid so that about density footprints cover the region.
// A footprint that is not a positive finite number gives an empty grid, as
// does a grid of more than MaxBackgroundCells objects.
func (t *BackgroundTiler) Layout(region math3d.Rect, footprint, density float64, passes int) Grid {
	g := Grid{Passes: max(passes, 0), Footprint: footprint}
	w, h := t.Transformer.Resolution()
	regionArea := region.Area()
	if footprint <= 0 || math.IsNaN(footprint) || math.IsInf(footprint, 0) || w*h == 0 || regionArea == 0 {
		return g
	}
	if !(density > 0) {
		return g
	}

	units := footprint * regionArea / (w * h)
	cellsSqrt := math.Sqrt(density * regionArea / units)
	aspect := w / h
	hf := math.Round(cellsSqrt * aspect)
	vf := math.Round(cellsSqrt / aspect)
	if math.IsInf(hf, 0) || math.IsInf(vf, 0) || hf*vf*float64(g.Passes) > MaxBackgroundCells {
		monitoring.Warnf("background grid of %.0fx%.0f cells over %d passes exceeds %d objects; skipping background", hf, vf, g.Passes, MaxBackgroundCells)
		return g
	}
	g.Horizontal = int(hf)
	g.Vertical = int(vf)
	return g
}

// Fill tiles the background for one frame. The scale band and lane seed
// come from r; each pass then runs on its own Stream lane. Placement i*V+j
// of pass p lands at index p*H*V + i*V + j of the result.
func (t *BackgroundTiler) Fill(ctx context.Context, r *rng.Rand, p BackgroundParams) (BackgroundResult, error) {
	footprint := t.Footprint(p.FootprintCenter, p.Rotation, p.ScaleFactor)
	res := BackgroundResult{Grid: t.Layout(p.Region, footprint, p.Density, p.Passes)}

	s0 := r.Range(backgroundScaleLow, backgroundScaleHigh)
	s1 := r.Range(backgroundScaleLow, backgroundScaleHigh)
	res.ScaleMin, res.ScaleMax = math.Min(s0, s1), math.Max(s0, s1)
	seed := r.Uint32()

	if res.Grid.Cells() == 0 || len(t.Background) == 0 {
		return res, nil
	}

	res.Placed = make([]PlacedObject, res.Grid.Cells())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Workers))
	for pass := range res.Grid.Passes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t.pass(rng.Stream(seed, uint32(pass)), pass, res, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BackgroundResult{}, err
	}
	return res, nil
}

// pass writes one object per cell into the pass's slice of res.Placed.
func (t *BackgroundTiler) pass(r *rng.Rand, pass int, res BackgroundResult, p BackgroundParams) {
	h, v := res.Grid.Horizontal, res.Grid.Vertical
	hStep := p.Region.Width() / float64(h)
	vStep := p.Region.Height() / float64(v)

	for i := range h {
		for j := range v {
			x := p.Region.Min.X + hStep*(float64(i)+r.Float64())
			y := p.Region.Min.Y + vStep*(float64(j)+r.Float64())
			res.Placed[pass*h*v+i*v+j] = t.place(r, math3d.V3(x, y, p.Depth), res, p)
		}
	}
}

func (t *BackgroundTiler) place(r *rng.Rand, position math3d.Vec3, res BackgroundResult, p BackgroundParams) PlacedObject {
	obj := PlacedObject{Kind: Background, Prefab: r.Intn(len(t.Background)), Position: position}
	bounds := t.Background[obj.Prefab].Bounds
	obj.Rotation = r.Rotation()
	area := r.Range(res.ScaleMin, res.ScaleMax) * res.Grid.Footprint
	obj.Scale = ScaleToMatchArea(t.Transformer, position, obj.Rotation, bounds, area)
	obj.BoundingBox = BoundingBox(position, obj.Rotation, obj.Scale, bounds)
	obj.ProjectedArea = area
	obj.Appearance = p.Jitter.draw(r)
	return obj
}
