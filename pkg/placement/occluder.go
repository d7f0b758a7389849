package placement

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
)

// Occluder acceptance band and retry budget.
const (
	OccluderAttempts   = 1000
	MinOccluderOverlap = 0.10
	MaxOccluderOverlap = 0.30
)

// OccluderParams are the per-frame inputs of OccluderSolver.Solve.
type OccluderParams struct {
	Region math3d.Rect // visible part of the occluder plane
	Depth  float64     // world Z of the occluder plane

	// Target area is a fraction in [ScalingMin, ScalingMin+ScalingSize]
	// of the foreground object's projected area.
	ScalingMin  float64
	ScalingSize float64

	Jitter Jitter

	// Workers bounds the number of lanes running at once. Zero means
	// GOMAXPROCS.
	Workers int
}

// OccluderSolver places one occluding object over each foreground
// placement. Lanes are independent; each draws from Stream(seed, index).
type OccluderSolver struct {
	Transformer render.ProjectionTransformer
	Background  []Prefab
}

// OccluderResult is the outcome of one occluder lane.
type OccluderResult struct {
	Placed   PlacedObject
	Found    bool
	Attempts int
}

// Solve runs one lane per foreground placement. A lane that exhausts
// OccluderAttempts reports Found == false. The result slice is in the order
// of foreground and does not depend on lane scheduling.
func (s *OccluderSolver) Solve(ctx context.Context, seed uint32, foreground []PlacedObject, p OccluderParams) ([]OccluderResult, error) {
	results := make([]OccluderResult, len(foreground))
	if len(s.Background) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Workers))
	for i, fg := range foreground {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.lane(rng.Stream(seed, uint32(i)), fg, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *OccluderSolver) lane(r *rng.Rand, fg PlacedObject, p OccluderParams) OccluderResult {
	target := fg.BoundingBox.Intersect(p.Region)

	var res OccluderResult
	for res.Attempts < OccluderAttempts {
		res.Attempts++

		obj := PlacedObject{Kind: Occluder, Prefab: r.Intn(len(s.Background))}
		bounds := s.Background[obj.Prefab].Bounds
		obj.Position = randomPoint(r, target, p.Depth)
		obj.Rotation = r.Rotation()
		area := r.Range(p.ScalingMin, p.ScalingMin+p.ScalingSize) * fg.ProjectedArea
		obj.Scale = ScaleToMatchArea(s.Transformer, obj.Position, obj.Rotation, bounds, area)
		obj.BoundingBox = BoundingBox(obj.Position, obj.Rotation, obj.Scale, bounds)

		overlap := Overlap(target, obj.BoundingBox)
		if overlap >= MinOccluderOverlap && overlap <= MaxOccluderOverlap {
			obj.ProjectedArea = ProjectedArea(s.Transformer, obj.Position, obj.Rotation, bounds, math3d.One3().Scale(obj.Scale))
			obj.Appearance = p.Jitter.draw(r)
			res.Placed, res.Found = obj, true
			return res
		}
	}
	return res
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
