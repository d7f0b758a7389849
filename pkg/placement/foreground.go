package placement

import (
	"github.com/taigrr/synthscene/pkg/curriculum"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
)

// Foreground acceptance limits.
const (
	ForegroundAttempts    = 100
	MaxForegroundCropping = 0.5
	MaxForegroundOverlap  = 0.3
)

// ForegroundParams are the per-frame inputs of ForegroundSolver.Solve.
type ForegroundParams struct {
	Region      math3d.Rect // visible part of the foreground plane
	Depth       float64     // world Z of the foreground plane
	ScaleFactor float64
	MaxObjects  int

	// DistractorChance is the probability that a draw comes from the
	// background table instead of the curriculum.
	DistractorChance float64
	Jitter           Jitter
}

// ForegroundSolver places curriculum objects one after another, each
// rejection-sampled against cropping and the overlap with those before it.
type ForegroundSolver struct {
	Transformer render.ProjectionTransformer
	Foreground  []Prefab
	Background  []Prefab
	OutOfPlane  []math3d.Quat
	InPlane     []math3d.Quat
}

// ForegroundResult is the outcome of one frame of foreground placement.
type ForegroundResult struct {
	Placed []PlacedObject
	State  curriculum.State

	// Wrapped is set when the curriculum rolled over to its first entry
	// during the frame.
	Wrapped bool

	// Exhausted is set when a draw found no acceptable position and the
	// frame stopped early.
	Exhausted bool

	// Attempts counts every candidate position tried.
	Attempts int
}

// Lengths returns the curriculum table sizes the solver advances over.
func (s *ForegroundSolver) Lengths() curriculum.Lengths {
	return curriculum.Lengths{
		Prefabs:    len(s.Foreground),
		OutOfPlane: len(s.OutOfPlane),
		InPlane:    len(s.InPlane),
	}
}

// Solve places up to p.MaxObjects objects, drawing from r. The first draw
// that cannot be placed within ForegroundAttempts ends the frame. Only
// curriculum draws advance state.
func (s *ForegroundSolver) Solve(r *rng.Rand, state curriculum.State, p ForegroundParams) ForegroundResult {
	res := ForegroundResult{State: state}
	lengths := s.Lengths()
	boxes := make([]math3d.Rect, 0, max(p.MaxObjects, 0))

	for len(res.Placed) < p.MaxObjects {
		distractor := r.Chance(p.DistractorChance) && len(s.Background) > 0

		obj := PlacedObject{Kind: Foreground, Prefab: res.State.PrefabIndex}
		if distractor {
			obj.Kind = Distractor
			obj.Prefab = r.Intn(len(s.Background))
		}
		bounds := s.bounds(obj)
		obj.Scale = ForegroundScale(p.ScaleFactor, bounds)
		obj.Rotation = curriculum.ComposeRotation(res.State, s.OutOfPlane, s.InPlane)

		placed := false
		for range ForegroundAttempts {
			res.Attempts++
			obj.Position = randomPoint(r, p.Region, p.Depth)
			obj.ProjectedArea = ProjectedArea(s.Transformer, obj.Position, obj.Rotation, bounds, math3d.One3().Scale(obj.Scale))
			obj.BoundingBox = BoundingBox(obj.Position, obj.Rotation, obj.Scale, bounds)

			if Cropping(obj.BoundingBox, p.Region) <= MaxForegroundCropping && !overlapsAny(obj.BoundingBox, boxes) {
				placed = true
				break
			}
		}
		if !placed {
			res.Exhausted = true
			break
		}

		if distractor {
			obj.Appearance = p.Jitter.draw(r)
		} else {
			obj.Appearance.TextureIndex = -1
			var wrapped bool
			res.State, wrapped = curriculum.Advance(res.State, lengths)
			res.Wrapped = res.Wrapped || wrapped
		}
		res.Placed = append(res.Placed, obj)
		boxes = append(boxes, obj.BoundingBox)
	}
	return res
}

func (s *ForegroundSolver) bounds(obj PlacedObject) render.AABB {
	if obj.Kind == Distractor {
		return s.Background[obj.Prefab].Bounds
	}
	return s.Foreground[obj.Prefab].Bounds
}

// overlapsAny reports whether box overlaps any of placed by more than
// MaxForegroundOverlap.
func overlapsAny(box math3d.Rect, placed []math3d.Rect) bool {
	for _, other := range placed {
		if Overlap(box, other) > MaxForegroundOverlap {
			return true
		}
	}
	return false
}
