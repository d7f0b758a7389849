package compose

import (
	"context"
	"fmt"

	"github.com/taigrr/synthscene/internal/monitoring"
	"github.com/taigrr/synthscene/pkg/curriculum"
	"github.com/taigrr/synthscene/pkg/effects"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/metrics"
	"github.com/taigrr/synthscene/pkg/placement"
)

// FrameResult is everything one Step placed and drew.
type FrameResult struct {
	Frame       int
	Start       curriculum.State // curriculum position the frame started from
	State       curriculum.State // position after the frame, scale advance included
	ScaleFactor float64

	Foreground []placement.PlacedObject // foreground and distractor placements
	Occluders  []placement.PlacedObject
	Background []placement.PlacedObject

	// Exhausted is set when the foreground solver ran out of attempts
	// before reaching the object budget.
	Exhausted bool
	// Wrapped is set when the curriculum rolled over during the frame.
	Wrapped bool
	// MissingOccluders counts foreground placements left without an
	// occluder.
	MissingOccluders int

	Grid               placement.Grid
	ScaleMin, ScaleMax float64

	Light effects.LightInfo
	Post  effects.PostProcess
}

// Placed returns every placement of the frame, foreground layer first.
func (f FrameResult) Placed() []placement.PlacedObject {
	out := make([]placement.PlacedObject, 0, len(f.Foreground)+len(f.Occluders)+len(f.Background))
	out = append(out, f.Foreground...)
	out = append(out, f.Occluders...)
	return append(out, f.Background...)
}

// Summary returns the per-frame counts reported to metrics sinks.
func (f FrameResult) Summary() metrics.FrameSummary {
	s := metrics.FrameSummary{
		Frame:              f.Frame,
		ScaleIndex:         f.Start.ScaleIndex,
		Occluders:          len(f.Occluders),
		Background:         len(f.Background),
		BackgroundExpected: f.Grid.Cells(),
	}
	for _, p := range f.Foreground {
		if p.Kind == placement.Distractor {
			s.Distractors++
		} else {
			s.Foreground++
		}
	}
	return s
}

// Step composes the next frame. It returns ErrFinished once Done reports
// true; placement shortfalls are reported in the result, never as errors.
func (c *Composer) Step(ctx context.Context) (FrameResult, error) {
	if c.Done() {
		return FrameResult{}, ErrFinished
	}
	if !c.paramsSent {
		c.report(metrics.Metric{Definition: metrics.AppParams.ID, Frame: c.frame, Value: c.params})
		c.paramsSent = true
	}

	for _, oc := range c.caches() {
		oc.ResetAll()
	}

	res := FrameResult{
		Frame:       c.frame,
		Start:       c.state,
		ScaleFactor: c.params.ScaleFactors[c.state.ScaleIndex],
	}

	t := c.camera.Transformer()
	c.fgSolver.Transformer = t
	c.occSolver.Transformer = t
	c.bgTiler.Transformer = t

	textures := c.statics.Textures.Len()
	fgDepth := placement.PlaneDepth(c.camera, placement.ForegroundDistance)
	fg := c.fgSolver.Solve(c.fgRand, c.state, placement.ForegroundParams{
		Region:           placement.PlacementRegion(c.camera, placement.ForegroundDistance),
		Depth:            fgDepth,
		ScaleFactor:      res.ScaleFactor,
		MaxObjects:       c.params.MaxForegroundObjectsPerFrame,
		DistractorChance: c.params.BackgroundObjectInForegroundChance,
		Jitter:           placement.Jitter{HueMax: c.params.OccludingHueMaxOffset, TextureCount: textures},
	})
	res.Foreground = fg.Placed
	res.Exhausted = fg.Exhausted
	res.Wrapped = fg.Wrapped

	occluders, err := c.occSolver.Solve(ctx, c.fgRand.Uint32(), fg.Placed, placement.OccluderParams{
		Region:      placement.PlacementRegion(c.camera, placement.OccluderDistance),
		Depth:       placement.PlaneDepth(c.camera, placement.OccluderDistance),
		ScalingMin:  c.params.ScalingMin,
		ScalingSize: c.params.ScalingSize,
		Jitter:      placement.Jitter{HueMax: c.params.OccludingHueMaxOffset, TextureCount: textures},
		Workers:     c.workers,
	})
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d occluders: %w", c.frame, err)
	}
	for _, o := range occluders {
		if o.Found {
			res.Occluders = append(res.Occluders, o.Placed)
		} else {
			res.MissingOccluders++
		}
	}

	pos := c.camera.Position
	bg, err := c.bgTiler.Fill(ctx, c.bgRand, placement.BackgroundParams{
		Region:          placement.PlacementRegion(c.camera, placement.BackgroundDistance),
		Depth:           placement.PlaneDepth(c.camera, placement.BackgroundDistance),
		Density:         c.params.BackgroundObjectDensity,
		Passes:          c.params.NumBackgroundFillPasses,
		FootprintCenter: math3d.V3(pos.X, pos.Y, fgDepth),
		Rotation:        curriculum.ComposeRotation(fg.State, c.statics.OutOfPlane, c.statics.InPlane),
		ScaleFactor:     res.ScaleFactor,
		Jitter:          placement.Jitter{HueMax: c.params.BackgroundHueMaxOffset, TextureCount: textures},
		Workers:         c.workers,
	})
	if err != nil {
		return FrameResult{}, fmt.Errorf("frame %d background: %w", c.frame, err)
	}
	res.Background = bg.Placed
	res.Grid = bg.Grid
	res.ScaleMin, res.ScaleMax = bg.ScaleMin, bg.ScaleMax

	c.instantiate(res)
	summary := res.Summary()
	c.fgCache.CheckUtilization(summary.Foreground)
	c.dtCache.CheckUtilization(summary.Distractors)
	c.occCache.CheckUtilization(len(res.Foreground))
	c.bgCache.CheckUtilization(bg.Grid.Cells())

	res.Light = c.lighting.Next()
	res.Post = c.post.Next()

	c.state = fg.State
	c.framesAtScale++
	if fg.Wrapped || (c.params.FramesPerScale > 0 && c.framesAtScale >= c.params.FramesPerScale) {
		c.state.ScaleIndex++
		c.framesAtScale = 0
	}
	res.State = c.state

	c.reportFrame(res)
	c.frame++
	return res, nil
}

// instantiate requests an instance for every placement and applies it.
func (c *Composer) instantiate(res FrameResult) {
	for _, p := range res.Foreground {
		if p.Kind == placement.Distractor {
			p.Apply(c.dtCache.GetOrInstantiate(c.statics.Background[p.Prefab].Name))
			continue
		}
		p.Apply(c.fgCache.GetOrInstantiate(c.statics.Foreground[p.Prefab].Name))
	}
	for _, p := range res.Occluders {
		p.Apply(c.occCache.GetOrInstantiate(c.statics.Background[p.Prefab].Name))
	}
	for _, p := range res.Background {
		p.Apply(c.bgCache.GetOrInstantiate(c.statics.Background[p.Prefab].Name))
	}
}

func (c *Composer) reportFrame(res FrameResult) {
	c.report(metrics.Metric{
		Definition: metrics.BackgroundScaleRange.ID,
		Frame:      res.Frame,
		Value:      metrics.ScaleRange{ScaleMin: res.ScaleMin, ScaleMax: res.ScaleMax},
	})
	for _, p := range res.Foreground {
		if p.Kind != placement.Foreground {
			continue
		}
		l := c.labels[p.Prefab]
		x, y, z := p.Rotation.Euler()
		c.report(metrics.Metric{
			Definition: metrics.ForegroundPlacementInfo.ID,
			Frame:      res.Frame,
			Value:      metrics.PlacementInfo{LabelID: l.ID, LabelName: l.Name, Rotation: [3]float64{x, y, z}},
		})
	}
	c.report(metrics.Metric{Definition: metrics.LightingInfo.ID, Frame: res.Frame, Value: res.Light})

	if err := c.sink.RecordFrame(res.Summary()); err != nil {
		monitoring.Warnf("frame %d summary not recorded: %v", res.Frame, err)
	}
}

func (c *Composer) report(m metrics.Metric) {
	if err := c.sink.Report(m); err != nil {
		monitoring.Warnf("metric %s for frame %d not recorded: %v", m.Definition, m.Frame, err)
	}
}
