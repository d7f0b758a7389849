package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/taigrr/synthscene/pkg/compose"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/placement"
	"github.com/taigrr/synthscene/pkg/render"
)

// snapshotter renders each frame from the capture camera into a PNG, with
// the 2D bounding box of every labeled object outlined.
type snapshotter struct {
	dir    string
	view   *sceneView
	fb     *render.Framebuffer
	rast   *render.Rasterizer
	region math3d.Rect
}

func newSnapshotter(dir string, view *sceneView) (*snapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	capture := view.capture
	fb := render.NewFramebuffer(capture.Width, capture.Height)
	return &snapshotter{
		dir:    dir,
		view:   view,
		fb:     fb,
		rast:   render.NewRasterizer(capture, fb),
		region: placement.PlacementRegion(capture, placement.ForegroundDistance),
	}, nil
}

// toPixels maps a foreground-plane rectangle to framebuffer pixels.
func (s *snapshotter) toPixels(r math3d.Rect) (x0, y0, x1, y1 int) {
	sx := float64(s.fb.Width) / s.region.Width()
	sy := float64(s.fb.Height) / s.region.Height()
	x0 = int(math.Round((r.Min.X - s.region.Min.X) * sx))
	x1 = int(math.Round((r.Max.X - s.region.Min.X) * sx))
	y0 = int(math.Round((s.region.Max.Y - r.Max.Y) * sy))
	y1 = int(math.Round((s.region.Max.Y - r.Min.Y) * sy))
	return x0, y0, x1, y1
}

// Save writes frame_NNNNNN.png for res and returns its path.
func (s *snapshotter) Save(res *compose.FrameResult) (string, error) {
	s.rast.Refresh()
	s.fb.Clear(render.ColorSky)
	s.rast.ClearDepth()
	s.view.DrawSolid(s.rast, res)

	for _, p := range res.Foreground {
		if p.Kind != placement.Foreground {
			continue
		}
		box := p.BoundingBox.Intersect(s.region)
		if box.Empty() {
			continue
		}
		x0, y0, x1, y1 := s.toPixels(box)
		s.fb.DrawRectOutline(x0, y0, x1, y1, render.ColorWhite)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", res.Frame))
	if err := s.fb.SavePNG(path); err != nil {
		return "", err
	}
	return path, nil
}
