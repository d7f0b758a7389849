package render

import "github.com/taigrr/synthscene/pkg/math3d"

// ProjectionTransformer maps world points to pixel coordinates for one
// camera snapshot. It is immutable and safe to share between goroutines.
type ProjectionTransformer struct {
	view     math3d.Mat4
	viewProj math3d.Mat4
	width    float64
	height   float64
}

// NewProjectionTransformer snapshots the given matrices and render target
// resolution.
func NewProjectionTransformer(view, proj math3d.Mat4, width, height int) ProjectionTransformer {
	return ProjectionTransformer{
		view:     view,
		viewProj: proj.Mul(view),
		width:    float64(width),
		height:   float64(height),
	}
}

// Project returns the pixel position of p. The origin is the bottom-left
// corner of the render target.
func (t ProjectionTransformer) Project(p math3d.Vec3) math3d.Vec2 {
	ndc := t.viewProj.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide()
	return math3d.V2(
		(ndc.X+1)*0.5*t.width,
		(ndc.Y+1)*0.5*t.height,
	)
}

// Depth returns the view-space distance of p along the camera's forward
// axis. Larger is further away.
func (t ProjectionTransformer) Depth(p math3d.Vec3) float64 {
	return -t.view.MulVec3(p).Z
}

// Resolution returns the render target size in pixels.
func (t ProjectionTransformer) Resolution() (width, height float64) {
	return t.width, t.height
}
