package render

import (
	"github.com/taigrr/synthscene/pkg/math3d"
)

// boxEdges joins corners from AABB.Corners that differ in exactly one bit.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// Wireframe draws line overlays of a composed scene into a framebuffer.
type Wireframe struct {
	camera  *Camera
	fb      *Framebuffer
	frustum Frustum
}

// NewWireframe creates a wireframe renderer for the camera's current pose.
// Call Refresh after moving the camera.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	w := &Wireframe{camera: camera, fb: fb}
	w.Refresh()
	return w
}

// Refresh recomputes the culling frustum from the camera.
func (w *Wireframe) Refresh() {
	w.frustum = w.camera.Frustum()
}

// DrawLine3D draws a line in 3D space. Lines with both endpoints outside
// the view are skipped.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)
	if !vis1 && !vis2 {
		return
	}
	if !vis1 || !vis2 {
		// one endpoint was rejected; project it unclipped if in front
		if !vis1 {
			x1, y1, vis1 = w.unclipped(p1)
		} else {
			x2, y2, vis2 = w.unclipped(p2)
		}
		if !vis1 || !vis2 {
			return
		}
	}
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), color)
}

func (w *Wireframe) unclipped(p math3d.Vec3) (x, y float64, ok bool) {
	clip := w.camera.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = (ndc.X + 1) * 0.5 * float64(w.fb.Width)
	y = (1 - ndc.Y) * 0.5 * float64(w.fb.Height)
	return x, y, true
}

// DrawBox draws the box bounds transformed by m. It reports false when the
// box was culled.
func (w *Wireframe) DrawBox(m math3d.Mat4, bounds AABB, color Color) bool {
	if !w.frustum.IntersectAABB(bounds.Transform(m)) {
		return false
	}

	local := bounds.Corners()
	var world [8]math3d.Vec3
	for i, c := range local {
		world[i] = m.MulVec3(c)
	}
	for _, e := range boxEdges {
		w.DrawLine3D(world[e[0]], world[e[1]], color)
	}
	return true
}

// DrawRect draws an XY-plane rectangle at depth z.
func (w *Wireframe) DrawRect(r math3d.Rect, z float64, color Color) {
	a := math3d.V3(r.Min.X, r.Min.Y, z)
	b := math3d.V3(r.Max.X, r.Min.Y, z)
	c := math3d.V3(r.Max.X, r.Max.Y, z)
	d := math3d.V3(r.Min.X, r.Max.Y, z)
	w.DrawLine3D(a, b, color)
	w.DrawLine3D(b, c, color)
	w.DrawLine3D(c, d, color)
	w.DrawLine3D(d, a, color)
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), RGB(255, 0, 0))
	w.DrawLine3D(origin, math3d.V3(0, length, 0), RGB(0, 255, 0))
	w.DrawLine3D(origin, math3d.V3(0, 0, length), RGB(0, 0, 255))
}
