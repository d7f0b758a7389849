// Package placement decides where foreground objects, their occluders and
// the background filler go in a camera's view.
//
// All solvers work on a plane perpendicular to the camera's forward axis,
// at a fixed distance per layer. Positions on that plane are world X/Y;
// screen-space sizes are in pixels of the camera's render target.
package placement

import (
	"math"

	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
)

// Distances of the placement planes from the camera.
const (
	OccluderDistance   = 8.0
	ForegroundDistance = 10.0
	BackgroundDistance = 12.0
)

// cornerNeighbors lists, for each box corner, the three corners sharing an
// edge with it. Corner i has bit 0 set for +X, bit 1 for +Y, bit 2 for +Z.
var cornerNeighbors = [8][3]int{
	{1, 2, 4},
	{0, 3, 5},
	{0, 3, 6},
	{1, 2, 7},
	{0, 5, 6},
	{1, 4, 7},
	{2, 4, 7},
	{3, 5, 6},
}

// boxCorners returns the corners of the oriented box around position.
func boxCorners(position math3d.Vec3, rotation math3d.Quat, extents, scale math3d.Vec3) [8]math3d.Vec3 {
	e := extents.Mul(scale)
	var out [8]math3d.Vec3
	for i := range out {
		dir := math3d.V3(-1, -1, -1)
		if i&1 != 0 {
			dir.X = 1
		}
		if i&2 != 0 {
			dir.Y = 1
		}
		if i&4 != 0 {
			dir.Z = 1
		}
		out[i] = position.Add(rotation.Rotate(dir.Mul(e)))
	}
	return out
}

// projectedArea returns the silhouette estimate and the number of triangle
// contributions summed into it.
func projectedArea(t render.ProjectionTransformer, position math3d.Vec3, rotation math3d.Quat, bounds render.AABB, scale math3d.Vec3) (float64, int) {
	corners := boxCorners(position, rotation, bounds.Extents(), scale)

	nearest := 0
	nearestDepth := math.Inf(1)
	var screen [8]math3d.Vec2
	for i, c := range corners {
		screen[i] = t.Project(c)
		if d := t.Depth(c); d < nearestDepth {
			nearest, nearestDepth = i, d
		}
	}

	// Each neighbor pair spans half of one camera-facing face.
	area, tris := 0.0, 0
	n := cornerNeighbors[nearest]
	for _, pair := range [3][2]int{{n[0], n[1]}, {n[0], n[2]}, {n[1], n[2]}} {
		area += 2 * math3d.TriangleArea(screen[nearest], screen[pair[0]], screen[pair[1]])
		tris += 2
	}
	return area, tris
}

// ProjectedArea estimates the screen area in pixels covered by the box
// bounds placed at position with the given rotation and per-axis scale. It
// sums the three faces meeting at the corner nearest the camera.
func ProjectedArea(t render.ProjectionTransformer, position math3d.Vec3, rotation math3d.Quat, bounds render.AABB, scale math3d.Vec3) float64 {
	area, _ := projectedArea(t, position, rotation, bounds, scale)
	return area
}

// ScaleToMatchArea returns the uniform scale at which the box covers
// targetArea pixels. It returns 0 when the box has no projected area at unit
// scale.
func ScaleToMatchArea(t render.ProjectionTransformer, position math3d.Vec3, rotation math3d.Quat, bounds render.AABB, targetArea float64) float64 {
	unit := ProjectedArea(t, position, rotation, bounds, math3d.One3())
	if unit <= 0 || targetArea <= 0 {
		return 0
	}
	return math.Sqrt(targetArea / unit)
}

// PlacementRegion returns the part of the plane at distance in front of cam
// that the camera sees, in world X/Y. The camera is assumed to have no roll.
func PlacementRegion(cam *render.Camera, distance float64) math3d.Rect {
	forward := cam.Forward()
	plane := render.PlaneFromPoint(forward, cam.Position.Add(forward.Scale(distance)))

	bl := cam.ViewportPointToRay(0, 0)
	tr := cam.ViewportPointToRay(1, 1)
	t0, ok0 := plane.IntersectRay(bl)
	t1, ok1 := plane.IntersectRay(tr)
	if !ok0 || !ok1 {
		return math3d.Rect{}
	}

	a, b := bl.At(t0).XY(), tr.At(t1).XY()
	return math3d.Rect{Min: a.Min(b), Max: a.Max(b)}
}

// PlaneDepth returns the world Z of the placement plane at distance in
// front of a camera looking down -Z.
func PlaneDepth(cam *render.Camera, distance float64) float64 {
	return cam.Position.Z - distance
}

// Overlap returns the intersection area of a and b divided by the smaller
// of their areas. It is 1 when one contains the other and 0 when they are
// disjoint or either is degenerate.
func Overlap(a, b math3d.Rect) float64 {
	smaller := math.Min(a.Area(), b.Area())
	if smaller <= 0 {
		return 0
	}
	return a.Intersect(b).Area() / smaller
}

// Cropping returns the fraction of bbox that falls outside region.
func Cropping(bbox, region math3d.Rect) float64 {
	return 1 - Overlap(bbox, region)
}

// BoundingBox returns the X/Y extent of bounds after placing it with the
// given pose and uniform scale.
func BoundingBox(position math3d.Vec3, rotation math3d.Quat, scale float64, bounds render.AABB) math3d.Rect {
	m := math3d.TRS(position, rotation, math3d.One3().Scale(scale))
	return bounds.Transform(m).XY()
}

// ForegroundScale returns the uniform scale that normalizes an object's
// size to scaleFactor, measured by the length of its half extents.
func ForegroundScale(scaleFactor float64, bounds render.AABB) float64 {
	l := bounds.Extents().Len()
	if l == 0 {
		return 0
	}
	return scaleFactor / l
}

// randomPoint draws a point uniformly inside r on the plane at depth z.
func randomPoint(r *rng.Rand, rect math3d.Rect, z float64) math3d.Vec3 {
	x := r.Range(rect.Min.X, rect.Max.X)
	y := r.Range(rect.Min.Y, rect.Max.Y)
	return math3d.V3(x, y, z)
}
