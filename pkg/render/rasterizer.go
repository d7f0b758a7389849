package render

import (
	"math"

	"github.com/taigrr/synthscene/pkg/math3d"
)

// boxFaces lists each face of AABB.Corners as a cyclic quad.
var boxFaces = [6][4]int{
	{0, 2, 6, 4}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 3, 7, 6}, // +Y
	{0, 1, 3, 2}, // -Z
	{4, 5, 7, 6}, // +Z
}

// Ambient is the light share every face receives regardless of direction.
const Ambient = 0.3

// CullingStats counts boxes tested against the view frustum.
type CullingStats struct {
	Tested int
	Culled int
	Drawn  int
}

// Rasterizer fills depth-tested, flat-lit boxes into a framebuffer.
type Rasterizer struct {
	camera   *Camera
	fb       *Framebuffer
	zbuffer  []float64
	frustum  Frustum
	viewProj math3d.Mat4

	Stats CullingStats
}

// NewRasterizer creates a rasterizer for the camera's current pose. Call
// Refresh after moving the camera and Resize after resizing fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	r.Refresh()
	return r
}

// Resize matches the depth buffer to the framebuffer.
func (r *Rasterizer) Resize() {
	if len(r.zbuffer) != r.fb.Width*r.fb.Height {
		r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	}
	r.ClearDepth()
}

// Refresh recomputes the frustum and view-projection from the camera.
func (r *Rasterizer) Refresh() {
	r.frustum = r.camera.Frustum()
	r.viewProj = r.camera.ViewProjectionMatrix()
}

// ClearDepth resets the depth buffer and the culling stats. Call once per
// frame.
func (r *Rasterizer) ClearDepth() {
	r.Stats = CullingStats{}
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

func (r *Rasterizer) depth(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return -math.MaxFloat64
	}
	return r.zbuffer[y*r.fb.Width+x]
}

// DrawBox fills the box bounds transformed by m, shading each face by its
// angle to a light shining along lightDir. It reports false when the box
// was culled.
func (r *Rasterizer) DrawBox(m math3d.Mat4, bounds AABB, base Color, lightDir math3d.Vec3) bool {
	r.Stats.Tested++
	if !r.frustum.IntersectAABB(bounds.Transform(m)) {
		r.Stats.Culled++
		return false
	}
	r.Stats.Drawn++

	var world [8]math3d.Vec3
	for i, c := range bounds.Corners() {
		world[i] = m.MulVec3(c)
	}
	center := m.MulVec3(bounds.Center())
	toLight := lightDir.Normalize().Negate()

	for _, f := range boxFaces {
		a, b, c, d := world[f[0]], world[f[1]], world[f[2]], world[f[3]]
		normal := b.Sub(a).Cross(d.Sub(a)).Normalize()
		faceCenter := a.Add(b).Add(c).Add(d).Scale(0.25)
		if normal.Dot(faceCenter.Sub(center)) < 0 {
			normal = normal.Negate()
		}
		lit := shade(base, Ambient+(1-Ambient)*math.Max(0, normal.Dot(toLight)))
		r.fillTriangle(a, b, c, lit)
		r.fillTriangle(a, c, d, lit)
	}
	return true
}

func shade(c Color, intensity float64) Color {
	return RGB(
		uint8(float64(c.R)*intensity),
		uint8(float64(c.G)*intensity),
		uint8(float64(c.B)*intensity),
	)
}

// fillTriangle rasterizes a world-space triangle with a depth test. Triangles
// with any vertex behind the camera are skipped.
func (r *Rasterizer) fillTriangle(v0, v1, v2 math3d.Vec3, color Color) {
	var sx, sy, sz [3]float64
	for i, v := range [3]math3d.Vec3{v0, v1, v2} {
		clip := r.viewProj.MulVec4(math3d.V4FromV3(v, 1))
		if clip.W <= 0 {
			return
		}
		ndc := clip.PerspectiveDivide()
		sx[i] = (ndc.X + 1) * 0.5 * float64(r.fb.Width)
		sy[i] = (1 - ndc.Y) * 0.5 * float64(r.fb.Height)
		sz[i] = ndc.Z
	}

	minX := int(math.Max(0, math.Floor(min(sx[0], sx[1], sx[2]))))
	maxX := int(math.Min(float64(r.fb.Width-1), math.Ceil(max(sx[0], sx[1], sx[2]))))
	minY := int(math.Max(0, math.Floor(min(sy[0], sy[1], sy[2]))))
	maxY := int(math.Min(float64(r.fb.Height-1), math.Ceil(max(sy[0], sy[1], sy[2]))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc, ok := barycentric(sx, sy, float64(x)+0.5, float64(y)+0.5)
			if !ok || bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}
			z := bc.X*sz[0] + bc.Y*sz[1] + bc.Z*sz[2]
			if z >= r.depth(x, y) {
				continue
			}
			r.zbuffer[y*r.fb.Width+x] = z
			r.fb.SetPixel(x, y, color)
		}
	}
}

// barycentric returns the weights of (px, py) in the screen triangle, or
// false for a degenerate triangle.
func barycentric(sx, sy [3]float64, px, py float64) (math3d.Vec3, bool) {
	v0x, v0y := sx[1]-sx[0], sy[1]-sy[0]
	v1x, v1y := sx[2]-sx[0], sy[2]-sy[0]
	v2x, v2y := px-sx[0], py-sy[0]

	den := v0x*v1y - v1x*v0y
	if math.Abs(den) < 1e-12 {
		return math3d.Vec3{}, false
	}
	v := (v2x*v1y - v1x*v2y) / den
	w := (v0x*v2y - v2x*v0y) / den
	return math3d.V3(1-v-w, v, w), true
}
