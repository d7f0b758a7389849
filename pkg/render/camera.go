package render

import (
	"math"

	"github.com/taigrr/synthscene/pkg/math3d"
)

// Camera represents a 3D camera with position, orientation and a pixel
// render target. It looks down -Z when pitch, yaw and roll are zero.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)
	Roll  float64 // Rotation around Z axis (tilt)

	// Projection parameters
	FOV          float64 // Vertical field of view in radians
	AspectRatio  float64 // Width / Height
	Near         float64 // Near clipping plane
	Far          float64 // Far clipping plane
	Orthographic bool
	OrthoSize    float64 // Half the view height when Orthographic

	// Render target resolution in pixels
	Width, Height int

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a perspective camera at the origin rendering to a
// width x height target.
func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:   math.Pi / 3, // 60 degrees
		Near:  0.3,
		Far:   1000,
		Width: width, Height: height,
	}
	c.AspectRatio = aspect(width, height)
	c.invalidate()
	return c
}

// NewOrthographicCamera creates an orthographic camera at the origin whose
// view is 2*halfHeight units tall.
func NewOrthographicCamera(width, height int, halfHeight float64) *Camera {
	c := NewCamera(width, height)
	c.Orthographic = true
	c.OrthoSize = halfHeight
	return c
}

func aspect(width, height int) float64 {
	if height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}

func (c *Camera) invalidate() {
	c.viewDirty = true
	c.projDirty = true
	c.viewProjDirty = true
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
	c.viewProjDirty = true
}

// SetRotation sets the camera rotation (pitch, yaw, roll in radians).
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pitch, c.Yaw, c.Roll = pitch, yaw, roll
	c.viewDirty = true
	c.viewProjDirty = true
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
	c.viewProjDirty = true
}

// SetResolution sets the render target size and the matching aspect ratio.
func (c *Camera) SetResolution(width, height int) {
	c.Width, c.Height = width, height
	c.AspectRatio = aspect(width, height)
	c.projDirty = true
	c.viewProjDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near, c.Far = near, far
	c.projDirty = true
	c.viewProjDirty = true
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		// inverse orientation, then move the world opposite the camera
		rot := math3d.RotateZ(-c.Roll).
			Mul(math3d.RotateX(-c.Pitch)).
			Mul(math3d.RotateY(-c.Yaw))
		c.viewMatrix = rot.Mul(math3d.Translate(c.Position.Negate()))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		if c.Orthographic {
			h := c.OrthoSize
			w := h * c.AspectRatio
			c.projMatrix = math3d.Orthographic(-w, w, -h, h, c.Near, c.Far)
		} else {
			c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		}
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// LookAt makes the camera look at a target point with zero roll.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	c.SetRotation(math.Asin(dir.Y), math.Atan2(-dir.X, -dir.Z), 0)
}

// ViewportPointToRay returns the ray through viewport coordinates (u, v),
// where (0, 0) is the bottom-left and (1, 1) the top-right of the view.
func (c *Camera) ViewportPointToRay(u, v float64) Ray {
	inv := c.ViewProjectionMatrix().Inverse()
	x, y := 2*u-1, 2*v-1
	near := inv.MulVec3(math3d.V3(x, y, -1))
	far := inv.MulVec3(math3d.V3(x, y, 1))
	return Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

// Transformer snapshots the camera into a ProjectionTransformer.
func (c *Camera) Transformer() ProjectionTransformer {
	return NewProjectionTransformer(c.ViewMatrix(), c.ProjectionMatrix(), c.Width, c.Height)
}

// WorldToScreen transforms a world point to framebuffer coordinates with Y
// pointing down. Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, ndc.Z, true
}
