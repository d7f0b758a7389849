package placement

import (
	"math"
	"testing"

	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/rng"
)

const eps = 1e-6

// 640x480 target over a 10-unit-tall view: 48 pixels per unit.
func orthoCamera() *render.Camera {
	return render.NewOrthographicCamera(640, 480, 5)
}

func perspectiveCamera() *render.Camera {
	return render.NewCamera(640, 480)
}

func box(name string, extents math3d.Vec3) Prefab {
	return Prefab{Name: name, Bounds: render.AABBFromCenterExtents(math3d.Zero3(), extents)}
}

func TestProjectedAreaOrthographic(t *testing.T) {
	tr := orthoCamera().Transformer()
	unit := render.AABBFromCenterExtents(math3d.Zero3(), math3d.One3())
	pos := math3d.V3(0, 0, -10)

	tests := []struct {
		name string
		rot  math3d.Quat
		want float64
	}{
		{"facing camera", math3d.QuatIdentity(), 96 * 96},
		{"rolled", math3d.QuatAngleAxis(90, math3d.V3(0, 0, 1)), 96 * 96},
		{"turned 45 degrees", math3d.QuatAngleAxis(45, math3d.V3(0, 1, 0)), 2 * 4 * math.Sqrt2 / 2 * 48 * 48},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProjectedArea(tr, pos, tc.rot, unit, math3d.One3())
			if math.Abs(got-tc.want) > 1e-6*tc.want {
				t.Errorf("ProjectedArea = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProjectedAreaSixTriangles(t *testing.T) {
	tr := perspectiveCamera().Transformer()
	r := rng.New(7)
	for range 200 {
		pos := math3d.V3(r.Range(-3, 3), r.Range(-3, 3), r.Range(-15, -6))
		bounds := render.AABBFromCenterExtents(math3d.Zero3(), math3d.V3(r.Range(0.1, 2), r.Range(0.1, 2), r.Range(0.1, 2)))
		area, tris := projectedArea(tr, pos, r.Rotation(), bounds, math3d.One3())
		if tris != 6 {
			t.Fatalf("summed %d triangles, want 6", tris)
		}
		if area < 0 {
			t.Fatalf("negative area %v", area)
		}
	}
}

func TestProjectedAreaQuadraticInScale(t *testing.T) {
	tr := orthoCamera().Transformer()
	r := rng.New(11)
	for range 100 {
		pos := math3d.V3(r.Range(-3, 3), r.Range(-3, 3), -10)
		rot := r.Rotation()
		bounds := render.AABBFromCenterExtents(math3d.Zero3(), math3d.V3(r.Range(0.1, 1), r.Range(0.1, 1), r.Range(0.1, 1)))
		s := math3d.One3().Scale(r.Range(0.5, 2))

		a1 := ProjectedArea(tr, pos, rot, bounds, s)
		a2 := ProjectedArea(tr, pos, rot, bounds, s.Scale(2))
		if math.Abs(a2-4*a1) > 1e-6*a2 {
			t.Fatalf("doubling scale: %v -> %v, want %v", a1, a2, 4*a1)
		}
	}
}

func TestScaleToMatchArea(t *testing.T) {
	t.Run("orthographic round trip", func(t *testing.T) {
		tr := orthoCamera().Transformer()
		r := rng.New(3)
		for range 100 {
			pos := math3d.V3(r.Range(-3, 3), r.Range(-3, 3), -10)
			rot := r.Rotation()
			bounds := render.AABBFromCenterExtents(math3d.Zero3(), math3d.V3(r.Range(0.1, 1), r.Range(0.1, 1), r.Range(0.1, 1)))
			target := r.Range(100, 20000)

			s := ScaleToMatchArea(tr, pos, rot, bounds, target)
			got := ProjectedArea(tr, pos, rot, bounds, math3d.One3().Scale(s))
			if math.Abs(got-target) > 1e-6*target {
				t.Fatalf("area at matched scale = %v, want %v", got, target)
			}
		}
	})

	t.Run("perspective small object", func(t *testing.T) {
		tr := perspectiveCamera().Transformer()
		bounds := render.AABBFromCenterExtents(math3d.Zero3(), math3d.V3(0.05, 0.05, 0.05))
		pos := math3d.V3(0.5, -0.5, -10)
		rot := math3d.QuatEuler(30, 40, 10)

		unit := ProjectedArea(tr, pos, rot, bounds, math3d.One3())
		s := ScaleToMatchArea(tr, pos, rot, bounds, 4*unit)
		got := ProjectedArea(tr, pos, rot, bounds, math3d.One3().Scale(s))
		if math.Abs(got-4*unit) > 0.03*4*unit {
			t.Errorf("area at matched scale = %v, want about %v", got, 4*unit)
		}
	})

	t.Run("degenerate", func(t *testing.T) {
		tr := orthoCamera().Transformer()
		// flat in XZ, seen edge-on
		flat := render.AABBFromCenterExtents(math3d.Zero3(), math3d.V3(1, 0, 1))
		if s := ScaleToMatchArea(tr, math3d.V3(0, 0, -10), math3d.QuatIdentity(), flat, 100); s != 0 {
			t.Errorf("scale = %v, want 0", s)
		}
	})
}

func TestPlacementRegion(t *testing.T) {
	halfH := 10 * math.Tan(math.Pi/6)
	halfW := halfH * 640 / 480

	tests := []struct {
		name string
		pos  math3d.Vec3
		want math3d.Rect
	}{
		{"origin", math3d.Zero3(), math3d.RectMinMax(-halfW, -halfH, halfW, halfH)},
		{"moved along view axis", math3d.V3(0, 0, 5), math3d.RectMinMax(-halfW, -halfH, halfW, halfH)},
		{"moved sideways", math3d.V3(1, 2, 0), math3d.RectMinMax(1-halfW, 2-halfH, 1+halfW, 2+halfH)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cam := perspectiveCamera()
			cam.SetPosition(tc.pos)
			got := PlacementRegion(cam, 10)
			if got.Min.Sub(tc.want.Min).Len() > eps || got.Max.Sub(tc.want.Max).Len() > eps {
				t.Errorf("region = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("orthographic", func(t *testing.T) {
		got := PlacementRegion(orthoCamera(), 12)
		want := math3d.RectMinMax(-20.0/3, -5, 20.0/3, 5)
		if got.Min.Sub(want.Min).Len() > eps || got.Max.Sub(want.Max).Len() > eps {
			t.Errorf("region = %v, want %v", got, want)
		}
	})
}

func TestPlaneDepth(t *testing.T) {
	cam := perspectiveCamera()
	cam.SetPosition(math3d.V3(0, 0, 3))
	if got := PlaneDepth(cam, 10); got != -7 {
		t.Errorf("PlaneDepth = %v, want -7", got)
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b math3d.Rect
		want float64
	}{
		{"disjoint", math3d.RectMinMax(0, 0, 1, 1), math3d.RectMinMax(2, 2, 3, 3), 0},
		{"touching", math3d.RectMinMax(0, 0, 1, 1), math3d.RectMinMax(1, 0, 2, 1), 0},
		{"contained", math3d.RectMinMax(0, 0, 10, 10), math3d.RectMinMax(2, 2, 3, 3), 1},
		{"identical", math3d.RectMinMax(0, 0, 2, 2), math3d.RectMinMax(0, 0, 2, 2), 1},
		{"quarter", math3d.RectMinMax(0, 0, 2, 2), math3d.RectMinMax(1, 1, 3, 3), 0.25},
		{"smaller decides", math3d.RectMinMax(0, 0, 4, 4), math3d.RectMinMax(3, 0, 5, 2), 0.5},
		{"degenerate", math3d.RectMinMax(0, 0, 0, 5), math3d.RectMinMax(0, 0, 5, 5), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ab, ba := Overlap(tc.a, tc.b), Overlap(tc.b, tc.a)
			if math.Abs(ab-tc.want) > eps {
				t.Errorf("Overlap(a, b) = %v, want %v", ab, tc.want)
			}
			if ab != ba {
				t.Errorf("Overlap not symmetric: %v vs %v", ab, ba)
			}
		})
	}
}

func TestCropping(t *testing.T) {
	region := math3d.RectMinMax(0, 0, 10, 10)
	tests := []struct {
		name string
		bbox math3d.Rect
		want float64
	}{
		{"inside", math3d.RectMinMax(1, 1, 3, 3), 0},
		{"half out", math3d.RectMinMax(-1, 1, 1, 3), 0.5},
		{"outside", math3d.RectMinMax(20, 20, 21, 21), 1},
		{"covers region", math3d.RectMinMax(-5, -5, 15, 15), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cropping(tc.bbox, region); math.Abs(got-tc.want) > eps {
				t.Errorf("Cropping = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	unit := render.AABBFromCenterExtents(math3d.Zero3(), math3d.One3())

	got := BoundingBox(math3d.V3(1, 2, -10), math3d.QuatIdentity(), 2, unit)
	want := math3d.RectMinMax(-1, 0, 3, 4)
	if got.Min.Sub(want.Min).Len() > eps || got.Max.Sub(want.Max).Len() > eps {
		t.Errorf("BoundingBox = %v, want %v", got, want)
	}

	got = BoundingBox(math3d.Zero3(), math3d.QuatAngleAxis(45, math3d.V3(0, 0, 1)), 1, unit)
	want = math3d.RectMinMax(-math.Sqrt2, -math.Sqrt2, math.Sqrt2, math.Sqrt2)
	if got.Min.Sub(want.Min).Len() > eps || got.Max.Sub(want.Max).Len() > eps {
		t.Errorf("rotated BoundingBox = %v, want %v", got, want)
	}
}

func TestForegroundScale(t *testing.T) {
	unit := render.AABBFromCenterExtents(math3d.Zero3(), math3d.One3())
	if got := ForegroundScale(1, unit); math.Abs(got-1/math.Sqrt(3)) > eps {
		t.Errorf("ForegroundScale = %v, want %v", got, 1/math.Sqrt(3))
	}
	if got := ForegroundScale(0.5, unit); math.Abs(got-0.5/math.Sqrt(3)) > eps {
		t.Errorf("ForegroundScale(0.5) = %v", got)
	}
	if got := ForegroundScale(1, render.AABB{}); got != 0 {
		t.Errorf("ForegroundScale of empty bounds = %v, want 0", got)
	}
}

func BenchmarkProjectedArea(b *testing.B) {
	tr := perspectiveCamera().Transformer()
	bounds := render.AABBFromCenterExtents(math3d.Zero3(), math3d.V3(1, 0.5, 0.25))
	pos := math3d.V3(1, 1, -10)
	rot := math3d.QuatEuler(30, 45, 0)

	for b.Loop() {
		ProjectedArea(tr, pos, rot, bounds, math3d.One3())
	}
}
