package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestQuatAngleAxisRotate(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		axis Vec3
		in   Vec3
		want Vec3
	}{
		{"z 90", 90, V3(0, 0, 1), V3(1, 0, 0), V3(0, 1, 0)},
		{"z 180", 180, V3(0, 0, 1), V3(1, 0, 0), V3(-1, 0, 0)},
		{"x 90", 90, V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{"y 90", 90, V3(0, 1, 0), V3(0, 0, 1), V3(1, 0, 0)},
		{"unnormalized axis", 90, V3(0, 0, 5), V3(1, 0, 0), V3(0, 1, 0)},
		{"zero angle", 0, V3(1, 1, 1), V3(3, -2, 1), V3(3, -2, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := QuatAngleAxis(tc.deg, tc.axis).Rotate(tc.in)
			if !vecNear(got, tc.want, 1e-9) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestQuatMat4MatchesRotate(t *testing.T) {
	q := QuatEuler(60, 36, 15)
	v := V3(0.3, -1.2, 2.5)

	byQuat := q.Rotate(v)
	byMat := q.Mat4().MulVec3(v)
	if !vecNear(byQuat, byMat, 1e-9) {
		t.Errorf("quat rotate %v != matrix rotate %v", byQuat, byMat)
	}
}

func TestQuatMulOrder(t *testing.T) {
	// (a*b) applies b first.
	a := QuatAngleAxis(90, V3(0, 0, 1))
	b := QuatAngleAxis(90, V3(1, 0, 0))
	v := V3(0, 1, 0)

	got := a.Mul(b).Rotate(v)
	want := a.Rotate(b.Rotate(v))
	if !vecNear(got, want, 1e-9) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQuatEulerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
	}{
		{"identity", 0, 0, 0},
		{"pitch only", 30, 0, 0},
		{"yaw only", 0, 72, 0},
		{"roll only", 0, 0, -45},
		{"mixed", 25, 144, 70},
		{"negative", -60, -36, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := QuatEuler(tc.x, tc.y, tc.z)
			x, y, z := q.Euler()
			back := QuatEuler(x, y, z)
			if !q.Equivalent(back, 1e-9) {
				t.Errorf("Euler() = (%v, %v, %v) does not reproduce (%v, %v, %v)", x, y, z, tc.x, tc.y, tc.z)
			}
		})
	}
}

func TestQuatEulerGimbal(t *testing.T) {
	q := QuatEuler(90, 40, 0)
	x, y, z := q.Euler()
	if math.Abs(x-90) > 1e-6 {
		t.Errorf("x = %v, want 90", x)
	}
	if z != 0 {
		t.Errorf("z = %v, want 0 at gimbal lock", z)
	}
	if !q.Equivalent(QuatEuler(x, y, z), 1e-9) {
		t.Errorf("gimbal decomposition does not reproduce rotation")
	}
}

func TestQuatNormalizeZero(t *testing.T) {
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion normalized to %v, want identity", got)
	}
}

func TestTRS(t *testing.T) {
	q := QuatAngleAxis(90, V3(0, 0, 1))
	m := TRS(V3(10, 0, -5), q, V3(2, 3, 4))

	// x axis scaled by 2, rotated to +y, then translated
	got := m.MulVec3(V3(1, 0, 0))
	want := V3(10, 2, -5)
	if !vecNear(got, want, 1e-9) {
		t.Errorf("got %v, want %v", got, want)
	}

	expected := Translate(V3(10, 0, -5)).Mul(q.Mat4()).Mul(Scale(V3(2, 3, 4)))
	for i := range m {
		if math.Abs(m[i]-expected[i]) > eps {
			t.Fatalf("TRS[%d] = %v, want %v", i, m[i], expected[i])
		}
	}
}

func TestMat4Inverse(t *testing.T) {
	m := TRS(V3(1, 2, 3), QuatEuler(20, 30, 40), V3(2, 2, 2))
	p := V3(-4, 5, 0.5)

	got := m.Inverse().MulVec3(m.MulVec3(p))
	if !vecNear(got, p, 1e-9) {
		t.Errorf("inverse round trip = %v, want %v", got, p)
	}
}

func TestMat4InverseSingular(t *testing.T) {
	if got := Scale(V3(0, 1, 1)).Inverse(); got != Identity() {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestTriangleArea(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Vec2
		want    float64
	}{
		{"unit right", V2(0, 0), V2(1, 0), V2(0, 1), 0.5},
		{"clockwise", V2(0, 0), V2(0, 1), V2(1, 0), 0.5},
		{"degenerate", V2(0, 0), V2(1, 1), V2(2, 2), 0},
		{"large", V2(-2, -2), V2(2, -2), V2(2, 2), 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TriangleArea(tc.a, tc.b, tc.c); math.Abs(got-tc.want) > eps {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVec2Len(t *testing.T) {
	tests := []struct {
		name string
		v    Vec2
		want float64
	}{
		{"zero", V2(0, 0), 0},
		{"axis", V2(0, -2), 2},
		{"pythagorean", V2(3, 4), 5},
		{"difference", V2(4, 6).Sub(V2(1, 2)), 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Len(); math.Abs(got-tc.want) > eps {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	a := RectMinMax(0, 0, 4, 4)

	tests := []struct {
		name     string
		b        Rect
		wantArea float64
	}{
		{"contained", RectMinMax(1, 1, 2, 2), 1},
		{"partial", RectMinMax(2, 2, 6, 6), 4},
		{"touching edge", RectMinMax(4, 0, 8, 4), 0},
		{"disjoint", RectMinMax(10, 10, 12, 12), 0},
		{"same", a, 16},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Intersect(tc.b)
			if math.Abs(got.Area()-tc.wantArea) > eps {
				t.Errorf("area = %v, want %v", got.Area(), tc.wantArea)
			}
			if got.Width() < 0 || got.Height() < 0 {
				t.Errorf("negative extent: %+v", got)
			}
		})
	}
}

func TestRectEmptyAndContains(t *testing.T) {
	r := RectMinMax(-1, -1, 1, 1)
	if r.Empty() {
		t.Error("non-degenerate rect reported empty")
	}
	if !RectMinMax(0, 0, 0, 5).Empty() {
		t.Error("zero-width rect should be empty")
	}
	if !r.Contains(V2(1, 0)) {
		t.Error("edge point should be contained")
	}
	if r.Contains(V2(1.5, 0)) {
		t.Error("outside point should not be contained")
	}
	if c := r.Center(); c != V2(0, 0) {
		t.Errorf("center = %v", c)
	}
}

func TestQuatFromMat4(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
	}{
		{"identity", QuatIdentity()},
		{"x 180", QuatAngleAxis(180, V3(1, 0, 0))},
		{"y 180", QuatAngleAxis(180, V3(0, 1, 0))},
		{"z 180", QuatAngleAxis(180, V3(0, 0, 1))},
		{"mixed", QuatEuler(25, 144, 70)},
		{"icosahedral", QuatEuler(120, 288, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := QuatFromMat4(tc.q.Mat4())
			if !got.Equivalent(tc.q, 1e-9) {
				t.Errorf("got %v, want %v", got, tc.q)
			}
		})
	}
}
