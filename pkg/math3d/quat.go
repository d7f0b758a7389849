package math3d

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Quat is a rotation quaternion. The zero value is not a valid rotation;
// use QuatIdentity.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatAngleAxis returns a rotation of deg degrees around axis.
func QuatAngleAxis(deg float64, axis Vec3) Quat {
	axis = axis.Normalize()
	s, c := math.Sincos(deg * deg2rad / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// QuatEuler returns the rotation that applies z degrees around Z, then x
// around X, then y around Y.
func QuatEuler(x, y, z float64) Quat {
	qx := QuatAngleAxis(x, V3(1, 0, 0))
	qy := QuatAngleAxis(y, V3(0, 1, 0))
	qz := QuatAngleAxis(z, V3(0, 0, 1))
	return qy.Mul(qx).Mul(qz)
}

// Mul returns the Hamilton product a * b: the rotation b followed by a.
func (a Quat) Mul(b Quat) Quat {
	return Quat{
		a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (a Quat) Conjugate() Quat {
	return Quat{-a.X, -a.Y, -a.Z, a.W}
}

// Len returns the quaternion norm.
func (a Quat) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z + a.W*a.W)
}

// Normalize returns the unit quaternion. The zero quaternion normalizes to
// the identity.
func (a Quat) Normalize() Quat {
	l := a.Len()
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{a.X / l, a.Y / l, a.Z / l, a.W / l}
}

// Rotate rotates v by the quaternion.
func (a Quat) Rotate(v Vec3) Vec3 {
	u := V3(a.X, a.Y, a.Z)
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(a.W)).Add(u.Cross(t))
}

// Mat4 returns the rotation as a column-major matrix.
func (a Quat) Mat4() Mat4 {
	x, y, z, w := a.X, a.Y, a.Z, a.W
	return Mat4{
		1 - 2*(y*y+z*z), 2 * (x*y + w*z), 2 * (x*z - w*y), 0,
		2 * (x*y - w*z), 1 - 2*(x*x+z*z), 2 * (y*z + w*x), 0,
		2 * (x*z + w*y), 2 * (y*z - w*x), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

// Euler returns the angles in degrees such that QuatEuler(x, y, z)
// reproduces the rotation.
func (a Quat) Euler() (x, y, z float64) {
	m := a.Normalize().Mat4()
	sx := -m.get(1, 2)
	switch {
	case sx >= 1:
		x = 90
	case sx <= -1:
		x = -90
	default:
		x = math.Asin(sx) * rad2deg
	}
	if math.Abs(sx) < 1-1e-9 {
		y = math.Atan2(m.get(0, 2), m.get(2, 2)) * rad2deg
		z = math.Atan2(m.get(1, 0), m.get(1, 1)) * rad2deg
		return x, y, z
	}
	// gimbal lock: fold the roll into yaw
	y = math.Atan2(-m.get(2, 0), m.get(0, 0)) * rad2deg
	return x, y, 0
}

// Equivalent reports whether a and b represent the same rotation within eps.
func (a Quat) Equivalent(b Quat, eps float64) bool {
	d := math.Abs(a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W)
	return d >= 1-eps
}

func (m Mat4) get(row, col int) float64 {
	return m[row+col*4]
}

// QuatFromMat4 returns the rotation held in the upper 3x3 of m, which must
// be orthonormal.
func QuatFromMat4(m Mat4) Quat {
	m00, m11, m22 := m.get(0, 0), m.get(1, 1), m.get(2, 2)
	var q Quat
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = Quat{
			X: (m.get(2, 1) - m.get(1, 2)) / s,
			Y: (m.get(0, 2) - m.get(2, 0)) / s,
			Z: (m.get(1, 0) - m.get(0, 1)) / s,
			W: s / 4,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{
			X: s / 4,
			Y: (m.get(0, 1) + m.get(1, 0)) / s,
			Z: (m.get(0, 2) + m.get(2, 0)) / s,
			W: (m.get(2, 1) - m.get(1, 2)) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{
			X: (m.get(0, 1) + m.get(1, 0)) / s,
			Y: s / 4,
			Z: (m.get(1, 2) + m.get(2, 1)) / s,
			W: (m.get(0, 2) - m.get(2, 0)) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{
			X: (m.get(0, 2) + m.get(2, 0)) / s,
			Y: (m.get(1, 2) + m.get(2, 1)) / s,
			Z: s / 4,
			W: (m.get(1, 0) - m.get(0, 1)) / s,
		}
	}
	return q.Normalize()
}
