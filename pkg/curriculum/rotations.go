package curriculum

import "github.com/taigrr/synthscene/pkg/math3d"

// InPlaneRotations returns 36 rotations of 10 degree steps about the view
// axis.
func InPlaneRotations() []math3d.Quat {
	out := make([]math3d.Quat, 36)
	for i := range out {
		out[i] = math3d.QuatAngleAxis(float64(i*10), math3d.V3(0, 0, 1))
	}
	return out
}

// OutOfPlaneRotations returns the 12 orientations pointing at the vertices
// of an icosahedron.
func OutOfPlaneRotations() []math3d.Quat {
	out := make([]math3d.Quat, 12)
	out[0] = math3d.QuatEuler(0, 0, 0)
	for i := range 10 {
		x := 60.0
		if i%2 != 0 {
			x = 120
		}
		out[i+1] = math3d.QuatEuler(x, float64(i*36), 0)
	}
	out[11] = math3d.QuatEuler(180, 0, 0)
	return out
}

// SubdividedOutOfPlaneRotations returns 42 orientations: the icosahedron
// vertices plus the midpoint of every edge.
func SubdividedOutOfPlaneRotations() []math3d.Quat {
	out := make([]math3d.Quat, 0, 42)

	// rows at 60 and 120 degrees from the top
	for s := range 10 {
		out = append(out,
			math3d.QuatEuler(60, float64(s*36), 0),
			math3d.QuatEuler(120, float64(s*36), 0))
	}
	// equator, halfway between those rows
	for s := range 10 {
		out = append(out, math3d.QuatEuler(90, float64(s*36+18), 0))
	}
	// halfway between the 60/120 rows and the poles
	for s := range 10 {
		x := 30.0
		if s%2 != 0 {
			x = 150
		}
		out = append(out, math3d.QuatEuler(x, float64(s*36), 0))
	}
	out = append(out, math3d.QuatEuler(0, 0, 0), math3d.QuatEuler(180, 0, 0))
	return out
}
