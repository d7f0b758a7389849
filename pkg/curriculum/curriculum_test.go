package curriculum

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/synthscene/pkg/math3d"
)

func TestAdvanceOdometer(t *testing.T) {
	l := Lengths{Prefabs: 2, OutOfPlane: 3, InPlane: 2}

	tests := []struct {
		name    string
		in      State
		want    State
		wrapped bool
	}{
		{"prefab turns", State{}, State{PrefabIndex: 1}, false},
		{"carry into out-of-plane", State{PrefabIndex: 1}, State{OutOfPlaneRotationIndex: 1}, false},
		{"carry into in-plane", State{PrefabIndex: 1, OutOfPlaneRotationIndex: 2}, State{InPlaneRotationIndex: 1}, false},
		{"full wrap", State{PrefabIndex: 1, OutOfPlaneRotationIndex: 2, InPlaneRotationIndex: 1}, State{}, true},
		{"scale untouched", State{PrefabIndex: 1, OutOfPlaneRotationIndex: 2, InPlaneRotationIndex: 1, ScaleIndex: 4}, State{ScaleIndex: 4}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, wrapped := Advance(tc.in, l)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wrapped, wrapped)
		})
	}
}

func TestAdvancePeriod(t *testing.T) {
	for _, l := range []Lengths{{1, 1, 1}, {3, 12, 36}, {5, 42, 36}, {2, 1, 7}} {
		seen := map[State]bool{}
		s := State{ScaleIndex: 2}
		wraps := 0
		for i := range l.Period() {
			require.True(t, s.InRange(l, 3), "step %d: %v", i, s)
			seen[s] = true
			var w bool
			s, w = Advance(s, l)
			if w {
				wraps++
				assert.Equal(t, l.Period()-1, i, "wrapped early for %+v", l)
			}
		}
		assert.Len(t, seen, l.Period(), "every tuple visited once for %+v", l)
		assert.Equal(t, 1, wraps)
		assert.Equal(t, State{ScaleIndex: 2}, s)
	}
}

func TestLengthsValidate(t *testing.T) {
	assert.NoError(t, Lengths{1, 12, 36}.Validate())
	assert.Error(t, Lengths{0, 12, 36}.Validate())
	assert.Error(t, Lengths{1, 0, 36}.Validate())
	assert.Error(t, Lengths{1, 12, -1}.Validate())
}

func TestComposeRotationOrder(t *testing.T) {
	out := []math3d.Quat{math3d.QuatIdentity(), math3d.QuatAngleAxis(90, math3d.V3(1, 0, 0))}
	in := []math3d.Quat{math3d.QuatIdentity(), math3d.QuatAngleAxis(90, math3d.V3(0, 0, 1))}
	q := ComposeRotation(State{OutOfPlaneRotationIndex: 1, InPlaneRotationIndex: 1}, out, in)

	// +Y pitched onto +Z stays there when rolled about Z
	got := q.Rotate(math3d.V3(0, 1, 0))
	want := math3d.V3(0, 0, 1)
	if got.Sub(want).Len() > 1e-9 {
		t.Errorf("rotated +Y = %v, want %v", got, want)
	}
	// +X is untouched by the pitch, then rolled onto +Y
	got = q.Rotate(math3d.V3(1, 0, 0))
	want = math3d.V3(0, 1, 0)
	if got.Sub(want).Len() > 1e-9 {
		t.Errorf("rotated +X = %v, want %v", got, want)
	}
}

func TestRotationTables(t *testing.T) {
	tests := []struct {
		name  string
		table []math3d.Quat
		size  int
	}{
		{"in-plane", InPlaneRotations(), 36},
		{"out-of-plane", OutOfPlaneRotations(), 12},
		{"subdivided out-of-plane", SubdividedOutOfPlaneRotations(), 42},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, tc.table, tc.size)
			for i, q := range tc.table {
				if math.Abs(q.Len()-1) > 1e-12 {
					t.Errorf("entry %d is not unit: %v", i, q.Len())
				}
			}
		})
	}

	// each out-of-plane entry shows the camera a different side
	for _, table := range [][]math3d.Quat{OutOfPlaneRotations(), SubdividedOutOfPlaneRotations()} {
		views := make([]math3d.Vec3, len(table))
		for i, q := range table {
			views[i] = q.Conjugate().Rotate(math3d.V3(0, 0, 1))
		}
		for i := range views {
			for j := range i {
				if views[i].Sub(views[j]).Len() < 0.1 {
					t.Errorf("entries %d and %d face the camera the same way", i, j)
				}
			}
		}
	}

	// in-plane entries only roll about the view axis
	for i, q := range InPlaneRotations() {
		got := q.Rotate(math3d.V3(0, 0, 1))
		if got.Sub(math3d.V3(0, 0, 1)).Len() > 1e-12 {
			t.Errorf("in-plane entry %d moves the view axis to %v", i, got)
		}
	}
}

func TestStateCheckpointForm(t *testing.T) {
	s := State{PrefabIndex: 3, OutOfPlaneRotationIndex: 7, InPlaneRotationIndex: 20, ScaleIndex: 1}
	assert.Equal(t, [4]int{3, 7, 20, 1}, s.Ints())
	if diff := cmp.Diff(s, FromInts(s.Ints())); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "prefab=3 out=7 in=20 scale=1", s.String())
}

func TestStateDoneAndInRange(t *testing.T) {
	l := Lengths{2, 12, 36}
	assert.False(t, State{ScaleIndex: 1}.Done(2))
	assert.True(t, State{ScaleIndex: 2}.Done(2))
	assert.True(t, State{}.Done(0))

	assert.True(t, State{ScaleIndex: 2}.InRange(l, 2))
	assert.False(t, State{ScaleIndex: 3}.InRange(l, 2))
	assert.False(t, State{PrefabIndex: 2}.InRange(l, 2))
	assert.False(t, State{InPlaneRotationIndex: -1}.InRange(l, 2))
}
