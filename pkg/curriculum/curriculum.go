// Package curriculum implements the odometer over foreground identity,
// out-of-plane rotation and in-plane rotation that decides what the next
// foreground object looks like.
package curriculum

import (
	"fmt"

	"github.com/taigrr/synthscene/pkg/math3d"
)

// State is the curriculum position. ScaleIndex is advanced by the caller,
// once per frame batch.
type State struct {
	PrefabIndex             int `json:"prefab_index"`
	OutOfPlaneRotationIndex int `json:"out_of_plane_rotation_index"`
	InPlaneRotationIndex    int `json:"in_plane_rotation_index"`
	ScaleIndex              int `json:"scale_index"`
}

// Lengths holds the sizes of the three tables the odometer runs over.
type Lengths struct {
	Prefabs    int
	OutOfPlane int
	InPlane    int
}

// Period is the number of advances before the 3-tuple repeats.
func (l Lengths) Period() int {
	return l.Prefabs * l.OutOfPlane * l.InPlane
}

// Validate reports a table of length zero.
func (l Lengths) Validate() error {
	if l.Prefabs <= 0 || l.OutOfPlane <= 0 || l.InPlane <= 0 {
		return fmt.Errorf("curriculum: empty table in %+v", l)
	}
	return nil
}

// Advance moves to the next curriculum position. PrefabIndex turns fastest;
// each wrap carries into the next dimension. wrapped is true when the whole
// 3-tuple rolled over to zero. ScaleIndex is never touched.
func Advance(s State, l Lengths) (next State, wrapped bool) {
	s.PrefabIndex++
	if s.PrefabIndex < l.Prefabs {
		return s, false
	}

	s.PrefabIndex = 0
	s.OutOfPlaneRotationIndex++
	if s.OutOfPlaneRotationIndex < l.OutOfPlane {
		return s, false
	}

	s.OutOfPlaneRotationIndex = 0
	s.InPlaneRotationIndex++
	if s.InPlaneRotationIndex < l.InPlane {
		return s, false
	}

	s.InPlaneRotationIndex = 0
	return s, true
}

// ComposeRotation returns the foreground orientation for s: the in-plane
// rotation applied after the out-of-plane one.
func ComposeRotation(s State, outOfPlane, inPlane []math3d.Quat) math3d.Quat {
	return inPlane[s.InPlaneRotationIndex].Mul(outOfPlane[s.OutOfPlaneRotationIndex])
}

// Done reports the terminal condition: the scale table is exhausted.
func (s State) Done(scaleCount int) bool {
	return s.ScaleIndex >= scaleCount
}

// InRange reports whether every index is inside its table.
func (s State) InRange(l Lengths, scaleCount int) bool {
	return s.PrefabIndex >= 0 && s.PrefabIndex < l.Prefabs &&
		s.OutOfPlaneRotationIndex >= 0 && s.OutOfPlaneRotationIndex < l.OutOfPlane &&
		s.InPlaneRotationIndex >= 0 && s.InPlaneRotationIndex < l.InPlane &&
		s.ScaleIndex >= 0 && s.ScaleIndex <= scaleCount
}

// Ints returns the checkpoint form of s.
func (s State) Ints() [4]int {
	return [4]int{s.PrefabIndex, s.OutOfPlaneRotationIndex, s.InPlaneRotationIndex, s.ScaleIndex}
}

// FromInts restores a State from Ints.
func FromInts(v [4]int) State {
	return State{
		PrefabIndex:             v[0],
		OutOfPlaneRotationIndex: v[1],
		InPlaneRotationIndex:    v[2],
		ScaleIndex:              v[3],
	}
}

func (s State) String() string {
	return fmt.Sprintf("prefab=%d out=%d in=%d scale=%d",
		s.PrefabIndex, s.OutOfPlaneRotationIndex, s.InPlaneRotationIndex, s.ScaleIndex)
}
