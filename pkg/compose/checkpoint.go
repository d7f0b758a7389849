package compose

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/taigrr/synthscene/pkg/curriculum"
)

// Checkpoint is the persisted curriculum position: prefab, out-of-plane,
// in-plane and scale indices.
type Checkpoint struct {
	Curriculum [4]int `json:"curriculum"`
}

// Checkpoint returns the current curriculum position.
func (c *Composer) Checkpoint() Checkpoint {
	return Checkpoint{Curriculum: c.state.Ints()}
}

// Restore continues the curriculum from cp. Indices outside the tables are
// rejected.
func (c *Composer) Restore(cp Checkpoint) error {
	s := curriculum.FromInts(cp.Curriculum)
	if !s.InRange(c.fgSolver.Lengths(), len(c.params.ScaleFactors)) {
		return fmt.Errorf("compose: checkpoint %v does not fit the curriculum tables", s)
	}
	c.state = s
	c.framesAtScale = 0
	return nil
}

// SaveCheckpoint writes cp as JSON.
func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(path string) (Checkpoint, error) {
	var cp Checkpoint
	data, err := os.ReadFile(path)
	if err != nil {
		return cp, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	return cp, nil
}
