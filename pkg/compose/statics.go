// Package compose runs the per-frame scene composition: it resets the
// instance caches, runs the foreground, occluder and background solvers,
// applies the placements to pooled instances and reports metrics.
package compose

import (
	"errors"
	"fmt"

	"github.com/taigrr/synthscene/internal/config"
	"github.com/taigrr/synthscene/pkg/curriculum"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/scene"
)

// ErrFinished is returned by Step once the run has reached its terminal
// condition.
var ErrFinished = errors.New("compose: run finished")

// ConfigError reports statics the composer cannot run with.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("compose: invalid %s: %s", e.Field, e.Reason)
}

// Statics is the read-only configuration of a run.
type Statics struct {
	Foreground []*scene.Prefab
	Background []*scene.Prefab
	Textures   *render.TextureCatalog // may be nil or empty

	// Labels maps foreground prefabs to label ids. When nil, labels are
	// derived from the foreground prefab names.
	Labels []Label

	// Rotation tables; nil selects the stock tables.
	OutOfPlane []math3d.Quat
	InPlane    []math3d.Quat

	Params *config.AppParams // nil selects config.Default
}

// withDefaults fills the optional fields.
func (s Statics) withDefaults() Statics {
	if s.OutOfPlane == nil {
		s.OutOfPlane = curriculum.OutOfPlaneRotations()
	}
	if s.InPlane == nil {
		s.InPlane = curriculum.InPlaneRotations()
	}
	if s.Params == nil {
		s.Params = config.Default()
	}
	if s.Labels == nil {
		names := make([]string, len(s.Foreground))
		for i, p := range s.Foreground {
			if p != nil {
				names[i] = p.Name
			}
		}
		s.Labels = DeriveLabels(names)
	}
	return s
}

// Validate returns a *ConfigError for statics no frame can be composed
// from.
func (s Statics) Validate() error {
	if len(s.Foreground) == 0 {
		return &ConfigError{Field: "foreground", Reason: "no prefabs"}
	}
	if len(s.Background) == 0 {
		return &ConfigError{Field: "background", Reason: "no prefabs"}
	}
	if len(s.OutOfPlane) == 0 {
		return &ConfigError{Field: "out-of-plane rotations", Reason: "empty table"}
	}
	if len(s.InPlane) == 0 {
		return &ConfigError{Field: "in-plane rotations", Reason: "empty table"}
	}
	if s.Params == nil {
		return &ConfigError{Field: "params", Reason: "missing"}
	}
	if err := s.Params.Validate(); err != nil {
		return &ConfigError{Field: "params", Reason: err.Error()}
	}
	return nil
}
