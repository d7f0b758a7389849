// Package metrics records per-run and per-frame dataset metrics. Sinks are
// write-only; a failing sink is logged by the caller and never changes what
// gets placed.
package metrics

import (
	"errors"

	"github.com/google/uuid"
)

// Definition describes one kind of metric.
type Definition struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Metric definitions reported by a composition run.
var (
	ForegroundPlacementInfo = Definition{
		ID:          uuid.MustParse("061E08CC-4428-4926-9933-A6732524B52B"),
		Name:        "foreground placement info",
		Description: "Info about each object placed in the foreground layer. Currently only includes label and orientation.",
	}
	BackgroundScaleRange = Definition{
		ID:          uuid.MustParse("4A55E55C-76E8-47C4-8A39-813E6833B04F"),
		Name:        "background scale range",
		Description: "The range of scale factors used to place background objects each frame",
	}
	AppParams = Definition{
		ID:          uuid.MustParse("3F06BCEC-1F23-4387-A1FD-5AF54EE29C16"),
		Name:        "app-params",
		Description: "The values from the app-params used in the simulation. Only triggered once per simulation.",
	}
	LightingInfo = Definition{
		ID:          uuid.MustParse("939248EE-668A-4E98-8E79-E7909F034A47"),
		Name:        "lighting info",
		Description: "Per-frame light color and orientation",
	}
)

// Definitions lists every definition a run may report against.
var Definitions = []Definition{ForegroundPlacementInfo, BackgroundScaleRange, AppParams, LightingInfo}

// Metric is one reported value. Value must be JSON-encodable.
type Metric struct {
	Definition uuid.UUID `json:"definition"`
	Frame      int       `json:"frame"`
	Value      any       `json:"value"`
}

// PlacementInfo is the value of a ForegroundPlacementInfo metric.
type PlacementInfo struct {
	LabelID   int        `json:"label_id"`
	LabelName string     `json:"label_name"`
	Rotation  [3]float64 `json:"rotation"` // Euler degrees
}

// ScaleRange is the value of a BackgroundScaleRange metric.
type ScaleRange struct {
	ScaleMin float64 `json:"scaleMin"`
	ScaleMax float64 `json:"scaleMax"`
}

// FrameSummary counts what one frame placed.
type FrameSummary struct {
	Frame              int `json:"frame"`
	ScaleIndex         int `json:"scale_index"`
	Foreground         int `json:"foreground"`
	Distractors        int `json:"distractors"`
	Occluders          int `json:"occluders"`
	Background         int `json:"background"`
	BackgroundExpected int `json:"background_expected"`
}

// Sink receives metrics. Implementations need not be safe for concurrent
// use.
type Sink interface {
	Report(m Metric) error
	RecordFrame(s FrameSummary) error
	Close() error
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Metric) error            { return nil }
func (discard) RecordFrame(FrameSummary) error { return nil }
func (discard) Close() error                   { return nil }

// Multi fans every call out to all sinks. Every sink is called even when an
// earlier one fails; the errors are joined.
type Multi []Sink

func (m Multi) Report(metric Metric) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Report(metric))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordFrame(f FrameSummary) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.RecordFrame(f))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
