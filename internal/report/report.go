// Package report summarizes a composition run from its per-frame counts
// and draws them as PNG and HTML charts.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/taigrr/synthscene/pkg/metrics"
)

// Output file names written by Write.
const (
	SummaryFile    = "summary.json"
	CountsPNGFile  = "counts.png"
	CountsHTMLFile = "counts.html"
)

// ErrNoFrames is returned when there is nothing to report.
var ErrNoFrames = errors.New("report: no frames recorded")

// Stats describes one per-frame count over the run.
type Stats struct {
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Summary is the content of summary.json.
type Summary struct {
	Frames      int   `json:"frames"`
	Foreground  Stats `json:"foreground"`
	Distractors Stats `json:"distractors"`
	Occluders   Stats `json:"occluders"`
	Background  Stats `json:"background"`

	// BackgroundShortfall is the number of grid cells left without an
	// object over the whole run.
	BackgroundShortfall int `json:"background_shortfall"`
	// FramesPerScale counts frames per scale index, in index order.
	FramesPerScale []int `json:"frames_per_scale"`
}

func stats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	s := Stats{Min: int(values[0]), Max: int(values[0])}
	for _, v := range values {
		s.Total += int(v)
		s.Min = min(s.Min, int(v))
		s.Max = max(s.Max, int(v))
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		s.StdDev = 0
	}
	return s
}

// series extracts one count per frame.
func series(frames []metrics.FrameSummary, f func(metrics.FrameSummary) int) []float64 {
	out := make([]float64, len(frames))
	for i, fr := range frames {
		out[i] = float64(f(fr))
	}
	return out
}

func foreground(f metrics.FrameSummary) int  { return f.Foreground }
func distractors(f metrics.FrameSummary) int { return f.Distractors }
func occluders(f metrics.FrameSummary) int   { return f.Occluders }
func background(f metrics.FrameSummary) int  { return f.Background }

// Summarize computes the run summary. Frames may arrive in any order.
func Summarize(frames []metrics.FrameSummary) Summary {
	frames = sorted(frames)
	s := Summary{
		Frames:      len(frames),
		Foreground:  stats(series(frames, foreground)),
		Distractors: stats(series(frames, distractors)),
		Occluders:   stats(series(frames, occluders)),
		Background:  stats(series(frames, background)),
	}
	for _, f := range frames {
		s.BackgroundShortfall += max(f.BackgroundExpected-f.Background, 0)
		for len(s.FramesPerScale) <= f.ScaleIndex {
			s.FramesPerScale = append(s.FramesPerScale, 0)
		}
		s.FramesPerScale[f.ScaleIndex]++
	}
	return s
}

func sorted(frames []metrics.FrameSummary) []metrics.FrameSummary {
	out := append([]metrics.FrameSummary(nil), frames...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

// Write writes summary.json, counts.png and counts.html into dir, creating
// it if needed.
func Write(dir string, frames []metrics.FrameSummary) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(Summarize(frames), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := SavePNG(filepath.Join(dir, CountsPNGFile), frames); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, CountsHTMLFile))
	if err != nil {
		return fmt.Errorf("create html chart: %w", err)
	}
	if err := RenderHTML(f, frames); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Collector is a metrics.Sink that keeps frame summaries in memory for a
// report at the end of the run. Metrics are dropped.
type Collector struct {
	mu     sync.Mutex
	frames []metrics.FrameSummary
}

func (c *Collector) Report(metrics.Metric) error { return nil }

func (c *Collector) RecordFrame(f metrics.FrameSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *Collector) Close() error { return nil }

// Frames returns a copy of the recorded summaries.
func (c *Collector) Frames() []metrics.FrameSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]metrics.FrameSummary(nil), c.frames...)
}
