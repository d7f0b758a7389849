package report

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/taigrr/synthscene/pkg/metrics"
)

type countSeries struct {
	name  string
	count func(metrics.FrameSummary) int
	color color.RGBA
}

var countSeriesList = []countSeries{
	{"foreground", foreground, color.RGBA{R: 0x2e, G: 0x86, B: 0xde, A: 0xff}},
	{"distractors", distractors, color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}},
	{"occluders", occluders, color.RGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}},
	{"background", background, color.RGBA{R: 0x27, G: 0xae, B: 0x60, A: 0xff}},
}

// SavePNG draws the per-frame object counts as a line chart.
func SavePNG(path string, frames []metrics.FrameSummary) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	frames = sorted(frames)

	p := plot.New()
	p.Title.Text = "Objects placed per frame"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Objects"

	for _, s := range countSeriesList {
		pts := make(plotter.XYs, len(frames))
		for i, f := range frames {
			pts[i] = plotter.XY{X: float64(f.Frame), Y: float64(s.count(f))}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("create %s line: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save counts plot: %w", err)
	}
	return nil
}

// RenderHTML writes an interactive line chart of the per-frame counts.
func RenderHTML(w io.Writer, frames []metrics.FrameSummary) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	frames = sorted(frames)

	x := make([]string, len(frames))
	for i, f := range frames {
		x[i] = strconv.Itoa(f.Frame)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "synthscene run", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Objects placed per frame", Subtitle: fmt.Sprintf("frames=%d", len(frames))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Objects"}),
	)
	line.SetXAxis(x)
	for _, s := range countSeriesList {
		data := make([]opts.LineData, len(frames))
		for i, f := range frames {
			data[i] = opts.LineData{Value: s.count(f)}
		}
		line.AddSeries(s.name, data)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render counts chart: %w", err)
	}
	return nil
}
