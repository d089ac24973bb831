package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/school-accident-trends/internal/domain"
)

// renderChart draws one line per label over the grid's hour slots, with the
// band thresholds as dashed guides. The format follows the file extension.
func renderChart(path string, g domain.Grid) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s %s (%d)", g.Dimension, g.Region, g.Weekday, g.TargetYear)
	p.X.Label.Text = "hour"
	p.Y.Label.Text = "projected share (%)"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Legend.Top = true

	series := g.Series()
	for i, label := range g.Labels {
		pts := make(plotter.XYs, len(g.Slots))
		for j, s := range g.Slots {
			pts[j].X = float64(s.HourStart)
			pts[j].Y = series[label][j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", label, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(label, line)
	}

	for _, level := range []float64{g.Thresholds.High, g.Thresholds.Low} {
		guide := plotter.NewFunction(func(float64) float64 { return level })
		guide.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		guide.Color = plotutil.Color(len(g.Labels))
		p.Add(guide)
	}
	p.Add(plotter.NewGrid())

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
