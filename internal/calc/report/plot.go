package report

import (
	"fmt"
	"image/color"
	"io"

	"HeatExchange/internal/calc/exchanger"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	materialColor = color.RGBA{R: 196, G: 78, B: 32, A: 255}
	gasColor      = color.RGBA{R: 38, G: 104, B: 178, A: 255}
)

// Plot draws both temperature profiles against bed height, with height on
// the vertical axis.
func Plot(title string, res exchanger.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Temperature, °C"
	p.Y.Label.Text = "Height, m"
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		name  string
		temps []float64
		color color.Color
	}{
		{"Material", res.MaterialTemperatures, materialColor},
		{"Gas", res.GasTemperatures, gasColor},
	} {
		xys := make(plotter.XYs, len(res.Heights))
		for i := range res.Heights {
			xys[i].X = s.temps[i]
			xys[i].Y = res.Heights[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s profile: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// WritePlot renders the profile plot; format is any extension gonum/plot
// knows ("png", "svg", "pdf").
func WritePlot(w io.Writer, title string, res exchanger.Result, format string) error {
	p, err := Plot(title, res)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(4*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
