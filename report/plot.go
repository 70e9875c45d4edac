package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/SnoozeScript/aies-lab/fairness"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

// NamedFrame labels an audit for plotting, e.g. "baseline" or "mitigated".
type NamedFrame struct {
	Name  string
	Frame *fairness.MetricFrame
}

// PlotSelectionRates writes a grouped bar chart of per-category selection
// rates to path (format by extension, e.g. .png or .svg). Each sensitive
// category gets one bar group with one bar per frame. All frames must
// share the same categories.
func PlotSelectionRates(path string, frames ...NamedFrame) error {
	if len(frames) == 0 {
		return scierrors.NewValueError("PlotSelectionRates", "no frames")
	}
	for _, f := range frames {
		if f.Frame == nil {
			return scierrors.NewValueError("PlotSelectionRates", "nil frame '"+f.Name+"'")
		}
	}

	groups := frames[0].Frame.Groups()
	if len(groups) == 0 {
		return scierrors.Wrap(scierrors.ErrEmptyData, "PlotSelectionRates")
	}

	p := plot.New()
	p.Title.Text = "Selection rate by category"
	p.Y.Label.Text = fairness.MetricSelectionRate
	p.Y.Min = 0
	p.Y.Max = 1
	p.NominalX(groups...)

	width := vg.Points(20)
	offset := -float64(len(frames)-1) / 2

	for k, f := range frames {
		values := make(plotter.Values, len(groups))
		for i, g := range groups {
			r, err := f.Frame.Rate(fairness.MetricSelectionRate, g)
			if err != nil {
				return err
			}
			values[i] = r.Value
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return scierrors.Wrap(err, "PlotSelectionRates")
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(k)
		bars.Offset = vg.Points((offset + float64(k)) * 22)

		p.Add(bars)
		p.Legend.Add(f.Name, bars)
	}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return scierrors.Wrap(err, "PlotSelectionRates")
	}
	return nil
}
