// Public domain.

package zcompare

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ScatterZZ renders fitted vs true redshift for one or more runs,
// overlaid for side by side comparison, with the identity line for
// reference.
func ScatterZZ(runs []*Run, path string) error {
	p := plot.New()
	p.Title.Text = "Fitted vs true redshift"
	p.X.Label.Text = "z true"
	p.Y.Label.Text = "z fit"
	ident := plotter.NewFunction(func(x float64) float64 { return x })
	ident.LineStyle.Width = vg.Points(.5)
	p.Add(ident)
	if err := addRuns(p, runs, func(o Object) (float64, float64) {
		return o.ZTrue, o.ZFit
	}); err != nil {
		return err
	}
	return save(p, path)
}

// ScatterDV renders velocity offset vs true redshift for one or more
// runs.
func ScatterDV(runs []*Run, path string) error {
	p := plot.New()
	p.Title.Text = "Velocity offset vs true redshift"
	p.X.Label.Text = "z true"
	p.Y.Label.Text = "dv (km/s)"
	zero := plotter.NewFunction(func(x float64) float64 { return 0 })
	zero.LineStyle.Width = vg.Points(.5)
	p.Add(zero)
	if err := addRuns(p, runs, func(o Object) (float64, float64) {
		return o.ZTrue, o.DV
	}); err != nil {
		return err
	}
	return save(p, path)
}

func addRuns(p *plot.Plot, runs []*Run, xy func(Object) (float64, float64)) error {
	for i, r := range runs {
		xys := make(plotter.XYs, len(r.Objects))
		for j, o := range r.Objects {
			xys[j].X, xys[j].Y = xy(o)
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("zcompare: %s: %w", r.Name, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(r.Name, s)
	}
	return nil
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("zcompare: %w", err)
	}
	return nil
}
