package dist

import (
	"fmt"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot draws n samples from each of the given distributions and
// writes their histograms into one image.  The format of the image is
// determined by the extension of path (png, svg, pdf, ...).
func Plot(path string, n, bins int, src rand.Source, ds ...Univariate) error {
	if len(ds) == 0 || n <= 0 {
		return fmt.Errorf("plot: %w", bayeskit.ErrNoData)
	}
	if bins <= 0 {
		return fmt.Errorf("plot: invalid number of bins: %d", bins)
	}
	p := plot.New()
	p.Y.Label.Text = "Count"
	for i, d := range ds {
		vals := plotter.Values(SampleN[float64](d, n, src))
		h, err := plotter.NewHist(vals, bins)
		if err != nil {
			return fmt.Errorf("plot: %v", err)
		}
		h.FillColor = plotutil.Color(i)
		h.LineStyle.Color = plotutil.Color(i)
		p.Add(h)
		p.Legend.Add(fmt.Sprint(d), h)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: %v", err)
	}
	return nil
}
