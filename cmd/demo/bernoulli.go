package demo

import (
	"fmt"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"gonum.org/v1/gonum/floats"
)

func bernoulli(e env) error {
	const n = 1000
	b := dist.NewBernoulli(.4)
	src := dist.NewSource(e.seed)
	vals := dist.SampleN[float64](b, n, src)
	ones := floats.Sum(vals)
	fmt.Fprintf(e.w, "%s: %g ones in %d samples (%.3f)\n", b, ones, n, ones/n)
	fitted := dist.NewBernoulli(0)
	if err := fitted.Fit(vals, nil); err != nil {
		return fmt.Errorf("bernoulli: %v", err)
	}
	fmt.Fprintf(e.w, "fitted: %s\n", fitted)
	if e.plot != "" {
		if err := dist.Plot(e.plot, n, 2, src, b, fitted); err != nil {
			return fmt.Errorf("bernoulli: %v", err)
		}
	}
	return nil
}
