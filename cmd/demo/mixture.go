package demo

import (
	"fmt"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/gmm"
)

func mixture(e env) error {
	// A mixture with a different distribution for each component.
	mix1 := gmm.New[float64](dist.NewNormal(5, 2), dist.NewUniform(0, 10), dist.NewExponential(1))
	t := internal.NewTable(e.w, "x", "P(normal)", "P(uniform)", "P(exponential)", "Component")
	xs := []float64{0.5, 5, 10}
	cs := mix1.Predict(xs)
	for i, p := range mix1.PredictProba(xs) {
		row := []interface{}{xs[i]}
		row = append(row, internal.Probabilities(p)...)
		row = append(row, cs[i])
		t.AppendRow(row)
	}
	t.Render()

	samples := [][]float64{{1, 1}, {0, 1}, {1, 1}, {0, 1}, {1, 0}}
	mix, err := gmm.FromSamples(3, samples, func() bayeskit.Model[[]float64] {
		return new(dist.MultivariateGaussian)
	}, gmm.Options{Seed: e.seed})
	if err != nil {
		return fmt.Errorf("mixture: %v", err)
	}
	t = internal.NewTable(e.w, "Component", "Weight", "Mean")
	for i, w := range mix.Weights() {
		mvn := mix.Components[i].(*dist.MultivariateGaussian)
		t.AppendRow([]interface{}{i, fmt.Sprintf("%.4f", w), fmt.Sprintf("%.4g", mvn.Mean())})
	}
	t.Render()
	t = internal.NewTable(e.w, "Sample", "Component")
	for i, c := range mix.Predict(samples) {
		t.AppendRow([]interface{}{fmt.Sprint(samples[i]), c})
	}
	t.Render()
	return nil
}
