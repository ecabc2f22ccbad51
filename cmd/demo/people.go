package demo

import (
	"fmt"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/nb"
)

func people(e env) error {
	// height, weight, foot size
	xs := [][]float64{
		{6, 180, 12}, {5.92, 190, 11}, {5.58, 170, 12}, {5.92, 165, 10}, {6, 160, 9},
		{5, 100, 6}, {5.5, 100, 8}, {5.42, 130, 7}, {5.75, 150, 9}, {5.5, 140, 8},
	}
	ys := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	clf := nb.New[[]float64](new(dist.MultivariateGaussian), new(dist.MultivariateGaussian))
	if err := clf.Fit(xs, ys, nil); err != nil {
		return fmt.Errorf("people: %v", err)
	}
	for i, m := range clf.Models {
		fmt.Fprintf(e.w, "%s: %s\n", sexes[i], m)
	}
	t := internal.NewTable(e.w, "Height, weight, foot size", "P(male)", "P(female)", "Class")
	predictions(t, clf, [][]float64{{5.75, 130, 8}, {6, 185, 11}})
	t.Render()
	return nil
}
