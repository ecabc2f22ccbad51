package demo

import (
	"fmt"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/nb"
	"github.com/jedib0t/go-pretty/v6/table"
)

var sexes = []string{"male", "female"}

func heights(e env) error {
	male, err := dist.NormalFromSamples([]float64{6, 5.92, 5.58, 5.92, 6.08, 5.83}, nil)
	if err != nil {
		return fmt.Errorf("heights: %v", err)
	}
	female, err := dist.NormalFromSamples([]float64{5, 5.5, 5.42, 5.75, 5.17, 5}, nil)
	if err != nil {
		return fmt.Errorf("heights: %v", err)
	}
	fmt.Fprintf(e.w, "male heights: %s\nfemale heights: %s\n", male, female)
	if e.plot != "" {
		if err := dist.Plot(e.plot, 100000, 50, dist.NewSource(e.seed), male, female); err != nil {
			return fmt.Errorf("heights: %v", err)
		}
	}
	clf := nb.New[[]float64](dist.NewIndependent(male), dist.NewIndependent(female))
	xs := [][]float64{{5}, {5.5}, {5.75}, {6}}
	t := internal.NewTable(e.w, "Height", "P(male)", "P(female)", "Class")
	predictions(t, clf, xs)
	t.Render()

	// Refit the same classifier to weights.
	ws := [][]float64{{180}, {190}, {170}, {165}, {100}, {150}, {130}, {150}}
	ys := []int{0, 0, 0, 0, 1, 1, 1, 1}
	if err := clf.Fit(ws, ys, nil); err != nil {
		return fmt.Errorf("heights: %v", err)
	}
	t = internal.NewTable(e.w, "Weight", "P(male)", "P(female)", "Class")
	predictions(t, clf, [][]float64{{130}, {200}, {100}, {162}, {145}})
	t.Render()
	return nil
}

func predictions(t table.Writer, clf *nb.NaiveBayes[[]float64], xs [][]float64) {
	probs := clf.PredictProba(xs)
	for i, x := range xs {
		row := table.Row{strings.Trim(fmt.Sprint(x), "[]")}
		row = append(row, internal.Probabilities(probs[i])...)
		row = append(row, sexes[bayeskit.Argmax(probs[i])])
		t.AppendRow(row)
	}
}
