package dist

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Independent is a distribution over vectors whose features are
// independent.  The log probability of a vector is the sum of the log
// probabilities of its features under their component distributions.
type Independent struct {
	Components []Univariate
}

// NewIndependent creates a new distribution from the given per-feature
// distributions.
func NewIndependent(components ...Univariate) *Independent {
	return &Independent{Components: components}
}

// Name returns "independent".
func (*Independent) Name() string { return "independent" }

// LogProbability returns the sum of the component log probabilities.
// It panics if the dimension of x does not match the number of
// components.
func (ind *Independent) LogProbability(x []float64) float64 {
	if len(x) != len(ind.Components) {
		panic(fmt.Sprintf("independent: expected dimension %d; got %d", len(ind.Components), len(x)))
	}
	var sum float64
	for i, c := range ind.Components {
		sum += c.LogProbability(x[i])
	}
	return sum
}

// Sample draws a random vector.
func (ind *Independent) Sample(src rand.Source) []float64 {
	ret := make([]float64, len(ind.Components))
	for i, c := range ind.Components {
		ret[i] = c.Sample(src)
	}
	return ret
}

// Fit fits every component to its feature column.
func (ind *Independent) Fit(xs [][]float64, ws []float64) error {
	col := make([]float64, len(xs))
	for j, c := range ind.Components {
		for i, x := range xs {
			if len(x) != len(ind.Components) {
				return fitError(ind.Name(), fmt.Errorf("sample %d: expected dimension %d; got %d",
					i, len(ind.Components), len(x)))
			}
			col[i] = x[j]
		}
		if err := c.Fit(col, ws); err != nil {
			return fitError(ind.Name(), fmt.Errorf("feature %d: %w", j, err))
		}
	}
	return nil
}

func (ind *Independent) String() string {
	return fmt.Sprintf("independent%v", ind.Components)
}
