package bayeskit

import (
	"errors"
	"fmt"
)

// Model is the common interface of all distributions and composite
// models.  Models over T can be nested into other models over T (a
// naive Bayes classifier over hidden Markov models for example).
type Model[T any] interface {
	// LogProbability returns the log probability (or log density) of x.
	LogProbability(x T) float64
	// Fit fits the model's parameters to the weighted samples.  If
	// weights is nil, every sample has weight 1.
	Fit(xs []T, weights []float64) error
}

// ErrNoData is returned if a model is fitted to an empty data set or
// to samples that all have zero weight.
var ErrNoData = errors.New("no data")

// Weights returns the given weights or unit weights if ws is nil.  It
// returns an error if the number of weights does not match n or if
// any weight is negative.
func Weights(n int, ws []float64) ([]float64, error) {
	if ws == nil {
		ret := make([]float64, n)
		for i := range ret {
			ret[i] = 1
		}
		return ret, nil
	}
	if len(ws) != n {
		return nil, fmt.Errorf("weights: expected %d weights; got %d", n, len(ws))
	}
	for i, w := range ws {
		if w < 0 {
			return nil, fmt.Errorf("weights: negative weight %g at %d", w, i)
		}
	}
	return ws, nil
}

// Argmax returns the index of the largest value in xs.  Ties resolve
// to the lowest index.  It returns -1 for an empty slice.
func Argmax(xs []float64) int {
	best := -1
	for i, x := range xs {
		if best == -1 || x > xs[best] {
			best = i
		}
	}
	return best
}
