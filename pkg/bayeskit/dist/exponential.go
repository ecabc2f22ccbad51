package dist

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Exponential is the exponential distribution with the given rate.
type Exponential struct {
	Rate float64
}

// NewExponential creates a new exponential distribution.
func NewExponential(rate float64) *Exponential {
	return &Exponential{Rate: rate}
}

// ExponentialFromSamples returns the exponential distribution that
// maximizes the likelihood of the weighted samples.
func ExponentialFromSamples(xs, ws []float64) (*Exponential, error) {
	var e Exponential
	if err := e.Fit(xs, ws); err != nil {
		return nil, err
	}
	return &e, nil
}

// Name returns "exponential".
func (*Exponential) Name() string { return "exponential" }

// Parameters returns the rate.
func (e *Exponential) Parameters() []float64 { return []float64{e.Rate} }

// LogProbability returns the log density at x.
func (e *Exponential) LogProbability(x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	return distuv.Exponential{Rate: e.Rate}.LogProb(x)
}

// Sample draws a random value.
func (e *Exponential) Sample(src rand.Source) float64 {
	return distuv.Exponential{Rate: e.Rate, Src: src}.Rand()
}

// Fit sets the rate to the inverse of the weighted mean.
func (e *Exponential) Fit(xs, ws []float64) error {
	ws, total, err := weights(len(xs), ws)
	if err != nil {
		return fitError(e.Name(), err)
	}
	var sum float64
	for i, x := range xs {
		if x < 0 {
			return fitError(e.Name(), fmt.Errorf("negative sample %g", x))
		}
		sum += ws[i] * x
	}
	if sum == 0 {
		return fitError(e.Name(), errors.New("zero mean"))
	}
	e.Rate = total / sum
	return nil
}

func (e *Exponential) String() string {
	return fmt.Sprintf("exponential(rate=%g)", e.Rate)
}
