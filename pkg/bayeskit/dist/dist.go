// Package dist implements the probability distributions of bayeskit.
// Every distribution supports density evaluation, sampling and
// weighted maximum likelihood fitting.
package dist

import (
	"fmt"
	"time"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// MinStd is the smallest standard deviation a fitted normal
// distribution can have.
const MinStd = 1e-6

// MinCovariance is added to the diagonal of fitted covariance matrices.
const MinCovariance = 1e-6

// Distribution is a probability distribution over values of type T.
type Distribution[T any] interface {
	bayeskit.Model[T]
	// Sample draws a random value from the distribution.  If src is
	// nil, the global source is used.
	Sample(src rand.Source) T
	// Name returns the name of the distribution.
	Name() string
}

// Univariate is a distribution over real numbers with a fixed number of
// real parameters.
type Univariate interface {
	Distribution[float64]
	Parameters() []float64
}

// NewSource returns a new random source for the given seed.  If seed
// is 0, a time based seed is used.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

// SampleN draws n samples from the given distribution.
func SampleN[T any](d Distribution[T], n int, src rand.Source) []T {
	ret := make([]T, n)
	for i := range ret {
		ret[i] = d.Sample(src)
	}
	return ret
}

// weights checks the samples weights and returns them together with
// their sum.
func weights(n int, ws []float64) ([]float64, float64, error) {
	ws, err := bayeskit.Weights(n, ws)
	if err != nil {
		return nil, 0, err
	}
	total := floats.Sum(ws)
	if n == 0 || total == 0 {
		return nil, 0, bayeskit.ErrNoData
	}
	return ws, total, nil
}

func fitError(name string, err error) error {
	return fmt.Errorf("fit %s: %w", name, err)
}
