// Package gmm implements general mixture models fitted with
// expectation maximization.
package gmm

import (
	"errors"
	"fmt"
	"math"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"gonum.org/v1/gonum/floats"
)

// Default values for the EM loop.
const (
	DefaultMaxIterations = 100
	DefaultStopThreshold = 0.1
)

// Mixture is a weighted mixture of arbitrary models over T.
type Mixture[T any] struct {
	Components    []bayeskit.Model[T]
	MaxIterations int     // Maximal number of EM iterations
	StopThreshold float64 // Minimal improvement of the log likelihood
	weights       []float64
	improvement   float64
}

// New creates a new mixture with uniform mixture weights.
func New[T any](components ...bayeskit.Model[T]) *Mixture[T] {
	ws := make([]float64, len(components))
	for i := range ws {
		ws[i] = -math.Log(float64(len(components)))
	}
	return &Mixture[T]{
		Components:    components,
		MaxIterations: DefaultMaxIterations,
		StopThreshold: DefaultStopThreshold,
		weights:       ws,
	}
}

// Weights returns the mixture weights.
func (m *Mixture[T]) Weights() []float64 {
	ret := make([]float64, len(m.weights))
	for i, w := range m.weights {
		ret[i] = math.Exp(w)
	}
	return ret
}

// SetWeights sets the mixture weights.  The weights are normalized to
// sum to 1.
func (m *Mixture[T]) SetWeights(ws []float64) error {
	if len(ws) != len(m.Components) {
		return fmt.Errorf("set weights: expected %d weights; got %d", len(m.Components), len(ws))
	}
	total := floats.Sum(ws)
	if total <= 0 {
		return fmt.Errorf("set weights: invalid weights %v", ws)
	}
	for i, w := range ws {
		if w < 0 {
			return fmt.Errorf("set weights: negative weight %g", w)
		}
		m.weights[i] = math.Log(w / total)
	}
	return nil
}

// Improvement returns the total improvement of the log likelihood of
// the last call to Fit.
func (m *Mixture[T]) Improvement() float64 {
	return m.improvement
}

func (m *Mixture[T]) joint(x T, dst []float64) []float64 {
	for i, c := range m.Components {
		dst[i] = m.weights[i] + c.LogProbability(x)
	}
	return dst
}

// LogProbability returns the log probability of x under the mixture.
func (m *Mixture[T]) LogProbability(x T) float64 {
	return floats.LogSumExp(m.joint(x, make([]float64, len(m.Components))))
}

// PredictLogProba returns the log responsibilities of the components
// for each sample.  Samples that are impossible under every component
// get -Inf for all components.
func (m *Mixture[T]) PredictLogProba(xs []T) [][]float64 {
	ret := make([][]float64, len(xs))
	for i, x := range xs {
		ret[i] = m.joint(x, make([]float64, len(m.Components)))
		norm := floats.LogSumExp(ret[i])
		for j := range ret[i] {
			if math.IsInf(norm, -1) {
				ret[i][j] = math.Inf(-1)
				continue
			}
			ret[i][j] -= norm
		}
	}
	return ret
}

// PredictProba returns the responsibilities of the components for each
// sample.
func (m *Mixture[T]) PredictProba(xs []T) [][]float64 {
	ret := m.PredictLogProba(xs)
	for i := range ret {
		for j := range ret[i] {
			ret[i][j] = math.Exp(ret[i][j])
		}
	}
	return ret
}

// Predict returns the index of the most responsible component for
// each sample.
func (m *Mixture[T]) Predict(xs []T) []int {
	ret := make([]int, len(xs))
	joint := make([]float64, len(m.Components))
	for i, x := range xs {
		ret[i] = bayeskit.Argmax(m.joint(x, joint))
	}
	return ret
}

func (m *Mixture[T]) logLikelihood(xs []T, ws []float64) float64 {
	var sum float64
	for i, x := range xs {
		if ws[i] == 0 {
			continue
		}
		sum += ws[i] * m.LogProbability(x)
	}
	return sum
}

// Fit fits the mixture to the weighted samples using expectation
// maximization.  The E step computes the responsibilities of the
// components for each sample, the M step refits each component with
// the responsibility weighted samples and updates the mixture weights.
// Fit stops after MaxIterations iterations or if the improvement of
// the log likelihood falls below StopThreshold.
func (m *Mixture[T]) Fit(xs []T, ws []float64) error {
	ws, err := bayeskit.Weights(len(xs), ws)
	if err != nil {
		return fmt.Errorf("fit: %v", err)
	}
	total := floats.Sum(ws)
	if total == 0 {
		return fmt.Errorf("fit: %w", bayeskit.ErrNoData)
	}
	initial := m.logLikelihood(xs, ws)
	last := initial
	resp := make([][]float64, len(m.Components))
	for j := range resp {
		resp[j] = make([]float64, len(xs))
	}
	joint := make([]float64, len(m.Components))
	for iter := 1; iter <= m.MaxIterations; iter++ {
		// E step
		for i, x := range xs {
			m.joint(x, joint)
			norm := floats.LogSumExp(joint)
			for j := range joint {
				if math.IsInf(norm, -1) {
					resp[j][i] = 0
					continue
				}
				resp[j][i] = ws[i] * math.Exp(joint[j]-norm)
			}
		}
		// M step
		for j, c := range m.Components {
			sum := floats.Sum(resp[j])
			if sum == 0 {
				m.weights[j] = math.Inf(-1)
				continue
			}
			if err := c.Fit(xs, resp[j]); err != nil && !errors.Is(err, bayeskit.ErrNoData) {
				return fmt.Errorf("fit: component %d: %v", j, err)
			}
			m.weights[j] = math.Log(sum / total)
		}
		ll := m.logLikelihood(xs, ws)
		improvement := ll - last
		bayeskit.Log("gmm: iteration %d: improvement %g", iter, improvement)
		last = ll
		if math.IsNaN(improvement) || improvement < m.StopThreshold {
			break
		}
	}
	m.improvement = last - initial
	bayeskit.Log("gmm: total improvement %g", m.improvement)
	return nil
}
