package hmm

import (
	"errors"
	"fmt"
	"math"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Fit trains the model on the weighted sequences using the Baum-Welch
// algorithm.  Only transitions of the baked structure are reestimated;
// transitions that do not exist stay absent.  The emission
// distributions are refitted with the posterior weighted symbols.
// Sequences that are impossible under the model are ignored.
func (m *Model[T]) Fit(seqs [][]T, ws []float64) error {
	m.mustBaked()
	ws, err := bayeskit.Weights(len(seqs), ws)
	if err != nil {
		return fmt.Errorf("fit %s: %v", m.Name, err)
	}
	if floats.Sum(ws) == 0 {
		return fmt.Errorf("fit %s: %w", m.Name, bayeskit.ErrNoData)
	}
	initial := m.logLikelihood(seqs, ws)
	last := initial
	for iter := 1; iter <= m.MaxIterations; iter++ {
		if err := m.step(seqs, ws); err != nil {
			return fmt.Errorf("fit %s: %v", m.Name, err)
		}
		ll := m.logLikelihood(seqs, ws)
		improvement := ll - last
		bayeskit.Log("hmm %s: iteration %d: improvement %g", m.Name, iter, improvement)
		last = ll
		if math.IsNaN(improvement) || improvement < m.StopThreshold {
			break
		}
	}
	m.sync()
	m.improvement = last - initial
	bayeskit.Log("hmm %s: total improvement %g", m.Name, m.improvement)
	return nil
}

func (m *Model[T]) logLikelihood(seqs [][]T, ws []float64) float64 {
	var sum float64
	for i, seq := range seqs {
		if ws[i] == 0 {
			continue
		}
		lp := m.LogProbability(seq)
		if math.IsInf(lp, -1) {
			continue
		}
		sum += ws[i] * lp
	}
	return sum
}

// step runs one iteration of the Baum-Welch algorithm.
func (m *Model[T]) step(seqs [][]T, ws []float64) error {
	n := len(m.states)
	start := make([]float64, n)
	end := make([]float64, n)
	trans := mat.NewDense(n, n, nil)
	var startEnd float64
	var symbols []T
	weights := make([][]float64, n)
	for k, seq := range seqs {
		if ws[k] == 0 {
			continue
		}
		if len(seq) == 0 {
			if !math.IsInf(m.startEnd, -1) {
				startEnd += ws[k]
			}
			continue
		}
		ex := m.ForwardBackward(seq)
		if math.IsInf(ex.LogProbability, -1) {
			bayeskit.Log("hmm %s: skipping impossible sequence %d", m.Name, k+1)
			continue
		}
		floats.AddScaled(start, ws[k], ex.Start)
		floats.AddScaled(end, ws[k], ex.End)
		trans.Apply(func(i, j int, v float64) float64 {
			return v + ws[k]*ex.Transitions.At(i, j)
		}, trans)
		for t := range seq {
			symbols = append(symbols, seq[t])
			for i := 0; i < n; i++ {
				weights[i] = append(weights[i], ws[k]*ex.Posteriors[t][i])
			}
		}
	}
	// Start row.
	row := append(append([]float64(nil), m.start...), m.startEnd)
	counts := append(append([]float64(nil), start...), startEnd)
	m.reestimate(row, counts)
	copy(m.start, row[:n])
	m.startEnd = row[n]
	// State rows.
	for i := 0; i < n; i++ {
		row := append(mat.Row(nil, i, m.trans), m.end[i])
		counts := append(mat.Row(nil, i, trans), end[i])
		m.reestimate(row, counts)
		m.trans.SetRow(i, row[:n])
		m.end[i] = row[n]
	}
	for i, s := range m.states {
		if floats.Sum(weights[i]) == 0 {
			continue
		}
		err := s.Distribution.Fit(symbols, weights[i])
		if err != nil && !errors.Is(err, bayeskit.ErrNoData) {
			return fmt.Errorf("state %s: %v", s.Name, err)
		}
	}
	return nil
}

// reestimate updates the log transition probabilities of one row with
// the expected counts.  Only existing transitions are considered.
// Rows without any counts keep their probabilities.
func (m *Model[T]) reestimate(row, counts []float64) {
	var total float64
	for i := range row {
		if math.IsInf(row[i], -1) {
			continue
		}
		counts[i] += m.Pseudocount
		total += counts[i]
	}
	if total == 0 {
		return
	}
	for i := range row {
		if math.IsInf(row[i], -1) {
			continue
		}
		row[i] = math.Log(counts[i] / total)
	}
}
