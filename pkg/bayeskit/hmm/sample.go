package hmm

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
)

// Sample draws a random sequence from the model and returns the
// symbols and the emitting states that produced them.  If the model
// has an explicit end, the walk stops at End or after length symbols
// if length > 0.  Models with a free end need a positive length.
// Every state of the model must have a distribution that can be
// sampled.  A nil src uses a time seeded source.
func (m *Model[T]) Sample(src rand.Source, length int) ([]T, []*State[T], error) {
	m.mustBaked()
	if m.freeEnd && length <= 0 {
		return nil, nil, fmt.Errorf("sample %s: free end model needs a positive length", m.Name)
	}
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	r := rand.New(src)
	n := len(m.states)
	row := make([]float64, n+1)
	copy(row, m.start)
	row[n] = m.startEnd
	var xs []T
	var path []*State[T]
	for length <= 0 || len(xs) < length {
		next := choose(r, row)
		if next == -1 || next == n {
			break
		}
		s := m.states[next]
		sampler, ok := s.Distribution.(interface{ Sample(rand.Source) T })
		if !ok {
			return nil, nil, fmt.Errorf("sample %s: cannot sample from state %s", m.Name, s.Name)
		}
		xs = append(xs, sampler.Sample(r))
		path = append(path, s)
		for j := 0; j < n; j++ {
			row[j] = m.trans.At(next, j)
		}
		row[n] = m.end[next]
	}
	return xs, path, nil
}

// choose selects an index with a probability proportional to the
// exponentiated log weights.  It returns -1 if no index has any mass.
func choose(r *rand.Rand, logws []float64) int {
	var total float64
	for _, lw := range logws {
		total += math.Exp(lw)
	}
	if total == 0 {
		return -1
	}
	p := r.Float64() * total
	last := -1
	for i, lw := range logws {
		w := math.Exp(lw)
		if w == 0 {
			continue
		}
		if p < w {
			return i
		}
		p -= w
		last = i
	}
	return last
}
