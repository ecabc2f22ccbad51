package hmm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// emissions returns the log emission probabilities of each symbol of
// the sequence under each state.
func (m *Model[T]) emissions(seq []T) [][]float64 {
	ret := make([][]float64, len(seq))
	for t, x := range seq {
		ret[t] = make([]float64, len(m.states))
		for i, s := range m.states {
			ret[t][i] = s.Distribution.LogProbability(x)
		}
	}
	return ret
}

func (m *Model[T]) endAt(i int) float64 {
	if m.freeEnd {
		return 0
	}
	return m.end[i]
}

func (m *Model[T]) forward(e [][]float64) [][]float64 {
	n := len(m.states)
	f := make([][]float64, len(e))
	buf := make([]float64, n)
	for t := range e {
		f[t] = make([]float64, n)
		for j := 0; j < n; j++ {
			if t == 0 {
				f[t][j] = m.start[j] + e[t][j]
				continue
			}
			for i := 0; i < n; i++ {
				buf[i] = f[t-1][i] + m.trans.At(i, j)
			}
			f[t][j] = floats.LogSumExp(buf) + e[t][j]
		}
	}
	return f
}

func (m *Model[T]) backward(e [][]float64) [][]float64 {
	n := len(m.states)
	b := make([][]float64, len(e))
	buf := make([]float64, n)
	for t := len(e) - 1; t >= 0; t-- {
		b[t] = make([]float64, n)
		for i := 0; i < n; i++ {
			if t == len(e)-1 {
				b[t][i] = m.endAt(i)
				continue
			}
			for j := 0; j < n; j++ {
				buf[j] = m.trans.At(i, j) + e[t+1][j] + b[t+1][j]
			}
			b[t][i] = floats.LogSumExp(buf)
		}
	}
	return b
}

func (m *Model[T]) total(f [][]float64) float64 {
	if len(f) == 0 {
		return m.startEnd
	}
	last := f[len(f)-1]
	buf := make([]float64, len(last))
	for i := range last {
		buf[i] = last[i] + m.endAt(i)
	}
	return floats.LogSumExp(buf)
}

func dense(xs [][]float64, c int) *mat.Dense {
	if len(xs) == 0 {
		return nil
	}
	ret := mat.NewDense(len(xs), c, nil)
	for i := range xs {
		ret.SetRow(i, xs[i])
	}
	return ret
}

// Forward returns the matrix of log forward probabilities.  Entry
// (t, i) holds the log probability of the first t+1 symbols of the
// sequence ending in state i.  It returns nil for empty sequences.
func (m *Model[T]) Forward(seq []T) *mat.Dense {
	m.mustBaked()
	return dense(m.forward(m.emissions(seq)), len(m.states))
}

// Backward returns the matrix of log backward probabilities.  Entry
// (t, i) holds the log probability of the symbols after position t
// given state i at position t.  It returns nil for empty sequences.
func (m *Model[T]) Backward(seq []T) *mat.Dense {
	m.mustBaked()
	return dense(m.backward(m.emissions(seq)), len(m.states))
}

// LogProbability returns the log probability of the sequence under
// the model summed over all state paths.  The log probability of the
// empty sequence is the log probability of the transition from Start
// to End.
func (m *Model[T]) LogProbability(seq []T) float64 {
	m.mustBaked()
	return m.total(m.forward(m.emissions(seq)))
}

// Expectations holds the result of the forward backward algorithm.
type Expectations struct {
	LogProbability float64     // Log probability of the sequence
	Start          []float64   // Expected transitions from Start
	End            []float64   // Expected transitions into End
	Transitions    *mat.Dense  // Expected transitions between the states
	Posteriors     [][]float64 // Posterior state probabilities per position
}

// ForwardBackward runs the forward backward algorithm on the sequence.
// If the sequence is impossible under the model, all expectations and
// posteriors are 0.
func (m *Model[T]) ForwardBackward(seq []T) Expectations {
	m.mustBaked()
	n := len(m.states)
	e := m.emissions(seq)
	f := m.forward(e)
	ret := Expectations{
		LogProbability: m.total(f),
		Start:          make([]float64, n),
		End:            make([]float64, n),
		Transitions:    mat.NewDense(n, n, nil),
		Posteriors:     make([][]float64, len(seq)),
	}
	for t := range ret.Posteriors {
		ret.Posteriors[t] = make([]float64, n)
	}
	if len(seq) == 0 || math.IsInf(ret.LogProbability, -1) {
		return ret
	}
	b := m.backward(e)
	lp := ret.LogProbability
	for t := range seq {
		for i := 0; i < n; i++ {
			ret.Posteriors[t][i] = math.Exp(f[t][i] + b[t][i] - lp)
		}
	}
	copy(ret.Start, ret.Posteriors[0])
	if !m.freeEnd {
		last := len(seq) - 1
		for i := 0; i < n; i++ {
			ret.End[i] = math.Exp(f[last][i] + m.end[i] - lp)
		}
	}
	for t := 0; t < len(seq)-1; t++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				lt := m.trans.At(i, j)
				if math.IsInf(lt, -1) {
					continue
				}
				v := math.Exp(f[t][i] + lt + e[t+1][j] + b[t+1][j] - lp)
				ret.Transitions.Set(i, j, ret.Transitions.At(i, j)+v)
			}
		}
	}
	return ret
}

// PredictProba returns the posterior probabilities of the states for
// each position of the sequence.
func (m *Model[T]) PredictProba(seq []T) [][]float64 {
	return m.ForwardBackward(seq).Posteriors
}

// Viterbi returns the log probability of the most likely state path
// for the sequence together with the path.  The path holds the
// emitting state of each position.  If the sequence is impossible
// under the model, the log probability is -Inf and the path is nil.
func (m *Model[T]) Viterbi(seq []T) (float64, []*State[T]) {
	m.mustBaked()
	if len(seq) == 0 {
		return m.startEnd, nil
	}
	n := len(m.states)
	e := m.emissions(seq)
	v := make([][]float64, len(seq))
	back := make([][]int, len(seq))
	for t := range seq {
		v[t] = make([]float64, n)
		back[t] = make([]int, n)
		for j := 0; j < n; j++ {
			if t == 0 {
				v[t][j] = m.start[j] + e[t][j]
				continue
			}
			best, arg := math.Inf(-1), 0
			for i := 0; i < n; i++ {
				if s := v[t-1][i] + m.trans.At(i, j); s > best {
					best, arg = s, i
				}
			}
			v[t][j] = best + e[t][j]
			back[t][j] = arg
		}
	}
	last := len(seq) - 1
	best, arg := math.Inf(-1), -1
	for i := 0; i < n; i++ {
		if s := v[last][i] + m.endAt(i); s > best {
			best, arg = s, i
		}
	}
	if arg == -1 {
		return math.Inf(-1), nil
	}
	path := make([]*State[T], len(seq))
	for t := last; t >= 0; t-- {
		path[t] = m.states[arg]
		arg = back[t][arg]
	}
	return best, path
}

// Predict returns the indices (see States) of the states of the most
// likely state path for the sequence.  It returns nil if the sequence
// is impossible under the model.
func (m *Model[T]) Predict(seq []T) []int {
	_, path := m.Viterbi(seq)
	if path == nil {
		return nil
	}
	ret := make([]int, len(path))
	for i, s := range path {
		ret[i] = m.index[s]
	}
	return ret
}
