// Package hmm implements hidden Markov models with arbitrary emission
// distributions.  A model consists of emitting states and two silent
// states, Start and End.  Models must be baked before they can be used
// for inference or training.
package hmm

import (
	"fmt"
	"math"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// Default values for the Baum-Welch training.
const (
	DefaultMaxIterations = 100
	DefaultStopThreshold = 1e-9
)

// State is a state of a hidden Markov model.  Only the Start and End
// states of a model are silent (have no distribution).
type State[T any] struct {
	Name         string
	Distribution bayeskit.Model[T]
}

// NewState creates a new emitting state.
func NewState[T any](name string, d bayeskit.Model[T]) *State[T] {
	return &State[T]{Name: name, Distribution: d}
}

func (s *State[T]) String() string {
	return s.Name
}

type transition[T any] struct {
	from, to *State[T]
	p        float64
}

// Model is a hidden Markov model over sequences of T.
type Model[T any] struct {
	Name          string
	Start, End    *State[T]
	MaxIterations int     // Maximal number of Baum-Welch iterations
	StopThreshold float64 // Minimal improvement of the log likelihood
	Pseudocount   float64 // Added to the expected transition counts
	states        []*State[T]
	transitions   []transition[T]
	improvement   float64

	// baked tables (log probabilities)
	baked    bool
	freeEnd  bool
	index    map[*State[T]]int
	start    []float64
	end      []float64
	startEnd float64
	trans    *mat.Dense
}

// New creates a new empty model with the given name.
func New[T any](name string) *Model[T] {
	return &Model[T]{
		Name:          name,
		Start:         &State[T]{Name: name + "-start"},
		End:           &State[T]{Name: name + "-end"},
		MaxIterations: DefaultMaxIterations,
		StopThreshold: DefaultStopThreshold,
	}
}

func (m *Model[T]) silent(s *State[T]) bool {
	return s == m.Start || s == m.End
}

func (m *Model[T]) contains(s *State[T]) bool {
	for _, o := range m.states {
		if o == s {
			return true
		}
	}
	return false
}

// AddState adds an emitting state to the model.  Adding a state twice
// has no effect.
func (m *Model[T]) AddState(s *State[T]) {
	if m.silent(s) || m.contains(s) {
		return
	}
	m.states = append(m.states, s)
	m.baked = false
}

// AddStates adds multiple states to the model.
func (m *Model[T]) AddStates(ss ...*State[T]) {
	for _, s := range ss {
		m.AddState(s)
	}
}

// AddTransition adds a transition with probability p between two
// states.  States that are not yet part of the model are added.  An
// existing transition between the two states is replaced.
func (m *Model[T]) AddTransition(from, to *State[T], p float64) {
	m.AddState(from)
	m.AddState(to)
	m.baked = false
	for i := range m.transitions {
		if m.transitions[i].from == from && m.transitions[i].to == to {
			m.transitions[i].p = p
			return
		}
	}
	m.transitions = append(m.transitions, transition[T]{from: from, to: to, p: p})
}

// Bake finalizes the structure of the model.  It validates the model
// and normalizes the outgoing transition probabilities of each state.
// If no transition enters End the model has a free end: sequences may
// end in any state.  All problems found are returned together.
func (m *Model[T]) Bake() error {
	var err error
	names := map[string]bool{m.Start.Name: true}
	if m.End.Name == m.Start.Name {
		err = multierr.Append(err, fmt.Errorf("bake %s: duplicate state name %q", m.Name, m.End.Name))
	}
	names[m.End.Name] = true
	for _, s := range m.states {
		if names[s.Name] {
			err = multierr.Append(err, fmt.Errorf("bake %s: duplicate state name %q", m.Name, s.Name))
		}
		names[s.Name] = true
		if s.Distribution == nil {
			err = multierr.Append(err, fmt.Errorf("bake %s: state %q has no distribution", m.Name, s.Name))
		}
	}
	if len(m.states) == 0 {
		err = multierr.Append(err, fmt.Errorf("bake %s: no emitting states", m.Name))
	}
	var starts bool
	for _, t := range m.transitions {
		if t.p < 0 || math.IsNaN(t.p) {
			err = multierr.Append(err, fmt.Errorf("bake %s: invalid probability %g for %s -> %s",
				m.Name, t.p, t.from, t.to))
		}
		if t.to == m.Start {
			err = multierr.Append(err, fmt.Errorf("bake %s: transition into start from %s", m.Name, t.from))
		}
		if t.from == m.End {
			err = multierr.Append(err, fmt.Errorf("bake %s: transition out of end to %s", m.Name, t.to))
		}
		if t.from == m.Start && t.p > 0 {
			starts = true
		}
	}
	if !starts {
		err = multierr.Append(err, fmt.Errorf("bake %s: start has no outgoing transitions", m.Name))
	}
	if err != nil {
		return err
	}
	m.normalize()
	n := len(m.states)
	m.index = make(map[*State[T]]int, n)
	for i, s := range m.states {
		m.index[s] = i
	}
	m.start = inf(make([]float64, n))
	m.end = inf(make([]float64, n))
	m.trans = mat.NewDense(n, n, inf(make([]float64, n*n)))
	m.startEnd = math.Inf(-1)
	m.freeEnd = true
	for _, t := range m.transitions {
		if t.p == 0 {
			continue
		}
		p := math.Log(t.p)
		switch {
		case t.from == m.Start && t.to == m.End:
			m.startEnd = p
			m.freeEnd = false
		case t.from == m.Start:
			m.start[m.index[t.to]] = p
		case t.to == m.End:
			m.end[m.index[t.from]] = p
			m.freeEnd = false
		default:
			m.trans.Set(m.index[t.from], m.index[t.to], p)
		}
	}
	m.baked = true
	bayeskit.Log("hmm %s: baked %d states, %d transitions, free end: %t",
		m.Name, n, len(m.transitions), m.freeEnd)
	return nil
}

// normalize normalizes the outgoing transitions of each state to sum
// to 1.  States without outgoing probability mass are left alone.
func (m *Model[T]) normalize() {
	sums := make(map[*State[T]]float64)
	for _, t := range m.transitions {
		sums[t.from] += t.p
	}
	for i := range m.transitions {
		if sum := sums[m.transitions[i].from]; sum > 0 {
			m.transitions[i].p /= sum
		}
	}
}

func inf(xs []float64) []float64 {
	for i := range xs {
		xs[i] = math.Inf(-1)
	}
	return xs
}

func (m *Model[T]) mustBaked() {
	if !m.baked {
		panic(fmt.Sprintf("hmm %s: model not baked", m.Name))
	}
}

// States returns the emitting states of the model in the order in
// which they were added.
func (m *Model[T]) States() []*State[T] {
	return append([]*State[T](nil), m.states...)
}

// FreeEnd returns true if the model has a free end.
func (m *Model[T]) FreeEnd() bool {
	m.mustBaked()
	return m.freeEnd
}

// Transitions returns the transition probabilities between the
// emitting states.
func (m *Model[T]) Transitions() *mat.Dense {
	m.mustBaked()
	var ret mat.Dense
	ret.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, m.trans)
	return &ret
}

// StartProbabilities returns the probabilities of the transitions from
// Start into each emitting state.
func (m *Model[T]) StartProbabilities() []float64 {
	m.mustBaked()
	return exp(m.start)
}

// EndProbabilities returns the probabilities of the transitions from
// each emitting state into End.
func (m *Model[T]) EndProbabilities() []float64 {
	m.mustBaked()
	return exp(m.end)
}

// Improvement returns the total improvement of the log likelihood of
// the last call to Fit.
func (m *Model[T]) Improvement() float64 {
	return m.improvement
}

func exp(xs []float64) []float64 {
	ret := make([]float64, len(xs))
	for i, x := range xs {
		ret[i] = math.Exp(x)
	}
	return ret
}

// sync writes the baked transition probabilities back to the
// transitions of the model.
func (m *Model[T]) sync() {
	for i, t := range m.transitions {
		var lp float64
		switch {
		case t.from == m.Start && t.to == m.End:
			lp = m.startEnd
		case t.from == m.Start:
			lp = m.start[m.index[t.to]]
		case t.to == m.End:
			lp = m.end[m.index[t.from]]
		default:
			lp = m.trans.At(m.index[t.from], m.index[t.to])
		}
		m.transitions[i].p = math.Exp(lp)
	}
}
