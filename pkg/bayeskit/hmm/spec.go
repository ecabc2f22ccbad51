package hmm

import (
	"encoding/json"
	"fmt"
	"io"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
)

// Spec is the JSON representation of a hidden Markov model with
// discrete emissions.  Transitions from and to the silent states use
// the names "start" and "end".
type Spec struct {
	Name        string           `json:"name"`
	States      []StateSpec      `json:"states"`
	Transitions []TransitionSpec `json:"transitions"`
	Pseudocount float64          `json:"pseudocount,omitempty"`
}

// StateSpec is the JSON representation of an emitting state.
type StateSpec struct {
	Name      string             `json:"name"`
	Emissions map[string]float64 `json:"emissions"`
}

// TransitionSpec is the JSON representation of a transition.
type TransitionSpec struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	P    float64 `json:"p"`
}

// Names of the silent states in specs.
const (
	StartName = "start"
	EndName   = "end"
)

// ReadDiscrete reads a JSON encoded model spec and returns the baked
// model.
func ReadDiscrete(r io.Reader) (*Model[string], error) {
	var s Spec
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("readDiscrete: %v", err)
	}
	m, err := s.Model()
	if err != nil {
		return nil, fmt.Errorf("readDiscrete: %v", err)
	}
	return m, nil
}

// Model builds the baked model of the spec.
func (s Spec) Model() (*Model[string], error) {
	m := New[string](s.Name)
	m.Pseudocount = s.Pseudocount
	states := map[string]*State[string]{StartName: m.Start, EndName: m.End}
	for _, ss := range s.States {
		if _, ok := states[ss.Name]; ok {
			return nil, fmt.Errorf("model %s: duplicate or reserved state name %q", s.Name, ss.Name)
		}
		d := dist.NewDiscrete(ss.Emissions)
		d.Pseudocount = s.Pseudocount
		states[ss.Name] = NewState[string](ss.Name, d)
		m.AddState(states[ss.Name])
	}
	for _, t := range s.Transitions {
		from, ok := states[t.From]
		if !ok {
			return nil, fmt.Errorf("model %s: unknown state %q", s.Name, t.From)
		}
		to, ok := states[t.To]
		if !ok {
			return nil, fmt.Errorf("model %s: unknown state %q", s.Name, t.To)
		}
		m.AddTransition(from, to, t.P)
	}
	if err := m.Bake(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteDiscrete writes the JSON spec of a model with discrete
// emissions.
func WriteDiscrete(w io.Writer, m *Model[string]) error {
	s, err := NewSpec(m)
	if err != nil {
		return fmt.Errorf("writeDiscrete: %v", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("writeDiscrete: %v", err)
	}
	return nil
}

// NewSpec returns the spec of a model with discrete emissions.
func NewSpec(m *Model[string]) (Spec, error) {
	s := Spec{Name: m.Name, Pseudocount: m.Pseudocount}
	name := func(st *State[string]) string {
		switch st {
		case m.Start:
			return StartName
		case m.End:
			return EndName
		}
		return st.Name
	}
	for _, st := range m.states {
		d, ok := st.Distribution.(*dist.Discrete)
		if !ok {
			return Spec{}, fmt.Errorf("state %s: not a discrete distribution", st.Name)
		}
		s.States = append(s.States, StateSpec{Name: st.Name, Emissions: d.Map()})
	}
	for _, t := range m.transitions {
		s.Transitions = append(s.Transitions, TransitionSpec{From: name(t.from), To: name(t.to), P: t.p})
	}
	return s, nil
}
