// Package bn implements Bayesian networks over discrete variables.
// Each state of a network holds either a discrete distribution (root
// states) or a conditional probability table over the distributions
// of its parents.
package bn

import (
	"fmt"
	"math"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Tolerance is the maximal deviation from 1 of the probabilities of a
// distribution.
const Tolerance = 1e-6

// State is a named variable of a network.
type State struct {
	Name         string
	Distribution Distribution
}

// NewState creates a new state.
func NewState(name string, d Distribution) *State {
	return &State{Name: name, Distribution: d}
}

func (s *State) String() string {
	return s.Name
}

type edge struct {
	from, to *State
}

// Network is a Bayesian network.
type Network struct {
	Name        string
	Pseudocount float64 // Pseudocount used by Fit
	states      []*State
	edges       []edge

	// baked
	baked   bool
	index   map[*State]int
	parents [][]int
	domains [][]string
	order   []int
}

// New creates a new empty network.
func New(name string) *Network {
	return &Network{Name: name}
}

// AddState adds a state to the network.
func (nw *Network) AddState(s *State) {
	nw.states = append(nw.states, s)
	nw.baked = false
}

// AddStates adds multiple states to the network.
func (nw *Network) AddStates(ss ...*State) {
	for _, s := range ss {
		nw.AddState(s)
	}
}

// AddTransition adds a directed edge from the parent to the child.
func (nw *Network) AddTransition(from, to *State) {
	nw.edges = append(nw.edges, edge{from: from, to: to})
	nw.baked = false
}

// States returns the states of the network in insertion order.
func (nw *Network) States() []*State {
	return append([]*State(nil), nw.states...)
}

// State returns the state with the given name or nil.
func (nw *Network) State(name string) *State {
	for _, s := range nw.states {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Parents returns the parent states of a state in the order of its
// conditional table.  The network must be baked.
func (nw *Network) Parents(s *State) []*State {
	nw.mustBaked()
	var ret []*State
	for _, p := range nw.parents[nw.index[s]] {
		ret = append(ret, nw.states[p])
	}
	return ret
}

func (nw *Network) mustBaked() {
	if !nw.baked {
		panic(fmt.Sprintf("bn %s: network not baked", nw.Name))
	}
}

// Bake finalizes the structure of the network.  It checks that the
// network is acyclic, that the parents of every conditional table are
// states of the network that are linked to the table's state and that
// the probabilities of each distribution sum to 1.  All problems found
// are returned together.
func (nw *Network) Bake() error {
	var err error
	appendf := func(format string, args ...interface{}) {
		err = multierr.Append(err, fmt.Errorf("bake %s: "+format, append([]interface{}{nw.Name}, args...)...))
	}
	n := len(nw.states)
	index := make(map[*State]int, n)
	names := make(map[string]bool, n)
	owner := make(map[Distribution]int, n)
	for i, s := range nw.states {
		if _, ok := index[s]; ok {
			appendf("state %s added twice", s)
			continue
		}
		index[s] = i
		if names[s.Name] {
			appendf("duplicate state name %q", s.Name)
		}
		names[s.Name] = true
		if s.Distribution == nil {
			appendf("state %s: no distribution", s)
			continue
		}
		if j, ok := owner[s.Distribution]; ok {
			appendf("states %s and %s share a distribution", nw.states[j], s)
		}
		owner[s.Distribution] = i
	}
	g := simple.NewDirectedGraph()
	for i := range nw.states {
		g.AddNode(simple.Node(i))
	}
	incoming := make([][]int, n)
	for _, e := range nw.edges {
		fi, fok := index[e.from]
		ti, tok := index[e.to]
		if !fok || !tok {
			appendf("transition %s -> %s: unknown state", e.from, e.to)
			continue
		}
		if fi == ti {
			appendf("transition %s -> %s: self loop", e.from, e.to)
			continue
		}
		if g.HasEdgeFromTo(int64(fi), int64(ti)) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(fi), simple.Node(ti)))
		incoming[ti] = append(incoming[ti], fi)
	}
	sorted, terr := topo.Sort(g)
	if terr != nil {
		appendf("network contains a cycle")
	}
	parents := make([][]int, n)
	domains := make([][]string, n)
	for i, s := range nw.states {
		switch d := s.Distribution.(type) {
		case nil:
		case *dist.Discrete:
			domains[i] = d.Keys()
			if len(incoming[i]) > 0 {
				appendf("state %s: parents without conditional table", s)
			}
			var sum float64
			for _, p := range d.Map() {
				sum += p
			}
			if math.Abs(sum-1) > Tolerance {
				appendf("state %s: probabilities sum to %g", s, sum)
			}
		case *ConditionalTable:
			domains[i] = d.Keys()
			for k, p := range d.Parents {
				j, ok := owner[p]
				if !ok {
					appendf("state %s: parent %d is not a state of the network", s, k+1)
					continue
				}
				if !contains(incoming[i], j) {
					appendf("state %s: missing transition from parent %s", s, nw.states[j])
				}
				parents[i] = append(parents[i], j)
				keys := p.Keys()
				for _, v := range d.domains[k] {
					if !contains(keys, v) {
						appendf("state %s: invalid value %q for parent %s", s, v, nw.states[j])
					}
				}
			}
			for _, j := range incoming[i] {
				if !contains(parents[i], j) {
					appendf("transition %s -> %s: not a parent of the conditional table", nw.states[j], s)
				}
			}
			if cerr := d.check(); cerr != nil {
				for _, e := range multierr.Errors(cerr) {
					appendf("state %s: %v", s, e)
				}
			}
		default:
			appendf("state %s: unsupported distribution %T", s, d)
		}
	}
	if err != nil {
		return err
	}
	nw.index = index
	nw.parents = parents
	nw.domains = domains
	nw.order = nw.order[:0]
	for _, node := range sorted {
		nw.order = append(nw.order, int(node.ID()))
	}
	nw.baked = true
	bayeskit.Log("bn %s: baked %d states, %d transitions", nw.Name, n, len(nw.edges))
	return nil
}

func contains[T comparable](xs []T, x T) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}

// probability returns the probability of the value of state i given
// the values of all states.
func (nw *Network) probability(i int, values []string) float64 {
	switch d := nw.states[i].Distribution.(type) {
	case *dist.Discrete:
		return d.Probability(values[i])
	case *ConditionalTable:
		vs := make([]string, 0, len(nw.parents[i])+1)
		for _, p := range nw.parents[i] {
			vs = append(vs, values[p])
		}
		return d.Probability(append(vs, values[i])...)
	}
	panic("bn: unsupported distribution")
}

// Probability returns the probability of a full assignment of values
// to the states of the network in the order of States.  It panics if
// the number of values does not match the number of states.
func (nw *Network) Probability(row []string) float64 {
	return math.Exp(nw.LogProbability(row))
}

// LogProbability returns the log probability of a full assignment of
// values to the states of the network in the order of States.
func (nw *Network) LogProbability(row []string) float64 {
	nw.mustBaked()
	if len(row) != len(nw.states) {
		panic(fmt.Sprintf("bn %s: expected %d values; got %d", nw.Name, len(nw.states), len(row)))
	}
	var sum float64
	for i := range nw.states {
		sum += math.Log(nw.probability(i, row))
	}
	return sum
}

// Fit fits the distributions of all states to the weighted rows of
// fully observed values in the order of States.  Root distributions
// are set to the weighted relative frequencies of their values,
// conditional tables to the weighted relative frequencies of the
// child values given the parent values.  The network's pseudocount
// is added to every count.
func (nw *Network) Fit(rows [][]string, ws []float64) error {
	nw.mustBaked()
	ws, err := bayeskit.Weights(len(rows), ws)
	if err != nil {
		return fmt.Errorf("fit %s: %v", nw.Name, err)
	}
	if len(rows) == 0 || floats.Sum(ws) == 0 {
		return fmt.Errorf("fit %s: %w", nw.Name, bayeskit.ErrNoData)
	}
	for i, row := range rows {
		if len(row) != len(nw.states) {
			return fmt.Errorf("fit %s: row %d: expected %d values; got %d",
				nw.Name, i+1, len(nw.states), len(row))
		}
	}
	for i, s := range nw.states {
		switch d := s.Distribution.(type) {
		case *dist.Discrete:
			col := make([]string, len(rows))
			for j, row := range rows {
				col[j] = row[i]
			}
			d.Pseudocount = nw.Pseudocount
			if err := d.Fit(col, ws); err != nil {
				return fmt.Errorf("fit %s: state %s: %v", nw.Name, s, err)
			}
		case *ConditionalTable:
			proj := make([][]string, len(rows))
			for j, row := range rows {
				for _, p := range nw.parents[i] {
					proj[j] = append(proj[j], row[p])
				}
				proj[j] = append(proj[j], row[i])
			}
			d.Pseudocount = nw.Pseudocount
			if err := d.Fit(proj, ws); err != nil {
				return fmt.Errorf("fit %s: state %s: %v", nw.Name, s, err)
			}
		}
	}
	bayeskit.Log("bn %s: fitted %d rows", nw.Name, len(rows))
	// Fitting can extend the domains of the states.
	if err := nw.Bake(); err != nil {
		return fmt.Errorf("fit %s: %v", nw.Name, err)
	}
	return nil
}
