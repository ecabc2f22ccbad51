package bn

import (
	"fmt"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
)

// factor is a table over the joint values of some variables.  The
// values are stored in row major order with the last variable varying
// fastest.
type factor struct {
	vars   []int
	card   []int
	values []float64
}

func newFactor(vars, card []int) factor {
	size := 1
	for _, c := range card {
		size *= c
	}
	return factor{vars: vars, card: card, values: make([]float64, size)}
}

// each calls f for every assignment of the factor's variables.
func (f factor) each(fn func(i int, assign []int)) {
	assign := make([]int, len(f.vars))
	for i := range f.values {
		fn(i, assign)
		for k := len(assign) - 1; k >= 0; k-- {
			assign[k]++
			if assign[k] < f.card[k] {
				break
			}
			assign[k] = 0
		}
	}
}

func (f factor) pos(v int) int {
	for i, x := range f.vars {
		if x == v {
			return i
		}
	}
	return -1
}

// product returns the product of two factors.
func product(a, b factor) factor {
	vars := append([]int(nil), a.vars...)
	card := append([]int(nil), a.card...)
	for i, v := range b.vars {
		if a.pos(v) == -1 {
			vars = append(vars, v)
			card = append(card, b.card[i])
		}
	}
	ret := newFactor(vars, card)
	apos := make([]int, len(a.vars))
	for i, v := range a.vars {
		apos[i] = ret.pos(v)
	}
	bpos := make([]int, len(b.vars))
	for i, v := range b.vars {
		bpos[i] = ret.pos(v)
	}
	ret.each(func(i int, assign []int) {
		ret.values[i] = a.values[a.index(assign, apos)] * b.values[b.index(assign, bpos)]
	})
	return ret
}

// index returns the index of the factor's entry for the assignment of
// a larger factor.  pos maps the factor's variables to the positions
// in the assignment.
func (f factor) index(assign, pos []int) int {
	var idx int
	for k, p := range pos {
		idx = idx*f.card[k] + assign[p]
	}
	return idx
}

// sumOut sums the variable v out of the factor.
func (f factor) sumOut(v int) factor {
	p := f.pos(v)
	vars := append(append([]int(nil), f.vars[:p]...), f.vars[p+1:]...)
	card := append(append([]int(nil), f.card[:p]...), f.card[p+1:]...)
	ret := newFactor(vars, card)
	pos := make([]int, len(vars))
	for i := range pos {
		pos[i] = i
		if i >= p {
			pos[i] = i + 1
		}
	}
	f.each(func(i int, assign []int) {
		ret.values[ret.index(assign, pos)] += f.values[i]
	})
	return ret
}

// observe sets all entries of the factor that disagree with the
// observed value of v to 0.
func (f factor) observe(v, value int) {
	p := f.pos(v)
	if p == -1 {
		return
	}
	f.each(func(i int, assign []int) {
		if assign[p] != value {
			f.values[i] = 0
		}
	})
}

// eliminate multiplies all factors that contain v and sums v out of
// the product.
func eliminate(fs []factor, v int) []factor {
	var prod factor
	var found bool
	ret := fs[:0:0]
	for _, f := range fs {
		switch {
		case f.pos(v) == -1:
			ret = append(ret, f)
		case !found:
			prod, found = f, true
		default:
			prod = product(prod, f)
		}
	}
	if found {
		ret = append(ret, prod.sumOut(v))
	}
	return ret
}

func (nw *Network) factors(evidence map[int]int) []factor {
	fs := make([]factor, len(nw.states))
	values := make([]string, len(nw.states))
	for i := range nw.states {
		vars := append(append([]int(nil), nw.parents[i]...), i)
		card := make([]int, len(vars))
		for k, v := range vars {
			card[k] = len(nw.domains[v])
		}
		fs[i] = newFactor(vars, card)
		fs[i].each(func(j int, assign []int) {
			for k, v := range vars {
				values[v] = nw.domains[v][assign[k]]
			}
			fs[i].values[j] = nw.probability(i, values)
		})
		for v, value := range evidence {
			fs[i].observe(v, value)
		}
	}
	return fs
}

// marginal returns the unnormalized marginal of variable q.
func (nw *Network) marginal(fs []factor, q int) []float64 {
	for i := len(nw.order) - 1; i >= 0; i-- {
		if v := nw.order[i]; v != q {
			fs = eliminate(fs, v)
		}
	}
	ret := make([]float64, len(nw.domains[q]))
	for i := range ret {
		ret[i] = 1
	}
	for _, f := range fs {
		if len(f.vars) == 0 {
			for i := range ret {
				ret[i] *= f.values[0]
			}
			continue
		}
		for i := range ret {
			ret[i] *= f.values[i]
		}
	}
	return ret
}

// PredictProba returns the posterior distributions of all states in
// the order of States given the observed values of some states.
// Observed states get a point mass on their observed value.  The
// posteriors are computed exactly by variable elimination.  It is an
// error to observe unknown states or values or observations that are
// impossible under the network.
func (nw *Network) PredictProba(observations map[string]string) ([]*dist.Discrete, error) {
	nw.mustBaked()
	evidence := make(map[int]int, len(observations))
	for name, value := range observations {
		s := nw.State(name)
		if s == nil {
			return nil, fmt.Errorf("predict proba %s: unknown state %q", nw.Name, name)
		}
		i := nw.index[s]
		k := index(nw.domains[i], value)
		if k == -1 {
			return nil, fmt.Errorf("predict proba %s: invalid value %q for state %s", nw.Name, value, s)
		}
		evidence[i] = k
	}
	fs := nw.factors(evidence)
	ret := make([]*dist.Discrete, len(nw.states))
	for i := range nw.states {
		if k, ok := evidence[i]; ok {
			ret[i] = dist.PointMass(nw.domains[i][k], nw.domains[i]...)
			continue
		}
		m := nw.marginal(append([]factor(nil), fs...), i)
		var total float64
		for _, p := range m {
			total += p
		}
		if total == 0 {
			return nil, fmt.Errorf("predict proba %s: %v: %w", nw.Name, observations, ErrImpossibleEvidence)
		}
		probs := make(map[string]float64, len(m))
		for k, p := range m {
			probs[nw.domains[i][k]] = p / total
		}
		ret[i] = dist.NewDiscrete(probs)
	}
	if len(evidence) == len(nw.states) {
		row := make([]string, len(nw.states))
		for i, k := range evidence {
			row[i] = nw.domains[i][k]
		}
		if nw.Probability(row) == 0 {
			return nil, fmt.Errorf("predict proba %s: %v: %w", nw.Name, observations, ErrImpossibleEvidence)
		}
	}
	return ret, nil
}

func index(xs []string, x string) int {
	for i, y := range xs {
		if x == y {
			return i
		}
	}
	return -1
}
