package bn

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"go.uber.org/multierr"
)

// Distribution is the distribution of a state of a network.  It is
// either a *dist.Discrete or a *ConditionalTable.
type Distribution interface {
	Keys() []string
}

// Row is a row of a conditional probability table: the values of
// the parents followed by the value of the child and the conditional
// probability of the child value given the parent values.
type Row struct {
	Values []string
	P      float64
}

// R is a shortcut to create a row.
func R(p float64, values ...string) Row {
	return Row{Values: values, P: p}
}

// ConditionalTable is a conditional probability table of a discrete
// child given discrete parents.
type ConditionalTable struct {
	Parents []Distribution
	// Pseudocount is added to the weighted count of each cell when
	// fitting.
	Pseudocount float64
	keys        []string
	domains     [][]string
	probs       map[string]float64
}

func join(values []string) string {
	return strings.Join(values, "\x00")
}

// NewConditionalTable creates a new conditional probability table from
// the given rows.  Each row holds one value for each parent in the
// order of the parents followed by the child value.  Missing rows have
// probability 0.
func NewConditionalTable(rows []Row, parents ...Distribution) (*ConditionalTable, error) {
	if len(parents) == 0 {
		return nil, fmt.Errorf("new conditional table: no parents")
	}
	t := &ConditionalTable{
		Parents: parents,
		probs:   make(map[string]float64, len(rows)),
		domains: make([][]string, len(parents)),
	}
	for i, p := range parents {
		t.domains[i] = append([]string(nil), p.Keys()...)
	}
	for i, row := range rows {
		if len(row.Values) != len(parents)+1 {
			return nil, fmt.Errorf("new conditional table: row %d: expected %d values; got %d",
				i+1, len(parents)+1, len(row.Values))
		}
		if row.P < 0 || math.IsNaN(row.P) {
			return nil, fmt.Errorf("new conditional table: row %d: invalid probability %g", i+1, row.P)
		}
		key := join(row.Values)
		if _, ok := t.probs[key]; ok {
			return nil, fmt.Errorf("new conditional table: row %d: duplicate row %v", i+1, row.Values)
		}
		t.probs[key] = row.P
		t.extend(row.Values)
	}
	return t, nil
}

// extend adds unknown values of a row to the domains of the table.
func (t *ConditionalTable) extend(values []string) {
	for i, v := range values[:len(values)-1] {
		t.domains[i] = insert(t.domains[i], v)
	}
	t.keys = insert(t.keys, values[len(values)-1])
}

func insert(keys []string, key string) []string {
	i := sort.SearchStrings(keys, key)
	if i < len(keys) && keys[i] == key {
		return keys
	}
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = key
	return keys
}

// Keys returns the sorted domain of the child.
func (t *ConditionalTable) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Domains returns the sorted domains of the parents.
func (t *ConditionalTable) Domains() [][]string {
	ret := make([][]string, len(t.domains))
	for i := range t.domains {
		ret[i] = append([]string(nil), t.domains[i]...)
	}
	return ret
}

// Probability returns the probability of the child value given the
// parent values.  The values are the parent values followed by the
// child value.
func (t *ConditionalTable) Probability(values ...string) float64 {
	return t.probs[join(values)]
}

// each calls f for each combination of the given domains in
// lexicographical order.  The slice passed to f is reused.
func each(domains [][]string, f func([]string)) {
	for _, d := range domains {
		if len(d) == 0 {
			return
		}
	}
	values := make([]string, len(domains))
	idx := make([]int, len(domains))
	for {
		for i := range domains {
			values[i] = domains[i][idx[i]]
		}
		f(values)
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(domains[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// check returns an error for every parent combination whose child
// probabilities do not sum to 1.
func (t *ConditionalTable) check() error {
	var err error
	each(t.domains, func(parents []string) {
		var sum float64
		for _, k := range t.keys {
			sum += t.Probability(append(parents, k)...)
		}
		if math.Abs(sum-1) > Tolerance {
			err = multierr.Append(err, fmt.Errorf("parents %v: probabilities sum to %g", parents, sum))
		}
	})
	return err
}

// Fit sets the probabilities of the table to the weighted relative
// frequencies of the child values given the parent values.  Each row
// holds the parent values followed by the child value.  Parent
// combinations without data get a uniform distribution.
func (t *ConditionalTable) Fit(rows [][]string, ws []float64) error {
	ws, err := bayeskit.Weights(len(rows), ws)
	if err != nil {
		return fmt.Errorf("fit conditional table: %v", err)
	}
	var total float64
	for i, row := range rows {
		if len(row) != len(t.domains)+1 {
			return fmt.Errorf("fit conditional table: row %d: expected %d values; got %d",
				i+1, len(t.domains)+1, len(row))
		}
		total += ws[i]
	}
	if total == 0 {
		return fmt.Errorf("fit conditional table: %w", bayeskit.ErrNoData)
	}
	counts := make(map[string]float64)
	for i, row := range rows {
		t.extend(row)
		counts[join(row)] += ws[i]
	}
	probs := make(map[string]float64, len(t.probs))
	each(t.domains, func(parents []string) {
		var sum float64
		for _, k := range t.keys {
			sum += counts[join(append(parents, k))] + t.Pseudocount
		}
		for _, k := range t.keys {
			key := join(append(parents, k))
			if sum == 0 {
				probs[key] = 1 / float64(len(t.keys))
				continue
			}
			probs[key] = (counts[key] + t.Pseudocount) / sum
		}
	})
	t.probs = probs
	return nil
}

// String returns the rows of the table with tab separated values.
func (t *ConditionalTable) String() string {
	var b strings.Builder
	each(t.domains, func(parents []string) {
		for _, k := range t.keys {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			values := append(append([]string(nil), parents...), k)
			fmt.Fprintf(&b, "%s\t%g", strings.Join(values, "\t"), t.Probability(values...))
		}
	})
	return b.String()
}

// ErrImpossibleEvidence is returned if the observations of a query
// have probability 0.
var ErrImpossibleEvidence = errors.New("impossible evidence")
