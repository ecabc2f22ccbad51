package dist

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Discrete is a categorical distribution over string symbols.
type Discrete struct {
	probs map[string]float64
	keys  []string
	// Pseudocount is added to the weighted count of every known symbol
	// when fitting.
	Pseudocount float64
}

// NewDiscrete creates a new categorical distribution with the given
// symbol probabilities.  The probabilities are used as given.
func NewDiscrete(probs map[string]float64) *Discrete {
	d := &Discrete{probs: make(map[string]float64, len(probs))}
	for k, p := range probs {
		d.probs[k] = p
	}
	d.sortKeys()
	return d
}

// UniformDiscrete returns a categorical distribution that assigns the same
// probability to every key.
func UniformDiscrete(keys ...string) *Discrete {
	probs := make(map[string]float64, len(keys))
	for _, k := range keys {
		probs[k] = 1 / float64(len(keys))
	}
	return NewDiscrete(probs)
}

// PointMass returns a categorical distribution over the given keys
// that puts all probability mass on key.
func PointMass(key string, keys ...string) *Discrete {
	probs := make(map[string]float64, len(keys)+1)
	for _, k := range keys {
		probs[k] = 0
	}
	probs[key] = 1
	return NewDiscrete(probs)
}

func (d *Discrete) sortKeys() {
	d.keys = make([]string, 0, len(d.probs))
	for k := range d.probs {
		d.keys = append(d.keys, k)
	}
	sort.Strings(d.keys)
}

// Name returns "discrete".
func (*Discrete) Name() string { return "discrete" }

// Keys returns the sorted symbols of the distribution.
func (d *Discrete) Keys() []string {
	return d.keys
}

// Map returns a copy of the symbol probabilities.
func (d *Discrete) Map() map[string]float64 {
	ret := make(map[string]float64, len(d.probs))
	for k, p := range d.probs {
		ret[k] = p
	}
	return ret
}

// Probability returns the probability of key.
func (d *Discrete) Probability(key string) float64 {
	return d.probs[key]
}

// LogProbability returns the log probability of key.  Unknown symbols
// have a log probability of -Inf.
func (d *Discrete) LogProbability(key string) float64 {
	p, ok := d.probs[key]
	if !ok {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// Sample draws a random symbol.  It returns the empty string if the
// distribution has no probability mass.
func (d *Discrete) Sample(src rand.Source) string {
	ws := make([]float64, len(d.keys))
	var total float64
	for i, k := range d.keys {
		ws[i] = d.probs[k]
		total += ws[i]
	}
	if total == 0 {
		return ""
	}
	return d.keys[int(distuv.NewCategorical(ws, src).Rand())]
}

// Fit sets the probabilities to the weighted relative frequencies of
// the symbols.  Known symbols that do not occur in the samples get a
// probability of 0 (plus the pseudocount).
func (d *Discrete) Fit(xs []string, ws []float64) error {
	ws, err := bayeskit.Weights(len(xs), ws)
	if err != nil {
		return fitError(d.Name(), err)
	}
	if floats.Sum(ws) == 0 {
		return fitError(d.Name(), bayeskit.ErrNoData)
	}
	counts := make(map[string]float64, len(d.probs))
	for k := range d.probs {
		counts[k] = d.Pseudocount
	}
	for i, x := range xs {
		if _, ok := counts[x]; !ok {
			counts[x] = d.Pseudocount
		}
		counts[x] += ws[i]
	}
	var total float64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return fitError(d.Name(), bayeskit.ErrNoData)
	}
	d.probs = make(map[string]float64, len(counts))
	for k, c := range counts {
		d.probs[k] = c / total
	}
	d.sortKeys()
	return nil
}

// String returns one line `key\tprobability` for each key.
func (d *Discrete) String() string {
	var b strings.Builder
	for i, k := range d.keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\t%g", k, d.probs[k])
	}
	return b.String()
}
