package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bernoulli is the Bernoulli distribution over {0, 1} with P(1) = P.
type Bernoulli struct {
	P float64
}

// NewBernoulli creates a new Bernoulli distribution.
func NewBernoulli(p float64) *Bernoulli {
	return &Bernoulli{P: p}
}

// Name returns "bernoulli".
func (*Bernoulli) Name() string { return "bernoulli" }

// Parameters returns p.
func (b *Bernoulli) Parameters() []float64 { return []float64{b.P} }

// LogProbability returns the log probability of x.  Values other than
// 0 and 1 have probability 0.
func (b *Bernoulli) LogProbability(x float64) float64 {
	switch x {
	case 1:
		return math.Log(b.P)
	case 0:
		return math.Log1p(-b.P)
	default:
		return math.Inf(-1)
	}
}

// Sample draws 0 or 1.
func (b *Bernoulli) Sample(src rand.Source) float64 {
	return distuv.Bernoulli{P: b.P, Src: src}.Rand()
}

// Fit sets p to the weighted fraction of ones.
func (b *Bernoulli) Fit(xs, ws []float64) error {
	ws, total, err := weights(len(xs), ws)
	if err != nil {
		return fitError(b.Name(), err)
	}
	var ones float64
	for i, x := range xs {
		switch x {
		case 1:
			ones += ws[i]
		case 0:
		default:
			return fitError(b.Name(), fmt.Errorf("invalid sample %g", x))
		}
	}
	b.P = ones / total
	return nil
}

func (b *Bernoulli) String() string {
	return fmt.Sprintf("bernoulli(p=%g)", b.P)
}
