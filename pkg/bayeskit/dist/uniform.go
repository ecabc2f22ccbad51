package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform is the continuous uniform distribution on [Min, Max].
type Uniform struct {
	Min, Max float64
}

// NewUniform creates a new uniform distribution.
func NewUniform(min, max float64) *Uniform {
	return &Uniform{Min: min, Max: max}
}

// UniformFromSamples returns the uniform distribution over the range
// of the samples with non-zero weight.
func UniformFromSamples(xs, ws []float64) (*Uniform, error) {
	var u Uniform
	if err := u.Fit(xs, ws); err != nil {
		return nil, err
	}
	return &u, nil
}

// Name returns "uniform".
func (*Uniform) Name() string { return "uniform" }

// Parameters returns min and max.
func (u *Uniform) Parameters() []float64 { return []float64{u.Min, u.Max} }

// LogProbability returns the log density at x.  A degenerate
// distribution with Min == Max is a point mass.
func (u *Uniform) LogProbability(x float64) float64 {
	if x < u.Min || x > u.Max {
		return math.Inf(-1)
	}
	if u.Min == u.Max {
		return 0
	}
	return distuv.Uniform{Min: u.Min, Max: u.Max}.LogProb(x)
}

// Sample draws a random value.
func (u *Uniform) Sample(src rand.Source) float64 {
	if u.Min == u.Max {
		return u.Min
	}
	return distuv.Uniform{Min: u.Min, Max: u.Max, Src: src}.Rand()
}

// Fit sets the bounds to the minimum and maximum of all samples with a
// non-zero weight.
func (u *Uniform) Fit(xs, ws []float64) error {
	ws, _, err := weights(len(xs), ws)
	if err != nil {
		return fitError(u.Name(), err)
	}
	min, max := math.Inf(1), math.Inf(-1)
	for i, x := range xs {
		if ws[i] == 0 {
			continue
		}
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	u.Min, u.Max = min, max
	return nil
}

func (u *Uniform) String() string {
	return fmt.Sprintf("uniform(min=%g, max=%g)", u.Min, u.Max)
}
