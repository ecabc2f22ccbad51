package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normal is the normal (Gaussian) distribution.
type Normal struct {
	Mu, Sigma float64
}

// NewNormal creates a new normal distribution.
func NewNormal(mu, sigma float64) *Normal {
	return &Normal{Mu: mu, Sigma: sigma}
}

// NormalFromSamples returns the normal distribution that maximizes the
// likelihood of the weighted samples.
func NormalFromSamples(xs, ws []float64) (*Normal, error) {
	var n Normal
	if err := n.Fit(xs, ws); err != nil {
		return nil, err
	}
	return &n, nil
}

// Name returns "normal".
func (*Normal) Name() string { return "normal" }

// Parameters returns mu and sigma.
func (n *Normal) Parameters() []float64 { return []float64{n.Mu, n.Sigma} }

// LogProbability returns the log density at x.
func (n *Normal) LogProbability(x float64) float64 {
	return distuv.Normal{Mu: n.Mu, Sigma: n.Sigma}.LogProb(x)
}

// Sample draws a random value.
func (n *Normal) Sample(src rand.Source) float64 {
	return distuv.Normal{Mu: n.Mu, Sigma: n.Sigma, Src: src}.Rand()
}

// Fit sets mu to the weighted mean and sigma to the weighted
// population standard deviation of the samples.
func (n *Normal) Fit(xs, ws []float64) error {
	ws, _, err := weights(len(xs), ws)
	if err != nil {
		return fitError(n.Name(), err)
	}
	n.Mu, n.Sigma = stat.PopMeanStdDev(xs, ws)
	n.Sigma = math.Max(n.Sigma, MinStd)
	return nil
}

func (n *Normal) String() string {
	return fmt.Sprintf("normal(mu=%g, sigma=%g)", n.Mu, n.Sigma)
}
