package dist

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// MultivariateGaussian is the multivariate normal distribution.  The
// zero value is an unfitted distribution that can be used as a
// component of composite models before they are fitted.
type MultivariateGaussian struct {
	mu   []float64
	cov  *mat.SymDense
	chol mat.Cholesky
}

// NewMultivariateGaussian creates a new multivariate normal
// distribution.  The covariance matrix must be positive definite.
func NewMultivariateGaussian(mu []float64, cov *mat.SymDense) (*MultivariateGaussian, error) {
	var m MultivariateGaussian
	if err := m.set(mu, cov); err != nil {
		return nil, err
	}
	return &m, nil
}

// MultivariateGaussianFromSamples returns the multivariate normal
// distribution that maximizes the likelihood of the weighted samples.
func MultivariateGaussianFromSamples(xs [][]float64, ws []float64) (*MultivariateGaussian, error) {
	var m MultivariateGaussian
	if err := m.Fit(xs, ws); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *MultivariateGaussian) set(mu []float64, cov *mat.SymDense) error {
	if cov.SymmetricDim() != len(mu) {
		return fmt.Errorf("multivariate gaussian: dimension mismatch: %d vs %d",
			len(mu), cov.SymmetricDim())
	}
	if ok := m.chol.Factorize(cov); !ok {
		return errors.New("multivariate gaussian: covariance not positive definite")
	}
	m.mu = mu
	m.cov = cov
	return nil
}

// Name returns "mvn".
func (*MultivariateGaussian) Name() string { return "mvn" }

// Dim returns the dimension of the distribution or 0 if it was not
// fitted yet.
func (m *MultivariateGaussian) Dim() int { return len(m.mu) }

// Mean returns the mean vector.
func (m *MultivariateGaussian) Mean() []float64 { return m.mu }

// Covariance returns the covariance matrix.
func (m *MultivariateGaussian) Covariance() *mat.SymDense { return m.cov }

// LogProbability returns the log density at x.  An unfitted
// distribution returns -Inf.  It panics if the dimension of x does not
// match the dimension of the distribution.
func (m *MultivariateGaussian) LogProbability(x []float64) float64 {
	if m.mu == nil {
		return math.Inf(-1)
	}
	return distmv.NormalLogProb(x, m.mu, &m.chol)
}

// Sample draws a random vector.
func (m *MultivariateGaussian) Sample(src rand.Source) []float64 {
	if m.mu == nil {
		return nil
	}
	return distmv.NormalRand(nil, m.mu, &m.chol, src)
}

// Fit sets the mean and covariance to their weighted maximum
// likelihood estimates.  MinCovariance is added to the diagonal of the
// covariance matrix.
func (m *MultivariateGaussian) Fit(xs [][]float64, ws []float64) error {
	ws, total, err := weights(len(xs), ws)
	if err != nil {
		return fitError(m.Name(), err)
	}
	d := len(xs[0])
	mu := make([]float64, d)
	for i, x := range xs {
		if len(x) != d {
			return fitError(m.Name(), fmt.Errorf("sample %d: expected dimension %d; got %d", i, d, len(x)))
		}
		for j := range x {
			mu[j] += ws[i] * x[j]
		}
	}
	for j := range mu {
		mu[j] /= total
	}
	cov := mat.NewSymDense(d, nil)
	diff := mat.NewVecDense(d, nil)
	for i, x := range xs {
		if ws[i] == 0 {
			continue
		}
		for j := range x {
			diff.SetVec(j, x[j]-mu[j])
		}
		cov.SymRankOne(cov, ws[i]/total, diff)
	}
	for j := 0; j < d; j++ {
		cov.SetSym(j, j, cov.At(j, j)+MinCovariance)
	}
	if err := m.set(mu, cov); err != nil {
		return fitError(m.Name(), err)
	}
	return nil
}

func (m *MultivariateGaussian) String() string {
	if m.mu == nil {
		return "mvn(unfitted)"
	}
	return fmt.Sprintf("mvn(mu=%v, cov=%v)", m.mu, mat.Formatted(m.cov, mat.FormatPython()))
}
