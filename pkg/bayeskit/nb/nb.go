// Package nb implements naive Bayes classifiers.  A classifier holds
// one model per class and combines the class likelihoods with the class
// priors using Bayes' rule.  With dist.Independent components this is
// the classical naive Bayes classifier with independent features; any
// other bayeskit.Model can be used as a class model as well.
package nb

import (
	"fmt"
	"math"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// NaiveBayes is a Bayes classifier over samples of type T.
type NaiveBayes[T any] struct {
	Models []bayeskit.Model[T]
	priors []float64 // log class priors
}

// New creates a new classifier with one model per class and uniform
// class priors.
func New[T any](models ...bayeskit.Model[T]) *NaiveBayes[T] {
	priors := make([]float64, len(models))
	for i := range priors {
		priors[i] = -math.Log(float64(len(models)))
	}
	return &NaiveBayes[T]{Models: models, priors: priors}
}

// Priors returns the class priors.
func (nb *NaiveBayes[T]) Priors() []float64 {
	ret := make([]float64, len(nb.priors))
	for i, p := range nb.priors {
		ret[i] = math.Exp(p)
	}
	return ret
}

// SetPriors sets the class priors.  The priors are normalized to sum
// to 1.
func (nb *NaiveBayes[T]) SetPriors(priors []float64) error {
	if len(priors) != len(nb.Models) {
		return fmt.Errorf("set priors: expected %d priors; got %d", len(nb.Models), len(priors))
	}
	total := floats.Sum(priors)
	if total <= 0 {
		return fmt.Errorf("set priors: invalid priors %v", priors)
	}
	for i, p := range priors {
		if p < 0 {
			return fmt.Errorf("set priors: negative prior %g", p)
		}
		nb.priors[i] = math.Log(p / total)
	}
	return nil
}

func (nb *NaiveBayes[T]) joint(x T, dst []float64) []float64 {
	for i, m := range nb.Models {
		dst[i] = nb.priors[i] + m.LogProbability(x)
	}
	return dst
}

// LogProbability returns the log probability of x under the mixture of
// the class models weighted by the class priors.
func (nb *NaiveBayes[T]) LogProbability(x T) float64 {
	return floats.LogSumExp(nb.joint(x, make([]float64, len(nb.Models))))
}

// PredictLogProba returns the log posterior probabilities of the
// classes for each sample.  If a sample is impossible under every
// class model, all of its log posteriors are -Inf.
func (nb *NaiveBayes[T]) PredictLogProba(xs []T) [][]float64 {
	ret := make([][]float64, len(xs))
	for i, x := range xs {
		ret[i] = nb.joint(x, make([]float64, len(nb.Models)))
		norm := floats.LogSumExp(ret[i])
		for j := range ret[i] {
			if math.IsInf(norm, -1) {
				ret[i][j] = math.Inf(-1)
				continue
			}
			ret[i][j] -= norm
		}
	}
	return ret
}

// PredictProba returns the posterior probabilities of the classes for
// each sample.
func (nb *NaiveBayes[T]) PredictProba(xs []T) [][]float64 {
	ret := nb.PredictLogProba(xs)
	for i := range ret {
		for j := range ret[i] {
			ret[i][j] = math.Exp(ret[i][j])
		}
	}
	return ret
}

// Predict returns the most probable class for each sample.  Ties
// resolve to the lowest class index.
func (nb *NaiveBayes[T]) Predict(xs []T) []int {
	ret := make([]int, len(xs))
	joint := make([]float64, len(nb.Models))
	for i, x := range xs {
		ret[i] = bayeskit.Argmax(nb.joint(x, joint))
	}
	return ret
}

// Fit fits the class models to the labeled samples.  Each class model
// is fitted on the samples of its class; the class priors are set to
// the weighted class frequencies.  Class models without samples keep
// their parameters and get a prior of 0.
func (nb *NaiveBayes[T]) Fit(xs []T, ys []int, ws []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("fit: %d samples but %d labels", len(xs), len(ys))
	}
	ws, err := bayeskit.Weights(len(xs), ws)
	if err != nil {
		return fmt.Errorf("fit: %v", err)
	}
	type class struct {
		xs []T
		ws []float64
	}
	classes := make([]class, len(nb.Models))
	counts := make([]float64, len(nb.Models))
	for i, y := range ys {
		if y < 0 || y >= len(nb.Models) {
			return fmt.Errorf("fit: invalid label %d for %d classes", y, len(nb.Models))
		}
		classes[y].xs = append(classes[y].xs, xs[i])
		classes[y].ws = append(classes[y].ws, ws[i])
		counts[y] += ws[i]
	}
	total := floats.Sum(counts)
	if total == 0 {
		return fmt.Errorf("fit: %w", bayeskit.ErrNoData)
	}
	var g errgroup.Group
	for i := range nb.Models {
		if counts[i] == 0 {
			continue
		}
		i := i
		g.Go(func() error {
			if err := nb.Models[i].Fit(classes[i].xs, classes[i].ws); err != nil {
				return fmt.Errorf("fit class %d: %v", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range nb.priors {
		nb.priors[i] = math.Log(counts[i] / total)
	}
	bayeskit.Log("nb: fitted %d samples, %d classes, priors=%v", len(xs), len(nb.Models), nb.Priors())
	return nil
}
