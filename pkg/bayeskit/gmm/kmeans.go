package gmm

import (
	"fmt"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Options configure FromSamples.
type Options struct {
	MaxIterations    int     // EM iterations (DefaultMaxIterations if 0)
	StopThreshold    float64 // EM stop threshold (DefaultStopThreshold if 0)
	KMeansIterations int     // Lloyd iterations after seeding (10 if 0)
	Seed             uint64  // Random seed of the k-means++ seeding (time based if 0)
}

// FromSamples creates a mixture of k components and fits it to the
// given samples.  The samples are clustered using k-means with
// k-means++ seeding.  Each component is created with newComponent and
// fitted to the samples of its cluster; the mixture weights are set to
// the relative cluster sizes.  The mixture is then refined with EM.
func FromSamples(k int, xs [][]float64, newComponent func() bayeskit.Model[[]float64],
	opts Options) (*Mixture[[]float64], error) {
	if k < 1 {
		return nil, fmt.Errorf("from samples: invalid number of components: %d", k)
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("from samples: %w", bayeskit.ErrNoData)
	}
	if k > len(xs) {
		return nil, fmt.Errorf("from samples: %d components for %d samples", k, len(xs))
	}
	if opts.KMeansIterations == 0 {
		opts.KMeansIterations = 10
	}
	r := rand.New(dist.NewSource(opts.Seed))
	centers, err := seed(r, k, xs)
	if err != nil {
		return nil, fmt.Errorf("from samples: %v", err)
	}
	labels := kmeans(centers, xs, opts.KMeansIterations)
	components := make([]bayeskit.Model[[]float64], k)
	counts := make([]float64, k)
	for j := range components {
		ws := make([]float64, len(xs))
		for i, label := range labels {
			if label == j {
				ws[i] = 1
				counts[j]++
			}
		}
		components[j] = newComponent()
		if err := components[j].Fit(xs, ws); err != nil {
			return nil, fmt.Errorf("from samples: component %d: %v", j, err)
		}
	}
	m := New(components...)
	if err := m.SetWeights(counts); err != nil {
		return nil, fmt.Errorf("from samples: %v", err)
	}
	if opts.MaxIterations > 0 {
		m.MaxIterations = opts.MaxIterations
	}
	if opts.StopThreshold > 0 {
		m.StopThreshold = opts.StopThreshold
	}
	if err := m.Fit(xs, nil); err != nil {
		return nil, fmt.Errorf("from samples: %v", err)
	}
	return m, nil
}

// seed selects k initial centers with k-means++: the first center is
// chosen uniformly, every further center with a probability
// proportional to its squared distance to the closest center.
func seed(r *rand.Rand, k int, xs [][]float64) ([][]float64, error) {
	centers := make([][]float64, 0, k)
	centers = append(centers, xs[r.Intn(len(xs))])
	ds := make([]float64, len(xs))
	for len(centers) < k {
		for i, x := range xs {
			ds[i] = sqdist(x, centers[closest(centers, x)])
		}
		total := floats.Sum(ds)
		if total == 0 {
			return nil, fmt.Errorf("seed: less than %d distinct samples", k)
		}
		p := r.Float64() * total
		next := len(xs) - 1
		for i, d := range ds {
			if p < d {
				next = i
				break
			}
			p -= d
		}
		centers = append(centers, xs[next])
	}
	return centers, nil
}

// kmeans runs Lloyd's algorithm and returns the cluster of each
// sample.  Clusters that lose all of their samples keep their center.
func kmeans(centers [][]float64, xs [][]float64, iterations int) []int {
	cs := make([][]float64, len(centers))
	for i := range centers {
		cs[i] = append([]float64(nil), centers[i]...)
	}
	labels := make([]int, len(xs))
	for iter := 0; iter < iterations; iter++ {
		changed := false
		for i, x := range xs {
			if c := closest(cs, x); c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		counts := make([]float64, len(cs))
		sums := make([][]float64, len(cs))
		for j := range sums {
			sums[j] = make([]float64, len(cs[j]))
		}
		for i, x := range xs {
			floats.Add(sums[labels[i]], x)
			counts[labels[i]]++
		}
		for j := range cs {
			if counts[j] == 0 {
				continue
			}
			floats.ScaleTo(cs[j], 1/counts[j], sums[j])
		}
	}
	// Clusters that end up empty steal the sample farthest from its center.
	for j := range cs {
		if contains(labels, j) {
			continue
		}
		var far int
		var max float64
		for i, x := range xs {
			if d := sqdist(x, cs[labels[i]]); d > max && count(labels, labels[i]) > 1 {
				far, max = i, d
			}
		}
		labels[far] = j
	}
	return labels
}

func closest(cs [][]float64, x []float64) int {
	best, min := 0, sqdist(x, cs[0])
	for j := 1; j < len(cs); j++ {
		if d := sqdist(x, cs[j]); d < min {
			best, min = j, d
		}
	}
	return best
}

func sqdist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func contains(labels []int, j int) bool {
	return count(labels, j) > 0
}

func count(labels []int, j int) int {
	var n int
	for _, l := range labels {
		if l == j {
			n++
		}
	}
	return n
}
