package nb

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"gonum.org/v1/gonum/floats"
)

func coins() *NaiveBayes[string] {
	return New[string](
		dist.NewDiscrete(map[string]float64{"a": .8, "b": .2}),
		dist.NewDiscrete(map[string]float64{"a": .2, "b": .8}),
	)
}

func TestPredictProba(t *testing.T) {
	for _, tc := range []struct {
		priors []float64
		x      string
		want   []float64
	}{
		{nil, "a", []float64{.8, .2}},
		{nil, "b", []float64{.2, .8}},
		{[]float64{3, 1}, "a", []float64{.6 / .65, .05 / .65}},
		{[]float64{1, 0}, "b", []float64{1, 0}},
		{nil, "c", []float64{0, 0}},
	} {
		t.Run(fmt.Sprintf("%v %s", tc.priors, tc.x), func(t *testing.T) {
			nb := coins()
			if tc.priors != nil {
				if err := nb.SetPriors(tc.priors); err != nil {
					t.Fatalf("got error: %v", err)
				}
			}
			got := nb.PredictProba([]string{tc.x})[0]
			if !floats.EqualApprox(got, tc.want, 1e-9) {
				t.Fatalf("expected %v; got %v", tc.want, got)
			}
		})
	}
}

func TestLogProbability(t *testing.T) {
	nb := coins()
	if err := nb.SetPriors([]float64{.75, .25}); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if got, want := nb.LogProbability("a"), math.Log(.65); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %g; got %g", want, got)
	}
	if got := nb.LogProbability("c"); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf; got %g", got)
	}
}

func TestSetPriorsErrors(t *testing.T) {
	for _, priors := range [][]float64{{1}, {0, 0}, {-1, 2}} {
		t.Run(fmt.Sprint(priors), func(t *testing.T) {
			if err := coins().SetPriors(priors); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestFitDiscrete(t *testing.T) {
	nb := New[string](dist.UniformDiscrete("a", "b"), dist.UniformDiscrete("a", "b"))
	err := nb.Fit([]string{"a", "a", "b", "b", "b"}, []int{0, 0, 1, 1, 0}, nil)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if got, want := nb.Priors(), []float64{.6, .4}; !floats.EqualApprox(got, want, 1e-9) {
		t.Fatalf("expected priors %v; got %v", want, got)
	}
	want := map[string]float64{"a": 2. / 3., "b": 1. / 3.}
	got := nb.Models[0].(*dist.Discrete).Map()
	if math.Abs(got["a"]-want["a"]) > 1e-9 || math.Abs(got["b"]-want["b"]) > 1e-9 {
		t.Fatalf("expected %v; got %v", want, got)
	}
	if got := nb.Predict([]string{"a", "b"}); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("expected [0 1]; got %v", got)
	}
}

func TestFitWeighted(t *testing.T) {
	nb := New[string](dist.UniformDiscrete("a", "b"), dist.UniformDiscrete("a", "b"))
	err := nb.Fit([]string{"a", "b", "b"}, []int{0, 1, 1}, []float64{3, 0.5, 0.5})
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if got, want := nb.Priors(), []float64{.75, .25}; !floats.EqualApprox(got, want, 1e-9) {
		t.Fatalf("expected priors %v; got %v", want, got)
	}
}

func TestFitMissingClass(t *testing.T) {
	third := dist.NewDiscrete(map[string]float64{"a": .1, "b": .9})
	nb := New[string](dist.UniformDiscrete("a", "b"), dist.UniformDiscrete("a", "b"), third)
	if err := nb.Fit([]string{"a", "b"}, []int{0, 1}, nil); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if got, want := nb.Priors(), []float64{.5, .5, 0}; !floats.EqualApprox(got, want, 1e-9) {
		t.Fatalf("expected priors %v; got %v", want, got)
	}
	if got := third.Probability("b"); got != .9 {
		t.Fatalf("expected untouched class model; got p(b)=%g", got)
	}
	if got := nb.PredictProba([]string{"b"})[0][2]; got != 0 {
		t.Fatalf("expected posterior 0; got %g", got)
	}
}

func TestFitErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		xs   []string
		ys   []int
		ws   []float64
	}{
		{"labels", []string{"a"}, []int{0, 1}, nil},
		{"weights", []string{"a"}, []int{0}, []float64{1, 2}},
		{"label range", []string{"a"}, []int{2}, nil},
		{"negative label", []string{"a"}, []int{-1}, nil},
		{"no data", nil, nil, nil},
		{"zero weights", []string{"a", "b"}, []int{0, 1}, []float64{0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := coins().Fit(tc.xs, tc.ys, tc.ws); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if err := coins().Fit(nil, nil, nil); !errors.Is(err, bayeskit.ErrNoData) {
		t.Fatalf("expected ErrNoData; got %v", err)
	}
}

func TestHeights(t *testing.T) {
	xs := [][]float64{
		{6}, {5.92}, {5.58}, {5.92}, {6.08}, {5.83},
		{5}, {5.5}, {5.42}, {5.75}, {5.17}, {5},
	}
	ys := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	nb := New[[]float64](
		dist.NewIndependent(dist.NewNormal(0, 1)),
		dist.NewIndependent(dist.NewNormal(0, 1)),
	)
	if err := nb.Fit(xs, ys, nil); err != nil {
		t.Fatalf("got error: %v", err)
	}
	got := nb.Predict([][]float64{{6}, {5}, {5.9}, {5.2}})
	if want := []int{0, 1, 0, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
	for _, p := range nb.PredictProba([][]float64{{5.6}}) {
		if sum := floats.Sum(p); math.Abs(sum-1) > 1e-9 {
			t.Fatalf("expected probabilities to sum to 1; got %g", sum)
		}
	}
}

func TestPeople(t *testing.T) {
	// height, weight, foot size
	xs := [][]float64{
		{6, 180, 12}, {5.92, 190, 11}, {5.58, 170, 12}, {5.92, 165, 10},
		{5, 100, 6}, {5.5, 150, 8}, {5.42, 130, 7}, {5.75, 150, 9},
	}
	ys := []int{0, 0, 0, 0, 1, 1, 1, 1}
	components := func() bayeskit.Model[[]float64] {
		return dist.NewIndependent(dist.NewNormal(0, 1), dist.NewNormal(0, 1), dist.NewNormal(0, 1))
	}
	nb := New(components(), components())
	if err := nb.Fit(xs, ys, nil); err != nil {
		t.Fatalf("got error: %v", err)
	}
	got := nb.PredictProba([][]float64{{6, 130, 8}})[0]
	if got[1] < .99 {
		t.Fatalf("expected female with high probability; got %v", got)
	}
}
