package dist

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"gonum.org/v1/gonum/floats"
)

func TestLogProbability(t *testing.T) {
	for _, tc := range []struct {
		d    Univariate
		x    float64
		want float64
	}{
		{NewNormal(0, 1), 0, -0.9189385332046727},
		{NewNormal(5, 2), 5, -0.9189385332046727 - math.Log(2)},
		{NewUniform(0, 10), 5, math.Log(.1)},
		{NewUniform(0, 10), 11, math.Inf(-1)},
		{NewUniform(3, 3), 3, 0},
		{NewExponential(1), 1, -1},
		{NewExponential(1), -1, math.Inf(-1)},
		{NewBernoulli(.4), 1, math.Log(.4)},
		{NewBernoulli(.4), 0, math.Log(.6)},
		{NewBernoulli(.4), 2, math.Inf(-1)},
	} {
		t.Run(fmt.Sprintf("%v(%g)", tc.d, tc.x), func(t *testing.T) {
			if got := tc.d.LogProbability(tc.x); !floatEqual(got, tc.want, 1e-9) {
				t.Fatalf("expected %g; got %g", tc.want, got)
			}
		})
	}
}

func TestUnivariateFit(t *testing.T) {
	heights := []float64{6.0, 5.92, 5.58, 5.92, 6.08, 5.83}
	for _, tc := range []struct {
		d    Univariate
		xs   []float64
		ws   []float64
		want []float64
	}{
		{new(Normal), heights, nil, []float64{5.888333333333333, 0.1579468968426484}},
		{new(Normal), []float64{1, 2, 100}, []float64{1, 1, 0}, []float64{1.5, .5}},
		{new(Normal), []float64{3, 3}, nil, []float64{3, MinStd}},
		{new(Uniform), []float64{4, 1, 9, 2}, nil, []float64{1, 9}},
		{new(Uniform), []float64{4, 1, 9, 2}, []float64{1, 1, 0, 1}, []float64{1, 4}},
		{new(Exponential), []float64{1, 2, 3}, nil, []float64{.5}},
		{new(Bernoulli), []float64{1, 0, 1, 0, 1}, nil, []float64{.6}},
		{new(Bernoulli), []float64{1, 0}, []float64{3, 1}, []float64{.75}},
	} {
		t.Run(fmt.Sprintf("%s%v", tc.d.Name(), tc.xs), func(t *testing.T) {
			if err := tc.d.Fit(tc.xs, tc.ws); err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := tc.d.Parameters(); !floats.EqualApprox(got, tc.want, 1e-9) {
				t.Fatalf("expected %v; got %v", tc.want, got)
			}
		})
	}
}

func TestFitErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		d    Univariate
		xs   []float64
		ws   []float64
	}{
		{"empty", new(Normal), nil, nil},
		{"zero weights", new(Normal), []float64{1, 2}, []float64{0, 0}},
		{"bad weights", new(Uniform), []float64{1, 2}, []float64{1}},
		{"negative weight", new(Uniform), []float64{1, 2}, []float64{1, -1}},
		{"negative sample", new(Exponential), []float64{1, -2}, nil},
		{"zero mean", new(Exponential), []float64{0, 0}, nil},
		{"bad bernoulli", new(Bernoulli), []float64{1, .5}, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.d.Fit(tc.xs, tc.ws); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if err := new(Normal).Fit(nil, nil); !errors.Is(err, bayeskit.ErrNoData) {
		t.Fatalf("expected ErrNoData; got %v", err)
	}
}

func TestFromSamples(t *testing.T) {
	n, err := NormalFromSamples([]float64{1, 0, 1, 0, 1, 0}, nil)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if n.Mu != .5 || n.Sigma != .5 {
		t.Fatalf("expected normal(.5, .5); got %s", n)
	}
	u, err := UniformFromSamples([]float64{2, 7}, nil)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if u.Min != 2 || u.Max != 7 {
		t.Fatalf("expected uniform(2, 7); got %s", u)
	}
	e, err := ExponentialFromSamples([]float64{.5, .5}, nil)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if e.Rate != 2 {
		t.Fatalf("expected exponential(2); got %s", e)
	}
}

func TestBernoulliSample(t *testing.T) {
	src := NewSource(42)
	b := NewBernoulli(.4)
	xs := SampleN[float64](b, 2000, src)
	var ones float64
	for _, x := range xs {
		if x != 0 && x != 1 {
			t.Fatalf("invalid sample %g", x)
		}
		ones += x
	}
	if got := ones / float64(len(xs)); math.Abs(got-.4) > .05 {
		t.Fatalf("expected a fraction of ones close to .4; got %g", got)
	}
}

func TestSampleFit(t *testing.T) {
	src := NewSource(7)
	want := NewNormal(5, 2)
	got, err := NormalFromSamples(SampleN[float64](want, 5000, src), nil)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if math.Abs(got.Mu-want.Mu) > .1 || math.Abs(got.Sigma-want.Sigma) > .1 {
		t.Fatalf("expected %s; got %s", want, got)
	}
}

func floatEqual(a, b, tolerance float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= tolerance
}
