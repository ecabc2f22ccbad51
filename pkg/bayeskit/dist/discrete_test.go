package dist

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
)

func TestDiscrete(t *testing.T) {
	d := NewDiscrete(map[string]float64{"T": .2, "H": .8})
	if got, want := d.Keys(), []string{"H", "T"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
	if got := d.LogProbability("H"); !floatEqual(got, math.Log(.8), 1e-12) {
		t.Fatalf("expected %g; got %g", math.Log(.8), got)
	}
	if got := d.LogProbability("X"); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf; got %g", got)
	}
	if got, want := d.String(), "H\t0.8\nT\t0.2"; got != want {
		t.Fatalf("expected %q; got %q", want, got)
	}
}

func TestDiscreteFit(t *testing.T) {
	for _, tc := range []struct {
		name        string
		init        map[string]float64
		pseudocount float64
		xs          []string
		ws          []float64
		want        map[string]float64
	}{
		{"counts", nil, 0, []string{"A", "B", "A", "A"}, nil,
			map[string]float64{"A": .75, "B": .25}},
		{"weighted", nil, 0, []string{"A", "B"}, []float64{1, 3},
			map[string]float64{"A": .25, "B": .75}},
		{"known keys", map[string]float64{"A": .5, "C": .5}, 0, []string{"A", "B"}, nil,
			map[string]float64{"A": .5, "B": .5, "C": 0}},
		{"pseudocount", map[string]float64{"A": .5, "C": .5}, 1, []string{"A", "A"}, nil,
			map[string]float64{"A": .75, "C": .25}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDiscrete(tc.init)
			d.Pseudocount = tc.pseudocount
			if err := d.Fit(tc.xs, tc.ws); err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := d.Map(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v; got %v", tc.want, got)
			}
		})
	}
}

func TestDiscreteFitNoData(t *testing.T) {
	for _, tc := range []struct {
		name string
		xs   []string
		ws   []float64
	}{
		{"empty", nil, nil},
		{"zero weights", []string{"A", "B"}, []float64{0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDiscrete(map[string]float64{"A": .9, "B": .1})
			d.Pseudocount = 1
			if err := d.Fit(tc.xs, tc.ws); !errors.Is(err, bayeskit.ErrNoData) {
				t.Fatalf("expected %v; got %v", bayeskit.ErrNoData, err)
			}
			if got, want := d.Map(), map[string]float64{"A": .9, "B": .1}; !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %v; got %v", want, got)
			}
		})
	}
}

func TestDiscreteSample(t *testing.T) {
	src := NewSource(1)
	d := NewDiscrete(map[string]float64{"H": .8, "T": .2})
	counts := make(map[string]int)
	for _, x := range SampleN[string](d, 1000, src) {
		counts[x]++
	}
	if len(counts) != 2 || counts["H"] < 700 || counts["H"] > 900 {
		t.Fatalf("bad sample counts: %v", counts)
	}
	if got := PointMass("B", "A", "B", "C").Sample(src); got != "B" {
		t.Fatalf("expected B; got %s", got)
	}
}
