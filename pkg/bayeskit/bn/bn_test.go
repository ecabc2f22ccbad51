package bn

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"go.uber.org/multierr"
)

func montyRows() []Row {
	return []Row{
		R(0.0, "A", "A", "A"), R(0.5, "A", "A", "B"), R(0.5, "A", "A", "C"),
		R(0.0, "A", "B", "A"), R(0.0, "A", "B", "B"), R(1.0, "A", "B", "C"),
		R(0.0, "A", "C", "A"), R(1.0, "A", "C", "B"), R(0.0, "A", "C", "C"),
		R(0.0, "B", "A", "A"), R(0.0, "B", "A", "B"), R(1.0, "B", "A", "C"),
		R(0.5, "B", "B", "A"), R(0.0, "B", "B", "B"), R(0.5, "B", "B", "C"),
		R(1.0, "B", "C", "A"), R(0.0, "B", "C", "B"), R(0.0, "B", "C", "C"),
		R(0.0, "C", "A", "A"), R(1.0, "C", "A", "B"), R(0.0, "C", "A", "C"),
		R(1.0, "C", "B", "A"), R(0.0, "C", "B", "B"), R(0.0, "C", "B", "C"),
		R(0.5, "C", "C", "A"), R(0.5, "C", "C", "B"), R(0.0, "C", "C", "C"),
	}
}

func montyHall(t *testing.T) *Network {
	guest := dist.UniformDiscrete("A", "B", "C")
	prize := dist.UniformDiscrete("A", "B", "C")
	monty, err := NewConditionalTable(montyRows(), guest, prize)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	s1 := NewState("guest", guest)
	s2 := NewState("prize", prize)
	s3 := NewState("monty", monty)
	nw := New("test")
	nw.AddStates(s1, s2, s3)
	nw.AddTransition(s1, s3)
	nw.AddTransition(s2, s3)
	if err := nw.Bake(); err != nil {
		t.Fatalf("got error: %v", err)
	}
	return nw
}

func checkBeliefs(t *testing.T, got []*dist.Discrete, want [][]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d beliefs; got %d", len(want), len(got))
	}
	for i, d := range got {
		for k, key := range []string{"A", "B", "C"} {
			if p := d.Probability(key); math.Abs(p-want[i][k]) > 1e-9 {
				t.Fatalf("belief %d: expected p(%s)=%g; got %g\n%s", i, key, want[i][k], p, d)
			}
		}
	}
}

func TestPredictProba(t *testing.T) {
	third := 1. / 3.
	for _, tc := range []struct {
		name string
		obs  map[string]string
		want [][]float64
	}{
		{"no observations", nil, [][]float64{
			{third, third, third}, {third, third, third}, {third, third, third}}},
		{"guest A", map[string]string{"guest": "A"}, [][]float64{
			{1, 0, 0}, {third, third, third}, {0, .5, .5}}},
		{"guest A monty B", map[string]string{"guest": "A", "monty": "B"}, [][]float64{
			{1, 0, 0}, {third, 0, 2 * third}, {0, 1, 0}}},
		{"monty B", map[string]string{"monty": "B"}, [][]float64{
			{.5, 0, .5}, {.5, 0, .5}, {0, 1, 0}}},
		{"all", map[string]string{"guest": "A", "prize": "B", "monty": "C"}, [][]float64{
			{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := montyHall(t).PredictProba(tc.obs)
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			checkBeliefs(t, got, tc.want)
		})
	}
}

func TestPredictProbaErrors(t *testing.T) {
	for _, tc := range []struct {
		name       string
		obs        map[string]string
		impossible bool
	}{
		{"unknown state", map[string]string{"host": "A"}, false},
		{"unknown value", map[string]string{"guest": "D"}, false},
		{"impossible", map[string]string{"guest": "A", "monty": "A"}, true},
		{"impossible full", map[string]string{"guest": "A", "prize": "A", "monty": "A"}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := montyHall(t).PredictProba(tc.obs)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := errors.Is(err, ErrImpossibleEvidence); got != tc.impossible {
				t.Fatalf("expected impossible=%t; got %v", tc.impossible, err)
			}
		})
	}
}

func TestProbability(t *testing.T) {
	nw := montyHall(t)
	if got, want := nw.Probability([]string{"A", "B", "C"}), 1./9.; math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %g; got %g", want, got)
	}
	if got := nw.LogProbability([]string{"A", "A", "A"}); !math.IsInf(got, -1) {
		t.Fatalf("expected -Inf; got %g", got)
	}
	var names []string
	for _, s := range nw.States() {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, "\t"); got != "guest\tprize\tmonty" {
		t.Fatalf("invalid states: %s", got)
	}
}

func TestFit(t *testing.T) {
	nw := montyHall(t)
	data := [][]string{
		{"A", "A", "C"}, {"A", "A", "C"}, {"A", "A", "B"}, {"A", "A", "A"},
		{"A", "A", "C"}, {"B", "B", "B"}, {"B", "B", "C"}, {"C", "C", "A"},
		{"C", "C", "C"}, {"C", "C", "C"}, {"C", "C", "C"}, {"C", "B", "A"},
	}
	if err := nw.Fit(data, nil); err != nil {
		t.Fatalf("got error: %v", err)
	}
	guest := nw.State("guest").Distribution.(*dist.Discrete)
	prize := nw.State("prize").Distribution.(*dist.Discrete)
	monty := nw.State("monty").Distribution.(*ConditionalTable)
	for _, tc := range []struct {
		got, want float64
	}{
		{guest.Probability("A"), 5. / 12.},
		{guest.Probability("B"), 2. / 12.},
		{prize.Probability("B"), 3. / 12.},
		{prize.Probability("C"), 4. / 12.},
		{monty.Probability("A", "A", "A"), .2},
		{monty.Probability("A", "A", "C"), .6},
		{monty.Probability("B", "B", "A"), 0},
		{monty.Probability("B", "B", "B"), .5},
		{monty.Probability("C", "C", "C"), .75},
		{monty.Probability("C", "B", "A"), 1},
		{monty.Probability("A", "B", "C"), 1. / 3.},
	} {
		if math.Abs(tc.got-tc.want) > 1e-12 {
			t.Fatalf("expected %g; got %g\n%s", tc.want, tc.got, monty)
		}
	}
}

func TestFitPseudocount(t *testing.T) {
	nw := montyHall(t)
	nw.Pseudocount = 1
	if err := nw.Fit([][]string{{"A", "A", "B"}}, nil); err != nil {
		t.Fatalf("got error: %v", err)
	}
	monty := nw.State("monty").Distribution.(*ConditionalTable)
	if got := monty.Probability("A", "A", "B"); math.Abs(got-.5) > 1e-12 {
		t.Fatalf("expected .5; got %g", got)
	}
	guest := nw.State("guest").Distribution.(*dist.Discrete)
	if got := guest.Probability("A"); math.Abs(got-.5) > 1e-12 {
		t.Fatalf("expected .5; got %g", got)
	}
}

func TestTrainAndQuery(t *testing.T) {
	nw := montyHall(t)
	data := [][]string{
		{"A", "A", "A"}, {"A", "A", "A"}, {"A", "A", "A"}, {"A", "A", "A"},
		{"A", "A", "A"}, {"B", "B", "B"}, {"B", "B", "C"}, {"C", "C", "A"},
		{"C", "C", "C"}, {"C", "C", "C"}, {"C", "C", "C"}, {"C", "B", "A"},
	}
	if err := nw.Fit(data, nil); err != nil {
		t.Fatalf("got error: %v", err)
	}
	got, err := nw.PredictProba(map[string]string{"guest": "A", "prize": "A"})
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	checkBeliefs(t, got, [][]float64{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}})
}

func TestFitErrors(t *testing.T) {
	nw := montyHall(t)
	if err := nw.Fit(nil, nil); err == nil {
		t.Fatalf("expected an error")
	}
	if err := nw.Fit([][]string{{"A", "B"}}, nil); err == nil {
		t.Fatalf("expected an error")
	}
	if err := nw.Fit([][]string{{"A", "B", "C"}}, []float64{1, 2}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestBake(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func() *Network
		want  string
	}{
		{"cycle", func() *Network {
			a := dist.UniformDiscrete("x", "y")
			b, _ := NewConditionalTable([]Row{R(1, "x", "x"), R(1, "y", "y")}, a)
			c, _ := NewConditionalTable([]Row{R(1, "x", "x"), R(1, "y", "y")}, b)
			d, _ := NewConditionalTable([]Row{R(1, "x", "x"), R(1, "y", "y")}, c)
			sb, sc, sd := NewState("b", b), NewState("c", c), NewState("d", d)
			nw := New("test")
			nw.AddStates(NewState("a", a), sb, sc, sd)
			nw.AddTransition(sb, sc)
			nw.AddTransition(sc, sd)
			nw.AddTransition(sd, sb)
			return nw
		}, "cycle"},
		{"missing transition", func() *Network {
			a := dist.UniformDiscrete("x", "y")
			b, _ := NewConditionalTable([]Row{R(1, "x", "x"), R(1, "y", "y")}, a)
			nw := New("test")
			nw.AddStates(NewState("a", a), NewState("b", b))
			return nw
		}, "missing transition"},
		{"not a parent", func() *Network {
			a := dist.UniformDiscrete("x", "y")
			b := dist.UniformDiscrete("x", "y")
			sa, sb := NewState("a", a), NewState("b", b)
			nw := New("test")
			nw.AddStates(sa, sb)
			nw.AddTransition(sa, sb)
			return nw
		}, "parents without conditional table"},
		{"sums", func() *Network {
			a := dist.UniformDiscrete("x", "y")
			b, _ := NewConditionalTable([]Row{R(1, "x", "x"), R(.5, "y", "y")}, a)
			sa, sb := NewState("a", a), NewState("b", b)
			nw := New("test")
			nw.AddStates(sa, sb)
			nw.AddTransition(sa, sb)
			return nw
		}, "sum to 0.5"},
		{"discrete sums", func() *Network {
			nw := New("test")
			nw.AddState(NewState("a", dist.NewDiscrete(map[string]float64{"x": .5})))
			return nw
		}, "sum to 0.5"},
		{"duplicate", func() *Network {
			nw := New("test")
			nw.AddStates(NewState("a", dist.UniformDiscrete("x")), NewState("a", dist.UniformDiscrete("x")))
			return nw
		}, "duplicate state name"},
		{"unknown parent", func() *Network {
			a := dist.UniformDiscrete("x", "y")
			b, _ := NewConditionalTable([]Row{R(1, "x", "x"), R(1, "y", "y")}, a)
			nw := New("test")
			nw.AddStates(NewState("b", b))
			return nw
		}, "not a state of the network"},
		{"self loop", func() *Network {
			a := NewState("a", dist.UniformDiscrete("x"))
			nw := New("test")
			nw.AddState(a)
			nw.AddTransition(a, a)
			return nw
		}, "self loop"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build().Bake()
			if err == nil {
				t.Fatalf("expected an error")
			}
			var found bool
			for _, e := range multierr.Errors(err) {
				found = found || strings.Contains(e.Error(), tc.want)
			}
			if !found {
				t.Fatalf("expected error containing %q; got %v", tc.want, err)
			}
		})
	}
}

func TestConditionalTable(t *testing.T) {
	guest := dist.UniformDiscrete("A", "B", "C")
	prize := dist.UniformDiscrete("A", "B", "C")
	monty, err := NewConditionalTable(montyRows(), guest, prize)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	lines := strings.Split(monty.String(), "\n")
	if len(lines) != 27 {
		t.Fatalf("expected 27 lines; got %d", len(lines))
	}
	if lines[1] != "A\tA\tB\t0.5" || lines[26] != "C\tC\tC\t0" {
		t.Fatalf("invalid table:\n%s", monty)
	}
	for _, rows := range [][]Row{
		{R(1, "A")},
		{R(-1, "A", "A", "A")},
		{R(1, "A", "A", "A"), R(1, "A", "A", "A")},
	} {
		if _, err := NewConditionalTable(rows, guest, prize); err == nil {
			t.Fatalf("expected an error for %v", rows)
		}
	}
	if _, err := NewConditionalTable(montyRows()); err == nil {
		t.Fatalf("expected an error without parents")
	}
}

func TestXMLBIF(t *testing.T) {
	nw := montyHall(t)
	var buf bytes.Buffer
	if err := nw.WriteXMLBIF(&buf); err != nil {
		t.Fatalf("got error: %v", err)
	}
	nw2, err := ReadXMLBIF(&buf)
	if err != nil {
		t.Fatalf("got error: %v\n%s", err, buf.String())
	}
	if nw2.Name != "test" || len(nw2.States()) != 3 {
		t.Fatalf("invalid network %s with %d states", nw2.Name, len(nw2.States()))
	}
	got, err := nw2.PredictProba(map[string]string{"guest": "A", "monty": "B"})
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	checkBeliefs(t, got, [][]float64{{1, 0, 0}, {1. / 3., 0, 2. / 3.}, {0, 1, 0}})
}

const rain = `<?xml version="1.0"?>
<BIF VERSION="0.3">
<NETWORK>
<NAME>rain</NAME>
<VARIABLE TYPE="nature">
	<NAME>rain</NAME>
	<OUTCOME>T</OUTCOME>
	<OUTCOME>F</OUTCOME>
	<PROPERTY>position = (0, 0)</PROPERTY>
</VARIABLE>
<VARIABLE TYPE="nature">
	<NAME>wet</NAME>
	<OUTCOME>T</OUTCOME>
	<OUTCOME>F</OUTCOME>
</VARIABLE>
<DEFINITION>
	<FOR>wet</FOR>
	<GIVEN>rain</GIVEN>
	<TABLE>0.9 0.1 0.2 0.8</TABLE>
</DEFINITION>
<DEFINITION>
	<FOR>rain</FOR>
	<TABLE>0.2 0.8</TABLE>
</DEFINITION>
</NETWORK>
</BIF>
`

func TestReadXMLBIF(t *testing.T) {
	nw, err := ReadXMLBIF(strings.NewReader(rain))
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	got, err := nw.PredictProba(map[string]string{"wet": "T"})
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if p, want := got[0].Probability("T"), .18/.34; math.Abs(p-want) > 1e-9 {
		t.Fatalf("expected %g; got %g", want, p)
	}
	wet := nw.State("wet").Distribution.(*ConditionalTable)
	if p := wet.Probability("F", "T"); p != .2 {
		t.Fatalf("expected .2; got %g", p)
	}
}

func TestReadXMLBIFErrors(t *testing.T) {
	for _, tc := range []struct {
		name, test string
	}{
		{"no network", "<BIF></BIF>"},
		{"short table", strings.Replace(rain, "0.9 0.1 0.2 0.8", "0.9 0.1", 1)},
		{"unknown given", strings.Replace(rain, "<GIVEN>rain</GIVEN>", "<GIVEN>snow</GIVEN>", 1)},
		{"cycle", strings.Replace(rain, "<FOR>rain</FOR>", "<FOR>rain</FOR><GIVEN>wet</GIVEN>", 1)},
		{"bad number", strings.Replace(rain, "0.2 0.8</TABLE>", "0.2 x</TABLE>", 1)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadXMLBIF(strings.NewReader(tc.test)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	if err := montyHall(t).WriteDOT(&buf); err != nil {
		t.Fatalf("got error: %v", err)
	}
	for _, want := range []string{"digraph test {", "guest -> monty", "prize -> monty"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in %s", want, buf.String())
		}
	}
}
