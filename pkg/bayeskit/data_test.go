package bayeskit

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestReadCSV(t *testing.T) {
	for _, tc := range []struct {
		name, test string
		labeled    bool
		want       Dataset
		iserr      bool
	}{
		{"empty", "", false, Dataset{}, false},
		{"unlabeled", "1,2\n3,4\n", false, Dataset{X: [][]float64{{1, 2}, {3, 4}}}, false},
		{"labeled", "1,2,0\n3,4,1\n", true,
			Dataset{X: [][]float64{{1, 2}, {3, 4}}, Y: []int{0, 1}}, false},
		{"header", "a, b,class\n# comment\n1.5, 2,1\n", true,
			Dataset{Names: []string{"a", "b", "class"}, X: [][]float64{{1.5, 2}}, Y: []int{1}}, false},
		{"bad label", "1,2,x\n3,4,1\n1,2,y\n", true, Dataset{}, true},
		{"missing label", "1\n", true, Dataset{}, true},
		{"bad value", "1,2\n3,x\n", false, Dataset{}, true},
		{"ragged", "1,2\n3,4,5\n", false, Dataset{}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tc.test), tc.labeled)
			if tc.iserr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v; got %v", tc.want, got)
			}
		})
	}
}

func TestReadCSVLine(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n# one\n# two\n1,2\n3,x\n"), false)
	if err == nil || !strings.Contains(err.Error(), "line 5:") {
		t.Fatalf("expected error on line 5; got %v", err)
	}
}

func TestDatasetSplit(t *testing.T) {
	d := Dataset{X: [][]float64{{1}, {2}, {3}}, Y: []int{1, 0, 1}}
	want := map[int][][]float64{0: {{2}}, 1: {{1}, {3}}}
	if got := d.Split(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
	m := d.Matrix()
	if r, c := m.Dims(); r != 3 || c != 1 || m.At(2, 0) != 3 {
		t.Fatalf("invalid matrix %v", mat.Formatted(m))
	}
}

func TestReadSymbols(t *testing.T) {
	names, rows, err := ReadSymbols(strings.NewReader("guest,prize,monty\nA,A,B\nA,C,B\n"), true)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if want := []string{"guest", "prize", "monty"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v; got %v", want, names)
	}
	if want := [][]string{{"A", "A", "B"}, {"A", "C", "B"}}; !reflect.DeepEqual(rows, want) {
		t.Fatalf("expected %v; got %v", want, rows)
	}
}

func TestReadSequences(t *testing.T) {
	got, err := ReadSequences(strings.NewReader("# coins\nHHT\n\nH, T,H\n"))
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	want := [][]string{{"H", "H", "T"}, {"H", "T", "H"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}
}

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name  string
		test  []float64
		want  []float64
		iserr bool
	}{
		{"simple", []float64{1, 1, 3, 0}, []float64{-0.5, 0.5, 0.5, -0.5}, false},
		{"boolean", []float64{1, 1, 1, 1}, []float64{0, 0, 0, 0}, false},
		{"constant", []float64{2, 1, 2, 1}, nil, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			x := mat.NewDense(2, 2, tc.test)
			err := Normalize(x)
			if tc.iserr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if want := mat.NewDense(2, 2, tc.want); !mat.EqualApprox(x, want, 1e-12) {
				t.Fatalf("expected %v; got %v", mat.Formatted(want), mat.Formatted(x))
			}
		})
	}
}

func TestZScore(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	if err := ZScore(x); err != nil {
		t.Fatalf("got error: %v", err)
	}
	std := math.Sqrt(1.25)
	want := mat.NewDense(4, 2, []float64{
		-1.5 / std, 0,
		-0.5 / std, 0,
		0.5 / std, 0,
		1.5 / std, 0,
	})
	if !mat.EqualApprox(x, want, 1e-12) {
		t.Fatalf("expected %v; got %v", mat.Formatted(want), mat.Formatted(x))
	}
}
