package dist

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		test string
		want string
		err  bool
	}{
		{"normal:5,2", "normal(mu=5, sigma=2)", false},
		{"Uniform: 0, 10", "uniform(min=0, max=10)", false},
		{"exponential:1", "exponential(rate=1)", false},
		{"bernoulli:0.4", "bernoulli(p=0.4)", false},
		{"discrete:H=.8,T=.2", "H\t0.8\nT\t0.2", false},
		{"normal:5", "", true},
		{"normal:5,-1", "", true},
		{"bernoulli:2", "", true},
		{"gamma:1,2", "", true},
		{"discrete:H", "", true},
	} {
		t.Run(tc.test, func(t *testing.T) {
			d, err := Parse(tc.test)
			if tc.err {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got := d.(interface{ String() string }).String(); got != tc.want {
				t.Fatalf("expected %q; got %q", tc.want, got)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	mvn, err := MultivariateGaussianFromSamples([][]float64{{6, 180}, {5.92, 190}, {5.58, 170}}, nil)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	ind := NewIndependent(NewNormal(1, 2), NewUniform(0, 3))
	for _, d := range []interface{}{mvn, ind, NewDiscrete(map[string]float64{"a": 1})} {
		spec, err := Encode(d)
		if err != nil {
			t.Fatalf("got error: %v", err)
		}
		data, err := json.Marshal(spec)
		if err != nil {
			t.Fatalf("got error: %v", err)
		}
		var back Spec
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("got error: %v", err)
		}
		got, err := Decode(back)
		if err != nil {
			t.Fatalf("got error: %v", err)
		}
		again, err := Encode(got)
		if err != nil {
			t.Fatalf("got error: %v", err)
		}
		if diff := cmp.Diff(spec, again, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Fatalf("spec mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNew(t *testing.T) {
	d, err := New("normal", 3)
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	if got := len(d.(*Independent).Components); got != 3 {
		t.Fatalf("expected 3 components; got %d", got)
	}
	if _, err := New("mvn", 3); err != nil {
		t.Fatalf("got error: %v", err)
	}
	if _, err := New("cauchy", 1); err == nil {
		t.Fatalf("expected an error")
	}
}
