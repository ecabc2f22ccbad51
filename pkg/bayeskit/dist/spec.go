package dist

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Spec is the serializable description of a distribution.
type Spec struct {
	Name          string             `json:"name"`
	Parameters    []float64          `json:"parameters,omitempty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Mu            []float64          `json:"mu,omitempty"`
	Cov           []float64          `json:"cov,omitempty"`
	Components    []Spec             `json:"components,omitempty"`
}

// Encode returns the spec of the given distribution.
func Encode(d interface{}) (Spec, error) {
	switch t := d.(type) {
	case Univariate:
		return Spec{Name: t.Name(), Parameters: t.Parameters()}, nil
	case *Discrete:
		return Spec{Name: t.Name(), Probabilities: t.Map()}, nil
	case *MultivariateGaussian:
		if t.mu == nil {
			return Spec{Name: t.Name()}, nil
		}
		n := t.Dim()
		cov := make([]float64, 0, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				cov = append(cov, t.cov.At(i, j))
			}
		}
		return Spec{Name: t.Name(), Mu: t.mu, Cov: cov}, nil
	case *Independent:
		s := Spec{Name: t.Name()}
		for _, c := range t.Components {
			cs, err := Encode(c)
			if err != nil {
				return Spec{}, err
			}
			s.Components = append(s.Components, cs)
		}
		return s, nil
	default:
		return Spec{}, fmt.Errorf("encode: unsupported distribution %T", d)
	}
}

// Decode returns the distribution for the given spec.  The returned
// value is either a Univariate, a *Discrete, a *MultivariateGaussian
// or an *Independent.
func Decode(s Spec) (interface{}, error) {
	switch s.Name {
	case "normal", "uniform", "exponential", "bernoulli":
		return newUnivariate(s.Name, s.Parameters)
	case "discrete":
		return NewDiscrete(s.Probabilities), nil
	case "mvn":
		if s.Mu == nil {
			return &MultivariateGaussian{}, nil
		}
		n := len(s.Mu)
		if len(s.Cov) != n*n {
			return nil, fmt.Errorf("decode mvn: expected %d covariances; got %d", n*n, len(s.Cov))
		}
		m, err := NewMultivariateGaussian(s.Mu, mat.NewSymDense(n, s.Cov))
		if err != nil {
			return nil, fmt.Errorf("decode: %v", err)
		}
		return m, nil
	case "independent":
		var ind Independent
		for _, cs := range s.Components {
			c, err := Decode(cs)
			if err != nil {
				return nil, err
			}
			u, ok := c.(Univariate)
			if !ok {
				return nil, fmt.Errorf("decode independent: component %s is not univariate", cs.Name)
			}
			ind.Components = append(ind.Components, u)
		}
		return &ind, nil
	default:
		return nil, fmt.Errorf("decode: unknown distribution %q", s.Name)
	}
}

// DecodeVector decodes a distribution over real vectors.
func DecodeVector(s Spec) (Distribution[[]float64], error) {
	d, err := Decode(s)
	if err != nil {
		return nil, err
	}
	v, ok := d.(Distribution[[]float64])
	if !ok {
		return nil, fmt.Errorf("decode: %s is not a distribution over vectors", s.Name)
	}
	return v, nil
}

func newUnivariate(name string, ps []float64) (Univariate, error) {
	want := map[string]int{"normal": 2, "uniform": 2, "exponential": 1, "bernoulli": 1}[name]
	if len(ps) != want {
		return nil, fmt.Errorf("%s: expected %d parameters; got %d", name, want, len(ps))
	}
	switch name {
	case "normal":
		if ps[1] <= 0 {
			return nil, fmt.Errorf("normal: invalid sigma %g", ps[1])
		}
		return NewNormal(ps[0], ps[1]), nil
	case "uniform":
		if ps[0] > ps[1] {
			return nil, fmt.Errorf("uniform: min %g > max %g", ps[0], ps[1])
		}
		return NewUniform(ps[0], ps[1]), nil
	case "exponential":
		if ps[0] <= 0 {
			return nil, fmt.Errorf("exponential: invalid rate %g", ps[0])
		}
		return NewExponential(ps[0]), nil
	default:
		if ps[0] < 0 || ps[0] > 1 {
			return nil, fmt.Errorf("bernoulli: invalid p %g", ps[0])
		}
		return NewBernoulli(ps[0]), nil
	}
}

// Parse parses the short form of a distribution:
//
//	normal:MU,SIGMA
//	uniform:MIN,MAX
//	exponential:RATE
//	bernoulli:P
//	discrete:KEY=P,KEY=P,...
//
// It returns either a Univariate or a *Discrete.
func Parse(str string) (interface{}, error) {
	name, args, _ := strings.Cut(str, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	var fields []string
	if args = strings.TrimSpace(args); args != "" {
		fields = strings.Split(args, ",")
	}
	if name == "discrete" {
		probs := make(map[string]float64, len(fields))
		for _, f := range fields {
			k, v, ok := strings.Cut(f, "=")
			if !ok {
				return nil, fmt.Errorf("parse %q: bad field %q", str, f)
			}
			p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q: %v", str, err)
			}
			probs[strings.TrimSpace(k)] = p
		}
		if len(probs) == 0 {
			return nil, fmt.Errorf("parse %q: no symbols", str)
		}
		return NewDiscrete(probs), nil
	}
	ps := make([]float64, len(fields))
	for i, f := range fields {
		p, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %v", str, err)
		}
		ps[i] = p
	}
	switch name {
	case "normal", "uniform", "exponential", "bernoulli":
		u, err := newUnivariate(name, ps)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %v", str, err)
		}
		return u, nil
	default:
		return nil, fmt.Errorf("parse %q: unknown distribution %q", str, name)
	}
}

// New returns a new unfitted distribution over vectors of the given
// dimension.  Name is the name of a univariate distribution (used for
// every feature independently) or "mvn".
func New(name string, dim int) (Distribution[[]float64], error) {
	switch name {
	case "mvn":
		return &MultivariateGaussian{}, nil
	case "normal", "uniform", "exponential", "bernoulli":
		ind := &Independent{Components: make([]Univariate, dim)}
		for i := range ind.Components {
			switch name {
			case "normal":
				ind.Components[i] = NewNormal(0, 1)
			case "uniform":
				ind.Components[i] = NewUniform(0, 1)
			case "exponential":
				ind.Components[i] = NewExponential(1)
			default:
				ind.Components[i] = NewBernoulli(.5)
			}
		}
		return ind, nil
	default:
		return nil, fmt.Errorf("new: unknown distribution %q", name)
	}
}
