package store

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/gmm"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/nb"
)

// Model holds named classifiers and mixtures over real valued feature
// vectors.
type Model struct {
	Classifiers map[string]Entry `json:"classifiers"`
	Mixtures    map[string]Entry `json:"mixtures"`
}

// Entry is the serialized form of a classifier or a mixture.  Weights
// are the class priors or the mixture weights.
type Entry struct {
	Features   []string    `json:"features,omitempty"`
	Normalize  bool        `json:"normalize,omitempty"`
	Weights    []float64   `json:"weights"`
	Components []dist.Spec `json:"components"`
}

// NewModel returns a new empty model.
func NewModel() Model {
	return Model{
		Classifiers: make(map[string]Entry),
		Mixtures:    make(map[string]Entry),
	}
}

// ReadModel reads a model from a gzip compressed input file.  If the
// given file does not exist and create is true, an empty model is
// returned.
func ReadModel(path string, create bool) (Model, error) {
	bayeskit.Log("reading model from %s", path)
	in, err := os.Open(path)
	if os.IsNotExist(err) && create {
		return NewModel(), nil
	}
	if err != nil {
		return Model{}, fmt.Errorf("readModel %s: %v", path, err)
	}
	defer in.Close()
	zip, err := gzip.NewReader(in)
	if err != nil {
		return Model{}, fmt.Errorf("readModel %s: %v", path, err)
	}
	defer zip.Close()
	var m Model
	if err := json.NewDecoder(zip).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("readModel %s: %v", path, err)
	}
	if m.Classifiers == nil {
		m.Classifiers = make(map[string]Entry)
	}
	if m.Mixtures == nil {
		m.Mixtures = make(map[string]Entry)
	}
	return m, nil
}

// Write writes the model as json encoded, gziped file to the given
// path overwriting any previous existing models.
func (m Model) Write(path string) (err error) {
	bayeskit.Log("writing model to %s", path)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %v", path, err)
	}
	defer func() {
		if exx := out.Close(); exx != nil && err == nil {
			err = fmt.Errorf("write %s: %v", path, exx)
		}
	}()
	zip := gzip.NewWriter(out)
	defer func() {
		if exx := zip.Close(); exx != nil && err == nil {
			err = fmt.Errorf("write %s: %v", path, exx)
		}
	}()
	if err := json.NewEncoder(zip).Encode(m); err != nil {
		return fmt.Errorf("write %s: %v", path, err)
	}
	return nil
}

// PutClassifier inserts the classifier with the according feature
// names under the given name.
func (m Model) PutClassifier(name string, clf *nb.NaiveBayes[[]float64], fs []string, normalize bool) error {
	e, err := newEntry(clf.Models, clf.Priors(), fs, normalize)
	if err != nil {
		return fmt.Errorf("put classifier %s: %v", name, err)
	}
	m.Classifiers[name] = e
	return nil
}

// GetClassifier loads the classifier with the given name.
func (m Model) GetClassifier(name string) (*nb.NaiveBayes[[]float64], Entry, error) {
	e, ok := m.Classifiers[name]
	if !ok {
		return nil, Entry{}, fmt.Errorf("get classifier: cannot find: %s", name)
	}
	cs, err := e.components()
	if err != nil {
		return nil, Entry{}, fmt.Errorf("get classifier %s: %v", name, err)
	}
	clf := nb.New(cs...)
	if err := clf.SetPriors(e.Weights); err != nil {
		return nil, Entry{}, fmt.Errorf("get classifier %s: %v", name, err)
	}
	return clf, e, nil
}

// PutMixture inserts the mixture with the according feature names
// under the given name.
func (m Model) PutMixture(name string, mix *gmm.Mixture[[]float64], fs []string, normalize bool) error {
	e, err := newEntry(mix.Components, mix.Weights(), fs, normalize)
	if err != nil {
		return fmt.Errorf("put mixture %s: %v", name, err)
	}
	m.Mixtures[name] = e
	return nil
}

// GetMixture loads the mixture with the given name.
func (m Model) GetMixture(name string) (*gmm.Mixture[[]float64], Entry, error) {
	e, ok := m.Mixtures[name]
	if !ok {
		return nil, Entry{}, fmt.Errorf("get mixture: cannot find: %s", name)
	}
	cs, err := e.components()
	if err != nil {
		return nil, Entry{}, fmt.Errorf("get mixture %s: %v", name, err)
	}
	mix := gmm.New(cs...)
	if err := mix.SetWeights(e.Weights); err != nil {
		return nil, Entry{}, fmt.Errorf("get mixture %s: %v", name, err)
	}
	return mix, e, nil
}

// Names returns the sorted names of the entries.
func Names(entries map[string]Entry) []string {
	ret := make([]string, 0, len(entries))
	for name := range entries {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func newEntry(cs []bayeskit.Model[[]float64], ws []float64, fs []string, normalize bool) (Entry, error) {
	e := Entry{Features: fs, Normalize: normalize, Weights: ws}
	for _, c := range cs {
		spec, err := dist.Encode(c)
		if err != nil {
			return Entry{}, err
		}
		e.Components = append(e.Components, spec)
	}
	return e, nil
}

func (e Entry) components() ([]bayeskit.Model[[]float64], error) {
	if len(e.Components) != len(e.Weights) {
		return nil, fmt.Errorf("expected %d components; got %d", len(e.Weights), len(e.Components))
	}
	ret := make([]bayeskit.Model[[]float64], len(e.Components))
	for i, spec := range e.Components {
		d, err := dist.DecodeVector(spec)
		if err != nil {
			return nil, err
		}
		ret[i] = d
	}
	return ret, nil
}
