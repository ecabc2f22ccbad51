package bn

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"github.com/antchfx/xmlquery"
)

type variable struct {
	name     string
	outcomes []string
	given    []string
	table    []float64
	defined  bool
}

// ReadXMLBIF reads a network in the XMLBIF 0.3 interchange format.
// The returned network is baked.
func ReadXMLBIF(r io.Reader) (*Network, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("readXMLBIF: %v", err)
	}
	network := xmlquery.FindOne(doc, "//NETWORK")
	if network == nil {
		return nil, fmt.Errorf("readXMLBIF: missing NETWORK element")
	}
	nw := New(text(network.SelectElement("NAME")))
	var vars []*variable
	byName := make(map[string]*variable)
	for _, node := range network.SelectElements("VARIABLE") {
		v := &variable{name: text(node.SelectElement("NAME"))}
		for _, o := range node.SelectElements("OUTCOME") {
			v.outcomes = append(v.outcomes, text(o))
		}
		if _, ok := byName[v.name]; ok {
			return nil, fmt.Errorf("readXMLBIF: duplicate variable %q", v.name)
		}
		byName[v.name] = v
		vars = append(vars, v)
	}
	for _, node := range network.SelectElements("DEFINITION") {
		name := text(node.SelectElement("FOR"))
		v, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("readXMLBIF: definition of unknown variable %q", name)
		}
		if v.defined {
			return nil, fmt.Errorf("readXMLBIF: duplicate definition of %q", name)
		}
		v.defined = true
		for _, g := range node.SelectElements("GIVEN") {
			v.given = append(v.given, text(g))
		}
		for _, f := range strings.Fields(text(node.SelectElement("TABLE"))) {
			p, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("readXMLBIF: definition of %q: %v", name, err)
			}
			v.table = append(v.table, p)
		}
	}
	states := make(map[string]*State, len(vars))
	visiting := make(map[string]bool)
	var build func(v *variable) (*State, error)
	build = func(v *variable) (*State, error) {
		if s, ok := states[v.name]; ok {
			return s, nil
		}
		if visiting[v.name] {
			return nil, fmt.Errorf("variable %q: cyclic definition", v.name)
		}
		visiting[v.name] = true
		d, err := v.distribution(func(name string) (*variable, Distribution, error) {
			p, ok := byName[name]
			if !ok {
				return nil, nil, fmt.Errorf("unknown variable %q", name)
			}
			s, err := build(p)
			if err != nil {
				return nil, nil, err
			}
			return p, s.Distribution, nil
		})
		if err != nil {
			return nil, err
		}
		states[v.name] = NewState(v.name, d)
		return states[v.name], nil
	}
	for _, v := range vars {
		s, err := build(v)
		if err != nil {
			return nil, fmt.Errorf("readXMLBIF: %v", err)
		}
		nw.AddState(s)
	}
	for _, v := range vars {
		for _, g := range v.given {
			nw.AddTransition(states[g], states[v.name])
		}
	}
	if err := nw.Bake(); err != nil {
		return nil, fmt.Errorf("readXMLBIF: %v", err)
	}
	return nw, nil
}

// distribution builds the distribution of the variable.  Tables list
// the probabilities for the combinations of the parent outcomes with
// the first parent varying slowest and the variable's own outcome
// varying fastest.
func (v *variable) distribution(parent func(string) (*variable, Distribution, error)) (Distribution, error) {
	if !v.defined {
		return nil, fmt.Errorf("variable %q: missing definition", v.name)
	}
	if len(v.given) == 0 {
		if len(v.table) != len(v.outcomes) {
			return nil, fmt.Errorf("variable %q: expected %d probabilities; got %d",
				v.name, len(v.outcomes), len(v.table))
		}
		probs := make(map[string]float64, len(v.outcomes))
		for i, o := range v.outcomes {
			probs[o] = v.table[i]
		}
		return dist.NewDiscrete(probs), nil
	}
	parents := make([]Distribution, len(v.given))
	domains := make([][]string, len(v.given)+1)
	for i, g := range v.given {
		pv, p, err := parent(g)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %v", v.name, err)
		}
		parents[i] = p
		domains[i] = pv.outcomes
	}
	domains[len(v.given)] = v.outcomes
	var rows []Row
	each(domains, func(values []string) {
		rows = append(rows, R(0, append([]string(nil), values...)...))
	})
	if len(rows) != len(v.table) {
		return nil, fmt.Errorf("variable %q: expected %d probabilities; got %d",
			v.name, len(rows), len(v.table))
	}
	for i := range rows {
		rows[i].P = v.table[i]
	}
	t, err := NewConditionalTable(rows, parents...)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %v", v.name, err)
	}
	return t, nil
}

// WriteXMLBIF writes the network in the XMLBIF 0.3 interchange format.
func (nw *Network) WriteXMLBIF(w io.Writer) error {
	nw.mustBaked()
	doc := &xmlquery.Node{Type: xmlquery.DocumentNode}
	decl := &xmlquery.Node{Type: xmlquery.DeclarationNode, Data: "xml"}
	xmlquery.AddAttr(decl, "version", "1.0")
	xmlquery.AddChild(doc, decl)
	bif := element(doc, "BIF", "")
	xmlquery.AddAttr(bif, "VERSION", "0.3")
	network := element(bif, "NETWORK", "")
	element(network, "NAME", nw.Name)
	for i, s := range nw.states {
		v := element(network, "VARIABLE", "")
		xmlquery.AddAttr(v, "TYPE", "nature")
		element(v, "NAME", s.Name)
		for _, o := range nw.domains[i] {
			element(v, "OUTCOME", o)
		}
	}
	for i, s := range nw.states {
		def := element(network, "DEFINITION", "")
		element(def, "FOR", s.Name)
		domains := make([][]string, 0, len(nw.parents[i])+1)
		for _, p := range nw.parents[i] {
			element(def, "GIVEN", nw.states[p].Name)
			domains = append(domains, nw.domains[p])
		}
		domains = append(domains, nw.domains[i])
		var table []string
		each(domains, func(values []string) {
			var p float64
			switch d := s.Distribution.(type) {
			case *dist.Discrete:
				p = d.Probability(values[0])
			case *ConditionalTable:
				p = d.Probability(values...)
			}
			table = append(table, strconv.FormatFloat(p, 'g', -1, 64))
		})
		element(def, "TABLE", strings.Join(table, " "))
	}
	out := doc.OutputXMLWithOptions(xmlquery.WithIndentation("\t"))
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("writeXMLBIF: %v", err)
	}
	return nil
}

func element(parent *xmlquery.Node, name, data string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	if data != "" {
		xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: data})
	}
	xmlquery.AddChild(parent, n)
	return n
}

func text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}
