package hmm

import (
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

type node struct {
	id     int64
	name   string
	silent bool
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.name }

func (n node) Attributes() []encoding.Attribute {
	if n.silent {
		return []encoding.Attribute{{Key: "shape", Value: "box"}}
	}
	return nil
}

type line struct {
	multi.Line
	p float64
}

func (l line) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.FormatFloat(l.p, 'g', 3, 64)}}
}

// WriteDOT writes the structure of the model in the DOT format.
// Silent states are drawn as boxes, transitions are labeled with their
// probabilities.  Transitions with probability 0 are omitted.
func (m *Model[T]) WriteDOT(w io.Writer) error {
	g := multi.NewDirectedGraph()
	nodes := make(map[*State[T]]node)
	add := func(s *State[T], silent bool) {
		n := node{id: int64(len(nodes)), name: s.Name, silent: silent}
		nodes[s] = n
		g.AddNode(n)
	}
	add(m.Start, true)
	for _, s := range m.states {
		add(s, false)
	}
	for _, t := range m.transitions {
		if t.to == m.End && t.p > 0 {
			add(m.End, true)
			break
		}
	}
	for _, t := range m.transitions {
		if t.p == 0 {
			continue
		}
		l := g.NewLine(nodes[t.from], nodes[t.to]).(multi.Line)
		g.SetLine(line{Line: l, p: t.p})
	}
	buf, err := dot.MarshalMulti(g, m.Name, "", "\t")
	if err != nil {
		return fmt.Errorf("writeDOT %s: %v", m.Name, err)
	}
	if _, err := w.Write(append(buf, '\n')); err != nil {
		return fmt.Errorf("writeDOT %s: %v", m.Name, err)
	}
	return nil
}
