package bn

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

type node struct {
	id   int64
	name string
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.name }

// WriteDOT writes the structure of the network in the DOT format.
func (nw *Network) WriteDOT(w io.Writer) error {
	nw.mustBaked()
	g := simple.NewDirectedGraph()
	nodes := make([]node, len(nw.states))
	for i, s := range nw.states {
		nodes[i] = node{id: int64(i), name: s.Name}
		g.AddNode(nodes[i])
	}
	for i, ps := range nw.parents {
		for _, p := range ps {
			g.SetEdge(g.NewEdge(nodes[p], nodes[i]))
		}
	}
	buf, err := dot.Marshal(g, nw.Name, "", "\t")
	if err != nil {
		return fmt.Errorf("writeDOT %s: %v", nw.Name, err)
	}
	if _, err := w.Write(append(buf, '\n')); err != nil {
		return fmt.Errorf("writeDOT %s: %v", nw.Name, err)
	}
	return nil
}
