package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Node kinds understood by the visualizer.
const (
	KindType     = "type"
	KindDelegate = "delegate"
	KindShared   = "shared"
	KindPending  = "pending"
	KindInjector = "injector"
)

// WriteDOT writes the graph in Graphviz DOT format.
// Output is deterministic: nodes and edges are sorted by name.
func (g *Graph) WriteDOT(w io.Writer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph bindings {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box];")

	names := g.namesLocked()
	ids := make(map[string]string, len(names))
	for i, name := range names {
		ids[name] = fmt.Sprintf("n%d", i)
	}

	for _, name := range names {
		n := g.nodes[name]
		fmt.Fprintf(bw, "  %s [label=%s, fillcolor=%q, style=filled];\n",
			ids[name], strconv.Quote(nodeLabel(n)), nodeColor(n))
	}

	for _, name := range names {
		for _, e := range g.nodes[name].Edges {
			if e.Label == "" {
				fmt.Fprintf(bw, "  %s -> %s;\n", ids[name], ids[e.To])
				continue
			}
			fmt.Fprintf(bw, "  %s -> %s [label=%s];\n", ids[name], ids[e.To], strconv.Quote(e.Label))
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func nodeLabel(n *Node) string {
	if n.Kind == "" || n.Kind == KindType {
		return n.Name
	}
	return n.Name + " (" + n.Kind + ")"
}

func nodeColor(n *Node) string {
	switch strings.ToLower(n.Kind) {
	case KindShared:
		return "lightblue"
	case KindPending:
		return "lightcyan"
	case KindDelegate:
		return "lightgreen"
	case KindInjector:
		return "lightyellow"
	default:
		return "white"
	}
}
