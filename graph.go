package injector

import (
	"io"

	"github.com/junioryono/injector/internal/graph"
)

// WriteGraph writes the injector's bindings to w in Graphviz DOT format.
// Aliases, delegates to named factories and plain definition arguments are
// drawn as labelled edges; delegated and shared names are highlighted.
func (inj *Injector) WriteGraph(w io.Writer) error {
	return inj.bindingGraph(inj.b.snapshot()).WriteDOT(w)
}

// bindingGraph builds the name graph of a bindings snapshot.
func (inj *Injector) bindingGraph(in Inspection) *graph.Graph {
	g := graph.New()

	for name, value := range in.Shares {
		if value == nil {
			g.AddNode(name, graph.KindPending)
			continue
		}
		g.AddNode(name, graph.KindShared)
	}
	for name, factory := range in.Delegates {
		g.AddNode(name, graph.KindDelegate)
		if target, ok := factory.(string); ok {
			if typeName, _, _, isMethod := splitMethod(target); isMethod {
				target = typeName
			}
			g.AddEdge(name, Canonical(target), graph.LabelDelegate)
		}
	}
	for from, to := range in.Aliases {
		g.AddEdge(from, to, graph.LabelAlias)
	}
	for name, args := range in.Definitions {
		g.AddNode(name, "")
		for key, value := range args {
			if len(key) > 0 && (key[:1] == rawPrefix || key[:1] == delegatePrefix) || inj.stringParam(name, key) {
				continue
			}
			for _, typeName := range definedTypeNames(value) {
				g.AddEdge(name, Canonical(typeName), "define:"+key)
			}
		}
	}

	if _, ok := g.Node(injectorKey); ok && !inj.b.bound(injectorKey) {
		g.AddNode(injectorKey, graph.KindInjector)
	}
	return g
}
