package graph_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/junioryono/injector/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := graph.New()
	g.AddNode("a", graph.KindShared)
	g.AddEdge("a", "b", graph.LabelAlias)
	g.AddEdge("a", "b", graph.LabelAlias)
	g.AddNode("a", "")

	b, ok := g.Node("b")
	require.True(t, ok, "edge targets are added as nodes")
	assert.Empty(t, b.Edges)

	a, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, graph.KindShared, a.Kind, "an empty kind keeps the previous one")
	assert.Equal(t, []graph.Edge{{To: "b", Label: graph.LabelAlias}}, a.Edges, "duplicate edges are ignored")

	_, ok = g.Node("missing")
	assert.False(t, ok)
}

func TestGraph_NodeReturnsCopy(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", "")

	a, _ := g.Node("a")
	a.Edges[0].To = "changed"

	again, _ := g.Node("a")
	assert.Equal(t, "b", again.Edges[0].To)
}

func TestGraph_CycleFrom(t *testing.T) {
	tests := []struct {
		name  string
		edges [][3]string
		start string
		label string
		want  []string
	}{
		{
			name:  "two node loop",
			edges: [][3]string{{"a", "b", graph.LabelAlias}, {"b", "a", graph.LabelAlias}},
			start: "a",
			label: graph.LabelAlias,
			want:  []string{"a", "b", "a"},
		},
		{
			name:  "self loop",
			edges: [][3]string{{"a", "a", graph.LabelAlias}},
			start: "a",
			label: graph.LabelAlias,
			want:  []string{"a", "a"},
		},
		{
			name:  "start outside the loop",
			edges: [][3]string{{"c", "a", graph.LabelAlias}, {"a", "b", graph.LabelAlias}, {"b", "a", graph.LabelAlias}},
			start: "c",
			label: graph.LabelAlias,
		},
		{
			name:  "other labels are not followed",
			edges: [][3]string{{"a", "b", graph.LabelAlias}, {"b", "a", "define:x"}},
			start: "a",
			label: graph.LabelAlias,
		},
		{
			name:  "empty label follows every edge",
			edges: [][3]string{{"a", "b", graph.LabelAlias}, {"b", "c", "define:x"}, {"c", "a", graph.LabelDelegate}},
			start: "a",
			want:  []string{"a", "b", "c", "a"},
		},
		{
			name:  "branch before the loop",
			edges: [][3]string{{"a", "x", ""}, {"a", "b", ""}, {"b", "a", ""}},
			start: "a",
			want:  []string{"a", "b", "a"},
		},
		{
			name:  "chain",
			edges: [][3]string{{"a", "b", graph.LabelAlias}, {"b", "c", graph.LabelAlias}},
			start: "a",
			label: graph.LabelAlias,
		},
		{
			name:  "unknown start",
			start: "nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1], e[2])
			}
			assert.Equal(t, tt.want, g.CycleFrom(tt.start, tt.label))
		})
	}
}

func TestGraph_Cycles(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", graph.LabelAlias)
	g.AddEdge("b", "a", graph.LabelAlias)
	g.AddEdge("c", "d", graph.LabelAlias)

	assert.Equal(t, [][]string{{"a", "b", "a"}, {"b", "a", "b"}}, g.Cycles(graph.LabelAlias))
	assert.Empty(t, g.Cycles(graph.LabelDelegate))
}

func TestGraph_ConcurrentOperations(t *testing.T) {
	g := graph.New()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := fmt.Sprintf("n%d", i)
			g.AddEdge(from, fmt.Sprintf("n%d", i+1), graph.LabelAlias)
			g.CycleFrom(from, graph.LabelAlias)
			g.Node(from)
		}(i)
	}
	wg.Wait()

	for i := range 21 {
		_, ok := g.Node(fmt.Sprintf("n%d", i))
		assert.True(t, ok)
	}
	assert.Empty(t, g.Cycles(graph.LabelAlias))
}

func TestGraph_WriteDOT(t *testing.T) {
	g := graph.New()
	g.AddNode("b", graph.KindShared)
	g.AddNode("c", graph.KindDelegate)
	g.AddNode("d", graph.KindInjector)
	g.AddNode("e", graph.KindPending)
	g.AddEdge("a", "b", graph.LabelAlias)
	g.AddEdge("a", "c", "")
	g.AddEdge("c", "d", graph.LabelDelegate)

	var buf bytes.Buffer
	require.NoError(t, g.WriteDOT(&buf))

	want := `digraph bindings {
  rankdir=LR;
  node [shape=box];
  n0 [label="a", fillcolor="white", style=filled];
  n1 [label="b (shared)", fillcolor="lightblue", style=filled];
  n2 [label="c (delegate)", fillcolor="lightgreen", style=filled];
  n3 [label="d (injector)", fillcolor="lightyellow", style=filled];
  n4 [label="e (pending)", fillcolor="lightcyan", style=filled];
  n0 -> n1 [label="alias"];
  n0 -> n2;
  n2 -> n3 [label="delegate"];
}
`
	assert.Equal(t, want, buf.String())
}
