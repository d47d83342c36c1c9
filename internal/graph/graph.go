package graph

import (
	"sort"
	"sync"
)

// Edge labels used by the injector's binding graph.
const (
	LabelAlias    = "alias"
	LabelDelegate = "delegate"
)

// Graph is a directed graph of canonical binding names.
// Edges carry a label naming the binding that produced them.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// Node is one name in the graph.
type Node struct {
	Name  string
	Kind  string
	Edges []Edge
}

// Edge points from a node to a name it resolves through.
type Edge struct {
	To    string
	Label string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode records name. A non-empty kind replaces the node's previous kind.
func (g *Graph) AddNode(name, kind string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(name, kind)
}

func (g *Graph) addNodeLocked(name, kind string) *Node {
	n, ok := g.nodes[name]
	if !ok {
		n = &Node{Name: name}
		g.nodes[name] = n
	}
	if kind != "" {
		n.Kind = kind
	}
	return n
}

// AddEdge records an edge, adding both ends as needed.
// Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to, label string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.addNodeLocked(from, "")
	g.addNodeLocked(to, "")
	for _, e := range n.Edges {
		if e.To == to && e.Label == label {
			return
		}
	}
	n.Edges = append(n.Edges, Edge{To: to, Label: label})
}

// Node returns a copy of the node for name.
func (g *Graph) Node(name string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.Edges = append([]Edge(nil), n.Edges...)
	return cp, true
}

func (g *Graph) names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.namesLocked()
}

func (g *Graph) namesLocked() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CycleFrom returns the path that leaves start and returns to it following
// only edges with the given label, or nil. An empty label follows every edge.
// The returned path begins and ends with start.
func (g *Graph) CycleFrom(start, label string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[start]; !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	path := []string{start}

	var walk func(name string) bool
	walk = func(name string) bool {
		n := g.nodes[name]
		for _, e := range n.Edges {
			if label != "" && e.Label != label {
				continue
			}
			if e.To == start {
				path = append(path, start)
				return true
			}
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			path = append(path, e.To)
			if walk(e.To) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}

	if walk(start) {
		return path
	}
	return nil
}

// Cycles returns, for every node on a cycle of label edges, the cycle
// starting at that node. Results are ordered by start name.
func (g *Graph) Cycles(label string) [][]string {
	var out [][]string
	for _, name := range g.names() {
		if c := g.CycleFrom(name, label); c != nil {
			out = append(out, c)
		}
	}
	return out
}
