// Package graph holds the topology of a workflow definition: which node feeds
// which. It knows nothing about node types or connectors.
package graph

import (
	"sort"
)

// Edge is a directed link between two nodes
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is a directed multigraph over node IDs. Nodes keep insertion order.
type Graph struct {
	order []string
	nodes map[string]bool
	edges []Edge
	out   map[string][]string
	in    map[string]int
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		out:   make(map[string][]string),
		in:    make(map[string]int),
	}
}

// AddNode registers a node ID
func (g *Graph) AddNode(id string) error {
	if g.nodes[id] {
		return NewValidationError("add node", id, ErrDuplicateNode)
	}
	g.nodes[id] = true
	g.order = append(g.order, id)
	return nil
}

// AddEdge links two registered nodes
func (g *Graph) AddEdge(from, to, label string) error {
	if !g.nodes[from] {
		return NewValidationError("add edge", from, ErrNodeNotFound)
	}
	if !g.nodes[to] {
		return NewValidationError("add edge", to, ErrNodeNotFound)
	}
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
	g.out[from] = append(g.out[from], to)
	g.in[to]++
	return nil
}

// Nodes returns the node IDs in insertion order
func (g *Graph) Nodes() []string {
	return append([]string{}, g.order...)
}

// Edges returns the edges in insertion order
func (g *Graph) Edges() []Edge {
	return append([]Edge{}, g.edges...)
}

// Roots returns the nodes without incoming edges, in insertion order
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if g.in[id] == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns the nodes without outgoing edges, in insertion order
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.out[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// TopologicalOrder returns every node after all of its predecessors. Ties are
// broken by insertion order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	rank := make(map[string]int, len(g.order))
	for i, id := range g.order {
		rank[id] = i
	}

	indeg := make(map[string]int, len(g.in))
	for id, n := range g.in {
		indeg[id] = n
	}

	ready := g.Roots()
	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		for _, next := range g.out[id] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = append(ready, next)
				sort.SliceStable(ready, func(i, j int) bool { return rank[ready[i]] < rank[ready[j]] })
			}
		}
	}

	if len(sorted) != len(g.order) {
		return nil, NewValidationError("topological order", g.firstInCycle(indeg), ErrCyclicDependency)
	}
	return sorted, nil
}

// HasCycle reports whether any node can reach itself
func (g *Graph) HasCycle() bool {
	_, err := g.TopologicalOrder()
	return err != nil
}

// Reachable returns every node reachable from id, id included
func (g *Graph) Reachable(id string) map[string]bool {
	visited := make(map[string]bool)
	g.dfs(id, visited)
	return visited
}

func (g *Graph) dfs(node string, visited map[string]bool) {
	if visited[node] {
		return
	}
	visited[node] = true
	for _, next := range g.out[node] {
		g.dfs(next, visited)
	}
}

func (g *Graph) firstInCycle(indeg map[string]int) string {
	for _, id := range g.order {
		if indeg[id] > 0 {
			return id
		}
	}
	return ""
}
