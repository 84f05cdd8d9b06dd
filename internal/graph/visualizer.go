package graph

import (
	"fmt"
	"io"
)

// Info represents the graph structure for visualization
type Info struct {
	Nodes  []NodeInfo
	Edges  []EdgeInfo
	Roots  []string
	Cyclic bool
}

// NodeInfo is a node with its display label
type NodeInfo struct {
	ID    string
	Label string
	Root  bool
}

// EdgeInfo is an edge between two labelled nodes
type EdgeInfo struct {
	From  string
	To    string
	Label string
}

// GetGraphInfo describes the graph. Nodes are listed in topological order when
// the graph is acyclic, insertion order otherwise. label may be nil.
func (g *Graph) GetGraphInfo(label func(id string) string) *Info {
	if label == nil {
		label = func(id string) string { return id }
	}

	order, err := g.TopologicalOrder()
	cyclic := err != nil
	if cyclic {
		order = g.order
	}

	roots := g.Roots()
	isRoot := make(map[string]bool, len(roots))
	for _, id := range roots {
		isRoot[id] = true
	}

	info := &Info{
		Nodes:  make([]NodeInfo, 0, len(order)),
		Edges:  make([]EdgeInfo, 0, len(g.edges)),
		Roots:  roots,
		Cyclic: cyclic,
	}
	for _, id := range order {
		info.Nodes = append(info.Nodes, NodeInfo{ID: id, Label: label(id), Root: isRoot[id]})
	}
	for _, e := range g.edges {
		info.Edges = append(info.Edges, EdgeInfo{From: label(e.From), To: label(e.To), Label: e.Label})
	}
	return info
}

// PrintGraph writes a plain-text rendering of the graph to w
func (g *Graph) PrintGraph(w io.Writer, title string, label func(id string) string) {
	info := g.GetGraphInfo(label)

	fmt.Fprintf(w, "Graph Structure: %s\n", title)
	if info.Cyclic {
		fmt.Fprintln(w, "Warning: graph contains a cycle")
	}

	fmt.Fprintln(w, "\nNodes:")
	for _, node := range info.Nodes {
		if node.Root {
			fmt.Fprintf(w, "  * %s (Entry)\n", node.Label)
		} else {
			fmt.Fprintf(w, "  - %s\n", node.Label)
		}
	}

	fmt.Fprintln(w, "\nEdges:")
	for _, edge := range info.Edges {
		if edge.Label != "" {
			fmt.Fprintf(w, "  %s --[%s]--> %s\n", edge.From, edge.Label, edge.To)
		} else {
			fmt.Fprintf(w, "  %s --> %s\n", edge.From, edge.To)
		}
	}
}
