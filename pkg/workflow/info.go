package workflow

import (
	"fmt"
	"io"

	"github.com/avi3tal/noxus-go/internal/graph"
)

type (
	// NodeInfo is a node of Info, labelled with its name
	NodeInfo = graph.NodeInfo
	// EdgeInfo is an edge of Info, labelled with the target key or connector
	EdgeInfo = graph.EdgeInfo
)

// Info describes the structure of a definition
type Info struct {
	ID     string
	Name   string
	State  State
	Nodes  []NodeInfo
	Edges  []EdgeInfo
	Cyclic bool
}

func (d *Definition) topology() *graph.Graph {
	g := graph.New()
	for _, n := range d.nodes {
		// node IDs are unique within a definition
		_ = g.AddNode(n.ID)
	}
	for _, e := range d.edges {
		label := e.To.ConnectorName
		if e.To.Key != "" {
			label = e.To.Key
		}
		// dangling edges are reported by Validate
		_ = g.AddEdge(e.From.NodeID, e.To.NodeID, label)
	}
	return g
}

func (d *Definition) label(id string) string {
	if n := d.NodeByID(id); n != nil {
		return n.Name
	}
	return id
}

// Order returns the nodes so that every node comes after the nodes feeding it
func (d *Definition) Order() ([]*Node, error) {
	ids, err := d.topology().TopologicalOrder()
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.NodeByID(id))
	}
	return out, nil
}

// Info describes the definition for display
func (d *Definition) Info() *Info {
	gi := d.topology().GetGraphInfo(d.label)
	return &Info{
		ID:     d.ID,
		Name:   d.Name,
		State:  d.State(),
		Nodes:  gi.Nodes,
		Edges:  gi.Edges,
		Cyclic: gi.Cyclic,
	}
}

// Print writes a plain-text rendering of the definition to w
func (d *Definition) Print(w io.Writer) {
	title := d.Name
	if d.ID != "" {
		title = fmt.Sprintf("%s [%s, %s]", d.Name, d.ID, d.State())
	}
	d.topology().PrintGraph(w, title, d.label)
}
