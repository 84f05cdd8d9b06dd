// Package workflow builds workflow definitions: typed nodes from the node
// catalog, configured and linked into a graph, serialized for the backend and
// rebuilt from what the backend returns.
package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/pkg/catalog"
)

const (
	// DefaultName is the name of a definition created without one
	DefaultName = "Untitled Workflow"
	// DefaultKind is the workflow type sent to the backend
	DefaultKind = "flow"
	// LayoutStep is the horizontal distance between auto-placed nodes
	LayoutStep = 350
)

// State tracks a definition against its last known server copy
type State int

const (
	// StateUnsaved means the definition has no server identity
	StateUnsaved State = iota
	// StateSaved means the definition matches the last saved or merged payload
	StateSaved
	// StateModified means local edits were made since the last save
	StateModified
)

func (s State) String() string {
	switch s {
	case StateUnsaved:
		return "unsaved"
	case StateSaved:
		return "saved"
	case StateModified:
		return "modified"
	}
	return "unknown"
}

// Definition is a workflow graph under construction
type Definition struct {
	ID   string
	Name string
	Kind string

	nodes    []*Node
	edges    []Edge
	cursor   int
	resolver catalog.Resolver
	savedSum string
}

// Option configures a Definition
type Option func(*Definition)

// WithID sets the server identity of the definition
func WithID(id string) Option {
	return func(d *Definition) {
		d.ID = id
	}
}

// WithKind sets the workflow type sent to the backend
func WithKind(kind string) Option {
	return func(d *Definition) {
		d.Kind = kind
	}
}

// New creates an empty definition whose nodes are resolved against r
func New(name string, r catalog.Resolver, opts ...Option) *Definition {
	if name == "" {
		name = DefaultName
	}
	d := &Definition{
		Name:     name,
		Kind:     DefaultKind,
		nodes:    make([]*Node, 0),
		edges:    make([]Edge, 0),
		resolver: r,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// AddNode creates a node of the given type right of the previous one
func (d *Definition) AddNode(typeName string) (*Node, error) {
	x := d.cursor + LayoutStep
	n := &Node{ID: uuid.New().String(), Type: typeName}
	if err := n.construct(d.resolver, x, 0); err != nil {
		return nil, err
	}
	d.cursor = x
	d.nodes = append(d.nodes, n)
	return n, nil
}

// Link connects an output endpoint to an input endpoint. Both must address a
// node of this definition and a connector declared on it.
func (d *Definition) Link(from, to ConnectionPoint) (Edge, error) {
	if err := d.checkEndpoint(from, DirectionOutput); err != nil {
		return Edge{}, &LinkError{From: from.NodeID, To: to.NodeID, Side: DirectionOutput, Err: err}
	}
	if err := d.checkEndpoint(to, DirectionInput); err != nil {
		return Edge{}, &LinkError{From: from.NodeID, To: to.NodeID, Side: DirectionInput, Err: err}
	}

	e := Edge{ID: uuid.New().String(), From: from, To: to}
	d.edges = append(d.edges, e)
	return e, nil
}

func (d *Definition) checkEndpoint(p ConnectionPoint, dir Direction) error {
	return checkEndpoint(d.nodes, p, dir)
}

func checkEndpoint(nodes []*Node, p ConnectionPoint, dir Direction) error {
	n := findNode(nodes, p.NodeID)
	if n == nil {
		return errors.Wrapf(ErrUnknownEndpoint, "node %s", p.NodeID)
	}
	if !n.hasConnector(dir, p.ConnectorName) {
		return errors.Wrapf(ErrUnknownEndpoint, "%s %s on node %s", dir, p.ConnectorName, p.NodeID)
	}
	return nil
}

// LinkChain links each node to the next through their only output and input.
// Links made before a failing pair are kept.
func (d *Definition) LinkChain(nodes ...*Node) error {
	for i := 0; i+1 < len(nodes); i++ {
		a, b := nodes[i], nodes[i+1]

		if len(a.outputs) != 1 {
			return &LinkError{From: a.Type, To: b.Type, Side: DirectionOutput,
				Err: errors.Wrapf(ErrChainCardinality, "%s has %d outputs", a.Type, len(a.outputs))}
		}
		if a.outputs[0].Kind.RequiresKey() {
			return &LinkError{From: a.Type, To: b.Type, Side: DirectionOutput, Err: ErrKeyRequired}
		}
		if len(b.inputs) != 1 {
			return &LinkError{From: a.Type, To: b.Type, Side: DirectionInput,
				Err: errors.Wrapf(ErrChainCardinality, "%s has %d inputs", b.Type, len(b.inputs))}
		}
		if b.inputs[0].Kind.RequiresKey() {
			return &LinkError{From: a.Type, To: b.Type, Side: DirectionInput, Err: ErrKeyRequired}
		}

		from, err := a.Output("", "")
		if err != nil {
			return err
		}
		to, err := b.Input("", "")
		if err != nil {
			return err
		}
		if _, err := d.Link(from, to); err != nil {
			return err
		}
	}
	return nil
}

// NodeByID returns the node with the given ID, or nil
func (d *Definition) NodeByID(id string) *Node {
	return findNode(d.nodes, id)
}

func findNode(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Nodes returns the nodes in creation order
func (d *Definition) Nodes() []*Node {
	return append([]*Node{}, d.nodes...)
}

// Edges returns the edges in creation order
func (d *Definition) Edges() []Edge {
	return append([]Edge{}, d.edges...)
}

// Validate checks that every edge addresses existing nodes and connectors
func (d *Definition) Validate() error {
	return validateEdges(d.nodes, d.edges)
}

func validateEdges(nodes []*Node, edges []Edge) error {
	for _, e := range edges {
		if err := checkEndpoint(nodes, e.From, DirectionOutput); err != nil {
			return &LinkError{From: e.From.NodeID, To: e.To.NodeID, Side: DirectionOutput, Err: err}
		}
		if err := checkEndpoint(nodes, e.To, DirectionInput); err != nil {
			return &LinkError{From: e.From.NodeID, To: e.To.NodeID, Side: DirectionInput, Err: err}
		}
	}
	return nil
}

// Payload is the wire form of a definition
type Payload struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Definition Graph  `json:"definition"`
}

// Graph is the nodes and edges of a payload
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// Payload returns the wire form of the definition
func (d *Definition) Payload() Payload {
	return Payload{
		Name: d.Name,
		Type: d.Kind,
		Definition: Graph{
			Nodes: d.Nodes(),
			Edges: d.Edges(),
		},
	}
}

// MarshalJSON writes the wire payload
func (d *Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Payload())
}

// State reports whether the definition was saved and edited since
func (d *Definition) State() State {
	if d.ID == "" {
		return StateUnsaved
	}
	if sum, err := d.fingerprint(); err == nil && sum == d.savedSum {
		return StateSaved
	}
	return StateModified
}

// MarkSaved records the current payload as the server's copy
func (d *Definition) MarkSaved() {
	sum, err := d.fingerprint()
	if err != nil {
		d.savedSum = ""
		return
	}
	d.savedSum = sum
}

func (d *Definition) fingerprint() (string, error) {
	data, err := json.Marshal(d.Payload())
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
