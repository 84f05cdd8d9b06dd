package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"sort"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/pkg/catalog"
	"github.com/avi3tal/noxus-go/pkg/types"
)

// ConnectorConfig is the wire record of a node's connectors. Fan-out keys bound
// through Input and Output accumulate here.
type ConnectorConfig struct {
	Inputs  []catalog.ConnectorSpec `json:"inputs"`
	Outputs []catalog.ConnectorSpec `json:"outputs"`
}

func (c ConnectorConfig) empty() bool {
	return len(c.Inputs) == 0 && len(c.Outputs) == 0
}

func (c *ConnectorConfig) specs(dir Direction) *[]catalog.ConnectorSpec {
	if dir == DirectionInput {
		return &c.Inputs
	}
	return &c.Outputs
}

// addKey records key on the named connector once
func (c *ConnectorConfig) addKey(dir Direction, name string, kind types.ConnectorKind, key string) {
	list := c.specs(dir)
	for i := range *list {
		if (*list)[i].Name != name {
			continue
		}
		if !(*list)[i].HasKey(key) {
			(*list)[i].Keys = append((*list)[i].Keys, key)
		}
		return
	}
	*list = append(*list, catalog.ConnectorSpec{Name: name, Kind: kind, Keys: []string{key}})
}

// Keys returns the fan-out keys bound on a connector
func (c ConnectorConfig) Keys(dir Direction, name string) []string {
	for _, s := range *c.specs(dir) {
		if s.Name == name {
			return append([]string{}, s.Keys...)
		}
	}
	return nil
}

// NodeInput is a resolved input handle of a node
type NodeInput struct {
	NodeID     string
	Name       string
	Kind       types.ConnectorKind
	FixedValue any
}

// ID returns node::name
func (i NodeInput) ID() string {
	return i.NodeID + "::" + i.Name
}

// NodeOutput is a resolved output handle of a node
type NodeOutput struct {
	NodeID string
	Name   string
	Kind   types.ConnectorKind
}

// ID returns node::name
func (o NodeOutput) ID() string {
	return o.NodeID + "::" + o.Name
}

// Node is a vertex of a workflow definition. Its handles and config schema are
// derived from the node catalog and never sent on the wire.
type Node struct {
	ID         string
	Type       string
	Name       string
	Display    map[string]any
	Config     map[string]any
	Connectors ConnectorConfig

	schema  map[string]catalog.ConfigFieldSpec
	visible []string
	inputs  []NodeInput
	outputs []NodeOutput
}

type wireNode struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Name            string          `json:"name"`
	Display         map[string]any  `json:"display"`
	NodeConfig      map[string]any  `json:"node_config"`
	ConnectorConfig ConnectorConfig `json:"connector_config"`
}

// MarshalJSON writes the wire fields of the node only
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireNode{
		ID:              n.ID,
		Type:            n.Type,
		Name:            n.Name,
		Display:         n.Display,
		NodeConfig:      n.Config,
		ConnectorConfig: n.Connectors,
	})
}

func decodeNode(raw json.RawMessage, r catalog.Resolver) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var w wireNode
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Wrap(err, "failed to decode node")
	}
	if w.ID == "" {
		return nil, errors.New("node is missing an id")
	}

	n := &Node{
		ID:         w.ID,
		Type:       w.Type,
		Name:       w.Name,
		Display:    w.Display,
		Config:     w.NodeConfig,
		Connectors: w.ConnectorConfig,
	}
	if err := n.construct(r, 0, 0); err != nil {
		return nil, err
	}
	return n, nil
}

// construct derives handles and schema from the catalog. Connector config is
// seeded only when empty and display is bootstrapped only when unset.
func (n *Node) construct(r catalog.Resolver, x, y int) error {
	d, err := catalog.Derive(r, n.Type)
	if err != nil {
		return &RegistryError{Type: n.Type, Err: err}
	}

	n.schema = d.Schema
	n.visible = d.VisibleKeys()
	n.inputs = make([]NodeInput, 0, len(d.Inputs))
	for _, in := range d.Inputs {
		n.inputs = append(n.inputs, NodeInput{NodeID: n.ID, Name: in.Name, Kind: in.Kind})
	}
	n.outputs = make([]NodeOutput, 0, len(d.Outputs))
	for _, out := range d.Outputs {
		n.outputs = append(n.outputs, NodeOutput{NodeID: n.ID, Name: out.Name, Kind: out.Kind})
	}

	if n.Connectors.empty() {
		n.Connectors = ConnectorConfig{
			Inputs:  nonNil(d.Inputs),
			Outputs: nonNil(d.Outputs),
		}
	}
	if d.Title != "" {
		n.Name = d.Title
	}
	if len(n.Display) == 0 {
		n.Display = positionDisplay(x, y)
	}
	if n.Config == nil {
		n.Config = make(map[string]any)
	}
	return nil
}

func nonNil(specs []catalog.ConnectorSpec) []catalog.ConnectorSpec {
	if specs == nil {
		return []catalog.ConnectorSpec{}
	}
	return specs
}

func positionDisplay(x, y int) map[string]any {
	return map[string]any{"position": map[string]any{"x": x, "y": y}}
}

// Position returns the display coordinates of the node
func (n *Node) Position() (x, y float64, ok bool) {
	pos, isMap := n.Display["position"].(map[string]any)
	if !isMap {
		return 0, 0, false
	}
	x, okX := toFloat(pos["x"])
	y, okY := toFloat(pos["y"])
	return x, y, okX && okY
}

// MoveTo sets the display position of the node, keeping other display fields
func (n *Node) MoveTo(x, y int) *Node {
	display := maps.Clone(n.Display)
	if display == nil {
		display = make(map[string]any)
	}
	display["position"] = map[string]any{"x": x, "y": y}
	n.Display = display
	return n
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	case float64:
		return f, true
	case json.Number:
		out, err := f.Float64()
		return out, err == nil
	}
	return 0, false
}

// Inputs returns the input handles of the node
func (n *Node) Inputs() []NodeInput {
	return append([]NodeInput{}, n.inputs...)
}

// Outputs returns the output handles of the node
func (n *Node) Outputs() []NodeOutput {
	return append([]NodeOutput{}, n.outputs...)
}

// Schema returns the config field specs of the node type
func (n *Node) Schema() map[string]catalog.ConfigFieldSpec {
	return maps.Clone(n.schema)
}

// VisibleConfigKeys returns the config keys shown to users, sorted
func (n *Node) VisibleConfigKeys() []string {
	return append([]string{}, n.visible...)
}

// Configure validates fields against the node's schema and writes them. Every
// required field must be set once the call completes. Nothing is written when
// any field is rejected.
func (n *Node) Configure(fields map[string]any) (*Node, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidate := maps.Clone(n.Config)
	if candidate == nil {
		candidate = make(map[string]any, len(fields))
	}

	for _, k := range keys {
		spec, ok := n.schema[k]
		if !ok {
			return nil, &ConfigError{Node: n.ID, Key: k, Allowed: n.VisibleConfigKeys(), Err: ErrUnknownConfigKey}
		}
		if err := spec.Check(k, fields[k]); err != nil {
			return nil, &ConfigError{Node: n.ID, Key: k, Allowed: n.VisibleConfigKeys(), Err: err}
		}
		candidate[k] = fields[k]
	}

	schemaKeys := make([]string, 0, len(n.schema))
	for k := range n.schema {
		schemaKeys = append(schemaKeys, k)
	}
	sort.Strings(schemaKeys)
	for _, k := range schemaKeys {
		if _, set := candidate[k]; set {
			continue
		}
		if err := n.schema[k].Check(k, nil); err != nil {
			return nil, &ConfigError{Node: n.ID, Key: k, Allowed: n.VisibleConfigKeys(), Err: err}
		}
	}

	n.Config = candidate
	return n, nil
}

// Input resolves an input connector. name may be empty when the node has a
// single input. key is required for fan-out connectors and is recorded in the
// connector config.
func (n *Node) Input(name, key string) (ConnectionPoint, error) {
	handles := make([]handle, len(n.inputs))
	for i, in := range n.inputs {
		handles[i] = handle{name: in.Name, kind: in.Kind}
	}
	return n.resolve(DirectionInput, handles, name, key)
}

// Output resolves an output connector, like Input
func (n *Node) Output(name, key string) (ConnectionPoint, error) {
	handles := make([]handle, len(n.outputs))
	for i, out := range n.outputs {
		handles[i] = handle{name: out.Name, kind: out.Kind}
	}
	return n.resolve(DirectionOutput, handles, name, key)
}

type handle struct {
	name string
	kind types.ConnectorKind
}

func (n *Node) resolve(dir Direction, handles []handle, name, key string) (ConnectionPoint, error) {
	names := make([]string, len(handles))
	for i, h := range handles {
		names[i] = h.name
	}

	if name == "" {
		if len(handles) != 1 {
			return ConnectionPoint{}, &ConnectorError{Node: n.ID, Direction: dir, Valid: names, Err: ErrAmbiguousConnector}
		}
		name = handles[0].name
	}

	var h *handle
	for i := range handles {
		if handles[i].name == name {
			h = &handles[i]
			break
		}
	}
	if h == nil {
		return ConnectionPoint{}, &ConnectorError{Node: n.ID, Direction: dir, Name: name, Valid: names, Err: ErrUnknownConnector}
	}

	if !h.kind.RequiresKey() {
		return ConnectionPoint{NodeID: n.ID, ConnectorName: name}, nil
	}
	if key == "" {
		return ConnectionPoint{}, &ConnectorError{Node: n.ID, Direction: dir, Name: name, Valid: names, Err: ErrKeyRequired}
	}
	n.Connectors.addKey(dir, name, h.kind, key)
	return ConnectionPoint{NodeID: n.ID, ConnectorName: name, Key: key}, nil
}

func (n *Node) hasConnector(dir Direction, name string) bool {
	if dir == DirectionInput {
		for _, in := range n.inputs {
			if in.Name == name {
				return true
			}
		}
		return false
	}
	for _, out := range n.outputs {
		if out.Name == name {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.ID)
}
