package workflow

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/pkg/catalog"
)

// serverShape lists the fields a server response may overwrite. Absent fields
// decode to nil and leave local state alone.
type serverShape struct {
	ID         *string `json:"id"`
	Name       *string `json:"name"`
	Type       *string `json:"type"`
	Definition *struct {
		Nodes *[]json.RawMessage `json:"nodes"`
		Edges *[]Edge            `json:"edges"`
	} `json:"definition"`
}

// Merge applies a server representation of the workflow onto d. Only id, name,
// type and the definition's nodes and edges are taken, and only when present.
// Nodes are rebuilt against the catalog and every edge must address a node and
// connector of the merged graph. d is left untouched when the response cannot
// be applied, and is marked saved when it is.
func (d *Definition) Merge(data []byte) error {
	var s serverShape
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "failed to decode workflow")
	}

	nodes, edges := d.nodes, d.edges
	if s.Definition != nil && s.Definition.Nodes != nil {
		nodes = make([]*Node, 0, len(*s.Definition.Nodes))
		for i, raw := range *s.Definition.Nodes {
			n, err := decodeNode(raw, d.resolver)
			if err != nil {
				return errors.Wrapf(err, "workflow node %d", i)
			}
			nodes = append(nodes, n)
		}
	}
	if s.Definition != nil && s.Definition.Edges != nil {
		edges = append(make([]Edge, 0, len(*s.Definition.Edges)), *s.Definition.Edges...)
	}
	if err := validateEdges(nodes, edges); err != nil {
		return err
	}

	if s.ID != nil {
		d.ID = *s.ID
	}
	if s.Name != nil {
		d.Name = *s.Name
	}
	if s.Type != nil {
		d.Kind = *s.Type
	}
	d.nodes, d.edges = nodes, edges
	d.advanceCursor()

	d.MarkSaved()
	return nil
}

// advanceCursor keeps new nodes right of every merged node
func (d *Definition) advanceCursor() {
	for _, n := range d.nodes {
		if x, _, ok := n.Position(); ok && int(x) > d.cursor {
			d.cursor = int(x)
		}
	}
}

// Rehydrate rebuilds a definition from a server representation. Node handles
// and schemas are derived from r again, while node config, connector config
// and display are kept as sent.
func Rehydrate(data []byte, r catalog.Resolver) (*Definition, error) {
	d := New("", r)
	if err := d.Merge(data); err != nil {
		return nil, err
	}
	return d, nil
}

// Clone returns an independent copy of d through its wire form
func (d *Definition) Clone() (*Definition, error) {
	data, err := json.Marshal(struct {
		ID string `json:"id"`
		Payload
	}{ID: d.ID, Payload: d.Payload()})
	if err != nil {
		return nil, err
	}
	c, err := Rehydrate(data, d.resolver)
	if err != nil {
		return nil, err
	}
	c.cursor = d.cursor
	c.savedSum = d.savedSum
	return c, nil
}
