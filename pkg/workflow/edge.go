package workflow

import (
	"encoding/json"
	"fmt"
)

// ConnectionPoint addresses one end of an edge: a connector on a node, plus
// the fan-out key for variable connectors
type ConnectionPoint struct {
	NodeID        string `json:"node_id"`
	ConnectorName string `json:"connector_name"`
	Key           string `json:"key"`
	Optional      bool   `json:"optional"`
}

// MarshalJSON always writes the full endpoint, with a null key when the
// connector is not a fan-out.
func (p ConnectionPoint) MarshalJSON() ([]byte, error) {
	var key *string
	if p.Key != "" {
		key = &p.Key
	}
	return json.Marshal(struct {
		NodeID        string  `json:"node_id"`
		ConnectorName string  `json:"connector_name"`
		Key           *string `json:"key"`
		Optional      bool    `json:"optional"`
	}{p.NodeID, p.ConnectorName, key, p.Optional})
}

func (p ConnectionPoint) String() string {
	if p.Key != "" {
		return fmt.Sprintf("%s::%s[%s]", p.NodeID, p.ConnectorName, p.Key)
	}
	return fmt.Sprintf("%s::%s", p.NodeID, p.ConnectorName)
}

// Edge links an output of one node to an input of another. Edges are never
// modified once created.
type Edge struct {
	ID   string          `json:"id,omitempty"`
	From ConnectionPoint `json:"from_id"`
	To   ConnectionPoint `json:"to_id"`
}
