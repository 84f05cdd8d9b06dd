package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/pkg/types"
)

// ConnectorSpec declares one input or output slot of a node type. It is also the
// element type of a node's connector_config lists, where Keys holds the fan-out
// keys bound so far. Fields the SDK does not model are kept in Extra so they
// survive a round trip.
type ConnectorSpec struct {
	Name  string
	Kind  types.ConnectorKind
	Keys  []string
	Extra map[string]json.RawMessage
}

func (c ConnectorSpec) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["name"] = c.Name
	m["type"] = c.Kind
	if c.Keys != nil {
		m["keys"] = c.Keys
	}
	return json.Marshal(m)
}

func (c *ConnectorSpec) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var spec ConnectorSpec
	if err := json.Unmarshal(raw["name"], &spec.Name); err != nil || spec.Name == "" {
		return errors.New("connector is missing a name")
	}

	var kind string
	if err := json.Unmarshal(raw["type"], &kind); err != nil {
		return errors.Errorf("connector %s is missing a type", spec.Name)
	}
	k, err := types.ParseConnectorKind(kind)
	if err != nil {
		return errors.Wrapf(err, "connector %s", spec.Name)
	}
	spec.Kind = k

	if keys, ok := raw["keys"]; ok && string(keys) != "null" {
		if err := json.Unmarshal(keys, &spec.Keys); err != nil {
			return errors.Wrapf(err, "connector %s keys", spec.Name)
		}
	}

	delete(raw, "name")
	delete(raw, "type")
	delete(raw, "keys")
	if len(raw) > 0 {
		spec.Extra = raw
	}

	*c = spec
	return nil
}

// Clone returns a deep copy, so appending keys never touches the original
func (c ConnectorSpec) Clone() ConnectorSpec {
	out := ConnectorSpec{Name: c.Name, Kind: c.Kind}
	if c.Keys != nil {
		out.Keys = append([]string{}, c.Keys...)
	}
	if c.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// HasKey reports whether key is already bound on this connector
func (c ConnectorSpec) HasKey(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func cloneSpecs(in []ConnectorSpec) []ConnectorSpec {
	if in == nil {
		return nil
	}
	out := make([]ConnectorSpec, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// ConfigFieldSpec describes a single configuration field of a node type
type ConfigFieldSpec struct {
	Type        types.FieldType `json:"type"`
	Description string          `json:"description,omitempty"`
	Visible     bool            `json:"visible"`
	Optional    bool            `json:"optional"`
	Default     any             `json:"default"`
}

func (s *ConfigFieldSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string  `json:"type"`
		Description *string `json:"description"`
		Visible     bool    `json:"visible"`
		Optional    bool    `json:"optional"`
		Default     any     `json:"default"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	typ, err := types.ParseFieldType(raw.Type)
	if err != nil {
		return err
	}
	*s = ConfigFieldSpec{
		Type:     typ,
		Visible:  raw.Visible,
		Optional: raw.Optional,
		Default:  raw.Default,
	}
	if raw.Description != nil {
		s.Description = *raw.Description
	}
	return nil
}

// Check validates a candidate value for the field named key. A nil value
// stands for "not set" and only passes on optional fields.
func (s ConfigFieldSpec) Check(key string, value any) error {
	if value == nil {
		if !s.Optional {
			return &FieldError{Key: key, Type: s.Type, Err: ErrMissingValue}
		}
		return nil
	}
	if err := s.Type.Validate(value); err != nil {
		return &FieldError{Key: key, Type: s.Type, Err: err}
	}
	return nil
}

// NodeTypeDescriptor is the server-declared schema of one kind of node
type NodeTypeDescriptor struct {
	Type           string                     `json:"type"`
	Title          string                     `json:"title"`
	Description    string                     `json:"description"`
	Integrations   []string                   `json:"integrations"`
	Inputs         []ConnectorSpec            `json:"inputs"`
	Outputs        []ConnectorSpec            `json:"outputs"`
	Config         map[string]ConfigFieldSpec `json:"config"`
	IsAvailable    bool                       `json:"is_available"`
	Visible        bool                       `json:"visible"`
	ConfigEndpoint string                     `json:"config_endpoint,omitempty"`
}

// VisibleConfigKeys returns the configurable keys shown to users, sorted
func (d *NodeTypeDescriptor) VisibleConfigKeys() []string {
	return visibleKeys(d.Config)
}

// ParseDescriptor decodes a single raw node-type descriptor
func ParseDescriptor(raw json.RawMessage) (NodeTypeDescriptor, error) {
	var d NodeTypeDescriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, err
	}
	if d.Type == "" {
		return d, errors.New("descriptor is missing a type")
	}
	return d, nil
}

// ParseDescriptors decodes every raw descriptor, failing on the first bad one
func ParseDescriptors(raw []json.RawMessage) ([]NodeTypeDescriptor, error) {
	out := make([]NodeTypeDescriptor, 0, len(raw))
	for i, r := range raw {
		d, err := ParseDescriptor(r)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("node descriptor %d", i))
		}
		out = append(out, d)
	}
	return out, nil
}
