package workflow

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownConfigKey is returned when configuring a key the node type does not declare
	ErrUnknownConfigKey = errors.New("invalid config key")

	// ErrAmbiguousConnector is returned when no connector name is given and the node has more or less than one
	ErrAmbiguousConnector = errors.New("connector name required")

	// ErrUnknownConnector is returned when a connector name is not declared by the node type
	ErrUnknownConnector = errors.New("connector not found")

	// ErrKeyRequired is returned when a fan-out connector is used without a key
	ErrKeyRequired = errors.New("key is required for variable_connector")

	// ErrChainCardinality is returned when chain-linking a node without exactly one output or input
	ErrChainCardinality = errors.New("node must have exactly one connector to be chained")

	// ErrUnknownEndpoint is returned when an edge references a node or connector missing from the graph
	ErrUnknownEndpoint = errors.New("edge endpoint not found")

	// ErrNotSaved is returned by remote operations on a definition without an ID
	ErrNotSaved = errors.New("workflow has not been saved")
)

// Direction tells inputs from outputs
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// RegistryError is returned when a node type cannot be resolved
type RegistryError struct {
	// Type is the node type name
	Type string
	// Err is the underlying error
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry error: node type %s: %v", e.Type, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// ConfigError is returned when a configuration value is rejected
type ConfigError struct {
	// Node is the ID of the node being configured
	Node string
	// Key is the offending config key
	Key string
	// Allowed lists the visible config keys of the node type
	Allowed []string
	// Err is the underlying error
	Err error
}

func (e *ConfigError) Error() string {
	if errors.Is(e.Err, ErrUnknownConfigKey) {
		return fmt.Sprintf("config error: invalid config key: %s (possible: %s)", e.Key, formatNames(e.Allowed))
	}
	return fmt.Sprintf("config error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ConnectorError is returned when an input or output cannot be resolved
type ConnectorError struct {
	// Node is the ID of the node
	Node string
	// Direction is input or output
	Direction Direction
	// Name is the requested connector name, empty if none was given
	Name string
	// Valid lists the connector names of that direction
	Valid []string
	// Err is the underlying error
	Err error
}

func (e *ConnectorError) Error() string {
	switch {
	case errors.Is(e.Err, ErrAmbiguousConnector):
		return fmt.Sprintf("connector error: node '%s' has %d %ss, please specify a name (possible: %s)",
			e.Node, len(e.Valid), e.Direction, formatNames(e.Valid))
	case errors.Is(e.Err, ErrUnknownConnector):
		return fmt.Sprintf("connector error: node '%s': %s %s not found (possible: %s)",
			e.Node, e.Direction, e.Name, formatNames(e.Valid))
	}
	return fmt.Sprintf("connector error: node '%s': %s %s: %v", e.Node, e.Direction, e.Name, e.Err)
}

func (e *ConnectorError) Unwrap() error {
	return e.Err
}

// LinkError is returned when two endpoints cannot be linked
type LinkError struct {
	// From and To name the two sides, node types for chains and node IDs otherwise
	From string
	To   string
	// Side is the direction that could not be linked
	Side Direction
	// Err is the underlying error
	Err error
}

func (e *LinkError) Error() string {
	if errors.Is(e.Err, ErrKeyRequired) {
		return fmt.Sprintf("link error: a key is required for variable_connector %s so unable to link %s to %s automatically",
			e.Side, e.From, e.To)
	}
	return fmt.Sprintf("link error: %s to %s: %v", e.From, e.To, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

func formatNames(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
