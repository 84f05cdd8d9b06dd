package types

import "github.com/pkg/errors"

// ConnectorKind is the kind of a node input or output slot
type ConnectorKind string

const (
	// KindVariable is a fan-out connector, every binding needs a caller-chosen key
	KindVariable          ConnectorKind = "variable_connector"
	KindVariableType      ConnectorKind = "variable_type_connector"
	KindVariableTypeSized ConnectorKind = "variable_type_size_connector"
	KindVariableTypeInput ConnectorKind = "variable_type_input"
	KindVariableTypeOut   ConnectorKind = "variable_type_output"
	KindConnector         ConnectorKind = "connector"
	KindInput             ConnectorKind = "input"
	KindOutput            ConnectorKind = "output"
)

var connectorKinds = map[ConnectorKind]struct{}{
	KindVariable:          {},
	KindVariableType:      {},
	KindVariableTypeSized: {},
	KindVariableTypeInput: {},
	KindVariableTypeOut:   {},
	KindConnector:         {},
	KindInput:             {},
	KindOutput:            {},
}

// ParseConnectorKind returns the kind named by s
func ParseConnectorKind(s string) (ConnectorKind, error) {
	k := ConnectorKind(s)
	if _, ok := connectorKinds[k]; !ok {
		return "", errors.Errorf("unknown connector kind %q", s)
	}
	return k, nil
}

// RequiresKey reports whether a connection point on this kind must carry a key
func (k ConnectorKind) RequiresKey() bool {
	return k == KindVariable
}

func (k ConnectorKind) String() string {
	return string(k)
}
