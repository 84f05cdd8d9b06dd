package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateNode    = errors.New("node already in topology")
	ErrNodeNotFound     = errors.New("node not in topology")
	ErrCyclicDependency = errors.New("edges form a cycle")
)

// ValidationError reports the topology operation that failed and the node it
// stopped at
type ValidationError struct {
	Op   string
	Node string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: node %s: %v", e.Op, e.Node, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(op, node string, err error) error {
	return &ValidationError{Op: op, Node: node, Err: err}
}
