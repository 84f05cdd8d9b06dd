package workflow

import (
	"fmt"

	"github.com/avi3tal/noxus-go/pkg/catalog"
)

// Builder is a fluent front end over a Definition
type Builder struct {
	def *Definition
}

// NewBuilder creates a builder around a new definition
func NewBuilder(name string, r catalog.Resolver, opts ...Option) *Builder {
	return &Builder{def: New(name, r, opts...)}
}

// Definition returns the definition being built
func (b *Builder) Definition() *Definition {
	return b.def
}

// Start adds the first node of a flow
func (b *Builder) Start(typeName string) *FlowNode {
	n, err := b.def.AddNode(typeName)
	if err != nil {
		return &FlowNode{b: b, err: fmt.Errorf("Start(%q) failed: %w", typeName, err)}
	}
	return &FlowNode{b: b, node: n}
}

// FlowNode references the node most recently added to a flow. Once a step
// fails every later step is skipped and the error is kept.
type FlowNode struct {
	b    *Builder
	node *Node
	err  error
}

func (fn *FlowNode) Err() error {
	return fn.err
}

// Node returns the referenced node
func (fn *FlowNode) Node() *Node {
	return fn.node
}

// Build returns the definition, or the first error of the flow
func (fn *FlowNode) Build() (*Definition, error) {
	if fn.err != nil {
		return nil, fn.err
	}
	return fn.b.def, nil
}

// Configure sets config fields on the current node
func (fn *FlowNode) Configure(fields map[string]any) *FlowNode {
	if fn.err != nil {
		return fn
	}
	if _, err := fn.node.Configure(fields); err != nil {
		fn.err = fmt.Errorf("Configure(%s) failed: %w", fn.node.Type, err)
	}
	return fn
}

// Then adds a node and links it through the sole output and input
func (fn *FlowNode) Then(typeName string) *FlowNode {
	if fn.err != nil {
		return fn
	}
	next, err := fn.b.def.AddNode(typeName)
	if err != nil {
		return &FlowNode{b: fn.b, err: fmt.Errorf("Then(%q) failed: %w", typeName, err)}
	}
	if err := fn.b.def.LinkChain(fn.node, next); err != nil {
		return &FlowNode{b: fn.b, err: fmt.Errorf("Then(%q) failed: %w", typeName, err)}
	}
	return &FlowNode{b: fn.b, node: next}
}

// ThenKey adds a node and links the current node's sole output to the named
// input. key is the fan-out key, and is ignored by plain connectors.
func (fn *FlowNode) ThenKey(typeName, input, key string) *FlowNode {
	if fn.err != nil {
		return fn
	}
	next, err := fn.b.def.AddNode(typeName)
	if err != nil {
		return &FlowNode{b: fn.b, err: fmt.Errorf("ThenKey(%q) failed: %w", typeName, err)}
	}
	if err := fn.b.link(fn.node, next, input, key); err != nil {
		return &FlowNode{b: fn.b, err: fmt.Errorf("ThenKey(%q) failed: %w", typeName, err)}
	}
	return &FlowNode{b: fn.b, node: next}
}

// ThenAll adds several nodes, each fed by the current node
func (fn *FlowNode) ThenAll(typeNames ...string) *ParallelBuilder {
	pb := &ParallelBuilder{b: fn.b, preceding: fn.node, err: fn.err}
	return pb.init(typeNames)
}

// ParallelBuilder holds the branches created by ThenAll
type ParallelBuilder struct {
	b         *Builder
	preceding *Node
	branches  []*Node
	err       error
}

func (pb *ParallelBuilder) init(typeNames []string) *ParallelBuilder {
	if pb.err != nil {
		return pb
	}
	for _, t := range typeNames {
		n, err := pb.b.def.AddNode(t)
		if err != nil {
			pb.err = fmt.Errorf("[ThenAll]: could not add node %q: %w", t, err)
			return pb
		}
		if err := pb.b.def.LinkChain(pb.preceding, n); err != nil {
			pb.err = fmt.Errorf("[ThenAll]: link to %q failed: %w", t, err)
			return pb
		}
		pb.branches = append(pb.branches, n)
	}
	return pb
}

func (pb *ParallelBuilder) Err() error {
	return pb.err
}

// Branches returns the nodes created by ThenAll
func (pb *ParallelBuilder) Branches() []*Node {
	return append([]*Node{}, pb.branches...)
}

// Join adds a node whose named input receives the output of every branch.
// On a fan-out input each branch is bound under its node name and position.
func (pb *ParallelBuilder) Join(typeName, input string) *FlowNode {
	if pb.err != nil {
		return &FlowNode{b: pb.b, err: pb.err}
	}
	join, err := pb.b.def.AddNode(typeName)
	if err != nil {
		return &FlowNode{b: pb.b, err: fmt.Errorf("[Join]: AddNode failed: %w", err)}
	}
	for i, branch := range pb.branches {
		key := fmt.Sprintf("%s %d", branch.Name, i+1)
		if err := pb.b.link(branch, join, input, key); err != nil {
			return &FlowNode{b: pb.b, err: fmt.Errorf("[Join]: link %s->%s failed: %w", branch.ID, join.ID, err)}
		}
	}
	return &FlowNode{b: pb.b, node: join}
}

func (b *Builder) link(from, to *Node, input, key string) error {
	out, err := from.Output("", "")
	if err != nil {
		return err
	}
	in, err := to.Input(input, key)
	if err != nil {
		return err
	}
	_, err = b.def.Link(out, in)
	return err
}
