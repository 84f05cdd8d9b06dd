// Package catalog holds the node-type registry: the server-declared schemas of
// every node kind, loaded once per session and consulted whenever a workflow
// node is built, configured or rehydrated.
package catalog

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Resolver looks up node-type descriptors by type name
type Resolver interface {
	Lookup(typeName string) (*NodeTypeDescriptor, error)
}

// Registry is a concurrency-safe table of node-type descriptors. Loads replace
// the whole table at once, lookups never observe a partially loaded catalog.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*NodeTypeDescriptor
	logger *slog.Logger
}

var _ Resolver = (*Registry)(nil)

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used to report catalog loads
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{
		types:  make(map[string]*NodeTypeDescriptor),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load parses the raw descriptors and replaces the registry contents with them.
// On a parse error the previous contents are kept.
func (r *Registry) Load(raw []json.RawMessage) error {
	descs, err := ParseDescriptors(raw)
	if err != nil {
		return errors.Wrap(err, "failed to load node catalog")
	}
	r.LoadDescriptors(descs)
	return nil
}

// LoadJSON is Load for a JSON array of descriptors
func (r *Registry) LoadJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to decode node catalog")
	}
	return r.Load(raw)
}

// LoadDescriptors replaces the registry contents with descs
func (r *Registry) LoadDescriptors(descs []NodeTypeDescriptor) {
	table := make(map[string]*NodeTypeDescriptor, len(descs))
	for i := range descs {
		d := descs[i]
		table[d.Type] = &d
	}

	r.mu.Lock()
	r.types = table
	r.mu.Unlock()

	r.logger.Debug("Node catalog loaded.", "node_types", len(table))
}

// Lookup returns the descriptor registered for typeName. The returned value
// is shared and must be treated as read-only.
func (r *Registry) Lookup(typeName string) (*NodeTypeDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.types[typeName]
	if !ok {
		return nil, errors.Wrapf(ErrNodeTypeNotFound, "node type %s", typeName)
	}
	return d, nil
}

// Types returns the registered type names, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered node types
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
