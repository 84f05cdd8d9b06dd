package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/internal/transport"
	"github.com/avi3tal/noxus-go/pkg/catalog"
	"github.com/avi3tal/noxus-go/pkg/runs"
)

const workflowsPath = "/v1/workflows"

// Service persists definitions on the backend
type Service struct {
	requester *transport.Requester
	resolver  catalog.Resolver
	runs      *runs.Service
	logger    *slog.Logger
}

// NewService creates a workflow service. Definitions it returns resolve their
// nodes against r.
func NewService(req *transport.Requester, r catalog.Resolver, rs *runs.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requester: req, resolver: r, runs: rs, logger: logger}
}

// New creates an empty definition bound to the service's catalog
func (s *Service) New(name string, opts ...Option) *Definition {
	return New(name, s.resolver, opts...)
}

// NewBuilder creates a fluent builder bound to the service's catalog
func (s *Service) NewBuilder(name string, opts ...Option) *Builder {
	return NewBuilder(name, s.resolver, opts...)
}

func workflowPath(id string) string {
	return fmt.Sprintf("%s/%s", workflowsPath, id)
}

// List returns one page of saved workflows
func (s *Service) List(ctx context.Context, page, size int) ([]*Definition, error) {
	items, err := transport.GetPage[json.RawMessage](ctx, s.requester, workflowsPath, page, size, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workflows")
	}
	out := make([]*Definition, 0, len(items))
	for _, raw := range items {
		d, err := Rehydrate(raw, s.resolver)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Get fetches a saved workflow
func (s *Service) Get(ctx context.Context, id string) (*Definition, error) {
	raw, err := s.requester.GetBytes(ctx, workflowPath(id))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get workflow %s", id)
	}
	return Rehydrate(raw, s.resolver)
}

// Save creates the workflow on the backend. The response is merged into d,
// which takes the server identity, and a separate copy is returned.
func (s *Service) Save(ctx context.Context, d *Definition) (*Definition, error) {
	var raw json.RawMessage
	if err := s.requester.Post(ctx, workflowsPath, d.Payload(), &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to save workflow %s", d.Name)
	}
	if err := d.Merge(raw); err != nil {
		return nil, err
	}
	s.logger.Info("Workflow saved.", "workflow_id", d.ID, "nodes", len(d.nodes), "edges", len(d.edges))
	return Rehydrate(raw, s.resolver)
}

// Update replaces the saved workflow with d. force overrides server-side
// conflict checks.
func (s *Service) Update(ctx context.Context, d *Definition, force bool) (*Definition, error) {
	if d.ID == "" {
		return nil, ErrNotSaved
	}
	var raw json.RawMessage
	query := map[string]string{"force": strconv.FormatBool(force)}
	if err := s.requester.Patch(ctx, workflowPath(d.ID), query, d.Payload(), &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to update workflow %s", d.ID)
	}
	if err := d.Merge(raw); err != nil {
		return nil, err
	}
	s.logger.Info("Workflow updated.", "workflow_id", d.ID)
	return Rehydrate(raw, s.resolver)
}

// Refresh overwrites d with the server copy, discarding local edits
func (s *Service) Refresh(ctx context.Context, d *Definition) error {
	if d.ID == "" {
		return ErrNotSaved
	}
	fresh, err := s.Get(ctx, d.ID)
	if err != nil {
		return err
	}
	d.replace(fresh)
	return nil
}

// Delete removes a saved workflow
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.requester.Delete(ctx, workflowPath(id)); err != nil {
		return errors.Wrapf(err, "failed to delete workflow %s", id)
	}
	s.logger.Info("Workflow deleted.", "workflow_id", id)
	return nil
}

// Run starts an execution of a saved workflow
func (s *Service) Run(ctx context.Context, d *Definition, input map[string]any) (*runs.Run, error) {
	if d.ID == "" {
		return nil, ErrNotSaved
	}
	return s.runs.Start(ctx, d.ID, input)
}

func (d *Definition) replace(other *Definition) {
	d.ID = other.ID
	d.Name = other.Name
	d.Kind = other.Kind
	d.nodes = other.nodes
	d.edges = other.edges
	d.cursor = other.cursor
	d.savedSum = other.savedSum
}
