package agents

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/internal/transport"
)

const basePath = "/v1/agents"

var ErrNameRequired = errors.New("agent name is required")

type Service struct {
	requester *transport.Requester
	logger    *slog.Logger
}

func NewService(r *transport.Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requester: r, logger: logger}
}

type request struct {
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// List returns every agent. The endpoint is not paginated.
func (s *Service) List(ctx context.Context) ([]Agent, error) {
	var out []Agent
	if err := s.requester.Get(ctx, basePath, nil, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list agents")
	}
	if out == nil {
		out = []Agent{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Agent, error) {
	var a Agent
	if err := s.requester.Get(ctx, basePath+"/"+id, nil, &a); err != nil {
		return nil, errors.Wrapf(err, "failed to get agent %s", id)
	}
	return &a, nil
}

func (s *Service) Create(ctx context.Context, name string, settings Settings) (*Agent, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	var a Agent
	if err := s.requester.Post(ctx, basePath, request{Name: name, Settings: settings}, &a); err != nil {
		return nil, errors.Wrapf(err, "failed to create agent %q", name)
	}
	s.logger.Info("Agent created.", "agent_id", a.ID, "name", a.Name)
	return &a, nil
}

// Update replaces the name and settings of an agent
func (s *Service) Update(ctx context.Context, id, name string, settings Settings) (*Agent, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	var a Agent
	if err := s.requester.Patch(ctx, basePath+"/"+id, nil, request{Name: name, Settings: settings}, &a); err != nil {
		return nil, errors.Wrapf(err, "failed to update agent %s", id)
	}
	return &a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.requester.Delete(ctx, basePath+"/"+id); err != nil {
		return errors.Wrapf(err, "failed to delete agent %s", id)
	}
	s.logger.Info("Agent deleted.", "agent_id", id)
	return nil
}
