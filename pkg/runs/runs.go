// Package runs tracks executions of saved workflows
package runs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/internal/transport"
	"github.com/avi3tal/noxus-go/pkg/types"
)

// DefaultPollInterval is the pause between status checks in Wait
const DefaultPollInterval = 5 * time.Second

// Run is one execution of a workflow
type Run struct {
	ID                 string          `json:"id"`
	GroupID            string          `json:"group_id"`
	WorkflowID         string          `json:"workflow_id"`
	Input              map[string]any  `json:"input"`
	NodeIDs            []string        `json:"node_ids,omitempty"`
	Status             types.RunStatus `json:"status"`
	Progress           int             `json:"progress"`
	CreatedAt          string          `json:"created_at"`
	FinishedAt         string          `json:"finished_at,omitempty"`
	Output             map[string]any  `json:"output,omitempty"`
	WorkflowDefinition map[string]any  `json:"workflow_definition,omitempty"`
}

// Done reports whether the run reached a terminal status
func (r *Run) Done() bool {
	return r.Status.Terminal()
}

// RunFailure is returned by Wait when a run ends in the failed status
type RunFailure struct {
	Run *Run
}

func (e *RunFailure) Error() string {
	return fmt.Sprintf("run %s of workflow %s failed", e.Run.ID, e.Run.WorkflowID)
}

// Service reads runs from the backend
type Service struct {
	requester *transport.Requester
	logger    *slog.Logger
}

// NewService creates a run service
func NewService(r *transport.Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requester: r, logger: logger}
}

func runPath(workflowID, runID string) string {
	return fmt.Sprintf("/v1/workflows/%s/runs/%s", workflowID, runID)
}

// Start triggers a run of a saved workflow with the given input
func (s *Service) Start(ctx context.Context, workflowID string, input map[string]any) (*Run, error) {
	if input == nil {
		input = map[string]any{}
	}
	var run Run
	err := s.requester.Post(ctx, fmt.Sprintf("/v1/workflows/%s/runs", workflowID), map[string]any{"input": input}, &run)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start run of workflow %s", workflowID)
	}
	s.logger.Info("Run started.", "workflow_id", workflowID, "run_id", run.ID)
	return &run, nil
}

// Get fetches a run
func (s *Service) Get(ctx context.Context, workflowID, runID string) (*Run, error) {
	var run Run
	if err := s.requester.Get(ctx, runPath(workflowID, runID), nil, &run); err != nil {
		return nil, errors.Wrapf(err, "failed to get run %s", runID)
	}
	return &run, nil
}

// List returns one page of the runs of a workflow
func (s *Service) List(ctx context.Context, workflowID string, page, size int) ([]Run, error) {
	out, err := transport.GetPage[Run](ctx, s.requester, fmt.Sprintf("/v1/workflows/%s/runs", workflowID), page, size, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list runs of workflow %s", workflowID)
	}
	return out, nil
}

// Wait polls run until it completes. A failed run is returned together with a
// *RunFailure. interval <= 0 selects DefaultPollInterval.
func (s *Service) Wait(ctx context.Context, run *Run, interval time.Duration) (*Run, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	current := run
	for !current.Done() {
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-ticker.C:
		}

		next, err := s.Get(ctx, current.WorkflowID, current.ID)
		if err != nil {
			return current, err
		}
		s.logger.Debug("Polled run.", "run_id", next.ID, "status", next.Status, "progress", next.Progress)
		current = next
	}

	if current.Status == types.StatusFailed {
		return current, &RunFailure{Run: current}
	}
	return current, nil
}
