package runs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/noxus-go/internal/transport"
	"github.com/avi3tal/noxus-go/pkg/types"
)

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewService(transport.New(transport.Config{BaseURL: srv.URL}), nil)
}

func TestStartSendsInput(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/workflows/wf-1/runs", r.URL.Path)
		var body map[string]map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cats", body["input"]["topic"])
		_, _ = w.Write([]byte(`{"id": "run-1", "workflow_id": "wf-1", "status": "queued"}`))
	})

	run, err := s.Start(context.Background(), "wf-1", map[string]any{"topic": "cats"})
	require.NoError(t, err)
	require.Equal(t, "run-1", run.ID)
	require.Equal(t, types.StatusQueued, run.Status)
	require.False(t, run.Done())
}

func TestWaitPollsUntilCompleted(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workflows/wf-1/runs/run-1", r.URL.Path)
		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"id": "run-1", "workflow_id": "wf-1", "status": "running", "progress": 50}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "run-1", "workflow_id": "wf-1", "status": "completed", "progress": 100, "output": {"poem": "meow"}}`))
	})

	run := &Run{ID: "run-1", WorkflowID: "wf-1", Status: types.StatusQueued}
	done, err := s.Wait(context.Background(), run, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, done.Status)
	require.Equal(t, "meow", done.Output["poem"])
	require.Equal(t, int32(3), polls.Load())
}

func TestWaitReportsFailure(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "run-1", "workflow_id": "wf-1", "status": "failed"}`))
	})

	run := &Run{ID: "run-1", WorkflowID: "wf-1", Status: types.StatusRunning}
	done, err := s.Wait(context.Background(), run, time.Millisecond)
	require.Error(t, err)
	var failure *RunFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, "run-1", failure.Run.ID)
	require.Equal(t, types.StatusFailed, done.Status)
}

func TestWaitReturnsFinishedRunImmediately(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	run := &Run{ID: "run-1", WorkflowID: "wf-1", Status: types.StatusCompleted}
	done, err := s.Wait(context.Background(), run, time.Millisecond)
	require.NoError(t, err)
	require.Same(t, run, done)
}

func TestWaitStopsOnContext(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "run-1", "workflow_id": "wf-1", "status": "running"}`))
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Wait(ctx, &Run{ID: "run-1", WorkflowID: "wf-1", Status: types.StatusRunning}, 5*time.Millisecond)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestList(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workflows/wf-1/runs", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"items": [{"id": "a", "status": "completed"}, {"id": "b", "status": "failed"}]}`))
	})

	list, err := s.List(context.Background(), "wf-1", 2, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, types.StatusFailed, list[1].Status)
}
