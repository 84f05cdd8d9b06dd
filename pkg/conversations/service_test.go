package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/noxus-go/internal/transport"
)

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewService(transport.New(transport.Config{BaseURL: srv.URL}), nil)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/conversations", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if agent := r.URL.Query().Get("assistant_id"); agent != "" {
			assert.Nil(t, body["settings"])
		} else {
			assert.NotNil(t, body["settings"])
		}
		_, _ = w.Write([]byte(`{"id": "c-1", "name": "chat", "messages": []}`))
	})

	t.Run("WithSettings", func(t *testing.T) {
		t.Parallel()
		c, err := s.Create(ctx, "chat", &Settings{ModelSelection: []string{"gpt-4o"}, Tools: []Tool{WebResearchTool()}}, "")
		require.NoError(t, err)
		require.Equal(t, "c-1", c.ID)
	})

	t.Run("WithAgent", func(t *testing.T) {
		t.Parallel()
		_, err := s.Create(ctx, "chat", nil, "ag-1")
		require.NoError(t, err)
	})

	t.Run("NeitherOrBoth", func(t *testing.T) {
		t.Parallel()
		_, err := s.Create(ctx, "chat", nil, "")
		require.True(t, errors.Is(err, ErrSettingsOrAgent))
		_, err = s.Create(ctx, "chat", &Settings{}, "ag-1")
		require.True(t, errors.Is(err, ErrSettingsOrAgent))
	})
}

func TestAddMessage(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req MessageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Content == "silence" {
			_, _ = w.Write([]byte(`{"id": "c-1", "messages": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "c-1", "name": "chat", "messages": [
			{"id": "m1", "created_at": "2024-05-01T10:00:00Z", "message_parts": [{"role": "user", "content": "` + req.Content + `"}]},
			{"id": "m2", "created_at": "2024-05-01T10:00:01Z", "message_parts": [{"type": "text", "content": "hello there"}]}
		]}`))
	})

	ctx := context.Background()
	c := &Conversation{ID: "c-1"}
	reply, err := s.AddMessage(ctx, c, MessageRequest{Content: "hi"})
	require.NoError(t, err)
	require.Equal(t, "m2", reply.ID)
	require.Equal(t, "hello there", reply.Text())
	require.Len(t, c.Messages, 2)
	require.Equal(t, "chat", c.Name)

	_, err = s.AddMessage(ctx, c, MessageRequest{Content: "silence"})
	require.True(t, errors.Is(err, ErrNoResponse))

	_, err = s.AddMessage(ctx, c, MessageRequest{})
	require.True(t, errors.Is(err, ErrEmptyMessage))
}

func TestListUpdateRefresh(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Path == "/v1/conversations" {
				assert.Equal(t, "2", r.URL.Query().Get("page"))
				_, _ = w.Write([]byte(`{"items": [{"id": "c-1"}, {"id": "c-2"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"id": "c-1", "name": "server", "messages": [{"id": "m1", "message_parts": []}]}`))
		case http.MethodPatch:
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Contains(t, body, "name")
			assert.Nil(t, body["name"])
			_, _ = w.Write([]byte(`{"id": "c-1", "name": "server"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	list, err := s.List(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = s.Update(ctx, "c-1", "", &Settings{Temperature: 0.1, Tools: []Tool{}})
	require.NoError(t, err)

	c := &Conversation{ID: "c-1", Name: "local"}
	require.NoError(t, s.Refresh(ctx, c))
	require.Equal(t, "server", c.Name)

	msgs, err := s.Messages(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, s.Delete(ctx, "c-1"))
}
