package knowledgebases

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

func TestCreateSendsSettings(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "docs", body["name"])
		assert.Equal(t, []any{}, body["document_types"])
		settings, _ := body["settings_"].(map[string]any)
		assert.Equal(t, []any{"Document"}, settings["allowed_sources"])
		_, _ = w.Write([]byte(`{"id": "kb-1", "name": "docs", "status": "created", "settings_": {"allowed_sources": ["Document"]}}`))
	})

	kb, err := s.Create(context.Background(), "docs", "manuals", nil, Settings{
		AllowedSources: []string{"Document"},
		Ingestion:      Ingestion{BatchSize: 10, DefaultChunkSize: 1000},
		Retrieval:      Retrieval{Type: "hybrid_reranking"},
	})
	require.NoError(t, err)
	require.Equal(t, "kb-1", kb.ID)
	require.Equal(t, []string{"Document"}, kb.Settings.AllowedSources)

	_, err = s.Create(context.Background(), "", "", nil, Settings{})
	require.True(t, errors.Is(err, ErrNameRequired))
}

func TestListGetRefresh(t *testing.T) {
	t.Parallel()

	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/knowledge_bases" {
			assert.Equal(t, "5", r.URL.Query().Get("size"))
			_, _ = w.Write([]byte(`{"items": [{"id": "kb-1"}]}`))
			return
		}
		assert.Equal(t, "/v1/knowledge_bases/kb-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "kb-1", "name": "docs", "training_documents": 2, "total_documents": 3}`))
	})

	ctx := context.Background()
	list, err := s.List(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)

	kb := &list[0]
	require.NoError(t, s.Refresh(ctx, kb))
	require.Equal(t, "docs", kb.Name)
	require.True(t, kb.Training())
	require.Equal(t, 3, kb.TotalDocuments)
}
