package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequester(t *testing.T, h http.Handler) *Requester {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	r := New(Config{
		BaseURL:          srv.URL,
		APIKey:           "secret",
		Headers:          map[string]string{"X-Tenant": "acme"},
		RateLimitRetries: 2,
		RetryWait:        5 * time.Millisecond,
	})
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRequesterSendsHeadersAndBody(t *testing.T) {
	t.Parallel()

	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "secret", req.Header.Get("X-API-Key"))
		assert.Equal(t, "acme", req.Header.Get("X-Tenant"))
		assert.Equal(t, "/v1/workflows", req.URL.Path)

		var in map[string]any
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		in["id"] = "wf-1"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(in)
	}))

	var out map[string]any
	err := r.Post(context.Background(), "/v1/workflows", map[string]any{"name": "poem"}, &out)
	require.NoError(t, err)
	require.Equal(t, "wf-1", out["id"])
	require.Equal(t, "poem", out["name"])
}

func TestRequesterRetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))

	var out struct{ OK bool }
	require.NoError(t, r.Get(context.Background(), "/v1/nodes", nil, &out))
	require.True(t, out.OK)
	require.Equal(t, int32(3), calls.Load())
}

func TestRequesterGivesUpAfterRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	err := r.Get(context.Background(), "/v1/nodes", nil, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRateLimited))
	require.Equal(t, int32(3), calls.Load())
}

func TestRequesterRetryHonoursContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	r := New(Config{BaseURL: srv.URL, RateLimitRetries: 10, RetryWait: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Get(ctx, "/v1/nodes", nil, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRequesterAPIError(t *testing.T) {
	t.Parallel()

	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "missing"}`))
	}))

	err := r.Delete(context.Background(), "/v1/workflows/nope")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "DELETE", apiErr.Method)
	require.Contains(t, apiErr.Body, "missing")
	require.True(t, IsNotFound(err))
}

func TestGetPage(t *testing.T) {
	t.Parallel()

	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		switch req.URL.Path {
		case "/v1/items":
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "5", q.Get("size"))
			assert.Equal(t, "flow", q.Get("type"))
			_, _ = w.Write([]byte(`{"items": [{"id": "a"}, {"id": "b"}], "total": 7}`))
		case "/v1/bare":
			_, _ = w.Write([]byte(`[{"id": "a"}]`))
		case "/v1/empty":
			_, _ = w.Write([]byte(`{"total": 0}`))
		}
	}))

	type item struct {
		ID string `json:"id"`
	}
	ctx := context.Background()

	items, err := GetPage[item](ctx, r, "/v1/items", 2, 5, map[string]string{"type": "flow"})
	require.NoError(t, err)
	require.Equal(t, []item{{ID: "a"}, {ID: "b"}}, items)

	items, err = GetPage[item](ctx, r, "/v1/bare", 1, 10, nil)
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = GetPage[item](ctx, r, "/v1/empty", 0, 0, nil)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestUploadAndGetBytes(t *testing.T) {
	t.Parallel()

	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			f, hdr, err := req.FormFile("file")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(f)
			assert.Equal(t, "notes.txt", hdr.Filename)
			assert.Equal(t, "hello", string(data))
			_, _ = w.Write([]byte(`{"id": "file-1"}`))
		case http.MethodGet:
			_, _ = w.Write([]byte("raw-bytes"))
		}
	}))

	ctx := context.Background()
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, r.Upload(ctx, "/v1/file", "file", "notes.txt", strings.NewReader("hello"), &out))
	require.Equal(t, "file-1", out.ID)

	data, err := r.GetBytes(ctx, "/v1/file/file-1")
	require.NoError(t, err)
	require.Equal(t, "raw-bytes", string(data))
}
