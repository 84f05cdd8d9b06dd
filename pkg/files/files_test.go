package files

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/noxus-go/internal/transport"
)

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/file":
			f, hdr, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "notes.txt", hdr.Filename)
			assert.Equal(t, "hello", string(data))
			_, _ = w.Write([]byte(`{"id": "f-1", "uri": "s3://f-1", "size": 5, "filename": "notes.txt",
				"content_type": "text/plain", "source_type": "Document", "source_metadata": null}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/file/f-1":
			_, _ = w.Write([]byte("hello"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	s := NewService(transport.New(transport.Config{BaseURL: srv.URL}), nil)
	ctx := context.Background()

	f, err := s.Save(ctx, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, "f-1", f.ID)
	require.Equal(t, SourceDocument, f.SourceType)
	require.Nil(t, f.CreatedAt)

	data, err := s.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	_, err = s.Get(ctx, "missing")
	require.True(t, transport.IsNotFound(err))
}

func TestParseSourceType(t *testing.T) {
	t.Parallel()

	st, err := ParseSourceType("Google Drive")
	require.NoError(t, err)
	require.Equal(t, SourceGoogleDrive, st)

	_, err = ParseSourceType("Dropbox")
	require.Error(t, err)
}
