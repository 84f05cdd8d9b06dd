package catalogstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	store, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)
	return store
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) Store{
		"Memory": func(*testing.T) Store { return NewMemoryStore() },
		"SQLite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("SaveLoad", func(t *testing.T) {
				t.Parallel()
				s := open(t)
				at := time.Unix(1700000000, 0)
				nodes := []json.RawMessage{json.RawMessage(`{"type":"InputNode"}`), json.RawMessage(`{"type":"OutputNode"}`)}
				require.NoError(t, s.Save(ctx, Snapshot{Key: DefaultKey, Nodes: nodes, FetchedAt: at}))

				snap, err := s.Load(ctx, DefaultKey)
				require.NoError(t, err)
				require.Equal(t, DefaultKey, snap.Key)
				require.True(t, at.Equal(snap.FetchedAt))
				require.Len(t, snap.Nodes, 2)
				require.JSONEq(t, `{"type":"OutputNode"}`, string(snap.Nodes[1]))
			})

			t.Run("Overwrite", func(t *testing.T) {
				t.Parallel()
				s := open(t)
				require.NoError(t, s.Save(ctx, Snapshot{Key: "k", Nodes: []json.RawMessage{json.RawMessage(`{}`)}}))
				require.NoError(t, s.Save(ctx, Snapshot{Key: "k"}))

				snap, err := s.Load(ctx, "k")
				require.NoError(t, err)
				require.Empty(t, snap.Nodes)
				require.False(t, snap.FetchedAt.IsZero())
			})

			t.Run("Missing", func(t *testing.T) {
				t.Parallel()
				s := open(t)
				_, err := s.Load(ctx, "nope")
				require.True(t, errors.Is(err, ErrNotFound))
			})

			t.Run("Delete", func(t *testing.T) {
				t.Parallel()
				s := open(t)
				require.NoError(t, s.Save(ctx, Snapshot{Key: "k"}))
				require.NoError(t, s.Delete(ctx, "k"))
				_, err := s.Load(ctx, "k")
				require.True(t, errors.Is(err, ErrNotFound))
				require.NoError(t, s.Delete(ctx, "k"))
			})
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()
	nodes := []json.RawMessage{json.RawMessage(`{"a":1}`)}
	require.NoError(t, s.Save(ctx, Snapshot{Key: "k", Nodes: nodes}))
	nodes[0][2] = 'b'

	snap, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(snap.Nodes[0]))
}

func TestOpenSQLiteFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := "file:" + t.TempDir() + "/catalog.db"

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Snapshot{Key: DefaultKey, Nodes: []json.RawMessage{json.RawMessage(`{"type":"InputNode"}`)}}))
	require.NoError(t, s.Close())

	// reopening keeps the data
	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	snap, err := s.Load(ctx, DefaultKey)
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 1)
}

func TestSnapshotFresh(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := &Snapshot{FetchedAt: now.Add(-time.Hour)}
	require.True(t, snap.Fresh(0, now))
	require.True(t, snap.Fresh(2*time.Hour, now))
	require.False(t, snap.Fresh(time.Minute, now))
}
