package catalogstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a SQLite table
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates the schema if needed and returns the store
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create node_catalogs table")
	}
	return s, nil
}

// OpenSQLite opens the database at dsn, e.g. "file:noxus.db", with the pure Go
// SQLite driver and prepares it as a store. Close releases the database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", dsn)
	}
	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_catalogs (
			key TEXT PRIMARY KEY,
			nodes BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	nodes := snap.Nodes
	if nodes == nil {
		nodes = []json.RawMessage{}
	}
	blob, err := json.Marshal(nodes)
	if err != nil {
		return errors.Wrap(err, "failed to encode catalog")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO node_catalogs (key, nodes, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET nodes = excluded.nodes, fetched_at = excluded.fetched_at`,
		snap.Key,
		blob,
		snap.FetchedAt.UnixNano(),
	)
	return errors.Wrapf(err, "failed to save catalog %q", snap.Key)
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT nodes, fetched_at FROM node_catalogs WHERE key = ?`,
		key,
	)

	var (
		blob      []byte
		fetchedAt int64
	)
	if err := row.Scan(&blob, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "key %q", key)
		}
		return nil, errors.Wrapf(err, "failed to load catalog %q", key)
	}

	snap := &Snapshot{Key: key, FetchedAt: time.Unix(0, fetchedAt)}
	if err := json.Unmarshal(blob, &snap.Nodes); err != nil {
		return nil, errors.Wrapf(err, "failed to decode catalog %q", key)
	}
	return snap, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM node_catalogs WHERE key = ?`, key)
	return errors.Wrapf(err, "failed to delete catalog %q", key)
}
