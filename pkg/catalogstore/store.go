// Package catalogstore caches node catalogs fetched from the backend
package catalogstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultKey is the key under which a client stores the catalog of its backend
const DefaultKey = "default"

var ErrNotFound = errors.New("catalog snapshot not found")

// Snapshot is one fetched node catalog
type Snapshot struct {
	Key       string
	Nodes     []json.RawMessage
	FetchedAt time.Time
}

// Fresh reports whether the snapshot is younger than maxAge at now.
// maxAge <= 0 never expires.
func (s *Snapshot) Fresh(maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(s.FetchedAt) < maxAge
}

// Store persists catalog snapshots by key
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, key string) (*Snapshot, error)
	Delete(ctx context.Context, key string) error
}

type MemoryStore struct {
	snapshots map[string]*Snapshot
	mu        sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*Snapshot),
	}
}

func (m *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	snap.Nodes = cloneNodes(snap.Nodes)
	m.snapshots[snap.Key] = &snap
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, exists := m.snapshots[key]
	if !exists {
		return nil, errors.Wrapf(ErrNotFound, "key %q", key)
	}
	out := *snap
	out.Nodes = cloneNodes(snap.Nodes)
	return &out, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, key)
	return nil
}

func cloneNodes(nodes []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(nodes))
	for i, n := range nodes {
		out[i] = append(json.RawMessage(nil), n...)
	}
	return out
}
