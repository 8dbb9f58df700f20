// Package store persists the diagram as a single JSON blob under one fixed
// storage key.
//
// The engine itself performs no I/O; this package is the external
// collaborator the core contracts with through load/save semantics. Four
// backends share the [Store] interface:
//
//   - [MemoryStore]: process-local, for tests and ephemeral sessions
//   - [FileStore]: one JSON file on disk, for CLI usage
//   - [RedisStore]: one key in Redis, for the HTTP server
//   - [MongoStore]: one upserted document in a collection
//
// Load reports absence through its boolean, not an error, so callers can
// distinguish "no diagram yet" from a failing backend.
package store

import (
	"context"
	"sync"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// DefaultKey is the fixed storage key for the diagram blob.
const DefaultKey = "schemadraw:diagram"

// Store is the persistence contract for a single diagram.
type Store interface {
	// Load retrieves the stored diagram. The boolean reports whether a
	// diagram was present; absence is not an error.
	Load(ctx context.Context) (diagram.Diagram, bool, error)

	// Save stores the diagram, replacing any previous one.
	Save(ctx context.Context, d diagram.Diagram) error

	// Delete removes the stored diagram. Deleting an absent diagram is a
	// no-op.
	Delete(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// MemoryStore keeps the serialized diagram in process memory. Safe for
// concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load retrieves the stored diagram.
func (s *MemoryStore) Load(ctx context.Context) (diagram.Diagram, bool, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data == nil {
		return diagram.Diagram{}, false, nil
	}
	return decode(data)
}

// Save stores the diagram.
func (s *MemoryStore) Save(ctx context.Context, d diagram.Diagram) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Delete removes the stored diagram.
func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
