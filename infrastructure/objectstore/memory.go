package objectstore

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wilson12358/daybook/application/ports"
)

// MemoryStore is a process-local object store keyed by attachment ref. It
// backs local development and tests; the deployed system points the same
// port at a hosted object store.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	logger  *zap.Logger
}

// NewMemoryStore creates an empty in-memory object store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		objects: make(map[string][]byte),
		logger:  logger,
	}
}

var _ ports.ObjectStore = (*MemoryStore)(nil)

// Put stores an object under ref, replacing any existing object
func (s *MemoryStore) Put(_ context.Context, ref string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref] = data
	return nil
}

// Get returns the object stored under ref
func (s *MemoryStore) Get(_ context.Context, ref string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[ref]
	return data, ok
}

// Delete removes the object stored under ref. Deleting a missing ref is not
// an error; the cascade after an entry delete must be idempotent.
func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[ref]; !ok {
		s.logger.Debug("delete of unknown object ref", zap.String("ref", ref))
		return nil
	}
	delete(s.objects, ref)
	return nil
}

// Len reports how many objects are stored
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
