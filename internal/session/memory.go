package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps session markers in-process. The default when no Redis is
// configured, and what the tests use.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
	edits  map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]Draft),
		edits:  make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Draft(_ context.Context, key string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[key]
	if !ok {
		return nil, nil
	}

	return &d, nil
}

func (s *MemoryStore) SetDraft(_ context.Context, key string, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[key] = d

	return nil
}

func (s *MemoryStore) ClearDraft(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, key)

	return nil
}

func (s *MemoryStore) EditTarget(_ context.Context, key string) (*uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.edits[key]
	if !ok {
		return nil, nil
	}

	return &id, nil
}

func (s *MemoryStore) SetEditTarget(_ context.Context, key string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edits[key] = id

	return nil
}

func (s *MemoryStore) ClearEditTarget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.edits, key)

	return nil
}
