package contextstore

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

// InMemoryStore is a process-local Store backed by a plain map guarded by
// one RWMutex per the teacher's session-service sharding pattern
// (session/inmemory/in_memory_session_service.go), simplified to the
// append/get-all contract this runtime actually needs.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]model.Message
}

// NewInMemoryStore creates an empty in-memory context store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]model.Message)}
}

// Add implements Store.
func (s *InMemoryStore) Add(_ context.Context, sessionID string, messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], messages...)
	return nil
}

// Get implements Store. It returns a fresh copy so callers (notably the
// overflow manager, which must only ever mutate a deep copy) cannot
// accidentally mutate the persisted log.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.sessions[sessionID]
	out := make([]model.Message, len(src))
	copy(out, src)
	return out, nil
}

// Close implements Store. The in-memory store holds no external resources.
func (s *InMemoryStore) Close() error { return nil }
