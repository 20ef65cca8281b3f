//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package checkpoint

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store, useful for tests and for a single
// process that never needs to resume a task across a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	state map[string]State
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[string]State)}
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, checkpointID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[checkpointID] = state
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, checkpointID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.state[checkpointID]
	if !ok {
		return State{}, ErrNotFound
	}
	return state, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, checkpointID)
	return nil
}
