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

// Package checkpoint persists a Runner's suspend/resume coordination state
// (task identity, context id, current round, the tool call a suspension is
// waiting on) so a task can be reloaded and continued after the process that
// started it is gone. The bulk conversation history stays in
// contextstore.Store; a checkpoint only needs to be big enough to re-bind a
// fresh Runner to the same context id and round.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Store.Load when no checkpoint exists for the
// given id.
var ErrNotFound = errors.New("checkpoint: not found")

// State is the suspend/resume snapshot of one task.
type State struct {
	TaskID            string    `json:"task_id"`
	ParentTaskID      string    `json:"parent_task_id,omitempty"`
	RootTaskID        string    `json:"root_task_id,omitempty"`
	ContextID         string    `json:"context_id"`
	AgentName         string    `json:"agent_name"`
	Round             int       `json:"round"`
	PendingToolCallID string    `json:"pending_tool_call_id,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Store persists and reloads checkpoint State by checkpoint id, per spec §6's
// `checkpoints(checkpoint_id TEXT PRIMARY KEY, state TEXT NOT NULL, updated_at
// TIMESTAMP DEFAULT CURRENT_TIMESTAMP)` schema.
type Store interface {
	Save(ctx context.Context, checkpointID string, state State) error
	Load(ctx context.Context, checkpointID string) (State, error)
	Delete(ctx context.Context, checkpointID string) error
}

func marshalState(state State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("checkpoint: marshal state: %w", err)
	}
	return string(data), nil
}

func unmarshalState(raw string) (State, error) {
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, fmt.Errorf("checkpoint: unmarshal state: %w", err)
	}
	return state, nil
}
