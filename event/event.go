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

// Package event provides the event system carried between a Runner, its
// orchestrator, and the client: every AgentResponse a step loop produces is
// wrapped into an Event tagged with the task that produced it.
package event

import (
	"time"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

// Type distinguishes the kind of event flowing across a Runner boundary.
type Type string

// Event types.
const (
	TypeRequest          Type = "request"
	TypeResponse         Type = "response"
	TypeError            Type = "error"
	TypeSignal           Type = "signal"
	TypeClientToolCall   Type = "client_tool_call"
	TypeClientToolResult Type = "client_tool_result"
)

// Event represents an event in conversation between agents and users.
type Event struct {
	// Response is the base struct for all LLM response functionality.
	*model.Response

	// InvocationID is the invocation ID of the event.
	InvocationID string `json:"invocationId"`

	// Author is the author of the event.
	Author string `json:"author"`

	// ID is the unique identifier of the event.
	ID string `json:"id"`

	// Timestamp is the timestamp of the event.
	Timestamp time.Time `json:"timestamp"`

	// Branch is the branch identifier for hierarchical event filtering.
	Branch string `json:"branch,omitempty"`

	// TaskID is the id of the runner task that produced this event.
	TaskID string `json:"taskId,omitempty"`

	// ParentTaskID is the id of the task that spawned TaskID, empty for the
	// root task.
	ParentTaskID string `json:"parentTaskId,omitempty"`

	// RootTaskID is the id of the task at the root of the tree TaskID
	// belongs to.
	RootTaskID string `json:"rootTaskId,omitempty"`

	// Type classifies the event for orchestrator routing.
	Type Type `json:"type,omitempty"`

	// RequiresCompletion indicates if this event needs completion signaling.
	RequiresCompletion bool `json:"requiresCompletion,omitempty"`

	// CompletionID is used for completion signaling of this event.
	CompletionID string `json:"completionId,omitempty"`

	// LongRunningToolIDs is the set of ids of the long running function
	// calls. Agent client will know from this field about which function
	// call is long running. Only valid for function call events.
	LongRunningToolIDs map[string]struct{} `json:"longRunningToolIDs,omitempty"`
}

// Option is a function that can be used to configure the Event.
type Option func(*Event)

// New creates a new Event with generated ID and timestamp.
func New(invocationID, author string, opts ...Option) *Event {
	e := &Event{
		Response:     &model.Response{},
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		InvocationID: invocationID,
		Author:       author,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewErrorEvent creates a new error Event with the specified error details.
func NewErrorEvent(invocationID, author, errorType, errorMessage string, opts ...Option) *Event {
	e := &Event{
		Response: &model.Response{
			Object: model.ObjectTypeError,
			Done:   true,
			Error: &model.ResponseError{
				Type:    errorType,
				Message: errorMessage,
			},
		},
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		InvocationID: invocationID,
		Author:       author,
		Type:         TypeError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewResponseEvent creates a new Event from a model Response.
func NewResponseEvent(invocationID, author string, response *model.Response, opts ...Option) *Event {
	e := &Event{
		Response:     response,
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		InvocationID: invocationID,
		Author:       author,
		Type:         TypeResponse,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clone returns a copy of e with its own Response struct and
// LongRunningToolIDs map, so a caller may hand an Event to multiple
// consumers (e.g. the orchestrator and the client transport) and let one
// reassign top-level fields without affecting the other. Slices and pointers
// inside Response (Choices, Usage, Error, ...) are shared, not copied.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Response != nil {
		respCopy := *e.Response
		clone.Response = &respCopy
	}
	if e.LongRunningToolIDs != nil {
		clone.LongRunningToolIDs = make(map[string]struct{}, len(e.LongRunningToolIDs))
		for k, v := range e.LongRunningToolIDs {
			clone.LongRunningToolIDs[k] = v
		}
	}
	return &clone
}

// IsRunnerCompletion reports whether this event is the terminal
// runner-completion marker, distinct from the agent's own final response.
func (e *Event) IsRunnerCompletion() bool {
	if e == nil || e.Response == nil {
		return false
	}
	return e.Done && e.Object == model.ObjectTypeRunnerCompletion
}
