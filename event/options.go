//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package event

import (
	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

// WithBranch sets the branch for the event.
func WithBranch(branch string) Option {
	return func(e *Event) {
		e.Branch = branch
	}
}

// WithResponse sets the response for the event.
func WithResponse(response *model.Response) Option {
	return func(e *Event) {
		e.Response = response
	}
}

// WithObject sets the object for the event.
func WithObject(o string) Option {
	return func(e *Event) {
		e.Object = o
	}
}

// WithTaskID sets the task id for the event.
func WithTaskID(id string) Option {
	return func(e *Event) {
		e.TaskID = id
	}
}

// WithParentTaskID sets the parent task id for the event.
func WithParentTaskID(id string) Option {
	return func(e *Event) {
		e.ParentTaskID = id
	}
}

// WithRootTaskID sets the root task id for the event.
func WithRootTaskID(id string) Option {
	return func(e *Event) {
		e.RootTaskID = id
	}
}

// WithType sets the event type.
func WithType(t Type) Option {
	return func(e *Event) {
		e.Type = t
	}
}
