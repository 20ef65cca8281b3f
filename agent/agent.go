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

// Package agent provides the core agent functionality.
package agent

import (
	"context"
	"errors"

	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

// Info contains basic information about an agent.
type Info struct {
	Name        string
	Description string
}

// Agent is what a Runner needs to drive one task's step loop: a model, a
// tool set, a system prompt, and the round/concurrency limits that bound
// it. It deliberately has no Run method and no sub-agent hierarchy — an
// agent that wants to call another agent does so through the tool/agent
// AgentTool, dispatched like any other tool call.
type Agent interface {
	// Info returns the basic information about this agent.
	Info() Info

	// Tools returns the tools this agent has access to.
	Tools() []tool.Tool

	// Model returns the model adapter this agent calls.
	Model() model.Model

	// Instruction builds the system prompt for invocation inv. Called once
	// per Runner initialization, not once per round.
	Instruction(ctx context.Context, inv *Invocation) (string, error)

	// GenerationConfig is merged into every model.Request this agent issues.
	GenerationConfig() model.GenerationConfig

	// MaxSteps bounds the number of ReAct rounds.
	MaxSteps() int

	// ToolConcurrency bounds how many tool calls within one turn run at once.
	ToolConcurrency() int

	// Callbacks returns the agent-level before/after hooks, or nil.
	Callbacks() *AgentCallbacks

	// ExtraConfig returns agent-specific configuration overrides, e.g.
	// final_answer_context_{upper,lower}_limit / _threshold (§6's context
	// limit precedence chain). Nil when the agent sets none.
	ExtraConfig() map[string]any
}

// StopError signals that the agent requested execution stop deliberately,
// as opposed to an error escaping from the model or a tool.
type StopError struct {
	Message string
}

// Error implements the error interface.
func (e *StopError) Error() string {
	return e.Message
}

// NewStopError creates a StopError with the given message.
func NewStopError(message string) *StopError {
	return &StopError{Message: message}
}

// AsStopError reports whether err is, or wraps, a *StopError.
func AsStopError(err error) (*StopError, bool) {
	var stopErr *StopError
	if errors.As(err, &stopErr) {
		return stopErr, true
	}
	return nil, false
}
