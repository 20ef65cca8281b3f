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

package agent

import (
	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

// TransferInfo contains information about a pending agent transfer.
type TransferInfo struct {
	// TargetAgentName is the name of the agent to transfer control to.
	TargetAgentName string
	// Message is the message to send to the target agent.
	Message string
	// EndInvocation indicates whether to end the current invocation after transfer.
	EndInvocation bool
}

// RunOptions holds caller-supplied options carried on an Invocation.
type RunOptions struct {
	// Messages are extra seed messages supplied by a caller, e.g. few-shot
	// examples. They are stored on the Invocation only; no package in this
	// module reads them when building model input.
	Messages []model.Message
}

// RunOption configures a RunOptions value.
type RunOption func(*RunOptions)

// WithMessages sets the seed messages on a RunOptions value.
func WithMessages(msgs []model.Message) RunOption {
	return func(ro *RunOptions) {
		ro.Messages = msgs
	}
}

// Invocation represents the context for a single Runner task.
type Invocation struct {
	// Agent is the agent that is being invoked.
	Agent Agent
	// AgentName is the name of the agent that is being invoked.
	AgentName string
	// InvocationID is the ID of the invocation.
	InvocationID string
	// Branch is the branch identifier for hierarchical event filtering.
	Branch string
	// EndInvocation is a flag that indicates if the invocation is complete.
	EndInvocation bool
	// Model is the model that is being used for the invocation.
	Model model.Model
	// Message is the message that is being sent to the agent.
	Message model.Message
	// RunOptions holds caller-supplied options for this invocation.
	RunOptions RunOptions
	// TransferInfo contains information about a pending agent transfer.
	TransferInfo *TransferInfo
	// AgentCallbacks contains callbacks for agent operations.
	AgentCallbacks *AgentCallbacks
	// ModelCallbacks contains callbacks for model operations.
	ModelCallbacks *model.ModelCallbacks
	// ToolCallbacks contains callbacks for tool operations.
	ToolCallbacks *tool.Callbacks
}

// InvocationOptions configures an Invocation.
type InvocationOptions func(*Invocation)

// NewInvocation creates an Invocation with a generated InvocationID, applying opts.
func NewInvocation(opts ...InvocationOptions) *Invocation {
	inv := &Invocation{InvocationID: uuid.NewString()}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Clone returns a shallow copy of inv with a freshly generated InvocationID,
// then applies opts. Used to derive a child invocation for a sub-agent call
// while preserving the parent's callbacks and run options.
func (inv *Invocation) Clone(opts ...InvocationOptions) *Invocation {
	clone := *inv
	clone.InvocationID = uuid.NewString()
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// WithInvocationID sets the invocation id.
func WithInvocationID(id string) InvocationOptions {
	return func(inv *Invocation) {
		inv.InvocationID = id
	}
}

// WithInvocationAgent sets the agent and derives AgentName from it.
func WithInvocationAgent(a Agent) InvocationOptions {
	return func(inv *Invocation) {
		inv.Agent = a
		inv.AgentName = a.Info().Name
	}
}

// WithInvocationBranch sets the branch.
func WithInvocationBranch(branch string) InvocationOptions {
	return func(inv *Invocation) {
		inv.Branch = branch
	}
}

// WithInvocationEndInvocation sets EndInvocation.
func WithInvocationEndInvocation(end bool) InvocationOptions {
	return func(inv *Invocation) {
		inv.EndInvocation = end
	}
}

// WithInvocationModel sets the model.
func WithInvocationModel(m model.Model) InvocationOptions {
	return func(inv *Invocation) {
		inv.Model = m
	}
}

// WithInvocationMessage sets the message.
func WithInvocationMessage(message model.Message) InvocationOptions {
	return func(inv *Invocation) {
		inv.Message = message
	}
}

// WithInvocationRunOptions sets the run options.
func WithInvocationRunOptions(runOptions RunOptions) InvocationOptions {
	return func(inv *Invocation) {
		inv.RunOptions = runOptions
	}
}

// WithInvocationTransferInfo sets the transfer info.
func WithInvocationTransferInfo(transferInfo *TransferInfo) InvocationOptions {
	return func(inv *Invocation) {
		inv.TransferInfo = transferInfo
	}
}
