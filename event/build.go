//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package event

import "trpc.group/trpc-go/trpc-agentrt-go/model"

// NewRequestEvent builds a TypeRequest event carrying messages for a
// Runner's Send to route into its step loop's input.
func NewRequestEvent(invocationID, author string, messages []model.Message, opts ...Option) *Event {
	e := New(invocationID, author, opts...)
	e.Type = TypeRequest
	e.Choices = choicesFromMessages(messages)
	return e
}

// NewClientToolCallEvent builds a TypeClientToolCall event describing an
// outbound tool call a Runner needs relayed upward (to the orchestrator, or
// to a transport for a human-in-the-loop reply).
func NewClientToolCallEvent(invocationID, author string, call model.ToolCall, opts ...Option) *Event {
	e := New(invocationID, author, opts...)
	e.Type = TypeClientToolCall
	e.Choices = []model.Choice{{Message: model.Message{
		Role:      model.RoleAssistant,
		ToolCalls: []model.ToolCall{call},
	}}}
	return e
}

// NewClientToolResultEvent builds a TypeClientToolResult event carrying the
// result of a Client- or Agent-kind tool call, addressed back to the call
// that requested it by toolCallID.
func NewClientToolResultEvent(invocationID, author, toolCallID, toolName, content string, opts ...Option) *Event {
	e := New(invocationID, author, opts...)
	e.Type = TypeClientToolResult
	e.Choices = []model.Choice{{Message: model.NewToolMessage(toolCallID, toolName, content)}}
	return e
}

// Messages extracts the messages carried in Choices, in order.
func (e *Event) Messages() []model.Message {
	if e == nil || e.Response == nil {
		return nil
	}
	msgs := make([]model.Message, len(e.Choices))
	for i, c := range e.Choices {
		msgs[i] = c.Message
	}
	return msgs
}

// ToolCall extracts the first tool call carried by a TypeClientToolCall
// event, if any.
func (e *Event) ToolCall() (model.ToolCall, bool) {
	if e == nil || e.Response == nil || len(e.Choices) == 0 {
		return model.ToolCall{}, false
	}
	calls := e.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return model.ToolCall{}, false
	}
	return calls[0], true
}

func choicesFromMessages(messages []model.Message) []model.Choice {
	choices := make([]model.Choice, len(messages))
	for i, m := range messages {
		choices[i] = model.Choice{Index: i, Message: m}
	}
	return choices
}
