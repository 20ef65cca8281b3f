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

// Package agent wraps an agent.Agent as a Kind-Agent tool: calling it does
// not run the target agent in-process, it fires a CLIENT_TOOL_CALL and
// blocks on the Channel bound to the calling context until the orchestrator
// spawns a child runner for the named agent and relays its result back.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	agentpkg "trpc.group/trpc-go/trpc-agentrt-go/agent"
	"trpc.group/trpc-go/trpc-agentrt-go/channel"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

const defaultCallTimeout = 5 * time.Minute

// Tool wraps an agent as a Kind-Agent tool. Its own Call never executes the
// target agent directly; it delegates to whatever Channel is bound to the
// call's context, per the orchestrator's child-runner dispatch contract.
type Tool struct {
	name        string
	description string
	inputSchema *tool.Schema
	timeout     time.Duration
}

// Option configures a Tool.
type Option func(*Tool)

// WithTimeout bounds how long Call waits for the child agent's result
// before returning channel.ErrTimeout. Defaults to 5 minutes.
func WithTimeout(d time.Duration) Option {
	return func(t *Tool) { t.timeout = d }
}

// NewTool wraps a as a callable Kind-Agent tool. Its declared name and
// description are the target agent's own Info, so the caller model decides
// when to hand off based on the same description a user would read.
func NewTool(a agentpkg.Agent, opts ...Option) *Tool {
	info := a.Info()
	t := &Tool{
		name:        info.Name,
		description: info.Description,
		timeout:     defaultCallTimeout,
		inputSchema: &tool.Schema{
			Type:        tool.TypeObject,
			Description: "Input for the " + info.Name + " agent",
			Properties: map[string]*tool.Schema{
				"content": {
					Type:        tool.TypeString,
					Description: "A single user message to send to the agent",
				},
				"messages": {
					Type:        tool.TypeArray,
					Description: "A full conversation to seed the agent with, as an alternative to content",
					Items: &tool.Schema{
						Type: tool.TypeObject,
						Properties: map[string]*tool.Schema{
							"role":    {Type: tool.TypeString},
							"content": {Type: tool.TypeString},
						},
					},
				},
			},
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Declaration implements tool.Tool.
func (t *Tool) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.inputSchema,
		Kind:        tool.KindAgent,
	}
}

// Call implements tool.CallableTool by requesting the orchestrator spawn a
// child runner for this agent and blocking until the result is relayed
// back through the Channel bound to ctx.
func (t *Tool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	ch, onSend, ok := channel.FromContext(ctx)
	if !ok {
		return nil, errors.New("agent tool: no channel bound to context; must be dispatched through a Runner")
	}

	callID, _ := tool.CallIDFromContext(ctx)

	var params map[string]any
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &params); err != nil {
			return nil, fmt.Errorf("agent tool: unmarshal arguments: %w", err)
		}
	}

	_, data, err := ch.SendRequest(ctx, t.name, params, t.inputSchema, callID, t.timeout, onSend)
	if err != nil {
		return nil, fmt.Errorf("agent tool: %w", err)
	}
	return data, nil
}

// ParseMessages accepts either {"messages":[{role,content},...]} or
// {"content":"..."} and returns the seed messages a child runner's REQUEST
// event should carry, per the orchestrator's child-dispatch contract.
func ParseMessages(jsonArgs []byte) ([]model.Message, error) {
	var withMessages struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(jsonArgs, &withMessages); err == nil && len(withMessages.Messages) > 0 {
		msgs := make([]model.Message, 0, len(withMessages.Messages))
		for _, m := range withMessages.Messages {
			role := model.Role(m.Role)
			if role == "" {
				role = model.RoleUser
			}
			msgs = append(msgs, model.Message{Role: role, Content: m.Content})
		}
		return msgs, nil
	}

	var withContent struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(jsonArgs, &withContent); err != nil {
		return nil, fmt.Errorf("agent tool: parse messages: %w", err)
	}
	return []model.Message{model.NewUserMessage(withContent.Content)}, nil
}
