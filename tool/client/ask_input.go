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

// Package client provides Kind-Client tools: calling one never executes
// in-process, it fires a CLIENT_TOOL_CALL and blocks on the Channel bound
// to the calling context until a human or external system supplies the
// result through a CLIENT_TOOL_RESULT.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-agentrt-go/channel"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

const defaultAskInputTimeout = 5 * time.Minute

// AskInputTool is the pre-registered "ask_input" client tool: a named,
// first-class way for an agent to request free-form input from whoever is
// on the other end of the transport, as opposed to a general Kind-Client
// tool built ad hoc per deployment.
type AskInputTool struct {
	timeout     time.Duration
	inputSchema *tool.Schema
}

// Option configures an AskInputTool.
type Option func(*AskInputTool)

// WithTimeout bounds how long Call waits for a reply before returning
// channel.ErrTimeout. Defaults to 5 minutes, matching the wait a human
// typing a reply can reasonably need.
func WithTimeout(d time.Duration) Option {
	return func(t *AskInputTool) { t.timeout = d }
}

// NewAskInputTool builds the ask_input tool.
func NewAskInputTool(opts ...Option) *AskInputTool {
	t := &AskInputTool{
		timeout: defaultAskInputTimeout,
		inputSchema: &tool.Schema{
			Type:        tool.TypeObject,
			Description: "Ask the user for input",
			Properties: map[string]*tool.Schema{
				"prompt": {
					Type:        tool.TypeString,
					Description: "Prompt message to show the user, explaining what they need to do (confirm, modify, provide information, etc.)",
				},
				"context": {
					Type:        tool.TypeString,
					Description: "Context to help the user understand the current situation, such as the current plan or the items needing confirmation",
				},
			},
			Required: []string{"prompt"},
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Declaration implements tool.Tool.
func (t *AskInputTool) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        "ask_input",
		Description: "Ask the user for input. Used for scenarios requiring user interaction such as obtaining feedback, confirmation, or modification suggestions.",
		InputSchema: t.inputSchema,
		Kind:        tool.KindClient,
	}
}

// Call implements tool.CallableTool by relaying prompt/context through the
// Channel bound to ctx and blocking for the reply.
func (t *AskInputTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	ch, onSend, ok := channel.FromContext(ctx)
	if !ok {
		return nil, errors.New("ask_input: no channel bound to context; must be dispatched through a Runner")
	}

	callID, _ := tool.CallIDFromContext(ctx)

	var params map[string]any
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &params); err != nil {
			return nil, fmt.Errorf("ask_input: unmarshal arguments: %w", err)
		}
	}
	if _, ok := params["prompt"]; !ok {
		return nil, errors.New("ask_input: missing required argument \"prompt\"")
	}

	_, data, err := ch.SendRequest(ctx, "ask_input", params, t.inputSchema, callID, t.timeout, onSend)
	if err != nil {
		return nil, fmt.Errorf("ask_input: %w", err)
	}
	return data, nil
}
