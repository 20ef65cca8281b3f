//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// remoteTool wraps one tool a remote MCP server advertised. Call dials the
// server fresh, forwards the call, and closes the connection: no state
// survives between calls, so a remoteTool is safe to hand out to many
// concurrent agent runs.
type remoteTool struct {
	name        string
	description string
	inputSchema *tool.Schema

	server  ServerConfig
	options []mcp.ClientOption
}

// newRemoteTool wraps one entry from a ListTools response.
func newRemoteTool(t mcp.Tool, server ServerConfig, options []mcp.ClientOption) *remoteTool {
	rt := &remoteTool{
		name:        t.Name,
		description: t.Description,
		server:      server,
		options:     options,
	}
	if t.InputSchema != nil {
		rt.inputSchema = convertMCPSchemaToSchema(t.InputSchema)
	}
	return rt
}

// Declaration implements tool.Tool.
func (t *remoteTool) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.inputSchema,
		Kind:        tool.KindMCP,
	}
}

// Call implements tool.CallableTool: dial, forward, close.
func (t *remoteTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var arguments map[string]any
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &arguments); err != nil {
			return nil, fmt.Errorf("mcp: parse arguments for %s: %w", t.name, err)
		}
	} else {
		arguments = make(map[string]any)
	}

	client, err := dialServer(ctx, t.server, t.options)
	if err != nil {
		return nil, fmt.Errorf("mcp: call %s: %w", t.name, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warnf("mcp: close connection after calling %s: %v", t.name, err)
		}
	}()

	req := &mcp.CallToolRequest{}
	req.Params.Name = t.name
	req.Params.Arguments = arguments

	callCtx, cancel := withTimeout(ctx, t.server.Timeout)
	defer cancel()

	resp, err := client.CallTool(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("mcp: call %s: %w", t.name, err)
	}
	return resp.Content, nil
}
