//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package mcp implements the MCP tool kind: each call dials the
// configured remote tool-server fresh, forwards the request, and closes
// the connection once a result (or error) comes back. There is no
// persistent session held between calls — a single ToolSet can be shared
// across concurrent agent runs without any connection-lifecycle
// coordination.
package mcp

import (
	"context"
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// toolSetOptions collects ToolSet construction options.
type toolSetOptions struct {
	filter        ToolFilter
	clientOptions []mcp.ClientOption
}

// Option configures a ToolSet.
type Option func(*toolSetOptions)

// WithFilter narrows the tools a ToolSet exposes to those ToolFilter keeps.
func WithFilter(filter ToolFilter) Option {
	return func(o *toolSetOptions) { o.filter = filter }
}

// WithClientOptions passes additional trpc-mcp-go client options (beyond
// the headers ServerConfig.Headers already derives) to every dial.
func WithClientOptions(opts ...mcp.ClientOption) Option {
	return func(o *toolSetOptions) { o.clientOptions = append(o.clientOptions, opts...) }
}

// ToolSet advertises the tools one MCP server exposes and dispatches calls
// to them. Tools refreshes the list on every call (dialing the server
// again); Close is a no-op since no connection is held open between calls.
type ToolSet struct {
	server  ServerConfig
	filter  ToolFilter
	options []mcp.ClientOption

	mu    sync.RWMutex
	tools []tool.Tool
}

// NewToolSet builds a ToolSet bound to one MCP server.
func NewToolSet(server ServerConfig, opts ...Option) *ToolSet {
	if server.ClientInfo.Name == "" {
		server.ClientInfo = defaultClientInfo
	}

	cfg := toolSetOptions{filter: NoFilter}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &ToolSet{
		server:  server,
		filter:  cfg.filter,
		options: cfg.clientOptions,
	}
}

// Tools implements tool.ToolSet. A failed refresh falls back to the last
// successfully listed set rather than returning an empty tool list to the
// agent mid-run.
func (ts *ToolSet) Tools(ctx context.Context) []tool.Tool {
	tools, err := ts.listTools(ctx)
	if err != nil {
		log.Warnf("mcp: refresh tools from %s: %v", ts.server.ServerURL, err)
		ts.mu.RLock()
		defer ts.mu.RUnlock()
		return ts.tools
	}

	ts.mu.Lock()
	ts.tools = tools
	ts.mu.Unlock()
	return tools
}

// Close implements tool.ToolSet. There is no persistent connection to
// release under the per-call dial model, so this is intentionally a no-op.
func (ts *ToolSet) Close() error {
	return nil
}

// listTools dials the server, lists its tools, and wraps each one that
// survives the configured filter into a callable tool.Tool.
func (ts *ToolSet) listTools(ctx context.Context) ([]tool.Tool, error) {
	client, err := dialServer(ctx, ts.server, ts.options)
	if err != nil {
		return nil, fmt.Errorf("mcp: connect to %s: %w", ts.server.ServerURL, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warnf("mcp: close connection to %s: %v", ts.server.ServerURL, err)
		}
	}()

	listCtx, cancel := withTimeout(ctx, ts.server.Timeout)
	defer cancel()
	resp, err := client.ListTools(listCtx, &mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp: list tools on %s: %w", ts.server.ServerURL, err)
	}

	filter := ts.filter
	if filter == nil {
		filter = NoFilter
	}
	infos := make([]ToolInfo, len(resp.Tools))
	for i, t := range resp.Tools {
		infos[i] = ToolInfo{Name: t.Name, Description: t.Description}
	}
	allowed := make(map[string]bool, len(infos))
	for _, info := range filter.Filter(ctx, infos) {
		allowed[info.Name] = true
	}

	tools := make([]tool.Tool, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		if !allowed[t.Name] {
			continue
		}
		tools = append(tools, newRemoteTool(t, ts.server, ts.options))
	}
	return tools, nil
}
