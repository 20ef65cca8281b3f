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
	"fmt"
	"net/http"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// defaultClientInfo identifies this process to an MCP server when a
// ServerConfig doesn't supply its own.
var defaultClientInfo = mcp.Implementation{
	Name:    "trpc-agentrt-go",
	Version: "1.0.0",
}

// dialServer opens a fresh connection to one MCP server and runs the
// Initialize handshake. The caller owns the returned connector and must
// Close it once the call it was opened for is done; there is no session
// kept alive across calls.
func dialServer(ctx context.Context, cfg ServerConfig, opts []mcp.ClientOption) (mcp.Connector, error) {
	transportType, err := validateTransport(cfg.Transport)
	if err != nil {
		return nil, err
	}

	clientInfo := cfg.ClientInfo
	if clientInfo.Name == "" {
		clientInfo = defaultClientInfo
	}

	client, err := newClient(transportType, cfg, clientInfo, opts)
	if err != nil {
		return nil, fmt.Errorf("mcp: create client: %w", err)
	}

	initCtx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()
	if _, err := client.Initialize(initCtx, &mcp.InitializeRequest{}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("mcp: initialize session: %w", err)
	}

	return client, nil
}

// newClient constructs the transport-specific MCP client.
func newClient(t transport, cfg ServerConfig, clientInfo mcp.Implementation, opts []mcp.ClientOption) (mcp.Connector, error) {
	switch t {
	case transportStdio:
		return mcp.NewStdioClient(mcp.StdioTransportConfig{
			ServerParams: mcp.StdioServerParameters{
				Command: cfg.Command,
				Args:    cfg.Args,
			},
			Timeout: cfg.Timeout,
		}, clientInfo)

	case transportSSE:
		return mcp.NewSSEClient(cfg.ServerURL, clientInfo, withHeaders(cfg.Headers, opts)...)

	case transportStreamable:
		return mcp.NewClient(cfg.ServerURL, clientInfo, withHeaders(cfg.Headers, opts)...)

	default:
		return nil, fmt.Errorf("mcp: unsupported transport %q", t)
	}
}

// withHeaders prepends an HTTP-headers client option built from headers, if
// any were configured, to opts.
func withHeaders(headers map[string]string, opts []mcp.ClientOption) []mcp.ClientOption {
	if len(headers) == 0 {
		return opts
	}
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return append([]mcp.ClientOption{mcp.WithHTTPHeaders(h)}, opts...)
}

// withTimeout bounds ctx by timeout unless ctx already carries a deadline
// or timeout is unset.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
