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

package mcp

import (
	"fmt"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// transport is the wire protocol used to reach an MCP server.
type transport string

const (
	transportStdio      transport = "stdio"
	transportSSE        transport = "sse"
	transportStreamable transport = "streamable"
)

// ServerConfig describes how to reach one MCP server: the transport to
// dial it over plus that transport's own connection details.
type ServerConfig struct {
	// Transport selects the wire protocol: "stdio", "sse", "streamable" (or
	// the "streamable_http" alias).
	Transport string `json:"transport"`

	// ServerURL/Headers apply to the sse and streamable transports.
	ServerURL string            `json:"server_url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`

	// Command/Args apply to the stdio transport.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`

	// Timeout bounds every dial, list, and call against this server. Zero
	// means no timeout beyond whatever the caller's context already carries.
	Timeout time.Duration `json:"timeout,omitempty"`

	// ClientInfo identifies this process to the server during Initialize.
	// Defaults to defaultClientInfo when the Name field is empty.
	ClientInfo mcp.Implementation `json:"client_info,omitempty"`
}

// validateTransport validates the transport string and returns the internal
// transport type.
func validateTransport(t string) (transport, error) {
	switch t {
	case "stdio":
		return transportStdio, nil
	case "sse":
		return transportSSE, nil
	case "streamable", "streamable_http":
		return transportStreamable, nil
	default:
		return "", fmt.Errorf("mcp: unsupported transport %q, supported: stdio, sse, streamable", t)
	}
}
