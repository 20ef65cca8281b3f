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

// Package tool provides interfaces and implementations for tools that agents can use.
package tool

import "context"

// Kind tags what the step loop must do to dispatch a call: invoke it
// in-process (Function, MCP) or route it out-of-band through a Channel
// (Client, Agent).
type Kind string

// Tool kinds. KindFunction is the zero value so in-process tools (the
// overwhelming majority) need not set it explicitly.
const (
	KindFunction Kind = ""
	KindMCP      Kind = "mcp"
	KindClient   Kind = "client"
	KindAgent    Kind = "agent"
)

// Declaration describes a tool's calling convention: its name, a natural
// language description the model uses to decide when to invoke it, the
// JSON Schema of its input/output, and its dispatch Kind. Declaration is
// the unit the step loop hands to the model adapter and the unit every
// tool kind (function, MCP, client, agent) must produce.
type Declaration struct {
	// Name is the tool's unique name within an agent's tool set.
	Name string

	// Description is shown to the model so it can decide whether and how
	// to call the tool.
	Description string

	// InputSchema describes the JSON object the tool accepts.
	InputSchema *Schema

	// OutputSchema describes the JSON the tool returns. Nil means
	// unstructured (a plain string or arbitrary JSON value).
	OutputSchema *Schema

	// Kind tells the step loop how to dispatch a call to this tool.
	Kind Kind
}

// Tool is the umbrella interface every tool kind satisfies: it can always
// describe itself. Agents advertise their tool set as []Tool and narrow to
// CallableTool or StreamableTool via type assertion at dispatch time.
type Tool interface {
	// Declaration returns the tool's calling convention.
	Declaration() *Declaration
}

// CallableTool is a tool that can be invoked once and returns a single
// result. Most function tools, MCP tools, client tools and the agent tool
// implement this interface.
type CallableTool interface {
	Tool

	// Call invokes the tool with JSON-encoded arguments and returns its
	// result (any JSON-marshalable value) or an error.
	Call(ctx context.Context, jsonArgs []byte) (any, error)
}

// StreamableTool is a tool whose result arrives as a sequence of chunks
// rather than a single value. The step loop drains the returned
// StreamReader and merges the chunks into one tool-result message before
// continuing the loop.
type StreamableTool interface {
	Tool

	// StreamableCall invokes the tool and returns a reader over its
	// streamed output chunks.
	StreamableCall(ctx context.Context, jsonArgs []byte) (*StreamReader, error)
}

// Merge combines the Content of a sequence of StreamChunk values produced
// by a StreamableTool into the single value a CallableTool would have
// returned. Chunks whose Content is a string are concatenated; any other
// chunk type is kept as the last non-nil value seen.
func Merge(chunks []StreamChunk) any {
	var text string
	var last any
	sawText := false
	for _, c := range chunks {
		if s, ok := c.Content.(string); ok {
			text += s
			sawText = true
			continue
		}
		if c.Content != nil {
			last = c.Content
		}
	}
	if sawText {
		return text
	}
	return last
}
