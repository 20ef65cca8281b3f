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
	"encoding/json"

	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

// convertMCPSchemaToSchema converts an MCP tool's JSON-Schema-shaped input
// schema (any, since the wire library types it loosely) into a tool.Schema.
// A schema that fails to round-trip through JSON falls back to a bare
// object schema rather than propagating an error up through tool
// construction.
func convertMCPSchemaToSchema(mcpSchema any) *tool.Schema {
	raw, err := json.Marshal(mcpSchema)
	if err != nil {
		return &tool.Schema{Type: "object"}
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &tool.Schema{Type: "object"}
	}

	schema := &tool.Schema{}
	if v, ok := fields["type"].(string); ok {
		schema.Type = tool.SchemaType(v)
	}
	if v, ok := fields["description"].(string); ok {
		schema.Description = v
	}
	if v, ok := fields["properties"].(map[string]any); ok {
		schema.Properties = convertProperties(v)
	}
	if v, ok := fields["required"].([]any); ok {
		schema.Required = stringSlice(v)
	}
	return schema
}

// convertProperties recursively converts an MCP properties map into the
// tool.Schema property shape.
func convertProperties(props map[string]any) map[string]*tool.Schema {
	if props == nil {
		return nil
	}

	result := make(map[string]*tool.Schema, len(props))
	for name, raw := range props {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		prop := &tool.Schema{}
		if v, ok := fields["type"].(string); ok {
			prop.Type = tool.SchemaType(v)
		}
		if v, ok := fields["description"].(string); ok {
			prop.Description = v
		}
		if v, ok := fields["default"]; ok {
			prop.Default = v
		}
		if v, ok := fields["enum"].([]any); ok {
			prop.Enum = v
		}
		if v, ok := fields["properties"].(map[string]any); ok {
			prop.Properties = convertProperties(v)
		}
		if v, ok := fields["required"].([]any); ok {
			prop.Required = stringSlice(v)
		}
		if v, ok := fields["items"].(map[string]any); ok {
			prop.Items = convertMCPSchemaToSchema(v)
		}
		if v, ok := fields["format"].(string); ok {
			prop.Format = v
		}
		result[name] = prop
	}
	return result
}

func stringSlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
