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
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

func TestConvertMCPSchema_Basic(t *testing.T) {
	raw := map[string]any{
		"type":        "object",
		"description": "a location query",
		"required":    []any{"city"},
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "city name",
			},
			"days": map[string]any{
				"type":    "integer",
				"default": float64(3),
			},
		},
	}

	got := convertMCPSchemaToSchema(raw)
	require.Equal(t, tool.TypeObject, got.Type)
	require.Equal(t, "a location query", got.Description)
	require.Equal(t, []string{"city"}, got.Required)
	require.Len(t, got.Properties, 2)
	require.Equal(t, tool.TypeString, got.Properties["city"].Type)
	require.Equal(t, "city name", got.Properties["city"].Description)
	require.Equal(t, float64(3), got.Properties["days"].Default)
}

func TestConvertProperties_Nil(t *testing.T) {
	require.Nil(t, convertProperties(nil))
}

func TestConvertMCPSchema_InvalidJSON(t *testing.T) {
	// A value json.Marshal can't handle (a channel) should fall back to a
	// bare object schema rather than panicking.
	got := convertMCPSchemaToSchema(make(chan int))
	require.Equal(t, tool.TypeObject, got.Type)
}

func TestConvertProperties_NestedItems(t *testing.T) {
	props := map[string]any{
		"tags": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "string",
			},
		},
	}
	got := convertProperties(props)
	require.Equal(t, tool.TypeArray, got["tags"].Type)
	require.NotNil(t, got["tags"].Items)
	require.Equal(t, tool.TypeString, got["tags"].Items.Type)
}
