//
// Tencent is pleased to support the open source community by making tRPC available.
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
	"context"
	"regexp"
)

// filterMode selects whether a filter keeps or drops its matches.
type filterMode string

const (
	// FilterModeInclude keeps only matching tools.
	FilterModeInclude filterMode = "include"
	// FilterModeExclude drops matching tools.
	FilterModeExclude filterMode = "exclude"
)

// ToolInfo is the name/description pair a ToolFilter decides over, ahead of
// a server's tools being wrapped into callable tool.Tool values.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolFilter narrows the tools a ToolSet exposes from everything one MCP
// server advertises.
type ToolFilter interface {
	Filter(ctx context.Context, tools []ToolInfo) []ToolInfo
}

// ToolFilterFunc adapts a plain function to ToolFilter.
type ToolFilterFunc func(ctx context.Context, tools []ToolInfo) []ToolInfo

// Filter implements ToolFilter.
func (f ToolFilterFunc) Filter(ctx context.Context, tools []ToolInfo) []ToolInfo {
	return f(ctx, tools)
}

// NoFilter exposes every tool a server advertises, unfiltered.
var NoFilter ToolFilter = ToolFilterFunc(func(_ context.Context, tools []ToolInfo) []ToolInfo {
	return tools
})

// ToolNameFilter keeps or drops tools by exact name membership in Names.
type ToolNameFilter struct {
	Names []string
	Mode  filterMode
}

// Filter implements ToolFilter.
func (f *ToolNameFilter) Filter(_ context.Context, tools []ToolInfo) []ToolInfo {
	if len(f.Names) == 0 {
		return tools
	}

	named := make(map[string]bool, len(f.Names))
	for _, name := range f.Names {
		named[name] = true
	}

	var kept []ToolInfo
	for _, t := range tools {
		if named[t.Name] == (f.Mode != FilterModeExclude) {
			kept = append(kept, t)
		}
	}
	return kept
}

// PatternFilter keeps or drops tools whose name or description matches any
// of NamePatterns/DescriptionPatterns (regexp).
type PatternFilter struct {
	NamePatterns        []string
	DescriptionPatterns []string
	Mode                filterMode
}

// Filter implements ToolFilter.
func (f *PatternFilter) Filter(_ context.Context, tools []ToolInfo) []ToolInfo {
	if len(f.NamePatterns) == 0 && len(f.DescriptionPatterns) == 0 {
		return tools
	}

	var kept []ToolInfo
	for _, t := range tools {
		if f.matches(t) == (f.Mode != FilterModeExclude) {
			kept = append(kept, t)
		}
	}
	return kept
}

func (f *PatternFilter) matches(t ToolInfo) bool {
	for _, pattern := range f.NamePatterns {
		if matched, _ := regexp.MatchString(pattern, t.Name); matched {
			return true
		}
	}
	for _, pattern := range f.DescriptionPatterns {
		if matched, _ := regexp.MatchString(pattern, t.Description); matched {
			return true
		}
	}
	return false
}

// CompositeFilter chains multiple filters, each narrowing the previous
// one's output (logical AND).
type CompositeFilter struct {
	Filters []ToolFilter
}

// Filter implements ToolFilter.
func (f *CompositeFilter) Filter(ctx context.Context, tools []ToolInfo) []ToolInfo {
	result := tools
	for _, filter := range f.Filters {
		result = filter.Filter(ctx, result)
	}
	return result
}

// NewIncludeFilter keeps only the named tools.
func NewIncludeFilter(names ...string) ToolFilter {
	return &ToolNameFilter{Names: names, Mode: FilterModeInclude}
}

// NewExcludeFilter drops the named tools.
func NewExcludeFilter(names ...string) ToolFilter {
	return &ToolNameFilter{Names: names, Mode: FilterModeExclude}
}

// NewPatternIncludeFilter keeps tools whose name matches any pattern.
func NewPatternIncludeFilter(namePatterns ...string) ToolFilter {
	return &PatternFilter{NamePatterns: namePatterns, Mode: FilterModeInclude}
}

// NewPatternExcludeFilter drops tools whose name matches any pattern.
func NewPatternExcludeFilter(namePatterns ...string) ToolFilter {
	return &PatternFilter{NamePatterns: namePatterns, Mode: FilterModeExclude}
}

// NewDescriptionFilter keeps tools whose description matches any pattern.
func NewDescriptionFilter(descPatterns ...string) ToolFilter {
	return &PatternFilter{DescriptionPatterns: descPatterns, Mode: FilterModeInclude}
}

// NewCompositeFilter chains filters, applying each to the previous one's output.
func NewCompositeFilter(filters ...ToolFilter) ToolFilter {
	return &CompositeFilter{Filters: filters}
}

// NewFuncFilter adapts filterFunc to ToolFilter.
func NewFuncFilter(filterFunc func(ctx context.Context, tools []ToolInfo) []ToolInfo) ToolFilter {
	return ToolFilterFunc(filterFunc)
}
