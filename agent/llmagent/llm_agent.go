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

// Package llmagent provides an LLM agent implementation: an agent.Agent
// backed by a model adapter, a fixed tool set, and a system prompt, ready to
// be driven by a step.Loop through a Runner.
package llmagent

import (
	"context"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-agentrt-go/agent"
	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

const defaultTimeFormat = "2006-01-02 15:04:05 MST"

const defaultToolConcurrency = 8

// Option configures an LLMAgent.
type Option func(*Options)

// WithModel sets the model to use.
func WithModel(m model.Model) Option {
	return func(opts *Options) { opts.Model = m }
}

// WithDescription sets the description of the agent.
func WithDescription(description string) Option {
	return func(opts *Options) { opts.Description = description }
}

// WithInstruction sets the per-agent instruction.
func WithInstruction(instruction string) Option {
	return func(opts *Options) { opts.Instruction = instruction }
}

// WithGlobalInstruction sets the instruction prepended ahead of the agent's
// own instruction, intended to be shared across a task tree.
func WithGlobalInstruction(instruction string) Option {
	return func(opts *Options) { opts.GlobalInstruction = instruction }
}

// WithGenerationConfig sets the generation configuration.
func WithGenerationConfig(config model.GenerationConfig) Option {
	return func(opts *Options) { opts.GenerationConfig = config }
}

// WithTools sets the list of tools available to the agent.
func WithTools(tools []tool.Tool) Option {
	return func(opts *Options) { opts.Tools = tools }
}

// WithToolSets adds every tool contributed by each ToolSet to the agent's
// tool list at construction time.
func WithToolSets(toolSets []tool.ToolSet) Option {
	return func(opts *Options) { opts.ToolSets = toolSets }
}

// WithAgentCallbacks sets the agent callbacks.
func WithAgentCallbacks(callbacks *agent.AgentCallbacks) Option {
	return func(opts *Options) { opts.AgentCallbacks = callbacks }
}

// WithModelCallbacks sets the model callbacks.
func WithModelCallbacks(callbacks *model.ModelCallbacks) Option {
	return func(opts *Options) { opts.ModelCallbacks = callbacks }
}

// WithToolCallbacks sets the tool callbacks.
func WithToolCallbacks(callbacks *tool.Callbacks) Option {
	return func(opts *Options) { opts.ToolCallbacks = callbacks }
}

// WithAddNameToInstruction prefixes the instruction with "You are <name>."
// when true.
func WithAddNameToInstruction(add bool) Option {
	return func(opts *Options) { opts.AddNameToInstruction = add }
}

// WithMaxSteps bounds the number of ReAct rounds. 0 lets the step loop use
// its own default.
func WithMaxSteps(maxSteps int) Option {
	return func(opts *Options) { opts.MaxSteps = maxSteps }
}

// WithToolConcurrency bounds how many tool calls within one turn run at
// once. 0 uses defaultToolConcurrency.
func WithToolConcurrency(n int) Option {
	return func(opts *Options) { opts.ToolConcurrency = n }
}

// WithAddCurrentTime adds the current time to the system prompt if true.
func WithAddCurrentTime(add bool) Option {
	return func(opts *Options) { opts.AddCurrentTime = add }
}

// WithTimezone specifies the timezone to use for time display.
func WithTimezone(timezone string) Option {
	return func(opts *Options) { opts.Timezone = timezone }
}

// WithTimeFormat specifies the format for time display. Must be a valid Go
// time layout; see https://pkg.go.dev/time#Time.Format.
func WithTimeFormat(timeFormat string) Option {
	return func(opts *Options) { opts.TimeFormat = timeFormat }
}

// WithExtraConfig attaches agent-specific configuration overrides, e.g.
// final_answer_context_{upper,lower}_limit / _threshold, consulted by a
// Runner ahead of the runtime config file and built-in defaults.
func WithExtraConfig(extra map[string]any) Option {
	return func(opts *Options) { opts.ExtraConfig = extra }
}

// Options contains configuration options for creating an LLMAgent.
type Options struct {
	Model                model.Model
	Description          string
	Instruction          string
	GlobalInstruction    string
	GenerationConfig     model.GenerationConfig
	Tools                []tool.Tool
	ToolSets             []tool.ToolSet
	AgentCallbacks       *agent.AgentCallbacks
	ModelCallbacks       *model.ModelCallbacks
	ToolCallbacks        *tool.Callbacks
	AddNameToInstruction bool
	MaxSteps             int
	ToolConcurrency      int
	AddCurrentTime       bool
	Timezone             string
	TimeFormat           string
	ExtraConfig          map[string]any
}

// LLMAgent is an agent.Agent backed by a model and a fixed tool set.
type LLMAgent struct {
	name                 string
	model                model.Model
	description          string
	instruction          string
	globalInstruction    string
	genConfig            model.GenerationConfig
	tools                []tool.Tool
	agentCallbacks       *agent.AgentCallbacks
	modelCallbacks       *model.ModelCallbacks
	toolCallbacks        *tool.Callbacks
	addNameToInstruction bool
	maxSteps             int
	toolConcurrency      int
	addCurrentTime       bool
	timezone             string
	timeFormat           string
	extraConfig          map[string]any
}

// New creates a new LLMAgent named name with the given options.
func New(name string, opts ...Option) *LLMAgent {
	options := Options{ToolConcurrency: defaultToolConcurrency}
	for _, opt := range opts {
		opt(&options)
	}

	return &LLMAgent{
		name:                 name,
		model:                options.Model,
		description:          options.Description,
		instruction:          options.Instruction,
		globalInstruction:    options.GlobalInstruction,
		genConfig:            options.GenerationConfig,
		tools:                registerTools(options.Tools, options.ToolSets),
		agentCallbacks:       options.AgentCallbacks,
		modelCallbacks:       options.ModelCallbacks,
		toolCallbacks:        options.ToolCallbacks,
		addNameToInstruction: options.AddNameToInstruction,
		maxSteps:             options.MaxSteps,
		toolConcurrency:      options.ToolConcurrency,
		addCurrentTime:       options.AddCurrentTime,
		timezone:             options.Timezone,
		timeFormat:           options.TimeFormat,
		extraConfig:          options.ExtraConfig,
	}
}

func registerTools(tools []tool.Tool, toolSets []tool.ToolSet) []tool.Tool {
	allTools := make([]tool.Tool, 0, len(tools))
	allTools = append(allTools, tools...)

	ctx := context.Background()
	for _, ts := range toolSets {
		allTools = append(allTools, ts.Tools(ctx)...)
	}
	return allTools
}

// Info implements agent.Agent.
func (a *LLMAgent) Info() agent.Info {
	return agent.Info{Name: a.name, Description: a.description}
}

// Tools implements agent.Agent.
func (a *LLMAgent) Tools() []tool.Tool {
	return a.tools
}

// Model implements agent.Agent.
func (a *LLMAgent) Model() model.Model {
	return a.model
}

// GenerationConfig implements agent.Agent.
func (a *LLMAgent) GenerationConfig() model.GenerationConfig {
	return a.genConfig
}

// MaxSteps implements agent.Agent.
func (a *LLMAgent) MaxSteps() int {
	return a.maxSteps
}

// ToolConcurrency implements agent.Agent.
func (a *LLMAgent) ToolConcurrency() int {
	return a.toolConcurrency
}

// Callbacks implements agent.Agent.
func (a *LLMAgent) Callbacks() *agent.AgentCallbacks {
	return a.agentCallbacks
}

// ExtraConfig implements agent.Agent.
func (a *LLMAgent) ExtraConfig() map[string]any {
	return a.extraConfig
}

// ModelCallbacks returns the model callbacks configured for this agent, or
// nil. Exposed so a Runner can wire them alongside the model adapter.
func (a *LLMAgent) ModelCallbacks() *model.ModelCallbacks {
	return a.modelCallbacks
}

// ToolCallbacks returns the tool callbacks configured for this agent, or
// nil.
func (a *LLMAgent) ToolCallbacks() *tool.Callbacks {
	return a.toolCallbacks
}

// Instruction implements agent.Agent. It builds the system prompt from the
// agent's identity, global instruction, own instruction, and, if enabled,
// the current time, in that order.
func (a *LLMAgent) Instruction(ctx context.Context, inv *agent.Invocation) (string, error) {
	var parts []string

	if a.addNameToInstruction || a.description != "" {
		if identity := a.identity(); identity != "" {
			parts = append(parts, identity)
		}
	}
	if a.globalInstruction != "" {
		parts = append(parts, a.globalInstruction)
	}
	if a.instruction != "" {
		parts = append(parts, a.instruction)
	}
	if a.addCurrentTime {
		parts = append(parts, a.currentTimeLine())
	}

	return strings.Join(parts, "\n\n"), nil
}

func (a *LLMAgent) identity() string {
	switch {
	case a.name != "" && a.description != "":
		return "You are " + a.name + ". " + a.description
	case a.name != "":
		return "You are " + a.name + "."
	default:
		return a.description
	}
}

func (a *LLMAgent) currentTimeLine() string {
	loc := time.Local
	if a.timezone != "" {
		l, err := time.LoadLocation(a.timezone)
		if err != nil {
			log.Warnf("llmagent: invalid timezone %q, falling back to local: %v", a.timezone, err)
		} else {
			loc = l
		}
	}

	format := a.timeFormat
	if format == "" {
		format = defaultTimeFormat
	}

	return "The current time is: " + time.Now().In(loc).Format(format)
}
