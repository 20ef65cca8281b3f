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

// Package runner owns exactly one agent instance per task and presents it
// as a pair (Send, Stream): a Runner is the unit an Orchestrator creates,
// feeds events into, and drains AgentEvents out of.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-agentrt-go/agent"
	"trpc.group/trpc-go/trpc-agentrt-go/channel"
	"trpc.group/trpc-go/trpc-agentrt-go/checkpoint"
	"trpc.group/trpc-go/trpc-agentrt-go/config"
	"trpc.group/trpc-go/trpc-agentrt-go/contextstore"
	"trpc.group/trpc-go/trpc-agentrt-go/event"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/overflow"
	"trpc.group/trpc-go/trpc-agentrt-go/step"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

// State is a Runner's lifecycle position.
type State string

// Runner states, per §4.7's state machine.
const (
	StateCreated     State = "created"
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StateFinished    State = "finished"
	StateError       State = "error"
	StateCancelled   State = "cancelled"
)

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithTaskIDs sets the task identity an Orchestrator assigns this Runner.
// rootTaskID defaults to taskID and parentTaskID to empty when not given
// explicitly by the caller.
func WithTaskIDs(taskID, parentTaskID, rootTaskID string) Option {
	return func(r *Runner) {
		r.taskID = taskID
		r.parentTaskID = parentTaskID
		r.rootTaskID = rootTaskID
	}
}

// WithToolCallID marks this Runner as a child spawned to answer a specific
// Agent-kind tool call: GetResult converts its final result into a
// CLIENT_TOOL_RESULT addressed to id instead of returning it directly.
func WithToolCallID(id string) Option {
	return func(r *Runner) { r.toolCallID = id }
}

// WithRunnerConfig overrides the default Config.
func WithRunnerConfig(cfg Config) Option {
	return func(r *Runner) { r.cfg = cfg.normalize() }
}

// WithOverflowManager installs the context-overflow policy applied before
// every model call, overriding the Manager Init would otherwise build from
// the agent's ExtraConfig and Config.RuntimeConfig per §6's context-limit
// precedence chain.
func WithOverflowManager(m *overflow.Manager) Option {
	return func(r *Runner) { r.overflow = m }
}

// WithInvocationID overrides the generated invocation id, e.g. so every
// Runner in one task tree shares the root's invocation id.
func WithInvocationID(id string) Option {
	return func(r *Runner) { r.invocationID = id }
}

// WithCheckpointState resumes a Runner from a previously saved
// checkpoint.State: it restores the task identity, the context store id
// (forcing Config.UseShareContext so Init reattaches to the same context
// instead of minting a fresh one), the round this task had reached, and the
// tool call a suspension was waiting on, if any. Init must still be called,
// with state.AgentName, before Send or Stream.
func WithCheckpointState(state checkpoint.State) Option {
	return func(r *Runner) {
		r.taskID = state.TaskID
		r.parentTaskID = state.ParentTaskID
		r.rootTaskID = state.RootTaskID
		r.round = state.Round
		if state.PendingToolCallID != "" {
			r.toolCallID = state.PendingToolCallID
		}
		r.cfg.ContextID = state.ContextID
		r.cfg.UseShareContext = true
	}
}

// Runner drives one agent instance through its lifetime: Init resolves and
// constructs the agent, Send delivers inbound events, Stream drains
// AgentEvents, and GetResult reports the final one once Stream completes.
type Runner struct {
	mu    sync.Mutex
	state State

	registry *Registry
	store    contextstore.Store
	overflow *overflow.Manager
	cfg      Config

	invocationID string
	agentName    string
	agentInst    agent.Agent
	contextID    string
	toolCallID   string // non-empty marks this Runner as a child.

	taskID       string
	parentTaskID string
	rootTaskID   string

	channel *channel.Channel
	input   chan model.Message
	loop    *step.Loop

	pendingSeed []model.Message

	lastFinished *event.Event
	round        int
}

// New creates a Runner bound to registry for agent resolution and store for
// context persistence. Call Init before Send or Stream.
func New(registry *Registry, store contextstore.Store, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		store:    store,
		state:    StateCreated,
		cfg:      DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.taskID == "" {
		r.taskID = uuid.NewString()
	}
	if r.rootTaskID == "" {
		r.rootTaskID = r.taskID
	}
	if r.invocationID == "" {
		r.invocationID = uuid.NewString()
	}
	return r
}

// TaskID returns this Runner's task id.
func (r *Runner) TaskID() string { return r.taskID }

// ParentTaskID returns the parent task id, empty for the root of a tree.
func (r *Runner) ParentTaskID() string { return r.parentTaskID }

// RootTaskID returns the task id at the root of this Runner's tree.
func (r *Runner) RootTaskID() string { return r.rootTaskID }

// IsChild reports whether this Runner was spawned to answer an Agent-kind
// tool call, per WithToolCallID.
func (r *Runner) IsChild() bool { return r.toolCallID != "" }

// State reports the Runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Init resolves agentName through the registry, constructs the agent, seeds
// its system instruction into the context store, and prepares the step
// loop. Must be called exactly once, before Send or Stream.
func (r *Runner) Init(ctx context.Context, agentName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateCreated {
		return fmt.Errorf("runner: Init called in state %q", r.state)
	}

	factory, err := r.registry.Get(agentName)
	if err != nil {
		return err
	}
	a := factory()

	contextID := r.cfg.ContextID
	if contextID == "" || !r.cfg.UseShareContext {
		contextID = uuid.NewString()
	}

	inv := agent.NewInvocation(agent.WithInvocationID(r.invocationID), agent.WithInvocationAgent(a))
	instruction, err := a.Instruction(ctx, inv)
	if err != nil {
		return fmt.Errorf("runner: build instruction: %w", err)
	}

	existing, err := r.store.Get(ctx, contextID)
	if err != nil {
		return fmt.Errorf("runner: read context: %w", err)
	}
	var seed []model.Message
	if len(existing) == 0 && instruction != "" {
		seed = []model.Message{model.NewSystemMessage(instruction)}
	}

	tools := make(map[string]tool.Tool, len(a.Tools()))
	for _, t := range a.Tools() {
		tools[t.Declaration().Name] = t
	}

	if r.cfg.Unfinished {
		r.input = make(chan model.Message, r.cfg.InputBuffer)
	}

	if r.overflow == nil {
		upper, lower := config.ResolveContextLimits(a.ExtraConfig(), r.cfg.RuntimeConfig)
		r.overflow = overflow.NewManager(overflow.Config{UpperLimit: upper, LowerLimit: lower}, nil)
	}

	r.agentName = agentName
	r.agentInst = a
	r.contextID = contextID
	r.channel = channel.New()
	r.pendingSeed = seed
	r.loop = step.New(step.Config{
		AgentName:        agentName,
		SessionID:        contextID,
		Model:            a.Model(),
		Tools:            tools,
		Store:            r.store,
		Overflow:         r.overflow,
		GenerationConfig: a.GenerationConfig(),
		MaxSteps:         a.MaxSteps(),
		ToolConcurrency:  a.ToolConcurrency(),
	})
	r.state = StateInitialized
	return nil
}

// Send routes evt into the Runner per its Type: REQUEST messages become
// step-loop input, CLIENT_TOOL_RESULT resolves the matching pending Channel
// request. Other types are rejected.
func (r *Runner) Send(ctx context.Context, evt *event.Event) error {
	if evt == nil {
		return nil
	}

	switch evt.Type {
	case event.TypeRequest:
		return r.sendRequest(ctx, evt.Messages())
	case event.TypeClientToolResult:
		return r.sendToolResult(evt)
	default:
		return fmt.Errorf("runner: unsupported event type %q for Send", evt.Type)
	}
}

func (r *Runner) sendRequest(ctx context.Context, msgs []model.Message) error {
	r.mu.Lock()
	state := r.state
	unfinished := r.cfg.Unfinished
	input := r.input
	r.mu.Unlock()

	if state == StateCreated {
		return ErrNotInitialized
	}

	if unfinished && input != nil {
		for _, m := range msgs {
			select {
			case input <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}

	r.mu.Lock()
	r.pendingSeed = append(r.pendingSeed, msgs...)
	r.mu.Unlock()
	return nil
}

func (r *Runner) sendToolResult(evt *event.Event) error {
	msgs := evt.Messages()
	if len(msgs) == 0 {
		return errors.New("runner: client tool result carries no message")
	}
	msg := msgs[0]

	var resultErr error
	if evt.Response != nil && evt.Error != nil {
		resultErr = errors.New(evt.Error.Message)
	}
	r.channel.SetResponse(msg.ToolID, msg.Content, resultErr)
	return nil
}

// Stream starts the step loop (if not already started) and returns a
// channel of AgentEvents: converted step-loop output plus any CLIENT_TOOL_CALL
// events the agent's tools raise through the bound Channel. The channel
// closes once the step loop finishes.
func (r *Runner) Stream(ctx context.Context) <-chan *event.Event {
	out := make(chan *event.Event, r.cfg.EventBuffer)

	r.mu.Lock()
	if r.state != StateInitialized {
		r.mu.Unlock()
		close(out)
		return out
	}
	r.state = StateRunning
	initial := r.pendingSeed
	r.pendingSeed = nil
	input := r.input
	r.mu.Unlock()

	r.mu.Lock()
	startRound := r.round
	r.mu.Unlock()

	onSend := r.clientToolCallSender(ctx, out)
	loopCtx := channel.WithContext(ctx, r.channel, onSend)
	loopOut := r.loop.RunFrom(loopCtx, initial, input, startRound)

	go r.forward(ctx, loopOut, out)
	return out
}

func (r *Runner) clientToolCallSender(ctx context.Context, out chan<- *event.Event) channel.OnSend {
	return func(toolName string, schema any, params map[string]any) error {
		callID, _ := params["request_id"].(string)
		args, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("runner: marshal client tool call arguments: %w", err)
		}

		evt := event.NewClientToolCallEvent(r.invocationID, r.agentName, model.ToolCall{
			Type: "function",
			ID:   callID,
			Function: model.FunctionDefinitionParam{
				Name:      toolName,
				Arguments: args,
			},
		},
			event.WithTaskID(r.taskID),
			event.WithParentTaskID(r.parentTaskID),
			event.WithRootTaskID(r.rootTaskID),
		)

		select {
		case out <- evt:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Runner) forward(ctx context.Context, loopOut <-chan model.AgentResponse, out chan<- *event.Event) {
	defer close(out)

	for resp := range loopOut {
		evt := r.toEvent(resp)
		r.recordIfTerminal(resp, evt)

		select {
		case out <- evt:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) toEvent(resp model.AgentResponse) *event.Event {
	respObj := &model.Response{
		Choices:   []model.Choice{{Message: resp.Message}},
		Done:      resp.Status != model.StatusRunning,
		IsPartial: resp.Kind == model.KindStream,
	}

	evtType := event.TypeResponse
	if resp.Status == model.StatusError {
		respObj.Error = &model.ResponseError{Message: resp.Error, Type: model.ErrorTypeFlowError}
		evtType = event.TypeError
	}

	return event.New(r.invocationID, r.agentName,
		event.WithResponse(respObj),
		event.WithType(evtType),
		event.WithTaskID(r.taskID),
		event.WithParentTaskID(r.parentTaskID),
		event.WithRootTaskID(r.rootTaskID),
	)
}

func (r *Runner) recordIfTerminal(resp model.AgentResponse, evt *event.Event) {
	r.mu.Lock()
	if resp.StepIndex > r.round {
		r.round = resp.StepIndex
	}
	switch resp.Status {
	case model.StatusFinished, model.StatusStopped:
		r.lastFinished = evt
		r.state = StateFinished
	case model.StatusError:
		r.lastFinished = evt
		r.state = StateError
	case model.StatusSuspended:
		r.state = StateCancelled
	}
	r.mu.Unlock()
}

// Checkpoint snapshots this Runner's suspend/resume coordination state. It
// can be called at any point after Init, including while a task is still
// running: the conversation history already durable in the context store is
// not part of the snapshot, only enough to re-bind a fresh Runner (via
// WithCheckpointState) to the same context id, task identity, and round.
func (r *Runner) Checkpoint() checkpoint.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return checkpoint.State{
		TaskID:            r.taskID,
		ParentTaskID:      r.parentTaskID,
		RootTaskID:        r.rootTaskID,
		ContextID:         r.contextID,
		AgentName:         r.agentName,
		Round:             r.round,
		PendingToolCallID: r.toolCallID,
		UpdatedAt:         time.Now(),
	}
}

// GetResult returns the last finished AgentEvent once Stream's channel has
// closed. If this Runner is a child (WithToolCallID), the result is
// converted to a CLIENT_TOOL_RESULT addressed to the captured tool call id.
func (r *Runner) GetResult() (*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastFinished == nil {
		return nil, errors.New("runner: no finished result available")
	}

	if r.toolCallID == "" {
		return r.lastFinished, nil
	}

	var content string
	if msgs := r.lastFinished.Messages(); len(msgs) > 0 {
		content = msgs[len(msgs)-1].Content
	}
	if r.lastFinished.Error != nil {
		content = r.lastFinished.Error.Message
	}

	result := event.NewClientToolResultEvent(r.invocationID, r.agentName, r.toolCallID, r.agentName, content,
		event.WithTaskID(r.taskID),
		event.WithParentTaskID(r.parentTaskID),
		event.WithRootTaskID(r.rootTaskID),
	)
	result.Error = r.lastFinished.Error
	return result, nil
}

// ToolKind reports the dispatch Kind of the tool named name on this
// Runner's agent, used by the orchestrator to decide whether a
// CLIENT_TOOL_CALL should spawn a child Runner.
func (r *Runner) ToolKind(name string) (tool.Kind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.agentInst == nil {
		return "", false
	}
	for _, t := range r.agentInst.Tools() {
		if t.Declaration().Name == name {
			return t.Declaration().Kind, true
		}
	}
	return "", false
}

// Cancel marks the Runner cancelled. Used by the orchestrator when a
// parent's context is torn down with children still in flight.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateRunning || r.state == StateInitialized {
		r.state = StateCancelled
	}
}
