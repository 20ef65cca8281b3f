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

package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-agentrt-go/contextstore"
	"trpc.group/trpc-go/trpc-agentrt-go/event"
	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/merger"
	"trpc.group/trpc-go/trpc-agentrt-go/overflow"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
	toolagent "trpc.group/trpc-go/trpc-agentrt-go/tool/agent"
)

// Mode selects how the Orchestrator treats AGENT-kind CLIENT_TOOL_CALL
// events: multi spawns a child Runner and propagates its result back
// upward transparently; single lets them surface to the client unchanged.
type Mode string

// Orchestrator run modes.
const (
	ModeMulti  Mode = "multi"
	ModeSingle Mode = "single"
)

// OrchestratorOption configures an Orchestrator at construction time.
type OrchestratorOption func(*Orchestrator)

// WithOverflow installs the context-overflow policy every Runner the
// Orchestrator creates will apply.
func WithOverflow(m *overflow.Manager) OrchestratorOption {
	return func(o *Orchestrator) { o.overflow = m }
}

// WithRunnerConfigDefault overrides the Config applied to every Runner the
// Orchestrator creates.
func WithRunnerConfigDefault(cfg Config) OrchestratorOption {
	return func(o *Orchestrator) { o.runnerCfg = cfg.normalize() }
}

// Orchestrator builds a task tree of Runners rooted at one entry event,
// multiplexes their AgentEvents through a single Merger, and transparently
// spawns child Runners for AGENT-kind CLIENT_TOOL_CALL events in multi mode.
type Orchestrator struct {
	registry  *Registry
	store     contextstore.Store
	overflow  *overflow.Manager
	runnerCfg Config

	mu      sync.Mutex
	runners map[string]*Runner // taskID -> Runner, live only for the duration of one Run.
	parents map[string]string  // taskID -> parentTaskID, mirrors runners for O(1) parent lookup post-cleanup.
}

// NewOrchestrator creates an Orchestrator backed by registry for agent
// resolution and store for every Runner's context persistence.
func NewOrchestrator(registry *Registry, store contextstore.Store, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:  registry,
		store:     store,
		runnerCfg: DefaultConfig(),
		runners:   make(map[string]*Runner),
		parents:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run constructs the root Runner for agentName, dispatches entry through it,
// and returns the merged AgentEvent stream for the whole task tree. The
// returned channel closes once every task in the tree has finished.
func (o *Orchestrator) Run(ctx context.Context, agentName string, entry *event.Event, mode Mode, contextID string) (<-chan *event.Event, error) {
	rootTaskID := entry.TaskID
	if rootTaskID == "" {
		rootTaskID = uuid.NewString()
	}
	entry.TaskID = rootTaskID
	entry.RootTaskID = rootTaskID
	entry.ParentTaskID = ""

	root := New(o.registry, o.store,
		WithTaskIDs(rootTaskID, "", rootTaskID),
		WithOverflowManager(o.overflow),
		WithRunnerConfig(o.runnerCfgFor(contextID)),
	)
	if err := root.Init(ctx, agentName); err != nil {
		return nil, fmt.Errorf("orchestrator: init root runner: %w", err)
	}
	if err := root.Send(ctx, entry); err != nil {
		return nil, fmt.Errorf("orchestrator: dispatch entry event: %w", err)
	}

	o.mu.Lock()
	o.runners[rootTaskID] = root
	o.mu.Unlock()

	mg := merger.New[*event.Event](merger.Config{}, 0)
	mg.SetOnComplete(o.onComplete(mode))
	mg.Register(rootTaskID, root.Stream)

	out := make(chan *event.Event)
	go o.drain(ctx, mg, mode, out)
	return out, nil
}

func (o *Orchestrator) runnerCfgFor(contextID string) Config {
	cfg := o.runnerCfg
	cfg.ContextID = contextID
	return cfg
}

// drain reads the merger's output, spawning child runners for AGENT-kind
// CLIENT_TOOL_CALL events in multi mode and forwarding everything else
// unchanged to the caller.
func (o *Orchestrator) drain(ctx context.Context, mg *merger.Merger[*event.Event], mode Mode, out chan<- *event.Event) {
	defer close(out)

	for evt := range mg.Stream(ctx) {
		if mode == ModeMulti && o.trySpawnChild(ctx, mg, evt) {
			continue
		}

		select {
		case out <- evt:
		case <-ctx.Done():
			return
		}
	}
}

// trySpawnChild reports whether evt was an AGENT-kind CLIENT_TOOL_CALL that
// it has fully consumed by spawning a child Runner for it.
func (o *Orchestrator) trySpawnChild(ctx context.Context, mg *merger.Merger[*event.Event], evt *event.Event) bool {
	if evt.Type != event.TypeClientToolCall {
		return false
	}
	call, ok := evt.ToolCall()
	if !ok {
		return false
	}

	o.mu.Lock()
	parentRunner := o.runners[evt.TaskID]
	o.mu.Unlock()
	if parentRunner == nil {
		return false
	}
	kind, ok := parentRunner.ToolKind(call.Function.Name)
	if !ok || kind != tool.KindAgent {
		return false
	}

	childTaskID := uuid.NewString()
	child := New(o.registry, o.store,
		WithTaskIDs(childTaskID, evt.TaskID, evt.RootTaskID),
		WithToolCallID(call.ID),
		WithOverflowManager(o.overflow),
		WithRunnerConfig(o.runnerCfg),
	)
	if err := child.Init(ctx, call.Function.Name); err != nil {
		log.Errorf("orchestrator: init child runner for %q: %v", call.Function.Name, err)
		return true
	}

	msgs, err := toolagent.ParseMessages(call.Function.Arguments)
	if err != nil {
		log.Errorf("orchestrator: parse child runner request for %q: %v", call.Function.Name, err)
		return true
	}
	req := event.NewRequestEvent(evt.InvocationID, evt.Author, msgs,
		event.WithTaskID(childTaskID),
		event.WithParentTaskID(evt.TaskID),
		event.WithRootTaskID(evt.RootTaskID),
	)
	if err := child.Send(ctx, req); err != nil {
		log.Errorf("orchestrator: dispatch child runner request for %q: %v", call.Function.Name, err)
		return true
	}

	o.mu.Lock()
	o.runners[childTaskID] = child
	o.parents[childTaskID] = evt.TaskID
	o.mu.Unlock()

	mg.Register(childTaskID, child.Stream)
	return true
}

// onComplete routes a finished Runner's result to its parent (multi mode
// only) and drops the Runner from the task-tree bookkeeping.
func (o *Orchestrator) onComplete(mode Mode) merger.OnComplete {
	return func(taskID string, status merger.CompletionStatus, cerr error) {
		o.mu.Lock()
		r := o.runners[taskID]
		parentTaskID := o.parents[taskID]
		delete(o.runners, taskID)
		delete(o.parents, taskID)
		o.mu.Unlock()

		if r == nil || mode != ModeMulti || !r.IsChild() {
			return
		}

		result, err := r.GetResult()
		if err != nil {
			log.Errorf("orchestrator: child runner %q produced no result: %v", taskID, err)
			return
		}

		o.mu.Lock()
		parent := o.runners[parentTaskID]
		o.mu.Unlock()
		if parent == nil {
			log.Warnf("orchestrator: parent runner %q for child %q no longer registered", parentTaskID, taskID)
			return
		}
		if err := parent.Send(context.Background(), result); err != nil {
			log.Errorf("orchestrator: deliver child %q result to parent %q: %v", taskID, parentTaskID, err)
		}
	}
}

// SendEvent forwards evt to the Runner whose TaskID matches evt.TaskID, used
// by the transport layer to deliver an out-of-band reply (e.g. ask_input)
// into a still-running task.
func (o *Orchestrator) SendEvent(ctx context.Context, evt *event.Event) error {
	o.mu.Lock()
	r := o.runners[evt.TaskID]
	o.mu.Unlock()
	if r == nil {
		return fmt.Errorf("orchestrator: no runner for task %q", evt.TaskID)
	}
	return r.Send(ctx, evt)
}
