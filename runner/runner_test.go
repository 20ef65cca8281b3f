//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agentrt-go/agent"
	"trpc.group/trpc-go/trpc-agentrt-go/contextstore"
	"trpc.group/trpc-go/trpc-agentrt-go/event"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

// mockModel replies with a single fixed assistant message and no tool calls,
// so a round always finishes immediately.
type mockModel struct {
	name  string
	reply string
}

func (m *mockModel) GenerateContent(ctx context.Context, req *model.Request) (<-chan *model.Response, error) {
	out := make(chan *model.Response, 1)
	out <- &model.Response{
		Done:    true,
		Choices: []model.Choice{{Message: model.NewAssistantMessage(m.reply)}},
	}
	close(out)
	return out, nil
}

func (m *mockModel) Info() model.Info { return model.Info{Name: m.name} }

type mockAgent struct {
	name        string
	description string
	model       model.Model
	tools       []tool.Tool
	instruction string
	maxSteps    int
	toolConcur  int
	extraConfig map[string]any
}

func (a *mockAgent) Info() agent.Info    { return agent.Info{Name: a.name, Description: a.description} }
func (a *mockAgent) Tools() []tool.Tool  { return a.tools }
func (a *mockAgent) Model() model.Model  { return a.model }
func (a *mockAgent) Instruction(ctx context.Context, inv *agent.Invocation) (string, error) {
	return a.instruction, nil
}
func (a *mockAgent) GenerationConfig() model.GenerationConfig { return model.GenerationConfig{} }
func (a *mockAgent) MaxSteps() int {
	if a.maxSteps == 0 {
		return 4
	}
	return a.maxSteps
}
func (a *mockAgent) ToolConcurrency() int {
	if a.toolConcur == 0 {
		return 2
	}
	return a.toolConcur
}
func (a *mockAgent) Callbacks() *agent.AgentCallbacks  { return nil }
func (a *mockAgent) ExtraConfig() map[string]any       { return a.extraConfig }

func newTestRunner(t *testing.T, a agent.Agent, opts ...Option) *Runner {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(a.Info().Name, func() agent.Agent { return a }))
	store := contextstore.NewInMemoryStore()
	return New(reg, store, opts...)
}

func drain(t *testing.T, ch <-chan *event.Event, timeout time.Duration) []*event.Event {
	t.Helper()
	var got []*event.Event
	deadline := time.After(timeout)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, evt)
		case <-deadline:
			t.Fatal("timed out draining runner stream")
		}
	}
}

func TestRunner_InitThenStream_Finishes(t *testing.T) {
	a := &mockAgent{name: "assistant", model: &mockModel{name: "mock", reply: "done"}, instruction: "be terse"}
	r := newTestRunner(t, a)

	require.Equal(t, StateCreated, r.State())
	require.NoError(t, r.Init(context.Background(), "assistant"))
	require.Equal(t, StateInitialized, r.State())

	events := drain(t, r.Stream(context.Background()), time.Second)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, "done", last.Messages()[0].Content)
	assert.Equal(t, StateFinished, r.State())
	assert.Equal(t, r.TaskID(), last.TaskID)
	assert.Equal(t, r.RootTaskID(), last.RootTaskID)
}

func TestRunner_Checkpoint_ResumesIntoFreshRunner(t *testing.T) {
	a := &mockAgent{name: "assistant", model: &mockModel{name: "mock", reply: "done"}, instruction: "be terse"}

	reg := NewRegistry()
	require.NoError(t, reg.Register(a.Info().Name, func() agent.Agent { return a }))
	store := contextstore.NewInMemoryStore()

	r := New(reg, store, WithTaskIDs("task-1", "", "task-1"))
	require.NoError(t, r.Init(context.Background(), "assistant"))
	drain(t, r.Stream(context.Background()), time.Second)
	require.Equal(t, StateFinished, r.State())

	cp := r.Checkpoint()
	assert.Equal(t, "task-1", cp.TaskID)
	assert.Equal(t, "assistant", cp.AgentName)
	assert.Equal(t, r.contextID, cp.ContextID)

	resumed := New(reg, store, WithCheckpointState(cp))
	require.NoError(t, resumed.Init(context.Background(), cp.AgentName))
	assert.Equal(t, cp.TaskID, resumed.TaskID())
	assert.Equal(t, cp.ContextID, resumed.contextID)
	assert.Equal(t, cp.Round, resumed.round)
}

func TestRunner_InitUnknownAgent(t *testing.T) {
	reg := NewRegistry()
	store := contextstore.NewInMemoryStore()
	r := New(reg, store)

	err := r.Init(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestRunner_SendBeforeInit(t *testing.T) {
	reg := NewRegistry()
	store := contextstore.NewInMemoryStore()
	r := New(reg, store)

	err := r.Send(context.Background(), event.NewRequestEvent("inv", "assistant", []model.Message{model.NewUserMessage("hi")}))
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestRunner_GetResult_ChildConvertsToClientToolResult(t *testing.T) {
	a := &mockAgent{name: "researcher", model: &mockModel{name: "mock", reply: "the answer is 42"}}
	r := newTestRunner(t, a, WithToolCallID("call-7"))

	require.NoError(t, r.Init(context.Background(), "researcher"))
	drain(t, r.Stream(context.Background()), time.Second)

	result, err := r.GetResult()
	require.NoError(t, err)
	assert.Equal(t, event.TypeClientToolResult, result.Type)
	msgs := result.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "call-7", msgs[0].ToolID)
	assert.Equal(t, "the answer is 42", msgs[0].Content)
}

func TestRunner_GetResult_RootReturnsEventDirectly(t *testing.T) {
	a := &mockAgent{name: "assistant", model: &mockModel{name: "mock", reply: "hi there"}}
	r := newTestRunner(t, a)

	require.NoError(t, r.Init(context.Background(), "assistant"))
	drain(t, r.Stream(context.Background()), time.Second)

	result, err := r.GetResult()
	require.NoError(t, err)
	assert.NotEqual(t, event.TypeClientToolResult, result.Type)
}

func TestRunner_GetResult_BeforeFinishErrors(t *testing.T) {
	a := &mockAgent{name: "assistant", model: &mockModel{name: "mock", reply: "hi"}}
	r := newTestRunner(t, a)
	require.NoError(t, r.Init(context.Background(), "assistant"))

	_, err := r.GetResult()
	require.Error(t, err)
}

func TestRunner_Cancel(t *testing.T) {
	a := &mockAgent{name: "assistant", model: &mockModel{name: "mock", reply: "hi"}}
	r := newTestRunner(t, a)
	require.NoError(t, r.Init(context.Background(), "assistant"))

	r.Cancel()
	assert.Equal(t, StateCancelled, r.State())
}
