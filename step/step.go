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

// Package step drives the bounded ReAct loop: build model input, call the
// model adapter, execute any tool calls, persist outputs, and repeat until
// the model stops calling tools, an error escapes, or the round budget is
// exhausted.
package step

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-agentrt-go/contextstore"
	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/overflow"
	"trpc.group/trpc-go/trpc-agentrt-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

const (
	defaultMaxSteps        = 50
	defaultToolConcurrency = 8
)

// Config configures a Loop.
type Config struct {
	// AgentName is used in round span names ("@<agent> Round R/N") and has
	// no other effect.
	AgentName string

	// SessionID scopes reads and writes against Store.
	SessionID string

	// Model is the adapter the loop calls every round.
	Model model.Model

	// Tools are keyed by name; looked up for every tool call the model
	// emits. A call naming an unknown tool yields an error tool-result
	// message rather than aborting the round.
	Tools map[string]tool.Tool

	// Store is the per-session context log. Required.
	Store contextstore.Store

	// Overflow trims the model input before every call. Nil disables
	// trimming entirely (not recommended outside tests).
	Overflow *overflow.Manager

	// GenerationConfig is merged into every model.Request.
	GenerationConfig model.GenerationConfig

	// MaxSteps bounds the number of rounds. Defaults to 50.
	MaxSteps int

	// ToolConcurrency bounds how many tool calls within one assistant turn
	// run at once when there is more than one. Defaults to 8.
	ToolConcurrency int
}

func (c Config) normalize() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = defaultMaxSteps
	}
	if c.ToolConcurrency <= 0 {
		c.ToolConcurrency = defaultToolConcurrency
	}
	if c.Tools == nil {
		c.Tools = make(map[string]tool.Tool)
	}
	return c
}

// Loop drives one task's ReAct rounds.
type Loop struct {
	cfg Config
}

// New creates a Loop. Store must be non-nil.
func New(cfg Config) *Loop {
	return &Loop{cfg: cfg.normalize()}
}

// Run ingests initial (appended to context immediately) and, in unfinished
// mode, drains extra messages from input at the start of every round; input
// may be nil for plain message-list mode. The returned channel matches
// merger.Producer[model.AgentResponse]'s shape so a Runner can register it
// directly with a Merger.
func (l *Loop) Run(ctx context.Context, initial []model.Message, input <-chan model.Message) <-chan model.AgentResponse {
	return l.RunFrom(ctx, initial, input, 0)
}

// RunFrom is Run starting its round counter at startRound instead of 0, so a
// Loop resumed from a checkpoint's saved round continues span and
// StepIndex numbering rather than restarting it. The context store already
// holds every message from the rounds before startRound; RunFrom never
// re-reads or re-executes them.
func (l *Loop) RunFrom(ctx context.Context, initial []model.Message, input <-chan model.Message, startRound int) <-chan model.AgentResponse {
	out := make(chan model.AgentResponse)
	go l.run(ctx, initial, input, startRound, out)
	return out
}

func (l *Loop) run(ctx context.Context, initial []model.Message, input <-chan model.Message, startRound int, out chan<- model.AgentResponse) {
	defer close(out)

	if len(initial) > 0 {
		if err := l.cfg.Store.Add(ctx, l.cfg.SessionID, initial); err != nil {
			l.emitError(ctx, out, startRound, fmt.Errorf("step: persist initial messages: %w", err))
			return
		}
	}

	for round := startRound; round < l.cfg.MaxSteps; round++ {
		l.drainInput(ctx, input)

		roundCtx, span := trace.Tracer.Start(ctx, fmt.Sprintf("@%s Round %d/%d", l.cfg.AgentName, round+1, l.cfg.MaxSteps))
		finished, err := l.runRound(roundCtx, round, out)
		span.End()

		if err != nil {
			l.emitError(ctx, out, round, err)
			return
		}
		if finished {
			return
		}

		select {
		case <-ctx.Done():
			l.emitSuspended(out, round+1)
			return
		default:
		}
	}

	select {
	case out <- model.AgentResponse{
		Kind:      model.KindFinal,
		Status:    model.StatusStopped,
		StepIndex: l.cfg.MaxSteps,
	}:
	case <-ctx.Done():
	}
}

// drainInput pulls any messages already waiting on input (unfinished mode)
// without blocking, appending them to context so the next round sees them.
func (l *Loop) drainInput(ctx context.Context, input <-chan model.Message) {
	if input == nil {
		return
	}
	var extra []model.Message
	for {
		select {
		case msg, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			extra = append(extra, msg)
			continue
		default:
		}
		break
	}
	if len(extra) == 0 {
		return
	}
	if err := l.cfg.Store.Add(ctx, l.cfg.SessionID, extra); err != nil {
		log.Warnf("step: persist unfinished-mode input: %v", err)
	}
}

// runRound executes one build→call→act cycle. finished reports whether the
// loop should stop (the round produced a tool-call-free final message).
func (l *Loop) runRound(ctx context.Context, round int, out chan<- model.AgentResponse) (finished bool, err error) {
	history, err := l.cfg.Store.Get(ctx, l.cfg.SessionID)
	if err != nil {
		return false, fmt.Errorf("step: read context: %w", err)
	}

	prepared := history
	if l.cfg.Overflow != nil {
		prepared, err = l.cfg.Overflow.Apply(ctx, prepared)
		if err != nil {
			return false, fmt.Errorf("step: apply overflow policy: %w", err)
		}
		prepared = l.cfg.Overflow.WithFinalAnswerPrompt(prepared)
	}

	req := &model.Request{
		Messages:         prepared,
		GenerationConfig: l.cfg.GenerationConfig,
		Tools:            l.cfg.Tools,
	}

	llmCtx, llmSpan := trace.LLMSpan(ctx, l.cfg.AgentName)
	respCh, err := l.cfg.Model.GenerateContent(llmCtx, req)
	if err != nil {
		llmSpan.End()
		return false, fmt.Errorf("step: call model: %w", err)
	}

	final, err := l.drainModelResponses(ctx, round, respCh, out)
	llmSpan.End()
	if err != nil {
		return false, err
	}
	if final == nil || len(final.Choices) == 0 {
		return false, fmt.Errorf("step: model returned no final response")
	}

	msg := final.Choices[0].Message
	if msg.Role == "" {
		msg.Role = model.RoleAssistant
	}

	kind := model.KindFinal
	if len(msg.ToolCalls) > 0 {
		kind = model.KindAccumulated
	}
	if err := l.emit(ctx, out, model.AgentResponse{Kind: kind, Status: model.StatusRunning, Message: msg, StepIndex: round}); err != nil {
		return false, err
	}

	if err := l.cfg.Store.Add(ctx, l.cfg.SessionID, []model.Message{msg}); err != nil {
		return false, fmt.Errorf("step: persist assistant message: %w", err)
	}

	if len(msg.ToolCalls) == 0 {
		if err := l.emit(ctx, out, model.AgentResponse{Kind: model.KindFinal, Status: model.StatusFinished, Message: msg, StepIndex: round}); err != nil {
			return false, err
		}
		return true, nil
	}

	results, err := l.executeToolCalls(ctx, round, msg.ToolCalls, out)
	if err != nil {
		return false, err
	}
	if len(results) > 0 {
		if err := l.cfg.Store.Add(ctx, l.cfg.SessionID, results); err != nil {
			return false, fmt.Errorf("step: persist tool results: %w", err)
		}
	}
	return false, nil
}

// drainModelResponses forwards every partial response as a STREAM
// AgentResponse and returns the one non-partial response carrying the
// accumulated message.
func (l *Loop) drainModelResponses(
	ctx context.Context,
	round int,
	respCh <-chan *model.Response,
	out chan<- model.AgentResponse,
) (*model.Response, error) {
	var final *model.Response
	for resp := range respCh {
		if resp.Error != nil {
			return nil, fmt.Errorf("step: model error: %s", resp.Error.Message)
		}
		if resp.IsPartial {
			var msg model.Message
			if len(resp.Choices) > 0 {
				msg = resp.Choices[0].Delta
			}
			if err := l.emit(ctx, out, model.AgentResponse{Kind: model.KindStream, Status: model.StatusRunning, Message: msg, StepIndex: round}); err != nil {
				return nil, err
			}
			continue
		}
		final = resp
	}
	return final, nil
}

func (l *Loop) emit(ctx context.Context, out chan<- model.AgentResponse, resp model.AgentResponse) error {
	select {
	case out <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// emitSuspended reports the loop stopping on context cancellation rather
// than on completion. nextRound is the round a resumed Loop should pass to
// RunFrom. A plain blocking send: out's only consumer (Runner.forward, or a
// test's drain loop) ranges over it until close regardless of ctx state, so
// this never blocks forever.
func (l *Loop) emitSuspended(out chan<- model.AgentResponse, nextRound int) {
	out <- model.AgentResponse{Kind: model.KindFinal, Status: model.StatusSuspended, StepIndex: nextRound}
}

func (l *Loop) emitError(ctx context.Context, out chan<- model.AgentResponse, round int, err error) {
	log.Errorf("step: agent %s round %d failed: %v", l.cfg.AgentName, round, err)
	select {
	case out <- model.AgentResponse{Kind: model.KindFinal, Status: model.StatusError, StepIndex: round, Error: err.Error()}:
	case <-ctx.Done():
	}
}
