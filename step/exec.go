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

package step

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
	"trpc.group/trpc-go/trpc-agentrt-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-agentrt-go/tool"
)

// Error messages surfaced as tool-result content on failure, mirroring the
// categories the model adapter itself distinguishes.
const (
	errToolNotFound      = "Error: tool not found"
	errCallableExecution = "Error: callable tool execution failed"
	errStreamExecution   = "Error: streamable tool execution failed"
	errMarshalResult     = "Error: failed to marshal tool result"
)

// executeToolCalls runs calls sequentially when there is exactly one, or
// fanned out (bounded by Config.ToolConcurrency) when there is more than
// one, per run_tool_call vs. run_tool_call_concurrency. Once all calls have
// finished, each result is emitted as its own AgentResponse, in call order.
func (l *Loop) executeToolCalls(
	ctx context.Context,
	round int,
	calls []model.ToolCall,
	out chan<- model.AgentResponse,
) ([]model.Message, error) {
	results := make([]model.Message, len(calls))

	if len(calls) == 1 {
		results[0] = l.executeOne(ctx, calls[0])
	} else {
		if err := l.executeConcurrently(ctx, calls, results); err != nil {
			return nil, err
		}
	}

	for _, msg := range results {
		if err := l.emit(ctx, out, model.AgentResponse{
			Kind:      model.KindFinal,
			Status:    model.StatusRunning,
			Message:   msg,
			StepIndex: round,
		}); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (l *Loop) executeConcurrently(ctx context.Context, calls []model.ToolCall, results []model.Message) error {
	var wg sync.WaitGroup
	sem := make(chan struct{}, l.cfg.ToolConcurrency)

	for i, call := range calls {
		i, call := i, call
		sem <- struct{}{}
		wg.Add(1)

		submitErr := ants.Submit(func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = l.executeOne(ctx, call)
		})
		if submitErr != nil {
			<-sem
			wg.Done()
			results[i] = errorToolMessage(call, fmt.Sprintf("%s: submit: %v", errCallableExecution, submitErr))
		}
	}

	wg.Wait()
	return nil
}

// executeOne looks up the named tool and invokes it, producing a tool-role
// result message. Lookup and execution failures are reported as the
// message's content rather than as a Go error, matching the contract that
// one failed call must not abort the rest of the turn.
func (l *Loop) executeOne(ctx context.Context, call model.ToolCall) model.Message {
	ctx, span := trace.ToolSpan(ctx, call.Function.Name)
	defer span.End()

	tl, ok := l.cfg.Tools[call.Function.Name]
	if !ok {
		log.Errorf("step: tool %q not found", call.Function.Name)
		trace.RecordEvent(span, "tool_not_found", map[string]any{"tool": call.Function.Name})
		return errorToolMessage(call, errToolNotFound)
	}

	log.Debugf("step: executing tool %s with args %s", call.Function.Name, string(call.Function.Arguments))

	ctx = tool.WithCallID(ctx, call.ID)
	result, err := dispatch(ctx, call, tl)
	if err != nil {
		log.Errorf("step: tool %s failed: %v", call.Function.Name, err)
		trace.RecordEvent(span, "tool_error", map[string]any{"tool": call.Function.Name, "error": err.Error()})
		return errorToolMessage(call, err.Error())
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Errorf("step: marshal result for %s: %v", call.Function.Name, err)
		return errorToolMessage(call, errMarshalResult)
	}
	return model.NewToolMessage(call.ID, call.Function.Name, string(data))
}

func dispatch(ctx context.Context, call model.ToolCall, tl tool.Tool) (any, error) {
	switch t := tl.(type) {
	case tool.CallableTool:
		result, err := t.Call(ctx, call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCallableExecution, err)
		}
		return result, nil
	case tool.StreamableTool:
		return executeStreamable(ctx, call, t)
	default:
		return nil, fmt.Errorf("unsupported tool type %T", tl)
	}
}

func executeStreamable(ctx context.Context, call model.ToolCall, t tool.StreamableTool) (any, error) {
	reader, err := t.StreamableCall(ctx, call.Function.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errStreamExecution, err)
	}
	defer reader.Close()

	var chunks []tool.StreamChunk
	for {
		chunk, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Errorf("step: stream tool %s: receive chunk failed: %v, merging partial output", call.Function.Name, err)
			break
		}
		chunks = append(chunks, chunk)
	}
	return tool.Merge(chunks), nil
}

func errorToolMessage(call model.ToolCall, content string) model.Message {
	return model.NewToolMessage(call.ID, call.Function.Name, content)
}
