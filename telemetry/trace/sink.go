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

package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
)

// DataType distinguishes the two record kinds a Sink persists.
type DataType string

// Record data types.
const (
	DataTypeSpan  DataType = "span"
	DataTypeEvent DataType = "event"
)

// SpanRecord is the persisted shape of one completed span.
type SpanRecord struct {
	ID         string            `json:"id"`
	TraceID    string            `json:"trace_id"`
	ParentID   string            `json:"parent_id,omitempty"`
	Name       string            `json:"name"`
	AppName    string            `json:"app_name"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// EventRecord is the persisted shape of one point-in-time event.
type EventRecord struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"trace_id"`
	SpanID    string         `json:"span_id,omitempty"`
	Name      string         `json:"name"`
	AppName   string         `json:"app_name"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink persists span and event records outside the OTel exporter pipeline,
// e.g. to a local JSONL file or a remote HTTP collector (§6, supplemented
// from the teacher's original local/remote tracer pair).
type Sink interface {
	RecordSpan(ctx context.Context, span SpanRecord) error
	RecordEvent(ctx context.Context, evt EventRecord) error
}

// LocalSink appends one JSON line per record under
// <storageDir>/spans/<trace_id>.jsonl and <storageDir>/events/<trace_id>.jsonl.
type LocalSink struct {
	storageDir string

	mu sync.Mutex
}

// NewLocalSink creates a LocalSink rooted at storageDir, creating the
// spans/ and events/ subdirectories if they don't already exist.
func NewLocalSink(storageDir string) (*LocalSink, error) {
	for _, sub := range []string{"spans", "events"} {
		if err := os.MkdirAll(filepath.Join(storageDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("trace: create %s dir: %w", sub, err)
		}
	}
	return &LocalSink{storageDir: storageDir}, nil
}

// RecordSpan implements Sink.
func (s *LocalSink) RecordSpan(ctx context.Context, span SpanRecord) error {
	return s.appendLine(filepath.Join(s.storageDir, "spans", span.TraceID+".jsonl"), span)
}

// RecordEvent implements Sink.
func (s *LocalSink) RecordEvent(ctx context.Context, evt EventRecord) error {
	return s.appendLine(filepath.Join(s.storageDir, "events", evt.TraceID+".jsonl"), evt)
}

func (s *LocalSink) appendLine(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("trace: marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("trace: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("trace: write %s: %w", path, err)
	}
	return nil
}

// remoteEnvelope matches the teacher's remote tracing wire shape exactly:
// {id, data_type, timestamp, app_name, data}.
type remoteEnvelope struct {
	ID        string    `json:"id"`
	DataType  DataType  `json:"data_type"`
	Timestamp time.Time `json:"timestamp"`
	AppName   string    `json:"app_name"`
	Data      any       `json:"data"`
}

type remoteResult struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// RemoteSink POSTs one envelope per record to <baseURL>/trace/agent/event.
// It is write-only: there is no remote read API (§D.3).
type RemoteSink struct {
	endpoint string
	client   *http.Client
}

// NewRemoteSink creates a RemoteSink targeting baseURL, with the given
// request timeout (0 defaults to 10s, matching the teacher's default).
func NewRemoteSink(baseURL string, timeout time.Duration) *RemoteSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteSink{
		endpoint: strings.TrimRight(baseURL, "/") + "/trace/agent/event",
		client:   &http.Client{Timeout: timeout},
	}
}

// RecordSpan implements Sink.
func (s *RemoteSink) RecordSpan(ctx context.Context, span SpanRecord) error {
	return s.send(ctx, remoteEnvelope{ID: span.ID, DataType: DataTypeSpan, Timestamp: span.StartTime, AppName: span.AppName, Data: span})
}

// RecordEvent implements Sink.
func (s *RemoteSink) RecordEvent(ctx context.Context, evt EventRecord) error {
	return s.send(ctx, remoteEnvelope{ID: evt.ID, DataType: DataTypeEvent, Timestamp: evt.Timestamp, AppName: evt.AppName, Data: evt})
}

func (s *RemoteSink) send(ctx context.Context, env remoteEnvelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("trace: marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("trace: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("trace: send to %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trace: remote sink returned status %d", resp.StatusCode)
	}

	var result remoteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("trace: decode response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("trace: remote sink rejected record: code=%d msg=%s", result.Code, result.Msg)
	}
	return nil
}

// HybridSink fans out every record to both a local and a remote Sink,
// logging (rather than propagating) a remote failure so a collector outage
// never breaks local tracing.
type HybridSink struct {
	Local  Sink
	Remote Sink
}

// NewHybridSink creates a HybridSink over local and remote.
func NewHybridSink(local, remote Sink) *HybridSink {
	return &HybridSink{Local: local, Remote: remote}
}

// RecordSpan implements Sink.
func (s *HybridSink) RecordSpan(ctx context.Context, span SpanRecord) error {
	if err := s.Local.RecordSpan(ctx, span); err != nil {
		return err
	}
	if err := s.Remote.RecordSpan(ctx, span); err != nil {
		log.Warnf("trace: remote sink record_span failed: %v", err)
	}
	return nil
}

// RecordEvent implements Sink.
func (s *HybridSink) RecordEvent(ctx context.Context, evt EventRecord) error {
	if err := s.Local.RecordEvent(ctx, evt); err != nil {
		return err
	}
	if err := s.Remote.RecordEvent(ctx, evt); err != nil {
		log.Warnf("trace: remote sink record_event failed: %v", err)
	}
	return nil
}
