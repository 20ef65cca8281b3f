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

package telemetry

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ServiceName      = "telemetry"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go-agent"
	InstrumentName   = "trpc.agent.go"
)

// NewChatSpanName builds the span name for one LLM call, e.g. "chat gpt-4.0".
// Empty model names (a misconfigured adapter) degrade to the bare "chat".
func NewChatSpanName(model string) string {
	if model == "" {
		return "chat"
	}
	return "chat " + model
}

// NewExecuteToolSpanName builds the span name for one tool call, e.g.
// "execute_tool read_file".
func NewExecuteToolSpanName(toolName string) string {
	return "execute_tool " + toolName
}

// NewConn creates a new gRPC connection to the OpenTelemetry Collector.
func NewConn(endpoint string) (*grpc.ClientConn, error) {
	// It connects the OpenTelemetry Collector through gRPC connection.
	// You can customize the endpoint using SetConfig() or environment variables.
	conn, err := grpc.NewClient(endpoint,
		// Note the use of insecure transport here. TLS is recommended in production.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	return conn, err
}
