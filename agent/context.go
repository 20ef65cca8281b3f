//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package agent provides the core agent functionality.
package agent

// ErrorTypeAgentContextCancelledError is the error type for context cancelled error.
const ErrorTypeAgentContextCancelledError = "agent_context_cancelled_error"
