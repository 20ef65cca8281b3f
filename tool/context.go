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

package tool

import "context"

type callIDKey struct{}

// WithCallID attaches the originating model.ToolCall's ID to ctx. Client-
// and Agent-kind tools need it as the correlation id for the Channel
// request they fire, so the dispatcher (step/exec.go) sets it before
// calling a tool, and a child runner's result is routed back to exactly the
// call that spawned it.
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, callIDKey{}, callID)
}

// CallIDFromContext retrieves the id set by WithCallID.
func CallIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callIDKey{}).(string)
	return id, ok
}
