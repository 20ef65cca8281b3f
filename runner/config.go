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
	"time"

	"trpc.group/trpc-go/trpc-agentrt-go/config"
)

// Config configures a Runner's Init.
type Config struct {
	// ContextID scopes the context-store session this Runner reads and
	// writes. Empty generates a fresh one.
	ContextID string

	// UseShareContext, when false (the default), forces a fresh ContextID
	// even if one was supplied, isolating this task's context store from
	// any sibling or parent task per §4.7.
	UseShareContext bool

	// Unfinished backs the step loop's input with an async channel so a
	// running task can receive additional messages mid-stream (e.g. an
	// ask_input reply) instead of only at construction time.
	Unfinished bool

	// InputBuffer sizes the unfinished-mode input channel. Defaults to 16.
	InputBuffer int

	// CallTimeout bounds how long an outbound Client/Agent tool call waits
	// for its response before the Channel returns a timeout error.
	// Defaults to 5 minutes.
	CallTimeout time.Duration

	// EventBuffer sizes the Runner's merger-facing output channel.
	// Defaults to 16.
	EventBuffer int

	// RuntimeConfig supplies the process-wide context-limit defaults
	// (§6's precedence chain) a Runner falls back to when an agent's own
	// extra_config doesn't set them and no explicit overflow.Manager was
	// installed via WithOverflowManager. Zero value uses config.Default().
	RuntimeConfig config.Runtime
}

const (
	defaultInputBuffer = 16
	defaultEventBuffer = 16
	defaultCallTimeout = 5 * time.Minute
)

func (c Config) normalize() Config {
	if c.InputBuffer <= 0 {
		c.InputBuffer = defaultInputBuffer
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.RuntimeConfig.ContextUpperLimit <= 0 {
		c.RuntimeConfig = config.Default()
	}
	return c
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	return Config{}.normalize()
}
