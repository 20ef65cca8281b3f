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
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-agentrt-go/agent"
)

// AgentFactory produces a fresh agent instance by name, resolved by a
// Runner's Init per §4.7's "resolve the agent factory, create the agent".
type AgentFactory func() agent.Agent

// Registry resolves an agent name to its AgentFactory, used by both a
// Runner's own Init and the orchestrator's child-runner spawning so the two
// never need to agree on anything but a name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AgentFactory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]AgentFactory)}
}

// Register adds a factory under name. Re-registering the same name
// overwrites the previous factory.
func (r *Registry) Register(name string, factory AgentFactory) error {
	if name == "" {
		return fmt.Errorf("runner: agent name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("runner: agent factory for %q cannot be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	return nil
}

// Get resolves name to a factory.
func (r *Registry) Get(name string) (AgentFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAgentNotFound, name)
	}
	return factory, nil
}

// List returns every registered agent name.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// globalRegistry is the default registry consulted by Init when no explicit
// Registry is supplied via WithRegistry.
var globalRegistry = NewRegistry()

// RegisterAgent registers factory under name in the global registry.
func RegisterAgent(name string, factory AgentFactory) error {
	return globalRegistry.Register(name, factory)
}

// GlobalRegistry returns the package-level default registry.
func GlobalRegistry() *Registry {
	return globalRegistry
}
