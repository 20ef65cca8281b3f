package overflow

import (
	"context"
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

const (
	defaultUpperLimit        = 100_000
	defaultLowerRatio        = 0.9
	defaultFinalAnswerPrompt = "Stop calling tools. Based on everything gathered so far, " +
		"answer now in the form <think>...</think><answer>...</answer>."
)

// Config configures a Manager's token budget and final-answer prompt.
type Config struct {
	// UpperLimit is the hard ceiling the model input must be trimmed to.
	// Defaults to 100,000 tokens.
	UpperLimit int

	// LowerLimit is the point eviction stops trying to squeeze further once
	// UpperLimit has been breached, giving hysteresis between trimming
	// passes. Must satisfy 1 <= LowerLimit < UpperLimit; auto-repaired to
	// ~90% of UpperLimit otherwise.
	LowerLimit int

	// FinalAnswerPrompt is appended as a trailing system message once
	// force-final-answer mode activates.
	FinalAnswerPrompt string
}

func (c Config) normalize() Config {
	if c.UpperLimit <= 0 {
		c.UpperLimit = defaultUpperLimit
	}
	if c.LowerLimit < 1 || c.LowerLimit >= c.UpperLimit {
		c.LowerLimit = int(float64(c.UpperLimit) * defaultLowerRatio)
		if c.LowerLimit < 1 {
			c.LowerLimit = 1
		}
	}
	if c.FinalAnswerPrompt == "" {
		c.FinalAnswerPrompt = defaultFinalAnswerPrompt
	}
	return c
}

// Manager applies the two-threshold hysteresis eviction policy to a step
// loop's model input. A Manager is scoped to one task: force-final-answer
// mode, once activated, stays active for the task's remaining rounds.
type Manager struct {
	cfg       Config
	estimator *Estimator

	mu               sync.Mutex
	forceFinalAnswer bool
}

// NewManager creates a Manager. A nil estimator falls back to the len/3
// heuristic.
func NewManager(cfg Config, estimator *Estimator) *Manager {
	if estimator == nil {
		estimator = NewFallbackEstimator()
	}
	return &Manager{cfg: cfg.normalize(), estimator: estimator}
}

// ForceFinalAnswerActive reports whether this task has exhausted cleanup
// options and should be nudged toward a final answer.
func (m *Manager) ForceFinalAnswerActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forceFinalAnswer
}

// WithFinalAnswerPrompt appends the configured final-answer prompt as a
// trailing system message when force-final-answer mode is active. The
// caller's slice is never mutated in place; the prompt itself must never be
// persisted to the context store.
func (m *Manager) WithFinalAnswerPrompt(messages []model.Message) []model.Message {
	if !m.ForceFinalAnswerActive() {
		return messages
	}
	out := make([]model.Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, model.NewSystemMessage(m.cfg.FinalAnswerPrompt))
}

// Apply runs the eviction policy against messages and returns the
// (possibly trimmed) result. messages is deep-copied first, so the caller's
// slice — and by extension the persisted context store — is never mutated.
func (m *Manager) Apply(_ context.Context, messages []model.Message) ([]model.Message, error) {
	working := deepCopy(messages)

	total, err := m.estimator.EstimateTotal(working)
	if err != nil {
		return nil, fmt.Errorf("overflow: estimate tokens: %w", err)
	}
	if total < m.cfg.UpperLimit {
		return working, nil
	}

	for total >= m.cfg.LowerLimit {
		if compressed, ok := compressEarliestSearchResults(working); ok {
			working = compressed
		} else if trimmed, ok := dropEarliestSearchToolCycle(working); ok {
			working = trimmed
		} else {
			m.activateForceFinalAnswer()
			break
		}
		total, err = m.estimator.EstimateTotal(working)
		if err != nil {
			return nil, fmt.Errorf("overflow: estimate tokens: %w", err)
		}
	}

	for total > m.cfg.UpperLimit {
		if trimmed, ok := dropEarliestToolCycle(working); ok {
			working = trimmed
		} else if trimmed, ok := dropEarliestNonSystem(working); ok {
			working = trimmed
		} else {
			break
		}
		total, err = m.estimator.EstimateTotal(working)
		if err != nil {
			return nil, fmt.Errorf("overflow: estimate tokens: %w", err)
		}
	}

	return working, nil
}

func (m *Manager) activateForceFinalAnswer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.forceFinalAnswer {
		log.Warnf("overflow: context budget exhausted, activating force-final-answer mode")
	}
	m.forceFinalAnswer = true
}

func deepCopy(messages []model.Message) []model.Message {
	out := make([]model.Message, len(messages))
	for i, msg := range messages {
		out[i] = msg
		if msg.Blocks != nil {
			out[i].Blocks = make([]model.ContentBlock, len(msg.Blocks))
			copy(out[i].Blocks, msg.Blocks)
		}
		if msg.ToolCalls != nil {
			out[i].ToolCalls = make([]model.ToolCall, len(msg.ToolCalls))
			copy(out[i].ToolCalls, msg.ToolCalls)
		}
	}
	return out
}
