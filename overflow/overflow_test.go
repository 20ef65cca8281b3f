package overflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

func TestManagerNoOpBelowUpperLimit(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1000, LowerLimit: 900}, NewFallbackEstimator())
	msgs := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("hello"),
	}
	out, err := m.Apply(context.Background(), msgs)
	require.NoError(t, err)
	assert.Equal(t, msgs, out)
	assert.False(t, m.ForceFinalAnswerActive())
}

func TestManagerCompressesSearchResults(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1, LowerLimit: 1}, NewFallbackEstimator())
	msgs := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewToolMessage("c1", "search", "<batch_search_results><content>big blob</content></batch_search_results>"),
		model.NewUserMessage("q"),
	}
	out, err := m.Apply(context.Background(), msgs)
	require.NoError(t, err)

	var found bool
	for _, msg := range out {
		if strings.Contains(msg.Content, "batch_search_results_compressed") {
			found = true
			assert.NotContains(t, msg.Content, "big blob")
		}
	}
	assert.True(t, found, "expected a compressed search-results message in output")
}

func TestManagerDropsSearchToolCycle(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1, LowerLimit: 1}, NewFallbackEstimator())
	msgs := []model.Message{
		model.NewSystemMessage("sys"),
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "c1", Type: "function", Function: model.FunctionDefinitionParam{Name: "web_search"}},
			},
		},
		model.NewToolMessage("c1", "web_search", "result"),
		model.NewUserMessage("q"),
	}
	out, err := m.Apply(context.Background(), msgs)
	require.NoError(t, err)

	for _, msg := range out {
		assert.NotEqual(t, "c1", msg.ToolID)
		for _, tc := range msg.ToolCalls {
			assert.NotEqual(t, "c1", tc.ID)
		}
	}
}

func TestManagerActivatesForceFinalAnswerWhenNoCleanupLeft(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1, LowerLimit: 1}, NewFallbackEstimator())
	msgs := []model.Message{
		model.NewSystemMessage("sys"),
	}
	_, err := m.Apply(context.Background(), msgs)
	require.NoError(t, err)
	assert.True(t, m.ForceFinalAnswerActive())
}

func TestManagerNeverEvictsSystemMessages(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1, LowerLimit: 1}, NewFallbackEstimator())
	msgs := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage(strings.Repeat("x", 500)),
		model.NewAssistantMessage(strings.Repeat("y", 500)),
	}
	out, err := m.Apply(context.Background(), msgs)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, model.RoleSystem, out[0].Role)
}

func TestManagerStaysOnceForceFinalAnswerActivated(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1, LowerLimit: 1}, NewFallbackEstimator())
	_, err := m.Apply(context.Background(), []model.Message{model.NewSystemMessage("sys")})
	require.NoError(t, err)
	require.True(t, m.ForceFinalAnswerActive())

	// A later, easily-satisfiable round must not clear the flag.
	m2 := NewManager(Config{UpperLimit: 100000, LowerLimit: 90000}, NewFallbackEstimator())
	m2.mu.Lock()
	m2.forceFinalAnswer = true
	m2.mu.Unlock()
	_, err = m2.Apply(context.Background(), []model.Message{model.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.True(t, m2.ForceFinalAnswerActive())
}

func TestWithFinalAnswerPromptAppendsOnlyWhenActive(t *testing.T) {
	m := NewManager(Config{UpperLimit: 100000, LowerLimit: 90000}, NewFallbackEstimator())
	msgs := []model.Message{model.NewUserMessage("hi")}

	out := m.WithFinalAnswerPrompt(msgs)
	assert.Equal(t, msgs, out)

	m.mu.Lock()
	m.forceFinalAnswer = true
	m.mu.Unlock()

	out = m.WithFinalAnswerPrompt(msgs)
	require.Len(t, out, 2)
	assert.Equal(t, model.RoleSystem, out[1].Role)
	assert.Equal(t, m.cfg.FinalAnswerPrompt, out[1].Content)
	// Original slice untouched.
	assert.Len(t, msgs, 1)
}

func TestConfigNormalizeRepairsBadLimits(t *testing.T) {
	cfg := Config{UpperLimit: 100, LowerLimit: 500}.normalize()
	assert.Equal(t, 100, cfg.UpperLimit)
	assert.True(t, cfg.LowerLimit >= 1 && cfg.LowerLimit < cfg.UpperLimit)
}

func TestApplyDoesNotMutateCallerSlice(t *testing.T) {
	m := NewManager(Config{UpperLimit: 1, LowerLimit: 1}, NewFallbackEstimator())
	original := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("q"),
	}
	snapshot := append([]model.Message{}, original...)

	_, err := m.Apply(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, snapshot, original)
}
