// Package overflow implements the two-threshold hysteresis policy that keeps
// a step loop's model input within a token budget: compressing stale search
// results, evicting whole tool cycles, and finally forcing the model toward
// a best-effort answer when no further cleanup is possible.
package overflow

import (
	"encoding/json"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

// Estimator implements the preferred token-estimation path: a BPE-style
// encoder applied to each message's JSON serialization. When no encoder is
// available it falls back to len(serialized)/3.
type Estimator struct {
	codec tokenizer.Codec
}

// NewEstimator builds an Estimator using the tokenizer appropriate for
// modelName, falling back to cl100k_base, and finally to the len/3 heuristic
// if no tokenizer can be constructed at all.
func NewEstimator(modelName string) *Estimator {
	enc, err := tokenizer.ForModel(tokenizer.Model(modelName))
	if err != nil {
		enc, err = tokenizer.Get(tokenizer.Cl100kBase)
	}
	if err != nil {
		return &Estimator{}
	}
	return &Estimator{codec: enc}
}

// NewFallbackEstimator builds an Estimator that always uses the len/3
// heuristic. Useful when no model name is known yet (e.g. in tests).
func NewFallbackEstimator() *Estimator {
	return &Estimator{}
}

// EstimateTokens estimates the token cost of a single message.
func (e *Estimator) EstimateTokens(msg model.Message) (int, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("overflow: serialize message: %w", err)
	}
	if e.codec != nil {
		if toks, _, err := e.codec.Encode(string(data)); err == nil {
			return len(toks), nil
		}
	}
	return len(data) / 3, nil
}

// EstimateTotal sums EstimateTokens across messages.
func (e *Estimator) EstimateTotal(messages []model.Message) (int, error) {
	total := 0
	for _, msg := range messages {
		n, err := e.EstimateTokens(msg)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
