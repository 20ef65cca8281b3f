package overflow

import (
	"encoding/json"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

var (
	batchSearchResultsPattern = regexp.MustCompile(`(?s)<batch_search_results>(.*?)</batch_search_results>`)
	innerContentPattern       = regexp.MustCompile(`(?s)<content>.*?</content>`)
)

// compressText rewrites the earliest <batch_search_results>...</...> wrapper
// in s, stripping inner <content>...</content> regions and renaming the
// wrapper to <batch_search_results_compressed> so it is never matched again.
func compressText(s string) (string, bool) {
	loc := batchSearchResultsPattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, false
	}
	inner := s[loc[2]:loc[3]]
	stripped := innerContentPattern.ReplaceAllString(inner, "")
	replacement := "<batch_search_results_compressed>" + stripped + "</batch_search_results_compressed>"
	return s[:loc[0]] + replacement + s[loc[1]:], true
}

// compressEarliestSearchResults finds the earliest message (by position)
// whose Content, or one of its Blocks' Text, contains a <batch_search_results>
// wrapper, compresses it, and returns the updated slice. Only one message is
// touched per call, matching the policy's "one compression per pass" step.
func compressEarliestSearchResults(messages []model.Message) ([]model.Message, bool) {
	for i := range messages {
		if compressed, ok := compressText(messages[i].Content); ok {
			messages[i].Content = compressed
			return messages, true
		}
		for j := range messages[i].Blocks {
			if compressed, ok := compressText(messages[i].Blocks[j].Text); ok {
				messages[i].Blocks[j].Text = compressed
				return messages, true
			}
		}
	}
	return messages, false
}

// isSearchRelatedCall reports whether a tool call is search-related: its
// name contains "search", or it is a batch_web_surfer call whose arguments
// carry action == "batch_search".
func isSearchRelatedCall(tc model.ToolCall) bool {
	name := strings.ToLower(tc.Function.Name)
	if strings.Contains(name, "search") {
		return true
	}
	if name != "batch_web_surfer" || len(tc.Function.Arguments) == 0 {
		return false
	}
	var args struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
		return false
	}
	return args.Action == "batch_search"
}

// dropEarliestSearchToolCycle drops the earliest assistant tool-call message
// that has at least one search-related call, together with every tool-result
// message whose ToolID matches one of that message's ToolCalls.
func dropEarliestSearchToolCycle(messages []model.Message) ([]model.Message, bool) {
	idx := -1
	for i, msg := range messages {
		if msg.Role != model.RoleAssistant || len(msg.ToolCalls) == 0 {
			continue
		}
		for _, tc := range msg.ToolCalls {
			if isSearchRelatedCall(tc) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			break
		}
	}
	if idx < 0 {
		return messages, false
	}
	return dropToolCycleAt(messages, idx), true
}

// dropEarliestToolCycle drops the earliest non-system assistant tool-call
// message (any tool, not just search-related) together with its results.
func dropEarliestToolCycle(messages []model.Message) ([]model.Message, bool) {
	idx := -1
	for i, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		if msg.Role == model.RoleAssistant && len(msg.ToolCalls) > 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return messages, false
	}
	return dropToolCycleAt(messages, idx), true
}

func dropToolCycleAt(messages []model.Message, idx int) []model.Message {
	ids := make(map[string]bool, len(messages[idx].ToolCalls))
	for _, tc := range messages[idx].ToolCalls {
		if tc.ID != "" {
			ids[tc.ID] = true
		}
	}
	out := make([]model.Message, 0, len(messages))
	for i, msg := range messages {
		if i == idx {
			continue
		}
		if msg.Role == model.RoleTool && ids[msg.ToolID] {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// dropEarliestNonSystem drops the earliest non-system message outright.
// System messages are never evicted.
func dropEarliestNonSystem(messages []model.Message) ([]model.Message, bool) {
	for i, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		out := make([]model.Message, 0, len(messages)-1)
		out = append(out, messages[:i]...)
		out = append(out, messages[i+1:]...)
		return out, true
	}
	return messages, false
}
