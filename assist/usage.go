package assist

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// ModelUsage holds the API calls made for one model since startup.
type ModelUsage struct {
	Model            string        `json:"model"`
	Calls            int           `json:"calls"`
	Failures         int           `json:"failures"`
	PromptTokens     int64         `json:"prompt_tokens"`
	CompletionTokens int64         `json:"completion_tokens"`
	ReasoningTokens  int64         `json:"reasoning_tokens"`
	TotalDuration    time.Duration `json:"total_duration_ns"`
}

// usageCollector accumulates per-model usage in a thread-safe manner.
type usageCollector struct {
	entries map[string]*ModelUsage
	mu      sync.Mutex
}

func newUsageCollector() *usageCollector {
	return &usageCollector{
		entries: make(map[string]*ModelUsage),
	}
}

// Record adds one API call. resp may be nil for failed calls.
func (uc *usageCollector) Record(model string, duration time.Duration, resp *Response, errored bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, ok := uc.entries[model]
	if !ok {
		entry = &ModelUsage{Model: model}
		uc.entries[model] = entry
	}

	entry.Calls++
	entry.TotalDuration += duration
	if errored {
		entry.Failures++
	}
	if resp != nil {
		entry.PromptTokens += int64(resp.PromptTokens)
		entry.CompletionTokens += int64(resp.CompletionTokens)
		entry.ReasoningTokens += int64(resp.ReasoningTokens)
	}
}

// Snapshot returns a copy of all collected usage, ordered by model.
func (uc *usageCollector) Snapshot() []ModelUsage {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]ModelUsage, 0, len(uc.entries))
	for _, entry := range uc.entries {
		out = append(out, *entry)
	}
	slices.SortFunc(out, func(a, b ModelUsage) int { return strings.Compare(a.Model, b.Model) })
	return out
}
