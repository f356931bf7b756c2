package core

// ModelInfo describes a model users may pick for a thread and how it is
// sent to the completion API.
type ModelInfo struct {
	// Name is the value users select and that is stored on the thread.
	Name string
	// APIName is the model identifier sent to the API.
	APIName string
	// Reasoning models reject sampling parameters (temperature, top_p, stop).
	Reasoning bool
	// ReasoningEffort is sent for reasoning models when non-empty.
	ReasoningEffort string
	// DefaultMaxTokens is the output budget used when none is given.
	DefaultMaxTokens int
}

// Default generation values.
const (
	DefaultModel       = "gpt-5"
	DefaultTemperature = 1.0

	MinMaxTokens = 1
	MaxMaxTokens = 4096

	// Reasoning models spend part of the output budget before any visible
	// text, so they get a larger default.
	reasoningMaxTokens = 2048
	standardMaxTokens  = 512
)

var modelCatalog = []ModelInfo{
	{Name: "gpt-5", APIName: "gpt-5", Reasoning: true, DefaultMaxTokens: reasoningMaxTokens},
	{Name: "gpt-5-mini", APIName: "gpt-5-mini", Reasoning: true, DefaultMaxTokens: reasoningMaxTokens},
	{Name: "gpt-5-thinking", APIName: "gpt-5", Reasoning: true, ReasoningEffort: "high", DefaultMaxTokens: MaxMaxTokens},
	{Name: "gpt-4o", APIName: "gpt-4o", DefaultMaxTokens: standardMaxTokens},
	{Name: "gpt-4o-mini", APIName: "gpt-4o-mini", DefaultMaxTokens: standardMaxTokens},
	{Name: "gpt-4", APIName: "gpt-4", DefaultMaxTokens: standardMaxTokens},
	{Name: "gpt-3.5-turbo", APIName: "gpt-3.5-turbo", DefaultMaxTokens: standardMaxTokens},
}

// Models returns the selectable models in display order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// ModelNames returns the selectable model names in display order.
func ModelNames() []string {
	names := make([]string, len(modelCatalog))
	for i, m := range modelCatalog {
		names[i] = m.Name
	}
	return names
}

// LookupModel returns the catalog entry for name.
func LookupModel(name string) (ModelInfo, bool) {
	for _, m := range modelCatalog {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// ModelOrDefault returns the catalog entry for name. Names outside the
// catalog are treated as plain chat models with the standard token budget,
// which lets operators point the title model at anything the API serves.
func ModelOrDefault(name string) ModelInfo {
	if m, ok := LookupModel(name); ok {
		return m
	}
	return ModelInfo{Name: name, APIName: name, DefaultMaxTokens: standardMaxTokens}
}
